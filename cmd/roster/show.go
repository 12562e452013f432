package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/arloliu/roster"
	"github.com/arloliu/roster/internal/election"
	"github.com/arloliu/roster/store"
	"github.com/arloliu/roster/types"
)

// showReport is the YAML output of "roster show".
type showReport struct {
	Epoch       uint64    `yaml:"epoch"`
	RunID       string    `yaml:"runId,omitempty"`
	UpdatedAt   time.Time `yaml:"updatedAt,omitempty"`
	Fingerprint string    `yaml:"fingerprint"`
	Leader      string    `yaml:"leader,omitempty"`
	State       stateDoc  `yaml:"state"`
}

// workerReport is the YAML output of "roster show --worker".
type workerReport struct {
	Worker    types.Worker      `yaml:"worker"`
	Assigned  bool              `yaml:"assigned"`
	InPool    bool              `yaml:"inPool,omitempty"`
	Partition types.PartitionID `yaml:"partition,omitempty"`
	Position  int               `yaml:"position"`
	Epoch     uint64            `yaml:"epoch,omitempty"`
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	var worker string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "print the persisted assignment",
		Long:  "show reads the latest snapshot and the current leader from NATS KV. With --worker it prints one worker's placement from the index.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			nc, err := opts.connect()
			if err != nil {
				return err
			}
			defer nc.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OperationTimeout)
			defer cancel()

			js, err := jetstream.New(nc)
			if err != nil {
				return fmt.Errorf("failed to create jetstream context: %w", err)
			}

			kv, err := js.KeyValue(ctx, cfg.KVBuckets.AssignmentBucket)
			if err != nil {
				if errors.Is(err, jetstream.ErrBucketNotFound) {
					return fmt.Errorf("bucket %q not found, no coordinator has started yet", cfg.KVBuckets.AssignmentBucket)
				}

				return fmt.Errorf("failed to open assignment bucket: %w", err)
			}

			st := store.NewKV(kv,
				store.WithPrefix(cfg.AssignmentPrefix),
				store.WithPoolPartition(cfg.PoolPartition),
			)

			if worker != "" {
				report, err := showWorker(ctx, st, types.Worker(worker))
				if err != nil {
					return err
				}

				return writeYAML(cmd.OutOrStdout(), report)
			}

			report, err := showSnapshot(ctx, st)
			if err != nil {
				return err
			}
			report.Leader = currentLeader(ctx, js, cfg.KVBuckets.ElectionBucket)

			return writeYAML(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&worker, "worker", "w", "", "print the placement of a single worker")

	return cmd
}

func showSnapshot(ctx context.Context, st *store.KV) (showReport, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		return showReport{}, err
	}

	return showReport{
		Epoch:       snap.Epoch,
		RunID:       snap.RunID,
		UpdatedAt:   snap.UpdatedAt,
		Fingerprint: fmt.Sprintf("%016x", snap.State.Fingerprint()),
		State:       newStateDoc(snap.State),
	}, nil
}

func showWorker(ctx context.Context, st *store.KV, w types.Worker) (workerReport, error) {
	entry, ok, err := st.Lookup(ctx, w)
	if err != nil {
		return workerReport{}, err
	}

	report := workerReport{Worker: w, Assigned: ok}
	if ok {
		report.InPool = entry.InPool
		report.Partition = entry.Partition
		report.Position = entry.Position
		report.Epoch = entry.Epoch
	}

	return report, nil
}

// currentLeader returns the leader node id, or "" when unknown.
func currentLeader(ctx context.Context, js jetstream.JetStream, bucket string) string {
	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		return ""
	}

	info, ok, err := election.Leader(ctx, kv, roster.LeaderKey)
	if err != nil || !ok {
		return ""
	}

	return info.NodeID
}
