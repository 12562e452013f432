package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/roster/scheduler"
	"github.com/arloliu/roster/store"
	"github.com/arloliu/roster/types"
)

// stateDoc is the YAML form of an AssignmentState.
type stateDoc struct {
	Pool       []types.Worker                       `yaml:"pool"`
	Partitions map[types.PartitionID][]types.Worker `yaml:"partitions"`
}

func (d *stateDoc) state() *types.AssignmentState {
	s := types.NewAssignmentState()
	if d == nil {
		return s
	}

	s.Pool = append(s.Pool, d.Pool...)
	for id, workers := range d.Partitions {
		s.Partitions[id] = append([]types.Worker{}, workers...)
	}

	return s
}

func newStateDoc(s *types.AssignmentState) stateDoc {
	return stateDoc{Pool: s.Pool, Partitions: s.Partitions}
}

// epochInput is the input of one planned epoch.
type epochInput struct {
	Eligible []types.Worker        `yaml:"eligible"`
	Active   []types.PartitionID   `yaml:"active"`
	Capacity *types.CapacityConfig `yaml:"capacity,omitempty"`
}

// scenario is the YAML document read by "roster plan".
//
// Either the top-level eligible/active pair describes a single epoch, or
// epochs lists several that run in order, each starting from the previous
// result.
//
//	capacity: {maxTotalWorkers: 100, poolCapacity: 1, perPartitionCapacity: 2}
//	previous:
//	  pool: [A]
//	  partitions: {10: [B, C], 20: [D]}
//	eligible: [A, B, C, D, E]
//	active: [10, 20]
type scenario struct {
	Capacity types.CapacityConfig `yaml:"capacity"`
	Previous *stateDoc            `yaml:"previous,omitempty"`
	Eligible []types.Worker       `yaml:"eligible"`
	Active   []types.PartitionID  `yaml:"active"`
	Epochs   []epochInput         `yaml:"epochs"`
}

func (sc scenario) epochs() []epochInput {
	if len(sc.Epochs) > 0 {
		return sc.Epochs
	}

	return []epochInput{{Eligible: sc.Eligible, Active: sc.Active}}
}

// epochReport is the YAML output for one planned epoch.
type epochReport struct {
	Epoch       uint64          `yaml:"epoch"`
	State       stateDoc        `yaml:"state"`
	Unassigned  []types.Worker  `yaml:"unassigned"`
	Diff        types.StateDiff `yaml:"diff"`
	Fingerprint string          `yaml:"fingerprint"`
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [scenario_file]",
		Short: "recompute assignments offline from a YAML scenario",
		Long: "plan reads a scenario (capacity, optional previous state, eligible workers and active partitions) " +
			"and prints the assignment each epoch would persist. Use - to read the scenario from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			data, err := readScenario(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			sc := scenario{Capacity: cfg.Capacity}
			if err := yaml.Unmarshal(data, &sc); err != nil {
				return fmt.Errorf("failed to parse scenario: %w", err)
			}

			logger, err := opts.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			reports, err := runPlan(cmd.Context(), sc, scheduler.New(scheduler.WithLogger(logger)))
			if err != nil {
				return err
			}

			return writeYAML(cmd.OutOrStdout(), reports)
		},
	}
}

func readScenario(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	return data, nil
}

// runPlan replays the scenario epochs against an in-memory store.
func runPlan(ctx context.Context, sc scenario, sched *scheduler.Scheduler) ([]epochReport, error) {
	st := store.NewMemory()
	if sc.Previous != nil {
		seed := &types.Snapshot{State: sc.Previous.state()}
		if err := st.Store(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to seed previous state: %w", err)
		}
	}

	epochs := sc.epochs()
	reports := make([]epochReport, 0, len(epochs))
	for i, in := range epochs {
		capacity := sc.Capacity
		if in.Capacity != nil {
			capacity = *in.Capacity
		}

		prev, err := st.Load(ctx)
		if err != nil {
			return nil, err
		}

		res, err := sched.Schedule(scheduler.Input{
			Eligible: in.Eligible,
			Active:   in.Active,
			Capacity: capacity,
			Previous: prev.State,
		})
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", i+1, err)
		}

		next := &types.Snapshot{
			Epoch:       prev.Epoch + 1,
			State:       res.State,
			Fingerprint: res.State.Fingerprint(),
			Revision:    prev.Revision,
		}
		if err := st.Store(ctx, next); err != nil {
			return nil, fmt.Errorf("epoch %d: %w", i+1, err)
		}

		reports = append(reports, epochReport{
			Epoch:       next.Epoch,
			State:       newStateDoc(res.State),
			Unassigned:  res.Unassigned,
			Diff:        res.Diff,
			Fingerprint: fmt.Sprintf("%016x", next.Fingerprint),
		})
	}

	return reports, nil
}
