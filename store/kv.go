package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/roster/internal/kvutil"
	"github.com/arloliu/roster/internal/logger"
	"github.com/arloliu/roster/internal/metrics"
	"github.com/arloliu/roster/internal/natsutil"
	"github.com/arloliu/roster/types"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "assignment"

const (
	snapshotToken = "snapshot"
	workerToken   = "worker"
)

// snapshotDoc is the JSON layout of the snapshot key.
type snapshotDoc struct {
	Epoch         uint64            `json:"epoch"`
	RunID         string            `json:"runId"`
	Fingerprint   uint64            `json:"fingerprint"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	PoolPartition types.PartitionID `json:"poolPartition"`
	Entries       []types.Entry     `json:"entries"`
}

// IndexEntry is the JSON layout of a per-worker index key.
type IndexEntry struct {
	types.Placement

	// Epoch is the epoch that wrote this placement.
	Epoch uint64 `json:"epoch"`
}

// KV is a StateStore backed by a NATS JetStream KeyValue bucket.
type KV struct {
	kv      jetstream.KeyValue
	prefix  string
	poolID  types.PartitionID
	logger  types.Logger
	metrics types.CoordinatorMetrics
}

var _ types.StateStore = (*KV)(nil)

// Option configures a KV store.
type Option func(*KV)

// WithPrefix sets the key prefix. Defaults to DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *KV) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithPoolPartition sets the id that tags pool members in persisted entries.
// Defaults to types.DefaultPoolPartition.
func WithPoolPartition(id types.PartitionID) Option {
	return func(s *KV) {
		s.poolID = id
	}
}

// WithLogger sets the logger used for index maintenance failures.
func WithLogger(l types.Logger) Option {
	return func(s *KV) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the sink for KV operation latencies.
func WithMetrics(m types.CoordinatorMetrics) Option {
	return func(s *KV) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewKV creates a KV-backed state store.
//
// Parameters:
//   - kv: Assignment bucket; it should have no TTL so state survives leader changes
//   - opts: Optional configuration
//
// Returns:
//   - *KV: State store writing under "<prefix>.snapshot" and "<prefix>.worker.<id>"
//
// Example:
//
//	kv, _ := js.KeyValue(ctx, "roster-assignment")
//	st := store.NewKV(kv, store.WithPrefix("assignment"), store.WithLogger(logger))
func NewKV(kv jetstream.KeyValue, opts ...Option) *KV {
	s := &KV{
		kv:      kv,
		prefix:  DefaultPrefix,
		poolID:  types.DefaultPoolPartition,
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads the snapshot key.
//
// Returns:
//   - *types.Snapshot: The stored snapshot with its KV revision; an epoch-0
//     snapshot with Revision 0 if the key does not exist
//   - error: types.ErrCorruptSnapshot for undecodable data, wrapped
//     types.ErrConnectivity for NATS failures
func (s *KV) Load(ctx context.Context) (*types.Snapshot, error) {
	start := time.Now()
	entry, err := s.kv.Get(ctx, s.snapshotKey())
	s.metrics.RecordKVOperationDuration("get", time.Since(start).Seconds())

	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return types.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, natsutil.Wrap("load snapshot", err)
	}

	snap, err := decodeSnapshot(entry.Value())
	if err != nil {
		return nil, err
	}
	snap.Revision = entry.Revision()

	return snap, nil
}

// Store writes snap as the new snapshot and refreshes the per-worker index.
//
// The snapshot is created when snap.Revision is 0 and updated against
// snap.Revision otherwise. Index failures are logged and do not fail the call.
//
// Returns:
//   - error: types.ErrConcurrentUpdate on a revision mismatch,
//     types.ErrInvalidWorkerID if a worker id is not a valid key token,
//     types.ErrPoolPartitionConflict if a partition uses the pool id
func (s *KV) Store(ctx context.Context, snap *types.Snapshot) error {
	for w := range snap.State.AssignedSet() {
		if err := natsutil.ValidateKeyToken(w.String()); err != nil {
			return err
		}
	}

	entries, err := snap.State.Entries(s.poolID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(snapshotDoc{
		Epoch:         snap.Epoch,
		RunID:         snap.RunID,
		Fingerprint:   snap.Fingerprint,
		UpdatedAt:     snap.UpdatedAt,
		PoolPartition: s.poolID,
		Entries:       entries,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	var rev uint64
	start := time.Now()
	if snap.Revision == 0 {
		rev, err = s.kv.Create(ctx, s.snapshotKey(), data)
		s.metrics.RecordKVOperationDuration("create", time.Since(start).Seconds())
	} else {
		rev, err = s.kv.Update(ctx, s.snapshotKey(), data, snap.Revision)
		s.metrics.RecordKVOperationDuration("update", time.Since(start).Seconds())
	}
	if err != nil {
		if isRevisionMismatch(err) {
			return fmt.Errorf("%w: epoch %d at revision %d", types.ErrConcurrentUpdate, snap.Epoch, snap.Revision)
		}

		return natsutil.Wrap("store snapshot", err)
	}
	snap.Revision = rev

	s.writeIndex(ctx, snap.Epoch, snap.State)

	return nil
}

// Lookup reads the placement of w from the per-worker index.
//
// Returns:
//   - IndexEntry: Placement and the epoch that wrote it
//   - bool: false if w holds no slot
//   - error: types.ErrInvalidWorkerID or a wrapped NATS error
func (s *KV) Lookup(ctx context.Context, w types.Worker) (IndexEntry, bool, error) {
	if err := natsutil.ValidateKeyToken(w.String()); err != nil {
		return IndexEntry{}, false, err
	}

	start := time.Now()
	entry, err := s.kv.Get(ctx, s.workerKey(w))
	s.metrics.RecordKVOperationDuration("get", time.Since(start).Seconds())

	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return IndexEntry{}, false, nil
	}
	if err != nil {
		return IndexEntry{}, false, natsutil.Wrap("lookup worker", err)
	}

	var idx IndexEntry
	if err := json.Unmarshal(entry.Value(), &idx); err != nil {
		return IndexEntry{}, false, fmt.Errorf("%w: index for %s: %w", types.ErrCorruptSnapshot, w, err)
	}

	return idx, true, nil
}

// PlacementEvent is one change to a worker's index key.
type PlacementEvent struct {
	IndexEntry

	// Assigned is false when the worker lost its slot.
	Assigned bool
}

// Watch streams placement changes for w until ctx is cancelled.
//
// The current placement, if any, is delivered first. The channel is closed
// when ctx is done or the underlying watcher stops.
func (s *KV) Watch(ctx context.Context, w types.Worker) (<-chan PlacementEvent, error) {
	if err := natsutil.ValidateKeyToken(w.String()); err != nil {
		return nil, err
	}

	watcher, err := s.kv.Watch(ctx, s.workerKey(w))
	if err != nil {
		return nil, natsutil.Wrap("watch worker", err)
	}

	out := make(chan PlacementEvent, 1)
	go func() {
		defer close(out)
		defer func() { _ = watcher.Stop() }()

		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					return
				}
				// nil marks the end of the initial values
				if entry == nil {
					continue
				}

				ev := PlacementEvent{}
				if entry.Operation() == jetstream.KeyValuePut {
					if err := json.Unmarshal(entry.Value(), &ev.IndexEntry); err != nil {
						s.logger.Warn("skipping undecodable index entry", "worker", w, "error", err)
						continue
					}
					ev.Assigned = true
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// writeIndex puts the placement of every assigned worker and deletes the
// index keys of workers that no longer hold a slot.
func (s *KV) writeIndex(ctx context.Context, epoch uint64, state *types.AssignmentState) {
	assigned := state.AssignedSet()

	existing, err := s.indexedWorkers(ctx)
	if err != nil {
		s.logger.Warn("failed to list worker index", "error", err)
	}

	stale := 0
	for _, w := range existing {
		if _, ok := assigned[w]; ok {
			continue
		}
		if err := s.kv.Delete(ctx, s.workerKey(w)); err != nil {
			s.logger.Warn("failed to delete stale index key", "worker", w, "error", err)
			continue
		}
		stale++
	}

	written := 0
	for w := range assigned {
		p, _ := state.Lookup(w)
		if p.InPool {
			p.Partition = s.poolID
		}

		data, err := json.Marshal(IndexEntry{Placement: p, Epoch: epoch})
		if err != nil {
			s.logger.Warn("failed to marshal index entry", "worker", w, "error", err)
			continue
		}
		if _, err := s.kv.Put(ctx, s.workerKey(w), data); err != nil {
			s.logger.Warn("failed to write index key", "worker", w, "error", err)
			continue
		}
		written++
	}

	s.logger.Debug("worker index refreshed", "epoch", epoch, "written", written, "deleted", stale)
}

// indexedWorkers lists the workers that currently have an index key.
func (s *KV) indexedWorkers(ctx context.Context) ([]types.Worker, error) {
	keys, err := kvutil.ListKeys(ctx, s.kv)
	if err != nil {
		return nil, natsutil.Wrap("list index", err)
	}

	indexPrefix := natsutil.Key(s.prefix, workerToken)
	workers := make([]types.Worker, 0, len(keys))
	for _, k := range keys {
		if token, ok := natsutil.TrimKey(indexPrefix, k); ok {
			workers = append(workers, types.Worker(token))
		}
	}

	return workers, nil
}

func (s *KV) snapshotKey() string {
	return natsutil.Key(s.prefix, snapshotToken)
}

func (s *KV) workerKey(w types.Worker) string {
	return natsutil.Key(natsutil.Key(s.prefix, workerToken), w.String())
}

func decodeSnapshot(data []byte) (*types.Snapshot, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorruptSnapshot, err)
	}

	state, err := types.StateFromEntries(doc.Entries, doc.PoolPartition)
	if err != nil {
		return nil, err
	}

	if fp := state.Fingerprint(); doc.Fingerprint != 0 && fp != doc.Fingerprint {
		return nil, fmt.Errorf("%w: fingerprint %x, stored %x", types.ErrCorruptSnapshot, fp, doc.Fingerprint)
	}

	return &types.Snapshot{
		Epoch:       doc.Epoch,
		RunID:       doc.RunID,
		State:       state,
		Fingerprint: doc.Fingerprint,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func isRevisionMismatch(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}

	return false
}
