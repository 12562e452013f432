package testutil

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/roster"
	"github.com/arloliu/roster/source"
	rostertest "github.com/arloliu/roster/testing"
	"github.com/arloliu/roster/types"
)

// StartEmbeddedNATS starts an embedded NATS server and returns the
// connection with a cleanup function.
func StartEmbeddedNATS(t *testing.T) (*nats.Conn, func()) {
	t.Helper()
	srv, nc := rostertest.StartEmbeddedNATS(t)
	cleanup := func() {
		nc.Close()
		srv.Shutdown()
		srv.WaitForShutdown()
	}

	return nc, cleanup
}

// IntegrationTestConfig returns a config with short timeouts and the epoch
// loop disabled.
func IntegrationTestConfig(poolCapacity, perPartitionCapacity uint32) roster.Config {
	cfg := roster.TestConfig()
	cfg.Capacity.PoolCapacity = poolCapacity
	cfg.Capacity.PerPartitionCapacity = perPartitionCapacity
	roster.SetDefaults(&cfg)

	return cfg
}

// StateTracker records state transitions of one coordinator.
type StateTracker struct {
	Index int

	mu     sync.Mutex
	states []types.State
}

// Hook returns an OnStateChanged hook feeding the tracker.
func (st *StateTracker) Hook() func(context.Context, types.State, types.State) error {
	// Hooks run in their own goroutine and may fire after the test ends,
	// so the tracker only records.
	return func(_ context.Context, _, to types.State) error {
		st.mu.Lock()
		st.states = append(st.states, to)
		st.mu.Unlock()

		return nil
	}
}

// HasState reports whether the coordinator went through state.
func (st *StateTracker) HasState(state types.State) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	return slices.Contains(st.states, state)
}

// CoordinatorCluster runs several coordinators against one NATS server and
// shared static sources.
type CoordinatorCluster struct {
	Coordinators  []*roster.Coordinator
	StateTrackers []*StateTracker
	Config        roster.Config
	Workers       *source.StaticWorkers
	Partitions    *source.StaticPartitions
	NC            *nats.Conn
	T             *testing.T
}

// NewCoordinatorCluster creates an empty cluster with the given capacities.
func NewCoordinatorCluster(
	t *testing.T,
	nc *nats.Conn,
	workers []types.Worker,
	partitions []types.PartitionID,
	poolCapacity, perPartitionCapacity uint32,
) *CoordinatorCluster {
	return &CoordinatorCluster{
		Config:     IntegrationTestConfig(poolCapacity, perPartitionCapacity),
		Workers:    source.NewStaticWorkers(workers),
		Partitions: source.NewStaticPartitions(partitions),
		NC:         nc,
		T:          t,
	}
}

// AddCoordinator creates a coordinator with state tracking. Extra options
// are appended after the tracking hook.
func (cc *CoordinatorCluster) AddCoordinator(opts ...roster.Option) *roster.Coordinator {
	idx := len(cc.Coordinators)
	tracker := &StateTracker{Index: idx}
	cc.StateTrackers = append(cc.StateTrackers, tracker)

	cfg := cc.Config
	all := append([]roster.Option{
		roster.WithHooks(&roster.Hooks{OnStateChanged: tracker.Hook()}),
		roster.WithLogger(rostertest.NewTestLogger(cc.T)),
	}, opts...)

	coord, err := roster.NewCoordinator(&cfg, cc.NC, cc.Workers, cc.Partitions, all...)
	require.NoError(cc.T, err, "failed to create coordinator %d", idx)

	cc.Coordinators = append(cc.Coordinators, coord)

	return coord
}

// StartAll starts every coordinator in order.
func (cc *CoordinatorCluster) StartAll(ctx context.Context) {
	for i, coord := range cc.Coordinators {
		require.NoError(cc.T, coord.Start(ctx), "coordinator %d failed to start", i)
	}
}

// StopAll stops every running coordinator. Errors are logged.
func (cc *CoordinatorCluster) StopAll() {
	for i, coord := range cc.Coordinators {
		if coord.State() == types.StateShutdown || coord.State() == types.StateInit {
			continue
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := coord.Stop(stopCtx); err != nil {
			cc.T.Logf("coordinator %d stop error (non-fatal): %v", i, err)
		}
		cancel()
	}
}

// Waiters returns the running coordinators as StateWaiters.
func (cc *CoordinatorCluster) Waiters() []StateWaiter {
	out := make([]StateWaiter, 0, len(cc.Coordinators))
	for _, coord := range cc.Coordinators {
		if coord.State() != types.StateShutdown {
			out = append(out, coord)
		}
	}

	return out
}

// VerifyExactlyOneLeader fails unless exactly one running coordinator leads,
// and returns it.
func (cc *CoordinatorCluster) VerifyExactlyOneLeader() *roster.Coordinator {
	var leader *roster.Coordinator
	count := 0
	for _, coord := range cc.Coordinators {
		if coord.State() == types.StateShutdown {
			continue
		}
		if coord.IsLeader() {
			count++
			leader = coord
		}
	}
	require.Equal(cc.T, 1, count, "expected exactly one leader")

	return leader
}

// Leader returns the current leader or nil.
func (cc *CoordinatorCluster) Leader() *roster.Coordinator {
	for _, coord := range cc.Coordinators {
		if coord.State() != types.StateShutdown && coord.IsLeader() {
			return coord
		}
	}

	return nil
}

// StopCoordinator stops one coordinator, simulating a departure.
func (cc *CoordinatorCluster) StopCoordinator(index int) {
	require.Less(cc.T, index, len(cc.Coordinators), "invalid coordinator index")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(cc.T, cc.Coordinators[index].Stop(stopCtx), "failed to stop coordinator %d", index)
}

// IndexOf returns the position of coord in the cluster, or -1.
func (cc *CoordinatorCluster) IndexOf(coord *roster.Coordinator) int {
	return slices.Index(cc.Coordinators, coord)
}
