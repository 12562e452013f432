package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/roster/scheduler"
	"github.com/arloliu/roster/types"
)

func executeCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SetContext(t.Context())

	err := cmd.Execute()

	return out.String(), err
}

const openSlotScenario = `
capacity: {maxTotalWorkers: 100, poolCapacity: 1, perPartitionCapacity: 2}
previous:
  pool: [A]
  partitions:
    10: [B, C]
    20: [D]
eligible: [A, B, C, D, E]
active: [10, 20]
`

func TestPlan_SingleEpoch(t *testing.T) {
	out, err := executeCmd(t, openSlotScenario, "plan", "-")
	require.NoError(t, err)

	var reports []epochReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)

	r := reports[0]
	require.Equal(t, uint64(1), r.Epoch)
	require.Equal(t, []types.Worker{"A"}, r.State.Pool)
	require.Equal(t, []types.Worker{"B", "C"}, r.State.Partitions[10])
	require.Equal(t, []types.Worker{"D", "E"}, r.State.Partitions[20])
	require.Empty(t, r.Unassigned)
	require.Equal(t, []types.Worker{"E"}, r.Diff.Added)
	require.Len(t, r.Fingerprint, 16)
}

func TestPlan_MultipleEpochsFromFile(t *testing.T) {
	scenarioFile := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioFile, []byte(`
capacity: {maxTotalWorkers: 100, poolCapacity: 1, perPartitionCapacity: 2}
epochs:
  - eligible: [A, B, C, D]
    active: [10, 20]
  - eligible: [A, B, C, D]
    active: [20]
  - eligible: [A, B, C, D]
    active: [20]
    capacity: {maxTotalWorkers: 100, poolCapacity: 0, perPartitionCapacity: 1}
`), 0o600))

	out, err := executeCmd(t, "", "plan", scenarioFile)
	require.NoError(t, err)

	var reports []epochReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 3)

	require.Equal(t, []types.Worker{"D"}, reports[0].State.Partitions[20][:1])

	// Partition 10 goes away; its workers refill 20 behind D.
	require.Equal(t, []types.Worker{"A"}, reports[1].State.Pool)
	require.Equal(t, []types.Worker{"D", "B"}, reports[1].State.Partitions[20])
	require.Equal(t, []types.Worker{"C"}, reports[1].Unassigned)

	// Shrinking keeps the most senior worker.
	require.Empty(t, reports[2].State.Pool)
	require.Equal(t, []types.Worker{"D"}, reports[2].State.Partitions[20])
	require.Equal(t, uint64(3), reports[2].Epoch)
}

func TestPlan_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := executeCmd(t, "", "plan", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := executeCmd(t, "eligible: [", "plan", "-")
		require.Error(t, err)
	})

	t.Run("too many workers", func(t *testing.T) {
		_, err := executeCmd(t, `
capacity: {maxTotalWorkers: 1, poolCapacity: 1, perPartitionCapacity: 1}
eligible: [A, B]
active: [1]
`, "plan", "-")
		require.ErrorIs(t, err, types.ErrTooManyWorkers)
	})

	t.Run("no argument", func(t *testing.T) {
		_, err := executeCmd(t, "", "plan")
		require.Error(t, err)
	})
}

func TestRunPlan_UsesConfigCapacityByDefault(t *testing.T) {
	sc := scenario{
		Capacity: types.CapacityConfig{MaxTotalWorkers: 10, PoolCapacity: 0, PerPartitionCapacity: 1},
		Eligible: []types.Worker{"x", "y", "z"},
		Active:   []types.PartitionID{2, 1},
	}

	reports, err := runPlan(t.Context(), sc, scheduler.New())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, []types.Worker{"x"}, reports[0].State.Partitions[1])
	require.Equal(t, []types.Worker{"y"}, reports[0].State.Partitions[2])
	require.Equal(t, []types.Worker{"z"}, reports[0].Unassigned)
}

func TestParsePartitions(t *testing.T) {
	ids, err := parsePartitions([]string{"2000", " 2001"})
	require.NoError(t, err)
	require.Equal(t, []types.PartitionID{2000, 2001}, ids)

	_, err = parsePartitions([]string{"x"})
	require.Error(t, err)
}
