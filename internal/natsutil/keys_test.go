package natsutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/roster/types"
)

func TestValidateKeyToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"simple", "worker-1", false},
		{"mixed", "Node_A=1/b", false},
		{"empty", "", true},
		{"dot", "a.b", true},
		{"wildcard", "a*", true},
		{"space", "a b", true},
		{"gt", "a>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeyToken(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidWorkerID)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestKey(t *testing.T) {
	require.Equal(t, "hb.w1", Key("hb", "w1"))
	require.Equal(t, "w1", Key("", "w1"))
	require.Equal(t, "assignment.worker.w1", Key(Key("assignment", "worker"), "w1"))
}

func TestTrimKey(t *testing.T) {
	token, ok := TrimKey("hb", "hb.w1")
	require.True(t, ok)
	require.Equal(t, "w1", token)

	_, ok = TrimKey("hb", "other.w1")
	require.False(t, ok)

	_, ok = TrimKey("hb", "hb.")
	require.False(t, ok)

	_, ok = TrimKey("assignment", "assignment.worker.w1")
	require.False(t, ok, "nested keys are not direct children")

	token, ok = TrimKey("", "w1")
	require.True(t, ok)
	require.Equal(t, "w1", token)

	_, ok = TrimKey("", "a.b")
	require.False(t, ok)
}
