package testing

import (
	"testing"

	"github.com/arloliu/roster/internal/logger"
	"github.com/arloliu/roster/types"
)

// NewTestLogger returns a logger that writes through t.Logf, so roster log
// lines appear in the output of the test that produced them.
func NewTestLogger(t testing.TB) types.Logger {
	return logger.NewTest(t)
}
