package natsutil

import (
	"fmt"
	"strings"

	"github.com/arloliu/roster/types"
)

// ValidateKeyToken checks that s can be used as a single token of a NATS KV key.
//
// KV keys accept [-/_=.a-zA-Z0-9]; the dot is the token separator and is
// therefore rejected here, as are wildcards.
func ValidateKeyToken(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", types.ErrInvalidWorkerID)
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '=', r == '/':
		default:
			return fmt.Errorf("%w: %q contains %q", types.ErrInvalidWorkerID, s, r)
		}
	}

	return nil
}

// Key joins a prefix and a token with the NATS subject separator.
func Key(prefix, token string) string {
	if prefix == "" {
		return token
	}

	return prefix + "." + token
}

// TrimKey returns the token after prefix, or false if key is not under prefix.
func TrimKey(prefix, key string) (string, bool) {
	if prefix == "" {
		return key, !strings.Contains(key, ".")
	}

	token, ok := strings.CutPrefix(key, prefix+".")
	if !ok || token == "" || strings.Contains(token, ".") {
		return "", false
	}

	return token, true
}
