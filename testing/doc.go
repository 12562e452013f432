// Package testing holds helpers for tests that need a real NATS server.
//
// Import it under an alias from _test.go files, the same way net/http/httptest
// is used:
//
//	import rostertest "github.com/arloliu/roster/testing"
//
//	func TestStore(t *testing.T) {
//	    _, nc := rostertest.StartEmbeddedNATS(t)
//	    kv := rostertest.CreateJetStreamKV(t, nc, "roster-assignment")
//	    st := store.NewKV(kv)
//	    // ...
//	}
//
// The server, connection and temporary store directory are released through
// t.Cleanup.
package testing
