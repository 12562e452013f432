// Package integration holds end-to-end roster tests against an embedded NATS
// server. They run with the integration build tag:
//
//	go test -tags integration ./test/integration/...
package integration
