// Command roster is the operator CLI for the roster scheduler.
//
// Subcommands:
//
//	roster plan scenario.yaml      recompute offline from a YAML scenario
//	roster show [--worker id]      print the persisted assignment
//	roster run --partitions 1,2    run a coordinator until interrupted
//	roster heartbeat --worker id   announce a worker until interrupted
//	roster config dump file.yaml   write the default configuration
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
