// Package testutil provides shared assertions and generators for roster tests.
//
// The assertions check the scheduling invariants every assignment must hold
// (no double assignment, capacity limits, stickiness, maximal fill). The
// generators build reproducible random scenarios from a seed.
//
// For NATS server setup, use the github.com/arloliu/roster/testing package.
package testutil
