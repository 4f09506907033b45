// Package abtesting implements weighted variant assignment inside the
// growth-experiments context.
//
// A visitor is pinned to one variant per named experiment on first contact
// and the assignment is immutable afterwards. The module also records
// conversion signals, consumes purchase-completed events from the bus, and
// computes per-variant readouts with Wilson score intervals and a
// two-proportion z-test.
package abtesting
