// Package loader implements the reconciliation engine turning a device dump
// into minimal create/update operations against the persisted inventory.
//
// # Reconciliation Flow
//
// Load validates the device slug, gets or creates the device, opens the
// dump and processes every registry entry. For each directory the engine
// looks up the persisted row, then applies checksum gated eligibility: a
// directory whose stored checksum equals the incoming one is skipped
// entirely, making re-runs over unchanged dumps cheap. A directory path
// appearing twice in one registry is fatal. Eligible directories have their
// child file entries partitioned into creation and edition sets by a single
// batched existence lookup, followed by bulk writes.
//
// # Atomicity
//
// Each directory's writes, including the insert of a brand new directory
// row, run inside one transaction: a uniqueness violation aborts that whole
// batch while directories processed earlier in the pass stay committed.
// Every media file written during one pass shares the same loaded date.
//
// # Failure Surface
//
// Fatal conditions (validation, format, integrity) are reported through the
// output sink at critical severity and returned; informational messages
// (progress counts, missing cover notices) never stop processing.
package loader
