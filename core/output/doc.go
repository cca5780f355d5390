// Package output defines the message sink used by the dump loader to report
// progress and failures.
//
// # Severity Contract
//
// Debug, Info, Warning and Error are informational and never interrupt
// processing. Critical is different: it records the error and returns it, and
// every caller is expected to abort the enclosing operation with that error.
//
// # Implementations
//
//   - ZapSink: production sink backed by a zap logger.
//   - Recorder: test sink capturing (level, message) tuples.
package output
