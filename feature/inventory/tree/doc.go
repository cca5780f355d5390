// Package tree builds the aggregated occupancy view over a device's
// persisted directories.
//
// A device's flat set of directory paths is folded into a nested tree keyed
// by filesystem path segments, so /home/a/b becomes the child of /home/a.
// Intermediate segments that exist only as path components get synthetic
// nodes with zero direct stats. Every node carries both its direct file
// count and cumulative size, and the recursive rollups over all descendants,
// computed bottom-up in a single post-order pass.
//
// The tree is rebuilt fresh on every request and never persisted.
package tree
