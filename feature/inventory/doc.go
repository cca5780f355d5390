// Package inventory exposes the persisted device inventory over HTTP.
//
// It provides read endpoints for devices, directories and media files, the
// aggregated occupancy tree, and the tree export endpoint running ad-hoc
// aggregation actions (ping, list-text, details-json, size-sum) over tree
// node shaped entries.
//
// The write path lives in the loader subpackage; this package never mutates
// the store.
package inventory
