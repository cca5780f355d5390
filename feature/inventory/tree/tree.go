package tree

import (
	"context"
	"sort"
	"strings"

	"media-inventory/feature/inventory/models"

	"gorm.io/gorm"
)

// Node is one path segment of the aggregated directory hierarchy. Direct
// values cover the media files owned by the directory at that exact path,
// zero for synthetic intermediate segments. Recursive values add every
// descendant's recursive values. Children is omitted from JSON for leaves.
type Node struct {
	Path              string  `json:"path"`
	TotalFiles        int64   `json:"total_files"`
	TotalFilesize     int64   `json:"total_filesize"`
	RecursiveFiles    int64   `json:"recursive_files"`
	RecursiveFilesize int64   `json:"recursive_filesize"`
	Children          []*Node `json:"children,omitempty"`
}

// directoryStat is one row of the per-directory aggregate query.
type directoryStat struct {
	Path          string
	TotalFiles    int64
	TotalFilesize int64
}

// BuildTree folds the flat set of a device's persisted directory paths into a
// nested tree carrying recursive rollups, rooted at the shallowest common
// path segment. Returns nil when the device has no directories.
func BuildTree(ctx context.Context, db *gorm.DB, device *models.Device) (*Node, error) {
	var stats []directoryStat
	err := db.WithContext(ctx).
		Table("directories").
		Select("directories.path AS path, COUNT(media_files.id) AS total_files, COALESCE(SUM(media_files.filesize), 0) AS total_filesize").
		Joins("LEFT JOIN media_files ON media_files.directory_id = directories.id").
		Where("directories.device_id = ?", device.ID).
		Group("directories.id, directories.path").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return build(stats), nil
}

// build assembles the tree from flat per-path stats. Pass 1 inserts every
// path's ancestor chain into an index, creating synthetic zero-stat nodes for
// missing intermediate segments. Pass 2 computes the recursive aggregates
// bottom-up from cached children lists.
func build(stats []directoryStat) *Node {
	if len(stats) == 0 {
		return nil
	}

	index := make(map[string]*Node)

	for _, stat := range stats {
		node := insertChain(index, stat.Path)
		node.TotalFiles = stat.TotalFiles
		node.TotalFilesize = stat.TotalFilesize
	}

	root, ok := index[commonPrefix(stats)]
	if !ok {
		// No shared segment at all, group the top level nodes under a
		// synthetic filesystem root.
		root = &Node{Path: "/"}
		for path, node := range index {
			if parentOf(path) == "" {
				root.Children = append(root.Children, node)
			}
		}
	}
	sortChildren(root)
	rollup(root)

	return root
}

// insertChain creates the node for path and every missing ancestor, wiring
// parent/child links, and returns the node at path.
func insertChain(index map[string]*Node, path string) *Node {
	cleaned := "/" + strings.Trim(path, "/")
	if node, ok := index[cleaned]; ok {
		return node
	}

	node := &Node{Path: cleaned}
	index[cleaned] = node

	if parentPath := parentOf(cleaned); parentPath != "" {
		parent := insertChain(index, parentPath)
		parent.Children = append(parent.Children, node)
	}

	return node
}

func parentOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}

// commonPrefix returns the shallowest path segment shared by every stat
// entry, the root of the exported tree.
func commonPrefix(stats []directoryStat) string {
	segments := splitPath(stats[0].Path)
	for _, stat := range stats[1:] {
		other := splitPath(stat.Path)
		if len(other) < len(segments) {
			segments = segments[:len(other)]
		}
		for i := range segments {
			if segments[i] != other[i] {
				segments = segments[:i]
				break
			}
		}
	}
	return "/" + strings.Join(segments, "/")
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func sortChildren(node *Node) {
	sort.Slice(node.Children, func(i, j int) bool {
		return node.Children[i].Path < node.Children[j].Path
	})
	for _, child := range node.Children {
		sortChildren(child)
	}
}

// rollup computes the recursive totals through a single post-order
// traversal.
func rollup(node *Node) {
	node.RecursiveFiles = node.TotalFiles
	node.RecursiveFilesize = node.TotalFilesize
	for _, child := range node.Children {
		rollup(child)
		node.RecursiveFiles += child.RecursiveFiles
		node.RecursiveFilesize += child.RecursiveFilesize
	}
}
