// Package axtree extracts the visible text of an accessibility snapshot.
package axtree

import (
	"strings"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// CollectText walks the snapshot depth-first in pre-order and returns every
// non-blank text and description label, duplicates included, in traversal
// order. Labels are returned verbatim; normalization is the classifiers'
// concern. A nil root is a valid "nothing to classify" state and yields an
// empty sequence.
func CollectText(root *model.SnapshotNode) []string {
	if root == nil {
		return nil
	}
	out := make([]string, 0, 16)
	var walk func(n *model.SnapshotNode)
	walk = func(n *model.SnapshotNode) {
		if n == nil {
			return
		}
		if strings.TrimSpace(n.Text) != "" {
			out = append(out, n.Text)
		}
		if strings.TrimSpace(n.Desc) != "" {
			out = append(out, n.Desc)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}
