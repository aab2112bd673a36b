// Package assembler converts the flat, ordered segment stream of one X12
// transaction into a nested loop tree matching a declarative loop schema.
package assembler

import (
	"strings"

	"github.com/c360/edistreams/x12"
)

// Loop is one node of an assembled document tree: a logical grouping of
// member segments and nested child loops. Ownership is strictly tree-shaped;
// a loop belongs to exactly one parent, and a node is closed (bounds checked
// and validated) before its parent ever sees it.
type Loop struct {
	// ID is the schema loop identifier, e.g. "2300".
	ID string
	// Segments holds the loop's member segments in arrival order.
	Segments []x12.Segment
	// Children holds the nested loops in arrival order.
	Children []*Loop
}

// SegmentsNamed returns the member segments with the given name, in arrival
// order.
func (l *Loop) SegmentsNamed(name string) []x12.Segment {
	var out []x12.Segment
	for _, seg := range l.Segments {
		if strings.EqualFold(seg.Name(), name) {
			out = append(out, seg)
		}
	}
	return out
}

// First returns the first member segment with the given name.
func (l *Loop) First(name string) (x12.Segment, bool) {
	for _, seg := range l.Segments {
		if strings.EqualFold(seg.Name(), name) {
			return seg, true
		}
	}
	return nil, false
}

// ChildrenByID returns the direct child loops with the given schema ID.
func (l *Loop) ChildrenByID(id string) []*Loop {
	var out []*Loop
	for _, child := range l.Children {
		if child.ID == id {
			out = append(out, child)
		}
	}
	return out
}

// Descendants returns every loop with the given schema ID in the subtree
// rooted at l, depth-first in document order. l itself is included when it
// matches.
func (l *Loop) Descendants(id string) []*Loop {
	var out []*Loop
	l.walk(func(node *Loop) {
		if node.ID == id {
			out = append(out, node)
		}
	})
	return out
}

// SegmentCount returns the total number of member segments in the subtree.
func (l *Loop) SegmentCount() int {
	count := 0
	l.walk(func(node *Loop) {
		count += len(node.Segments)
	})
	return count
}

func (l *Loop) walk(fn func(*Loop)) {
	fn(l)
	for _, child := range l.Children {
		child.walk(fn)
	}
}
