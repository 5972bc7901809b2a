// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import "fmt"

// TreeView is the read-only visualization projection of a code tree.
// The JSON shape is the wire contract of the visualizer surface:
// nested nodes with a display name, the literal symbol (null for
// internal nodes), the weight, and the "0"/"1" edge label on every
// non-root node. Consumers feed it directly to hierarchy renderers.
type TreeView struct {
	// Name is the display label: the symbol and its weight for
	// leaves, a bullet and the weight for internal nodes.
	Name string `json:"name"`

	// Char is the one-rune string form of a leaf's symbol, null for
	// internal nodes.
	Char *string `json:"char"`

	Freq   int  `json:"freq"`
	IsLeaf bool `json:"is_leaf"`

	// EdgeLabel is "0" or "1" on the edge from the parent, absent on
	// the root.
	EdgeLabel string `json:"edge_label,omitempty"`

	// Children holds the left child (edge "0") then the right (edge
	// "1"); absent on leaves.
	Children []*TreeView `json:"children,omitempty"`
}

// NewTreeView projects a code tree into its visualization form.
// Returns nil for a nil root.
func NewTreeView(root *Node) *TreeView {
	if root == nil {
		return nil
	}
	return buildTreeView(root, "")
}

func buildTreeView(node *Node, edgeLabel string) *TreeView {
	view := &TreeView{
		Freq:      node.Weight,
		IsLeaf:    node.Leaf,
		EdgeLabel: edgeLabel,
	}
	if node.Leaf {
		symbol := string(rune(node.Symbol))
		view.Char = &symbol
		view.Name = fmt.Sprintf("%s\n(%d)", symbol, node.Weight)
		return view
	}
	view.Name = fmt.Sprintf("●\n(%d)", node.Weight)
	view.Children = []*TreeView{
		buildTreeView(node.Left, "0"),
		buildTreeView(node.Right, "1"),
	}
	return view
}

// Walk visits every node of the view depth-first, parents before
// children, calling visit with the node and its depth. For consumers
// that enumerate nodes without caring about the nesting itself.
func (v *TreeView) Walk(visit func(node *TreeView, depth int)) {
	v.walk(visit, 0)
}

func (v *TreeView) walk(visit func(node *TreeView, depth int), depth int) {
	visit(v, depth)
	for _, child := range v.Children {
		child.walk(visit, depth+1)
	}
}
