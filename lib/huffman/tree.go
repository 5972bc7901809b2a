// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"container/heap"
	"fmt"
)

// Node is one node of a code tree. Leaves carry a symbol; internal
// nodes carry exactly two children. Weight is the occurrence count
// for leaves and the sum of the children's weights for internal
// nodes. Trees are transient: they exist between BuildTree and
// BuildCodes and are not part of any persisted format.
type Node struct {
	Symbol byte
	Leaf   bool
	Weight int
	Left   *Node
	Right  *Node
}

// heapEntry pairs a node with its insertion sequence number. The
// sequence number breaks weight ties, which is what makes tree shape
// — and therefore code assignment and packed output — deterministic
// across runs and platforms.
type heapEntry struct {
	node *Node
	seq  int
}

// nodeHeap is a min-heap over (weight, insertion sequence).
type nodeHeap []heapEntry

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].node.Weight != h[j].node.Weight {
		return h[i].node.Weight < h[j].node.Weight
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(heapEntry)) }

func (h *nodeHeap) Pop() any {
	old := *h
	last := len(old) - 1
	entry := old[last]
	*h = old[:last]
	return entry
}

// BuildTree constructs the code tree for a non-empty frequency table.
//
// Leaves enter the heap in ascending symbol order. The merge loop
// extracts the two lightest nodes (first extracted becomes the left
// child, second the right), pushes their parent, and repeats until one
// node remains. A table with a single symbol yields that lone leaf as
// the root — no merge runs.
//
// An empty table or a non-positive count is an invalid-input error:
// frequency tables built by [Count] never contain either, but tables
// arriving from the visualizer surface are client data.
func BuildTree(table FrequencyTable) (*Node, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty frequency table", ErrInvalidInput)
	}

	pending := make(nodeHeap, 0, len(table))
	sequence := 0
	for symbol := 0; symbol < 256; symbol++ {
		count, present := table[byte(symbol)]
		if !present {
			continue
		}
		if count <= 0 {
			return nil, fmt.Errorf("%w: symbol 0x%02x has count %d", ErrInvalidInput, symbol, count)
		}
		pending = append(pending, heapEntry{
			node: &Node{Symbol: byte(symbol), Leaf: true, Weight: count},
			seq:  sequence,
		})
		sequence++
	}
	// Entries were appended in (weight-unordered, seq-ordered) form;
	// establish the heap invariant in one pass.
	heap.Init(&pending)

	for pending.Len() > 1 {
		left := heap.Pop(&pending).(heapEntry)
		right := heap.Pop(&pending).(heapEntry)
		heap.Push(&pending, heapEntry{
			node: &Node{
				Weight: left.node.Weight + right.node.Weight,
				Left:   left.node,
				Right:  right.node,
			},
			seq: sequence,
		})
		sequence++
	}

	return pending[0].node, nil
}
