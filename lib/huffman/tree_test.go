// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"testing"
)

func TestBuildTreeRootWeight(t *testing.T) {
	table := Count([]byte("aaabbc"))
	root, err := BuildTree(table)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if root.Weight != 6 {
		t.Errorf("root weight: got %d, want 6", root.Weight)
	}
	if root.Leaf {
		t.Error("root of a three-symbol tree is a leaf")
	}
}

func TestBuildTreeSingleSymbol(t *testing.T) {
	root, err := BuildTree(FrequencyTable{'x': 5})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if !root.Leaf {
		t.Fatal("single-symbol tree root is not a leaf")
	}
	if root.Symbol != 'x' || root.Weight != 5 {
		t.Errorf("root: got symbol %q weight %d, want symbol 'x' weight 5", root.Symbol, root.Weight)
	}
}

func TestBuildTreeEmptyTable(t *testing.T) {
	_, err := BuildTree(FrequencyTable{})
	if !IsInvalidInput(err) {
		t.Errorf("empty table: got %v, want invalid-input error", err)
	}
}

func TestBuildTreeRejectsNonPositiveCounts(t *testing.T) {
	for _, count := range []int{0, -1} {
		_, err := BuildTree(FrequencyTable{'a': count})
		if !IsInvalidInput(err) {
			t.Errorf("count %d: got %v, want invalid-input error", count, err)
		}
	}
}

func TestBuildTreeInternalNodesHaveTwoChildren(t *testing.T) {
	root, err := BuildTree(Count([]byte("the quick brown fox jumps over the lazy dog")))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	var check func(node *Node)
	check = func(node *Node) {
		if node.Leaf {
			if node.Left != nil || node.Right != nil {
				t.Errorf("leaf %q has children", node.Symbol)
			}
			return
		}
		if node.Left == nil || node.Right == nil {
			t.Fatalf("internal node with weight %d is missing a child", node.Weight)
		}
		if node.Weight != node.Left.Weight+node.Right.Weight {
			t.Errorf("internal weight %d != %d + %d", node.Weight, node.Left.Weight, node.Right.Weight)
		}
		check(node.Left)
		check(node.Right)
	}
	check(root)
}

func TestBuildTreeTieBreakIsStable(t *testing.T) {
	// Four symbols with identical weights. The merge order is fully
	// determined by insertion sequence: a+b merge first, then c+d,
	// then the two pairs.
	table := FrequencyTable{'a': 1, 'b': 1, 'c': 1, 'd': 1}
	root, err := BuildTree(table)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	codes := BuildCodes(root)
	want := CodeTable{'a': "00", 'b': "01", 'c': "10", 'd': "11"}
	for symbol, code := range want {
		if codes[symbol] != code {
			t.Errorf("code for %q: got %q, want %q", symbol, codes[symbol], code)
		}
	}
}

func TestBuildTreeDeterministic(t *testing.T) {
	data := []byte("mississippi river basin")
	first, err := BuildTree(Count(data))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	second, err := BuildTree(Count(data))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	var compare func(a, b *Node) bool
	compare = func(a, b *Node) bool {
		if a == nil || b == nil {
			return a == b
		}
		if a.Leaf != b.Leaf || a.Weight != b.Weight || (a.Leaf && a.Symbol != b.Symbol) {
			return false
		}
		return compare(a.Left, b.Left) && compare(a.Right, b.Right)
	}
	if !compare(first, second) {
		t.Error("two builds over the same input produced different tree shapes")
	}
}
