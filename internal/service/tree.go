// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"sort"
)

// Node is one element of a tree built from flat rows.
type Node[T any] struct {
	Item     T
	Depth    int
	Children []*Node[T]
}

// TreeOf tells BuildTree how to read the rows.
type TreeOf[T any] struct {
	ID       func(T) int64
	Parent   func(T) sql.NullInt64
	Position func(T) int64
}

// BuildTree nests flat rows by parent id, siblings ordered by position
// then id. Rows whose parent is missing from the input are dropped along
// with their subtree, so filtered input (offline pages) hides descendants.
func BuildTree[T any](rows []T, of TreeOf[T]) []*Node[T] {
	nodes := make(map[int64]*Node[T], len(rows))
	for _, r := range rows {
		nodes[of.ID(r)] = &Node[T]{Item: r}
	}

	var roots []*Node[T]
	for _, r := range rows {
		n := nodes[of.ID(r)]
		p := of.Parent(r)
		if !p.Valid {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[p.Int64]; ok {
			parent.Children = append(parent.Children, n)
		}
	}

	var order func(list []*Node[T], depth int)
	order = func(list []*Node[T], depth int) {
		sort.SliceStable(list, func(i, j int) bool {
			pi, pj := of.Position(list[i].Item), of.Position(list[j].Item)
			if pi != pj {
				return pi < pj
			}
			return of.ID(list[i].Item) < of.ID(list[j].Item)
		})
		for _, n := range list {
			n.Depth = depth
			order(n.Children, depth+1)
		}
	}
	order(roots, 0)
	return roots
}

// Walk visits the tree depth first, parents before children.
func Walk[T any](roots []*Node[T], fn func(n *Node[T])) {
	for _, n := range roots {
		fn(n)
		Walk(n.Children, fn)
	}
}
