// Package node contains the singly-linked chain utilities that back bag.Bag.
//
// A chain is a run of *Node values reachable from a head pointer; a nil head is
// the empty chain. Every node is owned by exactly one chain position, so the
// copy helpers always allocate fresh nodes and never share a node between two
// chains.
//
// Highlights:
// - ListCopy: deep copy of a chain, order preserved
// - ListCopyWithTail: deep copy plus the last copied node, for O(1) splicing
// - ListSearch: first node at or after head holding a value
// - ListPosition: node at a 1-based position
// - ListLength: number of nodes reachable from head
package node
