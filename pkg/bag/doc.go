// Package bag implements Bag, a multiset of ints backed by a singly-linked
// chain from package node.
//
// Every cross-bag operation works on deep copies: AddAll splices a fresh copy
// of the other bag's chain in front of this one, Clone copies every node, and
// Union builds a new bag from two AddAll calls. No node is ever shared between
// two bags.
//
// Remove swaps the head value into the removed slot and drops the head, so
// iteration order is not stable across removals. That is intentional.
//
// Grab samples uniformly through an injected Source; use WithRand or WithSeed
// for deterministic draws.
package bag
