// Package script runs bag scripts: YAML files listing bag operations against
// named bags.
//
//	name: demo
//	steps:
//	  - {op: add, bag: a, values: [5, 3, 5]}
//	  - {op: count, bag: a, value: 5, expect: 2}
//	  - {op: union, bag: c, from: [a, b]}
//
// Parse and Load decode and validate a Script. A Runner executes it step by
// step and returns a Report holding one rop.Result[Outcome] per step. Steps
// with an expect or expect_found field fail when the observed value differs.
//
// Bags are created on first use as a write target (add, add_all, clone,
// union). Reading a bag that was never written is ErrUnknownBag.
package script
