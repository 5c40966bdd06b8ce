// Package solo contains single-value, synchronous ROP primitives that operate
// on Result[T]. The script runner uses them to move one bag step from input
// to outcome without nested error branches.
//
// Highlights:
// - Succeed/Fail/Cancel: construct Result[T]
// - Validate/AndValidate: fail a success when a check returns an error
// - Switch: move from Result[In] to Result[Out]
// - Try: call a function (Out, error) and convert error to failure
// - FailOnError: keep a success only if a check passes
// - Tee/DoubleTee: side-effect helpers
// - Finally: reduce to a concrete value via success/error/cancel handlers
package solo
