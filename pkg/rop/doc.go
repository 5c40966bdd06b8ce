// Package rop holds Result, the outcome value passed along the railway-style
// helpers in package solo. A Result is exactly one of success (with a value),
// failure (with an error) or cancel (with the context error that stopped it).
// Each Result carries a uuid and its UTC creation time so reports can refer to
// individual outcomes.
package rop
