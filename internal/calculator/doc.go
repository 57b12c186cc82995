// Package calculator holds the pure formulas behind the calculators: subscription
// score, acquisition tax, holding tax, area conversion and the winning-chance
// heuristic. Functions here have no I/O and no shared state.
//
// Monetary inputs are in units of 10,000 won and converted to won before any
// bracket is applied. Tax amounts are floored to whole won after each step, in
// the same order as the published calculator, so results match it exactly.
package calculator
