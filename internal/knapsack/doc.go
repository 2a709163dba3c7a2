// Package knapsack solves the 0/1 knapsack problem with a bottom-up dynamic
// programming table and records a replayable trace of the fill: a start step,
// one snapshot per computed cell in row-major order, and a final step after
// backtracking. Every snapshot is a deep copy of the table at that instant, so
// a viewer can move through the steps in any order.
//
// When include and exclude values tie, the exclude branch wins. Backtracking
// therefore reports the subset implied by that rule when several optima exist.
package knapsack
