// Package recommend ranks catalog recipes for a single user by how many of
// their required ingredients the user already owns.
//
// A recipe is eligible when it has at least one requirement and none of its
// ingredients is restricted for the user. Eligible recipes are scored with a
// viability score (v_score), the percentage of distinct required ingredients
// present in the pantry rounded to two decimals, and listed in descending
// score order. Quantities and units are ignored.
//
// Compute is a pure function over a Snapshot. Engine loads the Snapshot
// through a DataProvider and has no state of its own.
package recommend
