// Package diff compares two successive snapshots of one watched category and
// reports what changed. Every function treats a missing previous snapshot as a
// seed: it reports nothing, because there is no baseline yet.
//
// Maps within a matchup are paired by their type tag and objectives by their id,
// so a reordered upstream list never produces spurious changes.
package diff
