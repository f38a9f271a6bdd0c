// Package dataset provides the in-memory tabular model shared by the
// pipeline stages.
//
// Raw government exports have no fixed schema, so a Table keeps an ordered
// column list plus rows of loosely-typed cells. Cells are optional Values:
// an absent cell is distinct from an empty string and from zero, which lets
// the cleaning stages tell "no prior data" apart from "no change" until the
// table is materialized to CSV.
package dataset
