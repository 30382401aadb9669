package recon

import (
	"maps"
	"slices"
)

// Row maps a column name to its cell. Column sets are only known once the
// user picks a header row, so rows are open-ended maps rather than structs.
//
// Rows are treated as immutable: the resolver clones before merging.
type Row map[string]Value

// Get returns the cell for col, or the empty Value if the column is absent.
func (r Row) Get(col string) Value {
	return r[col]
}

// Clone returns a shallow copy of r. Values are immutable so a shallow copy
// is sufficient.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Columns returns the column names of r in sorted order.
func (r Row) Columns() []string {
	return slices.Sorted(maps.Keys(r))
}

// Equal reports whether r and o have the same columns with equal cells.
// An absent column and an explicit empty cell are considered equal.
func (r Row) Equal(o Row) bool {
	for col, v := range r {
		if !v.Equal(o[col]) {
			return false
		}
	}
	for col, v := range o {
		if _, ok := r[col]; !ok && !v.IsEmpty() {
			return false
		}
	}
	return true
}

// HeadersOf returns the sorted union of column names across rows.
func HeadersOf(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			seen[col] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
