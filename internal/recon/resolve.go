package recon

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// GroupedDataset maps normalized keys to the rows sharing them, keeping keys
// in the order they first appeared in the source.
//
// Under Overwrite and Sum every group holds exactly one row. Under Flag a
// group may hold several, which the reconciler reports as a duplicate key.
type GroupedDataset struct {
	keys   []string
	groups map[string][]Row
}

func newGroupedDataset() *GroupedDataset {
	return &GroupedDataset{groups: make(map[string][]Row)}
}

func (g *GroupedDataset) append(key string, row Row) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], row)
}

// Keys returns the keys in first-appearance order.
func (g *GroupedDataset) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Group returns the rows for key and whether the key is present.
func (g *GroupedDataset) Group(key string) ([]Row, bool) {
	rows, ok := g.groups[key]
	return rows, ok
}

// Has reports whether key is present.
func (g *GroupedDataset) Has(key string) bool {
	_, ok := g.groups[key]
	return ok
}

// Len returns the number of distinct keys.
func (g *GroupedDataset) Len() int {
	return len(g.keys)
}

// Duplicates returns the keys whose group holds more than one row.
func (g *GroupedDataset) Duplicates() []string {
	var dups []string
	for _, k := range g.keys {
		if len(g.groups[k]) > 1 {
			dups = append(dups, k)
		}
	}
	return dups
}

// KeyGroup is one key with its rows.
type KeyGroup struct {
	Key  string `json:"key"`
	Rows []Row  `json:"rows"`
}

// Groups returns every key with its rows, in first-appearance order.
func (g *GroupedDataset) Groups() []KeyGroup {
	out := make([]KeyGroup, len(g.keys))
	for i, k := range g.keys {
		out[i] = KeyGroup{Key: k, Rows: g.groups[k]}
	}
	return out
}

// MarshalJSON encodes the dataset as an ordered list of key groups.
func (g *GroupedDataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Groups())
}

// Resolve groups rows by their normalized keyField and applies strategy to
// every group. Rows with a blank key are dropped.
//
// Resolve never fails: non-numeric cells are skipped by Sum and duplicate
// keys under Flag are left for the reconciler to report. An unknown strategy
// behaves like Flag.
func Resolve(rows []Row, keyField string, valueFields []string, strategy DuplicateStrategy) *GroupedDataset {
	grouped := newGroupedDataset()
	for _, row := range rows {
		key := NormalizeKey(row.Get(keyField))
		if key == "" {
			continue
		}
		grouped.append(key, row)
	}

	switch strategy {
	case Overwrite:
		for _, k := range grouped.keys {
			group := grouped.groups[k]
			grouped.groups[k] = []Row{group[len(group)-1]}
		}
	case Sum:
		for _, k := range grouped.keys {
			group := grouped.groups[k]
			if len(group) == 1 {
				continue
			}
			grouped.groups[k] = []Row{sumRows(group, valueFields)}
		}
	}

	return grouped
}

// sumRows merges a group into a copy of its first row. Each value field
// becomes the sum of the numeric cells across the group; a field with no
// numeric cell keeps the first row's value.
func sumRows(rows []Row, valueFields []string) Row {
	merged := rows[0].Clone()
	for _, field := range valueFields {
		sum := decimal.Zero
		hasNumber := false
		for _, row := range rows {
			if d, ok := row.Get(field).Decimal(); ok {
				sum = sum.Add(d)
				hasNumber = true
			}
		}
		if hasNumber {
			merged[field] = Number(sum)
		}
	}
	return merged
}
