package recon

import "strings"

// Status classifies one key of a reconciliation.
type Status string

const (
	StatusMatch                 Status = "MATCH"
	StatusMismatch              Status = "MISMATCH"
	StatusMissingInMaster       Status = "MISSING_IN_MASTER"
	StatusMissingInComparison   Status = "MISSING_IN_COMPARISON"
	StatusDuplicateInMaster     Status = "DUPLICATE_IN_MASTER"
	StatusDuplicateInComparison Status = "DUPLICATE_IN_COMPARISON"
)

// Category groups statuses the way the results view filters them.
type Category string

const (
	CategoryAll       Category = "ALL"
	CategoryMatch     Category = "MATCH"
	CategoryMismatch  Category = "MISMATCH"
	CategoryMissing   Category = "MISSING"
	CategoryDuplicate Category = "DUPLICATE"
	CategoryVerified  Category = "VERIFIED"
)

// Category returns the bucket s belongs to.
func (s Status) Category() Category {
	switch s {
	case StatusMatch:
		return CategoryMatch
	case StatusMismatch:
		return CategoryMismatch
	case StatusMissingInMaster, StatusMissingInComparison:
		return CategoryMissing
	case StatusDuplicateInMaster, StatusDuplicateInComparison:
		return CategoryDuplicate
	}
	return ""
}

// ParseCategory parses a filter name case-insensitively. Empty means ALL.
func ParseCategory(name string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(name)))
	switch c {
	case "":
		return CategoryAll, true
	case CategoryAll, CategoryMatch, CategoryMismatch, CategoryMissing, CategoryDuplicate, CategoryVerified:
		return c, true
	}
	return "", false
}

// Diff compares one value column pair for a key present on both sides.
type Diff struct {
	ColumnName      string `json:"columnName"`
	MasterValue     Value  `json:"masterValue"`
	ComparisonValue Value  `json:"comparisonValue"`
	IsMatch         bool   `json:"isMatch"`
}

// Result is the classification of a single key.
//
// IsVerified belongs to the reviewer: Reconcile sets it to false and never
// reads it afterwards.
type Result struct {
	Key           string `json:"key"`
	Status        Status `json:"status"`
	MasterRow     Row    `json:"masterRow,omitempty"`
	ComparisonRow Row    `json:"comparisonRow,omitempty"`
	Diffs         []Diff `json:"diffs"`
	IsVerified    bool   `json:"isVerified"`
	DuplicateRows []Row  `json:"duplicateRows,omitempty"`
}

// Mismatches returns the diffs that did not match.
func (r Result) Mismatches() []Diff {
	var out []Diff
	for _, d := range r.Diffs {
		if !d.IsMatch {
			out = append(out, d)
		}
	}
	return out
}
