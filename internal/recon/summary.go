package recon

import "strings"

// Summary counts results per bucket.
type Summary struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	Missing    int `json:"missing"`
	Duplicate  int `json:"duplicate"`
	Verified   int `json:"verified"`
}

// Summarize tallies results. Verified is counted independently of status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status.Category() {
		case CategoryMatch:
			s.Matched++
		case CategoryMismatch:
			s.Mismatched++
		case CategoryMissing:
			s.Missing++
		case CategoryDuplicate:
			s.Duplicate++
		}
		if r.IsVerified {
			s.Verified++
		}
	}
	return s
}

// Filter selects results by bucket and key search.
type Filter struct {
	Category Category
	// Search is matched case-insensitively as a substring of the key.
	Search string
}

// Matches reports whether r passes f.
func (f Filter) Matches(r Result) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Key), strings.ToLower(f.Search)) {
		return false
	}
	switch f.Category {
	case "", CategoryAll:
		return true
	case CategoryVerified:
		return r.IsVerified
	default:
		return r.Status.Category() == f.Category
	}
}

// FilterResults returns the results passing f, preserving order.
func FilterResults(results []Result, f Filter) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
