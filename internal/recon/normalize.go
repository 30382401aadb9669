package recon

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CompareOptions controls how two value cells are judged equal.
type CompareOptions struct {
	// TreatMissingAsZero coerces blank cells to 0 and compares numerically
	// when both sides read as numbers.
	TreatMissingAsZero bool

	// IgnoreWhitespace is carried from the mapping but does not change value
	// diffing: whitespace is always stripped before comparison.
	IgnoreWhitespace bool
}

// isSpace matches the Unicode White_Space set plus the zero-width no-break
// space, which spreadsheet exports leave behind as a stray BOM.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// stripWhitespace removes every whitespace rune from s.
func stripWhitespace(s string) string {
	if strings.IndexFunc(s, isSpace) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKey converts a key cell to the string rows are grouped by.
//
// All whitespace is removed regardless of IgnoreWhitespace, so " 1001 " and
// "10 01" both normalize to "1001". Falsy cells (empty, "" and numeric 0)
// normalize to "", which marks the row as unkeyed.
func NormalizeKey(v Value) string {
	if !v.truthy() {
		return ""
	}
	return stripWhitespace(v.String())
}

// ValuesEqual reports whether a master cell and a comparison cell match.
func ValuesEqual(master, comparison Value, opts CompareOptions) bool {
	if opts.TreatMissingAsZero {
		m, c := coerceMissingAsZero(master), coerceMissingAsZero(comparison)
		md, mok := m.Decimal()
		cd, cok := c.Decimal()
		if mok && cok {
			return md.Equal(cd)
		}
		return stripWhitespace(m.String()) == stripWhitespace(c.String())
	}
	return stripWhitespace(master.String()) == stripWhitespace(comparison.String())
}

// coerceMissingAsZero maps blank cells to numeric 0 and numeric text to a
// number. Anything else is returned unchanged.
func coerceMissingAsZero(v Value) Value {
	if v.IsBlank() {
		return Number(decimal.Zero)
	}
	if d, ok := v.Decimal(); ok {
		return Number(d)
	}
	return v
}
