package recon

// value.go defines the tagged scalar stored in every dataset cell.
//
// Cells arrive from spreadsheet or delimited-text ingestion as strings,
// numbers, or nothing at all. Value keeps that distinction so the normalizer
// can coerce each side the same way the user saw it in the source file:
//
//   - KindEmpty:  null, absent, or never set
//   - KindString: text exactly as supplied (may be "")
//   - KindNumber: decimal of arbitrary precision, decoded from its literal text

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies which scalar a Value holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "empty"
	}
}

// numericRegex validates that a trimmed string is a plain decimal literal.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxExponent bounds the decimal exponent of a numeric cell. Rescaling or
// printing a decimal costs time linear in its exponent, so "1e30000000" would
// otherwise take seconds per comparison.
const maxExponent = 1000

// errExponentRange is returned for numbers outside ±1e1000.
var errExponentRange = fmt.Errorf("exponent out of range (max %d)", maxExponent)

// exponentInRange reports whether d can be compared and printed cheaply.
func exponentInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent
}

// Value is a single cell. The zero Value is empty.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
}

// Empty returns the empty Value.
func Empty() Value { return Value{} }

// Text returns a string Value.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric Value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Int returns a numeric Value for an integer.
func Int(i int64) Value { return Number(decimal.NewFromInt(i)) }

// MustNumber parses s as a decimal literal and panics on failure.
// Intended for fixtures and tests.
func MustNumber(s string) Value {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("recon: invalid number %q: %v", s, err))
	}
	return Number(d)
}

// Kind reports which scalar v holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is null/absent.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsBlank reports whether v is empty or a string containing only whitespace.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindEmpty:
		return true
	case KindString:
		return stripWhitespace(v.str) == ""
	default:
		return false
	}
}

// String coerces v to text: empty becomes "", numbers use their shortest
// decimal form ("1.50" becomes "1.5").
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	default:
		return ""
	}
}

// Decimal returns the numeric reading of v.
// Numbers are returned as-is; strings are parsed after trimming.
// ok is false for empty values and non-numeric text.
func (v Value) Decimal() (d decimal.Decimal, ok bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return parseDecimal(v.str)
	default:
		return decimal.Decimal{}, false
	}
}

// Equal reports whether v and o hold the same kind and the same content.
// Numbers compare by value, so 1.50 equals 1.5.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num.Equal(o.num)
	default:
		return true
	}
}

// truthy mirrors the falsy set of loosely-typed sources: empty, "" and 0.
func (v Value) truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return !v.num.IsZero()
	default:
		return false
	}
}

// MarshalJSON encodes empty as null, strings as JSON strings and numbers as
// JSON numbers without float rounding.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Booleans become their text form;
// arrays and objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case 'n':
		*v = Value{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		if b {
			*v = Text("true")
		} else {
			*v = Text("false")
		}
		return nil
	case '{', '[':
		return fmt.Errorf("cell value must be a scalar, got %s", kindOfJSON(data[0]))
	default:
		d, err := parseNumberLiteral(string(data))
		if err != nil {
			return err
		}
		*v = Number(d)
		return nil
	}
}

// UnmarshalYAML accepts the same scalars as JSON so fixtures can be written
// in either format.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return v.fromAny(raw)
}

func (v *Value) fromAny(raw any) error {
	switch x := raw.(type) {
	case nil:
		*v = Value{}
	case string:
		*v = Text(x)
	case bool:
		if x {
			*v = Text("true")
		} else {
			*v = Text("false")
		}
	case int:
		*v = Int(int64(x))
	case int64:
		*v = Int(x)
	case uint64:
		*v = Number(decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0))
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return fmt.Errorf("invalid number %v", x)
		}
		*v = Number(decimal.NewFromFloat(x))
	case json.Number:
		d, err := parseNumberLiteral(x.String())
		if err != nil {
			return err
		}
		*v = Number(d)
	case decimal.Decimal:
		*v = Number(x)
	default:
		return fmt.Errorf("cell value must be a scalar, got %T", raw)
	}
	return nil
}

func kindOfJSON(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

// parseNumberLiteral parses a JSON number literal within the exponent bound.
func parseNumberLiteral(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %s: %w", s, err)
	}
	if !exponentInRange(d) {
		return decimal.Decimal{}, fmt.Errorf("invalid number %.40s: %w", s, errExponentRange)
	}
	return d, nil
}

// parseDecimal parses trimmed text as a plain decimal literal. Text whose
// exponent is out of range stays text.
func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !exponentInRange(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}
