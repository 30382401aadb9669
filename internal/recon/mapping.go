package recon

import (
	"errors"
	"fmt"
	"strings"
)

// DuplicateStrategy selects how rows sharing a key within one dataset are
// resolved before the two sides are compared.
type DuplicateStrategy string

const (
	// Overwrite keeps the last row seen for each key.
	Overwrite DuplicateStrategy = "OVERWRITE"
	// Sum merges rows by summing numeric value fields.
	Sum DuplicateStrategy = "SUM"
	// Flag keeps every row and reports the key as duplicated.
	Flag DuplicateStrategy = "FLAG"
)

// DefaultStrategy is used when a mapping leaves DuplicateHandling unset.
const DefaultStrategy = Flag

// ErrUnknownStrategy is returned by ParseStrategy for unrecognized names.
var ErrUnknownStrategy = errors.New("unknown duplicate strategy")

// Valid reports whether s is one of the known strategies.
func (s DuplicateStrategy) Valid() bool {
	switch s {
	case Overwrite, Sum, Flag:
		return true
	}
	return false
}

// ParseStrategy parses a strategy name case-insensitively.
// An empty name yields DefaultStrategy.
func ParseStrategy(name string) (DuplicateStrategy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultStrategy, nil
	}
	s := DuplicateStrategy(strings.ToUpper(name))
	if !s.Valid() {
		return "", fmt.Errorf("%w %q (want OVERWRITE, SUM or FLAG)", ErrUnknownStrategy, name)
	}
	return s, nil
}

// ColumnPair links a master column to the comparison column it is diffed against.
type ColumnPair struct {
	Master     string `json:"master" yaml:"master"`
	Comparison string `json:"comparison" yaml:"comparison"`
}

// DisplayName is the label used for the pair in diffs: "<master> / <comparison>".
func (p ColumnPair) DisplayName() string {
	return p.Master + " / " + p.Comparison
}

// MappingConfig describes how two datasets line up.
type MappingConfig struct {
	MasterKey          string            `json:"masterKey" yaml:"masterKey"`
	ComparisonKey      string            `json:"comparisonKey" yaml:"comparisonKey"`
	ValueColumns       []ColumnPair      `json:"valueColumns" yaml:"valueColumns"`
	TreatMissingAsZero bool              `json:"treatMissingAsZero" yaml:"treatMissingAsZero"`
	IgnoreWhitespace   bool              `json:"ignoreWhitespace" yaml:"ignoreWhitespace"`
	DuplicateHandling  DuplicateStrategy `json:"duplicateHandling" yaml:"duplicateHandling"`
}

// Strategy returns the configured duplicate strategy, or DefaultStrategy if unset.
func (m MappingConfig) Strategy() DuplicateStrategy {
	if m.DuplicateHandling == "" {
		return DefaultStrategy
	}
	return m.DuplicateHandling
}

// CompareOptions returns the options used when diffing value columns.
func (m MappingConfig) CompareOptions() CompareOptions {
	return CompareOptions{
		TreatMissingAsZero: m.TreatMissingAsZero,
		IgnoreWhitespace:   m.IgnoreWhitespace,
	}
}

// MasterFields lists the master side of every value column pair, in order.
func (m MappingConfig) MasterFields() []string {
	fields := make([]string, len(m.ValueColumns))
	for i, p := range m.ValueColumns {
		fields[i] = p.Master
	}
	return fields
}

// ComparisonFields lists the comparison side of every value column pair, in order.
func (m MappingConfig) ComparisonFields() []string {
	fields := make([]string, len(m.ValueColumns))
	for i, p := range m.ValueColumns {
		fields[i] = p.Comparison
	}
	return fields
}

// ValidationError represents a single problem with a mapping.
type ValidationError struct {
	Field   string // Mapping field, e.g. "valueColumns[1].comparison"
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every problem found in one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "invalid mapping: " + strings.Join(msgs, "; ")
}

// Validate checks the structural invariants of m: both keys named, at least
// one value column, every pair fully named and a known strategy.
//
// Reconcile does not call Validate; callers run it before invoking the engine.
func (m MappingConfig) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(m.MasterKey) == "" {
		errs = append(errs, ValidationError{Field: "masterKey", Message: "is required"})
	}
	if strings.TrimSpace(m.ComparisonKey) == "" {
		errs = append(errs, ValidationError{Field: "comparisonKey", Message: "is required"})
	}
	if len(m.ValueColumns) == 0 {
		errs = append(errs, ValidationError{Field: "valueColumns", Message: "at least one value column is required"})
	}
	for i, p := range m.ValueColumns {
		if strings.TrimSpace(p.Master) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("valueColumns[%d].master", i), Message: "is required"})
		}
		if strings.TrimSpace(p.Comparison) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("valueColumns[%d].comparison", i), Message: "is required"})
		}
	}
	if m.DuplicateHandling != "" && !m.DuplicateHandling.Valid() {
		errs = append(errs, ValidationError{
			Field:   "duplicateHandling",
			Message: fmt.Sprintf("unknown strategy %q", m.DuplicateHandling),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateHeaders checks that every column m references exists in the
// respective header set. Names must match exactly.
func (m MappingConfig) ValidateHeaders(masterHeaders, comparisonHeaders []string) error {
	master := headerSet(masterHeaders)
	comparison := headerSet(comparisonHeaders)

	var errs ValidationErrors
	if m.MasterKey != "" && !master[m.MasterKey] {
		errs = append(errs, ValidationError{Field: "masterKey", Message: fmt.Sprintf("column not found in master dataset: %q", m.MasterKey)})
	}
	if m.ComparisonKey != "" && !comparison[m.ComparisonKey] {
		errs = append(errs, ValidationError{Field: "comparisonKey", Message: fmt.Sprintf("column not found in comparison dataset: %q", m.ComparisonKey)})
	}
	for i, p := range m.ValueColumns {
		if p.Master != "" && !master[p.Master] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("valueColumns[%d].master", i),
				Message: fmt.Sprintf("column not found in master dataset: %q", p.Master),
			})
		}
		if p.Comparison != "" && !comparison[p.Comparison] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("valueColumns[%d].comparison", i),
				Message: fmt.Sprintf("column not found in comparison dataset: %q", p.Comparison),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func headerSet(headers []string) map[string]bool {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[h] = true
	}
	return set
}
