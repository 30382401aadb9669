package core

// validation.go checks requests before they reach the engine.
//
// The engine trusts its mapping, so every column the mapping names must be
// confirmed against the datasets here. Validation happens at two levels:
//  1. Size: each side stays under the configured row limit
//  2. Mapping: structural checks, then header checks for each side

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/recon/internal/recon"
)

// ErrRequestTooLarge is returned when a dataset exceeds the row limit.
var ErrRequestTooLarge = errors.New("request too large")

// ErrInvalidResolveRequest is returned for an incomplete resolve preview.
var ErrInvalidResolveRequest = errors.New("invalid resolve request")

// checkRowLimit fails when rows exceeds max. A non-positive max disables the check.
func checkRowLimit(side string, rows, max int) error {
	if max > 0 && rows > max {
		return fmt.Errorf("%w: %s dataset has %d rows (max %d)", ErrRequestTooLarge, side, rows, max)
	}
	return nil
}

// validateReconcile applies the service defaults to req and checks it.
func (s *Service) validateReconcile(req *ReconcileRequest) error {
	if err := checkRowLimit("master", len(req.Master), s.opts.MaxRowsPerSide); err != nil {
		return err
	}
	if err := checkRowLimit("comparison", len(req.Comparison), s.opts.MaxRowsPerSide); err != nil {
		return err
	}

	if req.Mapping.DuplicateHandling == "" {
		req.Mapping.DuplicateHandling = s.opts.DefaultStrategy
	}
	if err := req.Mapping.Validate(); err != nil {
		return err
	}

	masterHeaders := headersFor(req.MasterHeaders, req.Master, req.Mapping.MasterKey, req.Mapping.MasterFields())
	comparisonHeaders := headersFor(req.ComparisonHeaders, req.Comparison, req.Mapping.ComparisonKey, req.Mapping.ComparisonFields())
	return req.Mapping.ValidateHeaders(masterHeaders, comparisonHeaders)
}

// headersFor picks the header set a side is validated against: the explicit
// header row, else the union of the rows' columns. A side with neither has
// nothing to check against, so the mapped columns are accepted as-is.
func headersFor(explicit []string, rows []recon.Row, key string, fields []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	if len(rows) > 0 {
		return recon.HeadersOf(rows)
	}
	return append([]string{key}, fields...)
}

// validateResolve checks a resolve preview and returns the parsed strategy.
func (s *Service) validateResolve(req ResolveRequest) (recon.DuplicateStrategy, error) {
	if err := checkRowLimit("input", len(req.Rows), s.opts.MaxRowsPerSide); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.KeyField) == "" {
		return "", fmt.Errorf("%w: keyField is required", ErrInvalidResolveRequest)
	}

	if strings.TrimSpace(req.Strategy) == "" {
		return s.opts.DefaultStrategy, nil
	}
	return recon.ParseStrategy(req.Strategy)
}
