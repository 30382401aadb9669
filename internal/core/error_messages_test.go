package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/recon/internal/recon"
)

func TestMapError(t *testing.T) {
	headerErr := recon.MappingConfig{
		MasterKey:     "emp",
		ComparisonKey: "emp",
		ValueColumns:  []recon.ColumnPair{{Master: "ot", Comparison: "ot"}},
	}.ValidateHeaders([]string{"emp"}, []string{"emp", "ot"})

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"structural mapping error", recon.MappingConfig{}.Validate(), "MAP001"},
		{"unknown column wins over invalid mapping", headerErr, "MAP002"},
		{"unknown strategy", fmt.Errorf("parse: %w", errors.New(`unknown duplicate strategy "x"`)), "MAP003"},
		{"too many runs", fmt.Errorf("acquire run slot: %w", ErrTooManyRuns), "RUN001"},
		{"run not found", fmt.Errorf("%w: abc", ErrRunNotFound), "RUN002"},
		{"result not found", fmt.Errorf("%w: %q", ErrResultNotFound, "1001"), "RUN003"},
		{"body too large", errors.New("invalid request body: http: request body too large"), "REQ001"},
		{"too many rows", fmt.Errorf("%w: master dataset has 9 rows (max 5)", ErrRequestTooLarge), "REQ001"},
		{"invalid body", errors.New("invalid request body: unexpected EOF"), "REQ002"},
		{"invalid resolve", fmt.Errorf("%w: keyField is required", ErrInvalidResolveRequest), "REQ003"},
		{"invalid filter", errors.New(`invalid filter "x"`), "REQ006"},
		{"cancelled", fmt.Errorf("acquire run slot: %w", context.Canceled), "REQ004"},
		{"deadline", context.DeadlineExceeded, "REQ005"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unauthorized", errors.New("unauthorized: missing API key"), "AUTH001"},
		{"case insensitive", errors.New("RUN NOT FOUND"), "RUN002"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned an empty message")
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error should not be user facing")
	}
	if !IsUserFacing(ErrTooManyRuns) {
		t.Error("ErrTooManyRuns should be user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := fmt.Errorf("get run: %w", ErrRunNotFound)
	userErr := NewUserError(techErr)
	if userErr.Error() != "Reconciliation run not found" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, ErrRunNotFound) {
		t.Error("Unwrap() should expose the technical error")
	}
}
