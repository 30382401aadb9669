package web

// errors.go provides unified error response handling for the API.
//
// Every failure leaves the server as an ErrorResponse:
//  1. The handler picks a status with statusFor (or a fixed one)
//  2. respondError maps the error via core.MapError
//  3. The technical error is logged with the request ID
//  4. The client receives the user message, suggested action and code

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/logging"
	"github.com/JonMunkholm/recon/internal/recon"
)

var (
	errInvalidBody   = errors.New("invalid request body")
	errInvalidFilter = errors.New("invalid filter")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes it as an ErrorResponse.
// Client errors log at warn level, server errors at error level.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(int(s.cfg.Limits.MaxWaitTime.Seconds())+1))
	}
	writeJSON(w, statusCode, ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	var validation recon.ValidationErrors
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &validation), errors.Is(err, recon.ErrUnknownStrategy):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrRequestTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrRunNotFound), errors.Is(err, core.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidFilter),
		errors.Is(err, core.ErrInvalidResolveRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes the JSON request body into v, capped at the configured
// body size.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxBodyBytes)
	defer body.Close()

	if err := core.DecodeJSON(body, v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("%w: limit is %d bytes", core.ErrRequestTooLarge, maxBytes.Limit)
		}
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	// Drain so keep-alive connections can be reused.
	_, _ = io.Copy(io.Discard, body)
	return nil
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
