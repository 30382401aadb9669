package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/recon"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string             `json:"status"`
	Time   time.Time          `json:"time"`
	Runs   int                `json:"runs"`
	Slots  core.LimiterStatus `json:"slots"`
}

// ResolveResponse is the duplicate resolver preview for one dataset.
type ResolveResponse struct {
	Keys       []string              `json:"keys"`
	Duplicates []string              `json:"duplicates"`
	Groups     *recon.GroupedDataset `json:"groups"`
}

// ResultsResponse is a filtered page of a run's results.
type ResultsResponse struct {
	RunID   string         `json:"runId"`
	Filter  recon.Category `json:"filter"`
	Search  string         `json:"search,omitempty"`
	Count   int            `json:"count"`
	Results []recon.Result `json:"results"`
}

// VerifyRequest marks a result as verified. A missing Verified toggles it.
type VerifyRequest struct {
	Key      string `json:"key"`
	Verified *bool  `json:"verified"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
		Runs:   s.service.RunCount(),
		Slots:  s.service.LimiterStatus(),
	})
}

// handleReconcile runs a reconciliation and returns the full report.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req core.ReconcileRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	report, err := s.service.Reconcile(ctx, req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Location", "/api/runs/"+report.ID)
	writeJSON(w, http.StatusCreated, report)
}

// handleResolve previews duplicate handling on a single dataset.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req core.ResolveRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	grouped, err := s.service.Resolve(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	dups := grouped.Duplicates()
	if dups == nil {
		dups = []string{}
	}
	writeJSON(w, http.StatusOK, ResolveResponse{
		Keys:       grouped.Keys(),
		Duplicates: dups,
		Groups:     grouped,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"runs": s.service.ListRuns(),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetRun(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleResults lists a run's results. Query parameters:
//
//	filter  a result category, case-insensitive (default ALL)
//	q       case-insensitive key substring
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	query := r.URL.Query()

	category := recon.CategoryAll
	if name := query.Get("filter"); name != "" {
		c, ok := recon.ParseCategory(name)
		if !ok {
			err := fmt.Errorf("%w %q", errInvalidFilter, name)
			s.respondError(w, r, err, statusFor(err))
			return
		}
		category = c
	}

	filter := recon.Filter{Category: category, Search: query.Get("q")}
	results, err := s.service.Results(runID, filter)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, ResultsResponse{
		RunID:   runID,
		Filter:  category,
		Search:  filter.Search,
		Count:   len(results),
		Results: results,
	})
}

// handleVerify sets or toggles the verified flag of one result.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if req.Key == "" {
		err := fmt.Errorf("%w: key is required", errInvalidBody)
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.SetVerified(ctx, chi.URLParam(r, "runID"), req.Key, req.Verified)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRun(chi.URLParam(r, "runID")); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
