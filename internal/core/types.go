package core

import (
	"time"

	"github.com/JonMunkholm/recon/internal/recon"
)

// ReconcileRequest is one reconciliation job: two row sets and the mapping
// that lines them up.
//
// MasterHeaders and ComparisonHeaders are the datasets' header rows as the
// caller parsed them. When omitted, headers are taken from the union of the
// rows' columns.
type ReconcileRequest struct {
	Master            []recon.Row         `json:"master"`
	Comparison        []recon.Row         `json:"comparison"`
	Mapping           recon.MappingConfig `json:"mapping"`
	MasterHeaders     []string            `json:"masterHeaders,omitempty"`
	ComparisonHeaders []string            `json:"comparisonHeaders,omitempty"`
}

// ResolveRequest previews the duplicate resolver on a single dataset.
type ResolveRequest struct {
	Rows        []recon.Row `json:"rows"`
	KeyField    string      `json:"keyField"`
	ValueFields []string    `json:"valueFields"`
	Strategy    string      `json:"strategy"`
}

// RunInfo describes a stored reconciliation run.
type RunInfo struct {
	ID             string              `json:"runId"`
	CreatedAt      time.Time           `json:"createdAt"`
	ExpiresAt      time.Time           `json:"expiresAt"`
	Mapping        recon.MappingConfig `json:"mapping"`
	MasterRows     int                 `json:"masterRows"`
	ComparisonRows int                 `json:"comparisonRows"`
	DurationMS     int64               `json:"durationMs"`
	Summary        recon.Summary       `json:"summary"`
}

// RunReport is a run together with its results.
type RunReport struct {
	RunInfo
	Results []recon.Result `json:"results"`
}
