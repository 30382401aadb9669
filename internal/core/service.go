package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/recon/internal/logging"
	"github.com/JonMunkholm/recon/internal/recon"
)

// DefaultRunTTL is how long a run stays available when Options.RunTTL is unset.
const DefaultRunTTL = time.Hour

var (
	// ErrRunNotFound is returned for unknown or expired run IDs.
	ErrRunNotFound = errors.New("run not found")
	// ErrResultNotFound is returned when a run has no result for a key.
	ErrResultNotFound = errors.New("result key not found")
)

// Options configures a Service. Zero values fall back to package defaults.
type Options struct {
	MaxRowsPerSide  int // 0 means unlimited
	MaxConcurrent   int
	MaxWait         time.Duration
	RunTTL          time.Duration
	DefaultStrategy recon.DuplicateStrategy
}

// Service runs reconciliations and keeps their results in memory so a
// reviewer can filter them and mark keys as verified.
type Service struct {
	opts    Options
	limiter *RunLimiter
	now     func() time.Time

	mu   sync.RWMutex
	runs map[string]*run
}

// run is one stored reconciliation. Results are fixed at creation except
// for IsVerified, which is guarded by mu along with the verified count.
type run struct {
	mu      sync.RWMutex
	info    RunInfo
	results []recon.Result
	byKey   map[string]int
}

// NewService creates a Service with the given options.
func NewService(opts Options) *Service {
	if opts.RunTTL <= 0 {
		opts.RunTTL = DefaultRunTTL
	}
	if opts.DefaultStrategy == "" {
		opts.DefaultStrategy = recon.DefaultStrategy
	}
	return &Service{
		opts:    opts,
		limiter: NewRunLimiter(opts.MaxConcurrent, opts.MaxWait),
		now:     time.Now,
		runs:    make(map[string]*run),
	}
}

// Reconcile validates req, reconciles the two datasets and stores the run.
//
// Validation failures are returned before a run slot is taken. If every slot
// is busy Reconcile waits for one, failing with ErrTooManyRuns or ctx.Err().
func (s *Service) Reconcile(ctx context.Context, req ReconcileRequest) (*RunReport, error) {
	if err := s.validateReconcile(&req); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire run slot: %w", err)
	}
	defer s.limiter.Release()

	start := time.Now()
	results := recon.Reconcile(req.Master, req.Comparison, req.Mapping)
	elapsed := time.Since(start)

	created := s.now()
	r := &run{
		info: RunInfo{
			ID:             uuid.New().String(),
			CreatedAt:      created,
			ExpiresAt:      created.Add(s.opts.RunTTL),
			Mapping:        req.Mapping,
			MasterRows:     len(req.Master),
			ComparisonRows: len(req.Comparison),
			DurationMS:     elapsed.Milliseconds(),
			Summary:        recon.Summarize(results),
		},
		results: results,
		byKey:   make(map[string]int, len(results)),
	}
	for i, res := range results {
		r.byKey[res.Key] = i
	}

	s.mu.Lock()
	s.runs[r.info.ID] = r
	s.mu.Unlock()

	logger := logging.WithFields(ctx, "run_id", r.info.ID)
	logger.Info("reconciliation completed",
		append([]any{
			"master_rows", r.info.MasterRows,
			"comparison_rows", r.info.ComparisonRows,
			"strategy", req.Mapping.Strategy(),
			"results", r.info.Summary.Total,
			"mismatched", r.info.Summary.Mismatched,
			"missing", r.info.Summary.Missing,
			"duplicate", r.info.Summary.Duplicate,
			"duration_ms", r.info.DurationMS,
		}, callerAttrs(ctx)...)...,
	)

	return &RunReport{RunInfo: r.info, Results: slices.Clone(results)}, nil
}

// Resolve previews the duplicate resolver on one dataset without storing anything.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (*recon.GroupedDataset, error) {
	strategy, err := s.validateResolve(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grouped := recon.Resolve(req.Rows, req.KeyField, req.ValueFields, strategy)
	logging.FromContext(ctx).Debug("resolve preview",
		"rows", len(req.Rows),
		"keys", grouped.Len(),
		"duplicate_keys", len(grouped.Duplicates()),
		"strategy", strategy,
	)
	return grouped, nil
}

// lookup returns a live run or ErrRunNotFound.
func (s *Service) lookup(id string) (*run, error) {
	s.mu.RLock()
	r, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(r.info.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, nil
}

// GetRun returns a run's metadata and summary.
func (s *Service) GetRun(id string) (RunInfo, error) {
	r, err := s.lookup(id)
	if err != nil {
		return RunInfo{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info, nil
}

// Results returns a run's results that pass filter, in reconciliation order.
func (s *Service) Results(id string, filter recon.Filter) ([]recon.Result, error) {
	r, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return recon.FilterResults(r.results, filter), nil
}

// SetVerified sets a result's verified flag and returns the updated result.
// A nil verified toggles the current flag. The key is normalized the same
// way the engine normalizes keys, so " 1001 " finds "1001".
func (s *Service) SetVerified(ctx context.Context, id, key string, verified *bool) (recon.Result, error) {
	r, err := s.lookup(id)
	if err != nil {
		return recon.Result{}, err
	}

	norm := recon.NormalizeKey(recon.Text(key))
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byKey[norm]
	if !ok {
		return recon.Result{}, fmt.Errorf("%w: %q", ErrResultNotFound, key)
	}

	res := &r.results[i]
	next := !res.IsVerified
	if verified != nil {
		next = *verified
	}
	if next != res.IsVerified {
		res.IsVerified = next
		if next {
			r.info.Summary.Verified++
		} else {
			r.info.Summary.Verified--
		}
	}

	logging.WithFields(ctx, "run_id", id).Debug("result verification changed",
		"key", norm,
		"verified", next,
	)
	return *res, nil
}

// DeleteRun drops a run. Deleting an unknown run returns ErrRunNotFound.
func (s *Service) DeleteRun(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	delete(s.runs, id)
	return nil
}

// ListRuns returns every live run, newest first.
func (s *Service) ListRuns() []RunInfo {
	now := s.now()
	s.mu.RLock()
	infos := make([]RunInfo, 0, len(s.runs))
	for _, r := range s.runs {
		r.mu.RLock()
		if now.Before(r.info.ExpiresAt) {
			infos = append(infos, r.info)
		}
		r.mu.RUnlock()
	}
	s.mu.RUnlock()

	slices.SortFunc(infos, func(a, b RunInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return infos
}

// ExpireRuns drops every run whose TTL has passed and returns how many were removed.
func (s *Service) ExpireRuns() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.runs {
		if !now.Before(r.info.ExpiresAt) {
			delete(s.runs, id)
			n++
		}
	}
	return n
}

// RunCount returns the number of stored runs, including expired ones the
// janitor has not yet removed.
func (s *Service) RunCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// LimiterStatus reports run slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight reconciliations finish or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
