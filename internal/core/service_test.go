package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/recon/internal/recon"
)

func payrollRequest() ReconcileRequest {
	return ReconcileRequest{
		Master: []recon.Row{
			{"emp": recon.Text("1001"), "name": recon.Text("Yamada"), "ot": recon.Int(45000)},
			{"emp": recon.Text("1002"), "name": recon.Text("Suzuki"), "ot": recon.Int(10000)},
		},
		Comparison: []recon.Row{
			{"emp": recon.Text("1001"), "name": recon.Text("Yamada"), "ot": recon.Int(45000)},
			{"emp": recon.Text("1002"), "name": recon.Text("Suzuki"), "ot": recon.Int(12000)},
			{"emp": recon.Text("1006"), "name": recon.Text("Ito"), "ot": recon.Int(40000)},
		},
		Mapping: recon.MappingConfig{
			MasterKey:     "emp",
			ComparisonKey: "emp",
			ValueColumns:  []recon.ColumnPair{{Master: "ot", Comparison: "ot"}},
		},
	}
}

// fakeClock is a settable time source for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, opts Options) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(opts)
	svc.now = clock.Now
	return svc, clock
}

func TestService_Reconcile(t *testing.T) {
	svc, clock := newTestService(t, Options{RunTTL: time.Hour})

	report, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, clock.Now(), report.CreatedAt)
	assert.Equal(t, clock.Now().Add(time.Hour), report.ExpiresAt)
	assert.Equal(t, 2, report.MasterRows)
	assert.Equal(t, 3, report.ComparisonRows)
	assert.Equal(t, recon.Flag, report.Mapping.DuplicateHandling, "default strategy is applied")
	assert.Equal(t, recon.Summary{Total: 3, Matched: 1, Mismatched: 1, Missing: 1}, report.Summary)

	require.Len(t, report.Results, 3)
	assert.Equal(t, recon.StatusMatch, report.Results[0].Status)
	assert.Equal(t, recon.StatusMismatch, report.Results[1].Status)
	assert.Equal(t, recon.StatusMissingInMaster, report.Results[2].Status)

	info, err := svc.GetRun(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Summary, info.Summary)
	assert.Equal(t, 1, svc.RunCount())
}

func TestService_Reconcile_ConfiguredDefaultStrategy(t *testing.T) {
	svc, _ := newTestService(t, Options{DefaultStrategy: recon.Overwrite})
	req := payrollRequest()
	req.Master = append(req.Master, recon.Row{"emp": recon.Text("1002"), "ot": recon.Int(12000)})

	report, err := svc.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, recon.Overwrite, report.Mapping.DuplicateHandling)
	assert.Equal(t, recon.StatusMatch, report.Results[1].Status)
}

func TestService_Reconcile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ReconcileRequest)
		wantErr string
	}{
		{
			name:    "missing key",
			modify:  func(r *ReconcileRequest) { r.Mapping.MasterKey = "" },
			wantErr: "invalid mapping",
		},
		{
			name: "unknown master column",
			modify: func(r *ReconcileRequest) {
				r.Mapping.ValueColumns = []recon.ColumnPair{{Master: "overtime", Comparison: "ot"}}
			},
			wantErr: `column not found in master dataset: "overtime"`,
		},
		{
			name: "explicit headers override row columns",
			modify: func(r *ReconcileRequest) {
				r.ComparisonHeaders = []string{"emp", "name"}
			},
			wantErr: `column not found in comparison dataset: "ot"`,
		},
		{
			name:    "too many rows",
			modify:  func(r *ReconcileRequest) { r.Comparison = append(r.Comparison, r.Comparison...) },
			wantErr: "request too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, Options{MaxRowsPerSide: 5})
			req := payrollRequest()
			tt.modify(&req)

			_, err := svc.Reconcile(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, svc.RunCount())
		})
	}
}

func TestService_Reconcile_EmptySideSkipsHeaderCheck(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	req := payrollRequest()
	req.Comparison = nil

	report, err := svc.Reconcile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Missing)
}

func TestService_Reconcile_Busy(t *testing.T) {
	svc, _ := newTestService(t, Options{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	_, err := svc.Reconcile(context.Background(), payrollRequest())
	assert.ErrorIs(t, err, ErrTooManyRuns)
	assert.Equal(t, "RUN001", MapError(err).Code)
}

func TestService_Reconcile_Cancelled(t *testing.T) {
	svc, _ := newTestService(t, Options{MaxConcurrent: 1})
	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Reconcile(ctx, payrollRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Results_Filter(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	report, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)

	results, err := svc.Results(report.ID, recon.Filter{Category: recon.CategoryMissing})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1006", results[0].Key)

	results, err = svc.Results(report.ID, recon.Filter{Search: "100"})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestService_SetVerified(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	report, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)
	ctx := context.Background()

	// nil toggles.
	res, err := svc.SetVerified(ctx, report.ID, " 1002 ", nil)
	require.NoError(t, err)
	assert.Equal(t, "1002", res.Key)
	assert.True(t, res.IsVerified)

	info, _ := svc.GetRun(report.ID)
	assert.Equal(t, 1, info.Summary.Verified)

	// Setting the same value again is a no-op for the count.
	yes := true
	_, err = svc.SetVerified(ctx, report.ID, "1002", &yes)
	require.NoError(t, err)
	info, _ = svc.GetRun(report.ID)
	assert.Equal(t, 1, info.Summary.Verified)

	verified, err := svc.Results(report.ID, recon.Filter{Category: recon.CategoryVerified})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, "1002", verified[0].Key)

	res, err = svc.SetVerified(ctx, report.ID, "1002", nil)
	require.NoError(t, err)
	assert.False(t, res.IsVerified)
	info, _ = svc.GetRun(report.ID)
	assert.Zero(t, info.Summary.Verified)

	// The report handed back by Reconcile is a snapshot.
	assert.False(t, report.Results[1].IsVerified)

	_, err = svc.SetVerified(ctx, report.ID, "9999", nil)
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, err = svc.SetVerified(ctx, "no-such-run", "1002", nil)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestService_Expiry(t *testing.T) {
	svc, clock := newTestService(t, Options{RunTTL: 10 * time.Minute})
	report, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	_, err = svc.GetRun(report.ID)
	require.NoError(t, err)
	assert.Zero(t, svc.ExpireRuns())

	clock.Advance(time.Minute)
	_, err = svc.GetRun(report.ID)
	assert.ErrorIs(t, err, ErrRunNotFound, "expired runs are hidden before the sweep")
	assert.Empty(t, svc.ListRuns())

	assert.Equal(t, 1, svc.ExpireRuns())
	assert.Zero(t, svc.RunCount())
}

func TestService_DeleteRun(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	report, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRun(report.ID))
	_, err = svc.Results(report.ID, recon.Filter{})
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.True(t, errors.Is(svc.DeleteRun(report.ID), ErrRunNotFound))
}

func TestService_ListRuns_NewestFirst(t *testing.T) {
	svc, clock := newTestService(t, Options{})
	first, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := svc.Reconcile(context.Background(), payrollRequest())
	require.NoError(t, err)

	runs := svc.ListRuns()
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestService_Resolve(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	rows := []recon.Row{
		{"id": recon.Text("A"), "amt": recon.Int(100)},
		{"id": recon.Text("A"), "amt": recon.Int(50)},
		{"id": recon.Text("B"), "amt": recon.Int(1)},
	}

	grouped, err := svc.Resolve(context.Background(), ResolveRequest{
		Rows: rows, KeyField: "id", ValueFields: []string{"amt"}, Strategy: "sum",
	})
	require.NoError(t, err)
	a, _ := grouped.Group("A")
	require.Len(t, a, 1)
	assert.True(t, a[0].Get("amt").Equal(recon.Int(150)))

	grouped, err = svc.Resolve(context.Background(), ResolveRequest{Rows: rows, KeyField: "id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, grouped.Duplicates(), "empty strategy falls back to FLAG")

	_, err = svc.Resolve(context.Background(), ResolveRequest{Rows: rows})
	assert.ErrorIs(t, err, ErrInvalidResolveRequest)

	_, err = svc.Resolve(context.Background(), ResolveRequest{Rows: rows, KeyField: "id", Strategy: "merge"})
	assert.Equal(t, "MAP003", MapError(err).Code)
}

func TestService_ConcurrentReconcile(t *testing.T) {
	svc, _ := newTestService(t, Options{MaxConcurrent: 2, MaxWait: 5 * time.Second})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reconcile(context.Background(), payrollRequest())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 8, svc.RunCount())
	assert.Zero(t, svc.LimiterStatus().Active)
	require.NoError(t, svc.WaitForRuns(context.Background()))
}
