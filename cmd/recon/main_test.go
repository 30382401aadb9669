package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/recon"
)

const (
	masterFile     = "testdata/payroll_master.json"
	comparisonFile = "testdata/payroll_comparison.json"
	mappingFile    = "testdata/payroll_mapping.yaml"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "validate", "resolve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRunCommand_Flags(t *testing.T) {
	cmd := newRunCmd(nil)
	for _, name := range []string{"master", "comparison", "mapping", "strategy", "filter", "search", "output", "summary-only", "fail-on-diff"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "run should have --%s flag", name)
	}
	assert.Equal(t, "ALL", cmd.Flags().Lookup("filter").DefValue)
}

func TestRun_Payroll(t *testing.T) {
	out, err := execute(t, "run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile)
	require.NoError(t, err)

	var got runOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, recon.Summary{Total: 6, Matched: 2, Mismatched: 2, Missing: 2}, got.Summary)
	assert.Equal(t, recon.CategoryAll, got.Filter)
	assert.Equal(t, 6, got.Count)
	require.Len(t, got.Results, 6)
	assert.Equal(t, "1001", got.Results[0].Key)
	assert.Equal(t, recon.StatusMissingInMaster, got.Results[5].Status)
}

func TestRun_FilterAndSearch(t *testing.T) {
	out, err := execute(t, "run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile,
		"--filter", "mismatch", "--search", "05")
	require.NoError(t, err)

	var got runOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "1005", got.Results[0].Key)
	assert.Equal(t, recon.StatusMismatch, got.Results[0].Status)
	// The summary always covers the whole run.
	assert.Equal(t, 6, got.Summary.Total)
}

func TestRun_SummaryOnlyFailOnDiff(t *testing.T) {
	out, err := execute(t, "run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile,
		"--summary-only", "--fail-on-diff")
	assert.ErrorIs(t, err, errDifferences)

	var got recon.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Mismatched)
}

func TestRun_SameDatasetHasNoDiff(t *testing.T) {
	_, err := execute(t, "run", "--master", masterFile, "--comparison", masterFile, "--mapping", mappingFile,
		"--summary-only", "--fail-on-diff")
	assert.NoError(t, err)
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	out, err := execute(t, "run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile,
		"--summary-only", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total": 6`)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	badMapping := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badMapping, []byte("masterKey: id\ncomparisonKey: 社員番号\nvalueColumns:\n  - master: 基本給\n    comparison: 基本給\n"), 0o600))
	unknownField := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(unknownField, []byte("masterKey: a\ncomparisonkey: a\n"), 0o600))
	notJSON := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(notJSON, []byte(`{"a":1}`), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing flag", []string{"run", "--master", masterFile}, `required flag(s)`},
		{"missing file", []string{"run", "--master", "nope.json", "--comparison", comparisonFile, "--mapping", mappingFile}, "master dataset"},
		{"rows not an array", []string{"run", "--master", masterFile, "--comparison", notJSON, "--mapping", mappingFile}, "comparison dataset"},
		{"column not found", []string{"run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", badMapping}, "column not found in master dataset"},
		{"unknown mapping field", []string{"run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", unknownField}, "comparisonkey"},
		{"bad filter", []string{"run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile, "--filter", "odd"}, "invalid filter"},
		{"bad strategy", []string{"run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile, "--strategy", "MERGE"}, "unknown duplicate strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile)
	require.NoError(t, err)
	assert.Equal(t, "mapping OK: 5 master rows, 5 comparison rows, 3 value columns\n", out)
}

func TestResolve_Sum(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"emp":"1","ot":10},{"emp":" 1","ot":"5"},{"emp":"2","ot":1}]`), 0o600))

	out, err := execute(t, "resolve", "--input", input, "--key", "emp", "--fields", "ot", "--strategy", "SUM")
	require.NoError(t, err)

	var groups []recon.KeyGroup
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "1", groups[0].Key)
	require.Len(t, groups[0].Rows, 1)
	assert.True(t, groups[0].Rows[0]["ot"].Equal(recon.Int(15)))
}

func TestRun_OutputFileFlushFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	_, err := execute(t, "run", "--master", masterFile, "--comparison", comparisonFile, "--mapping", mappingFile,
		"--summary-only", "-o", "/dev/full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/full")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeFile(path, func(w io.Writer) error {
		return writeJSON(w, map[string]int{"total": 1})
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1}`, string(data))

	boom := errors.New("boom")
	assert.ErrorIs(t, writeFile(path, func(io.Writer) error { return boom }), boom)

	err = writeFile(filepath.Join(t.TempDir(), "missing", "out.json"), func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "create")
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  []string
		avoid string
	}{
		{
			name: "coded error shows message, action and cause",
			err:  fmt.Errorf("reconcile: %w", core.ErrTooManyRuns),
			want: []string{"(RUN001)", "cause: reconcile: too many concurrent runs"},
		},
		{
			name: "mapping column error",
			err: recon.MappingConfig{
				MasterKey:     "id",
				ComparisonKey: "emp",
				ValueColumns:  []recon.ColumnPair{{Master: "ot", Comparison: "ot"}},
			}.ValidateHeaders([]string{"emp", "ot"}, []string{"emp", "ot"}),
			want: []string{"(MAP002)", "Check that the key and value columns match", `column not found in master dataset: "id"`},
		},
		{
			name:  "uncoded error printed as is",
			err:   errors.New("open nope.json: no such file or directory"),
			want:  []string{"Error: open nope.json: no such file or directory\n"},
			avoid: "ERR000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			if tt.avoid != "" {
				assert.NotContains(t, buf.String(), tt.avoid)
			}
		})
	}
}
