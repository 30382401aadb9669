// Package recon is the reconciliation engine: it aligns two tabular datasets
// by a user-chosen key and classifies every key as matched, mismatched,
// missing on one side, or duplicated.
//
// The engine is pure. It owns no files, connections or goroutines, keeps no
// state between calls, and never returns an error for data-quality issues:
// blank keys are skipped, non-numeric cells fall back to text comparison,
// and duplicate keys are reported as statuses.
//
// # Pipeline
//
//  1. [Resolve] groups one dataset's rows by [NormalizeKey] and applies a
//     [DuplicateStrategy]: [Overwrite] keeps the last row, [Sum] adds the
//     numeric value fields, [Flag] keeps every row.
//  2. [Reconcile] resolves both sides and walks the keys, producing one
//     [Result] per distinct key with per-column [Diff]s for keys present once
//     on each side.
//  3. [Summarize] and [FilterResults] back the results view.
//
// # Preconditions
//
// A [MappingConfig] is trusted by the engine. Callers validate it first with
// [MappingConfig.Validate] and [MappingConfig.ValidateHeaders].
//
// # Example
//
//	results := recon.Reconcile(master, comparison, recon.MappingConfig{
//	    MasterKey:         "emp",
//	    ComparisonKey:     "emp",
//	    ValueColumns:      []recon.ColumnPair{{Master: "ot", Comparison: "ot"}},
//	    DuplicateHandling: recon.Flag,
//	})
package recon
