package main

import (
	"bufio"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/recon"
)

type runOptions struct {
	master      string
	comparison  string
	mapping     string
	strategy    string
	filter      string
	search      string
	output      string
	summaryOnly bool
	failOnDiff  bool
}

// runOutput is what run prints.
type runOutput struct {
	Summary recon.Summary  `json:"summary"`
	Filter  recon.Category `json:"filter"`
	Search  string         `json:"search,omitempty"`
	Count   int            `json:"count"`
	Results []recon.Result `json:"results"`
}

func newRunCmd(service func() *core.Service) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a master and a comparison dataset",
		Long: `Reconciles two JSON datasets using a mapping file and prints the results.

Examples:
  # Full report
  recon run --master payroll_master.json --comparison payroll_comparison.json --mapping mapping.yaml

  # Only mismatched keys containing "10"
  recon run --master m.json --comparison c.json --mapping mapping.yaml --filter mismatch --search 10

  # Counts only, exit status 2 when anything differs
  recon run --master m.json --comparison c.json --mapping mapping.yaml --summary-only --fail-on-diff`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, ok := recon.ParseCategory(opts.filter)
			if !ok {
				return eris.Errorf("invalid filter %q", opts.filter)
			}

			in, err := loadInputs(opts.master, opts.comparison, opts.mapping)
			if err != nil {
				return err
			}
			if opts.strategy != "" {
				s, err := recon.ParseStrategy(opts.strategy)
				if err != nil {
					return err
				}
				in.mapping.DuplicateHandling = s
			}

			svc := service()
			report, err := svc.Reconcile(cmd.Context(), core.ReconcileRequest{
				Master:     in.master,
				Comparison: in.comparison,
				Mapping:    in.mapping,
			})
			if err != nil {
				return eris.Wrap(err, "reconcile")
			}

			filter := recon.Filter{Category: category, Search: opts.search}
			emit := func(w io.Writer) error {
				return printReport(w, svc, report, filter, opts.summaryOnly)
			}
			if opts.output != "" {
				err = writeFile(opts.output, emit)
			} else {
				err = emit(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			s := report.Summary
			if opts.failOnDiff && s.Matched != s.Total {
				return errDifferences
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.master, "master", "", "master dataset (JSON array of rows)")
	f.StringVar(&opts.comparison, "comparison", "", "comparison dataset (JSON array of rows)")
	f.StringVar(&opts.mapping, "mapping", "", "mapping file (YAML or JSON)")
	f.StringVar(&opts.strategy, "strategy", "", "duplicate strategy overriding the mapping: OVERWRITE, SUM or FLAG")
	f.StringVar(&opts.filter, "filter", "ALL", "result category: ALL, MATCH, MISMATCH, MISSING, DUPLICATE or VERIFIED")
	f.StringVar(&opts.search, "search", "", "only keys containing this text (case-insensitive)")
	f.StringVarP(&opts.output, "output", "o", "", "write JSON to this file instead of stdout")
	f.BoolVar(&opts.summaryOnly, "summary-only", false, "print only the summary counts")
	f.BoolVar(&opts.failOnDiff, "fail-on-diff", false, "exit with status 2 unless every key matched")
	_ = cmd.MarkFlagRequired("master")
	_ = cmd.MarkFlagRequired("comparison")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}

func printReport(w io.Writer, svc *core.Service, report *core.RunReport, filter recon.Filter, summaryOnly bool) error {
	if summaryOnly {
		return writeJSON(w, report.Summary)
	}

	results, err := svc.Results(report.ID, filter)
	if err != nil {
		return eris.Wrap(err, "filter results")
	}
	return writeJSON(w, runOutput{
		Summary: report.Summary,
		Filter:  filter.Category,
		Search:  filter.Search,
		Count:   len(results),
		Results: results,
	})
}

// writeFile creates path and hands write a buffered writer over it. Flush and
// close failures are returned so a truncated report is never reported as
// success.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "close %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
