package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/recon/internal/core"
)

func newResolveCmd(service func() *core.Service) *cobra.Command {
	var (
		input    string
		key      string
		fields   []string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Preview duplicate handling on one dataset",
		Long: `Groups one dataset's rows by key and applies a duplicate strategy,
printing the resulting key groups in first-appearance order.

Example:
  recon resolve --input payroll_master.json --key emp --fields ot,base --strategy SUM`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := readRows(input)
			if err != nil {
				return err
			}

			grouped, err := service().Resolve(cmd.Context(), core.ResolveRequest{
				Rows:        rows,
				KeyField:    key,
				ValueFields: fields,
				Strategy:    strategy,
			})
			if err != nil {
				return eris.Wrap(err, "resolve")
			}
			return writeJSON(cmd.OutOrStdout(), grouped)
		},
	}

	f := cmd.Flags()
	f.StringVar(&input, "input", "", "dataset (JSON array of rows)")
	f.StringVar(&key, "key", "", "key column")
	f.StringSliceVar(&fields, "fields", nil, "value columns summed by SUM")
	f.StringVar(&strategy, "strategy", "", "OVERWRITE, SUM or FLAG (default from RECONCILE_DEFAULT_STRATEGY)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
