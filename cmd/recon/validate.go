package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/recon/internal/recon"
)

func newValidateCmd() *cobra.Command {
	var master, comparison, mapping string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a mapping against both datasets without reconciling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := loadInputs(master, comparison, mapping)
			if err != nil {
				return err
			}
			if err := in.mapping.Validate(); err != nil {
				return err
			}
			if err := in.mapping.ValidateHeaders(recon.HeadersOf(in.master), recon.HeadersOf(in.comparison)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mapping OK: %d master rows, %d comparison rows, %d value columns\n",
				len(in.master), len(in.comparison), len(in.mapping.ValueColumns))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&master, "master", "", "master dataset (JSON array of rows)")
	f.StringVar(&comparison, "comparison", "", "comparison dataset (JSON array of rows)")
	f.StringVar(&mapping, "mapping", "", "mapping file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("master")
	_ = cmd.MarkFlagRequired("comparison")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}
