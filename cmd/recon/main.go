// Command recon reconciles two JSON datasets from the command line.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/logging"
)

// errDifferences is returned by run --fail-on-diff when any key did not match.
var errDifferences = errors.New("datasets differ")

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:   "recon",
		Short: "Reconcile two tabular datasets by key",
		Long: `Aligns a master and a comparison dataset by a key column and reports every
key as matched, mismatched, missing on one side, or duplicated.

Datasets are JSON arrays of objects, one object per row. Mappings are YAML
or JSON files naming the key columns and the value column pairs to compare.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			c, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = c

			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))
			return nil
		},
	}

	service := func() *core.Service {
		return core.NewService(core.Options{
			MaxRowsPerSide:  cfg.Limits.MaxRowsPerSide,
			MaxConcurrent:   1,
			MaxWait:         cfg.Limits.MaxWaitTime,
			RunTTL:          cfg.Limits.RunTTL,
			DefaultStrategy: cfg.Reconcile.Strategy(),
		})
	}

	root.AddCommand(
		newRunCmd(service),
		newValidateCmd(),
		newResolveCmd(service),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errDifferences) {
			os.Exit(2)
		}
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err for a person at a terminal. Errors with a known
// code get the friendly message and suggested action, with the technical
// cause underneath.
func reportError(w io.Writer, err error) {
	if !core.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	ue := core.NewUserError(err)
	fmt.Fprintf(w, "Error: %s (%s)\n", ue, ue.User.Code)
	if ue.User.Action != "" {
		fmt.Fprintf(w, "  %s\n", ue.User.Action)
	}
	fmt.Fprintf(w, "  cause: %v\n", ue.Unwrap())
}
