// Command zne folds operation sequences, extrapolates measurements and runs
// zero-noise extrapolation against a synthetic backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/zne/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by all subcommands.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "zne",
		Short: "Zero-noise extrapolation toolkit",
		Long: `zne amplifies the noise of operation sequences by unitary folding and
extrapolates noisy measurements back to the zero-noise limit.

Sequences are plain text, one operation per line:

  sites 2
  h 0
  cx 0,1
  rz 1 0.25`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			profile := logging.ProfileRuntime
			if a.verbose {
				profile = logging.ProfileVerbose
			}
			logger, err := logging.NewCLI(profile)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.logger = logger

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newFoldCmd(a),
		newInspectCmd(a),
		newExtrapolateCmd(a),
		newMitigateCmd(a),
		newConfigCmd(a),
	)

	return root
}
