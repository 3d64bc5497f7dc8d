package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/config"
	"github.com/arloliu/zne/strategy"
)

type mitigateFlags struct {
	configPath  string
	circuits    []string
	errorRate   float64
	shots       int
	ideal       float64
	concurrency int
}

func newMitigateCmd(a *app) *cobra.Command {
	f := &mitigateFlags{}

	cmd := &cobra.Command{
		Use:   "mitigate",
		Short: "Run zero-noise extrapolation against a synthetic depolarizing backend",
		Long: `mitigate amplifies every sequence, "executes" each variant on a synthetic
backend whose expectation value decays as ideal·(1−p)^k with k the number of
non-marker operations, and extrapolates the results back to zero noise.

Without --config the strategy folds multi-site operations at noise factors
1, 2 and 3 and extrapolates linearly.`,
		Example: `  zne mitigate --circuit bell.txt --error-rate 0.02
  zne mitigate --config strategy.yaml --circuit bell.txt --circuit ghz.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default().With(func(c *config.StrategyConfig) {
				c.NoiseFactors = []float64{1, 2, 3}
			})
			if f.configPath != "" {
				var err error
				if cfg, err = config.Load(f.configPath); err != nil {
					return err
				}
			}
			if f.concurrency > 0 {
				cfg.Concurrency = f.concurrency
			}

			s, err := cfg.Build(a.logger)
			if err != nil {
				return err
			}

			seqs := make([]circuit.Sequence, 0, len(f.circuits))
			for _, path := range f.circuits {
				seq, err := readSequence(cmd, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				seqs = append(seqs, seq)
			}

			backend := depolarizingBackend{errorRate: f.errorRate, shots: f.shots, ideal: f.ideal}
			m, err := strategy.NewMitigator(s, backend)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			job, err := m.Submit(ctx, seqs, nil)
			if err != nil {
				return err
			}
			results, err := job.Result(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "job %s: %s\n", job.ID(), s)
			for i, r := range results {
				unmitigated := backend.expectation(seqs[i])
				fmt.Fprintf(w, "%s: mitigated %.6f ± %.6f (unmitigated %.6f, ideal %.6f)\n",
					f.circuits[i], r.Value, r.StdError, unmitigated, f.ideal)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "strategy configuration (.yaml, .yml or .toml)")
	flags.StringArrayVarP(&f.circuits, "circuit", "c", nil, "sequence file, repeatable")
	flags.Float64Var(&f.errorRate, "error-rate", 0.01, "depolarizing error per operation")
	flags.IntVar(&f.shots, "shots", 4096, "shots per variant, sets the reported variance")
	flags.Float64Var(&f.ideal, "ideal", 1, "noiseless expectation value")
	flags.IntVar(&f.concurrency, "concurrency", 0, "override the configured concurrency")
	_ = cmd.MarkFlagRequired("circuit")

	return cmd
}

// depolarizingBackend is a deterministic executor: every non-marker operation
// shrinks the expectation value by a factor 1−errorRate.
type depolarizingBackend struct {
	errorRate float64
	shots     int
	ideal     float64
}

func (b depolarizingBackend) expectation(seq circuit.Sequence) float64 {
	ops := seq.CountIf(func(op circuit.Operation) bool { return !op.IsMarker() })
	return b.ideal * math.Pow(1-b.errorRate, float64(ops))
}

func (b depolarizingBackend) Execute(ctx context.Context, seqs []circuit.Sequence, _ []any) ([]strategy.RawResult, error) {
	out := make([]strategy.RawResult, len(seqs))
	for i, seq := range seqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := b.expectation(seq)
		out[i] = strategy.RawResult{
			Value: v,
			Metadata: map[string]any{
				strategy.VarianceKey: math.Max(1-v*v, 1e-12) / float64(max(b.shots, 1)),
				"shots":              b.shots,
			},
		}
	}

	return out, nil
}

func newConfigCmd(_ *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config [FILE]",
		Short: "Print the default strategy configuration, or validate and normalize FILE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if len(args) == 1 {
				var err error
				if cfg, err = config.Load(args[0]); err != nil {
					return err
				}
			}

			out := config.FormatYAML
			if format == config.FormatTOML.String() {
				out = config.FormatTOML
			} else if format != config.FormatYAML.String() {
				return fmt.Errorf("unknown output format %q", format)
			}

			return cfg.Encode(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", config.FormatYAML.String(), "output format: yaml or toml")

	return cmd
}
