package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/compress"
)

type foldFlags struct {
	circuitPath string
	noiseFactor float64
	name        string
	barriers    bool
	subFolding  string
	seed        uint64
	ops         []string
	out         string
	compression string
}

func newFoldCmd(a *app) *cobra.Command {
	f := &foldFlags{}

	cmd := &cobra.Command{
		Use:   "fold",
		Short: "Amplify the noise of a sequence by folding",
		Example: `  zne fold --circuit bell.txt --noise-factor 3
  zne fold --circuit bell.txt --noise-factor 2.5 --amplifier local --ops cx
  zne fold --circuit bell.txt --noise-factor 3 --out bell.zneb --compression zstd`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seq, err := readSequence(cmd, f.circuitPath)
			if err != nil {
				return err
			}

			opts := []amplifier.Option{
				amplifier.WithLogger(a.logger),
				amplifier.WithBarriers(f.barriers),
			}
			if f.subFolding != "" {
				sub, err := amplifier.ParseSubFoldingOption(f.subFolding)
				if err != nil {
					return err
				}
				opts = append(opts, amplifier.WithSubFoldingOption(sub))
			}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, amplifier.WithRandomSeed(f.seed))
			}
			if len(f.ops) > 0 {
				opts = append(opts, amplifier.WithOperationsToFold(f.ops...))
			}

			amp, err := amplifier.New(f.name, opts...)
			if err != nil {
				return err
			}
			amplified, err := amp.Amplify(seq, f.noiseFactor)
			if err != nil {
				return err
			}

			if f.out == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), circuit.Format(amplified))
				return err
			}

			return writeBatch(cmd, f.out, f.compression, []circuit.Sequence{amplified})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.circuitPath, "circuit", "c", "-", "sequence file, - for stdin")
	flags.Float64VarP(&f.noiseFactor, "noise-factor", "n", 3, "noise factor, >= 1")
	flags.StringVarP(&f.name, "amplifier", "a", amplifier.NameGlobal, "amplifier name")
	flags.BoolVar(&f.barriers, "barriers", true, "insert barriers around folded blocks")
	flags.StringVar(&f.subFolding, "sub-folding", "", "from_first, from_last or random")
	flags.Uint64Var(&f.seed, "seed", 0, "random sub-folding seed")
	flags.StringSliceVar(&f.ops, "ops", nil, "operation names to fold (local amplifiers)")
	flags.StringVarP(&f.out, "out", "o", "", "write a binary batch to this file instead of text")
	flags.StringVar(&f.compression, "compression", compress.Zstd.String(), "batch compression: none, zstd, s2, lz4")

	return cmd
}

func newInspectCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the sequences stored in a binary batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			seqs, err := circuit.DecodeBatch(data)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, seq := range seqs {
				fmt.Fprintf(w, "# sequence %d: %s, fingerprint %016x\n", i, seq.Summary(), seq.Fingerprint())
				if _, err := io.WriteString(w, circuit.Format(seq)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func readSequence(cmd *cobra.Command, path string) (circuit.Sequence, error) {
	if path == "-" {
		return circuit.ParseReader(cmd.InOrStdin())
	}

	file, err := os.Open(path)
	if err != nil {
		return circuit.Sequence{}, err
	}
	defer file.Close()

	return circuit.ParseReader(file)
}

func writeBatch(cmd *cobra.Command, path, compression string, seqs []circuit.Sequence) error {
	ct, err := compress.ParseType(compression)
	if err != nil {
		return err
	}
	payload, err := circuit.EncodeBatch(seqs, ct)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sequence(s), %d bytes (%s) to %s\n", len(seqs), len(payload), ct, path)

	return nil
}
