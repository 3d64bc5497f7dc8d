package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/zne/extrapolation"
)

type extrapolateFlags struct {
	x      []float64
	y      []float64
	sigmaY []float64
	model  string
	param  int
}

func newExtrapolateCmd(a *app) *cobra.Command {
	f := &extrapolateFlags{}

	cmd := &cobra.Command{
		Use:   "extrapolate",
		Short: "Extrapolate measurements to the zero-noise limit",
		Example: `  zne extrapolate --x 1,2,3 --y 0.9,0.8,0.7
  zne extrapolate --x 1,3,5,7 --y 0.81,0.55,0.37,0.25 --model exponential
  zne extrapolate --x 1,2,3,4 --y 1,4,9,16 --model polynomial --param 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ex, err := extrapolation.New(f.model, f.param, extrapolation.WithLogger(a.logger))
			if err != nil {
				return err
			}

			var sigmaY []float64
			if len(f.sigmaY) > 0 {
				sigmaY = f.sigmaY
			}
			res, err := ex.ExtrapolateZero(f.x, f.y, nil, sigmaY)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "model:        %s\n", ex.Name())
			fmt.Fprintf(w, "value:        %.6g\n", res.Value)
			fmt.Fprintf(w, "std_error:    %.6g\n", res.StdError)
			fmt.Fprintf(w, "R2:           %.6g\n", res.Metadata.R2)
			fmt.Fprintf(w, "coefficients: %.6g\n", res.Metadata.Coefficients)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64SliceVar(&f.x, "x", nil, "noise factors")
	flags.Float64SliceVar(&f.y, "y", nil, "measured values")
	flags.Float64SliceVar(&f.sigmaY, "sigma-y", nil, "standard errors of the measured values")
	flags.StringVarP(&f.model, "model", "m", extrapolation.NameLinear, "extrapolator name")
	flags.IntVarP(&f.param, "param", "p", 1, "degree (polynomial) or number of terms (multi_exponential)")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}
