package main

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-energy/energy"
)

type filterbankOutput struct {
	SampleRate int       `json:"sample_rate"`
	FFTSize    int       `json:"fft_size"`
	Bands      int       `json:"bands"`
	Bins       int       `json:"bins"`
	Boundaries []float64 `json:"boundaries_hz"`
}

func newFilterbankCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filterbank",
		Short: "Print the mel filterbank band edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.featureConfig()
			if err != nil {
				return err
			}
			extractor, err := energy.NewExtractor(cfg)
			if err != nil {
				return err
			}

			fb := extractor.Filterbank()
			return writeJSON(cmd.OutOrStdout(), filterbankOutput{
				SampleRate: fb.SampleRate(),
				FFTSize:    fb.FFTSize(),
				Bands:      fb.Bands(),
				Bins:       fb.Bins(),
				Boundaries: fb.Boundaries(),
			})
		},
	}
}
