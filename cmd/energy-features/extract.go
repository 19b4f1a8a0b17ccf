package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-energy/energy"
	"github.com/RyanBlaney/sonido-energy/energy/config"
	"github.com/RyanBlaney/sonido-energy/transcode"
)

type extractOutput struct {
	File            string                    `json:"file"`
	SourceRate      int                       `json:"source_rate"`
	Channels        int                       `json:"channels"`
	DurationSeconds float64                   `json:"duration_seconds"`
	ResampledLength int                       `json:"resampled_length"`
	FrameCount      int                       `json:"frame_count"`
	Truncated       bool                      `json:"truncated"`
	Rows            int                       `json:"rows"`
	Cols            int                       `json:"cols"`
	Features        [][]float64               `json:"features,omitempty"`
	Stats           []energy.CoefficientStats `json:"stats,omitempty"`
	Tensor          *energy.Tensor            `json:"tensor,omitempty"`
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	var (
		stats       bool
		tensor      bool
		layout      string
		maxDuration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "extract <file.wav>",
		Short: "Extract the MFCC feature map of a WAV file",
		Long: `Extract the fixed-shape MFCC feature map of a WAV file.

Only the first channel is used. By default the full [pad_length][num_coefficients]
map is printed; --stats prints per-coefficient mean/std instead and --tensor
prints the flattened [1, coefficients, frames, 1] model input.

Examples:
  energy-features extract song.wav --stats
  energy-features extract song.wav --tensor --layout transpose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.featureConfig()
			if err != nil {
				return err
			}
			if layout != "" {
				cfg.Layout = config.TensorLayout(layout)
			}

			extractor, err := energy.NewExtractor(cfg)
			if err != nil {
				return err
			}

			audio, err := transcode.NewDecoder(&transcode.DecoderConfig{MaxDuration: maxDuration}).DecodeFile(args[0])
			if err != nil {
				return err
			}

			result, err := extractor.Extract(audio)
			if err != nil {
				return err
			}

			out := extractOutput{
				File:            args[0],
				SourceRate:      audio.SampleRate,
				Channels:        audio.Channels,
				DurationSeconds: audio.Duration.Seconds(),
				ResampledLength: result.ResampledLength,
				FrameCount:      result.FrameCount,
				Truncated:       result.Truncated(),
				Rows:            result.Features.Rows(),
				Cols:            result.Features.Cols(),
			}

			switch {
			case tensor:
				out.Tensor, err = extractor.Tensor(result.Features)
				if err != nil {
					return err
				}
			case stats:
				out.Stats = result.Features.Stats()
			default:
				out.Features = result.Features.Data
			}

			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "print per-coefficient statistics instead of the map")
	cmd.Flags().BoolVar(&tensor, "tensor", false, "print the flattened model input tensor")
	cmd.Flags().StringVar(&layout, "layout", "", "tensor layout: reshape or transpose (default from config)")
	cmd.Flags().DurationVar(&maxDuration, "max-duration", 0, "decode at most this much audio (0: whole file)")

	return cmd
}
