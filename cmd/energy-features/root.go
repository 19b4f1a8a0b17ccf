package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-energy/energy/config"
	"github.com/RyanBlaney/sonido-energy/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "energy-features",
		Short:         "MFCC feature extraction for the energy model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger := logging.NewWriterLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr())
			logger.SetLevel(level)
			logging.SetGlobalLogger(logger)

			if !opts.noColor && isTerminal(cmd.ErrOrStderr()) {
				logging.EnableColors()
			} else {
				logging.DisableColors()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "feature config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored log output")

	cmd.AddCommand(
		newExtractCmd(opts),
		newFilterbankCmd(opts),
		newPlaylistCmd(),
	)

	return cmd
}

func (o *rootOptions) featureConfig() (*config.FeatureConfig, error) {
	if o.configPath == "" {
		return config.DefaultFeatureConfig(), nil
	}
	return config.LoadFeatureConfig(o.configPath)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
