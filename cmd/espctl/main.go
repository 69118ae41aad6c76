package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/esphost/internal/logging"
	"github.com/danmuck/esphost/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        cliConfig
	logger     zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "espctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: defaultCLIConfig()}

	rootCmd := &cobra.Command{
		Use:           "espctl",
		Short:         "Frame, decode and replay ESP-Hosted link traffic",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if opts.logLevel != "" {
				lvl, ok := logging.ParseLevel(opts.logLevel)
				if !ok {
					return fmt.Errorf("unknown log level %q", opts.logLevel)
				}
				level = lvl
				os.Setenv(logging.EnvLogLevel, opts.logLevel)
			}
			if strings.EqualFold(strings.TrimSpace(opts.logLevel), "wire") {
				logging.ConfigureWire()
			} else {
				logging.ConfigureRuntime()
			}
			opts.logger = observability.InitLogger("espctl", level)
			if opts.configPath == "" {
				return nil
			}
			cfg, err := loadCLIConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "link config (toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace|debug|info|warn|error, or wire to dump frames")

	rootCmd.AddCommand(
		decodeCmd(opts),
		requestCmd(opts),
		hciCmd(opts),
		replayCmd(opts),
		configCmd(),
	)
	return rootCmd
}
