package main

import (
	"fmt"
	"os"

	"github.com/gear6io/plvclient/client/config"
	"github.com/gear6io/plvclient/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "plv-client",
		Short: "Frame stream client for remote vision pipelines",
		Long: `plv-client connects to a pipeline server, decodes the frames it streams
and acknowledges every one of them.

Examples:
plv-client connect
plv-client connect --server 10.0.0.5:2346 --viewer 127.0.0.1:8089
plv-client config init
plv-client config show`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: search plv-client.yml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newConnectCommand(flags),
		newConfigCommand(flags),
		newVersionCommand(),
	)
	return rootCmd
}

// loadConfig reads the explicit config file when one is given, otherwise the
// search path, and applies the global overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.Setup(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plv-client %s\n", Version)
		},
	}
}
