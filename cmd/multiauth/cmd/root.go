package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/multiAuth/internal/config"
)

var (
	envFile string

	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "multiauth",
	Short: "multiauth issues and tracks per-device sessions",
	Long: `multiauth signs users in with a password, a phone number or Google and
Apple, and keeps one Redis-backed session per signed-in device.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(envFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = cfg.Logger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an env file; missing files are ignored")
}
