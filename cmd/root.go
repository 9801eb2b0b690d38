package cmd

import (
	"context"
	"os"

	"summa/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmdPersistentFlags struct {
	LogLevel string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error) - overrides LOG_LEVEL")
}

var rootCmd = &cobra.Command{
	Use:   "summa",
	Short: "summa tracks live poker game sessions",
	Long:  `summa records who sits in which poker game, their buy-ins and stacks, and keeps every open view of a session up to date.`,
	Example: `summa serve
  summa migrate up
  summa sessions --username alice`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cfg := config.Get()
		level := cfg.LogLevel
		if rootCmdPersistentFlags.LogLevel != "" {
			level = rootCmdPersistentFlags.LogLevel
		}
		setupLogging(level, cfg.LogFormat)
	},
}

func setupLogging(level, format string) {
	log.SetOutput(os.Stdout)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, defaulting to info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

// ExecuteContext runs the command line; ctx ends long-running commands
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
