package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carecompanion/carecompanion-api/internal/config"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "carecompanion",
		Short:         "CareCompanion escalation API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "path to the configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file loaded before the configuration")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(opts)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(opts)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Printf("carecompanion %s (built %s)\n", version, buildDate)
			},
		},
	)

	return root
}

// loadConfig reads the dotenv file, when present, and then the configuration
func loadConfig(opts *rootOptions) (*config.Config, *logrus.Logger, error) {
	logger := newLogger(config.LoggingConfig{Level: "info", Format: "json"})

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("file", opts.envFile).Warn("Failed to load env file")
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		return nil, nil, err
	}

	logger = newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"config_path": opts.configPath,
		"log_level":   logger.GetLevel().String(),
		"provider":    cfg.Notification.Provider,
	}).Info("Configuration loaded successfully")

	return cfg, logger, nil
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.SetLevel(logrus.InfoLevel)
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}
