// Package cli holds the prdoc command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"prdoc/internal/config"
	"prdoc/internal/log"
)

var (
	configPath string
	serverURL  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "prdoc",
	Short: "Request PR documentation and code reviews from the analysis server",
	Long: `prdoc talks to a PR analysis server. It checks which integrations the
server has configured, submits an analysis request for one pull request and
shows progress and results as they arrive.

With no arguments, launches the interactive TUI. The form is prefilled from
the current git checkout when its branch has an open pull request.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runInteractive(cfg)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("Config file (default: %s merged with %s)", config.UserConfigPath(), config.ProjectConfigName))
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Analysis server URL (overrides server.url)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// loadConfig reads configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging sends logs to rotated files. Headless commands run at debug
// level also echo them to stderr.
func setupLogging(cfg *config.Config, headless bool) {
	log.InitLogger(log.Options{
		Dir:    cfg.Log.Dir,
		Stdout: headless && strings.EqualFold(cfg.Log.Level, "debug"),
		Level:  log.GetLogLevel(cfg.Log.Level),
	})
}
