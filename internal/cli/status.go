package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"prdoc/internal/config"
	"prdoc/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which integrations the analysis server has configured",
	Long: `Query the analysis server's configuration endpoint and print one badge
each for Jira, Azure DevOps and the AI provider.

An unreachable server is reported as an error on every badge.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg, true)
	return showStatus(cmd.Context(), cfg, os.Stdout)
}

func showStatus(ctx context.Context, cfg *config.Config, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 2*cfg.Server.Timeout)
	defer cancel()

	checker := newChecker(cfg)
	fmt.Fprintf(w, "Server: %s\n\n", cfg.Server.URL)
	printBadges(w, checker.Badges(ctx))
	return nil
}

func printBadges(w io.Writer, badges []model.Badge) {
	for _, b := range badges {
		fmt.Fprintf(w, "  %-14s %s\n", b.Name, badgeColor(b.State).Sprint(b.Label))
	}
}

func badgeColor(s model.BadgeState) *color.Color {
	switch s {
	case model.BadgeConnected:
		return color.New(color.FgGreen)
	case model.BadgeNotConfigured:
		return color.New(color.FgYellow)
	case model.BadgeError:
		return color.New(color.FgRed)
	}
	return color.New(color.Faint)
}
