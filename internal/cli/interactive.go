package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"prdoc/internal/config"
	"prdoc/internal/forge"
	"prdoc/internal/realtime"
	"prdoc/internal/tui"
)

func runInteractive(cfg *config.Config) error {
	setupLogging(cfg, false)

	checker := newChecker(cfg)
	opts := tui.Options{
		Defaults:    cfg.Defaults,
		Report:      cfg.Report,
		CheckStatus: checker.Badges,
		Dial: func(ctx context.Context) (tui.Conn, error) {
			c, err := realtime.Dial(ctx, cfg.Server.URL, dialOptions(cfg)...)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		DetectWorkspace: forge.DetectWorkspace,
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	return nil
}
