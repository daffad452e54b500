package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"prdoc/internal/analysis"
	"prdoc/internal/config"
	"prdoc/internal/model"
	"prdoc/internal/realtime"
	"prdoc/internal/report"
)

var (
	analyzeRepo     string
	analyzePR       string
	analyzeIssue    string
	analyzeNoDocs   bool
	analyzeNoReview bool
	analyzeExport   string
)

// ErrConnectionLost is returned when the server hangs up mid-analysis.
var ErrConnectionLost = errors.New("connection closed before the analysis finished")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis without the TUI",
	Long: `Submit an analysis request and stream its progress to stdout.

The repository defaults to defaults.repository (or AZDO_REPO). The command
exits non-zero when the request is invalid or the server reports an error.

Examples:
  prdoc analyze --repo MedicineOneLibrary --pr 1234
  prdoc analyze --pr 1234 --issue PROJ-182 --no-review --export md`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRepo, "repo", "", "Repository name (default: defaults.repository)")
	analyzeCmd.Flags().StringVar(&analyzePR, "pr", "", "Pull request ID")
	analyzeCmd.Flags().StringVar(&analyzeIssue, "issue", "", "Jira issue key")
	analyzeCmd.Flags().BoolVar(&analyzeNoDocs, "no-docs", false, "Skip documentation generation")
	analyzeCmd.Flags().BoolVar(&analyzeNoReview, "no-review", false, "Skip code review generation")
	analyzeCmd.Flags().StringVar(&analyzeExport, "export", "", "Write the result as html, md, json or yaml")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg, true)

	repo := analyzeRepo
	if repo == "" {
		repo = cfg.Defaults.Repository
	}
	form := analysis.Form{
		Repository:            repo,
		PRID:                  analyzePR,
		IssueKey:              analyzeIssue,
		GenerateDocumentation: cfg.Defaults.GenerateDocumentation && !analyzeNoDocs,
		GenerateCodeReview:    cfg.Defaults.GenerateCodeReview && !analyzeNoReview,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return analyze(ctx, cfg, form, analyzeExport, os.Stdout)
}

// analyze runs one request to completion and prints progress to w.
func analyze(ctx context.Context, cfg *config.Config, form analysis.Form, exportFormat string, w io.Writer) error {
	if _, err := form.Request(); err != nil {
		return err
	}
	if exportFormat != "" && !report.Supported(exportFormat) {
		return fmt.Errorf("unsupported export format %q", exportFormat)
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Server.Timeout)
	client, err := realtime.Dial(dialCtx, cfg.Server.URL, dialOptions(cfg)...)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Server.URL, err)
	}
	defer client.Close()

	s := analysis.NewSession()
	req, err := s.Submit(form, client)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Analysing %s PR %s\n", req.Repository, req.PRID)
	printProgress(w, s.Progress())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-client.Events():
			if !ok {
				return ErrConnectionLost
			}
			if err := s.Dispatch(ev.Name, ev.Data); err != nil {
				return err
			}
			switch ev.Name {
			case model.EventProgress:
				printProgress(w, s.Progress())
			case model.EventError:
				return fmt.Errorf("analysis failed: %s", analysis.SanitizeTerminal(s.Error()))
			case model.EventComplete:
				printResults(w, s.Results())
				if exportFormat == "" {
					return nil
				}
				return exportSession(w, s, exportFormat, cfg.Report.Dir)
			case model.EventDisconnect:
				return ErrConnectionLost
			}
		}
	}
}

func printProgress(w io.Writer, p analysis.Progress) {
	msg := analysis.SanitizeTerminal(p.Message)
	if p.Failed {
		fmt.Fprintf(w, "[%4s] %s\n", p.Label(), color.RedString(msg))
		return
	}
	fmt.Fprintf(w, "[%4s] %s\n", p.Label(), msg)
}

func printResults(w io.Writer, r *analysis.Results) {
	if r == nil {
		return
	}
	section := func(title, body string) {
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", color.New(color.Bold).Sprint(title), strings.Repeat("─", len(title)), body)
	}
	section("Documentation", r.Documentation.Display())
	section("Code Review", r.CodeReview.Display())
	section("Jira Issue", analysis.SanitizeTerminal(r.Issue))
	section("Pull Request", analysis.SanitizeTerminal(r.PR))
}

func exportSession(w io.Writer, s *analysis.Session, format, dir string) error {
	r, err := report.FromSession(s)
	if err != nil {
		return err
	}
	path, err := report.Write(r, format, dir)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(w, "\n%s Saved %s\n", color.GreenString("✓"), path)
	return nil
}
