package tui

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prdoc/internal/analysis"
	"prdoc/internal/config"
	"prdoc/internal/forge"
	"prdoc/internal/log"
	"prdoc/internal/model"
	"prdoc/internal/realtime"
	"prdoc/internal/report"
	"prdoc/internal/status"
)

// — state ———————————————————————————————————————————————————————————————————

type appState int

const (
	stateNormal appState = iota
	stateAlert
)

type focusArea int

const (
	focusForm focusArea = iota
	focusResults
)

// — styles ——————————————————————————————————————————————————————————————————

const (
	colorAccent = lipgloss.Color("205")
	colorDanger = lipgloss.Color("196")
	colorOK     = lipgloss.Color("2")
	colorWarn   = lipgloss.Color("214")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginLeft(2)

	dimStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle  = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	okStyle    = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	focusStyle = lipgloss.NewStyle().Foreground(colorAccent)
	labelStyle = lipgloss.NewStyle().Faint(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			MarginLeft(1)

	panelStyle = lipgloss.NewStyle().
			Padding(0, 2)

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(0, 2).
			MarginLeft(1)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Background(lipgloss.Color("236"))

	buttonFocusStyle = buttonStyle.
				Foreground(lipgloss.Color("0")).
				Background(colorAccent).
				Bold(true)

	buttonDisabledStyle = buttonStyle.Faint(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 3).
			Width(50)
)

// — messages ————————————————————————————————————————————————————————————————

type badgesMsg struct {
	badges []model.Badge
}

type connectedMsg struct {
	conn Conn
	err  error
}

// realtimeMsg and realtimeClosedMsg carry the connection they came from so
// messages from a replaced connection can be dropped.
type realtimeMsg struct {
	conn  Conn
	event realtime.Event
}

type realtimeClosedMsg struct {
	conn Conn
}

type workspaceMsg struct {
	ws *model.Workspace
}

type exportedMsg struct {
	path string
	err  error
}

// — collaborators ———————————————————————————————————————————————————————————

// Conn is the realtime connection the UI talks through.
type Conn interface {
	Emit(event string, payload interface{}) error
	Events() <-chan realtime.Event
	Close() error
}

// Options wires the UI to its collaborators. Nil functions disable the
// corresponding feature.
type Options struct {
	Defaults config.DefaultsConfig
	Report   config.ReportConfig

	CheckStatus     func(ctx context.Context) []model.Badge
	Dial            func(ctx context.Context) (Conn, error)
	DetectWorkspace func() *model.Workspace
}

var (
	errNotConnected   = errors.New("not connected to the analysis server")
	errConnectionLost = errors.New("connection to the analysis server lost")
)

// offline stands in for the connection before it is established.
type offline struct{}

func (offline) Emit(string, interface{}) error { return errNotConnected }

// — model ———————————————————————————————————————————————————————————————————

type Model struct {
	opts Options

	width  int
	height int

	state    appState
	focus    focusArea
	alertMsg string
	notice   string

	badges    []model.Badge
	conn      Conn
	connErr   error
	dialing   bool
	workspace *model.Workspace
	submitted bool

	session  *analysis.Session
	form     analysisForm
	bar      progress.Model
	errBar   progress.Model
	tabs     TabBar
	viewport viewport.Model
}

func New(opts Options) Model {
	return Model{
		opts:     opts,
		dialing:  opts.Dial != nil,
		badges:   status.Pending(),
		session:  analysis.NewSession(),
		form:     newAnalysisForm(opts.Defaults),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		errBar:   progress.New(progress.WithSolidFill(string(colorDanger)), progress.WithoutPercentage()),
		tabs:     NewTabBar(),
		viewport: viewport.New(80, 10),
	}
}

// — commands ————————————————————————————————————————————————————————————————

func checkStatusCmd(check func(context.Context) []model.Badge) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return badgesMsg{badges: check(ctx)}
	}
}

func dialCmd(dial func(context.Context) (Conn, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		conn, err := dial(ctx)
		return connectedMsg{conn: conn, err: err}
	}
}

// listenCmd waits for the next realtime event on conn.
func listenCmd(conn Conn) tea.Cmd {
	ch := conn.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return realtimeClosedMsg{conn: conn}
		}
		return realtimeMsg{conn: conn, event: ev}
	}
}

func detectWorkspaceCmd(detect func() *model.Workspace) tea.Cmd {
	return func() tea.Msg {
		return workspaceMsg{ws: detect()}
	}
}

func exportCmd(s *analysis.Session, cfg config.ReportConfig) tea.Cmd {
	r, err := report.FromSession(s)
	return func() tea.Msg {
		if err != nil {
			return exportedMsg{err: err}
		}
		path, err := report.Write(r, cfg.Format, cfg.Dir)
		return exportedMsg{path: path, err: err}
	}
}

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		if err := cmd.Run(); err != nil {
			log.Warnf("open %s: %v", url, err)
		}
		return nil
	}
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.opts.CheckStatus != nil {
		cmds = append(cmds, checkStatusCmd(m.opts.CheckStatus))
	}
	if m.opts.Dial != nil {
		cmds = append(cmds, dialCmd(m.opts.Dial))
	}
	if m.opts.DetectWorkspace != nil {
		cmds = append(cmds, detectWorkspaceCmd(m.opts.DetectWorkspace))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.form.SetDisabled(!next.session.FormEnabled())
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.SetWidth(msg.Width)
		m.bar.Width = max(msg.Width-14, 10)
		m.errBar.Width = m.bar.Width
		return m, nil

	case badgesMsg:
		m.badges = msg.badges
		return m, nil

	case connectedMsg:
		m.dialing = false
		if msg.err != nil {
			log.Errorf("realtime connect: %v", msg.err)
			m.connErr = msg.err
			return m, nil
		}
		if m.conn != nil && m.conn != msg.conn {
			_ = m.conn.Close()
		}
		m.conn = msg.conn
		m.connErr = nil
		m.notice = ""
		return m, listenCmd(m.conn)

	case realtimeMsg:
		if msg.conn != m.conn {
			return m, nil
		}
		if err := m.session.Dispatch(msg.event.Name, msg.event.Data); err != nil {
			log.Errorf("realtime %s: %v", msg.event.Name, err)
		}
		if m.session.TakeScroll() {
			m.showResults()
		}
		return m, listenCmd(m.conn)

	case realtimeClosedMsg:
		if msg.conn != m.conn {
			return m, nil
		}
		m.conn = nil
		m.connErr = errNotConnected
		if !m.session.FormEnabled() {
			// No terminal event can arrive on a dead connection.
			m.session.Fail(model.ErrorEvent{Error: errConnectionLost.Error()})
		}
		return m, nil

	case workspaceMsg:
		m.workspace = msg.ws
		if msg.ws != nil && !m.submitted {
			m.form.Prefill(msg.ws.Repository, forge.PRID(msg.ws))
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.notice = errStyle.Render("Export failed: " + msg.err.Error())
			return m, nil
		}
		m.notice = okStyle.Render("Saved " + msg.path)
		return m, nil
	}

	if m.state == stateAlert {
		return m.updateAlert(msg)
	}
	if m.focus == focusResults {
		return m.updateResults(msg)
	}
	return m.updateForm(msg)
}

func (m Model) updateAlert(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter", "esc", " ":
			m.state = stateNormal
			m.alertMsg = ""
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			if m.conn == nil && !m.dialing && m.opts.Dial != nil {
				m.dialing = true
				m.notice = dimStyle.Render("Reconnecting…")
				return m, dialCmd(m.opts.Dial)
			}
			return m, nil
		case "esc":
			if m.session.ResultsVisible() {
				m.focus = focusResults
			}
			return m, nil
		}
	}

	var (
		cmd    tea.Cmd
		submit bool
	)
	m.form, cmd, submit = m.form.Update(msg)
	if submit {
		return m.submit()
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if !m.session.FormEnabled() {
		return m, nil
	}

	var em analysis.Emitter = offline{}
	if m.conn != nil {
		em = m.conn
	}

	_, err := m.session.Submit(m.form.Values(), em)
	switch {
	case errors.Is(err, analysis.ErrRepositoryRequired):
		m.state, m.alertMsg = stateAlert, "Repository is required!"
	case errors.Is(err, analysis.ErrPRIDRequired):
		m.state, m.alertMsg = stateAlert, "PR ID is required!"
	case err != nil:
		log.Errorf("submit: %v", err)
		m.submitted = true
	default:
		m.submitted = true
		m.notice = ""
	}
	return m, nil
}

func (m Model) updateResults(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "f", "n":
			m.focus = focusForm
			return m, textinput.Blink
		case "x":
			return m, exportCmd(m.session, m.opts.Report)
		case "o":
			if m.workspace != nil && m.workspace.PR != nil && m.workspace.PR.WebURL != "" {
				return m, openURLCmd(m.workspace.PR.WebURL)
			}
			return m, nil
		case "1", "2", "3", "4", "left", "right", "h", "l", "[", "]":
			before := m.tabs.ActiveID()
			m.tabs, _ = m.tabs.Update(msg)
			if m.tabs.ActiveID() != before {
				m.refreshContent()
				m.viewport.GotoTop()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// showResults brings the results panel into view after a completion.
func (m *Model) showResults() {
	m.focus = focusResults
	m.tabs.Activate(TabDocs)
	m.refreshContent()
	m.viewport.GotoTop()
}

// refreshContent loads the active tab's text into the viewport.
func (m *Model) refreshContent() {
	m.viewport.SetContent(m.tabContent(m.tabs.ActiveID()))
}

func (m Model) tabContent(id string) string {
	r := m.session.Results()
	if r == nil {
		return ""
	}
	w := max(m.viewport.Width-2, 20)
	wrap := lipgloss.NewStyle().Width(w)

	region := func(reg analysis.Region) string {
		if reg.Empty() {
			return dimStyle.Render(reg.Placeholder)
		}
		return wrap.Render(reg.Display())
	}

	switch id {
	case TabDocs:
		return region(r.Documentation)
	case TabReview:
		return region(r.CodeReview)
	case TabIssue:
		if !r.HasIssue {
			return dimStyle.Render(r.Issue)
		}
		return analysis.SanitizeTerminal(r.Issue)
	case TabPR:
		if r.PRSummary == nil {
			return dimStyle.Render(r.PR)
		}
		return analysis.SanitizeTerminal(r.PR)
	}
	return ""
}

// layout sizes the viewport to whatever height the other panels leave.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	used := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderFormArea()) +
		lipgloss.Height(m.renderHelp())
	if m.session.ProgressVisible() {
		used += lipgloss.Height(m.renderProgress())
	}
	if m.session.ResultsVisible() {
		used += lipgloss.Height(m.tabs.View())
	}

	w := max(m.width-4, 20)
	h := max(m.height-used, 3)
	if w != m.viewport.Width || h != m.viewport.Height {
		m.viewport.Width = w
		m.viewport.Height = h
		if m.session.ResultsVisible() {
			m.refreshContent()
		}
	}
}

// Close releases the realtime connection, if any.
func (m Model) Close() {
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

// ViewportHeight exposes the computed results height for tests and callers
// embedding the model.
func (m Model) ViewportHeight() int { return m.viewport.Height }
