package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"prdoc/internal/log"
	"prdoc/internal/model"
)

// StartMessage is shown when a request has just been sent.
const StartMessage = "Starting analysis..."

// ErrFormDisabled is returned by Submit while a request is in flight.
var ErrFormDisabled = errors.New("analysis already in progress")

// Emitter sends one realtime event.
type Emitter interface {
	Emit(event string, payload interface{}) error
}

// Progress is the state of the progress panel.
type Progress struct {
	Percent int
	Message string
	// Failed is set by the negative sentinel; the fill turns to the error
	// colour and Message is shown as an error.
	Failed bool
}

// Label is the text painted inside the bar.
func (p Progress) Label() string { return strconv.Itoa(p.Percent) + "%" }

// Session tracks one analysis flow on the client. It is not safe for
// concurrent use; the UI event loop owns it.
type Session struct {
	// ID identifies the current request in logs and exports.
	ID string

	formDisabled    bool
	progressVisible bool
	resultsVisible  bool
	scrollPending   bool

	progress Progress
	request  *model.AnalysisRequest
	result   *model.AnalysisResult
	raw      json.RawMessage
	results  *Results
	errMsg   string
}

// NewSession returns a session with an enabled form and hidden panels.
func NewSession() *Session { return &Session{} }

func (s *Session) FormEnabled() bool     { return !s.formDisabled }
func (s *Session) ProgressVisible() bool { return s.progressVisible }
func (s *Session) ResultsVisible() bool  { return s.resultsVisible }
func (s *Session) Progress() Progress    { return s.progress }

// Request is the last submitted request, nil before the first submit.
func (s *Session) Request() *model.AnalysisRequest { return s.request }

// Results is the rendered result of the last completed analysis.
func (s *Session) Results() *Results { return s.results }

// Result is the decoded result of the last completed analysis.
func (s *Session) Result() *model.AnalysisResult { return s.result }

// RawResult is the analysis_complete payload as received.
func (s *Session) RawResult() json.RawMessage { return s.raw }

// Error is the server-reported error that replaced the progress panel, if any.
func (s *Session) Error() string { return s.errMsg }

// TakeScroll reports once that the results panel should be brought into view.
func (s *Session) TakeScroll() bool {
	v := s.scrollPending
	s.scrollPending = false
	return v
}

// Submit validates the form and emits exactly one start_analysis event.
// Validation failures leave the session untouched and emit nothing.
func (s *Session) Submit(f Form, em Emitter) (model.AnalysisRequest, error) {
	if s.formDisabled {
		return model.AnalysisRequest{}, ErrFormDisabled
	}
	req, err := f.Request()
	if err != nil {
		return req, err
	}

	s.ID = uuid.NewString()
	s.disableForm()
	s.progressVisible = true
	s.resultsVisible = false
	s.errMsg = ""
	s.progress = Progress{Percent: 0, Message: StartMessage}
	s.request = &req

	log.WithField("analysis", s.ID).Infof("starting analysis of %s PR %s", req.Repository, req.PRID)
	if err := em.Emit(model.EventStartAnalysis, req); err != nil {
		s.Fail(model.ErrorEvent{Error: err.Error()})
		return req, fmt.Errorf("send analysis request: %w", err)
	}
	return req, nil
}

// ApplyProgress paints a progress event. A negative value marks the bar as
// failed and keeps the last percentage.
func (s *Session) ApplyProgress(ev model.ProgressEvent) {
	if ev.Failed() {
		s.progress.Failed = true
		s.progress.Message = ev.Message
		return
	}
	s.progress.Percent = ev.Progress
	s.progress.Message = ev.Message
}

// Complete renders a finished analysis and re-enables the form.
func (s *Session) Complete(res model.AnalysisResult) {
	s.enableForm()
	s.resultsVisible = true
	s.result = &res
	r := Render(res)
	s.results = &r
	s.scrollPending = true
}

// Fail replaces the progress panel with the server's error and re-enables
// the form.
func (s *Session) Fail(ev model.ErrorEvent) {
	s.errMsg = ev.Error
	s.progressVisible = true
	s.enableForm()
}

// Dispatch routes one realtime event.
func (s *Session) Dispatch(name string, data json.RawMessage) error {
	switch name {
	case model.EventConnect:
		log.Info("connected to analysis server")
	case model.EventDisconnect:
		log.Info("disconnected from analysis server")
	case model.EventProgress:
		var ev model.ProgressEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode progress: %w", err)
		}
		log.WithField("analysis", s.ID).Debugf("progress %d: %s", ev.Progress, ev.Message)
		s.ApplyProgress(ev)
	case model.EventComplete:
		var res model.AnalysisResult
		if err := json.Unmarshal(data, &res); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		log.WithField("analysis", s.ID).Info("analysis complete")
		s.raw = append(json.RawMessage(nil), data...)
		s.Complete(res)
	case model.EventError:
		var ev model.ErrorEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode analysis error: %w", err)
		}
		log.WithField("analysis", s.ID).Errorf("analysis failed: %s", ev.Error)
		s.Fail(ev)
	default:
		log.Debugf("ignoring realtime event %q", name)
	}
	return nil
}

func (s *Session) disableForm() { s.formDisabled = true }
func (s *Session) enableForm()  { s.formDisabled = false }
