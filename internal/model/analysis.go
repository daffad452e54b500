package model

import "encoding/json"

// Realtime event names exchanged with the analysis server.
const (
	EventConnect       = "connect"
	EventDisconnect    = "disconnect"
	EventStartAnalysis = "start_analysis"
	EventProgress      = "progress"
	EventComplete      = "analysis_complete"
	EventError         = "analysis_error"
)

// ConfigStatus is the payload of the server's configuration check endpoint.
type ConfigStatus struct {
	Jira        bool    `json:"jira"`
	AzureDevOps bool    `json:"azure_devops"`
	AIProvider  *string `json:"ai_provider"`
}

// AnalysisRequest is sent once per submit as the start_analysis payload.
type AnalysisRequest struct {
	Repository            string  `json:"repository" yaml:"repository"`
	PRID                  string  `json:"pr_id" yaml:"pr_id"`
	IssueKey              *string `json:"issue_key" yaml:"issue_key"`
	GenerateDocumentation bool    `json:"generate_documentation" yaml:"generate_documentation"`
	GenerateCodeReview    bool    `json:"generate_code_review" yaml:"generate_code_review"`
}

// ProgressEvent reports analysis progress. A negative Progress is an error
// sentinel, not a percentage.
type ProgressEvent struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Failed reports whether the event carries the error sentinel.
func (e ProgressEvent) Failed() bool { return e.Progress < 0 }

// ErrorEvent is the analysis_error payload.
type ErrorEvent struct {
	Error string `json:"error"`
}

// AnalysisResult is the analysis_complete payload. Issue and PR data are kept
// raw; their shape belongs to the server's upstream integrations.
type AnalysisResult struct {
	Documentation *string         `json:"documentation"`
	CodeReview    *string         `json:"code_review"`
	IssueData     json.RawMessage `json:"issue_data"`
	PRData        json.RawMessage `json:"pr_data"`
}

// PRSummary is the display subset of pr_data. Optional fields are nil when the
// server did not send them.
type PRSummary struct {
	Title         *string `json:"title,omitempty" yaml:"title,omitempty"`
	Description   *string `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedBy     *string `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	SourceRefName *string `json:"sourceRefName,omitempty" yaml:"sourceRefName,omitempty"`
	TargetRefName *string `json:"targetRefName,omitempty" yaml:"targetRefName,omitempty"`
	Status        *string `json:"status,omitempty" yaml:"status,omitempty"`
	TotalCommits  int64   `json:"totalCommits" yaml:"totalCommits"`
	TotalFiles    int64   `json:"totalFiles" yaml:"totalFiles"`
}

// BadgeState is the tri-state shown for each configured integration.
type BadgeState int

const (
	BadgeUnknown BadgeState = iota
	BadgeConnected
	BadgeNotConfigured
	BadgeError
)

func (s BadgeState) String() string {
	switch s {
	case BadgeConnected:
		return "connected"
	case BadgeNotConfigured:
		return "not-configured"
	case BadgeError:
		return "error"
	default:
		return "unknown"
	}
}

// Badge is one integration indicator in the header.
type Badge struct {
	Name  string
	Label string
	State BadgeState
}
