// Package publisher implements the concurrent fan-out core: one publish
// request goes out to every target platform, each through its own
// adapter, and comes back as a single aggregated result.
package publisher

import (
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/validation"
)

// Mode selects how the target platforms are dispatched.
type Mode string

const (
	// ModeParallel dispatches platforms concurrently under the worker cap.
	ModeParallel Mode = "parallel"
	// ModeSequential dispatches platforms one at a time in target order.
	ModeSequential Mode = "sequential"
)

// Request is one publish request fanned out to a set of platforms.
type Request struct {
	ID       string             `json:"id"`
	Text     string             `json:"text"`
	Media    []content.MediaRef `json:"media,omitempty"`
	PostType content.PostType   `json:"post_type"`

	// TargetPlatforms lists the platforms to publish to, in submission
	// order. The result carries exactly one outcome per entry, same order.
	TargetPlatforms []string `json:"target_platforms"`

	// Credentials maps platform name to the credential used for its call.
	Credentials map[string]platform.Credential `json:"-"`

	// Options carries per-platform option bags (page_id, visibility, ...).
	Options map[string]map[string]any `json:"options,omitempty"`

	Mode Mode `json:"mode,omitempty"`

	// Timeout bounds each platform call including retries. Zero uses the
	// publisher default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// ScheduledAt defers the publish when set in the future. Immediate
	// requests leave it zero.
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
}

// OutcomeStatus is the terminal state of one platform's publish attempt.
type OutcomeStatus string

const (
	// OutcomeSucceeded means the platform accepted the post.
	OutcomeSucceeded OutcomeStatus = "succeeded"
	// OutcomeFailed means the platform call failed terminally.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeSkipped means validation blocked the platform before any
	// network call was made.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome is the per-platform result of one publish request.
type Outcome struct {
	Platform   string               `json:"platform"`
	Status     OutcomeStatus        `json:"status"`
	ExternalID string               `json:"external_id,omitempty"`
	Issues     []validation.Issue   `json:"issues,omitempty"`
	Error      *errors.PublishError `json:"error,omitempty"`
	Attempts   int                  `json:"attempts,omitempty"`
	Duration   time.Duration        `json:"duration"`
}

// Succeeded reports whether the platform accepted the post.
func (o Outcome) Succeeded() bool { return o.Status == OutcomeSucceeded }

// ResultStatus summarizes a whole fan-out.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultPartial ResultStatus = "partial"
	ResultFailed  ResultStatus = "failed"
)

// Result aggregates the outcomes of one publish request. Outcomes appear
// in the same order the platforms were submitted, regardless of
// completion order.
type Result struct {
	RequestID string        `json:"request_id"`
	Status    ResultStatus  `json:"status"`
	Outcomes  []Outcome     `json:"outcomes"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// newResult aggregates outcomes into a result. Every outcome that is not
// a success counts as failed, including validation skips.
func newResult(requestID string, outcomes []Outcome, elapsed time.Duration) *Result {
	result := &Result{
		RequestID: requestID,
		Outcomes:  outcomes,
		Duration:  elapsed,
		Timestamp: time.Now(),
	}

	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	switch {
	case result.Failed == 0:
		result.Status = ResultSuccess
	case result.Succeeded == 0:
		result.Status = ResultFailed
	default:
		result.Status = ResultPartial
	}
	return result
}
