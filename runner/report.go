package runner

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the three-way classification of a completed verification run.
type Outcome string

const (
	OutcomeOk          Outcome = "Ok"
	OutcomeHasFailures Outcome = "HasFailures"
	OutcomeHasErrors   Outcome = "HasErrors"
)

// CheckReport is one check's place in a Report: its catalog metadata, its
// result, and how long it took to run.
type CheckReport struct {
	ID       string
	Name     string
	Category Category
	Period   Period
	Excluded bool
	Duration time.Duration
	Result   *VerificationResult
}

// Outcome classifies this single check's result (an excluded check is
// always Ok — it was never evaluated).
func (c CheckReport) Outcome() Outcome {
	if c.Excluded || c.Result == nil {
		return OutcomeOk
	}
	if c.Result.HasErrors() {
		return OutcomeHasErrors
	}
	if c.Result.HasFailures() {
		return OutcomeHasFailures
	}
	return OutcomeOk
}

// Report is the complete record of a verification run: a correlation id,
// the period(s) covered, the exclusion list actually applied, every
// check's individual outcome in catalog order, and the run's overall
// classification.
type Report struct {
	ID         string
	Period     Period
	Excluded   []string
	StartedAt  time.Time
	FinishedAt time.Time
	Checks     []CheckReport
}

// NewReport allocates a Report with a fresh correlation id.
func NewReport(period Period, excluded []string) *Report {
	return &Report{
		ID:       uuid.New().String(),
		Period:   period,
		Excluded: excluded,
	}
}

// Outcome classifies the overall run: HasErrors if any check errored,
// else HasFailures if any check failed, else Ok. Errors take precedence
// over failures because an unevaluated invariant is a stronger signal
// that the run itself is untrustworthy than an invariant that was
// evaluated and found false.
func (r *Report) Outcome() Outcome {
	sawFailure := false
	for _, c := range r.Checks {
		switch c.Outcome() {
		case OutcomeHasErrors:
			return OutcomeHasErrors
		case OutcomeHasFailures:
			sawFailure = true
		}
	}
	if sawFailure {
		return OutcomeHasFailures
	}
	return OutcomeOk
}

// ExitCode maps the report's outcome to the process exit code contract:
// 0 Ok, 1 HasFailures, 2 HasErrors.
func (r *Report) ExitCode() int {
	switch r.Outcome() {
	case OutcomeOk:
		return 0
	case OutcomeHasFailures:
		return 1
	default:
		return 2
	}
}
