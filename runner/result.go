// Package runner executes a verification catalog against a snapshot and
// aggregates the outcome into a Report (C6): each check runs independently,
// is timed, and contributes errors (it could not be evaluated) or failures
// (it was evaluated and did not hold) to the overall classification.
package runner

import "fmt"

// VerificationFailure records that a check was fully evaluated and found
// the snapshot did not satisfy an invariant.
type VerificationFailure struct {
	Message string
}

// VerificationError records that a check could not be evaluated at all
// (a missing file, a decode error, an unreachable directory) — distinct
// from a failure, since it says nothing about whether the invariant holds.
type VerificationError struct {
	Message string
}

// VerificationResult accumulates the errors and failures a single check
// produced. A check with neither is Ok.
type VerificationResult struct {
	Errors   []VerificationError
	Failures []VerificationFailure
}

// NewVerificationResult returns an empty, Ok result.
func NewVerificationResult() *VerificationResult {
	return &VerificationResult{}
}

// PushError appends an error with the given message.
func (r *VerificationResult) PushError(format string, args ...any) {
	r.Errors = append(r.Errors, VerificationError{Message: fmt.Sprintf(format, args...)})
}

// PushFailure appends a failure with the given message.
func (r *VerificationResult) PushFailure(format string, args ...any) {
	r.Failures = append(r.Failures, VerificationFailure{Message: fmt.Sprintf(format, args...)})
}

// Append merges other's errors and failures into r.
func (r *VerificationResult) Append(other *VerificationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Failures = append(r.Failures, other.Failures...)
}

// IsOk reports whether the check produced neither errors nor failures.
func (r *VerificationResult) IsOk() bool {
	return !r.HasErrors() && !r.HasFailures()
}

// HasErrors reports whether the check produced any error.
func (r *VerificationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasFailures reports whether the check produced any failure.
func (r *VerificationResult) HasFailures() bool {
	return len(r.Failures) > 0
}
