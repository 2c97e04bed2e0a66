package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/evoting-verifier/log"
)

// Runner executes a fixed catalog of Checks against whatever directory
// abstractions each Check closed over when it was built, honoring an
// exclusion list and bounding concurrency to Workers.
type Runner struct {
	Checks   []Check
	Excluded map[string]bool
	Workers  int
}

// NewRunner builds a Runner over checks, excluding any whose ID appears in
// excluded, running up to workers of them concurrently (workers <= 0 means
// unbounded — errgroup.SetLimit is skipped).
func NewRunner(checks []Check, excluded []string, workers int) *Runner {
	excludedSet := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = true
	}
	return &Runner{Checks: checks, Excluded: excludedSet, Workers: workers}
}

// Run executes every non-excluded check, in parallel bounded by Workers,
// and joins the results back in catalog order into a Report. Every check
// runs to completion and its goroutine never returns an error, so the
// returned error is always nil; a check's own failure is recorded in the
// Report, never returned as a Go error.
func (r *Runner) Run(ctx context.Context, period Period) (*Report, error) {
	report := NewReport(period, excludedIDs(r.Excluded))
	report.StartedAt = time.Now()

	reports := make([]CheckReport, len(r.Checks))
	g, gctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}

	for i, check := range r.Checks {
		i, check := i, check
		if check.Period != period {
			reports[i] = CheckReport{ID: check.ID, Name: check.Name, Category: check.Category, Period: check.Period, Excluded: true}
			continue
		}
		if r.Excluded[check.ID] {
			log.Debugw("verification check excluded", "check", check.ID)
			reports[i] = CheckReport{ID: check.ID, Name: check.Name, Category: check.Category, Period: check.Period, Excluded: true}
			continue
		}
		g.Go(func() error {
			log.Debugw("verification check started", "check", check.ID, "name", check.Name)
			start := time.Now()
			result := check.Run(gctx)
			duration := time.Since(start)
			reports[i] = CheckReport{
				ID:       check.ID,
				Name:     check.Name,
				Category: check.Category,
				Period:   check.Period,
				Duration: duration,
				Result:   result,
			}
			log.Debugw("verification check finished", "check", check.ID, "duration", duration.String(), "ok", result.IsOk())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Checks = reports
	report.FinishedAt = time.Now()
	return report, nil
}

func excludedIDs(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
