// Command verifier runs the independent verification catalog against a
// published election-event snapshot and reports Ok/HasFailures/HasErrors.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/vocdoni/evoting-verifier/authority"
	"github.com/vocdoni/evoting-verifier/catalog"
	"github.com/vocdoni/evoting-verifier/config"
	"github.com/vocdoni/evoting-verifier/directory"
	"github.com/vocdoni/evoting-verifier/log"
	"github.com/vocdoni/evoting-verifier/runner"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infow("starting verifier", "root", cfg.Root, "period", cfg.Period)

	report, err := run(cfg)
	if err != nil {
		log.Fatalf("verification run failed: %v", err)
	}

	if err := renderReport(os.Stdout, report, cfg.Report.Format); err != nil {
		log.Fatalf("failed to render report: %v", err)
	}
	os.Exit(report.ExitCode())
}

// run wires a Config into the directory/keystore/catalog/runner stack and
// executes every requested period's catalog, merging the results into a
// single Report when the period is "both".
func run(cfg *config.Config) (*runner.Report, error) {
	ks, err := authority.NewKeystore(cfg.Keystore)
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}

	setupDir := directory.NewOnDiskSetupDirectory(cfg.Root)
	tallyDir := directory.NewOnDiskTallyDirectory(cfg.Root)
	now := time.Now()

	setupChecks := catalog.SetupChecks(setupDir, ks, now)
	tallyChecks := catalog.TallyChecks(setupDir, tallyDir, ks, now)

	ctx := context.Background()

	switch cfg.Period {
	case "setup":
		r := runner.NewRunner(setupChecks, cfg.Exclude, cfg.Workers)
		return r.Run(ctx, runner.PeriodSetup)
	case "tally":
		r := runner.NewRunner(tallyChecks, cfg.Exclude, cfg.Workers)
		return r.Run(ctx, runner.PeriodTally)
	default: // "both", enforced by Config.Validate
		setupReport, err := runner.NewRunner(setupChecks, cfg.Exclude, cfg.Workers).Run(ctx, runner.PeriodSetup)
		if err != nil {
			return nil, err
		}
		tallyReport, err := runner.NewRunner(tallyChecks, cfg.Exclude, cfg.Workers).Run(ctx, runner.PeriodTally)
		if err != nil {
			return nil, err
		}
		return mergeReports(setupReport, tallyReport), nil
	}
}

// mergeReports combines two single-period runs into the report for a
// "both" period run, keeping the wider [StartedAt, FinishedAt] span and
// the union of per-check results in catalog order (setup first).
func mergeReports(setup, tally *runner.Report) *runner.Report {
	merged := &runner.Report{
		ID:        setup.ID,
		Period:    "both",
		Excluded:  setup.Excluded,
		StartedAt: setup.StartedAt,
	}
	merged.Checks = append(merged.Checks, setup.Checks...)
	merged.Checks = append(merged.Checks, tally.Checks...)
	merged.FinishedAt = tally.FinishedAt
	if setup.FinishedAt.After(merged.FinishedAt) {
		merged.FinishedAt = setup.FinishedAt
	}
	return merged
}

// renderReport writes report to w in either human-readable text or JSON,
// per §6a's "cmd/verifier renders this as either a human-readable text
// summary or encoding/json output selected by the --report.format flag".
func renderReport(w *os.File, report *runner.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return renderText(w, report)
}

func renderText(w *os.File, report *runner.Report) error {
	fmt.Fprintf(w, "Verification report %s (period: %s)\n", report.ID, report.Period)
	fmt.Fprintf(w, "Started:  %s\n", report.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Finished: %s\n", report.FinishedAt.Format(time.RFC3339))
	if len(report.Excluded) > 0 {
		fmt.Fprintf(w, "Excluded: %v\n", report.Excluded)
	}
	fmt.Fprintln(w)

	for _, c := range report.Checks {
		if c.Excluded {
			fmt.Fprintf(w, "[EXCLUDED] %s %s\n", c.ID, c.Name)
			continue
		}
		fmt.Fprintf(w, "[%s] %s %s (%s, %s)\n", c.Outcome(), c.ID, c.Name, c.Category, c.Duration)
		if c.Result == nil {
			continue
		}
		for _, e := range c.Result.Errors {
			fmt.Fprintf(w, "    error:   %s\n", e.Message)
		}
		for _, f := range c.Result.Failures {
			fmt.Fprintf(w, "    failure: %s\n", f.Message)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Overall: %s\n", report.Outcome())
	return nil
}
