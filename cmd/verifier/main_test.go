package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/evoting-verifier/runner"
)

func TestMergeReportsConcatenatesChecksInSetupThenTallyOrder(t *testing.T) {
	c := qt.New(t)
	start := time.Now()

	setup := &runner.Report{
		ID:        "run-1",
		Period:    runner.PeriodSetup,
		Excluded:  []string{"01.01"},
		StartedAt: start,
		Checks: []runner.CheckReport{
			{ID: "01.02", Name: "setup check"},
		},
	}
	tally := &runner.Report{
		ID:        "run-1",
		Period:    runner.PeriodTally,
		StartedAt: start.Add(time.Second),
		Checks: []runner.CheckReport{
			{ID: "06.01", Name: "tally check"},
		},
		FinishedAt: start.Add(2 * time.Second),
	}

	merged := mergeReports(setup, tally)
	c.Assert(merged.ID, qt.Equals, "run-1")
	c.Assert(merged.Period, qt.Equals, runner.Period("both"))
	c.Assert(merged.Excluded, qt.DeepEquals, []string{"01.01"})
	c.Assert(merged.StartedAt, qt.Equals, start)
	c.Assert(merged.FinishedAt, qt.Equals, tally.FinishedAt)
	c.Assert(merged.Checks, qt.HasLen, 2)
	c.Assert(merged.Checks[0].ID, qt.Equals, "01.02")
	c.Assert(merged.Checks[1].ID, qt.Equals, "06.01")
}

func TestMergeReportsKeepsTheLaterFinishedAt(t *testing.T) {
	c := qt.New(t)
	start := time.Now()

	setup := &runner.Report{
		ID:         "run-2",
		StartedAt:  start,
		FinishedAt: start.Add(10 * time.Second),
	}
	tally := &runner.Report{
		ID:         "run-2",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}

	merged := mergeReports(setup, tally)
	c.Assert(merged.FinishedAt, qt.Equals, setup.FinishedAt)
}

func TestRenderTextShowsExcludedAndFailingChecks(t *testing.T) {
	c := qt.New(t)
	start := time.Now()

	result := runner.NewVerificationResult()
	result.PushFailure("boom")

	report := &runner.Report{
		ID:         "run-3",
		Period:     "both",
		Excluded:   []string{"01.01"},
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Checks: []runner.CheckReport{
			{ID: "01.01", Name: "excluded check", Excluded: true},
			{ID: "06.01", Name: "failing check", Result: result},
		},
	}

	var buf bytes.Buffer
	tmp, err := os.CreateTemp(t.TempDir(), "report-*.txt")
	c.Assert(err, qt.IsNil)
	defer tmp.Close()

	err = renderText(tmp, report)
	c.Assert(err, qt.IsNil)

	_, err = tmp.Seek(0, 0)
	c.Assert(err, qt.IsNil)
	_, err = buf.ReadFrom(tmp)
	c.Assert(err, qt.IsNil)

	out := buf.String()
	c.Assert(strings.Contains(out, "[EXCLUDED] 01.01 excluded check"), qt.IsTrue)
	c.Assert(strings.Contains(out, "06.01 failing check"), qt.IsTrue)
	c.Assert(strings.Contains(out, "failure: boom"), qt.IsTrue)
	c.Assert(strings.Contains(out, "Overall: HasFailures"), qt.IsTrue)
}

func TestRenderReportDispatchesOnFormat(t *testing.T) {
	c := qt.New(t)
	report := &runner.Report{ID: "run-4", Period: "both", StartedAt: time.Now(), FinishedAt: time.Now()}

	jsonFile, err := os.CreateTemp(t.TempDir(), "report-*.json")
	c.Assert(err, qt.IsNil)
	defer jsonFile.Close()
	c.Assert(renderReport(jsonFile, report, "json"), qt.IsNil)
	_, err = jsonFile.Seek(0, 0)
	c.Assert(err, qt.IsNil)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(jsonFile)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(buf.String(), `"ID": "run-4"`), qt.IsTrue)

	textFile, err := os.CreateTemp(t.TempDir(), "report-*.txt")
	c.Assert(err, qt.IsNil)
	defer textFile.Close()
	c.Assert(renderReport(textFile, report, "text"), qt.IsNil)
	_, err = textFile.Seek(0, 0)
	c.Assert(err, qt.IsNil)
	buf.Reset()
	_, err = buf.ReadFrom(textFile)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(buf.String(), "Verification report run-4"), qt.IsTrue)
}
