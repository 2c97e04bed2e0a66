package config

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLoadAppliesDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load([]string{"--root=/snapshot", "--keystore=/keys"})
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Root, qt.Equals, "/snapshot")
	c.Assert(cfg.Keystore, qt.Equals, "/keys")
	c.Assert(cfg.Period, qt.Equals, defaultPeriod)
	c.Assert(cfg.Log.Level, qt.Equals, defaultLogLevel)
	c.Assert(cfg.Log.Output, qt.Equals, defaultLogOutput)
	c.Assert(cfg.Report.Format, qt.Equals, defaultReportFormat)
	c.Assert(cfg.Voting.MaxOptions, qt.Equals, defaultMaxVotingOptions)
	c.Assert(cfg.Voting.MaxSelectableOptions, qt.Equals, defaultMaxSelectableOptions)
	c.Assert(cfg.Voting.MaxWriteIns, qt.Equals, defaultMaxWriteIns)
	c.Assert(cfg.Voting.MaxWriteInLength, qt.Equals, defaultMaxWriteInLength)
	c.Assert(cfg.Workers > 0, qt.IsTrue)
	c.Assert(cfg.Exclude, qt.HasLen, 0)
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load([]string{
		"--root=/snapshot",
		"--keystore=/keys",
		"--period=setup",
		"--report.format=json",
		"--log.level=debug",
		"--voting.maxOptions=7",
		"--exclude=01.01,02.03",
		"--workers=3",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Period, qt.Equals, "setup")
	c.Assert(cfg.Report.Format, qt.Equals, "json")
	c.Assert(cfg.Log.Level, qt.Equals, "debug")
	c.Assert(cfg.Voting.MaxOptions, qt.Equals, 7)
	c.Assert(cfg.Exclude, qt.DeepEquals, []string{"01.01", "02.03"})
	c.Assert(cfg.Workers, qt.Equals, 3)
}

func TestLoadEnvironmentVariablesOverrideDefaults(t *testing.T) {
	c := qt.New(t)
	t.Setenv("VERIFIER_ROOT", "/env-snapshot")
	t.Setenv("VERIFIER_KEYSTORE", "/env-keys")
	t.Setenv("VERIFIER_PERIOD", "tally")
	t.Setenv("VERIFIER_VOTING_MAXOPTIONS", "99")

	cfg, err := Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Root, qt.Equals, "/env-snapshot")
	c.Assert(cfg.Keystore, qt.Equals, "/env-keys")
	c.Assert(cfg.Period, qt.Equals, "tally")
	c.Assert(cfg.Voting.MaxOptions, qt.Equals, 99)
}

func TestLoadFlagsTakePrecedenceOverEnvironment(t *testing.T) {
	c := qt.New(t)
	t.Setenv("VERIFIER_PERIOD", "tally")

	cfg, err := Load([]string{"--root=/snapshot", "--keystore=/keys", "--period=setup"})
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Period, qt.Equals, "setup")
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	c := qt.New(t)
	_, err := Load([]string{"--bogus=1"})
	c.Assert(err, qt.IsNotNil)
}

func TestValidateRequiresRootAndKeystore(t *testing.T) {
	c := qt.New(t)

	cfg := &Config{Period: "both", Report: Report{Format: "text"}}
	err := cfg.Validate()
	c.Assert(err, qt.IsNotNil)
	c.Assert(err, qt.ErrorMatches, "root is required.*")

	cfg.Root = "/snapshot"
	err = cfg.Validate()
	c.Assert(err, qt.IsNotNil)
	c.Assert(err, qt.ErrorMatches, "keystore is required.*")

	cfg.Keystore = "/keys"
	c.Assert(cfg.Validate(), qt.IsNil)
}

func TestValidateRejectsUnknownPeriod(t *testing.T) {
	c := qt.New(t)
	cfg := &Config{Root: "/snapshot", Keystore: "/keys", Period: "nope", Report: Report{Format: "text"}}
	err := cfg.Validate()
	c.Assert(err, qt.IsNotNil)
	c.Assert(err, qt.ErrorMatches, "invalid period.*")
}

func TestValidateRejectsUnknownReportFormat(t *testing.T) {
	c := qt.New(t)
	cfg := &Config{Root: "/snapshot", Keystore: "/keys", Period: "both", Report: Report{Format: "yaml"}}
	err := cfg.Validate()
	c.Assert(err, qt.IsNotNil)
	c.Assert(err, qt.ErrorMatches, "invalid report format.*")
}

func TestValidateAcceptsEachPeriodAndFormat(t *testing.T) {
	c := qt.New(t)
	for _, period := range []string{"setup", "tally", "both"} {
		for _, format := range []string{"text", "json"} {
			cfg := &Config{Root: "/snapshot", Keystore: "/keys", Period: period, Report: Report{Format: format}}
			c.Assert(cfg.Validate(), qt.IsNil)
		}
	}
}
