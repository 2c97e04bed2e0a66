package directory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestFileGroupAllAscendingOrder(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	for _, name := range []string{
		"thing.2.json",
		"thing.10.json",
		"thing.1.json",
	} {
		c.Assert(os.WriteFile(filepath.Join(dir, name), []byte(`"x"`), 0o600), qt.IsNil)
	}
	g, err := NewFileGroup(dir, "thing.{}.json", func(raw []byte) (string, error) {
		var s string
		return s, json.Unmarshal(raw, &s)
	})
	c.Assert(err, qt.IsNil)

	entries, err := g.All()
	c.Assert(err, qt.IsNil)
	c.Assert(len(entries), qt.Equals, 3)
	c.Assert(entries[0].Number, qt.Equals, 1)
	c.Assert(entries[1].Number, qt.Equals, 2)
	c.Assert(entries[2].Number, qt.Equals, 10)
}

func TestFileGroupMissingDirIsEmpty(t *testing.T) {
	c := qt.New(t)
	g, err := NewFileGroup(filepath.Join(t.TempDir(), "nope"), "thing.{}.json", func(raw []byte) (string, error) {
		var s string
		return s, json.Unmarshal(raw, &s)
	})
	c.Assert(err, qt.IsNil)
	entries, err := g.All()
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 0)
}

func TestSplitPatternRejectsMissingPlaceholder(t *testing.T) {
	c := qt.New(t)
	_, _, err := splitPattern("thing.json")
	c.Assert(err, qt.Not(qt.IsNil))
}
