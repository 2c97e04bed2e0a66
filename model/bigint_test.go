package model

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHexIntUnmarshalJSON(t *testing.T) {
	c := qt.New(t)

	var withPrefix HexInt
	c.Assert(json.Unmarshal([]byte(`"0x2A"`), &withPrefix), qt.IsNil)
	c.Assert(withPrefix.Int().String(), qt.Equals, "42")

	var withoutPrefix HexInt
	c.Assert(json.Unmarshal([]byte(`"2a"`), &withoutPrefix), qt.IsNil)
	c.Assert(withoutPrefix.Int().Cmp(big.NewInt(42)), qt.Equals, 0)

	var bad HexInt
	c.Assert(json.Unmarshal([]byte(`"not-hex"`), &bad), qt.ErrorMatches, ".*decode error.*")
}

func TestHexIntSliceUnmarshalJSON(t *testing.T) {
	c := qt.New(t)

	var s HexIntSlice
	c.Assert(json.Unmarshal([]byte(`["0x1", "0x2", "ff"]`), &s), qt.IsNil)
	c.Assert(len(s), qt.Equals, 3)
	c.Assert(s[2].String(), qt.Equals, "255")
}

func TestBase64IntUnmarshalJSON(t *testing.T) {
	c := qt.New(t)

	var b Base64Int
	// base64("*") == "Kg==" and '*' == 0x2A == 42
	c.Assert(json.Unmarshal([]byte(`"Kg=="`), &b), qt.IsNil)
	c.Assert(b.Int().String(), qt.Equals, "42")
}

func TestHexIntMatrixUnmarshalJSON(t *testing.T) {
	c := qt.New(t)

	var m HexIntMatrix
	c.Assert(json.Unmarshal([]byte(`[["0x1","0x2"],["0x3"]]`), &m), qt.IsNil)
	c.Assert(len(m), qt.Equals, 2)
	c.Assert(len(m[0]), qt.Equals, 2)
	c.Assert(m[1][0].String(), qt.Equals, "3")
}
