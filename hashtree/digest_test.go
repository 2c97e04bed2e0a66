package hashtree

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDigestDeterministic(t *testing.T) {
	c := qt.New(t)

	tree := List{
		Text("election-event-id"),
		NewInteger(big.NewInt(42)),
		Bytes("payload-bytes"),
	}
	d1 := Digest(tree)
	d2 := Digest(tree)
	c.Assert(d1, qt.DeepEquals, d2)
}

func TestDigestFieldOrderMatters(t *testing.T) {
	c := qt.New(t)

	a := List{Text("x"), Text("y")}
	b := List{Text("y"), Text("x")}
	c.Assert(Digest(a), qt.Not(qt.DeepEquals), Digest(b))
}

func TestDigestDistinguishesKinds(t *testing.T) {
	c := qt.New(t)

	// Text "5" and Integer 5 must not collide, despite similar content.
	asText := Digest(Text("5"))
	asInteger := Digest(NewInteger(big.NewInt(5)))
	c.Assert(asText, qt.Not(qt.DeepEquals), asInteger)
}

func TestDigestListVsSingleChild(t *testing.T) {
	c := qt.New(t)

	leaf := Text("solo")
	wrapped := List{leaf}
	c.Assert(Digest(leaf), qt.Not(qt.DeepEquals), Digest(wrapped))
}

func TestDigestHashedLeafIsOpaque(t *testing.T) {
	c := qt.New(t)

	h := Hashed([]byte{1, 2, 3, 4})
	d := Digest(h)
	c.Assert(len(d), qt.Equals, Size)
}
