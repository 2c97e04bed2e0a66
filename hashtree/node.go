// Package hashtree implements the canonical recursive hashing discipline
// (C2): every payload projects to a tree over a closed sum type — Bytes,
// Text, Integer, List, Hashed — which Digest then collapses to a
// fixed-width digest via a tagged recursive scheme.
//
// Field order within a List projection is part of each payload type's
// interface, fixed by the payload's Hashable method, never derived from Go
// struct field declaration order.
package hashtree

import "math/big"

// Node is the closed sum type of hash-tree leaves and branches. The
// unexported method prevents implementations outside this package, matching
// the "variant payload container" design note: a strongly typed enumeration,
// not reflection or string-keyed dispatch.
type Node interface {
	node()
}

// Bytes is an opaque byte-string leaf.
type Bytes []byte

func (Bytes) node() {}

// Text is a UTF-8 string leaf.
type Text string

func (Text) node() {}

// Integer is an arbitrary-precision integer leaf.
type Integer struct{ *big.Int }

func (Integer) node() {}

// NewInteger wraps v as an Integer leaf.
func NewInteger(v *big.Int) Integer {
	return Integer{v}
}

// List is an ordered branch of child nodes.
type List []Node

func (List) node() {}

// Hashed is a leaf that is already a fixed-width digest, used for large XML
// artifacts that are hashed on disk before being folded into a containing
// payload's hash tree.
type Hashed []byte

func (Hashed) node() {}
