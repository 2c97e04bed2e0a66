package model

import (
	"math/big"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// bigFromInt is a convenience wrapper for embedding a plain Go int (node
// id, chunk id) as an Integer hashtree node.
func bigFromInt(n int) *big.Int {
	return big.NewInt(int64(n))
}

// hexSliceHashable projects a decoded HexIntSlice/[]*big.Int field as a
// List of Integer nodes, the shape every *IntSlice-typed payload field
// reduces to when it enters a HashableMessage.
func hexSliceHashable(values []*big.Int) hashtree.Node {
	nodes := make(hashtree.List, len(values))
	for i, v := range values {
		nodes[i] = hashtree.NewInteger(v)
	}
	return nodes
}
