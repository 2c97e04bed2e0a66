// Package zkp verifies the zero-knowledge proofs embedded in setup and
// tally artifacts — Schnorr proofs of key generation, exponentiation
// proofs of correct re-encryption, decryption proofs, and shuffle
// arguments — all as integer arithmetic over the classical multiplicative
// group carried by model.EncryptionGroup.
package zkp

import (
	"math/big"

	"github.com/vocdoni/evoting-verifier/hashtree"
	"github.com/vocdoni/evoting-verifier/model"
)

// recomputeChallenge folds the group parameters, a proof-specific context
// tag, and the ordered list of public values into the hash tree and
// reduces the digest mod q, the Fiat-Shamir challenge every proof in this
// package recomputes and compares against the proof's own e.
func recomputeChallenge(group *model.EncryptionGroup, tag string, values ...*big.Int) *big.Int {
	nodes := make(hashtree.List, 0, len(values)+2)
	nodes = append(nodes, group.Hashable())
	nodes = append(nodes, hashtree.Text(tag))
	for _, v := range values {
		nodes = append(nodes, hashtree.NewInteger(v))
	}
	digest := hashtree.Digest(nodes)
	return new(big.Int).Mod(new(big.Int).SetBytes(digest[:]), group.Q.Int())
}

// modInverse returns v^-1 mod p, or nil if v shares a factor with p (which
// never happens for a well-formed element of a prime-order subgroup, but
// is checked rather than assumed).
func modInverse(v, p *big.Int) *big.Int {
	return new(big.Int).ModInverse(v, p)
}
