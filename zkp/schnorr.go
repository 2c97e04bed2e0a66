package zkp

import (
	"math/big"

	"github.com/vocdoni/evoting-verifier/model"
)

// VerifySchnorr checks a Schnorr proof of knowledge of the discrete
// logarithm of publicKey to base, under group: it recomputes the
// commitment x = base^z * publicKey^-e mod p, re-derives the challenge
// from (group, tag, base, publicKey, x), and compares it to proof.E.
func VerifySchnorr(group *model.EncryptionGroup, tag string, base, publicKey *big.Int, proof *model.SchnorrProof) bool {
	p := group.P.Int()
	baseZ := new(big.Int).Exp(base, proof.Z.Int(), p)
	pubE := new(big.Int).Exp(publicKey, proof.E.Int(), p)
	pubEInv := modInverse(pubE, p)
	if pubEInv == nil {
		return false
	}
	commitment := new(big.Int).Mod(new(big.Int).Mul(baseZ, pubEInv), p)

	challenge := recomputeChallenge(group, tag, base, publicKey, commitment)
	return challenge.Cmp(proof.E.Int()) == 0
}
