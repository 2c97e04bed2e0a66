package zkp

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/evoting-verifier/model"
)

// VerifyExponentiation checks an exponentiation proof: knowledge of an
// exponent x such that every (base_i, result_i) pair satisfies
// result_i = base_i^x. This is the relation a control component proves
// when it exponentiates an encrypted element by its partial choice-return
// code generation exponent (e.g. to produce
// ExponentiatedEncryptedElement from an incoming ciphertext).
//
// bases and results must be the same length and in the order the original
// proof was computed over (gamma then each phi component).
func VerifyExponentiation(group *model.EncryptionGroup, tag string, bases, results []*big.Int, proof *model.ExponentiationProof) (bool, error) {
	if len(bases) != len(results) {
		return false, fmt.Errorf("exponentiation proof: %d bases vs %d results", len(bases), len(results))
	}
	p := group.P.Int()

	commitments := make([]*big.Int, len(bases))
	for i := range bases {
		baseZ := new(big.Int).Exp(bases[i], proof.Z.Int(), p)
		resultE := new(big.Int).Exp(results[i], proof.E.Int(), p)
		resultEInv := modInverse(resultE, p)
		if resultEInv == nil {
			return false, nil
		}
		commitments[i] = new(big.Int).Mod(new(big.Int).Mul(baseZ, resultEInv), p)
	}

	values := append(append([]*big.Int{}, bases...), results...)
	values = append(values, commitments...)
	challenge := recomputeChallenge(group, tag, values...)
	return challenge.Cmp(proof.E.Int()) == 0, nil
}

// ExponentiatedElementBases returns the (gamma, phi_0, ..., phi_n) base
// list an ExponentiatedEncryptedElement's proof is computed over, paired
// against the same-shaped list from the original (pre-exponentiation)
// element by the caller.
func ExponentiatedElementBases(e *model.ExponentiatedEncryptedElement) []*big.Int {
	out := make([]*big.Int, 0, 1+len(e.Phis))
	out = append(out, e.Gamma.Int())
	out = append(out, e.Phis...)
	return out
}
