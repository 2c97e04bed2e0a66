package zkp

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/evoting-verifier/model"
)

// VerifyDecryption checks a decryption proof: knowledge of the secret key
// x behind publicKey = g^x such that, for every i, partial_i = gamma_i^x.
// bases is the list of per-ciphertext gamma components the proof was
// computed over; partials is the corresponding list of partial-decryption
// factors being attested. Only proof.Z[0] is read: the relation has a
// single secret x, so that one response serves the generator and every
// base.
func VerifyDecryption(group *model.EncryptionGroup, tag string, generator, publicKey *big.Int, bases, partials []*big.Int, proof *model.DecryptionProof) (bool, error) {
	if len(bases) != len(partials) {
		return false, fmt.Errorf("decryption proof: %d bases vs %d partials", len(bases), len(partials))
	}
	if len(proof.Z) == 0 {
		return false, fmt.Errorf("decryption proof: empty response vector")
	}
	p := group.P.Int()

	genZ := new(big.Int).Exp(generator, proof.Z[0], p)
	pubE := new(big.Int).Exp(publicKey, proof.E.Int(), p)
	pubEInv := modInverse(pubE, p)
	if pubEInv == nil {
		return false, nil
	}
	genCommitment := new(big.Int).Mod(new(big.Int).Mul(genZ, pubEInv), p)

	commitments := make([]*big.Int, len(bases))
	for i := range bases {
		baseZ := new(big.Int).Exp(bases[i], proof.Z[0], p)
		partialE := new(big.Int).Exp(partials[i], proof.E.Int(), p)
		partialEInv := modInverse(partialE, p)
		if partialEInv == nil {
			return false, nil
		}
		commitments[i] = new(big.Int).Mod(new(big.Int).Mul(baseZ, partialEInv), p)
	}

	values := []*big.Int{generator, publicKey, genCommitment}
	values = append(values, bases...)
	values = append(values, partials...)
	values = append(values, commitments...)
	challenge := recomputeChallenge(group, tag, values...)
	return challenge.Cmp(proof.E.Int()) == 0, nil
}
