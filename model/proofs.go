package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// Signature is the opaque byte-string signature as it is embedded (never
// hashed) inside a payload envelope; it holds the raw bytes only.
type Signature struct {
	raw []byte
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Signature != "" {
		raw, decErr := base64.StdEncoding.DecodeString(envelope.Signature)
		if decErr != nil {
			return fmt.Errorf("%w: invalid signature base64: %v", ErrDecode, decErr)
		}
		s.raw = raw
		return nil
	}
	// Fall back to treating the whole field as a bare base64 string, which
	// is how some payload types encode the signature envelope.
	var plain string
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("%w: invalid signature envelope: %v", ErrDecode, err)
	}
	raw, err := base64.StdEncoding.DecodeString(plain)
	if err != nil {
		return fmt.Errorf("%w: invalid signature base64: %v", ErrDecode, err)
	}
	s.raw = raw
	return nil
}

// Bytes returns the raw signature bytes.
func (s *Signature) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.raw
}

// SchnorrProof is an (e, z) zero-knowledge proof of knowledge of a
// discrete logarithm.
type SchnorrProof struct {
	E *HexInt `json:"e"`
	Z *HexInt `json:"z"`
}

func (p *SchnorrProof) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.NewInteger(p.E.Int()),
		hashtree.NewInteger(p.Z.Int()),
	}
}

// ExponentiationProof is an (e, z) proof over an exponentiation relation;
// structurally identical to SchnorrProof but kept as a distinct type so the
// zkp package's verification equations cannot be accidentally swapped.
type ExponentiationProof struct {
	E *HexInt `json:"e"`
	Z *HexInt `json:"z"`
}

func (p *ExponentiationProof) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.NewInteger(p.E.Int()),
		hashtree.NewInteger(p.Z.Int()),
	}
}

// DecryptionProof is an (e, z-vector) proof of correct decryption.
type DecryptionProof struct {
	E *HexInt     `json:"e"`
	Z HexIntSlice `json:"z"`
}

func (p *DecryptionProof) Hashable() hashtree.Node {
	zNodes := make(hashtree.List, len(p.Z))
	for i, z := range p.Z {
		zNodes[i] = hashtree.NewInteger(z)
	}
	return hashtree.List{
		hashtree.NewInteger(p.E.Int()),
		zNodes,
	}
}

// ShuffleArgumentComponent is one nested commitment/exponentiation
// component of a shuffle argument.
type ShuffleArgumentComponent struct {
	Commitments   HexIntSlice `json:"commitments"`
	Exponentiated HexIntSlice `json:"exponentiatedValues"`
}

// ShuffleArgument is the full nested shuffle-proof structure produced by a
// control component's mixing step.
type ShuffleArgument struct {
	Components []ShuffleArgumentComponent `json:"bridgingCommitments"`
}

func (s *ShuffleArgument) Hashable() hashtree.Node {
	components := make(hashtree.List, len(s.Components))
	for i, comp := range s.Components {
		commitNodes := make(hashtree.List, len(comp.Commitments))
		for j, v := range comp.Commitments {
			commitNodes[j] = hashtree.NewInteger(v)
		}
		expNodes := make(hashtree.List, len(comp.Exponentiated))
		for j, v := range comp.Exponentiated {
			expNodes[j] = hashtree.NewInteger(v)
		}
		components[i] = hashtree.List{commitNodes, expNodes}
	}
	return components
}

// ExponentiatedEncryptedElement is (gamma, phis[]) over the encryption
// group, the ElGamal-shaped encryption of an exponentiated plaintext; it
// carries no proof of its own.
type ExponentiatedEncryptedElement struct {
	Gamma *HexInt     `json:"gamma"`
	Phis  HexIntSlice `json:"phis"`
}

func (e *ExponentiatedEncryptedElement) Hashable() hashtree.Node {
	phiNodes := make(hashtree.List, len(e.Phis))
	for i, v := range e.Phis {
		phiNodes[i] = hashtree.NewInteger(v)
	}
	return hashtree.List{
		hashtree.NewInteger(e.Gamma.Int()),
		phiNodes,
	}
}

// Validate checks invariant (a): gamma and every phi lie in [0, p).
func (e *ExponentiatedEncryptedElement) Validate(group *EncryptionGroup) []*DomainError {
	var errs []*DomainError
	if !group.InRange(e.Gamma.Int()) {
		errs = append(errs, &DomainError{Field: "gamma", Message: "not in [0, p)"})
	}
	for i, phi := range e.Phis {
		if !group.InRange(phi) {
			errs = append(errs, &DomainError{
				Field:   fmt.Sprintf("phis[%d]", i),
				Message: "not in [0, p)",
			})
		}
	}
	return errs
}

// ModularProduct computes the modular product of a list of big integers
// mod modulus, used by the combined-key consistency checks (03.05/03.06).
// Exported for the catalog package.
func ModularProduct(values []*big.Int, modulus *big.Int) *big.Int {
	acc := big.NewInt(1)
	for _, v := range values {
		acc.Mul(acc, v)
		acc.Mod(acc, modulus)
	}
	return acc
}
