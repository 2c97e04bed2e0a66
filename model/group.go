package model

import (
	"math/big"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// EncryptionGroup is the classical multiplicative group (p, q, g) every
// integer in a snapshot is interpreted over: p prime, q = (p-1)/2 prime,
// 2 <= g < p.
type EncryptionGroup struct {
	P *HexInt `json:"p"`
	Q *HexInt `json:"q"`
	G *HexInt `json:"g"`
}

// Validate checks invariant (a)/(b)'s group-shape precondition: 2 <= g < p,
// and that q == (p-1)/2. It does not re-run primality tests on p/q (those
// are the external crypto library's contract, per the purpose-and-scope
// exclusion); it only checks the arithmetic relationship a domain-verified
// payload must satisfy.
func (g *EncryptionGroup) Validate() []*DomainError {
	var errs []*DomainError
	p := g.P.Int()
	q := g.Q.Int()
	gen := g.G.Int()

	two := big.NewInt(2)
	if gen.Cmp(two) < 0 || gen.Cmp(p) >= 0 {
		errs = append(errs, &DomainError{Field: "g", Message: "generator not in [2, p)"})
	}

	expectedQ := new(big.Int).Sub(p, big.NewInt(1))
	expectedQ.Rsh(expectedQ, 1)
	if q.Cmp(expectedQ) != 0 {
		errs = append(errs, &DomainError{Field: "q", Message: "q is not (p-1)/2"})
	}
	return errs
}

// InRange reports whether v lies in [0, p), invariant (a).
func (g *EncryptionGroup) InRange(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(g.P.Int()) < 0
}

// ExponentInRange reports whether v lies in [0, q), invariant (b).
func (g *EncryptionGroup) ExponentInRange(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(g.Q.Int()) < 0
}

// Hashable projects the group as [p, q, g], the field order fixed by this
// method (not Go struct declaration order, which happens to match here).
func (g *EncryptionGroup) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.NewInteger(g.P.Int()),
		hashtree.NewInteger(g.Q.Int()),
		hashtree.NewInteger(g.G.Int()),
	}
}
