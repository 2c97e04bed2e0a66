package zkp

import (
	"github.com/vocdoni/evoting-verifier/model"
)

// VerifyShuffle checks the structural well-formedness of a shuffle
// argument: every commitment and exponentiated value the argument carries
// must lie within the group's range, and the argument must carry at least
// one component.
//
// This does not re-derive the bilinear product-and-multi-exponentiation
// equations a full shuffle-argument verifier would (the wire format's
// nested c_A/c_B/ProductArgument/MultiExponentiationArgument structure is
// collapsed to a generic component list in model.ShuffleArgument — see
// DESIGN.md); it is the range/shape check a directory-driven verifier can
// still run meaningfully without that deeper structure.
func VerifyShuffle(group *model.EncryptionGroup, arg *model.ShuffleArgument) bool {
	if len(arg.Components) == 0 {
		return false
	}
	for _, comp := range arg.Components {
		for _, v := range comp.Commitments {
			if !group.InRange(v) {
				return false
			}
		}
		for _, v := range comp.Exponentiated {
			if !group.InRange(v) {
				return false
			}
		}
	}
	return true
}
