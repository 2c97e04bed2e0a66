package model

import (
	"fmt"
	"math/big"
)

// Validate runs the domain-verification checks (C1's second responsibility,
// distinct from decoding) on a ControlComponentPublicKeys record: every
// published key must lie in [0, p) (invariant (a)), every Schnorr proof's
// z in [0, q) (invariant (b)), and the node id in [1, 4].
func (k *ControlComponentPublicKeys) Validate(group *EncryptionGroup) []*DomainError {
	var errs []*DomainError
	errs = append(errs, validateHexIntsInRange(group, "ccrChoiceReturnCodesEncryptionPublicKey", k.CCRChoiceReturnCodesEncryptionPublicKey)...)
	errs = append(errs, validateHexIntsInRange(group, "ccmElectionPublicKey", k.CCMElectionPublicKey)...)
	for i, p := range k.CCRSchnorrProofs {
		errs = append(errs, validateSchnorrProof(group, fmt.Sprintf("ccrSchnorrProofs[%d]", i), &p)...)
	}
	for i, p := range k.CCMSchnorrProofs {
		errs = append(errs, validateSchnorrProof(group, fmt.Sprintf("ccmSchnorrProofs[%d]", i), &p)...)
	}
	if k.NodeID < 1 || k.NodeID > 4 {
		errs = append(errs, &DomainError{Field: "nodeId", Message: "not in [1, 4]"})
	}
	return errs
}

// Validate checks the combined setup-component key material, invariants
// (a)/(b): every combined control-component key block, the electoral
// board's key and proofs, and the two derived aggregate keys must lie in
// the group's valid ranges; it also requires exactly four
// control-component blocks.
func (k *SetupComponentPublicKeys) Validate(group *EncryptionGroup) []*DomainError {
	var errs []*DomainError
	for i := range k.CombinedControlComponentPublicKeys {
		errs = append(errs, k.CombinedControlComponentPublicKeys[i].Validate(group)...)
	}
	errs = append(errs, validateHexIntsInRange(group, "electoralBoardPublicKey", k.ElectoralBoardPublicKey)...)
	errs = append(errs, validateHexIntsInRange(group, "electionPublicKey", k.ElectionPublicKey)...)
	errs = append(errs, validateHexIntsInRange(group, "choiceReturnCodesEncryptionPublicKey", k.ChoiceReturnCodesEncryptionPublicKey)...)
	for i, p := range k.ElectoralBoardSchnorrProofs {
		errs = append(errs, validateSchnorrProof(group, fmt.Sprintf("electoralBoardSchnorrProofs[%d]", i), &p)...)
	}
	if len(k.CombinedControlComponentPublicKeys) != 4 {
		errs = append(errs, &DomainError{
			Field:   "combinedControlComponentPublicKeys",
			Message: fmt.Sprintf("expected 4 control components, got %d", len(k.CombinedControlComponentPublicKeys)),
		})
	}
	return errs
}

// Validate delegates to the enclosed EncryptionGroup and public-key block.
func (p *ControlComponentPublicKeysPayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	errs = append(errs, p.ControlComponentPublicKeys.Validate(&p.EncryptionGroup)...)
	return errs
}

// Validate delegates to the enclosed EncryptionGroup and combined key block.
func (p *SetupComponentPublicKeysPayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	errs = append(errs, p.SetupComponentPublicKeys.Validate(&p.EncryptionGroup)...)
	return errs
}

// Validate checks invariant (a): every verification-card public key lies in
// the group's range, and invariant (c): each card has exactly one key row.
func (p *SetupComponentTallyDataPayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	if len(p.VerificationCardIDs) != len(p.VerificationCardPublicKeys) {
		errs = append(errs, &DomainError{
			Field:   "verificationCardPublicKeys",
			Message: fmt.Sprintf("card id count %d does not match public key row count %d", len(p.VerificationCardIDs), len(p.VerificationCardPublicKeys)),
		})
	}
	for i, row := range p.VerificationCardPublicKeys {
		errs = append(errs, validateHexIntsInRange(&p.EncryptionGroup, fmt.Sprintf("verificationCardPublicKeys[%d]", i), row)...)
	}
	return errs
}

// Validate checks invariant (a): every entry's encrypted values lie in the
// owning chunk's group range. The entries are not compared against the
// VCS card list, here or in the catalog.
func (p *SetupComponentVerificationDataPayload) Validate(group *EncryptionGroup) []*DomainError {
	var errs []*DomainError
	for i, e := range p.VerificationData {
		if !group.InRange(e.EncryptedHashedSquaredConfirmationKey.Int()) {
			errs = append(errs, &DomainError{
				Field:   fmt.Sprintf("verificationCardEntries[%d].encryptedHashedSquaredConfirmationKey", i),
				Message: "not in [0, p)",
			})
		}
		errs = append(errs, validateHexIntsInRange(group, fmt.Sprintf("verificationCardEntries[%d].encryptedHashedPartialChoiceReturnCodes", i), e.EncryptedHashedPartialChoiceReturnCodes)...)
	}
	return errs
}

// Validate checks invariant (a) on every code share's exponentiated
// elements and voter public keys, plus the node id range; the proofs are
// not range-checked.
func (p *ControlComponentCodeSharesPayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	if p.NodeID < 1 || p.NodeID > 4 {
		errs = append(errs, &DomainError{Field: "nodeId", Message: "not in [1, 4]"})
	}
	for i, s := range p.ControlComponentCodeShares {
		errs = append(errs, s.ExponentiatedEncryptedPartialChoiceReturnCodes.Validate(&p.EncryptionGroup)...)
		errs = append(errs, s.ExponentiatedEncryptedConfirmationKey.Validate(&p.EncryptionGroup)...)
		errs = append(errs, validateHexIntsInRange(&p.EncryptionGroup, fmt.Sprintf("controlComponentCodeShares[%d].voterChoiceReturnCodeGenerationPublicKey", i), s.VoterChoiceReturnCodeGenerationPublicKey)...)
		errs = append(errs, validateHexIntsInRange(&p.EncryptionGroup, fmt.Sprintf("controlComponentCodeShares[%d].voterVoteCastReturnCodeGenerationPublicKey", i), s.VoterVoteCastReturnCodeGenerationPublicKey)...)
	}
	return errs
}

// Validate checks the event's date ordering and that it declares at least
// one verification card set and one ballot box.
func (p *ElectionEventContextPayload) Validate() []*DomainError {
	var errs []*DomainError
	if len(p.VerificationCardSetIDs) == 0 {
		errs = append(errs, &DomainError{Field: "verificationCardSetIds", Message: "must not be empty"})
	}
	if len(p.BallotBoxIDs) == 0 {
		errs = append(errs, &DomainError{Field: "ballotBoxIds", Message: "must not be empty"})
	}
	if p.ElectionStartDate >= p.ElectionEndDate {
		errs = append(errs, &DomainError{Field: "electionStartDate", Message: "must precede electionEndDate"})
	}
	return errs
}

// Validate checks that the declared encryption group is internally
// consistent and that at least one small prime was provided.
func (p *EncryptionParametersPayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	if len(p.SmallPrimes) == 0 {
		errs = append(errs, &DomainError{Field: "smallPrimes", Message: "must not be empty"})
	}
	return errs
}

// Validate checks invariant (a) on every confirmed vote's encrypted and
// exponentiated elements.
func (p *ControlComponentBallotBoxPayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	if p.NodeID < 1 || p.NodeID > 4 {
		errs = append(errs, &DomainError{Field: "nodeId", Message: "not in [1, 4]"})
	}
	for _, v := range p.ConfirmedVotes {
		errs = append(errs, v.EncryptedVote.Validate(&p.EncryptionGroup)...)
		errs = append(errs, v.ExponentiatedEncryptedVote.Validate(&p.EncryptionGroup)...)
	}
	return errs
}

// Validate checks invariant (a) on every ciphertext this node shuffled and
// decrypted.
func (p *ControlComponentShufflePayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	if p.NodeID < 1 || p.NodeID > 4 {
		errs = append(errs, &DomainError{Field: "nodeId", Message: "not in [1, 4]"})
	}
	for _, c := range p.VerifiableDecryptions.Ciphertexts {
		errs = append(errs, c.Validate(&p.EncryptionGroup)...)
	}
	for _, c := range p.VerifiableShuffle.ShuffledCiphertexts {
		errs = append(errs, c.Validate(&p.EncryptionGroup)...)
	}
	return errs
}

// Validate checks invariant (a) on every ciphertext the tally component
// shuffled and finally decrypted.
func (p *TallyComponentShufflePayload) Validate() []*DomainError {
	errs := p.EncryptionGroup.Validate()
	for _, c := range p.VerifiableShuffle.ShuffledCiphertexts {
		errs = append(errs, c.Validate(&p.EncryptionGroup)...)
	}
	return errs
}

// Validate checks that the reported actual-votes count does not exceed the
// number of verification cards on the ballot box.
func (p *TallyComponentVotesPayload) Validate() []*DomainError {
	var errs []*DomainError
	if p.ActualVotesCount < 0 || p.ActualVotesCount > len(p.VerificationCardIDs) {
		errs = append(errs, &DomainError{
			Field:   "actualVotesCount",
			Message: fmt.Sprintf("%d out of range [0, %d]", p.ActualVotesCount, len(p.VerificationCardIDs)),
		})
	}
	return errs
}

// Validate is a no-op for XML artifacts: they carry no domain invariants
// of their own beyond the signature check already performed on their
// canonical bytes.
func (d *ECH0110) Validate() []*DomainError       { return nil }
func (d *ECH0222) Validate() []*DomainError       { return nil }
func (d *EVotingDecrypt) Validate() []*DomainError { return nil }

func validateHexIntsInRange(group *EncryptionGroup, field string, values []*big.Int) []*DomainError {
	var errs []*DomainError
	for i, v := range values {
		if !group.InRange(v) {
			errs = append(errs, &DomainError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "not in [0, p)",
			})
		}
	}
	return errs
}

func validateSchnorrProof(group *EncryptionGroup, field string, p *SchnorrProof) []*DomainError {
	var errs []*DomainError
	if !group.ExponentInRange(p.Z.Int()) {
		errs = append(errs, &DomainError{Field: field + ".z", Message: "not in [0, q)"})
	}
	return errs
}
