package model

import (
	"fmt"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// ControlComponentPublicKeys is the per-node (1..4) CCR/CCM key material
// embedded both standalone (ControlComponentPublicKeysPayload) and combined
// (inside SetupComponentPublicKeys).
type ControlComponentPublicKeys struct {
	NodeID                                     int            `json:"nodeId"`
	CCRChoiceReturnCodesEncryptionPublicKey    HexIntSlice    `json:"ccrChoiceReturnCodesEncryptionPublicKey"`
	CCRSchnorrProofs                           []SchnorrProof `json:"ccrSchnorrProofs"`
	CCMElectionPublicKey                       HexIntSlice    `json:"ccmElectionPublicKey"`
	CCMSchnorrProofs                           []SchnorrProof `json:"ccmSchnorrProofs"`
}

func (k *ControlComponentPublicKeys) Hashable() hashtree.Node {
	ccrProofs := make(hashtree.List, len(k.CCRSchnorrProofs))
	for i := range k.CCRSchnorrProofs {
		ccrProofs[i] = k.CCRSchnorrProofs[i].Hashable()
	}
	ccmProofs := make(hashtree.List, len(k.CCMSchnorrProofs))
	for i := range k.CCMSchnorrProofs {
		ccmProofs[i] = k.CCMSchnorrProofs[i].Hashable()
	}
	return hashtree.List{
		hashtree.NewInteger(bigFromInt(k.NodeID)),
		hexSliceHashable(k.CCRChoiceReturnCodesEncryptionPublicKey),
		ccrProofs,
		hexSliceHashable(k.CCMElectionPublicKey),
		ccmProofs,
	}
}

// ControlComponentPublicKeysPayload is the per-node (1..4)
// controlComponentPublicKeysPayload.<n>.json artifact.
type ControlComponentPublicKeysPayload struct {
	EncryptionGroup             EncryptionGroup             `json:"encryptionGroup"`
	ElectionEventID              string                      `json:"electionEventId"`
	ControlComponentPublicKeys  ControlComponentPublicKeys  `json:"controlComponentPublicKeys"`
	Signature                    Signature                   `json:"signature"`
}

func (p *ControlComponentPublicKeysPayload) Hashable() hashtree.Node {
	return hashtree.List{
		p.EncryptionGroup.Hashable(),
		hashtree.Text(p.ElectionEventID),
		p.ControlComponentPublicKeys.Hashable(),
	}
}

func (p *ControlComponentPublicKeysPayload) Context() []string {
	return []string{
		"OnlineCC keys",
		fmt.Sprint(p.ControlComponentPublicKeys.NodeID),
		p.ElectionEventID,
	}
}

func (p *ControlComponentPublicKeysPayload) Authority() AuthorityTag {
	return ControlComponentAuthority(p.ControlComponentPublicKeys.NodeID)
}

func (p *ControlComponentPublicKeysPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// SetupComponentPublicKeys is the combined key material: the four
// ControlComponentPublicKeys, the electoral board's public key and Schnorr
// proofs, and the derived election/CCR-aggregate public keys.
type SetupComponentPublicKeys struct {
	CombinedControlComponentPublicKeys  []ControlComponentPublicKeys `json:"combinedControlComponentPublicKeys"`
	ElectoralBoardPublicKey             HexIntSlice                  `json:"electoralBoardPublicKey"`
	ElectoralBoardSchnorrProofs          []SchnorrProof               `json:"electoralBoardSchnorrProofs"`
	ElectionPublicKey                    HexIntSlice                  `json:"electionPublicKey"`
	ChoiceReturnCodesEncryptionPublicKey HexIntSlice                  `json:"choiceReturnCodesEncryptionPublicKey"`
}

func (k *SetupComponentPublicKeys) Hashable() hashtree.Node {
	ccNodes := make(hashtree.List, len(k.CombinedControlComponentPublicKeys))
	for i := range k.CombinedControlComponentPublicKeys {
		ccNodes[i] = k.CombinedControlComponentPublicKeys[i].Hashable()
	}
	ebProofs := make(hashtree.List, len(k.ElectoralBoardSchnorrProofs))
	for i := range k.ElectoralBoardSchnorrProofs {
		ebProofs[i] = k.ElectoralBoardSchnorrProofs[i].Hashable()
	}
	return hashtree.List{
		ccNodes,
		hexSliceHashable(k.ElectoralBoardPublicKey),
		ebProofs,
		hexSliceHashable(k.ElectionPublicKey),
		hexSliceHashable(k.ChoiceReturnCodesEncryptionPublicKey),
	}
}

// SetupComponentPublicKeysPayload is setupComponentPublicKeysPayload.json.
type SetupComponentPublicKeysPayload struct {
	EncryptionGroup           EncryptionGroup           `json:"encryptionGroup"`
	ElectionEventID           string                    `json:"electionEventId"`
	SetupComponentPublicKeys  SetupComponentPublicKeys  `json:"setupComponentPublicKeys"`
	Signature                 Signature                 `json:"signature"`
}

func (p *SetupComponentPublicKeysPayload) Hashable() hashtree.Node {
	return hashtree.List{
		p.EncryptionGroup.Hashable(),
		p.SetupComponentPublicKeys.Hashable(),
	}
}

func (p *SetupComponentPublicKeysPayload) Context() []string {
	return []string{"public keys", "setup", p.ElectionEventID}
}

func (p *SetupComponentPublicKeysPayload) Authority() AuthorityTag {
	return AuthoritySdmConfig
}

func (p *SetupComponentPublicKeysPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// SetupComponentTallyDataPayload is the per-VCS metadata + verification-card
// public keys issued by the setup component for a cohort of voters.
type SetupComponentTallyDataPayload struct {
	ElectionEventID             string          `json:"electionEventId"`
	VerificationCardSetID       string          `json:"verificationCardSetId"`
	BallotBoxDefaultTitle       string          `json:"ballotBoxDefaultTitle"`
	EncryptionGroup             EncryptionGroup `json:"encryptionGroup"`
	VerificationCardIDs         []string        `json:"verificationCardIds"`
	VerificationCardPublicKeys  HexIntMatrix    `json:"verificationCardPublicKeys"`
	Signature                   Signature       `json:"signature"`
}

func (p *SetupComponentTallyDataPayload) Hashable() hashtree.Node {
	cardIDs := make(hashtree.List, len(p.VerificationCardIDs))
	for i, id := range p.VerificationCardIDs {
		cardIDs[i] = hashtree.Text(id)
	}
	cardKeys := make(hashtree.List, len(p.VerificationCardPublicKeys))
	for i, row := range p.VerificationCardPublicKeys {
		cardKeys[i] = hexSliceHashable(row)
	}
	return hashtree.List{
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.VerificationCardSetID),
		hashtree.Text(p.BallotBoxDefaultTitle),
		p.EncryptionGroup.Hashable(),
		cardIDs,
		cardKeys,
	}
}

func (p *SetupComponentTallyDataPayload) Context() []string {
	return []string{"tally data", p.ElectionEventID, p.VerificationCardSetID}
}

func (p *SetupComponentTallyDataPayload) Authority() AuthorityTag {
	return AuthoritySdmConfig
}

func (p *SetupComponentTallyDataPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// SetupComponentVerificationDataPayload is a per-VCS, per-chunk file of
// encrypted hashed squared confirmation keys and partial choice-return
// codes, one entry per voter in the chunk.
type SetupComponentVerificationDataPayload struct {
	ElectionEventID       string                         `json:"electionEventId"`
	VerificationCardSetID string                         `json:"verificationCardSetId"`
	ChunkID               int                            `json:"chunkId"`
	VerificationData      []VerificationCardEntry        `json:"verificationCardEntries"`
	CombinedCorrectnessInformation CombinedCorrectnessInformation `json:"combinedCorrectnessInformation"`
	Signature             Signature                      `json:"signature"`
}

// VerificationCardEntry is one voter's encrypted confirmation key material
// within a SetupComponentVerificationDataPayload chunk.
type VerificationCardEntry struct {
	VerificationCardID                        string      `json:"verificationCardId"`
	EncryptedHashedSquaredConfirmationKey       *HexInt     `json:"encryptedHashedSquaredConfirmationKey"`
	EncryptedHashedPartialChoiceReturnCodes     HexIntSlice `json:"encryptedHashedPartialChoiceReturnCodes"`
}

func (e *VerificationCardEntry) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.Text(e.VerificationCardID),
		hashtree.NewInteger(e.EncryptedHashedSquaredConfirmationKey.Int()),
		hexSliceHashable(e.EncryptedHashedPartialChoiceReturnCodes),
	}
}

// CombinedCorrectnessInformation lists the correctness ids the setup
// component declares, one per voting option.
type CombinedCorrectnessInformation struct {
	CorrectnessIDs []string `json:"correctnessIds"`
}

func (p *SetupComponentVerificationDataPayload) Hashable() hashtree.Node {
	entries := make(hashtree.List, len(p.VerificationData))
	for i := range p.VerificationData {
		entries[i] = p.VerificationData[i].Hashable()
	}
	correctness := make(hashtree.List, len(p.CombinedCorrectnessInformation.CorrectnessIDs))
	for i, id := range p.CombinedCorrectnessInformation.CorrectnessIDs {
		correctness[i] = hashtree.Text(id)
	}
	return hashtree.List{
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.VerificationCardSetID),
		hashtree.NewInteger(bigFromInt(p.ChunkID)),
		entries,
		correctness,
	}
}

func (p *SetupComponentVerificationDataPayload) Context() []string {
	return []string{"verification data", p.ElectionEventID, p.VerificationCardSetID, fmt.Sprint(p.ChunkID)}
}

func (p *SetupComponentVerificationDataPayload) Authority() AuthorityTag {
	return AuthoritySdmConfig
}

func (p *SetupComponentVerificationDataPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// ControlComponentCodeSharesPayload is a per-VCS, per-chunk, per-node file
// (a JSON array with exactly one element per the original format).
type ControlComponentCodeSharesPayload struct {
	ElectionEventID       string                      `json:"electionEventId"`
	VerificationCardSetID string                      `json:"verificationCardSetId"`
	ChunkID               int                         `json:"chunkId"`
	ControlComponentCodeShares []ControlComponentCodeShare `json:"controlComponentCodeShares"`
	EncryptionGroup       EncryptionGroup             `json:"encryptionGroup"`
	NodeID                int                         `json:"nodeId"`
	Signature             Signature                   `json:"signature"`
}

// ControlComponentCodeShare is one voter's exponentiated partial
// choice-return codes and confirmation key contributed by a single node.
type ControlComponentCodeShare struct {
	VerificationCardID                               string                        `json:"verificationCardId"`
	VoterChoiceReturnCodeGenerationPublicKey          HexIntSlice                   `json:"voterChoiceReturnCodeGenerationPublicKey"`
	VoterVoteCastReturnCodeGenerationPublicKey        HexIntSlice                   `json:"voterVoteCastReturnCodeGenerationPublicKey"`
	ExponentiatedEncryptedPartialChoiceReturnCodes    ExponentiatedEncryptedElement `json:"exponentiatedEncryptedPartialChoiceReturnCodes"`
	EncryptedPartialChoiceReturnCodeExponentiationProof ExponentiationProof        `json:"encryptedPartialChoiceReturnCodeExponentiationProof"`
	ExponentiatedEncryptedConfirmationKey              ExponentiatedEncryptedElement `json:"exponentiatedEncryptedConfirmationKey"`
	EncryptedConfirmationKeyExponentiationProof        ExponentiationProof         `json:"encryptedConfirmationKeyExponentiationProof"`
}

func (s *ControlComponentCodeShare) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.Text(s.VerificationCardID),
		hexSliceHashable(s.VoterChoiceReturnCodeGenerationPublicKey),
		hexSliceHashable(s.VoterVoteCastReturnCodeGenerationPublicKey),
		s.ExponentiatedEncryptedPartialChoiceReturnCodes.Hashable(),
		s.EncryptedPartialChoiceReturnCodeExponentiationProof.Hashable(),
		s.ExponentiatedEncryptedConfirmationKey.Hashable(),
		s.EncryptedConfirmationKeyExponentiationProof.Hashable(),
	}
}

func (p *ControlComponentCodeSharesPayload) Hashable() hashtree.Node {
	shares := make(hashtree.List, len(p.ControlComponentCodeShares))
	for i := range p.ControlComponentCodeShares {
		shares[i] = p.ControlComponentCodeShares[i].Hashable()
	}
	return hashtree.List{
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.VerificationCardSetID),
		hashtree.NewInteger(bigFromInt(p.ChunkID)),
		p.EncryptionGroup.Hashable(),
		shares,
		hashtree.NewInteger(bigFromInt(p.NodeID)),
	}
}

func (p *ControlComponentCodeSharesPayload) Context() []string {
	return []string{"encrypted code shares", fmt.Sprint(p.NodeID), p.ElectionEventID, p.VerificationCardSetID}
}

func (p *ControlComponentCodeSharesPayload) Authority() AuthorityTag {
	return ControlComponentAuthority(p.NodeID)
}

func (p *ControlComponentCodeSharesPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// ElectionEventContextPayload carries the election id, per-ballot-box and
// per-VCS contexts, and event timing.
type ElectionEventContextPayload struct {
	ElectionEventID string                `json:"electionEventId"`
	ElectionStartDate string              `json:"electionStartDate"`
	ElectionEndDate   string              `json:"electionEndDate"`
	VerificationCardSetIDs []string       `json:"verificationCardSetIds"`
	BallotBoxIDs           []string       `json:"ballotBoxIds"`
	Signature              Signature      `json:"signature"`
}

func (p *ElectionEventContextPayload) Hashable() hashtree.Node {
	vcsIDs := make(hashtree.List, len(p.VerificationCardSetIDs))
	for i, id := range p.VerificationCardSetIDs {
		vcsIDs[i] = hashtree.Text(id)
	}
	bbIDs := make(hashtree.List, len(p.BallotBoxIDs))
	for i, id := range p.BallotBoxIDs {
		bbIDs[i] = hashtree.Text(id)
	}
	return hashtree.List{
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.ElectionStartDate),
		hashtree.Text(p.ElectionEndDate),
		vcsIDs,
		bbIDs,
	}
}

func (p *ElectionEventContextPayload) Context() []string {
	return []string{"election event context", p.ElectionEventID}
}

func (p *ElectionEventContextPayload) Authority() AuthorityTag {
	return AuthoritySdmConfig
}

func (p *ElectionEventContextPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// EncryptionParametersPayload carries the seed and small-prime list used to
// deterministically derive the encryption group (supplemented from
// original_source/src/data_structures/setup/encryption_parameters_payload.rs,
// dropped by the distilled spec).
type EncryptionParametersPayload struct {
	Seed         string      `json:"seed"`
	SmallPrimes  HexIntSlice `json:"smallPrimes"`
	EncryptionGroup EncryptionGroup `json:"encryptionGroup"`
	Signature    Signature   `json:"signature"`
}

func (p *EncryptionParametersPayload) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.Text(p.Seed),
		hexSliceHashable(p.SmallPrimes),
		p.EncryptionGroup.Hashable(),
	}
}

func (p *EncryptionParametersPayload) Context() []string {
	return []string{"encryption parameters"}
}

func (p *EncryptionParametersPayload) Authority() AuthorityTag {
	return AuthoritySdmConfig
}

func (p *EncryptionParametersPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

