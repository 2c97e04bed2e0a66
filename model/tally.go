package model

import (
	"fmt"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// ControlComponentBallotBoxPayload is a per-node, per-ballot-box file of
// the confirmed votes a single control component collected, each still
// carrying its exponentiated partial choice-return codes.
type ControlComponentBallotBoxPayload struct {
	EncryptionGroup EncryptionGroup          `json:"encryptionGroup"`
	ElectionEventID string                   `json:"electionEventId"`
	BallotBoxID     string                   `json:"ballotBoxId"`
	NodeID          int                      `json:"nodeId"`
	ConfirmedVotes  []ConfirmedVote          `json:"confirmedEncryptedVotes"`
	Signature       Signature                `json:"signature"`
}

// ConfirmedVote is one voter's confirmed, encrypted, vote-cast material as
// collected by a single control component.
type ConfirmedVote struct {
	VerificationCardID             string                        `json:"verificationCardId"`
	EncryptedVote                  ExponentiatedEncryptedElement `json:"encryptedVote"`
	ExponentiatedEncryptedVote     ExponentiatedEncryptedElement `json:"exponentiatedEncryptedVote"`
	ExponentiationProof            ExponentiationProof           `json:"exponentiationProof"`
}

func (v *ConfirmedVote) Hashable() hashtree.Node {
	return hashtree.List{
		hashtree.Text(v.VerificationCardID),
		v.EncryptedVote.Hashable(),
		v.ExponentiatedEncryptedVote.Hashable(),
		v.ExponentiationProof.Hashable(),
	}
}

func (p *ControlComponentBallotBoxPayload) Hashable() hashtree.Node {
	votes := make(hashtree.List, len(p.ConfirmedVotes))
	for i := range p.ConfirmedVotes {
		votes[i] = p.ConfirmedVotes[i].Hashable()
	}
	return hashtree.List{
		p.EncryptionGroup.Hashable(),
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.BallotBoxID),
		votes,
	}
}

func (p *ControlComponentBallotBoxPayload) Context() []string {
	return []string{"ballot box", fmt.Sprint(p.NodeID), p.ElectionEventID, p.BallotBoxID}
}

func (p *ControlComponentBallotBoxPayload) Authority() AuthorityTag {
	return ControlComponentAuthority(p.NodeID)
}

func (p *ControlComponentBallotBoxPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// VerifiableShuffle is the shuffled ciphertext list plus the shuffle
// argument attesting the permutation/re-encryption was done correctly.
type VerifiableShuffle struct {
	ShuffledCiphertexts []ExponentiatedEncryptedElement `json:"shuffledCiphertexts"`
	ShuffleArgument     ShuffleArgument                 `json:"shuffleArgument"`
}

func (s *VerifiableShuffle) Hashable() hashtree.Node {
	ciphertexts := make(hashtree.List, len(s.ShuffledCiphertexts))
	for i := range s.ShuffledCiphertexts {
		ciphertexts[i] = s.ShuffledCiphertexts[i].Hashable()
	}
	return hashtree.List{ciphertexts, s.ShuffleArgument.Hashable()}
}

// VerifiableDecryptions is a list of re-encrypted ciphertexts plus the
// decryption proof attesting each was correctly partially decrypted.
type VerifiableDecryptions struct {
	Ciphertexts       []ExponentiatedEncryptedElement `json:"ciphertexts"`
	DecryptionProofs  []DecryptionProof                `json:"decryptionProofs"`
}

func (d *VerifiableDecryptions) Hashable() hashtree.Node {
	ciphertexts := make(hashtree.List, len(d.Ciphertexts))
	for i := range d.Ciphertexts {
		ciphertexts[i] = d.Ciphertexts[i].Hashable()
	}
	proofs := make(hashtree.List, len(d.DecryptionProofs))
	for i := range d.DecryptionProofs {
		proofs[i] = d.DecryptionProofs[i].Hashable()
	}
	return hashtree.List{ciphertexts, proofs}
}

// ControlComponentShufflePayload is a per-node, per-ballot-box file of one
// mix node's shuffle-then-partial-decrypt contribution.
type ControlComponentShufflePayload struct {
	EncryptionGroup         EncryptionGroup       `json:"encryptionGroup"`
	ElectionEventID         string                `json:"electionEventId"`
	BallotBoxID             string                `json:"ballotBoxId"`
	NodeID                  int                   `json:"nodeId"`
	VerifiableDecryptions   VerifiableDecryptions `json:"verifiableDecryptions"`
	VerifiableShuffle       VerifiableShuffle     `json:"verifiableShuffle"`
	Signature               Signature             `json:"signature"`
}

func (p *ControlComponentShufflePayload) Hashable() hashtree.Node {
	return hashtree.List{
		p.EncryptionGroup.Hashable(),
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.BallotBoxID),
		p.VerifiableDecryptions.Hashable(),
		p.VerifiableShuffle.Hashable(),
	}
}

func (p *ControlComponentShufflePayload) Context() []string {
	return []string{"control component shuffle", fmt.Sprint(p.NodeID), p.ElectionEventID, p.BallotBoxID}
}

func (p *ControlComponentShufflePayload) Authority() AuthorityTag {
	return ControlComponentAuthority(p.NodeID)
}

func (p *ControlComponentShufflePayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// DecryptedVote is one voter's final recovered plaintext message parts.
type DecryptedVote struct {
	Message []string `json:"message"`
}

func (v *DecryptedVote) Hashable() hashtree.Node {
	parts := make(hashtree.List, len(v.Message))
	for i, m := range v.Message {
		parts[i] = hashtree.Text(m)
	}
	return parts
}

// VerifiablePlaintextDecryption is the recovered plaintext votes plus the
// decryption proofs attesting correct final decryption.
type VerifiablePlaintextDecryption struct {
	DecryptedVotes    []DecryptedVote    `json:"decryptedVotes"`
	DecryptionProofs  []DecryptionProof  `json:"decryptionProofs"`
}

func (d *VerifiablePlaintextDecryption) Hashable() hashtree.Node {
	votes := make(hashtree.List, len(d.DecryptedVotes))
	for i := range d.DecryptedVotes {
		votes[i] = d.DecryptedVotes[i].Hashable()
	}
	proofs := make(hashtree.List, len(d.DecryptionProofs))
	for i := range d.DecryptionProofs {
		proofs[i] = d.DecryptionProofs[i].Hashable()
	}
	return hashtree.List{votes, proofs}
}

// TallyComponentShufflePayload is the tally component's own final
// shuffle-then-decrypt step, run after the four control components' mixing
// rounds, one file per ballot box.
type TallyComponentShufflePayload struct {
	EncryptionGroup                 EncryptionGroup               `json:"encryptionGroup"`
	ElectionEventID                 string                        `json:"electionEventId"`
	BallotBoxID                     string                        `json:"ballotBoxId"`
	VerifiableShuffle                VerifiableShuffle            `json:"verifiableShuffle"`
	VerifiablePlaintextDecryption    VerifiablePlaintextDecryption `json:"verifiablePlaintextDecryption"`
	Signature                        Signature                    `json:"signature"`
}

func (p *TallyComponentShufflePayload) Hashable() hashtree.Node {
	return hashtree.List{
		p.EncryptionGroup.Hashable(),
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.BallotBoxID),
		p.VerifiableShuffle.Hashable(),
		p.VerifiablePlaintextDecryption.Hashable(),
	}
}

func (p *TallyComponentShufflePayload) Context() []string {
	return []string{"tally component shuffle", p.ElectionEventID, p.BallotBoxID}
}

func (p *TallyComponentShufflePayload) Authority() AuthorityTag {
	return AuthoritySdmTally
}

func (p *TallyComponentShufflePayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}

// TallyComponentVotesPayload is the tally component's final, per-ballot-box
// count of actually cast (vs. not-cast) verification cards, the input to
// the eCH-0110/eCH-0222 report generation.
type TallyComponentVotesPayload struct {
	ElectionEventID  string   `json:"electionEventId"`
	BallotBoxID      string   `json:"ballotBoxId"`
	ActualVotesCount int      `json:"actualVotesCount"`
	VerificationCardIDs []string `json:"verificationCardIds"`
	Signature        Signature `json:"signature"`
}

func (p *TallyComponentVotesPayload) Hashable() hashtree.Node {
	ids := make(hashtree.List, len(p.VerificationCardIDs))
	for i, id := range p.VerificationCardIDs {
		ids[i] = hashtree.Text(id)
	}
	return hashtree.List{
		hashtree.Text(p.ElectionEventID),
		hashtree.Text(p.BallotBoxID),
		hashtree.NewInteger(bigFromInt(p.ActualVotesCount)),
		ids,
	}
}

func (p *TallyComponentVotesPayload) Context() []string {
	return []string{"tally component votes", p.ElectionEventID, p.BallotBoxID}
}

func (p *TallyComponentVotesPayload) Authority() AuthorityTag {
	return AuthoritySdmTally
}

func (p *TallyComponentVotesPayload) SignatureBytes() []byte {
	return p.Signature.Bytes()
}
