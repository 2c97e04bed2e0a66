package model

import (
	"strconv"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// AuthorityTag names the one of eight certificate authorities that signs a
// payload. It is defined here as a string rather than importing the
// authority package directly, to avoid a dependency cycle between model
// (which every payload lives in) and authority (which verifies against the
// keystore); the catalog layer maps AuthorityTag to an
// authority.Authority by name.
type AuthorityTag string

// Payload is the three-tuple interface every signed artifact implements
// (C3): a hash tree, a context namespace, a signing authority tag, and the
// raw signature bytes.
type Payload interface {
	// Hashable produces the canonical hash-tree projection of this payload,
	// per C2. Field order is fixed per payload type and is part of the
	// interface.
	Hashable() hashtree.Node

	// Context returns the ordered list of string tags that namespace this
	// signature's purpose, e.g. ["encrypted code shares", nodeID, eventID].
	Context() []string

	// Authority names the authority whose certificate verifies this
	// payload's signature.
	Authority() AuthorityTag

	// SignatureBytes returns the raw signature bytes.
	SignatureBytes() []byte
}

// Kind is the closed enumeration of payload variants (the "variant payload
// container" design note). A Kind value only names a variant: it carries
// no payload, and no payload type reports its own Kind.
type Kind int

const (
	KindElectionEventContext Kind = iota
	KindSetupComponentPublicKeys
	KindControlComponentPublicKeys
	KindSetupComponentTallyData
	KindSetupComponentVerificationData
	KindControlComponentCodeShares
	KindEncryptionParameters
	KindControlComponentBallotBox
	KindControlComponentShuffle
	KindTallyComponentShuffle
	KindTallyComponentVotes
	KindECH0110
	KindECH0222
	KindEVotingDecrypt
)

func (k Kind) String() string {
	names := [...]string{
		"ElectionEventContextPayload",
		"SetupComponentPublicKeysPayload",
		"ControlComponentPublicKeysPayload",
		"SetupComponentTallyDataPayload",
		"SetupComponentVerificationDataPayload",
		"ControlComponentCodeSharesPayload",
		"EncryptionParametersPayload",
		"ControlComponentBallotBoxPayload",
		"ControlComponentShufflePayload",
		"TallyComponentShufflePayload",
		"TallyComponentVotesPayload",
		"ECH0110",
		"ECH0222",
		"EVotingDecrypt",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Authority tags, defined once here so every payload's Authority() method
// returns one of these exact values (mapped onto authority.Authority by
// the catalog layer, which imports both model and authority).
const (
	AuthorityCanton       AuthorityTag = "canton"
	AuthoritySdmConfig    AuthorityTag = "sdm_config"
	AuthoritySdmTally     AuthorityTag = "sdm_tally"
	AuthorityVotingServer AuthorityTag = "voting_server"
)

// ControlComponentAuthority returns the authority tag for control component
// node (1..4), matching authority.ControlComponent's node-id convention.
func ControlComponentAuthority(node int) AuthorityTag {
	return AuthorityTag("control_component_" + strconv.Itoa(node))
}
