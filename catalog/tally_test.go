package catalog

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/evoting-verifier/authority"
	"github.com/vocdoni/evoting-verifier/directory"
	"github.com/vocdoni/evoting-verifier/model"
)

// signedECH0110 builds an ECH0110 artifact whose embedded <signature>
// element genuinely covers its canonical (signature-stripped) bytes under
// key: the signature element's content is opaque to canonicalBytes, so a
// placeholder parse establishes the hash to sign, then a second parse
// picks up the real signature alongside the same canonical bytes.
func signedECH0110(t *testing.T, key *ecdsa.PrivateKey) *model.ECH0110 {
	t.Helper()
	build := func(sigB64 string) []byte {
		return []byte(`<root><data>hello</data><signature>` + sigB64 + `</signature></root>`)
	}
	placeholder, err := model.NewECH0110(build("AA=="))
	if err != nil {
		t.Fatal(err)
	}
	sig := signPayload(t, key, placeholder)
	final, err := model.NewECH0110(build(base64.StdEncoding.EncodeToString(sig)))
	if err != nil {
		t.Fatal(err)
	}
	return final
}

func TestTallyCompletenessReportsMissingXMLAndEmptyBallotBoxes(t *testing.T) {
	c := qt.New(t)
	tallyDir := &directory.MockTallyDirectory{
		ECH0110Func: func() (*model.ECH0110, error) {
			return nil, errors.New("not found")
		},
		ECH0222Func: func() (*model.ECH0222, error) {
			return &model.ECH0222{}, nil
		},
		EVotingDecryptFunc: func() (*model.EVotingDecrypt, error) {
			return &model.EVotingDecrypt{}, nil
		},
		BallotBoxDirectoriesFunc: func() ([]directory.BallotBoxDirectory, error) {
			return nil, nil
		},
	}
	result := tallyCompleteness(tallyDir)(context.Background())
	c.Assert(result.HasErrors(), qt.IsTrue)
	c.Assert(result.HasFailures(), qt.IsTrue) // no ballot boxes present
}

func TestBallotBoxConsistencyDetectsUndeclaredBox(t *testing.T) {
	c := qt.New(t)
	setupDir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{BallotBoxIDs: []string{"bb-1"}}, nil
		},
	}
	box := &directory.MockBallotBoxDirectory{
		NameValue: "bb-rogue",
		TallyComponentVotesPayloadFunc: func() (*model.TallyComponentVotesPayload, error) {
			return &model.TallyComponentVotesPayload{BallotBoxID: "bb-rogue"}, nil
		},
	}
	tallyDir := &directory.MockTallyDirectory{
		BallotBoxDirectoriesFunc: func() ([]directory.BallotBoxDirectory, error) {
			return []directory.BallotBoxDirectory{box}, nil
		},
	}
	result := ballotBoxConsistency(setupDir, tallyDir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
}

func TestBallotBoxConsistencyAcceptsMatchingSets(t *testing.T) {
	c := qt.New(t)
	setupDir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{BallotBoxIDs: []string{"bb-1"}}, nil
		},
	}
	box := &directory.MockBallotBoxDirectory{
		NameValue: "bb-1",
		TallyComponentVotesPayloadFunc: func() (*model.TallyComponentVotesPayload, error) {
			return &model.TallyComponentVotesPayload{BallotBoxID: "bb-1"}, nil
		},
	}
	tallyDir := &directory.MockTallyDirectory{
		BallotBoxDirectoriesFunc: func() ([]directory.BallotBoxDirectory, error) {
			return []directory.BallotBoxDirectory{box}, nil
		},
	}
	result := ballotBoxConsistency(setupDir, tallyDir)(context.Background())
	c.Assert(result.IsOk(), qt.IsTrue)
}

func TestBallotBoxConsistencyDetectsMissingDeclaredBox(t *testing.T) {
	c := qt.New(t)
	setupDir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{BallotBoxIDs: []string{"bb-1", "bb-2"}}, nil
		},
	}
	box := &directory.MockBallotBoxDirectory{
		NameValue: "bb-1",
		TallyComponentVotesPayloadFunc: func() (*model.TallyComponentVotesPayload, error) {
			return &model.TallyComponentVotesPayload{BallotBoxID: "bb-1"}, nil
		},
	}
	tallyDir := &directory.MockTallyDirectory{
		BallotBoxDirectoriesFunc: func() ([]directory.BallotBoxDirectory, error) {
			return []directory.BallotBoxDirectory{box}, nil
		},
	}
	result := ballotBoxConsistency(setupDir, tallyDir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
	c.Assert(result.Failures[0].Message, qt.Contains, "bb-2")
}

func TestCantonXMLAuthenticityVerifiesGenuineSignature(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	key := newKeyAndCert(t, dir, authority.Canton.String())
	ks, err := authority.NewKeystore(dir)
	c.Assert(err, qt.IsNil)

	doc := signedECH0110(t, key)

	tallyDir := &directory.MockTallyDirectory{
		ECH0110Func: func() (*model.ECH0110, error) {
			return doc, nil
		},
		ECH0222Func: func() (*model.ECH0222, error) {
			return nil, errors.New("not present")
		},
		EVotingDecryptFunc: func() (*model.EVotingDecrypt, error) {
			return nil, errors.New("not present")
		},
	}
	result := cantonXMLAuthenticity(tallyDir, ks, time.Now())(context.Background())
	c.Assert(result.HasFailures(), qt.IsFalse)
	c.Assert(result.HasErrors(), qt.IsFalse)
}

func TestCantonXMLAuthenticityDetectsExpiredCertificate(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	// newKeyAndCert always issues a certificate valid [now-1h, now+1h];
	// checking at a time two hours in the future falls outside that
	// window and must surface as an error (not a failure) per §4.3.
	key := newKeyAndCert(t, dir, authority.Canton.String())
	ks, err := authority.NewKeystore(dir)
	c.Assert(err, qt.IsNil)

	doc := signedECH0110(t, key)

	tallyDir := &directory.MockTallyDirectory{
		ECH0110Func: func() (*model.ECH0110, error) {
			return doc, nil
		},
		ECH0222Func: func() (*model.ECH0222, error) {
			return nil, errors.New("not present")
		},
		EVotingDecryptFunc: func() (*model.EVotingDecrypt, error) {
			return nil, errors.New("not present")
		},
	}
	result := cantonXMLAuthenticity(tallyDir, ks, time.Now().Add(2*time.Hour))(context.Background())
	c.Assert(result.HasErrors(), qt.IsTrue)
	c.Assert(result.HasFailures(), qt.IsFalse)
}

func TestMixingEvidenceRejectsEmptyShuffleArgument(t *testing.T) {
	c := qt.New(t)
	group := testGroup()
	setupDir := &directory.MockSetupDirectory{
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return &model.SetupComponentPublicKeysPayload{
				SetupComponentPublicKeys: model.SetupComponentPublicKeys{
					CombinedControlComponentPublicKeys: []model.ControlComponentPublicKeys{
						{NodeID: 1, CCMElectionPublicKey: hexSlice(3)},
					},
				},
			}, nil
		},
	}
	payload := &model.ControlComponentShufflePayload{
		EncryptionGroup: group,
		NodeID:          1,
		// VerifiableShuffle.ShuffleArgument has zero components: always
		// rejected by zkp.VerifyShuffle's shape check.
	}
	box := &directory.MockBallotBoxDirectory{
		NameValue: "bb-1",
		ControlComponentShufflePayloadsFunc: func() ([]directory.Entry[*model.ControlComponentShufflePayload], error) {
			return []directory.Entry[*model.ControlComponentShufflePayload]{{Number: 1, Value: payload}}, nil
		},
	}
	tallyDir := &directory.MockTallyDirectory{
		BallotBoxDirectoriesFunc: func() ([]directory.BallotBoxDirectory, error) {
			return []directory.BallotBoxDirectory{box}, nil
		},
	}
	result := mixingEvidence(setupDir, tallyDir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
}

func TestFinalDecryptionEvidenceRejectsEmptyShuffleArgument(t *testing.T) {
	c := qt.New(t)
	group := testGroup()
	setupDir := &directory.MockSetupDirectory{
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return &model.SetupComponentPublicKeysPayload{
				SetupComponentPublicKeys: model.SetupComponentPublicKeys{
					ElectionPublicKey: hexSlice(3),
				},
			}, nil
		},
	}
	payload := &model.TallyComponentShufflePayload{EncryptionGroup: group}
	box := &directory.MockBallotBoxDirectory{
		NameValue: "bb-1",
		TallyComponentShufflePayloadFunc: func() (*model.TallyComponentShufflePayload, error) {
			return payload, nil
		},
	}
	tallyDir := &directory.MockTallyDirectory{
		BallotBoxDirectoriesFunc: func() ([]directory.BallotBoxDirectory, error) {
			return []directory.BallotBoxDirectory{box}, nil
		},
	}
	result := finalDecryptionEvidence(setupDir, tallyDir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
}
