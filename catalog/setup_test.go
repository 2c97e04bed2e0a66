package catalog

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/evoting-verifier/authority"
	"github.com/vocdoni/evoting-verifier/directory"
	"github.com/vocdoni/evoting-verifier/hashtree"
	"github.com/vocdoni/evoting-verifier/model"
	"github.com/vocdoni/evoting-verifier/runner"
)

// testGroup returns a small, arithmetically valid EncryptionGroup: p = 23
// (prime), q = 11 ((p-1)/2, prime), g = 2 (a generator of the order-11
// subgroup, since 2^11 mod 23 == 1).
func testGroup() model.EncryptionGroup {
	return model.EncryptionGroup{
		P: hexInt(23),
		Q: hexInt(11),
		G: hexInt(2),
	}
}

func hexInt(v int64) *model.HexInt {
	b := big.NewInt(v)
	return (*model.HexInt)(b)
}

func hexSlice(vs ...int64) model.HexIntSlice {
	out := make(model.HexIntSlice, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func newKeyAndCert(t *testing.T, dir, name string) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	block := &pem.Block{Type: "CERTIFICATE", Bytes: der}
	if err := os.WriteFile(filepath.Join(dir, name+".cer"), pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	return key
}

// signPayload composes the same ctx+hashable digest authority.Verify checks
// and signs it with key, producing a valid model.Signature-shaped base64
// envelope is unnecessary here since catalog only ever reads
// p.SignatureBytes() — callers build the bytes directly.
func signPayload(t *testing.T, key *ecdsa.PrivateKey, p model.Payload) []byte {
	t.Helper()
	ctx := p.Context()
	nodes := make(hashtree.List, 0, len(ctx)+1)
	for _, c := range ctx {
		nodes = append(nodes, hashtree.Text(c))
	}
	nodes = append(nodes, p.Hashable())
	digest := hashtree.Digest(nodes)
	sig, err := key.Sign(rand.Reader, digest[:], nil)
	if err != nil {
		t.Fatal(err)
	}
	return sig
}

// signatureFromBytes decodes a model.Signature from the base64 envelope
// convention UnmarshalJSON expects, so tests can set a payload's Signature
// field to an arbitrary raw byte string.
func signatureFromBytes(t *testing.T, raw []byte) model.Signature {
	t.Helper()
	var sig model.Signature
	envelope := `"` + base64.StdEncoding.EncodeToString(raw) + `"`
	if err := sig.UnmarshalJSON([]byte(envelope)); err != nil {
		t.Fatal(err)
	}
	return sig
}

func TestSetupCompletenessReportsMissingFiles(t *testing.T) {
	c := qt.New(t)
	dir := &directory.MockSetupDirectory{
		EncryptionParametersPayloadFunc: func() (*model.EncryptionParametersPayload, error) {
			return nil, errors.New("not found")
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return &model.SetupComponentPublicKeysPayload{}, nil
		},
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{}, nil
		},
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return nil, nil
		},
		VCSDirectoriesFunc: func() ([]directory.VCSDirectory, error) {
			return nil, nil
		},
	}

	result := setupCompleteness(dir)(context.Background())
	c.Assert(result.HasErrors(), qt.IsTrue)
	c.Assert(result.HasFailures(), qt.IsTrue) // missing node numbers + no VCS
}

func TestElectionEventContextIntegrityAcceptsWellFormedPayload(t *testing.T) {
	c := qt.New(t)
	dir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{
				ElectionEventID:        "evt-1",
				ElectionStartDate:      "2026-01-01",
				ElectionEndDate:        "2026-01-02",
				VerificationCardSetIDs: []string{"vcs-1"},
				BallotBoxIDs:           []string{"bb-1"},
			}, nil
		},
	}
	result := electionEventContextIntegrity(dir)(context.Background())
	c.Assert(result.IsOk(), qt.IsTrue)
}

func TestElectionEventContextIntegritySurfacesDomainErrors(t *testing.T) {
	c := qt.New(t)
	// An empty payload violates three of Validate's invariants at once:
	// no VCS ids, no ballot box ids, and a start date that does not
	// precede the (also empty) end date.
	dir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{ElectionEventID: "evt-1"}, nil
		},
	}
	result := electionEventContextIntegrity(dir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
	c.Assert(len(result.Failures), qt.Equals, 3)
}

func TestElectionEventIDConsistencyDetectsMismatch(t *testing.T) {
	c := qt.New(t)
	dir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{ElectionEventID: "evt-1"}, nil
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return &model.SetupComponentPublicKeysPayload{ElectionEventID: "evt-WRONG"}, nil
		},
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return nil, nil
		},
		VCSDirectoriesFunc: func() ([]directory.VCSDirectory, error) {
			return nil, nil
		},
	}
	result := electionEventIDConsistency(dir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
	c.Assert(result.Failures[0].Message, qt.Contains, "evt-WRONG")
}

func TestBallotBoxIDUniquenessDetectsDuplicate(t *testing.T) {
	c := qt.New(t)
	dir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{BallotBoxIDs: []string{"bb-1", "bb-2", "bb-1"}}, nil
		},
	}
	result := ballotBoxIDUniqueness(dir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
}

func TestBallotBoxIDUniquenessAcceptsDistinctIDs(t *testing.T) {
	c := qt.New(t)
	dir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return &model.ElectionEventContextPayload{BallotBoxIDs: []string{"bb-1", "bb-2"}}, nil
		},
	}
	result := ballotBoxIDUniqueness(dir)(context.Background())
	c.Assert(result.IsOk(), qt.IsTrue)
}

// ccPublicKeysEntries builds the ControlComponentPublicKeysPayloads()
// response for nodes 1..4, each node's CCM election public key set by ccm.
func ccPublicKeysEntries(ccm func(node int) model.HexIntSlice) []directory.Entry[*model.ControlComponentPublicKeysPayload] {
	entries := make([]directory.Entry[*model.ControlComponentPublicKeysPayload], 4)
	for i := 0; i < 4; i++ {
		node := i + 1
		entries[i] = directory.Entry[*model.ControlComponentPublicKeysPayload]{
			Number: node,
			Value: &model.ControlComponentPublicKeysPayload{
				ControlComponentPublicKeys: model.ControlComponentPublicKeys{
					NodeID:               node,
					CCMElectionPublicKey: ccm(node),
				},
			},
		}
	}
	return entries
}

func combinedKeysPayload(ccm func(node int) model.HexIntSlice) *model.SetupComponentPublicKeysPayload {
	combined := make([]model.ControlComponentPublicKeys, 4)
	for i := 0; i < 4; i++ {
		node := i + 1
		combined[i] = model.ControlComponentPublicKeys{NodeID: node, CCMElectionPublicKey: ccm(node)}
	}
	return &model.SetupComponentPublicKeysPayload{
		SetupComponentPublicKeys: model.SetupComponentPublicKeys{
			CombinedControlComponentPublicKeys: combined,
		},
	}
}

func TestCcmKeyConsistencyComparesCCMFieldNotCCR(t *testing.T) {
	c := qt.New(t)
	// Regression test for the Rust reference's copy-paste bug: this check
	// must flag a CCM mismatch and must NOT be fooled by matching CCR keys.
	same := func(node int) model.HexIntSlice { return hexSlice(int64(node)) }
	dir := &directory.MockSetupDirectory{
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return ccPublicKeysEntries(func(node int) model.HexIntSlice {
				if node == 2 {
					return hexSlice(999) // mismatched CCM key for node 2
				}
				return same(node)
			}), nil
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return combinedKeysPayload(same), nil
		},
	}
	result := ccmKeyConsistency(dir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
	c.Assert(result.Failures[0].Message, qt.Contains, "node 2")
}

func TestCcmKeyConsistencyAcceptsMatchingKeys(t *testing.T) {
	c := qt.New(t)
	same := func(node int) model.HexIntSlice { return hexSlice(int64(node)) }
	dir := &directory.MockSetupDirectory{
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return ccPublicKeysEntries(same), nil
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return combinedKeysPayload(same), nil
		},
	}
	result := ccmKeyConsistency(dir)(context.Background())
	c.Assert(result.IsOk(), qt.IsTrue)
}

func TestCombinedElectionKeyProductHoldsForTrueProduct(t *testing.T) {
	c := qt.New(t)
	group := testGroup()
	// 3 * 4 * 5 = 60, 60 mod 23 = 14.
	perNode := []model.ControlComponentPublicKeys{
		{NodeID: 1, CCMElectionPublicKey: hexSlice(3)},
		{NodeID: 2, CCMElectionPublicKey: hexSlice(4)},
		{NodeID: 3, CCMElectionPublicKey: hexSlice(5)},
	}
	dir := &directory.MockSetupDirectory{
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return &model.SetupComponentPublicKeysPayload{
				EncryptionGroup: group,
				SetupComponentPublicKeys: model.SetupComponentPublicKeys{
					CombinedControlComponentPublicKeys: perNode,
					ElectionPublicKey:                   hexSlice(14),
				},
			}, nil
		},
	}
	result := combinedElectionKeyProduct(dir)(context.Background())
	c.Assert(result.IsOk(), qt.IsTrue)
}

func TestCombinedElectionKeyProductDetectsWrongProduct(t *testing.T) {
	c := qt.New(t)
	group := testGroup()
	perNode := []model.ControlComponentPublicKeys{
		{NodeID: 1, CCMElectionPublicKey: hexSlice(3)},
		{NodeID: 2, CCMElectionPublicKey: hexSlice(4)},
		{NodeID: 3, CCMElectionPublicKey: hexSlice(5)},
	}
	dir := &directory.MockSetupDirectory{
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return &model.SetupComponentPublicKeysPayload{
				EncryptionGroup: group,
				SetupComponentPublicKeys: model.SetupComponentPublicKeys{
					CombinedControlComponentPublicKeys: perNode,
					ElectionPublicKey:                   hexSlice(99), // wrong
				},
			}, nil
		},
	}
	result := combinedElectionKeyProduct(dir)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
}

func TestChunkIDContiguityDetectsGap(t *testing.T) {
	c := qt.New(t)
	result := runner.NewVerificationResult()
	entries := []directory.Entry[*model.SetupComponentVerificationDataPayload]{
		{Number: 0, Value: &model.SetupComponentVerificationDataPayload{ChunkID: 0}},
		{Number: 1, Value: &model.SetupComponentVerificationDataPayload{ChunkID: 2}},
	}
	checkChunkContiguity(result, "vcs-1", entries)
	c.Assert(result.HasFailures(), qt.IsTrue)
}

func TestChunkIDContiguityAcceptsContiguousRange(t *testing.T) {
	c := qt.New(t)
	result := runner.NewVerificationResult()
	entries := []directory.Entry[*model.SetupComponentVerificationDataPayload]{
		{Number: 0, Value: &model.SetupComponentVerificationDataPayload{ChunkID: 0}},
		{Number: 1, Value: &model.SetupComponentVerificationDataPayload{ChunkID: 1}},
		{Number: 2, Value: &model.SetupComponentVerificationDataPayload{ChunkID: 2}},
	}
	checkChunkContiguity(result, "vcs-1", entries)
	c.Assert(result.IsOk(), qt.IsTrue)
}

func TestSetupAuthenticityVerifiesGenuineSignature(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	key := newKeyAndCert(t, dir, authority.SdmConfig.String())
	ks, err := authority.NewKeystore(dir)
	c.Assert(err, qt.IsNil)

	p := &model.ElectionEventContextPayload{ElectionEventID: "evt-1"}
	p.Signature = signatureFromBytes(t, signPayload(t, key, p))

	setupDir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return p, nil
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return nil, errors.New("not present")
		},
		EncryptionParametersPayloadFunc: func() (*model.EncryptionParametersPayload, error) {
			return nil, errors.New("not present")
		},
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return nil, nil
		},
		VCSDirectoriesFunc: func() ([]directory.VCSDirectory, error) {
			return nil, nil
		},
	}
	now := time.Now()
	result := setupAuthenticity(setupDir, ks, now)(context.Background())
	c.Assert(result.HasFailures(), qt.IsFalse)
}

func TestSetupAuthenticityDetectsTamperedPayload(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	key := newKeyAndCert(t, dir, authority.SdmConfig.String())
	ks, err := authority.NewKeystore(dir)
	c.Assert(err, qt.IsNil)

	signed := &model.ElectionEventContextPayload{ElectionEventID: "evt-1"}
	signed.Signature = signatureFromBytes(t, signPayload(t, key, signed))
	// Mutate the payload after signing: the signature no longer matches.
	tampered := &model.ElectionEventContextPayload{ElectionEventID: "evt-1-tampered", Signature: signed.Signature}

	setupDir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return tampered, nil
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return nil, errors.New("not present")
		},
		EncryptionParametersPayloadFunc: func() (*model.EncryptionParametersPayload, error) {
			return nil, errors.New("not present")
		},
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return nil, nil
		},
		VCSDirectoriesFunc: func() ([]directory.VCSDirectory, error) {
			return nil, nil
		},
	}
	now := time.Now()
	result := setupAuthenticity(setupDir, ks, now)(context.Background())
	c.Assert(result.HasFailures(), qt.IsTrue)
}

func TestSetupAuthenticityReportsUnknownAuthorityAsError(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	ks, err := authority.NewKeystore(dir)
	c.Assert(err, qt.IsNil)

	// ControlComponentPublicKeysPayload.Authority() derives the tag from
	// NodeID; an out-of-range node id yields a tag no authority.ByName
	// entry matches, which must surface as an error, not a failure.
	p := &model.ControlComponentPublicKeysPayload{
		ControlComponentPublicKeys: model.ControlComponentPublicKeys{NodeID: 99},
	}
	setupDir := &directory.MockSetupDirectory{
		ElectionEventContextPayloadFunc: func() (*model.ElectionEventContextPayload, error) {
			return nil, errors.New("not present")
		},
		SetupComponentPublicKeysPayloadFunc: func() (*model.SetupComponentPublicKeysPayload, error) {
			return nil, errors.New("not present")
		},
		EncryptionParametersPayloadFunc: func() (*model.EncryptionParametersPayload, error) {
			return nil, errors.New("not present")
		},
		ControlComponentPublicKeysPayloadsFunc: func() ([]directory.Entry[*model.ControlComponentPublicKeysPayload], error) {
			return []directory.Entry[*model.ControlComponentPublicKeysPayload]{{Number: 99, Value: p}}, nil
		},
		VCSDirectoriesFunc: func() ([]directory.VCSDirectory, error) {
			return nil, nil
		},
	}
	result := setupAuthenticity(setupDir, ks, time.Now())(context.Background())
	c.Assert(result.HasErrors(), qt.IsTrue)
	c.Assert(result.HasFailures(), qt.IsFalse)
}

func TestSmallPrimeEncodingEvidenceDetectsOutOfRangeAndDuplicate(t *testing.T) {
	c := qt.New(t)
	group := testGroup()
	dir := &directory.MockSetupDirectory{
		EncryptionParametersPayloadFunc: func() (*model.EncryptionParametersPayload, error) {
			return &model.EncryptionParametersPayload{
				EncryptionGroup: group,
				SmallPrimes:     hexSlice(3, 3, 999), // duplicate + out-of-range
			}, nil
		},
	}
	result := smallPrimeEncodingEvidence(dir)(context.Background())
	c.Assert(len(result.Failures) >= 2, qt.IsTrue)
}

func TestSmallPrimeEncodingEvidenceAcceptsValidList(t *testing.T) {
	c := qt.New(t)
	group := testGroup()
	dir := &directory.MockSetupDirectory{
		EncryptionParametersPayloadFunc: func() (*model.EncryptionParametersPayload, error) {
			return &model.EncryptionParametersPayload{
				EncryptionGroup: group,
				SmallPrimes:     hexSlice(3, 5, 7),
			}, nil
		},
	}
	result := smallPrimeEncodingEvidence(dir)(context.Background())
	c.Assert(result.IsOk(), qt.IsTrue)
}
