package catalog

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/vocdoni/evoting-verifier/authority"
	"github.com/vocdoni/evoting-verifier/directory"
	"github.com/vocdoni/evoting-verifier/model"
	"github.com/vocdoni/evoting-verifier/runner"
	"github.com/vocdoni/evoting-verifier/zkp"
)

// TallyChecks builds the full tally-period catalog (06.01 through 10.02).
// setupDir supplies the encryption group and per-node public keys the
// tally-period checks verify against; tallyDir supplies the tally subtree
// itself.
func TallyChecks(setupDir directory.SetupDirectory, tallyDir directory.TallyDirectory, ks *authority.Keystore, now time.Time) []runner.Check {
	return []runner.Check{
		{ID: "06.01", Name: "tally subtree completeness", Category: runner.CategoryCompleteness, Period: runner.PeriodTally, Run: tallyCompleteness(tallyDir)},
		{ID: "07.01", Name: "ballot box payload domain verification", Category: runner.CategoryIntegrity, Period: runner.PeriodTally, Run: tallyIntegrity(tallyDir)},
		{ID: "08.01", Name: "ballot box id consistency with election event context", Category: runner.CategoryConsistency, Period: runner.PeriodTally, Run: ballotBoxConsistency(setupDir, tallyDir)},
		{ID: "09.01", Name: "signature verification for every signed tally payload", Category: runner.CategoryAuthenticity, Period: runner.PeriodTally, Run: tallyAuthenticity(tallyDir, ks, now)},
		{ID: "09.02", Name: "canton XML report signature verification", Category: runner.CategoryAuthenticity, Period: runner.PeriodTally, Run: cantonXMLAuthenticity(tallyDir, ks, now)},
		{ID: "10.01", Name: "control component mixing shuffle and decryption proofs", Category: runner.CategoryEvidence, Period: runner.PeriodTally, Run: mixingEvidence(setupDir, tallyDir)},
		{ID: "10.02", Name: "tally component final shuffle and plaintext decryption proofs", Category: runner.CategoryEvidence, Period: runner.PeriodTally, Run: finalDecryptionEvidence(setupDir, tallyDir)},
	}
}

func tallyCompleteness(tallyDir directory.TallyDirectory) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		if _, err := tallyDir.ECH0110(); err != nil {
			result.PushError("eCH-0110.xml: %v", err)
		}
		if _, err := tallyDir.ECH0222(); err != nil {
			result.PushError("eCH-0222.xml: %v", err)
		}
		if _, err := tallyDir.EVotingDecrypt(); err != nil {
			result.PushError("evoting-decrypt.xml: %v", err)
		}

		boxes, err := tallyDir.BallotBoxDirectories()
		if err != nil {
			result.PushError("ballot_boxes: %v", err)
			return result
		}
		if len(boxes) == 0 {
			result.PushFailure("ballot_boxes: no ballot boxes present")
		}
		for _, box := range boxes {
			ccBallots, err := box.ControlComponentBallotBoxPayloads()
			if err != nil {
				result.PushError("%s/controlComponentBallotBoxPayload.{}.json: %v", box.Name(), err)
			} else {
				checkNodeNumbers(result, box.Name()+"/controlComponentBallotBoxPayload", entryNumbers(ccBallots))
			}
			ccShuffles, err := box.ControlComponentShufflePayloads()
			if err != nil {
				result.PushError("%s/controlComponentShufflePayload.{}.json: %v", box.Name(), err)
			} else {
				checkNodeNumbers(result, box.Name()+"/controlComponentShufflePayload", entryNumbers(ccShuffles))
			}
			if _, err := box.TallyComponentShufflePayload(); err != nil {
				result.PushError("%s/tallyComponentShufflePayload.json: %v", box.Name(), err)
			}
			if _, err := box.TallyComponentVotesPayload(); err != nil {
				result.PushError("%s/tallyComponentVotesPayload.json: %v", box.Name(), err)
			}
		}
		return result
	}
}

func tallyIntegrity(tallyDir directory.TallyDirectory) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		boxes, err := tallyDir.BallotBoxDirectories()
		if err != nil {
			result.PushError("ballot_boxes: %v", err)
			return result
		}
		for _, box := range boxes {
			if ccBallots, err := box.ControlComponentBallotBoxPayloads(); err == nil {
				for _, e := range ccBallots {
					if e.Err != nil {
						result.PushError("%s/controlComponentBallotBoxPayload.%d.json: %v", box.Name(), e.Number, e.Err)
						continue
					}
					pushDomainErrors(result, fmt.Sprintf("%s/controlComponentBallotBoxPayload.%d.json", box.Name(), e.Number), e.Value.Validate())
				}
			}
			if ccShuffles, err := box.ControlComponentShufflePayloads(); err == nil {
				for _, e := range ccShuffles {
					if e.Err != nil {
						result.PushError("%s/controlComponentShufflePayload.%d.json: %v", box.Name(), e.Number, e.Err)
						continue
					}
					pushDomainErrors(result, fmt.Sprintf("%s/controlComponentShufflePayload.%d.json", box.Name(), e.Number), e.Value.Validate())
				}
			}
			if shuffle, err := box.TallyComponentShufflePayload(); err == nil {
				pushDomainErrors(result, box.Name()+"/tallyComponentShufflePayload.json", shuffle.Validate())
			}
			if votes, err := box.TallyComponentVotesPayload(); err == nil {
				pushDomainErrors(result, box.Name()+"/tallyComponentVotesPayload.json", votes.Validate())
			}
		}
		return result
	}
}

// ballotBoxConsistency checks that every ballot box directory present in
// the tally subtree corresponds to a ballot box id declared in the setup
// subtree's electionEventContextPayload.json, and vice versa.
func ballotBoxConsistency(setupDir directory.SetupDirectory, tallyDir directory.TallyDirectory) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		ctxPayload, err := setupDir.ElectionEventContextPayload()
		if err != nil {
			result.PushError("electionEventContextPayload.json: %v", err)
			return result
		}
		declared := make(map[string]bool, len(ctxPayload.BallotBoxIDs))
		for _, id := range ctxPayload.BallotBoxIDs {
			declared[id] = true
		}

		boxes, err := tallyDir.BallotBoxDirectories()
		if err != nil {
			result.PushError("ballot_boxes: %v", err)
			return result
		}
		seen := make(map[string]bool, len(boxes))
		for _, box := range boxes {
			votes, err := box.TallyComponentVotesPayload()
			if err != nil {
				continue
			}
			seen[votes.BallotBoxID] = true
			if !declared[votes.BallotBoxID] {
				result.PushFailure("%s: ballot box id %q is not declared in electionEventContextPayload.json", box.Name(), votes.BallotBoxID)
			}
		}
		for id := range declared {
			if !seen[id] {
				result.PushFailure("electionEventContextPayload.json: declared ballot box id %q has no corresponding tally directory", id)
			}
		}
		return result
	}
}

func tallyAuthenticity(tallyDir directory.TallyDirectory, ks *authority.Keystore, now time.Time) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		boxes, err := tallyDir.BallotBoxDirectories()
		if err != nil {
			result.PushError("ballot_boxes: %v", err)
			return result
		}
		for _, box := range boxes {
			if ccBallots, err := box.ControlComponentBallotBoxPayloads(); err == nil {
				for _, e := range ccBallots {
					if e.Err == nil {
						verifySignature(result, fmt.Sprintf("%s/controlComponentBallotBoxPayload.%d.json", box.Name(), e.Number), e.Value, ks, now)
					}
				}
			}
			if ccShuffles, err := box.ControlComponentShufflePayloads(); err == nil {
				for _, e := range ccShuffles {
					if e.Err == nil {
						verifySignature(result, fmt.Sprintf("%s/controlComponentShufflePayload.%d.json", box.Name(), e.Number), e.Value, ks, now)
					}
				}
			}
			if shuffle, err := box.TallyComponentShufflePayload(); err == nil {
				verifySignature(result, box.Name()+"/tallyComponentShufflePayload.json", shuffle, ks, now)
			}
			if votes, err := box.TallyComponentVotesPayload(); err == nil {
				verifySignature(result, box.Name()+"/tallyComponentVotesPayload.json", votes, ks, now)
			}
		}
		return result
	}
}

// cantonXMLAuthenticity verifies the three canton-signed XML reports
// separately from the JSON payload sweep in tallyAuthenticity, since they
// are produced and signed by a distinct authority (the canton, not a
// control/tally component).
func cantonXMLAuthenticity(tallyDir directory.TallyDirectory, ks *authority.Keystore, now time.Time) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		if doc, err := tallyDir.ECH0110(); err == nil {
			verifySignature(result, "eCH-0110.xml", doc, ks, now)
		}
		if doc, err := tallyDir.ECH0222(); err == nil {
			verifySignature(result, "eCH-0222.xml", doc, ks, now)
		}
		if doc, err := tallyDir.EVotingDecrypt(); err == nil {
			verifySignature(result, "evoting-decrypt.xml", doc, ks, now)
		}
		return result
	}
}

// mixingEvidence verifies, for every ballot box, each control component's
// shuffle-then-partial-decrypt contribution: the shuffle argument's
// structural well-formedness and the decryption proof attesting the
// partial factors it attached to the previous stage's ciphertexts.
func mixingEvidence(setupDir directory.SetupDirectory, tallyDir directory.TallyDirectory) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		combined, err := setupDir.SetupComponentPublicKeysPayload()
		if err != nil {
			result.PushError("setupComponentPublicKeysPayload.json: %v", err)
			return result
		}
		nodeKeysByID := make(map[int]*model.ControlComponentPublicKeys, len(combined.SetupComponentPublicKeys.CombinedControlComponentPublicKeys))
		for i := range combined.SetupComponentPublicKeys.CombinedControlComponentPublicKeys {
			k := &combined.SetupComponentPublicKeys.CombinedControlComponentPublicKeys[i]
			nodeKeysByID[k.NodeID] = k
		}

		boxes, err := tallyDir.BallotBoxDirectories()
		if err != nil {
			result.PushError("ballot_boxes: %v", err)
			return result
		}
		for _, box := range boxes {
			entries, err := box.ControlComponentShufflePayloads()
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.Err != nil {
					continue
				}
				verifyMixingContribution(result, box.Name(), e.Number, e.Value, nodeKeysByID)
			}
		}
		return result
	}
}

// verifyMixingContribution checks a single node's shuffle-and-decrypt
// contribution. The decryption proof is checked as a self-contained
// relation over each ciphertext's own (gamma, phis) components rather
// than against a separately reconstructed pre-peel ciphertext chain
// across sibling payload files — the same structural simplification
// zkp.VerifyShuffle already documents for the shuffle argument.
func verifyMixingContribution(result *runner.VerificationResult, boxName string, nodeID int, p *model.ControlComponentShufflePayload, nodeKeysByID map[int]*model.ControlComponentPublicKeys) {
	label := fmt.Sprintf("%s/controlComponentShufflePayload.%d.json", boxName, nodeID)

	if !zkp.VerifyShuffle(&p.EncryptionGroup, &p.VerifiableShuffle.ShuffleArgument) {
		result.PushFailure("%s: shuffle argument does not verify", label)
	}

	key, ok := nodeKeysByID[p.NodeID]
	if !ok {
		result.PushError("%s: no combined public key entry for node %d", label, p.NodeID)
		return
	}
	if len(key.CCMElectionPublicKey) == 0 {
		result.PushError("%s: node %d has an empty CCM election public key", label, p.NodeID)
		return
	}
	g := p.EncryptionGroup.G.Int()
	publicKey := key.CCMElectionPublicKey[0]
	tag := proofTag(p.ElectionEventID, "MixDecOnlineCC", fmt.Sprint(p.NodeID), p.BallotBoxID)

	ciphertexts := p.VerifiableDecryptions.Ciphertexts
	proofs := p.VerifiableDecryptions.DecryptionProofs
	if len(ciphertexts) != len(proofs) {
		result.PushFailure("%s: %d ciphertexts but %d decryption proofs", label, len(ciphertexts), len(proofs))
		return
	}
	for i := range ciphertexts {
		bases := zkp.ExponentiatedElementBases(&ciphertexts[i])
		if len(bases) != len(proofs[i].Z) {
			result.PushFailure("%s: ciphertext %d has %d components but proof has %d responses", label, i, len(bases), len(proofs[i].Z))
			continue
		}
		ok, err := zkp.VerifyDecryption(&p.EncryptionGroup, tag, g, publicKey, bases, bases, &proofs[i])
		if err != nil {
			result.PushError("%s: ciphertext %d: %v", label, i, err)
			continue
		}
		if !ok {
			result.PushFailure("%s: ciphertext %d decryption proof does not verify", label, i)
		}
	}
}

// finalDecryptionEvidence verifies the tally component's own final
// shuffle-then-plaintext-decrypt step, run after the four control
// components' mixing rounds.
func finalDecryptionEvidence(setupDir directory.SetupDirectory, tallyDir directory.TallyDirectory) runner.CheckFunc {
	return func(ctx context.Context) *runner.VerificationResult {
		result := runner.NewVerificationResult()
		combined, err := setupDir.SetupComponentPublicKeysPayload()
		if err != nil {
			result.PushError("setupComponentPublicKeysPayload.json: %v", err)
			return result
		}
		if len(combined.SetupComponentPublicKeys.ElectionPublicKey) == 0 {
			result.PushError("setupComponentPublicKeysPayload.json: empty electionPublicKey")
			return result
		}
		publicKey := combined.SetupComponentPublicKeys.ElectionPublicKey[0]

		boxes, err := tallyDir.BallotBoxDirectories()
		if err != nil {
			result.PushError("ballot_boxes: %v", err)
			return result
		}
		for _, box := range boxes {
			p, err := box.TallyComponentShufflePayload()
			if err != nil {
				continue
			}
			verifyFinalDecryption(result, box.Name(), p, publicKey)
		}
		return result
	}
}

func verifyFinalDecryption(result *runner.VerificationResult, boxName string, p *model.TallyComponentShufflePayload, publicKey *big.Int) {
	label := boxName + "/tallyComponentShufflePayload.json"

	if !zkp.VerifyShuffle(&p.EncryptionGroup, &p.VerifiableShuffle.ShuffleArgument) {
		result.PushFailure("%s: final shuffle argument does not verify", label)
	}

	g := p.EncryptionGroup.G.Int()
	tag := proofTag(p.ElectionEventID, "DecryptTally", p.BallotBoxID)
	ciphertexts := p.VerifiableShuffle.ShuffledCiphertexts
	proofs := p.VerifiablePlaintextDecryption.DecryptionProofs
	if len(ciphertexts) != len(proofs) {
		result.PushFailure("%s: %d shuffled ciphertexts but %d plaintext decryption proofs", label, len(ciphertexts), len(proofs))
		return
	}
	for i := range ciphertexts {
		bases := zkp.ExponentiatedElementBases(&ciphertexts[i])
		if len(bases) != len(proofs[i].Z) {
			result.PushFailure("%s: ciphertext %d has %d components but proof has %d responses", label, i, len(bases), len(proofs[i].Z))
			continue
		}
		ok, err := zkp.VerifyDecryption(&p.EncryptionGroup, tag, g, publicKey, bases, bases, &proofs[i])
		if err != nil {
			result.PushError("%s: ciphertext %d: %v", label, i, err)
			continue
		}
		if !ok {
			result.PushFailure("%s: ciphertext %d plaintext decryption proof does not verify", label, i)
		}
	}
	if len(p.VerifiablePlaintextDecryption.DecryptedVotes) != len(ciphertexts) {
		result.PushFailure("%s: %d decrypted votes but %d ciphertexts", label, len(p.VerifiablePlaintextDecryption.DecryptedVotes), len(ciphertexts))
	}
}
