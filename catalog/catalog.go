// Package catalog builds the runner.Check values for every named
// verification in the setup and tally period catalogs (C5), each closing
// over a directory.SetupDirectory/TallyDirectory and an authority.Keystore
// rather than taking them as Run-time arguments, so the runner can treat
// every check as a uniform zero-argument runner.CheckFunc.
package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/vocdoni/evoting-verifier/authority"
	"github.com/vocdoni/evoting-verifier/directory"
	"github.com/vocdoni/evoting-verifier/model"
	"github.com/vocdoni/evoting-verifier/runner"
)

// pushDomainErrors records every domain error a payload's Validate pass
// produced as a failure: the payload was evaluated and found to violate
// an invariant, which is always a VerificationFailure, never an error.
func pushDomainErrors(result *runner.VerificationResult, label string, errs []*model.DomainError) {
	for _, e := range errs {
		result.PushFailure("%s: %s", label, e.Error())
	}
}

// verifySignature checks a single signed payload against the keystore,
// classifying the outcome per §4.3: an unresolvable authority tag, a
// missing/expired certificate, or an unsupported key algorithm is a
// VerificationError (the evidence could not be evaluated); a hash
// mismatch is a VerificationFailure (it was evaluated and does not hold).
func verifySignature(result *runner.VerificationResult, label string, p model.Payload, ks *authority.Keystore, now time.Time) {
	a, err := authority.ByName(string(p.Authority()))
	if err != nil {
		result.PushError("%s: %v", label, err)
		return
	}
	err = authority.Verify(a, p.Context(), p.Hashable(), p.SignatureBytes(), ks, now)
	switch {
	case err == nil:
		return
	case errors.Is(err, authority.ErrHashMismatch):
		result.PushFailure("%s: signature does not verify: %v", label, err)
	default:
		result.PushError("%s: %v", label, err)
	}
}

// entryNumbers extracts the Number field of every Entry, ignoring load
// errors (callers that care about load failures inspect Err separately).
func entryNumbers[T any](entries []directory.Entry[T]) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Number
	}
	return out
}

// checkNodeNumbers asserts a control-component-numbered file group covers
// exactly {1, 2, 3, 4} — invariant (d), no fewer, no more, no duplicates
// (a duplicate would have already collapsed in the set, so this only
// reports missing/out-of-range numbers, matching the completeness
// category's "exactly {1,2,3,4}" wording).
func checkNodeNumbers(result *runner.VerificationResult, label string, numbers []int) {
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		seen[n] = true
	}
	for node := 1; node <= 4; node++ {
		if !seen[node] {
			result.PushFailure("%s: missing entry for control component node %d", label, node)
		}
	}
	for n := range seen {
		if n < 1 || n > 4 {
			result.PushFailure("%s: unexpected entry numbered %d (control components are 1..4)", label, n)
		}
	}
}

// proofTag joins a Schnorr/exponentiation/decryption proof's auxiliary
// context parts into the single domain-separating string
// zkp.recomputeChallenge takes, mirroring the "[election_event_id,
// \"GenKeysCCR\", node_id]"-shaped auxiliary strings named in §4.5.
func proofTag(parts ...string) string {
	return strings.Join(parts, "|")
}
