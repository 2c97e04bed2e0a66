package authority

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/evoting-verifier/hashtree"
)

// ErrHashMismatch is returned when the signature does not verify against
// the composed context+hashable digest.
var ErrHashMismatch = errors.New("hash mismatch")

// ErrCrypto wraps a library-level cryptographic failure unrelated to a
// simple hash mismatch (e.g. an unsupported public key algorithm).
var ErrCrypto = errors.New("crypto error")

// ByName maps an authority.Authority's wire name back to the enumeration
// value, for catalog code that only carries the string tag on a model
// payload (see model.AuthorityTag).
func ByName(name string) (Authority, error) {
	for _, a := range All() {
		if a.String() == name {
			return a, nil
		}
	}
	return Authority{}, fmt.Errorf("unknown authority %q", name)
}

// Verify composes ctx and tree into a single hash input, fetches the
// issuer certificate for authority from ks, checks its validity window
// against now, and verifies sig against the certificate's public key.
//
// It returns one of ErrCertificateNotFound, ErrCertificateExpired,
// ErrHashMismatch, or ErrCrypto, wrapped with context, or nil on success.
func Verify(a Authority, ctx []string, tree hashtree.Node, sig []byte, ks *Keystore, now time.Time) error {
	cert, err := ks.Certificate(a)
	if err != nil {
		return err
	}
	if err := CheckValidity(cert, now); err != nil {
		return err
	}

	digest := composeDigest(ctx, tree)

	if err := verifySignature(cert, digest[:], sig); err != nil {
		if errors.Is(err, ErrHashMismatch) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return nil
}

// composeDigest folds the context strings ahead of the payload's hash tree
// so that a signature over one context can never be replayed as a
// signature over another (e.g. "encrypted code shares" vs "tally data").
func composeDigest(ctx []string, tree hashtree.Node) [hashtree.Size]byte {
	contextNodes := make(hashtree.List, 0, len(ctx)+1)
	for _, c := range ctx {
		contextNodes = append(contextNodes, hashtree.Text(c))
	}
	contextNodes = append(contextNodes, tree)
	return hashtree.Digest(contextNodes)
}

func verifySignature(cert *x509.Certificate, digest, sig []byte) error {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig); err != nil {
			return fmt.Errorf("%w: %v", ErrHashMismatch, err)
		}
		return nil
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(pub, digest, sig) {
			return fmt.Errorf("%w: ECDSA verification failed", ErrHashMismatch)
		}
		return nil
	case ed25519.PublicKey:
		if !ed25519.Verify(pub, digest, sig) {
			return fmt.Errorf("%w: Ed25519 verification failed", ErrHashMismatch)
		}
		return nil
	default:
		return fmt.Errorf("unsupported public key algorithm %T", pub)
	}
}
