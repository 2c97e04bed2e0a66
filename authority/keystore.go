package authority

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrCertificateNotFound is returned when the keystore has no certificate
// file for the requested authority.
var ErrCertificateNotFound = errors.New("certificate not found")

// ErrCertificateExpired is returned when a certificate's validity window does
// not cover the verification instant.
var ErrCertificateExpired = errors.New("certificate expired")

// Keystore is a directory of certificate files keyed by authority name
// (direct-trust/<authority>.<cer|crt>). It is opened once per runner
// invocation; certificates are parsed lazily and cached, never mutated
// after first publication.
type Keystore struct {
	dir   string
	mu    sync.Mutex
	cache map[Authority]*x509.Certificate
}

// NewKeystore opens a keystore rooted at dir. Opening performs no I/O beyond
// checking dir exists; certificates are loaded lazily by Certificate.
func NewKeystore(dir string) (*Keystore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open keystore %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("keystore path %s is not a directory", dir)
	}
	return &Keystore{dir: dir, cache: make(map[Authority]*x509.Certificate)}, nil
}

var certExtensions = []string{".cer", ".crt"}

// Certificate returns the parsed certificate for the given authority,
// loading and caching it on first access.
func (k *Keystore) Certificate(a Authority) (*x509.Certificate, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if cert, ok := k.cache[a]; ok {
		return cert, nil
	}
	var raw []byte
	var readErr error
	for _, ext := range certExtensions {
		path := filepath.Join(k.dir, a.String()+ext)
		raw, readErr = os.ReadFile(path)
		if readErr == nil {
			break
		}
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: authority %s in %s", ErrCertificateNotFound, a, k.dir)
	}
	cert, err := parseCertificate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: authority %s: %v", ErrCertificateNotFound, a, err)
	}
	k.cache[a] = cert
	return cert, nil
}

func parseCertificate(raw []byte) (*x509.Certificate, error) {
	if block, _ := pem.Decode(raw); block != nil {
		return x509.ParseCertificate(block.Bytes)
	}
	return x509.ParseCertificate(raw)
}

// CheckValidity reports ErrCertificateExpired if now falls outside the
// certificate's [NotBefore, NotAfter] validity window.
func CheckValidity(cert *x509.Certificate, now time.Time) error {
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return fmt.Errorf("%w: valid [%s, %s], checked at %s",
			ErrCertificateExpired, cert.NotBefore, cert.NotAfter, now)
	}
	return nil
}
