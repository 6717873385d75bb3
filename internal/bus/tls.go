package bus

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"matlab-language-server/internal/common"
)

// LoadPinnedTLSConfig builds a tls.Config trusting exactly the
// certificate at certPath/keyPath, spec §4.1. The pair is self-signed
// and has no CA, so trust is established by comparing the presented
// leaf's raw DER bytes against what was loaded here rather than by
// chain verification.
//
// Per §4.2, the interpreter writes these files once as part of the
// handshake; the caller is expected to delete them after this call
// succeeds (see DeleteCertFiles).
func LoadPinnedTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("bus: load interpreter cert/key: %w", err)
	}
	if len(pair.Certificate) == 0 {
		return nil, fmt.Errorf("bus: interpreter cert file contains no certificates")
	}
	pinned := pair.Certificate[0]

	leaf, err := x509.ParseCertificate(pinned)
	if err != nil {
		return nil, fmt.Errorf("bus: parse interpreter certificate: %w", err)
	}

	// The leaf is self-signed and has no issuing CA; trusting it directly
	// as the sole root lets normal chain verification succeed without
	// ever setting InsecureSkipVerify.
	roots := x509.NewCertPool()
	roots.AddCert(leaf)

	cfg := &tls.Config{
		Certificates: []tls.Certificate{pair},
		RootCAs:      roots,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return fmt.Errorf("bus: peer presented no certificate")
			}
			if !bytesEqual(rawCerts[0], pinned) {
				return fmt.Errorf("bus: peer certificate does not match pinned interpreter certificate")
			}
			return nil
		},
	}
	return cfg, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeleteCertFiles removes the handshake cert/key pair once the TLS
// config built from them is in hand, spec §4.1 ("read once then
// deleted"). Missing files are not an error — this may run twice if a
// caller retries the handshake.
func DeleteCertFiles(certPath, keyPath string) {
	for _, p := range []string{certPath, keyPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			common.BusLogger.Warn("failed to delete handshake file %s: %v", p, err)
		}
	}
}
