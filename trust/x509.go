package trust

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// X509Verifier resolves an authenticatingAuthority name to a certificate
// loaded from a direct-trust/ directory (§6) and checks an RSA or ECDSA
// signature over the SHA-256 digest of the canonical bytes. This is
// explicitly a boundary adapter (§1: "X.509/PKI trust store" is out of
// scope for redesign) and no X.509 library appears anywhere in the
// retrieved corpus either, so crypto/x509 is used directly rather than
// wrapped behind an ecosystem package — see DESIGN.md.
type X509Verifier struct {
	certs map[string]*x509.Certificate
}

// LoadX509Verifier reads every *.pem / *.crt file in dir, keyed by
// filename without extension, as the authority name (§6: "certificates
// keyed by authority name").
func LoadX509Verifier(dir string) (*X509Verifier, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading trust store %q: %w", dir, err)
	}
	certs := make(map[string]*x509.Certificate)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".pem" && ext != ".crt" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading certificate %q: %w", e.Name(), err)
		}
		block, _ := pem.Decode(raw)
		var der []byte
		if block != nil {
			der = block.Bytes
		} else {
			der = raw
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate %q: %w", e.Name(), err)
		}
		name := e.Name()[:len(e.Name())-len(ext)]
		certs[name] = cert
	}
	return &X509Verifier{certs: certs}, nil
}

func (v *X509Verifier) Verify(canonical, signature []byte, authority string) (Result, error) {
	cert, ok := v.certs[authority]
	if !ok {
		return UnknownAuthority, nil
	}
	digest := sha256.Sum256(canonical)
	var err error
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		err = rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], signature)
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(pub, digest[:], signature) {
			err = fmt.Errorf("ECDSA verification failed")
		}
	default:
		return Invalid, fmt.Errorf("unsupported public key type for authority %q: %T", authority, pub)
	}
	if err != nil {
		return Invalid, nil
	}
	return Valid, nil
}

var _ Verifier = (*X509Verifier)(nil)
