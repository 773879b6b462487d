package service

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"
)

const (
	signingKeySize = 32
	signingKeyInfo = "pos-fiscal-ledger/ticket-signature/v1"
)

// HMACSigner implements ports.Signer. The provisioned secret is never used
// directly: an HMAC key is derived from it with HKDF-SHA256.
type HMACSigner struct {
	key   []byte
	keyID string
	log   zerolog.Logger
}

// NewHMACSigner creates a signer. An empty secret yields a signer that only
// produces placeholder signatures.
func NewHMACSigner(secret, keyID string, log zerolog.Logger) (*HMACSigner, error) {
	s := &HMACSigner{keyID: keyID, log: log}
	if secret == "" {
		log.Warn().Msg("no certified signing key provisioned, signatures will be placeholders")
		return s, nil
	}

	key := make([]byte, signingKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving signing key: %w", err)
	}
	s.key = key
	return s, nil
}

// Sign signs a hex digest.
func (s *HMACSigner) Sign(digest string) domain.Signature {
	sig := hashchain.Sign(digest, s.key, s.keyID)
	if !sig.IsFiscallyValid() {
		metrics.RecordPlaceholderSignature()
		s.log.Warn().Str("signature", sig.String()).Msg("issued placeholder signature, not fiscally valid")
	}
	return sig
}

// Certified reports whether signatures are made with a provisioned key.
func (s *HMACSigner) Certified() bool {
	return len(s.key) > 0
}

// SystemClock implements ports.Clock with the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
