package domain

import "fmt"

// SignatureKind separates certified signatures from placeholders so the two can
// never be confused downstream.
type SignatureKind string

const (
	SignatureCertified   SignatureKind = "CERTIFIED"
	SignaturePlaceholder SignatureKind = "PLACEHOLDER"
)

// Signature is a tagged variant over a digest: Signed(...) or Placeholder(...).
type Signature struct {
	Kind  SignatureKind `json:"kind"`
	Value string        `json:"value"`
	KeyID string        `json:"key_id,omitempty"`
}

// Signed builds a certified signature produced with key keyID.
func Signed(value, keyID string) Signature {
	return Signature{Kind: SignatureCertified, Value: value, KeyID: keyID}
}

// Placeholder builds a non-fiscal signature.
func Placeholder(value string) Signature {
	return Signature{Kind: SignaturePlaceholder, Value: value}
}

// IsFiscallyValid is true only for certified signatures.
func (s Signature) IsFiscallyValid() bool {
	return s.Kind == SignatureCertified && s.Value != ""
}

func (s Signature) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Value)
}
