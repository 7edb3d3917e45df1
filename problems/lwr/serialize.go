package lwr

import (
	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
)

// PublicKeySize returns the encoded public key length.
func (s *Scheme) PublicKeySize() int { return s.pkSize }

// SecretKeySize returns the encoded secret key length.
func (s *Scheme) SecretKeySize() int { return s.params.KappaBytes }

// CiphertextSize returns the encoded ciphertext length.
func (s *Scheme) CiphertextSize() int { return s.ctSize }

// SerializePublicKey encodes sigma followed by B packed at log2(p) bits.
func (s *Scheme) SerializePublicKey(pk *PublicKey) []byte {
	out := make([]byte, 0, s.pkSize)
	out = append(out, pk.Sigma...)
	return append(out, utils.PackBits(pk.B, s.logP)...)
}

// DeserializePublicKey decodes a public key of exactly PublicKeySize bytes.
func (s *Scheme) DeserializePublicKey(data []byte) (*PublicKey, error) {
	if len(data) != s.pkSize {
		return nil, round5.Errorf("DeserializePublicKey", round5.ErrSizeMismatch, "got %d bytes, want %d", len(data), s.pkSize)
	}
	p := s.params
	return &PublicKey{
		Sigma: append([]byte(nil), data[:p.KappaBytes]...),
		B:     utils.UnpackBits(data[p.KappaBytes:p.KappaBytes+s.packedB], p.K*p.NBar*p.N, s.logP),
	}, nil
}

// SerializeSecretKey encodes the secret seed.
func (s *Scheme) SerializeSecretKey(sk *SecretKey) []byte {
	return append([]byte(nil), sk.Seed...)
}

// DeserializeSecretKey decodes a secret key of exactly SecretKeySize bytes.
func (s *Scheme) DeserializeSecretKey(data []byte) (*SecretKey, error) {
	if len(data) != s.params.KappaBytes {
		return nil, round5.Errorf("DeserializeSecretKey", round5.ErrSizeMismatch, "got %d bytes, want %d", len(data), s.params.KappaBytes)
	}
	return &SecretKey{Seed: append([]byte(nil), data...)}, nil
}

// SerializeCiphertext encodes U packed at log2(p) bits followed by v packed
// at log2(t) bits.
func (s *Scheme) SerializeCiphertext(ct *Ciphertext) []byte {
	out := make([]byte, 0, s.ctSize)
	out = append(out, utils.PackBits(ct.U, s.logP)...)
	return append(out, utils.PackBits(ct.V, s.logT)...)
}

// DeserializeCiphertext decodes a ciphertext of exactly CiphertextSize bytes.
func (s *Scheme) DeserializeCiphertext(data []byte) (*Ciphertext, error) {
	if len(data) != s.ctSize {
		return nil, round5.Errorf("DeserializeCiphertext", round5.ErrSizeMismatch, "got %d bytes, want %d", len(data), s.ctSize)
	}
	p := s.params
	return &Ciphertext{
		U: utils.UnpackBits(data[:s.packedU], p.K*p.MBar*p.N, s.logP),
		V: utils.UnpackBits(data[s.packedU:], s.mu, s.logT),
	}, nil
}
