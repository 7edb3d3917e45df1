package kem

import (
	"crypto/subtle"

	"github.com/cloudflare/circl/kem"
)

// Scheme returns the context as a circl kem.Scheme, so it can be used
// wherever circl KEMs are accepted (HPKE, hybrid KEMs).
func (k *KEM) Scheme() kem.Scheme {
	return &scheme{k: k}
}

type scheme struct {
	k *KEM
}

// PublicKey is an encoded public key bound to its scheme.
type PublicKey struct {
	sch  *scheme
	data []byte
}

// PrivateKey is an encoded secret key bound to its scheme.
type PrivateKey struct {
	sch  *scheme
	data []byte
}

func (s *scheme) Name() string               { return s.k.params.Name }
func (s *scheme) PublicKeySize() int         { return s.k.pkSize }
func (s *scheme) PrivateKeySize() int        { return s.k.skSize }
func (s *scheme) SeedSize() int              { return 3 * s.k.params.KappaBytes }
func (s *scheme) SharedKeySize() int         { return s.k.params.KappaBytes }
func (s *scheme) CiphertextSize() int        { return s.k.ctSize }
func (s *scheme) EncapsulationSeedSize() int { return s.k.params.KappaBytes }

func (pk *PublicKey) Scheme() kem.Scheme  { return pk.sch }
func (sk *PrivateKey) Scheme() kem.Scheme { return sk.sch }

func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), pk.data...), nil
}

func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), sk.data...), nil
}

func (pk *PublicKey) Equal(other kem.PublicKey) bool {
	oth, ok := other.(*PublicKey)
	if !ok || oth.sch.k != pk.sch.k {
		return false
	}
	return subtle.ConstantTimeCompare(pk.data, oth.data) == 1
}

func (sk *PrivateKey) Equal(other kem.PrivateKey) bool {
	oth, ok := other.(*PrivateKey)
	if !ok || oth.sch.k != sk.sch.k {
		return false
	}
	return subtle.ConstantTimeCompare(sk.data, oth.data) == 1
}

// Public returns the public key embedded at the end of the secret key.
func (sk *PrivateKey) Public() kem.PublicKey {
	pk := sk.data[len(sk.data)-sk.sch.k.pkSize:]
	return &PublicKey{sch: sk.sch, data: append([]byte(nil), pk...)}
}

func (s *scheme) GenerateKeyPair() (kem.PublicKey, kem.PrivateKey, error) {
	kp, err := s.k.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	return &PublicKey{sch: s, data: kp.PublicKey}, &PrivateKey{sch: s, data: kp.SecretKey}, nil
}

func (s *scheme) DeriveKeyPair(seed []byte) (kem.PublicKey, kem.PrivateKey) {
	if len(seed) != s.SeedSize() {
		panic(kem.ErrSeedSize)
	}
	kp, err := s.k.GenerateKeyPairFromSeed(seed)
	if err != nil {
		panic(err)
	}
	return &PublicKey{sch: s, data: kp.PublicKey}, &PrivateKey{sch: s, data: kp.SecretKey}
}

func (s *scheme) Encapsulate(pk kem.PublicKey) (ct, ss []byte, err error) {
	pub, ok := pk.(*PublicKey)
	if !ok || pub.sch.k != s.k {
		return nil, nil, kem.ErrTypeMismatch
	}
	res, err := s.k.Encapsulate(pub.data)
	if err != nil {
		return nil, nil, err
	}
	return res.Ciphertext, res.SharedSecret, nil
}

func (s *scheme) EncapsulateDeterministically(pk kem.PublicKey, seed []byte) (ct, ss []byte, err error) {
	if len(seed) != s.EncapsulationSeedSize() {
		return nil, nil, kem.ErrSeedSize
	}
	pub, ok := pk.(*PublicKey)
	if !ok || pub.sch.k != s.k {
		return nil, nil, kem.ErrTypeMismatch
	}
	res, err := s.k.EncapsulateDeterministic(pub.data, seed)
	if err != nil {
		return nil, nil, err
	}
	return res.Ciphertext, res.SharedSecret, nil
}

func (s *scheme) Decapsulate(sk kem.PrivateKey, ct []byte) ([]byte, error) {
	if len(ct) != s.CiphertextSize() {
		return nil, kem.ErrCiphertextSize
	}
	priv, ok := sk.(*PrivateKey)
	if !ok || priv.sch.k != s.k {
		return nil, kem.ErrTypeMismatch
	}
	return s.k.Decapsulate(priv.data, ct)
}

func (s *scheme) UnmarshalBinaryPublicKey(buf []byte) (kem.PublicKey, error) {
	if len(buf) != s.PublicKeySize() {
		return nil, kem.ErrPubKeySize
	}
	return &PublicKey{sch: s, data: append([]byte(nil), buf...)}, nil
}

func (s *scheme) UnmarshalBinaryPrivateKey(buf []byte) (kem.PrivateKey, error) {
	if len(buf) != s.PrivateKeySize() {
		return nil, kem.ErrPrivKeySize
	}
	return &PrivateKey{sch: s, data: append([]byte(nil), buf...)}, nil
}
