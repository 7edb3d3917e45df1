// Package kem implements the CCA-secure key encapsulation mechanism for
// round5.
//
// The IND-CPA encryption of the lwr package is made CCA-secure by
// derandomizing encryption with a hash of the message and public key,
// re-encrypting on decapsulation and, when the re-encryption does not match,
// deriving the shared secret from a secret rejection value z instead of the
// decrypted message. The choice is made in constant time and is never
// reported to the caller.
package kem

import (
	"crypto/subtle"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/core"
	"github.com/BackendStack21/round5-go/matrix"
	"github.com/BackendStack21/round5-go/problems/lwr"
	"github.com/BackendStack21/round5-go/utils"
)

// cSHAKE customization strings. Each hash input role has its own tag so no
// two roles can produce related outputs.
const (
	DomainEncrypt = "encrypt" // rho = H(m || pk)
	DomainConfirm = "confirm" // g = H(m || c)
	DomainDerive  = "derive"  // k = H(m || ct)
	DomainEncKey  = "round5-hybrid-key"
)

// KEM is a key encapsulation context for one parameter set. It owns the
// fixed matrix used when tau = 1. A KEM is safe for concurrent use.
type KEM struct {
	params round5.Parameters
	fixed  *matrix.Fixed
	gen    *matrix.Generator
	cpa    *lwr.Scheme

	pkSize, skSize, ctSize, cpaCTSize int
}

// New returns a context for params. For tau = 1 the fixed matrix must be
// generated with GenerateFixedMatrix before keys can be used.
func New(params round5.Parameters) (*KEM, error) {
	fixed := &matrix.Fixed{}
	gen := matrix.NewGenerator(params, fixed)
	cpa, err := lwr.New(params, gen)
	if err != nil {
		return nil, err
	}

	k := &KEM{
		params:    params,
		fixed:     fixed,
		gen:       gen,
		cpa:       cpa,
		pkSize:    core.PublicKeySize(params),
		skSize:    core.SecretKeySize(params),
		ctSize:    core.CiphertextSize(params),
		cpaCTSize: core.CPACiphertextSize(params),
	}
	utils.Logger().Debug().Str("params", params.Name).Int("tau", params.Tau).Msg("kem context created")
	return k, nil
}

// NewDefault returns a context for a shipped parameter set. Sets with
// tau = 1 get their fixed matrix from matrix.CanonicalSeed, so all default
// contexts of the same level interoperate.
func NewDefault(level round5.SecurityLevel) (*KEM, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}
	k, err := New(params)
	if err != nil {
		return nil, err
	}
	if params.Tau == round5.TauFixed {
		if err := k.GenerateFixedMatrix(matrix.CanonicalSeed(params.KappaBytes)); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// Params returns the context's parameter set.
func (k *KEM) Params() round5.Parameters {
	return k.params
}

// PublicKeySize returns the encoded public key length.
func (k *KEM) PublicKeySize() int { return k.pkSize }

// SecretKeySize returns the encoded secret key length.
func (k *KEM) SecretKeySize() int { return k.skSize }

// CiphertextSize returns the encapsulation length.
func (k *KEM) CiphertextSize() int { return k.ctSize }

// SharedSecretSize returns the shared secret length.
func (k *KEM) SharedSecretSize() int { return k.params.KappaBytes }

// GenerateFixedMatrix initializes the context's fixed matrix from seed.
// Repeating the call with the same seed is a no-op; a different seed fails
// with round5.ErrFixedMatrixConflict. Only tau = 1 contexts use a fixed
// matrix.
func (k *KEM) GenerateFixedMatrix(seed []byte) error {
	if k.params.Tau != round5.TauFixed {
		return round5.Errorf("GenerateFixedMatrix", round5.ErrInvalidParameter, "tau %d does not use a fixed matrix", k.params.Tau)
	}
	return k.fixed.Init(seed, k.params)
}

// FixedMatrix returns a copy of the context's fixed matrix.
func (k *KEM) FixedMatrix() ([]uint16, error) {
	return k.fixed.Matrix()
}

// GenerateKeyPair generates a key pair from three independent random
// kappa_bytes values: the matrix seed, the secret seed and z.
func (k *KEM) GenerateKeyPair() (*round5.KeyPair, error) {
	kappa := k.params.KappaBytes
	seed := make([]byte, 0, 3*kappa)
	for i := 0; i < 3; i++ {
		part, err := utils.SecureRandomBytes(kappa)
		if err != nil {
			return nil, err
		}
		seed = append(seed, part...)
		utils.Zeroize(part)
	}

	kp, err := k.GenerateKeyPairFromSeed(seed)
	utils.Zeroize(seed)
	return kp, err
}

// GenerateKeyPairFromSeed deterministically derives a key pair from a
// 3*kappa_bytes seed holding the matrix seed, the secret seed and z.
func (k *KEM) GenerateKeyPairFromSeed(seed []byte) (*round5.KeyPair, error) {
	kappa := k.params.KappaBytes
	if len(seed) != 3*kappa {
		return nil, round5.Errorf("GenerateKeyPair", round5.ErrSizeMismatch, "seed must be %d bytes", 3*kappa)
	}
	if err := k.gen.Ready(); err != nil {
		return nil, err
	}

	sigma, skSeed, z := seed[:kappa], seed[kappa:2*kappa], seed[2*kappa:]
	pk, sk, err := k.cpa.KeyGen(sigma, skSeed)
	if err != nil {
		return nil, err
	}

	pkBytes := k.cpa.SerializePublicKey(pk)
	skBytes := make([]byte, 0, k.skSize)
	skBytes = append(skBytes, k.cpa.SerializeSecretKey(sk)...)
	skBytes = append(skBytes, z...)
	skBytes = append(skBytes, pkBytes...)
	utils.Zeroize(sk.Seed)

	return &round5.KeyPair{
		PublicKey: pkBytes,
		SecretKey: skBytes,
	}, nil
}

// Encapsulate generates a fresh shared secret and its encapsulation under pk.
func (k *KEM) Encapsulate(pk []byte) (*round5.EncapsulationResult, error) {
	if err := k.checkPublicKey(pk); err != nil {
		return nil, err
	}
	m, err := utils.SecureRandomBytes(k.params.KappaBytes)
	if err != nil {
		return nil, err
	}
	result, err := k.EncapsulateDeterministic(pk, m)
	utils.Zeroize(m)
	return result, err
}

// EncapsulateDeterministic encapsulates the kappa_bytes message m under pk.
// The result is a pure function of (pk, m).
func (k *KEM) EncapsulateDeterministic(pk, m []byte) (*round5.EncapsulationResult, error) {
	if err := k.checkPublicKey(pk); err != nil {
		return nil, err
	}
	if len(m) != k.params.KappaBytes {
		return nil, round5.Errorf("Encapsulate", round5.ErrSizeMismatch, "message must be %d bytes", k.params.KappaBytes)
	}
	cpaPK, err := k.cpa.DeserializePublicKey(pk)
	if err != nil {
		return nil, err
	}

	ct, err := k.encapsulate(pk, cpaPK, m)
	if err != nil {
		return nil, err
	}
	return &round5.EncapsulationResult{
		SharedSecret: k.deriveKey(m, ct),
		Ciphertext:   ct,
	}, nil
}

// Decapsulate recovers the shared secret from ct using sk.
//
// A ciphertext that does not re-encrypt to itself yields a pseudorandom
// secret derived from z instead of an error, and both outcomes run the same
// sequence of operations. Only malformed sizes and a missing fixed matrix
// are reported, and those are checked before any secret is touched.
func (k *KEM) Decapsulate(sk, ct []byte) ([]byte, error) {
	if len(sk) != k.skSize {
		return nil, round5.Errorf("Decapsulate", round5.ErrSizeMismatch, "secret key is %d bytes, want %d", len(sk), k.skSize)
	}
	if len(ct) != k.ctSize {
		return nil, round5.Errorf("Decapsulate", round5.ErrSizeMismatch, "ciphertext is %d bytes, want %d", len(ct), k.ctSize)
	}
	if err := k.gen.Ready(); err != nil {
		return nil, err
	}

	kappa := k.params.KappaBytes
	cpaSKBytes, z, pk := sk[:kappa], sk[kappa:2*kappa], sk[2*kappa:]

	cpaSK, err := k.cpa.DeserializeSecretKey(cpaSKBytes)
	if err != nil {
		return nil, err
	}
	cpaPK, err := k.cpa.DeserializePublicKey(pk)
	if err != nil {
		return nil, err
	}
	cpaCT, err := k.cpa.DeserializeCiphertext(ct[:k.cpaCTSize])
	if err != nil {
		return nil, err
	}

	m, err := k.cpa.Decrypt(cpaSK, cpaCT)
	utils.Zeroize(cpaSK.Seed)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(m)

	reencrypted, err := k.encapsulate(pk, cpaPK, m)
	if err != nil {
		return nil, err
	}

	valid := subtle.ConstantTimeCompare(ct, reencrypted)
	selected := utils.ConstantTimeSelect(valid, m, z)
	defer utils.Zeroize(selected)

	return k.deriveKey(selected, ct), nil
}

// encapsulate returns c || g for message m.
func (k *KEM) encapsulate(pk []byte, cpaPK *lwr.PublicKey, m []byte) ([]byte, error) {
	kappa := k.params.KappaBytes

	rho := utils.HashWithTag(kappa, DomainEncrypt, kappa, m, pk)
	defer utils.Zeroize(rho)

	c, err := k.cpa.Encrypt(cpaPK, m, rho)
	if err != nil {
		return nil, err
	}

	ct := make([]byte, 0, k.ctSize)
	ct = append(ct, k.cpa.SerializeCiphertext(c)...)
	g := utils.HashWithTag(kappa, DomainConfirm, kappa, m, ct)
	return append(ct, g...), nil
}

func (k *KEM) deriveKey(m, ct []byte) []byte {
	kappa := k.params.KappaBytes
	return utils.HashWithTag(kappa, DomainDerive, kappa, m, ct)
}

func (k *KEM) checkPublicKey(pk []byte) error {
	if len(pk) != k.pkSize {
		return round5.Errorf("Encapsulate", round5.ErrSizeMismatch, "public key is %d bytes, want %d", len(pk), k.pkSize)
	}
	return k.gen.Ready()
}
