// Package lwr implements the learning-with-rounding public-key encryption
// scheme underneath the round5 KEM.
//
// Keys and ciphertexts are matrices over Z_q[x]/(x^n+1) (plain Z_q when
// n = 1). The secret is a matrix of sparse ternary vectors with exactly h
// non-zero entries per column, noise comes only from rounding between the
// power-of-two moduli q > p > t:
//
//	KeyGen:  B = round_{q->p}(A*S)
//	Encrypt: U = round_{q->p}(A^T*R), v = round_{p->t}(B^T*R + (p/2^b)*m)
//	Decrypt: m = round_{p->2^b}((p/t)*v - S^T*U)
//
// The scheme is IND-CPA only. It must be wrapped by the kem package before
// ciphertexts from untrusted parties are decrypted.
package lwr

import (
	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/core"
	"github.com/BackendStack21/round5-go/drbg"
	"github.com/BackendStack21/round5-go/matrix"
	"github.com/BackendStack21/round5-go/utils"
)

const (
	DomainSecret    = "lwr-secret"
	DomainEphemeral = "lwr-ephemeral"
)

// PublicKey is the matrix seed sigma and the rounded product B.
type PublicKey struct {
	Sigma []byte
	B     []uint16 // k x n_bar ring elements mod p
}

// SecretKey is the seed the ternary secret S is expanded from.
type SecretKey struct {
	Seed []byte
}

// Ciphertext is the rounded product U and the compressed message carrier v.
type Ciphertext struct {
	U []uint16 // k x m_bar ring elements mod p
	V []uint16 // mu symbols mod t
}

// Scheme is an instantiation of the primitive for one parameter set.
// It is safe for concurrent use.
type Scheme struct {
	params round5.Parameters
	gen    *matrix.Generator

	mu               int
	logQ, logP, logT int
	pkSize, ctSize   int
	packedB, packedU int
}

// New validates params and returns a scheme drawing its public matrices from
// gen.
func New(params round5.Parameters, gen *matrix.Generator) (*Scheme, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if gen == nil {
		gen = matrix.NewGenerator(params, nil)
	}
	s := &Scheme{
		params: params,
		gen:    gen,
		mu:     core.Mu(params),
		logQ:   core.Log2(params.Q),
		logP:   core.Log2(params.P),
		logT:   core.Log2(params.T),
		pkSize: core.PublicKeySize(params),
		ctSize: core.CPACiphertextSize(params),
	}
	s.packedB = utils.PackedLen(params.K*params.NBar*params.N, s.logP)
	s.packedU = utils.PackedLen(params.K*params.MBar*params.N, s.logP)
	return s, nil
}

// Params returns the parameter set.
func (s *Scheme) Params() round5.Parameters {
	return s.params
}

// KeyGen derives a key pair from the matrix seed sigma and the secret seed.
// Both must be kappa_bytes long.
func (s *Scheme) KeyGen(sigma, seed []byte) (*PublicKey, *SecretKey, error) {
	p := s.params
	if len(sigma) != p.KappaBytes || len(seed) != p.KappaBytes {
		return nil, nil, round5.Errorf("KeyGen", round5.ErrSizeMismatch, "sigma and seed must be %d bytes", p.KappaBytes)
	}

	a, err := s.gen.PublicMatrix(sigma)
	if err != nil {
		return nil, nil, err
	}
	secret, err := s.secret(seed, DomainSecret, p.NBar)
	if err != nil {
		return nil, nil, err
	}
	defer utils.ZeroizeInt8(secret)

	b := mulMatrices(a, false, p.K, p.K, secret, p.NBar, p.N)
	reduce(b, s.logQ)
	roundAll(b, s.logQ, s.logP)

	return &PublicKey{
			Sigma: append([]byte(nil), sigma...),
			B:     b,
		}, &SecretKey{
			Seed: append([]byte(nil), seed...),
		}, nil
}

// Encrypt encrypts the kappa_bytes message m under pk using rho as the
// only source of randomness.
func (s *Scheme) Encrypt(pk *PublicKey, m, rho []byte) (*Ciphertext, error) {
	p := s.params
	if len(m) != p.KappaBytes || len(rho) != p.KappaBytes {
		return nil, round5.Errorf("Encrypt", round5.ErrSizeMismatch, "message and rho must be %d bytes", p.KappaBytes)
	}
	if len(pk.Sigma) != p.KappaBytes || len(pk.B) != p.K*p.NBar*p.N {
		return nil, round5.Errorf("Encrypt", round5.ErrSizeMismatch, "malformed public key")
	}

	a, err := s.gen.PublicMatrix(pk.Sigma)
	if err != nil {
		return nil, err
	}
	r, err := s.secret(rho, DomainEphemeral, p.MBar)
	if err != nil {
		return nil, err
	}
	defer utils.ZeroizeInt8(r)

	u := mulMatrices(a, true, p.K, p.K, r, p.MBar, p.N)
	reduce(u, s.logQ)
	roundAll(u, s.logQ, s.logP)

	x := mulMatrices(pk.B, true, p.NBar, p.K, r, p.MBar, p.N)
	defer utils.ZeroizeUint16(x)

	symbols := utils.UnpackBits(m, s.mu, p.B)
	defer utils.ZeroizeUint16(symbols)

	shift := uint(s.logP - p.B)
	v := make([]uint16, s.mu)
	for j := range v {
		carrier := (x[j] + symbols[j]<<shift) & uint16(p.P-1)
		v[j] = roundBits(carrier, s.logP, s.logT)
	}

	return &Ciphertext{U: u, V: v}, nil
}

// Decrypt recovers the kappa_bytes message. It performs the same operations
// for every well-formed ciphertext and never reports decryption failure.
func (s *Scheme) Decrypt(sk *SecretKey, ct *Ciphertext) ([]byte, error) {
	p := s.params
	if len(sk.Seed) != p.KappaBytes {
		return nil, round5.Errorf("Decrypt", round5.ErrSizeMismatch, "secret key must be %d bytes", p.KappaBytes)
	}
	if len(ct.U) != p.K*p.MBar*p.N || len(ct.V) != s.mu {
		return nil, round5.Errorf("Decrypt", round5.ErrSizeMismatch, "malformed ciphertext")
	}

	secret, err := s.secret(sk.Seed, DomainSecret, p.NBar)
	if err != nil {
		return nil, err
	}
	defer utils.ZeroizeInt8(secret)

	// S^T*U is computed as (U^T*S)^T.
	uts := mulMatrices(ct.U, true, p.MBar, p.K, secret, p.NBar, p.N)
	y := transpose(uts, p.MBar, p.NBar, p.N)
	utils.ZeroizeUint16(uts)
	defer utils.ZeroizeUint16(y)

	shift := uint(s.logP - s.logT)
	symbols := make([]uint16, s.mu)
	defer utils.ZeroizeUint16(symbols)
	for j := range symbols {
		diff := (ct.V[j]<<shift - y[j]) & uint16(p.P-1)
		symbols[j] = roundBits(diff, s.logP, p.B)
	}

	return utils.PackBits(symbols, p.B), nil
}

// secret expands seed into an inner x cols matrix of ternary ring elements.
// Column c is a length-d vector with h/2 entries +1 and h/2 entries -1 at
// distinct positions; position idx of the column is coefficient idx%n of
// ring element (idx/n, c).
func (s *Scheme) secret(seed []byte, tag string, cols int) ([]int8, error) {
	p := s.params
	out := make([]int8, p.K*cols*p.N)
	r := drbg.NewCustom(seed, tag)

	for c := 0; c < cols; c++ {
		for i := 0; i < p.H; i++ {
			for {
				idx, err := r.Intn(p.D)
				if err != nil {
					return nil, err
				}
				pos := ((idx/p.N)*cols+c)*p.N + idx%p.N
				if out[pos] != 0 {
					continue
				}
				if i&1 == 0 {
					out[pos] = 1
				} else {
					out[pos] = -1
				}
				break
			}
		}
	}
	return out, nil
}
