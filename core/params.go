// Package core provides parameter sets, validation and derived sizes for
// round5.
package core

import (
	"math/bits"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
)

// The shipped parameter sets. Every set satisfies the correctness budget
// checked by ValidateParams, so decryption never fails for honest inputs.
var (
	R5ND1KEM0Params = round5.Parameters{
		Name: string(round5.R5ND1KEM0),
		D:    512, N: 512, K: 1,
		H: 128,
		Q: 8192, P: 1024, T: 128, B: 1,
		NBar: 1, MBar: 1,
		KappaBytes: 16,
		Tau:        round5.TauRandom,
	}

	R5ND3KEM0Params = round5.Parameters{
		Name: string(round5.R5ND3KEM0),
		D:    768, N: 768, K: 1,
		H: 192,
		Q: 8192, P: 2048, T: 256, B: 1,
		NBar: 1, MBar: 1,
		KappaBytes: 24,
		Tau:        round5.TauRandom,
	}

	R5ND5KEM0Params = round5.Parameters{
		Name: string(round5.R5ND5KEM0),
		D:    1024, N: 1024, K: 1,
		H: 256,
		Q: 8192, P: 2048, T: 256, B: 1,
		NBar: 1, MBar: 1,
		KappaBytes: 32,
		Tau:        round5.TauRandom,
	}

	R5N1KEM1Params = round5.Parameters{
		Name: string(round5.R5N1KEM1),
		D:    256, N: 1, K: 256,
		H: 64,
		Q: 4096, P: 1024, T: 64, B: 2,
		NBar: 8, MBar: 8,
		KappaBytes: 16,
		Tau:        round5.TauFixed,
	}

	R5N1KEM2Params = round5.Parameters{
		Name: string(round5.R5N1KEM2),
		D:    256, N: 1, K: 256,
		H: 64,
		Q: 4096, P: 1024, T: 64, B: 2,
		NBar: 8, MBar: 8,
		KappaBytes: 16,
		Tau:        round5.TauPermTable,
	}

	R5N5KEM1Params = round5.Parameters{
		Name: string(round5.R5N5KEM1),
		D:    384, N: 1, K: 384,
		H: 96,
		Q: 16384, P: 4096, T: 256, B: 4,
		NBar: 8, MBar: 8,
		KappaBytes: 32,
		Tau:        round5.TauFixed,
	}
)

// Levels lists the shipped parameter sets in a stable order.
func Levels() []round5.SecurityLevel {
	return []round5.SecurityLevel{
		round5.R5ND1KEM0,
		round5.R5ND3KEM0,
		round5.R5ND5KEM0,
		round5.R5N1KEM1,
		round5.R5N1KEM2,
		round5.R5N5KEM1,
	}
}

// GetParams returns the parameter set for the given security level.
func GetParams(level round5.SecurityLevel) (round5.Parameters, error) {
	switch level {
	case round5.R5ND1KEM0:
		return R5ND1KEM0Params, nil
	case round5.R5ND3KEM0:
		return R5ND3KEM0Params, nil
	case round5.R5ND5KEM0:
		return R5ND5KEM0Params, nil
	case round5.R5N1KEM1:
		return R5N1KEM1Params, nil
	case round5.R5N1KEM2:
		return R5N1KEM2Params, nil
	case round5.R5N5KEM1:
		return R5N5KEM1Params, nil
	default:
		return round5.Parameters{}, round5.Errorf("GetParams", round5.ErrInvalidParameter, "unknown security level %q", level)
	}
}

// ValidateParams checks a parameter set for internal consistency and for
// the decryption-correctness budget.
func ValidateParams(p round5.Parameters) error {
	fail := func(format string, args ...interface{}) error {
		return round5.Errorf("ValidateParams", round5.ErrInvalidParameter, format, args...)
	}

	if p.D <= 0 || p.N <= 0 || p.K <= 0 {
		return fail("dimensions must be positive (d=%d n=%d k=%d)", p.D, p.N, p.K)
	}
	if dk, err := utils.SafeMultiply(p.K, p.N); err != nil || dk != p.D {
		return fail("d must equal k*n (d=%d k=%d n=%d)", p.D, p.K, p.N)
	}
	switch p.Tau {
	case round5.TauRandom:
	case round5.TauFixed, round5.TauPermTable:
		if p.N != 1 {
			return fail("tau %d requires n = 1, got %d", p.Tau, p.N)
		}
	default:
		return fail("tau %d", p.Tau)
	}
	if p.Tau == round5.TauPermTable && p.Q < p.D {
		return fail("tau 2 requires q >= d (q=%d d=%d)", p.Q, p.D)
	}

	for _, m := range []struct {
		name string
		v    int
	}{{"q", p.Q}, {"p", p.P}, {"t", p.T}} {
		if !isPowerOfTwo(m.v) {
			return fail("%s=%d must be a power of two", m.name, m.v)
		}
	}
	if !(p.T < p.P && p.P < p.Q && p.Q <= 1<<16) {
		return fail("moduli must satisfy t < p < q <= 65536 (t=%d p=%d q=%d)", p.T, p.P, p.Q)
	}
	switch p.B {
	case 1, 2, 4:
	default:
		return fail("b=%d must be 1, 2 or 4", p.B)
	}
	if 1<<uint(p.B) >= p.T {
		return fail("2^b must be below t (b=%d t=%d)", p.B, p.T)
	}

	if p.H <= 0 || p.H%2 != 0 || p.H > p.D {
		return fail("h=%d must be even and in (0, d]", p.H)
	}
	switch p.KappaBytes {
	case 16, 24, 32:
	default:
		return fail("kappa_bytes=%d must be 16, 24 or 32", p.KappaBytes)
	}
	if p.NBar <= 0 || p.MBar <= 0 {
		return fail("n_bar and m_bar must be positive")
	}
	slots, err := utils.SafeMultiply3(p.NBar, p.MBar, p.N)
	if err != nil || Mu(p) > slots {
		return fail("mu=%d exceeds n_bar*m_bar*n", Mu(p))
	}
	if _, err := utils.SafeMultiply3(p.D, p.D, p.NBar+p.MBar); err != nil {
		return fail("dimensions overflow")
	}

	// Rounding noise from keygen and encryption (at most h) plus ciphertext
	// compression (at most p/2t) must stay below half a message step.
	noise := 2*p.H*p.T + p.P
	limit := 2 * p.T * (p.P >> uint(p.B+1))
	if noise >= limit {
		return fail("correctness budget exceeded (h=%d p=%d t=%d b=%d)", p.H, p.P, p.T, p.B)
	}
	return nil
}

// Mu returns the number of B-bit message symbols, 8*kappa_bytes/B.
func Mu(p round5.Parameters) int {
	if p.B <= 0 {
		return 0
	}
	return 8 * p.KappaBytes / p.B
}

// Log2 returns log2(x) for a power of two x.
func Log2(x int) int {
	return bits.Len(uint(x)) - 1
}

// PublicKeySize is kappa_bytes of sigma followed by the packed matrix B.
func PublicKeySize(p round5.Parameters) int {
	return p.KappaBytes + utils.PackedLen(p.K*p.NBar*p.N, Log2(p.P))
}

// CPASecretKeySize is the secret-vector seed length.
func CPASecretKeySize(p round5.Parameters) int {
	return p.KappaBytes
}

// CPACiphertextSize is the packed U followed by the packed v.
func CPACiphertextSize(p round5.Parameters) int {
	return utils.PackedLen(p.K*p.MBar*p.N, Log2(p.P)) + utils.PackedLen(Mu(p), Log2(p.T))
}

// SecretKeySize is the CPA secret key, z and the public key.
func SecretKeySize(p round5.Parameters) int {
	return CPASecretKeySize(p) + p.KappaBytes + PublicKeySize(p)
}

// CiphertextSize is the CPA ciphertext followed by kappa_bytes of
// confirmation tag.
func CiphertextSize(p round5.Parameters) int {
	return CPACiphertextSize(p) + p.KappaBytes
}

// SharedSecretSize is kappa_bytes.
func SharedSecretSize(p round5.Parameters) int {
	return p.KappaBytes
}

func isPowerOfTwo(x int) bool {
	return x > 0 && x&(x-1) == 0
}
