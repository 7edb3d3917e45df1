// Package drbg provides the deterministic random bit generator used to expand
// seeds into public matrices, secret vectors and permutations.
//
// A DRBG is an extendable-output function absorbed with a seed: SHAKE256 when
// the seed is longer than 16 bytes and SHAKE128 otherwise, optionally with a
// cSHAKE customization tag. Outputs are a pure function of (seed, tag).
package drbg

import (
	"math/bits"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
	"golang.org/x/crypto/sha3"
)

// MaxModulus is the largest modulus a 16-bit sampler can produce values for.
const MaxModulus = 1 << 16

// DRBG is a seeded byte stream. It is not safe for concurrent use.
type DRBG struct {
	xof sha3.ShakeHash
	buf [2]byte
}

// New returns a DRBG over the plain XOF of seed.
func New(seed []byte) *DRBG {
	return NewCustom(seed, "")
}

// NewCustom returns a DRBG over the XOF of seed customized with tag.
// Streams under different tags are independent.
func NewCustom(seed []byte, tag string) *DRBG {
	xof := utils.NewXOF(len(seed), tag)
	xof.Write(seed)
	return &DRBG{xof: xof}
}

// Read fills p with the next len(p) bytes of the stream. It never fails.
func (d *DRBG) Read(p []byte) (int, error) {
	return d.xof.Read(p)
}

// Uint16 returns the next little-endian 16-bit word of the stream.
func (d *DRBG) Uint16() uint16 {
	_, _ = d.xof.Read(d.buf[:])
	return utils.U16FromLE(d.buf[:])
}

// Uint16s draws count values uniformly distributed in [0, modulus).
//
// Each candidate is one little-endian 16-bit word masked to the smallest
// power of two covering modulus; candidates >= modulus are discarded. For a
// power-of-two modulus no candidate is ever discarded.
func (d *DRBG) Uint16s(count int, modulus int) ([]uint16, error) {
	if count < 0 {
		return nil, round5.Errorf("Sample", round5.ErrInvalidParameter, "negative count %d", count)
	}
	mask, err := sampleMask(modulus)
	if err != nil {
		return nil, err
	}

	out := make([]uint16, count)
	limit := uint32(modulus)
	for i := 0; i < count; {
		v := uint32(d.Uint16()) & mask
		if v < limit {
			out[i] = uint16(v)
			i++
		}
	}
	return out, nil
}

// Intn draws a single value uniformly distributed in [0, n).
func (d *DRBG) Intn(n int) (int, error) {
	vals, err := d.Uint16s(1, n)
	if err != nil {
		return 0, err
	}
	return int(vals[0]), nil
}

// Sample is the one-shot form of New(seed).Uint16s(count, modulus).
func Sample(seed []byte, count int, modulus int) ([]uint16, error) {
	return New(seed).Uint16s(count, modulus)
}

// SampleCustom is the one-shot form of NewCustom(seed, tag).Uint16s(count, modulus).
func SampleCustom(seed []byte, tag string, count int, modulus int) ([]uint16, error) {
	return NewCustom(seed, tag).Uint16s(count, modulus)
}

func sampleMask(modulus int) (uint32, error) {
	if modulus < 1 || modulus > MaxModulus {
		return 0, round5.Errorf("Sample", round5.ErrInvalidParameter, "modulus %d outside [1, %d]", modulus, MaxModulus)
	}
	if modulus == 1 {
		return 0, nil
	}
	return uint32(1)<<uint(bits.Len32(uint32(modulus-1))) - 1, nil
}
