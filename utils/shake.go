package utils

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

// strongKappaThreshold is the kappa_bytes value above which the 256-bit
// variants are used.
const strongKappaThreshold = 16

var shake128Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake128()
	},
}

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

func shakePool(kappaBytes int) *sync.Pool {
	if kappaBytes > strongKappaThreshold {
		return &shake256Pool
	}
	return &shake128Pool
}

// Hash computes SHAKE256 when kappaBytes > 16 and SHAKE128 otherwise.
// The parts are absorbed in order, which is equivalent to hashing their
// concatenation.
func Hash(kappaBytes, outputLen int, parts ...[]byte) []byte {
	output := make([]byte, outputLen)
	HashInto(kappaBytes, output, parts...)
	return output
}

// HashInto is Hash writing into the provided buffer.
func HashInto(kappaBytes int, output []byte, parts ...[]byte) {
	pool := shakePool(kappaBytes)
	h := pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		pool.Put(h)
	}()

	for _, p := range parts {
		h.Write(p)
	}
	_, _ = h.Read(output)
}

// HashWithTag computes cSHAKE256 (kappaBytes > 16) or cSHAKE128 with tag as
// the customization string. Outputs under different tags are independent.
// An empty tag degenerates to Hash.
func HashWithTag(kappaBytes int, tag string, outputLen int, parts ...[]byte) []byte {
	if tag == "" {
		return Hash(kappaBytes, outputLen, parts...)
	}
	h := NewXOF(kappaBytes, tag)
	for _, p := range parts {
		h.Write(p)
	}
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// NewXOF returns a fresh extendable-output state for the security level
// implied by kappaBytes, customized with tag when it is non-empty.
func NewXOF(kappaBytes int, tag string) sha3.ShakeHash {
	if tag == "" {
		if kappaBytes > strongKappaThreshold {
			return sha3.NewShake256()
		}
		return sha3.NewShake128()
	}
	if kappaBytes > strongKappaThreshold {
		return sha3.NewCShake256(nil, []byte(tag))
	}
	return sha3.NewCShake128(nil, []byte(tag))
}
