package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestHash_Deterministic(t *testing.T) {
	data := []byte("test")
	out := Hash(32, 64, data)
	out2 := Hash(32, 64, data)

	assert.Equal(t, out, out2)
	assert.Len(t, out, 64)
}

func TestHash_SelectsVariantByKappa(t *testing.T) {
	data := []byte("round5")

	want128 := make([]byte, 48)
	sha3.ShakeSum128(want128, data)
	want256 := make([]byte, 48)
	sha3.ShakeSum256(want256, data)

	assert.Equal(t, want128, Hash(16, 48, data))
	assert.Equal(t, want256, Hash(24, 48, data))
	assert.Equal(t, want256, Hash(32, 48, data))
}

func TestHash_PartsEqualConcatenation(t *testing.T) {
	a := []byte("hello, ")
	b := []byte("world")

	assert.Equal(t, Hash(16, 32, append(append([]byte{}, a...), b...)), Hash(16, 32, a, b))
	assert.Equal(t,
		HashWithTag(32, "tag", 32, append(append([]byte{}, a...), b...)),
		HashWithTag(32, "tag", 32, a, b))
}

func TestHashWithTag_DomainSeparation(t *testing.T) {
	x := make([]byte, 32)
	for _, kappa := range []int{16, 32} {
		a := HashWithTag(kappa, "A", 32, x)
		b := HashWithTag(kappa, "B", 32, x)
		plain := Hash(kappa, 32, x)

		assert.NotEqual(t, a, b, "kappa %d", kappa)
		assert.NotEqual(t, a, plain, "kappa %d", kappa)
	}
}

func TestHashWithTag_MatchesCShake(t *testing.T) {
	data := []byte("input")

	h := sha3.NewCShake256(nil, []byte("derive"))
	h.Write(data)
	want := make([]byte, 32)
	_, err := h.Read(want)
	require.NoError(t, err)

	assert.Equal(t, want, HashWithTag(32, "derive", 32, data))
}

func TestHashWithTag_EmptyTagIsHash(t *testing.T) {
	data := []byte("input")
	assert.Equal(t, Hash(16, 32, data), HashWithTag(16, "", 32, data))
}

func TestNewXOF_Streaming(t *testing.T) {
	seed := []byte("seed")
	whole := make([]byte, 300)
	x := NewXOF(32, "stream")
	x.Write(seed)
	_, _ = x.Read(whole)

	y := NewXOF(32, "stream")
	y.Write(seed)
	var pieces []byte
	for i := 0; i < 3; i++ {
		buf := make([]byte, 100)
		_, _ = y.Read(buf)
		pieces = append(pieces, buf...)
	}
	assert.Equal(t, whole, pieces)
	assert.Equal(t, whole[:32], HashWithTag(32, "stream", 32, seed))
}
