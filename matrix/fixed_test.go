package matrix

import (
	"sync"
	"testing"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_Uninitialized(t *testing.T) {
	var f Fixed
	assert.False(t, f.Initialized())

	_, err := f.Matrix()
	assert.ErrorIs(t, err, round5.ErrUninitializedFixedMatrix)
}

func TestFixed_InitIdempotent(t *testing.T) {
	var f Fixed
	p := exampleParams()
	seed := make([]byte, 32)

	require.NoError(t, f.Init(seed, p))
	first, err := f.Matrix()
	require.NoError(t, err)

	require.NoError(t, f.Init(seed, p))
	second, err := f.Matrix()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, p.D*p.K)

	want, err := GenerateRandom(seed, p)
	require.NoError(t, err)
	assert.Equal(t, want, first)
}

func TestFixed_Conflict(t *testing.T) {
	var f Fixed
	p := exampleParams()
	seed := make([]byte, 32)
	require.NoError(t, f.Init(seed, p))
	before, _ := f.Matrix()

	other := make([]byte, 32)
	other[31] = 1
	err := f.Init(other, p)
	assert.ErrorIs(t, err, round5.ErrFixedMatrixConflict)

	p2 := p
	p2.Q = 32
	assert.ErrorIs(t, f.Init(seed, p2), round5.ErrFixedMatrixConflict)

	after, _ := f.Matrix()
	assert.Equal(t, before, after)
}

func TestFixed_FailedInitLeavesCellEmpty(t *testing.T) {
	var f Fixed
	err := f.Init(make([]byte, 3), exampleParams())
	require.Error(t, err)
	assert.False(t, f.Initialized())
}

func TestFixed_MatrixIsCopy(t *testing.T) {
	var f Fixed
	require.NoError(t, f.Init(make([]byte, 32), exampleParams()))

	a, _ := f.Matrix()
	a[0] ^= 0xffff
	b, _ := f.Matrix()
	assert.NotEqual(t, a[0], b[0])
}

func TestFixed_ConcurrentInit(t *testing.T) {
	var f Fixed
	p := round5.Parameters{D: 128, N: 1, K: 128, Q: 4096, KappaBytes: 16, Tau: round5.TauFixed}
	seed := make([]byte, 16)

	const workers = 16
	var wg sync.WaitGroup
	results := make([][]uint16, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if errs[i] = f.Init(seed, p); errs[i] != nil {
				return
			}
			results[i], errs[i] = f.Matrix()
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], p.D*p.K)
		assert.Equal(t, results[0], results[i])
	}
}

func TestCanonicalSeed(t *testing.T) {
	for _, kappa := range []int{16, 24, 32} {
		s := CanonicalSeed(kappa)
		assert.Len(t, s, kappa)
		assert.Equal(t, s, CanonicalSeed(kappa))
	}
	assert.NotEqual(t, CanonicalSeed(16), CanonicalSeed(32)[:16])
}
