package matrix

import (
	"bytes"
	"sync"
	"sync/atomic"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
)

// canonicalSeedTag customizes the derivation of the canonical fixed seed.
const canonicalSeedTag = "round5-go fixed matrix"

// CanonicalSeed returns the seed NewDefault contexts use for their fixed
// matrix. It depends only on kappaBytes.
func CanonicalSeed(kappaBytes int) []byte {
	return utils.HashWithTag(kappaBytes, canonicalSeedTag, kappaBytes, []byte{byte(kappaBytes)})
}

type fixedShape struct {
	d, k, q, kappaBytes int
}

func shapeOf(params round5.Parameters) fixedShape {
	return fixedShape{d: params.D, k: params.K, q: params.Q, kappaBytes: params.KappaBytes}
}

type fixedState struct {
	seed  []byte
	shape fixedShape
	a     []uint16
}

// Fixed holds a matrix that is generated once and then shared read-only.
//
// Init is serialized by a mutex and the result is published through an
// atomic pointer, so any reader that observes the matrix observes all of it.
// The zero value is an empty cell ready for use.
type Fixed struct {
	mu    sync.Mutex
	state atomic.Pointer[fixedState]
}

// Init generates the fixed matrix from seed. Calling Init again with the
// same seed and parameter shape is a no-op; any other re-initialization
// fails with round5.ErrFixedMatrixConflict and leaves the cell untouched.
func (f *Fixed) Init(seed []byte, params round5.Parameters) error {
	shape := shapeOf(params)

	f.mu.Lock()
	defer f.mu.Unlock()

	if s := f.state.Load(); s != nil {
		if s.shape == shape && bytes.Equal(s.seed, seed) {
			return nil
		}
		utils.Logger().Warn().Int("d", params.D).Int("q", params.Q).Msg("fixed matrix re-initialization rejected")
		return &round5.Error{Op: "Fixed.Init", Err: round5.ErrFixedMatrixConflict}
	}

	gen := params
	gen.Tau = round5.TauFixed
	a, err := GenerateRandom(seed, gen)
	if err != nil {
		return err
	}

	f.state.Store(&fixedState{
		seed:  append([]byte(nil), seed...),
		shape: shape,
		a:     a,
	})
	utils.Logger().Debug().Int("elements", len(a)).Int("d", params.D).Int("q", params.Q).Msg("fixed matrix initialized")
	return nil
}

// Initialized reports whether Init has succeeded.
func (f *Fixed) Initialized() bool {
	return f.state.Load() != nil
}

// Matrix returns a copy of the fixed matrix.
func (f *Fixed) Matrix() ([]uint16, error) {
	a, err := f.view()
	if err != nil {
		return nil, err
	}
	return append([]uint16(nil), a...), nil
}

// view returns the shared matrix without copying. Callers must not modify it.
func (f *Fixed) view() ([]uint16, error) {
	s := f.state.Load()
	if s == nil {
		return nil, &round5.Error{Op: "Fixed.Matrix", Err: round5.ErrUninitializedFixedMatrix}
	}
	return s.a, nil
}

// compatible reports whether the published matrix was built for params.
func (f *Fixed) compatible(params round5.Parameters) error {
	s := f.state.Load()
	if s == nil {
		return &round5.Error{Op: "Fixed.Matrix", Err: round5.ErrUninitializedFixedMatrix}
	}
	if s.shape != shapeOf(params) {
		return round5.Errorf("Fixed.Matrix", round5.ErrInvalidParameter,
			"fixed matrix built for d=%d k=%d q=%d", s.shape.d, s.shape.k, s.shape.q)
	}
	return nil
}
