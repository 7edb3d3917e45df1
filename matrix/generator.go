package matrix

import (
	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/drbg"
)

// Customization tags for the per-key permutations.
const (
	DomainTau1Permutation = "tau1-permutation"
	DomainTau2Permutation = "tau2-permutation"
)

// Generator expands a per-key seed sigma into the public matrix used by the
// encryption primitive: k*k ring elements of degree n stored row-major, so
// element (i, j) occupies A[(i*k+j)*n : (i*k+j+1)*n]. With n = 1 this is an
// ordinary d x d matrix.
type Generator struct {
	params round5.Parameters
	fixed  *Fixed
}

// NewGenerator returns a generator for params. fixed is only consulted for
// tau 1 and may be nil otherwise.
func NewGenerator(params round5.Parameters, fixed *Fixed) *Generator {
	return &Generator{params: params, fixed: fixed}
}

// Ready reports whether PublicMatrix can run. For tau 1 it fails with
// round5.ErrUninitializedFixedMatrix until the fixed matrix exists.
func (g *Generator) Ready() error {
	if g.params.Tau != round5.TauFixed {
		return nil
	}
	if g.fixed == nil {
		return &round5.Error{Op: "PublicMatrix", Err: round5.ErrUninitializedFixedMatrix}
	}
	return g.fixed.compatible(g.params)
}

// PublicMatrix returns the k*k*n element matrix for sigma.
func (g *Generator) PublicMatrix(sigma []byte) ([]uint16, error) {
	p := g.params
	if p.Tau != round5.TauRandom && p.N != 1 {
		return nil, round5.Errorf("PublicMatrix", round5.ErrInvalidParameter, "tau %d requires n = 1, got %d", p.Tau, p.N)
	}

	switch p.Tau {
	case round5.TauRandom:
		return GenerateRandom(sigma, p)
	case round5.TauFixed:
		return g.permuteFixed(sigma)
	case round5.TauPermTable:
		return g.windowTable(sigma)
	default:
		return nil, round5.Errorf("PublicMatrix", round5.ErrInvalidParameter, "tau %d", p.Tau)
	}
}

// permuteFixed rotates row i of the fixed matrix left by an offset drawn
// from sigma.
func (g *Generator) permuteFixed(sigma []byte) ([]uint16, error) {
	if err := g.Ready(); err != nil {
		return nil, err
	}
	fixed, err := g.fixed.view()
	if err != nil {
		return nil, err
	}

	d := g.params.D
	offsets, err := drbg.SampleCustom(sigma, DomainTau1Permutation, d, d)
	if err != nil {
		return nil, err
	}

	a := make([]uint16, d*d)
	for i := 0; i < d; i++ {
		row := fixed[i*d : (i+1)*d]
		o := int(offsets[i])
		n := copy(a[i*d:(i+1)*d], row[o:])
		copy(a[i*d+n:(i+1)*d], row[:o])
	}
	return a, nil
}

// windowTable expands sigma into a length-q table and takes row i of A as
// the d consecutive entries, cyclically, starting at a distinct offset o_i.
func (g *Generator) windowTable(sigma []byte) ([]uint16, error) {
	d, q := g.params.D, g.params.Q
	if q < d {
		return nil, round5.Errorf("PublicMatrix", round5.ErrInvalidParameter, "tau 2 requires q >= d, got q=%d d=%d", q, d)
	}

	table, err := GenerateRandom(sigma, g.params)
	if err != nil {
		return nil, err
	}

	offsets, err := distinctOffsets(drbg.NewCustom(sigma, DomainTau2Permutation), d, q)
	if err != nil {
		return nil, err
	}

	// Duplicating the head of the table turns every window into a plain slice.
	ext := make([]uint16, q+d)
	copy(ext, table)
	copy(ext[q:], table[:d])

	a := make([]uint16, d*d)
	for i, o := range offsets {
		copy(a[i*d:(i+1)*d], ext[o:o+d])
	}
	return a, nil
}

// distinctOffsets draws count distinct values in [0, q), rejecting repeats.
func distinctOffsets(r *drbg.DRBG, count, q int) ([]int, error) {
	used := make([]bool, q)
	out := make([]int, 0, count)
	for len(out) < count {
		v, err := r.Intn(q)
		if err != nil {
			return nil, err
		}
		if used[v] {
			continue
		}
		used[v] = true
		out = append(out, v)
	}
	return out, nil
}
