// Package matrix generates the public matrix A over Z_q.
//
// Three modes are supported, selected by Parameters.Tau:
//
//   - tau 0: a fresh d*k element matrix is expanded from every key's seed.
//   - tau 1: a single d*k element matrix is generated once per KEM context
//     (see Fixed) and every key applies a seed-dependent row rotation to it.
//   - tau 2: a fresh length-q table is expanded from the key's seed and each
//     row of A is a d-element window into it.
package matrix

import (
	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/drbg"
	"github.com/BackendStack21/round5-go/utils"
)

// ElementCount returns the number of Z_q elements a matrix seed expands to:
// d*k for tau 0 and 1, q for tau 2.
func ElementCount(params round5.Parameters) (int, error) {
	var count int
	switch params.Tau {
	case round5.TauRandom, round5.TauFixed:
		if params.D <= 0 || params.K <= 0 {
			return 0, round5.Errorf("ElementCount", round5.ErrInvalidParameter, "d=%d k=%d", params.D, params.K)
		}
		n, err := utils.SafeMultiply(params.D, params.K)
		if err != nil {
			return 0, round5.Errorf("ElementCount", round5.ErrInvalidParameter, "d*k: %v", err)
		}
		count = n
	case round5.TauPermTable:
		count = params.Q
	default:
		return 0, round5.Errorf("ElementCount", round5.ErrInvalidParameter, "tau %d", params.Tau)
	}
	if err := utils.CheckLength(count, utils.MaxMatrixElements); err != nil {
		return 0, round5.Errorf("ElementCount", round5.ErrInvalidParameter, "%d elements: %v", count, err)
	}
	return count, nil
}

// GenerateRandom expands seed into ElementCount(params) values uniformly
// distributed in [0, q). The output is a pure function of (seed, params).
// seed must be KappaBytes long.
func GenerateRandom(seed []byte, params round5.Parameters) ([]uint16, error) {
	if len(seed) != params.KappaBytes {
		return nil, round5.Errorf("GenerateRandom", round5.ErrSizeMismatch, "seed is %d bytes, want %d", len(seed), params.KappaBytes)
	}
	count, err := ElementCount(params)
	if err != nil {
		return nil, &round5.Error{Op: "GenerateRandom", Err: err}
	}
	return drbg.Sample(seed, count, params.Q)
}
