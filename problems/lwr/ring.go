package lwr

import (
	"runtime"
	"sync"
)

// Coefficients live in Z_{2^16} and are reduced by masking at the end.
// Every modulus is a power of two no larger than 2^16, so wrapping uint16
// arithmetic is exact modulo q, p and t.

// mulAddTernary computes acc += a*s in Z[x]/(x^n+1). s has entries in
// {-1, 0, 1}. The loop structure depends only on n, never on s.
func mulAddTernary(acc, a []uint16, s []int8) {
	n := len(a)
	for j := 0; j < n; j++ {
		m := uint16(int16(s[j]))
		lo := acc[j:]
		for i := 0; i < n-j; i++ {
			lo[i] += a[i] * m
		}
		hi := a[n-j:]
		for i := range hi {
			acc[i] -= hi[i] * m
		}
	}
}

// mulMatrices returns P*S where P is a rows x inner matrix of ring elements
// and S is an inner x cols matrix of ternary ring elements. When transposed
// is set, p holds P^T, an inner x rows matrix. Elements are stored row-major
// with n coefficients each.
func mulMatrices(p []uint16, transposed bool, rows, inner int, s []int8, cols, n int) []uint16 {
	out := make([]uint16, rows*cols*n)

	pAt := func(r, i int) []uint16 {
		idx := r*inner + i
		if transposed {
			idx = i*rows + r
		}
		return p[idx*n : (idx+1)*n]
	}

	row := func(r int) {
		for c := 0; c < cols; c++ {
			acc := out[(r*cols+c)*n : (r*cols+c+1)*n]
			if n == 1 {
				var sum uint16
				for i := 0; i < inner; i++ {
					sum += pAt(r, i)[0] * uint16(int16(s[i*cols+c]))
				}
				acc[0] = sum
				continue
			}
			for i := 0; i < inner; i++ {
				mulAddTernary(acc, pAt(r, i), s[(i*cols+c)*n:(i*cols+c+1)*n])
			}
		}
	}

	forRows(rows, row)
	return out
}

// forRows runs fn for every row, spreading large matrices over GOMAXPROCS
// workers.
func forRows(rows int, fn func(r int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if rows < 32 || numWorkers <= 1 {
		for r := 0; r < rows; r++ {
			fn(r)
		}
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (rows + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > rows {
			end = rows
		}
		if start >= rows {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for r := start; r < end; r++ {
				fn(r)
			}
		}(start, end)
	}
	wg.Wait()
}

// transpose returns the cols x rows transpose of a rows x cols matrix of
// ring elements.
func transpose(m []uint16, rows, cols, n int) []uint16 {
	out := make([]uint16, len(m))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			copy(out[(c*rows+r)*n:(c*rows+r+1)*n], m[(r*cols+c)*n:(r*cols+c+1)*n])
		}
	}
	return out
}

// reduce masks every coefficient into [0, 2^bits).
func reduce(v []uint16, bits int) {
	mask := uint16(1<<uint(bits) - 1)
	for i := range v {
		v[i] &= mask
	}
}

// roundBits maps x in [0, 2^from) to round(x * 2^to / 2^from) mod 2^to.
func roundBits(x uint16, from, to int) uint16 {
	shift := uint(from - to)
	if shift == 0 {
		return x & uint16(1<<uint(to)-1)
	}
	v := (uint32(x) + uint32(1)<<(shift-1)) >> shift
	return uint16(v & (uint32(1)<<uint(to) - 1))
}

// roundAll applies roundBits to every element in place.
func roundAll(v []uint16, from, to int) {
	for i := range v {
		v[i] = roundBits(v[i], from, to)
	}
}
