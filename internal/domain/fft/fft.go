// Package fft provides the radix-2 transform used to turn time-domain sample
// blocks into the packed spectra frequency-domain plugins consume.
//
// The implementation favours clarity over throughput: it is an iterative
// Cooley-Tukey transform with bit-reversed input ordering and no cached
// twiddle tables, so every call is a pure function of its arguments.
package fft

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// Transform errors.
var (
	ErrNotPowerOfTwo = errors.New("transform length must be a power of two")
	ErrShortBuffer   = errors.New("buffer shorter than transform length")
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. It returns 1 for
// n <= 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Transform computes the discrete Fourier transform of the n-point complex
// sequence (ri, ii) into (ro, io). ii may be nil for purely real input.
// The forward transform is unnormalised; the inverse divides by n so that
// Transform(inverse) after Transform(forward) reproduces the input.
func Transform(n int, inverse bool, ri, ii, ro, io []float64) error {
	if !IsPowerOfTwo(n) {
		return fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}
	if len(ri) < n || len(ro) < n || len(io) < n || (ii != nil && len(ii) < n) {
		return ErrShortBuffer
	}

	levels := bits.Len(uint(n)) - 1
	for i := 0; i < n; i++ {
		j := reverse(i, levels)
		ro[j] = ri[i]
		if ii != nil {
			io[j] = ii[i]
		} else {
			io[j] = 0
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := sign * 2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				wr := math.Cos(step * float64(k))
				wi := math.Sin(step * float64(k))

				a := start + k
				b := a + half

				tr := wr*ro[b] - wi*io[b]
				ti := wr*io[b] + wi*ro[b]

				ro[b] = ro[a] - tr
				io[b] = io[a] - ti
				ro[a] += tr
				io[a] += ti
			}
		}
	}

	if inverse {
		scale := 1 / float64(n)
		for i := 0; i < n; i++ {
			ro[i] *= scale
			io[i] *= scale
		}
	}

	return nil
}

func reverse(i, levels int) int {
	return int(bits.Reverse(uint(i)) >> (bits.UintSize - levels))
}
