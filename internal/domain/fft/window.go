package fft

import "math"

// HannWindow returns the periodic Hanning window of length n,
// w[i] = 0.5 - 0.5cos(2πi/n).
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// Bins returns the number of complex bins a real transform of length n
// carries, n/2+1.
func Bins(n int) int {
	return n/2 + 1
}

// Pack writes bins 0..n/2 of (re, im) into out as interleaved real and
// imaginary pairs. The DC and Nyquist imaginary parts are written as zero.
// out must hold at least 2*Bins(n) values.
func Pack(n int, re, im []float64, out []float32) {
	bins := Bins(n)
	for i := 0; i < bins; i++ {
		out[i*2] = float32(re[i])
		out[i*2+1] = float32(im[i])
	}
	out[1] = 0
	out[(bins-1)*2+1] = 0
}

// Unpack expands a packed half spectrum back into full n-point complex
// arrays using conjugate symmetry.
func Unpack(n int, packed []float32, re, im []float64) {
	bins := Bins(n)
	for i := 0; i < bins; i++ {
		re[i] = float64(packed[i*2])
		im[i] = float64(packed[i*2+1])
	}
	for i := bins; i < n; i++ {
		re[i] = re[n-i]
		im[i] = -im[n-i]
	}
}
