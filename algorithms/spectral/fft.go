package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// MagnitudeSpectrum computes the non-redundant magnitude spectrum of a real
// frame: len(frame)/2+1 bins from DC to Nyquist.
type MagnitudeSpectrum interface {
	Magnitude(frame []float64) []float64
}

// NumBins returns the number of non-redundant bins of a real transform of size n.
func NumBins(n int) int {
	if n <= 0 {
		return 0
	}
	return n/2 + 1
}

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex transform using mjibson/go-dsp.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// Magnitude returns |X[k]| for k in [0, len(frame)/2].
func (f *FFT) Magnitude(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}

	spectrum := f.Compute(frame)
	magnitude := make([]float64, NumBins(len(frame)))
	for k := range magnitude {
		magnitude[k] = cmplx.Abs(spectrum[k])
	}

	return magnitude
}

// DFT is the direct O(N^2) discrete Fourier transform. It is the reference
// the FFT backend is checked against and has no size restrictions.
type DFT struct{}

// NewDFT creates a direct DFT calculator
func NewDFT() *DFT {
	return &DFT{}
}

// Magnitude returns sqrt(re^2 + im^2) with re = sum x[n]cos(a), im = sum x[n]sin(a),
// a = -2*pi*k*n/N, for k in [0, N/2].
func (d *DFT) Magnitude(frame []float64) []float64 {
	n := len(frame)
	if n == 0 {
		return []float64{}
	}

	magnitude := make([]float64, NumBins(n))
	for k := range magnitude {
		re, im := 0.0, 0.0
		for i, x := range frame {
			// k*i reduced mod n keeps the angle small for large frames
			angle := -2 * math.Pi * float64((k*i)%n) / float64(n)
			re += x * math.Cos(angle)
			im += x * math.Sin(angle)
		}
		magnitude[k] = math.Sqrt(re*re + im*im)
	}

	return magnitude
}
