package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// HzToMel converts frequency in Hz to the HTK mel scale.
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts mel scale to frequency in Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterbank is a bands x (fftSize/2+1) matrix of triangular weights that
// projects a magnitude spectrum onto mel bands. It is read-only once built and
// may be shared between goroutines.
type MelFilterbank struct {
	weights    *mat.Dense
	boundaries []float64 // bands+2 edges in Hz
	binFreqs   []float64
	sampleRate int
	fftSize    int
}

// NewMelFilterbank builds the filterbank. Band edges are bands+2 points equally
// spaced in mel between lowFreq and highFreq; bin k sits at k*(sampleRate/2)/(bins-1).
// A band whose edges coincide is left all-zero.
func NewMelFilterbank(bands, fftSize, sampleRate int, lowFreq, highFreq float64) (*MelFilterbank, error) {
	if bands <= 0 {
		return nil, fmt.Errorf("mel bands must be positive, got %d", bands)
	}
	if fftSize <= 0 {
		return nil, fmt.Errorf("fft size %d: %w", fftSize, ErrInvalidFFTSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if lowFreq < 0 || highFreq <= lowFreq {
		return nil, fmt.Errorf("invalid mel frequency range [%g, %g]", lowFreq, highFreq)
	}

	numBins := NumBins(fftSize)
	nyquist := float64(sampleRate) / 2.0

	binFreqs := make([]float64, numBins)
	for k := range binFreqs {
		if numBins > 1 {
			binFreqs[k] = float64(k) * nyquist / float64(numBins-1)
		}
	}

	lowMel := HzToMel(lowFreq)
	highMel := HzToMel(highFreq)
	melStep := (highMel - lowMel) / float64(bands+1)

	boundaries := make([]float64, bands+2)
	for i := range boundaries {
		boundaries[i] = MelToHz(lowMel + float64(i)*melStep)
	}

	fb := &MelFilterbank{
		weights:    mat.NewDense(bands, numBins, nil),
		boundaries: boundaries,
		binFreqs:   binFreqs,
		sampleRate: sampleRate,
		fftSize:    fftSize,
	}

	for i := 0; i < bands; i++ {
		for k, f := range binFreqs {
			if w := fb.Weight(i, f); w > 0 {
				fb.weights.Set(i, k, w)
			}
		}
	}

	return fb, nil
}

// Weight evaluates the triangle of band at frequency freq:
// rising (f-left)/(center-left) on [left, center], falling
// (right-f)/(right-center) on (center, right], zero elsewhere.
func (fb *MelFilterbank) Weight(band int, freq float64) float64 {
	if band < 0 || band+2 >= len(fb.boundaries) {
		return 0
	}

	left := fb.boundaries[band]
	center := fb.boundaries[band+1]
	right := fb.boundaries[band+2]
	if center == left || right == center {
		return 0
	}

	switch {
	case freq >= left && freq <= center:
		return (freq - left) / (center - left)
	case freq > center && freq <= right:
		return (right - freq) / (right - center)
	default:
		return 0
	}
}

// Apply projects a magnitude spectrum of NumBins(fftSize) values onto the mel bands.
func (fb *MelFilterbank) Apply(magnitude []float64) ([]float64, error) {
	_, cols := fb.weights.Dims()
	if len(magnitude) != cols {
		return nil, fmt.Errorf("spectrum has %d bins, filterbank expects %d", len(magnitude), cols)
	}

	var mel mat.VecDense
	mel.MulVec(fb.weights, mat.NewVecDense(cols, magnitude))

	out := make([]float64, mel.Len())
	for i := range out {
		out[i] = mel.AtVec(i)
	}
	return out, nil
}

// Bands returns the number of mel bands.
func (fb *MelFilterbank) Bands() int {
	rows, _ := fb.weights.Dims()
	return rows
}

// Bins returns the number of spectrum bins each band spans.
func (fb *MelFilterbank) Bins() int {
	_, cols := fb.weights.Dims()
	return cols
}

// Row returns a copy of the weights of one band.
func (fb *MelFilterbank) Row(band int) []float64 {
	return mat.Row(nil, band, fb.weights)
}

// Boundaries returns a copy of the bands+2 band edges in Hz.
func (fb *MelFilterbank) Boundaries() []float64 {
	out := make([]float64, len(fb.boundaries))
	copy(out, fb.boundaries)
	return out
}

// BinFrequencies returns a copy of the centre frequency of every spectrum bin.
func (fb *MelFilterbank) BinFrequencies() []float64 {
	out := make([]float64, len(fb.binFreqs))
	copy(out, fb.binFreqs)
	return out
}

// SampleRate returns the rate the bin frequencies were computed for.
func (fb *MelFilterbank) SampleRate() int {
	return fb.sampleRate
}

// FFTSize returns the transform size the filterbank was built for.
func (fb *MelFilterbank) FFTSize() int {
	return fb.fftSize
}
