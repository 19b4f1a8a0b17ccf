package windowing

import (
	"fmt"
	"math"
)

// Hann represents a Hann window function.
//
// The symmetric form uses w[j] = 0.5*(1 - cos(2*pi*j/(N-1))) and is the one
// the MFCC front end applies to every frame. The periodic form divides by N.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      max(size, 0),
		symmetric: symmetric,
	}
	h.generate()
	return h
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}

	// a one-point symmetric window would be 0/0
	if denominator <= 0 {
		for i := range h.coefficients {
			h.coefficients[i] = 1.0
		}
		return
	}

	for i := 0; i < h.size; i++ {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
}

// Apply returns a windowed copy of signal, which is left unchanged.
func (h *Hann) Apply(signal []float64) ([]float64, error) {
	windowed := make([]float64, len(signal))
	copy(windowed, signal)
	if err := h.ApplyInPlace(windowed); err != nil {
		return nil, err
	}
	return windowed, nil
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := 0; i < h.size; i++ {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hann) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// GetSize returns the window size
func (h *Hann) GetSize() int {
	return h.size
}

// IsSymmetric reports whether the window divides by N-1.
func (h *Hann) IsSymmetric() bool {
	return h.symmetric
}

// GetType returns the window type
func (h *Hann) GetType() string {
	return "hann"
}
