package spectral

import (
	"fmt"
	"math"
)

// DefaultLogFloor is the epsilon of the log compressor.
const DefaultLogFloor = 1e-10

// LogCompress returns log(max(v, floor)) for every value. A zero input gives
// log(floor) rather than -Inf; NaN inputs stay NaN.
func LogCompress(values []float64, floor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v < floor {
			v = floor
		}
		out[i] = math.Log(v)
	}
	return out
}

// DCT is an unnormalized type-II discrete cosine transform truncated to the
// first numCoefficients outputs:
//
//	c[i] = sum_j x[j] * cos(pi*i*(2j+1) / (2*numInputs))
//
// No orthonormal scaling is applied. The cosine table is computed once.
type DCT struct {
	numCoefficients int
	numInputs       int
	table           [][]float64
}

// NewDCT precomputes the cosine table.
func NewDCT(numCoefficients, numInputs int) (*DCT, error) {
	if numCoefficients <= 0 || numInputs <= 0 {
		return nil, fmt.Errorf("invalid DCT shape %dx%d", numCoefficients, numInputs)
	}

	table := make([][]float64, numCoefficients)
	for i := range table {
		table[i] = make([]float64, numInputs)
		for j := range table[i] {
			table[i][j] = math.Cos(math.Pi * float64(i) * float64(2*j+1) / float64(2*numInputs))
		}
	}

	return &DCT{
		numCoefficients: numCoefficients,
		numInputs:       numInputs,
		table:           table,
	}, nil
}

// Transform applies the DCT to one log-mel frame.
func (d *DCT) Transform(x []float64) ([]float64, error) {
	if len(x) != d.numInputs {
		return nil, fmt.Errorf("DCT expects %d inputs, got %d", d.numInputs, len(x))
	}

	coeffs := make([]float64, d.numCoefficients)
	for i, row := range d.table {
		sum := 0.0
		for j, v := range x {
			sum += v * row[j]
		}
		coeffs[i] = sum
	}
	return coeffs, nil
}

// NumCoefficients returns the number of outputs per frame.
func (d *DCT) NumCoefficients() int {
	return d.numCoefficients
}

// MFCC turns magnitude spectra into cepstral frames: mel projection, log
// compression with a floor, then the unnormalized DCT. Magnitudes (not power)
// are projected, and no liftering is applied.
type MFCC struct {
	filterbank *MelFilterbank
	dct        *DCT
	logFloor   float64
}

// NewMFCC wires a filterbank and a DCT built for filterbank.Bands() inputs.
func NewMFCC(filterbank *MelFilterbank, numCoefficients int, logFloor float64) (*MFCC, error) {
	if filterbank == nil {
		return nil, fmt.Errorf("nil mel filterbank")
	}
	if logFloor <= 0 {
		logFloor = DefaultLogFloor
	}

	dct, err := NewDCT(numCoefficients, filterbank.Bands())
	if err != nil {
		return nil, err
	}

	return &MFCC{
		filterbank: filterbank,
		dct:        dct,
		logFloor:   logFloor,
	}, nil
}

// Compute returns the cepstral coefficients of one magnitude spectrum.
func (m *MFCC) Compute(magnitude []float64) ([]float64, error) {
	mel, err := m.filterbank.Apply(magnitude)
	if err != nil {
		return nil, err
	}
	return m.dct.Transform(LogCompress(mel, m.logFloor))
}

// ComputeFrames processes a spectrogram frame by frame, preserving order.
func (m *MFCC) ComputeFrames(spectrogram [][]float64) ([][]float64, error) {
	frames := make([][]float64, len(spectrogram))
	for t, magnitude := range spectrogram {
		coeffs, err := m.Compute(magnitude)
		if err != nil {
			return nil, fmt.Errorf("failed to compute MFCC for frame %d: %w", t, err)
		}
		frames[t] = coeffs
	}
	return frames, nil
}

// Filterbank returns the shared mel filterbank.
func (m *MFCC) Filterbank() *MelFilterbank {
	return m.filterbank
}

// NumCoefficients returns the number of cepstral coefficients per frame.
func (m *MFCC) NumCoefficients() int {
	return m.dct.NumCoefficients()
}
