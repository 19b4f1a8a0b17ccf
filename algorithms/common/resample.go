package common

import (
	"errors"
	"fmt"
)

// ErrInvalidRate is returned for non-positive sample rates.
var ErrInvalidRate = errors.New("sample rate must be positive")

// ResampleNearest converts signal from originalRate to targetRate by
// sample-and-hold: output index i takes source index floor(i*originalRate/targetRate).
// The output has floor(len(signal)*targetRate/originalRate) samples. No
// interpolation and no anti-aliasing filter is applied.
//
// Equal rates return signal itself, not a copy.
func ResampleNearest(signal []float64, originalRate, targetRate int) []float64 {
	if originalRate == targetRate {
		return signal
	}
	if originalRate <= 0 || targetRate <= 0 {
		return []float64{}
	}

	// integer arithmetic keeps the length and index exact for long signals
	newLength := int(int64(len(signal)) * int64(targetRate) / int64(originalRate))
	if newLength <= 0 {
		return []float64{}
	}

	resampled := make([]float64, newLength)
	for i := range resampled {
		sourceIndex := int(int64(i) * int64(originalRate) / int64(targetRate))
		if sourceIndex < len(signal) {
			resampled[i] = signal[sourceIndex]
		}
	}

	return resampled
}

// ResampleNearestChecked is ResampleNearest with rate validation.
func ResampleNearestChecked(signal []float64, originalRate, targetRate int) ([]float64, error) {
	if originalRate <= 0 {
		return nil, fmt.Errorf("source rate %d: %w", originalRate, ErrInvalidRate)
	}
	if targetRate <= 0 {
		return nil, fmt.Errorf("target rate %d: %w", targetRate, ErrInvalidRate)
	}
	return ResampleNearest(signal, originalRate, targetRate), nil
}
