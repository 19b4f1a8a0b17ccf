package energy

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-energy/algorithms/common"
	"github.com/RyanBlaney/sonido-energy/energy/config"
)

// FeatureMap is the fixed-shape [rows][cols] cepstral feature matrix handed
// to the energy model. Rows at index >= Frames are zero padding.
type FeatureMap struct {
	Data   [][]float64 `json:"data"`
	Frames int         `json:"frames"` // rows holding real cepstral frames
}

// PadOrTruncate keeps the first padLen frames and appends zero rows of
// numCoefficients values until there are exactly padLen rows. Input rows are
// copied, never aliased.
func PadOrTruncate(frames [][]float64, padLen, numCoefficients int) (*FeatureMap, error) {
	if padLen <= 0 {
		return nil, fmt.Errorf("%w: %d", config.ErrInvalidTargetLength, padLen)
	}
	if numCoefficients <= 0 {
		return nil, fmt.Errorf("number of coefficients must be positive, got %d", numCoefficients)
	}

	kept := min(len(frames), padLen)
	data := make([][]float64, padLen)
	for i := range data {
		row := make([]float64, numCoefficients)
		if i < kept {
			copy(row, frames[i])
		}
		data[i] = row
	}

	return &FeatureMap{Data: data, Frames: kept}, nil
}

// Rows returns the number of rows (the pad length).
func (fm *FeatureMap) Rows() int {
	return len(fm.Data)
}

// Cols returns the number of coefficients per row.
func (fm *FeatureMap) Cols() int {
	if len(fm.Data) == 0 {
		return 0
	}
	return len(fm.Data[0])
}

// IsZeroRow reports whether every value of row i is zero. It is false for
// an index outside the map.
func (fm *FeatureMap) IsZeroRow(i int) bool {
	if i < 0 || i >= len(fm.Data) {
		return false
	}
	for _, v := range fm.Data[i] {
		if v != 0 {
			return false
		}
	}
	return true
}

// HasNonFinite reports whether any value is NaN or infinite.
func (fm *FeatureMap) HasNonFinite() bool {
	for _, row := range fm.Data {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// CoefficientStats summarizes one cepstral coefficient over the real frames.
type CoefficientStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Stats returns per-coefficient mean and sample standard deviation over the
// non-padded rows.
func (fm *FeatureMap) Stats() []CoefficientStats {
	stats := make([]CoefficientStats, fm.Cols())
	column := make([]float64, fm.Frames)
	for c := range stats {
		for t := 0; t < fm.Frames; t++ {
			column[t] = fm.Data[t][c]
		}
		stats[c] = CoefficientStats{
			Mean:   common.Mean(column),
			StdDev: common.StandardDeviation(column),
		}
	}
	return stats
}

// Tensor is a flat float32 model input with its shape.
type Tensor struct {
	Shape []int64   `json:"shape"`
	Data  []float32 `json:"data"`
}

// Tensor lays the map out as a [1, cols, rows, 1] model input.
//
// LayoutReshape flattens rows in storage (frame-major) order and only
// relabels the shape, so element (coefficient c, frame t) of the stored map
// lands at flat index t*cols+c. LayoutTranspose moves it to c*rows+t.
func (fm *FeatureMap) Tensor(layout config.TensorLayout) (*Tensor, error) {
	rows, cols := fm.Rows(), fm.Cols()
	data := make([]float32, rows*cols)

	switch layout {
	case config.LayoutReshape, "":
		for t, row := range fm.Data {
			for c, v := range row {
				data[t*cols+c] = float32(v)
			}
		}
	case config.LayoutTranspose:
		for t, row := range fm.Data {
			for c, v := range row {
				data[c*rows+t] = float32(v)
			}
		}
	default:
		return nil, fmt.Errorf("unknown tensor layout %q", layout)
	}

	return &Tensor{
		Shape: []int64{1, int64(cols), int64(rows), 1},
		Data:  data,
	}, nil
}
