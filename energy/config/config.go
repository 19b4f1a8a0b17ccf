package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-energy/algorithms/spectral"
)

// Constants shared by feature extraction and the pretrained energy model.
// Predictions are meaningless if these differ from the training-time values.
const (
	TargetSampleRate = 22050
	FFTSize          = 2048
	HopLength        = 512
	MelBands         = 128
	NumCoefficients  = 40
	PadLength        = 174
	LogFloor         = spectral.DefaultLogFloor
)

var (
	// ErrInvalidFFTSize reports a non-positive FFT size or hop length.
	ErrInvalidFFTSize = spectral.ErrInvalidFFTSize
	// ErrInvalidTargetLength reports a non-positive pad length.
	ErrInvalidTargetLength = errors.New("invalid target length")
)

// SpectrumMethod selects the magnitude spectrum backend.
type SpectrumMethod string

const (
	// SpectrumFFT uses a fast transform; magnitudes equal the direct DFT.
	SpectrumFFT SpectrumMethod = "fft"
	// SpectrumDFT evaluates the O(N^2) transform directly.
	SpectrumDFT SpectrumMethod = "dft"
)

// TensorLayout selects how a feature map is laid out for the model.
type TensorLayout string

const (
	// LayoutReshape keeps frame-major storage order and labels it
	// [1, coefficients, frames, 1], the hand-off the trained model was fed.
	LayoutReshape TensorLayout = "reshape"
	// LayoutTranspose reorders data coefficient-major to match the label.
	LayoutTranspose TensorLayout = "transpose"
)

// FeatureConfig holds the MFCC front-end parameters.
type FeatureConfig struct {
	SampleRate      int     `json:"sample_rate" yaml:"sample_rate"`
	FFTSize         int     `json:"fft_size" yaml:"fft_size"`
	HopLength       int     `json:"hop_length" yaml:"hop_length"`
	MelBands        int     `json:"mel_bands" yaml:"mel_bands"`
	NumCoefficients int     `json:"num_coefficients" yaml:"num_coefficients"`
	PadLength       int     `json:"pad_length" yaml:"pad_length"`
	LowFreq         float64 `json:"low_freq" yaml:"low_freq"`   // Hz, lower edge of the first mel band
	HighFreq        float64 `json:"high_freq" yaml:"high_freq"` // Hz, 0 means SampleRate/2
	LogFloor        float64 `json:"log_floor" yaml:"log_floor"`

	SpectrumMethod SpectrumMethod `json:"spectrum_method" yaml:"spectrum_method"`
	Layout         TensorLayout   `json:"layout" yaml:"layout"`
}

// DefaultFeatureConfig returns the configuration the energy model was trained with.
func DefaultFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		SampleRate:      TargetSampleRate,
		FFTSize:         FFTSize,
		HopLength:       HopLength,
		MelBands:        MelBands,
		NumCoefficients: NumCoefficients,
		PadLength:       PadLength,
		LowFreq:         0,
		HighFreq:        float64(TargetSampleRate) / 2,
		LogFloor:        LogFloor,
		SpectrumMethod:  SpectrumFFT,
		Layout:          LayoutReshape,
	}
}

// EffectiveHighFreq returns HighFreq, or the Nyquist rate when HighFreq is unset.
func (c *FeatureConfig) EffectiveHighFreq() float64 {
	if c.HighFreq <= 0 {
		return float64(c.SampleRate) / 2
	}
	return c.HighFreq
}

// Validate reports configuration errors. FFT size, hop length and pad length
// errors wrap ErrInvalidFFTSize and ErrInvalidTargetLength.
func (c *FeatureConfig) Validate() error {
	if c.FFTSize <= 0 {
		return fmt.Errorf("%w: fft_size=%d", ErrInvalidFFTSize, c.FFTSize)
	}
	if c.HopLength <= 0 {
		return fmt.Errorf("%w: hop_length=%d", ErrInvalidFFTSize, c.HopLength)
	}
	if c.PadLength <= 0 {
		return fmt.Errorf("%w: pad_length=%d", ErrInvalidTargetLength, c.PadLength)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.MelBands <= 0 {
		return fmt.Errorf("mel_bands must be positive, got %d", c.MelBands)
	}
	if c.NumCoefficients <= 0 {
		return fmt.Errorf("num_coefficients must be positive, got %d", c.NumCoefficients)
	}
	if c.LowFreq < 0 || c.EffectiveHighFreq() <= c.LowFreq {
		return fmt.Errorf("invalid mel range [%g, %g]", c.LowFreq, c.EffectiveHighFreq())
	}
	if c.EffectiveHighFreq() > float64(c.SampleRate)/2 {
		return fmt.Errorf("high_freq %g exceeds Nyquist %g", c.HighFreq, float64(c.SampleRate)/2)
	}
	switch c.SpectrumMethod {
	case SpectrumFFT, SpectrumDFT, "":
	default:
		return fmt.Errorf("unknown spectrum_method %q", c.SpectrumMethod)
	}
	switch c.Layout {
	case LayoutReshape, LayoutTranspose, "":
	default:
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	return nil
}

// ParseFeatureConfig decodes YAML on top of the defaults; absent keys keep
// their default value.
func ParseFeatureConfig(data []byte) (*FeatureConfig, error) {
	cfg := DefaultFeatureConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feature config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFeatureConfig reads a YAML feature config from path.
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature config: %w", err)
	}
	return ParseFeatureConfig(data)
}
