package energy

import (
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-energy/algorithms/common"
	"github.com/RyanBlaney/sonido-energy/algorithms/spectral"
	"github.com/RyanBlaney/sonido-energy/algorithms/windowing"
	"github.com/RyanBlaney/sonido-energy/energy/config"
	"github.com/RyanBlaney/sonido-energy/logging"
	"github.com/RyanBlaney/sonido-energy/transcode"
)

// ErrNoAudio is returned when Extract is given no audio.
var ErrNoAudio = errors.New("audio data cannot be nil")

// Result is the output of one feature extraction.
type Result struct {
	Features        *FeatureMap   `json:"features"`
	FrameCount      int           `json:"frame_count"`      // frames before padding/truncation
	ResampledLength int           `json:"resampled_length"` // samples after resampling
	SourceRate      int           `json:"source_rate"`
	Duration        time.Duration `json:"duration"`
}

// Truncated reports whether frames were dropped to fit the pad length.
func (r *Result) Truncated() bool {
	return r.FrameCount > r.Features.Rows()
}

// Extractor turns mono audio into a fixed-shape MFCC FeatureMap:
// resample, frame + Hann window, magnitude spectrum, mel projection,
// log floor, DCT, pad/truncate.
//
// The window, filterbank and DCT table are built once by NewExtractor and are
// read-only afterwards, so one Extractor may serve concurrent Extract calls.
type Extractor struct {
	config *config.FeatureConfig
	window *windowing.Hann
	stft   *spectral.STFT
	mfcc   *spectral.MFCC
	logger logging.Logger
}

// NewExtractor validates cfg and precomputes the shared tables. A nil cfg
// selects DefaultFeatureConfig.
func NewExtractor(cfg *config.FeatureConfig) (*Extractor, error) {
	if cfg == nil {
		cfg = config.DefaultFeatureConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "mfcc_extractor",
	})

	if err := cfg.Validate(); err != nil {
		logger.Error(err, "Invalid feature configuration")
		return nil, err
	}

	filterbank, err := spectral.NewMelFilterbank(
		cfg.MelBands,
		cfg.FFTSize,
		cfg.SampleRate,
		cfg.LowFreq,
		cfg.EffectiveHighFreq(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mel filterbank: %w", err)
	}

	mfcc, err := spectral.NewMFCC(filterbank, cfg.NumCoefficients, cfg.LogFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to create MFCC stage: %w", err)
	}

	var backend spectral.MagnitudeSpectrum = spectral.NewFFT()
	if cfg.SpectrumMethod == config.SpectrumDFT {
		backend = spectral.NewDFT()
	}

	logger.Debug("Extractor ready", logging.Fields{
		"sample_rate":     cfg.SampleRate,
		"fft_size":        cfg.FFTSize,
		"hop_length":      cfg.HopLength,
		"mel_bands":       cfg.MelBands,
		"coefficients":    cfg.NumCoefficients,
		"pad_length":      cfg.PadLength,
		"spectrum_method": cfg.SpectrumMethod,
	})

	return &Extractor{
		config: cfg,
		window: windowing.NewHann(cfg.FFTSize, true),
		stft:   spectral.NewSTFTWithSpectrum(backend),
		mfcc:   mfcc,
		logger: logger,
	}, nil
}

// Config returns a copy of the extractor configuration.
func (e *Extractor) Config() config.FeatureConfig {
	return *e.config
}

// Filterbank returns the shared mel filterbank.
func (e *Extractor) Filterbank() *spectral.MelFilterbank {
	return e.mfcc.Filterbank()
}

// ExtractMFCC returns every un-padded cepstral frame of samples recorded at
// sampleRate, in chronological order.
func (e *Extractor) ExtractMFCC(samples []float64, sampleRate int) ([][]float64, error) {
	resampled, err := common.ResampleNearestChecked(samples, sampleRate, e.config.SampleRate)
	if err != nil {
		return nil, err
	}
	return e.cepstralFrames(resampled)
}

func (e *Extractor) cepstralFrames(signal []float64) ([][]float64, error) {
	frames, err := spectral.Frames(signal, e.config.FFTSize, e.config.HopLength, e.window)
	if err != nil {
		return nil, err
	}

	magnitudes := e.stft.Magnitudes(frames)

	return e.mfcc.ComputeFrames(magnitudes)
}

// keptPrefix returns the leading part of signal that covers the first
// min(FrameCount, PadLength) frames. Later frames would be truncated away.
func (e *Extractor) keptPrefix(signal []float64, frameCount int) []float64 {
	kept := min(frameCount, e.config.PadLength)
	if kept <= 0 {
		return nil
	}
	return signal[:(kept-1)*e.config.HopLength+e.config.FFTSize]
}

// Extract runs the whole pipeline on one decoded signal. Only the frames that
// fit the pad length are analyzed, so the cost is bounded for long signals.
// An empty or short signal yields an all-zero FeatureMap, not an error.
func (e *Extractor) Extract(audio *transcode.AudioData) (*Result, error) {
	if audio == nil {
		return nil, ErrNoAudio
	}

	logger := e.logger.WithFields(logging.Fields{
		"function":    "Extract",
		"sample_rate": audio.SampleRate,
		"samples":     len(audio.PCM),
	})

	resampled, err := common.ResampleNearestChecked(audio.PCM, audio.SampleRate, e.config.SampleRate)
	if err != nil {
		logger.Error(err, "Failed to resample audio")
		return nil, err
	}

	frameCount := spectral.FrameCount(len(resampled), e.config.FFTSize, e.config.HopLength)

	cepstra, err := e.cepstralFrames(e.keptPrefix(resampled, frameCount))
	if err != nil {
		logger.Error(err, "Failed to compute cepstral frames")
		return nil, err
	}

	features, err := PadOrTruncate(cepstra, e.config.PadLength, e.config.NumCoefficients)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Features:        features,
		FrameCount:      frameCount,
		ResampledLength: len(resampled),
		SourceRate:      audio.SampleRate,
		Duration:        audio.Duration,
	}

	if result.Truncated() {
		logger.Debug("Skipped frames beyond pad length", logging.Fields{
			"frames":     result.FrameCount,
			"pad_length": e.config.PadLength,
		})
	}

	logger.Debug("Feature extraction complete", logging.Fields{
		"frames":           result.FrameCount,
		"resampled_length": result.ResampledLength,
	})

	return result, nil
}

// Tensor lays out a feature map with the configured layout.
func (e *Extractor) Tensor(fm *FeatureMap) (*Tensor, error) {
	return fm.Tensor(e.config.Layout)
}
