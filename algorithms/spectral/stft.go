package spectral

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-energy/logging"
)

var (
	// ErrInvalidFFTSize is returned when the frame (FFT) size is not positive.
	ErrInvalidFFTSize = errors.New("invalid FFT size")
	// ErrInvalidHopLength is returned when the hop is not positive. It matches
	// ErrInvalidFFTSize under errors.Is.
	ErrInvalidHopLength = fmt.Errorf("%w: hop length must be positive", ErrInvalidFFTSize)
)

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// FrameCount returns floor((length-frameSize)/hop)+1 when length >= frameSize,
// else 0. Trailing samples that do not fill a frame are dropped.
func FrameCount(length, frameSize, hop int) int {
	if frameSize <= 0 || hop <= 0 || length < frameSize {
		return 0
	}
	return (length-frameSize)/hop + 1
}

// Frames slices signal into frames [k*hop, k*hop+frameSize) in chronological
// order and multiplies each by window. Every frame is a fresh slice; signal
// is not modified. A nil window leaves frames rectangular.
func Frames(signal []float64, frameSize, hop int, window Window) ([][]float64, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size %d: %w", frameSize, ErrInvalidFFTSize)
	}
	if hop <= 0 {
		return nil, fmt.Errorf("hop %d: %w", hop, ErrInvalidHopLength)
	}

	numFrames := FrameCount(len(signal), frameSize, hop)
	frames := make([][]float64, numFrames)

	for k := 0; k < numFrames; k++ {
		start := k * hop
		frame := make([]float64, frameSize)
		copy(frame, signal[start:start+frameSize])

		if window != nil {
			if err := window.ApplyInPlace(frame); err != nil {
				return nil, fmt.Errorf("failed to window frame %d: %w", k, err)
			}
		}
		frames[k] = frame
	}

	return frames, nil
}

// STFT computes magnitude spectra for a sequence of frames.
type STFT struct {
	spectrum MagnitudeSpectrum
	logger   logging.Logger
}

// NewSTFT creates a new STFT calculator backed by the FFT.
func NewSTFT() *STFT {
	return NewSTFTWithSpectrum(NewFFT())
}

// NewSTFTWithSpectrum creates an STFT using the given magnitude backend.
func NewSTFTWithSpectrum(spectrum MagnitudeSpectrum) *STFT {
	if spectrum == nil {
		spectrum = NewFFT()
	}
	return &STFT{
		spectrum: spectrum,
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// Magnitudes returns one magnitude spectrum per frame, in frame order.
// Frames are spread over a worker pool; each worker writes only its own
// frame's slot, so the result does not depend on scheduling.
func (s *STFT) Magnitudes(frames [][]float64) [][]float64 {
	magnitudes := make([][]float64, len(frames))
	if len(frames) == 0 {
		return magnitudes
	}

	numWorkers := s.getOptimalWorkerCount(len(frames))

	s.logger.Debug("Computing magnitude spectra", logging.Fields{
		"frames":  len(frames),
		"workers": numWorkers,
	})

	jobs := make(chan int, len(frames))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				magnitudes[idx] = s.spectrum.Magnitude(frames[idx])
			}
		}()
	}

	for idx := range frames {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()

	return magnitudes
}

// getOptimalWorkerCount determines the number of workers based on workload
func (s *STFT) getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return max(1, min(numCPU, 8))
	}

	return numCPU
}
