package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-energy/logging"
)

var (
	// ErrEmptyAudio is returned for empty input data.
	ErrEmptyAudio = errors.New("empty audio data")
	// ErrInvalidWAV is returned when the input is not a decodable PCM or float WAV file.
	ErrInvalidWAV = errors.New("invalid WAV data")
)

// WAV format tags from the fmt chunk.
// Extensible headers are read as integer PCM; the subformat GUID is not
// inspected.
const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// AudioData represents a decoded mono signal. PCM holds samples in [-1, 1].
type AudioData struct {
	PCM        []float64       `json:"-"`
	SampleRate int             `json:"sample_rate"`
	Channels   int             `json:"channels"` // channels in the source; PCM keeps the first
	Duration   time.Duration   `json:"duration"`
	Timestamp  time.Time       `json:"timestamp"`
	Metadata   *StreamMetadata `json:"metadata,omitempty"`
}

// StreamMetadata describes where decoded audio came from.
type StreamMetadata struct {
	URL        string    `json:"url,omitempty"`
	Format     string    `json:"format"`
	BitDepth   int       `json:"bit_depth,omitempty"`
	SampleRate int       `json:"sample_rate,omitempty"`
	Channels   int       `json:"channels,omitempty"`
	Title      string    `json:"title,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAudioData wraps in-memory mono samples, e.g. a synthetic test tone.
func NewAudioData(samples []float64, sampleRate int) *AudioData {
	data := &AudioData{
		PCM:        samples,
		SampleRate: sampleRate,
		Channels:   1,
		Timestamp:  time.Now(),
	}
	if sampleRate > 0 {
		data.Duration = time.Duration(int64(len(samples)) * int64(time.Second) / int64(sampleRate))
	}
	return data
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration"` // 0 keeps the whole file
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		MaxDuration: 0,
	}
}

// Decoder decodes WAV audio into AudioData. Only the first channel is kept;
// there is no downmixing.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile decodes a WAV file.
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	f, err := os.Open(filename)
	if err != nil {
		logger.Error(err, "Failed to open audio file")
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	audio, err := d.DecodeReader(f)
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	audio.Metadata.URL = filename
	audio.Metadata.Title = titleFromPath(filename)
	return audio, nil
}

// DecodeBytes decodes WAV data held in memory.
func (d *Decoder) DecodeBytes(data []byte) (*AudioData, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	return d.DecodeReader(bytes.NewReader(data))
}

// DecodeReader decodes WAV data from a seekable reader.
func (d *Decoder) DecodeReader(r io.ReadSeeker) (*AudioData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return nil, ErrInvalidWAV
	}

	format := int(dec.WavAudioFormat)
	if format != wavFormatPCM && format != wavFormatFloat && format != wavFormatExtensible {
		return nil, fmt.Errorf("%w: unsupported format tag %d", ErrInvalidWAV, format)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing sample rate", ErrInvalidWAV)
	}

	channels := max(buf.Format.NumChannels, 1)
	sampleRate := buf.Format.SampleRate
	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}

	frames := len(buf.Data) / channels
	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(sampleRate))
		frames = min(frames, limit)
	}

	var pcm []float64
	if format == wavFormatFloat {
		pcm, err = floatSamples(buf.Data, channels, frames, bitDepth)
		if err != nil {
			return nil, err
		}
	} else {
		pcm = intSamples(buf.Data, channels, frames, bitDepth)
	}

	d.logger.Debug("Decoded WAV", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"bit_depth":   bitDepth,
		"float":       format == wavFormatFloat,
		"samples":     frames,
	})

	now := time.Now()
	audio := NewAudioData(pcm, sampleRate)
	audio.Channels = channels
	audio.Timestamp = now
	audio.Metadata = &StreamMetadata{
		Format:     formatName(format),
		BitDepth:   bitDepth,
		SampleRate: sampleRate,
		Channels:   channels,
		Timestamp:  now,
	}
	return audio, nil
}

// GetConfig returns the decoder configuration.
func (d *Decoder) GetConfig() DecoderConfig {
	return *d.config
}

// intSamples keeps the first channel of interleaved integer PCM and scales
// it to [-1, 1].
func intSamples(data []int, channels, frames, bitDepth int) []float64 {
	pcm := make([]float64, frames)
	scale := pcmScale(bitDepth)
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		offset = 128
	}
	for i := range pcm {
		pcm[i] = (float64(data[i*channels]) - offset) / scale
	}
	return pcm
}

// floatSamples keeps the first channel of IEEE float PCM. The WAV reader
// hands 32-bit samples over as the int32 of their bit pattern.
func floatSamples(data []int, channels, frames, bitDepth int) ([]float64, error) {
	if bitDepth != 32 {
		return nil, fmt.Errorf("%w: unsupported %d-bit float samples", ErrInvalidWAV, bitDepth)
	}
	pcm := make([]float64, frames)
	for i := range pcm {
		pcm[i] = float64(math.Float32frombits(uint32(int32(data[i*channels]))))
	}
	return pcm, nil
}

func formatName(format int) string {
	if format == wavFormatFloat {
		return "wav-float"
	}
	return "wav"
}

// pcmScale is the magnitude of the most negative sample at the given depth.
func pcmScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
