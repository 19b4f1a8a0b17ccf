package transcode

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, name string, sampleRate, bitDepth, channels int, data []int) string {
	t.Helper()
	return writeWAVFormat(t, name, sampleRate, bitDepth, channels, wavFormatPCM, data)
}

func writeWAVFormat(t *testing.T, name string, sampleRate, bitDepth, channels, format int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, format)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDecodeFileKeepsFirstChannel(t *testing.T) {
	// interleaved L/R
	path := writeWAV(t, "stereo.wav", 8000, 16, 2, []int{
		16384, -32768,
		-16384, 32767,
		0, 100,
		32767, 0,
	})

	data, err := NewDecoder(nil).DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, data.SampleRate)
	assert.Equal(t, 2, data.Channels)
	require.Len(t, data.PCM, 4)
	assert.InDelta(t, 0.5, data.PCM[0], 1e-12)
	assert.InDelta(t, -0.5, data.PCM[1], 1e-12)
	assert.InDelta(t, 0.0, data.PCM[2], 1e-12)
	assert.InDelta(t, 32767.0/32768.0, data.PCM[3], 1e-12)
	assert.Equal(t, 500*time.Microsecond, data.Duration)

	require.NotNil(t, data.Metadata)
	assert.Equal(t, "wav", data.Metadata.Format)
	assert.Equal(t, 16, data.Metadata.BitDepth)
	assert.Equal(t, "stereo", data.Metadata.Title)
	assert.Equal(t, path, data.Metadata.URL)
}

func TestDecodeBytesMono(t *testing.T) {
	path := writeWAV(t, "mono.wav", 22050, 16, 1, []int{0, 8192, -8192})
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	data, err := NewDecoder(nil).DecodeBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Channels)
	assert.Equal(t, []float64{0, 0.25, -0.25}, data.PCM)
}

func TestDecodeMaxDuration(t *testing.T) {
	path := writeWAV(t, "long.wav", 10, 16, 1, make([]int, 50))

	data, err := NewDecoder(&DecoderConfig{MaxDuration: 2 * time.Second}).DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, data.PCM, 20)
	assert.Equal(t, 2*time.Second, NewDecoder(&DecoderConfig{MaxDuration: 2 * time.Second}).GetConfig().MaxDuration)
	assert.Zero(t, NewDecoder(nil).GetConfig().MaxDuration)
}

// floatBits encodes IEEE float samples the way the WAV encoder writes 32-bit data.
func floatBits(samples ...float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(int32(math.Float32bits(s)))
	}
	return out
}

func TestDecodeFloatWAV(t *testing.T) {
	path := writeWAVFormat(t, "float.wav", 22050, 32, 1, wavFormatFloat, floatBits(0.5, -0.5, 0.25, 0))

	data, err := NewDecoder(nil).DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.5, 0.25, 0}, data.PCM)
	assert.Equal(t, "wav-float", data.Metadata.Format)
	assert.Equal(t, 32, data.Metadata.BitDepth)
}

func TestDecodeFloatWAVKeepsFirstChannel(t *testing.T) {
	path := writeWAVFormat(t, "float-stereo.wav", 8000, 32, 2, wavFormatFloat, floatBits(
		0.75, -1,
		-0.125, 1,
	))

	data, err := NewDecoder(nil).DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Channels)
	assert.Equal(t, []float64{0.75, -0.125}, data.PCM)
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	// 2 is Microsoft ADPCM
	path := writeWAVFormat(t, "adpcm.wav", 8000, 16, 1, 2, []int{1, 2, 3})

	_, err := NewDecoder(nil).DecodeFile(path)
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestDecodeInvalidInput(t *testing.T) {
	_, err := NewDecoder(nil).DecodeBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyAudio)

	_, err = NewDecoder(nil).DecodeBytes([]byte("definitely not a RIFF header"))
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = NewDecoder(nil).DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestNewAudioData(t *testing.T) {
	data := NewAudioData(make([]float64, 22050), 22050)
	assert.Equal(t, time.Second, data.Duration)
	assert.Equal(t, 1, data.Channels)

	empty := NewAudioData(nil, 0)
	assert.Zero(t, empty.Duration)
}

func TestPCMScale(t *testing.T) {
	assert.Equal(t, 128.0, pcmScale(8))
	assert.Equal(t, 32768.0, pcmScale(16))
	assert.Equal(t, float64(1<<23), pcmScale(24))
	assert.Equal(t, float64(1<<31), pcmScale(32))
}
