package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallConfig = `
sample_rate: 8000
fft_size: 256
hop_length: 128
mel_bands: 20
num_coefficients: 10
pad_length: 8
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeToneWAV(t *testing.T, dir string, sampleRate int, seconds float64) string {
	t.Helper()

	n := int(float64(sampleRate) * seconds)
	data := make([]int, n)
	for i := range data {
		data[i] = int(16000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}

	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.Bytes(), err
}

func TestExtractFeatures(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "features.yaml", smallConfig)
	wavPath := writeToneWAV(t, dir, 8000, 1)

	out, err := run(t, "--config", cfg, "extract", wavPath)
	require.NoError(t, err)

	var got extractOutput
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 8000, got.SourceRate)
	assert.Equal(t, 8000, got.ResampledLength)
	assert.Equal(t, 61, got.FrameCount)
	assert.True(t, got.Truncated)
	assert.Equal(t, 8, got.Rows)
	assert.Equal(t, 10, got.Cols)
	require.Len(t, got.Features, 8)
	assert.Len(t, got.Features[0], 10)
	assert.Nil(t, got.Stats)
	assert.Nil(t, got.Tensor)
}

func TestExtractStatsAndTensor(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "features.yaml", smallConfig)
	wavPath := writeToneWAV(t, dir, 8000, 1)

	out, err := run(t, "--config", cfg, "extract", wavPath, "--stats")
	require.NoError(t, err)
	var stats extractOutput
	require.NoError(t, json.Unmarshal(out, &stats))
	assert.Len(t, stats.Stats, 10)
	assert.Nil(t, stats.Features)

	out, err = run(t, "--config", cfg, "extract", wavPath, "--tensor", "--layout", "transpose")
	require.NoError(t, err)
	var tensor extractOutput
	require.NoError(t, json.Unmarshal(out, &tensor))
	require.NotNil(t, tensor.Tensor)
	assert.Equal(t, []int64{1, 10, 8, 1}, tensor.Tensor.Shape)
	assert.Len(t, tensor.Tensor.Data, 80)
}

func TestExtractMaxDuration(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "features.yaml", smallConfig)
	wavPath := writeToneWAV(t, dir, 8000, 1)

	out, err := run(t, "--config", cfg, "extract", wavPath, "--stats", "--max-duration", "500ms")
	require.NoError(t, err)

	var got extractOutput
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 4000, got.ResampledLength)
	assert.InDelta(t, 0.5, got.DurationSeconds, 1e-9)
}

func TestNoColorLogs(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "features.yaml", smallConfig)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--no-color", "--log-level", "debug", "--config", cfg, "filterbank"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stderr.String(), "[DEBUG] Extractor ready")
	assert.NotContains(t, stderr.String(), "\033[")
	assert.NotContains(t, stdout.String(), "[DEBUG]")
}

func TestExtractErrors(t *testing.T) {
	dir := t.TempDir()
	notWAV := writeFile(t, dir, "song.wav", "definitely not riff data")

	_, err := run(t, "extract", notWAV)
	assert.Error(t, err)

	_, err = run(t, "extract")
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "fft_size: 0\n")
	_, err = run(t, "--config", bad, "filterbank")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "filterbank")
	assert.Error(t, err)
}

func TestFilterbank(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "features.yaml", smallConfig)

	out, err := run(t, "--config", cfg, "filterbank")
	require.NoError(t, err)

	var got filterbankOutput
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 8000, got.SampleRate)
	assert.Equal(t, 20, got.Bands)
	assert.Equal(t, 129, got.Bins)
	require.Len(t, got.Boundaries, 22)
	assert.InDelta(t, 0, got.Boundaries[0], 1e-9)
	assert.InDelta(t, 4000, got.Boundaries[21], 1e-6)
}

func TestPlaylistSummary(t *testing.T) {
	dir := t.TempDir()
	songs := writeFile(t, dir, "songs.json", `[
		{"song": "Blinding Lights", "artist": "The Weeknd", "energy": 0.9, "day_played": "Monday"},
		{"song": "Save Your Tears", "artist": "The Weeknd", "energy": 0.7, "day_played": "Monday"},
		{"song": "Imagine", "artist": "John Lennon", "energy": 0.2, "day_played": "Friday"},
		{"song": "", "artist": "Nobody", "energy": 1, "day_played": "Friday"}
	]`)

	out, err := run(t, "playlist", songs, "--seed", "7")
	require.NoError(t, err)

	var got playlistOutput
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 3, got.Songs)
	require.NotNil(t, got.TopArtist)
	assert.Equal(t, "The Weeknd", got.TopArtist.Artist)
	assert.Equal(t, 2, got.TopArtist.Songs)
	assert.InDelta(t, 0.6, got.AverageEnergy, 1e-9)
	assert.Contains(t, got.Vibe, "balanced")
	require.NotNil(t, got.MostPlayedDay)
	assert.Equal(t, "Monday", got.MostPlayedDay.Day)
	assert.Len(t, got.ByDay, 7)
	require.Len(t, got.Histogram, 10)
	assert.Equal(t, 1, got.Histogram[2].Songs)
	assert.Equal(t, 1, got.Histogram[7].Songs)
	assert.Equal(t, 1, got.Histogram[9].Songs)
}

func TestPlaylistFillsInvalidEnergy(t *testing.T) {
	dir := t.TempDir()
	songs := writeFile(t, dir, "songs.json", `[
		{"song": "Blinding Lights", "artist": "The Weeknd", "energy": "N/A", "day_played": "Monday"},
		{"song": "Fix You", "artist": "Coldplay", "energy": "", "day_played": "Tuesday"},
		{"song": "Imagine", "artist": "John Lennon", "energy": "0.2", "day_played": "Friday"},
		{"song": "Riptide", "artist": "Vance Joy", "energy": null, "day_played": "Friday"},
		{"song": "Demo Take 3", "artist": "Nobody", "day_played": "Sunday"}
	]`)

	out, err := run(t, "playlist", songs, "--seed", "3")
	require.NoError(t, err)

	var got playlistOutput
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 5, got.Songs)

	// 0.9 + 0.4 + 0.2 + 0.5 from the known titles and the row, plus a guess in [0.3, 0.9]
	assert.GreaterOrEqual(t, got.AverageEnergy, (2.0+0.3)/5-1e-9)
	assert.LessOrEqual(t, got.AverageEnergy, (2.0+0.9)/5+1e-9)
}

func TestEnergyText(t *testing.T) {
	cases := map[string]string{
		``:       "",
		`null`:   "",
		`0.75`:   "0.75",
		`"0.75"`: "0.75",
		`"N/A"`:  "N/A",
		`true`:   "true",
	}
	for raw, want := range cases {
		assert.Equal(t, want, energyText(json.RawMessage(raw)), raw)
	}
}
