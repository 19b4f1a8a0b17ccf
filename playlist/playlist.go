// Package playlist aggregates song energy levels: top artist, average energy
// and its listening "vibe", and per-weekday play counts and energy.
package playlist

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-energy/algorithms/common"
)

// UnknownArtist is used when a song has no artist.
const UnknownArtist = "Unknown Artist"

// Vibe thresholds on the average energy.
const (
	ChillThreshold = 0.4
	PowerThreshold = 0.6
)

// Weekdays lists days in the order used for charts and tie-breaking.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Song is one playlist entry. Energy is in [0, 1].
type Song struct {
	Title     string       `json:"song"`
	Artist    string       `json:"artist"`
	Energy    float64      `json:"energy"`
	DayPlayed time.Weekday `json:"day_played"`
}

// Playlist is an ordered list of songs.
type Playlist []Song

// ArtistCount is an artist with its number of songs.
type ArtistCount struct {
	Artist string `json:"artist"`
	Songs  int    `json:"songs"`
}

// DayStat is the per-weekday aggregate.
type DayStat struct {
	Day           time.Weekday `json:"day"`
	Songs         int          `json:"songs"`
	AverageEnergy float64      `json:"average_energy"`
}

// TopArtist returns the artist with the most songs. Ties go to the artist
// that appears first in the playlist. ok is false for an empty playlist.
func (p Playlist) TopArtist() (top ArtistCount, ok bool) {
	counts := make(map[string]int)
	var order []string
	for _, s := range p {
		if _, seen := counts[s.Artist]; !seen {
			order = append(order, s.Artist)
		}
		counts[s.Artist]++
	}

	for _, artist := range order {
		if counts[artist] > top.Songs {
			top = ArtistCount{Artist: artist, Songs: counts[artist]}
		}
	}
	return top, len(order) > 0
}

// AverageEnergy returns the mean energy, or 0 for an empty playlist.
func (p Playlist) AverageEnergy() float64 {
	energies := make([]float64, len(p))
	for i, s := range p {
		energies[i] = s.Energy
	}
	return common.Mean(energies)
}

// Vibe describes an average energy level.
func Vibe(averageEnergy float64) string {
	switch {
	case averageEnergy < ChillThreshold:
		return "You're definitely a chill vibe listener."
	case averageEnergy > PowerThreshold:
		return "Looks like you're ready to power through anything!"
	default:
		return "You've got a balanced mix of vibes going on!"
	}
}

// ByDay returns one entry per weekday, Monday first. Days without songs have
// zero songs and zero average energy.
func (p Playlist) ByDay() []DayStat {
	energies := make(map[time.Weekday][]float64)
	for _, s := range p {
		energies[s.DayPlayed] = append(energies[s.DayPlayed], s.Energy)
	}

	stats := make([]DayStat, len(Weekdays))
	for i, day := range Weekdays {
		stats[i] = DayStat{
			Day:           day,
			Songs:         len(energies[day]),
			AverageEnergy: common.Mean(energies[day]),
		}
	}
	return stats
}

// MostPlayedDay returns the weekday with the most songs; the earliest day in
// Monday-first order wins ties. ok is false for an empty playlist.
func (p Playlist) MostPlayedDay() (DayStat, bool) {
	var best DayStat
	found := false
	for _, stat := range p.ByDay() {
		if stat.Songs > best.Songs {
			best = stat
			found = true
		}
	}
	return best, found
}

// Artists returns every artist with its song count, most songs first, then by name.
func (p Playlist) Artists() []ArtistCount {
	counts := make(map[string]int)
	for _, s := range p {
		counts[s.Artist]++
	}
	out := make([]ArtistCount, 0, len(counts))
	for artist, n := range counts {
		out = append(out, ArtistCount{Artist: artist, Songs: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Songs != out[j].Songs {
			return out[i].Songs > out[j].Songs
		}
		return out[i].Artist < out[j].Artist
	})
	return out
}

// EnergyBins is the number of 0.1-wide bins of EnergyHistogram.
const EnergyBins = 10

// EnergyBin counts the songs with Low <= energy < High. The last bin also
// holds energy 1.
type EnergyBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Songs int     `json:"songs"`
}

// EnergyHistogram buckets song energy into EnergyBins equal bins over [0, 1].
// Songs with invalid energy are not counted.
func (p Playlist) EnergyHistogram() []EnergyBin {
	bins := make([]EnergyBin, EnergyBins)
	for i := range bins {
		bins[i].Low = float64(i) / EnergyBins
		bins[i].High = float64(i+1) / EnergyBins
	}
	for _, s := range p {
		if !ValidEnergy(s.Energy) {
			continue
		}
		i := min(int(math.Floor(s.Energy*EnergyBins)), EnergyBins-1)
		bins[i].Songs++
	}
	return bins
}

// ParseWeekday parses an English day name, case-insensitively.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for _, day := range Weekdays {
		if strings.EqualFold(day.String(), name) {
			return day, true
		}
	}
	return time.Sunday, false
}

// ValidEnergy reports whether e is a usable energy level.
func ValidEnergy(e float64) bool {
	return !math.IsNaN(e) && e >= 0 && e <= 1
}
