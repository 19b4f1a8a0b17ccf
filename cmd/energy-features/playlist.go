package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-energy/playlist"
)

type playlistRow struct {
	Song      string          `json:"song"`
	Artist    string          `json:"artist"`
	AltArtist string          `json:"artist_name_1"`
	Energy    json.RawMessage `json:"energy"`
	DayPlayed string          `json:"day_played"`
}

type dayOutput struct {
	Day           string  `json:"day"`
	Songs         int     `json:"songs"`
	AverageEnergy float64 `json:"average_energy"`
}

type playlistOutput struct {
	Songs         int                    `json:"songs"`
	TopArtist     *playlist.ArtistCount  `json:"top_artist,omitempty"`
	AverageEnergy float64                `json:"average_energy"`
	Vibe          string                 `json:"vibe,omitempty"`
	MostPlayedDay *dayOutput             `json:"most_played_day,omitempty"`
	ByDay         []dayOutput            `json:"by_day"`
	Histogram     []playlist.EnergyBin   `json:"energy_histogram"`
	Artists       []playlist.ArtistCount `json:"artists"`
}

func newPlaylistCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "playlist <songs.json>",
		Short: "Summarize a playlist's energy",
		Long: `Summarize a playlist given as a JSON array of
{"song", "artist", "energy", "day_played"} objects.

Rows without a title are dropped. Missing, non-numeric or out-of-range energy is taken from
a table of known songs or guessed; unknown days are guessed (--seed).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var raw []playlistRow
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("failed to parse playlist: %w", err)
			}

			rows := make([]playlist.Row, len(raw))
			for i, r := range raw {
				rows[i] = playlist.Row{
					Song:      r.Song,
					Artist:    r.Artist,
					AltArtist: r.AltArtist,
					Energy:    energyText(r.Energy),
					DayPlayed: r.DayPlayed,
				}
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			songs := playlist.Clean(rows, playlist.NewRandomGuesser(seed))

			return writeJSON(cmd.OutOrStdout(), summarize(songs))
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for guessed energy and days (0: time based)")
	return cmd
}

// energyText returns the energy cell as imported: the content of a JSON
// string, the literal of any other value, "" when absent or null. Invalid
// values are left for playlist.Clean to replace.
func energyText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func summarize(songs playlist.Playlist) playlistOutput {
	out := playlistOutput{
		Songs:     len(songs),
		Artists:   songs.Artists(),
		Histogram: songs.EnergyHistogram(),
	}

	if top, ok := songs.TopArtist(); ok {
		out.TopArtist = &top
	}
	if len(songs) > 0 {
		out.AverageEnergy = songs.AverageEnergy()
		out.Vibe = playlist.Vibe(out.AverageEnergy)
	}
	for _, d := range songs.ByDay() {
		out.ByDay = append(out.ByDay, dayOutput{Day: d.Day.String(), Songs: d.Songs, AverageEnergy: d.AverageEnergy})
	}
	if day, ok := songs.MostPlayedDay(); ok {
		out.MostPlayedDay = &dayOutput{Day: day.Day.String(), Songs: day.Songs, AverageEnergy: day.AverageEnergy}
	}

	return out
}
