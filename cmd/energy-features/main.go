// Command energy-features extracts the fixed-shape MFCC feature map used by
// the energy model from WAV files, and summarizes playlists by energy.
//
// Usage:
//
//	energy-features [--config features.yaml] [--log-level debug] <command>
//
// Commands:
//
//	extract <file.wav>    - print frame counts and features, stats or model tensor
//	filterbank            - print the mel band edges
//	playlist <songs.json> - summarize a playlist's energy by artist and weekday
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
