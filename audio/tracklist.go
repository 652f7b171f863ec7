// Package audio plays background music and exposes its loudness to the
// renderer as a single sample per frame.
package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const tracklistFile = "Tracklist.txt"

var ErrUnknownTrack = errors.New("audio: unknown track")

// Tracklist maps a track name to its mp3 file.
type Tracklist map[string]string

// LoadTracklist reads <dir>/Tracklist.txt. Each non-empty line names
// <dir>/<name>.mp3. A missing list yields an empty tracklist.
func LoadTracklist(dir string) (Tracklist, error) {
	tracks := Tracklist{}
	f, err := os.Open(filepath.Join(dir, tracklistFile))
	if errors.Is(err, fs.ErrNotExist) {
		return tracks, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracklist: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		tracks[name] = filepath.Join(dir, name+".mp3")
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tracklist: %w", err)
	}
	return tracks, nil
}

// Names lists the tracks alphabetically.
func (t Tracklist) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Next returns the track after current in Names order, wrapping around.
func (t Tracklist) Next(current string) string {
	names := t.Names()
	if len(names) == 0 {
		return ""
	}
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
