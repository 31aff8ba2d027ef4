package playlist

import (
	"fmt"
	"strings"
)

// MinTrackDuration is the cutoff used when short tracks are excluded (milliseconds).
const MinTrackDuration = 60000

// Artist represents a catalog artist picked by the user
type Artist struct {
	ID        string
	Name      string
	Followers int
	ImageURL  string
	URL       string
}

// User is the authenticated account
type User struct {
	ID          string
	DisplayName string
	URL         string
	ImageURL    string
}

// AlbumType is the catalog type filter used when listing an artist's albums
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeCompilation AlbumType = "compilation"
)

// Album is a release in an artist's catalog
type Album struct {
	ID    string
	Name  string
	Type  AlbumType
	Group string
}

// Track represents a single music track with the fields the selection engine needs
type Track struct {
	ID         string `csv:"id"`
	URI        string `csv:"uri"`
	Name       string `csv:"name"`
	Duration   int    `csv:"duration_ms"`
	Popularity *int   `csv:"-"`
}

// PopularityScore returns the popularity, or -1 when the service did not report one.
func (t Track) PopularityScore() int {
	if t.Popularity == nil {
		return -1
	}
	return *t.Popularity
}

// Playable reports whether the track has a URI and passes the duration filter.
func (t Track) Playable(excludeShort bool) bool {
	if t.URI == "" {
		return false
	}
	return !excludeShort || t.Duration >= MinTrackDuration
}

// Playlist represents a playlist on the streaming service
type Playlist struct {
	ID          string
	Name        string
	Description string
	Public      bool
	Owner       string
	TrackCount  int
	URL         string
	ImageURL    string
}

// Mode selects how the destination playlist is obtained
type Mode string

const (
	ModeNew       Mode = "NEW"
	ModeOverwrite Mode = "OVERWRITE"
	ModeAppend    Mode = "APPEND"
)

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ModeNew, ModeOverwrite, ModeAppend:
		return m, nil
	}
	return "", &ConfigError{Message: fmt.Sprintf("invalid playlist mode %q", s)}
}

// Strategy selects how tracks are collected and ordered
type Strategy string

const (
	StrategyTrack      Strategy = "TRACK"
	StrategyPopularity Strategy = "POPULARITY"
	StrategyTopTracks  Strategy = "TOP_TRACKS"
	StrategyIceberg    Strategy = "ICEBERG"
)

// ParseStrategy parses a strategy name case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StrategyTrack, StrategyPopularity, StrategyTopTracks, StrategyIceberg:
		return st, nil
	}
	return "", &ConfigError{Message: fmt.Sprintf("invalid strategy %q", s)}
}

// ParseAlbumTypes parses album type names, keeping the given order and dropping repeats.
func ParseAlbumTypes(names []string) ([]AlbumType, error) {
	var types []AlbumType
	seen := make(map[AlbumType]bool)
	for _, n := range names {
		t := AlbumType(strings.ToLower(strings.TrimSpace(n)))
		switch t {
		case AlbumTypeAlbum, AlbumTypeSingle, AlbumTypeCompilation:
		default:
			return nil, &ConfigError{Message: fmt.Sprintf("invalid album type %q", n)}
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types, nil
}

// ParseID extracts a playlist ID from a bare ID, a spotify:playlist: URI or an open.spotify.com URL.
func ParseID(input string) string {
	input = strings.TrimSpace(input)
	if i := strings.LastIndex(input, "spotify:playlist:"); i >= 0 {
		input = input[i+len("spotify:playlist:"):]
	} else if i := strings.LastIndex(input, "/playlist/"); i >= 0 {
		input = input[i+len("/playlist/"):]
	}
	if i := strings.IndexAny(input, "?#/"); i >= 0 {
		input = input[:i]
	}
	return strings.TrimSpace(input)
}
