package playlist

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"  37i9dQZF1DXcBWIGoYBM5M  ", "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseID(tt.in); got != tt.want {
			t.Errorf("ParseID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("overwrite")
	if err != nil {
		t.Fatalf("ParseMode() failed: %v", err)
	}
	if m != ModeOverwrite {
		t.Errorf("Expected OVERWRITE, got %s", m)
	}

	_, err = ParseMode("REPLACE")
	if Classify(err) != CategoryConfig {
		t.Errorf("Expected config error for unknown mode, got %v", err)
	}
}

func TestParseAlbumTypes(t *testing.T) {
	types, err := ParseAlbumTypes([]string{"Album", "single", "album"})
	if err != nil {
		t.Fatalf("ParseAlbumTypes() failed: %v", err)
	}
	if len(types) != 2 || types[0] != AlbumTypeAlbum || types[1] != AlbumTypeSingle {
		t.Errorf("Expected [album single], got %v", types)
	}

	if _, err := ParseAlbumTypes([]string{"appears_on"}); err == nil {
		t.Error("Expected error for unsupported album type")
	}
}

func TestTrackPlayable(t *testing.T) {
	short := Track{URI: "spotify:track:a", Duration: 59999}
	long := Track{URI: "spotify:track:b", Duration: 60000}
	noURI := Track{Duration: 120000}

	if short.Playable(true) {
		t.Error("Expected short track to be filtered")
	}
	if !short.Playable(false) {
		t.Error("Expected short track to pass without filter")
	}
	if !long.Playable(true) {
		t.Error("Expected 60s track to pass the filter")
	}
	if noURI.Playable(false) {
		t.Error("Expected track without URI to be dropped")
	}
}

func TestPopularityScore(t *testing.T) {
	zero := 0
	if got := (Track{}).PopularityScore(); got != -1 {
		t.Errorf("Expected -1 for absent popularity, got %d", got)
	}
	if got := (Track{Popularity: &zero}).PopularityScore(); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Category
	}{
		{nil, CategoryNone},
		{&ConfigError{Message: "missing name"}, CategoryConfig},
		{fmt.Errorf("prepare: %w", &NotFoundError{Kind: "playlist", ID: "x"}), CategoryAPI},
		{fmt.Errorf("add: %w", &APIError{Status: 500, Message: "boom"}), CategoryAPI},
		{errors.New("disk full"), CategoryUnexpected},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
