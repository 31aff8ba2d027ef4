package catalog

import (
	"context"
	"testing"

	"deepcut/internal/playlist"
)

func TestArtistAlbumsDeduplicatesAcrossTypes(t *testing.T) {
	api := newFakeAPI()
	api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: "al1", Name: "One", Type: playlist.AlbumTypeAlbum})
	api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: "al2", Name: "Two", Type: playlist.AlbumTypeAlbum})
	api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: "al3", Name: "Three", Type: playlist.AlbumTypeAlbum})
	api.addAlbum("ar1", playlist.AlbumTypeSingle, playlist.Album{ID: "al2", Name: "Two (single)", Type: playlist.AlbumTypeSingle})
	api.addAlbum("ar1", playlist.AlbumTypeSingle, playlist.Album{ID: "s1", Name: "Single", Type: playlist.AlbumTypeSingle})
	api.addAlbum("ar1", playlist.AlbumTypeCompilation, playlist.Album{ID: "al1", Name: "One again", Type: playlist.AlbumTypeCompilation})

	combos := [][]playlist.AlbumType{
		{playlist.AlbumTypeAlbum},
		{playlist.AlbumTypeSingle},
		{playlist.AlbumTypeAlbum, playlist.AlbumTypeSingle},
		{playlist.AlbumTypeSingle, playlist.AlbumTypeAlbum},
		{playlist.AlbumTypeAlbum, playlist.AlbumTypeSingle, playlist.AlbumTypeCompilation},
		{playlist.AlbumTypeCompilation, playlist.AlbumTypeSingle, playlist.AlbumTypeAlbum},
	}

	c := NewCollector(api, nil, nil, 1)
	for _, types := range combos {
		albums, err := c.ArtistAlbums(context.Background(), "ar1", types)
		if err != nil {
			t.Fatalf("ArtistAlbums(%v) failed: %v", types, err)
		}
		seen := make(map[string]bool)
		for _, a := range albums {
			if seen[a.ID] {
				t.Errorf("ArtistAlbums(%v) returned duplicate album %s", types, a.ID)
			}
			seen[a.ID] = true
		}
	}

	albums, _ := c.ArtistAlbums(context.Background(), "ar1",
		[]playlist.AlbumType{playlist.AlbumTypeAlbum, playlist.AlbumTypeSingle, playlist.AlbumTypeCompilation})
	if len(albums) != 4 {
		t.Fatalf("Expected 4 unique albums, got %d", len(albums))
	}
	if albums[1].Name != "Two" {
		t.Errorf("Expected first-seen album name 'Two', got '%s'", albums[1].Name)
	}
	if albums[3].ID != "s1" {
		t.Errorf("Expected single s1 last, got %s", albums[3].ID)
	}
}

func TestArtistAlbumsNoTypes(t *testing.T) {
	api := newFakeAPI()
	api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: "al1"})

	albums, err := NewCollector(api, nil, nil, 1).ArtistAlbums(context.Background(), "ar1", nil)
	if err != nil {
		t.Fatalf("ArtistAlbums() failed: %v", err)
	}
	if len(albums) != 0 {
		t.Errorf("Expected no albums, got %d", len(albums))
	}
	if api.albumCalls != 0 {
		t.Errorf("Expected no API calls, got %d", api.albumCalls)
	}
}
