package catalog

import (
	"context"
	"fmt"
	"testing"

	"deepcut/internal/playlist"
)

var allTypes = []playlist.AlbumType{playlist.AlbumTypeAlbum, playlist.AlbumTypeSingle}

func TestIcebergScenario(t *testing.T) {
	api := newFakeAPI()
	api.top["ar1"] = []playlist.Track{
		track("A", 200000, pop(90)),
		track("B", 200000, pop(85)),
		track("C", 200000, pop(70)),
	}
	api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: "al1"},
		track("A", 200000, pop(90)),
		track("F", 200000, pop(40)),
		track("D", 200000, pop(80)),
	)
	api.addAlbum("ar1", playlist.AlbumTypeSingle, playlist.Album{ID: "s1"},
		track("B", 200000, pop(85)),
		track("E", 200000, pop(60)),
	)

	tiers, err := NewCollector(api, nil, nil, 2).Iceberg(context.Background(), "ar1", allTypes, true)
	if err != nil {
		t.Fatalf("Iceberg() failed: %v", err)
	}

	if want := []string{uri("A"), uri("B"), uri("C")}; !equalStrings(tiers.Top, want) {
		t.Errorf("Expected top tier %v, got %v", want, tiers.Top)
	}
	if want := []string{uri("D"), uri("E"), uri("F")}; !equalStrings(tiers.Mid, want) {
		t.Errorf("Expected mid tier %v, got %v", want, tiers.Mid)
	}
	if len(tiers.Deep) != 0 {
		t.Errorf("Expected empty deep tier, got %v", tiers.Deep)
	}
	want := []string{uri("A"), uri("B"), uri("C"), uri("D"), uri("E"), uri("F")}
	if got := tiers.URIs(); !equalStrings(got, want) {
		t.Errorf("Expected final list %v, got %v", want, got)
	}
}

func TestIcebergBounds(t *testing.T) {
	api := newFakeAPI()
	api.pageSize = 7

	var top []playlist.Track
	for i := 0; i < 15; i++ {
		top = append(top, track(fmt.Sprintf("top%02d", i), 200000, pop(100)))
	}
	api.top["ar1"] = top

	for a := 0; a < 6; a++ {
		var tracks []playlist.Track
		for i := 0; i < 12; i++ {
			id := fmt.Sprintf("a%d-t%02d", a, i)
			var p *int
			if i%5 != 0 {
				p = pop((a*13 + i*7) % 101)
			}
			tracks = append(tracks, track(id, 200000, p))
		}
		// every album also carries some of the top tracks
		tracks = append(tracks, top[a], top[a+1])
		api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: fmt.Sprintf("al%d", a)}, tracks...)
	}

	tiers, err := NewCollector(api, nil, nil, 3).Iceberg(context.Background(), "ar1", allTypes, true)
	if err != nil {
		t.Fatalf("Iceberg() failed: %v", err)
	}

	if len(tiers.Top) > 10 || len(tiers.Mid) > 10 || len(tiers.Deep) > 20 || tiers.Len() > 40 {
		t.Fatalf("Tier bounds violated: top %d, mid %d, deep %d", len(tiers.Top), len(tiers.Mid), len(tiers.Deep))
	}
	if len(tiers.Top) != 10 || len(tiers.Mid) != 10 || len(tiers.Deep) != 20 {
		t.Errorf("Expected full tiers 10/10/20, got %d/%d/%d", len(tiers.Top), len(tiers.Mid), len(tiers.Deep))
	}

	topSet := make(map[string]bool)
	for _, u := range tiers.Top {
		topSet[u] = true
	}
	for _, u := range append(append([]string{}, tiers.Mid...), tiers.Deep...) {
		if topSet[u] {
			t.Errorf("Track %s appears in the top tier and a lower tier", u)
		}
	}

	score := func(u string) int {
		for _, tr := range api.details {
			if tr.URI == u {
				return tr.PopularityScore()
			}
		}
		t.Fatalf("unknown uri %s", u)
		return 0
	}
	ranked := append(append([]string{}, tiers.Mid...), tiers.Deep...)
	for i := 1; i < len(ranked); i++ {
		if score(ranked[i-1]) < score(ranked[i]) {
			t.Errorf("Tiers not in descending popularity at %d: %d < %d", i, score(ranked[i-1]), score(ranked[i]))
		}
	}
}

func TestIcebergFallbackToTopTracks(t *testing.T) {
	api := newFakeAPI()
	api.top["ar1"] = []playlist.Track{track("A", 200000, nil), track("B", 200000, nil)}
	api.addAlbum("ar1", playlist.AlbumTypeAlbum, playlist.Album{ID: "al1"},
		track("A", 200000, nil),
		track("B", 200000, nil),
		track("short", 2000, nil),
	)

	rec := &recorder{}
	tiers, err := NewCollector(api, nil, rec.sink(), 1).Iceberg(context.Background(), "ar1", allTypes, true)
	if err != nil {
		t.Fatalf("Iceberg() failed: %v", err)
	}
	if want := []string{uri("A"), uri("B")}; !equalStrings(tiers.URIs(), want) {
		t.Errorf("Expected fallback to top tracks %v, got %v", want, tiers.URIs())
	}
	if len(api.detailBatches) != 0 {
		t.Errorf("Expected no detail lookups on fallback, got %d", len(api.detailBatches))
	}
}

func TestIcebergWithoutAlbumTypes(t *testing.T) {
	api := newFakeAPI()
	api.top["ar1"] = []playlist.Track{track("A", 200000, nil)}

	tiers, err := NewCollector(api, nil, nil, 1).Iceberg(context.Background(), "ar1", nil, false)
	if err != nil {
		t.Fatalf("Iceberg() failed: %v", err)
	}
	if !equalStrings(tiers.URIs(), []string{uri("A")}) {
		t.Errorf("Expected only the top track, got %v", tiers.URIs())
	}
}

func TestSortByPopularityStableAbsentLast(t *testing.T) {
	in := []playlist.Track{
		track("none1", 1, nil),
		track("zero", 1, pop(0)),
		track("fiveA", 1, pop(5)),
		track("none2", 1, nil),
		track("fiveB", 1, pop(5)),
		track("nine", 1, pop(9)),
	}

	got := SortByPopularity(in)
	want := []string{"nine", "fiveA", "fiveB", "zero", "none1", "none2"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Expected order %v, got position %d = %s", want, i, got[i].ID)
		}
	}
	if in[0].ID != "none1" {
		t.Error("SortByPopularity must not reorder its input")
	}
}

func TestRankTiersSlicesRemainder(t *testing.T) {
	var candidates []playlist.Track
	for i := 0; i < 35; i++ {
		candidates = append(candidates, track(fmt.Sprintf("c%02d", i), 1, pop(100-i)))
	}

	tiers := rankTiers([]string{"x"}, candidates)
	if len(tiers.Mid) != 10 || len(tiers.Deep) != 20 {
		t.Fatalf("Expected 10 mid and 20 deep, got %d and %d", len(tiers.Mid), len(tiers.Deep))
	}
	if tiers.Mid[0] != uri("c00") || tiers.Deep[0] != uri("c10") || tiers.Deep[19] != uri("c29") {
		t.Errorf("Unexpected tier boundaries: mid[0]=%s deep[0]=%s deep[19]=%s", tiers.Mid[0], tiers.Deep[0], tiers.Deep[19])
	}
}
