package geo

import (
	"fmt"
	"math"
	"testing"
)

func TestDistanceKmKnownValues(t *testing.T) {
	// London to Paris is roughly 344 km.
	london := Point{Latitude: 51.5074, Longitude: -0.1278}
	paris := Point{Latitude: 48.8566, Longitude: 2.3522}

	got := DistanceKm(london, paris)
	if math.Abs(got-344) > 5 {
		t.Fatalf("expected ~344km, got %.2f", got)
	}
}

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	p := Point{Latitude: 40.7128, Longitude: -74.0060}
	if got := DistanceKm(p, p); got != 0 {
		t.Fatalf("expected 0 distance, got %f", got)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := Point{Latitude: 12.97, Longitude: 77.59}
	b := Point{Latitude: 13.08, Longitude: 80.27}
	if d1, d2 := DistanceKm(a, b), DistanceKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestNearestNSortsAscending(t *testing.T) {
	origin := Point{Latitude: 0, Longitude: 0}
	// Longitude offsets at the equator produce distances proportional to
	// the offset, so these rank as 1 < 5 < 10 < 15 < 20.
	offsets := []float64{10, 5, 20, 1, 15}
	candidates := make([]Ranked, 0, len(offsets))
	for _, off := range offsets {
		candidates = append(candidates, Ranked{
			ID:    fmt.Sprintf("ngo-%.0f", off),
			Point: Point{Latitude: 0, Longitude: off},
		})
	}

	got := NearestN(origin, candidates, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	wantOrder := []string{"ngo-1", "ngo-5", "ngo-10"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].DistanceKm < got[i-1].DistanceKm {
			t.Fatalf("results not ascending at %d", i)
		}
	}
}

func TestNearestNFewerCandidatesThanN(t *testing.T) {
	origin := Point{}
	candidates := []Ranked{
		{ID: "a", Point: Point{Latitude: 1}},
		{ID: "b", Point: Point{Latitude: 2}},
	}
	got := NearestN(origin, candidates, 3)
	if len(got) != 2 {
		t.Fatalf("expected all candidates back, got %d", len(got))
	}
}

func TestNearestNDoesNotMutateInput(t *testing.T) {
	origin := Point{}
	candidates := []Ranked{
		{ID: "far", Point: Point{Longitude: 50}},
		{ID: "near", Point: Point{Longitude: 1}},
	}
	_ = NearestN(origin, candidates, 2)
	if candidates[0].ID != "far" {
		t.Fatal("input slice order changed")
	}
}
