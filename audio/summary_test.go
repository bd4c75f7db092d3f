package audio

import (
	"strings"
	"testing"
	"time"

	"go-siren/types"
)

func TestNearbySignalsFiltersAndSorts(t *testing.T) {
	t.Parallel()

	listener := types.GeoPoint{Lat: 37.7749, Lon: -122.4194}
	signals := []types.Signal{
		{ID: "far", SignalType: types.Hazard, Lat: 37.8, Lon: -122.3},           // several km away
		{ID: "near", SignalType: types.Checkpoint, Lat: 37.7752, Lon: -122.4194}, // ~33 m
		{ID: "mid", SignalType: types.Traffic, Lat: 37.7757, Lon: -122.4194},     // ~89 m
	}

	nearby := nearbySignals(signals, listener.Lat, listener.Lon, 0.1)
	if len(nearby) != 2 {
		t.Fatalf("got %d nearby signals, want 2", len(nearby))
	}
	if nearby[0].signal.ID != "near" || nearby[1].signal.ID != "mid" {
		t.Errorf("order = [%s, %s], want nearest first", nearby[0].signal.ID, nearby[1].signal.ID)
	}
	if nearby[0].distanceKm >= nearby[1].distanceKm {
		t.Error("distances are not ascending")
	}
}

func TestNearbySignalsEmpty(t *testing.T) {
	t.Parallel()

	signals := []types.Signal{{Lat: 0, Lon: 0}}
	if got := nearbySignals(signals, 37.7749, -122.4194, 0.1); len(got) != 0 {
		t.Errorf("got %d signals, want none in range", len(got))
	}
}

func TestDescribeSignalsCapsAtFive(t *testing.T) {
	t.Parallel()

	var nearby []nearbySignal
	for i := 0; i < 8; i++ {
		nearby = append(nearby, nearbySignal{
			signal:     types.Signal{SignalType: types.Hazard},
			distanceKm: 0.05 * float64(i+1),
		})
	}

	text := describeSignals(nearby)
	if got := len(strings.Split(text, ", ")); got != 5 {
		t.Errorf("described %d signals, want 5", got)
	}
}

func TestDescribeSignalsFormat(t *testing.T) {
	t.Parallel()

	nearby := []nearbySignal{
		{signal: types.Signal{SignalType: types.Checkpoint}, distanceKm: 0.5},
		{signal: types.Signal{SignalType: types.Traffic}, distanceKm: 1.5},
	}

	text := describeSignals(nearby)
	want := "checkpoint at 500m, traffic congestion at 1.5km"
	if text != want {
		t.Errorf("description = %q, want %q", text, want)
	}
}

func TestSignalCache(t *testing.T) {
	t.Parallel()

	cache := NewSignalCache()
	if len(cache.Signals()) != 0 {
		t.Error("new cache should be empty")
	}
	if !cache.UpdatedAt().IsZero() {
		t.Error("new cache should have a zero update time")
	}

	cache.Set([]types.Signal{{ID: "0"}, {ID: "1"}})
	signals := cache.Signals()
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
	if time.Since(cache.UpdatedAt()) > time.Minute {
		t.Error("update time was not refreshed")
	}

	// The returned slice is a copy; mutating it must not touch the cache.
	signals[0].ID = "mutated"
	if cache.Signals()[0].ID != "0" {
		t.Error("cache contents were mutated through the returned slice")
	}
}
