package geocode

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"googlemaps.github.io/maps"
)

// mapsClient is a singleton maps client instance.
var (
	mapsClient *maps.Client
	clientErr  error
	clientOnce sync.Once
)

// InitMapsClient initializes and returns a singleton Google Maps client.
func InitMapsClient() (*maps.Client, error) {
	clientOnce.Do(func() {
		apiKey := os.Getenv("MAPS_CREDENTIALS")
		if apiKey == "" {
			clientErr = fmt.Errorf("MAPS_CREDENTIALS environment variable not set")
			return
		}
		mapsClient, clientErr = maps.NewClient(maps.WithAPIKey(apiKey))
		if clientErr != nil {
			log.Fatalf("Failed to create maps client: %v", clientErr)
		}
	})
	return mapsClient, clientErr
}

// Cache holds reverse-geocoding results keyed by coordinates rounded to four
// decimals (~11 m). Unbounded for the session lifetime; the dataset stays
// small because it is bounded by visible signals.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func (c *Cache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	address, ok := c.entries[key]
	return address, ok
}

func (c *Cache) set(key, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = address
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheKey is the rounded-coordinate cache key for a point.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// ReverseGeocode resolves coordinates to a human-readable address, serving
// repeats from the cache. Lookup failures fall back to a plain coordinate
// string rather than erroring.
func ReverseGeocode(ctx context.Context, cache *Cache, lat, lon float64) string {
	key := CacheKey(lat, lon)
	if address, ok := cache.get(key); ok {
		return address
	}

	fallback := fmt.Sprintf("%.4f, %.4f", lat, lon)

	client, err := InitMapsClient()
	if err != nil {
		log.Printf("Geocoding unavailable: %v", err)
		return fallback
	}

	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lon},
	}
	results, err := client.ReverseGeocode(ctx, req)
	if err != nil {
		log.Printf("Reverse geocode error for %s: %v", key, err)
		return fallback
	}
	if len(results) == 0 {
		return fallback
	}

	address := results[0].FormattedAddress
	cache.set(key, address)
	return address
}

// GeocodeAddress takes an address string and returns geocoding results.
func GeocodeAddress(ctx context.Context, address string) ([]maps.GeocodingResult, error) {
	client, err := InitMapsClient()
	if err != nil {
		return nil, err
	}

	req := &maps.GeocodingRequest{
		Address: address,
	}

	// Forward geocode: get latitude and longitude for the given address.
	results, err := client.Geocode(ctx, req)
	if err != nil {
		return nil, err
	}

	return results, nil
}
