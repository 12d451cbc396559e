// Package geocode resolves coordinates to a human readable address through an
// OpenCage compatible reverse geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/apex/log"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 60 * time.Second
)

var ErrNoResult = errors.New("geocoder returned no result")

// Reverser turns a coordinate pair into an address.
type Reverser interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	cache      *cache
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		cache:      newCache(DefaultCacheTTL),
	}
}

type response struct {
	Results []struct {
		Formatted string `json:"formatted"`
	} `json:"results"`
}

// Reverse returns the first formatted address for the coordinates. Results are
// cached for DefaultCacheTTL.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	key := FormatCoordinates(lat, lng)
	if address, ok := c.cache.get(key, time.Now()); ok {
		return address, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("key", c.apiKey)
	q.Set("no_annotations", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(body.Results) == 0 || body.Results[0].Formatted == "" {
		return "", ErrNoResult
	}

	address := body.Results[0].Formatted
	c.cache.put(key, address, time.Now())
	return address, nil
}

// lookupTimeout bounds a single ResolveAddress call regardless of the Reverser.
var lookupTimeout = DefaultTimeout

// ResolveAddress reverse geocodes and falls back to the raw coordinate string
// on any failure other than cancellation of ctx, including a lookup that runs
// past lookupTimeout.
func ResolveAddress(ctx context.Context, r Reverser, lat, lng float64) (string, error) {
	fallback := FormatCoordinates(lat, lng)
	if r == nil {
		return fallback, nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	address, err := r.Reverse(lookupCtx, lat, lng)
	if err == nil {
		return address, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	log.WithError(err).WithField("coordinates", fallback).Warn("Reverse geocoding failed, using coordinates")
	return fallback, nil
}

// FormatCoordinates renders "lat, lng" with six decimals.
func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

type cacheEntry struct {
	address string
	expires time.Time
}

type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *cache) get(key string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if now.After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.address, true
}

func (c *cache) put(key, address string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{address: address, expires: now.Add(c.ttl)}
}
