// Package airtime is a thin read-only client for the public status API of
// an Airtime broadcast-automation server. Only the unauthenticated
// endpoints are reachable from this system; anything involving uploads or
// scheduling happens manually in the Airtime dashboard and is merely
// annotated on our side.
package airtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to one Airtime instance. The embedded http.Client carries a
// fixed timeout and is never mutated after construction; every call builds
// its own request with its own header map, so concurrent requests cannot
// leak headers into each other.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the given Airtime base URL (without the /api
// suffix). A single slow or unreachable upstream call gives up after ten
// seconds; there are no retries.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Station is the station block of the live-info-v2 payload.
type Station struct {
	SchedulerTime string `json:"schedulerTime"`
	ListenerCount int    `json:"listener_count"`
	MaxListeners  int    `json:"max_listeners"`
	Uptime        string `json:"uptime"`
}

// BroadcastShow is a show entry as Airtime reports it. Numeric-looking
// fields arrive as strings in several Airtime versions, so they are kept
// as strings and parsed by the caller where needed.
type BroadcastShow struct {
	ID             json.Number `json:"id"`
	Name           string      `json:"name"`
	DJ             string      `json:"dj"`
	Description    string      `json:"description"`
	Genre          string      `json:"genre"`
	Starts         string      `json:"starts"`
	Ends           string      `json:"ends"`
	ImagePath      string      `json:"image_path"`
	Duration       string      `json:"duration"`
	Elapsed        string      `json:"elapsed"`
	StartTimestamp string      `json:"start_timestamp"`
	InstanceID     json.Number `json:"instance_id"`
	Record         int         `json:"record"`
}

// LiveInfoV2 mirrors /api/live-info-v2.
type LiveInfoV2 struct {
	Station     *Station        `json:"station"`
	CurrentShow *BroadcastShow  `json:"currentShow"`
	NextShow    []BroadcastShow `json:"nextShow"`
}

// LiveInfo mirrors the relevant parts of the older /api/live-info payload.
type LiveInfo struct {
	Version string `json:"version"`
	Shows   struct {
		Current *BroadcastShow  `json:"current"`
		Next    []BroadcastShow `json:"next"`
	} `json:"shows"`
}

// WeekInfo maps lowercase day names (monday..sunday) to scheduled shows.
type WeekInfo map[string][]BroadcastShow

// LiveInfoV2 fetches the current playout state.
func (c *Client) LiveInfoV2(ctx context.Context) (*LiveInfoV2, error) {
	var out LiveInfoV2
	if err := c.get(ctx, "/api/live-info-v2", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LiveInfo fetches the legacy status payload, which carries richer show
// metadata (dj, genre, instance id) than live-info-v2.
func (c *Client) LiveInfo(ctx context.Context) (*LiveInfo, error) {
	var out LiveInfo
	if err := c.get(ctx, "/api/live-info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeekInfo fetches the weekly schedule. Airtime mixes day arrays with
// scalar bookkeeping keys in the same object, so unknown-shaped values are
// skipped rather than failing the decode.
func (c *Client) WeekInfo(ctx context.Context) (WeekInfo, error) {
	var raw map[string]json.RawMessage
	if err := c.get(ctx, "/api/week-info", &raw); err != nil {
		return nil, err
	}
	week := WeekInfo{}
	for day, msg := range raw {
		var shows []BroadcastShow
		if err := json.Unmarshal(msg, &shows); err != nil {
			continue // e.g. "weekStartDate" scalar
		}
		week[day] = shows
	}
	return week, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	// Some Airtime deployments sit behind proxies that reject empty agents.
	req.Header.Set("User-Agent", "station-api/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("airtime: unexpected status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("airtime: decode %s: %w", path, err)
	}
	return nil
}
