// Package oembed resolves YouTube video metadata for the post-listening
// reveal. Lookups are best-effort: any failure is reported as "metadata
// unavailable", never as an error, so a dead endpoint can never block
// annotation or playback.
package oembed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultEndpoint = "https://www.youtube.com/oembed"
	cacheTTL        = 24 * time.Hour
)

// Metadata is the subset of the oEmbed response shown at reveal time.
type Metadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type Client struct {
	endpoint string
	http     *http.Client
	rdb      *redis.Client
}

// NewClient builds a lookup client. endpoint may be empty to use the public
// YouTube oEmbed endpoint; rdb may be nil to disable caching.
func NewClient(endpoint string, rdb *redis.Client) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		rdb: rdb,
	}
}

// WatchURL is the public page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Lookup fetches metadata for a video id. The second return value reports
// availability; false means the caller should render an explicit
// "unavailable" state.
func (c *Client) Lookup(ctx context.Context, videoID string) (Metadata, bool) {
	if videoID == "" {
		return Metadata{}, false
	}

	cacheKey := "oembed:" + videoID
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var meta Metadata
			if json.Unmarshal(raw, &meta) == nil {
				return meta, true
			}
		}
	}

	val := url.Values{}
	val.Set("url", WatchURL(videoID))
	val.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+val.Encode(), nil)
	if err != nil {
		log.Printf("oembed: build request for %s: %v", videoID, err)
		return Metadata{}, false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("oembed: lookup %s: %v", videoID, err)
		return Metadata{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("oembed: lookup %s: status %d", videoID, resp.StatusCode)
		return Metadata{}, false
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		log.Printf("oembed: decode %s: %v", videoID, err)
		return Metadata{}, false
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(meta); err == nil {
			if err := c.rdb.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
				log.Printf("oembed: cache %s: %v", videoID, err)
			}
		}
	}

	return meta, true
}
