package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	appLog "safarifame/internal/log"
)

const defaultFetchTimeout = 15 * time.Second

// Source is the calendar feed the fight list is built from.
type Source struct {
	// ID is a short label used in logs and metrics.
	ID string
	// URL is the ICS endpoint.
	URL string
}

// FetchResult contains the outcome of fetching a feed.
type FetchResult struct {
	Source    Source
	Body      []byte // raw feed, fresh or cached
	FromCache bool   // true if the body came from disk instead of the network
}

// FetchErrorKind classifies retrieval failures for callers that need to
// tell a dead network apart from an unhappy server.
type FetchErrorKind string

const (
	FetchErrNetwork     FetchErrorKind = "network"
	FetchErrStatus      FetchErrorKind = "status"
	FetchErrNotModified FetchErrorKind = "not_modified"
	FetchErrRead        FetchErrorKind = "read"
	FetchErrConfig      FetchErrorKind = "config"
)

// FetchError is returned by FetchOne when no body (fresh or cached) is
// available.
type FetchError struct {
	Kind       FetchErrorKind
	SourceID   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ics fetch %s (%s): status %d: %v", e.SourceID, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ics fetch %s (%s): %v", e.SourceID, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// cacheEntry is meta.json: the validators needed for the next conditional GET.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher retrieves ICS feeds with HTTP caching (ETag / Last-Modified)
// backed by a directory on disk.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher returns a Fetcher caching under cacheDir.
//
// cacheDir is the base directory where per-URL cache subdirectories and
// metadata will be stored. A zero timeout means 15s.
func NewFetcher(cacheDir string, timeout time.Duration) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		cacheDir: cacheDir,
	}
}

// FetchOne downloads src, revalidating against the cached copy when one exists.
// When the network or the server fails and a cached body exists, the
// cached body is returned with FromCache set.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, &FetchError{Kind: FetchErrConfig, SourceID: src.ID, Err: errors.New("source URL is empty")}
	}

	cachePath := f.cachePathForURL(src.URL)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, fmt.Errorf("ics cache dir: %w", err)
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, &FetchError{Kind: FetchErrConfig, SourceID: src.ID, Err: err}
	}

	// Conditional headers only make sense if we can serve the cached body.
	if len(cachedBody) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	appLog.Debug("feed fetch start", "id", src.ID, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("feed unreachable, serving cached copy", err, "id", src.ID, "url", redactURL(src.URL))
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, &FetchError{Kind: FetchErrNetwork, SourceID: src.ID, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, &FetchError{
				Kind:       FetchErrNotModified,
				SourceID:   src.ID,
				StatusCode: resp.StatusCode,
				Err:        errors.New("received 304 Not Modified but no cached body available"),
			}
		}
		appLog.Info("feed unchanged since last fetch", "id", src.ID, "url", redactURL(src.URL))
		return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, &FetchError{Kind: FetchErrRead, SourceID: src.ID, StatusCode: resp.StatusCode, Err: readErr}
		}

		newMeta := cacheEntry{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("feed cache write failed", err, "id", src.ID, "url", redactURL(src.URL))
		}

		appLog.Info("feed fetched", "id", src.ID, "url", redactURL(src.URL), "status", resp.StatusCode, "bytes", len(body))
		return FetchResult{Source: src, Body: body, FromCache: false}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("feed returned error status, serving cached copy", errors.New(resp.Status), "id", src.ID, "url", redactURL(src.URL), "status", resp.StatusCode)
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, &FetchError{Kind: FetchErrStatus, SourceID: src.ID, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	// First 16 hex chars as directory name.
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.ics"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// body.ics before meta.json
	if err := os.WriteFile(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host. Private calendar URLs embed
// their access token in the path.
// Private calendar URLs carry their secret in the path, so only the
// scheme and host are kept:
//
//	https://calendar.google.com/calendar/ical/abc/private-xyz/basic.ics
//	-> https://calendar.google.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	_, rest, found := cutScheme(u)
	if !found {
		return "ics://...(redacted)"
	}
	host := rest
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' || rest[i] == '?' {
			host = rest[:i]
			break
		}
	}
	return u[:len(u)-len(rest)] + host + redactedSuffix
}

func cutScheme(u string) (scheme, rest string, found bool) {
	for i := 0; i+2 < len(u); i++ {
		if u[i:i+3] == "://" {
			return u[:i], u[i+3:], true
		}
	}
	return "", "", false
}
