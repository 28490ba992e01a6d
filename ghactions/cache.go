package ghactions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// The cache API is only documented through the official client's source;
// GitHub supports pinning action versions, so breaking changes to it are not
// expected to be frequent.
const acceptHeader = "application/json;api-version=6.0-preview.1"

var (
	// ErrNoRuntimeToken indicates a missing ACTIONS_RUNTIME_TOKEN value.
	ErrNoRuntimeToken = errors.New("did not find a runtime token in the ACTIONS_RUNTIME_TOKEN environment variable")
	// ErrNoEndpointURL indicates a missing ACTIONS_CACHE_URL value.
	ErrNoEndpointURL = errors.New("did not find the endpoint URL in the ACTIONS_CACHE_URL environment variable")
)

// RateLimitError reports a request the server refused with rate limiting,
// asking to wait before a retry or follow-up request.
type RateLimitError struct {
	// RetryAfter is the requested wait in seconds.
	RetryAfter int
	// Status is the http status the request was refused with.
	Status int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("server rate limited the request, asking to wait %d seconds", e.RetryAfter)
}

// CacheHit holds the metadata of a cache entry matched by a lookup.
type CacheHit struct {
	// Key is the full key under which the found entry was stored.
	Key string `json:"cacheKey"`
	// Scope is the branch which stored the entry.
	Scope string `json:"scope"`
}

// Cache is a client for the GitHub Actions cache API.
// Reusing a single client for multiple requests is potentially more
// efficient due to connection reuse.
type Cache struct {
	client    *http.Client
	token     string
	endpoint  string
	useragent string
}

// NewCache creates a new client instance, reading the runtime token and the
// endpoint from the environment the runner provides to every job step.
// The userAgent should identify the program using this client.
func NewCache(userAgent string) (*Cache, error) {
	token := os.Getenv("ACTIONS_RUNTIME_TOKEN")
	if token == "" {
		return nil, ErrNoRuntimeToken
	}

	endpoint := os.Getenv("ACTIONS_CACHE_URL")
	if endpoint == "" {
		return nil, ErrNoEndpointURL
	}

	return &Cache{
		client:    &http.Client{},
		token:     token,
		endpoint:  strings.TrimRight(endpoint, "/") + "/_apis/artifactcache",
		useragent: userAgent,
	}, nil
}

// GetURL performs a cache lookup and returns the download URL for a
// matching entry, or a nil hit when nothing matched.
//
// keySpace is an identifier, usually a hex string, which must match exactly;
// keyPrefixes are looked up in order of preference.
func (c *Cache) GetURL(ctx context.Context, keySpace string, keyPrefixes []string) (*CacheHit, string, error) {
	query := url.Values{
		"keys":    []string{strings.Join(keyPrefixes, ",")},
		"version": []string{keySpace},
	}

	resp, err := c.do(ctx, http.MethodGet, c.endpoint+"/cache?"+query.Encode(), nil, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, "", nil
	}

	if err := errorForResponse(resp); err != nil {
		return nil, "", err
	}

	var payload struct {
		CacheHit
		Location string `json:"archiveLocation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", fmt.Errorf("failed to decode cache lookup response: %w", err)
	}

	return &payload.CacheHit, payload.Location, nil
}

// GetBytes performs a cache lookup and returns the content of a matching
// entry. See [Cache.GetURL] for details about the lookup.
func (c *Cache) GetBytes(ctx context.Context, keySpace string, keys []string) (*CacheHit, []byte, error) {
	hit, location, err := c.GetURL(ctx, keySpace, keys)
	if err != nil || hit == nil {
		return nil, nil, err
	}

	// the archive location is a pre-signed URL, no api headers here
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.useragent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download cache entry: %w", err)
	}
	defer resp.Body.Close()

	if err := errorForResponse(resp); err != nil {
		return nil, nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return hit, data, nil
}

// PutBytes stores an entry in the cache under the given key.
// Storage is a three step conversation: reserve an id for the key, upload
// the content as a ranged chunk, then finalize the entry with its size.
func (c *Cache) PutBytes(ctx context.Context, keySpace, key string, data []byte) error {
	reservation := struct {
		Key     string `json:"key"`
		Version string `json:"version"`
	}{Key: key, Version: keySpace}

	body, err := json.Marshal(reservation)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint+"/caches", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := errorForResponse(resp); err != nil {
		return err
	}

	var reserved struct {
		CacheID int64 `json:"cacheId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reserved); err != nil {
		return fmt.Errorf("failed to decode cache reservation response: %w", err)
	}

	entry := fmt.Sprintf("%s/caches/%d", c.endpoint, reserved.CacheID)

	if len(data) > 0 {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, entry, bytes.NewReader(data))
		if err != nil {
			return err
		}
		c.headers(req, "application/octet-stream")
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/*", 0, len(data)-1))

		upload, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to upload cache entry: %w", err)
		}
		defer upload.Body.Close()

		if err := errorForResponse(upload); err != nil {
			return err
		}
	}

	finalize, err := json.Marshal(struct {
		Size int `json:"size"`
	}{Size: len(data)})
	if err != nil {
		return err
	}

	final, err := c.do(ctx, http.MethodPost, entry, bytes.NewReader(finalize), "application/json")
	if err != nil {
		return err
	}
	defer final.Body.Close()

	return errorForResponse(final)
}

// do performs an authenticated api request.
func (c *Cache) do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	c.headers(req, contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cache api request failed: %w", err)
	}

	return resp, nil
}

// headers adds the authorization, accept and user agent headers needed for
// an api request.
func (c *Cache) headers(req *http.Request, contentType string) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.useragent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

// errorForResponse maps failed responses to errors, surfacing rate limiting
// as [RateLimitError] when the server asks for a wait.
func errorForResponse(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	if retry, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		return &RateLimitError{RetryAfter: retry, Status: resp.StatusCode}
	}

	return fmt.Errorf("cache api request failed: http%d", resp.StatusCode)
}
