// Copyright 2025 Reelworthy
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reelworthy/cinedex/catalog"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/ratelimit"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// DefaultSiteURL is the public site used for provenance URLs.
const DefaultSiteURL = "https://www.themoviedb.org"

// DefaultRegion is the watch-provider region used when none is configured.
const DefaultRegion = "US"

// Client implements catalog.Source against a TMDB-style HTTP API.
type Client struct {
	baseURL    string
	siteURL    string
	apiKey     string
	region     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ catalog.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used for self-hosted mirrors
// and tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithSiteURL overrides the public site used for provenance URLs.
func WithSiteURL(siteURL string) Option {
	return func(c *Client) {
		if siteURL != "" {
			c.siteURL = siteURL
		}
	}
}

// WithRegion sets the watch-provider region (ISO 3166-1 code).
func WithRegion(region string) Option {
	return func(c *Client) {
		if region != "" {
			c.region = region
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a catalog client. apiKey is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		siteURL:    DefaultSiteURL,
		apiKey:     apiKey,
		region:     DefaultRegion,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("component", "tmdb-client")
	return c, nil
}

// FetchPage retrieves one page of the discover listing for a release year.
// An empty slice signals partition exhaustion.
func (c *Client) FetchPage(ctx context.Context, year, page int) ([]core.CatalogItem, error) {
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("primary_release_year", strconv.Itoa(year))
	query.Set("page", strconv.Itoa(page))
	query.Set("sort_by", "popularity.desc")

	var resp discoverResponse
	if err := c.get(ctx, "/discover/movie", query, &resp); err != nil {
		return nil, err
	}

	// Requests past the listing's end return an empty results array
	if page > resp.TotalPages {
		return nil, nil
	}

	items := make([]core.CatalogItem, 0, len(resp.Results))
	for _, movie := range resp.Results {
		items = append(items, core.CatalogItem{
			ID:          movie.ID,
			Title:       movie.Title,
			Synopsis:    movie.Overview,
			ReleaseDate: movie.ReleaseDate,
			Rating:      movie.VoteAverage,
			Year:        year,
			SourceURL:   fmt.Sprintf("%s/movie/%d", c.siteURL, movie.ID),
		})
	}

	c.logger.Debug("fetched catalog page",
		"year", year, "page", page, "items", len(items), "total_pages", resp.TotalPages)
	return items, nil
}

// FetchEnrichment retrieves the distribution channels for an item in the
// configured region. Streaming, free and ad-supported channels are merged.
func (c *Client) FetchEnrichment(ctx context.Context, itemID int64) (core.EnrichmentRecord, error) {
	query := url.Values{}
	query.Set("api_key", c.apiKey)

	var resp providersResponse
	path := fmt.Sprintf("/movie/%d/watch/providers", itemID)
	if err := c.get(ctx, path, query, &resp); err != nil {
		return core.EnrichmentRecord{ItemID: itemID}, err
	}

	record := core.EnrichmentRecord{ItemID: itemID}
	region, ok := resp.Results[c.region]
	if !ok {
		return record, nil
	}

	seen := make(map[string]bool)
	for _, group := range [][]provider{region.Flatrate, region.Free, region.Ads} {
		for _, p := range group {
			if p.ProviderName == "" || seen[p.ProviderName] {
				continue
			}
			seen[p.ProviderName] = true
			record.Providers = append(record.Providers, p.ProviderName)
		}
	}

	return record, nil
}

// get performs one GET request and decodes the JSON body into out.
// Auth failures are marked permanent so the retry executor surfaces them
// immediately; quota responses stay retryable.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return ratelimit.Permanent(fmt.Errorf("%w: status %d", catalog.ErrUnauthorized, resp.StatusCode))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", catalog.ErrQuotaExceeded, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", catalog.ErrBadResponse, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", catalog.ErrBadResponse, path, err)
	}

	return nil
}
