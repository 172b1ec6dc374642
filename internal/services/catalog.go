package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/crate/internal/models"
	"golang.org/x/time/rate"
)

// CatalogAPI implements [CatalogService] against the crate API's Discogs
// proxy endpoints.
//
// Requests are rate limited client-side; Discogs allows 60 authenticated
// requests per minute and throttling here keeps search-as-you-type from
// burning the budget.
type CatalogAPI struct {
	client  *Client
	limiter *rate.Limiter
}

var _ CatalogService = (*CatalogAPI)(nil)

// NewCatalogAPI creates a catalog service capped at requestsPerMinute.
func NewCatalogAPI(client *Client, requestsPerMinute int) *CatalogAPI {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	return &CatalogAPI{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute/6+1),
	}
}

// SearchReleases performs a free-text release search against the catalog.
func (c *CatalogAPI) SearchReleases(ctx context.Context, query string, page, perPage int) (*models.SearchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	path := fmt.Sprintf("/discogs/search?query=%s&page=%d&per_page=%d", url.QueryEscape(query), page, perPage)

	var result models.SearchPage
	if err := c.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Release fetches full release details by Discogs release ID.
func (c *CatalogAPI) Release(ctx context.Context, discogsReleaseID int64) (*models.ReleaseDetail, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	var detail models.ReleaseDetail
	path := fmt.Sprintf("/discogs/releases/%d", discogsReleaseID)
	if err := c.client.Get(ctx, path, &detail); err != nil {
		return nil, err
	}

	return &detail, nil
}
