package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/crate/internal/models"
)

// CollectionAPI implements [CollectionService] over the authenticated [Client].
type CollectionAPI struct {
	client *Client
}

var _ CollectionService = (*CollectionAPI)(nil)

// NewCollectionAPI creates a collection service backed by the crate API.
func NewCollectionAPI(client *Client) *CollectionAPI {
	return &CollectionAPI{client: client}
}

// ListReleases lists collection releases with pagination, sorting, and filtering.
func (c *CollectionAPI) ListReleases(ctx context.Context, opts ReleaseListOptions) (*models.Page[models.Release], error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 50
	}
	if opts.SortBy == "" {
		opts.SortBy = "artist_name"
	}
	if opts.SortOrder == "" {
		opts.SortOrder = "asc"
	}

	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", opts.Page))
	params.Set("page_size", fmt.Sprintf("%d", opts.PageSize))
	params.Set("sort_by", opts.SortBy)
	params.Set("sort_order", opts.SortOrder)
	if opts.Search != "" {
		params.Set("search", opts.Search)
	}

	var result models.Page[models.Release]
	if err := c.client.Get(ctx, "/collection?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetRelease retrieves a single collection release.
func (c *CollectionAPI) GetRelease(ctx context.Context, releaseID string) (*models.Release, error) {
	var release models.Release
	path := fmt.Sprintf("/collection/%s", url.PathEscape(releaseID))
	if err := c.client.Get(ctx, path, &release); err != nil {
		return nil, err
	}

	return &release, nil
}

// ReleaseTracks retrieves the tracklist for a collection release.
func (c *CollectionAPI) ReleaseTracks(ctx context.Context, releaseID string) (*models.ReleaseDetail, error) {
	var detail models.ReleaseDetail
	path := fmt.Sprintf("/collection/%s/tracks", url.PathEscape(releaseID))
	if err := c.client.Get(ctx, path, &detail); err != nil {
		return nil, err
	}

	return &detail, nil
}

// SyncCollection reconciles the local collection with Discogs.
//
// The server walks the full Discogs collection, so this can take a while on
// large crates; callers should pass a generous context deadline.
func (c *CollectionAPI) SyncCollection(ctx context.Context) (*models.SyncSummary, error) {
	var summary models.SyncSummary
	if err := c.client.Post(ctx, "/collection/sync", nil, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}
