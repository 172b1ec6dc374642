package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/crate/internal/models"
)

// UserAPI implements [UserService] over the authenticated [Client].
type UserAPI struct {
	client *Client
}

var _ UserService = (*UserAPI)(nil)

// NewUserAPI creates a user service backed by the crate API.
func NewUserAPI(client *Client) *UserAPI {
	return &UserAPI{client: client}
}

// Me retrieves the authenticated user's profile.
func (u *UserAPI) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := u.client.Get(ctx, "/users/me", &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile updates the user's display name.
func (u *UserAPI) UpdateProfile(ctx context.Context, displayName string) (*models.User, error) {
	var user models.User
	body := models.UpdateProfile{DisplayName: displayName}
	if err := u.client.Patch(ctx, "/users/me", body, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// DiscogsAuthorize starts the Discogs account link flow.
func (u *UserAPI) DiscogsAuthorize(ctx context.Context, callbackURL string) (*DiscogsAuthorization, error) {
	var auth DiscogsAuthorization
	path := fmt.Sprintf("/discogs/authorize?callback_url=%s", url.QueryEscape(callbackURL))
	if err := u.client.Post(ctx, path, nil, &auth); err != nil {
		return nil, err
	}

	return &auth, nil
}

// DiscogsCallback completes the link flow with the verifier from Discogs.
func (u *UserAPI) DiscogsCallback(ctx context.Context, verifier, state string) (*models.User, error) {
	var user models.User
	body := map[string]string{
		"oauth_verifier": verifier,
		"state":          state,
	}
	if err := u.client.Post(ctx, "/discogs/callback", body, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// DiscogsDisconnect unlinks the Discogs account.
func (u *UserAPI) DiscogsDisconnect(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := u.client.Delete(ctx, "/discogs/disconnect", &user); err != nil {
		return nil, err
	}

	return &user, nil
}
