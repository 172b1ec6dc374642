// Package session owns the authenticated session: the bearer token, its
// refresh capability, and persistence across runs.
//
// # Provider
//
// [Provider] is the read surface the request pipeline consumes: Current returns
// the session on hand (nil when logged out), Refresh forces a token refresh
// against the auth server. Both return a nullable session rather than an error
// when no one is logged in.
//
// # Refresh coalescing
//
// Several API calls can hit 401 at the same time. [Manager] funnels every
// Refresh through a [singleflight.Group], so one network refresh serves all
// concurrent callers and the refresh token is rotated exactly once.
//
// # Storage
//
// [Store] keeps the session in the system keychain via zalando/go-keyring,
// falling back to a 0600 JSON file under the config directory when no keychain
// is available (headless machines, CI).
package session
