// Package services implements typed clients for the crate API: playlists,
// catalog search, collection, and user/profile operations.
//
// # Request Pipeline
//
// All calls go through [Client], which reads the session from a
// [session.Provider] at call time and attaches the bearer token. On a 401 the
// pipeline forces exactly one session refresh and reissues the original
// request once; the retried call's outcome is final, so a genuinely revoked
// authorization surfaces as an API error instead of looping.
//
// Failure taxonomy:
//   - [shared.ErrNotAuthenticated] : no session at call time, nothing sent
//   - [shared.ErrSessionExpired] : refresh produced no session, re-login needed
//   - [shared.StatusError] : non-2xx after at most one retry, wraps
//     [shared.ErrAPIRequest] and carries the server's detail message
//   - [shared.ErrRequestFailed] : transport-level failure
//
// # Service Clients
//
// Each API area gets an interface ([PlaylistService], [CatalogService],
// [CollectionService], [UserService]) and an HTTP implementation over the
// shared pipeline, so controllers and tests depend on behavior rather than
// transport.
//
// [CatalogAPI] additionally rate limits itself with golang.org/x/time/rate;
// the catalog upstream (Discogs) allows 60 requests per minute.
package services
