// Package server provides the loopback HTTP server used during the Discogs
// connect flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] receives the redirect from Discogs after the user grants
// access. It validates the state parameter (CSRF protection), captures the
// oauth_verifier, and sends the result through a channel. The backend performs
// the actual token exchange with the captured verifier; no Discogs credentials
// ever touch this process. The handler only processes one callback to prevent
// replay.
//
// # Usage
//
// When the user runs the discogs connect command, [Loopback] starts a
// temporary server on an ephemeral localhost port, its URL is registered as
// the redirect target, and the server shuts down after one callback or when
// the context expires.
package server
