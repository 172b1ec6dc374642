package main

import (
	"context"
	"time"

	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// DiscogsConnect links a Discogs account.
//
// A loopback server receives the redirect after the user grants access in the
// browser; the captured verifier is handed to the backend, which performs the
// token exchange and stores the Discogs credentials server-side.
func (r *Runner) DiscogsConnect(ctx context.Context, cmd *cli.Command) error {
	// State is only known after the authorize call, so bind the listener
	// first and register its URL.
	loopback, err := server.NewLoopback("", r.logger)
	if err != nil {
		return err
	}
	go loopback.Serve()

	auth, err := r.users.DiscogsAuthorize(ctx, loopback.URL())
	if err != nil {
		loopback.Shutdown()
		return err
	}

	loopback.SetState(auth.State)

	if cmd.Bool("no-browser") {
		r.writePlain("Visit this URL to authorize:\n%s\n", auth.AuthorizationURL)
	} else {
		r.writePlain("Opening browser for Discogs authorization...\n")
		if err := shared.OpenBrowser(auth.AuthorizationURL); err != nil {
			r.logger.Warnf("failed to open browser: %v", err)
			r.writePlain("Visit this URL to authorize:\n%s\n", auth.AuthorizationURL)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, err := loopback.Wait(waitCtx)
	if err != nil {
		return err
	}

	user, err := r.users.DiscogsCallback(ctx, result.Verifier, result.State)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Discogs account linked: %s\n", user.DiscogsUsername)
}

// DiscogsDisconnect unlinks the Discogs account.
func (r *Runner) DiscogsDisconnect(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.users.DiscogsDisconnect(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Discogs account unlinked\n")
}
