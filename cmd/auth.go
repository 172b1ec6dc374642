package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs a password login and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	if password == "" {
		r.writePlain("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	if password == "" {
		return fmt.Errorf("%w: password required", shared.ErrMissingArgument)
	}

	r.logger.Info("logging in", "email", email)

	sess, err := r.sessions.Login(ctx, email, password)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Logged in as %s\n", sess.Email)
}

// AuthLogout discards the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.sessions.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the stored session state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.sessions.Current(ctx)
	if err != nil {
		return err
	}

	if sess == nil {
		return r.writePlain("✗ Not logged in\n")
	}

	r.writePlain("✓ Logged in as %s\n", sess.Email)
	if sess.Expired() {
		r.writePlain("Session: expired, will refresh on next request\n")
	} else if !sess.Token.Expiry.IsZero() {
		r.writePlain("Session: valid until %s\n", sess.Token.Expiry.Format("15:04:05 MST"))
	}
	return nil
}

// AuthProfile updates the user's display name.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	if name == "" {
		return fmt.Errorf("%w: --name required", shared.ErrMissingArgument)
	}

	user, err := r.users.UpdateProfile(ctx, name)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Display name set to %s\n", user.DisplayName)
}

// AuthWhoami fetches and prints the authenticated user's profile.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.users.Me(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader("Profile")
	r.writePlain("Email: %s\n", user.Email)
	if user.DisplayName != "" {
		r.writePlain("Display name: %s\n", user.DisplayName)
	}
	if user.DiscogsUsername != "" {
		r.writePlain("Discogs: %s (linked)\n", user.DiscogsUsername)
	} else {
		r.writePlain("Discogs: not linked\n")
	}
	return nil
}
