package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet performs a direct authenticated GET and prints the raw JSON response.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path required", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var raw json.RawMessage
	if err := r.client.Get(ctx, path, &raw); err != nil {
		return err
	}

	return r.writeRawJSON(raw, cmd.Bool("pretty"))
}

// APIPost performs a direct authenticated POST with a JSON body and prints the response.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path required", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body json.RawMessage
	if err := json.Unmarshal([]byte(cmd.String("data")), &body); err != nil {
		return fmt.Errorf("%w: --data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	var raw json.RawMessage
	if err := r.client.Post(ctx, path, body, &raw); err != nil {
		return err
	}

	return r.writeRawJSON(raw, cmd.Bool("pretty"))
}
