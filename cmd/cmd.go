// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Log out and discard the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session state",
				Action: r.AuthStatus,
			},
			{
				Name:   "whoami",
				Usage:  "Show the authenticated user's profile",
				Action: r.AuthWhoami,
			},
			{
				Name:  "profile",
				Usage: "Update your display name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "New display name",
						Required: true,
					},
				},
				Action: r.AuthProfile,
			},
		},
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Playlists per page",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Read from the local cache instead of the API",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist with its tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "create",
				Usage: "Create a new playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Playlist tag (repeatable)",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "update",
				Usage: "Update a playlist's name, description, or tags",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New playlist name",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "New playlist description",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Replacement tag set (repeatable)",
					},
				},
				Action: r.PlaylistUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "add",
				Usage: "Add a release from your collection to a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist-id",
						Usage:    "Playlist to add to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "release-id",
						Usage:    "Collection release to add",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "position",
						Usage: "Side/track position on the release (e.g. A1)",
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist-id",
						Usage:    "Playlist to remove from",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "track-id",
						Usage:    "Track to remove",
						Required: true,
					},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "reorder",
				Usage: "Persist a full track ordering (comma-separated track IDs)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "order"},
				},
				Action: r.PlaylistReorder,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to CSV, Markdown, or plain text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, or text",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (file or directory depending on format)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// searchCommand handles catalog search and local search history
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Discogs catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "Result page",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per page",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
		Commands: []*cli.Command{
			{
				Name:  "release",
				Usage: "Show full release details by Discogs release ID",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SearchRelease,
			},
			{
				Name:  "history",
				Usage: "Show recent committed searches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Entries to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Clear the history instead of listing it",
					},
				},
				Action: r.SearchHistory,
			},
		},
	}
}

// collectionCommand handles operations on the synced Discogs collection
func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "collection",
		Aliases: []string{"col"},
		Usage:   "Browse and sync your record collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List collection releases",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Releases per page",
						Value: 50,
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort field: artist_name, title, year, added_to_discogs_at",
						Value: "artist_name",
					},
					&cli.StringFlag{
						Name:  "order",
						Usage: "Sort order: asc or desc",
						Value: "asc",
					},
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Free-text filter over title and artist",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CollectionList,
			},
			{
				Name:  "show",
				Usage: "Show one collection release with its tracklist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CollectionShow,
			},
			{
				Name:   "sync",
				Usage:  "Sync the collection from Discogs",
				Action: r.CollectionSync,
			},
		},
	}
}

// discogsCommand handles Discogs account linking
func discogsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "discogs",
		Usage: "Link or unlink your Discogs account",
		Commands: []*cli.Command{
			{
				Name:  "connect",
				Usage: "Link a Discogs account via OAuth",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.DiscogsConnect,
			},
			{
				Name:   "disconnect",
				Usage:  "Unlink the Discogs account",
				Action: r.DiscogsDisconnect,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the local cache database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// apiCommand handles direct API calls for debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Action:  r.TUI,
	}
}
