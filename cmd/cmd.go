// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
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

// catalogCommand handles catalog browsing operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Browse and search the media catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog contents with filters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Filter by kind (movie, drama, show, kpop, doc)",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort field (popularity, vote_average, release_date, title)",
					},
					&cli.StringFlag{
						Name:  "order",
						Usage: "Sort order (asc or desc)",
						Value: "desc",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of contents to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "search",
				Usage: "Search the catalog by title or summary",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of contents to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CatalogSearch,
			},
			{
				Name:  "popular",
				Usage: "List most popular contents",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of contents to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CatalogPopular,
			},
			{
				Name:  "import",
				Usage: "Import catalog contents from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file of contents",
						Required: true,
					},
				},
				Action: r.CatalogImport,
			},
		},
	}
}

// packCommand handles pack creation and lookup
func packCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "Create and inspect media packs",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new pack from catalog contents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Pack name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "message",
						Usage: "Message to the recipient",
					},
					&cli.StringSliceFlag{
						Name:  "content",
						Usage: "Catalog content ID (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "track",
						Usage: "Music provider track ID (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PackCreate,
			},
			{
				Name:  "show",
				Usage: "Show a pack by its share slug",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "slug",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "markdown",
						Usage: "Output Markdown",
					},
				},
				Action: r.PackShow,
			},
		},
	}
}

// serveCommand starts the HTTP API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive pack creation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for pack creation",
		Action:  r.TUI,
	}
}
