package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deepcut/internal/actions"

	"github.com/urfave/cli/v2"
)

func main() {
	noInput := &cli.BoolFlag{
		Name:  "no-input",
		Usage: "Never prompt; fail when a required value is missing",
	}

	app := &cli.App{
		Name:     "deepcut",
		Usage:    "deepcut builds Spotify playlists from the full catalog of one or more artists.",
		Metadata: map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				EnvVars: []string{"DEEPCUT_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Also write log lines to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log at debug level",
			},
		},
		Before: actions.Setup,
		After:  actions.Teardown,
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize deepcut with your Spotify account",
				Action: actions.Login,
			},
			{
				Name:   "logout",
				Usage:  "Remove the cached token",
				Action: actions.Logout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the logged in account",
				Action: actions.Whoami,
			},
			{
				Name:      "search",
				Usage:     "Find the best matching artist for each name",
				ArgsUsage: "<artist>...",
				Action:    actions.Search,
			},
			{
				Name:  "build",
				Usage: "Collect an artist catalog into a playlist",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Artist name, repeat for more artists",
					},
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "TRACK, POPULARITY, TOP_TRACKS or ICEBERG",
					},
					&cli.StringSliceFlag{
						Name:  "album-types",
						Usage: "Album types to include: album, single, compilation",
					},
					&cli.BoolFlag{
						Name:  "exclude-short",
						Usage: "Skip tracks shorter than one minute",
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "NEW, OVERWRITE or APPEND",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Name of the new playlist",
					},
					&cli.StringFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "ID or URL of the playlist to overwrite or append to",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the new playlist public",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Description of the new playlist",
					},
					&cli.BoolFlag{
						Name:  "no-cover",
						Usage: "Do not set the playlist cover",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Collect tracks without touching any playlist",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write the collected tracks to a CSV file (implies --dry-run)",
					},
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "Print progress as plain lines instead of the live view",
					},
					noInput,
				},
				Action: actions.Build,
			},
			{
				Name:      "check",
				Usage:     "Show an existing playlist",
				ArgsUsage: "[playlist]",
				Flags:     []cli.Flag{noInput},
				Action:    actions.Check,
			},
			{
				Name:      "delete",
				Usage:     "Remove a playlist from your library",
				ArgsUsage: "[playlist]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
					noInput,
				},
				Action: actions.Delete,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
