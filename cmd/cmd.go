// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, libraryCommand, stationCommand, playlistCommand, uploadCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loginCommand obtains and persists a bearer token
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate with the RadioCMS backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account username",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password",
			},
			&cli.StringFlag{
				Name:  "curl",
				Usage: "cURL command copied from an authenticated dashboard session",
			},
			&cli.StringFlag{
				Name:  "curl-file",
				Usage: "Path to a file containing the cURL command",
			},
		},
		Action: r.Login,
	}
}

// libraryCommand handles media catalog operations
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Media catalog operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the media catalog, falling back to the local cache offline",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "show",
				Usage: "Show one catalog item in full detail",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryShow,
			},
			{
				Name:  "rm",
				Usage: "Delete a catalog item from the backend",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.LibraryRemove,
			},
		},
	}
}

// stationCommand handles station listing
func stationCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "station",
		Usage: "Broadcast station operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List selectable stations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StationList,
			},
		},
	}
}

// playlistCommand handles station playlist operations
func playlistCommand(r *Runner) *cli.Command {
	stationFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "station",
			Aliases: []string{"s"},
			Usage:   "Station id or name (defaults to api.default_station)",
		}
	}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Station playlist operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List a station's playlist in playback order",
				Flags: []cli.Flag{
					stationFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "add",
				Usage: "Assign a library item to a station",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "item",
					},
				},
				Flags: []cli.Flag{
					stationFlag(),
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "rm",
				Usage: "Remove an assignment, keeping the library item",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "reorder",
				Usage: "Move one playlist row to a new position",
				Flags: []cli.Flag{
					stationFlag(),
					&cli.IntFlag{
						Name:     "from",
						Usage:    "Current position (1-based)",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Target position (1-based)",
						Required: true,
					},
				},
				Action: r.PlaylistReorder,
			},
			{
				Name:  "export",
				Usage: "Export a station's playlist",
				Flags: []cli.Flag{
					stationFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown or text",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base path for exported files (csv format only)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// uploadCommand creates a catalog item from a local audio file
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload an audio file to the media catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "audio",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "Item title (defaults to the file's embedded tag)",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Artist name (defaults to the file's embedded tag)",
			},
			&cli.StringFlag{
				Name:  "genre",
				Usage: "Genre (defaults to the file's embedded tag)",
			},
			&cli.StringFlag{
				Name:  "rotation",
				Usage: "Rotation weight: high, medium or low",
				Value: "medium",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Media type: SONG, ADVERT, PODCAST, NEWS, VOICE or ID",
				Value: "SONG",
			},
			&cli.StringFlag{
				Name:  "cover",
				Usage: "Path to cover art image",
			},
			&cli.StringFlag{
				Name:  "lyrics",
				Usage: "Path to lyrics file",
			},
			&cli.FloatFlag{
				Name:  "intro",
				Usage: "Intro cue point in seconds",
			},
			&cli.FloatFlag{
				Name:  "vox",
				Usage: "Vocal cue point in seconds",
			},
			&cli.FloatFlag{
				Name:  "aux",
				Usage: "Aux cue point in seconds",
			},
			&cli.BoolFlag{
				Name:  "allow-skip",
				Usage: "Allow listeners to skip this item",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "clean",
				Usage: "Mark the item as clean (no explicit content)",
			},
		},
		Action: r.Upload,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the RadioCMS backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
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
				Usage: "Direct POST with a JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON request body",
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand launches the interactive console
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"console"},
		Usage:   "Launch the interactive dual-pane console",
		Action:  r.TUI,
	}
}
