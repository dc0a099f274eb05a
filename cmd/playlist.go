package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/airdeck/internal/formatter"
	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// resolveStation finds a station by id or name, falling back to the
// configured default when the flag is empty.
func (r *Runner) resolveStation(ctx context.Context, flag string) (models.Station, error) {
	if flag == "" {
		flag = r.config.API.DefaultStation
	}
	if flag == "" {
		return models.Station{}, fmt.Errorf("%w: --station (or api.default_station in config)", shared.ErrMissingArgument)
	}

	stations, err := r.library.Stations(ctx)
	if err != nil {
		return models.Station{}, err
	}

	for _, s := range stations {
		if s.ID == flag || strings.EqualFold(s.Name, flag) {
			return s, nil
		}
	}
	return models.Station{}, fmt.Errorf("%w: %s", shared.ErrStationNotFound, flag)
}

// StationList prints the selectable stations.
func (r *Runner) StationList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	stations, err := r.library.Stations(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stations, true)
	}

	for _, s := range stations {
		marker := " "
		if s.ID == r.config.API.DefaultStation {
			marker = "*"
		}
		r.writePlainln("%s %s  %s", marker, s.ID, s.Name)
	}
	return nil
}

// PlaylistList prints a station's assignments in playback order.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	station, err := r.resolveStation(ctx, cmd.String("station"))
	if err != nil {
		return err
	}

	assignments, err := r.library.Assignments(ctx, station.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(assignments, true)
	}

	r.writePlainln("%s (%d items)", station.Name, len(assignments))
	for _, a := range assignments {
		r.writePlainln("%3d. %s  %s", a.Order+1, a.PlaylistItemID, describeItem(a.MediaItem))
	}
	return nil
}

// PlaylistAdd assigns a library item to a station.
//
// Assigning an item that is already on the station succeeds without creating
// a duplicate, matching the backend's behavior.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	itemID := cmd.StringArg("item")
	if itemID == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	station, err := r.resolveStation(ctx, cmd.String("station"))
	if err != nil {
		return err
	}

	r.logger.Info("assigning item", "item", itemID, "station", station.Name)
	assignment, err := r.library.CreateAssignment(ctx, station.ID, itemID)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added %s to %s as %s\n", itemID, station.Name, assignment.PlaylistItemID)
}

// PlaylistRemove removes an assignment without touching the library item.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	playlistItemID := cmd.StringArg("id")
	if playlistItemID == "" {
		return fmt.Errorf("%w: playlist item id", shared.ErrMissingArgument)
	}

	r.logger.Info("removing assignment", "id", playlistItemID)
	if err := r.library.DeleteAssignment(ctx, playlistItemID); err != nil {
		return err
	}

	return r.writePlain("✓ Removed %s\n", playlistItemID)
}

// PlaylistReorder moves one assignment to a new position and persists the
// full order.
func (r *Runner) PlaylistReorder(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	station, err := r.resolveStation(ctx, cmd.String("station"))
	if err != nil {
		return err
	}

	assignments, err := r.library.Assignments(ctx, station.ID)
	if err != nil {
		return err
	}

	// Positions are 1-based on the command line, matching `playlist ls`.
	from := int(cmd.Int("from")) - 1
	to := int(cmd.Int("to")) - 1
	if from < 0 || from >= len(assignments) || to < 0 || to >= len(assignments) {
		return fmt.Errorf("%w: positions must be between 1 and %d", shared.ErrInvalidArgument, len(assignments))
	}
	if from == to {
		return r.writePlain("nothing to do\n")
	}

	moved := assignments[from]
	assignments = append(assignments[:from], assignments[from+1:]...)
	assignments = append(assignments, models.Assignment{})
	copy(assignments[to+1:], assignments[to:])
	assignments[to] = moved
	for i := range assignments {
		assignments[i].Order = i
	}

	if err := r.library.Reorder(ctx, station.ID, assignments); err != nil {
		return err
	}

	return r.writePlain("✓ Moved %q to position %d\n", moved.Title, to+1)
}

// PlaylistExport writes a station's playlist to CSV plus a metadata sidecar,
// or prints it as markdown or plain text.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	station, err := r.resolveStation(ctx, cmd.String("station"))
	if err != nil {
		return err
	}

	assignments, err := r.library.Assignments(ctx, station.ID)
	if err != nil {
		return err
	}

	switch format := cmd.String("format"); format {
	case "markdown", "md":
		out, err := formatter.ExportToMarkdown(station, assignments)
		if err != nil {
			return err
		}
		return r.writePlain("%s", out)

	case "text", "txt":
		out, err := formatter.ExportToText(station, assignments)
		if err != nil {
			return err
		}
		return r.writePlain("%s", out)

	case "csv":
		output := cmd.String("output")
		if output == "" {
			output = strings.ToLower(strings.ReplaceAll(station.Name, " ", "_"))
		}
		result, err := formatter.WriteExport(station, assignments, output)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %d items", len(assignments))
		r.writePlainln("  playlist: %s", result.PlaylistFile)
		r.writePlainln("  metadata: %s", result.MetadataFile)
		return nil

	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}
