package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/repositories"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryList prints the media catalog, refreshing the local cache snapshot.
//
// When the backend is unreachable the cached snapshot is served instead, so
// the catalog stays browsable offline.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	var items []models.MediaItem
	var fetchErr error

	if err := r.requireLibrary(); err != nil {
		fetchErr = err
	} else {
		items, fetchErr = r.library.Items(ctx)
	}

	if fetchErr == nil {
		r.refreshCache(items)
	} else {
		r.logger.Warn("backend unreachable, serving cached catalog", "error", fetchErr)
		cached, err := r.cachedItems()
		if err != nil {
			return fmt.Errorf("backend unreachable and no usable cache: %w", fetchErr)
		}
		items = cached
	}

	if useJSON {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	if fetchErr != nil {
		r.writePlainln("(cached catalog, backend unreachable)")
	}
	for _, item := range items {
		r.writePlainln("%s  %s", item.ItemID, describeItem(item))
	}
	r.writePlainln("%d items", len(items))
	return nil
}

// LibraryShow prints one catalog item in full detail.
func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	item, err := r.library.Item(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(item, true)
	}

	r.writePlainln("%s", describeItem(*item))
	r.writePlainln("  id:       %s", item.ItemID)
	r.writePlainln("  audio:    %s", item.AudioFile)
	if item.Genre != "" {
		r.writePlainln("  genre:    %s", item.Genre)
	}
	r.writePlainln("  markers:  intro=%s vox=%s aux=%s",
		markerValue(item.IntroPoint), markerValue(item.VocalPoint), markerValue(item.AuxPoint))
	return nil
}

// LibraryRemove deletes a catalog item from the backend.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	r.logger.Info("deleting library item", "id", id)
	if err := r.library.DeleteItem(ctx, id); err != nil {
		return err
	}

	if db, err := r.openCache(); err == nil {
		defer db.Close()
		if err := repositories.NewMediaRepository(db).Delete(id); err != nil && !errors.Is(err, shared.ErrItemNotFound) {
			r.logger.Warn("failed to evict cache entry", "id", id, "error", err)
		}
	}

	return r.writePlain("✓ Deleted %s\n", id)
}

// refreshCache replaces the cached catalog snapshot, best effort.
func (r *Runner) refreshCache(items []models.MediaItem) {
	db, err := r.openCache()
	if err != nil {
		r.logger.Warn("cache unavailable", "error", err)
		return
	}
	defer db.Close()

	if err := repositories.NewMediaRepository(db).RefreshAll(items); err != nil {
		r.logger.Warn("failed to refresh cache", "error", err)
	}
}

func (r *Runner) cachedItems() ([]models.MediaItem, error) {
	db, err := r.openCache()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cached, err := repositories.NewMediaRepository(db).All()
	if err != nil {
		return nil, err
	}
	if len(cached) == 0 {
		return nil, fmt.Errorf("cache is empty")
	}

	items := make([]models.MediaItem, len(cached))
	for i, c := range cached {
		items[i] = c.Item
	}
	return items, nil
}

func describeItem(item models.MediaItem) string {
	artist := item.Artist
	if artist == "" {
		artist = "unknown artist"
	}
	desc := fmt.Sprintf("%s - %s (%s, %s)", artist, item.Title, item.Rotation, item.MediaType)
	if item.Duration > 0 {
		desc += fmt.Sprintf(" [%s]", shared.FormatDuration(item.Duration))
	}
	return desc
}

func markerValue(m *float64) string {
	if m == nil {
		return "-"
	}
	return time.Duration(float64(time.Second) * *m).Truncate(10 * time.Millisecond).String()
}
