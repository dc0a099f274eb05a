package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/services"
	"github.com/desertthunder/airdeck/internal/shared"
)

// noticeBuffer bounds the toast channel. Old notices are dropped when the UI
// falls behind.
const noticeBuffer = 16

// Engine coordinates the library and station panes against a [services.Library]
// backend.
//
// All exported methods are safe for concurrent use; the UI layer calls them
// from command goroutines.
type Engine struct {
	mu      sync.Mutex
	library services.Library
	notices chan Notice

	catalog     []models.MediaItem
	station     models.Station
	assignments []models.Assignment
	stationGen  uint64
}

// NewEngine creates an engine backed by the given library service.
func NewEngine(library services.Library) *Engine {
	return &Engine{
		library: library,
		notices: make(chan Notice, noticeBuffer),
	}
}

// Notices returns the toast channel. Receive-only; the engine never closes it.
func (e *Engine) Notices() <-chan Notice {
	return e.notices
}

// send delivers a notice without blocking. A full channel drops the notice.
func (e *Engine) send(n Notice) {
	select {
	case e.notices <- n:
	default:
	}
}

// Stations lists the selectable stations.
func (e *Engine) Stations(ctx context.Context) ([]models.Station, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}
	return e.library.Stations(ctx)
}

// LoadLibrary fetches the full media catalog and replaces the cached copy.
func (e *Engine) LoadLibrary(ctx context.Context) ([]models.MediaItem, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}

	items, err := e.library.Items(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.catalog = items
	e.mu.Unlock()
	return items, nil
}

// LoadStation selects a station and fetches its assignment list.
//
// Each call advances a generation counter before the fetch. When the response
// arrives after a newer LoadStation has started, it is discarded and
// [shared.ErrStaleResponse] is returned so the caller can drop the result.
func (e *Engine) LoadStation(ctx context.Context, station models.Station) ([]models.Assignment, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}
	if station.ID == "" {
		return nil, fmt.Errorf("%w: station id required", shared.ErrMissingArgument)
	}

	e.mu.Lock()
	e.stationGen++
	gen := e.stationGen
	e.station = station
	e.mu.Unlock()

	assignments, err := e.library.Assignments(ctx, station.ID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.stationGen {
		return nil, fmt.Errorf("%w: station %s superseded", shared.ErrStaleResponse, station.ID)
	}
	e.assignments = assignments
	return assignments, nil
}

// Station returns the currently selected station.
func (e *Engine) Station() models.Station {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.station
}

// LibraryPane returns the catalog items not assigned to the selected station,
// in catalog order.
func (e *Engine) LibraryPane() []models.MediaItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.libraryPaneLocked()
}

func (e *Engine) libraryPaneLocked() []models.MediaItem {
	assigned := make(map[string]bool, len(e.assignments))
	for _, a := range e.assignments {
		assigned[a.ItemID] = true
	}

	pane := make([]models.MediaItem, 0, len(e.catalog))
	for _, item := range e.catalog {
		if !assigned[item.ItemID] {
			pane = append(pane, item)
		}
	}
	return pane
}

// StationPane returns a copy of the selected station's assignments in
// playback order.
func (e *Engine) StationPane() []models.Assignment {
	e.mu.Lock()
	defer e.mu.Unlock()

	pane := make([]models.Assignment, len(e.assignments))
	copy(pane, e.assignments)
	return pane
}

// reindexLocked restores dense zero-based order values after a splice.
func (e *Engine) reindexLocked() {
	for i := range e.assignments {
		e.assignments[i].Order = i
	}
}

// reloadStation refetches the selected station's assignments, discarding any
// optimistic local state.
func (e *Engine) reloadStation(ctx context.Context) {
	station := e.Station()
	if station.ID == "" {
		return
	}
	if _, err := e.LoadStation(ctx, station); err != nil {
		e.send(warnNotice("station reload failed: %v", err))
	}
}

// reloadBoth refetches the catalog and the selected station.
func (e *Engine) reloadBoth(ctx context.Context) {
	if _, err := e.LoadLibrary(ctx); err != nil {
		e.send(warnNotice("library reload failed: %v", err))
	}
	e.reloadStation(ctx)
}

// MoveToStation assigns a library item to the selected station at the drop
// index, applying the move locally before persisting it.
//
// On success the station pane is refetched so the local placeholder picks up
// its server assignment id. On failure both panes are refetched and the error
// is returned; no optimistic state survives.
func (e *Engine) MoveToStation(ctx context.Context, op models.DragOperation) error {
	if op.From != models.PaneLibrary || op.To != models.PaneStation {
		return fmt.Errorf("%w: move must go from library to station", shared.ErrInvalidArgument)
	}

	e.mu.Lock()
	station := e.station
	if station.ID == "" {
		e.mu.Unlock()
		return fmt.Errorf("%w: no station selected", shared.ErrStationNotFound)
	}

	var item *models.MediaItem
	for i := range e.catalog {
		if e.catalog[i].ItemID == op.ItemID {
			item = &e.catalog[i]
			break
		}
	}
	if item == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, op.ItemID)
	}

	dest := op.DestinationIndex
	if dest < 0 || dest > len(e.assignments) {
		dest = len(e.assignments)
	}

	placeholder := models.Assignment{
		MediaItem: *item,
		StationID: station.ID,
	}
	e.assignments = append(e.assignments, models.Assignment{})
	copy(e.assignments[dest+1:], e.assignments[dest:])
	e.assignments[dest] = placeholder
	e.reindexLocked()
	title := item.Title
	e.mu.Unlock()

	if _, err := e.library.CreateAssignment(ctx, station.ID, op.ItemID); err != nil {
		e.send(errorNotice("could not add %q: %v", title, err))
		e.reloadBoth(ctx)
		return err
	}

	e.send(infoNotice("added %q to %s", title, station.Name))
	e.reloadStation(ctx)
	return nil
}

// Reorder moves the assignment at index from to index to, reindexes densely
// and persists the full order.
//
// The reorder is applied locally first. A persistence failure refetches the
// station pane and returns the error.
func (e *Engine) Reorder(ctx context.Context, from, to int) error {
	e.mu.Lock()
	station := e.station
	n := len(e.assignments)
	if from < 0 || from >= n || to < 0 || to >= n {
		e.mu.Unlock()
		return fmt.Errorf("%w: reorder index out of range", shared.ErrInvalidArgument)
	}
	if from == to {
		e.mu.Unlock()
		return nil
	}

	moved := e.assignments[from]
	e.assignments = append(e.assignments[:from], e.assignments[from+1:]...)
	e.assignments = append(e.assignments, models.Assignment{})
	copy(e.assignments[to+1:], e.assignments[to:])
	e.assignments[to] = moved
	e.reindexLocked()

	order := make([]models.Assignment, n)
	copy(order, e.assignments)
	e.mu.Unlock()

	if err := e.library.Reorder(ctx, station.ID, order); err != nil {
		e.send(errorNotice("reorder failed: %v", err))
		e.reloadStation(ctx)
		return err
	}

	e.send(infoNotice("moved %q to position %d", moved.Title, to+1))
	return nil
}

// RemoveAssignment detaches an assignment from the station, leaving the
// catalog item in the library pane.
func (e *Engine) RemoveAssignment(ctx context.Context, playlistItemID string) error {
	e.mu.Lock()
	idx := -1
	for i, a := range e.assignments {
		if a.PlaylistItemID == playlistItemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return fmt.Errorf("%w: assignment %s", shared.ErrItemNotFound, playlistItemID)
	}

	removed := e.assignments[idx]
	e.assignments = append(e.assignments[:idx], e.assignments[idx+1:]...)
	e.reindexLocked()
	e.mu.Unlock()

	if err := e.library.DeleteAssignment(ctx, playlistItemID); err != nil {
		e.send(errorNotice("could not remove %q: %v", removed.Title, err))
		e.reloadStation(ctx)
		return err
	}

	e.send(infoNotice("removed %q from the station", removed.Title))
	return nil
}

// DeleteItem deletes a catalog item outright. Any assignment wrapping the
// item on the selected station is dropped locally, then the station is
// refetched to reconcile.
func (e *Engine) DeleteItem(ctx context.Context, itemID string) error {
	e.mu.Lock()
	title := itemID
	for i := range e.catalog {
		if e.catalog[i].ItemID == itemID {
			title = e.catalog[i].Title
			e.catalog = append(e.catalog[:i], e.catalog[i+1:]...)
			break
		}
	}
	for i := 0; i < len(e.assignments); {
		if e.assignments[i].ItemID == itemID {
			e.assignments = append(e.assignments[:i], e.assignments[i+1:]...)
			continue
		}
		i++
	}
	e.reindexLocked()
	e.mu.Unlock()

	if err := e.library.DeleteItem(ctx, itemID); err != nil {
		e.send(errorNotice("could not delete %q: %v", title, err))
		e.reloadBoth(ctx)
		return err
	}

	e.send(infoNotice("deleted %q from the library", title))
	e.reloadStation(ctx)
	return nil
}

// EditItem fetches full detail for an editor session. Edits are saved against
// whatever the backend held at save time; the last writer wins.
func (e *Engine) EditItem(ctx context.Context, itemID string) (*models.MediaItem, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}
	return e.library.Item(ctx, itemID)
}
