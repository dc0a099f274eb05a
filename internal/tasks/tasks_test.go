package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/services"
	"github.com/desertthunder/airdeck/internal/shared"
	mocks "github.com/desertthunder/airdeck/internal/testing"
)

func seedItems() []models.MediaItem {
	return []models.MediaItem{
		{ItemID: "s1", Title: "Song One", Artist: "Artist A", AudioFile: "http://cdn/s1.mp3"},
		{ItemID: "s2", Title: "Song Two", Artist: "Artist B", AudioFile: "http://cdn/s2.mp3"},
		{ItemID: "s3", Title: "Song Three", Artist: "Artist C", AudioFile: "http://cdn/s3.mp3"},
		{ItemID: "s4", Title: "Song Four", Artist: "Artist D", AudioFile: "http://cdn/s4.mp3"},
	}
}

func seedStations() []models.Station {
	return []models.Station{
		{ID: "st-1", Name: "Drive Time"},
		{ID: "st-2", Name: "Overnight"},
	}
}

// newLoadedEngine builds an engine with the catalog and station st-1 loaded.
func newLoadedEngine(t *testing.T, lib *mocks.MockLibrary) *Engine {
	t.Helper()
	engine := NewEngine(lib)
	ctx := context.Background()

	if _, err := engine.LoadLibrary(ctx); err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	if _, err := engine.LoadStation(ctx, models.Station{ID: "st-1", Name: "Drive Time"}); err != nil {
		t.Fatalf("failed to load station: %v", err)
	}
	return engine
}

// assertPartition verifies the two panes partition the catalog: every item in
// exactly one pane, none in both, none missing.
func assertPartition(t *testing.T, engine *Engine, catalogSize int) {
	t.Helper()

	seen := make(map[string]int)
	for _, item := range engine.LibraryPane() {
		seen[item.ItemID]++
	}
	for _, a := range engine.StationPane() {
		seen[a.ItemID]++
	}

	if len(seen) != catalogSize {
		t.Errorf("expected %d distinct items across panes, got %d", catalogSize, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("item %s appears in %d panes", id, count)
		}
	}
}

// assertDenseOrder verifies station order values are zero-based and contiguous.
func assertDenseOrder(t *testing.T, engine *Engine) {
	t.Helper()
	for i, a := range engine.StationPane() {
		if a.Order != i {
			t.Errorf("expected order %d at index %d, got %d", i, i, a.Order)
		}
	}
}

func TestLoadStation(t *testing.T) {
	t.Run("Partitions Catalog", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		ctx := context.Background()
		if _, err := lib.CreateAssignment(ctx, "st-1", "s2"); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		engine := newLoadedEngine(t, lib)

		if got := len(engine.StationPane()); got != 1 {
			t.Fatalf("expected 1 assignment, got %d", got)
		}
		if got := len(engine.LibraryPane()); got != 3 {
			t.Fatalf("expected 3 library items, got %d", got)
		}
		assertPartition(t, engine, 4)
	})

	t.Run("Requires Station ID", func(t *testing.T) {
		engine := NewEngine(mocks.NewMockLibrary(nil, nil))
		_, err := engine.LoadStation(context.Background(), models.Station{})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

// interleavingLibrary switches the engine to another station while the first
// station's assignment fetch is still in flight.
type interleavingLibrary struct {
	services.Library
	engine *Engine
	fired  bool
}

func (l *interleavingLibrary) Assignments(ctx context.Context, stationID string) ([]models.Assignment, error) {
	assignments, err := l.Library.Assignments(ctx, stationID)
	if !l.fired {
		l.fired = true
		if _, err := l.engine.LoadStation(ctx, models.Station{ID: "st-2", Name: "Overnight"}); err != nil {
			return nil, err
		}
	}
	return assignments, err
}

func TestLoadStationStaleResponse(t *testing.T) {
	lib := mocks.NewMockLibrary(seedItems(), seedStations())
	ctx := context.Background()
	if _, err := lib.CreateAssignment(ctx, "st-1", "s1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := lib.CreateAssignment(ctx, "st-2", "s4"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	wrapped := &interleavingLibrary{Library: lib}
	engine := NewEngine(wrapped)
	wrapped.engine = engine

	_, err := engine.LoadStation(ctx, models.Station{ID: "st-1", Name: "Drive Time"})
	if !errors.Is(err, shared.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}

	// The superseding load won; the pane must show st-2's assignments.
	if engine.Station().ID != "st-2" {
		t.Errorf("expected station st-2 selected, got %s", engine.Station().ID)
	}
	pane := engine.StationPane()
	if len(pane) != 1 || pane[0].ItemID != "s4" {
		t.Errorf("expected st-2 assignments in pane, got %+v", pane)
	}
}

func TestMoveToStation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		engine := newLoadedEngine(t, lib)

		op := models.DragOperation{
			From:             models.PaneLibrary,
			To:               models.PaneStation,
			ItemID:           "s3",
			DestinationIndex: 0,
		}
		if err := engine.MoveToStation(context.Background(), op); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		pane := engine.StationPane()
		if len(pane) != 1 || pane[0].ItemID != "s3" {
			t.Fatalf("expected s3 assigned, got %+v", pane)
		}
		if pane[0].PlaylistItemID == "" {
			t.Error("reload after move must pick up the server assignment id")
		}
		assertPartition(t, engine, 4)
		assertDenseOrder(t, engine)

		select {
		case n := <-engine.Notices():
			if n.Level != LevelInfo {
				t.Errorf("expected info notice, got %s: %s", n.Level, n.Message)
			}
		default:
			t.Error("expected a notice after a successful move")
		}
	})

	t.Run("Failure Reloads Both Panes", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		ctx := context.Background()
		if _, err := lib.CreateAssignment(ctx, "st-1", "s1"); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		engine := newLoadedEngine(t, lib)

		lib.FailNext = errors.New("backend down")
		op := models.DragOperation{
			From:             models.PaneLibrary,
			To:               models.PaneStation,
			ItemID:           "s2",
			DestinationIndex: 0,
		}
		if err := engine.MoveToStation(ctx, op); err == nil {
			t.Fatal("expected error from injected failure")
		}

		// Panes must match fresh server state, not the optimistic insert.
		pane := engine.StationPane()
		if len(pane) != 1 || pane[0].ItemID != "s1" {
			t.Errorf("optimistic assignment survived failure: %+v", pane)
		}
		if got := len(engine.LibraryPane()); got != 3 {
			t.Errorf("expected 3 library items after rollback, got %d", got)
		}
		assertPartition(t, engine, 4)
		assertDenseOrder(t, engine)
	})

	t.Run("Rejects Wrong Direction", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		engine := newLoadedEngine(t, lib)

		op := models.DragOperation{From: models.PaneStation, To: models.PaneLibrary, ItemID: "s1"}
		if err := engine.MoveToStation(context.Background(), op); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Assignments Get Distinct Ids", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		engine := newLoadedEngine(t, lib)
		ctx := context.Background()

		for _, id := range []string{"s1", "s2"} {
			op := models.DragOperation{From: models.PaneLibrary, To: models.PaneStation, ItemID: id, DestinationIndex: 0}
			if err := engine.MoveToStation(ctx, op); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		pane := engine.StationPane()
		if len(pane) != 2 {
			t.Fatalf("expected 2 assignments, got %d", len(pane))
		}
		if pane[0].PlaylistItemID == "" || pane[1].PlaylistItemID == "" {
			t.Fatal("expected server-minted assignment ids")
		}
		if pane[0].PlaylistItemID == pane[1].PlaylistItemID {
			t.Errorf("assignment ids must be unique, both %s", pane[0].PlaylistItemID)
		}
	})
}

func TestReorder(t *testing.T) {
	seed := func(t *testing.T) (*mocks.MockLibrary, *Engine) {
		t.Helper()
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		ctx := context.Background()
		for _, id := range []string{"s1", "s2", "s3"} {
			if _, err := lib.CreateAssignment(ctx, "st-1", id); err != nil {
				t.Fatalf("seed failed: %v", err)
			}
		}
		return lib, newLoadedEngine(t, lib)
	}

	t.Run("Drag Last To First", func(t *testing.T) {
		lib, engine := seed(t)

		if err := engine.Reorder(context.Background(), 2, 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []string{"s3", "s1", "s2"}
		pane := engine.StationPane()
		for i, id := range want {
			if pane[i].ItemID != id {
				t.Errorf("expected %s at index %d, got %s", id, i, pane[i].ItemID)
			}
		}
		assertDenseOrder(t, engine)

		// The persisted order is the full dense list, not a delta.
		persisted := lib.Assigned["st-1"]
		if len(persisted) != 3 {
			t.Fatalf("expected full order persisted, got %d rows", len(persisted))
		}
		for i, id := range want {
			if persisted[i].ItemID != id || persisted[i].Order != i {
				t.Errorf("persisted row %d = %s/%d, want %s/%d", i, persisted[i].ItemID, persisted[i].Order, id, i)
			}
		}
	})

	t.Run("Same Index Is A No Op", func(t *testing.T) {
		_, engine := seed(t)
		if err := engine.Reorder(context.Background(), 1, 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Out Of Range", func(t *testing.T) {
		_, engine := seed(t)
		if err := engine.Reorder(context.Background(), 0, 5); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Failure Restores Server Order", func(t *testing.T) {
		lib, engine := seed(t)

		lib.FailNext = errors.New("backend down")
		if err := engine.Reorder(context.Background(), 2, 0); err == nil {
			t.Fatal("expected error from injected failure")
		}

		want := []string{"s1", "s2", "s3"}
		pane := engine.StationPane()
		for i, id := range want {
			if pane[i].ItemID != id {
				t.Errorf("expected %s at index %d after rollback, got %s", id, i, pane[i].ItemID)
			}
		}
		assertDenseOrder(t, engine)
	})
}

func TestRemoveAssignment(t *testing.T) {
	seed := func(t *testing.T) (*mocks.MockLibrary, *Engine) {
		t.Helper()
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		ctx := context.Background()
		for _, id := range []string{"s1", "s2"} {
			if _, err := lib.CreateAssignment(ctx, "st-1", id); err != nil {
				t.Fatalf("seed failed: %v", err)
			}
		}
		return lib, newLoadedEngine(t, lib)
	}

	t.Run("Detaches But Keeps Item", func(t *testing.T) {
		_, engine := seed(t)
		target := engine.StationPane()[0]

		if err := engine.RemoveAssignment(context.Background(), target.PlaylistItemID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := len(engine.StationPane()); got != 1 {
			t.Errorf("expected 1 assignment left, got %d", got)
		}
		found := false
		for _, item := range engine.LibraryPane() {
			if item.ItemID == target.ItemID {
				found = true
			}
		}
		if !found {
			t.Error("detached item must return to the library pane")
		}
		assertPartition(t, engine, 4)
		assertDenseOrder(t, engine)
	})

	t.Run("Unknown Assignment", func(t *testing.T) {
		_, engine := seed(t)
		err := engine.RemoveAssignment(context.Background(), "pi-999")
		if !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("Failure Restores Assignment", func(t *testing.T) {
		lib, engine := seed(t)
		target := engine.StationPane()[0]

		lib.FailNext = errors.New("backend down")
		if err := engine.RemoveAssignment(context.Background(), target.PlaylistItemID); err == nil {
			t.Fatal("expected error from injected failure")
		}
		if got := len(engine.StationPane()); got != 2 {
			t.Errorf("expected assignment restored, got %d rows", got)
		}
	})
}

func TestDeleteItem(t *testing.T) {
	t.Run("Drops Wrapping Assignment", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		ctx := context.Background()
		for _, id := range []string{"s1", "s2"} {
			if _, err := lib.CreateAssignment(ctx, "st-1", id); err != nil {
				t.Fatalf("seed failed: %v", err)
			}
		}
		engine := newLoadedEngine(t, lib)

		if err := engine.DeleteItem(ctx, "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, a := range engine.StationPane() {
			if a.ItemID == "s1" {
				t.Error("deleted item still assigned")
			}
		}
		for _, item := range engine.LibraryPane() {
			if item.ItemID == "s1" {
				t.Error("deleted item still in library pane")
			}
		}
		assertPartition(t, engine, 3)
		assertDenseOrder(t, engine)
	})

	t.Run("Failure Reloads", func(t *testing.T) {
		lib := mocks.NewMockLibrary(seedItems(), seedStations())
		engine := newLoadedEngine(t, lib)

		lib.FailNext = errors.New("backend down")
		if err := engine.DeleteItem(context.Background(), "s1"); err == nil {
			t.Fatal("expected error from injected failure")
		}
		if got := len(engine.LibraryPane()); got != 4 {
			t.Errorf("expected catalog restored to 4 items, got %d", got)
		}
	})
}

func TestEditItem(t *testing.T) {
	lib := mocks.NewMockLibrary(seedItems(), seedStations())
	engine := NewEngine(lib)

	item, err := engine.EditItem(context.Background(), "s2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Title != "Song Two" {
		t.Errorf("unexpected item %+v", item)
	}

	_, err = engine.EditItem(context.Background(), "nope")
	if !errors.Is(err, shared.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestNoticesNeverBlock(t *testing.T) {
	lib := mocks.NewMockLibrary(seedItems(), seedStations())
	engine := newLoadedEngine(t, lib)

	// Nobody drains the channel; repeated mutations must still return.
	for i := 0; i < noticeBuffer*2; i++ {
		op := models.DragOperation{From: models.PaneLibrary, To: models.PaneStation, ItemID: "s1"}
		if err := engine.MoveToStation(context.Background(), op); err != nil {
			t.Fatalf("move %d failed: %v", i, err)
		}
	}
}
