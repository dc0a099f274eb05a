package ui

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/player"
	"github.com/desertthunder/airdeck/internal/tasks"
	mocks "github.com/desertthunder/airdeck/internal/testing"
)

func seedItems() []models.MediaItem {
	return []models.MediaItem{
		{ItemID: "s1", Title: "Song One", Artist: "Artist A", AudioFile: "http://cdn/s1.mp3"},
		{ItemID: "s2", Title: "Song Two", Artist: "Artist B", AudioFile: "http://cdn/s2.mp3"},
		{ItemID: "s3", Title: "Song Three", Artist: "Artist C", AudioFile: "http://cdn/s3.mp3"},
	}
}

func seedStations() []models.Station {
	return []models.Station{
		{ID: "st-1", Name: "Drive Time"},
		{ID: "st-2", Name: "Overnight"},
	}
}

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// newTestModel builds a model on the dual pane view with the catalog loaded
// and station st-1 selected.
func newTestModel(t *testing.T) (*Model, *mocks.MockLibrary) {
	t.Helper()

	lib := mocks.NewMockLibrary(seedItems(), seedStations())
	engine := tasks.NewEngine(lib)
	session := player.NewSession()
	t.Cleanup(session.Close)
	editor := player.NewEditor("", "")
	t.Cleanup(editor.Close)

	m := NewModel(context.Background(), engine, session, editor, "")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	ctx := context.Background()
	if _, err := engine.LoadLibrary(ctx); err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	if _, err := engine.LoadStation(ctx, models.Station{ID: "st-1", Name: "Drive Time"}); err != nil {
		t.Fatalf("failed to load station: %v", err)
	}
	m.Update(panesLoadedMsg{})
	return m, lib
}

// settle runs a returned command and feeds its message back into the model.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

// assign moves an item onto the station pane through the engine and resyncs.
func assign(t *testing.T, m *Model, itemID string, index int) {
	t.Helper()
	op := models.DragOperation{
		From:             models.PaneLibrary,
		To:               models.PaneStation,
		ItemID:           itemID,
		DestinationIndex: index,
	}
	if err := m.engine.MoveToStation(context.Background(), op); err != nil {
		t.Fatalf("failed to assign %s: %v", itemID, err)
	}
	m.Update(panesLoadedMsg{})
}

func TestStationSelect(t *testing.T) {
	lib := mocks.NewMockLibrary(seedItems(), seedStations())
	engine := tasks.NewEngine(lib)
	session := player.NewSession()
	t.Cleanup(session.Close)
	editor := player.NewEditor("", "")
	t.Cleanup(editor.Close)

	m := NewModel(context.Background(), engine, session, editor, "")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(stationsFetchedMsg{stations: seedStations()})

	if m.view != StationSelectView {
		t.Fatalf("expected station select view, got %d", m.view)
	}

	_, cmd := m.Update(keyPress(tea.KeyEnter))
	settle(t, m, cmd)

	if m.view != DualPaneView {
		t.Errorf("expected dual pane view after selection, got %d", m.view)
	}
	if m.engine.Station().ID != "st-1" {
		t.Errorf("expected st-1 selected, got %s", m.engine.Station().ID)
	}
}

func TestDragGesture(t *testing.T) {
	t.Run("Pick Up Moves Focus To Station", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(keyPress(tea.KeyEnter))

		if !m.carrying {
			t.Fatal("expected carry state after enter on library row")
		}
		if m.carriedID != "s1" {
			t.Errorf("expected s1 carried, got %s", m.carriedID)
		}
		if m.focus != models.PaneStation {
			t.Error("expected focus moved to the station pane")
		}
	})

	t.Run("Drop Creates Assignment", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(keyPress(tea.KeyEnter))
		_, cmd := m.Update(keyPress(tea.KeyEnter))

		if m.carrying {
			t.Error("expected carry cleared on drop")
		}
		if m.busyKey != "lib:s1" {
			t.Errorf("expected dropped row marked busy, got %q", m.busyKey)
		}

		settle(t, m, cmd)

		if m.busyKey != "" {
			t.Errorf("expected busy mark cleared after settle, got %q", m.busyKey)
		}
		pane := m.engine.StationPane()
		if len(pane) != 1 || pane[0].ItemID != "s1" {
			t.Fatalf("expected s1 assigned, got %+v", pane)
		}
		if got := len(m.engine.LibraryPane()); got != 2 {
			t.Errorf("expected 2 library items after move, got %d", got)
		}
	})

	t.Run("Drop Outside Station Pane Is Ignored", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(keyPress(tea.KeyEnter))
		m.Update(keyPress(tea.KeyTab))
		_, cmd := m.Update(keyPress(tea.KeyEnter))

		if cmd != nil {
			t.Error("expected no command while focus is off the station pane")
		}
		if !m.carrying {
			t.Error("expected carry state to survive")
		}
	})

	t.Run("Escape Cancels Carry", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(keyPress(tea.KeyEnter))
		m.Update(keyPress(tea.KeyEsc))

		if m.carrying {
			t.Error("expected carry cancelled")
		}
		if m.view != DualPaneView {
			t.Error("cancel must not leave the dual pane view")
		}
		if got := len(m.engine.StationPane()); got != 0 {
			t.Errorf("cancelled carry must not assign anything, got %d rows", got)
		}

		m.Update(keyPress(tea.KeyEsc))
		if m.view != StationSelectView {
			t.Error("expected return to station select")
		}
	})

	t.Run("Reorder Drops Row At Cursor", func(t *testing.T) {
		m, _ := newTestModel(t)
		assign(t, m, "s1", 0)
		assign(t, m, "s2", 1)

		m.Update(keyPress(tea.KeyTab))
		m.Update(keyPress(tea.KeyEnter))
		if !m.reordering || m.reorderFrom != 0 {
			t.Fatalf("expected reorder pick up at 0, got %v from %d", m.reordering, m.reorderFrom)
		}

		m.Update(keyPress(tea.KeyDown))
		_, cmd := m.Update(keyPress(tea.KeyEnter))
		if m.reordering {
			t.Error("expected reorder state cleared on drop")
		}
		settle(t, m, cmd)

		pane := m.engine.StationPane()
		if len(pane) != 2 || pane[0].ItemID != "s2" || pane[1].ItemID != "s1" {
			t.Fatalf("expected s2 then s1, got %+v", pane)
		}
		for i, a := range pane {
			if a.Order != i {
				t.Errorf("expected order %d at index %d, got %d", i, i, a.Order)
			}
		}
	})

	t.Run("Reorder Needs Rows", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(keyPress(tea.KeyTab))
		m.Update(keyPress(tea.KeyEnter))

		if m.reordering {
			t.Error("empty playlist must not enter reorder state")
		}
	})
}

func TestRemoveKey(t *testing.T) {
	t.Run("Station Pane Detaches Assignment", func(t *testing.T) {
		m, lib := newTestModel(t)
		assign(t, m, "s2", 0)

		m.Update(keyPress(tea.KeyTab))
		_, cmd := m.Update(runeKey('x'))

		if m.busyKey == "" {
			t.Error("expected acting row marked busy")
		}
		settle(t, m, cmd)

		if got := len(m.engine.StationPane()); got != 0 {
			t.Errorf("expected empty station pane, got %d rows", got)
		}
		if got := len(m.engine.LibraryPane()); got != 3 {
			t.Errorf("expected item returned to library pane, got %d", got)
		}
		if _, ok := lib.ItemsByID["s2"]; !ok {
			t.Error("detach must keep the catalog item")
		}
	})

	t.Run("Library Pane Deletes Item", func(t *testing.T) {
		m, lib := newTestModel(t)

		_, cmd := m.Update(runeKey('x'))
		settle(t, m, cmd)

		if _, ok := lib.ItemsByID["s1"]; ok {
			t.Error("expected s1 deleted from the catalog")
		}
		if got := len(m.engine.LibraryPane()); got != 2 {
			t.Errorf("expected 2 library items, got %d", got)
		}
	})
}

func TestEditKey(t *testing.T) {
	m, lib := newTestModel(t)

	item := lib.ItemsByID["s1"]
	item.AudioFile = writeTestWAV(t)
	lib.ItemsByID["s1"] = item

	_, cmd := m.Update(runeKey('e'))
	settle(t, m, cmd)

	if m.view != EditorView {
		t.Fatalf("expected editor view, got %d", m.view)
	}
	if m.editorItem == nil || m.editorItem.ItemID != "s1" {
		t.Errorf("expected s1 loaded, got %+v", m.editorItem)
	}
	if !m.editor.Enabled() {
		t.Error("expected editor enabled after load")
	}

	m.Update(keyPress(tea.KeyEsc))
	if m.view != DualPaneView {
		t.Error("expected return to dual pane view")
	}
	if m.editor.Enabled() {
		t.Error("expected editor torn down on close")
	}
}

// writeTestWAV writes a short mono 16-bit PCM clip and returns its path.
func writeTestWAV(t *testing.T) string {
	t.Helper()

	var data bytes.Buffer
	for i := 0; i < 1000; i++ {
		binary.Write(&data, binary.LittleEndian, int16(8192))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(1000))
	binary.Write(&buf, binary.LittleEndian, uint32(2000))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	return path
}
