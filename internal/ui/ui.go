package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/player"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/desertthunder/airdeck/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StationSelectView ViewState = iota
	DualPaneView
	EditorView
)

// tickInterval drives the playback session's aux point watcher.
const tickInterval = 500 * time.Millisecond

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	engine  *tasks.Engine
	session *player.Session
	editor  *player.Editor
	playBin string

	width  int
	height int

	stationList list.Model
	libraryList list.Model
	playlist    list.Model
	focus       models.Pane

	carrying  bool
	carriedID string

	reordering  bool
	reorderFrom int

	busyKey    string
	registered map[string]bool

	editorItem    *models.MediaItem
	editorPlaying bool

	toast      string
	toastLevel tasks.Level

	err  error
	help help.Model
	keys keyMap
}

var _ paneOps = (*Model)(nil)

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.Engine, session *player.Session, editor *player.Editor, playBin string) *Model {
	stations := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	stations.Title = "Stations"
	library := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	library.Title = "Library"
	library.SetShowHelp(false)
	playlist := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	playlist.SetShowHelp(false)

	return &Model{
		ctx:         ctx,
		view:        StationSelectView,
		engine:      engine,
		session:     session,
		editor:      editor,
		playBin:     playBin,
		stationList: stations,
		libraryList: library,
		playlist:    playlist,
		focus:       models.PaneLibrary,
		registered:  make(map[string]bool),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init fetches the station list and arms the notice and tick loops.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStations(), m.waitForNotice(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case noticeMsg:
		m.toast = msg.Message
		m.toastLevel = msg.Level
		return m, m.waitForNotice()

	case playTickMsg:
		m.session.Tick()
		return m, m.tick()

	case stationsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.stations))
		for i, station := range msg.stations {
			items[i] = stationItem{station: station}
		}
		m.stationList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.stationList.Title = "Stations"
		m.resizeLists()
		return m, nil

	case panesLoadedMsg:
		if msg.err != nil {
			m.toast = msg.err.Error()
			m.toastLevel = tasks.LevelError
			return m, nil
		}
		m.view = DualPaneView
		m.syncPanes()
		return m, nil

	case opSettledMsg:
		m.busyKey = ""
		if msg.err != nil && m.toast == "" {
			m.toast = msg.err.Error()
			m.toastLevel = tasks.LevelError
		}
		m.syncPanes()
		return m, nil

	case editorLoadedMsg:
		if msg.err != nil {
			m.toast = msg.err.Error()
			m.toastLevel = tasks.LevelError
			return m, nil
		}
		m.editorItem = msg.item
		m.view = EditorView
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case StationSelectView:
			return m.handleStationSelectKeys(msg)
		case DualPaneView:
			return m.handleDualPaneKeys(msg)
		case EditorView:
			return m.handleEditorKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case StationSelectView:
		return m.renderStationSelect()
	case DualPaneView:
		return m.renderDualPane()
	case EditorView:
		return m.renderEditor()
	default:
		return ""
	}
}

func (m *Model) resizeLists() {
	if m.width == 0 {
		return
	}
	m.stationList.SetSize(m.width-4, m.height-8)
	paneWidth := m.width/2 - 3
	m.libraryList.SetSize(paneWidth, m.height-8)
	m.playlist.SetSize(paneWidth, m.height-8)
}

// syncPanes rebuilds both pane lists from engine state, preserving cursors.
func (m *Model) syncPanes() {
	libIdx := m.libraryList.Index()
	stIdx := m.playlist.Index()

	libItems := []list.Item{}
	for _, item := range m.engine.LibraryPane() {
		row := libraryRow{item: item, busy: m.busyKey == "lib:"+item.ItemID}
		libItems = append(libItems, row)
	}

	stItems := []list.Item{}
	for _, a := range m.engine.StationPane() {
		row := stationRow{
			assignment: a,
			busy:       m.busyKey == "st:"+a.PlaylistItemID,
			carried:    m.reordering && a.Order == m.reorderFrom,
		}
		stItems = append(stItems, row)
	}

	libDelegate := list.NewDefaultDelegate()
	stDelegate := list.NewDefaultDelegate()
	m.libraryList = list.New(libItems, libDelegate, 0, 0)
	m.libraryList.Title = "Library"
	m.libraryList.SetShowHelp(false)
	m.playlist = list.New(stItems, stDelegate, 0, 0)
	m.playlist.Title = m.engine.Station().Name
	m.playlist.SetShowHelp(false)
	m.resizeLists()

	if libIdx < len(libItems) {
		m.libraryList.Select(libIdx)
	}
	if stIdx < len(stItems) {
		m.playlist.Select(stIdx)
	}
}

func (m *Model) handleStationSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.stationList.SelectedItem().(stationItem); ok {
			return m, m.loadPanes(selected.station)
		}
	}

	var cmd tea.Cmd
	m.stationList, cmd = m.stationList.Update(msg)
	return m, cmd
}

func (m *Model) handleDualPaneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.pane):
		if m.focus == models.PaneLibrary {
			m.focus = models.PaneStation
		} else {
			m.focus = models.PaneLibrary
		}
		return m, nil

	case key.Matches(msg, m.keys.back):
		if m.carrying || m.reordering {
			m.carrying = false
			m.reordering = false
			m.syncPanes()
			return m, nil
		}
		m.view = StationSelectView
		return m, nil

	case key.Matches(msg, m.keys.enter):
		return m.handlePickUpOrDrop()

	case key.Matches(msg, m.keys.play):
		return m.handlePlayKey()

	case key.Matches(msg, m.keys.remove):
		return m.handleRemoveKey()

	case key.Matches(msg, m.keys.edit):
		if m.focus == models.PaneLibrary {
			if row, ok := m.libraryList.SelectedItem().(libraryRow); ok {
				return m, m.Edit(row.item.ItemID)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		return m, m.loadPanes(m.engine.Station())
	}

	return m.updateLists(msg)
}

// handlePickUpOrDrop implements the keyboard drag gesture: enter picks a row
// up, moving the focus where it can be dropped, and enter again drops it.
func (m *Model) handlePickUpOrDrop() (tea.Model, tea.Cmd) {
	switch {
	case m.carrying:
		if m.focus != models.PaneStation {
			return m, nil
		}
		op := models.DragOperation{
			From:             models.PaneLibrary,
			To:               models.PaneStation,
			ItemID:           m.carriedID,
			DestinationIndex: m.playlist.Index(),
		}
		m.carrying = false
		m.busyKey = "lib:" + op.ItemID
		return m, m.move(op)

	case m.reordering:
		if m.focus != models.PaneStation {
			return m, nil
		}
		from, to := m.reorderFrom, m.playlist.Index()
		m.reordering = false
		return m, m.reorder(from, to)

	case m.focus == models.PaneLibrary:
		if row, ok := m.libraryList.SelectedItem().(libraryRow); ok {
			m.carrying = true
			m.carriedID = row.item.ItemID
			m.focus = models.PaneStation
		}
		return m, nil

	default:
		if len(m.playlist.Items()) > 0 {
			m.reordering = true
			m.reorderFrom = m.playlist.Index()
			m.syncPanes()
		}
		return m, nil
	}
}

func (m *Model) handlePlayKey() (tea.Model, tea.Cmd) {
	if m.focus == models.PaneLibrary {
		if row, ok := m.libraryList.SelectedItem().(libraryRow); ok {
			return m, m.PlayPause(row.transportKey(), row.item.AudioFile, row.item.Markers())
		}
		return m, nil
	}
	if row, ok := m.playlist.SelectedItem().(stationRow); ok {
		return m, m.PlayPause(row.transportKey(), row.assignment.AudioFile, row.assignment.Markers())
	}
	return m, nil
}

func (m *Model) handleRemoveKey() (tea.Model, tea.Cmd) {
	if m.focus == models.PaneStation {
		if row, ok := m.playlist.SelectedItem().(stationRow); ok {
			m.busyKey = "st:" + row.assignment.PlaylistItemID
			return m, m.Delete(row.assignment.PlaylistItemID)
		}
		return m, nil
	}
	if row, ok := m.libraryList.SelectedItem().(libraryRow); ok {
		m.busyKey = "lib:" + row.item.ItemID
		return m, m.Delete(row.item.ItemID)
	}
	return m, nil
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.closeEditor()
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		m.closeEditor()
		m.view = DualPaneView
		return m, nil

	case key.Matches(msg, m.keys.play):
		if m.editorPlaying {
			m.editor.Pause()
			m.editorPlaying = false
		} else if err := m.editor.Play(m.ctx); err == nil {
			m.editorPlaying = true
		}
		return m, nil

	case key.Matches(msg, m.keys.setIntro):
		return m, m.setMarker(player.MarkerIntro)
	case key.Matches(msg, m.keys.setVocal):
		return m, m.setMarker(player.MarkerVocal)
	case key.Matches(msg, m.keys.setAux):
		return m, m.setMarker(player.MarkerAux)

	case key.Matches(msg, m.keys.goIntro):
		m.seekToMarker(player.MarkerIntro)
		return m, nil
	case key.Matches(msg, m.keys.goVocal):
		m.seekToMarker(player.MarkerVocal)
		return m, nil
	case key.Matches(msg, m.keys.goAux):
		m.seekToMarker(player.MarkerAux)
		return m, nil

	case key.Matches(msg, m.keys.zoomIn):
		m.editor.Zoom(1.25)
		return m, nil
	case key.Matches(msg, m.keys.zoomOut):
		m.editor.Zoom(0.8)
		return m, nil
	}

	return m, nil
}

func (m *Model) setMarker(kind player.Marker) tea.Cmd {
	if err := m.editor.SetMarker(kind); err != nil {
		m.toast = err.Error()
		m.toastLevel = tasks.LevelError
	} else {
		m.toast = fmt.Sprintf("%s marker set at %s", kind, shared.FormatDuration(m.editor.Position()))
		m.toastLevel = tasks.LevelInfo
	}
	return nil
}

// seekToMarker jumps playback to a marker. Seeking to a set marker starts
// the transport, so the play toggle must follow it.
func (m *Model) seekToMarker(kind player.Marker) {
	if player.Point(m.editor.Markers(), kind) == nil {
		return
	}
	if err := m.editor.SeekToMarker(m.ctx, kind); err != nil {
		m.toast = err.Error()
		m.toastLevel = tasks.LevelError
		return
	}
	m.editorPlaying = true
}

// closeEditor tears down the editor session. The working markers feed the
// playback session's cues so auditions honor the latest edit.
func (m *Model) closeEditor() {
	if m.editorItem != nil {
		m.session.SetCues("lib:"+m.editorItem.ItemID, m.editor.Markers())
	}
	m.editor.Close()
	m.editorItem = nil
	m.editorPlaying = false
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case StationSelectView:
		m.stationList, cmd = m.stationList.Update(msg)
	case DualPaneView:
		if m.focus == models.PaneLibrary {
			m.libraryList, cmd = m.libraryList.Update(msg)
		} else {
			m.playlist, cmd = m.playlist.Update(msg)
		}
	}
	return m, cmd
}

// PlayPause toggles audition playback for a row's transport key.
func (m *Model) PlayPause(transportKey, audioURL string, cues models.CuePoints) tea.Cmd {
	if m.session.ActiveKey() == transportKey {
		return func() tea.Msg {
			return opSettledMsg{err: m.session.Pause(transportKey)}
		}
	}

	if !m.registered[transportKey] {
		m.session.Register(transportKey, player.NewExecTransport(m.playBin, audioURL), cues)
		m.registered[transportKey] = true
	} else {
		m.session.SetCues(transportKey, cues)
	}

	return func() tea.Msg {
		return opSettledMsg{err: m.session.RequestPlay(m.ctx, transportKey)}
	}
}

// Delete removes the selected row: an assignment on the station pane, the
// catalog item itself on the library pane.
func (m *Model) Delete(id string) tea.Cmd {
	pane := m.focus
	return func() tea.Msg {
		if pane == models.PaneStation {
			return opSettledMsg{err: m.engine.RemoveAssignment(m.ctx, id)}
		}
		return opSettledMsg{err: m.engine.DeleteItem(m.ctx, id)}
	}
}

// Edit fetches item detail and decodes its waveform for the marker editor.
func (m *Model) Edit(id string) tea.Cmd {
	return func() tea.Msg {
		item, err := m.engine.EditItem(m.ctx, id)
		if err != nil {
			return editorLoadedMsg{err: err}
		}
		if err := m.editor.Load(m.ctx, item.ItemID, item.AudioFile, item.Markers()); err != nil {
			return editorLoadedMsg{err: err}
		}
		return editorLoadedMsg{item: item}
	}
}

func (m *Model) fetchStations() tea.Cmd {
	return func() tea.Msg {
		stations, err := m.engine.Stations(m.ctx)
		return stationsFetchedMsg{stations: stations, err: err}
	}
}

func (m *Model) loadPanes(station models.Station) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.engine.LoadLibrary(m.ctx); err != nil {
			return panesLoadedMsg{err: err}
		}
		if _, err := m.engine.LoadStation(m.ctx, station); err != nil {
			// A superseded load means a newer selection already landed.
			if errors.Is(err, shared.ErrStaleResponse) {
				return panesLoadedMsg{}
			}
			return panesLoadedMsg{err: err}
		}
		return panesLoadedMsg{}
	}
}

func (m *Model) move(op models.DragOperation) tea.Cmd {
	return func() tea.Msg {
		return opSettledMsg{err: m.engine.MoveToStation(m.ctx, op)}
	}
}

func (m *Model) reorder(from, to int) tea.Cmd {
	return func() tea.Msg {
		return opSettledMsg{err: m.engine.Reorder(m.ctx, from, to)}
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.engine.Notices())
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return playTickMsg(t)
	})
}

func (m *Model) renderToast() string {
	if m.toast == "" {
		return ""
	}
	switch m.toastLevel {
	case tasks.LevelError:
		return styles.err.Render(m.toast)
	case tasks.LevelWarn:
		return styles.warn.Render(m.toast)
	default:
		return styles.ok.Render(m.toast)
	}
}

func (m *Model) renderStationSelect() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.stationList.View(), helpView)
}

func (m *Model) renderDualPane() string {
	libView := m.libraryList.View()
	stView := m.playlist.View()

	libTitle := "Library"
	stTitle := m.engine.Station().Name
	if m.focus == models.PaneLibrary {
		libTitle = styles.focus.Render("▸ " + libTitle)
		stTitle = styles.dim.Render("  " + stTitle)
	} else {
		libTitle = styles.dim.Render("  " + libTitle)
		stTitle = styles.focus.Render("▸ " + stTitle)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, libTitle, libView)
	right := lipgloss.JoinVertical(lipgloss.Left, stTitle, stView)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	status := ""
	if m.carrying {
		status = styles.warn.Render("carrying item, enter drops it into the playlist, esc cancels")
	} else if m.reordering {
		status = styles.warn.Render("moving row, enter drops it at the cursor, esc cancels")
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.pane, m.keys.enter, m.keys.play, m.keys.remove, m.keys.edit, m.keys.back, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n%s\n%s", panes, status, m.renderToast(), helpView)
}

func (m *Model) renderEditor() string {
	if m.editorItem == nil {
		return styles.err.Render("no item loaded")
	}

	title := styles.title.Render(fmt.Sprintf("%s - %s", m.editorItem.Artist, m.editorItem.Title))
	wave := m.renderWaveform()
	markers := m.renderMarkerSummary()

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.play, m.keys.setIntro, m.keys.setVocal, m.keys.setAux,
		m.keys.zoomIn, m.keys.zoomOut, m.keys.back,
	})

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s", title, wave, markers, m.renderToast(), helpView)
}

// waveform bar glyphs from silence to full scale.
var waveGlyphs = []rune("▁▂▃▄▅▆▇█")

// renderWaveform draws the peak envelope with a marker overlay line above it.
func (m *Model) renderWaveform() string {
	peaks := m.editor.Peaks()
	if peaks == nil || len(peaks.PeakLeft) == 0 {
		return styles.dim.Render("(no waveform)")
	}

	cols := m.width - 4
	if cols < 16 {
		cols = 16
	}

	// Zoom maps to how many peak buckets collapse into one column.
	perCol := int(float64(peaks.SamplesPerSec) * 40.0 / m.editor.Zoom(1))
	if perCol < 1 {
		perCol = 1
	}

	total := len(peaks.PeakLeft)
	shown := total / perCol
	if shown > cols {
		shown = cols
	}

	bars := make([]rune, shown)
	for c := 0; c < shown; c++ {
		peak := float32(0)
		for i := c * perCol; i < (c+1)*perCol && i < total; i++ {
			v := peaks.PeakLeft[i]
			if peaks.PeakRight[i] > v {
				v = peaks.PeakRight[i]
			}
			if v > peak {
				peak = v
			}
		}
		idx := int(peak * float32(len(waveGlyphs)))
		if idx >= len(waveGlyphs) {
			idx = len(waveGlyphs) - 1
		}
		bars[c] = waveGlyphs[idx]
	}

	overlay := make([]rune, shown)
	for i := range overlay {
		overlay[i] = ' '
	}
	markers := m.editor.Markers()
	secPerCol := float64(perCol) / float64(peaks.SamplesPerSec)
	place := func(sec *float64, glyph rune) {
		if sec == nil || secPerCol == 0 {
			return
		}
		col := int(*sec / secPerCol)
		if col >= 0 && col < shown {
			overlay[col] = glyph
		}
	}
	place(markers.Intro, 'I')
	place(markers.Vocal, 'V')
	place(markers.Aux, 'A')

	return styles.marker.Render(string(overlay)) + "\n" + string(bars)
}

func (m *Model) renderMarkerSummary() string {
	markers := m.editor.Markers()
	part := func(name string, sec *float64) string {
		if sec == nil {
			return fmt.Sprintf("%s: -", name)
		}
		return fmt.Sprintf("%s: %.2fs", name, *sec)
	}

	summary := fmt.Sprintf("%s  %s  %s",
		part("intro", markers.Intro),
		part("vox", markers.Vocal),
		part("aux", markers.Aux),
	)
	if !markers.Ordered() {
		summary += "  " + styles.warn.Render("(markers out of order)")
	}
	return summary
}
