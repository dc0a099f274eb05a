package ui

import (
	"time"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/tasks"
)

// stationsFetchedMsg carries the result of the station list fetch.
type stationsFetchedMsg struct {
	stations []models.Station
	err      error
}

// panesLoadedMsg signals that both panes were (re)fetched through the engine.
type panesLoadedMsg struct {
	err error
}

// opSettledMsg signals that an engine mutation finished, success or not.
// Pane state already reflects the outcome; the view just re-syncs.
type opSettledMsg struct {
	err error
}

// editorLoadedMsg carries the item detail and decode outcome for the editor.
type editorLoadedMsg struct {
	item *models.MediaItem
	err  error
}

// noticeMsg forwards an engine [tasks.Notice] to the toast line.
type noticeMsg tasks.Notice

// playTickMsg drives the playback session's aux point auto-pause.
type playTickMsg time.Time
