package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/airdeck/internal/models"
)

var (
	_ list.Item = stationItem{}
	_ list.Item = libraryRow{}
	_ list.Item = stationRow{}
)

// paneOps is the capability surface a pane hands to its rows. Each operation
// settles asynchronously; the pane marks the acting row busy until it does.
type paneOps interface {
	// PlayPause toggles audition playback for the row's transport key.
	PlayPause(key, audioURL string, cues models.CuePoints) tea.Cmd
	// Delete removes the row: assignments on the station pane, the catalog
	// item itself on the library pane.
	Delete(id string) tea.Cmd
	// Edit opens the marker editor. Only the library pane offers it.
	Edit(id string) tea.Cmd
}

// stationItem wraps [models.Station] to implement [list.Item].
type stationItem struct {
	station models.Station
}

func (i stationItem) FilterValue() string { return i.station.Name }
func (i stationItem) Title() string       { return i.station.Name }
func (i stationItem) Description() string { return i.station.ID }

// libraryRow wraps a catalog [models.MediaItem] to implement [list.Item].
// Library rows act on the item id and offer the marker editor.
type libraryRow struct {
	item models.MediaItem
	busy bool
}

func (r libraryRow) FilterValue() string { return r.item.Title }
func (r libraryRow) Title() string {
	if r.busy {
		return r.item.Title + " …"
	}
	return r.item.Title
}

func (r libraryRow) Description() string {
	desc := r.item.Artist
	if desc == "" {
		desc = string(r.item.MediaType)
	}
	if r.item.Rotation != "" {
		desc = fmt.Sprintf("%s • %s rotation", desc, r.item.Rotation)
	}
	return desc
}

// transportKey identifies the row's playback slot in the session.
func (r libraryRow) transportKey() string { return "lib:" + r.item.ItemID }

// stationRow wraps a [models.Assignment] to implement [list.Item].
// Station rows act on the playlist item id, never the catalog id.
type stationRow struct {
	assignment models.Assignment
	busy       bool
	carried    bool
}

func (r stationRow) FilterValue() string { return r.assignment.Title }
func (r stationRow) Title() string {
	title := fmt.Sprintf("%d. %s", r.assignment.Order+1, r.assignment.Title)
	if r.carried {
		return "◆ " + title
	}
	if r.busy {
		return title + " …"
	}
	return title
}

func (r stationRow) Description() string {
	desc := r.assignment.Artist
	if desc == "" {
		desc = string(r.assignment.MediaType)
	}
	if r.assignment.Rotation != "" {
		desc = fmt.Sprintf("%s • %s rotation", desc, r.assignment.Rotation)
	}
	return desc
}

func (r stationRow) transportKey() string { return "st:" + r.assignment.PlaylistItemID }
