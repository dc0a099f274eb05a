// package services defines interface Library for interacting with the RadioCMS HTTP API
package services

import (
	"context"

	"github.com/desertthunder/airdeck/internal/models"
)

// Library defines the operations the RadioCMS backend exposes to this client.
//
// The dual-pane engine and the CLI commands depend on this interface only;
// tests substitute an in-memory implementation.
type Library interface {
	// Items retrieves the full media catalog.
	Items(ctx context.Context) ([]models.MediaItem, error)

	// Item retrieves a single catalog item with full detail, used for edit-in-place.
	Item(ctx context.Context, id string) (*models.MediaItem, error)

	// DeleteItem deletes a catalog item entirely.
	DeleteItem(ctx context.Context, id string) error

	// Stations retrieves the selectable broadcast stations.
	Stations(ctx context.Context) ([]models.Station, error)

	// Assignments retrieves the items assigned to a station, ordered for playback.
	Assignments(ctx context.Context, stationID string) ([]models.Assignment, error)

	// CreateAssignment assigns a catalog item to a station (the cross-pane move).
	CreateAssignment(ctx context.Context, stationID, itemID string) (*models.Assignment, error)

	// DeleteAssignment removes an assignment without touching the underlying item.
	DeleteAssignment(ctx context.Context, playlistItemID string) error

	// Reorder persists a station's full reordered assignment list.
	Reorder(ctx context.Context, stationID string, items []models.Assignment) error

	// Upload creates a catalog item from a local audio file plus metadata.
	Upload(ctx context.Context, req *UploadRequest) error

	// Name returns the name of the backend (e.g. "RadioCMS")
	Name() string
}

// UploadRequest carries the multipart form for creating or replacing a catalog item.
type UploadRequest struct {
	AudioPath    string // Required path to the audio binary
	CoverArtPath string // Optional cover art image
	LyricsPath   string // Optional lyrics file

	Title     string
	Artist    string
	Genre     string
	Rotation  models.Rotation
	MediaType models.MediaType
	Markers   models.CuePoints
	AllowSkip bool
	IsClean   bool
	Formats   []string // Format tag ids, sent as a JSON array
}

// Credentials carries a username/password pair for the token endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the token endpoint's response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
