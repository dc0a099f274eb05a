// package models defines the data model for the airdeck console
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the local cache.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Rotation is the scheduling weight the backend's rotation rules read.
type Rotation string

const (
	RotationHigh   Rotation = "high"
	RotationMedium Rotation = "medium"
	RotationLow    Rotation = "low"
)

// Valid reports whether the rotation value is one the backend accepts.
func (r Rotation) Valid() bool {
	switch r {
	case RotationHigh, RotationMedium, RotationLow:
		return true
	}
	return false
}

// MediaType categorizes a catalog asset.
type MediaType string

const (
	TypeSong    MediaType = "SONG"
	TypeAdvert  MediaType = "ADVERT"
	TypePodcast MediaType = "PODCAST"
	TypeNews    MediaType = "NEWS"
	TypeVoice   MediaType = "VOICE"
	TypeID      MediaType = "ID"
)

// MediaTypes lists every selectable content type, in the order the dashboard tabs show them.
var MediaTypes = []MediaType{TypeSong, TypeAdvert, TypePodcast, TypeNews, TypeVoice, TypeID}

// Valid reports whether the media type is a known category.
func (m MediaType) Valid() bool {
	for _, t := range MediaTypes {
		if m == t {
			return true
		}
	}
	return false
}

// CuePoints holds the three per-asset markers in seconds.
//
// The wire form matches the upload contract: {"in": ..., "vox": ..., "aux": ...}.
// A nil field means the marker was never set; zero is a valid offset.
type CuePoints struct {
	Intro *float64 `json:"in,omitempty"`
	Vocal *float64 `json:"vox,omitempty"`
	Aux   *float64 `json:"aux,omitempty"`
}

// Ordered reports whether the set markers are monotonic (intro ≤ vocal ≤ aux).
// Unset markers are skipped; ordering is advisory and never enforced on write.
func (c CuePoints) Ordered() bool {
	last := 0.0
	for _, m := range []*float64{c.Intro, c.Vocal, c.Aux} {
		if m == nil {
			continue
		}
		if *m < last {
			return false
		}
		last = *m
	}
	return true
}

// IntroOrZero returns the intro marker, defaulting to 0 when unset.
// Playback always starts here.
func (c CuePoints) IntroOrZero() float64 {
	if c.Intro == nil {
		return 0
	}
	return *c.Intro
}

// MediaItem represents one playable catalog asset.
//
// The client holds a transient cached copy per screen load; the backend
// catalog is the owner.
type MediaItem struct {
	ItemID     string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist,omitempty"`
	Genre      string    `json:"genre,omitempty"`
	Rotation   Rotation  `json:"rotation"`
	MediaType  MediaType `json:"media_type"`
	AudioFile  string    `json:"audio_file"`
	CoverArt   string    `json:"cover_art,omitempty"`
	LyricsFile string    `json:"lyrics_file,omitempty"`
	IntroPoint *float64  `json:"intro_point,omitempty"`
	VocalPoint *float64  `json:"vocal_point,omitempty"`
	AuxPoint   *float64  `json:"aux_point,omitempty"`
	Duration   float64   `json:"duration,omitempty"`
	AllowSkip  bool      `json:"allow_skip"`
	IsClean    bool      `json:"is_clean"`
	Formats    []string  `json:"formats,omitempty"`
	Created    time.Time `json:"created_at,omitzero"`
	Updated    time.Time `json:"updated_at,omitzero"`
}

// Markers collects the item's cue points into a [CuePoints] value.
func (m *MediaItem) Markers() CuePoints {
	return CuePoints{Intro: m.IntroPoint, Vocal: m.VocalPoint, Aux: m.AuxPoint}
}

// SetMarkers writes a [CuePoints] value back onto the item's marker fields.
func (m *MediaItem) SetMarkers(c CuePoints) {
	m.IntroPoint = c.Intro
	m.VocalPoint = c.Vocal
	m.AuxPoint = c.Aux
}

// Assignment represents a MediaItem's membership in a station's list.
//
// The songs_by_station endpoint inlines the library item fields next to the
// assignment id, so the item embeds directly. PlaylistItemID identifies the
// assignment; the embedded ItemID is a weak reference to the catalog item.
type Assignment struct {
	MediaItem
	PlaylistItemID string `json:"playlist_item_id"`
	StationID      string `json:"station_id,omitempty"`
	Order          int    `json:"order"`
}

// Station represents a broadcast station.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Pane identifies one of the two lists on the dual-pane screen.
type Pane string

const (
	PaneLibrary Pane = "library"
	PaneStation Pane = "station"
)

// DragOperation describes one drag gesture, consumed by a single engine call.
type DragOperation struct {
	From             Pane
	To               Pane
	SourceIndex      int
	DestinationIndex int
	ItemID           string
}
