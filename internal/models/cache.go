package models

import (
	"fmt"
	"time"
)

// CachedMedia is a locally persisted snapshot of a catalog item.
//
// Refreshed whenever the library list is fetched; lets `library list` render
// something useful while the backend is unreachable. Never written back to
// the server.
type CachedMedia struct {
	Item      MediaItem
	Sequence  int
	FetchedAt time.Time
}

var _ Model = (*CachedMedia)(nil)

func (c *CachedMedia) ID() string           { return c.Item.ItemID }
func (c *CachedMedia) CreatedAt() time.Time { return c.Item.Created }
func (c *CachedMedia) UpdatedAt() time.Time { return c.Item.Updated }

// Validate checks the snapshot carries the fields every catalog row must have.
func (c *CachedMedia) Validate() error {
	if c.Item.ItemID == "" {
		return fmt.Errorf("cached media missing id")
	}
	if c.Item.Title == "" {
		return fmt.Errorf("cached media %s missing title", c.Item.ItemID)
	}
	if c.Item.AudioFile == "" {
		return fmt.Errorf("cached media %s missing audio url", c.Item.ItemID)
	}
	if c.Item.Rotation != "" && !c.Item.Rotation.Valid() {
		return fmt.Errorf("cached media %s has unknown rotation %q", c.Item.ItemID, c.Item.Rotation)
	}
	return nil
}
