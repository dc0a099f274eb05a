package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
)

// MediaRepository persists catalog snapshots for offline listings.
//
// Rows are keyed by the backend item id. RefreshAll swaps the whole cache in
// one transaction so a partial fetch can never leave a mixed snapshot.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new MediaRepository with the given database connection
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, sequence, title, artist, genre, rotation, media_type, audio_file, cover_art,
	intro_point, vocal_point, aux_point, duration, allow_skip, is_clean, fetched_at, created_at, updated_at`

// Create inserts a snapshot row with a generated sequence number.
func (r *MediaRepository) Create(media *models.CachedMedia) error {
	if err := media.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "media_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	media.Sequence = sequence
	if media.FetchedAt.IsZero() {
		media.FetchedAt = time.Now()
	}

	query := `
		INSERT INTO media_cache (` + mediaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	item := media.Item
	_, err = r.db.Exec(query,
		item.ItemID,
		media.Sequence,
		item.Title,
		item.Artist,
		item.Genre,
		string(item.Rotation),
		string(item.MediaType),
		item.AudioFile,
		item.CoverArt,
		item.IntroPoint,
		item.VocalPoint,
		item.AuxPoint,
		item.Duration,
		item.AllowSkip,
		item.IsClean,
		media.FetchedAt,
		item.Created,
		item.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media row: %w", err)
	}
	return nil
}

// Get retrieves one cached row by item id.
func (r *MediaRepository) Get(id string) (*models.CachedMedia, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_cache WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// All returns every cached row in sequence order.
func (r *MediaRepository) All() ([]models.CachedMedia, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_cache ORDER BY sequence`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query media cache: %w", err)
	}
	defer rows.Close()

	var cached []models.CachedMedia
	for rows.Next() {
		media, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		cached = append(cached, *media)
	}
	return cached, rows.Err()
}

// Delete removes one cached row.
func (r *MediaRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM media_cache WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete media row: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: cached media %s", shared.ErrItemNotFound, id)
	}
	return nil
}

// RefreshAll replaces the entire cache with a fresh catalog snapshot.
func (r *MediaRepository) RefreshAll(items []models.MediaItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM media_cache"); err != nil {
		return fmt.Errorf("failed to clear media cache: %w", err)
	}
	if _, err := tx.Exec("UPDATE media_cache_sequence SET value = 0 WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to reset sequence: %w", err)
	}

	query := `
		INSERT INTO media_cache (` + mediaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()

	for i, item := range items {
		media := models.CachedMedia{Item: item, Sequence: i + 1, FetchedAt: now}
		if err := media.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		_, err = tx.Exec(query,
			item.ItemID,
			media.Sequence,
			item.Title,
			item.Artist,
			item.Genre,
			string(item.Rotation),
			string(item.MediaType),
			item.AudioFile,
			item.CoverArt,
			item.IntroPoint,
			item.VocalPoint,
			item.AuxPoint,
			item.Duration,
			item.AllowSkip,
			item.IsClean,
			media.FetchedAt,
			item.Created,
			item.Updated,
		)
		if err != nil {
			return fmt.Errorf("failed to insert media row: %w", err)
		}
	}

	if _, err := tx.Exec("UPDATE media_cache_sequence SET value = ? WHERE id = 1", len(items)); err != nil {
		return fmt.Errorf("failed to advance sequence: %w", err)
	}
	return tx.Commit()
}

func (r *MediaRepository) scanOne(row *sql.Row) (*models.CachedMedia, error) {
	return scanMedia(row.Scan)
}

func (r *MediaRepository) scanRow(rows *sql.Rows) (*models.CachedMedia, error) {
	return scanMedia(rows.Scan)
}

func scanMedia(scan func(...any) error) (*models.CachedMedia, error) {
	var (
		media    models.CachedMedia
		rotation string
		mtype    string
		artist   sql.NullString
		genre    sql.NullString
		coverArt sql.NullString
		duration sql.NullFloat64
	)

	err := scan(
		&media.Item.ItemID,
		&media.Sequence,
		&media.Item.Title,
		&artist,
		&genre,
		&rotation,
		&mtype,
		&media.Item.AudioFile,
		&coverArt,
		&media.Item.IntroPoint,
		&media.Item.VocalPoint,
		&media.Item.AuxPoint,
		&duration,
		&media.Item.AllowSkip,
		&media.Item.IsClean,
		&media.FetchedAt,
		&media.Item.Created,
		&media.Item.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: not cached", shared.ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan media row: %w", err)
	}

	media.Item.Rotation = models.Rotation(rotation)
	media.Item.MediaType = models.MediaType(mtype)
	media.Item.Artist = artist.String
	media.Item.Genre = genre.String
	media.Item.CoverArt = coverArt.String
	media.Item.Duration = duration.Float64
	return &media, nil
}
