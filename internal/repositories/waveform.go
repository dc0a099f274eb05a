package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/airdeck/internal/player"
	"github.com/desertthunder/airdeck/internal/shared"
)

// WaveformRepository caches compressed peak data per media id.
type WaveformRepository struct {
	db *sql.DB
}

var _ player.PeakCache = (*WaveformRepository)(nil)

// NewWaveformRepository creates a new WaveformRepository with the given database connection
func NewWaveformRepository(db *sql.DB) *WaveformRepository {
	return &WaveformRepository{db: db}
}

// Put stores or replaces the peak data for a media id.
func (r *WaveformRepository) Put(mediaID string, data *player.WaveformData) error {
	if mediaID == "" {
		return fmt.Errorf("%w: media id required", shared.ErrMissingArgument)
	}

	blob, err := player.CompressPeaks(data)
	if err != nil {
		return err
	}

	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	query := `
		INSERT INTO waveform_cache (media_id, samples_per_sec, duration_ms, peak_data, generated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET
			samples_per_sec = excluded.samples_per_sec,
			duration_ms = excluded.duration_ms,
			peak_data = excluded.peak_data,
			generated_at = excluded.generated_at
	`
	_, err = r.db.Exec(query, mediaID, data.SamplesPerSec, data.DurationMS, blob, generatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert waveform: %w", err)
	}
	return nil
}

// Get retrieves and decompresses cached peak data.
func (r *WaveformRepository) Get(mediaID string) (*player.WaveformData, error) {
	query := `
		SELECT samples_per_sec, duration_ms, peak_data, generated_at
		FROM waveform_cache
		WHERE media_id = ?
	`

	var (
		samplesPerSec int
		durationMS    int64
		blob          []byte
		generatedAt   time.Time
	)
	err := r.db.QueryRow(query, mediaID).Scan(&samplesPerSec, &durationMS, &blob, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no cached waveform for %s", shared.ErrItemNotFound, mediaID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query waveform cache: %w", err)
	}

	data, err := player.DecompressPeaks(blob)
	if err != nil {
		return nil, err
	}
	data.MediaID = mediaID
	data.SamplesPerSec = samplesPerSec
	data.DurationMS = durationMS
	data.GeneratedAt = generatedAt
	return data, nil
}

// Delete removes cached peak data for a media id.
func (r *WaveformRepository) Delete(mediaID string) error {
	if _, err := r.db.Exec("DELETE FROM waveform_cache WHERE media_id = ?", mediaID); err != nil {
		return fmt.Errorf("failed to delete waveform: %w", err)
	}
	return nil
}
