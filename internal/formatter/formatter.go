// package formatter provides functions to export station playlists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
)

// marker formats an optional cue point for export, blank when unset.
func marker(m *float64) string {
	if m == nil {
		return ""
	}
	return strconv.FormatFloat(*m, 'f', -1, 64)
}

// ExportToCSV converts a station playlist to CSV with columns: Position, Title, Artist, Genre, Rotation, Type, Duration, Intro, Vox, Aux
func ExportToCSV(assignments []models.Assignment) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Genre", "Rotation", "Type", "Duration", "Intro", "Vox", "Aux"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range assignments {
		record := []string{
			strconv.Itoa(a.Order + 1),
			a.Title,
			a.Artist,
			a.Genre,
			string(a.Rotation),
			string(a.MediaType),
			shared.FormatDuration(a.Duration),
			marker(a.IntroPoint),
			marker(a.VocalPoint),
			marker(a.AuxPoint),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a station playlist to Markdown format
func ExportToMarkdown(station models.Station, assignments []models.Assignment) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", station.Name))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(assignments)))

	buf.WriteString("## Playlist\n\n")
	for _, a := range assignments {
		duration := shared.FormatDuration(a.Duration)
		rotationPart := ""
		if a.Rotation != "" {
			rotationPart = fmt.Sprintf(" (%s rotation)", a.Rotation)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", a.Order+1, a.Artist, a.Title, rotationPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a station playlist to plain text format
func ExportToText(station models.Station, assignments []models.Assignment) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Station: %s\n", station.Name))
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(assignments)))

	for _, a := range assignments {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", a.Order+1, a.Artist, a.Title))
	}

	return buf.Bytes(), nil
}

// ExportResult contains the paths of files created by WriteExport
type ExportResult struct {
	PlaylistFile string
	MetadataFile string
}

// WriteExport writes a playlist CSV plus a station metadata JSON file.
//
// Defaults to the station ID as the base filename & creates {base}_playlist.csv and {base}_metadata.json
func WriteExport(station models.Station, assignments []models.Assignment, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = station.ID
	}

	csvData, err := ExportToCSV(assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	playlistFile := baseFilepath + "_playlist.csv"
	if err := os.WriteFile(playlistFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write playlist file: %w", err)
	}

	metadata := struct {
		Station models.Station `json:"station"`
		Items   int            `json:"items"`
	}{Station: station, Items: len(assignments)}

	metadataJSON, err := shared.MarshalJSON(metadata, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &ExportResult{PlaylistFile: playlistFile, MetadataFile: metadataFile}, nil
}
