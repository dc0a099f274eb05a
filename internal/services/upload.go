package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/dhowden/tag"
	"github.com/h2non/filetype"
)

// PrefillFromTags fills empty Title/Artist/Genre fields from the audio file's
// embedded metadata. Fields the user already set are left alone.
func (r *UploadRequest) PrefillFromTags() error {
	f, err := os.Open(r.AudioPath)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// Missing tags are not an error; the form fields stay as given.
		return nil
	}

	if r.Title == "" {
		r.Title = meta.Title()
	}
	if r.Artist == "" {
		r.Artist = meta.Artist()
	}
	if r.Genre == "" {
		r.Genre = meta.Genre()
	}
	return nil
}

// Validate checks the request before any bytes leave the machine.
//
// The audio payload is sniffed so a mislabeled file fails here instead of at
// the backend.
func (r *UploadRequest) Validate() error {
	if r.AudioPath == "" {
		return fmt.Errorf("%w: audio file required", shared.ErrMissingArgument)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: title required", shared.ErrMissingArgument)
	}
	if r.Rotation != "" && !r.Rotation.Valid() {
		return fmt.Errorf("%w: rotation %q", shared.ErrInvalidInput, r.Rotation)
	}
	if r.MediaType != "" && !r.MediaType.Valid() {
		return fmt.Errorf("%w: media type %q", shared.ErrInvalidInput, r.MediaType)
	}

	head := make([]byte, 262)
	f, err := os.Open(r.AudioPath)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	if !filetype.IsAudio(head[:n]) {
		return fmt.Errorf("%w: %s", shared.ErrNotAudio, filepath.Base(r.AudioPath))
	}
	return nil
}

// Upload creates a catalog item via the multipart upload endpoint.
func (s *RadioCMSService) Upload(ctx context.Context, req *UploadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(form, req))
	}()

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+uploadPath, pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: token rejected by upload endpoint", shared.ErrNotAuthenticated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: upload returned %d: %s", shared.ErrAPIRequest, resp.StatusCode, detail)
	}
	return nil
}

// writeUploadForm streams the multipart body: file parts first, then the
// scalar fields, markers as a JSON object and formats as a JSON array.
func writeUploadForm(form *multipart.Writer, req *UploadRequest) error {
	if err := attachFile(form, "audio", req.AudioPath); err != nil {
		return err
	}
	if req.CoverArtPath != "" {
		if err := attachFile(form, "cover_art", req.CoverArtPath); err != nil {
			return err
		}
	}
	if req.LyricsPath != "" {
		if err := attachFile(form, "lyrics", req.LyricsPath); err != nil {
			return err
		}
	}

	markers, err := json.Marshal(req.Markers)
	if err != nil {
		return fmt.Errorf("failed to encode markers: %w", err)
	}

	formats := req.Formats
	if formats == nil {
		formats = []string{}
	}
	formatsJSON, err := json.Marshal(formats)
	if err != nil {
		return fmt.Errorf("failed to encode formats: %w", err)
	}

	rotation := req.Rotation
	if rotation == "" {
		rotation = "medium"
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "SONG"
	}

	fields := map[string]string{
		"title":      req.Title,
		"artist":     req.Artist,
		"genre":      req.Genre,
		"rotation":   string(rotation),
		"markers":    string(markers),
		"allow_skip": strconv.FormatBool(req.AllowSkip),
		"is_clean":   strconv.FormatBool(req.IsClean),
		"media_type": string(mediaType),
		"formats":    string(formatsJSON),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	return form.Close()
}

func attachFile(form *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s file: %w", field, err)
	}
	defer f.Close()

	part, err := form.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s payload: %w", field, err)
	}
	return nil
}
