// RadioCMS API implementation of [Library]
//
// Endpoint paths mirror the dashboard's /api/v3 surface.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	libraryViewPath   = "/api/v3/libraryview"
	stationsPath      = "/api/v3/stations/"
	playlistItemsPath = "/api/v3/playlist-items/"
	playlistsPath     = "/api/v3/playlists"
	authTokenPath     = "/api/v3/auth/token"
	uploadPath        = "/api/v3/library/items/"

	defaultRateLimit = 5.0
)

// RadioCMSService implements the [Library] interface against a RadioCMS backend.
//
// Uses [oauth2] for bearer-token transport and a [rate.Limiter] so bulk commands
// cannot hammer the backend.
type RadioCMSService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Library = (*RadioCMSService)(nil)

// NewRadioCMSService creates a new RadioCMS client for the given base URL and bearer token.
func NewRadioCMSService(baseURL, token string, rateLimit float64) (*RadioCMSService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: missing API base URL", shared.ErrInvalidConfig)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no token configured, run `airdeck login`", shared.ErrNotAuthenticated)
	}
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &RadioCMSService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: oauth2.NewClient(context.Background(), src),
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), 1),
	}, nil
}

// Name returns the backend name.
func (s *RadioCMSService) Name() string {
	return "RadioCMS"
}

// Login exchanges credentials for a token pair at the backend's token endpoint.
//
// Runs outside the authorized client since no token exists yet.
func Login(ctx context.Context, baseURL string, creds Credentials) (*TokenPair, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	endpoint := strings.TrimSuffix(baseURL, "/") + authTokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: check username and password", shared.ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint returned %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", shared.ErrAuthFailed)
	}

	return &pair, nil
}

// do issues a request against the backend and decodes a JSON response into out (when non-nil).
//
// Maps 401 to [shared.ErrNotAuthenticated] so the caller can trigger the sign-out flow.
func (s *RadioCMSService) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: token rejected by %s", shared.ErrNotAuthenticated, path)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Items retrieves the full media catalog.
func (s *RadioCMSService) Items(ctx context.Context) ([]models.MediaItem, error) {
	var items []models.MediaItem
	if err := s.do(ctx, http.MethodGet, libraryViewPath, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item retrieves one catalog item with full detail.
func (s *RadioCMSService) Item(ctx context.Context, id string) (*models.MediaItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: item id required", shared.ErrMissingArgument)
	}

	var item models.MediaItem
	if err := s.do(ctx, http.MethodGet, libraryViewPath+"/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem deletes a catalog item by id.
func (s *RadioCMSService) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: item id required", shared.ErrMissingArgument)
	}
	return s.do(ctx, http.MethodDelete, libraryViewPath+"/"+url.PathEscape(id)+"/", nil, nil)
}

// Stations retrieves the selectable broadcast stations.
func (s *RadioCMSService) Stations(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	if err := s.do(ctx, http.MethodGet, stationsPath, nil, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// Assignments retrieves a station's assigned items in playback order.
func (s *RadioCMSService) Assignments(ctx context.Context, stationID string) ([]models.Assignment, error) {
	if stationID == "" {
		return nil, fmt.Errorf("%w: station id required", shared.ErrMissingArgument)
	}

	path := playlistItemsPath + "songs_by_station/?station_id=" + url.QueryEscape(stationID)
	var assignments []models.Assignment
	if err := s.do(ctx, http.MethodGet, path, nil, &assignments); err != nil {
		return nil, err
	}

	// The endpoint returns rows in playback order but without dense order
	// values; the engine relies on zero-based contiguity.
	for i := range assignments {
		assignments[i].Order = i
		assignments[i].StationID = stationID
	}
	return assignments, nil
}

// CreateAssignment assigns a catalog item to a station.
//
// The backend answers 200 with a message instead of 201 when the item is
// already on the station; both are success here and the caller reconciles by
// reloading.
func (s *RadioCMSService) CreateAssignment(ctx context.Context, stationID, itemID string) (*models.Assignment, error) {
	if stationID == "" || itemID == "" {
		return nil, fmt.Errorf("%w: station id and item id required", shared.ErrMissingArgument)
	}

	payload, err := json.Marshal(map[string]string{
		"station_id":   stationID,
		"library_item": itemID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode assignment: %w", err)
	}

	var created models.Assignment
	if err := s.do(ctx, http.MethodPost, playlistItemsPath, bytes.NewReader(payload), &created); err != nil {
		return nil, err
	}
	created.StationID = stationID
	return &created, nil
}

// DeleteAssignment removes an assignment, leaving the catalog item intact.
func (s *RadioCMSService) DeleteAssignment(ctx context.Context, playlistItemID string) error {
	if playlistItemID == "" {
		return fmt.Errorf("%w: playlist item id required", shared.ErrMissingArgument)
	}
	return s.do(ctx, http.MethodDelete, playlistItemsPath+url.PathEscape(playlistItemID)+"/", nil, nil)
}

// Reorder persists a station's full reordered assignment list.
func (s *RadioCMSService) Reorder(ctx context.Context, stationID string, items []models.Assignment) error {
	if stationID == "" {
		return fmt.Errorf("%w: station id required", shared.ErrMissingArgument)
	}

	payload, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return fmt.Errorf("failed to encode reorder payload: %w", err)
	}

	path := playlistsPath + "/" + url.PathEscape(stationID) + "/reorder/"
	return s.do(ctx, http.MethodPut, path, bytes.NewReader(payload), nil)
}
