// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/services"
	"github.com/desertthunder/airdeck/internal/shared"
)

// MockLibrary is a stateful in-memory double for [services.Library].
//
// FailNext makes the next mutating call return an error, for exercising the
// reload-on-failure paths.
type MockLibrary struct {
	mu sync.Mutex

	ItemsByID   map[string]models.MediaItem
	ItemOrder   []string
	StationList []models.Station
	Assigned    map[string][]models.Assignment
	FailNext    error
}

// NewMockLibrary seeds a library with the given catalog items and stations.
func NewMockLibrary(items []models.MediaItem, stations []models.Station) *MockLibrary {
	m := &MockLibrary{
		ItemsByID:   make(map[string]models.MediaItem, len(items)),
		StationList: stations,
		Assigned:    make(map[string][]models.Assignment),
	}
	for _, item := range items {
		m.ItemsByID[item.ItemID] = item
		m.ItemOrder = append(m.ItemOrder, item.ItemID)
	}
	return m
}

var _ services.Library = (*MockLibrary)(nil)

// takeFailure consumes a pending injected failure.
func (m *MockLibrary) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MockLibrary) Items(ctx context.Context) ([]models.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, 0, len(m.ItemOrder))
	for _, id := range m.ItemOrder {
		items = append(items, m.ItemsByID[id])
	}
	return items, nil
}

func (m *MockLibrary) Item(ctx context.Context, id string) (*models.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	item, ok := m.ItemsByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	return &item, nil
}

func (m *MockLibrary) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if _, ok := m.ItemsByID[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}

	delete(m.ItemsByID, id)
	for i, ordered := range m.ItemOrder {
		if ordered == id {
			m.ItemOrder = append(m.ItemOrder[:i], m.ItemOrder[i+1:]...)
			break
		}
	}
	for stationID, assignments := range m.Assigned {
		kept := assignments[:0]
		for _, a := range assignments {
			if a.ItemID != id {
				kept = append(kept, a)
			}
		}
		m.Assigned[stationID] = renumber(kept)
	}
	return nil
}

func (m *MockLibrary) Stations(ctx context.Context) ([]models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	return m.StationList, nil
}

func (m *MockLibrary) Assignments(ctx context.Context, stationID string) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	assignments := make([]models.Assignment, len(m.Assigned[stationID]))
	copy(assignments, m.Assigned[stationID])
	return assignments, nil
}

func (m *MockLibrary) CreateAssignment(ctx context.Context, stationID, itemID string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	item, ok := m.ItemsByID[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}
	for _, a := range m.Assigned[stationID] {
		if a.ItemID == itemID {
			// Duplicate assignment answers success, mirroring the backend.
			dup := a
			return &dup, nil
		}
	}

	created := models.Assignment{
		MediaItem:      item,
		PlaylistItemID: shared.GenerateID(),
		StationID:      stationID,
		Order:          len(m.Assigned[stationID]),
	}
	m.Assigned[stationID] = append(m.Assigned[stationID], created)
	return &created, nil
}

func (m *MockLibrary) DeleteAssignment(ctx context.Context, playlistItemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	for stationID, assignments := range m.Assigned {
		for i, a := range assignments {
			if a.PlaylistItemID == playlistItemID {
				m.Assigned[stationID] = renumber(append(assignments[:i], assignments[i+1:]...))
				return nil
			}
		}
	}
	return fmt.Errorf("%w: assignment %s", shared.ErrItemNotFound, playlistItemID)
}

func (m *MockLibrary) Reorder(ctx context.Context, stationID string, items []models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	ordered := make([]models.Assignment, len(items))
	copy(ordered, items)
	m.Assigned[stationID] = renumber(ordered)
	return nil
}

func (m *MockLibrary) Upload(ctx context.Context, req *services.UploadRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.takeFailure()
}

func (m *MockLibrary) Name() string { return "mock" }

func renumber(assignments []models.Assignment) []models.Assignment {
	for i := range assignments {
		assignments[i].Order = i
	}
	return assignments
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}
