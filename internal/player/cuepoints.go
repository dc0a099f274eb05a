package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
)

// Marker identifies one of the three cue point kinds.
type Marker int

const (
	MarkerIntro Marker = iota
	MarkerVocal
	MarkerAux
)

func (m Marker) String() string {
	switch m {
	case MarkerIntro:
		return "intro"
	case MarkerVocal:
		return "vocal"
	case MarkerAux:
		return "aux"
	default:
		return ""
	}
}

// SetPoint writes one marker on a cue point set, replacing any previous value
// for that kind only. Negative times are rejected; zero is a valid offset.
func SetPoint(c *models.CuePoints, kind Marker, seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("%w: position %.3f", shared.ErrInvalidMarker, seconds)
	}

	switch kind {
	case MarkerIntro:
		c.Intro = &seconds
	case MarkerVocal:
		c.Vocal = &seconds
	case MarkerAux:
		c.Aux = &seconds
	default:
		return fmt.Errorf("%w: unknown marker kind %d", shared.ErrInvalidMarker, kind)
	}
	return nil
}

// ClearPoint unsets one marker on a cue point set.
func ClearPoint(c *models.CuePoints, kind Marker) error {
	switch kind {
	case MarkerIntro:
		c.Intro = nil
	case MarkerVocal:
		c.Vocal = nil
	case MarkerAux:
		c.Aux = nil
	default:
		return fmt.Errorf("%w: unknown marker kind %d", shared.ErrInvalidMarker, kind)
	}
	return nil
}

// Point reads one marker from a cue point set, nil when unset.
func Point(c models.CuePoints, kind Marker) *float64 {
	switch kind {
	case MarkerIntro:
		return c.Intro
	case MarkerVocal:
		return c.Vocal
	case MarkerAux:
		return c.Aux
	default:
		return nil
	}
}

// Transport is a positioned play/pause surface over one audio source.
type Transport interface {
	// Play starts or resumes playback from the given position in seconds.
	Play(ctx context.Context, from float64) error
	// Pause stops playback, retaining the current position.
	Pause() error
	// Seek moves the position without changing the play state.
	Seek(pos float64) error
	// Position reports the current position in seconds.
	Position() float64
	// Close releases the transport's resources.
	Close() error
}

// deck pairs a registered transport with its asset's cue points.
type deck struct {
	transport Transport
	cues      models.CuePoints
}

// Session enforces playback mutual exclusion across registered transports.
//
// At most one key is active at any instant. Starting playback on a new key
// pauses the previous transport and resets it to its intro point, so the next
// press on that row always starts from the top of its airable region.
type Session struct {
	mu     sync.Mutex
	decks  map[string]*deck
	active string
}

// NewSession creates an empty playback session.
func NewSession() *Session {
	return &Session{decks: make(map[string]*deck)}
}

// Register adds or replaces the transport for a key. Registering over the
// active key pauses and closes the old transport first.
func (s *Session) Register(key string, t Transport, cues models.CuePoints) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.decks[key]; ok {
		old.transport.Pause()
		old.transport.Close()
		if s.active == key {
			s.active = ""
		}
	}
	s.decks[key] = &deck{transport: t, cues: cues}
}

// SetCues replaces the cue points for a registered key.
func (s *Session) SetCues(key string, cues models.CuePoints) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.decks[key]; ok {
		d.cues = cues
	}
}

// RequestPlay starts playback for key from its intro point, pausing and
// resetting whichever transport was active before.
func (s *Session) RequestPlay(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.decks[key]
	if !ok {
		return fmt.Errorf("%w: no transport registered for %s", shared.ErrItemNotFound, key)
	}

	if s.active != "" && s.active != key {
		prev := s.decks[s.active]
		if err := prev.transport.Pause(); err != nil {
			return fmt.Errorf("failed to pause %s: %w", s.active, err)
		}
		if err := prev.transport.Seek(prev.cues.IntroOrZero()); err != nil {
			return fmt.Errorf("failed to reset %s: %w", s.active, err)
		}
	}

	if err := next.transport.Play(ctx, next.cues.IntroOrZero()); err != nil {
		return err
	}
	s.active = key
	return nil
}

// Pause pauses the given key. Pausing a key that is not active is a no-op.
func (s *Session) Pause(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != key {
		return nil
	}
	d := s.decks[key]
	if err := d.transport.Pause(); err != nil {
		return err
	}
	s.active = ""
	return nil
}

// ActiveKey reports which key is playing, or "" when none is.
func (s *Session) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Tick polls the active transport and auto-pauses it once its position
// passes the aux point. Returns the key that was stopped, or "".
func (s *Session) Tick() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return ""
	}
	d := s.decks[s.active]
	if d.cues.Aux == nil {
		return ""
	}
	if d.transport.Position() < *d.cues.Aux {
		return ""
	}

	stopped := s.active
	d.transport.Pause()
	d.transport.Seek(d.cues.IntroOrZero())
	s.active = ""
	return stopped
}

// Close pauses and closes every registered transport.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.decks {
		d.transport.Pause()
		d.transport.Close()
	}
	s.decks = make(map[string]*deck)
	s.active = ""
}
