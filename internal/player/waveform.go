package player

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
)

// peakRate is the fixed downsampling resolution in peaks per second.
const peakRate = 10

// Display scale bounds for [Editor.Zoom], in pixels per second.
const (
	minZoom     = 4.0
	maxZoom     = 400.0
	defaultZoom = 40.0
)

// WaveformData contains downsampled peak data for one asset.
type WaveformData struct {
	MediaID       string    `json:"media_id"`
	SamplesPerSec int       `json:"samples_per_sec"`
	DurationMS    int64     `json:"duration_ms"`
	PeakLeft      []float32 `json:"peak_left"`
	PeakRight     []float32 `json:"peak_right"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Duration returns the asset length in seconds.
func (w *WaveformData) Duration() float64 {
	return float64(w.DurationMS) / 1000
}

// CompressPeaks encodes peak data as a gzipped little-endian stream: a sample
// count header followed by interleaved left/right float32 pairs.
func CompressPeaks(data *WaveformData) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(data.PeakLeft)))

	for i := 0; i < len(data.PeakLeft); i++ {
		binary.Write(&buf, binary.LittleEndian, data.PeakLeft[i])
		if i < len(data.PeakRight) {
			binary.Write(&buf, binary.LittleEndian, data.PeakRight[i])
		} else {
			binary.Write(&buf, binary.LittleEndian, data.PeakLeft[i])
		}
	}

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to compress peaks: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress peaks: %w", err)
	}
	return compressed.Bytes(), nil
}

// DecompressPeaks decodes a blob produced by [CompressPeaks].
func DecompressPeaks(blob []byte) (*WaveformData, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: bad gzip header: %v", shared.ErrDecodeFailed, err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
	}

	buf := bytes.NewReader(raw)
	var count int32
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", shared.ErrDecodeFailed, err)
	}
	if count < 0 || int64(count)*8 > int64(buf.Len()) {
		return nil, fmt.Errorf("%w: corrupt peak count %d", shared.ErrDecodeFailed, count)
	}

	left := make([]float32, count)
	right := make([]float32, count)
	for i := int32(0); i < count; i++ {
		if err := binary.Read(buf, binary.LittleEndian, &left[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
		}
		if err := binary.Read(buf, binary.LittleEndian, &right[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
		}
	}

	return &WaveformData{
		SamplesPerSec: peakRate,
		DurationMS:    int64(count) * 1000 / peakRate,
		PeakLeft:      left,
		PeakRight:     right,
	}, nil
}

// DecodePeaks produces peak data for a local path or URL.
//
// Local WAV files are parsed natively. Everything else is piped through the
// decode binary (ffmpeg unless configured otherwise) as raw 16-bit PCM.
func DecodePeaks(ctx context.Context, source, decodeBin string) (*WaveformData, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", shared.ErrDecodeFailed)
	}

	if isLocalWAV(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecodeFailed, err)
		}
		defer f.Close()

		data, err := decodeWAV(f)
		if err == nil {
			data.GeneratedAt = time.Now()
			return data, nil
		}
		// Non-PCM WAV variants fall through to the external decoder.
	}

	data, err := decodeExternal(ctx, source, decodeBin)
	if err != nil {
		return nil, err
	}
	data.GeneratedAt = time.Now()
	return data, nil
}

func isLocalWAV(source string) bool {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return false
	}
	return strings.EqualFold(filepath.Ext(source), ".wav")
}

// maxChunkBytes bounds a single RIFF chunk allocation. 512 MiB covers close
// to an hour of CD-quality stereo PCM, well past any radio asset.
const maxChunkBytes = 512 << 20

// decodeWAV parses a RIFF/WAVE stream, accepting 16-bit PCM only.
func decodeWAV(r io.Reader) (*WaveformData, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: short riff header", shared.ErrDecodeFailed)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a wav stream", shared.ErrDecodeFailed)
	}

	var (
		sampleRate int
		channels   int
		bitsPer    int
		pcm        []byte
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			break
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])
		if size > maxChunkBytes {
			return nil, fmt.Errorf("%w: oversized %q chunk (%d bytes)", shared.ErrDecodeFailed, id, size)
		}

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w: truncated fmt chunk", shared.ErrDecodeFailed)
			}
			if len(body) < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", shared.ErrDecodeFailed)
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPer = int(binary.LittleEndian.Uint16(body[14:16]))
			if format != 1 || bitsPer != 16 {
				return nil, fmt.Errorf("%w: unsupported wav encoding (format %d, %d bit)", shared.ErrDecodeFailed, format, bitsPer)
			}
		case "data":
			body := make([]byte, size)
			n, err := io.ReadFull(r, body)
			if err != nil && n == 0 {
				return nil, fmt.Errorf("%w: truncated data chunk", shared.ErrDecodeFailed)
			}
			pcm = body[:n]
			// Chunks are word aligned; an odd-sized data chunk carries a pad
			// byte that must not shift the next chunk header.
			if size%2 == 1 {
				io.CopyN(io.Discard, r, 1)
			}
		default:
			// Chunks are word aligned; skip payload plus pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				break
			}
		}

		if pcm != nil && sampleRate > 0 {
			break
		}
	}

	if sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", shared.ErrDecodeFailed)
	}
	if pcm == nil {
		return nil, fmt.Errorf("%w: missing data chunk", shared.ErrDecodeFailed)
	}
	return buildPeaks(pcm, sampleRate, channels), nil
}

// decodeExternal shells out to the decode binary for raw stereo PCM.
func decodeExternal(ctx context.Context, source, decodeBin string) (*WaveformData, error) {
	if decodeBin == "" {
		decodeBin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, decodeBin,
		"-v", "error",
		"-i", source,
		"-f", "s16le", "-ac", "2", "-ar", "44100",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	pcm, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrDecodeFailed, detail)
	}
	if len(pcm) < 4 {
		return nil, fmt.Errorf("%w: decoder produced no samples", shared.ErrDecodeFailed)
	}
	return buildPeaks(pcm, 44100, 2), nil
}

// buildPeaks downsamples interleaved 16-bit PCM into per-window peak values.
func buildPeaks(pcm []byte, sampleRate, channels int) *WaveformData {
	frameBytes := 2 * channels
	frames := len(pcm) / frameBytes
	window := sampleRate / peakRate
	if window == 0 {
		window = 1
	}

	count := (frames + window - 1) / window
	left := make([]float32, count)
	right := make([]float32, count)

	for i := 0; i < frames; i++ {
		base := i * frameBytes
		l := int16(binary.LittleEndian.Uint16(pcm[base : base+2]))
		r := l
		if channels > 1 {
			r = int16(binary.LittleEndian.Uint16(pcm[base+2 : base+4]))
		}

		bucket := i / window
		if la := absPeak(l); la > left[bucket] {
			left[bucket] = la
		}
		if ra := absPeak(r); ra > right[bucket] {
			right[bucket] = ra
		}
	}

	return &WaveformData{
		SamplesPerSec: peakRate,
		DurationMS:    int64(frames) * 1000 / int64(sampleRate),
		PeakLeft:      left,
		PeakRight:     right,
	}
}

func absPeak(s int16) float32 {
	v := int32(s)
	if v < 0 {
		v = -v
	}
	return float32(v) / 32768
}

// PeakCache stores decoded peak data between editor sessions, keyed by
// media id.
type PeakCache interface {
	Get(mediaID string) (*WaveformData, error)
	Put(mediaID string, data *WaveformData) error
}

// Editor drives the marker editing screen for one asset at a time.
//
// Load replaces the whole session; a decode failure disables the editor so
// no stale peaks or markers from the previous asset can leak into the next.
type Editor struct {
	mu sync.Mutex

	playBin   string
	decodeBin string
	cache     PeakCache

	// newTransport is swappable for tests.
	newTransport func(bin, source string) Transport

	source    string
	peaks     *WaveformData
	markers   models.CuePoints
	transport Transport
	pxPerSec  float64
	disabled  bool
}

// NewEditor creates an editor using the configured player and decoder
// binaries.
func NewEditor(playBin, decodeBin string) *Editor {
	return &Editor{
		playBin:   playBin,
		decodeBin: decodeBin,
		newTransport: func(bin, source string) Transport {
			return NewExecTransport(bin, source)
		},
		pxPerSec: defaultZoom,
		disabled: true,
	}
}

// SetCache attaches a peak cache consulted by [Editor.Load].
func (e *Editor) SetCache(c PeakCache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = c
}

// Load decodes a new asset and replaces the editor state wholesale.
//
// A cached waveform for the media id skips the decode entirely; a fresh
// decode is written back so the asset is never decoded twice. On failure the
// previous session is torn down and the editor stays disabled until a Load
// succeeds.
func (e *Editor) Load(ctx context.Context, mediaID, source string, markers models.CuePoints) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeLocked()

	peaks := e.cachedPeaks(mediaID)
	if peaks == nil {
		decoded, err := DecodePeaks(ctx, source, e.decodeBin)
		if err != nil {
			e.disabled = true
			return err
		}
		peaks = decoded
		if e.cache != nil && mediaID != "" {
			// Cache writes are best effort; a failed Put costs a re-decode.
			e.cache.Put(mediaID, peaks)
		}
	}

	e.source = source
	e.peaks = peaks
	e.markers = markers
	e.transport = e.newTransport(e.playBin, source)
	e.pxPerSec = defaultZoom
	e.disabled = false
	return nil
}

// cachedPeaks returns cached peak data for the media id, or nil on any miss.
func (e *Editor) cachedPeaks(mediaID string) *WaveformData {
	if e.cache == nil || mediaID == "" {
		return nil
	}
	peaks, err := e.cache.Get(mediaID)
	if err != nil {
		return nil
	}
	return peaks
}

// Enabled reports whether the editor holds a decoded asset.
func (e *Editor) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.disabled
}

// Peaks returns the decoded peak data, or nil when disabled.
func (e *Editor) Peaks() *WaveformData {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disabled {
		return nil
	}
	return e.peaks
}

// Markers returns the working cue points.
func (e *Editor) Markers() models.CuePoints {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markers
}

// SetMarker captures the transport position into the given marker kind,
// replacing any previous value for that kind only.
func (e *Editor) SetMarker(kind Marker) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled {
		return fmt.Errorf("%w: editor has no decoded asset", shared.ErrDecodeFailed)
	}

	return SetPoint(&e.markers, kind, e.transport.Position())
}

// ClearMarker unsets the given marker kind.
func (e *Editor) ClearMarker(kind Marker) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled {
		return fmt.Errorf("%w: editor has no decoded asset", shared.ErrDecodeFailed)
	}

	return ClearPoint(&e.markers, kind)
}

// Play resumes playback from the current transport position.
func (e *Editor) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled {
		return fmt.Errorf("%w: editor has no decoded asset", shared.ErrDecodeFailed)
	}
	return e.transport.Play(ctx, e.transport.Position())
}

// Pause halts playback, keeping the position.
func (e *Editor) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled {
		return nil
	}
	return e.transport.Pause()
}

// Position reports the transport position in seconds, 0 when disabled.
func (e *Editor) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled {
		return 0
	}
	return e.transport.Position()
}

// SeekToMarker seeks to the marker and plays from it. An unset marker is a
// no-op rather than an error, matching the screen's audition buttons.
func (e *Editor) SeekToMarker(ctx context.Context, kind Marker) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled {
		return fmt.Errorf("%w: editor has no decoded asset", shared.ErrDecodeFailed)
	}

	target := Point(e.markers, kind)
	if target == nil {
		return nil
	}
	return e.transport.Play(ctx, *target)
}

// Zoom scales the display resolution by factor, clamped to the zoom bounds.
// Returns the resulting pixels-per-second value.
func (e *Editor) Zoom(factor float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if factor > 0 {
		e.pxPerSec *= factor
	}
	if e.pxPerSec < minZoom {
		e.pxPerSec = minZoom
	}
	if e.pxPerSec > maxZoom {
		e.pxPerSec = maxZoom
	}
	return e.pxPerSec
}

// Close tears down the editor session.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
	e.disabled = true
}

func (e *Editor) closeLocked() {
	if e.transport != nil {
		e.transport.Pause()
		e.transport.Close()
		e.transport = nil
	}
	e.peaks = nil
	e.source = ""
	e.markers = models.CuePoints{}
}
