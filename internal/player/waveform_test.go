package player

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/shared"
)

// buildWAV produces a mono 16-bit PCM WAV with the given samples.
func buildWAV(sampleRate int, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())
	return buf.Bytes()
}

func writeWAVFile(t *testing.T, sampleRate int, samples []int16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, buildWAV(sampleRate, samples), 0o644); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	return path
}

func TestDecodeWAV(t *testing.T) {
	t.Run("Downsamples To Fixed Resolution", func(t *testing.T) {
		// One second at 1000 Hz: ten peak windows of 100 frames each.
		samples := make([]int16, 1000)
		for i := range samples {
			samples[i] = 16384
		}
		samples[250] = 32767 // spike in the third window

		data, err := decodeWAV(bytes.NewReader(buildWAV(1000, samples)))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if data.SamplesPerSec != peakRate {
			t.Errorf("expected %d peaks per second, got %d", peakRate, data.SamplesPerSec)
		}
		if data.DurationMS != 1000 {
			t.Errorf("expected 1000ms duration, got %d", data.DurationMS)
		}
		if len(data.PeakLeft) != 10 {
			t.Fatalf("expected 10 peaks, got %d", len(data.PeakLeft))
		}
		if math.Abs(float64(data.PeakLeft[0])-0.5) > 0.01 {
			t.Errorf("expected ~0.5 peak, got %v", data.PeakLeft[0])
		}
		if data.PeakLeft[2] < 0.99 {
			t.Errorf("expected spike captured in window 2, got %v", data.PeakLeft[2])
		}
	})

	t.Run("Rejects Non WAV Stream", func(t *testing.T) {
		_, err := decodeWAV(bytes.NewReader([]byte("definitely not riff data")))
		if !errors.Is(err, shared.ErrDecodeFailed) {
			t.Errorf("expected ErrDecodeFailed, got %v", err)
		}
	})

	t.Run("Rejects Non PCM Encoding", func(t *testing.T) {
		wav := buildWAV(1000, make([]int16, 100))
		// Flip the format tag to IEEE float.
		wav[20] = 3
		_, err := decodeWAV(bytes.NewReader(wav))
		if !errors.Is(err, shared.ErrDecodeFailed) {
			t.Errorf("expected ErrDecodeFailed, got %v", err)
		}
	})

	t.Run("Skips Pad Byte After Odd Data Chunk", func(t *testing.T) {
		// A 3-byte data chunk ahead of fmt: without the pad byte skip the
		// fmt header lands one byte off and parsing falls apart.
		var buf bytes.Buffer
		buf.WriteString("RIFF")
		binary.Write(&buf, binary.LittleEndian, uint32(0))
		buf.WriteString("WAVE")

		buf.WriteString("data")
		binary.Write(&buf, binary.LittleEndian, uint32(3))
		buf.Write([]byte{0x00, 0x10, 0x7f})
		buf.WriteByte(0) // pad

		buf.WriteString("fmt ")
		binary.Write(&buf, binary.LittleEndian, uint32(16))
		binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
		binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
		binary.Write(&buf, binary.LittleEndian, uint32(1000))
		binary.Write(&buf, binary.LittleEndian, uint32(2000))
		binary.Write(&buf, binary.LittleEndian, uint16(2))
		binary.Write(&buf, binary.LittleEndian, uint16(16))

		data, err := decodeWAV(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(data.PeakLeft) != 1 {
			t.Fatalf("expected 1 peak, got %d", len(data.PeakLeft))
		}
		// One full frame: int16 0x1000 out of full scale.
		if math.Abs(float64(data.PeakLeft[0])-0.125) > 0.001 {
			t.Errorf("expected 0.125 peak, got %v", data.PeakLeft[0])
		}
	})

	t.Run("Rejects Oversized Chunk", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString("RIFF")
		binary.Write(&buf, binary.LittleEndian, uint32(0))
		buf.WriteString("WAVE")
		buf.WriteString("data")
		binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFF0))

		_, err := decodeWAV(bytes.NewReader(buf.Bytes()))
		if !errors.Is(err, shared.ErrDecodeFailed) {
			t.Errorf("expected ErrDecodeFailed, got %v", err)
		}
	})
}

func TestPeakCodec(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		data := &WaveformData{
			SamplesPerSec: peakRate,
			DurationMS:    300,
			PeakLeft:      []float32{0.1, 0.5, 0.9},
			PeakRight:     []float32{0.2, 0.4, 0.8},
		}

		blob, err := CompressPeaks(data)
		if err != nil {
			t.Fatalf("compress failed: %v", err)
		}

		got, err := DecompressPeaks(blob)
		if err != nil {
			t.Fatalf("decompress failed: %v", err)
		}
		if len(got.PeakLeft) != 3 {
			t.Fatalf("expected 3 peaks, got %d", len(got.PeakLeft))
		}
		for i := range data.PeakLeft {
			if got.PeakLeft[i] != data.PeakLeft[i] || got.PeakRight[i] != data.PeakRight[i] {
				t.Errorf("peak %d = %v/%v, want %v/%v", i, got.PeakLeft[i], got.PeakRight[i], data.PeakLeft[i], data.PeakRight[i])
			}
		}
	})

	t.Run("Corrupt Blob", func(t *testing.T) {
		_, err := DecompressPeaks([]byte("not gzip"))
		if !errors.Is(err, shared.ErrDecodeFailed) {
			t.Errorf("expected ErrDecodeFailed, got %v", err)
		}
	})
}

// newTestEditor builds an enabled editor over a real WAV file with a fake
// transport injected.
func newTestEditor(t *testing.T) (*Editor, *fakeTransport) {
	t.Helper()

	transport := &fakeTransport{}
	editor := NewEditor("", "")
	editor.newTransport = func(bin, source string) Transport { return transport }

	path := writeWAVFile(t, 1000, make([]int16, 2000))
	if err := editor.Load(context.Background(), "item-1", path, models.CuePoints{}); err != nil {
		t.Fatalf("failed to load editor: %v", err)
	}
	return editor, transport
}

// fakePeakCache records Get/Put traffic for cache wiring tests.
type fakePeakCache struct {
	stored map[string]*WaveformData
	gets   int
	puts   int
}

func newFakePeakCache() *fakePeakCache {
	return &fakePeakCache{stored: make(map[string]*WaveformData)}
}

func (c *fakePeakCache) Get(mediaID string) (*WaveformData, error) {
	c.gets++
	data, ok := c.stored[mediaID]
	if !ok {
		return nil, errors.New("miss")
	}
	return data, nil
}

func (c *fakePeakCache) Put(mediaID string, data *WaveformData) error {
	c.puts++
	c.stored[mediaID] = data
	return nil
}

func TestEditor(t *testing.T) {
	t.Run("Load Enables And Decodes", func(t *testing.T) {
		editor, _ := newTestEditor(t)
		defer editor.Close()

		if !editor.Enabled() {
			t.Fatal("expected editor enabled after load")
		}
		peaks := editor.Peaks()
		if peaks == nil || peaks.DurationMS != 2000 {
			t.Errorf("unexpected peaks %+v", peaks)
		}
	})

	t.Run("Failed Load Disables", func(t *testing.T) {
		editor, _ := newTestEditor(t)
		defer editor.Close()

		err := editor.Load(context.Background(), "item-1", "", models.CuePoints{})
		if !errors.Is(err, shared.ErrDecodeFailed) {
			t.Fatalf("expected ErrDecodeFailed, got %v", err)
		}
		if editor.Enabled() {
			t.Error("expected editor disabled after failed load")
		}
		if editor.Peaks() != nil {
			t.Error("stale peaks must not survive a failed load")
		}
		if err := editor.SetMarker(MarkerIntro); !errors.Is(err, shared.ErrDecodeFailed) {
			t.Errorf("marker ops must be rejected while disabled, got %v", err)
		}
	})

	t.Run("Marker Round Trip Is Exact", func(t *testing.T) {
		editor, transport := newTestEditor(t)
		defer editor.Close()

		transport.pos = 12.5
		if err := editor.SetMarker(MarkerIntro); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		markers := editor.Markers()
		if markers.Intro == nil || *markers.Intro != 12.5 {
			t.Errorf("expected intro exactly 12.5, got %v", markers.Intro)
		}

		// Setting again replaces only that kind.
		transport.pos = 14
		if err := editor.SetMarker(MarkerIntro); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		markers = editor.Markers()
		if *markers.Intro != 14 {
			t.Errorf("expected intro replaced with 14, got %v", *markers.Intro)
		}
		if markers.Vocal != nil || markers.Aux != nil {
			t.Error("other marker kinds must stay unset")
		}
	})

	t.Run("Negative Position Rejected", func(t *testing.T) {
		editor, transport := newTestEditor(t)
		defer editor.Close()

		transport.pos = -1
		if err := editor.SetMarker(MarkerAux); !errors.Is(err, shared.ErrInvalidMarker) {
			t.Errorf("expected ErrInvalidMarker, got %v", err)
		}
	})

	t.Run("Clear Marker", func(t *testing.T) {
		editor, transport := newTestEditor(t)
		defer editor.Close()

		transport.pos = 5
		if err := editor.SetMarker(MarkerVocal); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := editor.ClearMarker(MarkerVocal); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if editor.Markers().Vocal != nil {
			t.Error("expected vocal marker cleared")
		}
	})

	t.Run("Seek To Unset Marker Is A No Op", func(t *testing.T) {
		editor, transport := newTestEditor(t)
		defer editor.Close()

		if err := editor.SeekToMarker(context.Background(), MarkerAux); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(transport.playLog) != 0 {
			t.Error("unset marker must not trigger playback")
		}

		transport.pos = 8
		if err := editor.SetMarker(MarkerAux); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := editor.SeekToMarker(context.Background(), MarkerAux); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(transport.playLog) != 1 || transport.playLog[0] != 8 {
			t.Errorf("expected playback from 8, got %v", transport.playLog)
		}
	})

	t.Run("Zoom Clamps", func(t *testing.T) {
		editor, _ := newTestEditor(t)
		defer editor.Close()

		if got := editor.Zoom(1000); got != maxZoom {
			t.Errorf("expected clamp to %v, got %v", maxZoom, got)
		}
		if got := editor.Zoom(0.00001); got != minZoom {
			t.Errorf("expected clamp to %v, got %v", minZoom, got)
		}
		// Non-positive factors leave the scale alone.
		before := editor.Zoom(1)
		if got := editor.Zoom(-2); got != before {
			t.Errorf("expected unchanged scale, got %v", got)
		}
	})

	t.Run("Close Releases State", func(t *testing.T) {
		editor, transport := newTestEditor(t)

		editor.Close()
		if !transport.closed {
			t.Error("expected transport closed")
		}
		if editor.Enabled() {
			t.Error("expected editor disabled after close")
		}
	})
}

func TestEditorCache(t *testing.T) {
	t.Run("Second Load Skips The Decode", func(t *testing.T) {
		cache := newFakePeakCache()
		editor := NewEditor("", "")
		editor.newTransport = func(bin, source string) Transport { return &fakeTransport{} }
		editor.SetCache(cache)
		defer editor.Close()

		path := writeWAVFile(t, 1000, make([]int16, 2000))
		if err := editor.Load(context.Background(), "item-1", path, models.CuePoints{}); err != nil {
			t.Fatalf("failed to load editor: %v", err)
		}
		if cache.puts != 1 {
			t.Fatalf("expected fresh decode written back, got %d puts", cache.puts)
		}

		// Remove the source so a second decode attempt would fail loudly.
		if err := os.Remove(path); err != nil {
			t.Fatalf("failed to remove wav: %v", err)
		}
		if err := editor.Load(context.Background(), "item-1", path, models.CuePoints{}); err != nil {
			t.Fatalf("expected cached load, got %v", err)
		}
		if cache.puts != 1 {
			t.Errorf("cached load must not write back, got %d puts", cache.puts)
		}
		peaks := editor.Peaks()
		if peaks == nil || peaks.DurationMS != 2000 {
			t.Errorf("unexpected cached peaks %+v", peaks)
		}
	})

	t.Run("Empty Media Id Bypasses The Cache", func(t *testing.T) {
		cache := newFakePeakCache()
		editor := NewEditor("", "")
		editor.newTransport = func(bin, source string) Transport { return &fakeTransport{} }
		editor.SetCache(cache)
		defer editor.Close()

		path := writeWAVFile(t, 1000, make([]int16, 500))
		if err := editor.Load(context.Background(), "", path, models.CuePoints{}); err != nil {
			t.Fatalf("failed to load editor: %v", err)
		}
		if cache.gets != 0 || cache.puts != 0 {
			t.Errorf("expected no cache traffic, got %d gets %d puts", cache.gets, cache.puts)
		}
	})
}
