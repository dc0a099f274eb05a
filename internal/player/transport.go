package player

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// ExecTransport plays one source through an external player binary.
//
// Position is derived from the seek offset plus wall-clock elapsed time,
// which is accurate enough for cue point work. Pause kills the subprocess
// and records where it stopped.
type ExecTransport struct {
	mu     sync.Mutex
	bin    string
	source string

	cmd     *exec.Cmd
	cancel  context.CancelFunc
	offset  float64
	started time.Time
	playing bool
}

var _ Transport = (*ExecTransport)(nil)

// NewExecTransport creates a transport for one source. bin defaults to ffplay.
func NewExecTransport(bin, source string) *ExecTransport {
	if bin == "" {
		bin = "ffplay"
	}
	return &ExecTransport{bin: bin, source: source}
}

// Play starts playback from the given position, replacing any running process.
func (t *ExecTransport) Play(ctx context.Context, from float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	if from < 0 {
		from = 0
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cmdCtx, t.bin,
		"-nodisp", "-autoexit", "-loglevel", "quiet",
		"-ss", fmt.Sprintf("%.3f", from),
		t.source,
	)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", t.bin, err)
	}
	// Reap the process when it exits on its own.
	go cmd.Wait()

	t.cmd = cmd
	t.cancel = cancel
	t.offset = from
	t.started = time.Now()
	t.playing = true
	return nil
}

// Pause stops the player process and records the position it reached.
func (t *ExecTransport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playing {
		t.offset += time.Since(t.started).Seconds()
	}
	t.stopLocked()
	return nil
}

// Seek moves the stored position. A playing transport restarts from the new
// position on the next Play; seeking does not interrupt playback here since
// the subprocess owns the clock.
func (t *ExecTransport) Seek(pos float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if t.playing {
		t.stopLocked()
	}
	t.offset = pos
	return nil
}

// Position reports the current position in seconds.
func (t *ExecTransport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playing {
		return t.offset + time.Since(t.started).Seconds()
	}
	return t.offset
}

// Close terminates any running process.
func (t *ExecTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	return nil
}

func (t *ExecTransport) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	t.cmd = nil
	t.playing = false
}
