package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/airdeck/internal/player"
	"github.com/desertthunder/airdeck/internal/repositories"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/desertthunder/airdeck/internal/tasks"
	"github.com/desertthunder/airdeck/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive dual-pane console.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/airdeck-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewEngine(r.library)
	session := player.NewSession()
	defer session.Close()
	editor := player.NewEditor(r.config.Player.PlayBin, r.config.Player.DecodeBin)
	defer editor.Close()

	// The waveform cache spares the editor a re-decode of assets it has
	// already seen. The console still works without it.
	if db, err := r.openCache(); err != nil {
		fileLogger.Warn("waveform cache unavailable", "error", err)
	} else {
		defer db.Close()
		editor.SetCache(repositories.NewWaveformRepository(db))
	}

	model := ui.NewModel(ctx, engine, session, editor, r.config.Player.PlayBin)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
