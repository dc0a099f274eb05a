package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/airdeck/internal/models"
	"github.com/desertthunder/airdeck/internal/services"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Upload creates a catalog item from a local audio file.
//
// Missing title, artist and genre are prefilled from the file's embedded
// tags before validation.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	audioPath := cmd.StringArg("audio")
	if audioPath == "" {
		return fmt.Errorf("%w: audio file path", shared.ErrMissingArgument)
	}

	req := &services.UploadRequest{
		AudioPath:    audioPath,
		CoverArtPath: cmd.String("cover"),
		LyricsPath:   cmd.String("lyrics"),
		Title:        cmd.String("title"),
		Artist:       cmd.String("artist"),
		Genre:        cmd.String("genre"),
		Rotation:     models.Rotation(cmd.String("rotation")),
		MediaType:    models.MediaType(cmd.String("type")),
		AllowSkip:    cmd.Bool("allow-skip"),
		IsClean:      cmd.Bool("clean"),
		Markers: models.CuePoints{
			Intro: markerFlag(cmd, "intro"),
			Vocal: markerFlag(cmd, "vox"),
			Aux:   markerFlag(cmd, "aux"),
		},
	}

	if err := req.PrefillFromTags(); err != nil {
		return err
	}

	r.logger.Info("uploading", "file", audioPath, "title", req.Title)
	if err := r.library.Upload(ctx, req); err != nil {
		return err
	}

	return r.writePlain("✓ Uploaded %q\n", req.Title)
}

// markerFlag reads an optional cue point flag. An absent flag means the
// marker stays unset; an explicit zero is a valid position.
func markerFlag(cmd *cli.Command, name string) *float64 {
	if !cmd.IsSet(name) {
		return nil
	}
	v := cmd.Float(name)
	return &v
}
