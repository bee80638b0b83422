package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/codec"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/collage"
	"github.com/hiktan44/Adgeniusfashion/internal/usecase"
)

// oneShot runs a single generation from the command line and writes the results to disk.
type oneShot struct {
	imagePath string
	outDir    string
	mode      model.Mode
	video     bool
	maxBytes  int64
}

func (o oneShot) run(ctx context.Context, gen usecase.GenerationUseCase, log *zerolog.Logger) error {
	f, err := os.Open(o.imagePath)
	if err != nil {
		return err
	}
	primary, err := codec.Read(f, "", o.maxBytes)
	f.Close()
	if err != nil {
		return err
	}

	runID, err := gen.Submit(ctx, model.RunInput{
		Config:  model.RunConfiguration{Mode: o.mode, IncludeVideo: o.video},
		Primary: &primary,
	})
	if err != nil {
		return err
	}
	log.Info().Str("run_id", runID).Str("image", o.imagePath).Msg("one-shot run submitted")

	if err := gen.Wait(ctx); err != nil {
		return err
	}
	snap := gen.Snapshot()
	if snap.Step != model.StepResults {
		return fmt.Errorf("run ended in step %s: %s", snap.Step, snap.Error)
	}
	return o.write(snap, log)
}

func (o oneShot) write(snap model.Snapshot, log *zerolog.Logger) error {
	dir := filepath.Join(o.outDir, snap.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	written := 0
	for _, j := range snap.Jobs {
		if j.HasImage() {
			name := fmt.Sprintf("%02d-image%s", j.ID, codec.Extension(j.Image.MIMEType))
			if err := os.WriteFile(filepath.Join(dir, name), j.Image.Data, 0o644); err != nil {
				return err
			}
			written++
		}
		if j.HasVideo() {
			name := fmt.Sprintf("%02d-video%s", j.ID, codec.Extension(j.Video.MIMEType))
			if err := os.WriteFile(filepath.Join(dir, name), j.Video.Data, 0o644); err != nil {
				return err
			}
		}
		ev := log.Info()
		if j.Status == model.JobStatusFailed || j.Degraded() {
			ev = log.Warn()
		}
		ev.Int("job_id", j.ID).Str("label", j.Label).Str("status", string(j.Status)).
			Str("error", j.ErrorMessage).Msg("job result")
	}

	data, _, err := collage.Render(snap.Jobs, collage.FormatPNG)
	switch {
	case errors.Is(err, collage.ErrNoImages):
	case err != nil:
		log.Warn().Err(err).Msg("collage failed")
	default:
		if err := os.WriteFile(filepath.Join(dir, "collage.png"), data, 0o644); err != nil {
			return err
		}
	}

	meta, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "run.json"), meta, 0o644); err != nil {
		return err
	}
	log.Info().Str("dir", dir).Int("images", written).Int("jobs", len(snap.Jobs)).Msg("one-shot results written")
	if written == 0 {
		return errors.New("every job failed")
	}
	return nil
}
