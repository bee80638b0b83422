// File: internal/usecase/job_runner.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
)

// runJob drives one job through image, optional video and its terminal state.
// The returned error only reports a failed job; a degraded video is not an error.
func (o *Orchestrator) runJob(ctx context.Context, runID string, in model.RunInput, job model.GenerationJob) error {
	defer metrics.AddActiveJobs(-1)
	log := logging.With(ctx, o.log)
	cfg := in.Config
	mode := string(cfg.Mode)
	apply := func(r Reducer) { o.store.Apply(runID, job.ID, r) }

	apply(startImage)
	stopTicker := o.startTicker(runID, job.ID)
	img, err := o.generateImage(ctx, runID, in, job)
	stopTicker()
	if err != nil {
		apply(jobFailed(err.Error()))
		metrics.IncJob(string(model.JobStatusFailed), mode)
		log.Warn().Err(err).Str("label", job.Label).Msg("job failed")
		return err
	}

	apply(imageDone(img, cfg.IncludeVideo))
	if !cfg.IncludeVideo {
		metrics.IncJob(string(model.JobStatusCompleted), mode)
		return nil
	}

	req := model.VideoRequest{
		Source:      img,
		Label:       job.Label,
		Model:       cfg.VideoModel,
		AspectRatio: model.VideoAspectRatio(cfg.AspectRatio),
	}
	video, err := o.gw.GenerateVideo(ctx, req, func(p int) { apply(videoProgress(p)) })
	if err == nil && video.Empty() {
		err = domain.NewProviderError(domain.ErrVideo, "video", cfg.VideoModel, "empty video", nil)
	}
	if err != nil {
		apply(videoFailed(err.Error()))
		metrics.IncDegradedVideo()
		metrics.IncJob("degraded", mode)
		log.Warn().Err(err).Str("label", job.Label).Msg("video failed, keeping image")
		return nil
	}
	apply(videoDone(video))
	metrics.IncJob(string(model.JobStatusCompleted), mode)
	return nil
}

// generateImage is the two-attempt protocol: only a safety refusal earns the rewritten retry.
func (o *Orchestrator) generateImage(ctx context.Context, runID string, in model.RunInput, job model.GenerationJob) (model.Media, error) {
	log := logging.With(ctx, o.log)
	req := model.ImageRequest{
		Instruction: job.Instruction,
		Primary:     *in.Primary,
		Secondary:   in.Secondary,
		Pattern:     in.Pattern,
		AspectRatio: in.Config.AspectRatio,
		Model:       in.Config.ImageModel,
	}

	o.store.Apply(runID, job.ID, recordAttempt)
	img, err := o.attempt(ctx, req)
	if err == nil || !errors.Is(err, domain.ErrContentRefused) {
		return img, err
	}

	log.Info().Err(err).Msg("image refused, retrying with fallback instruction")
	req.Instruction = o.opts.Fallback.Rewrite(job.Instruction)
	o.store.Apply(runID, job.ID, recordAttempt)
	img, err = o.attempt(ctx, req)
	if err != nil {
		metrics.IncFallback("failed")
		return model.Media{}, err
	}
	metrics.IncFallback("recovered")
	return img, nil
}

func (o *Orchestrator) attempt(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	img, err := o.gw.GenerateImage(ctx, req)
	if err != nil {
		return model.Media{}, err
	}
	if img.Empty() {
		return model.Media{}, domain.NewProviderError(domain.ErrGeneration, "image", req.Model, "no image in response", nil)
	}
	return img, nil
}

// startTicker ramps progress while the image call is in flight. The returned stop is
// idempotent and returns only after the ticker goroutine has exited.
func (o *Orchestrator) startTicker(runID string, id int) func() {
	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		t := time.NewTicker(o.opts.TickInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				o.store.Apply(runID, id, tickImageProgress)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-exited
		})
	}
}
