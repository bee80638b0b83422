// File: internal/usecase/orchestrator.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/repository"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/worker"
)

// Compile-time check
var _ GenerationUseCase = (*Orchestrator)(nil)

// GenerationUseCase is what the presentation layer drives.
type GenerationUseCase interface {
	Submit(ctx context.Context, in model.RunInput) (runID string, err error)
	Snapshot() model.Snapshot
	Subscribe() (<-chan model.Snapshot, func())
	Reset(ctx context.Context)
	Wait(ctx context.Context) error
}

// RunDefaults fill the fields a submission leaves blank.
type RunDefaults struct {
	Mode           model.Mode
	Style          string
	AspectRatio    string
	ImageModel     string
	VideoModel     string
	CampaignCount  int
	EcommerceCount int
}

type OrchestratorOptions struct {
	Defaults RunDefaults
	// TickInterval drives the synthetic image progress ramp. Default 500ms.
	TickInterval time.Duration
	Fallback     FallbackRewriter
	// ConcurrentLimit bounds in-flight jobs per run; 0 is unbounded.
	ConcurrentLimit int
	Mirror          repository.SnapshotRepository
	Logger          *zerolog.Logger
	NewRunID        func() string
}

// Orchestrator owns the single active run: analysis, synthesis, the per-job pipelines and the join.
type Orchestrator struct {
	gw    adapter.Gateway
	gate  adapter.CredentialGate
	store *Store
	opts  OrchestratorOptions
	log   *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	mirrorStop func()
	mirrorDone chan struct{}
}

func NewOrchestrator(gw adapter.Gateway, gate adapter.CredentialGate, opts OrchestratorOptions) *Orchestrator {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 500 * time.Millisecond
	}
	if opts.Fallback == nil {
		opts.Fallback = SafeHumanFallback{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.NewRunID == nil {
		opts.NewRunID = func() string { return ulid.Make().String() }
	}
	if opts.Defaults.Mode == "" {
		opts.Defaults.Mode = model.ModeCampaign
	}
	if opts.Defaults.AspectRatio == "" {
		opts.Defaults.AspectRatio = "1:1"
	}

	o := &Orchestrator{
		gw:    gw,
		gate:  gate,
		store: NewStore(),
		opts:  opts,
		log:   opts.Logger,
	}
	if opts.Mirror != nil {
		o.startMirror()
	}
	return o
}

// Submit validates the input, starts a run in the background and returns its id.
// The run is detached from ctx; only Reset cancels it.
func (o *Orchestrator) Submit(ctx context.Context, in model.RunInput) (string, error) {
	if in.Primary == nil || in.Primary.Empty() {
		return "", domain.ErrMissingPrimaryImage
	}
	if !o.gate.HasCredential(ctx) {
		return "", o.gate.RequestCredential(ctx)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.store.Active() {
		return "", domain.ErrRunInProgress
	}

	in.Config = o.normalize(in)
	if !in.Config.HasSecondary {
		in.Secondary = nil
	}
	if !in.Config.HasPattern {
		in.Pattern = nil
	}
	runID := o.opts.NewRunID()
	o.store.Begin(runID, in.Config)

	runCtx, cancel := context.WithCancel(logging.WithRunID(context.Background(), runID))
	if tid := logging.TraceID(ctx); tid != "" {
		runCtx = logging.WithTraceID(runCtx, tid)
	}
	done := make(chan struct{})
	o.cancel, o.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()
		o.run(runCtx, runID, in)
	}()
	return runID, nil
}

func (o *Orchestrator) Snapshot() model.Snapshot { return o.store.Snapshot() }

func (o *Orchestrator) Subscribe() (<-chan model.Snapshot, func()) { return o.store.Subscribe() }

// Reset cancels the active run, if any, and returns to the upload step.
// Late writes from the cancelled run are dropped by the store.
func (o *Orchestrator) Reset(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.store.Reset()
	logging.With(ctx, o.log).Info().Msg("run reset")
}

// Wait blocks until the most recently submitted run has finished.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the active run and flushes the mirror.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
	if o.mirrorStop != nil {
		o.mirrorStop()
		<-o.mirrorDone
	}
}

func (o *Orchestrator) normalize(in model.RunInput) model.RunConfiguration {
	cfg := in.Config
	d := o.opts.Defaults
	if cfg.Mode != model.ModeCampaign && cfg.Mode != model.ModeEcommerce {
		cfg.Mode = d.Mode
	}
	if strings.TrimSpace(cfg.Style) == "" {
		cfg.Style = d.Style
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = d.AspectRatio
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = d.ImageModel
	}
	if cfg.VideoModel == "" {
		cfg.VideoModel = d.VideoModel
	}
	if cfg.Count == 0 {
		cfg.Count = d.CampaignCount
		if cfg.Mode == model.ModeEcommerce {
			cfg.Count = d.EcommerceCount
		}
	}
	cfg.Count = ClampCount(cfg.Mode, cfg.Count)
	cfg.HasSecondary = in.Secondary != nil && !in.Secondary.Empty()
	cfg.HasPattern = in.Pattern != nil && !in.Pattern.Empty()
	return cfg
}

func (o *Orchestrator) run(ctx context.Context, runID string, in model.RunInput) {
	log := logging.With(ctx, o.log)
	start := time.Now()
	cfg := in.Config
	log.Info().Str("mode", string(cfg.Mode)).Int("count", cfg.Count).Bool("video", cfg.IncludeVideo).Msg("run started")

	analysis, err := o.gw.Analyze(ctx, *in.Primary)
	if err == nil && analysis == nil {
		err = domain.NewProviderError(domain.ErrAnalysis, "analyze", "", "empty response", nil)
	}
	if err == nil {
		if missing := analysis.MissingFields(); len(missing) > 0 {
			err = domain.NewProviderError(domain.ErrAnalysis, "analyze", "", "missing fields: "+strings.Join(missing, ","), nil)
		}
	}
	if err != nil {
		o.abort(ctx, runID, err)
		return
	}

	jobs := Synthesize(*analysis, cfg)
	if !o.store.Seed(runID, analysis, jobs) {
		metrics.IncRun("cancelled", "reset")
		return
	}
	log.Info().Str("product", analysis.ProductName).Int("jobs", len(jobs)).Msg("analysis complete, jobs seeded")

	metrics.AddActiveJobs(len(jobs))
	tasks := make([]worker.Task, len(jobs))
	for i, job := range jobs {
		tasks[i] = func(ctx context.Context) error {
			return o.runJob(logging.WithJobID(ctx, job.ID), runID, in, job)
		}
	}
	errs := worker.SettleAll(ctx, o.opts.ConcurrentLimit, tasks)

	if !o.store.Finish(runID) {
		metrics.IncRun("cancelled", "reset")
		log.Info().Msg("run discarded before join")
		return
	}
	failed := worker.Failed(errs)
	outcome := "completed"
	if failed == len(jobs) {
		outcome = "all_failed"
	}
	metrics.IncRun(outcome, "")
	metrics.ObserveRunDuration(time.Since(start))
	log.Info().Int("failed", failed).Dur("elapsed", time.Since(start)).Msg("run finished")
}

func (o *Orchestrator) abort(ctx context.Context, runID string, err error) {
	log := logging.With(ctx, o.log)
	if errors.Is(ctx.Err(), context.Canceled) {
		metrics.IncRun("cancelled", "reset")
		return
	}
	if errors.Is(err, domain.ErrCredentialMissing) {
		_ = o.gate.RequestCredential(ctx)
	}
	reason := abortReason(err)
	metrics.IncRun("aborted", reason)
	log.Error().Err(err).Str("reason", reason).Msg("run aborted")
	o.store.Abort(runID, err.Error())
}

func abortReason(err error) string {
	if !domain.IsRunLevel(err) {
		return "unknown"
	}
	switch {
	case errors.Is(err, domain.ErrCredentialMissing):
		return "credential"
	case errors.Is(err, domain.ErrAnalysis):
		return "analysis"
	case errors.Is(err, domain.ErrCodec):
		return "codec"
	default:
		return "input"
	}
}

func (o *Orchestrator) startMirror() {
	ch, stop := o.store.Subscribe()
	o.mirrorStop = stop
	o.mirrorDone = make(chan struct{})
	go func() {
		defer close(o.mirrorDone)
		for snap := range ch {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			var err error
			if snap.RunID == "" {
				err = o.opts.Mirror.Clear(ctx)
			} else {
				err = o.opts.Mirror.Save(ctx, snap)
			}
			cancel()
			if err != nil {
				o.log.Warn().Err(err).Str("run_id", snap.RunID).Msg("snapshot mirror write failed")
			}
		}
	}()
}
