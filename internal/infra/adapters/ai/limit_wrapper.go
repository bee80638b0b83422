package ai

import (
	"context"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Gateway = (*limitedGateway)(nil)

type limitedGateway struct {
	inner adapter.Gateway
	sem   chan struct{}
}

// NewLimitedGateway bounds concurrent provider calls. maxConcurrent <= 0 returns inner unchanged.
func NewLimitedGateway(inner adapter.Gateway, maxConcurrent int) adapter.Gateway {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGateway{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedGateway) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedGateway) release() { <-l.sem }

func (l *limitedGateway) Analyze(ctx context.Context, image model.Media) (*model.ProductAnalysis, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.inner.Analyze(ctx, image)
}

func (l *limitedGateway) GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	if err := l.acquire(ctx); err != nil {
		return model.Media{}, err
	}
	defer l.release()
	return l.inner.GenerateImage(ctx, req)
}

// GenerateVideo holds a slot for the whole polling loop.
func (l *limitedGateway) GenerateVideo(ctx context.Context, req model.VideoRequest, onProgress adapter.ProgressFunc) (model.Media, error) {
	if err := l.acquire(ctx); err != nil {
		return model.Media{}, err
	}
	defer l.release()
	return l.inner.GenerateVideo(ctx, req, onProgress)
}
