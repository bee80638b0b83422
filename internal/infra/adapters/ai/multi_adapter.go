// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"strings"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
)

var _ adapter.Gateway = (*MultiGateway)(nil)

// MultiGateway routes image generation by model name; analysis and video always go to base.
type MultiGateway struct {
	base            adapter.Gateway
	defaultProvider string // "gemini" | "openai"
	images          map[string]adapter.ImageGenerator
	modelToProvider map[string]string
}

func NewMultiGateway(
	base adapter.Gateway,
	defaultProvider string,
	images map[string]adapter.ImageGenerator,
	modelToProvider map[string]string,
) *MultiGateway {
	return &MultiGateway{
		base:            base,
		defaultProvider: strings.ToLower(defaultProvider),
		images:          images,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiGateway) resolveProvider(mdl string) string {
	if p := m.modelToProvider[mdl]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(mdl)
	switch {
	case strings.HasPrefix(l, "gemini"), strings.HasPrefix(l, "imagen"):
		return "gemini"
	case strings.HasPrefix(l, "gpt-image"), strings.HasPrefix(l, "dall-e"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiGateway) pickImage(mdl string) adapter.ImageGenerator {
	if g := m.images[m.resolveProvider(mdl)]; g != nil {
		return g
	}
	if g := m.images[m.defaultProvider]; g != nil {
		return g
	}
	return m.base
}

func (m *MultiGateway) Analyze(ctx context.Context, image model.Media) (*model.ProductAnalysis, error) {
	return m.base.Analyze(ctx, image)
}

func (m *MultiGateway) GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	g := m.pickImage(req.Model)
	if g == nil {
		return model.Media{}, domain.NewProviderError(domain.ErrGeneration, "image", req.Model, "no provider for model", nil)
	}
	return g.GenerateImage(ctx, req)
}

func (m *MultiGateway) GenerateVideo(ctx context.Context, req model.VideoRequest, onProgress adapter.ProgressFunc) (model.Media, error) {
	return m.base.GenerateVideo(ctx, req, onProgress)
}
