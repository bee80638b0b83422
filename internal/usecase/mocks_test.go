// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
)

// fakeGateway scripts provider behavior per call. Nil hooks succeed with a tiny payload.
type fakeGateway struct {
	mu sync.Mutex

	analysis   *model.ProductAnalysis
	analyzeErr error
	// analyzeGate, when set, blocks Analyze until closed or ctx is cancelled.
	analyzeGate chan struct{}

	imageFn func(req model.ImageRequest) (model.Media, error)
	videoFn func(req model.VideoRequest, onProgress adapter.ProgressFunc) (model.Media, error)

	imageRequests []model.ImageRequest
	videoRequests []model.VideoRequest
}

var _ adapter.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) Analyze(ctx context.Context, image model.Media) (*model.ProductAnalysis, error) {
	if f.analyzeGate != nil {
		select {
		case <-f.analyzeGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	if f.analysis != nil {
		return f.analysis.Clone(), nil
	}
	a := sampleAnalysis()
	return &a, nil
}

func (f *fakeGateway) GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	f.mu.Lock()
	f.imageRequests = append(f.imageRequests, req)
	fn := f.imageFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return pngMedia("img"), nil
}

func (f *fakeGateway) GenerateVideo(ctx context.Context, req model.VideoRequest, onProgress adapter.ProgressFunc) (model.Media, error) {
	f.mu.Lock()
	f.videoRequests = append(f.videoRequests, req)
	fn := f.videoFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req, onProgress)
	}
	onProgress(74)
	return model.Media{Data: []byte("mp4"), MIMEType: "video/mp4"}, nil
}

func (f *fakeGateway) images() []model.ImageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ImageRequest(nil), f.imageRequests...)
}

func (f *fakeGateway) videos() []model.VideoRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.VideoRequest(nil), f.videoRequests...)
}

type fakeGate struct {
	mu        sync.Mutex
	has       bool
	requested int
}

func (g *fakeGate) HasCredential(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.has
}

func (g *fakeGate) RequestCredential(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requested++
	g.has = false
	return domain.ErrCredentialMissing
}

type memMirror struct {
	mu      sync.Mutex
	last    *model.Snapshot
	saves   int
	cleared int
}

func (m *memMirror) Save(ctx context.Context, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = &snap
	m.saves++
	return nil
}

func (m *memMirror) Load(ctx context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.last
	return &cp, nil
}

func (m *memMirror) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = nil
	m.cleared++
	return nil
}

func sampleAnalysis() model.ProductAnalysis {
	return model.ProductAnalysis{
		ProductName:         "Silk Wrap Dress",
		Category:            "Women's Dresses",
		PrimaryColor:        "emerald green",
		Material:            "silk",
		Style:               "elegant",
		Features:            []string{"wrap closure", "flutter sleeves"},
		TargetAudience:      "women 25-40",
		CommerceTitle:       "Emerald Silk Wrap Dress",
		CommerceDescription: "A fluid silk wrap dress.",
		CommerceBullets:     []string{"100% silk", "Wrap closure"},
	}
}

func pngMedia(tag string) model.Media {
	return model.Media{Data: []byte("\x89PNG" + tag), MIMEType: "image/png"}
}

func refused(model string) error {
	return domain.NewProviderError(domain.ErrContentRefused, "image", model, "IMAGE_SAFETY", nil)
}

func isFallback(instruction string) bool {
	return strings.HasPrefix(instruction, "CRITICAL RE-GENERATION TASK")
}
