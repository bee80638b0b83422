package adapter

import (
	"context"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

// Analyzer turns a product photo into a structured analysis.
// Fails with domain.ErrAnalysis; never retried automatically.
type Analyzer interface {
	Analyze(ctx context.Context, image model.Media) (*model.ProductAnalysis, error)
}

// ImageGenerator renders one image from an instruction and reference images.
// A safety refusal is reported as domain.ErrContentRefused, anything else as domain.ErrGeneration.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error)
}

// ProgressFunc receives monotonically increasing percent estimates.
type ProgressFunc func(percent int)

// VideoGenerator turns a generated image into a short video.
// Fails with domain.ErrVideoRefused or domain.ErrVideo.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req model.VideoRequest, onProgress ProgressFunc) (model.Media, error)
}

// Gateway is the full provider surface the orchestrator consumes.
type Gateway interface {
	Analyzer
	ImageGenerator
	VideoGenerator
}

// CredentialGate guards runs behind a usable provider credential.
type CredentialGate interface {
	HasCredential(ctx context.Context) bool
	// RequestCredential flags that the user must select a key and returns domain.ErrCredentialMissing.
	RequestCredential(ctx context.Context) error
}
