// File: internal/infra/adapters/ai/openai_image.go
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/codec"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
)

// Compile-time check
var _ adapter.ImageGenerator = (*OpenAIImageAdapter)(nil)

const defaultOpenAIImageModel = "gpt-image-1"

// OpenAIImageAdapter renders images through the Images edit endpoint, with the
// uploaded references as edit inputs.
type OpenAIImageAdapter struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIImageAdapter(apiKey, baseURL, mdl string, timeout time.Duration) (*OpenAIImageAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if mdl == "" {
		mdl = defaultOpenAIImageModel
	}
	return &OpenAIImageAdapter{client: openai.NewClient(opts...), model: mdl, timeout: timeout}, nil
}

func (o *OpenAIImageAdapter) GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	mdl := req.Model
	if mdl == "" || !strings.HasPrefix(mdl, "gpt-image") {
		mdl = o.model
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.client.Images.Edit(ctx, openai.ImageEditParams{
		Image:  openai.ImageEditParamsImageUnion{OfFileArray: editInputs(req)},
		Prompt: imagePromptText(req),
		Model:  openai.ImageModel(mdl),
		Size:   openAISize(req.AspectRatio),
	})
	if err != nil {
		kind := domain.ErrGeneration
		outcome := "error"
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.Code == "moderation_blocked" || apiErr.Code == "content_policy_violation":
				kind, outcome = domain.ErrContentRefused, "refused"
			case apiErr.StatusCode == http.StatusUnauthorized:
				kind = domain.ErrCredentialMissing
			}
		}
		metrics.ObserveProviderCall("image", mdl, outcome, time.Since(start))
		return model.Media{}, domain.NewProviderError(kind, "image", mdl, "", err)
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		metrics.ObserveProviderCall("image", mdl, "error", time.Since(start))
		return model.Media{}, domain.NewProviderError(domain.ErrGeneration, "image", mdl, "no image in response", nil)
	}
	img, err := codec.Decode(resp.Data[0].B64JSON)
	if err != nil {
		metrics.ObserveProviderCall("image", mdl, "error", time.Since(start))
		return model.Media{}, domain.NewProviderError(domain.ErrGeneration, "image", mdl, "bad image payload", err)
	}
	metrics.ObserveProviderCall("image", mdl, "ok", time.Since(start))
	return img, nil
}

func editInputs(req model.ImageRequest) []io.Reader {
	refs := []model.Media{req.Primary}
	if req.Secondary != nil && !req.Secondary.Empty() {
		refs = append(refs, *req.Secondary)
	}
	if req.Pattern != nil && !req.Pattern.Empty() {
		refs = append(refs, *req.Pattern)
	}
	out := make([]io.Reader, 0, len(refs))
	for i, m := range refs {
		name := fmt.Sprintf("reference-%d%s", i+1, codec.Extension(m.MIMEType))
		out = append(out, openai.File(bytes.NewReader(m.Data), name, m.MIMEType))
	}
	return out
}

// imagePromptText reuses the Gemini reference preamble so both providers read the same instruction.
func imagePromptText(req model.ImageRequest) string {
	parts := imageParts(req)
	return parts[len(parts)-1].Text
}

// openAISize maps an aspect ratio onto the three sizes the edit endpoint accepts.
func openAISize(ratio string) openai.ImageEditParamsSize {
	switch ratio {
	case "16:9", "4:3", "3:2", "21:9":
		return openai.ImageEditParamsSize1536x1024
	case "9:16", "3:4", "2:3":
		return openai.ImageEditParamsSize1024x1536
	default:
		return openai.ImageEditParamsSize1024x1024
	}
}
