// File: internal/infra/adapters/ai/gemini_gateway.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
)

var _ adapter.Gateway = (*GeminiGateway)(nil)

// KeySource yields the currently selected API key; empty means none.
type KeySource interface {
	APIKey(ctx context.Context) string
}

type GeminiOptions struct {
	BaseURL           string
	AnalysisModel     string
	ImageModel        string
	VideoModel        string
	VideoPollInterval time.Duration
	VideoMaxPolls     int
	CallTimeout       time.Duration
	Logger            *zerolog.Logger
}

// GeminiGateway implements analysis, image and video generation on the Gemini API.
// The client is rebuilt whenever the selected key changes.
type GeminiGateway struct {
	keys KeySource
	opts GeminiOptions
	log  *zerolog.Logger

	mu        sync.Mutex
	clientKey string
	client    *genai.Client
}

func NewGeminiGateway(keys KeySource, opts GeminiOptions) *GeminiGateway {
	if opts.VideoPollInterval <= 0 {
		opts.VideoPollInterval = 5 * time.Second
	}
	if opts.VideoMaxPolls <= 0 {
		opts.VideoMaxPolls = 60
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &GeminiGateway{keys: keys, opts: opts, log: opts.Logger}
}

func (g *GeminiGateway) clientFor(ctx context.Context) (*genai.Client, string, error) {
	key := g.keys.APIKey(ctx)
	if key == "" {
		return nil, "", domain.ErrCredentialMissing
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil && g.clientKey == key {
		return g.client, key, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: g.opts.BaseURL,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("gemini: new client: %w", err)
	}
	g.client, g.clientKey = c, key
	return c, key, nil
}

// permissiveSafety disables the adjustable harm filters. Image-level moderation still applies.
var permissiveSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryCivicIntegrity, Threshold: genai.HarmBlockThresholdBlockNone},
}

func (g *GeminiGateway) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, g.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}

// ---- analysis ----

const analysisInstruction = `Analyze the product in this image as a professional e-commerce copywriter and senior fashion designer.
Your task has two parts:
1. Technical analysis for image generation: extract color, texture and cut details.
2. Sales copy: write the texts needed to sell this product on a marketplace or a luxury boutique site.

Technical rules:
- Describe colors with Pantone-level precision.
- Name the fabric texture and cut (slim-fit, oversize, raglan sleeve, ...) with technical terms.

Copy rules (serious, professional tone):
- ecommerce_title: SEO friendly, striking title naming the brand and the most compelling feature.
- ecommerce_description: one fluent paragraph persuading the customer to buy.
- ecommerce_bullets: 5-7 benefit-focused bullet points.

Output JSON only.`

func analysisSchema() *genai.Schema {
	str := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeString, Description: desc} }
	list := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"product_name":          str(""),
			"category":              str(""),
			"primary_color":         str(""),
			"secondary_colors":      list(""),
			"material":              str(""),
			"size_estimate":         str(""),
			"style":                 str(""),
			"features":              list(""),
			"target_audience":       str(""),
			"ad_setting":            str(""),
			"keywords":              list(""),
			"ecommerce_title":       str("SEO friendly impressive product title"),
			"ecommerce_description": str("Persuasive marketing description paragraph"),
			"ecommerce_bullets":     list("List of bullet points for product page"),
		},
		Required: model.RequiredAnalysisFields,
	}
}

func (g *GeminiGateway) Analyze(ctx context.Context, image model.Media) (*model.ProductAnalysis, error) {
	mdl := g.opts.AnalysisModel
	client, _, err := g.clientFor(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	temp := float32(0.4)
	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, mdl,
		[]*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image.Data, image.MIMEType),
			genai.NewPartFromText(analysisInstruction),
		}, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:      &temp,
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema(),
			SafetySettings:   permissiveSafety,
		})
	if err != nil {
		metrics.ObserveProviderCall("analyze", mdl, "error", time.Since(start))
		return nil, classifyAPIError(err, domain.ErrAnalysis, "analyze", mdl)
	}

	a, err := parseAnalysis(resp.Text())
	if err != nil {
		metrics.ObserveProviderCall("analyze", mdl, "invalid", time.Since(start))
		return nil, domain.NewProviderError(domain.ErrAnalysis, "analyze", mdl, "", err)
	}
	metrics.ObserveProviderCall("analyze", mdl, "ok", time.Since(start))
	logging.With(ctx, g.log).Debug().Str("model", mdl).Str("product", a.ProductName).Msg("analysis received")
	return a, nil
}

// parseAnalysis decodes the structured output and rejects blank required fields.
func parseAnalysis(text string) (*model.ProductAnalysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty analysis response")
	}
	var a model.ProductAnalysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if missing := a.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("analysis missing required fields: %s", strings.Join(missing, ", "))
	}
	return &a, nil
}

// ---- image ----

// imageSizeModels get the 2K output size; other image models reject the field.
var imageSizeModels = map[string]bool{"gemini-3-pro-image-preview": true}

func (g *GeminiGateway) GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	mdl := req.Model
	if mdl == "" {
		mdl = g.opts.ImageModel
	}
	client, _, err := g.clientFor(ctx)
	if err != nil {
		return model.Media{}, err
	}
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	imgCfg := &genai.ImageConfig{AspectRatio: req.AspectRatio}
	if imageSizeModels[mdl] {
		imgCfg.ImageSize = "2K"
	}
	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, mdl,
		[]*genai.Content{genai.NewContentFromParts(imageParts(req), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SafetySettings: permissiveSafety,
			ImageConfig:    imgCfg,
		})
	if err != nil {
		metrics.ObserveProviderCall("image", mdl, "error", time.Since(start))
		return model.Media{}, classifyAPIError(err, domain.ErrGeneration, "image", mdl)
	}

	img, err := extractImage(resp, mdl)
	outcome := "ok"
	if errors.Is(err, domain.ErrContentRefused) {
		outcome = "refused"
	} else if err != nil {
		outcome = "error"
	}
	metrics.ObserveProviderCall("image", mdl, outcome, time.Since(start))
	return img, err
}

// imageParts orders the references as primary, secondary, pattern, then the instruction.
func imageParts(req model.ImageRequest) []*genai.Part {
	parts := []*genai.Part{genai.NewPartFromBytes(req.Primary.Data, req.Primary.MIMEType)}
	text := req.Instruction
	n := 1
	var refs []string
	if req.Secondary != nil && !req.Secondary.Empty() {
		parts = append(parts, genai.NewPartFromBytes(req.Secondary.Data, req.Secondary.MIMEType))
		n++
		refs = append(refs, fmt.Sprintf("IMAGE %d: SECONDARY REFERENCE (Back view or Accessory).", n))
	}
	if req.Pattern != nil && !req.Pattern.Empty() {
		parts = append(parts, genai.NewPartFromBytes(req.Pattern.Data, req.Pattern.MIMEType))
		n++
		refs = append(refs, fmt.Sprintf("IMAGE %d: PATTERN / TEXTURE SOURCE to apply onto the garment.", n))
	}
	if len(refs) > 0 {
		text = fmt.Sprintf(`TASK: Use the %d reference images provided.
IMAGE 1: MAIN PRODUCT.
%s
Instruction: Incorporate elements from all images naturally into the scene.

SCENE DESCRIPTION:
%s`, n, strings.Join(refs, "\n"), req.Instruction)
	}
	return append(parts, genai.NewPartFromText(text))
}

// refusalReasons are the finish reasons that mean the moderation layer blocked the output.
var refusalReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonImageSafety:       true,
	genai.FinishReason("IMAGE_OTHER"):   true,
	genai.FinishReasonProhibitedContent: true,
}

func extractImage(resp *genai.GenerateContentResponse, mdl string) (model.Media, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return model.Media{}, domain.NewProviderError(domain.ErrContentRefused, "image", mdl, string(resp.PromptFeedback.BlockReason), nil)
		}
		return model.Media{}, domain.NewProviderError(domain.ErrGeneration, "image", mdl, "no candidate", nil)
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				mime := p.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return model.Media{Data: p.InlineData.Data, MIMEType: mime}, nil
			}
		}
	}
	if refusalReasons[cand.FinishReason] {
		return model.Media{}, domain.NewProviderError(domain.ErrContentRefused, "image", mdl, string(cand.FinishReason), nil)
	}
	return model.Media{}, domain.NewProviderError(domain.ErrGeneration, "image", mdl, "no image in response: "+string(cand.FinishReason), nil)
}

// ---- video ----

func videoPrompt(label string) string {
	return fmt.Sprintf(`Cinematic commercial video of the fashion model in the image.
Strictly preserve the clothing details, colors, and subject appearance.
Action: Gentle, subtle movement. The model poses elegantly.
Environment: %s.
High quality 4k.`, label)
}

// VideoProgress estimates completion for poll n of max, between the video floor and 98.
func VideoProgress(poll, maxPolls int) int {
	if maxPolls <= 0 {
		return 50
	}
	return min(98, 50+48*poll/maxPolls)
}

func (g *GeminiGateway) GenerateVideo(ctx context.Context, req model.VideoRequest, onProgress adapter.ProgressFunc) (model.Media, error) {
	mdl := req.Model
	if mdl == "" {
		mdl = g.opts.VideoModel
	}
	client, _, err := g.clientFor(ctx)
	if err != nil {
		return model.Media{}, err
	}
	log := logging.With(ctx, g.log)
	start := time.Now()

	op, err := client.Models.GenerateVideos(ctx, mdl, videoPrompt(req.Label),
		&genai.Image{ImageBytes: req.Source.Data, MIMEType: req.Source.MIMEType},
		&genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			Resolution:     "720p",
			AspectRatio:    model.VideoAspectRatio(req.AspectRatio),
		})
	if err != nil {
		metrics.ObserveProviderCall("video", mdl, "error", time.Since(start))
		return model.Media{}, classifyAPIError(err, domain.ErrVideo, "video", mdl)
	}

	t := time.NewTicker(g.opts.VideoPollInterval)
	defer t.Stop()
	polls := 0
	for !op.Done {
		if polls >= g.opts.VideoMaxPolls {
			metrics.ObserveVideoPolls(mdl, polls, false)
			metrics.ObserveProviderCall("video", mdl, "timeout", time.Since(start))
			return model.Media{}, domain.NewProviderError(domain.ErrVideo, "video", mdl,
				fmt.Sprintf("not done after %d polls", polls), nil)
		}
		select {
		case <-ctx.Done():
			return model.Media{}, domain.NewProviderError(domain.ErrVideo, "video", mdl, "cancelled", ctx.Err())
		case <-t.C:
		}
		polls++
		next, err := client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			metrics.ObserveVideoPolls(mdl, polls, false)
			metrics.ObserveProviderCall("video", mdl, "error", time.Since(start))
			return model.Media{}, classifyAPIError(err, domain.ErrVideo, "video", mdl)
		}
		op = next
		if onProgress != nil {
			onProgress(VideoProgress(polls, g.opts.VideoMaxPolls))
		}
		log.Debug().Int("poll", polls).Bool("done", op.Done).Msg("video operation polled")
	}

	video, err := videoFromOperation(op, mdl)
	if err != nil {
		metrics.ObserveVideoPolls(mdl, polls, false)
		outcome := "error"
		if errors.Is(err, domain.ErrVideoRefused) {
			outcome = "refused"
		}
		metrics.ObserveProviderCall("video", mdl, outcome, time.Since(start))
		return model.Media{}, err
	}
	if len(video.Video.VideoBytes) == 0 {
		data, err := client.Files.Download(ctx, genai.NewDownloadURIFromGeneratedVideo(video), nil)
		if err != nil {
			metrics.ObserveProviderCall("video", mdl, "download_error", time.Since(start))
			return model.Media{}, domain.NewProviderError(domain.ErrVideo, "video", mdl, "download failed", err)
		}
		video.Video.VideoBytes = data
	}
	mime := video.Video.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	metrics.ObserveVideoPolls(mdl, polls, true)
	metrics.ObserveProviderCall("video", mdl, "ok", time.Since(start))
	return model.Media{Data: video.Video.VideoBytes, MIMEType: mime}, nil
}

// videoFromOperation inspects a finished operation. Moderation filtering is a refusal.
func videoFromOperation(op *genai.GenerateVideosOperation, mdl string) (*genai.GeneratedVideo, error) {
	if len(op.Error) > 0 {
		msg, _ := op.Error["message"].(string)
		return nil, domain.NewProviderError(domain.ErrVideo, "video", mdl, msg, nil)
	}
	if op.Response == nil {
		return nil, domain.NewProviderError(domain.ErrVideo, "video", mdl, "empty response", nil)
	}
	if op.Response.RAIMediaFilteredCount > 0 {
		return nil, domain.NewProviderError(domain.ErrVideoRefused, "video", mdl,
			strings.Join(op.Response.RAIMediaFilteredReasons, "; "), nil)
	}
	for _, v := range op.Response.GeneratedVideos {
		if v != nil && v.Video != nil && (v.Video.URI != "" || len(v.Video.VideoBytes) > 0) {
			return v, nil
		}
	}
	return nil, domain.NewProviderError(domain.ErrVideo, "video", mdl, "no video returned", nil)
}

// classifyAPIError maps transport errors onto the domain taxonomy.
// An invalid or unknown key is a credential problem regardless of the stage.
func classifyAPIError(err error, kind error, op, mdl string) error {
	if errors.Is(err, domain.ErrCredentialMissing) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden,
			strings.Contains(apiErr.Message, "Requested entity was not found"),
			strings.Contains(apiErr.Message, "API key not valid"):
			return domain.NewProviderError(domain.ErrCredentialMissing, op, mdl, apiErr.Status, err)
		}
		return domain.NewProviderError(kind, op, mdl, apiErr.Status, err)
	}
	return domain.NewProviderError(kind, op, mdl, "", err)
}
