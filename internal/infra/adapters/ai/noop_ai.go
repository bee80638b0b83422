package ai

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
)

var _ adapter.Gateway = (*NoopGateway)(nil)

// NoopGateway is an offline gateway for local/dev runs.
// It returns a fixed analysis, a solid-color PNG per instruction and a placeholder video.
type NoopGateway struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewNoopGateway(delay time.Duration, log *zerolog.Logger) *NoopGateway {
	if log == nil {
		log = logging.Nop()
	}
	return &NoopGateway{delay: delay, log: log}
}

func (a *NoopGateway) wait(ctx context.Context) error {
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *NoopGateway) Analyze(ctx context.Context, image model.Media) (*model.ProductAnalysis, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	a.log.Debug().Int("bytes", image.Size()).Msg("noop analysis")
	return &model.ProductAnalysis{
		ProductName:         "Sample Linen Shirt",
		Category:            "Unisex Shirts",
		PrimaryColor:        "ivory white",
		SecondaryColors:     []string{"sand"},
		Material:            "linen",
		SizeEstimate:        "M",
		Style:               "relaxed",
		Features:            []string{"button-down collar", "chest pocket"},
		TargetAudience:      "adults",
		AdSetting:           "summer city",
		Keywords:            []string{"linen", "summer", "shirt"},
		CommerceTitle:       "Ivory Linen Button-Down Shirt",
		CommerceDescription: "A breathable linen shirt for warm days.",
		CommerceBullets:     []string{"100% linen", "Relaxed fit", "Chest pocket"},
	}, nil
}

func (a *NoopGateway) GenerateImage(ctx context.Context, req model.ImageRequest) (model.Media, error) {
	if err := a.wait(ctx); err != nil {
		return model.Media{}, err
	}
	data, err := solidPNG(req.Instruction, 64, 64)
	if err != nil {
		return model.Media{}, err
	}
	return model.Media{Data: data, MIMEType: "image/png"}, nil
}

func (a *NoopGateway) GenerateVideo(ctx context.Context, req model.VideoRequest, onProgress adapter.ProgressFunc) (model.Media, error) {
	for poll := 1; poll <= 3; poll++ {
		if err := a.wait(ctx); err != nil {
			return model.Media{}, err
		}
		if onProgress != nil {
			onProgress(VideoProgress(poll, 3))
		}
	}
	return model.Media{Data: []byte("noop-video:" + req.Label), MIMEType: "video/mp4"}, nil
}

// solidPNG derives a stable color from seed so different jobs are distinguishable.
func solidPNG(seed string, w, h int) ([]byte, error) {
	hs := fnv.New32a()
	_, _ = hs.Write([]byte(seed))
	sum := hs.Sum32()
	c := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
