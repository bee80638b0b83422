// Package collage lays completed job images out in a single album image.
package collage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"

	_ "github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/draw"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

const (
	CellWidth    = 800
	Gap          = 20
	Padding      = 40
	CornerRadius = 16
	WebPQuality  = 90
)

var (
	bgTop    = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	bgBottom = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
)

// ErrNoImages is returned when no completed job carries an image.
var ErrNoImages = errors.New("collage: no images")

// Columns is 2 for up to two images or exactly four, otherwise 3.
func Columns(count int) int {
	if count <= 2 || count == 4 {
		return 2
	}
	return 3
}

// Compose decodes images in order and draws them on a gradient canvas.
// Every cell takes the first image's aspect ratio.
func Compose(images []model.Media) (*image.RGBA, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	decoded := make([]image.Image, 0, len(images))
	for i, m := range images {
		img, _, err := image.Decode(bytes.NewReader(m.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", domain.ErrCodec, i, err)
		}
		decoded = append(decoded, img)
	}

	first := decoded[0].Bounds()
	cellH := CellWidth * first.Dy() / max(first.Dx(), 1)
	cols := Columns(len(decoded))
	rows := (len(decoded) + cols - 1) / cols
	w := cols*CellWidth + (cols-1)*Gap + 2*Padding
	h := rows*cellH + (rows-1)*Gap + 2*Padding

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	fillGradient(canvas)

	mask := roundedMask(CellWidth, cellH, CornerRadius)
	cell := image.NewRGBA(image.Rect(0, 0, CellWidth, cellH))
	for i, img := range decoded {
		x := Padding + (i%cols)*(CellWidth+Gap)
		y := Padding + (i/cols)*(cellH+Gap)
		draw.CatmullRom.Scale(cell, cell.Bounds(), img, img.Bounds(), draw.Src, nil)
		dst := image.Rect(x, y, x+CellWidth, y+cellH)
		stddraw.DrawMask(canvas, dst, cell, image.Point{}, mask, image.Point{}, stddraw.Over)
	}
	return canvas, nil
}

// Encode writes img as PNG or lossy WebP and returns the bytes with their MIME type.
func Encode(img image.Image, format Format) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case FormatWebP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, WebPQuality)
		if err != nil {
			return nil, "", fmt.Errorf("webp options: %w", err)
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, "", fmt.Errorf("%w: webp: %v", domain.ErrCodec, err)
		}
		return buf.Bytes(), "image/webp", nil
	case FormatPNG, "":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("%w: png: %v", domain.ErrCodec, err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		return nil, "", fmt.Errorf("%w: unknown collage format %q", domain.ErrInvalidArgument, format)
	}
}

// Render collects the images of completed jobs and encodes the album.
func Render(jobs []model.JobState, format Format) ([]byte, string, error) {
	var images []model.Media
	for _, j := range jobs {
		if j.Status == model.JobStatusCompleted && j.HasImage() {
			images = append(images, *j.Image)
		}
	}
	img, err := Compose(images)
	if err != nil {
		return nil, "", err
	}
	return Encode(img, format)
}

func fillGradient(dst *image.RGBA) {
	h := dst.Bounds().Dy()
	for y := 0; y < h; y++ {
		t := float64(y) / float64(max(h-1, 1))
		c := color.RGBA{
			R: lerp(bgTop.R, bgBottom.R, t),
			G: lerp(bgTop.G, bgBottom.G, t),
			B: lerp(bgTop.B, bgBottom.B, t),
			A: 0xff,
		}
		stddraw.Draw(dst, image.Rect(0, y, dst.Bounds().Dx(), y+1), image.NewUniform(c), image.Point{}, stddraw.Src)
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// roundedMask is opaque inside a w x h rectangle with corners of radius r.
func roundedMask(w, h, r int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	r = min(r, w/2, h/2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if insideRounded(x, y, w, h, r) {
				m.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return m
}

func insideRounded(x, y, w, h, r int) bool {
	cx, cy := -1, -1
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= w-r && y < r:
		cx, cy = w-r-1, r
	case x < r && y >= h-r:
		cx, cy = r, h-r-1
	case x >= w-r && y >= h-r:
		cx, cy = w-r-1, h-r-1
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
