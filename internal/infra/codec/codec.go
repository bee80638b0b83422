// Package codec converts uploaded media to and from the transport encodings the providers use.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

const dataURLPrefix = "data:"

// Encode returns the standard base64 transport string for raw bytes.
func Encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", domain.ErrCodec)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode accepts bare base64 or a data URL and returns the media it carries.
// Bare payloads get their MIME type sniffed from content.
func Decode(s string) (model.Media, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Media{}, fmt.Errorf("%w: empty payload", domain.ErrCodec)
	}
	mime := ""
	payload := s
	if strings.HasPrefix(s, dataURLPrefix) {
		head, body, ok := strings.Cut(s[len(dataURLPrefix):], ",")
		if !ok || !strings.HasSuffix(head, ";base64") {
			return model.Media{}, fmt.Errorf("%w: malformed data url", domain.ErrCodec)
		}
		mime = strings.TrimSuffix(head, ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return model.Media{}, fmt.Errorf("%w: %v", domain.ErrCodec, err)
	}
	if len(data) == 0 {
		return model.Media{}, fmt.Errorf("%w: empty payload", domain.ErrCodec)
	}
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	return model.Media{Data: data, MIMEType: baseType(mime)}, nil
}

// DataURL renders media as data:<mime>;base64,<payload>. Empty media renders as "".
func DataURL(m model.Media) string {
	payload, err := Encode(m.Data)
	if err != nil {
		return ""
	}
	mime := m.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return dataURLPrefix + mime + ";base64," + payload
}

// Read consumes an uploaded image of at most limit bytes; limit must be positive.
// The declared type is trusted only when it is a concrete image type; otherwise content
// sniffing decides.
func Read(r io.Reader, declared string, limit int64) (model.Media, error) {
	if r == nil {
		return model.Media{}, fmt.Errorf("%w: no reader", domain.ErrCodec)
	}
	if limit <= 0 {
		return model.Media{}, fmt.Errorf("%w: upload limit must be positive, got %d", domain.ErrCodec, limit)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return model.Media{}, fmt.Errorf("%w: read upload: %v", domain.ErrCodec, err)
	}
	if n == 0 {
		return model.Media{}, fmt.Errorf("%w: empty upload", domain.ErrCodec)
	}
	if n > limit {
		return model.Media{}, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrCodec, limit)
	}
	data := buf.Bytes()

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return model.Media{}, fmt.Errorf("%w: not an image (%s)", domain.ErrCodec, detected.String())
	}
	mime := baseType(declared)
	if !strings.HasPrefix(mime, "image/") {
		mime = baseType(detected.String())
	}
	return model.Media{Data: data, MIMEType: mime}, nil
}

// Extension returns a file extension (with dot) for a MIME type.
func Extension(mime string) string {
	if m := mimetype.Lookup(baseType(mime)); m != nil {
		return m.Extension()
	}
	return ".bin"
}

func baseType(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}
