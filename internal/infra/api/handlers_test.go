//go:build !integration

package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/security"
)

//
// -------------------- fakes --------------------
//

type fakeGen struct {
	mu        sync.Mutex
	snap      model.Snapshot
	submitErr error
	submitted []model.RunInput
	resets    int
	updates   chan model.Snapshot
}

func newFakeGen() *fakeGen {
	return &fakeGen{
		snap:    model.Snapshot{Step: model.StepUpload},
		updates: make(chan model.Snapshot, 4),
	}
}

func (f *fakeGen) Submit(ctx context.Context, in model.RunInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Primary == nil {
		return "", domain.ErrMissingPrimaryImage
	}
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, in)
	cfg := in.Config
	f.snap = model.Snapshot{RunID: "run-1", Step: model.StepAnalyzing, Config: &cfg}
	return "run-1", nil
}

func (f *fakeGen) Snapshot() model.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeGen) Subscribe() (<-chan model.Snapshot, func()) {
	f.updates <- f.Snapshot()
	return f.updates, func() {}
}

func (f *fakeGen) Reset(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.snap = model.Snapshot{Step: model.StepUpload}
}

func (f *fakeGen) Wait(ctx context.Context) error { return nil }

func (f *fakeGen) set(s model.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s
}

type fakeCreds struct {
	mu       sync.Mutex
	selected string
}

func (c *fakeCreds) Status(ctx context.Context) security.CredentialStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return security.CredentialStatus{HasCredential: c.selected != "", Requested: c.selected == ""}
}

func (c *fakeCreds) Select(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return domain.ErrInvalidArgument
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = key
	return nil
}

type fakeLimiter struct {
	allow bool
	calls int
}

func (l *fakeLimiter) AllowSubmit(ctx context.Context, clientID string, limit int, window time.Duration) (bool, error) {
	l.calls++
	return l.allow, nil
}

//
// -------------------- helpers --------------------
//

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type upload struct {
	field string
	data  []byte
	mime  string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.field+`.png"`)
		h.Set("Content-Type", f.mime)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestServer(gen *fakeGen, creds *fakeCreds, opts Options) http.Handler {
	if creds == nil {
		creds = &fakeCreds{}
	}
	return NewServer(gen, creds, opts).Routes()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func completedSnapshot(t *testing.T) model.Snapshot {
	img := model.Media{Data: pngBytes(t, color.RGBA{R: 200, A: 255}), MIMEType: "image/png"}
	img2 := model.Media{Data: pngBytes(t, color.RGBA{B: 200, A: 255}), MIMEType: "image/png"}
	vid := model.Media{Data: []byte("fake-mp4"), MIMEType: "video/mp4"}
	return model.Snapshot{
		RunID: "run-7",
		Step:  model.StepResults,
		Analysis: &model.ProductAnalysis{
			ProductName:         "Silk Wrap Dress",
			CommerceTitle:       "Silk Wrap Dress in Emerald",
			CommerceDescription: "A fluid silk wrap dress.",
			CommerceBullets:     []string{"100% silk", "Adjustable tie"},
			Keywords:            []string{"silk", "wrap"},
		},
		Jobs: []model.JobState{
			{ID: 1, Label: "Studio", Status: model.JobStatusCompleted, Progress: 100, Image: &img, Video: &vid},
			{ID: 2, Label: "Street", Status: model.JobStatusCompleted, Progress: 100, Image: &img2, ErrorMessage: "video failed"},
			{ID: 3, Label: "Cafe", Status: model.JobStatusFailed, ErrorMessage: "refused"},
		},
	}
}

//
// -------------------- tests --------------------
//

func TestHealth_SetsTraceHeader(t *testing.T) {
	h := newTestServer(newFakeGen(), nil, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = do(t, h, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestSubmit_ParsesFormAndUploads(t *testing.T) {
	gen := newFakeGen()
	h := newTestServer(gen, nil, Options{})

	body, ct := multipartBody(t, map[string]string{
		"mode":          "ecommerce",
		"style":         "minimalist-studio",
		"brand":         "Maison",
		"count":         "6",
		"include_video": "true",
		"render_text":   "on",
		"overlay_text":  "SALE",
		"aspect_ratio":  "3:4",
		"persona":       "female",
	}, upload{"product_image", pngBytes(t, color.White), "image/png"},
		upload{"pattern_image", pngBytes(t, color.Black), "application/octet-stream"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
	req.Header.Set("Content-Type", ct)

	rec := do(t, h, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Len(t, gen.submitted, 1)
	in := gen.submitted[0]
	assert.Equal(t, model.ModeEcommerce, in.Config.Mode)
	assert.Equal(t, 6, in.Config.Count)
	assert.True(t, in.Config.IncludeVideo)
	assert.True(t, in.Config.RenderText)
	assert.Equal(t, "SALE", in.Config.OverlayText)
	assert.Equal(t, model.PersonaFemale, in.Config.Persona)
	require.NotNil(t, in.Primary)
	assert.Equal(t, "image/png", in.Primary.MIMEType)
	assert.Nil(t, in.Secondary)
	require.NotNil(t, in.Pattern)
	assert.Equal(t, "image/png", in.Pattern.MIMEType, "declared octet-stream falls back to sniffing")

	var view snapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "run-1", view.RunID)
	assert.Equal(t, model.StepAnalyzing, view.Step)
}

func TestSubmit_ErrorMapping(t *testing.T) {
	img := pngBytes(t, color.White)
	tests := []struct {
		name      string
		fields    map[string]string
		files     []upload
		submitErr error
		want      int
	}{
		{"missing primary", nil, nil, nil, http.StatusBadRequest},
		{"bad mode", map[string]string{"mode": "gallery"}, []upload{{"product_image", img, "image/png"}}, nil, http.StatusBadRequest},
		{"bad count", map[string]string{"count": "many"}, []upload{{"product_image", img, "image/png"}}, nil, http.StatusBadRequest},
		{"bad aspect", map[string]string{"aspect_ratio": "2:1"}, []upload{{"product_image", img, "image/png"}}, nil, http.StatusBadRequest},
		{"bad bool", map[string]string{"include_video": "perhaps"}, []upload{{"product_image", img, "image/png"}}, nil, http.StatusBadRequest},
		{"not an image", nil, []upload{{"product_image", []byte("plain text, not pixels"), "image/png"}}, nil, http.StatusBadRequest},
		{"run in progress", nil, []upload{{"product_image", img, "image/png"}}, domain.ErrRunInProgress, http.StatusConflict},
		{"no credential", nil, []upload{{"product_image", img, "image/png"}}, domain.ErrCredentialMissing, http.StatusPreconditionRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newFakeGen()
			gen.submitErr = tt.submitErr
			h := newTestServer(gen, nil, Options{})

			body, ct := multipartBody(t, tt.fields, tt.files...)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
			req.Header.Set("Content-Type", ct)
			rec := do(t, h, req)

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestSubmit_NotMultipart(t *testing.T) {
	h := newTestServer(newFakeGen(), nil, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(`{"mode":"campaign"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, do(t, h, req).Code)
}

func TestSubmit_RateLimited(t *testing.T) {
	gen := newFakeGen()
	lim := &fakeLimiter{allow: false}
	h := newTestServer(gen, nil, Options{Limiter: lim, SubmitsPerMinute: 2})

	body, ct := multipartBody(t, nil, upload{"product_image", pngBytes(t, color.White), "image/png"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
	req.Header.Set("Content-Type", ct)
	rec := do(t, h, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, lim.calls)
	assert.Empty(t, gen.submitted)
}

func TestSnapshot_ReplacesMediaWithURLs(t *testing.T) {
	gen := newFakeGen()
	gen.set(completedSnapshot(t))
	h := newTestServer(gen, nil, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "fake-mp4")

	var view snapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Jobs, 3)
	assert.Equal(t, "/api/v1/runs/current/jobs/1/image?run=run-7", view.Jobs[0].ImageURL)
	assert.Equal(t, "/api/v1/runs/current/jobs/1/video?run=run-7", view.Jobs[0].VideoURL)
	assert.True(t, view.Jobs[1].Degraded)
	assert.Empty(t, view.Jobs[1].VideoURL)
	assert.Empty(t, view.Jobs[2].ImageURL)
	assert.Equal(t, "/api/v1/runs/current/collage?run=run-7", view.CollageURL)
}

func TestMedia_Downloads(t *testing.T) {
	gen := newFakeGen()
	gen.set(completedSnapshot(t))
	h := newTestServer(gen, nil, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/jobs/1/video?run=run-7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "fake-mp4", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "adgenius-run-7-1.mp4")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/jobs/2/image", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/runs/current/jobs/1/image?run=older-run", http.StatusNotFound},
		{"/api/v1/runs/current/jobs/2/video", http.StatusNotFound},
		{"/api/v1/runs/current/jobs/3/image", http.StatusNotFound},
		{"/api/v1/runs/current/jobs/99/image", http.StatusNotFound},
		{"/api/v1/runs/current/jobs/one/image", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, httptest.NewRequest(http.MethodGet, tt.path, nil)).Code)
		})
	}
}

func TestCollage(t *testing.T) {
	gen := newFakeGen()
	h := newTestServer(gen, nil, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/collage", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	gen.set(completedSnapshot(t))
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/collage?format=png", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	cfg, err := png.DecodeConfig(rec.Body)
	require.NoError(t, err)
	// two completed images, two columns of 800 plus gap and padding
	assert.Equal(t, 2*800+20+2*40, cfg.Width)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/collage?format=gif", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCopy(t *testing.T) {
	gen := newFakeGen()
	h := newTestServer(gen, nil, Options{})
	assert.Equal(t, http.StatusNotFound, do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/copy", nil)).Code)

	gen.set(completedSnapshot(t))
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current/copy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cv copyView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cv))
	assert.Equal(t, "Silk Wrap Dress in Emerald", cv.Title)
	assert.Equal(t, []string{"100% silk", "Adjustable tie"}, cv.Bullets)
}

func TestReset(t *testing.T) {
	gen := newFakeGen()
	gen.set(completedSnapshot(t))
	h := newTestServer(gen, nil, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodDelete, "/api/v1/runs/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gen.resets)
	var view snapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, model.StepUpload, view.Step)
	assert.Empty(t, view.Jobs)
}

func TestCredential_StatusAndSelect(t *testing.T) {
	creds := &fakeCreds{}
	h := newTestServer(newFakeGen(), creds, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/credential", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"has_credential":false,"selection_requested":true}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodPut, "/api/v1/credential", strings.NewReader(`{"api_key":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodPut, "/api/v1/credential", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodPut, "/api/v1/credential", strings.NewReader(`{"api_key":"AIza-test"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AIza-test", creds.selected)
	assert.Contains(t, rec.Body.String(), `"has_credential":true`)
}

func TestStream_PushesSnapshots(t *testing.T) {
	gen := newFakeGen()
	srv := httptest.NewServer(newTestServer(gen, nil, Options{}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/runs/current/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first snapshotView
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, model.StepUpload, first.Step)

	gen.updates <- completedSnapshot(t)
	var next snapshotView
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "run-7", next.RunID)
	assert.Len(t, next.Jobs, 3)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://studio.example.com/", "localhost:5173"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://studio.example.com", true},
		{"http://localhost:5173", true},
		{"https://evil.example.net", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(r), tt.origin)
	}
	assert.True(t, originChecker(nil)(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientIP(r))
	r.Header.Set("X-Forwarded-For", "garbage, 203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestSnapshot_InlineImages(t *testing.T) {
	gen := newFakeGen()
	gen.set(completedSnapshot(t))
	h := newTestServer(gen, nil, Options{})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current?inline=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view snapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.True(t, strings.HasPrefix(view.Jobs[0].ImageData, "data:image/png;base64,"))
	assert.Empty(t, view.Jobs[2].ImageData)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/runs/current", nil))
	assert.NotContains(t, rec.Body.String(), "image_data_url")
}

func TestSubmit_AcceptsDataURLField(t *testing.T) {
	gen := newFakeGen()
	h := newTestServer(gen, nil, Options{})

	raw := pngBytes(t, color.White)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	body, ct := multipartBody(t, map[string]string{"product_image": dataURL})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
	req.Header.Set("Content-Type", ct)

	rec := do(t, h, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, gen.submitted, 1)
	assert.Equal(t, raw, gen.submitted[0].Primary.Data)

	body, ct = multipartBody(t, map[string]string{"product_image": "data:text/plain;base64,aGVsbG8="})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, do(t, h, req).Code)
}
