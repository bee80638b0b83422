package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/codec"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/collage"
	"github.com/hiktan44/Adgeniusfashion/internal/usecase"
)

var aspectRatios = map[string]bool{"1:1": true, "3:4": true, "4:3": true, "9:16": true, "16:9": true}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// submitHandler accepts the multipart upload form and starts a run.
func submitHandler(gen usecase.GenerationUseCase, maxFileBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// three images plus form fields
		r.Body = http.MaxBytesReader(w, r.Body, 3*maxFileBytes+1<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
				return
			}
			writeError(w, http.StatusBadRequest, "expected multipart/form-data")
			return
		}
		defer r.MultipartForm.RemoveAll()

		in, err := parseRunInput(r, maxFileBytes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := gen.Submit(r.Context(), in); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, newSnapshotView(gen.Snapshot()))
	}
}

func parseRunInput(r *http.Request, maxFileBytes int64) (model.RunInput, error) {
	var in model.RunInput
	form := r.MultipartForm.Value
	field := func(k string) string {
		if vs := form[k]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	cfg := model.RunConfiguration{
		Mode:            model.Mode(field("mode")),
		Style:           field("style"),
		Brand:           field("brand"),
		ProductName:     field("product_name"),
		CustomPrompt:    field("custom_prompt"),
		AspectRatio:     field("aspect_ratio"),
		ImageModel:      field("image_model"),
		VideoModel:      field("video_model"),
		ColorVariations: field("color_variations"),
		OverlayText:     field("overlay_text"),
		Persona:         model.Persona(field("persona")),
	}
	switch cfg.Mode {
	case "", model.ModeCampaign, model.ModeEcommerce:
	default:
		return in, fmt.Errorf("%w: mode must be campaign or ecommerce", domain.ErrInvalidArgument)
	}
	switch cfg.Persona {
	case model.PersonaAuto, model.PersonaFemale, model.PersonaMale, model.PersonaUnisex, model.PersonaChild:
	default:
		return in, fmt.Errorf("%w: unknown persona %q", domain.ErrInvalidArgument, cfg.Persona)
	}
	if cfg.AspectRatio != "" && !aspectRatios[cfg.AspectRatio] {
		return in, fmt.Errorf("%w: unsupported aspect ratio %q", domain.ErrInvalidArgument, cfg.AspectRatio)
	}
	if v := field("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, fmt.Errorf("%w: count must be a number", domain.ErrInvalidArgument)
		}
		cfg.Count = n
	}
	var err error
	if cfg.IncludeVideo, err = formBool(field("include_video")); err != nil {
		return in, err
	}
	if cfg.RenderText, err = formBool(field("render_text")); err != nil {
		return in, err
	}
	in.Config = cfg

	if in.Primary, err = formImage(r, "product_image", maxFileBytes); err != nil {
		return in, err
	}
	if in.Secondary, err = formImage(r, "secondary_image", maxFileBytes); err != nil {
		return in, err
	}
	if in.Pattern, err = formImage(r, "pattern_image", maxFileBytes); err != nil {
		return in, err
	}
	return in, nil
}

func formBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "":
		return false, nil
	case "on", "yes":
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidArgument, v)
	}
	return b, nil
}

// formImage returns nil when the field is absent. Besides a file part, the field may carry
// the image as a data URL or bare base64 text.
func formImage(r *http.Request, name string, limit int64) (*model.Media, error) {
	f, hdr, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return inlineImage(r, name, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArgument, name, err)
	}
	defer f.Close()
	m, err := codec.Read(f, hdr.Header.Get("Content-Type"), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &m, nil
}

func inlineImage(r *http.Request, name string, limit int64) (*model.Media, error) {
	vs := r.MultipartForm.Value[name]
	if len(vs) == 0 || strings.TrimSpace(vs[0]) == "" {
		return nil, nil
	}
	m, err := codec.Decode(vs[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if limit > 0 && int64(m.Size()) > limit {
		return nil, fmt.Errorf("%s: %w: upload exceeds %d bytes", name, domain.ErrCodec, limit)
	}
	if !strings.HasPrefix(m.MIMEType, "image/") {
		return nil, fmt.Errorf("%s: %w: not an image (%s)", name, domain.ErrCodec, m.MIMEType)
	}
	return &m, nil
}

// snapshotHandler serves the current snapshot; ?inline=true embeds images as data URLs.
func snapshotHandler(gen usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := gen.Snapshot()
		v := newSnapshotView(snap)
		if inline, _ := strconv.ParseBool(r.URL.Query().Get("inline")); inline {
			v.inlineImages(snap)
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func resetHandler(gen usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gen.Reset(r.Context())
		writeJSON(w, http.StatusOK, newSnapshotView(gen.Snapshot()))
	}
}

func imageOf(j model.JobState) *model.Media {
	if !j.HasImage() {
		return nil
	}
	return j.Image
}

func videoOf(j model.JobState) *model.Media {
	if !j.HasVideo() {
		return nil
	}
	return j.Video
}

// mediaHandler serves one job's image or video. A ?run= that is not the current run is a 404.
func mediaHandler(gen usecase.GenerationUseCase, pick func(model.JobState) *model.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "job id must be a number")
			return
		}
		snap := gen.Snapshot()
		if run := r.URL.Query().Get("run"); run != "" && run != snap.RunID {
			writeDomainError(w, domain.ErrNotFound)
			return
		}
		job, ok := snap.Job(id)
		if !ok {
			writeDomainError(w, domain.ErrNotFound)
			return
		}
		m := pick(job)
		if m == nil {
			writeDomainError(w, domain.ErrNotFound)
			return
		}
		name := fmt.Sprintf("adgenius-%s-%d%s", snap.RunID, job.ID, codec.Extension(m.MIMEType))
		w.Header().Set("Content-Type", m.MIMEType)
		w.Header().Set("Content-Length", strconv.Itoa(m.Size()))
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(m.Data)
	}
}

func collageHandler(gen usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := gen.Snapshot()
		if run := r.URL.Query().Get("run"); run != "" && run != snap.RunID {
			writeDomainError(w, domain.ErrNotFound)
			return
		}
		data, mime, err := collage.Render(snap.Jobs, collage.Format(r.URL.Query().Get("format")))
		if errors.Is(err, collage.ErrNoImages) {
			writeError(w, http.StatusNotFound, "no completed images to compose")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		name := fmt.Sprintf("adgenius-collage-%s%s", snap.RunID, codec.Extension(mime))
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func copyHandler(gen usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := gen.Snapshot()
		if snap.Analysis == nil {
			writeError(w, http.StatusNotFound, "no analysis for the current run")
			return
		}
		a := snap.Analysis
		writeJSON(w, http.StatusOK, copyView{
			RunID:       snap.RunID,
			Title:       a.CommerceTitle,
			Description: a.CommerceDescription,
			Bullets:     a.CommerceBullets,
			Keywords:    a.Keywords,
		})
	}
}

func credentialStatusHandler(creds CredentialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, creds.Status(r.Context()))
	}
}

type credentialSelectRequest struct {
	APIKey string `json:"api_key"`
}

func credentialSelectHandler(creds CredentialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialSelectRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := creds.Select(r.Context(), req.APIKey); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, creds.Status(r.Context()))
	}
}

// statusFor maps the domain error taxonomy to HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingPrimaryImage),
		errors.Is(err, domain.ErrCodec):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCredentialMissing):
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, code, msg)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP prefers the first valid X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
