package api

import (
	"fmt"
	"time"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/codec"
)

// jobView is a JobState with the media replaced by download URLs.
type jobView struct {
	model.JobState
	Degraded  bool   `json:"degraded"`
	ImageURL  string `json:"image_url,omitempty"`
	ImageMIME string `json:"image_mime_type,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
	VideoMIME string `json:"video_mime_type,omitempty"`
	// ImageData is set only when the client asks for inline images.
	ImageData string `json:"image_data_url,omitempty"`
}

type snapshotView struct {
	RunID      string                  `json:"run_id,omitempty"`
	Step       model.RunStep           `json:"step"`
	Config     *model.RunConfiguration `json:"config,omitempty"`
	Analysis   *model.ProductAnalysis  `json:"analysis,omitempty"`
	Jobs       []jobView               `json:"jobs"`
	Error      string                  `json:"error,omitempty"`
	CollageURL string                  `json:"collage_url,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

type copyView struct {
	RunID       string   `json:"run_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
	Keywords    []string `json:"keywords,omitempty"`
}

const currentRunPath = "/api/v1/runs/current"

func newSnapshotView(s model.Snapshot) snapshotView {
	v := snapshotView{
		RunID:     s.RunID,
		Step:      s.Step,
		Config:    s.Config,
		Analysis:  s.Analysis,
		Jobs:      make([]jobView, 0, len(s.Jobs)),
		Error:     s.Error,
		UpdatedAt: s.UpdatedAt,
	}
	images := 0
	for _, j := range s.Jobs {
		jv := jobView{JobState: j, Degraded: j.Degraded()}
		if j.HasImage() {
			images++
			jv.ImageURL = mediaURL(s.RunID, j.ID, "image")
			jv.ImageMIME = j.Image.MIMEType
		}
		if j.HasVideo() {
			jv.VideoURL = mediaURL(s.RunID, j.ID, "video")
			jv.VideoMIME = j.Video.MIMEType
		}
		v.Jobs = append(v.Jobs, jv)
	}
	if s.Step == model.StepResults && images > 0 {
		v.CollageURL = currentRunPath + "/collage?run=" + s.RunID
	}
	return v
}

// inlineImages embeds each job's image from the snapshot the view was built from.
func (v *snapshotView) inlineImages(s model.Snapshot) {
	for i, j := range s.Jobs {
		if j.HasImage() {
			v.Jobs[i].ImageData = codec.DataURL(*j.Image)
		}
	}
}

// mediaURL carries the run id so a download never serves media from a newer run.
func mediaURL(runID string, jobID int, kind string) string {
	return fmt.Sprintf("%s/jobs/%d/%s?run=%s", currentRunPath, jobID, kind, runID)
}
