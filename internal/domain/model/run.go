package model

import "time"

// Mode selects the template family the synthesizer draws from.
type Mode string

const (
	ModeCampaign  Mode = "campaign"
	ModeEcommerce Mode = "ecommerce"
)

// RunStep is the run-level position exposed to the presentation layer.
type RunStep string

const (
	StepUpload     RunStep = "upload"
	StepAnalyzing  RunStep = "analyzing"
	StepGenerating RunStep = "generating"
	StepResults    RunStep = "results"
)

// Persona overrides the inferred model persona when set.
type Persona string

const (
	PersonaAuto   Persona = ""
	PersonaFemale Persona = "female"
	PersonaMale   Persona = "male"
	PersonaUnisex Persona = "unisex"
	PersonaChild  Persona = "child"
)

// RunConfiguration is the user-supplied, read-only configuration of one run.
type RunConfiguration struct {
	Mode            Mode    `json:"mode"`
	Style           string  `json:"style"`
	Brand           string  `json:"brand,omitempty"`
	ProductName     string  `json:"product_name,omitempty"`
	CustomPrompt    string  `json:"custom_prompt,omitempty"`
	Count           int     `json:"count"`
	IncludeVideo    bool    `json:"include_video"`
	AspectRatio     string  `json:"aspect_ratio"`
	ImageModel      string  `json:"image_model"`
	VideoModel      string  `json:"video_model"`
	ColorVariations string  `json:"color_variations,omitempty"`
	RenderText      bool    `json:"render_text"`
	OverlayText     string  `json:"overlay_text,omitempty"`
	Persona         Persona `json:"persona,omitempty"`

	HasSecondary bool `json:"has_secondary_image"`
	HasPattern   bool `json:"has_pattern_image"`
}

// RunInput bundles the configuration with the uploaded reference media.
type RunInput struct {
	Config    RunConfiguration
	Primary   *Media
	Secondary *Media
	Pattern   *Media
}

// Snapshot is an immutable view of the orchestrator state.
type Snapshot struct {
	RunID     string            `json:"run_id,omitempty"`
	Step      RunStep           `json:"step"`
	Config    *RunConfiguration `json:"config,omitempty"`
	Analysis  *ProductAnalysis  `json:"analysis,omitempty"`
	Jobs      []JobState        `json:"jobs"`
	Error     string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Job returns the job state with id, if present.
func (s Snapshot) Job(id int) (JobState, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return JobState{}, false
}

// Settled reports whether every job reached a terminal state.
func (s Snapshot) Settled() bool {
	for _, j := range s.Jobs {
		if !j.Status.Terminal() {
			return false
		}
	}
	return true
}
