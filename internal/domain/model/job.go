package model

// JobStatus is the per-job state machine position.
type JobStatus string

const (
	JobStatusPending         JobStatus = "pending"
	JobStatusGeneratingImage JobStatus = "generating_image"
	JobStatusGeneratingVideo JobStatus = "generating_video"
	JobStatusCompleted       JobStatus = "completed"
	JobStatusFailed          JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// GenerationJob is one planned output. Immutable once synthesized.
type GenerationJob struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
}

// JobState is the mutable record the orchestrator tracks per job id.
type JobState struct {
	ID           int       `json:"id"`
	Label        string    `json:"label"`
	Instruction  string    `json:"instruction"`
	Status       JobStatus `json:"status"`
	Progress     int       `json:"progress"`
	Image        *Media    `json:"-"`
	Video        *Media    `json:"-"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempts     int       `json:"attempts"`
}

// NewJobState seeds the pending state for a synthesized job.
func NewJobState(j GenerationJob) JobState {
	return JobState{
		ID:          j.ID,
		Label:       j.Label,
		Instruction: j.Instruction,
		Status:      JobStatusPending,
	}
}

// Degraded is a completed job whose optional video failed.
func (s JobState) Degraded() bool {
	return s.Status == JobStatusCompleted && s.ErrorMessage != ""
}

func (s JobState) HasImage() bool { return s.Image != nil && !s.Image.Empty() }
func (s JobState) HasVideo() bool { return s.Video != nil && !s.Video.Empty() }
