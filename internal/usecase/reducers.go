package usecase

import "github.com/hiktan44/Adgeniusfashion/internal/domain/model"

// Reducer is a pure partial update applied to one job's state.
type Reducer func(model.JobState) model.JobState

const (
	progressImageStart = 5
	progressImageStep  = 2
	progressImageCap   = 45
	progressVideoFloor = 50
	progressVideoCap   = 98
	progressDone       = 100
)

func startImage(s model.JobState) model.JobState {
	if s.Status != model.JobStatusPending {
		return s
	}
	s.Status = model.JobStatusGeneratingImage
	s.Progress = progressImageStart
	return s
}

// tickImageProgress is the synthetic ramp; inert outside generating_image.
func tickImageProgress(s model.JobState) model.JobState {
	if s.Status != model.JobStatusGeneratingImage {
		return s
	}
	s.Progress = min(s.Progress+progressImageStep, progressImageCap)
	return s
}

func recordAttempt(s model.JobState) model.JobState {
	s.Attempts++
	return s
}

func imageDone(img model.Media, withVideo bool) Reducer {
	return func(s model.JobState) model.JobState {
		s.Image = &img
		if withVideo {
			s.Status = model.JobStatusGeneratingVideo
			s.Progress = progressVideoFloor
			return s
		}
		s.Status = model.JobStatusCompleted
		s.Progress = progressDone
		return s
	}
}

// videoProgress takes the poller's estimate; it never moves backwards or past the cap.
func videoProgress(p int) Reducer {
	return func(s model.JobState) model.JobState {
		if s.Status != model.JobStatusGeneratingVideo {
			return s
		}
		s.Progress = max(s.Progress, min(p, progressVideoCap))
		return s
	}
}

func videoDone(video model.Media) Reducer {
	return func(s model.JobState) model.JobState {
		if s.Image == nil {
			return s
		}
		s.Video = &video
		s.Status = model.JobStatusCompleted
		s.Progress = progressDone
		return s
	}
}

// videoFailed keeps the image: the job is a degraded success, not a failure.
func videoFailed(msg string) Reducer {
	return func(s model.JobState) model.JobState {
		s.Status = model.JobStatusCompleted
		s.ErrorMessage = msg
		s.Progress = progressDone
		return s
	}
}

func jobFailed(msg string) Reducer {
	return func(s model.JobState) model.JobState {
		s.Status = model.JobStatusFailed
		s.ErrorMessage = msg
		s.Progress = 0
		return s
	}
}
