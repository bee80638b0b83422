package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

// Store is the keyed job-state store. Writers go through reducers; readers get immutable snapshots.
// Every write carries the run id it belongs to so stragglers from a discarded run are dropped.
type Store struct {
	mu       sync.Mutex
	runID    string
	step     model.RunStep
	cfg      *model.RunConfiguration
	analysis *model.ProductAnalysis
	jobs     map[int]model.JobState
	errMsg   string
	updated  time.Time
	now      func() time.Time

	subs map[string]chan model.Snapshot
}

func NewStore() *Store {
	return &Store{
		step: model.StepUpload,
		jobs: map[int]model.JobState{},
		now:  time.Now,
		subs: map[string]chan model.Snapshot{},
	}
}

// Snapshot returns a copy that shares nothing mutable with the store.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	jobs := make([]model.JobState, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].ID < jobs[b].ID })

	var cfg *model.RunConfiguration
	if s.cfg != nil {
		c := *s.cfg
		cfg = &c
	}
	return model.Snapshot{
		RunID:     s.runID,
		Step:      s.step,
		Config:    cfg,
		Analysis:  s.analysis.Clone(),
		Jobs:      jobs,
		Error:     s.errMsg,
		UpdatedAt: s.updated,
	}
}

// Begin starts a new run in the analyzing step, discarding any previous state.
func (s *Store) Begin(runID string, cfg model.RunConfiguration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.step = model.StepAnalyzing
	s.cfg = &cfg
	s.analysis = nil
	s.jobs = map[int]model.JobState{}
	s.errMsg = ""
	s.touchLocked()
}

// Seed records the analysis and the pending jobs and moves the run to generating.
func (s *Store) Seed(runID string, analysis *model.ProductAnalysis, jobs []model.GenerationJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		return false
	}
	s.analysis = analysis.Clone()
	for _, j := range jobs {
		s.jobs[j.ID] = model.NewJobState(j)
	}
	s.step = model.StepGenerating
	s.touchLocked()
	return true
}

// Apply merges one reducer into job id. Terminal states are frozen and progress
// never decreases while the job is still active. Returns false when the write was dropped.
func (s *Store) Apply(runID string, id int, r Reducer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		return false
	}
	cur, ok := s.jobs[id]
	if !ok || cur.Status.Terminal() {
		return false
	}
	next := r(cur)
	next.ID = cur.ID
	if !next.Status.Terminal() && next.Progress < cur.Progress {
		next.Progress = cur.Progress
	}
	if next.Video != nil && next.Image == nil {
		next.Video = nil
	}
	s.jobs[id] = next
	s.touchLocked()
	return true
}

// Finish moves the run to results once every job is terminal.
func (s *Store) Finish(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID || s.step != model.StepGenerating {
		return false
	}
	for _, j := range s.jobs {
		if !j.Status.Terminal() {
			return false
		}
	}
	s.step = model.StepResults
	s.touchLocked()
	return true
}

// Abort reverts a run to the upload step with a surfaced error and no job states.
// The configuration is kept so the form can be re-filled.
func (s *Store) Abort(runID string, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		return false
	}
	s.step = model.StepUpload
	s.analysis = nil
	s.jobs = map[int]model.JobState{}
	s.errMsg = msg
	s.touchLocked()
	return true
}

// Reset discards everything and returns to upload.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = ""
	s.step = model.StepUpload
	s.cfg = nil
	s.analysis = nil
	s.jobs = map[int]model.JobState{}
	s.errMsg = ""
	s.touchLocked()
}

// Active reports whether a run is analyzing or generating.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step == model.StepAnalyzing || s.step == model.StepGenerating
}

// Subscribe returns a channel that always holds the latest snapshot (older ones are dropped).
func (s *Store) Subscribe() (<-chan model.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	ch := make(chan model.Snapshot, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Store) touchLocked() {
	s.updated = s.now()
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
