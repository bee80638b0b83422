//go:build !integration

package usecase

import (
	"testing"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

func seededStore(t *testing.T, runID string, n int) *Store {
	t.Helper()
	s := NewStore()
	s.Begin(runID, model.RunConfiguration{Mode: model.ModeCampaign})
	a := sampleAnalysis()
	jobs := make([]model.GenerationJob, n)
	for i := range jobs {
		jobs[i] = model.GenerationJob{ID: i + 1, Label: "job"}
	}
	if !s.Seed(runID, &a, jobs) {
		t.Fatal("seed rejected")
	}
	return s
}

func TestStore_StaleRunWritesDropped(t *testing.T) {
	t.Parallel()
	s := seededStore(t, "run-a", 2)
	s.Reset()
	s.Begin("run-b", model.RunConfiguration{})

	if s.Apply("run-a", 1, startImage) {
		t.Fatal("write from a discarded run must be dropped")
	}
	if s.Finish("run-a") || s.Abort("run-a", "late") {
		t.Fatal("finish/abort from a discarded run must be dropped")
	}
	snap := s.Snapshot()
	if snap.RunID != "run-b" || len(snap.Jobs) != 0 || snap.Error != "" {
		t.Fatalf("unexpected snapshot after stale writes: %+v", snap)
	}
}

func TestStore_TerminalFrozenAndProgressMonotone(t *testing.T) {
	t.Parallel()
	s := seededStore(t, "r", 1)
	s.Apply("r", 1, startImage)
	for i := 0; i < 30; i++ {
		s.Apply("r", 1, tickImageProgress)
	}
	j, _ := s.Snapshot().Job(1)
	if j.Progress != progressImageCap {
		t.Fatalf("expected ramp to cap at %d, got %d", progressImageCap, j.Progress)
	}
	s.Apply("r", 1, func(st model.JobState) model.JobState { st.Progress = 10; return st })
	j, _ = s.Snapshot().Job(1)
	if j.Progress != progressImageCap {
		t.Fatalf("progress moved backwards to %d", j.Progress)
	}

	s.Apply("r", 1, imageDone(pngMedia("x"), false))
	if s.Apply("r", 1, jobFailed("late")) {
		t.Fatal("terminal state must be frozen")
	}
	j, _ = s.Snapshot().Job(1)
	if j.Status != model.JobStatusCompleted || j.Progress != 100 || !j.HasImage() {
		t.Fatalf("unexpected terminal job: %+v", j)
	}
}

func TestStore_VideoRequiresImage(t *testing.T) {
	t.Parallel()
	s := seededStore(t, "r", 1)
	s.Apply("r", 1, func(st model.JobState) model.JobState {
		v := model.Media{Data: []byte("v")}
		st.Video = &v
		return st
	})
	j, _ := s.Snapshot().Job(1)
	if j.Video != nil {
		t.Fatal("a video without an image must not be stored")
	}
}

func TestStore_FinishRequiresAllTerminal(t *testing.T) {
	t.Parallel()
	s := seededStore(t, "r", 2)
	s.Apply("r", 1, jobFailed("boom"))
	if s.Finish("r") {
		t.Fatal("finish must wait for every job")
	}
	s.Apply("r", 2, imageDone(pngMedia("x"), false))
	if !s.Finish("r") {
		t.Fatal("expected finish once all jobs are terminal")
	}
	snap := s.Snapshot()
	if snap.Step != model.StepResults || !snap.Settled() {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if j, _ := snap.Job(1); j.Progress != 0 || j.ErrorMessage != "boom" {
		t.Fatalf("unexpected failed job: %+v", j)
	}
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	t.Parallel()
	s := seededStore(t, "r", 1)
	snap := s.Snapshot()
	snap.Jobs[0].Label = "mutated"
	snap.Analysis.Features[0] = "mutated"
	again := s.Snapshot()
	if again.Jobs[0].Label == "mutated" || again.Analysis.Features[0] == "mutated" {
		t.Fatal("snapshot shares state with the store")
	}
}

func TestStore_SubscribeLatestWins(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ch, cancel := s.Subscribe()
	s.Begin("r", model.RunConfiguration{})
	s.Abort("r", "analysis failed")

	snap := <-ch
	if snap.Step != model.StepUpload || snap.Error != "analysis failed" {
		t.Fatalf("expected only the latest snapshot, got %+v", snap)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
}
