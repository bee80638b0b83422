//go:build !integration

package model

import (
	"reflect"
	"testing"
)

// --- ProductAnalysis Tests ---

func TestProductAnalysis_MissingFields(t *testing.T) {
	t.Run("should report nothing for a complete analysis", func(t *testing.T) {
		a := ProductAnalysis{
			ProductName: "Linen Shirt", Category: "shirt", PrimaryColor: "Ecru",
			Material: "linen", Style: "relaxed", CommerceTitle: "t",
			CommerceDescription: "d", CommerceBullets: []string{"b"},
		}
		if got := a.MissingFields(); len(got) != 0 {
			t.Fatalf("expected no missing fields, got %v", got)
		}
	})

	t.Run("should list blank required fields in declaration order", func(t *testing.T) {
		a := ProductAnalysis{ProductName: "  ", Category: "dress", PrimaryColor: "Red", Material: "silk"}
		want := []string{"product_name", "style", "ecommerce_title", "ecommerce_description", "ecommerce_bullets"}
		if got := a.MissingFields(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestProductAnalysis_Clone(t *testing.T) {
	a := &ProductAnalysis{Features: []string{"pockets"}, CommerceBullets: []string{"soft"}}
	cp := a.Clone()
	cp.Features[0] = "zip"
	if a.Features[0] != "pockets" {
		t.Error("expected clone to not share the features slice")
	}
	var nilA *ProductAnalysis
	if nilA.Clone() != nil {
		t.Error("expected nil clone of nil analysis")
	}
}

// --- JobState Tests ---

func TestJobStatus_Terminal(t *testing.T) {
	cases := map[JobStatus]bool{
		JobStatusPending:         false,
		JobStatusGeneratingImage: false,
		JobStatusGeneratingVideo: false,
		JobStatusCompleted:       true,
		JobStatusFailed:          true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("%s: expected terminal=%v, got %v", status, want, got)
		}
	}
}

func TestJobState_Degraded(t *testing.T) {
	s := NewJobState(GenerationJob{ID: 3, Label: "Front View", Instruction: "x"})
	if s.Status != JobStatusPending || s.ID != 3 {
		t.Fatalf("unexpected seed state: %+v", s)
	}
	s.Status = JobStatusCompleted
	if s.Degraded() {
		t.Error("completed job without error should not be degraded")
	}
	s.ErrorMessage = "video failed"
	if !s.Degraded() {
		t.Error("completed job with error should be degraded")
	}
	s.Status = JobStatusFailed
	if s.Degraded() {
		t.Error("failed job is never degraded")
	}
}

// --- Snapshot Tests ---

func TestSnapshot_Settled(t *testing.T) {
	snap := Snapshot{Jobs: []JobState{
		{ID: 1, Status: JobStatusCompleted},
		{ID: 2, Status: JobStatusFailed},
	}}
	if !snap.Settled() {
		t.Error("expected all-terminal snapshot to be settled")
	}
	snap.Jobs = append(snap.Jobs, JobState{ID: 3, Status: JobStatusGeneratingVideo})
	if snap.Settled() {
		t.Error("expected snapshot with an active job to be unsettled")
	}
	if _, ok := snap.Job(3); !ok {
		t.Error("expected job 3 to be found")
	}
	if _, ok := snap.Job(9); ok {
		t.Error("expected job 9 to be absent")
	}
}

func TestVideoAspectRatio(t *testing.T) {
	cases := map[string]string{
		"9:16": "9:16", "3:4": "9:16", "1:1": "9:16",
		"16:9": "16:9", "4:3": "16:9", "": "16:9",
	}
	for in, want := range cases {
		if got := VideoAspectRatio(in); got != want {
			t.Errorf("VideoAspectRatio(%q): expected %s, got %s", in, want, got)
		}
	}
}
