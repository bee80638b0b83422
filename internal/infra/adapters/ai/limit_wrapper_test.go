//go:build !integration

package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

func TestNewLimitedGateway_ZeroIsPassThrough(t *testing.T) {
	t.Parallel()
	inner := NewNoopGateway(0, nil)
	if got := NewLimitedGateway(inner, 0); got != inner {
		t.Fatal("limit 0 must return the inner gateway unchanged")
	}
}

func TestLimitedGateway_RespectsContextWhileWaiting(t *testing.T) {
	t.Parallel()
	g := NewLimitedGateway(NewNoopGateway(200*time.Millisecond, nil), 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = g.GenerateImage(context.Background(), model.ImageRequest{Instruction: "a"})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.GenerateImage(ctx, model.ImageRequest{Instruction: "b"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while waiting for a slot, got %v", err)
	}
	<-done
}

func TestNoopGateway(t *testing.T) {
	t.Parallel()
	g := NewNoopGateway(0, nil)
	ctx := context.Background()

	a, err := g.Analyze(ctx, model.Media{Data: []byte("x")})
	if err != nil || len(a.MissingFields()) != 0 {
		t.Fatalf("noop analysis must be complete: %v %v", err, a.MissingFields())
	}
	one, _ := g.GenerateImage(ctx, model.ImageRequest{Instruction: "one"})
	two, _ := g.GenerateImage(ctx, model.ImageRequest{Instruction: "two"})
	if one.MIMEType != "image/png" || string(one.Data) == string(two.Data) {
		t.Fatal("expected distinct PNGs per instruction")
	}
	var last int
	v, err := g.GenerateVideo(ctx, model.VideoRequest{Label: "L"}, func(p int) { last = p })
	if err != nil || v.Empty() || last != 98 {
		t.Fatalf("unexpected video result: %v, progress %d", err, last)
	}
}
