package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"
)

func TestDoReturnsTaskResult(t *testing.T) {
	common.InitTestLogger()
	m := NewManager(&config.QueueConfig{Workers: 2, MaxSize: 4})
	defer m.Close()

	text, err := m.Do(context.Background(), func(ctx context.Context) (string, error) {
		return "two eggs", nil
	})
	if err != nil || text != "two eggs" {
		t.Fatalf("Do() = %q, %v", text, err)
	}

	wantErr := errors.New("boom")
	if _, err := m.Do(context.Background(), func(ctx context.Context) (string, error) {
		return "", wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected task error, got %v", err)
	}

	if got := m.GetQueueStatus().ProcessedCount; got != 2 {
		t.Fatalf("processed = %d, want 2", got)
	}
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	common.InitTestLogger()
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1})
	defer m.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "done", nil
	}

	first, err := m.Enqueue(context.Background(), blocking)
	if err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	<-started

	second, err := m.Enqueue(context.Background(), func(ctx context.Context) (string, error) { return "second", nil })
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}

	if _, err := m.Enqueue(context.Background(), func(ctx context.Context) (string, error) { return "", nil }); !errors.Is(err, common.ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}

	close(release)
	if res := <-first; res.Text != "done" {
		t.Fatalf("first result = %+v", res)
	}
	if res := <-second; res.Text != "second" {
		t.Fatalf("second result = %+v", res)
	}
}

func TestDoHonoursContext(t *testing.T) {
	common.InitTestLogger()
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 2})
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Do(ctx, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	common.InitTestLogger()
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1})
	m.Close()
	m.Close()

	if _, err := m.Enqueue(context.Background(), func(ctx context.Context) (string, error) { return "", nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
