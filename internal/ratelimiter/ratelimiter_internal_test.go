package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func newTestRateLimiter(t *testing.T) *RateLimiter {
	t.Helper()

	rl := New(slog.New(slog.DiscardHandler))
	t.Cleanup(rl.Stop)

	return rl
}

func TestGetRate(t *testing.T) {
	tests := []struct {
		name   string
		chatID int64
		want   time.Duration
	}{
		{"Private chat", 123456789, privateChatRate},
		{"Group chat", -123456789, groupChatRate},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := getRate(test.chatID); got != test.want {
				t.Errorf("Expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestDoRunsJobAndReturnsItsError(t *testing.T) {
	rl := newTestRateLimiter(t)
	errSend := errors.New("send failed")

	ran := false
	err := rl.Do(context.Background(), 1, func(context.Context) error {
		ran = true
		return errSend
	})

	if !ran {
		t.Fatalf("expected job to run")
	}

	if !errors.Is(err, errSend) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestDoDelaysSecondMessageToSameChat(t *testing.T) {
	rl := newTestRateLimiter(t)
	noop := func(context.Context) error { return nil }

	if err := rl.Do(context.Background(), 1, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := rl.Do(context.Background(), 2, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > privateChatRate/2 {
		t.Fatalf("expected no delay for another chat, got %v", elapsed)
	}

	start = time.Now()
	if err := rl.Do(context.Background(), 1, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < privateChatRate/2 {
		t.Fatalf("expected delay for the same chat, got %v", elapsed)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	rl := newTestRateLimiter(t)
	noop := func(context.Context) error { return nil }

	if err := rl.Do(context.Background(), -5, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Do(ctx, -5, noop)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDoAfterStop(t *testing.T) {
	rl := New(slog.New(slog.DiscardHandler))
	rl.Stop()

	ran := false
	err := rl.Do(context.Background(), 1, func(context.Context) error {
		ran = true
		return nil
	})

	if ran {
		t.Fatalf("expected job not to run")
	}

	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestSweepDropsIdleLimiters(t *testing.T) {
	rl := newTestRateLimiter(t)
	noop := func(context.Context) error { return nil }

	for _, chatID := range []int64{1, -2} {
		if err := rl.Do(context.Background(), chatID, noop); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := rl.Len(); got != 2 {
		t.Fatalf("expected 2 limiters, got %d", got)
	}

	if removed := rl.Sweep(time.Now()); removed != 0 {
		t.Fatalf("expected no busy limiter to be swept, got %d", removed)
	}

	if removed := rl.Sweep(time.Now().Add(privateChatRate + time.Millisecond*100)); removed != 1 {
		t.Fatalf("expected private chat limiter to be swept, got %d", removed)
	}

	if removed := rl.Sweep(time.Now().Add(groupChatRate + time.Millisecond*100)); removed != 1 {
		t.Fatalf("expected group chat limiter to be swept, got %d", removed)
	}

	if got := rl.Len(); got != 0 {
		t.Fatalf("expected no limiters, got %d", got)
	}
}

func TestSweepKeepsPendingDelay(t *testing.T) {
	rl := newTestRateLimiter(t)

	if delay := rl.reserve(-7).Delay(); delay != 0 {
		t.Fatalf("expected first message without delay, got %v", delay)
	}

	if removed := rl.Sweep(time.Now()); removed != 0 {
		t.Fatalf("expected recently used limiter to stay, got %d", removed)
	}

	if delay := rl.reserve(-7).Delay(); delay < groupChatRate/2 {
		t.Fatalf("expected second message to wait, got %v", delay)
	}
}
