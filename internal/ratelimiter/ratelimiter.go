package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 1000
)

// ErrStopped is returned for jobs submitted after or pending at Stop.
var ErrStopped = errors.New("rate limiter is stopped")

// Job sends one message to a chat.
type Job func(ctx context.Context) error

type request struct {
	ctx      context.Context
	chatID   int64
	job      Job
	response chan error
}

// RateLimiter serialises outbound messages and keeps each chat under the
// Telegram per-chat limits.
type RateLimiter struct {
	queue    chan request
	limiters map[int64]*rate.Limiter
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
}

func New(log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		queue:    make(chan request, queueSize),
		limiters: make(map[int64]*rate.Limiter),
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
	}

	go rl.processQueue()

	return rl
}

// Do queues job for chatID and waits until it ran.
func (rl *RateLimiter) Do(ctx context.Context, chatID int64, job Job) error {
	if rl.ctx.Err() != nil {
		return ErrStopped
	}

	req := request{
		ctx:      ctx,
		chatID:   chatID,
		job:      job,
		response: make(chan error, 1),
	}

	select {
	case rl.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return ErrStopped
	}

	select {
	case err := <-req.response:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
}

func (rl *RateLimiter) processQueue() {
	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.response <- ErrStopped
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := req.ctx.Err(); err != nil {
		req.response <- err

		return
	}

	reservation := rl.reserve(req.chatID)

	if delay := reservation.Delay(); delay > 0 {
		rl.log.DebugContext(req.ctx, "Rate limiting message",
			"chatID", req.chatID,
			"delay", delay,
			"queueLen", len(rl.queue))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-req.ctx.Done():
			timer.Stop()
			reservation.Cancel()
			req.response <- req.ctx.Err()

			return
		case <-rl.ctx.Done():
			timer.Stop()
			reservation.Cancel()
			req.response <- ErrStopped

			return
		}
	}

	req.response <- req.job(req.ctx)
}

// reserve takes the next send slot of chatID. The slot is taken under the
// lock so that Sweep never drops a limiter between lookup and reservation.
func (rl *RateLimiter) reserve(chatID int64) *rate.Reservation {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[chatID]
	if !ok {
		l = rate.NewLimiter(rate.Every(getRate(chatID)), 1)
		rl.limiters[chatID] = l
	}

	return l.Reserve()
}

// Sweep drops the limiters of chats that are idle at now. A limiter whose
// bucket is full behaves like a new one, so dropping it changes no delay.
func (rl *RateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for chatID, l := range rl.limiters {
		if l.TokensAt(now) >= float64(l.Burst()) {
			delete(rl.limiters, chatID)
			removed++
		}
	}

	return removed
}

// Len returns the number of chats with a limiter.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.limiters)
}

// Group and supergroup chat IDs are negative.
func getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return groupChatRate
	}
	return privateChatRate
}
