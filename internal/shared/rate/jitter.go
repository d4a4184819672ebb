package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

// Jitter converts a per-second rate limit into a channel of permits.
// The sweeper drains it to pace removals so a large expired backlog
// cannot monopolize the manager lock.
type Jitter struct {
	ch chan struct{}
	l  ratelimit.Limiter
}

func NewJitter(ctx context.Context, limit int) *Jitter {
	if limit < 1 {
		limit = 1
	}
	brst := int(float64(limit) * 0.1)
	if brst < 1 {
		brst = 1
	}
	jitter := &Jitter{
		ch: make(chan struct{}, brst),
		l:  ratelimit.New(limit),
	}
	go jitter.provider(ctx)
	return jitter
}

func (l *Jitter) provider(ctx context.Context) {
	defer close(l.ch)
	for {
		l.l.Take()
		select {
		case <-ctx.Done():
			return
		case l.ch <- struct{}{}:
		}
	}
}

func (l *Jitter) Take() {
	<-l.ch
}

func (l *Jitter) Chan() <-chan struct{} {
	return l.ch
}
