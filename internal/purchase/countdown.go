package purchase

import (
	"context"
	"time"
)

// Tick is delivered by a Countdown on every interval.
type Tick struct {
	State     State
	Remaining time.Duration
}

// Countdown drives Session.Tick on a fixed interval. Its ticker is released
// as soon as the session reaches a terminal state, the context ends, or Stop
// is called, whichever happens first.
type Countdown struct {
	ticks  chan Tick
	done   chan struct{}
	cancel context.CancelFunc
}

// StartCountdown begins ticking s every interval. Ticks are delivered on
// C(); a slow reader misses ticks rather than blocking the countdown.
func StartCountdown(ctx context.Context, s *Session, interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{
		ticks:  make(chan Tick, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go c.run(ctx, s, interval)
	return c
}

func (c *Countdown) run(ctx context.Context, s *Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		close(c.ticks)
		close(c.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case <-ticker.C:
			now := s.Now()
			st := s.Tick(now)
			select {
			case c.ticks <- Tick{State: st, Remaining: s.Remaining(now)}:
			default:
			}
			if st.Terminal() {
				return
			}
		}
	}
}

// C delivers ticks. It is closed when the countdown ends.
func (c *Countdown) C() <-chan Tick { return c.ticks }

// Done is closed after the ticker has been released.
func (c *Countdown) Done() <-chan struct{} { return c.done }

// Stop ends the countdown and waits for the ticker to be released.
func (c *Countdown) Stop() {
	c.cancel()
	<-c.done
}
