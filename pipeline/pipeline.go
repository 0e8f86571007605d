// Package pipeline drives the pacing core for a single playback session,
// forwarding demuxer output into the pacer from one goroutine while ticking
// paced delivery from another.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/cadence/demux"
	"github.com/zsiec/cadence/pacer"
)

// TickInterval is how often the driver asks the pacer to deliver buffered
// packets. 20 ms keeps delivery granular well below the lookahead window.
const TickInterval = 20 * time.Millisecond

// Clock reports the current playback position. Implemented by the player's
// rendering clock; tests use a fake.
type Clock func() time.Duration

// Pipeline bridges one demuxer source and one pacer. The source side and the
// tick side run concurrently; the pacer's own locking keeps them safe.
type Pipeline struct {
	log    *slog.Logger
	source demux.Source
	clock  Clock
	mgr    *pacer.Manager
	tick   time.Duration
}

// New creates a Pipeline. If log is nil, slog.Default() is used.
func New(source demux.Source, clock Clock, mgr *pacer.Manager, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		log:    log.With("component", "pipeline"),
		source: source,
		clock:  clock,
		mgr:    mgr,
		tick:   TickInterval,
	}
}

// SetTickInterval overrides the delivery tick period. Call before Run.
func (p *Pipeline) SetTickInterval(d time.Duration) {
	p.tick = d
}

// Run forwards demuxer output to the pacer and ticks delivery until the
// context is cancelled, or until the source closes its channel and a tick
// reports the buffer drained. It blocks for the duration of the session.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Closed by the feed goroutine once the source has no more output.
	exhausted := make(chan struct{})

	g.Go(func() error {
		defer close(exhausted)
		for {
			select {
			case out, ok := <-p.source.Packets():
				if !ok {
					p.log.Info("source channel closed")
					return nil
				}
				p.mgr.HandleMessage(out.Message, out.Packet)
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hasMore := p.mgr.Update(p.clock())
				if !hasMore {
					select {
					case <-exhausted:
						p.log.Info("buffer drained after end of stream")
						return nil
					default:
					}
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}
