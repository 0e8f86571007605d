package demux

import (
	"context"
	"time"

	"github.com/zsiec/cadence/media"
)

// Cue is one scripted demuxer event. Delay, if nonzero, is slept before the
// event is emitted, letting scripts mimic a real demuxer's arrival pacing.
type Cue struct {
	Stream   media.StreamType
	DTS      time.Duration
	Keyframe bool
	Data     []byte
	Delay    time.Duration
}

// Script replays a fixed cue list as demuxer output, then emits end-of-stream
// and closes its channel. It stands in for a real demultiplexer in the
// example and in pipeline tests.
type Script struct {
	cues []Cue
	out  chan Output
}

// Compile-time interface check.
var _ Source = (*Script)(nil)

// NewScript creates a source that will replay cues in order.
func NewScript(cues []Cue) *Script {
	return &Script{
		cues: cues,
		out:  make(chan Output, OutputBufferSize),
	}
}

// Packets returns the output channel. Closed after end-of-stream.
func (s *Script) Packets() <-chan Output {
	return s.out
}

// Run emits every cue, then end-of-stream, then closes the output channel.
// It returns early if ctx is cancelled.
func (s *Script) Run(ctx context.Context) error {
	defer close(s.out)
	for _, cue := range s.cues {
		if cue.Delay > 0 {
			select {
			case <-time.After(cue.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		msg := media.MessageAudioPacket
		if cue.Stream == media.Video {
			msg = media.MessageVideoPacket
		}
		pkt := &media.Packet{DTS: cue.DTS, Keyframe: cue.Keyframe, Data: cue.Data}
		select {
		case s.out <- Output{Message: msg, Packet: pkt}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case s.out <- Output{Message: media.MessageEndOfStream}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
