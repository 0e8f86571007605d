package demux

import (
	"context"
	"testing"
	"time"

	"github.com/zsiec/cadence/media"
)

func TestScriptReplaysCuesThenEOS(t *testing.T) {
	t.Parallel()
	s := NewScript([]Cue{
		{Stream: media.Video, DTS: time.Second, Keyframe: true},
		{Stream: media.Audio, DTS: time.Second},
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	var got []Output
	for out := range s.Packets() {
		got = append(got, out)
	}

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("outputs: got %d, want 3", len(got))
	}
	if got[0].Message != media.MessageVideoPacket || !got[0].Packet.Keyframe {
		t.Errorf("first output should be a video keyframe, got %v", got[0].Message)
	}
	if got[1].Message != media.MessageAudioPacket || got[1].Packet.DTS != time.Second {
		t.Errorf("second output should be the audio packet, got %v", got[1].Message)
	}
	if got[2].Message != media.MessageEndOfStream {
		t.Errorf("last output should be end-of-stream, got %v", got[2].Message)
	}
	if got[2].Packet != nil {
		t.Error("end-of-stream should carry no packet")
	}
}

func TestScriptStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScript([]Cue{
		{Stream: media.Audio, DTS: time.Second, Delay: time.Minute},
	})

	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("Run: got %v, want context.Canceled", err)
	}
}
