package media

import "testing"

func TestMessageStream(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg    Message
		stream StreamType
		ok     bool
	}{
		{MessageAudioPacket, Audio, true},
		{MessageVideoPacket, Video, true},
		{MessageEndOfStream, 0, false},
		{Message(99), 0, false},
	}
	for _, c := range cases {
		stream, ok := c.msg.Stream()
		if ok != c.ok || (ok && stream != c.stream) {
			t.Errorf("%v.Stream() = (%v, %v), want (%v, %v)", c.msg, stream, ok, c.stream, c.ok)
		}
	}
}

func TestStreamTypeValid(t *testing.T) {
	t.Parallel()

	if !Audio.Valid() || !Video.Valid() {
		t.Error("Audio and Video should be valid")
	}
	if StreamTypeCount.Valid() || StreamType(-1).Valid() {
		t.Error("out-of-range stream types should be invalid")
	}
}
