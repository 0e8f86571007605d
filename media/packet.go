// Package media defines the elementary-stream data units that flow through
// the cadence core, from demuxer hand-off through buffering to sink delivery.
package media

import "time"

// StreamType identifies which elementary stream a packet belongs to. The set
// is fixed: every per-stream table in the core is an array indexed by it.
type StreamType int

const (
	Audio StreamType = iota
	Video

	// StreamTypeCount sizes per-stream arrays.
	StreamTypeCount
)

// String returns the stream name used in logs.
func (s StreamType) String() string {
	switch s {
	case Audio:
		return "audio"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// Valid reports whether s names one of the two real streams.
func (s StreamType) Valid() bool {
	return s == Audio || s == Video
}

// Packet is a single elementary-stream unit produced by the demuxer and
// consumed exactly once by a sink. It owns its payload; ownership moves from
// the buffer to the sink on delivery and the packet is never shared after.
//
// DTS is the decode timestamp, the sole ordering key in the core. Keyframe
// marks a unit decodable without reference to earlier packets; audio codecs
// set it on every packet.
type Packet struct {
	DTS      time.Duration
	Keyframe bool
	Data     []byte
}

// Message is the kind of event a demuxer delivers through its output
// callback: a packet for one of the streams, or an end-of-stream marker.
type Message int

const (
	MessageAudioPacket Message = iota
	MessageVideoPacket
	MessageEndOfStream
)

// String returns the message name used in logs.
func (m Message) String() string {
	switch m {
	case MessageAudioPacket:
		return "audio-packet"
	case MessageVideoPacket:
		return "video-packet"
	case MessageEndOfStream:
		return "end-of-stream"
	default:
		return "unknown"
	}
}

// Stream maps a packet message to its stream tag. The second return is false
// for non-packet messages.
func (m Message) Stream() (StreamType, bool) {
	switch m {
	case MessageAudioPacket:
		return Audio, true
	case MessageVideoPacket:
		return Video, true
	default:
		return 0, false
	}
}
