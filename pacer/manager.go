// Package pacer synchronizes and meters delivery of demuxed elementary-stream
// packets to per-stream sinks. It owns the ordered packet buffer, tracks how
// far each stream has been buffered, coordinates cross-stream seek alignment,
// and paces delivery so no sink receives an unbounded lookahead.
package pacer

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/zsiec/cadence/buffer"
	"github.com/zsiec/cadence/media"
)

// Lookahead bounds how far ahead of the current playback position packets are
// handed to sinks. Every Update delivers all buffered packets in the range
// (last delivered; playback time + Lookahead], keeping downstream decode
// buffers from growing without bound.
const Lookahead = 4 * time.Second

// noHorizon is the buffered-time bound when no registered stream constrains
// it.
const noHorizon = time.Duration(math.MaxInt64)

// Sink consumes packets for one stream. Implemented by the per-stream stream
// manager; the pacer only needs this subset of it.
type Sink interface {
	// IsSeeking reports whether the sink's upstream source is still seeking.
	// Packets arriving for a seeking sink belong to the old position and are
	// dropped rather than buffered.
	IsSeeking() bool

	// Accept consumes ownership of a packet for decoding.
	Accept(pkt *media.Packet)

	// ResolveSegment maps a seek target to the containing segment, returning
	// its start time and duration. Seeks resume at segment starts.
	ResolveSegment(target time.Duration) (start, duration time.Duration)
}

// Manager buffers packets arriving from the demuxer and drains them to sinks
// in decode-timestamp order. One instance lives for a playback session.
//
// The buffer, per-stream horizons, and seek flags form a single shared
// region: the demuxer delivers packets from its own goroutine while the
// driver ticks Update from another, so every compound access runs under mu.
// The lock is never held across a sink call, except the final packet
// hand-off in appendPackets, which cannot re-enter the manager.
type Manager struct {
	log   *slog.Logger
	stats StatsRecorder

	mu              sync.Mutex
	packets         buffer.Buffer
	sinks           [media.StreamTypeCount]Sink
	horizons        [media.StreamTypeCount]time.Duration
	segmentResolved [media.StreamTypeCount]bool
	videoSegStart   time.Duration
	seeking         bool
	eos             bool
}

// NewManager creates a Manager with no sinks attached. If log is nil,
// slog.Default() is used.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:   log.With("component", "pacer"),
		stats: nopStats{},
	}
}

// SetStats installs a delivery-stats recorder. Pass nil to disable.
func (m *Manager) SetStats(s StatsRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		s = nopStats{}
	}
	m.stats = s
}

// AttachSink binds the sink consuming packets for the given stream,
// replacing any previous binding. Streams with no sink attached reject
// packets and do not constrain the buffered horizon.
func (m *Manager) AttachSink(stream media.StreamType, sink Sink) {
	if !stream.Valid() {
		m.log.Error("attach for invalid stream", "stream", stream)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks[stream] = sink
}

// HandleMessage is the demuxer's output callback. It may be invoked from any
// goroutine. Packet messages are buffered for paced delivery; end-of-stream
// is noted; anything else is logged and ignored.
func (m *Manager) HandleMessage(msg media.Message, pkt *media.Packet) {
	stream, ok := msg.Stream()
	if !ok {
		if msg == media.MessageEndOfStream {
			// Every packet has arrived, so nothing constrains the buffered
			// horizon anymore; the tail of the buffer may drain.
			m.mu.Lock()
			m.eos = true
			m.mu.Unlock()
			m.log.Debug("received end of stream")
		} else {
			m.log.Error("received unsupported demuxer message", "message", msg)
		}
		return
	}

	m.mu.Lock()
	sink := m.sinks[stream]
	stats := m.stats
	m.mu.Unlock()

	if sink == nil {
		m.log.Error("received packet for stream with no sink", "stream", stream)
		stats.RecordDropped(stream)
		return
	}
	// A seeking sink is still at its old position; its packets predate the
	// seek target and must not reach the buffer.
	if sink.IsSeeking() {
		return
	}

	m.mu.Lock()
	m.horizons[stream] = pkt.DTS
	m.packets.Push(stream, pkt)
	m.stats.RecordArrival(stream)
	m.mu.Unlock()
}

// PrepareForSeek flushes all buffered packets and arms the seek state
// machine. Sinks stop sending packets while their streams seek; delivery
// stays suspended until a keyframe at the new position completes the seek
// (see checkSeekEnd). Safe to call while a seek is already in progress.
func (m *Manager) PrepareForSeek(to time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.packets.Clear()
	m.seeking = true
	for s := range m.segmentResolved {
		m.segmentResolved[s] = false
	}
	m.videoSegStart = 0
	m.eos = false
	for s := range m.horizons {
		m.horizons[s] = 0
	}
	m.log.Debug("prepared for seek", "target", to)
	m.stats.RecordSeekStarted()
}

// OnSeekSegmentResolved records that a stream's demuxer has resolved its
// seek target. With a video sink attached, video drives the alignment: its
// segment start becomes the canonical resume point, and audio's segment
// lookup is re-aimed at that start so both streams resume on the video
// keyframe boundary. Without a video sink, audio resolves against its own
// target.
//
// ResolveSegment calls happen outside the lock; only the flag and resolved
// time updates are guarded.
func (m *Manager) OnSeekSegmentResolved(stream media.StreamType, target time.Duration) {
	m.mu.Lock()
	audio := m.sinks[media.Audio]
	video := m.sinks[media.Video]

	switch {
	case stream == media.Audio && audio != nil:
		m.segmentResolved[media.Audio] = true
	case stream == media.Video && video != nil:
		m.segmentResolved[media.Video] = true
	default:
		m.mu.Unlock()
		m.log.Error("seek segment resolved for stream with no sink", "stream", stream)
		return
	}
	m.mu.Unlock()

	if stream == media.Video {
		start, duration := video.ResolveSegment(target)
		m.mu.Lock()
		m.videoSegStart = start
		m.mu.Unlock()
		m.log.Debug("seek to video segment",
			"start", start,
			"end", start+duration)
	}

	m.mu.Lock()
	audioResolved := m.segmentResolved[media.Audio]
	videoResolved := video == nil || m.segmentResolved[media.Video]
	audioTarget := target
	if video != nil {
		audioTarget = m.videoSegStart
	}
	m.mu.Unlock()

	// Audio follows once video has pinned the resume point (or immediately
	// when there is no video sink).
	if audio != nil && audioResolved && videoResolved {
		start, duration := audio.ResolveSegment(audioTarget)
		m.log.Debug("seek to audio segment",
			"start", start,
			"end", start+duration)
	}
}

// Update is the periodic driver tick. It computes the buffered horizon, the
// timestamp below which every registered stream is guaranteed to have handed
// all its packets to the buffer, then either checks for seek completion or
// paces delivery up to that horizon. Returns whether packets remain
// buffered, so the caller knows to request more input or tick again.
func (m *Manager) Update(playback time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	buffered := noHorizon
	if !m.eos {
		for s := media.StreamType(0); s < media.StreamTypeCount; s++ {
			if m.sinks[s] != nil && m.horizons[s] < buffered {
				buffered = m.horizons[s]
			}
		}
	}

	if m.seeking {
		m.checkSeekEnd(buffered)
	}
	if !m.seeking {
		m.appendPackets(playback, buffered)
	}

	return m.packets.Len() > 0
}

// checkSeekEnd scans buffered packets in DTS order for the one that ends the
// seek: a video keyframe when a video sink is attached, otherwise any audio
// packet (audio packets are all keyframes). Packets before it belong to the
// pre-seek position and are discarded. The satisfying packet and everything
// after it stay buffered for normal delivery. If the scan runs past the
// buffered horizon first, the seek stays open until more packets arrive.
//
// Caller must hold mu and be seeking.
func (m *Manager) checkSeekEnd(buffered time.Duration) {
	if !m.seeking {
		panic("pacer: checkSeekEnd called while not seeking")
	}
	for {
		e, ok := m.packets.Peek()
		if !ok || e.Packet.DTS > buffered {
			return
		}
		var endsSeek bool
		if m.sinks[media.Video] != nil {
			endsSeek = e.Stream == media.Video && e.Packet.Keyframe
		} else if m.sinks[media.Audio] != nil {
			// Audio packets are self-contained; any one of them is a valid
			// resume point.
			endsSeek = e.Stream == media.Audio
		}
		if endsSeek {
			m.seeking = false
			m.log.Debug("seek finished",
				"dts", e.Packet.DTS,
				"stream", e.Stream,
				"buffered_packets", m.packets.Len())
			m.stats.RecordSeekCompleted(e.Packet.DTS)
			return
		}
		m.packets.Take()
	}
}

// appendPackets drains the buffer to sinks in DTS order, stopping at the
// lookahead window, the buffered horizon, or an empty buffer. The hand-off
// transfers packet ownership to the sink.
//
// Caller must hold mu and not be seeking.
func (m *Manager) appendPackets(playback, buffered time.Duration) {
	if m.seeking {
		panic("pacer: appendPackets called while seeking")
	}
	for {
		e, ok := m.packets.Peek()
		if !ok || e.Packet.DTS-playback >= Lookahead || e.Packet.DTS >= buffered {
			return
		}
		e, _ = m.packets.Take()
		if sink := m.sinks[e.Stream]; sink != nil {
			sink.Accept(e.Packet)
			m.stats.RecordDelivered(e.Stream, e.Packet.DTS)
		} else {
			// Unreachable while HandleMessage rejects sink-less streams;
			// drop rather than wedge the other stream.
			m.log.Error("buffered packet for stream with no sink", "stream", e.Stream)
			m.stats.RecordDropped(e.Stream)
		}
	}
}
