package pacer

import (
	"sync"
	"time"

	"github.com/zsiec/cadence/media"
)

// StatsRecorder is the interface accepted by Manager for recording delivery
// telemetry. Callers that want metrics implement it or use DeliveryStats.
type StatsRecorder interface {
	RecordArrival(stream media.StreamType)
	RecordDelivered(stream media.StreamType, dts time.Duration)
	RecordDropped(stream media.StreamType)
	RecordSeekStarted()
	RecordSeekCompleted(dts time.Duration)
}

// Compile-time interface check.
var _ StatsRecorder = (*DeliveryStats)(nil)

// StreamDeliveryStats holds point-in-time per-stream delivery metrics,
// serialized as JSON in snapshots for diagnostics endpoints or overlays.
type StreamDeliveryStats struct {
	Buffered         int64   `json:"buffered"`
	Delivered        int64   `json:"delivered"`
	Dropped          int64   `json:"dropped"`
	LastDeliveredSec float64 `json:"lastDeliveredSec"`
}

// Snapshot is a point-in-time view of delivery activity across both streams.
type Snapshot struct {
	Audio          StreamDeliveryStats `json:"audio"`
	Video          StreamDeliveryStats `json:"video"`
	SeeksStarted   int64               `json:"seeksStarted"`
	SeeksCompleted int64               `json:"seeksCompleted"`
	LastSeekEndSec float64             `json:"lastSeekEndSec"`
}

// DeliveryStats accumulates pacing telemetry. Safe for concurrent use; the
// manager records arrivals from the demuxer goroutine and deliveries from
// the driver goroutine.
type DeliveryStats struct {
	mu             sync.Mutex
	streams        [media.StreamTypeCount]StreamDeliveryStats
	seeksStarted   int64
	seeksCompleted int64
	lastSeekEnd    time.Duration
}

// NewDeliveryStats creates an empty collector.
func NewDeliveryStats() *DeliveryStats {
	return &DeliveryStats{}
}

// RecordArrival counts a packet accepted into the buffer.
func (d *DeliveryStats) RecordArrival(stream media.StreamType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[stream].Buffered++
}

// RecordDelivered counts a packet handed to its sink.
func (d *DeliveryStats) RecordDelivered(stream media.StreamType, dts time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[stream].Delivered++
	d.streams[stream].LastDeliveredSec = dts.Seconds()
}

// RecordDropped counts a packet discarded without delivery.
func (d *DeliveryStats) RecordDropped(stream media.StreamType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[stream].Dropped++
}

// RecordSeekStarted counts a PrepareForSeek.
func (d *DeliveryStats) RecordSeekStarted() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seeksStarted++
}

// RecordSeekCompleted counts a seek finishing at the given resume DTS.
func (d *DeliveryStats) RecordSeekCompleted(dts time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seeksCompleted++
	d.lastSeekEnd = dts
}

// Snapshot returns a copy of the current counters.
func (d *DeliveryStats) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Audio:          d.streams[media.Audio],
		Video:          d.streams[media.Video],
		SeeksStarted:   d.seeksStarted,
		SeeksCompleted: d.seeksCompleted,
		LastSeekEndSec: d.lastSeekEnd.Seconds(),
	}
}

// nopStats is the recorder used when none is installed.
type nopStats struct{}

func (nopStats) RecordArrival(media.StreamType)                  {}
func (nopStats) RecordDelivered(media.StreamType, time.Duration) {}
func (nopStats) RecordDropped(media.StreamType)                  {}
func (nopStats) RecordSeekStarted()                              {}
func (nopStats) RecordSeekCompleted(time.Duration)               {}
