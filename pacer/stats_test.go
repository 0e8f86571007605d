package pacer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zsiec/cadence/media"
)

func TestDeliveryStatsCounters(t *testing.T) {
	t.Parallel()
	s := NewDeliveryStats()

	s.RecordArrival(media.Audio)
	s.RecordArrival(media.Audio)
	s.RecordArrival(media.Video)
	s.RecordDelivered(media.Audio, 1500*time.Millisecond)
	s.RecordDropped(media.Video)
	s.RecordSeekStarted()
	s.RecordSeekStarted()
	s.RecordSeekCompleted(2 * time.Second)

	snap := s.Snapshot()
	require.Equal(t, int64(2), snap.Audio.Buffered)
	require.Equal(t, int64(1), snap.Audio.Delivered)
	require.Equal(t, 1.5, snap.Audio.LastDeliveredSec)
	require.Equal(t, int64(1), snap.Video.Buffered)
	require.Equal(t, int64(1), snap.Video.Dropped)
	require.Equal(t, int64(2), snap.SeeksStarted)
	require.Equal(t, int64(1), snap.SeeksCompleted)
	require.Equal(t, 2.0, snap.LastSeekEndSec)
}

func TestSnapshotSerializes(t *testing.T) {
	t.Parallel()
	s := NewDeliveryStats()
	s.RecordDelivered(media.Video, time.Second)

	out, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	require.Contains(t, string(out), `"lastDeliveredSec":1`)
}

func TestManagerRecordsThroughInstalledStats(t *testing.T) {
	t.Parallel()
	m := NewManager(nil)
	stats := NewDeliveryStats()
	m.SetStats(stats)
	video := &fakeSink{}
	m.AttachSink(media.Video, video)

	m.PrepareForSeek(sec(2))
	sendVideo(m, sec(2), true)
	sendVideo(m, sec(3), false)
	m.Update(sec(2))

	snap := stats.Snapshot()
	require.Equal(t, int64(2), snap.Video.Buffered)
	require.Equal(t, int64(1), snap.SeeksStarted)
	require.Equal(t, int64(1), snap.SeeksCompleted)
	require.Equal(t, 2.0, snap.LastSeekEndSec)
	require.Equal(t, int64(1), snap.Video.Delivered)
}
