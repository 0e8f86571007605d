// Package buffer provides the ordered packet buffer: a priority structure
// holding (stream, packet) pairs sorted by ascending decode timestamp. It
// decouples two independently paced demuxer outputs from timestamp-ordered
// delivery to sinks.
//
// The buffer does no locking of its own. The pacer owns it and guards every
// access with the same critical section that covers the per-stream horizons
// and seek flags.
package buffer

import (
	"container/heap"

	"github.com/zsiec/cadence/media"
)

// Entry is one buffered unit: a packet together with the stream it belongs
// to. The buffer owns the packet from Push until Take or Clear.
type Entry struct {
	Stream media.StreamType
	Packet *media.Packet
}

// Buffer is a min-heap of entries keyed by packet DTS. Entries with equal
// DTS come out in insertion order. The zero value is ready to use.
type Buffer struct {
	h   entryHeap
	seq uint64
}

// Push inserts an entry. O(log n).
func (b *Buffer) Push(stream media.StreamType, pkt *media.Packet) {
	b.seq++
	heap.Push(&b.h, heapEntry{Entry: Entry{Stream: stream, Packet: pkt}, seq: b.seq})
}

// Peek returns the earliest-DTS entry without removing it, or false if the
// buffer is empty. The returned entry is a view; the buffer still owns the
// packet.
func (b *Buffer) Peek() (Entry, bool) {
	if len(b.h) == 0 {
		return Entry{}, false
	}
	return b.h[0].Entry, true
}

// Take removes and returns the earliest-DTS entry, transferring packet
// ownership to the caller. It is the only way to extract an entry, so heap
// order can never be observed mid-removal.
func (b *Buffer) Take() (Entry, bool) {
	if len(b.h) == 0 {
		return Entry{}, false
	}
	return heap.Pop(&b.h).(heapEntry).Entry, true
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	return len(b.h)
}

// Clear discards all entries. Used when a seek starts.
func (b *Buffer) Clear() {
	b.h = b.h[:0]
}

// heapEntry carries an insertion sequence number so equal-DTS entries keep
// FIFO order.
type heapEntry struct {
	Entry
	seq uint64
}

type entryHeap []heapEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Packet.DTS != h[j].Packet.DTS {
		return h[i].Packet.DTS < h[j].Packet.DTS
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(heapEntry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = heapEntry{}
	*h = old[:n-1]
	return e
}
