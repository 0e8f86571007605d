// Package demux defines the contract between a demultiplexer and the pacing
// core. The core never parses container data itself; it consumes demuxer
// output through the channel surface declared here. The package also ships a
// scripted in-memory source for examples and tests.
package demux

import "github.com/zsiec/cadence/media"

// OutputBufferSize is the channel depth between a source and the pipeline,
// sized to absorb producer bursts without coupling the two paces.
const OutputBufferSize = 64

// Output is one demuxer event: an elementary-stream packet or an
// end-of-stream marker. Packet is nil for non-packet messages.
type Output struct {
	Message media.Message
	Packet  *media.Packet
}

// Source is a demultiplexer as the pipeline consumes it. Implementations
// deliver events on the returned channel from their own goroutine and close
// it when no more output will follow.
type Source interface {
	Packets() <-chan Output
}
