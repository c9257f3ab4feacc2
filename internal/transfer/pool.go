// Buffer pooling adapted from the teacher's internal/util/buffers
// package (DESIGN.md): a sync.Pool of fixed-size byte slices, resized
// here to the transfer chunk size spec.md §4.4 names instead of the
// teacher's multipart-upload chunk size.
package transfer

import "sync"

// ChunkSize is the size of one streamed read/write per spec.md §4.4.
const ChunkSize = 64 * 1024

var bufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, ChunkSize)
		return &b
	},
}

func getBuffer() []byte {
	return *(bufferPool.Get().(*[]byte))
}

func putBuffer(buf []byte) {
	if cap(buf) != ChunkSize {
		return
	}
	buf = buf[:ChunkSize]
	bufferPool.Put(&buf)
}
