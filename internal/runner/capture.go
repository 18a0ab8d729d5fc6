package runner

import "bytes"

// MaxCaptureBytes caps each captured stream.
const MaxCaptureBytes = 10 * 1024 * 1024

// boundedBuffer keeps the first limit bytes written to it and silently
// discards the rest. Write never fails so the draining copy loop keeps
// reading and the child never blocks on a full pipe.
type boundedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	switch {
	case room <= 0:
		if len(p) > 0 {
			b.truncated = true
		}
	case len(p) > room:
		b.buf.Write(p[:room])
		b.truncated = true
	default:
		b.buf.Write(p)
	}
	return len(p), nil
}

func (b *boundedBuffer) Bytes() []byte   { return b.buf.Bytes() }
func (b *boundedBuffer) Truncated() bool { return b.truncated }
