package python

import (
	"bytes"
	"sync"
	"unicode/utf8"
)

// TruncationMarker is appended to a stream that was cut at the output limit.
const TruncationMarker = "\n... (output truncated)"

// Truncate keeps the first max characters of s. The second return value
// reports whether anything was dropped, in which case TruncationMarker is appended.
func Truncate(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	i := 0
	for n := 0; n < max; n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i] + TruncationMarker, true
}

// cappedBuffer keeps a bounded prefix of everything written to it and counts
// the bytes it discards. Writes never fail, so a chatty child is never
// blocked or killed by a full pipe.
type cappedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	limit   int
	dropped int64
}

// newCappedBuffer sizes the buffer so that it always holds more than
// maxChars characters once it is full, whatever the UTF-8 encoding width.
func newCappedBuffer(maxChars int) *cappedBuffer {
	return &cappedBuffer{limit: (maxChars + 1) * utf8.UTFMax}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	if room := b.limit - b.buf.Len(); room < len(p) {
		if room < 0 {
			room = 0
		}
		b.dropped += int64(len(p) - room)
		p = p[:room]
	}
	b.buf.Write(p)
	return n, nil
}

// text returns the captured prefix limited to maxChars characters.
func (b *cappedBuffer) text(maxChars int) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, cut := Truncate(b.buf.String(), maxChars)
	if !cut && b.dropped > 0 {
		s += TruncationMarker
		cut = true
	}
	return s, cut
}
