package protocol

// ByteRing is a circular byte buffer used on the host side to collect serial
// input before it is split into diagnostic lines. One slot stays free so a
// full ring can be told apart from an empty one.
type ByteRing struct {
	buf   []byte
	read  int
	write int
}

// NewByteRing creates a ring holding up to capacity-1 bytes.
func NewByteRing(capacity int) *ByteRing {
	if capacity < 2 {
		capacity = 2
	}
	return &ByteRing{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count written.
func (r *ByteRing) Write(data []byte) int {
	n := 0
	for _, b := range data {
		next := (r.write + 1) % len(r.buf)
		if next == r.read {
			break
		}
		r.buf[r.write] = b
		r.write = next
		n++
	}
	return n
}

// Read moves up to len(data) bytes out of the ring.
func (r *ByteRing) Read(data []byte) int {
	n := 0
	for n < len(data) && r.read != r.write {
		data[n] = r.buf[r.read]
		r.read = (r.read + 1) % len(r.buf)
		n++
	}
	return n
}

// Available returns the number of buffered bytes.
func (r *ByteRing) Available() int {
	if r.write >= r.read {
		return r.write - r.read
	}
	return len(r.buf) - r.read + r.write
}

// Free returns the number of bytes that can still be written.
func (r *ByteRing) Free() int {
	return len(r.buf) - r.Available() - 1
}

// IndexByte returns the offset of the first c in the buffered data, or -1.
func (r *ByteRing) IndexByte(c byte) int {
	for i, pos := 0, r.read; pos != r.write; i, pos = i+1, (pos+1)%len(r.buf) {
		if r.buf[pos] == c {
			return i
		}
	}
	return -1
}

// Pop drops n bytes from the front.
func (r *ByteRing) Pop(n int) {
	if avail := r.Available(); n > avail {
		n = avail
	}
	r.read = (r.read + n) % len(r.buf)
}

// IsEmpty reports whether nothing is buffered.
func (r *ByteRing) IsEmpty() bool {
	return r.read == r.write
}

// Reset discards all buffered bytes.
func (r *ByteRing) Reset() {
	r.read = 0
	r.write = 0
}

// LineSplitter turns the board's diagnostic byte stream into lines.
// CR is ignored, LF terminates a line. A line longer than the ring is
// emitted in pieces and counted in Truncated.
type LineSplitter struct {
	ring      *ByteRing
	max       int
	Truncated int
}

// NewLineSplitter creates a splitter that holds lines of up to maxLine bytes.
func NewLineSplitter(maxLine int) *LineSplitter {
	if maxLine < 1 {
		maxLine = 1
	}
	// Room for a full line plus its terminator.
	return &LineSplitter{ring: NewByteRing(maxLine + 2), max: maxLine}
}

// Feed consumes data and returns every line it completed.
func (s *LineSplitter) Feed(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		n := s.ring.Write(data)
		data = data[n:]
		lines = s.drain(lines)
		if s.ring.Available() > s.max {
			lines = append(lines, s.take(s.max))
			s.Truncated++
		}
	}
	return lines
}

func (s *LineSplitter) drain(lines []string) []string {
	for {
		i := s.ring.IndexByte('\n')
		if i < 0 {
			return lines
		}
		line := s.take(i)
		s.ring.Pop(1)
		lines = append(lines, line)
	}
}

func (s *LineSplitter) take(n int) string {
	buf := make([]byte, n)
	s.ring.Read(buf)
	out := buf[:0]
	for _, b := range buf {
		if b != '\r' {
			out = append(out, b)
		}
	}
	return string(out)
}
