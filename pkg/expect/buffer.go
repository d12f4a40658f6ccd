package expect

// Buffer holds the unconsumed output of a session.
//
// It never grows past its capacity. Append evicts the oldest bytes when the
// capacity would be exceeded, so callers that want a full buffer to be
// reported must limit their reads to Room().
type Buffer struct {
	data []byte
	max  int

	// end of the region already tested against the current case list
	// without a match
	scanned int
}

// NewBuffer creates an empty buffer holding at most max bytes
func NewBuffer(max int) *Buffer {
	if max < 1 {
		max = 1
	}
	return &Buffer{
		data: make([]byte, 0, max),
		max:  max,
	}
}

// Len returns the number of buffered bytes
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the buffer capacity (match_max)
func (b *Buffer) Cap() int { return b.max }

// Room returns how many bytes can be appended without eviction
func (b *Buffer) Room() int {
	if len(b.data) >= b.max {
		return 0
	}
	return b.max - len(b.data)
}

// Full reports whether the buffer reached its capacity
func (b *Buffer) Full() bool { return len(b.data) >= b.max }

// Bytes returns the buffered bytes. The slice is only valid until the next
// buffer mutation.
func (b *Buffer) Bytes() []byte { return b.data }

// Scanned returns the scan cursor
func (b *Buffer) Scanned() int { return b.scanned }

// MarkScanned moves the scan cursor forward to n
func (b *Buffer) MarkScanned(n int) {
	if n > len(b.data) {
		n = len(b.data)
	}
	if n > b.scanned {
		b.scanned = n
	}
}

// ResetScan forgets previous scans. A new case list must look at the whole
// buffer.
func (b *Buffer) ResetScan() { b.scanned = 0 }

// SetCap changes the capacity. With evict set the oldest bytes go at once,
// otherwise a shrunk buffer keeps them and stays Full until consumed.
func (b *Buffer) SetCap(max int, evict bool) {
	if max < 1 {
		max = 1
	}
	b.max = max
	if evict {
		b.evict()
	}
}

// Append adds p at the end of the buffer, dropping NUL bytes when
// removeNulls is set. It returns the number of bytes evicted from the front.
func (b *Buffer) Append(p []byte, removeNulls bool) int {
	if removeNulls {
		for _, c := range p {
			if c != 0 {
				b.data = append(b.data, c)
			}
		}
	} else {
		b.data = append(b.data, p...)
	}
	return b.evict()
}

// Consume removes the first n bytes. The scan cursor goes back to the new
// buffer start.
func (b *Buffer) Consume(n int) {
	if n > len(b.data) {
		n = len(b.data)
	}
	if n > 0 {
		b.data = append(b.data[:0], b.data[n:]...)
	}
	b.scanned = 0
}

func (b *Buffer) evict() int {
	over := len(b.data) - b.max
	if over <= 0 {
		return 0
	}
	b.data = append(b.data[:0], b.data[over:]...)
	b.scanned -= over
	if b.scanned < 0 {
		b.scanned = 0
	}
	return over
}
