package presentation

import "time"

// LogCapacity is the number of alert entries kept for display.
const LogCapacity = 8

// LogEntry is one line of the alert log.
type LogEntry struct {
	Message string    `json:"message"`
	Color   string    `json:"color"`
	Status  string    `json:"status"`
	Angle   float64   `json:"angle"`
	At      time.Time `json:"at"`
}

// LogBuffer is a fixed-capacity ring. Push adds at the front; once full, the
// oldest entry is evicted. Not safe for concurrent use; the owning Session
// serializes access.
type LogBuffer struct {
	buf  []LogEntry
	head int // index of the newest entry
	size int
}

// NewLogBuffer returns an empty buffer holding at most capacity entries.
// A non-positive capacity falls back to LogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	return &LogBuffer{buf: make([]LogEntry, capacity), head: -1}
}

// Push inserts e as the newest entry.
func (b *LogBuffer) Push(e LogEntry) {
	b.head = (b.head + 1) % len(b.buf)
	b.buf[b.head] = e
	if b.size < len(b.buf) {
		b.size++
	}
}

// Len returns the number of stored entries.
func (b *LogBuffer) Len() int { return b.size }

// Cap returns the buffer capacity.
func (b *LogBuffer) Cap() int { return len(b.buf) }

// Entries returns a copy of the stored entries, most recent first.
func (b *LogBuffer) Entries() []LogEntry {
	out := make([]LogEntry, b.size)
	for i := 0; i < b.size; i++ {
		idx := (b.head - i + len(b.buf)) % len(b.buf)
		out[i] = b.buf[idx]
	}
	return out
}
