// Package logbuf keeps the most recent log entries in a fixed-size ring.
package logbuf

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrOutOfRange = errors.New("logbuf: index out of range")

type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  string
}

func (e Entry) String() string {
	s := fmt.Sprintf("%s %-5s %s", e.Time.Format("15:04:05.000"), e.Level, e.Message)
	if e.Fields != "" {
		s += " " + e.Fields
	}
	return s
}

// Buffer is a ring of the last capacity entries. Once full, each Append
// overwrites the oldest entry. Index 0 is always the oldest retained entry.
type Buffer struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	total    uint64
}

func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

func (b *Buffer) Append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.total%uint64(b.capacity)] = e
	b.total++
}

func (b *Buffer) Cap() int { return b.capacity }

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lenLocked()
}

// Total counts every entry ever appended, including overwritten ones.
func (b *Buffer) Total() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

func (b *Buffer) At(i int) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= b.lenLocked() {
		return Entry{}, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	return b.entries[b.physical(i)], nil
}

// Slice returns entries [from, to).
func (b *Buffer) Slice(from, to int) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := b.lenLocked()
	if from < 0 || to > n || from > to {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfRange, from, to, n)
	}
	return b.sliceLocked(from, to), nil
}

func (b *Buffer) Snapshot() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sliceLocked(0, b.lenLocked())
}

// Tail returns up to the n most recent entries, oldest first.
func (b *Buffer) Tail(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	size := b.lenLocked()
	if n > size {
		n = size
	}
	if n < 0 {
		n = 0
	}
	return b.sliceLocked(size-n, size)
}

func (b *Buffer) sliceLocked(from, to int) []Entry {
	out := make([]Entry, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, b.entries[b.physical(i)])
	}
	return out
}

func (b *Buffer) lenLocked() int {
	if b.total < uint64(b.capacity) {
		return int(b.total)
	}
	return b.capacity
}

func (b *Buffer) physical(i int) int {
	if b.total < uint64(b.capacity) {
		return i
	}
	return int((b.total + uint64(i)) % uint64(b.capacity))
}
