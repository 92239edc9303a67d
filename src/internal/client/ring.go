// FILE: devconsole/src/internal/client/ring.go
package client

import "devconsole/src/internal/core"

// ring is a fixed-capacity FIFO that overwrites its oldest entry when full
type ring struct {
	buf  []core.LogEntry
	head int // index of the oldest entry
	size int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]core.LogEntry, capacity)}
}

// push appends entry and reports whether the oldest entry was evicted
func (r *ring) push(entry core.LogEntry) bool {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = entry
		r.size++
		return false
	}
	r.buf[r.head] = entry
	r.head = (r.head + 1) % len(r.buf)
	return true
}

// each visits entries oldest first
func (r *ring) each(fn func(core.LogEntry)) {
	for i := 0; i < r.size; i++ {
		fn(r.buf[(r.head+i)%len(r.buf)])
	}
}

func (r *ring) reset() {
	clear(r.buf)
	r.head = 0
	r.size = 0
}

func (r *ring) len() int {
	return r.size
}
