// FILE: devconsole/src/internal/client/buffer.go
package client

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Peer is a live link to the console
type Peer interface {
	// Name returns the console's node name
	Name() string

	// Receive hands an entry to the console without blocking
	Receive(entry core.LogEntry)

	// Done is closed when the console is lost
	Done() <-chan struct{}

	// Call performs a runtime operation on the console
	Call(ctx context.Context, op, arg string) (json.RawMessage, error)

	Close() error
}

// batchReceiver is implemented by peers that accept a backlog in one call
// without dropping entries that exceed their send queue.
type batchReceiver interface {
	ReceiveBatch(entries []core.LogEntry) int
}

// Config holds the producer-side buffering settings
type Config struct {
	Enabled  bool
	Fallback core.FallbackPolicy
	Capacity int
}

// Buffer routes a producer's entries to the console when one is linked and
// applies the fallback policy otherwise. It has two states, Disconnected and
// Connected(peer). Entries buffered while disconnected are flushed oldest
// first on connect, under the same lock that orders Send.
type Buffer struct {
	enabled atomic.Bool

	mu       sync.Mutex
	peer     Peer
	policy   core.FallbackPolicy
	pending  *ring
	logger   *log.Logger
	capacity int

	// Statistics
	totalForwarded atomic.Uint64
	totalBuffered  atomic.Uint64
	totalEvicted   atomic.Uint64
	totalLocal     atomic.Uint64
	totalSilenced  atomic.Uint64
	totalFlushed   atomic.Uint64
}

// New creates a disconnected buffer. The logger receives entries under the local_log policy.
func New(cfg Config, logger *log.Logger) *Buffer {
	if cfg.Capacity < 1 {
		cfg.Capacity = core.DefaultBufferSize
	}
	if cfg.Fallback == "" {
		cfg.Fallback = core.FallbackBuffer
	}

	b := &Buffer{
		policy:   cfg.Fallback,
		pending:  newRing(cfg.Capacity),
		logger:   logger,
		capacity: cfg.Capacity,
	}
	b.enabled.Store(cfg.Enabled)
	return b
}

// Enabled reports the global kill switch
func (b *Buffer) Enabled() bool {
	return b.enabled.Load()
}

// SetEnabled flips the global kill switch
func (b *Buffer) SetEnabled(enabled bool) {
	b.enabled.Store(enabled)
}

// SetPolicy changes the fallback policy; already buffered entries are kept
func (b *Buffer) SetPolicy(policy core.FallbackPolicy) {
	b.mu.Lock()
	b.policy = policy
	b.mu.Unlock()
}

// Send routes one entry. It returns false only when the kill switch is off;
// entries dropped by the silent policy still count as handled.
func (b *Buffer) Send(entry core.LogEntry) bool {
	if !b.enabled.Load() {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	peer := b.livePeer()
	if entry.Marker == core.MarkerPing {
		if peer != nil {
			entry.Message = core.PingConnected
		} else {
			entry.Message = core.PingDisconnected
		}
	}

	if peer != nil {
		peer.Receive(entry)
		b.totalForwarded.Add(1)
		return true
	}

	switch b.policy {
	case core.FallbackLocalLog:
		b.logLocal(entry)
		b.totalLocal.Add(1)
	case core.FallbackSilent:
		b.totalSilenced.Add(1)
	default:
		if b.pending.push(entry) {
			b.totalEvicted.Add(1)
		}
		b.totalBuffered.Add(1)
	}
	return true
}

// Connect moves the buffer to Connected(peer), flushing buffered entries oldest first
func (b *Buffer) Connect(peer Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	backlog := make([]core.LogEntry, 0, b.pending.len())
	b.pending.each(func(e core.LogEntry) {
		backlog = append(backlog, e)
	})
	b.pending.reset()

	flushed := len(backlog)
	if batch, ok := peer.(batchReceiver); ok {
		flushed = batch.ReceiveBatch(backlog)
	} else {
		for _, e := range backlog {
			peer.Receive(e)
		}
	}
	b.peer = peer
	b.totalFlushed.Add(uint64(flushed))

	b.logger.Debug("msg", "Connected to console",
		"component", "client_buffer",
		"console", peer.Name(),
		"flushed", flushed)
}

// Disconnect moves the buffer back to Disconnected if peer is the current peer
func (b *Buffer) Disconnect(peer Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.peer == nil || b.peer != peer {
		return
	}
	b.peer = nil

	b.logger.Debug("msg", "Disconnected from console",
		"component", "client_buffer",
		"console", peer.Name())
}

// livePeer returns the linked peer unless its link has already dropped.
// Connector may not have called Disconnect yet. Caller holds mu.
func (b *Buffer) livePeer() Peer {
	if b.peer == nil {
		return nil
	}
	select {
	case <-b.peer.Done():
		return nil
	default:
		return b.peer
	}
}

// Peer returns the linked console, or nil while disconnected
func (b *Buffer) Peer() Peer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peer
}

// Connected reports whether a console is linked
func (b *Buffer) Connected() bool {
	return b.Peer() != nil
}

// Pending returns a copy of the buffered entries, oldest first
func (b *Buffer) Pending() []core.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]core.LogEntry, 0, b.pending.len())
	b.pending.each(func(e core.LogEntry) {
		out = append(out, e)
	})
	return out
}

// Stats returns buffer counters
func (b *Buffer) Stats() map[string]any {
	b.mu.Lock()
	connected := b.peer != nil
	pending := b.pending.len()
	policy := b.policy
	b.mu.Unlock()

	return map[string]any{
		"enabled":         b.enabled.Load(),
		"connected":       connected,
		"policy":          string(policy),
		"capacity":        b.capacity,
		"pending":         pending,
		"total_forwarded": b.totalForwarded.Load(),
		"total_buffered":  b.totalBuffered.Load(),
		"total_evicted":   b.totalEvicted.Load(),
		"total_local":     b.totalLocal.Load(),
		"total_silenced":  b.totalSilenced.Load(),
		"total_flushed":   b.totalFlushed.Load(),
	}
}

// logLocal writes the entry to the ambient logger at the entry's own level
func (b *Buffer) logLocal(entry core.LogEntry) {
	args := make([]any, 0, 4+2*len(entry.Fields))
	args = append(args, "msg", entry.Message, "origin", entry.Origin)
	if entry.IsMarker() {
		args = append(args, "marker", string(entry.Marker))
	}
	if entry.GroupName != "" {
		args = append(args, "group", entry.GroupName)
	}
	for _, f := range entry.Fields {
		args = append(args, f.Key, f.Value)
	}

	switch entry.Level {
	case core.LevelDebug:
		b.logger.Debug(args...)
	case core.LevelWarn:
		b.logger.Warn(args...)
	case core.LevelError:
		b.logger.Error(args...)
	default:
		b.logger.Info(args...)
	}
}
