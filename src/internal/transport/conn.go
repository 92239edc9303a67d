// FILE: devconsole/src/internal/transport/conn.go
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"devconsole/src/internal/core"
	"devconsole/src/internal/wire"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
)

var (
	// ErrRejected is returned when the console refuses the handshake
	ErrRejected = errors.New("handshake rejected")

	// ErrNotConsole is returned when the remote end does not hold the console role
	ErrNotConsole = errors.New("remote is not a console")
)

// Config controls a console link
type Config struct {
	Node         string
	Cookie       string
	DialTimeout  time.Duration
	KeepAlive    time.Duration
	WriteTimeout time.Duration
	QueueSize    int
}

// DefaultConfig returns link settings for a client node on this host
func DefaultConfig(node string) Config {
	return Config{
		Node:         node,
		DialTimeout:  core.DefaultDialTimeout,
		KeepAlive:    30 * time.Second,
		WriteTimeout: 5 * time.Second,
		QueueSize:    core.DefaultBufferSize,
	}
}

// Conn is an established link from a producer to the console.
// Entries are written by a single writer goroutine; a reader goroutine
// correlates replies and closes Done when the link drops.
type Conn struct {
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader
	addr   string
	peer   string
	logger *log.Logger

	out       chan []byte
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	closing   atomic.Bool
	wg        sync.WaitGroup

	pendingMu sync.Mutex
	pending   map[string]chan wire.Frame

	// Statistics
	totalSent    atomic.Uint64
	totalDropped atomic.Uint64
	connectTime  time.Time
}

// Dial connects to addr and completes the handshake.
// The link is usable only if the remote end answers as a console.
func Dial(ctx context.Context, addr string, cfg Config, logger *log.Logger) (*Conn, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = core.DefaultBufferSize
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = core.DefaultDialTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok && cfg.KeepAlive > 0 {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(cfg.KeepAlive)
	}

	c := &Conn{
		cfg:         cfg,
		conn:        conn,
		reader:      bufio.NewReaderSize(conn, 64*1024),
		addr:        addr,
		logger:      logger,
		out:         make(chan []byte, cfg.QueueSize),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		pending:     make(map[string]chan wire.Frame),
		connectTime: time.Now(),
	}

	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}

	c.wg.Add(2)
	go c.writeLoop()
	go c.readLoop()

	logger.Debug("msg", "Console link established",
		"component", "transport",
		"addr", addr,
		"peer", c.peer,
		"local_addr", conn.LocalAddr())

	return c, nil
}

func (c *Conn) handshake() error {
	if err := c.conn.SetDeadline(time.Now().Add(c.cfg.DialTimeout)); err != nil {
		return fmt.Errorf("failed to set handshake deadline: %w", err)
	}

	hello, err := wire.Encode(wire.Frame{
		Type: wire.FrameHello,
		Node: c.cfg.Node,
		MAC:  wire.Sign(c.cfg.Cookie, c.cfg.Node),
	})
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(hello); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read handshake reply: %w", err)
	}
	f, err := wire.Decode(line)
	if err != nil {
		return err
	}

	switch f.Type {
	case wire.FrameWelcome:
	case wire.FrameReject:
		return fmt.Errorf("%w: %s", ErrRejected, f.Error)
	default:
		return fmt.Errorf("unexpected %s frame during handshake", f.Type)
	}

	if !strings.HasPrefix(f.Node, core.ConsoleRole+"@") {
		return fmt.Errorf("%w: %s", ErrNotConsole, f.Node)
	}
	c.peer = f.Node

	return c.conn.SetDeadline(time.Time{})
}

// Name returns the console's node name
func (c *Conn) Name() string {
	return c.peer
}

// Addr returns the dialed address
func (c *Conn) Addr() string {
	return c.addr
}

// Done is closed when the link is lost or closed
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Receive queues an entry for the console without blocking.
// Entries are dropped when the outbound queue is full or the link is closing.
func (c *Conn) Receive(entry core.LogEntry) {
	if c.closing.Load() {
		c.totalDropped.Add(1)
		return
	}

	data, err := wire.Encode(wire.EntryFrame(entry))
	if err != nil {
		c.totalDropped.Add(1)
		c.logger.Debug("msg", "Failed to encode entry",
			"component", "transport",
			"error", err)
		return
	}

	select {
	case c.out <- data:
	case <-c.done:
		c.totalDropped.Add(1)
	default:
		c.totalDropped.Add(1)
	}
}

// ReceiveBatch queues entries as a single outbound write and reports how many
// were queued. It waits for queue space, so a backlog larger than the queue is
// not dropped; it gives up only when the link is lost or closing.
func (c *Conn) ReceiveBatch(entries []core.LogEntry) int {
	if len(entries) == 0 {
		return 0
	}

	var batch []byte
	queued := 0
	for _, entry := range entries {
		data, err := wire.Encode(wire.EntryFrame(entry))
		if err != nil {
			c.totalDropped.Add(1)
			continue
		}
		batch = append(batch, data...)
		queued++
	}

	if c.closing.Load() {
		c.totalDropped.Add(uint64(queued))
		return 0
	}

	select {
	case c.out <- batch:
		return queued
	case <-c.done:
	case <-c.stop:
	}
	c.totalDropped.Add(uint64(queued))
	return 0
}

// Call performs a runtime operation on the console and returns its raw result.
// A lost link reports ErrConsoleNotFound.
func (c *Conn) Call(ctx context.Context, op, arg string) (json.RawMessage, error) {
	id := uuid.NewString()
	data, err := wire.Encode(wire.Frame{Type: wire.FrameRequest, ID: id, Op: op, Arg: arg})
	if err != nil {
		return nil, err
	}

	ch := make(chan wire.Frame, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	select {
	case c.out <- data:
	case <-c.done:
		return nil, core.ErrConsoleNotFound
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-ch:
		if err := wire.ReplyError(reply); err != nil {
			return nil, err
		}
		return reply.Result, nil
	case <-c.done:
		return nil, core.ErrConsoleNotFound
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close flushes queued entries, sends bye and closes the link
func (c *Conn) Close() error {
	c.closing.Store(true)
	c.stopOnce.Do(func() { close(c.stop) })

	select {
	case <-c.done:
	case <-time.After(c.cfg.WriteTimeout):
		c.shutdown(errors.New("close timeout"))
	}
	c.wg.Wait()
	return nil
}

// Stats returns link counters
func (c *Conn) Stats() map[string]any {
	return map[string]any{
		"addr":          c.addr,
		"peer":          c.peer,
		"total_sent":    c.totalSent.Load(),
		"total_dropped": c.totalDropped.Load(),
		"uptime":        time.Since(c.connectTime).Seconds(),
	}
}

func (c *Conn) writeLoop() {
	defer c.wg.Done()

	for {
		select {
		case data := <-c.out:
			if err := c.write(data); err != nil {
				c.shutdown(err)
				return
			}

		case <-c.stop:
			if err := c.drain(); err != nil {
				c.shutdown(err)
				return
			}
			if bye, err := wire.Encode(wire.Frame{Type: wire.FrameBye, Node: c.cfg.Node}); err == nil {
				c.write(bye)
			}
			c.shutdown(nil)
			return

		case <-c.done:
			return
		}
	}
}

// drain writes what was queued before Close
func (c *Conn) drain() error {
	for {
		select {
		case data := <-c.out:
			if err := c.write(data); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Conn) write(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	c.totalSent.Add(uint64(bytes.Count(data, []byte{'\n'})))
	return nil
}

func (c *Conn) readLoop() {
	defer c.wg.Done()

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			c.shutdown(err)
			return
		}

		f, err := wire.Decode(line)
		if err != nil {
			c.logger.Debug("msg", "Invalid frame from console",
				"component", "transport",
				"error", err)
			continue
		}

		if f.Type != wire.FrameReply {
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[f.ID]
		c.pendingMu.Unlock()
		if ok {
			ch <- f
		}
	}
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()

		if err != nil && !c.closing.Load() {
			c.logger.Warn("msg", "Lost connection to console",
				"component", "transport",
				"addr", c.addr,
				"peer", c.peer,
				"uptime", time.Since(c.connectTime),
				"error", err)
		} else {
			c.logger.Debug("msg", "Console link closed",
				"component", "transport",
				"addr", c.addr,
				"total_sent", c.totalSent.Load(),
				"total_dropped", c.totalDropped.Load())
		}
	})
}
