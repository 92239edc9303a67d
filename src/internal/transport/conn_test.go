// FILE: devconsole/src/internal/transport/conn_test.go
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"devconsole/src/internal/core"
	"devconsole/src/internal/wire"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConsole speaks the console side of the link protocol
type fakeConsole struct {
	t      *testing.T
	ln     net.Listener
	node   string
	cookie string

	mu     sync.Mutex
	frames []wire.Frame
	conns  []net.Conn
}

func newFakeConsole(t *testing.T, node, cookie string) *fakeConsole {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	fc := &fakeConsole{t: t, ln: ln, node: node, cookie: cookie}
	t.Cleanup(fc.close)
	go fc.serve()
	return fc
}

func (fc *fakeConsole) addr() string {
	return fc.ln.Addr().String()
}

func (fc *fakeConsole) close() {
	fc.ln.Close()
	fc.mu.Lock()
	for _, c := range fc.conns {
		c.Close()
	}
	fc.mu.Unlock()
}

func (fc *fakeConsole) dropConnections() {
	fc.mu.Lock()
	for _, c := range fc.conns {
		c.Close()
	}
	fc.conns = nil
	fc.mu.Unlock()
}

func (fc *fakeConsole) received() []wire.Frame {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]wire.Frame(nil), fc.frames...)
}

func (fc *fakeConsole) serve() {
	for {
		conn, err := fc.ln.Accept()
		if err != nil {
			return
		}
		fc.mu.Lock()
		fc.conns = append(fc.conns, conn)
		fc.mu.Unlock()
		go fc.handle(conn)
	}
}

func (fc *fakeConsole) handle(conn net.Conn) {
	r := bufio.NewReader(conn)
	send := func(f wire.Frame) {
		data, _ := wire.Encode(f)
		conn.Write(data)
	}

	line, err := r.ReadBytes('\n')
	if err != nil {
		return
	}
	hello, err := wire.Decode(line)
	if err != nil || hello.Type != wire.FrameHello {
		return
	}
	if !wire.Verify(fc.cookie, hello.Node, hello.MAC) {
		send(wire.Frame{Type: wire.FrameReject, Error: "bad cookie"})
		conn.Close()
		return
	}
	send(wire.Frame{Type: wire.FrameWelcome, Node: fc.node})

	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		f, err := wire.Decode(line)
		if err != nil {
			continue
		}
		fc.mu.Lock()
		fc.frames = append(fc.frames, f)
		fc.mu.Unlock()

		if f.Type == wire.FrameRequest {
			switch f.Op {
			case wire.OpFilePath:
				result, _ := json.Marshal("/tmp/dev.log")
				send(wire.Frame{Type: wire.FrameReply, ID: f.ID, Result: result})
			case wire.OpEnableHandler:
				send(wire.Frame{Type: wire.FrameReply, ID: f.ID, Code: wire.CodeNotFound, Error: "handler not found: " + f.Arg})
			}
		}
	}
}

func dialTest(t *testing.T, addr, cookie string) (*Conn, error) {
	t.Helper()
	cfg := DefaultConfig("client@test")
	cfg.Cookie = cookie
	cfg.DialTimeout = time.Second
	return Dial(context.Background(), addr, cfg, log.NewLogger())
}

func TestDial_Handshake(t *testing.T) {
	fc := newFakeConsole(t, "console@test", "secret")

	c, err := dialTest(t, fc.addr(), "secret")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "console@test", c.Name())
	assert.Equal(t, fc.addr(), c.Addr())
}

func TestDial_Rejected(t *testing.T) {
	fc := newFakeConsole(t, "console@test", "secret")

	_, err := dialTest(t, fc.addr(), "wrong")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestDial_NotConsole(t *testing.T) {
	fc := newFakeConsole(t, "client@other", "")

	_, err := dialTest(t, fc.addr(), "")
	assert.ErrorIs(t, err, ErrNotConsole)
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = dialTest(t, addr, "")
	assert.Error(t, err)
}

func TestReceive_PreservesOrder(t *testing.T) {
	fc := newFakeConsole(t, "console@test", "")
	c, err := dialTest(t, fc.addr(), "")
	require.NoError(t, err)

	for _, msg := range []string{"1", "2", "3", "4", "5"} {
		c.Receive(core.NewEntry("client@test", core.LevelInfo, msg))
	}
	require.NoError(t, c.Close())

	require.Eventually(t, func() bool {
		return len(fc.received()) == 6
	}, 2*time.Second, 10*time.Millisecond)

	frames := fc.received()
	for i, msg := range []string{"1", "2", "3", "4", "5"} {
		require.Equal(t, wire.FrameEntry, frames[i].Type)
		assert.Equal(t, msg, frames[i].Entry.Message)
	}
	assert.Equal(t, wire.FrameBye, frames[5].Type)
}

func TestCall(t *testing.T) {
	fc := newFakeConsole(t, "console@test", "")
	c, err := dialTest(t, fc.addr(), "")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	t.Run("Result", func(t *testing.T) {
		result, err := c.Call(ctx, wire.OpFilePath, "")
		require.NoError(t, err)
		var path string
		require.NoError(t, json.Unmarshal(result, &path))
		assert.Equal(t, "/tmp/dev.log", path)
	})

	t.Run("MappedError", func(t *testing.T) {
		_, err := c.Call(ctx, wire.OpEnableHandler, "missing")
		assert.ErrorIs(t, err, core.ErrHandlerNotFound)
	})

	t.Run("ContextDeadline", func(t *testing.T) {
		short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		// The fake never answers this op
		_, err := c.Call(short, wire.OpListHandlers, "")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDone_ClosesOnPeerLoss(t *testing.T) {
	fc := newFakeConsole(t, "console@test", "")
	c, err := dialTest(t, fc.addr(), "")
	require.NoError(t, err)

	// Wait until the fake has registered the connection
	require.Eventually(t, func() bool {
		fc.mu.Lock()
		defer fc.mu.Unlock()
		return len(fc.conns) == 1
	}, time.Second, 10*time.Millisecond)

	fc.dropConnections()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("link did not report peer loss")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = c.Call(ctx, wire.OpFilePath, "")
	assert.ErrorIs(t, err, core.ErrConsoleNotFound)

	// Receive after loss must not block or panic
	c.Receive(core.NewEntry("client@test", core.LevelInfo, "late"))
	assert.NoError(t, c.Close())
}
