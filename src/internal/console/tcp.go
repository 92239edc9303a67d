// FILE: devconsole/src/internal/console/tcp.go
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"devconsole/src/internal/core"
	"devconsole/src/internal/wire"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

const maxClientBufferSize = 4 * wire.MaxFrameSize

// Accepts producer links and turns their frames into console calls
type tcpServer struct {
	gnet.BuiltinEventEngine
	console *Server
	host    string
	port    int64
	logger  *log.Logger

	clients map[gnet.Conn]*tcpClient
	mu      sync.RWMutex

	engine   *gnet.Engine
	engineMu sync.Mutex
	wg       sync.WaitGroup

	// Statistics
	activeConns   atomic.Int64
	invalidFrames atomic.Uint64
}

// Represents a linked producer
type tcpClient struct {
	buffer        bytes.Buffer
	authenticated bool
	node          string
	linkedAt      time.Time
}

func newTCPServer(console *Server, host string, port int64, logger *log.Logger) *tcpServer {
	return &tcpServer{
		console: console,
		host:    host,
		port:    port,
		logger:  logger,
		clients: make(map[gnet.Conn]*tcpClient),
	}
}

func (s *tcpServer) start() error {
	addr := fmt.Sprintf("tcp://%s:%d", s.host, s.port)
	gnetLogger := compat.NewGnetAdapter(s.logger)

	// No SO_REUSEPORT: a second console on the same port must fail to bind
	errChan := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := gnet.Run(s, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
		)
		if err != nil {
			s.logger.Error("msg", "Console listener failed",
				"component", "console_tcp",
				"port", s.port,
				"error", err)
		}
		errChan <- err
	}()

	// Wait briefly for server to start or fail
	select {
	case err := <-errChan:
		s.wg.Wait()
		if err == nil {
			err = fmt.Errorf("listener on port %d exited", s.port)
		}
		return err
	case <-time.After(100 * time.Millisecond):
		s.logger.Debug("msg", "Console listener started",
			"component", "console_tcp",
			"port", s.port)
		return nil
	}
}

func (s *tcpServer) stop() {
	s.engineMu.Lock()
	engine := s.engine
	s.engineMu.Unlock()

	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		(*engine).Stop(ctx)
	}

	s.wg.Wait()
}

func (s *tcpServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.engineMu.Lock()
	s.engine = &eng
	s.engineMu.Unlock()
	return gnet.None
}

func (s *tcpServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	s.mu.Lock()
	s.clients[c] = &tcpClient{}
	s.mu.Unlock()

	newCount := s.activeConns.Add(1)
	s.logger.Debug("msg", "Connection opened",
		"component", "console_tcp",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount)
	return nil, gnet.None
}

func (s *tcpServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	client := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	newCount := s.activeConns.Add(-1)
	if client != nil && client.authenticated {
		s.logger.Info("msg", "Producer unlinked",
			"component", "console_tcp",
			"node", client.node,
			"duration", time.Since(client.linkedAt),
			"active_connections", newCount,
			"error", err)
	}
	return gnet.None
}

func (s *tcpServer) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.RLock()
	client, exists := s.clients[c]
	s.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.logger.Error("msg", "Error reading from connection",
			"component", "console_tcp",
			"error", err)
		return gnet.Close
	}

	if client.buffer.Len()+len(data) > maxClientBufferSize {
		s.logger.Warn("msg", "Client buffer limit exceeded, closing connection",
			"component", "console_tcp",
			"remote_addr", c.RemoteAddr().String(),
			"node", client.node,
			"buffer_size", client.buffer.Len(),
			"incoming_size", len(data))
		s.invalidFrames.Add(1)
		return gnet.Close
	}
	client.buffer.Write(data)

	for {
		line, err := client.buffer.ReadBytes('\n')
		if err != nil {
			// Keep the partial line for the next read
			client.buffer.Write(line)
			break
		}

		f, err := wire.Decode(line)
		if err != nil {
			s.invalidFrames.Add(1)
			s.logger.Debug("msg", "Invalid frame",
				"component", "console_tcp",
				"remote_addr", c.RemoteAddr().String(),
				"error", err)
			continue
		}

		if action := s.handleFrame(c, client, f); action != gnet.None {
			return action
		}
	}

	return gnet.None
}

func (s *tcpServer) handleFrame(c gnet.Conn, client *tcpClient, f wire.Frame) gnet.Action {
	if !client.authenticated {
		return s.handshake(c, client, f)
	}

	switch f.Type {
	case wire.FrameEntry:
		if f.Entry == nil {
			s.invalidFrames.Add(1)
			return gnet.None
		}
		entry := *f.Entry
		if entry.Origin == "" {
			entry.Origin = client.node
		}
		if entry.Time.IsZero() {
			entry.Time = core.Now()
		}
		s.console.Receive(entry)

	case wire.FrameRequest:
		// Runtime operations wait on the dispatch loop; replies go out asynchronously
		go s.reply(c, f)

	case wire.FrameBye:
		s.logger.Debug("msg", "Producer said bye",
			"component", "console_tcp",
			"node", client.node)
		return gnet.Close

	default:
		s.invalidFrames.Add(1)
	}

	return gnet.None
}

func (s *tcpServer) handshake(c gnet.Conn, client *tcpClient, f wire.Frame) gnet.Action {
	if f.Type != wire.FrameHello || f.Node == "" {
		s.invalidFrames.Add(1)
		s.write(c, wire.Frame{Type: wire.FrameReject, Error: "hello expected"})
		return gnet.Close
	}

	if !wire.Verify(s.console.cfg.Cookie, f.Node, f.MAC) {
		s.logger.Warn("msg", "Producer rejected, cookie mismatch",
			"component", "console_tcp",
			"node", f.Node,
			"remote_addr", c.RemoteAddr().String())
		s.write(c, wire.Frame{Type: wire.FrameReject, Error: "cookie mismatch"})
		return gnet.Close
	}

	s.mu.Lock()
	client.authenticated = true
	client.node = f.Node
	client.linkedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("msg", "Producer linked",
		"component", "console_tcp",
		"node", f.Node,
		"remote_addr", c.RemoteAddr().String())

	s.write(c, wire.Frame{Type: wire.FrameWelcome, Node: s.console.Name()})
	return gnet.None
}

func (s *tcpServer) reply(c gnet.Conn, req wire.Frame) {
	reply := wire.Frame{Type: wire.FrameReply, ID: req.ID}

	result, err := s.console.handleRequest(req.Op, req.Arg)
	if err != nil {
		reply.Code = wire.ErrorCode(err)
		reply.Error = err.Error()
	} else if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			reply.Code = wire.CodeIO
			reply.Error = err.Error()
		} else {
			reply.Result = data
		}
	}

	s.write(c, reply)
}

func (s *tcpServer) write(c gnet.Conn, f wire.Frame) {
	data, err := wire.Encode(f)
	if err != nil {
		s.logger.Error("msg", "Failed to encode frame",
			"component", "console_tcp",
			"type", f.Type,
			"error", err)
		return
	}
	c.AsyncWrite(data, nil)
}
