// FILE: devconsole/src/internal/connector/connector.go
package connector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"devconsole/src/internal/client"
	"devconsole/src/internal/core"
	"devconsole/src/internal/discovery"

	"github.com/lixenwraith/log"
)

// Dialer establishes links to console candidates
type Dialer interface {
	Dial(ctx context.Context, addr string) (client.Peer, error)
}

// Locator looks up the console's claim in the shared process registry
type Locator interface {
	Lookup(role string) (discovery.Record, error)
}

// Config controls discovery timing and candidates
type Config struct {
	// Retry interval after an unsuccessful round
	Interval time.Duration

	// Bound on a single link attempt
	DialTimeout time.Duration

	// Addresses tried when the registry has no live claim
	Candidates []string

	// Registry directory watched for new claims; empty disables the watch
	WatchDir string
}

// Connector runs discovery for one producer: it keeps trying to link to the
// console, hands the link to the buffer on success and restarts discovery
// as soon as the link dies.
type Connector struct {
	cfg     Config
	buffer  *client.Buffer
	dialer  Dialer
	locator Locator
	logger  *log.Logger

	trigger chan struct{}
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	watch   *registryWatch

	// Statistics
	totalAttempts atomic.Uint64
	totalConnects atomic.Uint64
	totalLost     atomic.Uint64
}

// New creates a connector; locator may be nil to use candidates only
func New(cfg Config, buffer *client.Buffer, dialer Dialer, locator Locator, logger *log.Logger) *Connector {
	if cfg.Interval <= 0 {
		cfg.Interval = core.DefaultDiscoveryInterval
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = core.DefaultDialTimeout
	}
	return &Connector{
		cfg:     cfg,
		buffer:  buffer,
		dialer:  dialer,
		locator: locator,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start runs the discovery loop with an immediate first attempt
func (c *Connector) Start(ctx context.Context) {
	if c.cfg.WatchDir != "" {
		watch, err := newRegistryWatch(c.cfg.WatchDir, c.Trigger, c.logger)
		if err != nil {
			c.logger.Warn("msg", "Registry watch unavailable, relying on interval",
				"component", "connector",
				"dir", c.cfg.WatchDir,
				"error", err)
		} else {
			c.watch = watch
		}
	}

	c.wg.Add(1)
	go c.loop(ctx)
}

// Trigger requests an attempt now; ignored while connected
func (c *Connector) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Stop ends discovery and closes the current link
func (c *Connector) Stop() {
	c.once.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
	if c.watch != nil {
		c.watch.close()
	}
}

// Stats returns discovery counters
func (c *Connector) Stats() map[string]any {
	return map[string]any{
		"total_attempts": c.totalAttempts.Load(),
		"total_connects": c.totalConnects.Load(),
		"total_lost":     c.totalLost.Load(),
	}
}

func (c *Connector) loop(ctx context.Context) {
	defer c.wg.Done()

	retry := time.NewTimer(0)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-retry.C:
		case <-c.trigger:
			retry.Stop()
		}

		peer := c.attempt(ctx)
		if peer == nil {
			retry.Reset(c.cfg.Interval)
			continue
		}

		// The retry timer is already stopped or fired; nothing else is in flight
		c.totalConnects.Add(1)
		c.buffer.Connect(peer)
		c.logger.Info("msg", "Console found",
			"component", "connector",
			"console", peer.Name())

		select {
		case <-peer.Done():
			c.totalLost.Add(1)
			c.buffer.Disconnect(peer)
			c.logger.Info("msg", "Console lost, restarting discovery",
				"component", "connector",
				"console", peer.Name())
			// Drop triggers that arrived while connected, then retry at once
			select {
			case <-c.trigger:
			default:
			}
			retry.Reset(0)

		case <-ctx.Done():
			c.release(peer)
			return
		case <-c.done:
			c.release(peer)
			return
		}
	}
}

func (c *Connector) release(peer client.Peer) {
	c.buffer.Disconnect(peer)
	if err := peer.Close(); err != nil {
		c.logger.Debug("msg", "Error closing console link",
			"component", "connector",
			"error", err)
	}
}

// attempt runs one discovery round. A registry claim is tried first, then the
// well-known candidates; the first link whose handshake succeeds wins.
func (c *Connector) attempt(ctx context.Context) client.Peer {
	c.totalAttempts.Add(1)

	addrs := make([]string, 0, len(c.cfg.Candidates)+1)
	if c.locator != nil {
		if rec, err := c.locator.Lookup(core.ConsoleRole); err == nil {
			addrs = append(addrs, rec.Addr)
		}
	}
	for _, candidate := range c.cfg.Candidates {
		if len(addrs) > 0 && candidate == addrs[0] {
			continue
		}
		addrs = append(addrs, candidate)
	}

	for _, addr := range addrs {
		dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
		peer, err := c.dialer.Dial(dialCtx, addr)
		cancel()
		if err == nil {
			return peer
		}
		c.logger.Debug("msg", "Console not reachable",
			"component", "connector",
			"addr", addr,
			"error", err)
	}

	return nil
}
