// FILE: devconsole/src/internal/connector/dialer.go
package connector

import (
	"context"

	"devconsole/src/internal/client"
	"devconsole/src/internal/transport"

	"github.com/lixenwraith/log"
)

// TransportDialer links to consoles over TCP
type TransportDialer struct {
	Config transport.Config
	Logger *log.Logger
}

func (d TransportDialer) Dial(ctx context.Context, addr string) (client.Peer, error) {
	conn, err := transport.Dial(ctx, addr, d.Config, d.Logger)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
