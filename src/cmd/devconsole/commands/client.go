// FILE: devconsole/src/cmd/devconsole/commands/client.go
package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"devconsole/src/internal/config"
	"devconsole/src/pkg/devlog"

	"github.com/lixenwraith/log"
)

const defaultConnectTimeout = 3 * time.Second

// clientOptions are the flags shared by commands that talk to a running console
type clientOptions struct {
	configFile string
	cluster    string
	timeout    time.Duration

	// load replaces configuration loading in tests
	load func() (*config.Config, error)
}

func newClientOptions(fs *flag.FlagSet, load func() (*config.Config, error)) *clientOptions {
	o := &clientOptions{load: load}
	fs.StringVar(&o.configFile, "config", "", "Config file path")
	fs.StringVar(&o.configFile, "c", "", "Config file path")
	fs.StringVar(&o.cluster, "cluster", "", "Cluster name (overrides config)")
	fs.DurationVar(&o.timeout, "timeout", defaultConnectTimeout, "How long to look for the console")
	return o
}

func (o *clientOptions) loadConfig() (*config.Config, error) {
	if o.load != nil {
		return o.load()
	}
	if o.configFile != "" {
		os.Setenv("DEVCONSOLE_CONFIG_FILE", o.configFile)
	}
	return config.Load(nil)
}

// connect links a short-lived producer to the console. The returned logger must be closed.
func (o *clientOptions) connect() (*devlog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Cluster = coalesceString(o.cluster, cfg.Cluster)

	l, err := devlog.New(cfg, log.NewLogger())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	l.Start(ctx)
	if err := l.WaitConnected(ctx); err != nil {
		l.Close()
		return nil, fmt.Errorf("%w for cluster %q", err, cfg.Cluster)
	}
	return l, nil
}
