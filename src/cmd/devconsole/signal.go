// FILE: devconsole/src/cmd/devconsole/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/log"
)

// signalHandler turns OS signals into shutdown and reload requests
type signalHandler struct {
	onReload func()
	logger   *log.Logger
	sigChan  chan os.Signal
}

func newSignalHandler(onReload func(), logger *log.Logger) *signalHandler {
	sh := &signalHandler{
		onReload: onReload,
		logger:   logger,
		sigChan:  make(chan os.Signal, 1),
	}
	signal.Notify(sh.sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	return sh
}

// wait returns the first termination signal, or nil when ctx ends first.
// SIGHUP runs onReload in the background and keeps waiting.
func (sh *signalHandler) wait(ctx context.Context) os.Signal {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sh.sigChan:
			if sig != syscall.SIGHUP {
				return sig
			}
			sh.logger.Info("msg", "Reload signal received", "signal", sig)
			go sh.onReload()
		}
	}
}

func (sh *signalHandler) stop() {
	signal.Stop(sh.sigChan)
}
