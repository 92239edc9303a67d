// FILE: devconsole/src/internal/console/control.go
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"devconsole/src/internal/core"
	"devconsole/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/valyala/fasthttp"
)

// controlServer exposes the console's runtime operations over HTTP:
//
//	GET    /status
//	GET    /handlers
//	POST   /handlers/<name>/enable
//	POST   /handlers/<name>/disable
//	GET    /file
//	POST   /file   {"path": "..."}
//	DELETE /file
type controlServer struct {
	console *Server
	host    string
	port    int64
	server  *fasthttp.Server
	logger  *log.Logger
	once    sync.Once
}

func newControlServer(console *Server, host string, port int64, logger *log.Logger) *controlServer {
	return &controlServer{
		console: console,
		host:    host,
		port:    port,
		logger:  logger,
	}
}

func (cs *controlServer) start(ctx context.Context) error {
	cs.server = &fasthttp.Server{
		Name:         fmt.Sprintf("devconsole/%s", version.Short()),
		Handler:      cs.requestHandler,
		Logger:       compat.NewFastHTTPAdapter(cs.logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", cs.host, cs.port)

	errChan := make(chan error, 1)
	go func() {
		if err := cs.server.ListenAndServe(addr); err != nil {
			errChan <- err
		}
	}()

	// Monitor context for shutdown signal
	go func() {
		<-ctx.Done()
		cs.stop()
	}()

	select {
	case err := <-errChan:
		return err
	case <-time.After(100 * time.Millisecond):
		cs.logger.Info("msg", "Control API started",
			"component", "console_control",
			"addr", addr)
		return nil
	}
}

func (cs *controlServer) stop() {
	if cs.server == nil {
		return
	}
	cs.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		cs.server.ShutdownWithContext(ctx)
	})
}

func (cs *controlServer) requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/status" && method == fasthttp.MethodGet:
		cs.writeJSON(ctx, fasthttp.StatusOK, cs.status())

	case path == "/handlers" && method == fasthttp.MethodGet:
		list, err := cs.console.ListHandlers()
		if err != nil {
			cs.writeError(ctx, err)
			return
		}
		cs.writeJSON(ctx, fasthttp.StatusOK, list)

	case strings.HasPrefix(path, "/handlers/") && method == fasthttp.MethodPost:
		cs.handleToggle(ctx, strings.TrimPrefix(path, "/handlers/"))

	case path == "/file":
		cs.handleFile(ctx, method)

	default:
		cs.writeJSON(ctx, fasthttp.StatusNotFound, map[string]any{
			"error": "Not Found",
		})
	}
}

func (cs *controlServer) handleToggle(ctx *fasthttp.RequestCtx, rest string) {
	name, action, ok := strings.Cut(rest, "/")
	if !ok || name == "" {
		cs.writeJSON(ctx, fasthttp.StatusNotFound, map[string]any{"error": "Not Found"})
		return
	}

	var err error
	switch action {
	case "enable":
		err = cs.console.EnableHandler(name)
	case "disable":
		err = cs.console.DisableHandler(name)
	default:
		cs.writeJSON(ctx, fasthttp.StatusNotFound, map[string]any{"error": "Not Found"})
		return
	}

	if err != nil {
		cs.writeError(ctx, err)
		return
	}
	cs.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"handler": name, "enabled": action == "enable"})
}

func (cs *controlServer) handleFile(ctx *fasthttp.RequestCtx, method string) {
	switch method {
	case fasthttp.MethodGet:
		path, err := cs.console.GetFilePath()
		if err != nil {
			cs.writeError(ctx, err)
			return
		}
		cs.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"path": path, "enabled": path != ""})

	case fasthttp.MethodPost:
		var req struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			cs.writeJSON(ctx, fasthttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
			return
		}
		if err := cs.console.ConfigureFile(req.Path); err != nil {
			cs.writeError(ctx, err)
			return
		}
		cs.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"path": req.Path, "enabled": true})

	case fasthttp.MethodDelete:
		if err := cs.console.DisableFile(); err != nil {
			cs.writeError(ctx, err)
			return
		}
		cs.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"enabled": false})

	default:
		cs.writeJSON(ctx, fasthttp.StatusMethodNotAllowed, map[string]any{"error": "Method Not Allowed"})
	}
}

func (cs *controlServer) status() map[string]any {
	return map[string]any{
		"service": "devconsole",
		"version": version.Short(),
		"console": cs.console.Stats(),
	}
}

func (cs *controlServer) writeError(ctx *fasthttp.RequestCtx, err error) {
	status := fasthttp.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrHandlerNotFound):
		status = fasthttp.StatusNotFound
	case errors.Is(err, core.ErrNoPathConfigured):
		status = fasthttp.StatusBadRequest
	case errors.Is(err, ErrNotRunning):
		status = fasthttp.StatusServiceUnavailable
	}
	cs.writeJSON(ctx, status, map[string]any{"error": err.Error()})
}

func (cs *controlServer) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		cs.logger.Debug("msg", "Failed to write control response",
			"component", "console_control",
			"error", err)
	}
}
