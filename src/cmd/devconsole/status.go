// FILE: devconsole/src/cmd/devconsole/status.go
package main

import (
	"context"
	"time"

	"devconsole/src/internal/console"
)

const statusInterval = 30 * time.Second

// Periodically logs console status
func statusReporter(ctx context.Context, server *console.Server) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logStatus(server.Stats())
		}
	}
}

func logStatus(stats map[string]any) {
	statusFields := []any{
		"msg", "Status report",
		"component", "status_reporter",
	}

	for _, key := range []string{"total_received", "total_dropped", "queue_length", "active_connections"} {
		if v, ok := stats[key]; ok {
			statusFields = append(statusFields, key, v)
		}
	}

	if reg, ok := stats["registry"].(map[string]any); ok {
		statusFields = append(statusFields,
			"handlers", reg["handlers"],
			"total_dispatched", reg["total_dispatched"],
			"total_failures", reg["total_failures"])
	}

	logger.Debug(statusFields...)
}
