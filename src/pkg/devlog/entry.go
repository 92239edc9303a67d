// FILE: devconsole/src/pkg/devlog/entry.go
package devlog

import (
	"context"

	"devconsole/src/internal/core"
)

type groupKey struct{}

type groupScope struct {
	depth int
	name  string
}

func scopeFrom(ctx context.Context) groupScope {
	if scope, ok := ctx.Value(groupKey{}).(groupScope); ok {
		return scope
	}
	return groupScope{}
}

// GroupDepth returns the nesting depth carried by ctx
func GroupDepth(ctx context.Context) int {
	return scopeFrom(ctx).depth
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.emit(context.Background(), core.LevelDebug, msg, keyvals) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.emit(context.Background(), core.LevelInfo, msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.emit(context.Background(), core.LevelWarn, msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...any) { l.emit(context.Background(), core.LevelError, msg, keyvals) }

func (l *Logger) DebugCtx(ctx context.Context, msg string, keyvals ...any) {
	l.emit(ctx, core.LevelDebug, msg, keyvals)
}

func (l *Logger) InfoCtx(ctx context.Context, msg string, keyvals ...any) {
	l.emit(ctx, core.LevelInfo, msg, keyvals)
}

func (l *Logger) WarnCtx(ctx context.Context, msg string, keyvals ...any) {
	l.emit(ctx, core.LevelWarn, msg, keyvals)
}

func (l *Logger) ErrorCtx(ctx context.Context, msg string, keyvals ...any) {
	l.emit(ctx, core.LevelError, msg, keyvals)
}

// DebugFn logs the result of fn; fn is not called while logging is disabled
func (l *Logger) DebugFn(fn func() string, keyvals ...any) { l.emitFn(core.LevelDebug, fn, keyvals) }
func (l *Logger) InfoFn(fn func() string, keyvals ...any)  { l.emitFn(core.LevelInfo, fn, keyvals) }
func (l *Logger) WarnFn(fn func() string, keyvals ...any)  { l.emitFn(core.LevelWarn, fn, keyvals) }
func (l *Logger) ErrorFn(fn func() string, keyvals ...any) { l.emitFn(core.LevelError, fn, keyvals) }

// Group brackets the entries logged by fn with start and end markers.
// Entries logged through the *Ctx variants with the passed context are indented one level deeper.
func (l *Logger) Group(ctx context.Context, name string, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	scope := scopeFrom(ctx)
	inner := context.WithValue(ctx, groupKey{}, groupScope{depth: scope.depth + 1, name: name})

	l.marker(core.MarkerGroupStart, scope.depth, name)
	defer l.marker(core.MarkerGroupEnd, scope.depth, name)
	fn(inner)
}

// Ping asks for a connectivity marker: the console shows "pong" when linked,
// local fallback output shows "pang" otherwise
func (l *Logger) Ping() {
	l.marker(core.MarkerPing, 0, "")
}

// HR draws a horizontal rule on the console
func (l *Logger) HR() {
	l.marker(core.MarkerHR, 0, "")
}

func (l *Logger) emit(ctx context.Context, level core.Level, msg string, keyvals []any) {
	if !l.buffer.Enabled() {
		return
	}
	entry := core.NewEntry(l.origin, level, msg, core.KV(keyvals...)...)
	scope := scopeFrom(ctx)
	entry.GroupDepth = scope.depth
	entry.GroupName = scope.name
	l.buffer.Send(entry)
}

func (l *Logger) emitFn(level core.Level, fn func() string, keyvals []any) {
	if !l.buffer.Enabled() {
		return
	}
	l.buffer.Send(core.NewEntry(l.origin, level, fn(), core.KV(keyvals...)...))
}

func (l *Logger) marker(marker core.Marker, depth int, name string) {
	if !l.buffer.Enabled() {
		return
	}
	l.buffer.Send(core.NewMarker(l.origin, marker, depth, name))
}
