package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

func SetLevel(l Level) {
	level.Store(int32(l))
}

func GetLevel() Level {
	return Level(level.Load())
}

// ParseLevel разбирает уровень из конфига ("debug", "info", "warn", "error").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

type fieldsKey struct{}

// WithFields добавляет пары ключ-значение, которые будут выводиться
// во всех записях с этим контекстом (например, request_id).
func WithFields(ctx context.Context, kv ...any) context.Context {
	prev, _ := ctx.Value(fieldsKey{}).([]any)
	fields := make([]any, 0, len(prev)+len(kv))
	fields = append(fields, prev...)
	fields = append(fields, kv...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func Debug(ctx context.Context, msg string, kv ...any) {
	write(ctx, LevelDebug, msg, kv)
}

func Info(ctx context.Context, msg string, kv ...any) {
	write(ctx, LevelInfo, msg, kv)
}

func Warn(ctx context.Context, msg string, kv ...any) {
	write(ctx, LevelWarn, msg, kv)
}

// Error пишет сообщение и ошибку в формате "msg: err". err может быть nil.
func Error(ctx context.Context, err error, msg string, kv ...any) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	write(ctx, LevelError, msg, kv)
}

func write(ctx context.Context, l Level, msg string, kv []any) {
	if l < GetLevel() {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(l.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if ctx != nil {
		if fields, ok := ctx.Value(fieldsKey{}).([]any); ok {
			appendFields(&b, fields)
		}
	}
	appendFields(&b, kv)

	log.Print(b.String())
}

func appendFields(b *strings.Builder, kv []any) {
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fmt.Fprintf(b, " %s=<missing>", key)
			break
		}
		fmt.Fprintf(b, " %s=%v", key, kv[i+1])
	}
}
