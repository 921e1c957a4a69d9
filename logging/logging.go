// Package logging provides real-time leveled console output for the
// component runtime. Lifecycle events published to observers are THE record
// of what happened to the tree; this package is optional operator-facing
// output for monitoring the coordinator as it works.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
// This is for real-time monitoring only - the event stream is authoritative.
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	minLevel Level
	moniker  string
	action   string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithMoniker returns a new logger scoped to the given instance moniker.
func (l *Logger) WithMoniker(moniker string) *Logger {
	return &Logger{
		output:   l.output,
		minLevel: l.minLevel,
		moniker:  moniker,
		action:   l.action,
	}
}

// WithAction returns a new logger annotated with the given action kind.
func (l *Logger) WithAction(action string) *Logger {
	return &Logger{
		output:   l.output,
		minLevel: l.minLevel,
		moniker:  l.moniker,
		action:   action,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [moniker] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.action != "" {
		fieldStr = " action=" + l.action + fieldStr
	}

	var line string
	if l.moniker != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.moniker, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Coordinator convenience methods ---
// Called by the lifecycle coordinator at dispatch and completion points.

// ActionRegistered logs a fresh registration of an action.
func (l *Logger) ActionRegistered(action string, deduped bool) {
	l.Debug("action_registered", map[string]interface{}{
		"action":  action,
		"deduped": deduped,
	})
}

// ActionDispatched logs the spawning of a background workflow.
func (l *Logger) ActionDispatched(action string) {
	l.Debug("action_dispatched", map[string]interface{}{
		"action": action,
	})
}

// ActionFinished logs an action's terminal result.
func (l *Logger) ActionFinished(action string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"action":   action,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("action_failed", fields)
	} else {
		l.Info("action_finished", fields)
	}
}

// ChildDeleted logs the removal of a child from an instance's table.
func (l *Logger) ChildDeleted(child string) {
	l.Info("child_deleted", map[string]interface{}{
		"child": child,
	})
}

// InstanceStopped logs the stop of an instance's runtime environment.
func (l *Logger) InstanceStopped(duration time.Duration) {
	l.Info("instance_stopped", map[string]interface{}{
		"duration": duration.String(),
	})
}

// InstanceDestroyed logs the erasure of an instance's resources.
func (l *Logger) InstanceDestroyed(duration time.Duration) {
	l.Info("instance_destroyed", map[string]interface{}{
		"duration": duration.String(),
	})
}
