// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

var (
	mu     sync.RWMutex
	logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo).WithWriter(os.Stderr)
)

var levels = map[string]pterm.LogLevel{
	"trace": pterm.LogLevelTrace,
	"debug": pterm.LogLevelDebug,
	"info":  pterm.LogLevelInfo,
	"warn":  pterm.LogLevelWarn,
	"error": pterm.LogLevelError,
	"off":   pterm.LogLevelDisabled,
}

// Logger returns the process-wide structured logger. Output goes to stderr so
// that command output on stdout stays machine readable.
func Logger() *pterm.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLevel changes the minimum level by name (trace, debug, info, warn,
// error, off).
func SetLevel(name string) error {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}
	mu.Lock()
	logger = logger.WithLevel(lvl)
	mu.Unlock()
	return nil
}

// SetJSON switches between JSON lines and the colorful console format.
func SetJSON(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		logger = logger.WithFormatter(pterm.LogFormatterJSON)
	} else {
		logger = logger.WithFormatter(pterm.LogFormatterColorful)
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.WithWriter(w)
}

// Debug logs msg with key/value pairs at debug level. Values are masked.
func Debug(msg string, kv ...any) {
	l := Logger()
	l.Debug(Mask(msg), l.Args(maskArgs(kv)...))
}

// Info logs msg with key/value pairs at info level.
func Info(msg string, kv ...any) {
	l := Logger()
	l.Info(Mask(msg), l.Args(maskArgs(kv)...))
}

// Warn logs msg with key/value pairs at warn level.
func Warn(msg string, kv ...any) {
	l := Logger()
	l.Warn(Mask(msg), l.Args(maskArgs(kv)...))
}

// Error logs msg with key/value pairs at error level.
func Error(msg string, kv ...any) {
	l := Logger()
	l.Error(Mask(msg), l.Args(maskArgs(kv)...))
}

func maskArgs(kv []any) []any {
	out := make([]any, len(kv))
	for i, v := range kv {
		if i%2 == 1 {
			switch x := v.(type) {
			case string:
				v = Mask(x)
			case error:
				v = Mask(x.Error())
			}
		}
		out[i] = v
	}
	return out
}
