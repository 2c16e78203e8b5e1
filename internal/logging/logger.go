package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// LogFormatter writes one line per entry:
// [2025-01-02 15:04:05] [info ] [tester.go:96] message provider=gemini
type LogFormatter struct{}

// logFieldOrder puts the common fields first; other fields follow sorted
var logFieldOrder = []string{"category", "provider", "strategy", "model", "status", "success", "error"}

func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	levelStr := fmt.Sprintf("%-5s", level)

	fieldsStr := formatFields(entry.Data)

	var formatted string
	if entry.Caller != nil {
		formatted = fmt.Sprintf("[%s] [%s] [%s:%d] %s%s\n", timestamp, levelStr, filepath.Base(entry.Caller.File), entry.Caller.Line, message, fieldsStr)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s%s\n", timestamp, levelStr, message, fieldsStr)
	}
	buffer.WriteString(formatted)

	return buffer.Bytes(), nil
}

func formatFields(data log.Fields) string {
	if len(data) == 0 {
		return ""
	}

	seen := make(map[string]bool, len(logFieldOrder))
	var fields []string
	for _, k := range logFieldOrder {
		seen[k] = true
		if v, ok := data[k]; ok {
			fields = append(fields, fmt.Sprintf("%s=%v", k, v))
		}
	}

	var rest []string
	for k := range data {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fields = append(fields, fmt.Sprintf("%s=%v", k, data[k]))
	}

	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ")
}

// Options selects the log level and destination
type Options struct {
	Level string
	// File enables a rotating log file instead of Output
	File   string
	Output io.Writer
}

// Setup configures the global logrus logger. It can be called again to
// switch outputs.
func Setup(opts Options) error {
	level := log.WarnLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	writerMu.Lock()
	defer writerMu.Unlock()

	log.SetLevel(level)
	log.SetReportCaller(true)
	log.SetFormatter(&LogFormatter{})

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("logging: failed to create log directory: %w", err)
		}
		logWriter = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     3,
			Compress:   false,
		}
		log.SetOutput(logWriter)
		return nil
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	log.SetOutput(output)
	return nil
}

// Close releases the log file, if any
func Close() {
	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}
