// Package logging builds the logger shared by every command.
//
// Entries at the configured level go to stderr. Every entry, down to trace, also goes to a
// log file in the temp directory so a failed run can be inspected afterwards.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handle owns the logger and its log file
type Handle struct {
	Logger *logrus.Logger

	file   *os.File
	path   string
	stderr io.Writer
}

// Open creates a logger writing level and above to stderr and everything to a log file
// named after the executable. A log file that cannot be created is reported and skipped.
func Open(level string) (*Handle, error) {
	exe := "device-inventory"
	if p, err := os.Executable(); err == nil {
		exe = filepath.Base(p)
	}
	return open(level, os.Stderr, filepath.Join(os.TempDir(), exe+".log"))
}

func open(level string, stderr io.Writer, path string) (*Handle, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.TraceLevel)

	h := &Handle{Logger: logger, stderr: stderr}
	logger.AddHook(newWriterHook(stderr, lvl, &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}))

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			logger.Warnf("Could not create log file %s: %v", path, err)
		} else {
			h.file = f
			h.path = path
			logger.AddHook(newWriterHook(f, logrus.TraceLevel, &logrus.TextFormatter{
				DisableColors:   true,
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05.000",
			}))
		}
	}

	return h, nil
}

// Path returns the log file location, empty if there is none
func (h *Handle) Path() string { return h.path }

// Close flushes the log file. When the command failed the file location is printed so the
// full trace can be found.
func (h *Handle) Close(cmdErr error) error {
	if h.file == nil {
		return nil
	}
	if cmdErr != nil {
		fmt.Fprintf(h.stderr, "Full log stored in %s\n", h.path)
	} else {
		h.Logger.Debugf("Full log stored in %s", h.path)
	}
	err := h.file.Close()
	h.file = nil
	return err
}

// writerHook formats entries up to a level onto a writer
type writerHook struct {
	mu        sync.Mutex
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func newWriterHook(w io.Writer, max logrus.Level, formatter logrus.Formatter) *writerHook {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= max {
			levels = append(levels, l)
		}
	}
	return &writerHook{w: w, levels: levels, formatter: formatter}
}

// Levels implements logrus.Hook
func (h *writerHook) Levels() []logrus.Level { return h.levels }

// Fire implements logrus.Hook
func (h *writerHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(b)
	return err
}
