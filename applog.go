package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// emptyLineField marks an entry that should be followed by a blank line in
// the log file, separating one run from the next.
const emptyLineField = "empty_line"

// FileLogHook appends the message of every log entry to a plain text log
// file. The console keeps logrus' own output.
type FileLogHook struct {
	path string
	lock sync.Mutex
}

func NewFileLogHook(path string) *FileLogHook {
	return &FileLogHook{path: path}
}

func (h *FileLogHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *FileLogHook) Fire(entry *log.Entry) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	fd, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer fd.Close()

	line := entry.Message + "\n"
	if emptyLine, _ := entry.Data[emptyLineField].(bool); emptyLine {
		line += "\n"
	}
	_, err = fd.WriteString(line)

	return err
}

// newAppLogger builds the process logger: text to stdout plus the append-only
// log file.
func newAppLogger(logFile, level string) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)

	if logFile != "" {
		logger.AddHook(NewFileLogHook(logFile))
	}

	return logger, nil
}
