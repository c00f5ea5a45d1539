// Package logging configures the process-wide logrus logger with rotating
// file output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var once sync.Once

// Options controls the shared logger. Dir is the log directory; an empty
// Dir keeps output on stderr only.
type Options struct {
	Dir   string
	Level string
}

// Init configures the standard logrus logger. Safe to call more than
// once; only the first call takes effect.
func Init(opts Options) error {
	var initErr error
	once.Do(func() {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		if opts.Dir == "" {
			return
		}
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			initErr = fmt.Errorf("logging: create log dir %s: %w", opts.Dir, err)
			return
		}
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "diwan.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotated))
	})
	return initErr
}
