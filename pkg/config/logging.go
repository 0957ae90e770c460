package config

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging sends the standard logger to stderr and, when LOG_FILE is
// set, also to a size-rotated file. The returned closer flushes the file.
func SetupLogging(cfg *Config) io.Closer {
	log.SetFlags(log.LstdFlags | log.LUTC)
	if cfg.LogFile == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	log.Printf("Logging to %s", cfg.LogFile)
	return rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
