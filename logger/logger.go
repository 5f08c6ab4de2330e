package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/agnosto/chirp/config"
)

const (
	maxLogSize    = 5 * 1024 * 1024 // 5MB
	maxLogBackups = 5
)

// Logger is usable before InitLogger runs; output goes nowhere until then.
var (
	Logger = log.New(io.Discard, "", 0)
)

func InitLogger(cfg *config.Config) error {
	logDir := filepath.Join(cfg.Options.SaveLocation, ".logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile := filepath.Join(logDir, "chirp.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	Logger = log.New(file, "", log.Ldate|log.Ltime|log.Lshortfile)

	go rotateLogFile(logFile)

	return nil
}

// Discard points Logger at io.Discard. Tests call it so nothing touches disk.
func Discard() {
	Logger = log.New(io.Discard, "", 0)
}

func rotateLogFile(logFile string) {
	for {
		time.Sleep(1 * time.Hour)
		if err := rotateIfNeeded(logFile, maxLogSize); err != nil {
			Logger.Printf("[WARN] Log rotation failed: %v", err)
		}
	}
}

func rotateIfNeeded(logFile string, limit int64) error {
	info, err := os.Stat(logFile)
	if err != nil {
		return fmt.Errorf("error checking log file: %w", err)
	}
	if info.Size() < limit {
		return nil
	}

	Logger.Printf("[INFO] Rotating log file")

	for i := maxLogBackups - 1; i > 0; i-- {
		oldFile := fmt.Sprintf("%s.%d", logFile, i)
		newFile := fmt.Sprintf("%s.%d", logFile, i+1)
		os.Rename(oldFile, newFile)
	}

	os.Rename(logFile, logFile+".1")

	if f, ok := Logger.Writer().(*os.File); ok {
		f.Close()
	}

	newFile, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating new log file: %w", err)
	}

	Logger.SetOutput(newFile)
	return nil
}
