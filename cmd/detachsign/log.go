// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/detachsign/signer"
	"github.com/jrick/logrotate/rotator"
)

// logWriter writes log output to stderr and, once the rotator is set up, to
// the log file as well.
type logWriter struct {
	rotatorPipe *io.PipeWriter
}

// Write writes b to stderr and the log rotator.
func (w *logWriter) Write(b []byte) (int, error) {
	_, _ = os.Stderr.Write(b)
	if w.rotatorPipe != nil {
		_, _ = w.rotatorPipe.Write(b)
	}

	return len(b), nil
}

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it write to the backend.
var (
	logOut = &logWriter{}

	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(logOut)

	// logRotator is the optional file output. It must be closed before
	// the process exits.
	logRotator *rotator.Rotator

	dsgnLog = backendLog.Logger("DSGN")
	signLog = backendLog.Logger(signer.Subsystem)
)

// Initialize package-global logger variables.
func init() {
	signer.UseLogger(signLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"DSGN":           dsgnLog,
	signer.Subsystem: signLog,
}

// initLogRotator starts writing the log to logFile, rolling it over once it
// grows past maxSizeMB.
func initLogRotator(logFile string, maxSizeMB, maxFiles int) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w",
				err)
		}
	}

	r, err := rotator.New(
		logFile, int64(maxSizeMB*1024), false, maxFiles,
	)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		if err := r.Run(pr); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to run file "+
				"rotator: %v\n", err)
		}
	}()

	logOut.rotatorPipe = pw
	logRotator = r

	return nil
}

// closeLogRotator flushes and closes the log file, if any.
func closeLogRotator() {
	if logRotator == nil {
		return
	}

	_ = logOut.rotatorPipe.Close()
	_ = logRotator.Close()
}

// setLogLevels sets the logging level of every subsystem.
func setLogLevels(level btclog.Level) {
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}

// initLogging sets up the log outputs and levels described by cfg.
func initLogging(cfg *config) error {
	if cfg.LogFile != "" {
		err := initLogRotator(
			cfg.LogFile, cfg.MaxLogFileSize, cfg.MaxLogFiles,
		)
		if err != nil {
			return err
		}
	}

	setLogLevels(cfg.logLevel)

	return nil
}
