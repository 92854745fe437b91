// Copyright (C) 2025, csx2dif developers
//
// This file is part of csx2dif program.
//
// csx2dif is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// csx2dif is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with csx2dif.  If not, see <https://www.gnu.org/licenses/>.

// Central log (stdout/stderr) of the program, backed by zap. The converter
// core only ever talks to the package-level Log singleton; the sinks behind
// it (console, optional rotating file) are decided once at startup.
package main

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type CentralLogger struct {
	sugar *zap.SugaredLogger
	// verbosity gate for Verbose calls, independent from zap's own levels so
	// that repeated -v flags mean "more -v, more noise"
	verbosity int
	mu        sync.Mutex
}

var Log = createLogger()

// Bootstrap logger: plain console, no file sink, verbosity 0. Reconfigure()
// is called from Configure() once the command line has been parsed.
func createLogger() *CentralLogger {
	l := new(CentralLogger)
	l.sugar = consoleCore(false).Sugar()
	return l
}

func consoleCore(silent bool) *zap.Logger {
	if silent {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "",
		LevelKey:         "",
		MessageKey:       "msg",
		ConsoleSeparator: " ",
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), zapcore.DebugLevel)
	return zap.New(core)
}

// Reconfigure replaces the sinks. silent drops the console core entirely
// (file sink, if any, still receives everything - useful to keep a record of
// batch conversions without terminal noise).
func (l *CentralLogger) Reconfigure(silent bool, verbosity int, logFile string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbosity = verbosity

	cores := make([]zapcore.Core, 0, 2)
	if !silent {
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "",
			LevelKey:         "",
			MessageKey:       "msg",
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout),
			zapcore.DebugLevel))
	}
	if logFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			LocalTime:  true,
		}
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(fileWriter),
			zapcore.DebugLevel))
	}
	l.sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
}

// Your generic printf to let user see things
func (l *CentralLogger) Printf(s string, a ...interface{}) {
	l.sugar.Infof(s, a...)
}

// As generic as printf, but flagged as an error. Does NOT interrupt execution
// of the program.
func (l *CentralLogger) Error(s string, a ...interface{}) {
	l.sugar.Errorf(s, a...)
}

// Stuff that users only want to see when they can bother to spend time
// reading it. Higher levels require more -v switches on the command line.
func (l *CentralLogger) Verbose(level int, s string, a ...interface{}) {
	if l.verbosity >= level {
		l.sugar.Infof(s, a...)
	}
}

// Panic logs and then panics - programmer errors only, never input errors.
func (l *CentralLogger) Panic(s string, a ...interface{}) {
	l.sugar.Panicf(s, a...)
}

func (l *CentralLogger) Sync() {
	_ = l.sugar.Sync()
}
