// Package nlog mirrors aistore's cmn/nlog: a small leveled logger over the
// standard library, with no third-party logging dependency — the teacher's
// own deliberate choice, carried here unchanged.
/*
 * Copyright (c) 2024, tracebench authors.
 */
package nlog

import (
	"log"
	"os"
	"sync/atomic"
)

type Level int32

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelTrace
)

var (
	level  atomic.Int32
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel adjusts the global verbosity; safe to call concurrently.
func SetLevel(l Level) { level.Store(int32(l)) }

func enabled(l Level) bool { return Level(level.Load()) >= l }

func Errorln(args ...any) {
	logger.Println(append([]any{"E:"}, args...)...)
}

func Errorf(format string, args ...any) {
	logger.Printf("E: "+format, args...)
}

func Warningln(args ...any) {
	if enabled(LevelWarning) {
		logger.Println(append([]any{"W:"}, args...)...)
	}
}

func Warningf(format string, args ...any) {
	if enabled(LevelWarning) {
		logger.Printf("W: "+format, args...)
	}
}

func Infoln(args ...any) {
	if enabled(LevelInfo) {
		logger.Println(append([]any{"I:"}, args...)...)
	}
}

func Infof(format string, args ...any) {
	if enabled(LevelInfo) {
		logger.Printf("I: "+format, args...)
	}
}

func Traceln(args ...any) {
	if enabled(LevelTrace) {
		logger.Println(append([]any{"T:"}, args...)...)
	}
}

func Tracef(format string, args ...any) {
	if enabled(LevelTrace) {
		logger.Printf("T: "+format, args...)
	}
}
