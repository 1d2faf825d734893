// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"math/rand"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogger is a JSON structured logger backed by zap.
type StructuredLogger struct {
	level        Level
	output       io.Writer
	fields       []Field
	samplingRate float64
	atomicLevel  zap.AtomicLevel
	zl           *zap.Logger
	mu           sync.Mutex
}

// NewStructuredLogger creates a new structured logger writing to stdout.
func NewStructuredLogger(level Level) *StructuredLogger {
	return NewStructuredLoggerWithOutput(level, os.Stdout)
}

// NewStructuredLoggerWithOutput creates a logger with custom output.
func NewStructuredLoggerWithOutput(level Level, output io.Writer) *StructuredLogger {
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(output)), atomicLevel)

	return &StructuredLogger{
		level:        level,
		output:       output,
		fields:       []Field{},
		samplingRate: 1.0,
		atomicLevel:  atomicLevel,
		zl:           zap.New(core),
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug logs a debug message.
func (l *StructuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	if l.level == LevelDebug && l.samplingRate < 1.0 && rand.Float64() > l.samplingRate {
		return
	}
	l.log(ctx, LevelDebug, msg, fields...)
}

// Info logs an informational message.
func (l *StructuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *StructuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *StructuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelError, msg, fields...)
}

// Fatal logs a fatal message and exits.
func (l *StructuredLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelFatal, msg, fields...)
	os.Exit(1)
}

// With creates a child logger with persistent fields.
func (l *StructuredLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &StructuredLogger{
		level:        l.level,
		output:       l.output,
		fields:       newFields,
		samplingRate: l.samplingRate,
		atomicLevel:  l.atomicLevel,
		zl:           l.zl,
	}
}

// SetLevel sets the minimum log level.
func (l *StructuredLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.atomicLevel.SetLevel(toZapLevel(level))
}

// SetSamplingRate sets the sampling rate for debug logs.
func (l *StructuredLogger) SetSamplingRate(rate float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rate < 0.0 {
		rate = 0.0
	}
	if rate > 1.0 {
		rate = 1.0
	}
	l.samplingRate = rate
}

// log writes a log entry via zap, merging context fields, the logger's
// persistent fields, and the call-site fields.
func (l *StructuredLogger) log(ctx context.Context, level Level, msg string, fields ...Field) {
	all := make([]Field, 0, len(l.fields)+len(fields)+2)
	all = append(all, extractContextFields(ctx)...)
	all = append(all, l.fields...)
	all = append(all, fields...)

	zfields := make([]zap.Field, len(all))
	for i, f := range all {
		zfields[i] = zap.Any(f.Key, f.Value)
	}

	switch level {
	case LevelDebug:
		l.zl.Debug(msg, zfields...)
	case LevelWarn:
		l.zl.Warn(msg, zfields...)
	case LevelError:
		l.zl.Error(msg, zfields...)
	case LevelFatal:
		l.zl.Error(msg, zfields...)
	default:
		l.zl.Info(msg, zfields...)
	}
}
