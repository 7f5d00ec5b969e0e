// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package log is the node's structured logger. It follows the same
// module-scoped pattern used throughout
// (logger = log.NewModuleLogger(log.SomeModule); logger.Error(msg, "k", v)),
// built on zap instead of log15.
package log

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	colorable "github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ModuleName identifies the subsystem a Logger was created for; it is
// attached to every line that logger emits.
type ModuleName string

const (
	Node        ModuleName = "node"
	Consensus   ModuleName = "consensus"
	Mining      ModuleName = "mining"
	TxPool      ModuleName = "txpool"
	P2P         ModuleName = "p2p"
	Seed        ModuleName = "seed"
	Blockchain  ModuleName = "blockchain"
	CryptoIdent ModuleName = "crypto"
	CmdPNode    ModuleName = "cmd/pnode"
	CmdPSeed    ModuleName = "cmd/pseed"
)

var base *zap.SugaredLogger

func init() {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "t",
		LevelKey:       "lvl",
		NameKey:        "mod",
		MessageKey:     "msg",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	out := colorable.NewColorable(os.Stderr)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(out), zapcore.DebugLevel)
	base = zap.New(core).Sugar()
}

// Logger is a module-scoped front end over the shared zap logger.
type Logger struct {
	module ModuleName
	s      *zap.SugaredLogger
}

// NewModuleLogger returns a Logger tagged with the given module name.
func NewModuleLogger(mod ModuleName) *Logger {
	return &Logger{module: mod, s: base.Named(string(mod))}
}

func (l *Logger) with(ctx []interface{}) *zap.SugaredLogger {
	return l.s.With(ctx...)
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.with(ctx).Debugf("%s", msg) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.with(ctx).Debugf("%s", msg) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.with(ctx).Infof("%s", msg) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.with(ctx).Warnf("%s", msg) }

// Error attaches the caller's frame, mirroring klaytn's log package
// which records call-site origin for errors worth grepping for later.
func (l *Logger) Error(msg string, ctx ...interface{}) {
	frame := callerFrame()
	l.with(append(ctx, "at", frame)).Errorf("%s", msg)
}

// Crit logs at error level annotated in red and then exits the process.
// Reserved for configuration errors that are fatal at boot.
func (l *Logger) Crit(msg string, ctx ...interface{}) {
	frame := callerFrame()
	l.with(append(ctx, "at", frame)).Errorf("%s", color.New(color.FgRed, color.Bold).Sprint(msg))
	os.Exit(1)
}

func callerFrame() string {
	cs := stack.Caller(2)
	return fmt.Sprintf("%+v", cs)
}
