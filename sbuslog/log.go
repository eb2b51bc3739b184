// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package sbuslog provides the pluggable logging abstraction used by
// sbusclient: a thin leveled interface in front of whatever logger the
// embedding application already runs, defaulting to a standalone logrus
// logger when none is supplied.
package sbuslog

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Provider is the leveled logging interface sbusclient calls into. Only
// Error and Warn are ever reached by transport code (receiver-fatal
// errors and replies carrying an unknown sequence number); Debug and
// Critical exist for parity with
// richer providers an application may plug in.
type Provider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Log is the mutable logging facade a Client embeds. It logs nothing until
// LogMode(true) is called. The zero value has no provider: SetProvider must
// be called before it is enabled.
type Log struct {
	provider Provider
	has      uint32
}

// New returns a Log backed by a standalone logrus.Logger writing to
// stderr, with its "component" field set to component.
func New(component string) Log {
	l := logrus.New()
	return Log{
		provider: logrusProvider{l.WithField("component", component)},
	}
}

// LogMode enables or disables output; the provider is retained either way.
func (sf *Log) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetProvider swaps in a caller-supplied Provider, e.g. to route sbusclient
// logs through an application's existing logrus instance.
func (sf *Log) SetProvider(p Provider) {
	if p != nil {
		sf.provider = p
	}
}

func (sf Log) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Critical(format, v...)
	}
}

func (sf Log) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

func (sf Log) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

func (sf Log) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

// logrusProvider adapts a *logrus.Entry to Provider.
type logrusProvider struct {
	entry *logrus.Entry
}

var _ Provider = logrusProvider{}

func (sf logrusProvider) Critical(format string, v ...interface{}) {
	sf.entry.Logf(logrus.FatalLevel, format, v...)
}
func (sf logrusProvider) Error(format string, v ...interface{})    { sf.entry.Errorf(format, v...) }
func (sf logrusProvider) Warn(format string, v ...interface{})     { sf.entry.Warnf(format, v...) }
func (sf logrusProvider) Debug(format string, v ...interface{})    { sf.entry.Debugf(format, v...) }
