// Package bptrace logs the execution of a bpvm.Parser through logrus.
package bptrace

import (
	"github.com/sirupsen/logrus"

	"github.com/chronos-tachyon/go-backparse/bpvm"
)

// Tracer is a bpvm.Tracer that writes one log entry per instruction.
type Tracer struct {
	log   logrus.FieldLogger
	level logrus.Level

	steps     int
	failures  int
	maxDepth  int
	maxRecord int
}

var _ bpvm.Tracer = (*Tracer)(nil)

// New returns a Tracer that logs to log at debug level.
func New(log logrus.FieldLogger) *Tracer {
	return &Tracer{log: log, level: logrus.DebugLevel}
}

// WithLevel changes the level of the entries written by t.
func (t *Tracer) WithLevel(level logrus.Level) *Tracer {
	t.level = level
	return t
}

// Trace implements bpvm.Tracer.
func (t *Tracer) Trace(x *bpvm.Parser, op bpvm.Op) {
	t.steps++
	if op.Code == bpvm.OpFAIL {
		t.failures++
	}
	if d := x.Depth(); d > t.maxDepth {
		t.maxDepth = d
	}
	if n := x.Backtracks(); n > t.maxRecord {
		t.maxRecord = n
	}

	entry := t.log.WithFields(logrus.Fields{
		"rule":       x.Rule(),
		"pc":         x.PC(),
		"op":         op.String(),
		"depth":      x.Depth(),
		"cursor":     x.Cursor(),
		"backtracks": x.Backtracks(),
	})
	if tok, ok := x.Token(); ok && op.Code == bpvm.OpTEST {
		entry = entry.WithField("token", tok)
	}
	switch t.level {
	case logrus.TraceLevel:
		entry.Trace("step")
	case logrus.DebugLevel:
		entry.Debug("step")
	default:
		entry.Info("step")
	}
}

// Stats summarizes what a Tracer has seen.
type Stats struct {
	Steps int

	// Fails counts FAIL instructions, i.e. sets of alternatives that were
	// exhausted. Failed TESTs are not included.
	Fails int

	MaxDepth      int
	MaxBacktracks int
}

// Stats returns the counters accumulated since t was created.
func (t *Tracer) Stats() Stats {
	return Stats{
		Steps:         t.steps,
		Fails:         t.failures,
		MaxDepth:      t.maxDepth,
		MaxBacktracks: t.maxRecord,
	}
}

// Fields renders s for a summary log entry.
func (s Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"steps":          s.Steps,
		"fails":          s.Fails,
		"max_depth":      s.MaxDepth,
		"max_backtracks": s.MaxBacktracks,
	}
}
