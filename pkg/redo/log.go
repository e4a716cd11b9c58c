// Package redo holds input lines that were consumed once and then given back
// by a rewind, so a replay re-reads them deterministically instead of asking
// the user again.
package redo

import (
	"io"
	"log/slog"
)

// Log is a stack of returned input lines. Rewinding exits input regions
// innermost-first, pushing the most recently consumed line first; advancing
// re-enters outermost-first and pops, which restores the original consumption
// order exactly.
type Log struct {
	lines  []string
	logger *slog.Logger
}

// New creates an empty log. A nil logger disables logging.
func New(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Log{logger: logger}
}

// Len reports the number of lines awaiting replay.
func (l *Log) Len() int { return len(l.lines) }

// Push gives a consumed line back for later replay.
func (l *Log) Push(line string) {
	l.lines = append(l.lines, line)
	l.logger.Debug("line returned for replay", "pending", len(l.lines))
}

// Pop takes the next line to replay. It reports false when the log is empty
// and a real read is needed.
func (l *Log) Pop() (string, bool) {
	if len(l.lines) == 0 {
		return "", false
	}
	line := l.lines[len(l.lines)-1]
	l.lines = l.lines[:len(l.lines)-1]
	l.logger.Debug("line replayed", "pending", len(l.lines))
	return line, true
}
