// Package control implements the resumable control engine: multi-shot
// checkpoints and scoped dynamic-extent regions over the language machine's
// one-shot continuation primitive.
package control

import (
	"fmt"
	"io"
	"log/slog"
)

// Action is one side of a region handler.
type Action func() error

// Region pairs the enter and exit actions of one dynamic extent. Identity is
// pointer identity: two regions built from identical actions at different
// moments are distinct and fire independently. A region remembers where on
// the stack it was first opened; re-entering it anywhere else is a fault.
type Region struct {
	label  string
	enter  Action
	exit   Action
	parent *Region
	depth  int
	bound  bool
}

// NewRegion builds an unopened region. The label only serves logging.
func NewRegion(label string, enter, exit Action) *Region {
	return &Region{label: label, enter: enter, exit: exit}
}

// Fault is a fatal engine inconsistency. It is delivered by panicking: the
// active-region stack no longer matches the open extents, so no recovery is
// meaningful and the process boundary is the right place for it to surface.
type Fault struct {
	Reason string
}

func (f *Fault) Error() string { return "control engine fault: " + f.Reason }

func fault(format string, args ...any) {
	panic(&Fault{Reason: fmt.Sprintf(format, args...)})
}

// Engine owns the active-region stack. The stack is a persistent
// parent-linked list, outermost last, so checkpoint snapshots are O(1)
// pointer copies and stack comparison is a common-ancestor walk.
type Engine struct {
	top      *Region
	inAction int
	logger   *slog.Logger
}

// NewEngine creates an engine with an empty region stack. A nil logger
// disables logging.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

// Mark snapshots the current region stack.
func (e *Engine) Mark() *Region { return e.top }

// MidAction reports whether an enter or exit action is currently running.
// Work done inside an action happens once per crossing and must not open
// regions of its own: the stack is mid-update and a nested region would end
// up off the chain.
func (e *Engine) MidAction() bool { return e.inAction > 0 }

func (e *Engine) runAction(a Action) error {
	if a == nil {
		return nil
	}
	e.inAction++
	defer func() { e.inAction-- }()
	return a()
}

// Depth reports how many regions are open.
func (e *Engine) Depth() int { return depth(e.top) }

// Enter runs r's enter action and pushes it. When the action fails the
// region is not pushed and the error is returned; the caller decides what
// the failure means.
func (e *Engine) Enter(r *Region) error {
	if r == nil {
		fault("enter of nil region")
	}
	if !r.bound {
		r.parent = e.top
		r.depth = depth(e.top) + 1
		r.bound = true
	} else if r.parent != e.top {
		fault("region %q re-entered away from its original position", r.label)
	}
	if err := e.runAction(r.enter); err != nil {
		return err
	}
	e.top = r
	e.logger.Debug("region entered", "label", r.label, "depth", r.depth)
	return nil
}

// Exit runs the exit action of the innermost region, which must be r, and
// pops it.
func (e *Engine) Exit(r *Region) error {
	if e.top != r {
		fault("exit of region %q which is not innermost", r.label)
	}
	if err := e.runAction(r.exit); err != nil {
		return err
	}
	e.top = r.parent
	e.logger.Debug("region exited", "label", r.label, "depth", r.depth)
	return nil
}

// Scoped runs enter, then body, and guarantees exit runs exactly once on the
// way out, whether body succeeds or fails. Non-local transfers never pass
// through Go bodies (control jumps happen only inside machine runs), so a
// plain sequential discipline suffices here.
func (e *Engine) Scoped(enter, exit Action, body func() error) error {
	r := NewRegion("scoped", enter, exit)
	if err := e.Enter(r); err != nil {
		return err
	}
	bodyErr := body()
	if err := e.Exit(r); err != nil && bodyErr == nil {
		bodyErr = err
	}
	return bodyErr
}

// UnwindTo runs exit actions innermost-first until mark is the top of the
// stack. mark must be on the current chain.
func (e *Engine) UnwindTo(mark *Region) {
	for r := e.top; r != mark; r = r.parent {
		if r == nil {
			fault("unwind target is not on the active-region stack")
		}
	}
	for e.top != mark {
		if err := e.Exit(e.top); err != nil {
			fault("exit action failed during unwind: %v", err)
		}
	}
}

// Reroot drives the active-region stack to target: exit actions run for
// every region from the current top down to the longest shared suffix,
// innermost-first, then enter actions run from just past the shared point
// down to target, outermost-first. Action failure mid-transfer leaves the
// stack inconsistent and is a fault.
func (e *Engine) Reroot(target *Region) {
	shared := commonAncestor(e.top, target)
	exits := depth(e.top) - depth(shared)
	for e.top != shared {
		if err := e.Exit(e.top); err != nil {
			fault("exit action failed during rewind: %v", err)
		}
	}
	var path []*Region
	for r := target; r != shared; r = r.parent {
		path = append(path, r)
	}
	for i := len(path) - 1; i >= 0; i-- {
		if err := e.Enter(path[i]); err != nil {
			fault("enter action failed during advance: %v", err)
		}
	}
	e.logger.Debug("rerooted", "exits", exits, "enters", len(path))
}

func commonAncestor(a, b *Region) *Region {
	for depth(a) > depth(b) {
		a = a.parent
	}
	for depth(b) > depth(a) {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}

func depth(r *Region) int {
	if r == nil {
		return 0
	}
	return r.depth
}
