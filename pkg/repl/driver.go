// Package repl drives the read-eval-print session. The loop itself runs as
// machine frames rather than a Go for-loop, so a checkpoint captured in one
// turn can resume the session at that turn any number of times, including
// from later turns. That is what makes the REPL time-travel.
package repl

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/rewind/pkg/control"
	"github.com/aretw0/rewind/pkg/lang"
	"github.com/aretw0/rewind/pkg/ports"
	"github.com/aretw0/rewind/pkg/redo"
	"github.com/aretw0/rewind/pkg/vterm"
)

// errSessionEnded marks end of input on a fresh read: io.EOF or a
// zero-length line. It travels from the input region's enter action to the
// read frame, which turns it into an orderly shutdown.
var errSessionEnded = errors.New("session ended")

// Driver owns one interactive session: the evaluator, the control engine,
// the virtual terminal, and the redo log, all over a single console.
type Driver struct {
	cfg     Config
	console ports.Console
	machine *lang.Machine
	engine  *control.Engine
	term    *vterm.Terminal
	redo    *redo.Log
	state   State
	logger  *slog.Logger
}

// NewDriver builds a session over console. The global environment carries
// the base builtins plus the control (call/cc, dynamic-wind) and output
// (display, write, newline) procedures wired to this driver.
func NewDriver(console ports.Console, cfg Config) *Driver {
	cfg = cfg.withDefaults()
	d := &Driver{
		cfg:     cfg,
		console: console,
		engine:  control.NewEngine(cfg.Logger),
		term:    vterm.New(console, nil, cfg.Logger),
		redo:    redo.New(cfg.Logger),
		logger:  cfg.Logger,
	}
	global := lang.NewGlobalEnv()
	d.engine.Install(global)
	d.installIO(global)
	d.machine = lang.NewMachine(global, cfg.Logger)
	return d
}

// State reports the driver's current phase.
func (d *Driver) State() State { return d.state }

// Global exposes the session's top-level environment, mainly so embedders
// can predefine bindings before Run.
func (d *Driver) Global() *lang.Env { return d.machine.Global }

// Run executes the session until end of input. Recoverable errors (parse and
// evaluation) are reported in-band and never surface here; a returned error
// is an I/O failure, a context cancellation, or a fatal engine fault.
func (d *Driver) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*control.Fault)
			if !ok {
				panic(r)
			}
			err = f
		}
	}()
	d.state = StateAwaitingPrimaryInput
	d.machine.Bootstrap(&readOp{driver: d})
	return d.machine.Run(ctx)
}

// readOp is the frame that acquires and parses the next expression. It is
// immutable: each resumption opens a fresh input region, so a checkpoint
// that re-runs this frame re-reads through the redo log.
type readOp struct {
	driver *Driver
	acc    string // earlier lines of an incomplete expression
}

func (o *readOp) Resume(m *lang.Machine, _ lang.Value) (lang.Control, error) {
	d := o.driver
	prompt := d.cfg.Prompt
	if o.acc == "" {
		d.state = StateAwaitingPrimaryInput
	} else {
		d.state = StateAwaitingContinuationInput
		prompt = d.cfg.ContPrompt
	}

	region, cell := d.newInputRegion(prompt)
	if err := d.engine.Enter(region); err != nil {
		if errors.Is(err, errSessionEnded) {
			return d.terminate(m)
		}
		return lang.Control{}, err
	}

	text := o.acc + cell.line
	forms, err := lang.ReadAll(text)
	switch {
	case errors.Is(err, lang.ErrIncomplete):
		m.Push(&readOp{driver: d, acc: text + "\n"})
		return lang.Return(lang.Unspecified), nil
	case err != nil:
		d.state = StateReporting
		if rerr := d.reportText(d.cfg.ParseMarker + err.Error() + "\n"); rerr != nil {
			return lang.Control{}, rerr
		}
		m.Push(&readOp{driver: d})
		return lang.Return(lang.Unspecified), nil
	case len(forms) == 0:
		// Only whitespace or comments; ask again.
		m.Push(&readOp{driver: d})
		return lang.Return(lang.Unspecified), nil
	}

	d.state = StateEvaluating
	m.Push(&formOp{driver: d, rest: forms[1:], mark: d.engine.Mark()})
	return lang.Eval(forms[0], m.Global), nil
}

func (d *Driver) terminate(m *lang.Machine) (lang.Control, error) {
	d.state = StateTerminated
	if err := d.term.Flush(); err != nil {
		return lang.Control{}, err
	}
	d.term.Deactivate()
	m.SetContinuation(nil)
	d.logger.Debug("session terminated")
	return lang.Return(lang.Unspecified), nil
}

// formOp sequences the forms parsed from one expression and traps their
// errors. Each form gets its own trap and its own region mark, so output
// already reported by earlier forms of the same line survives a later form's
// failure.
type formOp struct {
	driver *Driver
	rest   []lang.Value
	mark   *control.Region
}

func (o *formOp) Resume(m *lang.Machine, v lang.Value) (lang.Control, error) {
	d := o.driver
	if v != lang.Unspecified {
		d.state = StateReporting
		if err := d.reportValue(v); err != nil {
			return lang.Control{}, err
		}
	}
	if len(o.rest) > 0 {
		d.state = StateEvaluating
		m.Push(&formOp{driver: d, rest: o.rest[1:], mark: d.engine.Mark()})
		return lang.Eval(o.rest[0], m.Global), nil
	}
	m.Push(&readOp{driver: d})
	return lang.Return(lang.Unspecified), nil
}

// Catch unwinds regions the failed form left open, reports the error, and
// abandons the rest of the line.
func (o *formOp) Catch(m *lang.Machine, e *lang.RaisedError) (lang.Control, error) {
	d := o.driver
	d.engine.UnwindTo(o.mark)
	d.state = StateReporting
	if err := d.reportText(d.cfg.ErrorMarker + e.Error() + "\n"); err != nil {
		return lang.Control{}, err
	}
	m.Push(&readOp{driver: d})
	return lang.Return(lang.Unspecified), nil
}

// inputCell carries the acquired line and its visible trace between a
// region's enter and exit actions.
type inputCell struct {
	line      string
	promptRec *vterm.Record
	echoRec   *vterm.Record
}

// newInputRegion builds the scoped region around one input line. Enter shows
// the prompt and acquires the line, from the redo log with a virtual echo
// or from the console after a flush. Exit retracts the visible trace and
// gives the line back to the redo log, so rewinding past this point undoes
// the read and advancing through it again replays it byte-for-byte.
func (d *Driver) newInputRegion(prompt string) (*control.Region, *inputCell) {
	cell := &inputCell{}
	enter := func() error {
		rec, err := d.term.Display(prompt)
		if err != nil {
			return err
		}
		cell.promptRec = rec

		if line, ok := d.redo.Pop(); ok {
			echo, err := d.term.Display(line + "\n")
			if err != nil {
				return err
			}
			cell.line, cell.echoRec = line, echo
			return nil
		}

		if err := d.term.Flush(); err != nil {
			return err
		}
		line, err := d.console.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errSessionEnded
			}
			return err
		}
		if line == "" {
			return errSessionEnded
		}
		if d.console.Echoes() {
			cell.echoRec = d.term.RecordFlushed(line + "\n")
		} else {
			echo, err := d.term.Display(line + "\n")
			if err != nil {
				return err
			}
			cell.echoRec = echo
		}
		cell.line = line
		return nil
	}
	exit := func() error {
		if err := d.term.Undo(cell.echoRec); err != nil {
			return err
		}
		if err := d.term.Undo(cell.promptRec); err != nil {
			return err
		}
		d.redo.Push(cell.line)
		cell.promptRec, cell.echoRec = nil, nil
		return nil
	}
	return control.NewRegion("input "+prompt, enter, exit), cell
}

func (d *Driver) reportValue(v lang.Value) error {
	return d.reportRegion("report-value", func() ([]*vterm.Record, error) {
		marker, err := d.term.Display(d.cfg.ValueMarker)
		if err != nil {
			return nil, err
		}
		val, err := d.term.PrintValue(v)
		if err != nil {
			return []*vterm.Record{marker}, err
		}
		nl, err := d.term.Display("\n")
		if err != nil {
			return []*vterm.Record{marker, val}, err
		}
		return []*vterm.Record{marker, val, nl}, nil
	})
}

func (d *Driver) reportText(text string) error {
	return d.reportRegion("report-text", func() ([]*vterm.Record, error) {
		rec, err := d.term.Display(text)
		if err != nil {
			return nil, err
		}
		return []*vterm.Record{rec}, nil
	})
}

// reportRegion opens a region whose enter produces buffered records and
// whose exit undoes them newest-first. The region stays open: printed
// reports are part of the session's visible history and are retracted only
// when a rewind crosses them.
func (d *Driver) reportRegion(label string, produce func() ([]*vterm.Record, error)) error {
	var recs []*vterm.Record
	enter := func() error {
		rs, err := produce()
		if err != nil {
			return err
		}
		recs = rs
		return nil
	}
	exit := func() error {
		for i := len(recs) - 1; i >= 0; i-- {
			if err := d.term.Undo(recs[i]); err != nil {
				return err
			}
		}
		recs = nil
		return nil
	}
	return d.engine.Enter(control.NewRegion(label, enter, exit))
}

// installIO defines the output procedures. Every call opens a region, so
// program output obeys the same undo contract as input echo and printed
// reports.
func (d *Driver) installIO(env *lang.Env) {
	output := func(name string, render func(args []lang.Value) (string, error)) {
		env.Define(lang.Symbol(name), &lang.Builtin{
			Name: name,
			Fn: func(_ *lang.Machine, args []lang.Value) (lang.Control, error) {
				text, err := render(args)
				if err != nil {
					return lang.Control{}, err
				}
				if err := d.outputRegion(text); err != nil {
					return lang.Control{}, err
				}
				return lang.Return(lang.Unspecified), nil
			},
		})
	}
	output("display", func(args []lang.Value) (string, error) {
		if len(args) != 1 {
			return "", lang.Errorf("display: want 1 argument")
		}
		return lang.Display(args[0]), nil
	})
	output("write", func(args []lang.Value) (string, error) {
		if len(args) != 1 {
			return "", lang.Errorf("write: want 1 argument")
		}
		return args[0].String(), nil
	})
	output("newline", func(args []lang.Value) (string, error) {
		if len(args) != 0 {
			return "", lang.Errorf("newline: want no arguments")
		}
		return "\n", nil
	})
}

func (d *Driver) outputRegion(text string) error {
	// Output produced by a region's own enter or exit action (a
	// dynamic-wind guard printing as the jump crosses it) happens once per
	// crossing and is never retracted, so it bypasses the region wrapping.
	if d.engine.MidAction() {
		_, err := d.term.Display(text)
		return err
	}
	var rec *vterm.Record
	enter := func() error {
		r, err := d.term.Display(text)
		if err != nil {
			return err
		}
		rec = r
		return nil
	}
	exit := func() error {
		err := d.term.Undo(rec)
		rec = nil
		return err
	}
	return d.engine.Enter(control.NewRegion("output", enter, exit))
}
