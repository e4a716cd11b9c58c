package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// The machine evaluates expressions over an explicit continuation: a
// persistent, immutable list of frames. Because frames are never mutated
// after they are pushed, the current frame pointer can be snapshotted in O(1)
// and reinstalled any number of times. That is the one-shot capture/resume
// primitive the resumable control engine is built on. SetContinuation is
// resume; Continuation is capture.

// Control tells the machine what to do next.
type Control struct {
	mode controlMode
	expr Value
	env  *Env
	val  Value
}

type controlMode int

const (
	ctrlReturn controlMode = iota
	ctrlEval
)

// Eval requests evaluation of expr in env.
func Eval(expr Value, env *Env) Control {
	return Control{mode: ctrlEval, expr: expr, env: env}
}

// Return delivers v to the innermost frame.
func Return(v Value) Control {
	return Control{mode: ctrlReturn, val: v}
}

// Frame is one suspended step of the computation.
type Frame struct {
	op   FrameOp
	next *Frame
}

// FrameOp receives the value produced by the computation above it and decides
// what happens next. Implementations must be immutable: the same op may be
// resumed many times through different checkpoints.
type FrameOp interface {
	Resume(m *Machine, v Value) (Control, error)
}

// Catcher marks a frame op as an error trap. When a RaisedError propagates,
// frames above the trap are discarded (without further ceremony; unwinding
// any scoped regions opened above it is the catcher's responsibility) and
// Catch receives the error.
type Catcher interface {
	FrameOp
	Catch(m *Machine, e *RaisedError) (Control, error)
}

// Trap is the plain exception-trapping primitive: values pass through
// untouched, raised errors are delivered to OnError.
type Trap struct {
	OnError func(m *Machine, e *RaisedError) (Control, error)
}

func (t *Trap) Resume(_ *Machine, v Value) (Control, error) { return Return(v), nil }

func (t *Trap) Catch(m *Machine, e *RaisedError) (Control, error) { return t.OnError(m, e) }

// RaisedError is the structured, recoverable error of the dialect: a message
// plus auxiliary irritant values.
type RaisedError struct {
	Message   string
	Irritants []Value
}

func (e *RaisedError) Error() string {
	if len(e.Irritants) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Irritants)+1)
	parts = append(parts, e.Message)
	for _, v := range e.Irritants {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, " ")
}

// Errorf builds a RaisedError the way fmt.Errorf builds errors.
func Errorf(format string, args ...any) error {
	return &RaisedError{Message: fmt.Sprintf(format, args...)}
}

// Applicable is a value that can sit in operator position.
type Applicable interface {
	Value
	Apply(m *Machine, args []Value) (Control, error)
}

// Builtin is a procedure implemented in Go.
type Builtin struct {
	Name string
	Fn   func(m *Machine, args []Value) (Control, error)
}

func (b *Builtin) String() string { return "#<builtin " + b.Name + ">" }

func (b *Builtin) Apply(m *Machine, args []Value) (Control, error) { return b.Fn(m, args) }

// Lambda is a closure.
type Lambda struct {
	Params []Symbol
	Rest   Symbol // "" when the parameter list is proper
	Body   []Value
	Env    *Env
	Name   string
}

func (l *Lambda) String() string {
	if l.Name != "" {
		return "#<procedure " + l.Name + ">"
	}
	return "#<procedure>"
}

func (l *Lambda) Apply(m *Machine, args []Value) (Control, error) {
	env := NewEnv(l.Env)
	if l.Rest == "" && len(args) != len(l.Params) {
		return Control{}, Errorf("%s: want %d arguments, got %d", l, len(l.Params), len(args))
	}
	if l.Rest != "" && len(args) < len(l.Params) {
		return Control{}, Errorf("%s: want at least %d arguments, got %d", l, len(l.Params), len(args))
	}
	for i, p := range l.Params {
		env.Define(p, args[i])
	}
	if l.Rest != "" {
		env.Define(l.Rest, List(args[len(l.Params):]...))
	}
	return evalBody(m, l.Body, env), nil
}

func evalBody(m *Machine, body []Value, env *Env) Control {
	if len(body) == 0 {
		return Return(Unspecified)
	}
	if len(body) > 1 {
		m.Push(&seqOp{rest: body[1:], env: env})
	}
	return Eval(body[0], env)
}

// Machine is the evaluator. A single Machine hosts a whole session; it is not
// safe for concurrent use and never needs to be: the surrounding system is
// strictly single-threaded.
type Machine struct {
	Global *Env
	ctrl   Control
	k      *Frame
	logger *slog.Logger
}

// NewMachine creates a machine over the given global environment. A nil
// logger disables logging.
func NewMachine(global *Env, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{Global: global, logger: logger}
}

// Push adds op as the innermost frame.
func (m *Machine) Push(op FrameOp) { m.k = &Frame{op: op, next: m.k} }

// Continuation snapshots the current frame list.
func (m *Machine) Continuation() *Frame { return m.k }

// SetContinuation installs a previously snapshotted frame list, abandoning
// the current one. Passing nil makes the machine halt after the pending
// control completes.
func (m *Machine) SetContinuation(k *Frame) { m.k = k }

// Bootstrap arms the machine with op as its only frame. Run will deliver
// Unspecified to it as the first step.
func (m *Machine) Bootstrap(op FrameOp) {
	m.k = &Frame{op: op}
	m.ctrl = Return(Unspecified)
}

// Run steps the machine until the continuation is exhausted. Recoverable
// errors are routed to the nearest Catcher frame; anything uncaught, or any
// non-raised error from a frame op, stops the run and is returned.
func (m *Machine) Run(ctx context.Context) error {
	for {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		var c Control
		var err error
		switch m.ctrl.mode {
		case ctrlEval:
			c, err = m.evalStep(m.ctrl.expr, m.ctrl.env)
		case ctrlReturn:
			if m.k == nil {
				return nil
			}
			fr := m.k
			m.k = fr.next
			c, err = fr.op.Resume(m, m.ctrl.val)
		}
		if err != nil {
			c, err = m.dispatchError(err)
			if err != nil {
				return err
			}
		}
		m.ctrl = c
	}
}

// Result returns the value the last completed Run ended with.
func (m *Machine) Result() Value { return m.ctrl.val }

// Evaluate runs a single expression to completion on a fresh continuation.
func (m *Machine) Evaluate(ctx context.Context, expr Value, env *Env) (Value, error) {
	if env == nil {
		env = m.Global
	}
	m.k = nil
	m.ctrl = Eval(expr, env)
	if err := m.Run(ctx); err != nil {
		return nil, err
	}
	return m.ctrl.val, nil
}

// CallThunk applies proc to no arguments on a private machine sharing the
// global environment. Checkpoints captured inside do not extend past the
// call; region enter/exit actions written in the dialect run this way.
func (m *Machine) CallThunk(proc Applicable) (Value, error) {
	sub := &Machine{Global: m.Global, logger: m.logger}
	c, err := proc.Apply(sub, nil)
	if err != nil {
		return nil, err
	}
	sub.ctrl = c
	if err := sub.Run(context.Background()); err != nil {
		return nil, err
	}
	return sub.ctrl.val, nil
}

func (m *Machine) dispatchError(err error) (Control, error) {
	var re *RaisedError
	if !errors.As(err, &re) {
		return Control{}, err
	}
	for m.k != nil {
		fr := m.k
		m.k = fr.next
		if c, ok := fr.op.(Catcher); ok {
			m.logger.Debug("raised error trapped", "err", re.Error())
			ctl, cerr := c.Catch(m, re)
			if cerr != nil {
				return m.dispatchError(cerr)
			}
			return ctl, nil
		}
	}
	return Control{}, re
}

func (m *Machine) evalStep(expr Value, env *Env) (Control, error) {
	switch x := expr.(type) {
	case Symbol:
		v, ok := env.Lookup(x)
		if !ok {
			return Control{}, Errorf("unbound variable: %s", x)
		}
		return Return(v), nil
	case *Pair:
		return m.evalForm(x, env)
	case emptyList:
		return Control{}, Errorf("cannot evaluate ()")
	default:
		return Return(x), nil
	}
}

func (m *Machine) evalForm(form *Pair, env *Env) (Control, error) {
	items, ok := Slice(form)
	if !ok {
		return Control{}, Errorf("cannot evaluate improper list %s", form)
	}
	if head, isSym := form.Car.(Symbol); isSym {
		switch head {
		case "quote":
			if len(items) != 2 {
				return Control{}, Errorf("quote: want 1 argument")
			}
			return Return(items[1]), nil
		case "if":
			if len(items) != 3 && len(items) != 4 {
				return Control{}, Errorf("if: want 2 or 3 arguments")
			}
			op := &ifOp{then: items[2], env: env}
			if len(items) == 4 {
				op.els = items[3]
			}
			m.Push(op)
			return Eval(items[1], env), nil
		case "define":
			return m.evalDefine(items, env)
		case "set!":
			if len(items) != 3 {
				return Control{}, Errorf("set!: want 2 arguments")
			}
			name, isName := items[1].(Symbol)
			if !isName {
				return Control{}, Errorf("set!: %s is not a symbol", items[1])
			}
			m.Push(&setOp{name: name, env: env})
			return Eval(items[2], env), nil
		case "lambda":
			return makeLambda("", items[1:], env)
		case "begin":
			return evalBody(m, items[1:], env), nil
		case "let":
			return m.evalLet(items, env)
		case "and":
			if len(items) == 1 {
				return Return(Boolean(true)), nil
			}
			m.Push(&andOp{rest: items[2:], env: env})
			return Eval(items[1], env), nil
		case "or":
			if len(items) == 1 {
				return Return(Boolean(false)), nil
			}
			m.Push(&orOp{rest: items[2:], env: env})
			return Eval(items[1], env), nil
		}
	}
	// Application: evaluate operator and operands left to right.
	m.Push(&appOp{rest: items[1:], env: env})
	return Eval(items[0], env), nil
}

func (m *Machine) evalDefine(items []Value, env *Env) (Control, error) {
	if len(items) < 3 {
		return Control{}, Errorf("define: want at least 2 arguments")
	}
	switch target := items[1].(type) {
	case Symbol:
		if len(items) != 3 {
			return Control{}, Errorf("define: want 2 arguments")
		}
		m.Push(&defineOp{name: target, env: env})
		return Eval(items[2], env), nil
	case *Pair:
		// (define (name args...) body...) sugar.
		name, isName := target.Car.(Symbol)
		if !isName {
			return Control{}, Errorf("define: %s is not a symbol", target.Car)
		}
		c, err := makeLambda(string(name), append([]Value{target.Cdr}, items[2:]...), env)
		if err != nil {
			return Control{}, err
		}
		env.Define(name, c.val)
		return Return(Unspecified), nil
	default:
		return Control{}, Errorf("define: %s is not a symbol", items[1])
	}
}

func (m *Machine) evalLet(items []Value, env *Env) (Control, error) {
	if len(items) < 3 {
		return Control{}, Errorf("let: want bindings and a body")
	}
	bindings, ok := Slice(items[1])
	if !ok {
		return Control{}, Errorf("let: malformed bindings")
	}
	names := make([]Value, 0, len(bindings))
	inits := make([]Value, 0, len(bindings))
	for _, b := range bindings {
		pair, ok := Slice(b)
		if !ok || len(pair) != 2 {
			return Control{}, Errorf("let: malformed binding %s", b)
		}
		if _, isName := pair[0].(Symbol); !isName {
			return Control{}, Errorf("let: %s is not a symbol", pair[0])
		}
		names = append(names, pair[0])
		inits = append(inits, pair[1])
	}
	// Desugar to an immediate lambda application.
	lambda := Cons(Symbol("lambda"), Cons(List(names...), List(items[2:]...)))
	return Eval(Cons(lambda, List(inits...)), env), nil
}

func makeLambda(name string, rest []Value, env *Env) (Control, error) {
	if len(rest) < 2 {
		return Control{}, Errorf("lambda: want parameters and a body")
	}
	l := &Lambda{Body: rest[1:], Env: env, Name: name}
	switch params := rest[0].(type) {
	case Symbol:
		l.Rest = params
	default:
		v := rest[0]
		for {
			if v == Empty {
				break
			}
			p, isPair := v.(*Pair)
			if !isPair {
				s, isSym := v.(Symbol)
				if !isSym {
					return Control{}, Errorf("lambda: bad parameter list")
				}
				l.Rest = s
				break
			}
			s, isSym := p.Car.(Symbol)
			if !isSym {
				return Control{}, Errorf("lambda: parameter %s is not a symbol", p.Car)
			}
			l.Params = append(l.Params, s)
			v = p.Cdr
		}
	}
	return Return(Value(l)), nil
}

// Frame ops. All of them re-push fresh ops instead of mutating themselves so
// that captured continuations replay correctly.

type ifOp struct {
	then, els Value
	env       *Env
}

func (o *ifOp) Resume(m *Machine, v Value) (Control, error) {
	if IsTrue(v) {
		return Eval(o.then, o.env), nil
	}
	if o.els == nil {
		return Return(Unspecified), nil
	}
	return Eval(o.els, o.env), nil
}

type seqOp struct {
	rest []Value
	env  *Env
}

func (o *seqOp) Resume(m *Machine, _ Value) (Control, error) {
	if len(o.rest) > 1 {
		m.Push(&seqOp{rest: o.rest[1:], env: o.env})
	}
	return Eval(o.rest[0], o.env), nil
}

type defineOp struct {
	name Symbol
	env  *Env
}

func (o *defineOp) Resume(_ *Machine, v Value) (Control, error) {
	if l, isLambda := v.(*Lambda); isLambda && l.Name == "" {
		l.Name = string(o.name)
	}
	o.env.Define(o.name, v)
	return Return(Unspecified), nil
}

type setOp struct {
	name Symbol
	env  *Env
}

func (o *setOp) Resume(_ *Machine, v Value) (Control, error) {
	if !o.env.Set(o.name, v) {
		return Control{}, Errorf("set!: unbound variable: %s", o.name)
	}
	return Return(Unspecified), nil
}

type andOp struct {
	rest []Value
	env  *Env
}

func (o *andOp) Resume(m *Machine, v Value) (Control, error) {
	if !IsTrue(v) || len(o.rest) == 0 {
		return Return(v), nil
	}
	if len(o.rest) > 1 {
		m.Push(&andOp{rest: o.rest[1:], env: o.env})
	}
	return Eval(o.rest[0], o.env), nil
}

type orOp struct {
	rest []Value
	env  *Env
}

func (o *orOp) Resume(m *Machine, v Value) (Control, error) {
	if IsTrue(v) || len(o.rest) == 0 {
		return Return(v), nil
	}
	if len(o.rest) > 1 {
		m.Push(&orOp{rest: o.rest[1:], env: o.env})
	}
	return Eval(o.rest[0], o.env), nil
}

type appOp struct {
	vals []Value
	rest []Value
	env  *Env
}

func (o *appOp) Resume(m *Machine, v Value) (Control, error) {
	vals := make([]Value, 0, len(o.vals)+1)
	vals = append(vals, o.vals...)
	vals = append(vals, v)
	if len(o.rest) == 0 {
		proc, ok := vals[0].(Applicable)
		if !ok {
			return Control{}, Errorf("not a procedure: %s", vals[0])
		}
		return proc.Apply(m, vals[1:])
	}
	m.Push(&appOp{vals: vals, rest: o.rest[1:], env: o.env})
	return Eval(o.rest[0], o.env), nil
}
