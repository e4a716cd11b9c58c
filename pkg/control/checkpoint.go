package control

import (
	"github.com/aretw0/rewind/pkg/lang"
)

// Checkpoint is a captured resumption point: the machine's frame list plus
// the region stack that was active at capture time. Invoking it any number of
// times re-enters the computation at the capture site after rerooting the
// region stack: exit actions run for regions the jump leaves, enter actions
// for regions it re-enters.
type Checkpoint struct {
	engine *Engine
	k      *lang.Frame
	mark   *Region
}

func (c *Checkpoint) String() string { return "#<checkpoint>" }

// Apply makes a checkpoint callable like any procedure. It takes at most one
// argument, the value delivered at the capture site (Unspecified when
// omitted).
func (c *Checkpoint) Apply(m *lang.Machine, args []lang.Value) (lang.Control, error) {
	if len(args) > 1 {
		return lang.Control{}, lang.Errorf("checkpoint: want at most 1 argument, got %d", len(args))
	}
	v := lang.Value(lang.Unspecified)
	if len(args) == 1 {
		v = args[0]
	}
	c.engine.Reroot(c.mark)
	m.SetContinuation(c.k)
	return lang.Return(v), nil
}

// Capture snapshots m's current continuation together with the active-region
// stack. Both snapshots are pointer copies.
func (e *Engine) Capture(m *lang.Machine) *Checkpoint {
	return &Checkpoint{engine: e, k: m.Continuation(), mark: e.Mark()}
}

// Install wires the engine's control builtins into env: call/cc (aliased as
// call-with-checkpoint) and dynamic-wind.
func (e *Engine) Install(env *lang.Env) {
	callCC := &lang.Builtin{Name: "call/cc", Fn: e.callCC}
	env.Define("call/cc", callCC)
	env.Define("call-with-checkpoint", callCC)
	env.Define("dynamic-wind", &lang.Builtin{Name: "dynamic-wind", Fn: e.dynamicWind})
}

// callCC captures a checkpoint and applies its receiver to it. The receiver
// frame list already excludes the call/cc application frame, so a checkpoint
// invoked later resumes at the point the whole (call/cc ...) form returns to.
func (e *Engine) callCC(m *lang.Machine, args []lang.Value) (lang.Control, error) {
	if len(args) != 1 {
		return lang.Control{}, lang.Errorf("call/cc: want 1 argument")
	}
	proc, ok := args[0].(lang.Applicable)
	if !ok {
		return lang.Control{}, lang.Errorf("call/cc: %s is not a procedure", args[0])
	}
	return proc.Apply(m, []lang.Value{e.Capture(m)})
}

// dynamicWind runs before, body, and after as a dialect-level region: the
// before and after thunks become the region's enter and exit actions, so a
// checkpoint jump into or out of the body fires them like any other region
// boundary.
func (e *Engine) dynamicWind(m *lang.Machine, args []lang.Value) (lang.Control, error) {
	if len(args) != 3 {
		return lang.Control{}, lang.Errorf("dynamic-wind: want 3 arguments")
	}
	thunks := make([]lang.Applicable, 3)
	for i, a := range args {
		p, ok := a.(lang.Applicable)
		if !ok {
			return lang.Control{}, lang.Errorf("dynamic-wind: %s is not a procedure", a)
		}
		thunks[i] = p
	}
	r := NewRegion("dynamic-wind",
		thunkAction(m, thunks[0]),
		thunkAction(m, thunks[2]))
	if err := e.Enter(r); err != nil {
		return lang.Control{}, err
	}
	m.Push(&windOp{engine: e, region: r})
	return thunks[1].Apply(m, nil)
}

// windOp closes a dynamic-wind region when its body returns normally. A
// checkpoint jump out of the body never reaches this frame; the Reroot runs
// the exit action instead, and the discarded frame is harmless because frames
// are immutable.
type windOp struct {
	engine *Engine
	region *Region
}

func (o *windOp) Resume(_ *lang.Machine, v lang.Value) (lang.Control, error) {
	if err := o.engine.Exit(o.region); err != nil {
		return lang.Control{}, err
	}
	return lang.Return(v), nil
}

// thunkAction adapts a dialect thunk into a region action. The thunk runs on
// a private machine, so checkpoints captured inside it cannot escape into the
// session continuation.
func thunkAction(m *lang.Machine, proc lang.Applicable) Action {
	return func() error {
		_, err := m.CallThunk(proc)
		return err
	}
}
