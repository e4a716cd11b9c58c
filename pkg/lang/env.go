package lang

// Env is a mutable lexical environment frame. Environments are shared between
// continuations: a definition made after a checkpoint was captured remains
// visible when the checkpoint is resumed. Only terminal output and input
// position are virtualized by the surrounding system, never bindings.
type Env struct {
	vars   map[Symbol]Value
	parent *Env
}

// NewEnv creates an empty frame chained to parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[Symbol]Value), parent: parent}
}

// Lookup resolves a symbol through the frame chain.
func (e *Env) Lookup(s Symbol) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[s]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds s in this frame, shadowing outer bindings.
func (e *Env) Define(s Symbol, v Value) {
	e.vars[s] = v
}

// Set assigns to an existing binding. It reports false when s is unbound.
func (e *Env) Set(s Symbol, v Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[s]; ok {
			env.vars[s] = v
			return true
		}
	}
	return false
}
