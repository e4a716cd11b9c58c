package lang

// NewGlobalEnv builds the base environment: arithmetic, comparison,
// predicates, pairs, and the structured error constructor. Control and
// output builtins are wired in by their owning components, which hold the
// engine and terminal they need.
func NewGlobalEnv() *Env {
	env := NewEnv(nil)
	define := func(name string, fn func(m *Machine, args []Value) (Control, error)) {
		env.Define(Symbol(name), &Builtin{Name: name, Fn: fn})
	}

	define("+", func(_ *Machine, args []Value) (Control, error) {
		acc := Number(0)
		for _, a := range args {
			n, err := wantNumber("+", a)
			if err != nil {
				return Control{}, err
			}
			acc += n
		}
		return Return(acc), nil
	})
	define("-", func(_ *Machine, args []Value) (Control, error) {
		if len(args) == 0 {
			return Control{}, Errorf("-: want at least 1 argument")
		}
		first, err := wantNumber("-", args[0])
		if err != nil {
			return Control{}, err
		}
		if len(args) == 1 {
			return Return(-first), nil
		}
		for _, a := range args[1:] {
			n, err := wantNumber("-", a)
			if err != nil {
				return Control{}, err
			}
			first -= n
		}
		return Return(first), nil
	})
	define("*", func(_ *Machine, args []Value) (Control, error) {
		acc := Number(1)
		for _, a := range args {
			n, err := wantNumber("*", a)
			if err != nil {
				return Control{}, err
			}
			acc *= n
		}
		return Return(acc), nil
	})
	define("/", func(_ *Machine, args []Value) (Control, error) {
		if len(args) == 0 {
			return Control{}, Errorf("/: want at least 1 argument")
		}
		first, err := wantNumber("/", args[0])
		if err != nil {
			return Control{}, err
		}
		if len(args) == 1 {
			if first == 0 {
				return Control{}, Errorf("/: division by zero")
			}
			return Return(1 / first), nil
		}
		for _, a := range args[1:] {
			n, err := wantNumber("/", a)
			if err != nil {
				return Control{}, err
			}
			if n == 0 {
				return Control{}, Errorf("/: division by zero")
			}
			first /= n
		}
		return Return(first), nil
	})

	compare := func(name string, ok func(a, b Number) bool) {
		define(name, func(_ *Machine, args []Value) (Control, error) {
			if len(args) < 2 {
				return Control{}, Errorf("%s: want at least 2 arguments", name)
			}
			prev, err := wantNumber(name, args[0])
			if err != nil {
				return Control{}, err
			}
			for _, a := range args[1:] {
				n, err := wantNumber(name, a)
				if err != nil {
					return Control{}, err
				}
				if !ok(prev, n) {
					return Return(Boolean(false)), nil
				}
				prev = n
			}
			return Return(Boolean(true)), nil
		})
	}
	compare("=", func(a, b Number) bool { return a == b })
	compare("<", func(a, b Number) bool { return a < b })
	compare(">", func(a, b Number) bool { return a > b })
	compare("<=", func(a, b Number) bool { return a <= b })
	compare(">=", func(a, b Number) bool { return a >= b })

	define("cons", func(_ *Machine, args []Value) (Control, error) {
		if len(args) != 2 {
			return Control{}, Errorf("cons: want 2 arguments")
		}
		return Return(Cons(args[0], args[1])), nil
	})
	define("car", func(_ *Machine, args []Value) (Control, error) {
		p, err := wantPair("car", args)
		if err != nil {
			return Control{}, err
		}
		return Return(p.Car), nil
	})
	define("cdr", func(_ *Machine, args []Value) (Control, error) {
		p, err := wantPair("cdr", args)
		if err != nil {
			return Control{}, err
		}
		return Return(p.Cdr), nil
	})
	define("list", func(_ *Machine, args []Value) (Control, error) {
		return Return(List(args...)), nil
	})

	predicate := func(name string, ok func(v Value) bool) {
		define(name, func(_ *Machine, args []Value) (Control, error) {
			if len(args) != 1 {
				return Control{}, Errorf("%s: want 1 argument", name)
			}
			return Return(Boolean(ok(args[0]))), nil
		})
	}
	predicate("null?", func(v Value) bool { return v == Empty })
	predicate("pair?", func(v Value) bool { _, ok := v.(*Pair); return ok })
	predicate("number?", func(v Value) bool { _, ok := v.(Number); return ok })
	predicate("string?", func(v Value) bool { _, ok := v.(String); return ok })
	predicate("symbol?", func(v Value) bool { _, ok := v.(Symbol); return ok })
	predicate("procedure?", func(v Value) bool { _, ok := v.(Applicable); return ok })

	define("not", func(_ *Machine, args []Value) (Control, error) {
		if len(args) != 1 {
			return Control{}, Errorf("not: want 1 argument")
		}
		return Return(Boolean(!IsTrue(args[0]))), nil
	})
	define("eq?", func(_ *Machine, args []Value) (Control, error) {
		if len(args) != 2 {
			return Control{}, Errorf("eq?: want 2 arguments")
		}
		return Return(Boolean(args[0] == args[1])), nil
	})
	define("error", func(_ *Machine, args []Value) (Control, error) {
		if len(args) == 0 {
			return Control{}, &RaisedError{Message: "error"}
		}
		return Control{}, &RaisedError{Message: Display(args[0]), Irritants: args[1:]}
	})

	return env
}

func wantNumber(name string, v Value) (Number, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, Errorf("%s: %s is not a number", name, v)
	}
	return n, nil
}

func wantPair(name string, args []Value) (*Pair, error) {
	if len(args) != 1 {
		return nil, Errorf("%s: want 1 argument", name)
	}
	p, ok := args[0].(*Pair)
	if !ok {
		return nil, Errorf("%s: %s is not a pair", name, args[0])
	}
	return p, nil
}
