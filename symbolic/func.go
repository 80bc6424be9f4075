package symbolic

import "fmt"

// ============================================================
// Func: named function applications
// ============================================================

// Func is an application of a named function to one argument. Only ln has a
// derivative rule; any other name is an opaque atom.
type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func LnOf(arg Expr) Expr { return funcOf("ln", arg).Simplify() }

// Apply builds an uninterpreted function application such as f(x).
func Apply(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if f.name == "ln" {
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	if f.name == "ln" {
		return "\\ln\\left(" + f.arg.LaTeX() + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Subs(m map[string]Expr) Expr {
	return funcOf(f.name, f.arg.Subs(m)).Simplify()
}

func (f *Func) derive(r Rules) (Expr, error) {
	if f.name != "ln" {
		return nil, fmt.Errorf("%w: no derivative rule for %s", ErrUnsupported, f.name)
	}
	du, err := f.arg.derive(r)
	if err != nil {
		return nil, err
	}
	return MulOf(du, PowOf(f.arg, N(-1))), nil
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
