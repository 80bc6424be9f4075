package symbolic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSymbol is returned when a substitution source is not a *Sym.
	ErrNotSymbol = errors.New("symbolic: substitution source is not a symbol")

	// ErrConflictingPair is returned when one symbol is mapped to two different targets.
	ErrConflictingPair = errors.New("symbolic: symbol substituted twice with different targets")

	// ErrUnsupported is returned by Derive for nodes without a derivative rule.
	ErrUnsupported = errors.New("symbolic: unsupported operation")

	// ErrExponentRange is returned by FromJSON for exponents larger than
	// MaxExponent in magnitude.
	ErrExponentRange = errors.New("symbolic: exponent out of range")
)

// Pair maps a source symbol to a replacement expression.
type Pair struct {
	From Expr
	To   Expr
}

// Substitute applies all pairs to e simultaneously, so a target that mentions
// another pair's source is not rewritten a second time.
func Substitute(e Expr, pairs []Pair) (Expr, error) {
	m := make(map[string]Expr, len(pairs))
	for i, p := range pairs {
		s, ok := p.From.(*Sym)
		if !ok {
			return nil, fmt.Errorf("pair %d (%s): %w", i, p.From.String(), ErrNotSymbol)
		}
		if prev, seen := m[s.name]; seen && !prev.Equal(p.To) {
			return nil, fmt.Errorf("pair %d (%s): %w", i, s.name, ErrConflictingPair)
		}
		m[s.name] = p.To
	}
	if len(m) == 0 {
		return e, nil
	}
	return e.Subs(m), nil
}

// Zip pairs from[i] with to[i] for i < min(len(from), len(to)).
func Zip(from, to []Expr) []Pair {
	n := len(from)
	if len(to) < n {
		n = len(to)
	}
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{From: from[i], To: to[i]}
	}
	return pairs
}
