package logtower

import (
	"fmt"

	"github.com/njchilds90/logtower/symbolic"
)

// Sequence is an indexed coefficient sequence F, G or h. The core never
// modifies a Sequence it is given.
type Sequence []symbolic.Expr

// Symbols returns the sequence prefix0, prefix1, ..., prefix{count-1}.
func Symbols(prefix string, count int) Sequence {
	return Sequence(symbolic.Symbols(prefix, count))
}

// Bell returns the n-th complete Bell polynomial B_n(args[0], ..., args[n-1]):
//
//	B_0 = 1
//	B_n = sum_{k=0}^{n-1} C(n-1, k) * B_k * args[n-k-1]
//
// args must hold at least n terms; extra terms are ignored.
func Bell(n int, args Sequence) (symbolic.Expr, error) {
	if err := checkDegree(n); err != nil {
		return nil, err
	}
	if err := need("args", args, n, n); err != nil {
		return nil, err
	}
	return bellTable(n, args)[n], nil
}

// bellTable returns B_0..B_n, each in canonical form. B_k reads args[:k]
// only, so one table serves every prefix length up to n.
func bellTable(n int, args Sequence) []symbolic.Expr {
	table := make([]symbolic.Expr, n+1)
	table[0] = symbolic.N(1)
	for d := 1; d <= n; d++ {
		terms := make([]symbolic.Expr, d)
		for k := 0; k < d; k++ {
			terms[k] = symbolic.Product(symbolic.Binomial(d-1, k), table[k], args[d-k-1])
		}
		table[d] = symbolic.Canonicalize(symbolic.Sum(terms...))
	}
	return table
}

func checkDegree(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: degree %d is negative", ErrIndexOutOfRange, n)
	}
	return nil
}

func need(name string, s Sequence, length, degree int) error {
	if len(s) < length {
		return fmt.Errorf("%w: %s has %d terms, degree %d needs %d", ErrIndexOutOfRange, name, len(s), degree, length)
	}
	return nil
}
