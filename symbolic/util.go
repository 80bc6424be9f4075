package symbolic

import (
	"math/big"
	"strconv"
)

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Minus returns a - b.
func Minus(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Binomial returns C(n, k) for non-negative n; 0 when k is outside [0, n].
func Binomial(n, k int) *Num {
	if n < 0 {
		panic("symbolic: Binomial of negative n")
	}
	if k < 0 || k > n {
		return N(0)
	}
	return NBig(new(big.Int).Binomial(int64(n), int64(k)))
}

// Symbols returns prefix0, prefix1, ... prefix{count-1}.
func Symbols(prefix string, count int) []Expr {
	out := make([]Expr, count)
	for i := range out {
		out[i] = S(prefix + strconv.Itoa(i))
	}
	return out
}

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// Sum builds a sum without simplifying it. Use it for large intermediate
// sums that are passed to Canonicalize right after.
func Sum(terms ...Expr) Expr {
	switch len(terms) {
	case 0:
		return N(0)
	case 1:
		return terms[0]
	}
	return &Add{terms: terms}
}

// Product is the unsimplified counterpart of MulOf.
func Product(factors ...Expr) Expr {
	switch len(factors) {
	case 0:
		return N(1)
	case 1:
		return factors[0]
	}
	return &Mul{factors: factors}
}
