package logtower

import (
	"fmt"

	"github.com/njchilds90/logtower/symbolic"
)

// Strategy names one of the two equivalent ways to compute Gamma_n.
type Strategy int

const (
	// ClosedForm evaluates the closed double Bell sum
	//
	//	Gamma_n = sum_{m=0}^{n} C(n+1, m+1) B_{n-m}(-F) Inner(m)
	//	Inner(m) = sum_{j=0}^{m} C(m, j) G_j B_{m-j}(F)
	ClosedForm Strategy = iota

	// RecursiveConvolution evaluates
	//
	//	Gamma_n = G_n - sum_{k=0}^{n-1} C(n, k) F_k Gamma_{n-1-k}
	//
	// with lower degrees obtained through the engine's dispatcher.
	RecursiveConvolution
)

func (s Strategy) String() string {
	switch s {
	case ClosedForm:
		return "closed_form"
	case RecursiveConvolution:
		return "recursive_convolution"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "closed_form":
		return ClosedForm, nil
	case "recursive_convolution":
		return RecursiveConvolution, nil
	}
	return 0, fmt.Errorf("logtower: unknown strategy %q", name)
}

// SelectStrategy is the dispatch predicate: closed form for n <= threshold.
func SelectStrategy(n, threshold int) Strategy {
	if n <= threshold {
		return ClosedForm
	}
	return RecursiveConvolution
}

// gamma runs the strategy for degree n. Sequence lengths are checked by the
// caller.
func (s Strategy) gamma(e *Engine, n int, F, G Sequence) (symbolic.Expr, error) {
	switch s {
	case ClosedForm:
		return closedGamma(n, F, G), nil
	case RecursiveConvolution:
		return e.convolutionGamma(n, F, G)
	}
	panic(fmt.Sprintf("logtower: unknown strategy %d", int(s)))
}

func closedGamma(n int, F, G Sequence) symbolic.Expr {
	negF := make(Sequence, n)
	for i := range negF {
		negF[i] = symbolic.Neg(F[i])
	}
	pos := bellTable(n, F[:n])
	neg := bellTable(n, negF)

	outer := make([]symbolic.Expr, 0, n+1)
	for m := 0; m <= n; m++ {
		inner := make([]symbolic.Expr, 0, m+1)
		for j := 0; j <= m; j++ {
			inner = append(inner, symbolic.Product(symbolic.Binomial(m, j), G[j], pos[m-j]))
		}
		outer = append(outer, symbolic.Product(
			symbolic.Binomial(n+1, m+1),
			neg[n-m],
			symbolic.Sum(inner...),
		))
	}
	return symbolic.Canonicalize(symbolic.Sum(outer...))
}

func (e *Engine) convolutionGamma(n int, F, G Sequence) (symbolic.Expr, error) {
	terms := make([]symbolic.Expr, 0, n+1)
	terms = append(terms, G[n])
	for k := 0; k < n; k++ {
		sub, err := e.gamma(n-1-k, F, G)
		if err != nil {
			return nil, err
		}
		terms = append(terms, symbolic.Product(symbolic.N(-1), symbolic.Binomial(n, k), F[k], sub))
	}
	return symbolic.Canonicalize(symbolic.Sum(terms...)), nil
}
