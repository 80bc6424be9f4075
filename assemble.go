package logtower

import "github.com/njchilds90/logtower/symbolic"

// GenerateAn returns P(A_n) on a fresh Engine:
//
//	R0 * (h[n] - sum_{k<n} C(n,k) h[k] Phi_{n-k-1}) + sum_{k<n} C(n,k) h[k] Gamma_{n-k-1}
//
// It needs len(h) >= n+1 and len(F), len(G) >= n. The result is canonical.
func GenerateAn(n int, h, F, G Sequence, R0 symbolic.Expr, opts ...Option) (symbolic.Expr, error) {
	return NewEngine(opts...).GenerateAn(n, h, F, G, R0)
}

// GenerateRn returns P(R_n) = Gamma_{n-1} - R0 * Phi_{n-1} on a fresh Engine,
// or R0 for n = 0. It needs len(F), len(G) >= n.
func GenerateRn(n int, F, G Sequence, R0 symbolic.Expr, opts ...Option) (symbolic.Expr, error) {
	return NewEngine(opts...).GenerateRn(n, F, G, R0)
}

// GenerateAn is the package level GenerateAn on e, reusing its cache.
func (e *Engine) GenerateAn(n int, h, F, G Sequence, R0 symbolic.Expr) (symbolic.Expr, error) {
	if err := checkDegree(n); err != nil {
		return nil, err
	}
	if err := need("h", h, n+1, n); err != nil {
		return nil, err
	}
	table, err := e.SectorTable(n, F, G)
	if err != nil {
		return nil, err
	}

	phiTerms := make([]symbolic.Expr, 0, n)
	gammaTerms := make([]symbolic.Expr, 0, n)
	for k := 0; k < n; k++ {
		s := table[n-k-1]
		c := symbolic.Binomial(n, k)
		phiTerms = append(phiTerms, symbolic.Product(c, h[k], s.Phi))
		gammaTerms = append(gammaTerms, symbolic.Product(c, h[k], s.Gamma))
	}
	decay := symbolic.Sum(h[n], symbolic.Product(symbolic.N(-1), symbolic.Sum(phiTerms...)))
	result := symbolic.Sum(symbolic.Product(R0, decay), symbolic.Sum(gammaTerms...))
	out := symbolic.Canonicalize(result)
	e.log.Debug("generated P(A_n)", "n", n, "terms", symbolic.TermCount(out))
	return out, nil
}

// GenerateRn is the package level GenerateRn on e, reusing its cache.
func (e *Engine) GenerateRn(n int, F, G Sequence, R0 symbolic.Expr) (symbolic.Expr, error) {
	if err := checkDegree(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return symbolic.Canonicalize(R0), nil
	}
	if err := need("F", F, n, n); err != nil {
		return nil, err
	}
	if err := need("G", G, n, n); err != nil {
		return nil, err
	}
	idx := n - 1
	g, err := e.Gamma(idx, F, G)
	if err != nil {
		return nil, err
	}
	p, err := mapPhi(idx, g, F, G)
	if err != nil {
		return nil, err
	}
	out := symbolic.Canonicalize(symbolic.Sum(g, symbolic.Product(symbolic.N(-1), R0, p)))
	e.log.Debug("generated P(R_n)", "n", n, "terms", symbolic.TermCount(out))
	return out, nil
}
