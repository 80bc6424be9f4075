package logtower

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/njchilds90/logtower/symbolic"
)

// Engine computes the Gamma and Phi sectors for one (F, G) pair.
//
// An Engine owns its GammaCache and is not safe for concurrent use. The
// package level GenerateAn and GenerateRn build a fresh Engine per call; hold
// an Engine yourself only to reuse its cache across calls that share F and G.
type Engine struct {
	threshold int
	cache     *GammaCache
	log       *log.Logger
}

// Sector pairs Gamma_k with its mapped Phi_k.
type Sector struct {
	Degree int
	Gamma  symbolic.Expr
	Phi    symbolic.Expr
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		threshold: DefaultThreshold,
		cache:     NewGammaCache(),
		log:       discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the dispatch threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Cache returns the engine's Gamma cache.
func (e *Engine) Cache() *GammaCache { return e.cache }

// Gamma returns Gamma_n. It needs len(G) >= n+1 and len(F) >= n.
func (e *Engine) Gamma(n int, F, G Sequence) (symbolic.Expr, error) {
	if err := checkGamma(n, F, G); err != nil {
		return nil, err
	}
	e.bind(F, G)
	return e.gamma(n, F, G)
}

// GammaUsing computes Gamma_n with the top level forced to s. Lower degrees
// still go through the dispatcher and the cache; degree n itself is neither
// read from nor written to the cache.
func (e *Engine) GammaUsing(s Strategy, n int, F, G Sequence) (symbolic.Expr, error) {
	if err := checkGamma(n, F, G); err != nil {
		return nil, err
	}
	e.bind(F, G)
	if s == RecursiveConvolution {
		if err := e.fill(n, F, G); err != nil {
			return nil, err
		}
	}
	return s.gamma(e, n, F, G)
}

// Phi returns Phi_n, Gamma_n with G[i] replaced by F[i] for i = 0..n.
// It needs len(F) >= n+1 and len(G) >= n+1.
func (e *Engine) Phi(n int, F, G Sequence) (symbolic.Expr, error) {
	if err := checkGamma(n, F, G); err != nil {
		return nil, err
	}
	if err := need("F", F, n+1, n); err != nil {
		return nil, err
	}
	g, err := e.Gamma(n, F, G)
	if err != nil {
		return nil, err
	}
	return mapPhi(n, g, F, G)
}

// SectorTable returns Gamma_k and Phi_k for k = 0..n-1, computing each
// Gamma once. It needs len(F) >= n and len(G) >= n.
func (e *Engine) SectorTable(n int, F, G Sequence) ([]Sector, error) {
	if err := checkDegree(n); err != nil {
		return nil, err
	}
	if err := need("F", F, n, n); err != nil {
		return nil, err
	}
	if err := need("G", G, n, n); err != nil {
		return nil, err
	}
	e.bind(F, G)
	table := make([]Sector, n)
	for k := 0; k < n; k++ {
		g, err := e.gamma(k, F, G)
		if err != nil {
			return nil, err
		}
		p, err := mapPhi(k, g, F, G)
		if err != nil {
			return nil, err
		}
		table[k] = Sector{Degree: k, Gamma: g, Phi: p}
	}
	return table, nil
}

func (e *Engine) bind(F, G Sequence) {
	if e.cache.bind(F, G) {
		e.log.Debug("gamma cache reset", "reason", "sequences changed")
	}
}

// gamma is the hybrid dispatcher. Degrees above the threshold are filled
// bottom-up first, so the convolution only ever looks one level down.
func (e *Engine) gamma(n int, F, G Sequence) (symbolic.Expr, error) {
	if v, ok := e.cache.get(n); ok {
		return v, nil
	}
	s := SelectStrategy(n, e.threshold)
	if s == RecursiveConvolution {
		if err := e.fill(n, F, G); err != nil {
			return nil, err
		}
	}
	return e.compute(s, n, F, G)
}

// fill caches every degree in (threshold, n) that is not cached yet.
func (e *Engine) fill(n int, F, G Sequence) error {
	start := e.threshold + 1
	if start < 0 {
		start = 0
	}
	for d := start; d < n; d++ {
		if _, ok := e.cache.get(d); ok {
			continue
		}
		if _, err := e.compute(RecursiveConvolution, d, F, G); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) compute(s Strategy, n int, F, G Sequence) (symbolic.Expr, error) {
	v, err := s.gamma(e, n, F, G)
	if err != nil {
		return nil, err
	}
	e.cache.put(n, v)
	e.log.Debug("gamma computed", "degree", n, "strategy", s, "terms", symbolic.TermCount(v))
	return v, nil
}

// mapPhi substitutes G[i] -> F[i], i = 0..n, in a built Gamma_n.
func mapPhi(n int, gamma symbolic.Expr, F, G Sequence) (symbolic.Expr, error) {
	pairs := symbolic.Zip(G[:n+1], F[:n+1])
	phi, err := symbolic.Substitute(gamma, pairs)
	if err != nil {
		return nil, fmt.Errorf("%w: phi degree %d: %w", ErrAlgebra, n, err)
	}
	return symbolic.Canonicalize(phi), nil
}

func checkGamma(n int, F, G Sequence) error {
	if err := checkDegree(n); err != nil {
		return err
	}
	if err := need("G", G, n+1, n); err != nil {
		return err
	}
	return need("F", F, n, n)
}
