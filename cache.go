package logtower

import "github.com/njchilds90/logtower/symbolic"

// GammaCache maps a degree to its computed Gamma expression.
//
// Gamma_n depends on F[0..n-1] and G[0..n] only, so the cache stays valid
// while callers pass sequences that agree with the ones it was filled for on
// their common prefix. Any disagreement clears it.
type GammaCache struct {
	vals map[int]symbolic.Expr
	f, g Sequence
}

func NewGammaCache() *GammaCache {
	return &GammaCache{vals: map[int]symbolic.Expr{}}
}

// Len returns the number of cached degrees.
func (c *GammaCache) Len() int { return len(c.vals) }

// Reset drops every cached value and the bound sequences.
func (c *GammaCache) Reset() {
	c.vals = map[int]symbolic.Expr{}
	c.f, c.g = nil, nil
}

func (c *GammaCache) get(n int) (symbolic.Expr, bool) {
	v, ok := c.vals[n]
	return v, ok
}

func (c *GammaCache) put(n int, v symbolic.Expr) { c.vals[n] = v }

// bind ties the cache to (F, G) and reports whether it had to be cleared.
func (c *GammaCache) bind(F, G Sequence) bool {
	reset := !samePrefix(c.f, F) || !samePrefix(c.g, G)
	if reset {
		c.Reset()
	}
	if len(F) > len(c.f) {
		c.f = F
	}
	if len(G) > len(c.g) {
		c.g = G
	}
	return reset
}

func samePrefix(a, b Sequence) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
