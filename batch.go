package logtower

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/logtower/symbolic"
)

// Kind selects the target polynomial of a Request.
type Kind int

const (
	KindA Kind = iota // P(A_n)
	KindR             // P(R_n)
)

func (k Kind) String() string {
	if k == KindR {
		return "R"
	}
	return "A"
}

// Request is one independent top-level generation. H is ignored for KindR.
type Request struct {
	Kind Kind
	N    int
	H    Sequence
	F    Sequence
	G    Sequence
	R0   symbolic.Expr
}

// Result carries the outcome of one Request.
type Result struct {
	Request Request
	Expr    symbolic.Expr
	Err     error
}

// GenerateBatch runs independent requests concurrently, at most limit at a
// time (limit <= 0 means no limit). Every request gets its own Engine and
// cache; a cache passed through WithCache is not shared between requests.
//
// Once ctx is done, requests that have not started get ctx.Err() as their
// error. Requests already running finish normally. The returned error is
// ctx.Err().
func GenerateBatch(ctx context.Context, reqs []Request, limit int, opts ...Option) ([]Result, error) {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		results[i].Request = req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Expr, results[i].Err = req.run(opts)
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

func (r Request) run(opts []Option) (symbolic.Expr, error) {
	e := NewEngine(opts...)
	e.cache = NewGammaCache()
	if r.Kind == KindR {
		return e.GenerateRn(r.N, r.F, r.G, r.R0)
	}
	return e.GenerateAn(r.N, r.H, r.F, r.G, r.R0)
}
