package logtower_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/logtower"
	"github.com/njchilds90/logtower/symbolic"
)

const seqLen = 14

var (
	F = logtower.Symbols("F", seqLen)
	G = logtower.Symbols("G", seqLen)
)

type sequencePair struct {
	name string
	F, G logtower.Sequence
}

// sequencePairs returns symbolic (F, G) inputs of different shapes.
func sequencePairs() []sequencePair {
	composite := sequencePair{name: "composite"}
	scaled := sequencePair{name: "scaled"}
	for i := 0; i < seqLen; i++ {
		a := symbolic.S(fmt.Sprintf("a%d", i))
		b := symbolic.S(fmt.Sprintf("b%d", i))
		c := symbolic.S(fmt.Sprintf("c%d", i))
		composite.F = append(composite.F, symbolic.AddOf(a, b))
		composite.G = append(composite.G, symbolic.PowOf(c, symbolic.N(2)))

		u := symbolic.S(fmt.Sprintf("u%d", i))
		scaled.F = append(scaled.F, symbolic.MulOf(symbolic.F(int64(i+1), 2), u))
		scaled.G = append(scaled.G, symbolic.AddOf(symbolic.Neg(u), symbolic.N(3)))
	}
	return []sequencePair{
		{name: "symbols", F: F, G: G},
		composite,
		scaled,
	}
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		n, threshold int
		want         logtower.Strategy
	}{
		{0, 5, logtower.ClosedForm},
		{5, 5, logtower.ClosedForm},
		{6, 5, logtower.RecursiveConvolution},
		{0, -1, logtower.RecursiveConvolution},
		{0, 0, logtower.ClosedForm},
		{1, 0, logtower.RecursiveConvolution},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, logtower.SelectStrategy(tt.n, tt.threshold), "n=%d T=%d", tt.n, tt.threshold)
	}
}

func TestStrategy_StringRoundTrip(t *testing.T) {
	for _, s := range []logtower.Strategy{logtower.ClosedForm, logtower.RecursiveConvolution} {
		got, err := logtower.ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := logtower.ParseStrategy("sideways")
	require.Error(t, err)
}

func TestWithThreshold_RejectsBelowMinusOne(t *testing.T) {
	require.Panics(t, func() { logtower.WithThreshold(-2) })
	require.Equal(t, -1, logtower.NewEngine(logtower.WithThreshold(-1)).Threshold())
	require.Equal(t, logtower.DefaultThreshold, logtower.NewEngine().Threshold())
}

func TestGamma_LowDegrees(t *testing.T) {
	e := logtower.NewEngine()

	g0, err := e.Gamma(0, nil, G[:1])
	require.NoError(t, err)
	require.True(t, g0.Equal(G[0]))

	g1, err := e.Gamma(1, F, G)
	require.NoError(t, err)
	require.True(t, symbolic.Equivalent(g1, symbolic.Minus(G[1], symbolic.MulOf(F[0], G[0]))))

	// G2 - F0*G1 + F0^2*G0 - 2*F1*G0
	g2, err := e.Gamma(2, F, G)
	require.NoError(t, err)
	want := symbolic.AddOf(
		G[2],
		symbolic.Neg(symbolic.MulOf(F[0], G[1])),
		symbolic.MulOf(symbolic.PowOf(F[0], symbolic.N(2)), G[0]),
		symbolic.MulOf(symbolic.N(-2), F[1], G[0]),
	)
	require.True(t, symbolic.Equivalent(g2, want), "got %s", g2)
}

func TestPhi_ZeroIsF0(t *testing.T) {
	p0, err := logtower.NewEngine().Phi(0, F, G)
	require.NoError(t, err)
	require.True(t, p0.Equal(F[0]))
}

func TestGamma_BranchEquivalenceAroundThreshold(t *testing.T) {
	for _, threshold := range []int{logtower.DefaultThreshold, 2} {
		for _, in := range sequencePairs() {
			for n := threshold - 1; n <= threshold+1; n++ {
				name := fmt.Sprintf("T=%d/%s/n=%d", threshold, in.name, n)
				closed, err := logtower.NewEngine(logtower.WithThreshold(threshold)).
					GammaUsing(logtower.ClosedForm, n, in.F, in.G)
				require.NoError(t, err, name)
				conv, err := logtower.NewEngine(logtower.WithThreshold(threshold)).
					GammaUsing(logtower.RecursiveConvolution, n, in.F, in.G)
				require.NoError(t, err, name)
				require.True(t, closed.Equal(conv), "%s: closed %s != convolution %s", name, closed, conv)
			}
		}
	}
}

func TestGamma_ThresholdIndependent(t *testing.T) {
	for n := 0; n <= 10; n++ {
		var first symbolic.Expr
		for _, threshold := range []int{-1, 0, 3, logtower.DefaultThreshold, 10} {
			g, err := logtower.NewEngine(logtower.WithThreshold(threshold)).Gamma(n, F, G)
			require.NoError(t, err)
			if first == nil {
				first = g
				continue
			}
			require.True(t, first.Equal(g), "n=%d T=%d", n, threshold)
		}
	}
}

func TestGamma_DeepDegreeFillsBottomUp(t *testing.T) {
	e := logtower.NewEngine(logtower.WithThreshold(-1))
	g, err := e.Gamma(12, F, G)
	require.NoError(t, err)
	require.Equal(t, 13, e.Cache().Len())
	require.Contains(t, symbolic.FreeSymbols(g), "G12")
	require.NotContains(t, symbolic.FreeSymbols(g), "F12")
}

// phiByRecursion evaluates Phi_n = F_n - sum_k C(n,k) F_k Phi_{n-1-k}
// directly, independent of the G -> F mapping.
func phiByRecursion(n int, F logtower.Sequence) symbolic.Expr {
	table := make([]symbolic.Expr, n+1)
	for d := 0; d <= n; d++ {
		terms := []symbolic.Expr{F[d]}
		for k := 0; k < d; k++ {
			terms = append(terms, symbolic.Product(symbolic.N(-1), symbolic.Binomial(d, k), F[k], table[d-1-k]))
		}
		table[d] = symbolic.Canonicalize(symbolic.Sum(terms...))
	}
	return table[n]
}

func TestPhi_IsGammaWithGMappedToF(t *testing.T) {
	e := logtower.NewEngine()
	for n := 0; n <= 6; n++ {
		phi, err := e.Phi(n, F, G)
		require.NoError(t, err)

		require.True(t, phi.Equal(phiByRecursion(n, F)), "n=%d: %s", n, phi)

		for name := range symbolic.FreeSymbols(phi) {
			require.False(t, strings.HasPrefix(name, "G"), "n=%d: phi mentions %s", n, name)
		}

		direct, err := logtower.NewEngine().Gamma(n, F, logtower.Sequence(F))
		require.NoError(t, err)
		require.True(t, phi.Equal(direct), "n=%d", n)
	}
}

func TestPhi_NonSymbolG(t *testing.T) {
	nums := logtower.Sequence{symbolic.N(1), symbolic.N(2), symbolic.N(3)}
	_, err := logtower.NewEngine().Phi(2, F, nums)
	require.ErrorIs(t, err, logtower.ErrAlgebra)
	require.ErrorIs(t, err, symbolic.ErrNotSymbol)

	// Gamma itself does not need symbols.
	_, err = logtower.NewEngine().Gamma(2, F, nums)
	require.NoError(t, err)
}

func TestSectorTable(t *testing.T) {
	e := logtower.NewEngine()
	table, err := e.SectorTable(7, F, G)
	require.NoError(t, err)
	require.Len(t, table, 7)
	for k, s := range table {
		require.Equal(t, k, s.Degree)
		g, err := logtower.NewEngine().Gamma(k, F, G)
		require.NoError(t, err)
		require.True(t, s.Gamma.Equal(g), "gamma %d", k)
		p, err := logtower.NewEngine().Phi(k, F, G)
		require.NoError(t, err)
		require.True(t, s.Phi.Equal(p), "phi %d", k)
	}
	require.Equal(t, 7, e.Cache().Len())

	empty, err := e.SectorTable(0, nil, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSectors_OutOfRange(t *testing.T) {
	e := logtower.NewEngine()
	_, err := e.Gamma(3, F[:2], G)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = e.Gamma(3, F, G[:3])
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = e.Gamma(-1, F, G)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = e.Phi(2, F[:2], G)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = e.SectorTable(4, F[:3], G)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = e.GammaUsing(logtower.ClosedForm, 4, F, G[:4])
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
}

func TestGammaCache_ResetsOnNewSequences(t *testing.T) {
	e := logtower.NewEngine()
	H := logtower.Symbols("H", seqLen)

	first, err := e.Gamma(3, F, G)
	require.NoError(t, err)
	require.Equal(t, 1, e.Cache().Len())

	second, err := e.Gamma(3, F, H)
	require.NoError(t, err)
	require.False(t, first.Equal(second))

	fresh, err := logtower.NewEngine().Gamma(3, F, H)
	require.NoError(t, err)
	require.True(t, second.Equal(fresh))
	require.Equal(t, 1, e.Cache().Len())
}

func TestGammaCache_KeepsAgreeingPrefix(t *testing.T) {
	e := logtower.NewEngine()
	_, err := e.Gamma(2, F[:2], G[:3])
	require.NoError(t, err)
	_, err = e.Gamma(4, F, G)
	require.NoError(t, err)
	require.Equal(t, 2, e.Cache().Len())

	e.Cache().Reset()
	require.Equal(t, 0, e.Cache().Len())
}

func TestWithCache_Shared(t *testing.T) {
	c := logtower.NewGammaCache()
	e := logtower.NewEngine(logtower.WithCache(c))
	_, err := e.GenerateAn(4, logtower.Symbols("h", 5), F, G, symbolic.S("R0"))
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())
	require.Same(t, c, e.Cache())

	require.Panics(t, func() { logtower.WithCache(nil) })
	require.Panics(t, func() { logtower.WithLogger(nil) })
}

func TestEngine_LogsPerDegree(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	e := logtower.NewEngine(logtower.WithLogger(logger), logtower.WithThreshold(2))

	_, err := e.Gamma(4, F, G)
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "gamma computed")
	require.Contains(t, out, "closed_form")
	require.Contains(t, out, "recursive_convolution")

	buf.Reset()
	_, err = e.Gamma(4, F, logtower.Symbols("H", seqLen))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "gamma cache reset")
}
