package logtower_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/logtower"
	"github.com/njchilds90/logtower/symbolic"
)

var (
	h  = logtower.Symbols("h", seqLen)
	R0 = symbolic.S("R0")
)

func TestGenerateAn_Zero(t *testing.T) {
	got, err := logtower.GenerateAn(0, h[:1], nil, nil, R0)
	require.NoError(t, err)
	require.True(t, symbolic.Equivalent(got, symbolic.MulOf(R0, h[0])))
}

func TestGenerateAn_One(t *testing.T) {
	got, err := logtower.GenerateAn(1, h[:2], F[:1], G[:1], R0)
	require.NoError(t, err)
	want := symbolic.AddOf(
		symbolic.MulOf(R0, h[1]),
		symbolic.MulOf(h[0], G[0]),
		symbolic.Neg(symbolic.MulOf(R0, h[0], F[0])),
	)
	require.True(t, symbolic.Equivalent(got, want), "got %s", got)
	require.Equal(t, 3, symbolic.TermCount(got))
}

func TestGenerateAn_Two(t *testing.T) {
	got, err := logtower.GenerateAn(2, h[:3], F[:2], G[:2], R0)
	require.NoError(t, err)
	want := symbolic.AddOf(
		symbolic.MulOf(R0, h[2]),
		symbolic.Neg(symbolic.MulOf(R0, h[0], F[1])),
		symbolic.MulOf(R0, h[0], symbolic.PowOf(F[0], symbolic.N(2))),
		symbolic.MulOf(symbolic.N(-2), R0, h[1], F[0]),
		symbolic.MulOf(h[0], G[1]),
		symbolic.Neg(symbolic.MulOf(h[0], F[0], G[0])),
		symbolic.MulOf(symbolic.N(2), h[1], G[0]),
	)
	require.True(t, symbolic.Equivalent(got, want), "got %s", got)
}

func TestGenerateRn(t *testing.T) {
	r0, err := logtower.GenerateRn(0, nil, nil, R0)
	require.NoError(t, err)
	require.True(t, r0.Equal(R0))

	r1, err := logtower.GenerateRn(1, F[:1], G[:1], R0)
	require.NoError(t, err)
	require.True(t, symbolic.Equivalent(r1, symbolic.Minus(G[0], symbolic.MulOf(R0, F[0]))))

	// R'' = G1 - F0*G0 + R0*(F0^2 - F1)
	r2, err := logtower.GenerateRn(2, F[:2], G[:2], R0)
	require.NoError(t, err)
	want := symbolic.AddOf(
		G[1],
		symbolic.Neg(symbolic.MulOf(F[0], G[0])),
		symbolic.MulOf(R0, symbolic.PowOf(F[0], symbolic.N(2))),
		symbolic.Neg(symbolic.MulOf(R0, F[1])),
	)
	require.True(t, symbolic.Equivalent(r2, want), "got %s", r2)
}

func TestGenerateAn_IsLeibnizOverRn(t *testing.T) {
	// A_n = sum_k C(n,k) h_k R_{n-k}
	for n := 0; n <= 6; n++ {
		got, err := logtower.GenerateAn(n, h, F, G, R0)
		require.NoError(t, err)

		terms := make([]symbolic.Expr, 0, n+1)
		for k := 0; k <= n; k++ {
			r, err := logtower.GenerateRn(n-k, F, G, R0)
			require.NoError(t, err)
			terms = append(terms, symbolic.Product(symbolic.Binomial(n, k), h[k], r))
		}
		require.True(t, symbolic.Equivalent(got, symbolic.Sum(terms...)), "n=%d", n)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	a, err := logtower.GenerateAn(6, h, F, G, R0)
	require.NoError(t, err)
	b, err := logtower.GenerateAn(6, h, F, G, R0)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.Equal(t, a.String(), b.String())

	e := logtower.NewEngine()
	c, err := e.GenerateAn(6, h, F, G, R0)
	require.NoError(t, err)
	d, err := e.GenerateAn(6, h, F, G, R0)
	require.NoError(t, err)
	require.True(t, a.Equal(c))
	require.True(t, c.Equal(d))
}

func TestGenerate_ThresholdIndependent(t *testing.T) {
	want, err := logtower.GenerateAn(7, h, F, G, R0)
	require.NoError(t, err)
	for _, threshold := range []int{-1, 0, 3, 10} {
		got, err := logtower.GenerateAn(7, h, F, G, R0, logtower.WithThreshold(threshold))
		require.NoError(t, err)
		require.True(t, want.Equal(got), "T=%d", threshold)
	}
}

func TestGenerate_EngineReuseAcrossSequences(t *testing.T) {
	e := logtower.NewEngine()
	H := logtower.Symbols("H", seqLen)
	_, err := e.GenerateAn(5, h, F, G, R0)
	require.NoError(t, err)

	got, err := e.GenerateRn(5, F, H, R0)
	require.NoError(t, err)
	want, err := logtower.GenerateRn(5, F, H, R0)
	require.NoError(t, err)
	require.True(t, want.Equal(got))
}

func TestGenerate_OutOfRange(t *testing.T) {
	_, err := logtower.GenerateAn(3, h[:3], F, G, R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = logtower.GenerateAn(3, h, F[:2], G, R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = logtower.GenerateAn(3, h, F, G[:2], R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = logtower.GenerateAn(-1, h, F, G, R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)

	_, err = logtower.GenerateRn(3, F[:2], G, R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = logtower.GenerateRn(3, F, G[:2], R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
	_, err = logtower.GenerateRn(-2, F, G, R0)
	require.ErrorIs(t, err, logtower.ErrIndexOutOfRange)
}

func TestGenerate_NonSymbolG(t *testing.T) {
	nums := logtower.Sequence{symbolic.N(1), symbolic.N(2), symbolic.N(3)}
	_, err := logtower.GenerateAn(2, h, F, nums, R0)
	require.ErrorIs(t, err, logtower.ErrAlgebra)
	require.ErrorIs(t, err, symbolic.ErrNotSymbol)

	_, err = logtower.GenerateRn(2, F, nums, R0)
	require.ErrorIs(t, err, logtower.ErrAlgebra)
}

func TestGenerate_DoesNotModifyInputs(t *testing.T) {
	f := append(logtower.Sequence(nil), F[:4]...)
	g := append(logtower.Sequence(nil), G[:4]...)
	_, err := logtower.GenerateAn(4, h, f, g, R0, logtower.WithThreshold(1))
	require.NoError(t, err)
	for i := range f {
		require.True(t, f[i].Equal(F[i]))
		require.True(t, g[i].Equal(G[i]))
	}
}
