// Package logtower derives closed-form polynomials for the n-th derivative
// coefficients of log-tower functions
//
//	A(x) = h(x) * ln(g(x)) / ln(f(x))
//
// in terms of the coefficient sequences F_n, G_n, h_n and the base ratio
// R0 = ln(g)/ln(f), where
//
//	F_n = d^n/dx^n [ f' / (f ln f) ]
//	G_n = d^n/dx^n [ g' / (g ln f) ]
//
// Two coupled sectors drive every result:
//
//	Gamma_n  forcing sector, a polynomial in F and G
//	Phi_n    decay sector, Gamma_n with every G_i replaced by F_i
//
// Gamma_n is computed either by a closed double sum over complete Bell
// polynomials or by the direct recursive convolution
//
//	Gamma_n = G_n - sum_{k<n} C(n,k) F_k Gamma_{n-1-k}
//
// and an Engine picks between them per degree (closed form up to a threshold,
// convolution above it). Phi_n is always obtained by substituting G -> F in
// the already built Gamma_n expression.
//
// The public entry points are GenerateAn and GenerateRn:
//
//	P(A_n) = R0 * (h_n - sum_k C(n,k) h_k Phi_{n-k-1}) + sum_k C(n,k) h_k Gamma_{n-k-1}
//	P(R_n) = Gamma_{n-1} - R0 * Phi_{n-1}
//
// Each call owns a fresh Engine and Gamma cache, so independent calls may run
// concurrently. All expressions come from the symbolic subpackage.
package logtower
