package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Canonical polynomial form
// ============================================================
//
// An expression is normalized into a sum of monomials with exact rational
// coefficients. A monomial is a product of atoms raised to non-zero integer
// exponents, negative exponents included, so Laurent polynomials such as
// f1*f0^(-1) are closed under the arithmetic. Atoms are symbols plus any
// subexpression that is not polynomial in them: ln(...), a non-integer power,
// or the reciprocal of a sum. Reciprocals of sums are never reduced against
// the sum itself.

// MaxExponent bounds the integer exponents that are expanded. Larger powers
// stay opaque atoms, and FromJSON rejects them.
const MaxExponent = 1 << 16

// maxExpand bounds the power to which a sum of several terms is multiplied
// out.
const maxExpand = 64

type factor struct {
	key  string
	atom Expr
	exp  int
}

// monomial factors are sorted by key and never carry a zero exponent.
type monomial []factor

func (m monomial) key() string {
	var sb strings.Builder
	for i, f := range m {
		if i > 0 {
			sb.WriteByte(0)
		}
		sb.WriteString(f.key)
		sb.WriteByte(1)
		sb.WriteString(strconv.Itoa(f.exp))
	}
	return sb.String()
}

func (m monomial) degree() int {
	d := 0
	for _, f := range m {
		d += f.exp
	}
	return d
}

func mulMono(a, b monomial) monomial {
	out := make(monomial, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].key < b[j].key:
			out = append(out, a[i])
			i++
		case a[i].key > b[j].key:
			out = append(out, b[j])
			j++
		default:
			if e := addExp(a[i].exp, b[j].exp); e != 0 {
				out = append(out, factor{key: a[i].key, atom: a[i].atom, exp: e})
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

type pterm struct {
	mono  monomial
	coeff *big.Rat
}

type poly struct{ terms map[string]*pterm }

func newPoly() *poly { return &poly{terms: map[string]*pterm{}} }

func constPoly(r *big.Rat) *poly {
	p := newPoly()
	p.addTerm(nil, r)
	return p
}

func atomPoly(key string, atom Expr) *poly {
	p := newPoly()
	p.addTerm(monomial{{key: key, atom: atom, exp: 1}}, big.NewRat(1, 1))
	return p
}

func (p *poly) addTerm(mono monomial, c *big.Rat) {
	if c.Sign() == 0 {
		return
	}
	k := mono.key()
	if t, ok := p.terms[k]; ok {
		t.coeff = new(big.Rat).Add(t.coeff, c)
		if t.coeff.Sign() == 0 {
			delete(p.terms, k)
		}
		return
	}
	p.terms[k] = &pterm{mono: mono, coeff: new(big.Rat).Set(c)}
}

func (p *poly) add(q *poly) *poly {
	out := newPoly()
	for _, t := range p.terms {
		out.addTerm(t.mono, t.coeff)
	}
	for _, t := range q.terms {
		out.addTerm(t.mono, t.coeff)
	}
	return out
}

func (p *poly) neg() *poly {
	out := newPoly()
	for _, t := range p.terms {
		out.addTerm(t.mono, new(big.Rat).Neg(t.coeff))
	}
	return out
}

func (p *poly) mul(q *poly) *poly {
	out := newPoly()
	for _, a := range p.terms {
		for _, b := range q.terms {
			out.addTerm(mulMono(a.mono, b.mono), new(big.Rat).Mul(a.coeff, b.coeff))
		}
	}
	return out
}

// pow raises p to n >= 0 by repeated squaring.
func (p *poly) pow(n int) *poly {
	result := constPoly(big.NewRat(1, 1))
	for sq := p; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = result.mul(sq)
		}
		if n > 1 {
			sq = sq.mul(sq)
		}
	}
	return result
}

func (p *poly) isZero() bool { return len(p.terms) == 0 }

func (p *poly) single() (*pterm, bool) {
	if len(p.terms) != 1 {
		return nil, false
	}
	for _, t := range p.terms {
		return t, true
	}
	return nil, false
}

// constant returns the value of p when it has no atoms.
func (p *poly) constant() (*big.Rat, bool) {
	if p.isZero() {
		return new(big.Rat), true
	}
	t, ok := p.single()
	if !ok || len(t.mono) != 0 {
		return nil, false
	}
	return t.coeff, true
}

// termPow raises a single-term polynomial to any integer power by scaling
// its exponents. It reports false when an exponent would overflow.
func termPow(t *pterm, k int) (*poly, bool) {
	if k < 0 && t.coeff.Sign() == 0 {
		panic("symbolic: division by zero")
	}
	mono := make(monomial, len(t.mono))
	for i, f := range t.mono {
		e, ok := mulExp(f.exp, k)
		if !ok {
			return nil, false
		}
		mono[i] = factor{key: f.key, atom: f.atom, exp: e}
	}
	out := newPoly()
	out.addTerm(mono, numPow(&Num{val: t.coeff}, k).val)
	return out, true
}

// addExp and mulExp are overflow-checked exponent arithmetic.
func addExp(a, b int) int {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		panic("symbolic: exponent overflow")
	}
	return s
}

func mulExp(a, k int) (int, bool) {
	if a == 0 || k == 0 {
		return 0, true
	}
	p := a * k
	if p/k != a || (a == -1 && k == math.MinInt) || (k == -1 && a == math.MinInt) {
		return 0, false
	}
	return p, true
}

func atomKey(e Expr) string {
	if s, ok := e.(*Sym); ok {
		return s.name
	}
	return "\x02" + e.String()
}

func toPoly(e Expr) *poly {
	switch v := e.(type) {
	case *Num:
		return constPoly(v.val)
	case *Sym:
		return atomPoly(v.name, v)
	case *Add:
		out := newPoly()
		for _, t := range v.terms {
			for _, pt := range toPoly(t).terms {
				out.addTerm(pt.mono, pt.coeff)
			}
		}
		return out
	case *Mul:
		out := constPoly(big.NewRat(1, 1))
		for _, f := range v.factors {
			out = out.mul(toPoly(f))
			if out.isZero() {
				return out
			}
		}
		return out
	case *Pow:
		return powPoly(toPoly(v.base), toPoly(v.exp))
	case *Func:
		atom := funcOf(v.name, toPoly(v.arg).expr())
		return atomPoly(atomKey(atom), atom)
	}
	// Unknown node types are kept whole.
	return atomPoly(atomKey(e), e)
}

func powPoly(base, exp *poly) *poly {
	c, isConst := exp.constant()
	if !isConst {
		atom := &Pow{base: base.expr(), exp: exp.expr()}
		return atomPoly(atomKey(atom), atom)
	}
	if !c.IsInt() || !c.Num().IsInt64() {
		atom := &Pow{base: base.expr(), exp: &Num{val: c}}
		return atomPoly(atomKey(atom), atom)
	}
	k := c.Num().Int64()
	if k > MaxExponent || k < -MaxExponent {
		atom := &Pow{base: base.expr(), exp: &Num{val: c}}
		return atomPoly(atomKey(atom), atom)
	}
	n := int(k)
	if t, ok := base.single(); ok {
		if out, ok := termPow(t, n); ok {
			return out
		}
		atom := &Pow{base: base.expr(), exp: &Num{val: c}}
		return atomPoly(atomKey(atom), atom)
	}
	if n < 0 {
		atom := &Pow{base: base.expr(), exp: N(-1)}
		t, _ := atomPoly(atomKey(atom), atom).single()
		out, _ := termPow(t, -n)
		return out
	}
	if n > maxExpand {
		atom := &Pow{base: base.expr(), exp: &Num{val: c}}
		return atomPoly(atomKey(atom), atom)
	}
	return base.pow(n)
}

func (t *pterm) expr() Expr {
	factors := make([]Expr, 0, len(t.mono)+1)
	if t.coeff.Cmp(ratOne) != 0 {
		factors = append(factors, &Num{val: new(big.Rat).Set(t.coeff)})
	}
	for _, f := range t.mono {
		if f.exp == 1 {
			factors = append(factors, f.atom)
		} else {
			factors = append(factors, &Pow{base: f.atom, exp: N(int64(f.exp))})
		}
	}
	switch len(factors) {
	case 0:
		return &Num{val: new(big.Rat).Set(t.coeff)}
	case 1:
		return factors[0]
	}
	return &Mul{factors: factors}
}

// expr orders terms by total degree, then by monomial key.
func (p *poly) expr() Expr {
	if p.isZero() {
		return N(0)
	}
	type keyed struct {
		key string
		deg int
		t   *pterm
	}
	ks := make([]keyed, 0, len(p.terms))
	for k, t := range p.terms {
		ks = append(ks, keyed{key: k, deg: t.mono.degree(), t: t})
	}
	sort.Slice(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg < ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	if len(ks) == 1 {
		return ks[0].t.expr()
	}
	terms := make([]Expr, len(ks))
	for i, k := range ks {
		terms[i] = k.t.expr()
	}
	return &Add{terms: terms}
}

// Canonicalize expands e and collects like terms into the canonical
// polynomial form. Two expressions that are equal as Laurent polynomials in
// their atoms canonicalize to structurally Equal results.
func Canonicalize(e Expr) Expr { return toPoly(e).expr() }

// Equivalent reports whether a - b canonicalizes to zero.
func Equivalent(a, b Expr) bool { return toPoly(a).add(toPoly(b).neg()).isZero() }

// IsZero reports whether e canonicalizes to zero.
func IsZero(e Expr) bool { return toPoly(e).isZero() }

// TermCount is the number of top-level terms of e; 0 for the number zero.
func TermCount(e Expr) int {
	switch v := e.(type) {
	case *Add:
		return len(v.terms)
	case *Num:
		if v.IsZero() {
			return 0
		}
	}
	return 1
}
