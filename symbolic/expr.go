// Package symbolic is the exact expression kernel used by the log-tower
// generator.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - A canonical polynomial form so that two expressions can be compared
//     for algebraic equality, not only structural equality
//   - JSON and LaTeX output for tool-facing callers
package symbolic

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	// Subs replaces every symbol named in m, simultaneously.
	Subs(m map[string]Expr) Expr
	Equal(other Expr) bool
	derive(r Rules) (Expr, error)
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NBig(i *big.Int) *Num { return &Num{val: new(big.Rat).SetInt(i)} }

func (n *Num) Simplify() Expr             { return n }
func (n *Num) Subs(map[string]Expr) Expr  { return n }
func (n *Num) derive(Rules) (Expr, error) { return N(0), nil }
func (n *Num) Equal(other Expr) bool      { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) IsZero() bool               { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsInteger() bool            { return n.val.IsInt() }
func (n *Num) IsNegative() bool           { return n.val.Sign() < 0 }

var ratOne = big.NewRat(1, 1)

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

// smallInt reports the value of n when it is an integer that fits an int.
func (n *Num) smallInt() (int, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	v := n.val.Num().Int64()
	if int64(int(v)) != v {
		return 0, false
	}
	return int(v), true
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

// LaTeX renders a trailing run of digits as a subscript: F12 -> F_{12}.
func (s *Sym) LaTeX() string {
	i := len(s.name)
	for i > 0 && s.name[i-1] >= '0' && s.name[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(s.name) || strings.HasSuffix(s.name[:i], "_") {
		return s.name
	}
	return s.name[:i] + "_{" + s.name[i:] + "}"
}

func (s *Sym) Subs(m map[string]Expr) Expr {
	if v, ok := m[s.name]; ok {
		return v
	}
	return s
}

func (s *Sym) derive(r Rules) (Expr, error) {
	if d, ok := r[s.name]; ok {
		return d, nil
	}
	return N(0), nil
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums and merges terms that differ only in their
// rational coefficient. Terms come out ordered by their printed form, with
// the constant last.
func (a *Add) Simplify() Expr {
	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	var collect func(t Expr)
	collect = func(t Expr) {
		switch v := t.(type) {
		case *Num:
			constant = numAdd(constant, v)
		case *Add:
			for _, inner := range v.terms {
				collect(inner)
			}
		default:
			c, rest := splitCoeff(v)
			k := rest.String()
			if prev, ok := coeffs[k]; ok {
				coeffs[k] = numAdd(prev, c)
				return
			}
			coeffs[k] = c
			rests[k] = rest
		}
	}
	for _, t := range a.terms {
		collect(t.Simplify())
	}

	keys := make([]string, 0, len(coeffs))
	for k, c := range coeffs {
		if !c.IsZero() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	result := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		result = append(result, scale(coeffs[k], rests[k]))
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the leading rational coefficient of a simplified term.
func splitCoeff(t Expr) (*Num, Expr) {
	m, ok := t.(*Mul)
	if !ok {
		return N(1), t
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), t
	}
	if len(m.factors) == 2 {
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

// scale is the inverse of splitCoeff.
func scale(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Subs(m map[string]Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Subs(m)
	}
	return AddOf(newTerms...)
}

func (a *Add) derive(r Rules) (Expr, error) {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		d, err := t.derive(r)
		if err != nil {
			return nil, err
		}
		dTerms[i] = d
	}
	return AddOf(dTerms...), nil
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the rational coefficient to the
// front and merges powers of the same base when both exponents are rational.
func (m *Mul) Simplify() Expr {
	coeff := N(1)
	type power struct {
		base Expr
		exp  *Num
	}
	powers := map[string]*power{}
	var opaque []Expr
	var collect func(f Expr)
	collect = func(f Expr) {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			for _, inner := range v.factors {
				collect(inner)
			}
		default:
			base, exp := Expr(v), N(1)
			if p, ok := v.(*Pow); ok {
				e, isNum := p.exp.(*Num)
				if !isNum {
					opaque = append(opaque, v)
					return
				}
				base, exp = p.base, e
			}
			k := base.String()
			if prev, ok := powers[k]; ok {
				prev.exp = numAdd(prev.exp, exp)
				return
			}
			powers[k] = &power{base: base, exp: exp}
		}
	}
	for _, f := range m.factors {
		collect(f.Simplify())
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := opaque
	for _, p := range powers {
		switch {
		case p.exp.IsZero():
			continue
		case p.exp.IsOne():
			others = append(others, p.base)
			continue
		}
		f := PowOf(p.base, p.exp)
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		others = append(others, f)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	factors := make([]Expr, 0, len(ks)+1)
	if !coeff.IsOne() {
		factors = append(factors, coeff)
	}
	for _, k := range ks {
		factors = append(factors, k.e)
	}
	if len(factors) == 1 {
		return factors[0]
	}
	return &Mul{factors: factors}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		_, isAdd := f.(*Add)
		if isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		_, isAdd := f.(*Add)
		if isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Subs(s map[string]Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Subs(s)
	}
	return MulOf(newFactors...)
}

// derive applies the product rule across all factors.
func (m *Mul) derive(r Rules) (Expr, error) {
	terms := make([]Expr, 0, len(m.factors))
	for i, fi := range m.factors {
		dfi, err := fi.derive(r)
		if err != nil {
			return nil, err
		}
		if n, ok := dfi.(*Num); ok && n.IsZero() {
			continue
		}
		factors := make([]Expr, 0, len(m.factors))
		factors = append(factors, dfi)
		for j, fj := range m.factors {
			if j != i {
				factors = append(factors, fj)
			}
		}
		terms = append(terms, MulOf(factors...))
	}
	return AddOf(terms...), nil
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok && en.IsZero() {
		return N(1)
	}
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 && en.IsNegative() {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}
	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if bn, ok := base.(*Num); ok {
		if en, ok2 := exp.(*Num); ok2 {
			if e, ok3 := en.smallInt(); ok3 && e >= -64 && e <= 64 {
				return numPow(bn, e)
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		if _, innerInt := inner.exp.(*Num); innerInt {
			if _, outerInt := exp.(*Num); outerInt {
				return PowOf(inner.base, MulOf(inner.exp, exp))
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

func numPow(b *Num, e int) *Num {
	if e < 0 {
		return numRecip(numPow(b, -e))
	}
	k := big.NewInt(int64(e))
	num := new(big.Int).Exp(b.val.Num(), k, nil)
	den := new(big.Int).Exp(b.val.Denom(), k, nil)
	return &Num{val: new(big.Rat).SetFrac(num, den)}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	}
	if en, ok := p.exp.(*Num); ok && (en.IsNegative() || !en.IsInteger()) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	expStr := p.exp.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + expStr + "}"
}

func (p *Pow) Subs(m map[string]Expr) Expr {
	return PowOf(p.base.Subs(m), p.exp.Subs(m))
}

// derive only handles constant rational exponents: d(u^n) = n*u^(n-1)*du.
func (p *Pow) derive(r Rules) (Expr, error) {
	en, ok := p.exp.(*Num)
	if !ok {
		return nil, fmt.Errorf("%w: non-constant exponent in %s", ErrUnsupported, p.String())
	}
	du, err := p.base.derive(r)
	if err != nil {
		return nil, err
	}
	return MulOf(en, PowOf(p.base, numAdd(en, N(-1))), du), nil
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
