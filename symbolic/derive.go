package symbolic

// ============================================================
// Total derivatives
// ============================================================

// Rules gives the derivative of each symbol with respect to an implicit
// variable. Symbols without a rule are constants.
type Rules map[string]Expr

// Derive differentiates e once under r and returns the canonical form.
func Derive(e Expr, r Rules) (Expr, error) {
	d, err := e.derive(r)
	if err != nil {
		return nil, err
	}
	return Canonicalize(d), nil
}

// DeriveN applies Derive n times, canonicalizing between steps.
func DeriveN(e Expr, r Rules, n int) (Expr, error) {
	result := Canonicalize(e)
	for i := 0; i < n; i++ {
		d, err := Derive(result, r)
		if err != nil {
			return nil, err
		}
		result = d
	}
	return result, nil
}

// Diff is Derive with respect to a single symbol.
func Diff(e Expr, varName string) (Expr, error) {
	return Derive(e, Rules{varName: N(1)})
}
