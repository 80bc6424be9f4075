package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the JSON object form of e, ready for embedding in a response.
func ToMap(e Expr) map[string]interface{} { return e.toJSON() }

// FromJSON decodes the object form produced by ToJSON or ToMap. Decoded
// sums, products and powers are simplified on the way in.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	dec, ok := decoders[typ]
	if !ok {
		return nil, fmt.Errorf("unknown expression type: %s", typ)
	}
	return dec(node{typ: typ, data: data})
}

var decoders map[string]func(node) (Expr, error)

func init() {
	decoders = map[string]func(node) (Expr, error){
		"num": func(n node) (Expr, error) {
			val, err := n.str("value")
			if err != nil {
				return nil, err
			}
			r, ok := new(big.Rat).SetString(val)
			if !ok {
				return nil, fmt.Errorf("invalid num value: %s", val)
			}
			return &Num{val: r}, nil
		},
		"sym": func(n node) (Expr, error) {
			name, err := n.str("name")
			if err != nil {
				return nil, err
			}
			return S(name), nil
		},
		"add": func(n node) (Expr, error) {
			terms, err := n.list("terms")
			if err != nil {
				return nil, err
			}
			return AddOf(terms...), nil
		},
		"mul": func(n node) (Expr, error) {
			factors, err := n.list("factors")
			if err != nil {
				return nil, err
			}
			return MulOf(factors...), nil
		},
		"pow": func(n node) (Expr, error) {
			base, err := n.child("base")
			if err != nil {
				return nil, err
			}
			exp, err := n.child("exp")
			if err != nil {
				return nil, err
			}
			if err := checkExponent(exp); err != nil {
				return nil, err
			}
			out := PowOf(base, exp)
			if p, ok := out.(*Pow); ok {
				if err := checkExponent(p.exp); err != nil {
					return nil, err
				}
			}
			return out, nil
		},
		"func": func(n node) (Expr, error) {
			name, err := n.str("name")
			if err != nil {
				return nil, err
			}
			arg, err := n.child("arg")
			if err != nil {
				return nil, err
			}
			return funcOf(name, arg).Simplify(), nil
		},
	}
}

// checkExponent rejects rational exponents whose magnitude exceeds
// MaxExponent.
func checkExponent(e Expr) error {
	n, ok := e.(*Num)
	if !ok {
		return nil
	}
	limit := big.NewRat(MaxExponent, 1)
	if new(big.Rat).Abs(n.val).Cmp(limit) > 0 {
		return fmt.Errorf("pow: exponent %s: %w", n.String(), ErrExponentRange)
	}
	return nil
}

// node is one JSON object being decoded.
type node struct {
	typ  string
	data map[string]interface{}
}

func (n node) field(name string) (interface{}, error) {
	v, ok := n.data[name]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", n.typ, name)
	}
	return v, nil
}

func (n node) str(name string) (string, error) {
	v, err := n.field(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %q must be a non-empty string", n.typ, name)
	}
	return s, nil
}

func (n node) child(name string) (Expr, error) {
	v, err := n.field(name)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object", n.typ, name)
	}
	e, err := FromJSON(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", n.typ, name, err)
	}
	return e, nil
}

func (n node) list(name string) ([]Expr, error) {
	v, err := n.field(name)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	switch x := v.(type) {
	case []map[string]interface{}:
		// as produced by ToMap, before a trip through encoding/json
		items = x
	case []interface{}:
		items = make([]map[string]interface{}, len(x))
		for i, it := range x {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", n.typ, name, i)
			}
			items[i] = m
		}
	default:
		return nil, fmt.Errorf("%s: %q must be an array", n.typ, name)
	}
	out := make([]Expr, len(items))
	for i, m := range items {
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", n.typ, name, i, err)
		}
		out[i] = e
	}
	return out, nil
}
