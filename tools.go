package logtower

import (
	"encoding/json"
	"fmt"

	"github.com/njchilds90/logtower/symbolic"
)

// ============================================================
// Tool call interface
// ============================================================

// DefaultMaxDegree bounds n for tool calls served by DefaultToolHandler.
const DefaultMaxDegree = 12

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Terms  int         `json:"terms,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ToolHandler serves tool calls. Every call builds its own Engine from
// Options, so one handler may serve concurrent calls.
type ToolHandler struct {
	MaxDegree int
	Options   []Option
}

var DefaultToolHandler = &ToolHandler{MaxDegree: DefaultMaxDegree}

// HandleToolCall serves req with DefaultToolHandler.
func HandleToolCall(req ToolRequest) ToolResponse { return DefaultToolHandler.Handle(req) }

// Handle dispatches req. Sequence params (h, F, G, args) accept an array of
// expression objects or a symbol prefix string; they default to the prefixes
// "h", "F", "G" and "x". R0 accepts an expression object or a symbol name and
// defaults to "R0".
func (t *ToolHandler) Handle(req ToolRequest) ToolResponse {
	getDegree := func() (int, error) {
		v, ok := req.Params["n"]
		if !ok {
			return 0, fmt.Errorf("missing param: n")
		}
		var n int
		switch x := v.(type) {
		case float64:
			if x != float64(int(x)) {
				return 0, fmt.Errorf("param n must be an integer")
			}
			n = int(x)
		case int:
			n = x
		default:
			return 0, fmt.Errorf("param n must be a number")
		}
		if n < 0 {
			return 0, fmt.Errorf("param n must be >= 0")
		}
		if t.MaxDegree > 0 && n > t.MaxDegree {
			return 0, fmt.Errorf("param n=%d exceeds max degree %d", n, t.MaxDegree)
		}
		return n, nil
	}
	getSequence := func(key, prefix string, count int) (Sequence, error) {
		v, ok := req.Params[key]
		if !ok {
			return Symbols(prefix, count), nil
		}
		switch x := v.(type) {
		case string:
			if x == "" {
				return nil, fmt.Errorf("param %s must be a non-empty prefix", key)
			}
			return Symbols(x, count), nil
		case []interface{}:
			seq := make(Sequence, len(x))
			for i, r := range x {
				m, ok := r.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("param %s[%d] must be expression object", key, i)
				}
				e, err := symbolic.FromJSON(m)
				if err != nil {
					return nil, fmt.Errorf("param %s[%d]: %w", key, i, err)
				}
				seq[i] = e
			}
			return seq, nil
		}
		return nil, fmt.Errorf("param %s must be a prefix string or an array", key)
	}
	getR0 := func() (symbolic.Expr, error) {
		v, ok := req.Params["R0"]
		if !ok {
			return symbolic.S("R0"), nil
		}
		switch x := v.(type) {
		case string:
			if x == "" {
				return nil, fmt.Errorf("param R0 must be a non-empty symbol name")
			}
			return symbolic.S(x), nil
		case map[string]interface{}:
			return symbolic.FromJSON(x)
		}
		return nil, fmt.Errorf("param R0 must be a symbol name or expression object")
	}
	getFG := func(count int) (Sequence, Sequence, error) {
		F, err := getSequence("F", "F", count)
		if err != nil {
			return nil, nil, err
		}
		G, err := getSequence("G", "G", count)
		if err != nil {
			return nil, nil, err
		}
		return F, G, nil
	}
	ok := func(e symbolic.Expr) ToolResponse {
		return ToolResponse{
			Result: symbolic.ToMap(e),
			LaTeX:  e.LaTeX(),
			String: e.String(),
			Terms:  symbolic.TermCount(e),
		}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "generate_a_n":
		n, err := getDegree()
		if err != nil {
			return fail(err)
		}
		h, err := getSequence("h", "h", n+1)
		if err != nil {
			return fail(err)
		}
		F, G, err := getFG(n + 1)
		if err != nil {
			return fail(err)
		}
		R0, err := getR0()
		if err != nil {
			return fail(err)
		}
		out, err := GenerateAn(n, h, F, G, R0, t.Options...)
		if err != nil {
			return fail(err)
		}
		return ok(out)

	case "generate_r_n":
		n, err := getDegree()
		if err != nil {
			return fail(err)
		}
		F, G, err := getFG(n + 1)
		if err != nil {
			return fail(err)
		}
		R0, err := getR0()
		if err != nil {
			return fail(err)
		}
		out, err := GenerateRn(n, F, G, R0, t.Options...)
		if err != nil {
			return fail(err)
		}
		return ok(out)

	case "gamma":
		n, err := getDegree()
		if err != nil {
			return fail(err)
		}
		F, G, err := getFG(n + 1)
		if err != nil {
			return fail(err)
		}
		e := NewEngine(t.Options...)
		var out symbolic.Expr
		if name, has := req.Params["strategy"]; has {
			s, isString := name.(string)
			if !isString {
				return fail(fmt.Errorf("param strategy must be a string"))
			}
			strategy, err := ParseStrategy(s)
			if err != nil {
				return fail(err)
			}
			out, err = e.GammaUsing(strategy, n, F, G)
			if err != nil {
				return fail(err)
			}
		} else {
			out, err = e.Gamma(n, F, G)
			if err != nil {
				return fail(err)
			}
		}
		return ok(out)

	case "phi":
		n, err := getDegree()
		if err != nil {
			return fail(err)
		}
		F, G, err := getFG(n + 1)
		if err != nil {
			return fail(err)
		}
		out, err := NewEngine(t.Options...).Phi(n, F, G)
		if err != nil {
			return fail(err)
		}
		return ok(out)

	case "sector_table":
		n, err := getDegree()
		if err != nil {
			return fail(err)
		}
		F, G, err := getFG(n)
		if err != nil {
			return fail(err)
		}
		table, err := NewEngine(t.Options...).SectorTable(n, F, G)
		if err != nil {
			return fail(err)
		}
		rows := make([]map[string]interface{}, len(table))
		for i, s := range table {
			rows[i] = map[string]interface{}{
				"degree": s.Degree,
				"gamma":  symbolic.ToMap(s.Gamma),
				"phi":    symbolic.ToMap(s.Phi),
			}
		}
		return ToolResponse{Result: rows, Terms: len(rows)}

	case "bell":
		n, err := getDegree()
		if err != nil {
			return fail(err)
		}
		args, err := getSequence("args", "x", n)
		if err != nil {
			return fail(err)
		}
		out, err := Bell(n, args)
		if err != nil {
			return fail(err)
		}
		return ok(out)

	case "tool_spec":
		return ToolResponse{Result: ToolSpec()}
	}
	return fail(fmt.Errorf("unknown tool: %s", req.Tool))
}

// ToolSpec returns the JSON schema of every tool served by Handle.
func ToolSpec() string {
	seq := "array|string"
	tools := []map[string]interface{}{
		ts("generate_a_n", "P(A_n) for A(x) = h(x) ln(g(x)) / ln(f(x))", []string{"n"}, map[string]string{"n": "integer", "h": seq, "F": seq, "G": seq, "R0": "object|string"}),
		ts("generate_r_n", "P(R_n) for R(x) = ln(g(x)) / ln(f(x))", []string{"n"}, map[string]string{"n": "integer", "F": seq, "G": seq, "R0": "object|string"}),
		ts("gamma", "Forcing sector Gamma_n. Optional strategy: closed_form | recursive_convolution", []string{"n"}, map[string]string{"n": "integer", "F": seq, "G": seq, "strategy": "string"}),
		ts("phi", "Decay sector Phi_n (Gamma_n with G mapped to F)", []string{"n"}, map[string]string{"n": "integer", "F": seq, "G": seq}),
		ts("sector_table", "Gamma_k and Phi_k for k < n", []string{"n"}, map[string]string{"n": "integer", "F": seq, "G": seq}),
		ts("bell", "Complete Bell polynomial B_n", []string{"n"}, map[string]string{"n": "integer", "args": seq}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
