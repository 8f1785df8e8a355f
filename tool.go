package polynom

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// Reference composition
// ============================================================

// Compose returns ∫(P1 + P2·P3) + (P4' + P5'')·P6 for p = [P1..P6].
func Compose(p [6]Poly) Poly {
	integrated := Add(p[0], Mul(p[1], p[2])).Integral()
	derived := Add(p[3].Derivative(), p[4].SecondDerivative())
	return Add(integrated, Mul(derived, p[5]))
}

// ============================================================
// JSON Serialization
// ============================================================

type polyJSON struct {
	Terms []Term `json:"terms"`
}

// MarshalJSON encodes p as {"terms":[{"exp":n,"coef":c},...]} in
// descending exponent order. Zero terms are omitted.
func (p Poly) MarshalJSON() ([]byte, error) {
	return json.Marshal(polyJSON{Terms: p.Terms()})
}

// UnmarshalJSON decodes the MarshalJSON form. Exponents outside
// [0, MaxExponent] are rejected.
func (p *Poly) UnmarshalJSON(data []byte) error {
	var raw polyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, t := range raw.Terms {
		if err := checkExponent(t.Exp); err != nil {
			return fmt.Errorf("polynom: %w", err)
		}
	}
	*p = FromTerms(raw.Terms...)
	return nil
}

// ToJSON returns the JSON encoding of p. It fails for NaN or ±Inf
// coefficients.
func ToJSON(p Poly) (string, error) {
	b, err := json.Marshal(p)
	return string(b), err
}

// FromJSON decodes a polynomial from an already-unmarshalled JSON object.
func FromJSON(data map[string]interface{}) (Poly, error) {
	if data == nil {
		return Poly{}, fmt.Errorf("polynomial must be an object")
	}
	if _, ok := data["terms"]; !ok {
		return Poly{}, fmt.Errorf("missing 'terms' field")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return Poly{}, err
	}
	var p Poly
	if err := json.Unmarshal(b, &p); err != nil {
		return Poly{}, err
	}
	return p, nil
}

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Value  *float64    `json:"value,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches a tool request. Errors are reported in the
// response, never as a panic.
func HandleToolCall(req ToolRequest) ToolResponse {
	// A polynomial parameter is either a {"terms":[...]} object or a string
	// in the line-oriented text format.
	getPoly := func(key string) (Poly, error) {
		v, ok := req.Params[key]
		if !ok {
			return Poly{}, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case map[string]interface{}:
			p, err := FromJSON(val)
			if err != nil {
				return Poly{}, fmt.Errorf("param %s: %w", key, err)
			}
			return p, nil
		case string:
			p, err := ParseString(val)
			if err != nil {
				return Poly{}, fmt.Errorf("param %s: %w", key, err)
			}
			return p, nil
		}
		return Poly{}, fmt.Errorf("invalid type for param %s", key)
	}
	getNumber := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	getPair := func() (Poly, Poly, error) {
		a, err := getPoly("a")
		if err != nil {
			return Poly{}, Poly{}, err
		}
		b, err := getPoly("b")
		if err != nil {
			return Poly{}, Poly{}, err
		}
		return a, b, nil
	}
	// JSON cannot carry NaN or ±Inf, so such results are returned as text
	// only.
	respond := func(p Poly) ToolResponse {
		resp := ToolResponse{LaTeX: p.LaTeX(), String: p.String()}
		if p.IsFinite() {
			resp.Result = p
		}
		return resp
	}
	respondValue := func(v float64) ToolResponse {
		resp := ToolResponse{String: FormatFloat(v)}
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			resp.Value = &v
		}
		return resp
	}
	unary := func(op func(Poly) Poly) ToolResponse {
		p, err := getPoly("p")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(op(p))
	}
	binary := func(op func(a, b Poly) Poly) ToolResponse {
		a, b, err := getPair()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(op(a, b))
	}

	switch req.Tool {
	case "parse":
		text, ok := req.Params["text"].(string)
		if !ok {
			return ToolResponse{Error: "param text must be a string"}
		}
		p, err := ParseString(text)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(p)

	case "add":
		return binary(Add)

	case "sub":
		return binary(Sub)

	case "mul":
		return binary(Mul)

	case "derivative":
		return unary(Diff)

	case "second_derivative":
		return unary(Diff2)

	case "diffn":
		n, err := getNumber("n")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if n < 0 || n != math.Trunc(n) {
			return ToolResponse{Error: "param n must be a non-negative integer"}
		}
		return unary(func(p Poly) Poly { return DiffN(p, int(n)) })

	case "integral":
		return unary(Integrate)

	case "eval":
		p, err := getPoly("p")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		x, err := getNumber("x")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondValue(p.Eval(x))

	case "degree":
		p, err := getPoly("p")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		d := p.Degree()
		return ToolResponse{Result: d, String: fmt.Sprint(d)}

	case "to_latex":
		p, err := getPoly("p")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{LaTeX: p.LaTeX(), String: p.LaTeX()}

	case "compose":
		var ps [6]Poly
		for i := range ps {
			p, err := getPoly(fmt.Sprintf("p%d", i+1))
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			ps[i] = p
		}
		result := Compose(ps)
		resp := respond(result)
		if _, ok := req.Params["x"]; ok {
			x, err := getNumber("x")
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			resp.Value = respondValue(result.Eval(x)).Value
		}
		return resp

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

// MCPToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func MCPToolSpec() string {
	poly := map[string]string{"p": "object"}
	pair := map[string]string{"a": "object", "b": "object"}
	tools := []map[string]interface{}{
		ts("parse", "Parse the line format '<exponent> <coefficient>' into a polynomial", []string{"text"}, map[string]string{"text": "string"}),
		ts("add", "Sum a + b", []string{"a", "b"}, pair),
		ts("sub", "Difference a - b", []string{"a", "b"}, pair),
		ts("mul", "Product a * b", []string{"a", "b"}, pair),
		ts("derivative", "First derivative d/dx", []string{"p"}, poly),
		ts("second_derivative", "Second derivative d²/dx²", []string{"p"}, poly),
		ts("diffn", "nth derivative. Requires n (int)", []string{"p", "n"}, map[string]string{"p": "object", "n": "integer"}),
		ts("integral", "Indefinite integral with zero constant", []string{"p"}, poly),
		ts("eval", "Evaluate p at x", []string{"p", "x"}, map[string]string{"p": "object", "x": "number"}),
		ts("degree", "Largest exponent with a non-zero coefficient (-1 for zero)", []string{"p"}, poly),
		ts("to_latex", "Convert to LaTeX", []string{"p"}, poly),
		ts("compose", "(p1 + p2*p3)∫ + (p4' + p5'')*p6. Optional x evaluates the result", []string{"p1", "p2", "p3", "p4", "p5", "p6"}, map[string]string{
			"p1": "object", "p2": "object", "p3": "object", "p4": "object", "p5": "object", "p6": "object", "x": "number",
		}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
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
