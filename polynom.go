// Package polynom provides sparse single-variable polynomials with real
// coefficients.
//
// Design goals:
//   - Sparse storage: exponent → coefficient, absent exponents are zero
//   - Value semantics: every operation returns a fresh Poly
//   - Deterministic, golden-testable text output
//   - AI/LLM friendly: JSON, LaTeX, and MCP-ready APIs
package polynom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Poly — sparse polynomial in x
// ============================================================

// Poly is a polynomial stored as a map from exponent to coefficient.
// The zero value is the zero polynomial. A Poly never shares its map with
// an operand or a caller, so values may be passed around freely.
type Poly struct{ c map[int]float64 }

// Term is one exponent/coefficient pair.
type Term struct {
	Exp  int     `json:"exp"`
	Coef float64 `json:"coef"`
}

// New builds a polynomial from an exponent → coefficient mapping.
// The mapping is copied.
func New(coeffs map[int]float64) Poly {
	c := make(map[int]float64, len(coeffs))
	for e, v := range coeffs {
		c[e] = v
	}
	return Poly{c: c}
}

// Zero returns the zero polynomial.
func Zero() Poly { return Poly{c: map[int]float64{}} }

// FromTerms builds a polynomial from terms; a later term replaces an
// earlier one with the same exponent.
func FromTerms(terms ...Term) Poly {
	c := make(map[int]float64, len(terms))
	for _, t := range terms {
		c[t.Exp] = t.Coef
	}
	return Poly{c: c}
}

// Coeff returns the coefficient of x^exp, zero when absent.
func (p Poly) Coeff(exp int) float64 { return p.c[exp] }

// Len counts stored terms, zero coefficients included.
func (p Poly) Len() int { return len(p.c) }

// IsZero reports whether every coefficient is zero.
func (p Poly) IsZero() bool { return p.Degree() < 0 }

// IsFinite reports whether no coefficient is NaN or ±Inf.
func (p Poly) IsFinite() bool {
	for _, v := range p.c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Map returns a copy of the underlying mapping, zero coefficients included.
func (p Poly) Map() map[int]float64 { return New(p.c).c }

// Degree returns the largest exponent with a non-zero coefficient, or -1
// for the zero polynomial.
func (p Poly) Degree() int {
	deg := -1
	for e, v := range p.c {
		if v != 0 && e > deg {
			deg = e
		}
	}
	return deg
}

// Terms returns the non-zero terms in descending exponent order.
func (p Poly) Terms() []Term {
	out := make([]Term, 0, len(p.c))
	for _, e := range p.exponents() {
		if v := p.c[e]; v != 0 {
			out = append(out, Term{Exp: e, Coef: v})
		}
	}
	return out
}

// Equal reports whether p and other have the same coefficient at every
// exponent. Stored zero coefficients are treated as absent.
func (p Poly) Equal(other Poly) bool {
	for e, v := range p.c {
		if other.c[e] != v {
			return false
		}
	}
	for e, v := range other.c {
		if p.c[e] != v {
			return false
		}
	}
	return true
}

func (p Poly) exponents() []int {
	exps := make([]int, 0, len(p.c))
	for e := range p.c {
		exps = append(exps, e)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(exps)))
	return exps
}

// ============================================================
// Evaluation
// ============================================================

// Eval returns the sum of coef·x^exp over every stored term. Terms are
// summed in descending exponent order so the result does not depend on map
// iteration order.
func (p Poly) Eval(x float64) float64 {
	var sum float64
	for _, e := range p.exponents() {
		sum += p.c[e] * math.Pow(x, float64(e))
	}
	return sum
}

// ============================================================
// Algebra
// ============================================================

// Add returns a + b.
func Add(a, b Poly) Poly {
	out := New(a.c)
	for e, v := range b.c {
		out.c[e] += v
	}
	return out
}

// Sub returns a - b.
func Sub(a, b Poly) Poly {
	out := New(a.c)
	for e, v := range b.c {
		out.c[e] -= v
	}
	return out
}

// Mul returns a·b. It panics if an exponent sum overflows int.
func Mul(a, b Poly) Poly {
	out := Zero()
	for e1, v1 := range a.c {
		for e2, v2 := range b.c {
			out.c[addExp(e1, e2)] += v1 * v2
		}
	}
	return out
}

// Method forms of Add, Sub and Mul with p as the left operand.
func (p Poly) Add(other Poly) Poly { return Add(p, other) }
func (p Poly) Sub(other Poly) Poly { return Sub(p, other) }
func (p Poly) Mul(other Poly) Poly { return Mul(p, other) }

// Scale multiplies every coefficient by k.
func (p Poly) Scale(k float64) Poly {
	out := New(p.c)
	for e := range out.c {
		out.c[e] *= k
	}
	return out
}

// Neg returns -p.
func (p Poly) Neg() Poly { return p.Scale(-1) }

func addExp(a, b int) int {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		panic("polynom: exponent overflow")
	}
	return a + b
}

// ============================================================
// Calculus
// ============================================================

// Derivative returns dp/dx. Constant terms vanish.
func (p Poly) Derivative() Poly {
	out := Zero()
	for e, v := range p.c {
		if e > 0 {
			out.c[e-1] = v * float64(e)
		}
	}
	return out
}

// SecondDerivative returns d²p/dx².
func (p Poly) SecondDerivative() Poly { return p.Derivative().Derivative() }

// Integral returns the antiderivative with a zero constant term.
// It panics if p has a term with exponent -1 or math.MaxInt.
func (p Poly) Integral() Poly {
	out := Zero()
	for e, v := range p.c {
		if e == -1 {
			panic("polynom: division by zero")
		}
		next := addExp(e, 1)
		out.c[next] = v / float64(next)
	}
	return out
}

// Function forms of the calculus methods, usable as func(Poly) Poly values.
func Diff(p Poly) Poly      { return p.Derivative() }
func Diff2(p Poly) Poly     { return p.SecondDerivative() }
func Integrate(p Poly) Poly { return p.Integral() }

// DiffN returns the nth derivative of p. n <= 0 returns p unchanged.
func DiffN(p Poly, n int) Poly {
	result := p
	for i := 0; i < n; i++ {
		result = result.Derivative()
	}
	return result
}

// ============================================================
// Rendering
// ============================================================

// String renders p in descending exponent order as "c*x^n + ... + c*x + c",
// skipping zero coefficients. The zero polynomial renders as "0".
func (p Poly) String() string {
	terms := make([]string, 0, len(p.c))
	for _, e := range p.exponents() {
		v := p.c[e]
		if v == 0 {
			continue
		}
		switch e {
		case 0:
			terms = append(terms, FormatFloat(v))
		case 1:
			terms = append(terms, FormatFloat(v)+"*x")
		default:
			terms = append(terms, fmt.Sprintf("%s*x^%d", FormatFloat(v), e))
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}

// FormatFloat renders f with the shortest digits that round-trip. Values
// whose decimal exponent lies in [-4, 16) use fixed notation with at least
// one fractional digit ("2.0", "0.0001"); others use scientific notation
// ("1e+16", "1.5e-05").
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// LaTeX renders p in descending exponent order. Negative coefficients are
// folded into the separator ("3x^{2} - x"), a unit coefficient is elided
// on non-constant terms, and large or tiny magnitudes are written as
// "m \times 10^{n}". Non-finite coefficients render as \infty or \mathrm{NaN}.
func (p Poly) LaTeX() string {
	var sb strings.Builder
	for _, t := range p.Terms() {
		v := t.Coef
		switch {
		case sb.Len() == 0 && v < 0:
			sb.WriteString("-")
			v = -v
		case sb.Len() > 0 && v < 0:
			sb.WriteString(" - ")
			v = -v
		case sb.Len() > 0:
			sb.WriteString(" + ")
		}
		coef := latexNumber(v)
		switch {
		case t.Exp == 0:
			sb.WriteString(coef)
		case v != 1:
			sb.WriteString(coef)
			fallthrough
		default:
			if strings.HasSuffix(coef, `\infty`) && v != 1 {
				sb.WriteString(" ")
			}
			sb.WriteString("x")
			if t.Exp != 1 {
				fmt.Fprintf(&sb, "^{%d}", t.Exp)
			}
		}
	}
	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}

func latexNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return `\mathrm{NaN}`
	case math.IsInf(v, 1):
		return `\infty`
	case math.IsInf(v, -1):
		return `-\infty`
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s
	}
	exp, _ := strconv.Atoi(s[i+1:])
	return fmt.Sprintf(`%s \times 10^{%d}`, s[:i], exp)
}

// ============================================================
// Parsing
// ============================================================

// MaxExponent bounds exponents accepted from text and JSON input, leaving
// headroom so that products and integrals of parsed polynomials cannot
// overflow int.
const MaxExponent = 1 << 28

var (
	ErrSyntax           = errors.New("invalid number")
	ErrNegativeExponent = errors.New("negative exponent")
	ErrExponentRange    = errors.New("exponent out of range")
)

func checkExponent(exp int) error {
	switch {
	case exp < 0:
		return fmt.Errorf("%w: %d", ErrNegativeExponent, exp)
	case exp > MaxExponent:
		return fmt.Errorf("%w: %d > %d", ErrExponentRange, exp, MaxExponent)
	}
	return nil
}

// ParseError describes a term line that has two fields but cannot be
// converted to an exponent and a coefficient.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("polynom: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads one term per line in the form "<exponent> <coefficient>".
// Lines that do not have exactly two fields are ignored. When an exponent
// repeats, the last line wins.
func Parse(r io.Reader) (Poly, error) {
	out := Zero()
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		fail := func(err error) (Poly, error) {
			return Poly{}, &ParseError{Line: line, Text: sc.Text(), Err: err}
		}
		exp, err := strconv.Atoi(fields[0])
		switch {
		case errors.Is(err, strconv.ErrRange):
			return fail(fmt.Errorf("%w: %s", ErrExponentRange, fields[0]))
		case err != nil:
			return fail(fmt.Errorf("%w: exponent %q", ErrSyntax, fields[0]))
		}
		if err := checkExponent(exp); err != nil {
			return fail(err)
		}
		coef, err := strconv.ParseFloat(fields[1], 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fail(fmt.Errorf("%w: coefficient %q", ErrSyntax, fields[1]))
		}
		out.c[exp] = coef
	}
	if err := sc.Err(); err != nil {
		return Poly{}, fmt.Errorf("polynom: read: %w", err)
	}
	return out, nil
}

// ParseString parses s as Parse does.
func ParseString(s string) (Poly, error) { return Parse(strings.NewReader(s)) }

// ReadFile parses the polynomial stored at path. The file is closed on
// every return path.
func ReadFile(path string) (Poly, error) {
	f, err := os.Open(path)
	if err != nil {
		return Poly{}, fmt.Errorf("polynom: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return Poly{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
