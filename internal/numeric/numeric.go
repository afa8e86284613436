// Package numeric implements computor's three value domains — Float,
// Complex, and Matrix — and the mixed-domain arithmetic defined in §4.4 of
// the language spec.
package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Num is a computor value: a Float, a Complex, or a Matrix.
type Num interface {
	fmt.Stringer

	// IsFinite reports whether every component of the value is finite.
	// Callers MUST check this after every arithmetic operation (§4.4.1
	// requires non-finite results to be reported as errors).
	IsFinite() bool

	// NeedsSignReverse reports whether the cosmetic evaluator pass should
	// treat this value as "negative" for the purposes of §4.4.3's sign
	// flip rewrite.
	NeedsSignReverse() bool

	// NeedsDisplayParens reports whether the value needs wrapping in
	// parentheses when substituted as one operand of a mixed
	// concrete/symbolic binary expression (§4.4.3).
	NeedsDisplayParens() bool

	num() // unexported: closes the interface to this package's three kinds.
}

// Float is a real number.
type Float float64

// Complex is r + zi. A Complex with z == 0 must never be constructed
// directly — use NewComplex, which collapses it to Float.
type Complex struct {
	R float64
	Z float64
}

// Matrix is a dense, row-major matrix of real numbers. All rows have equal
// length; NewMatrix rejects empty or ragged input.
type Matrix struct {
	Rows [][]float64
}

func (Float) num()   {}
func (Complex) num() {}
func (Matrix) num()  {}

// NewComplex builds a Num from two float components, collapsing to Float
// when the imaginary part is exactly zero (§4.4.2), including negative
// zero — IEEE 754 -0.0 == 0.0 so the comparison below already covers it.
func NewComplex(r, z float64) Num {
	if z == 0 {
		return Float(r)
	}
	return Complex{R: r, Z: z}
}

// NewMatrix validates rows are non-empty and rectangular and returns a
// Matrix, or an error ("Conversion Failure", per §4.2.4).
func NewMatrix(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Matrix{}, fmt.Errorf("Conversion Failure")
	}
	width := len(rows[0])
	for _, row := range rows {
		if len(row) != width {
			return Matrix{}, fmt.Errorf("Conversion Failure")
		}
	}
	return Matrix{Rows: rows}, nil
}

// ParseFloat parses a numeric literal's lexeme into a Float.
func ParseFloat(s string) (Num, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("Conversion Failure")
	}
	return Float(f), nil
}

// --- IsFinite ---

func (f Float) IsFinite() bool { return !math.IsInf(float64(f), 0) && !math.IsNaN(float64(f)) }

func (c Complex) IsFinite() bool {
	return isFiniteFloat(c.R) && isFiniteFloat(c.Z)
}

func (m Matrix) IsFinite() bool {
	for _, row := range m.Rows {
		for _, v := range row {
			if !isFiniteFloat(v) {
				return false
			}
		}
	}
	return true
}

func isFiniteFloat(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// --- sign/display predicates (§4.4.3) ---

func (f Float) NeedsSignReverse() bool { return math.Signbit(float64(f)) }

func (c Complex) NeedsSignReverse() bool {
	if c.R == 0 {
		return math.Signbit(c.Z)
	}
	return c.R < 0
}

func (Matrix) NeedsSignReverse() bool { return false }

func (f Float) NeedsDisplayParens() bool { return f.NeedsSignReverse() }

func (c Complex) NeedsDisplayParens() bool {
	if c.NeedsSignReverse() {
		return true
	}
	return c.R != 0 && c.Z != 0
}

func (Matrix) NeedsDisplayParens() bool { return false }

// --- finiteness-checked arithmetic (§4.4.1) ---

// checked wraps the result of an operation with the shared "calculation
// resulted in X" finiteness error used throughout the original evaluator.
func checked(n Num, err error) (Num, error) {
	if err != nil {
		return nil, err
	}
	if !n.IsFinite() {
		return nil, fmt.Errorf("The calculation resulted in '%s'.", n.String())
	}
	return n, nil
}

// Add implements +.
func Add(l, r Num) (Num, error) {
	switch lv := l.(type) {
	case Float:
		switch rv := r.(type) {
		case Float:
			return checked(Float(float64(lv)+float64(rv)), nil)
		case Complex:
			return checked(NewComplex(float64(lv)+rv.R, rv.Z), nil)
		case Matrix:
			return nil, unsupported("+", l, r)
		}
	case Complex:
		switch rv := r.(type) {
		case Float:
			return checked(NewComplex(lv.R+float64(rv), lv.Z), nil)
		case Complex:
			return checked(NewComplex(lv.R+rv.R, lv.Z+rv.Z), nil)
		case Matrix:
			return nil, unsupported("+", l, r)
		}
	case Matrix:
		if rv, ok := r.(Matrix); ok {
			return matrixElementwise(lv, rv, func(a, b float64) float64 { return a + b })
		}
		return nil, unsupported("+", l, r)
	}
	return nil, unsupported("+", l, r)
}

// Sub implements -.
func Sub(l, r Num) (Num, error) {
	switch lv := l.(type) {
	case Float:
		switch rv := r.(type) {
		case Float:
			return checked(Float(float64(lv)-float64(rv)), nil)
		case Complex:
			return checked(NewComplex(float64(lv)-rv.R, -rv.Z), nil)
		case Matrix:
			return nil, unsupported("-", l, r)
		}
	case Complex:
		switch rv := r.(type) {
		case Float:
			return checked(NewComplex(lv.R-float64(rv), lv.Z), nil)
		case Complex:
			return checked(NewComplex(lv.R-rv.R, lv.Z-rv.Z), nil)
		case Matrix:
			return nil, unsupported("-", l, r)
		}
	case Matrix:
		if rv, ok := r.(Matrix); ok {
			return matrixElementwise(lv, rv, func(a, b float64) float64 { return a - b })
		}
		return nil, unsupported("-", l, r)
	}
	return nil, unsupported("-", l, r)
}

// Mul implements *: scalar/scalar, elementwise same-size matrix, and
// scalar-matrix broadcast.
func Mul(l, r Num) (Num, error) {
	switch lv := l.(type) {
	case Float:
		switch rv := r.(type) {
		case Float:
			return checked(Float(float64(lv)*float64(rv)), nil)
		case Complex:
			return checked(NewComplex(float64(lv)*rv.R, float64(lv)*rv.Z), nil)
		case Matrix:
			return matrixScale(rv, float64(lv))
		}
	case Complex:
		switch rv := r.(type) {
		case Float:
			return checked(NewComplex(lv.R*float64(rv), lv.Z*float64(rv)), nil)
		case Complex:
			return checked(NewComplex(lv.R*rv.R-lv.Z*rv.Z, lv.R*rv.Z+lv.Z*rv.R), nil)
		case Matrix:
			return nil, unsupported("*", l, r)
		}
	case Matrix:
		switch rv := r.(type) {
		case Float:
			return matrixScale(lv, float64(rv))
		case Matrix:
			return matrixElementwise(lv, rv, func(a, b float64) float64 { return a * b })
		}
	}
	return nil, unsupported("*", l, r)
}

// Div implements /: scalar/scalar, elementwise same-size matrix, and
// scalar-matrix broadcast.
func Div(l, r Num) (Num, error) {
	switch lv := l.(type) {
	case Float:
		switch rv := r.(type) {
		case Float:
			return checked(Float(float64(lv)/float64(rv)), nil)
		case Complex:
			v := rv.R*rv.R + rv.Z*rv.Z
			return checked(NewComplex(float64(lv)*rv.R/v, -float64(lv)*rv.Z/v), nil)
		case Matrix:
			out := make([][]float64, len(rv.Rows))
			for i, row := range rv.Rows {
				out[i] = make([]float64, len(row))
				for j, v := range row {
					out[i][j] = float64(lv) / v
				}
			}
			return checked(Matrix{Rows: out}, nil)
		}
	case Complex:
		switch rv := r.(type) {
		case Float:
			return checked(NewComplex(lv.R/float64(rv), lv.Z/float64(rv)), nil)
		case Complex:
			v := rv.R*rv.R + rv.Z*rv.Z
			conj := Complex{R: rv.R, Z: -rv.Z}
			num, err := Mul(lv, conj)
			if err != nil {
				return nil, err
			}
			return checked(Div(num, Float(v)))
		}
	case Matrix:
		switch rv := r.(type) {
		case Float:
			return matrixScale(lv, 1/float64(rv))
		case Matrix:
			return matrixElementwise(lv, rv, func(a, b float64) float64 { return a / b })
		}
	}
	return nil, unsupported("/", l, r)
}

// Rem implements %: Euclidean for Float%Float, componentwise Euclidean for
// Complex%Float. All other combinations are unsupported.
func Rem(l, r Num) (Num, error) {
	switch lv := l.(type) {
	case Float:
		if rv, ok := r.(Float); ok {
			return checked(Float(euclidMod(float64(lv), float64(rv))), nil)
		}
	case Complex:
		if rv, ok := r.(Float); ok {
			return checked(NewComplex(euclidMod(lv.R, float64(rv)), euclidMod(lv.Z, float64(rv))), nil)
		}
	}
	return nil, unsupported("%", l, r)
}

func euclidMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		if b > 0 {
			m += b
		} else {
			m -= b
		}
	}
	return m
}

// Pow implements ^: Float^Float only.
func Pow(l, r Num) (Num, error) {
	lv, lok := l.(Float)
	rv, rok := r.(Float)
	if !lok || !rok {
		return nil, unsupported("^", l, r)
	}
	return checked(Float(math.Pow(float64(lv), float64(rv))), nil)
}

// MatMul implements ** — true matrix multiplication only.
func MatMul(l, r Num) (Num, error) {
	lv, lok := l.(Matrix)
	rv, rok := r.(Matrix)
	if !lok || !rok {
		return nil, unsupported("**", l, r)
	}
	if len(lv.Rows[0]) != len(rv.Rows) {
		return nil, fmt.Errorf("Unsupported operator %s ** %s", lv.String(), rv.String())
	}
	inner := len(rv.Rows)
	cols := len(rv.Rows[0])
	out := make([][]float64, len(lv.Rows))
	for i, row := range lv.Rows {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			var sum float64
			for k := 0; k < inner; k++ {
				sum += row[k] * rv.Rows[k][j]
			}
			out[i][j] = sum
		}
	}
	m := Matrix{Rows: out}
	return checked(m, nil)
}

func matrixElementwise(l, r Matrix, op func(a, b float64) float64) (Num, error) {
	if len(l.Rows) != len(r.Rows) || len(l.Rows[0]) != len(r.Rows[0]) {
		return nil, fmt.Errorf("Unsupported operator %s and %s: size mismatch", l.String(), r.String())
	}
	out := make([][]float64, len(l.Rows))
	for i := range l.Rows {
		out[i] = make([]float64, len(l.Rows[i]))
		for j := range l.Rows[i] {
			out[i][j] = op(l.Rows[i][j], r.Rows[i][j])
		}
	}
	return checked(Matrix{Rows: out}, nil)
}

func matrixScale(m Matrix, s float64) (Num, error) {
	out := make([][]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v * s
		}
	}
	return checked(Matrix{Rows: out}, nil)
}

func unsupported(op string, l, r Num) error {
	return fmt.Errorf("Unsupported operator %s %s %s", l.String(), op, r.String())
}

// --- display ---

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

func (c Complex) String() string {
	switch {
	case c.R == 0 && c.Z == 0:
		return "0"
	case c.R == 0 && c.Z == 1:
		return "i"
	case c.R == 0 && c.Z == -1:
		return "-i"
	case c.R == 0:
		return Float(c.Z).String() + "i"
	case c.Z == 0:
		return Float(c.R).String()
	case c.Z == 1:
		return Float(c.R).String() + " + i"
	case c.Z == -1:
		return Float(c.R).String() + " - i"
	case c.Z > 0:
		return fmt.Sprintf("%s + %si", Float(c.R).String(), Float(c.Z).String())
	default:
		return fmt.Sprintf("%s - %si", Float(c.R).String(), Float(-c.Z).String())
	}
}

func (m Matrix) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range m.Rows {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Float(v).String())
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

// Rich renders a Matrix across multiple lines with spacing, for echoing a
// bound matrix value back to the user (§4.4.3).
func (m Matrix) Rich() string {
	var b strings.Builder
	for i, row := range m.Rows {
		b.WriteString("[ ")
		for _, v := range row {
			b.WriteString(Float(v).String())
			b.WriteByte(' ')
		}
		b.WriteByte(']')
		if i < len(m.Rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// IsReal reports whether n can be treated as a plain real number (used by
// the polynomial flattener, which errors on anything else).
func IsReal(n Num) (float64, bool) {
	switch v := n.(type) {
	case Float:
		return float64(v), true
	default:
		return 0, false
	}
}
