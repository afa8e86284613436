// Package polynomial flattens an already-evaluated expression tree into a
// single-variable polynomial and solves it for degree 0, 1, or 2 (§4.5).
package polynomial

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kotabrog/go-computor/internal/ast"
	"github.com/kotabrog/go-computor/internal/numeric"
)

// maxTerms bounds every term-list operation against runaway expansion
// (repeated multiplication from an integer power, or a Cartesian product
// of two term lists).
const maxTerms = 1000

// Term is a single coefficient*variable^degree monomial.
type Term struct {
	Coefficient float64
	Degree      int64
}

// Equation is a flattened, sorted, zero-trimmed polynomial: Terms[i].Degree
// is strictly increasing, and Degree is the last (largest) term's degree.
type Equation struct {
	Terms    []Term
	Degree   int64
	Variable string
}

// Build flattens "lhs = rhs" (after both sides have been fully evaluated)
// into a single canonical polynomial "lhs - rhs = 0".
func Build(lhs, rhs *ast.Node) (*Equation, error) {
	var terms []Term
	var variable string
	var hasVar bool

	if err := setOneTree(lhs, false, &terms, &variable, &hasVar); err != nil {
		return nil, err
	}
	if err := setOneTree(rhs, true, &terms, &variable, &hasVar); err != nil {
		return nil, err
	}

	sorted, err := sortExpr(terms)
	if err != nil {
		return nil, err
	}
	if len(sorted) == 0 {
		sorted = []Term{{Coefficient: 0, Degree: 0}}
	}
	return &Equation{Terms: sorted, Degree: sorted[len(sorted)-1].Degree, Variable: variable}, nil
}

// setOneTree recurses through +/- nodes, accumulating every additive term
// into terms. A term's sign is flipped once for arriving from the
// right-hand side of the equation and once more for every Minus it sits to
// the right of, so "a - b" contributes a with rightSide's sign and b with
// the opposite one.
func setOneTree(tree *ast.Node, rightSide bool, terms *[]Term, variable *string, hasVar *bool) error {
	if tree == nil {
		return fmt.Errorf("syntax error")
	}
	switch tree.Kind {
	case ast.Dummy, ast.Func:
		return fmt.Errorf("syntax error")
	case ast.Variable, ast.Number:
		return setOneTerms(tree, rightSide, terms, variable, hasVar)
	case ast.Op:
		if tree.Operator == ast.Plus || tree.Operator == ast.Minus {
			if err := setOneTree(tree.Left, rightSide, terms, variable, hasVar); err != nil {
				return err
			}
			right := rightSide
			if tree.Operator == ast.Minus {
				right = !right
			}
			return setOneTree(tree.Right, right, terms, variable, hasVar)
		}
		return setOneTerms(tree, rightSide, terms, variable, hasVar)
	}
	return fmt.Errorf("syntax error")
}

func setOneTerms(tree *ast.Node, rightSide bool, terms *[]Term, variable *string, hasVar *bool) error {
	expr, err := setOneTerm(tree, variable, hasVar)
	if err != nil {
		return err
	}
	for _, term := range expr {
		if rightSide {
			term.Coefficient *= -1
		}
		*terms = append(*terms, term)
	}
	return nil
}

// setOneTerm flattens a single non-additive subtree into a term list via
// the term algebra of §4.5: a leaf becomes a one-term list, and * / % ^
// combine two term lists.
func setOneTerm(tree *ast.Node, variable *string, hasVar *bool) ([]Term, error) {
	if tree == nil {
		return nil, fmt.Errorf("syntax error")
	}
	switch tree.Kind {
	case ast.Func:
		return nil, fmt.Errorf("syntax error")
	case ast.Number:
		v, ok := numeric.IsReal(tree.Value)
		if !ok {
			return nil, fmt.Errorf("%s: syntax error: Not a real number.", tree.Value.String())
		}
		return []Term{{Coefficient: v, Degree: 0}}, nil
	case ast.Dummy:
		return []Term{{Coefficient: 0, Degree: 0}}, nil
	case ast.Variable:
		if err := checkVariable(variable, hasVar, tree.Name); err != nil {
			return nil, err
		}
		return []Term{{Coefficient: 1, Degree: 1}}, nil
	case ast.Op:
		switch tree.Operator {
		case ast.Plus, ast.Minus, ast.RParen:
			return nil, fmt.Errorf("syntax error")
		case ast.MatMul:
			return nil, fmt.Errorf("Unsupported matrix product error.")
		case ast.Mul, ast.Div, ast.Rem:
			left, err := setOneTerm(tree.Left, variable, hasVar)
			if err != nil {
				return nil, err
			}
			right, err := setOneTerm(tree.Right, variable, hasVar)
			if err != nil {
				return nil, err
			}
			return operateTwoExpr(left, right, tree.Operator)
		case ast.Pow:
			left, err := setOneTerm(tree.Left, variable, hasVar)
			if err != nil {
				return nil, err
			}
			right, err := setOneTerm(tree.Right, variable, hasVar)
			if err != nil {
				return nil, err
			}
			return operateTwoTermPow(left, right)
		case ast.Paren:
			var inner []Term
			if err := setOneTree(tree.Left, false, &inner, variable, hasVar); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, fmt.Errorf("syntax error")
}

func checkVariable(variable *string, hasVar *bool, name string) error {
	if *hasVar {
		if *variable != name {
			return fmt.Errorf("%s, %s: two variable error.", *variable, name)
		}
		return nil
	}
	*hasVar = true
	*variable = name
	return nil
}

func operateTwoExpr(left, right []Term, op ast.Operator) ([]Term, error) {
	if len(left)*len(right) > maxTerms {
		return nil, fmt.Errorf("too many terms error")
	}
	var expr []Term
	for _, l := range left {
		for _, r := range right {
			var err error
			switch op {
			case ast.Mul:
				err = mulTerm(l, r, &expr)
			case ast.Div:
				err = divTerm(l, r, &expr)
			case ast.Rem:
				err = remTerm(l, r, &expr)
			default:
				err = fmt.Errorf("syntax error")
			}
			if err != nil {
				return nil, err
			}
		}
	}
	if len(expr) == 0 {
		expr = []Term{{Coefficient: 0, Degree: 0}}
	}
	return expr, nil
}

func mulTerm(l, r Term, out *[]Term) error {
	coeff := l.Coefficient * r.Coefficient
	if coeff == 0 {
		return nil
	}
	if !isFiniteFloat(coeff) {
		return fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(coeff).String())
	}
	degree := l.Degree + r.Degree
	if l.Degree > 0 && r.Degree > 0 && degree < 0 {
		return fmt.Errorf("overflow error")
	}
	*out = append(*out, Term{Coefficient: coeff, Degree: degree})
	return nil
}

func divTerm(l, r Term, out *[]Term) error {
	if r.Degree > 0 {
		return fmt.Errorf("error: cannot be divided by variable")
	}
	coeff := l.Coefficient / r.Coefficient
	if coeff == 0 {
		return nil
	}
	if !isFiniteFloat(coeff) {
		return fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(coeff).String())
	}
	*out = append(*out, Term{Coefficient: coeff, Degree: l.Degree})
	return nil
}

func remTerm(l, r Term, out *[]Term) error {
	if r.Degree > 0 {
		return fmt.Errorf("error: cannot be divided by variable")
	}
	if l.Degree > 0 {
		return fmt.Errorf("error: variable remainders cannot be calculated")
	}
	coeff := euclidMod(l.Coefficient, r.Coefficient)
	if coeff == 0 {
		return nil
	}
	if !isFiniteFloat(coeff) {
		return fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(coeff).String())
	}
	*out = append(*out, Term{Coefficient: coeff, Degree: 0})
	return nil
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

// operateTwoTermPow raises the left term list to the power described by
// the (already-flattened) right term list, which must be a single
// non-negative integer constant.
func operateTwoTermPow(left, right []Term) ([]Term, error) {
	rightSorted, err := sortExpr(right)
	if err != nil {
		return nil, err
	}
	if len(rightSorted) == 0 {
		rightSorted = []Term{{Coefficient: 0, Degree: 0}}
	}
	if len(rightSorted) != 1 || rightSorted[0].Degree != 0 || !isIntValue(rightSorted[0].Coefficient) ||
		(math.Signbit(rightSorted[0].Coefficient) && rightSorted[0].Coefficient != 0) {
		return nil, fmt.Errorf("error: only integers greater than or equal to 0 are allowed for exponents")
	}

	n := int(rightSorted[0].Coefficient)
	if n == 0 {
		return []Term{{Coefficient: 1, Degree: 0}}, nil
	}

	count := len(left)
	total := 1
	for i := 0; i < n; i++ {
		total *= count
		if total > maxTerms {
			return nil, fmt.Errorf("too many terms error")
		}
	}

	expr := append([]Term(nil), left...)
	for i := 1; i < n; i++ {
		var temp []Term
		for _, lt := range expr {
			for _, rt := range left {
				if err := mulTerm(lt, rt, &temp); err != nil {
					return nil, err
				}
			}
		}
		expr = temp
	}
	if len(expr) == 0 {
		expr = []Term{{Coefficient: 0, Degree: 0}}
	}
	return expr, nil
}

func isIntValue(v float64) bool {
	return v-math.Trunc(v) == 0
}

func isFiniteFloat(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// sortExpr combines same-degree terms, drops zero-coefficient entries, and
// orders the result by ascending degree.
func sortExpr(terms []Term) ([]Term, error) {
	sums := make(map[int64]float64)
	for _, t := range terms {
		v := sums[t.Degree] + t.Coefficient
		if !isFiniteFloat(v) {
			return nil, fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(v).String())
		}
		sums[t.Degree] = v
	}
	degrees := make([]int64, 0, len(sums))
	for d := range sums {
		degrees = append(degrees, d)
	}
	sort.Slice(degrees, func(i, j int) bool { return degrees[i] < degrees[j] })

	var out []Term
	for _, d := range degrees {
		if c := sums[d]; c != 0 {
			out = append(out, Term{Coefficient: c, Degree: d})
		}
	}
	return out, nil
}

// String renders the canonical polynomial form printed before "= 0".
func (e *Equation) String() string {
	var b strings.Builder
	for i, term := range e.Terms {
		if i > 0 {
			if math.Signbit(term.Coefficient) {
				b.WriteString("- ")
			} else {
				b.WriteString("+ ")
			}
		} else if math.Signbit(term.Coefficient) {
			b.WriteString("-")
		}
		switch {
		case term.Degree == 0:
			fmt.Fprintf(&b, "%s ", numeric.Float(math.Abs(term.Coefficient)).String())
		case math.Abs(term.Coefficient) == 1:
			fmt.Fprintf(&b, "%s^%d ", e.Variable, term.Degree)
		default:
			fmt.Fprintf(&b, "%s%s^%d ", numeric.Float(math.Abs(term.Coefficient)).String(), e.Variable, term.Degree)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Solve dispatches on the equation's degree and returns the solver's
// human-readable result text (§4.5's solver dispatch).
func (e *Equation) Solve() (string, error) {
	if len(e.Terms) > 0 && e.Terms[0].Degree < 0 {
		return "Negative integer powers are not supported.", nil
	}
	switch e.Degree {
	case 0:
		return e.solveDegree0(), nil
	case 1:
		return e.solveDegree1()
	case 2:
		return e.solveDegree2()
	default:
		return "The polynomial degree is strictly greater than 2, I can't solve.", nil
	}
}

func (e *Equation) solveDegree0() string {
	if len(e.Terms) == 0 || e.Terms[0].Coefficient == 0 {
		return "The solution is an arbitrary real number."
	}
	return "There is no solution."
}

// termsNoGaps returns coefficients for degrees 0..=degree, inserting
// explicit zero terms for absent degrees. e.Terms is already sorted and
// gap-free except for zero-coefficient degrees, which were dropped.
func (e *Equation) termsNoGaps(degree int64) []Term {
	out := make([]Term, 0, degree+1)
	idx := 0
	for i := int64(0); i <= degree; i++ {
		if idx < len(e.Terms) && e.Terms[idx].Degree == i {
			out = append(out, e.Terms[idx])
			idx++
		} else {
			out = append(out, Term{Coefficient: 0, Degree: i})
		}
	}
	return out
}

func (e *Equation) solveDegree1() (string, error) {
	terms := e.termsNoGaps(1)
	a := terms[1].Coefficient
	b := -terms[0].Coefficient
	value := b / a
	if !isFiniteFloat(value) {
		return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(value).String())
	}
	if value == 0 {
		value = 0 // collapse -0 to 0
	}
	return fmt.Sprintf("Solution:\n%s", numeric.Float(value).String()), nil
}

func (e *Equation) solveDegree2() (string, error) {
	terms := e.termsNoGaps(2)
	c, b, a := terms[0].Coefficient, terms[1].Coefficient, terms[2].Coefficient
	discriminant := b*b - 4*a*c
	if !isFiniteFloat(discriminant) {
		return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(discriminant).String())
	}
	switch {
	case discriminant == 0:
		value := -b / (2 * a)
		if !isFiniteFloat(value) {
			return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(value).String())
		}
		return fmt.Sprintf("Only one solution on R:\n%s", numeric.Float(value).String()), nil
	case discriminant > 0:
		sqrtD := math.Sqrt(discriminant)
		v1 := (-b + sqrtD) / (2 * a)
		v2 := (-b - sqrtD) / (2 * a)
		if !isFiniteFloat(v1) {
			return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(v1).String())
		}
		if !isFiniteFloat(v2) {
			return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(v2).String())
		}
		return fmt.Sprintf("Two solutions on R:\n%s\n%s", numeric.Float(v1).String(), numeric.Float(v2).String()), nil
	default:
		sqrtD := math.Sqrt(-discriminant)
		r := -b / (2 * a)
		z := math.Abs(sqrtD / (2 * a))
		if !isFiniteFloat(r) {
			return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(r).String())
		}
		if !isFiniteFloat(z) {
			return "", fmt.Errorf("The calculation resulted in '%s'.", numeric.Float(z).String())
		}
		switch {
		case r == 0 && z == 1:
			return "Two solutions on C:\n\u00b1 i", nil
		case r == 0:
			return fmt.Sprintf("Two solutions on C:\n\u00b1 %si", numeric.Float(z).String()), nil
		case z == 1:
			return fmt.Sprintf("Two solutions on C:\n%s \u00b1 i", numeric.Float(r).String()), nil
		default:
			return fmt.Sprintf("Two solutions on C:\n%s \u00b1 %si", numeric.Float(r).String(), numeric.Float(z).String()), nil
		}
	}
}
