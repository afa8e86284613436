package parser

import (
	"testing"

	"github.com/kotabrog/go-computor/internal/ast"
	"github.com/kotabrog/go-computor/internal/eval"
	"github.com/kotabrog/go-computor/internal/lexer"
	"github.com/kotabrog/go-computor/internal/numeric"
	"github.com/kotabrog/go-computor/internal/store"
)

func mustParse(t *testing.T, src string, st *store.Store) *ast.Node {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize(%q): %v", src, err)
	}
	n, err := Parse(toks, st)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	return n
}

func TestPrecedenceAndAssociativity(t *testing.T) {
	// The printer emits no grouping parens, so the tree shape is checked
	// through the value it folds to: 2 ^ 3 ^ 3 groups left, (2^3)^3 = 512.
	cases := []struct {
		src   string
		want  string
		value float64
	}{
		{"4 + 5 * 6", "4 + 5 * 6", 34},
		{"4 * 5 + 6", "4 * 5 + 6", 26},
		{"4 + 5 + 6", "4 + 5 + 6", 15},
		{"2 ^ 3 ^ 3", "2 ^ 3 ^ 3", 512},
		{"2 * 3 ^ 2", "2 * 3 ^ 2", 18},
	}
	for _, c := range cases {
		n := mustParse(t, c.src, nil)
		if got := n.String(); got != c.want {
			t.Errorf("%q: got %q, want %q", c.src, got, c.want)
		}
		v, ok, err := eval.Eval(n, store.New(), nil)
		if err != nil || !ok || v != numeric.Float(c.value) {
			t.Errorf("%q: folded to %v (ok=%v, err=%v), want %v", c.src, v, ok, err, c.value)
		}
	}
}

func TestUnaryMinusAfterBinaryOperator(t *testing.T) {
	n := mustParse(t, "4 + -3", nil)
	if got, want := n.String(), "4 + - 3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLeadingUnaryMinus(t *testing.T) {
	n := mustParse(t, "-3 + 4", nil)
	if got, want := n.String(), "- 3 + 4"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationNumberVariable(t *testing.T) {
	n := mustParse(t, "3x", nil)
	if got, want := n.String(), "3 * x"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationVariableNumber(t *testing.T) {
	n := mustParse(t, "x3", nil)
	if got, want := n.String(), "x * 3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationVariableVariable(t *testing.T) {
	n := mustParse(t, "xy", nil)
	// the lexer only ever produces one IDENT per maximal letter run, so
	// "xy" lexes as a single identifier — implicit multiplication between
	// two separate identifiers requires a separating token such as a paren.
	if got, want := n.String(), "xy"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationTwoSeparateIdentifiers(t *testing.T) {
	n := mustParse(t, "x y", nil)
	if got, want := n.String(), "x * y"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationParenAdjacentToNumber(t *testing.T) {
	n := mustParse(t, "2(3+4)", nil)
	if got, want := n.String(), "2 * ( 3 + 4 )"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationAdjacentParens(t *testing.T) {
	n := mustParse(t, "(1+2)(3+4)", nil)
	if got, want := n.String(), "( 1 + 2 ) * ( 3 + 4 )"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitMultiplicationImaginaryAdjacentToNumber(t *testing.T) {
	n := mustParse(t, "2i", nil)
	if got, want := n.String(), "2 * i"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmptyParensIsSyntaxError(t *testing.T) {
	toks, err := lexer.Tokenize("()")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Parse(toks, nil); err == nil {
		t.Fatal("expected syntax error for empty parens")
	}
}

func TestUnmatchedOpenParenIsSyntaxError(t *testing.T) {
	toks, err := lexer.Tokenize("(1+2")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Parse(toks, nil); err == nil {
		t.Fatal("expected syntax error for unmatched (")
	}
}

func TestUnmatchedCloseParenIsSyntaxError(t *testing.T) {
	toks, err := lexer.Tokenize("1+2)")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Parse(toks, nil); err == nil {
		t.Fatal("expected syntax error for unmatched )")
	}
}

func TestTwoOperatorsInARowIsSyntaxError(t *testing.T) {
	toks, err := lexer.Tokenize("4*/5")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Parse(toks, nil); err == nil {
		t.Fatal("expected syntax error for two operators in a row")
	}
}

func TestFunctionCallRequiresParens(t *testing.T) {
	st := store.New()
	toks, err := lexer.Tokenize("sqrt 4")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Parse(toks, st); err == nil {
		t.Fatal("expected error: function needs parentheses")
	}
}

func TestFunctionCallParsesAsFuncNode(t *testing.T) {
	st := store.New()
	n := mustParse(t, "sqrt(4)", st)
	if got, want := n.String(), "sqrt ( 4 )"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if n.Kind != ast.Func {
		t.Fatalf("expected Func node, got Kind=%v", n.Kind)
	}
}

func TestIdentNotInStoreIsVariableNotFunction(t *testing.T) {
	st := store.New()
	n := mustParse(t, "f(4)", st)
	// f is not (yet) a function, so the parser must read this as implicit
	// multiplication between the variable f and a parenthesised group.
	if got, want := n.String(), "f * ( 4 )"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMatrixLiteral(t *testing.T) {
	n := mustParse(t, "[[1,2];[3,4]]", nil)
	if got, want := n.String(), "[[1,2];[3,4]]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMatrixLiteralRaggedRowsIsConversionFailure(t *testing.T) {
	toks, err := lexer.Tokenize("[[1,2];[3]]")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Parse(toks, nil); err == nil {
		t.Fatal("expected Conversion Failure for ragged matrix rows")
	}
}

func TestMatrixAdjacentToNumberIsImplicitMultiplication(t *testing.T) {
	n := mustParse(t, "2[[1,2];[3,4]]", nil)
	if got, want := n.String(), "2 * [[1,2];[3,4]]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSeparateEqual(t *testing.T) {
	toks, err := lexer.Tokenize("x = 4 + 5")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	left, right, err := SeparateEqual(toks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(left) != 1 || left[0].Literal != "x" {
		t.Errorf("left = %+v", left)
	}
	if len(right) != 3 {
		t.Errorf("right = %+v", right)
	}
}

func TestSeparateEqualRejectsMissingOrDoubled(t *testing.T) {
	toks, _ := lexer.Tokenize("x + 1")
	if _, _, err := SeparateEqual(toks); err == nil {
		t.Fatal("expected error: no =")
	}
	toks, _ = lexer.Tokenize("x = 1 = 2")
	if _, _, err := SeparateEqual(toks); err == nil {
		t.Fatal("expected error: = appeared twice")
	}
}

func TestIsQuestionTokens(t *testing.T) {
	toks, _ := lexer.Tokenize("?")
	if !IsQuestionTokens(toks) {
		t.Error("expected ? to be recognised")
	}
	toks, _ = lexer.Tokenize("x")
	if IsQuestionTokens(toks) {
		t.Error("did not expect x to be recognised as ?")
	}
}

func TestIsVariableRegister(t *testing.T) {
	toks, _ := lexer.Tokenize("x")
	if !IsVariableRegister(toks) {
		t.Error("expected x to be recognised as a variable register LHS")
	}
	toks, _ = lexer.Tokenize("x + 1")
	if IsVariableRegister(toks) {
		t.Error("did not expect x + 1 to be recognised")
	}
}

func TestIsFuncRegister(t *testing.T) {
	toks, _ := lexer.Tokenize("f(x)")
	name, param, ok := IsFuncRegister(toks)
	if !ok || name != "f" || param != "x" {
		t.Errorf("got name=%q param=%q ok=%v", name, param, ok)
	}
	toks, _ = lexer.Tokenize("f(x, y)")
	if _, _, ok := IsFuncRegister(toks); ok {
		t.Error("did not expect a two-parameter prefix to be recognised")
	}
}

func TestEndsWithQuestion(t *testing.T) {
	toks, _ := lexer.Tokenize("x + 1 ?")
	rest, ok := EndsWithQuestion(toks)
	if !ok || len(rest) != 3 {
		t.Errorf("rest = %+v, ok = %v", rest, ok)
	}
	toks, _ = lexer.Tokenize("x + 1")
	if _, ok := EndsWithQuestion(toks); ok {
		t.Error("did not expect x + 1 to end with ?")
	}
}
