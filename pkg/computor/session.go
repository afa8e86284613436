// Package computor is the public entry point of the calculator: a Session
// wraps a variable/function store and a command history behind a single
// Compute method, implementing §4.8's dispatch.
package computor

import (
	"fmt"

	"github.com/kotabrog/go-computor/internal/ast"
	"github.com/kotabrog/go-computor/internal/eval"
	"github.com/kotabrog/go-computor/internal/history"
	"github.com/kotabrog/go-computor/internal/lexer"
	"github.com/kotabrog/go-computor/internal/parser"
	"github.com/kotabrog/go-computor/internal/polynomial"
	"github.com/kotabrog/go-computor/internal/store"
	"github.com/kotabrog/go-computor/internal/token"
)

// Session is a single calculator session: its store and history persist
// across calls to Compute. Not safe for concurrent use — a session belongs
// to one REPL loop.
type Session struct {
	Store   *store.Store
	History *history.History
}

// New creates an empty Session with the standard built-in functions
// registered.
func New() *Session {
	return &Session{Store: store.New(), History: history.New()}
}

// Compute evaluates a single input line and returns its recorded result
// (the short form logged to history) and its display text (what the REPL
// prints), or an error for malformed input. On success it also pushes the
// line and result onto the session's history.
func (s *Session) Compute(line string) (result, display string, err error) {
	tokens, err := lexer.Tokenize(line)
	if err != nil {
		return "", "", err
	}

	if len(tokens) == 1 && tokens[0].Type == token.IDENT {
		isShow := true
		switch tokens[0].Literal {
		case "variables":
			display = s.Store.ShowVariables()
		case "functions":
			display = s.Store.ShowFunctions()
		case "history":
			display = s.History.Show()
		default:
			isShow = false
		}
		if isShow {
			s.History.Push(line, result)
			return result, display, nil
		}
	}

	left, right, err := parser.SeparateEqual(tokens)
	if err != nil {
		return "", "", err
	}

	result, display, err = s.dispatch(left, right)
	if err != nil {
		return "", "", err
	}
	s.History.Push(line, result)
	return result, display, nil
}

func (s *Session) dispatch(left, right []token.Token) (result, display string, err error) {
	if parser.IsQuestionTokens(right) {
		return s.evalQuery(left)
	}

	if rest, ok := parser.EndsWithQuestion(right); ok {
		return s.solveEquation(left, rest)
	}

	if parser.IsVariableRegister(left) {
		return s.registerVariable(left[0].Literal, right)
	}

	if name, param, ok := parser.IsFuncRegister(left); ok {
		return s.registerFunction(name, param, right)
	}

	return "", "", fmt.Errorf("Unsupported format")
}

func (s *Session) evalQuery(lhsTokens []token.Token) (result, display string, err error) {
	tree, err := parser.Parse(lhsTokens, s.Store)
	if err != nil {
		return "", "", err
	}
	v, ok, err := eval.Eval(tree, s.Store, nil)
	if err != nil {
		return "", "", err
	}
	if ok {
		return v.String(), v.String() + "\n", nil
	}
	residual := tree.String()
	return residual, "  " + residual + "\n", nil
}

func (s *Session) solveEquation(lhsTokens, rhsTokens []token.Token) (result, display string, err error) {
	lhsTree, err := parser.Parse(lhsTokens, s.Store)
	if err != nil {
		return "", "", err
	}
	rhsTree, err := parser.Parse(rhsTokens, s.Store)
	if err != nil {
		return "", "", err
	}
	if _, _, err := eval.Eval(lhsTree, s.Store, nil); err != nil {
		return "", "", err
	}
	if _, _, err := eval.Eval(rhsTree, s.Store, nil); err != nil {
		return "", "", err
	}

	eq, err := polynomial.Build(lhsTree, rhsTree)
	if err != nil {
		return "", "", err
	}
	solved, err := eq.Solve()
	if err != nil {
		return "", "", err
	}

	canonical := fmt.Sprintf("  %s = 0\n", eq.String())
	return canonical + solved, canonical + solved + "\n", nil
}

func (s *Session) registerVariable(name string, rhsTokens []token.Token) (result, display string, err error) {
	tree, err := parser.Parse(rhsTokens, s.Store)
	if err != nil {
		return "", "", err
	}
	v, ok, err := eval.Eval(tree, s.Store, nil)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("Undefined Variables")
	}
	if err := s.Store.SetVariable(name, v); err != nil {
		return "", "", err
	}
	return v.String(), v.String() + "\n", nil
}

func (s *Session) registerFunction(name, param string, rhsTokens []token.Token) (result, display string, err error) {
	tree, err := parser.Parse(rhsTokens, s.Store)
	if err != nil {
		return "", "", err
	}
	local := &eval.Binding{Name: param}
	if _, _, err := eval.Eval(tree, s.Store, local); err != nil {
		return "", "", err
	}
	if other, ok := freeVariable(tree, param); ok {
		return "", "", fmt.Errorf("%s, %s: error two variable", other, param)
	}
	if err := s.Store.SetFunction(name, param, tree); err != nil {
		return "", "", err
	}
	body := tree.String()
	return body, "  " + body + "\n", nil
}

// freeVariable finds a Variable node in tree whose name is not except,
// reporting a function body that refers to more than one free name.
func freeVariable(tree *ast.Node, except string) (string, bool) {
	if tree == nil {
		return "", false
	}
	if tree.Kind == ast.Variable && tree.Name != except {
		return tree.Name, true
	}
	if name, ok := freeVariable(tree.Left, except); ok {
		return name, true
	}
	return freeVariable(tree.Right, except)
}
