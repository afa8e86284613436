// Package store holds a computor session's variable and function
// bindings, including the fixed set of built-in functions that shadow
// user writes (§4.6).
package store

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kotabrog/go-computor/internal/ast"
	"github.com/kotabrog/go-computor/internal/numeric"
)

var fold = cases.Fold()

// foldName case-folds an identifier the way the store keys its maps, so
// "X" and "x" name the same binding.
func foldName(name string) string { return fold.String(name) }

// Function is a user- or built-in-defined function body: a tree expressed
// in terms of a single parameter name.
type Function struct {
	Param string
	Body  *ast.Node
}

// Store is a session's bindings: user variables, user functions, and the
// fixed built-in function table. Lookups consult built-ins first, so a
// built-in name can never be shadowed.
type Store struct {
	variables map[string]numeric.Num
	functions map[string]*Function
	builtins  map[string]*Function
}

// BuiltinNames lists the six functions New registers in every session.
var BuiltinNames = []string{"exp", "sqrt", "abs", "sin", "cos", "tan"}

// New creates a Store with the standard built-in functions registered.
func New() *Store {
	s := &Store{
		variables: make(map[string]numeric.Num),
		functions: make(map[string]*Function),
		builtins:  make(map[string]*Function),
	}
	for _, name := range BuiltinNames {
		s.builtins[name] = &Function{Param: "x", Body: ast.NewFunc(name, ast.NewVariable("x"))}
	}
	return s
}

// IsBuiltin reports whether name (case-folded) names a built-in function.
func (s *Store) IsBuiltin(name string) bool {
	_, ok := s.builtins[foldName(name)]
	return ok
}

// IsFunction reports whether name (case-folded) resolves to any function,
// built-in or user-defined — the classification rule the parser uses to
// decide whether an identifier followed by "(" is a function call
// (§4.2.5).
func (s *Store) IsFunction(name string) bool {
	folded := foldName(name)
	if _, ok := s.builtins[folded]; ok {
		return true
	}
	_, ok := s.functions[folded]
	return ok
}

// SetVariable registers a numeric binding. Shadowing a built-in name is
// rejected.
func (s *Store) SetVariable(name string, value numeric.Num) error {
	folded := foldName(name)
	if _, ok := s.builtins[folded]; ok {
		return fmt.Errorf("The variable cannot be registered")
	}
	delete(s.functions, folded)
	s.variables[folded] = value
	return nil
}

// SetFunction registers a user function body. Shadowing a built-in name is
// rejected.
func (s *Store) SetFunction(name, param string, body *ast.Node) error {
	folded := foldName(name)
	if _, ok := s.builtins[folded]; ok {
		return fmt.Errorf("The function cannot be registered")
	}
	delete(s.variables, folded)
	s.functions[folded] = &Function{Param: param, Body: body}
	return nil
}

// GetVariable looks up a numeric binding (never a function).
func (s *Store) GetVariable(name string) (numeric.Num, bool) {
	v, ok := s.variables[foldName(name)]
	return v, ok
}

// GetFunction looks up a function, built-in first.
func (s *Store) GetFunction(name string) (*Function, bool) {
	folded := foldName(name)
	if f, ok := s.builtins[folded]; ok {
		return f, true
	}
	f, ok := s.functions[folded]
	return f, ok
}

// ApplyBuiltin evaluates a built-in function by name against a concrete
// argument. Every result is finiteness-checked before returning.
func ApplyBuiltin(name string, arg numeric.Num) (numeric.Num, error) {
	f, ok := arg.(numeric.Float)
	if !ok {
		return nil, fmt.Errorf("error: unsupported non float %s", name)
	}
	x := float64(f)

	var result numeric.Num
	switch foldName(name) {
	case "exp":
		result = numeric.Float(math.Exp(x))
	case "sqrt":
		if x >= 0 {
			result = numeric.Float(math.Sqrt(x))
		} else {
			result = numeric.NewComplex(0, math.Sqrt(-x))
		}
	case "abs":
		result = numeric.Float(math.Abs(x))
	case "sin":
		result = numeric.Float(math.Sin(x))
	case "cos":
		result = numeric.Float(math.Cos(x))
	case "tan":
		result = numeric.Float(math.Tan(x))
	default:
		return nil, fmt.Errorf("error: unsupported %s", name)
	}
	if !result.IsFinite() {
		return nil, fmt.Errorf("The calculation resulted in '%s'.", result.String())
	}
	return result, nil
}

// ShowVariables renders every user variable as "key: value" sorted by
// key, one per line, or a placeholder message when none are defined.
func (s *Store) ShowVariables() string {
	if len(s.variables) == 0 {
		return "No variables defined yet\n"
	}
	keys := make([]string, 0, len(s.variables))
	for k := range s.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, s.variables[k].String())
	}
	return b.String()
}

// ShowFunctions renders every user function as "key(param): pretty_body"
// sorted by key, or a placeholder message when none are defined.
func (s *Store) ShowFunctions() string {
	if len(s.functions) == 0 {
		return "No functions defined yet\n"
	}
	keys := make([]string, 0, len(s.functions))
	for k := range s.functions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		f := s.functions[k]
		fmt.Fprintf(&b, "%s(%s): %s\n", k, f.Param, f.Body.String())
	}
	return b.String()
}

