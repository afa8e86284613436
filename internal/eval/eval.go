// Package eval implements computor's partial evaluator (§4.3): a
// recursive post-order walk over an ast.Node tree that folds every
// fully-concrete subtree into a Number leaf in place, leaving symbolic
// residuals rewritten into a canonical printable form.
package eval

import (
	"fmt"

	"github.com/kotabrog/go-computor/internal/ast"
	"github.com/kotabrog/go-computor/internal/numeric"
	"github.com/kotabrog/go-computor/internal/store"
)

// Binding is the local substitution in effect while compiling or applying
// a function body: a single name tagged with either a concrete value, a
// symbolic subtree standing in for it, or neither (reserved but unbound,
// during pure function-body compilation).
type Binding struct {
	Name  string
	Value numeric.Num
	Tree  *ast.Node
	Bound bool
}

func (b *Binding) matches(name string) bool {
	return b != nil && b.Name == name
}

// Eval reduces tree in place and reports whether it fully folded to a
// concrete value. ok mirrors the original's Option<Num>: false means the
// subtree is a symbolic residual, not an error.
func Eval(tree *ast.Node, st *store.Store, local *Binding) (numeric.Num, bool, error) {
	if tree == nil {
		return nil, false, nil
	}

	switch tree.Kind {
	case ast.Number:
		return tree.Value, true, nil

	case ast.Dummy:
		v := numeric.Float(0)
		*tree = *ast.NewNumber(v)
		return v, true, nil

	case ast.Variable:
		return evalVariable(tree, st, local)

	case ast.Func:
		return evalFunc(tree, st, local)

	case ast.Op:
		return evalOp(tree, st, local)
	}
	return nil, false, nil
}

func evalVariable(tree *ast.Node, st *store.Store, local *Binding) (numeric.Num, bool, error) {
	name := tree.Name
	if local.matches(name) {
		if local.Tree != nil {
			*tree = *local.Tree.Clone()
			return nil, false, nil
		}
		if local.Bound {
			return local.Value, true, nil
		}
		return nil, false, nil
	}
	if v, ok := st.GetVariable(name); ok {
		*tree = *ast.NewNumber(v)
		return v, true, nil
	}
	return nil, false, nil
}

func evalFunc(tree *ast.Node, st *store.Store, local *Binding) (numeric.Num, bool, error) {
	// tree.Left is a Paren node wrapping the argument subtree.
	argHolder := tree.Left.Left
	argVal, argOK, err := Eval(argHolder, st, local)
	if err != nil {
		return nil, false, err
	}

	if st.IsBuiltin(tree.Name) {
		if argOK {
			result, err := store.ApplyBuiltin(tree.Name, argVal)
			if err != nil {
				return nil, false, err
			}
			*tree = *ast.NewNumber(result)
			return result, true, nil
		}
		return nil, false, nil
	}

	fn, ok := st.GetFunction(tree.Name)
	if !ok {
		return nil, false, nil
	}
	body := fn.Body.Clone()
	callLocal := &Binding{Name: fn.Param, Bound: argOK}
	if argOK {
		callLocal.Value = argVal
	} else {
		callLocal.Tree = argHolder.Clone()
	}
	result, ok, err := Eval(body, st, callLocal)
	if err != nil {
		return nil, false, err
	}
	if ok {
		*tree = *ast.NewNumber(result)
		return result, true, nil
	}
	*tree = *ast.NewOp(ast.Paren, body, ast.NewRParen())
	return nil, false, nil
}

func evalOp(tree *ast.Node, st *store.Store, local *Binding) (numeric.Num, bool, error) {
	switch tree.Operator {
	case ast.RParen:
		return numeric.Float(0), true, nil
	case ast.Paren:
		v, ok, err := Eval(tree.Left, st, local)
		if err != nil {
			return nil, false, err
		}
		if ok {
			*tree = *tree.Left
			return v, true, nil
		}
		return nil, false, nil
	}

	lv, lok, err := Eval(tree.Left, st, local)
	if err != nil {
		return nil, false, err
	}
	rv, rok, err := Eval(tree.Right, st, local)
	if err != nil {
		return nil, false, err
	}

	if lok && rok {
		result, err := applyOp(tree.Operator, lv, rv)
		if err != nil {
			return nil, false, err
		}
		*tree = *ast.NewNumber(result)
		return result, true, nil
	}

	if lok {
		cosmeticRewriteLeft(tree, lv)
	} else if rok {
		cosmeticRewriteRight(tree, rv)
	}
	return nil, false, nil
}

func applyOp(op ast.Operator, l, r numeric.Num) (numeric.Num, error) {
	switch op {
	case ast.Plus:
		return numeric.Add(l, r)
	case ast.Minus:
		return numeric.Sub(l, r)
	case ast.Mul:
		return numeric.Mul(l, r)
	case ast.Div:
		return numeric.Div(l, r)
	case ast.Rem:
		return numeric.Rem(l, r)
	case ast.Pow:
		return numeric.Pow(l, r)
	case ast.MatMul:
		return numeric.MatMul(l, r)
	}
	return nil, fmt.Errorf("unsupported operator in tree: %s", op)
}

func isAdditive(op ast.Operator) bool { return op == ast.Plus || op == ast.Minus }

// cosmeticRewriteRight folds a concrete right operand of a binary op whose
// left side is symbolic, per §4.4.3's sign-normalisation rewrite.
func cosmeticRewriteRight(tree *ast.Node, v numeric.Num) {
	if isAdditive(tree.Operator) {
		if v.NeedsSignReverse() {
			flipped := flipSign(v)
			tree.Operator = flipOp(tree.Operator)
			tree.Right = wrapIfNeeded(flipped)
			return
		}
		tree.Right = ast.NewNumber(v)
		return
	}
	tree.Right = wrapIfNeeded(v)
}

// cosmeticRewriteLeft mirrors cosmeticRewriteRight for a concrete left
// operand paired with a symbolic right side. §4.4.3's flip rewrite only
// applies to a sign-reversible constant on the right of +/-; a constant on
// the left of +/- is left exactly as folded, never wrapped.
func cosmeticRewriteLeft(tree *ast.Node, v numeric.Num) {
	if isAdditive(tree.Operator) {
		tree.Left = ast.NewNumber(v)
		return
	}
	tree.Left = wrapIfNeeded(v)
}

func wrapIfNeeded(v numeric.Num) *ast.Node {
	n := ast.NewNumber(v)
	if !v.NeedsDisplayParens() {
		return n
	}
	return ast.NewOp(ast.Paren, n, ast.NewRParen())
}

func flipOp(op ast.Operator) ast.Operator {
	if op == ast.Plus {
		return ast.Minus
	}
	return ast.Plus
}

func flipSign(v numeric.Num) numeric.Num {
	switch n := v.(type) {
	case numeric.Float:
		return numeric.Float(-float64(n))
	case numeric.Complex:
		return numeric.NewComplex(-n.R, -n.Z)
	default:
		return v
	}
}
