// Package ast defines the expression tree computor's parser builds and its
// evaluator and printers walk: a small, closed set of node kinds mirroring
// §4.2's grammar.
package ast

import (
	"strings"

	"github.com/kotabrog/go-computor/internal/numeric"
)

// Operator identifies a binary operator or one of the two parenthesis
// sentinels that bracket a sub-expression in the tree.
type Operator int

const (
	Plus Operator = iota
	Minus
	Mul
	Div
	Rem
	MatMul // **
	Pow    // ^
	Paren  // ( — opens a grouped sub-expression
	RParen // ) — inert sentinel closing a Paren group
)

var operatorSymbols = map[Operator]string{
	Plus:   "+",
	Minus:  "-",
	Mul:    "*",
	Div:    "/",
	Rem:    "%",
	MatMul: "**",
	Pow:    "^",
	Paren:  "(",
	RParen: ")",
}

func (op Operator) String() string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return "?"
}

// Priority reports whether rhs binds tighter than op — i.e. whether a
// pending node with operator op must yield the insertion point to a new
// node with operator rhs during parsing (§4.2.2's precedence climb).
func (op Operator) Priority(rhs Operator) bool {
	switch op {
	case Plus, Minus:
		switch rhs {
		case Mul, Div, Rem, MatMul, Pow:
			return true
		}
	case Mul, Div, Rem, MatMul:
		return rhs == Pow
	case Pow:
		return rhs == Paren
	}
	return false
}

// Kind identifies the variant of a Node.
type Kind int

const (
	Dummy Kind = iota
	Op
	Number
	Variable
	Func
)

// Node is a single element of the expression tree. Its active fields
// depend on Kind:
//
//	Dummy:    no fields.
//	Op:       Operator, Left, Right.
//	Number:   Value.
//	Variable: Name.
//	Func:     Name, Left (the argument, a Paren subtree), Right (an RParen
//	          sentinel, mirroring an Op node's shape so the printer and
//	          evaluator can treat it uniformly).
type Node struct {
	Kind     Kind
	Operator Operator
	Value    numeric.Num
	Name     string
	Left     *Node
	Right    *Node
}

// NewDummy returns an inert zero-value placeholder node.
func NewDummy() *Node { return &Node{Kind: Dummy} }

// NewNumber wraps a concrete numeric value as a leaf node.
func NewNumber(v numeric.Num) *Node { return &Node{Kind: Number, Value: v} }

// NewVariable creates a free-variable reference node.
func NewVariable(name string) *Node { return &Node{Kind: Variable, Name: name} }

// NewOp creates a binary operator node over left and right. For Paren
// nodes, right is conventionally an RParen sentinel (see NewRParen).
func NewOp(op Operator, left, right *Node) *Node {
	return &Node{Kind: Op, Operator: op, Left: left, Right: right}
}

// NewRParen returns the inert sentinel that closes a Paren group.
func NewRParen() *Node { return &Node{Kind: Op, Operator: RParen} }

// NewFunc creates a function-call node; arg is wrapped in a Paren/RParen
// pair to match how the parser represents a parenthesised argument.
func NewFunc(name string, arg *Node) *Node {
	return &Node{Kind: Func, Name: name, Left: NewOp(Paren, arg, NewRParen()), Right: NewRParen()}
}

// Clone deep-copies the subtree rooted at n. A nil receiver clones to nil,
// so callers may clone optional children without a separate nil check.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Left = n.Left.Clone()
	clone.Right = n.Right.Clone()
	return &clone
}

// IsRParen reports whether n is the inert ) sentinel.
func (n *Node) IsRParen() bool {
	return n != nil && n.Kind == Op && n.Operator == RParen
}

// String pretty-prints the tree in infix order per §4.6: Paren emits "(",
// RParen emits ")", Func emits "name (argument)", tokens are separated by
// a single space, and the result has no trailing space.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return strings.TrimRight(b.String(), " ")
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Dummy:
		// emits nothing
	case Number:
		b.WriteString(n.Value.String())
		b.WriteByte(' ')
	case Variable:
		b.WriteString(n.Name)
		b.WriteByte(' ')
	case Func:
		b.WriteString(n.Name)
		b.WriteByte(' ')
		n.Left.write(b)
	case Op:
		switch n.Operator {
		case RParen:
			b.WriteString(") ")
		case Paren:
			b.WriteString("( ")
			n.Left.write(b)
			n.Right.write(b)
		default:
			n.Left.write(b)
			b.WriteString(n.Operator.String())
			b.WriteByte(' ')
			n.Right.write(b)
		}
	}
}
