// Package parser builds an expression tree from a flat token slice. It
// implements §4.2 of the language spec: a cursor-based, precedence
// climbing parser that mutates its own token buffer in place to splice in
// a synthetic `*` wherever implicit multiplication applies.
package parser

import (
	"fmt"

	"github.com/kotabrog/go-computor/internal/ast"
	"github.com/kotabrog/go-computor/internal/numeric"
	"github.com/kotabrog/go-computor/internal/store"
	"github.com/kotabrog/go-computor/internal/token"
)

var errSyntax = fmt.Errorf("syntax error")

// Parser walks a token slice with an explicit cursor, building an
// ast.Node tree. The token slice grows in place when implicit
// multiplication is inserted.
type Parser struct {
	tokens []token.Token
	index  int
	store  *store.Store // used to classify an identifier as a function call; may be nil
}

// New creates a Parser over tokens. st classifies identifiers as function
// calls (nil treats every identifier as a variable reference).
func New(tokens []token.Token, st *store.Store) *Parser {
	return &Parser{tokens: tokens, store: st}
}

// Parse tokenises nothing itself — it consumes an already-lexed slice and
// returns the resulting tree, or the first syntax error encountered.
func Parse(tokens []token.Token, st *store.Store) (*ast.Node, error) {
	p := New(tokens, st)
	return p.MakeTree()
}

// MakeTree builds the full expression tree from the parser's token slice.
// Any token left over after a complete expression (most commonly a stray
// unmatched ")") is a syntax error.
func (p *Parser) MakeTree() (*ast.Node, error) {
	var root *ast.Node
	if err := p.parseExpr(&root); err != nil {
		return nil, err
	}
	if p.index < len(p.tokens) {
		return nil, errSyntax
	}
	if root == nil {
		return nil, errSyntax
	}
	return root, nil
}

// parseExpr consumes tokens into *tree until it runs out of input or
// reaches a ")" it does not own (left for the caller — root_tree level or
// an enclosing addParen/addFuncCall — to consume).
func (p *Parser) parseExpr(tree **ast.Node) error {
	for p.index < len(p.tokens) {
		tok := p.tokens[p.index]
		var err error
		switch {
		case tok.Type == token.RPAREN:
			return nil
		case isBinaryOpToken(tok.Type):
			err = p.addOperator(tree, tok.Type)
		case tok.Type == token.LPAREN:
			err = p.addParen(tree)
		case tok.Type == token.LBRACKET:
			err = p.addMatrix(tree)
		case tok.Type == token.NUMBER:
			err = p.addNumber(tree)
		case tok.Type == token.IMAG:
			err = p.addImaginary(tree)
		case tok.Type == token.IDENT:
			err = p.addIdent(tree)
		default:
			err = errSyntax
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// isBinaryOp reports whether op is one of the six arithmetic binary
// operators that occupy a spine position in the tree — Paren/RParen are
// grouping sentinels, not operators in this sense.
func isBinaryOp(op ast.Operator) bool {
	switch op {
	case ast.Plus, ast.Minus, ast.Mul, ast.Div, ast.Rem, ast.Pow, ast.MatMul:
		return true
	}
	return false
}

func isBinaryOpToken(tt token.Type) bool {
	_, ok := tokenToOperator(tt)
	return ok
}

func tokenToOperator(tt token.Type) (ast.Operator, bool) {
	switch tt {
	case token.PLUS:
		return ast.Plus, true
	case token.MINUS:
		return ast.Minus, true
	case token.STAR:
		return ast.Mul, true
	case token.SLASH:
		return ast.Div, true
	case token.PERCENT:
		return ast.Rem, true
	case token.CARET:
		return ast.Pow, true
	case token.DSTAR:
		return ast.MatMul, true
	}
	return 0, false
}

// openSlot walks down the tree's rightmost spine of binary operators and
// returns a pointer to the first empty child: the whole tree if it is nil,
// or the Right field of the rightmost binary-operator node whose Right is
// still unset. If no such empty slot exists (the tree is, or ends in, a
// complete value), it returns a pointer to that occupied node instead —
// callers distinguish the two cases by checking whether *slot is nil.
func (p *Parser) openSlot(tree **ast.Node) **ast.Node {
	cur := tree
	for {
		if *cur == nil {
			return cur
		}
		if (*cur).Kind != ast.Op || !isBinaryOp((*cur).Operator) {
			return cur
		}
		if (*cur).Right == nil {
			return &(*cur).Right
		}
		cur = &(*cur).Right
	}
}

// insertMul splices a synthetic "*" token at the cursor without advancing
// it, so the token just read is re-examined on the next loop iteration —
// this time finding an open slot after the multiplication is built.
func (p *Parser) insertMul() {
	star := token.Token{Type: token.STAR, Literal: "*"}
	p.tokens = append(p.tokens, token.Token{})
	copy(p.tokens[p.index+1:], p.tokens[p.index:])
	p.tokens[p.index] = star
}

// addOperator attaches a binary operator token at the correct precedence
// position in *tree, or starts a unary +/- form when the next value slot
// is empty (§4.2.2).
func (p *Parser) addOperator(tree **ast.Node, tt token.Type) error {
	op, _ := tokenToOperator(tt)

	slot := p.openSlot(tree)
	if *slot == nil {
		if op == ast.Plus || op == ast.Minus {
			*slot = ast.NewOp(op, ast.NewDummy(), nil)
			p.index++
			return nil
		}
		return fmt.Errorf("Unsupported unary operators: syntax error")
	}

	cur := tree
	for (*cur).Kind == ast.Op && isBinaryOp((*cur).Operator) && (*cur).Right != nil && (*cur).Operator.Priority(op) {
		cur = &(*cur).Right
	}
	if (*cur).Kind == ast.Op && isBinaryOp((*cur).Operator) && (*cur).Right == nil {
		return errSyntax
	}
	*cur = ast.NewOp(op, *cur, nil)
	p.index++
	return nil
}

// addNumber places a numeric literal at the open slot, or inserts an
// implicit "*" and re-enters if the slot is already occupied.
func (p *Parser) addNumber(tree **ast.Node) error {
	slot := p.openSlot(tree)
	if *slot != nil {
		p.insertMul()
		return nil
	}
	tok := p.tokens[p.index]
	n, err := numeric.ParseFloat(tok.Literal)
	if err != nil {
		return err
	}
	if !n.IsFinite() {
		return fmt.Errorf("The calculation resulted in '%s'.", n.String())
	}
	p.index++
	*slot = ast.NewNumber(n)
	return nil
}

// addImaginary places the imaginary-unit constant i (0 + 1i).
func (p *Parser) addImaginary(tree **ast.Node) error {
	slot := p.openSlot(tree)
	if *slot != nil {
		p.insertMul()
		return nil
	}
	p.index++
	*slot = ast.NewNumber(numeric.Complex{R: 0, Z: 1})
	return nil
}

// addIdent places a variable reference, or — if the session store
// classifies the name as a function — parses a function call.
func (p *Parser) addIdent(tree **ast.Node) error {
	slot := p.openSlot(tree)
	if *slot != nil {
		p.insertMul()
		return nil
	}

	name := p.tokens[p.index].Literal
	if p.store != nil && p.store.IsFunction(name) {
		return p.addFuncCall(tree, slot, name)
	}
	p.index++
	*slot = ast.NewVariable(name)
	return nil
}

// addFuncCall parses "name ( argument )" into a Func node. The leading
// identifier was already confirmed by addIdent to land on an empty slot.
func (p *Parser) addFuncCall(tree, slot **ast.Node, name string) error {
	p.index++ // consume the identifier
	if p.index >= len(p.tokens) || p.tokens[p.index].Type != token.LPAREN {
		return fmt.Errorf("function needs parentheses")
	}
	p.index++ // consume "("

	argParen := ast.NewOp(ast.Paren, nil, nil)
	if err := p.parseExpr(&argParen.Left); err != nil {
		return err
	}
	if argParen.Left == nil {
		return errSyntax
	}
	if p.index >= len(p.tokens) || p.tokens[p.index].Type != token.RPAREN {
		return errSyntax
	}
	p.index++ // consume ")"
	argParen.Right = ast.NewRParen()

	*slot = &ast.Node{Kind: ast.Func, Name: name, Left: argParen, Right: ast.NewRParen()}
	return nil
}

// addParen parses a grouped sub-expression "( … )" into a Paren node.
func (p *Parser) addParen(tree **ast.Node) error {
	slot := p.openSlot(tree)
	if *slot != nil {
		p.insertMul()
		return nil
	}
	p.index++ // consume "("

	parenNode := ast.NewOp(ast.Paren, nil, nil)
	if err := p.parseExpr(&parenNode.Left); err != nil {
		return err
	}
	if parenNode.Left == nil {
		return errSyntax
	}
	if p.index >= len(p.tokens) || p.tokens[p.index].Type != token.RPAREN {
		return errSyntax
	}
	p.index++ // consume ")"
	parenNode.Right = ast.NewRParen()

	*slot = parenNode
	return nil
}

// addMatrix parses a matrix literal "[ [n,n,…] ; [n,…] ; … ]" into a
// Number node holding a numeric.Matrix (§4.2.4).
func (p *Parser) addMatrix(tree **ast.Node) error {
	slot := p.openSlot(tree)
	if *slot != nil {
		p.insertMul()
		return nil
	}
	m, err := p.parseMatrixLiteral()
	if err != nil {
		return err
	}
	*slot = ast.NewNumber(m)
	return nil
}

func (p *Parser) parseMatrixLiteral() (numeric.Num, error) {
	if !p.peekIs(token.LBRACKET) {
		return nil, errSyntax
	}
	p.index++ // outer [

	var rows [][]float64
	for {
		if !p.peekIs(token.LBRACKET) {
			return nil, errSyntax
		}
		p.index++ // row [

		var row []float64
		for {
			if !p.peekIs(token.NUMBER) {
				return nil, errSyntax
			}
			v, err := numeric.ParseFloat(p.tokens[p.index].Literal)
			if err != nil {
				return nil, err
			}
			f, ok := numeric.IsReal(v)
			if !ok {
				return nil, fmt.Errorf("Conversion Failure")
			}
			row = append(row, f)
			p.index++
			if p.peekIs(token.COMMA) {
				p.index++
				continue
			}
			break
		}
		if !p.peekIs(token.RBRACKET) {
			return nil, errSyntax
		}
		p.index++ // row ]
		rows = append(rows, row)

		if p.peekIs(token.SEMI) {
			p.index++
			continue
		}
		break
	}
	if !p.peekIs(token.RBRACKET) {
		return nil, errSyntax
	}
	p.index++ // outer ]

	m, err := numeric.NewMatrix(rows)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) peekIs(tt token.Type) bool {
	return p.index < len(p.tokens) && p.tokens[p.index].Type == tt
}

// SeparateEqual splits tokens at the sole "=" (§4.8 step 3). Exactly one
// "=" must be present.
func SeparateEqual(tokens []token.Token) (left, right []token.Token, err error) {
	seen := false
	for _, tok := range tokens {
		if tok.Type == token.EQUAL {
			if seen {
				return nil, nil, fmt.Errorf("= appeared twice: syntax error")
			}
			seen = true
			continue
		}
		if seen {
			right = append(right, tok)
		} else {
			left = append(left, tok)
		}
	}
	if !seen {
		return nil, nil, fmt.Errorf("= never appeared: syntax error")
	}
	return left, right, nil
}

// IsQuestionTokens reports whether tokens is the single-token sequence
// "?" (the "expr = ?" evaluation shape's RHS).
func IsQuestionTokens(tokens []token.Token) bool {
	return len(tokens) == 1 && tokens[0].Type == token.QUESTION
}

// IsVariableRegister reports whether tokens is a single identifier (the
// "name = expr" binding shape's LHS).
func IsVariableRegister(tokens []token.Token) bool {
	return len(tokens) == 1 && tokens[0].Type == token.IDENT
}

// IsFuncRegister reports whether tokens is the four-token prefix
// "ident ( ident )" (the function-definition shape's LHS), returning the
// function name and parameter name when it is.
func IsFuncRegister(tokens []token.Token) (name, param string, ok bool) {
	if len(tokens) != 4 {
		return "", "", false
	}
	if tokens[0].Type != token.IDENT || tokens[1].Type != token.LPAREN ||
		tokens[2].Type != token.IDENT || tokens[3].Type != token.RPAREN {
		return "", "", false
	}
	return tokens[0].Literal, tokens[2].Literal, true
}

// EndsWithQuestion reports whether the final token is "?", and returns the
// tokens with it stripped (the equation-solve dispatch shape, §4.8 step 4).
func EndsWithQuestion(tokens []token.Token) (rest []token.Token, ok bool) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.QUESTION {
		return tokens, false
	}
	return tokens[:len(tokens)-1], true
}
