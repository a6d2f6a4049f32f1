// Package parser implements lazylang's recursive-descent,
// precedence-climbing parser (spec §4.2).
//
// The Pratt-style precedence table below follows the teacher's parser;
// the grammar itself
// is new, since lazylang is a single-expression, purely functional
// language rather than Basil's statement-oriented scripting language.
package parser

import (
	"fmt"
	"strings"

	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/lexer"
)

// Precedence levels, low to high (spec §4.2).
const (
	LOWEST int = iota
	PREC_PIPELINE
	PREC_OR
	PREC_AND
	PREC_COMPARE
	PREC_MERGE_RANGE
	PREC_SUM
	PREC_PRODUCT
)

var precedences = map[lexer.TokenType]int{
	lexer.PIPE:     PREC_PIPELINE,
	lexer.OROR:     PREC_OR,
	lexer.ANDAND:   PREC_AND,
	lexer.EQ:       PREC_COMPARE,
	lexer.NEQ:      PREC_COMPARE,
	lexer.LT:       PREC_COMPARE,
	lexer.GT:       PREC_COMPARE,
	lexer.LTE:      PREC_COMPARE,
	lexer.GTE:      PREC_COMPARE,
	lexer.AMP:      PREC_MERGE_RANGE,
	lexer.DOTDOT:   PREC_MERGE_RANGE,
	lexer.ELLIPSIS: PREC_MERGE_RANGE,
	lexer.PLUS:     PREC_SUM,
	lexer.MINUS:    PREC_SUM,
	lexer.STAR:     PREC_PRODUCT,
	lexer.SLASH:    PREC_PRODUCT,
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PIPE: ast.OpPipeline, lexer.OROR: ast.OpOr, lexer.ANDAND: ast.OpAnd,
	lexer.EQ: ast.OpEq, lexer.NEQ: ast.OpNeq, lexer.LT: ast.OpLt, lexer.GT: ast.OpGt,
	lexer.LTE: ast.OpLte, lexer.GTE: ast.OpGte, lexer.AMP: ast.OpMerge,
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.STAR: ast.OpMul, lexer.SLASH: ast.OpDiv,
}

// applicationStopWords terminate a juxtaposition application chain even
// though they are plain identifiers lexically (spec §4.2).
var applicationStopWords = map[string]bool{
	"then": true, "else": true, "matches": true, "otherwise": true, "where": true,
	"for": true, "in": true, "when": true, "if": true, "unless": true,
}

// Parser consumes tokens from a Lexer and produces one ast.Expr tree.
type Parser struct {
	l        *lexer.Lexer
	filename string

	cur, peek       lexer.Token
	curErr, peekErr *lexer.Error
}

// Error is a parse-time failure.
type Error struct {
	Kind     string // "UnexpectedToken", or a lexical kind ("UnexpectedCharacter" | "UnterminatedString")
	Message  string
	Location errors.Location
	Expected string
	Context  string
}

func (e *Error) Error() string { return e.Message }

func locOf(t lexer.Token) errors.Location {
	return errors.Location{Line: t.Line, Column: t.Column, Offset: t.Offset, Length: t.Length}
}

// New creates a parser over source text. filename is used only for error
// locations (it does not affect parsing).
func New(source, filename string) (*Parser, *Error) {
	p := &Parser{l: lexer.New(source), filename: filename}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// advance shifts peek into cur and scans a fresh peek token. It returns an
// error only when the token that just became cur failed to lex, so every
// call site can treat advance like any other parsing step that might fail.
func (p *Parser) advance() *Error {
	p.cur, p.curErr = p.peek, p.peekErr
	tok, err := p.l.NextToken()
	p.peek, p.peekErr = tok, err
	if p.curErr != nil {
		return lexErrToParse(p.curErr)
	}
	return nil
}

func lexErrToParse(e *lexer.Error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Location: errors.Location{Line: e.Line, Column: e.Column, Offset: e.Offset}}
}

// Parse parses a complete lazylang program: one expression followed by EOF.
func Parse(source, filename string) (ast.Expr, *Error) {
	p, err := New(source, filename)
	if err != nil {
		return nil, err
	}
	expr, perr := p.parseExpression(LOWEST)
	if perr != nil {
		return nil, perr
	}
	if p.cur.Type != lexer.EOF {
		return nil, p.unexpected("end of input")
	}
	return expr, nil
}

func (p *Parser) unexpected(expected string) *Error {
	return &Error{
		Kind: "UnexpectedToken", Expected: expected,
		Message:  fmt.Sprintf("unexpected token %q, expected %s", p.cur.Literal, expected),
		Location: locOf(p.cur),
	}
}

func (p *Parser) expect(tt lexer.TokenType, what string) *Error {
	if p.cur.Type != tt {
		return p.unexpected(what)
	}
	return nil
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) isIdent(lit string) bool {
	return p.cur.Type == lexer.IDENT && p.cur.Literal == lit
}

// ==========================================================================
// Expression grammar
// ==========================================================================

// parseExpression is the precedence-climbing entry point. let and lambda
// forms are recognized at any operand position; a trailing where clause is
// recognized only at LOWEST, a full expression boundary.
func (p *Parser) parseExpression(prec int) (ast.Expr, *Error) {
	left, err := p.parseBindingOrApplication()
	if err != nil {
		return nil, err
	}
	switch left.(type) {
	case *ast.Let, *ast.Lambda:
		// Maximal munch: these already consumed their body to completion.
		return left, nil
	}

	for p.cur.Type != lexer.EOF && !p.cur.PrecededByNewline && prec < p.curPrecedence() {
		opTok := p.cur
		op, ok := binaryOps[opTok.Type]
		if !ok && opTok.Type != lexer.DOTDOT && opTok.Type != lexer.ELLIPSIS {
			break
		}
		tokPrec := p.curPrecedence()
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curErr != nil {
			return nil, lexErrToParse(p.curErr)
		}
		if opTok.Type == lexer.DOTDOT || opTok.Type == lexer.ELLIPSIS {
			right, err := p.parseExpression(tokPrec)
			if err != nil {
				return nil, err
			}
			left = &ast.Range{Location: locOf(opTok), Start: left, End: right, Inclusive: opTok.Type == lexer.DOTDOT}
			continue
		}
		right, err := p.parseExpression(tokPrec)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Location: locOf(opTok), Op: op, Left: left, Right: right}
	}

	if prec == LOWEST && p.isIdent("where") {
		left, err = p.parseWhere(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseWhere(expr ast.Expr) (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume 'where'
		return nil, err
	}
	var bindings []ast.WhereBinding
	for {
		doc := p.cur.DocComment
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if perr := p.expect(lexer.ASSIGN, "'='"); perr != nil {
			return nil, perr
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, perr := p.parseExpression(LOWEST)
		if perr != nil {
			return nil, perr
		}
		bindings = append(bindings, ast.WhereBinding{Pattern: pat, Value: val, Doc: doc})
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return &ast.WhereExpr{Location: loc, Expr: expr, Bindings: bindings}, nil
}

// parseBindingOrApplication dispatches the two keyword-introduced forms —
// `let pattern = value` and `\pattern -> body` — before falling back to a
// plain application chain (spec §4.2). Both forms have an unambiguous
// leading token, so no lookahead is needed here; the one genuine
// lookahead case left by spec §4.2's disambiguation rule is `(expr)` vs.
// `(op)`, resolved by a one-token peek in parseParenthesized.
func (p *Parser) parseBindingOrApplication() (ast.Expr, *Error) {
	if p.isIdent("let") {
		return p.parseLet()
	}
	if p.cur.Type == lexer.PIPE {
		return p.parseLambda()
	}
	return p.parseApplication()
}

func (p *Parser) parseLet() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume 'let'
		return nil, err
	}
	doc := p.cur.DocComment
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if perr := p.expect(lexer.ASSIGN, "'='"); perr != nil {
		return nil, perr
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, perr := p.parseExpression(LOWEST)
	if perr != nil {
		return nil, perr
	}
	if p.cur.Type == lexer.SEMI {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	body, perr := p.parseExpression(LOWEST)
	if perr != nil {
		return nil, perr
	}
	return &ast.Let{Location: loc, Pattern: pat, Value: value, Body: body, Doc: doc}, nil
}

func (p *Parser) parseLambda() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '\'
		return nil, err
	}
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if perr := p.expect(lexer.ARROW, "'->'"); perr != nil {
		return nil, perr
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, perr := p.parseExpression(LOWEST)
	if perr != nil {
		return nil, perr
	}
	return &ast.Lambda{Location: loc, Param: pat, Body: body}, nil
}

// parseApplication parses left-associative juxtaposition application:
// one or more postfixed primaries in a row, stopping at a newline, a
// keyword that introduces a containing construct, or a `do` block
// argument (which terminates the chain after consuming one more
// expression, spec §4.2).
func (p *Parser) parseApplication() (ast.Expr, *Error) {
	left, err := p.parsePostfixPrimary()
	if err != nil {
		return nil, err
	}
	for {
		if p.isIdent("do") {
			doLoc := locOf(p.cur)
			if err := p.advance(); err != nil {
				return nil, err
			}
			arg, perr := p.parseExpression(LOWEST)
			if perr != nil {
				return nil, perr
			}
			left = &ast.Application{Location: doLoc, Function: left, Argument: arg}
			break
		}
		if !p.canStartArgument() {
			break
		}
		arg, perr := p.parsePostfixPrimary()
		if perr != nil {
			return nil, perr
		}
		left = &ast.Application{Location: left.Loc(), Function: left, Argument: arg}
	}
	return left, nil
}

func (p *Parser) canStartArgument() bool {
	if p.cur.PrecededByNewline {
		return false
	}
	if p.cur.Type == lexer.IDENT && applicationStopWords[p.cur.Literal] {
		return false
	}
	switch p.cur.Type {
	case lexer.IDENT, lexer.INT, lexer.FLOAT, lexer.STRING, lexer.SYMBOL, lexer.LPAREN, lexer.LBRACKET:
		return true
	case lexer.DOT:
		// A `.name` with leading whitespace is a field-accessor function
		// used as an argument (spec §4.2's postfix-operator note).
		return p.cur.PrecededByWhitespace
	}
	return false
}

// parsePostfixPrimary parses one primary and any immediately-following
// postfix operators (field access/projection, index, object-extend).
func (p *Parser) parsePostfixPrimary() (ast.Expr, *Error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur.Type == lexer.DOT && !p.cur.PrecededByWhitespace:
			dotLoc := locOf(p.cur)
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			if p.cur.Type == lexer.LBRACE {
				left, err = p.parseFieldProjection(left)
				if err != nil {
					return nil, err
				}
				continue
			}
			if perr := p.expect(lexer.IDENT, "field name"); perr != nil {
				return nil, perr
			}
			fieldLoc := locOf(p.cur)
			name := p.cur.Literal
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			left = &ast.FieldAccess{Location: dotLoc, Object: left, Field: name, FieldLoc: fieldLoc}
		case p.cur.Type == lexer.LBRACKET && !p.cur.PrecededByWhitespace:
			loc := locOf(p.cur)
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			idx, ierr := p.parseExpression(LOWEST)
			if ierr != nil {
				return nil, ierr
			}
			if perr := p.expect(lexer.RBRACKET, "']'"); perr != nil {
				return nil, perr
			}
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			left = &ast.Index{Location: loc, Object: left, IndexExp: idx}
		case p.cur.Type == lexer.LBRACE && !p.cur.PrecededByNewline:
			loc := locOf(p.cur)
			fields, ferr := p.parseObjectFields()
			if ferr != nil {
				return nil, ferr
			}
			left = &ast.ObjectExtend{Location: loc, Base: left, Fields: fields}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseFieldProjection(obj ast.Expr) (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	var fields []string
	for p.cur.Type != lexer.RBRACE {
		if perr := p.expect(lexer.IDENT, "field name"); perr != nil {
			return nil, perr
		}
		fields = append(fields, p.cur.Literal)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return &ast.FieldProjection{Location: loc, Object: obj, Fields: fields}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, *Error) {
	tok := p.cur
	switch tok.Type {
	case lexer.INT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IntegerLiteral{Location: locOf(tok), Value: parseInt(tok.Literal)}, nil
	case lexer.FLOAT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.FloatLiteral{Location: locOf(tok), Value: parseFloat(tok.Literal)}, nil
	case lexer.SYMBOL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.SymbolLiteral{Location: locOf(tok), Name: tok.Literal[1:]}, nil
	case lexer.STRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseStringLiteral(tok)
	case lexer.MINUS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, perr := p.parsePostfixPrimary()
		if perr != nil {
			return nil, perr
		}
		return &ast.Unary{Location: locOf(tok), Op: ast.OpNeg, Operand: operand}, nil
	case lexer.DOT:
		return p.parseFieldAccessorPrimary()
	case lexer.LPAREN:
		return p.parseParenthesized()
	case lexer.LBRACKET:
		return p.parseArrayOrComprehension()
	case lexer.LBRACE:
		return p.parseObjectOrComprehension()
	case lexer.IDENT:
		return p.parseIdentOrKeyword()
	}
	return nil, p.unexpected("an expression")
}

func (p *Parser) parseIdentOrKeyword() (ast.Expr, *Error) {
	tok := p.cur
	switch tok.Literal {
	case "true", "false":
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BooleanLiteral{Location: locOf(tok), Value: tok.Literal == "true"}, nil
	case "null":
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.NullLiteral{Location: locOf(tok)}, nil
	case "if":
		return p.parseIf()
	case "when":
		return p.parseWhenMatches()
	case "import":
		return p.parseImport()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Identifier{Location: locOf(tok), Name: tok.Literal}, nil
}

func (p *Parser) parseFieldAccessorPrimary() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '.'
		return nil, err
	}
	var fields []string
	for {
		if perr := p.expect(lexer.IDENT, "field name"); perr != nil {
			return nil, perr
		}
		fields = append(fields, p.cur.Literal)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.DOT && !p.cur.PrecededByWhitespace {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return &ast.FieldAccessor{Location: loc, Fields: fields}, nil
}

// parseParenthesized implements the third and fourth disambiguated forms:
// `(expr)` and `(op)` (spec §4.2).
func (p *Parser) parseParenthesized() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	if op, ok := binaryOps[p.cur.Type]; ok {
		if peekErr := p.peekIsCloseParen(); peekErr {
			if err := p.advance(); err != nil { // consume operator
				return nil, err
			}
			if perr := p.expect(lexer.RPAREN, "')'"); perr != nil {
				return nil, perr
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.OperatorFunction{Location: loc, Op: op}, nil
		}
	}
	if p.cur.Type == lexer.RPAREN {
		return nil, p.unexpected("an expression")
	}
	first, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.cur.Type == lexer.COMMA {
		elems := []ast.Expr{first}
		for p.cur.Type == lexer.COMMA {
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			e, perr := p.parseExpression(LOWEST)
			if perr != nil {
				return nil, perr
			}
			elems = append(elems, e)
		}
		if perr := p.expect(lexer.RPAREN, "')'"); perr != nil {
			return nil, perr
		}
		if aerr := p.advance(); aerr != nil {
			return nil, aerr
		}
		return &ast.Tuple{Location: loc, Elements: elems}, nil
	}
	if perr := p.expect(lexer.RPAREN, "')'"); perr != nil {
		return nil, perr
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return first, nil
}

// peekIsCloseParen reports whether the token after cur is RPAREN, without
// permanently consuming anything.
func (p *Parser) peekIsCloseParen() bool {
	return p.peek.Type == lexer.RPAREN
}

func (p *Parser) parseIf() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume 'if'
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if perr := p.expectIdent("then"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	thenExpr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	var elseExpr ast.Expr
	if p.isIdent("else") {
		if aerr := p.advance(); aerr != nil {
			return nil, aerr
		}
		elseExpr, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Location: loc, Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

func (p *Parser) expectIdent(word string) *Error {
	if !p.isIdent(word) {
		return p.unexpected("'" + word + "'")
	}
	return nil
}

func (p *Parser) parseWhenMatches() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume 'when'
		return nil, err
	}
	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if perr := p.expectIdent("matches"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	var branches []ast.MatchBranch
	var otherwise ast.Expr
	for {
		if p.isIdent("otherwise") {
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			otherwise, err = p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			break
		}
		pat, perr := p.parsePattern()
		if perr != nil {
			return nil, perr
		}
		if perr := p.expectIdent("then"); perr != nil {
			return nil, perr
		}
		if aerr := p.advance(); aerr != nil {
			return nil, aerr
		}
		result, rerr := p.parseExpression(LOWEST)
		if rerr != nil {
			return nil, rerr
		}
		branches = append(branches, ast.MatchBranch{Pattern: pat, Result: result})
		if p.cur.Type == lexer.SEMI {
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
			continue
		}
		break
	}
	return &ast.WhenMatches{Location: loc, Value: value, Branches: branches, Otherwise: otherwise}, nil
}

func (p *Parser) parseImport() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume 'import'
		return nil, err
	}
	if perr := p.expect(lexer.STRING, "a module path string"); perr != nil {
		return nil, perr
	}
	pathTok := p.cur
	path := unquote(pathTok.Literal)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.ImportExpr{Location: loc, Path: path, PathLocation: locOf(pathTok)}, nil
}

// ==========================================================================
// Arrays, tuples, comprehensions
// ==========================================================================

func (p *Parser) parseArrayOrComprehension() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	if p.cur.Type == lexer.RBRACKET {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Array{Location: loc}, nil
	}
	first, err := p.parseArrayElement()
	if err != nil {
		return nil, err
	}
	if p.isIdent("for") {
		clauses, filter, ferr := p.parseComprehensionClauses()
		if ferr != nil {
			return nil, ferr
		}
		if perr := p.expect(lexer.RBRACKET, "']'"); perr != nil {
			return nil, perr
		}
		if aerr := p.advance(); aerr != nil {
			return nil, aerr
		}
		return &ast.ArrayComprehension{Location: loc, Body: first.Expr, Clauses: clauses, Filter: filter}, nil
	}
	elems := []ast.ArrayElement{first}
	for p.cur.Type == lexer.COMMA {
		if aerr := p.advance(); aerr != nil {
			return nil, aerr
		}
		if p.cur.Type == lexer.RBRACKET {
			break
		}
		e, eerr := p.parseArrayElement()
		if eerr != nil {
			return nil, eerr
		}
		elems = append(elems, e)
	}
	if perr := p.expect(lexer.RBRACKET, "']'"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	return &ast.Array{Location: loc, Elements: elems}, nil
}

func (p *Parser) parseArrayElement() (ast.ArrayElement, *Error) {
	if p.cur.Type == lexer.ELLIPSIS {
		if err := p.advance(); err != nil {
			return ast.ArrayElement{}, err
		}
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ArrayElement{}, err
		}
		return ast.ArrayElement{Kind: ast.ElemSpread, Expr: e}, nil
	}
	e, err := p.parseExpression(LOWEST)
	if err != nil {
		return ast.ArrayElement{}, err
	}
	if p.isIdent("if") {
		if aerr := p.advance(); aerr != nil {
			return ast.ArrayElement{}, aerr
		}
		cond, cerr := p.parseExpression(LOWEST)
		if cerr != nil {
			return ast.ArrayElement{}, cerr
		}
		return ast.ArrayElement{Kind: ast.ElemConditionalIf, Expr: e, Cond: cond}, nil
	}
	if p.isIdent("unless") {
		if aerr := p.advance(); aerr != nil {
			return ast.ArrayElement{}, aerr
		}
		cond, cerr := p.parseExpression(LOWEST)
		if cerr != nil {
			return ast.ArrayElement{}, cerr
		}
		return ast.ArrayElement{Kind: ast.ElemConditionalUnless, Expr: e, Cond: cond}, nil
	}
	return ast.ArrayElement{Kind: ast.ElemNormal, Expr: e}, nil
}

func (p *Parser) parseComprehensionClauses() ([]ast.ComprehensionClause, ast.Expr, *Error) {
	var clauses []ast.ComprehensionClause
	for p.isIdent("for") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		pat, perr := p.parsePattern()
		if perr != nil {
			return nil, nil, perr
		}
		if ierr := p.expectIdent("in"); ierr != nil {
			return nil, nil, ierr
		}
		if aerr := p.advance(); aerr != nil {
			return nil, nil, aerr
		}
		iter, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, nil, err
		}
		clauses = append(clauses, ast.ComprehensionClause{Pattern: pat, Iterable: iter})
	}
	var filter ast.Expr
	if p.isIdent("when") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		f, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, nil, err
		}
		filter = f
	}
	return clauses, filter, nil
}

// ==========================================================================
// Objects
// ==========================================================================

func (p *Parser) parseObjectOrComprehension() (ast.Expr, *Error) {
	loc := locOf(p.cur)
	moduleDoc := p.l.LastModuleDoc()
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	if p.cur.Type == lexer.RBRACE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Object{Location: loc, ModuleDoc: moduleDoc}, nil
	}
	// Object comprehension: `{ [k]: v for p in iter ... }`
	if p.cur.Type == lexer.LBRACKET {
		save := p.l.Save()
		savedCur, savedCurErr, savedPeek, savedPeekErr := p.cur, p.curErr, p.peek, p.peekErr
		keyExpr, kerr := p.tryParseDynamicKeyHead()
		if kerr == nil && keyExpr != nil {
			valExpr, verr := p.parseExpression(LOWEST)
			if verr == nil && p.isIdent("for") {
				clauses, filter, cerr := p.parseComprehensionClauses()
				if cerr == nil && p.cur.Type == lexer.RBRACE {
					if aerr := p.advance(); aerr != nil {
						return nil, aerr
					}
					return &ast.ObjectComprehension{
						Location: loc,
						Body:     ast.ObjectComprehensionField{KeyExpr: keyExpr, ValueExpr: valExpr},
						Clauses:  clauses, Filter: filter,
					}, nil
				}
			}
		}
		p.l.Restore(save)
		p.cur, p.curErr, p.peek, p.peekErr = savedCur, savedCurErr, savedPeek, savedPeekErr
	}
	fields, err := p.parseObjectFieldList()
	if err != nil {
		return nil, err
	}
	if perr := p.expect(lexer.RBRACE, "'}'"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	return &ast.Object{Location: loc, Fields: fields, ModuleDoc: moduleDoc}, nil
}

func (p *Parser) tryParseDynamicKeyHead() (ast.Expr, *Error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	key, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if perr := p.expect(lexer.RBRACKET, "']'"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	if perr := p.expect(lexer.COLON, "':'"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	return key, nil
}

// parseObjectFields parses `{ fields }` for the object-extend postfix form
// (base already parsed).
func (p *Parser) parseObjectFields() ([]ast.ObjectField, *Error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	fields, err := p.parseObjectFieldList()
	if err != nil {
		return nil, err
	}
	if perr := p.expect(lexer.RBRACE, "'}'"); perr != nil {
		return nil, perr
	}
	if aerr := p.advance(); aerr != nil {
		return nil, aerr
	}
	return fields, nil
}

func (p *Parser) parseObjectFieldList() ([]ast.ObjectField, *Error) {
	var fields []ast.ObjectField
	for p.cur.Type != lexer.RBRACE {
		f, err := p.parseObjectField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.cur.Type == lexer.COMMA {
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
		}
	}
	return fields, nil
}

func (p *Parser) parseObjectField() (ast.ObjectField, *Error) {
	doc := p.cur.DocComment
	if p.cur.Type == lexer.LBRACKET {
		keyLoc := locOf(p.cur)
		if err := p.advance(); err != nil {
			return ast.ObjectField{}, err
		}
		keyExpr, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ObjectField{}, err
		}
		if perr := p.expect(lexer.RBRACKET, "']'"); perr != nil {
			return ast.ObjectField{}, perr
		}
		if aerr := p.advance(); aerr != nil {
			return ast.ObjectField{}, aerr
		}
		if perr := p.expect(lexer.COLON, "':'"); perr != nil {
			return ast.ObjectField{}, perr
		}
		if aerr := p.advance(); aerr != nil {
			return ast.ObjectField{}, aerr
		}
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ObjectField{}, err
		}
		return ast.ObjectField{KeyExpr: keyExpr, KeyLocation: keyLoc, Value: val, Doc: doc}, nil
	}
	if perr := p.expect(lexer.IDENT, "a field name"); perr != nil {
		return ast.ObjectField{}, perr
	}
	nameTok := p.cur
	if err := p.advance(); err != nil {
		return ast.ObjectField{}, err
	}
	switch p.cur.Type {
	case lexer.COLON:
		if err := p.advance(); err != nil {
			return ast.ObjectField{}, err
		}
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ObjectField{}, err
		}
		return ast.ObjectField{Key: nameTok.Literal, KeyLocation: locOf(nameTok), Value: val, Doc: doc}, nil
	case lexer.LBRACE:
		fields, err := p.parseObjectFields()
		if err != nil {
			return ast.ObjectField{}, err
		}
		patchVal := &ast.Object{Location: locOf(nameTok), Fields: fields}
		return ast.ObjectField{Key: nameTok.Literal, KeyLocation: locOf(nameTok), Value: patchVal, IsPatch: true, Doc: doc}, nil
	default:
		// Short form: `name` desugars to `name: name`.
		return ast.ObjectField{
			Key: nameTok.Literal, KeyLocation: locOf(nameTok), Doc: doc,
			Value: &ast.Identifier{Location: locOf(nameTok), Name: nameTok.Literal},
		}, nil
	}
}

// ==========================================================================
// Patterns
// ==========================================================================

func (p *Parser) parsePattern() (ast.Pattern, *Error) {
	tok := p.cur
	switch tok.Type {
	case lexer.IDENT:
		switch tok.Literal {
		case "true", "false":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.BooleanLiteral{Location: locOf(tok), Value: tok.Literal == "true"}}, nil
		case "null":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.NullLiteral{Location: locOf(tok)}}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IdentifierPattern{Location: locOf(tok), Name: tok.Literal}, nil
	case lexer.INT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.IntegerLiteral{Location: locOf(tok), Value: parseInt(tok.Literal)}}, nil
	case lexer.FLOAT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.FloatLiteral{Location: locOf(tok), Value: parseFloat(tok.Literal)}}, nil
	case lexer.STRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.StringLiteral{Location: locOf(tok), Value: unquote(tok.Literal)}}, nil
	case lexer.SYMBOL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.SymbolLiteral{Location: locOf(tok), Name: tok.Literal[1:]}}, nil
	case lexer.MINUS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if perr := p.expect(lexer.INT, "a negative integer"); perr == nil {
			n := parseInt(p.cur.Literal)
			l := locOf(p.cur)
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.LiteralPattern{Location: locOf(tok), Value: &ast.IntegerLiteral{Location: l, Value: -n}}, nil
		}
		return nil, p.unexpected("a number after '-'")
	case lexer.LPAREN:
		return p.parseTuplePattern()
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	}
	return nil, p.unexpected("a pattern")
}

func (p *Parser) parseTuplePattern() (ast.Pattern, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var elems []ast.Pattern
	for p.cur.Type != lexer.RPAREN {
		e, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.cur.Type == lexer.COMMA {
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
		}
	}
	if err := p.advance(); err != nil { // consume ')'
		return nil, err
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &ast.TuplePattern{Location: loc, Elements: elems}, nil
}

func (p *Parser) parseArrayPattern() (ast.Pattern, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elems []ast.Pattern
	rest := ""
	for p.cur.Type != lexer.RBRACKET {
		if p.cur.Type == lexer.ELLIPSIS {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if perr := p.expect(lexer.IDENT, "a rest-binder name"); perr != nil {
				return nil, perr
			}
			rest = p.cur.Literal
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		e, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.cur.Type == lexer.COMMA {
			if aerr := p.advance(); aerr != nil {
				return nil, aerr
			}
		}
	}
	if perr := p.expect(lexer.RBRACKET, "']'"); perr != nil {
		return nil, perr
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.ArrayPattern{Location: loc, Elements: elems, Rest: rest}, nil
}

func (p *Parser) parseObjectPattern() (ast.Pattern, *Error) {
	loc := locOf(p.cur)
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	var fields []ast.ObjectPatternField
	for p.cur.Type != lexer.RBRACE {
		if perr := p.expect(lexer.IDENT, "a field name"); perr != nil {
			return nil, perr
		}
		name := p.cur.Literal
		nameLoc := locOf(p.cur)
		if err := p.advance(); err != nil {
			return nil, err
		}
		var sub ast.Pattern
		if p.cur.Type == lexer.COLON {
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			sub = s
		} else {
			sub = &ast.IdentifierPattern{Location: nameLoc, Name: name}
		}
		fields = append(fields, ast.ObjectPatternField{Key: name, SubPat: sub})
		if p.cur.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return &ast.ObjectPattern{Location: loc, Fields: fields}, nil
}

// ==========================================================================
// Small helpers
// ==========================================================================

// parseStringLiteral decodes escapes and splits `$name`/`${expr}`
// interpolation sites out of a raw string token (spec §4.1/§3). An
// interpolated expression is parsed by recursively invoking the parser
// over the captured slice, per spec §9's note on string interpolation.
func (p *Parser) parseStringLiteral(tok lexer.Token) (ast.Expr, *Error) {
	raw := unquote(tok.Literal)
	var parts []ast.StringPart
	var lit strings.Builder
	hasInterp := false

	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			switch raw[i+1] {
			case 'n':
				lit.WriteByte('\n')
			case 't':
				lit.WriteByte('\t')
			case 'r':
				lit.WriteByte('\r')
			case '\\', '"', '\'', '$':
				lit.WriteByte(raw[i+1])
			default:
				lit.WriteByte('\\')
				lit.WriteByte(raw[i+1])
			}
			i += 2
			continue
		}
		if c == '$' && i+1 < len(raw) {
			next := raw[i+1]
			if next == '{' {
				depth := 1
				j := i + 2
				for j < len(raw) && depth > 0 {
					switch raw[j] {
					case '{':
						depth++
					case '}':
						depth--
						if depth == 0 {
							goto found
						}
					}
					j++
				}
			found:
				if depth != 0 {
					return nil, &Error{Kind: "UnterminatedString", Message: "unterminated interpolation", Location: locOf(tok)}
				}
				if lit.Len() > 0 {
					parts = append(parts, ast.StringPart{Literal: lit.String()})
					lit.Reset()
				}
				inner, perr := parseSubExpr(raw[i+2:j], p.filename)
				if perr != nil {
					return nil, perr
				}
				parts = append(parts, ast.StringPart{Expr: inner})
				hasInterp = true
				i = j + 1
				continue
			}
			if isIdentStartByte(next) {
				j := i + 1
				for j < len(raw) && isIdentPartByte(raw[j]) {
					j++
				}
				if lit.Len() > 0 {
					parts = append(parts, ast.StringPart{Literal: lit.String()})
					lit.Reset()
				}
				parts = append(parts, ast.StringPart{Expr: &ast.Identifier{Location: locOf(tok), Name: raw[i+1 : j]}})
				hasInterp = true
				i = j
				continue
			}
		}
		lit.WriteByte(c)
		i++
	}

	if !hasInterp {
		return &ast.StringLiteral{Location: locOf(tok), Value: lit.String()}, nil
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.StringPart{Literal: lit.String()})
	}
	return &ast.StringInterpolation{Location: locOf(tok), Parts: parts}, nil
}

func parseSubExpr(src, filename string) (ast.Expr, *Error) {
	return Parse(src, filename)
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPartByte(b byte) bool { return isIdentStartByte(b) || (b >= '0' && b <= '9') }

func parseInt(lit string) int64 {
	var n int64
	for i := 0; i < len(lit); i++ {
		n = n*10 + int64(lit[i]-'0')
	}
	return n
}

func parseFloat(lit string) float64 {
	var intPart, fracPart int64
	var fracLen int
	i := 0
	for ; i < len(lit) && lit[i] != '.'; i++ {
		intPart = intPart*10 + int64(lit[i]-'0')
	}
	if i < len(lit) && lit[i] == '.' {
		i++
		for ; i < len(lit); i++ {
			fracPart = fracPart*10 + int64(lit[i]-'0')
			fracLen++
		}
	}
	f := float64(intPart)
	if fracLen > 0 {
		div := 1.0
		for j := 0; j < fracLen; j++ {
			div *= 10
		}
		f += float64(fracPart) / div
	}
	return f
}

func unquote(lit string) string {
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return lit
}
