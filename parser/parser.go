// Package parser implements the recursive-descent, precedence-climbing
// parser sketched in spec.md §6. It is a collaborator: a conventional
// expression-grammar parser, not itself a subject of this
// specification.
package parser

import (
	"strconv"

	"treep/ast"
	"treep/cst"
	"treep/lexer"
)

type Parser struct {
	path   string
	tokens []lexer.Token
	pos    int
}

// Parse lexes and parses a full source file into a list of top-level
// declarations.
func Parse(path, src string) ([]cst.TopLevel, error) {
	toks, err := lexer.New(path, src).Scan()
	if err != nil {
		return nil, err
	}
	p := &Parser{path: path, tokens: toks}
	var out []cst.TopLevel
	for !p.check(lexer.EOF) {
		decl, err := p.topLevel()
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}

func (p *Parser) cur() lexer.Token  { return p.tokens[p.pos] }
func (p *Parser) check(t lexer.TokenType) bool { return p.cur().Type == t }

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) match(t lexer.TokenType) (lexer.Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) expect(t lexer.TokenType, what string) (lexer.Token, error) {
	if tok, ok := p.match(t); ok {
		return tok, nil
	}
	return lexer.Token{}, ast.NewParseError(p.cur().Location, "expected %s, got %q", what, p.cur().Lexeme)
}

func (p *Parser) topLevel() (cst.TopLevel, error) {
	switch p.cur().Type {
	case lexer.KW_DEF:
		return p.funcDef()
	case lexer.KW_MACRO:
		return p.macroDef()
	default:
		return p.statement()
	}
}

func (p *Parser) macroDef() (cst.TopLevel, error) {
	loc := p.advance().Location // 'macro'
	name, err := p.expect(lexer.IDENT, "macro name")
	if err != nil {
		return nil, err
	}
	// consume tokens up to the brace-balanced pattern/template body, unparsed:
	// user-defined macros are accepted syntactically but never wired
	// into the expander's matching engine (spec.md §1 Non-goals).
	depth := 0
	for {
		switch p.cur().Type {
		case lexer.LBRACE:
			depth++
			p.advance()
		case lexer.RBRACE:
			depth--
			p.advance()
			if depth <= 0 {
				return cst.MacroDef{Location: loc, Name: name.Lexeme}, nil
			}
		case lexer.EOF:
			return nil, ast.NewParseError(p.cur().Location, "unterminated macro definition")
		default:
			p.advance()
		}
	}
}

func (p *Parser) funcDef() (cst.TopLevel, error) {
	loc := p.advance().Location // 'def'
	name, err := p.expect(lexer.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "("); err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	returns := ""
	if _, ok := p.match(lexer.KW_RETURNS); ok {
		if _, err := p.expect(lexer.COLON, ":"); err != nil {
			return nil, err
		}
		tname, err := p.expect(lexer.IDENT, "return type")
		if err != nil {
			return nil, err
		}
		returns = tname.Lexeme
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return cst.FuncDef{Location: loc, Name: name.Lexeme, Params: params, Returns: returns, Body: body}, nil
}

func (p *Parser) paramList() ([]cst.Param, error) {
	var params []cst.Param
	for !p.check(lexer.RPAREN) {
		if len(params) > 0 {
			if _, err := p.expect(lexer.COMMA, ","); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(lexer.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		typ := ""
		if _, ok := p.match(lexer.COLON); ok {
			tname, err := p.expect(lexer.IDENT, "parameter type")
			if err != nil {
				return nil, err
			}
			typ = tname.Lexeme
		}
		params = append(params, cst.Param{Location: name.Location, Name: name.Lexeme, Type: typ})
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) block() (*cst.Block, error) {
	loc, err := p.expect(lexer.LBRACE, "{")
	if err != nil {
		return nil, err
	}
	var stmts []cst.Node
	for !p.check(lexer.RBRACE) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(lexer.RBRACE, "}"); err != nil {
		return nil, err
	}
	return &cst.Block{Location: loc.Location, Stmts: stmts}, nil
}

func (p *Parser) statement() (cst.TopLevel, error) {
	switch p.cur().Type {
	case lexer.KW_LET:
		return p.letStmt()
	case lexer.KW_IF:
		return p.ifStmt()
	case lexer.KW_WHILE:
		return p.whileStmt()
	case lexer.KW_FOR:
		return p.forStmt()
	case lexer.KW_RETURN:
		return p.returnStmt()
	default:
		n, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		return n.(cst.TopLevel), nil
	}
}

func (p *Parser) letStmt() (cst.TopLevel, error) {
	loc := p.advance().Location // 'let'
	name, err := p.expect(lexer.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	typ := ""
	if _, ok := p.match(lexer.COLON); ok {
		tname, err := p.expect(lexer.IDENT, "type")
		if err != nil {
			return nil, err
		}
		typ = tname.Lexeme
	}
	if _, err := p.expect(lexer.ASSIGN, "="); err != nil {
		return nil, err
	}
	val, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	return cst.LetStmt{Location: loc, Name: name.Lexeme, Type: typ, Value: val}, nil
}

func (p *Parser) ifStmt() (cst.TopLevel, error) {
	loc := p.advance().Location // 'if'
	if _, err := p.expect(lexer.LPAREN, "("); err != nil {
		return nil, err
	}
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseBlk *cst.Block
	if _, ok := p.match(lexer.KW_ELSE); ok {
		elseBlk, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return cst.If{Location: loc, Cond: cond, Then: then, Else: elseBlk}, nil
}

func (p *Parser) whileStmt() (cst.TopLevel, error) {
	loc := p.advance().Location // 'while'
	if _, err := p.expect(lexer.LPAREN, "("); err != nil {
		return nil, err
	}
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return cst.While{Location: loc, Cond: cond, Body: body}, nil
}

func (p *Parser) forStmt() (cst.TopLevel, error) {
	loc := p.advance().Location // 'for'
	if _, err := p.expect(lexer.LPAREN, "("); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN, "="); err != nil {
		return nil, err
	}
	from, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COMMA, ","); err != nil {
		return nil, err
	}
	to, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return cst.For{Location: loc, Var: name.Lexeme, From: from, To: to, Body: body}, nil
}

func (p *Parser) returnStmt() (cst.TopLevel, error) {
	loc := p.advance().Location // 'return'
	if p.check(lexer.RBRACE) {
		return cst.Return{Location: loc}, nil
	}
	val, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	return cst.Return{Location: loc, Value: val}, nil
}

// precedence climbing over the table in spec.md §6, low to high:
// || , && , == != , < > <= >= , + - , * / % , unary ! - , call.
var binPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

var tokToOp = map[lexer.TokenType]string{
	lexer.OR: "||", lexer.AND: "&&",
	lexer.EQ: "==", lexer.NEQ: "!=",
	lexer.LT: "<", lexer.GT: ">", lexer.LE: "<=", lexer.GE: ">=",
	lexer.PLUS: "+", lexer.MINUS: "-",
	lexer.STAR: "*", lexer.SLASH: "/", lexer.PERCENT: "%",
}

func (p *Parser) expression(minPrec int) (cst.Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := tokToOp[p.cur().Type]
		if !ok {
			break
		}
		prec := binPrec[op]
		if prec < minPrec {
			break
		}
		loc := p.advance().Location
		right, err := p.expression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = cst.BinOp{Location: loc, Op: op, Left: left, Right: right}
	}
	// assignment binds loosest of all and is right-associative;
	// handled after the precedence-climb so `x = y + 1` parses as a
	// single assignment of the whole additive expression.
	if minPrec == 0 {
		if _, ok := p.match(lexer.ASSIGN); ok {
			rhs, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			return cst.BinOp{Location: left.Loc(), Op: "=", Left: left, Right: rhs}, nil
		}
	}
	return left, nil
}

func (p *Parser) unary() (cst.Node, error) {
	if tok, ok := p.match(lexer.BANG); ok {
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return cst.UnaryOp{Location: tok.Location, Op: "!", Operand: operand}, nil
	}
	if tok, ok := p.match(lexer.MINUS); ok {
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return cst.UnaryOp{Location: tok.Location, Op: "-", Operand: operand}, nil
	}
	return p.callExpr()
}

func (p *Parser) callExpr() (cst.Node, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		if p.check(lexer.LPAREN) {
			loc := p.advance().Location
			var args []cst.Node
			for !p.check(lexer.RPAREN) {
				if len(args) > 0 {
					if _, err := p.expect(lexer.COMMA, ","); err != nil {
						return nil, err
					}
				}
				a, err := p.expression(0)
				if err != nil {
					return nil, err
				}
				args = append(args, a)
			}
			if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
				return nil, err
			}
			call := cst.Call{Location: loc, Callee: expr, Args: args}
			if p.check(lexer.LBRACE) {
				blk, err := p.block()
				if err != nil {
					return nil, err
				}
				call.Block = blk
			}
			expr = call
			continue
		}
		break
	}
	return expr, nil
}

func (p *Parser) primary() (cst.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.INT:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, ast.NewParseError(tok.Location, "invalid integer literal %q", tok.Lexeme)
		}
		return cst.IntLit{Location: tok.Location, Value: v}, nil
	case lexer.STRING:
		p.advance()
		return cst.StringLit{Location: tok.Location, Value: tok.Lexeme}, nil
	case lexer.TRUE:
		p.advance()
		return cst.BoolLit{Location: tok.Location, Value: true}, nil
	case lexer.FALSE:
		p.advance()
		return cst.BoolLit{Location: tok.Location, Value: false}, nil
	case lexer.IDENT:
		p.advance()
		return cst.Var{Location: tok.Location, Name: tok.Lexeme}, nil
	case lexer.LPAREN:
		return p.parenOrLambda()
	default:
		return nil, ast.NewParseError(tok.Location, "unexpected token %q", tok.Lexeme)
	}
}

// parenOrLambda disambiguates `(expr)` from `(params) -> { body }` by
// speculatively trying the lambda form; on failure it rewinds and
// parses a parenthesised expression instead.
func (p *Parser) parenOrLambda() (cst.Node, error) {
	save := p.pos
	if lam, err := p.tryLambda(); err == nil {
		return lam, nil
	}
	p.pos = save

	loc := p.advance().Location // '('
	inner, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, err
	}
	_ = loc
	return inner, nil
}

func (p *Parser) tryLambda() (cst.Node, error) {
	loc := p.advance().Location // '('
	var params []cst.Param
	for !p.check(lexer.RPAREN) {
		if len(params) > 0 {
			if _, ok := p.match(lexer.COMMA); !ok {
				return nil, ast.NewParseError(p.cur().Location, "not a lambda parameter list")
			}
		}
		name, ok := p.match(lexer.IDENT)
		if !ok {
			return nil, ast.NewParseError(p.cur().Location, "not a lambda parameter list")
		}
		params = append(params, cst.Param{Location: name.Location, Name: name.Lexeme})
	}
	if _, ok := p.match(lexer.RPAREN); !ok {
		return nil, ast.NewParseError(p.cur().Location, "not a lambda parameter list")
	}
	if _, ok := p.match(lexer.ARROW); !ok {
		return nil, ast.NewParseError(p.cur().Location, "not a lambda")
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return cst.Lambda{Location: loc, Params: params, Body: body}, nil
}
