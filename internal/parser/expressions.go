package parser

import (
	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/token"
)

// binaryLevels is the precedence table, lowest first: || < && < ==/!= <
// </<=/>/>= < +/- < * // % < **.
var binaryLevels = [][]token.Kind{
	{token.OROR},
	{token.ANDAND},
	{token.EQEQ, token.BANGEQ},
	{token.LT, token.LTE, token.GT, token.GTE},
	{token.PLUS, token.MINUS},
	{token.STAR, token.SLASH, token.PERC},
}

// parseExpr is the entrypoint: assignment binds loosest of all, so a
// right-associative pass sits above the binary precedence table.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Expr {
	left := p.parseBinary(0)
	if p.check(token.EQ) {
		line, col := p.posHere()
		p.advance()
		switch left.(type) {
		case *ast.Variable, *ast.Member, *ast.Subscript:
		default:
			p.fail("invalid assignment target")
		}
		value := p.parseAssign()
		return &ast.Assign{Position: ast.NewPos(line, col), Target: left, Value: value}
	}
	return left
}

func (p *Parser) parseBinary(level int) ast.Expr {
	if level >= len(binaryLevels) {
		return p.parsePower()
	}
	left := p.parseBinary(level + 1)
	for {
		matched := false
		for _, k := range binaryLevels[level] {
			if p.check(k) {
				line, col := p.posHere()
				op := p.advance()
				right := p.parseBinary(level + 1)
				left = &ast.Binary{Position: ast.NewPos(line, col), Left: left, Op: op.Lexeme, Right: right}
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

// parsePower is `**`, right-associative, binding tighter than the rest of
// the binary table and looser than unary.
func (p *Parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if p.check(token.POW) {
		line, col := p.posHere()
		p.advance()
		right := p.parsePower()
		return &ast.Binary{Position: ast.NewPos(line, col), Left: left, Op: "**", Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.BANG) || p.check(token.MINUS) {
		line, col := p.posHere()
		op := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Position: ast.NewPos(line, col), Op: op.Lexeme, Operand: operand}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix chains call/member/subscript suffixes onto base: f(x).y[z](w).
func (p *Parser) parsePostfix(base ast.Expr) ast.Expr {
	for {
		line, col := p.posHere()
		switch {
		case p.check(token.LPAREN):
			p.advance()
			var args []ast.Expr
			for !p.check(token.RPAREN) {
				if len(args) > 0 {
					p.expect(token.COMMA, "','")
				}
				args = append(args, p.parseExpr())
			}
			p.expect(token.RPAREN, "')'")
			base = &ast.Call{Position: ast.NewPos(line, col), Callee: base, Args: args}
		case p.check(token.DOT), p.check(token.DCOLON):
			p.advance()
			name := p.expect(token.IDENT, "member name").Lexeme
			base = &ast.Member{Position: ast.NewPos(line, col), Base: base, Name: name}
		case p.check(token.LBRACKET):
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET, "']'")
			base = &ast.Subscript{Position: ast.NewPos(line, col), Base: base, Index: idx}
		default:
			return base
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	line, col := p.posHere()
	switch {
	case p.check(token.NUMBER):
		t := p.advance()
		return &ast.Literal{Position: ast.NewPos(line, col), Value: t.Literal}
	case p.check(token.STRING):
		t := p.advance()
		return &ast.Literal{Position: ast.NewPos(line, col), Value: t.Literal}
	case p.check(token.TRUE):
		p.advance()
		return &ast.Literal{Position: ast.NewPos(line, col), Value: true}
	case p.check(token.FALSE):
		p.advance()
		return &ast.Literal{Position: ast.NewPos(line, col), Value: false}
	case p.check(token.NULL):
		p.advance()
		return &ast.Literal{Position: ast.NewPos(line, col), Value: nil}
	case p.check(token.IDENT):
		name := p.advance().Lexeme
		return &ast.Variable{Position: ast.NewPos(line, col), Name: name}
	case p.check(token.SHOW):
		// `show` lexes as a keyword but is called like any other builtin.
		p.advance()
		return &ast.Variable{Position: ast.NewPos(line, col), Name: "show"}
	case p.check(token.FUNCTION):
		return p.parseFunctionRest(false)
	case p.check(token.MATCH):
		return p.parseMatchExpr()
	case p.check(token.SET):
		return p.parseSetLit()
	case p.check(token.ARRAY):
		return p.parseArrayLit()
	case p.check(token.LBRACKET):
		return p.parseListLit()
	case p.check(token.LBRACE):
		return p.parseDictLit()
	case p.check(token.LPAREN):
		return p.parseParenOrTuple()
	default:
		p.fail("expected expression, found " + string(p.cur().Kind))
		panic("unreachable")
	}
}

func (p *Parser) parseListLit() ast.Expr {
	line, col := p.posHere()
	p.expect(token.LBRACKET, "'['")
	var elems []ast.Expr
	for !p.check(token.RBRACKET) {
		if len(elems) > 0 {
			p.expect(token.COMMA, "','")
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBRACKET, "']'")
	return &ast.ListLit{Position: ast.NewPos(line, col), Elements: elems}
}

func (p *Parser) parseSetLit() ast.Expr {
	line, col := p.posHere()
	p.expect(token.SET, "'set'")
	p.expect(token.LBRACE, "'{'")
	var elems []ast.Expr
	for !p.check(token.RBRACE) {
		if len(elems) > 0 {
			p.expect(token.COMMA, "','")
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.SetLit{Position: ast.NewPos(line, col), Elements: elems}
}

func (p *Parser) parseArrayLit() ast.Expr {
	line, col := p.posHere()
	p.expect(token.ARRAY, "'array'")
	p.expect(token.LBRACKET, "'['")
	size := p.parseExpr()
	p.expect(token.RBRACKET, "']'")
	return &ast.ArrayLit{Position: ast.NewPos(line, col), Size: size}
}

// parseDictLit parses `{ key: value, ... }`. Keys are identifiers or
// strings; the literal is distinguished from a block by appearing in
// expression position.
func (p *Parser) parseDictLit() ast.Expr {
	line, col := p.posHere()
	p.expect(token.LBRACE, "'{'")
	var entries []ast.DictEntry
	for !p.check(token.RBRACE) {
		if len(entries) > 0 {
			p.expect(token.COMMA, "','")
		}
		var key string
		if p.check(token.STRING) {
			key = p.advance().Literal.(string)
		} else {
			key = p.expect(token.IDENT, "dict key").Lexeme
		}
		p.expect(token.COLON, "':'")
		val := p.parseExpr()
		entries = append(entries, ast.DictEntry{Key: key, Value: val})
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.DictLit{Position: ast.NewPos(line, col), Entries: entries}
}

// parseParenOrTuple parses a parenthesized expression, `()`, a one-element
// tuple `(a,)`, or a multi-element tuple `(a, b, ...)`.
func (p *Parser) parseParenOrTuple() ast.Expr {
	line, col := p.posHere()
	p.expect(token.LPAREN, "'('")
	if p.check(token.RPAREN) {
		p.advance()
		return &ast.TupleLit{Position: ast.NewPos(line, col)}
	}
	first := p.parseExpr()
	if p.check(token.COMMA) {
		elems := []ast.Expr{first}
		for p.match(token.COMMA) {
			if p.check(token.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RPAREN, "')'")
		return &ast.TupleLit{Position: ast.NewPos(line, col), Elements: elems}
	}
	p.expect(token.RPAREN, "')'")
	return &ast.Grouping{Position: ast.NewPos(line, col), Expression: first}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	line, col := p.posHere()
	p.expect(token.MATCH, "'match'")
	subject := p.parseExpr()
	p.expect(token.LBRACE, "'{'")
	var arms []ast.MatchArm
	for p.match(token.CASE) {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.match(token.IF) {
			guard = p.parseExpr()
		}
		p.expect(token.COLON, "':'")
		body := p.parseExpr()
		p.optSemi()
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.MatchExpr{Position: ast.NewPos(line, col), Subject: subject, Arms: arms}
}

func (p *Parser) parseMatchStmt() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.MATCH, "'match'")
	subject := p.parseExpr()
	p.expect(token.LBRACE, "'{'")
	var arms []ast.MatchStmtArm
	for p.match(token.CASE) {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.match(token.IF) {
			guard = p.parseExpr()
		}
		p.expect(token.COLON, "':'")
		body := p.parseStatement()
		arms = append(arms, ast.MatchStmtArm{Pattern: pat, Guard: guard, Body: body})
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.MatchStmt{Position: ast.NewPos(line, col), Subject: subject, Arms: arms}
}
