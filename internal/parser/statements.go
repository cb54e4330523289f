package parser

import (
	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/token"
)

// parseDeclaration parses one top-level-or-block-level declaration or
// statement: var/let/const groups, function declarations, the bare
// `ident := expr` shorthand, and everything parseStatement handles.
func (p *Parser) parseDeclaration() ast.Stmt {
	switch {
	case p.check(token.VAR), p.check(token.LET), p.check(token.CONST):
		return p.parseLetGroup()
	case p.check(token.FUNCTION):
		return p.parseFunctionStmt()
	case p.check(token.IDENT) && p.peekAt(1).Kind == token.DECL:
		return p.parseShorthandLet()
	default:
		return p.parseStatement()
	}
}

// parseLetGroup parses `var|let|const name [":" type] (":=" | "=") expr
// (, name ...)*`. Multiple comma-separated declarations are wrapped in a
// BlockStmt so each still evaluates and binds independently.
func (p *Parser) parseLetGroup() ast.Stmt {
	line, col := p.posHere()
	kw := p.advance()
	isConst := kw.Kind == token.CONST
	isVar := kw.Kind == token.VAR

	var decls []ast.Stmt
	for {
		decls = append(decls, p.parseOneLet(isConst, isVar))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.optSemi()
	if len(decls) == 1 {
		return decls[0]
	}
	return &ast.BlockStmt{Position: ast.NewPos(line, col), Body: decls}
}

func (p *Parser) parseOneLet(isConst, isVar bool) ast.Stmt {
	line, col := p.posHere()
	name := p.expect(token.IDENT, "identifier").Lexeme
	typeAnn := ""
	if p.match(token.COLON) {
		typeAnn = p.parseTypeName()
	}
	if !p.match(token.DECL) && !p.match(token.EQ) {
		p.fail("expected ':=' or '=' in declaration")
	}
	init := p.parseExpr()
	return &ast.LetStmt{
		Position: ast.NewPos(line, col),
		Name:     name,
		Init:     init,
		IsConst:  isConst,
		IsVar:    isVar,
		Type:     typeAnn,
	}
}

func (p *Parser) parseShorthandLet() ast.Stmt {
	line, col := p.posHere()
	name := p.advance().Lexeme
	p.expect(token.DECL, "':='")
	init := p.parseExpr()
	p.optSemi()
	return &ast.LetStmt{Position: ast.NewPos(line, col), Name: name, Init: init, IsVar: true}
}

// parseTypeName parses the textual form of a gradual type annotation,
// including generic shapes and unions; the raw text is handed to
// typesystem.Parse by whichever consumer installs the annotation.
func (p *Parser) parseTypeName() string {
	s := p.parseTypeAtom()
	for p.check(token.PIPE) {
		p.advance()
		s += " | " + p.parseTypeAtom()
	}
	return s
}

func (p *Parser) parseTypeAtom() string {
	name := p.expect(token.IDENT, "type name").Lexeme
	if p.match(token.LBRACKET) {
		name += "["
		first := true
		for !p.check(token.RBRACKET) {
			if !first {
				p.expect(token.COMMA, "','")
				name += ","
			}
			first = false
			name += p.parseTypeName()
		}
		p.expect(token.RBRACKET, "']'")
		name += "]"
	}
	return name
}

func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.check(token.LBRACE):
		return p.parseBlock()
	case p.check(token.IF):
		return p.parseIf()
	case p.check(token.WHILE):
		return p.parseWhile()
	case p.check(token.FOR):
		return p.parseFor()
	case p.check(token.LOOP):
		return p.parseLoop()
	case p.check(token.BREAK):
		return p.parseBreak()
	case p.check(token.RETURN):
		return p.parseReturn()
	case p.check(token.THROW):
		return p.parseThrow()
	case p.check(token.TRY):
		return p.parseTryCatch()
	case p.check(token.MATCH):
		return p.parseMatchStmt()
	case p.check(token.SAY):
		return p.parseSay()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	line, col := p.posHere()
	p.expect(token.LBRACE, "'{'")
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmts = append(stmts, p.parseDeclaration())
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.BlockStmt{Position: ast.NewPos(line, col), Body: stmts}
}

func (p *Parser) parseIf() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.IF, "'if'")
	parenWrapped := p.match(token.LPAREN)
	cond := p.parseExpr()
	if parenWrapped {
		p.expect(token.RPAREN, "')'")
	}
	then := p.parseStatement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.parseStatement()
	}
	return &ast.IfStmt{Position: ast.NewPos(line, col), Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) parseWhile() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.WHILE, "'while'")
	parenWrapped := p.match(token.LPAREN)
	cond := p.parseExpr()
	if parenWrapped {
		p.expect(token.RPAREN, "')'")
	}
	body := p.parseStatement()
	return &ast.WhileStmt{Position: ast.NewPos(line, col), Cond: cond, Body: body}
}

// parseFor parses `for var name ":=" start "to" end ["step" step] "{" body "}"`,
// an inclusive counted loop.
func (p *Parser) parseFor() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.FOR, "'for'")
	p.expect(token.VAR, "'var'")
	name := p.expect(token.IDENT, "identifier").Lexeme
	p.expect(token.DECL, "':='")
	start := p.parseExpr()
	p.expect(token.TO, "'to'")
	end := p.parseExpr()
	var step ast.Expr
	if p.match(token.STEP) {
		step = p.parseExpr()
	}
	body := p.parseBlock()
	return &ast.ForStmt{Position: ast.NewPos(line, col), Name: name, Start: start, End: end, Step: step, Body: body}
}

// parseLoop parses `loop { body }` or the while-shaped `loop cond body`.
func (p *Parser) parseLoop() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.LOOP, "'loop'")
	if p.check(token.LBRACE) {
		body := p.parseBlock()
		return &ast.LoopStmt{Position: ast.NewPos(line, col), Body: body}
	}
	cond := p.parseExpr()
	body := p.parseStatement()
	return &ast.WhileStmt{Position: ast.NewPos(line, col), Cond: cond, Body: body}
}

func (p *Parser) parseBreak() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.BREAK, "'break'")
	p.optSemi()
	return &ast.BreakStmt{Position: ast.NewPos(line, col)}
}

func (p *Parser) parseReturn() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.RETURN, "'return'")
	var val ast.Expr
	if !p.check(token.SEMI) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		val = p.parseExpr()
	}
	p.optSemi()
	return &ast.ReturnStmt{Position: ast.NewPos(line, col), Value: val}
}

func (p *Parser) parseThrow() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.THROW, "'throw'")
	val := p.parseExpr()
	p.optSemi()
	return &ast.ThrowStmt{Position: ast.NewPos(line, col), Value: val}
}

func (p *Parser) parseTryCatch() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.TRY, "'try'")
	tryBlock := p.parseBlock()
	p.expect(token.CATCH, "'catch'")
	p.expect(token.LPAREN, "'('")
	name := p.expect(token.IDENT, "identifier").Lexeme
	p.expect(token.RPAREN, "')'")
	catchBlock := p.parseBlock()
	return &ast.TryCatchStmt{Position: ast.NewPos(line, col), Try: tryBlock, CatchName: name, Catch: catchBlock}
}

// parseSay parses `say expr`, sugar for a call to the show builtin.
func (p *Parser) parseSay() ast.Stmt {
	line, col := p.posHere()
	p.expect(token.SAY, "'say'")
	val := p.parseExpr()
	p.optSemi()
	call := &ast.Call{
		Position: ast.NewPos(line, col),
		Callee:   &ast.Variable{Position: ast.NewPos(line, col), Name: "show"},
		Args:     []ast.Expr{val},
	}
	return &ast.ExprStmt{Position: ast.NewPos(line, col), Expr: call}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	line, col := p.posHere()
	e := p.parseExpr()
	p.optSemi()
	return &ast.ExprStmt{Position: ast.NewPos(line, col), Expr: e}
}

// parseFunctionStmt parses `function name "(" params ")" [":" type]
// "{" body "}"`.
func (p *Parser) parseFunctionStmt() ast.Stmt {
	line, col := p.posHere()
	fn := p.parseFunctionRest(true)
	return &ast.FunctionStmt{Position: ast.NewPos(line, col), Fn: fn}
}

// parseFunctionRest parses the remainder of a function after the `function`
// keyword, shared by statement and expression position. If named is true a
// name is required; otherwise it is optional (anonymous function literal).
func (p *Parser) parseFunctionRest(named bool) *ast.FunctionExpr {
	line, col := p.posHere()
	p.expect(token.FUNCTION, "'function'")
	name := ""
	if p.check(token.IDENT) {
		name = p.advance().Lexeme
	} else if named {
		p.fail("expected function name")
	}
	p.expect(token.LPAREN, "'('")
	var params []ast.Param
	for !p.check(token.RPAREN) {
		if len(params) > 0 {
			p.expect(token.COMMA, "','")
		}
		pname := p.expect(token.IDENT, "parameter name").Lexeme
		ptype := ""
		if p.match(token.COLON) {
			ptype = p.parseTypeName()
		}
		params = append(params, ast.Param{Name: pname, Type: ptype})
	}
	p.expect(token.RPAREN, "')'")
	retType := ""
	if p.match(token.COLON) {
		retType = p.parseTypeName()
	}
	body := p.parseBlock()
	return &ast.FunctionExpr{
		Position:   ast.NewPos(line, col),
		Name:       name,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}
}
