package parser

import (
	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/token"
)

// parsePattern parses a match arm's pattern: a top-level `|`-separated list
// of alternatives (wrapped in an OrPattern when there is more than one),
// each of which is a literal, wildcard, list/tuple/dict shape, a type name,
// or a variable binding.
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePatternAtom()
	if !p.check(token.PIPE) {
		return first
	}
	line, col := first.Pos()
	alts := []ast.Pattern{first}
	for p.match(token.PIPE) {
		alts = append(alts, p.parsePatternAtom())
	}
	return &ast.OrPattern{Position: ast.NewPos(line, col), Alternatives: alts}
}

func (p *Parser) parsePatternAtom() ast.Pattern {
	line, col := p.posHere()
	switch {
	case p.check(token.NUMBER), p.check(token.STRING), p.check(token.TRUE), p.check(token.FALSE), p.check(token.NULL):
		t := p.advance()
		return &ast.LiteralPattern{Position: ast.NewPos(line, col), Value: t.Literal}
	case p.check(token.MINUS):
		// negative number literal
		p.advance()
		t := p.expect(token.NUMBER, "number")
		var v any
		switch lit := t.Literal.(type) {
		case int64:
			v = -lit
		case float64:
			v = -lit
		}
		return &ast.LiteralPattern{Position: ast.NewPos(line, col), Value: v}
	case p.check(token.LBRACKET):
		return p.parseListPattern()
	case p.check(token.LPAREN):
		return p.parseTuplePattern()
	case p.check(token.LBRACE):
		return p.parseDictPattern()
	case p.check(token.IDENT):
		name := p.cur().Lexeme
		if name == "_" {
			p.advance()
			return &ast.WildcardPattern{Position: ast.NewPos(line, col)}
		}
		if isTypeName(name) {
			p.advance()
			return &ast.TypePattern{Position: ast.NewPos(line, col), TypeName: name}
		}
		p.advance()
		return &ast.VariablePattern{Position: ast.NewPos(line, col), Name: name}
	default:
		p.fail("expected pattern, found " + string(p.cur().Kind))
		panic("unreachable")
	}
}

// isTypeName reports whether ident names one of Falcon's runtime type
// kinds, the only identifiers that parse as a TypePattern rather than a
// binding VariablePattern.
func isTypeName(ident string) bool {
	switch ident {
	case "int", "float", "number", "bool", "boolean", "string", "str",
		"null", "list", "set", "tuple", "dict", "fn", "function", "object":
		return true
	default:
		return false
	}
}

func (p *Parser) parseListPattern() ast.Pattern {
	line, col := p.posHere()
	p.expect(token.LBRACKET, "'['")
	var elems []ast.Pattern
	for !p.check(token.RBRACKET) {
		if len(elems) > 0 {
			p.expect(token.COMMA, "','")
		}
		elems = append(elems, p.parsePattern())
	}
	p.expect(token.RBRACKET, "']'")
	return &ast.ListPattern{Position: ast.NewPos(line, col), Elements: elems}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	line, col := p.posHere()
	p.expect(token.LPAREN, "'('")
	var elems []ast.Pattern
	for !p.check(token.RPAREN) {
		if len(elems) > 0 {
			p.expect(token.COMMA, "','")
		}
		elems = append(elems, p.parsePattern())
	}
	p.expect(token.RPAREN, "')'")
	return &ast.TuplePattern{Position: ast.NewPos(line, col), Elements: elems}
}

func (p *Parser) parseDictPattern() ast.Pattern {
	line, col := p.posHere()
	p.expect(token.LBRACE, "'{'")
	var entries []ast.DictPatternEntry
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
		pat := p.parsePattern()
		entries = append(entries, ast.DictPatternEntry{Key: key, Pattern: pat})
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.DictPattern{Position: ast.NewPos(line, col), Entries: entries}
}
