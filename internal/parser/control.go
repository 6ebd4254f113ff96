package parser

import (
	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/pkg/token"
)

// parseIf parses `if (cond) { ... } [else (if (...) {...} | {...})]`.
func (p *Parser) parseIf() ast.Stmt {
	pos := p.pos()
	p.expect(token.IF, "'if'")
	n := ast.NewIf(pos, p.file)
	p.expect(token.LPAREN, "'('")
	n.Cond = p.parseExpression()
	p.expect(token.RPAREN, "')'")
	n.Then = p.parseBlock()
	if p.toks.At(token.ELSE) {
		p.toks.Advance()
		if p.toks.At(token.IF) {
			n.Else = p.parseIf()
		} else {
			n.Else = p.parseBlock()
		}
	}
	return n
}

// parseWhile parses `while (cond) { ... }`.
func (p *Parser) parseWhile() ast.Stmt {
	pos := p.pos()
	p.expect(token.WHILE, "'while'")
	n := ast.NewWhile(pos, p.file)
	p.expect(token.LPAREN, "'('")
	n.Cond = p.parseExpression()
	p.expect(token.RPAREN, "')'")
	n.Body = p.parseBlock()
	return n
}

// parseFor dispatches among the three for-loop shapes by lookahead: if the
// header contains `in`/`of` after the induction variable it is a ForIn/ForOf,
// otherwise a three-part C-style For.
func (p *Parser) parseFor() ast.Stmt {
	pos := p.pos()
	p.expect(token.FOR, "'for'")
	p.expect(token.LPAREN, "'('")

	if p.toks.At(token.IDENT) && (p.toks.Peek(1).Kind == token.IN || p.toks.Peek(1).Kind == token.OF) {
		name := p.toks.Advance().Text
		isOf := p.toks.Current().Kind == token.OF
		p.toks.Advance() // 'in' or 'of'
		iterable := p.parseExpression()
		p.expect(token.RPAREN, "')'")
		if isOf {
			n := ast.NewForOf(pos, p.file)
			n.Name = name
			n.Iterable = iterable
			n.Body = p.parseBlock()
			return n
		}
		n := ast.NewForIn(pos, p.file)
		n.Name = name
		n.Iterable = iterable
		n.Body = p.parseBlock()
		return n
	}

	n := ast.NewFor(pos, p.file)
	if !p.toks.At(token.SEMICOLON) {
		n.Init = p.parseStatement()
	}
	p.expect(token.SEMICOLON, "';'")
	if !p.toks.At(token.SEMICOLON) {
		n.Cond = p.parseExpression()
	}
	p.expect(token.SEMICOLON, "';'")
	if !p.toks.At(token.RPAREN) {
		n.Update = p.parseExprStatement()
	}
	p.expect(token.RPAREN, "')'")
	n.Body = p.parseBlock()
	return n
}

// parseLoop parses the bare infinite `loop { ... }`.
func (p *Parser) parseLoop() ast.Stmt {
	pos := p.pos()
	p.expect(token.LOOP, "'loop'")
	n := ast.NewLoop(pos, p.file)
	n.Body = p.parseBlock()
	return n
}

// parseTry parses `try { ... } catch (name: Type) { ... } ... [finally { ... }]`.
func (p *Parser) parseTry() ast.Stmt {
	pos := p.pos()
	p.expect(token.TRY, "'try'")
	n := ast.NewTry(pos, p.file)
	n.Body = p.parseBlock()
	for p.toks.At(token.CATCH) {
		p.toks.Advance()
		p.expect(token.LPAREN, "'('")
		clause := ast.CatchClause{Name: p.expectIdentLike("exception name")}
		p.expect(token.COLON, "':' (untyped catch is a syntax error)")
		clause.Type = p.parseTypeExpr()
		p.expect(token.RPAREN, "')'")
		clause.Body = p.parseBlock()
		n.Catches = append(n.Catches, clause)
	}
	if p.toks.At(token.FINALLY) {
		p.toks.Advance()
		n.Finally = p.parseBlock()
	}
	if len(n.Catches) == 0 && n.Finally == nil {
		p.addError(newSyntaxMessage(pos, "try statement requires at least one catch clause or a finally block"))
	}
	return n
}

// parseWith parses `with (manager [as name][, manager [as name], ...]) { ... }`.
func (p *Parser) parseWith() ast.Stmt {
	pos := p.pos()
	p.expect(token.WITH, "'with'")
	n := ast.NewWith(pos, p.file)
	p.expect(token.LPAREN, "'('")
	for {
		item := ast.WithItem{Manager: p.parseExpression()}
		if p.toks.At(token.AS) {
			p.toks.Advance()
			item.As = p.expectIdentLike("binding name")
		}
		n.Items = append(n.Items, item)
		if p.toks.At(token.COMMA) {
			p.toks.Advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "')'")
	n.Body = p.parseBlock()
	return n
}
