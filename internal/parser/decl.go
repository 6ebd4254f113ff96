package parser

import (
	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/pkg/token"
)

// parseVarDecl parses `var name[: Type] = value` or the `intent` variant used
// by declarative blocks (same shape, different leading keyword).
func (p *Parser) parseVarDecl() ast.Stmt {
	pos := p.pos()
	p.toks.Advance() // 'var' or 'intent'
	name := p.expectIdentLike("variable name")
	decl := ast.NewVarDecl(pos, p.file, name)
	if p.toks.At(token.COLON) {
		p.toks.Advance()
		decl.Type = p.parseTypeExpr()
	}
	if p.toks.At(token.ASSIGN) {
		p.toks.Advance()
		decl.Value = p.parseExpression()
	}
	return decl
}

// parseFunctionDecl parses `[async] fn name(params) [: Type] { ... }`.
func (p *Parser) parseFunctionDecl() ast.Stmt {
	pos := p.pos()
	isAsync := false
	if p.toks.At(token.ASYNC) {
		isAsync = true
		p.toks.Advance()
	}
	p.expect(token.FN, "'fn'")
	name := p.expectIdentLike("function name")
	decl := ast.NewFunctionDecl(pos, p.file, name)
	decl.IsAsync = isAsync
	decl.Params = p.parseParamList()
	if p.toks.At(token.COLON) {
		p.toks.Advance()
		decl.ReturnType = p.parseTypeExpr()
	}
	decl.Body = p.parseBlock()
	return decl
}

// parseClassDecl parses a class declaration: modifiers, optional
// extends/implements clause, and a body of fields/methods.
func (p *Parser) parseClassDecl() ast.Stmt {
	pos := p.pos()
	p.expect(token.CLASS, "'class'")
	name := p.expectIdentLike("class name")
	decl := ast.NewClassDecl(pos, p.file, name)
	if p.toks.At(token.EXTENDS) {
		p.toks.Advance()
		decl.Parent = p.expectIdentLike("parent class name")
	}
	if p.toks.At(token.IMPLEMENTS) {
		p.toks.Advance()
		decl.Implements = append(decl.Implements, p.expectIdentLike("interface name"))
		for p.toks.At(token.COMMA) {
			p.toks.Advance()
			decl.Implements = append(decl.Implements, p.expectIdentLike("interface name"))
		}
	}
	p.expect(token.LBRACE, "'{'")
	for !p.toks.At(token.RBRACE) && !p.toks.AtEnd() {
		mark := p.toks.Mark()
		p.parseClassMember(decl)
		if p.toks.Mark() == mark {
			p.addError(newSyntaxError(p.pos(), "class member", p.toks.Current()))
			p.toks.Advance()
		}
	}
	p.expect(token.RBRACE, "'}'")
	return decl
}

// parseClassMember consumes one field or method declaration, appending it to
// the owning class. Visibility and static/abstract modifiers may appear in
// any order before the `var`/`fn` keyword.
func (p *Parser) parseClassMember(decl *ast.ClassDecl) {
	vis := ast.Public
	isStatic := false
	isAbstract := false
loop:
	for {
		switch p.toks.Current().Kind {
		case token.PRIVATE:
			vis = ast.Private
			p.toks.Advance()
		case token.PUBLIC:
			vis = ast.Public
			p.toks.Advance()
		case token.PROTECTED:
			vis = ast.Protected
			p.toks.Advance()
		case token.STATIC:
			isStatic = true
			p.toks.Advance()
		case token.ABSTRACT:
			isAbstract = true
			p.toks.Advance()
		default:
			break loop
		}
	}

	pos := p.pos()
	switch p.toks.Current().Kind {
	case token.VAR:
		p.toks.Advance()
		name := p.expectIdentLike("field name")
		field := ast.NewFieldDecl(pos, p.file, name)
		field.Visibility = vis
		field.IsStatic = isStatic
		if p.toks.At(token.COLON) {
			p.toks.Advance()
			field.Type = p.parseTypeExpr()
		}
		if p.toks.At(token.ASSIGN) {
			p.toks.Advance()
			field.Default = p.parseExpression()
		}
		ast.Attach(decl, field)
		decl.Fields = append(decl.Fields, field)
	case token.ASYNC, token.FN:
		isAsync := false
		if p.toks.At(token.ASYNC) {
			isAsync = true
			p.toks.Advance()
		}
		p.expect(token.FN, "'fn'")
		name := p.expectIdentLike("method name")
		method := ast.NewMethodDecl(pos, p.file, name)
		method.Visibility = vis
		method.IsStatic = isStatic
		method.IsAbstract = isAbstract
		method.IsAsync = isAsync
		method.IsConstructor = name == decl.Name
		method.Params = p.parseParamList()
		if p.toks.At(token.COLON) {
			p.toks.Advance()
			method.ReturnType = p.parseTypeExpr()
		}
		if isAbstract {
			p.skipOptionalSemicolons()
		} else {
			method.Body = p.parseBlock()
		}
		ast.Attach(decl, method)
		decl.Methods = append(decl.Methods, method)
	default:
		p.unexpected("class member")
	}
}

// parseInterfaceDecl parses an interface declaration: a closed set of
// method signatures, with optional `extends` of other interfaces.
func (p *Parser) parseInterfaceDecl() ast.Stmt {
	pos := p.pos()
	p.expect(token.INTERFACE, "'interface'")
	name := p.expectIdentLike("interface name")
	decl := ast.NewInterfaceDecl(pos, p.file, name)
	if p.toks.At(token.EXTENDS) {
		p.toks.Advance()
		decl.Extends = append(decl.Extends, p.expectIdentLike("interface name"))
		for p.toks.At(token.COMMA) {
			p.toks.Advance()
			decl.Extends = append(decl.Extends, p.expectIdentLike("interface name"))
		}
	}
	p.expect(token.LBRACE, "'{'")
	for !p.toks.At(token.RBRACE) && !p.toks.AtEnd() {
		mark := p.toks.Mark()
		if p.toks.At(token.FN) {
			p.toks.Advance()
			member := ast.InterfaceMember{Name: p.expectIdentLike("method name")}
			member.Params = p.parseParamList()
			if p.toks.At(token.COLON) {
				p.toks.Advance()
				member.ReturnType = p.parseTypeExpr()
			}
			p.skipOptionalSemicolons()
			decl.Members = append(decl.Members, member)
		}
		if p.toks.Mark() == mark {
			p.addError(newSyntaxError(p.pos(), "method signature", p.toks.Current()))
			p.toks.Advance()
		}
	}
	p.expect(token.RBRACE, "'}'")
	return decl
}

// parseContractDecl parses `contract Target { require ... ensure ... }`,
// attaching design-by-contract clauses to a named function or method.
func (p *Parser) parseContractDecl() ast.Stmt {
	pos := p.pos()
	p.expect(token.CONTRACT, "'contract'")
	target := p.expectIdentLike("contract target")
	decl := ast.NewContractDecl(pos, p.file, target)
	p.expect(token.LBRACE, "'{'")
	for !p.toks.At(token.RBRACE) && !p.toks.AtEnd() {
		mark := p.toks.Mark()
		switch p.toks.Current().Text {
		case "require":
			p.toks.Advance()
			decl.Requires = append(decl.Requires, p.parseCondition())
		case "ensure":
			p.toks.Advance()
			decl.Ensures = append(decl.Ensures, p.parseCondition())
		case "invariant":
			p.toks.Advance()
			decl.Invariants = append(decl.Invariants, p.parseCondition())
		default:
			p.unexpected("contract clause")
		}
		p.skipOptionalSemicolons()
		if p.toks.Mark() == mark {
			p.toks.Advance()
		}
	}
	p.expect(token.RBRACE, "'}'")
	return decl
}

func (p *Parser) parseCondition() ast.Condition {
	cond := ast.Condition{Test: p.parseExpression()}
	if p.toks.At(token.COLON) {
		p.toks.Advance()
		cond.Message = p.parseExpression()
	}
	return cond
}

// parseEnumDecl parses `enum Name { A[, B = expr, ...] }`.
func (p *Parser) parseEnumDecl() ast.Stmt {
	pos := p.pos()
	p.expect(token.ENUM, "'enum'")
	name := p.expectIdentLike("enum name")
	decl := ast.NewEnumDecl(pos, p.file, name)
	p.expect(token.LBRACE, "'{'")
	for !p.toks.At(token.RBRACE) && !p.toks.AtEnd() {
		member := ast.EnumMember{Name: p.expectIdentLike("enum member")}
		if p.toks.At(token.ASSIGN) {
			p.toks.Advance()
			member.Value = p.parseExpression()
		}
		decl.Members = append(decl.Members, member)
		if p.toks.At(token.COMMA) {
			p.toks.Advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE, "'}'")
	return decl
}

// parseImportDecl parses `import path[.sub] [as alias]`.
func (p *Parser) parseImportDecl() ast.Stmt {
	pos := p.pos()
	p.expect(token.IMPORT, "'import'")
	path := p.expectIdentLike("module path")
	for p.toks.At(token.DOT) {
		p.toks.Advance()
		path += "." + p.expectIdentLike("module path segment")
	}
	decl := ast.NewImportDecl(pos, p.file, path)
	if p.toks.At(token.AS) {
		p.toks.Advance()
		decl.Alias = p.expectIdentLike("import alias")
	}
	return decl
}

// parseFromImportDecl parses `from module import a[, b as c, ...]`.
func (p *Parser) parseFromImportDecl() ast.Stmt {
	pos := p.pos()
	p.expect(token.FROM, "'from'")
	module := p.expectIdentLike("module path")
	for p.toks.At(token.DOT) {
		p.toks.Advance()
		module += "." + p.expectIdentLike("module path segment")
	}
	p.expect(token.IMPORT, "'import'")
	decl := ast.NewFromImportDecl(pos, p.file, module)
	for {
		name := p.expectIdentLike("imported name")
		entry := ast.ImportedName{Name: name}
		if p.toks.At(token.AS) {
			p.toks.Advance()
			entry.Alias = p.expectIdentLike("import alias")
		}
		decl.Names = append(decl.Names, entry)
		if p.toks.At(token.COMMA) {
			p.toks.Advance()
			continue
		}
		break
	}
	return decl
}
