package parser

import (
	"strconv"
	"strings"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/lexer"
	"github.com/corplang/mp/pkg/token"
)

// parseExpression is the top of the precedence chain named in the grammar:
// assignment -> ternary -> or -> and -> equality -> comparison(+in) ->
// additive -> multiplicative -> unary -> call/member access -> primary.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	pos := p.pos()
	left := p.parseTernary()
	if p.toks.At(token.ASSIGN) {
		p.toks.Advance()
		target, ok := left.(ast.AssignTarget)
		if !ok {
			p.addError(newSyntaxMessage(pos, "left-hand side of assignment is not assignable"))
			return left
		}
		value := p.parseAssignment()
		return ast.NewAssignment(pos, p.file, target, "=", value)
	}
	return left
}

func (p *Parser) parseTernary() ast.Expr {
	pos := p.pos()
	cond := p.parseOr()
	if p.toks.At(token.QUESTION) {
		p.toks.Advance()
		then := p.parseAssignment()
		p.expect(token.COLON, "':' in ternary expression")
		els := p.parseAssignment()
		return ast.NewTernary(pos, p.file, cond, then, els)
	}
	return cond
}

func (p *Parser) parseOr() ast.Expr {
	pos := p.pos()
	left := p.parseAnd()
	for p.toks.At(token.OR) {
		p.toks.Advance()
		right := p.parseAnd()
		left = ast.NewBinaryOp(pos, p.file, "or", left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	pos := p.pos()
	left := p.parseEquality()
	for p.toks.At(token.AND) {
		p.toks.Advance()
		right := p.parseEquality()
		left = ast.NewBinaryOp(pos, p.file, "and", left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	pos := p.pos()
	left := p.parseComparison()
	for {
		var op string
		switch p.toks.Current().Kind {
		case token.EQ:
			op = "=="
		case token.NOT_EQ:
			op = "!="
		default:
			return left
		}
		p.toks.Advance()
		right := p.parseComparison()
		left = ast.NewBinaryOp(pos, p.file, op, left, right)
	}
}

func (p *Parser) parseComparison() ast.Expr {
	pos := p.pos()
	left := p.parseAdditive()
	for {
		var op string
		switch p.toks.Current().Kind {
		case token.LESS:
			op = "<"
		case token.GREATER:
			op = ">"
		case token.LESS_EQ:
			op = "<="
		case token.GREATER_EQ:
			op = ">="
		case token.IN:
			op = "in"
		default:
			return left
		}
		p.toks.Advance()
		right := p.parseAdditive()
		left = ast.NewBinaryOp(pos, p.file, op, left, right)
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	pos := p.pos()
	left := p.parseMultiplicative()
	for {
		var op string
		switch p.toks.Current().Kind {
		case token.PLUS:
			op = "+"
		case token.MINUS:
			op = "-"
		default:
			return left
		}
		p.toks.Advance()
		right := p.parseMultiplicative()
		left = ast.NewBinaryOp(pos, p.file, op, left, right)
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	pos := p.pos()
	left := p.parseUnary()
	for {
		var op string
		switch p.toks.Current().Kind {
		case token.STAR:
			op = "*"
		case token.SLASH:
			op = "/"
		case token.PERCENT:
			op = "%"
		default:
			return left
		}
		p.toks.Advance()
		right := p.parseUnary()
		left = ast.NewBinaryOp(pos, p.file, op, left, right)
	}
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.pos()
	switch p.toks.Current().Kind {
	case token.MINUS:
		p.toks.Advance()
		return ast.NewUnaryOp(pos, p.file, "-", p.parseUnary())
	case token.NOT:
		p.toks.Advance()
		return ast.NewUnaryOp(pos, p.file, "not", p.parseUnary())
	case token.EXCLAIM:
		p.toks.Advance()
		return ast.NewUnaryOp(pos, p.file, "!", p.parseUnary())
	case token.AWAIT:
		p.toks.Advance()
		return ast.NewAwait(pos, p.file, p.parseUnary())
	}
	return p.parseCallOrMember()
}

// parseCallOrMember handles postfix call, property, and index chains.
func (p *Parser) parseCallOrMember() ast.Expr {
	expr := p.parsePrimary()
	for {
		pos := p.pos()
		switch p.toks.Current().Kind {
		case token.LPAREN:
			expr = p.parseCallArgs(pos, expr)
		case token.DOT:
			p.toks.Advance()
			name := p.expectIdentLike("member name")
			expr = ast.NewPropertyAccess(pos, p.file, expr, name)
		case token.QUESTION:
			if p.toks.Peek(1).Kind != token.DOT {
				return expr
			}
			p.toks.Advance()
			p.toks.Advance()
			name := p.expectIdentLike("member name")
			pa := ast.NewPropertyAccess(pos, p.file, expr, name)
			pa.Optional = true
			expr = pa
		case token.LBRACK:
			p.toks.Advance()
			idx := p.parseExpression()
			p.expect(token.RBRACK, "']'")
			expr = ast.NewIndexAccess(pos, p.file, expr, idx)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallArgs(pos token.Position, callee ast.Expr) ast.Expr {
	p.expect(token.LPAREN, "'('")
	call := ast.NewFunctionCall(pos, p.file, callee)
	for !p.toks.At(token.RPAREN) && !p.toks.AtEnd() {
		call.Args = append(call.Args, p.parseArg())
		if p.toks.At(token.COMMA) {
			p.toks.Advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "')'")
	return call
}

// parseArg disambiguates named (`name: value` or `name = value`) from
// positional arguments by a two-token lookahead.
func (p *Parser) parseArg() ast.Arg {
	if isIdentLike(p.toks.Current().Kind) {
		next := p.toks.Peek(1).Kind
		if next == token.COLON || next == token.ASSIGN {
			name := p.toks.Advance().Text
			p.toks.Advance()
			return ast.Arg{Name: name, Value: p.parseAssignment()}
		}
	}
	return ast.Arg{Value: p.parseAssignment()}
}

func isIdentLike(k token.Kind) bool {
	return k == token.IDENT || k.IsKeyword()
}

func (p *Parser) expectIdentLike(context string) string {
	cur := p.toks.Current()
	if isIdentLike(cur.Kind) {
		p.toks.Advance()
		return cur.Text
	}
	p.addError(newSyntaxError(cur.Pos, context, cur))
	return ""
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.pos()
	cur := p.toks.Current()
	switch cur.Kind {
	case token.NUMBER:
		p.toks.Advance()
		return parseNumberLiteral(pos, p.file, cur.Text)
	case token.STRING, token.DOCSTRING:
		p.toks.Advance()
		return ast.NewStringLiteral(pos, p.file, cur.Text, cur.Text)
	case token.FSTRING:
		p.toks.Advance()
		return p.parseFString(pos, cur.Text)
	case token.TRUE:
		p.toks.Advance()
		return ast.NewBoolLiteral(pos, p.file, true)
	case token.FALSE:
		p.toks.Advance()
		return ast.NewBoolLiteral(pos, p.file, false)
	case token.NULLKW, token.NONE:
		p.toks.Advance()
		return ast.NewNullLiteral(pos, p.file)
	case token.THIS:
		p.toks.Advance()
		return ast.NewThisExpression(pos, p.file)
	case token.SUPER:
		p.toks.Advance()
		return ast.NewSuperExpression(pos, p.file)
	case token.NEW:
		return p.parseNewExpression()
	case token.FN:
		return p.parseLambda(false)
	case token.ASYNC:
		if p.toks.Peek(1).Kind == token.FN {
			p.toks.Advance()
			return p.parseLambda(true)
		}
		p.unexpected("token")
		p.toks.Advance()
		return ast.NewNullLiteral(pos, p.file)
	case token.LPAREN:
		p.toks.Advance()
		expr := p.parseExpression()
		p.expect(token.RPAREN, "')'")
		return expr
	case token.OBJECT:
		p.toks.Advance()
		return p.parseJSONObject(pos, cur.Text)
	case token.ARRAY:
		p.toks.Advance()
		return p.parseJSONArray(pos, cur.Text)
	case token.IDENT:
		p.toks.Advance()
		if p.toks.At(token.LESS) && p.looksLikeGenericArgs() {
			return p.parseGenericIdentifier(pos, cur.Text)
		}
		return ast.NewIdentifier(pos, p.file, cur.Text)
	default:
		p.unexpected("expression")
		p.toks.Advance()
		return ast.NewNullLiteral(pos, p.file)
	}
}

func parseNumberLiteral(pos token.Position, file, text string) ast.Expr {
	if strings.ContainsAny(text, ".eE") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			v = 0
		}
		return ast.NewFloatLiteral(pos, file, text, v)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		v = 0
	}
	return ast.NewIntLiteral(pos, file, text, v)
}

// looksLikeGenericArgs scans forward from the current '<' for a matching '>'
// before a hard delimiter, per the grammar's generic-identifier lookahead.
func (p *Parser) looksLikeGenericArgs() bool {
	mark := p.toks.Mark()
	defer p.toks.Reset(mark)

	depth := 0
	p.toks.Advance() // consume '<'
	depth++
	for {
		switch p.toks.Current().Kind {
		case token.GREATER:
			depth--
			if depth == 0 {
				return true
			}
			p.toks.Advance()
		case token.LESS:
			depth++
			p.toks.Advance()
		case token.SEMICOLON, token.LBRACE, token.LPAREN, token.RPAREN, token.ASSIGN, token.RBRACE, token.EOF:
			return false
		default:
			p.toks.Advance()
		}
	}
}

func (p *Parser) parseGenericIdentifier(pos token.Position, name string) ast.Expr {
	gi := ast.NewGenericIdentifier(pos, p.file, name)
	p.expect(token.LESS, "'<'")
	for !p.toks.At(token.GREATER) && !p.toks.AtEnd() {
		gi.Args = append(gi.Args, p.parseTypeExpr())
		if p.toks.At(token.COMMA) {
			p.toks.Advance()
			continue
		}
		break
	}
	p.expect(token.GREATER, "'>'")
	return gi
}

func (p *Parser) parseNewExpression() ast.Expr {
	pos := p.pos()
	p.toks.Advance() // 'new'
	name := p.expectIdentLike("class name")
	ne := ast.NewNewExpression(pos, p.file, name)
	if p.toks.At(token.LPAREN) {
		p.toks.Advance()
		for !p.toks.At(token.RPAREN) && !p.toks.AtEnd() {
			ne.Args = append(ne.Args, p.parseArg())
			if p.toks.At(token.COMMA) {
				p.toks.Advance()
				continue
			}
			break
		}
		p.expect(token.RPAREN, "')'")
	}
	return ne
}

// parseLambda parses `fn(params) { ... }`, an inline function value.
func (p *Parser) parseLambda(isAsync bool) ast.Expr {
	pos := p.pos()
	p.expect(token.FN, "'fn'")
	lam := ast.NewLambdaExpression(pos, p.file)
	lam.IsAsync = isAsync
	lam.Params = p.parseParamList()
	block := p.parseBlock()
	lam.Body = block.Statements
	return lam
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LPAREN, "'('")
	var params []ast.Param
	for !p.toks.At(token.RPAREN) && !p.toks.AtEnd() {
		params = append(params, p.parseParam())
		if p.toks.At(token.COMMA) {
			p.toks.Advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "')'")
	return params
}

func (p *Parser) parseParam() ast.Param {
	var param ast.Param
	name := p.expectIdentLike("parameter name")
	param.Name = name
	param.IsKwargs = name == "kwargs"
	if p.toks.At(token.COLON) {
		p.toks.Advance()
		param.Type = p.parseTypeExpr()
	}
	if p.toks.At(token.ASSIGN) {
		p.toks.Advance()
		param.Default = p.parseAssignment()
	}
	return param
}

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	te := &ast.TypeExpr{Name: p.expectIdentLike("type name")}
	if p.toks.At(token.LESS) {
		p.toks.Advance()
		for !p.toks.At(token.GREATER) && !p.toks.AtEnd() {
			te.Generics = append(te.Generics, p.parseTypeExpr())
			if p.toks.At(token.COMMA) {
				p.toks.Advance()
				continue
			}
			break
		}
		p.expect(token.GREATER, "'>'")
	}
	for p.toks.At(token.PIPE) {
		p.toks.Advance()
		te.Union = append(te.Union, p.parseTypeExpr())
	}
	if p.toks.At(token.QUESTION) {
		p.toks.Advance()
		te.Nullable = true
	}
	return te
}

// parseFString re-lexes `{...}` placeholders inside f-string text into
// nested expressions, treating `{{`/`}}` as literal braces.
func (p *Parser) parseFString(pos token.Position, raw string) ast.Expr {
	node := ast.NewInterpolatedString(pos, p.file)
	var part strings.Builder
	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '{' && i+1 < len(runes) && runes[i+1] == '{':
			part.WriteRune('{')
			i += 2
		case c == '}' && i+1 < len(runes) && runes[i+1] == '}':
			part.WriteRune('}')
			i += 2
		case c == '{':
			depth := 1
			j := i + 1
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := string(runes[i+1 : j])
			node.Parts = append(node.Parts, part.String())
			part.Reset()
			toks, _ := lexer.Tokenize(inner, p.file)
			sub := New(toks, p.file, inner)
			node.Exprs = append(node.Exprs, sub.parseExpression())
			p.errors = append(p.errors, sub.errors...)
			i = j + 1
		default:
			part.WriteRune(c)
			i++
		}
	}
	node.Parts = append(node.Parts, part.String())
	return node
}

func (p *Parser) parseJSONObject(pos token.Position, raw string) ast.Expr {
	node := ast.NewJsonObject(pos, p.file)
	inner := raw[1 : len(raw)-1]
	toks, _ := lexer.Tokenize(inner, p.file)
	sub := New(toks, p.file, inner)
	for !sub.toks.At(token.RBRACE) && !sub.toks.AtEnd() {
		key := sub.toks.Advance().Text
		key = strings.Trim(key, "\"'")
		sub.expect(token.COLON, "':'")
		node.Keys = append(node.Keys, key)
		node.Values = append(node.Values, sub.parseAssignment())
		if sub.toks.At(token.COMMA) {
			sub.toks.Advance()
			continue
		}
		break
	}
	p.errors = append(p.errors, sub.errors...)
	return node
}

func (p *Parser) parseJSONArray(pos token.Position, raw string) ast.Expr {
	node := ast.NewJsonArray(pos, p.file)
	inner := raw[1 : len(raw)-1]
	toks, _ := lexer.Tokenize(inner, p.file)
	sub := New(toks, p.file, inner)
	for !sub.toks.At(token.RBRACK) && !sub.toks.AtEnd() {
		node.Elements = append(node.Elements, sub.parseAssignment())
		if sub.toks.At(token.COMMA) {
			sub.toks.Advance()
			continue
		}
		break
	}
	p.errors = append(p.errors, sub.errors...)
	return node
}
