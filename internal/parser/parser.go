// Package parser implements Corplang's recursive-descent parser: source
// tokens in, an *ast.Program out. Lookahead drives three spots the grammar
// is otherwise ambiguous: generic identifiers vs comparisons, named vs
// positional call arguments, and the three for-loop shapes.
package parser

import (
	"fmt"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/lexer"
	"github.com/corplang/mp/pkg/token"
)

// Parser holds parsing state for a single source file.
type Parser struct {
	file   string
	source string
	toks   *TokenStream
	errors []*SyntaxException
}

// New creates a Parser over a pre-tokenized stream.
func New(toks []token.Token, file, source string) *Parser {
	return &Parser{file: file, source: source, toks: NewTokenStream(toks)}
}

// Parse lexes and parses source into a Program. Lexical errors are reported
// as the first syntax errors; parsing then proceeds best-effort so a single
// bad construct does not prevent the rest of the file from being checked.
func Parse(source, file string) (*ast.Program, []*SyntaxException) {
	toks, lexErrs := lexer.Tokenize(source, file)
	p := New(toks, file, source)
	for _, le := range lexErrs {
		p.errors = append(p.errors, newSyntaxMessage(le.Pos, le.Message))
	}
	prog := p.parseProgram()
	return prog, p.errors
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []*SyntaxException { return p.errors }

func (p *Parser) pos() token.Position { return p.toks.Current().Pos }

func (p *Parser) addError(err *SyntaxException) {
	p.errors = append(p.errors, err)
}

// expect consumes the current token if it has kind k, else records a syntax
// error and forces forward progress by consuming one token anyway.
func (p *Parser) expect(k token.Kind, context string) token.Token {
	cur := p.toks.Current()
	if cur.Kind == k {
		return p.toks.Advance()
	}
	p.addError(newSyntaxError(cur.Pos, context, cur))
	if cur.Kind != token.EOF {
		p.toks.Advance()
	}
	return cur
}

func (p *Parser) parseProgram() *ast.Program {
	prog := ast.NewProgram(p.file)
	if p.toks.At(token.DOCSTRING) {
		prog.Docstring = p.toks.Current().Text
		p.toks.Advance()
	}
	for !p.toks.AtEnd() {
		mark := p.toks.Mark()
		stmt := p.parseStatement()
		if stmt != nil {
			ast.Attach(prog, stmt)
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.toks.Mark() == mark {
			// No progress was made (an unrecognized token): force advance
			// so a single bad token can never loop the parser forever.
			p.addError(newSyntaxError(p.pos(), "statement", p.toks.Current()))
			p.toks.Advance()
		}
	}
	return prog
}

// parseBlock parses `{ stmt* }`.
func (p *Parser) parseBlock() *ast.Block {
	pos := p.pos()
	p.expect(token.LBRACE, "'{'")
	block := ast.NewBlock(pos, p.file)
	for !p.toks.At(token.RBRACE) && !p.toks.AtEnd() {
		mark := p.toks.Mark()
		stmt := p.parseStatement()
		if stmt != nil {
			ast.Attach(block, stmt)
			block.Statements = append(block.Statements, stmt)
		}
		if p.toks.Mark() == mark {
			p.addError(newSyntaxError(p.pos(), "statement", p.toks.Current()))
			p.toks.Advance()
		}
	}
	p.expect(token.RBRACE, "'}'")
	return block
}

// parseStatement dispatches on the current token to the right statement or
// declaration production. Declarations are also statements, so they can
// appear in any block.
func (p *Parser) parseStatement() ast.Stmt {
	p.skipOptionalSemicolons()
	switch p.toks.Current().Kind {
	case token.VAR, token.INTENT:
		return p.parseVarDecl()
	case token.ASYNC, token.FN:
		return p.parseFunctionDecl()
	case token.CLASS:
		return p.parseClassDecl()
	case token.INTERFACE:
		return p.parseInterfaceDecl()
	case token.CONTRACT:
		return p.parseContractDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.IMPORT:
		return p.parseImportDecl()
	case token.FROM:
		return p.parseFromImportDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.LOOP:
		return p.parseLoop()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		pos := p.toks.Advance().Pos
		return ast.NewBreak(pos, p.file)
	case token.CONTINUE:
		pos := p.toks.Advance().Pos
		return ast.NewContinue(pos, p.file)
	case token.TRY:
		return p.parseTry()
	case token.THROW:
		return p.parseThrow()
	case token.WITH:
		return p.parseWith()
	case token.DELETE:
		return p.parseDelete()
	case token.LBRACE:
		return p.parseBlock()
	case token.SEMICOLON:
		p.toks.Advance()
		return nil
	case token.EOF, token.RBRACE:
		return nil
	default:
		return p.parseExprStatement()
	}
}

// skipOptionalSemicolons consumes any number of stray `;` — semicolons are
// optional statement separators, never required.
func (p *Parser) skipOptionalSemicolons() {
	for p.toks.At(token.SEMICOLON) {
		p.toks.Advance()
	}
}

func (p *Parser) parseExprStatement() ast.Stmt {
	pos := p.pos()
	expr := p.parseExpression()
	return ast.NewExprStatement(pos, p.file, expr)
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.toks.Advance().Pos
	var value ast.Expr
	if !p.statementEnds() {
		value = p.parseExpression()
	}
	return ast.NewReturn(pos, p.file, value)
}

// statementEnds reports whether the current token cannot continue an
// expression — i.e. the implicit statement terminator the grammar relies on
// instead of mandatory semicolons/newlines.
func (p *Parser) statementEnds() bool {
	switch p.toks.Current().Kind {
	case token.SEMICOLON, token.RBRACE, token.EOF, token.RPAREN, token.RBRACK, token.COMMA:
		return true
	}
	return false
}

func (p *Parser) parseDelete() ast.Stmt {
	pos := p.toks.Advance().Pos
	target := p.parseExpression()
	return ast.NewDelete(pos, p.file, target)
}

func (p *Parser) parseThrow() ast.Stmt {
	pos := p.toks.Advance().Pos
	value := p.parseExpression()
	return ast.NewThrow(pos, p.file, value)
}

func (p *Parser) unexpected(what string) {
	p.addError(newSyntaxMessage(p.pos(), fmt.Sprintf("unexpected %s: %s", what, p.toks.Current().String())))
}
