// Package lexer turns Corplang (.mp) source text into a token stream.
//
// # Unicode and column positions
//
// Source is scanned as UTF-8; column positions are rune counts from the
// start of the line, not byte offsets or terminal display widths. This
// mirrors the convention used throughout the rest of the toolchain: simple,
// well-defined, and stable across platforms, at the cost of not lining up
// visually with wide runes (emoji, CJK) in a terminal.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"

	"github.com/corplang/mp/pkg/token"
)

// Error describes a single lexical error: an offending character or
// construct and the position at which it was found.
type Error struct {
	Message string
	Pos     token.Position
}

func (e Error) Error() string { return e.Message }

// Lexer is a hand-written scanner over Corplang source.
type Lexer struct {
	file   string
	input  string
	errors []Error

	position     int // byte offset of ch
	readPosition int // byte offset of the next rune
	line         int
	column       int
	ch           rune

	// lastSignificant tracks the previous non-trivial token kind, used by
	// the JSON-blob heuristic to decide whether '{' or '[' opens a JSON
	// literal or an ordinary block/index.
	lastSignificant token.Kind
	haveSignificant bool
}

// New creates a Lexer for the given source. file is used only for error
// reporting (it never affects tokenization).
func New(input, file string) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:] // strip UTF-8 BOM
	}
	// NFC-normalize so an identifier typed with a precomposed accented
	// letter and one typed with the decomposed base+combining-mark pair
	// compare equal; this happens before any rune is counted, so it does
	// not disturb the column convention documented above.
	input = norm.NFC.String(input)
	l := &Lexer{file: file, input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Errors returns the lexical errors accumulated so far.
func (l *Lexer) Errors() []Error { return l.errors }

func (l *Lexer) addError(msg string, pos token.Position) {
	l.errors = append(l.errors, Error{Message: msg, Pos: pos})
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if r == utf8.RuneError && size == 1 {
		l.addError("invalid UTF-8 encoding", l.currentPos())
	}
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if r == '\n' {
		// column reset happens in NextToken after the NEWLINE token is built
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(byteOffset int) rune {
	if byteOffset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[byteOffset:])
	return r
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}

// skipWhitespace skips space, tab and CR (but not newline, which is a token).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken scans and returns the next token, advancing the lexer.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	if l.ch == '#' || (l.ch == '/' && l.peekChar() == '/') {
		l.skipLineComment()
		return l.NextToken()
	}
	if l.ch == '/' && l.peekChar() == '*' {
		l.skipBlockComment()
		return l.NextToken()
	}

	pos := l.currentPos()

	if l.ch == 0 {
		return l.emit(token.EOF, "", pos)
	}

	if l.ch == '\n' {
		l.readChar()
		l.line++
		l.column = 0
		return token.Token{Kind: token.NEWLINE, Text: "\n", Pos: pos}
	}

	switch {
	case l.ch == 'f' && (l.peekChar() == '\'' || l.peekChar() == '"'):
		quote := l.peekChar()
		l.readChar() // consume 'f'
		return l.readString(pos, quote, true)
	case isLetter(l.ch):
		return l.readIdentifierOrKeyword(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == '\'' || l.ch == '"':
		return l.readString(pos, l.ch, false)
	}

	switch l.ch {
	case '{', '[':
		if tok, ok := l.tryScanJSON(pos); ok {
			return tok
		}
	}

	return l.readOperatorOrDelimiter(pos)
}

func (l *Lexer) emit(kind token.Kind, text string, pos token.Position) token.Token {
	tok := token.Token{Kind: kind, Text: text, Pos: pos}
	l.lastSignificant = kind
	l.haveSignificant = true
	return tok
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	start := l.currentPos()
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.ch == 0 {
			l.addError("unterminated block comment", start)
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		if l.ch == '\'' || l.ch == '"' {
			// skip over a string literal so a quote/comment char inside it
			// doesn't confuse the scan.
			l.skipStringLiteralRaw(l.ch)
			continue
		}
		l.readChar()
	}
}

// skipStringLiteralRaw advances past a string literal without producing a
// token; used only while skipping block comments that happen to embed one.
func (l *Lexer) skipStringLiteralRaw(quote rune) {
	l.readChar() // opening quote
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	l.readChar() // closing quote
}

func (l *Lexer) readIdentifierOrKeyword(pos token.Position) token.Token {
	var sb strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	if kind, ok := token.Lookup(text); ok {
		return l.emit(kind, text, pos)
	}
	return l.emit(token.IDENT, text, pos)
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	var sb strings.Builder
	dotSeen := false
	for isDigit(l.ch) || (l.ch == '.' && !dotSeen && isDigit(l.peekChar())) {
		if l.ch == '.' {
			dotSeen = true
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	// scientific notation suffix
	if l.ch == 'e' || l.ch == 'E' {
		save := sb.String()
		var exp strings.Builder
		exp.WriteRune(l.ch)
		peekPos := l.readPosition
		peek := l.peekChar()
		if peek == '+' || peek == '-' {
			exp.WriteRune(peek)
			peekPos += utf8.RuneLen(peek)
		}
		if isDigit(l.peekCharAt(peekPos)) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				exp.WriteRune(l.ch)
				l.readChar()
			}
			sb.WriteString(exp.String())
		} else {
			sb.Reset()
			sb.WriteString(save)
		}
	}
	return l.emit(token.NUMBER, sb.String(), pos)
}

var escapeChars = map[rune]rune{
	'n': '\n', 't': '\t', 'r': '\r', '\\': '\\', '\'': '\'', '"': '"',
}

func (l *Lexer) readString(pos token.Position, quote rune, isFString bool) token.Token {
	l.readChar() // opening quote

	// triple-quoted docstring: """ ... """ or ''' ... '''
	if l.ch == quote && l.peekChar() == quote && !isFString {
		l.readChar()
		l.readChar()
		return l.readTripleQuoted(pos, quote)
	}

	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.addError("unterminated string literal", pos)
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if r, ok := escapeChars[l.ch]; ok {
				sb.WriteRune(r)
			} else {
				sb.WriteRune('\\')
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote

	if isFString {
		return l.emit(token.FSTRING, sb.String(), pos)
	}
	return l.emit(token.STRING, sb.String(), pos)
}

func (l *Lexer) readTripleQuoted(pos token.Position, quote rune) token.Token {
	var sb strings.Builder
	for {
		if l.ch == 0 {
			l.addError("unterminated docstring", pos)
			break
		}
		if l.ch == quote && l.peekChar() == quote && l.peekCharAt(l.readPosition+1) == quote {
			l.readChar()
			l.readChar()
			l.readChar()
			break
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return l.emit(token.DOCSTRING, sb.String(), pos)
}

// valuePrecedesAllowsJSON approximates "a value is expected here": either
// we're at the start of input, or the previous significant token was one
// of := ( [ ,  (the spec's documented heuristic) or the keyword return or
// await.
func (l *Lexer) valuePrecedesAllowsJSON() bool {
	if !l.haveSignificant {
		return true
	}
	switch l.lastSignificant {
	case token.ASSIGN, token.LPAREN, token.LBRACK, token.COMMA, token.COLON,
		token.RETURN, token.AWAIT:
		return true
	}
	return false
}

// tryScanJSON attempts the JSON-blob heuristic: a balanced-bracket scan from
// the current '{' or '[' that, if it parses as JSON, is emitted whole as a
// single OBJECT/ARRAY token. Otherwise the lexer is left untouched and the
// caller falls through to ordinary punctuation scanning.
func (l *Lexer) tryScanJSON(pos token.Position) (token.Token, bool) {
	if !l.valuePrecedesAllowsJSON() {
		return token.Token{}, false
	}

	openKind := l.ch
	closeKind := '}'
	if openKind == '[' {
		closeKind = ']'
	}

	start := l.position
	depth := 0
	i := l.position
	inString := false
	var stringQuote rune

	for i < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[i:])
		if inString {
			if r == '\\' {
				i += size
				if i < len(l.input) {
					_, s2 := utf8.DecodeRuneInString(l.input[i:])
					i += s2
				}
				continue
			}
			if r == stringQuote {
				inString = false
			}
			i += size
			continue
		}
		switch r {
		case '"', '\'':
			inString = true
			stringQuote = r
		case openKind:
			depth++
		case closeKind:
			depth--
			if depth == 0 {
				i += size
				goto scanned
			}
		}
		i += size
	}
	return token.Token{}, false

scanned:
	candidate := l.input[start:i]
	if !gjson.Valid(candidate) {
		return token.Token{}, false
	}

	kind := token.OBJECT
	if openKind == '[' {
		kind = token.ARRAY
	}

	// Advance the real lexer state over the consumed bytes, tracking lines.
	for l.position < i {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
	return l.emit(kind, candidate, pos), true
}

func (l *Lexer) readOperatorOrDelimiter(pos token.Position) token.Token {
	ch := l.ch
	two := func(next rune, kind token.Kind, text string) (token.Token, bool) {
		if l.peekChar() == next {
			l.readChar()
			l.readChar()
			return l.emit(kind, text, pos), true
		}
		return token.Token{}, false
	}

	switch ch {
	case '=':
		if tok, ok := two('=', token.EQ, "=="); ok {
			return tok
		}
	case '!':
		if tok, ok := two('=', token.NOT_EQ, "!="); ok {
			return tok
		}
	case '<':
		if tok, ok := two('=', token.LESS_EQ, "<="); ok {
			return tok
		}
	case '>':
		if tok, ok := two('=', token.GREATER_EQ, ">="); ok {
			return tok
		}
	}

	single := map[rune]token.Kind{
		'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH,
		'%': token.PERCENT, '=': token.ASSIGN, '!': token.EXCLAIM, '<': token.LESS,
		'>': token.GREATER, '(': token.LPAREN, ')': token.RPAREN,
		'{': token.LBRACE, '}': token.RBRACE, '[': token.LBRACK, ']': token.RBRACK,
		';': token.SEMICOLON, ':': token.COLON, '?': token.QUESTION,
		',': token.COMMA, '.': token.DOT, '|': token.PIPE, '&': token.AMP,
	}

	kind, ok := single[ch]
	if !ok {
		l.addError("unexpected character '"+string(ch)+"'", pos)
		l.readChar()
		return l.emit(token.ILLEGAL, string(ch), pos)
	}
	l.readChar()
	return l.emit(kind, string(ch), pos)
}

// Tokenize scans the entire input and returns every token up to and
// including EOF. Useful for tests and the `corplang lex` CLI command.
func Tokenize(input, file string) ([]token.Token, []Error) {
	l := New(input, file)
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.Errors()
}
