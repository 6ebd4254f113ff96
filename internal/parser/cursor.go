package parser

import "github.com/corplang/mp/pkg/token"

// TokenStream is a cursor over a pre-filtered token slice (NEWLINEs already
// removed — they carry no parsing meaning since semicolons are optional and
// statements end wherever the grammar says they end).
type TokenStream struct {
	toks []token.Token
	pos  int
}

func NewTokenStream(toks []token.Token) *TokenStream {
	filtered := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.NEWLINE || t.Kind == token.COMMENT {
			continue
		}
		filtered = append(filtered, t)
	}
	return &TokenStream{toks: filtered}
}

// Current returns the token at the cursor without advancing.
func (s *TokenStream) Current() token.Token {
	if s.pos >= len(s.toks) {
		return s.eofToken()
	}
	return s.toks[s.pos]
}

// Peek returns the token n positions ahead of the cursor (Peek(0) == Current()).
func (s *TokenStream) Peek(n int) token.Token {
	idx := s.pos + n
	if idx >= len(s.toks) || idx < 0 {
		return s.eofToken()
	}
	return s.toks[idx]
}

func (s *TokenStream) eofToken() token.Token {
	if len(s.toks) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return token.Token{Kind: token.EOF, Pos: s.toks[len(s.toks)-1].Pos}
}

// Advance consumes and returns the current token.
func (s *TokenStream) Advance() token.Token {
	t := s.Current()
	if s.pos < len(s.toks) {
		s.pos++
	}
	return t
}

// Match advances and returns true if the current token has the given kind.
func (s *TokenStream) Match(k token.Kind) bool {
	if s.Current().Kind == k {
		s.Advance()
		return true
	}
	return false
}

// At reports whether the current token has the given kind.
func (s *TokenStream) At(k token.Kind) bool { return s.Current().Kind == k }

// Mark returns the current cursor position, for save/restore backtracking.
func (s *TokenStream) Mark() int { return s.pos }

// Reset restores the cursor to a previously marked position.
func (s *TokenStream) Reset(mark int) { s.pos = mark }

// AtEnd reports whether the cursor has reached EOF.
func (s *TokenStream) AtEnd() bool { return s.Current().Kind == token.EOF }
