package parser

import (
	"fmt"

	"github.com/corplang/mp/pkg/token"
)

// SyntaxException is a single parse error: a malformed construct, with the
// position, what was expected, and what was actually found.
type SyntaxException struct {
	Line     int
	Column   int
	Offset   int
	Expected string
	Found    string
	Message  string
}

func (e *SyntaxException) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("SyntaxError: %s at %d:%d", e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("SyntaxError: expected %s but found %s at %d:%d", e.Expected, e.Found, e.Line, e.Column)
}

func newSyntaxError(pos token.Position, expected string, found token.Token) *SyntaxException {
	return &SyntaxException{
		Line: pos.Line, Column: pos.Column, Offset: pos.Offset,
		Expected: expected, Found: found.String(),
	}
}

func newSyntaxMessage(pos token.Position, message string) *SyntaxException {
	return &SyntaxException{Line: pos.Line, Column: pos.Column, Offset: pos.Offset, Message: message}
}
