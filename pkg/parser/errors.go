package parser

import (
	"errors"
	"fmt"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// ErrSyntax is wrapped by every *ParseError.
var ErrSyntax = errors.New("chameleon/parser: syntax error")

// IsSyntaxErr returns true if err is or wraps ErrSyntax.
func IsSyntaxErr(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// ParseError is the single error reported for malformed DSL text.
//
// Either Expected and Found are set (a grammar error) or Message is (a
// lexical error such as an unterminated string).
type ParseError struct {
	Pos      schema.Position
	Expected string
	Found    string
	Message  string
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	}
	if e.Pos.File != "" {
		return fmt.Sprintf("%s: %s", e.Pos, msg)
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, msg)
}

// Is makes ParseError match ErrSyntax.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}

// Line returns the 1-based line of the error.
func (e *ParseError) Line() int { return e.Pos.Line }

// Column returns the 1-based column of the error.
func (e *ParseError) Column() int { return e.Pos.Column }
