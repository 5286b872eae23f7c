package basic

import "fmt"

// SyntaxError is raised by the lexer or parser on malformed source.
type SyntaxError struct {
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("?SYNTAX ERROR IN %d: %s", e.Line, e.Reason)
}
