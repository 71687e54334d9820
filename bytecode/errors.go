package bytecode

import "fmt"

// DecodeError reports a stream that cannot be decoded at all.
type DecodeError struct {
	// Offset is the word index the problem was found at.
	Offset  int
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("bytecode: word %d: %s", e.Offset, e.Message)
}
