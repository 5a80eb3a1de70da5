package decode

import "fmt"

// EmptyInputError is returned when the raw response is blank.
type EmptyInputError struct {
	Stage string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: raw response must be a non-blank string", e.Stage)
}

// DecodeError is returned when no strategy could locate a container in the
// raw response.
type DecodeError struct {
	// Snippet is the head of the offending response.
	Snippet string
	// Block is the key of the script block that failed to parse, it is empty
	// when no block was at fault.
	Block   string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Block != "" {
		return fmt.Sprintf("decode: script block %s in response %q: %v", e.Block, e.Snippet, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("decode: no payload found in response %q: %v", e.Snippet, e.Cause)
	}
	return fmt.Sprintf("decode: no payload found in response %q", e.Snippet)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

const snippetLength = 120

func snippet(raw string) string {
	runes := []rune(raw)
	if len(runes) <= snippetLength {
		return raw
	}
	return string(runes[:snippetLength]) + "..."
}
