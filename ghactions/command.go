package ghactions

import (
	"fmt"
	"io"
	"strings"
)

// EscapeData percent-encodes the characters reserved in a workflow command's
// data segment. The percent substitution must run first: a raw CR or LF in
// the input must never collide with the encoded forms produced for another
// character.
func EscapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// EscapeProperty percent-encodes the characters reserved in a workflow
// command property, which additionally include the property and command
// delimiters.
func EscapeProperty(s string) string {
	s = EscapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}

// Error writes a single error annotation line for the workflow log UI.
// Escaping guarantees the annotation stays on one line no matter what the
// message contains.
func Error(w io.Writer, title, message string) {
	fmt.Fprintf(w, "::error title=%s::%s\n", EscapeProperty(title), EscapeData(message))
}
