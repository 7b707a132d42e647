package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// Code identifies an error condition as "package.name", for example
// "protocol.short_read". The zero Code matches nothing.
type Code struct {
	value string
}

// CommonInternal is used by AsError for errors that carry no code of their own
var CommonInternal = MustNewCode("common.internal")

var codePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// NewCode validates s and returns it as a Code
func NewCode(s string) (Code, error) {
	if !codePattern.MatchString(s) {
		return Code{}, fmt.Errorf("code %q is not of the form package.name", s)
	}
	// a code names the condition; "err" adds nothing
	if strings.Contains(s, "err") {
		return Code{}, fmt.Errorf("code %q must not contain \"err\"", s)
	}
	return Code{value: s}, nil
}

// MustNewCode is NewCode for package-level declarations. It panics on an
// invalid code.
func MustNewCode(s string) Code {
	code, err := NewCode(s)
	if err != nil {
		panic(err)
	}
	return code
}

func (c Code) String() string {
	return c.value
}

func (c Code) Equals(other Code) bool {
	return c.value == other.value
}
