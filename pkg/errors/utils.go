package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// InternalError is implemented by typed errors that know how to turn
// themselves into a coded *Error.
type InternalError interface {
	error
	Transform() *Error
}

// IsCoded reports whether err is (or wraps) one of our *Error values
func IsCoded(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// HasCode walks the wrap chain looking for an *Error with the given code.
// Typed errors implementing InternalError are matched through Transform.
func HasCode(err error, code Code) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Code.Equals(code) {
				return true
			}
		case InternalError:
			if e.Transform().Code.Equals(code) {
				return true
			}
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetContext extracts context from our errors
func GetContext(err error) map[string]string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Context
	}
	return nil
}

// GetCode returns the code of the outermost *Error in the chain, or ""
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code.String()
	}
	return ""
}

// FormatError renders an error over several lines for humans
func FormatError(err error) string {
	var e *Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Code: %s", e.Code))
	parts = append(parts, fmt.Sprintf("Message: %s", e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, "Context:")
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("  %s: %v", k, e.Context[k]))
		}
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.Cause))
	}

	return strings.Join(parts, "\n")
}

// AsError converts any error to the coded format:
//   - InternalError values are transformed
//   - *Error values are returned as-is
//   - anything else is wrapped as common.internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	if ie, ok := err.(InternalError); ok {
		return ie.Transform()
	}

	if e, ok := err.(*Error); ok {
		return e
	}

	return New(CommonInternal, err.Error(), err)
}

// Is is the standard library errors.Is, re-exported so callers need only one import
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is the standard library errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
