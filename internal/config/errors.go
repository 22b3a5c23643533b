package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat indicates a config file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ParseError reports a config file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (v *ValidationErrors) add(field, msg string) {
	*v = append(*v, ValidationError{Field: field, Message: msg})
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}
