package component

import (
	"fmt"

	"github.com/vk/promptgrid/internal/value"
)

// InputMissingError reports an input port with no value.
type InputMissingError struct {
	Input string
}

func (e *InputMissingError) Error() string {
	return fmt.Sprintf("missing input %s", e.Input)
}

// ContentMissingError reports a content field with no value.
type ContentMissingError struct {
	Content string
}

func (e *ContentMissingError) Error() string {
	return fmt.Sprintf("missing content %s", e.Content)
}

// InputTypeMismatchError reports an input value of the wrong tag.
type InputTypeMismatchError struct {
	Input    string
	Expected value.Type
	Actual   value.Tag
}

func (e *InputTypeMismatchError) Error() string {
	return fmt.Sprintf("input %s type mismatch: expected %s, got %s", e.Input, e.Expected, e.Actual)
}

// ContentTypeMismatchError reports a content value of the wrong tag.
type ContentTypeMismatchError struct {
	Content  string
	Expected value.Type
	Actual   value.Tag
}

func (e *ContentTypeMismatchError) Error() string {
	return fmt.Sprintf("content %s type mismatch: expected %s, got %s", e.Content, e.Expected, e.Actual)
}

// RequestError wraps a failed call to an external model provider.
type RequestError struct {
	Provider string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request error: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
