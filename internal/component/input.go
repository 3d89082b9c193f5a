package component

import "github.com/vk/promptgrid/internal/value"

// Input returns the named input, failing if it is absent.
func (in Input) Input(name string) (value.Value, error) {
	v, ok := in.Inputs[name]
	if !ok || v.IsNull() {
		return value.Value{}, &InputMissingError{Input: name}
	}
	return v, nil
}

// InputText returns the named input as text. String and imageUrl values qualify.
func (in Input) InputText(name string) (string, error) {
	v, err := in.Input(name)
	if err != nil {
		return "", err
	}
	if v.Tag == value.Number {
		return "", &InputTypeMismatchError{Input: name, Expected: value.TypeOf(value.String), Actual: v.Tag}
	}
	return v.Str, nil
}

// Content returns the named content field, failing if it is absent.
func (in Input) Content(name string) (value.Value, error) {
	return ContentOf(in.Contents, name)
}

// ContentText returns the named content field as a string.
func (in Input) ContentText(name string) (string, error) {
	return ContentTextOf(in.Contents, name)
}

// ContentOf returns contents[name], failing if it is absent.
func ContentOf(contents value.Record, name string) (value.Value, error) {
	v, ok := contents[name]
	if !ok || v.IsNull() {
		return value.Value{}, &ContentMissingError{Content: name}
	}
	return v, nil
}

// ContentTextOf returns contents[name] as a string.
func ContentTextOf(contents value.Record, name string) (string, error) {
	v, err := ContentOf(contents, name)
	if err != nil {
		return "", err
	}
	if v.Tag != value.String {
		return "", &ContentTypeMismatchError{Content: name, Expected: value.TypeOf(value.String), Actual: v.Tag}
	}
	return v.Str, nil
}
