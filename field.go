package main

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies the behavior of a form field.  Values mirror the HTML input
// type attribute:
// https://developer.mozilla.org/en-US/docs/Web/HTML/Element/input
type Kind string

const (
	TextField     Kind = "text"
	EmailField    Kind = "email"
	CheckboxField Kind = "checkbox"
	RadioField    Kind = "radio"
	HiddenField   Kind = "hidden"
	TextAreaField Kind = "textarea"
	GenericField  Kind = "generic"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

var (
	trueTokens  = []string{"true", "y", "yes", "yup"}
	falseTokens = []string{"false", "n", "no", "nope"}
)

// Choice is one selectable option of a radio group.  Label is what the user
// sees and answers with; Value is what the form submits.
type Choice struct {
	Label string
	Value string
}

// Field is a single logical form input: its kind, identity, display label,
// requiredness and current value.
type Field struct {
	Kind     Kind
	Name     string
	Display  string
	Required bool

	// OnValue is what a checkbox submits when checked ("on" unless the
	// element overrides it).
	OnValue string
	// Choices holds the options of a radio group in document order.
	Choices []Choice

	value  string
	filled bool
}

// Value returns the current value and whether one has been set.
func (f *Field) Value() (string, bool) {
	return f.value, f.filled
}

// Hidden reports whether the field never surfaces as a question.
func (f *Field) Hidden() bool {
	return f.Kind == HiddenField
}

func (f *Field) set(value string) {
	f.value = value
	f.filled = true
}

func (f *Field) clear() {
	f.value = ""
	f.filled = false
}

// Fill validates raw against the field kind and stores the result.  A
// rejected value leaves the previous one untouched.
func (f *Field) Fill(raw string) error {
	switch f.Kind {
	case EmailField:
		if !emailRegex.MatchString(raw) {
			return &ValidationError{Kind: f.Kind, Reason: "invalid email address"}
		}
		f.set(raw)
	case CheckboxField:
		switch {
		case matchToken(trueTokens, raw):
			f.set(f.OnValue)
		case matchToken(falseTokens, raw):
			f.clear()
		default:
			return &ValidationError{Kind: f.Kind, Reason: fmt.Sprintf("%q is not a yes/no answer", raw)}
		}
	case RadioField:
		choice, ok := f.matchChoice(raw)
		if !ok {
			return &ValidationError{Kind: f.Kind, Reason: fmt.Sprintf("%q is not one of the offered choices", raw)}
		}
		f.set(choice.Value)
	default:
		f.set(raw)
	}
	return nil
}

// SetChecked flips a checkbox directly: checked submits OnValue, unchecked
// submits nothing.
func (f *Field) SetChecked(checked bool) {
	if checked {
		f.set(f.OnValue)
	} else {
		f.clear()
	}
}

func matchToken(tokens []string, raw string) bool {
	for _, token := range tokens {
		if strings.EqualFold(token, raw) {
			return true
		}
	}
	return false
}

// matchChoice resolves an answer against the radio options, labels first.
func (f *Field) matchChoice(raw string) (Choice, bool) {
	for _, choice := range f.Choices {
		if strings.EqualFold(choice.Label, raw) {
			return choice, true
		}
	}
	for _, choice := range f.Choices {
		if strings.EqualFold(choice.Value, raw) {
			return choice, true
		}
	}
	return Choice{}, false
}

// Merge folds another radio element with the same name into this group:
// choices are concatenated, requiredness is ORed, display labels are joined,
// and the most recently provided value wins.
func (f *Field) Merge(other *Field) error {
	if f.Kind != RadioField || other.Kind != RadioField {
		return &MergeError{Reason: fmt.Sprintf("%s and %s are not both radio fields", f.Kind, other.Kind)}
	}
	if f.Name != other.Name {
		return &MergeError{Reason: fmt.Sprintf("field names %q and %q differ", f.Name, other.Name)}
	}

	f.Choices = append(f.Choices, other.Choices...)
	f.Required = f.Required || other.Required

	if other.Display != "" {
		if f.Display == "" {
			f.Display = other.Display
		} else {
			f.Display = f.Display + " / " + other.Display
		}
	}

	if other.filled {
		f.set(other.value)
	}
	return nil
}

// String renders a one-line field summary: required fields carry a leading
// asterisk, hidden fields are parenthesized.
func (f *Field) String() string {
	result := fmt.Sprintf("%s : %s", f.Name, f.Kind)
	if f.Display != "" {
		result = fmt.Sprintf("%s [%s] : %s", f.Display, f.Name, f.Kind)
	}

	if f.filled {
		result += fmt.Sprintf(" = %s", f.value)
	}
	if f.Required {
		result = "* " + result
	}
	if f.Hidden() {
		result = "(" + result + ")"
	}

	return result
}
