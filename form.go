package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Form is the ordered field collection of one extracted page plus its
// submission target.  Field names are unique within a form.
type Form struct {
	Method string
	Action string

	fields []*Field
	byName map[string]*Field
	byID   map[string]*Field
}

func NewForm(method, action string) *Form {
	method = strings.ToUpper(method)
	if method == "" {
		method = "GET"
	}

	return &Form{
		Method: method,
		Action: action,
		byName: make(map[string]*Field),
		byID:   make(map[string]*Field),
	}
}

// AddField registers a field, optionally under an element id as well.  A
// second field with an already-registered name is rejected, not overwritten.
func (fm *Form) AddField(field *Field, id string) error {
	if _, exists := fm.byName[field.Name]; exists {
		return &DuplicateFieldError{Name: field.Name}
	}

	fm.fields = append(fm.fields, field)
	fm.byName[field.Name] = field
	if id != "" {
		fm.byID[id] = field
	}
	return nil
}

// GetField looks a field up by name or by element id, never both.
func (fm *Form) GetField(name, id string) (*Field, error) {
	if name != "" && id != "" {
		return nil, ErrAmbiguousLookup
	}

	if name != "" {
		if field, ok := fm.byName[name]; ok {
			return field, nil
		}
	} else if id != "" {
		if field, ok := fm.byID[id]; ok {
			return field, nil
		}
	}
	return nil, ErrFieldNotFound
}

// Fields returns the fields in document order.
func (fm *Form) Fields() []*Field {
	return fm.fields
}

// FillField applies raw to the named field.
func (fm *Form) FillField(name, raw string) error {
	field, ok := fm.byName[name]
	if !ok {
		return &UnknownFieldError{Name: name}
	}
	return field.Fill(raw)
}

// Values assembles the submission map: every filled field contributes, and
// hidden fields always contribute, defaulting to empty.  The first required
// field without a value fails the whole call.
func (fm *Form) Values() (url.Values, error) {
	values := url.Values{}
	for _, field := range fm.fields {
		value, filled := field.Value()
		if field.Required && !filled {
			return nil, &MissingFieldError{Name: field.Name}
		}

		switch {
		case filled:
			values.Set(field.Name, value)
		case field.Hidden():
			values.Set(field.Name, "")
		}
	}
	return values, nil
}

// Submit sends the assembled values to the form action.  Nothing goes out
// while a required field is still unanswered.
func (fm *Form) Submit(ctx context.Context, client *Client) error {
	values, err := fm.Values()
	if err != nil {
		return err
	}
	return client.SubmitForm(ctx, fm.Method, fm.Action, values)
}

// Description summarizes the form and its fields for verbose output.
func (fm *Form) Description() string {
	parts := []string{fmt.Sprintf("%s %s", fm.Method, fm.Action)}
	for _, field := range fm.fields {
		parts = append(parts, "  "+field.String())
	}
	return strings.Join(parts, "\n")
}
