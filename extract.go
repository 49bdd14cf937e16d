package main

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns a remote page into a Form ready for conversational filling.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// Extract fetches pageURL and models the first form it finds.  Extraction is
// all or nothing: an unsupported input aborts the pass and no partial form is
// returned.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Form, error) {
	body, err := e.client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	return e.parseForm(doc, pageURL)
}

func (e *Extractor) parseForm(doc *goquery.Document, pageURL string) (*Form, error) {
	sel := doc.Find("form").First()
	if sel.Length() == 0 {
		return nil, ErrNoFormFound
	}

	method, _ := sel.Attr("method")
	action, _ := sel.Attr("action")
	form := NewForm(method, resolveAction(pageURL, action))

	radioSeen := make(map[string]bool)
	var walkErr error
	sel.Find("input, textarea").EachWithBreak(func(_ int, elem *goquery.Selection) bool {
		field, id, err := e.buildField(doc, elem, radioSeen)
		if err != nil {
			walkErr = err
			return false
		}
		if field == nil {
			// non-data element, unnamed, or a radio group already collected
			return true
		}

		// first occurrence wins for duplicate names
		_ = form.AddField(field, id)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return form, nil
}

// buildField models one candidate element.  A nil field with a nil error
// means the element produces nothing and the walk moves on.
func (e *Extractor) buildField(doc *goquery.Document, elem *goquery.Selection, radioSeen map[string]bool) (*Field, string, error) {
	name := strings.TrimSpace(elem.AttrOr("name", ""))
	id := elem.AttrOr("id", "")

	var kind Kind
	if goquery.NodeName(elem) == "textarea" {
		kind = TextAreaField
	} else {
		inputType := strings.ToLower(elem.AttrOr("type", "text"))
		switch inputType {
		case "text", "":
			kind = TextField
		case "email":
			kind = EmailField
		case "checkbox":
			kind = CheckboxField
		case "radio":
			kind = RadioField
		case "hidden":
			kind = HiddenField
		case "submit", "image", "button":
			return nil, "", nil
		case "color", "file":
			return nil, "", &UnsupportedTypeError{Type: inputType, Name: name}
		default:
			kind = GenericField
		}
	}

	if name == "" {
		// nothing to key the value on, the element cannot be submitted
		return nil, "", nil
	}

	if kind == RadioField {
		if radioSeen[name] {
			return nil, "", nil
		}
		radioSeen[name] = true
		field, err := e.radioGroup(doc, name)
		return field, id, err
	}

	field := &Field{
		Kind:     kind,
		Name:     name,
		Display:  e.labelFor(doc, elem),
		Required: hasAttr(elem, "required"),
	}

	switch kind {
	case HiddenField:
		field.set(elem.AttrOr("value", ""))
	case EmailField:
		if text := strings.TrimSpace(elem.Text()); text != "" {
			// an invalid default is dropped, not fatal
			_ = field.Fill(text)
		}
	case CheckboxField:
		field.OnValue = elem.AttrOr("value", "on")
		if hasAttr(elem, "checked") {
			field.SetChecked(true)
		}
	case TextAreaField:
		if text := strings.TrimSpace(elem.Text()); text != "" {
			field.set(text)
		}
	default:
		if value, ok := elem.Attr("value"); ok {
			field.set(value)
		}
	}

	return field, id, nil
}

// radioGroup collects every radio input sharing name across the whole
// document and folds them into a single field, one choice per element.
func (e *Extractor) radioGroup(doc *goquery.Document, name string) (*Field, error) {
	group := &Field{Kind: RadioField, Name: name}

	var mergeErr error
	doc.Find("input").EachWithBreak(func(_ int, elem *goquery.Selection) bool {
		// the type attribute is case-insensitive, match it the way
		// buildField classifies elements
		if strings.ToLower(elem.AttrOr("type", "")) != "radio" {
			return true
		}
		if strings.TrimSpace(elem.AttrOr("name", "")) != name {
			return true
		}

		value := elem.AttrOr("value", "")
		label := e.labelFor(doc, elem)
		if label == "" {
			// keep the option presentable without a label
			label = value
		}

		member := &Field{
			Kind:     RadioField,
			Name:     name,
			Required: hasAttr(elem, "required"),
			Choices:  []Choice{{Label: label, Value: value}},
		}
		if err := group.Merge(member); err != nil {
			mergeErr = err
			return false
		}
		return true
	})
	if mergeErr != nil {
		return nil, mergeErr
	}

	return group, nil
}

// labelFor resolves a display label: a <label for> matching the element id
// wins, then any attribute whose name mentions "label".
func (e *Extractor) labelFor(doc *goquery.Document, elem *goquery.Selection) string {
	if id, ok := elem.Attr("id"); ok && id != "" {
		var text string
		doc.Find("label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
			if label.AttrOr("for", "") == id {
				text = strings.TrimSpace(label.Text())
				return false
			}
			return true
		})
		if text != "" {
			return text
		}
	}

	for _, node := range elem.Nodes {
		for _, attr := range node.Attr {
			if strings.Contains(strings.ToLower(attr.Key), "label") {
				return attr.Val
			}
		}
	}
	return ""
}

func hasAttr(elem *goquery.Selection, name string) bool {
	_, ok := elem.Attr(name)
	return ok
}

// resolveAction turns a possibly relative form action into an absolute URL
// against the page it came from.
func resolveAction(pageURL, action string) string {
	if action == "" {
		return pageURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return action
	}
	ref, err := url.Parse(action)
	if err != nil {
		return action
	}
	return base.ResolveReference(ref).String()
}
