package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(5*time.Second, 100, "formbot-test")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

// recorder captures form submissions arriving at a test server.
type recorder struct {
	mu       sync.Mutex
	requests int
	method   string
	values   url.Values
	status   int
}

func (rec *recorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		rec.mu.Lock()
		rec.requests++
		rec.method = r.Method
		rec.values = r.Form
		status := rec.status
		rec.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
		}
	}
}

func TestAddFieldRejectsDuplicate(t *testing.T) {
	form := NewForm("post", "http://example.com/submit")

	if err := form.AddField(&Field{Kind: TextField, Name: "city"}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := form.AddField(&Field{Kind: EmailField, Name: "city"}, "")
	var dup *DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate field error, got %v", err)
	}

	if len(form.Fields()) != 1 {
		t.Errorf("expected 1 field, got %d", len(form.Fields()))
	}
	if field, _ := form.GetField("city", ""); field.Kind != TextField {
		t.Error("first field must win, not be overwritten")
	}
}

func TestGetField(t *testing.T) {
	form := NewForm("GET", "http://example.com")
	field := &Field{Kind: TextField, Name: "city"}
	if err := form.AddField(field, "city-input"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, err := form.GetField("city", ""); err != nil || got != field {
		t.Errorf("lookup by name failed: %v", err)
	}
	if got, err := form.GetField("", "city-input"); err != nil || got != field {
		t.Errorf("lookup by id failed: %v", err)
	}
	if _, err := form.GetField("city", "city-input"); !errors.Is(err, ErrAmbiguousLookup) {
		t.Errorf("expected ambiguous lookup error, got %v", err)
	}
	if _, err := form.GetField("country", ""); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if _, err := form.GetField("", ""); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected not-found error for empty selectors, got %v", err)
	}
}

func TestFillFieldUnknown(t *testing.T) {
	form := NewForm("GET", "http://example.com")

	err := form.FillField("ghost", "value")
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if unknown.Name != "ghost" {
		t.Errorf("expected field name in error, got %q", unknown.Name)
	}
}

func TestMethodNormalization(t *testing.T) {
	if form := NewForm("post", "http://example.com"); form.Method != "POST" {
		t.Errorf("expected POST, got %s", form.Method)
	}
	if form := NewForm("", "http://example.com"); form.Method != "GET" {
		t.Errorf("expected GET default, got %s", form.Method)
	}
}

func TestValues(t *testing.T) {
	form := NewForm("POST", "http://example.com/submit")

	name := &Field{Kind: TextField, Name: "name"}
	optional := &Field{Kind: TextField, Name: "nickname"}
	token := &Field{Kind: HiddenField, Name: "token"}
	token.set("abc123")
	blank := &Field{Kind: HiddenField, Name: "blank"}

	for _, field := range []*Field{name, optional, token, blank} {
		if err := form.AddField(field, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := form.FillField("name", "Alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values, err := form.Values()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := values.Get("name"); got != "Alice" {
		t.Errorf("name = %q", got)
	}
	if got := values.Get("token"); got != "abc123" {
		t.Errorf("token = %q", got)
	}
	if _, ok := values["blank"]; !ok {
		t.Error("hidden fields must always contribute, even unset")
	}
	if _, ok := values["nickname"]; ok {
		t.Error("unfilled optional fields must not contribute")
	}
}

func TestSubmitMissingRequiredSendsNothing(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(rec.handler())
	defer ts.Close()

	form := NewForm("POST", ts.URL)
	if err := form.AddField(&Field{Kind: TextField, Name: "name", Required: true}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := form.Submit(context.Background(), newTestClient(t))
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing field error, got %v", err)
	}
	if missing.Name != "name" {
		t.Errorf("expected field name in error, got %q", missing.Name)
	}
	if rec.requests != 0 {
		t.Errorf("expected no HTTP request, server saw %d", rec.requests)
	}
}

func TestSubmitPost(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(rec.handler())
	defer ts.Close()

	form := NewForm("POST", ts.URL)
	if err := form.AddField(&Field{Kind: TextField, Name: "name", Required: true}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := &Field{Kind: HiddenField, Name: "token"}
	token.set("xyz")
	if err := form.AddField(token, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := form.FillField("name", "Alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := form.Submit(context.Background(), newTestClient(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.requests != 1 {
		t.Fatalf("expected 1 request, got %d", rec.requests)
	}
	if rec.method != http.MethodPost {
		t.Errorf("expected POST, got %s", rec.method)
	}
	if rec.values.Get("name") != "Alice" || rec.values.Get("token") != "xyz" {
		t.Errorf("unexpected submitted values: %v", rec.values)
	}
}

func TestSubmitGetEncodesQuery(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(rec.handler())
	defer ts.Close()

	form := NewForm("GET", ts.URL+"/search")
	if err := form.AddField(&Field{Kind: TextField, Name: "q"}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := form.FillField("q", "gophers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := form.Submit(context.Background(), newTestClient(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodGet {
		t.Errorf("expected GET, got %s", rec.method)
	}
	if rec.values.Get("q") != "gophers" {
		t.Errorf("expected query value, got %v", rec.values)
	}
}

func TestSubmitStatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		check   func(error) bool
	}{
		{
			name:   "Accepted",
			status: http.StatusNoContent,
			check:  func(err error) bool { return err == nil },
		},
		{
			name:   "Client error",
			status: http.StatusNotFound,
			check: func(err error) bool {
				var rejected *ClientSubmitError
				return errors.As(err, &rejected) && rejected.Status == http.StatusNotFound
			},
		},
		{
			name:   "Server error",
			status: http.StatusServiceUnavailable,
			check: func(err error) bool {
				var failed *ServerSubmitError
				return errors.As(err, &failed) && failed.Status == http.StatusServiceUnavailable
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{status: tt.status}
			ts := httptest.NewServer(rec.handler())
			defer ts.Close()

			form := NewForm("POST", ts.URL)
			if err := form.AddField(&Field{Kind: TextField, Name: "name"}, ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := form.FillField("name", "Alice"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := form.Submit(context.Background(), newTestClient(t)); !tt.check(err) {
				t.Errorf("unexpected classification: %v", err)
			}
		})
	}
}
