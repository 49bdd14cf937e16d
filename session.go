package main

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prompt is one question put to the user: plain text for scalar fields, a
// title with option labels for a radio group.
type Prompt struct {
	Text    string
	Options []string
}

// Render flattens the prompt into a single deliverable message.
func (p Prompt) Render() string {
	if len(p.Options) == 0 {
		return p.Text
	}

	lines := []string{p.Text}
	for _, option := range p.Options {
		lines = append(lines, "  - "+option)
	}
	return strings.Join(lines, "\n")
}

// Outcome reports what an answer did: the next question while more remain,
// or the fact that the form went out.
type Outcome struct {
	Next      *Prompt
	Submitted bool
}

type sessionState int

const (
	collecting sessionState = iota
	complete
	failed
)

// Session walks one user through one form, one question per visible field,
// strictly in document order.  No reordering, no skipping, no backtracking.
type Session struct {
	ID   uuid.UUID
	User string

	form    *Form
	prompts []Prompt
	names   []string
	answers []string
	state   sessionState
}

func newSession(user string, form *Form) *Session {
	session := &Session{
		ID:   uuid.New(),
		User: user,
		form: form,
	}
	for _, field := range form.Fields() {
		if field.Hidden() {
			continue
		}
		session.prompts = append(session.prompts, promptFor(field))
		session.names = append(session.names, field.Name)
	}
	return session
}

func promptFor(field *Field) Prompt {
	title := field.Display
	if title == "" {
		title = field.Name
	}

	if field.Kind == RadioField {
		options := make([]string, 0, len(field.Choices))
		for _, choice := range field.Choices {
			options = append(options, choice.Label)
		}
		return Prompt{Text: title, Options: options}
	}
	return Prompt{Text: title}
}

// NextPrompt returns the first unanswered question, or nil when every
// question has an answer.
func (s *Session) NextPrompt() *Prompt {
	if len(s.answers) < len(s.prompts) {
		prompt := s.prompts[len(s.answers)]
		return &prompt
	}
	return nil
}

// apply writes text into the field behind the current question.  A rejected
// answer keeps the cursor on the same question.
func (s *Session) apply(text string) error {
	if s.state != collecting {
		return ErrSessionComplete
	}

	if err := s.form.FillField(s.names[len(s.answers)], text); err != nil {
		return err
	}
	s.answers = append(s.answers, text)

	if len(s.answers) == len(s.prompts) {
		s.state = complete
	}
	return nil
}

// Registry owns the active sessions, at most one per user.  Its lock covers
// only the session map; page fetches and form submissions run outside it.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	extractor *Extractor
	client    *Client
}

func NewRegistry(extractor *Extractor, client *Client) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		extractor: extractor,
		client:    client,
	}
}

// Start extracts the form at pageURL and opens a session for user.  A form
// with no visible fields is submitted on the spot and never registered.
func (r *Registry) Start(ctx context.Context, user, pageURL string) (*Session, error) {
	r.mu.Lock()
	_, active := r.sessions[user]
	r.mu.Unlock()
	if active {
		return nil, ErrSessionActive
	}

	form, err := r.extractor.Extract(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	session := newSession(user, form)
	if len(session.prompts) == 0 {
		session.state = complete
		if err := form.Submit(ctx, r.client); err != nil {
			session.state = failed
			return nil, err
		}
		return session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, active := r.sessions[user]; active {
		return nil, ErrSessionActive
	}
	r.sessions[user] = session
	return session, nil
}

// Answer applies text to the current question of user's session.  Validation
// failures re-offer the same question.  The last answer triggers submission,
// after which the session is discarded whether the submit succeeded or not.
func (r *Registry) Answer(ctx context.Context, user, text string) (Outcome, error) {
	r.mu.Lock()
	session, ok := r.sessions[user]
	r.mu.Unlock()
	if !ok {
		return Outcome{}, ErrSessionNotFound
	}

	if err := session.apply(text); err != nil {
		return Outcome{Next: session.NextPrompt()}, err
	}

	if next := session.NextPrompt(); next != nil {
		return Outcome{Next: next}, nil
	}

	// every question is answered; the submit runs without the registry lock
	err := session.form.Submit(ctx, r.client)
	if err != nil {
		session.state = failed
	}
	r.Cancel(user)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Submitted: true}, nil
}

// NextPrompt returns the pending question for user's session.
func (r *Registry) NextPrompt(user string) (*Prompt, error) {
	session, ok := r.Get(user)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.NextPrompt(), nil
}

// Get returns the active session for user, if any.
func (r *Registry) Get(user string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[user]
	return session, ok
}

// Cancel discards user's session.  Cancelling an absent session is a no-op.
func (r *Registry) Cancel(user string) {
	r.mu.Lock()
	delete(r.sessions, user)
	r.mu.Unlock()
}
