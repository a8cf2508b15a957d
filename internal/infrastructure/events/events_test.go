package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bankclient/internal/domain/session"
	"bankclient/internal/domain/user"
)

type published struct {
	subject string
	data    []byte
}

// MockPublisher records publishes and can fail them.
type MockPublisher struct {
	PublishErr error
	sent       []published
}

func (m *MockPublisher) Publish(subject string, data []byte) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.sent = append(m.sent, published{subject: subject, data: data})
	return nil
}

// MockSource delivers a scripted sequence on Subscribe.
type MockSource struct {
	Changes      []session.Change
	unsubscribed bool
}

func (m *MockSource) Subscribe(fn session.Listener) func() {
	for _, c := range m.Changes {
		fn(c)
	}
	return func() { m.unsubscribed = true }
}

func TestBridge_PublishesTransitions(t *testing.T) {
	alice := &user.Profile{UID: "u-1", Username: "alice"}
	pub := &MockPublisher{}
	bridge := NewBridge(pub, "bank.session")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bridge.now = func() time.Time { return fixed }

	src := &MockSource{Changes: []session.Change{
		{Reason: session.ReasonCurrent, User: nil},
		{Reason: session.ReasonLogin, User: alice},
		{Reason: session.ReasonLogout, User: nil},
	}}
	detach := bridge.Attach(src)
	detach()

	if !src.unsubscribed {
		t.Error("detach did not unsubscribe")
	}
	if len(pub.sent) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.sent))
	}
	if pub.sent[0].subject != "bank.session.login" || pub.sent[1].subject != "bank.session.logout" {
		t.Errorf("subjects = %q, %q", pub.sent[0].subject, pub.sent[1].subject)
	}

	var ev Event
	if err := json.Unmarshal(pub.sent[0].data, &ev); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if ev.Type != "login" || ev.UID != "u-1" || ev.Username != "alice" || !ev.At.Equal(fixed) {
		t.Errorf("login event = %+v", ev)
	}

	if err := json.Unmarshal(pub.sent[1].data, &ev); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if ev.Type != "logout" {
		t.Errorf("logout event type = %q", ev.Type)
	}
}

func TestBridge_PublishFailureIsSwallowed(t *testing.T) {
	pub := &MockPublisher{PublishErr: errors.New("nats: connection closed")}
	bridge := NewBridge(pub, "")

	bridge.Handle(session.Change{Reason: session.ReasonRestore, User: &user.Profile{Username: "bob"}})

	if len(pub.sent) != 0 {
		t.Errorf("sent = %v", pub.sent)
	}
	if got := bridge.Subject(session.ReasonRestore); got != "session.restore" {
		t.Errorf("Subject() = %q, want default prefix", got)
	}
}
