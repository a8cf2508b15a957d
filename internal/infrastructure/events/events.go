// Package events forwards session transitions to NATS so other processes
// can react to sign-in and sign-out.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/session"
	"bankclient/internal/shared/config"
)

// Publisher is the subset of *nats.Conn the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// SessionSource is implemented by *session.Service.
type SessionSource interface {
	Subscribe(fn session.Listener) (unsubscribe func())
}

// Event is the JSON payload published for each transition.
type Event struct {
	Type     string    `json:"type"`
	UID      string    `json:"uid,omitempty"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

// Connect dials the NATS server named in cfg.
func Connect(cfg config.EventsConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("bankclient session events"),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	return conn, nil
}

type Bridge struct {
	pub    Publisher
	prefix string
	now    func() time.Time
}

func NewBridge(pub Publisher, prefix string) *Bridge {
	if prefix == "" {
		prefix = "session"
	}
	return &Bridge{pub: pub, prefix: prefix, now: time.Now}
}

// Attach subscribes the bridge to src and returns the unsubscribe func.
func (b *Bridge) Attach(src SessionSource) (detach func()) {
	return src.Subscribe(b.Handle)
}

// Handle publishes one change. The initial snapshot delivered on subscribe
// is not a transition and is skipped. Publish failures are logged only.
func (b *Bridge) Handle(change session.Change) {
	if change.Reason == session.ReasonCurrent {
		return
	}

	ev := Event{Type: string(change.Reason), At: b.now().UTC()}
	if change.User != nil {
		ev.UID = change.User.UID
		ev.Username = change.User.Username
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Failed to encode session event: %v", err)
		return
	}

	subject := b.Subject(change.Reason)
	if err := b.pub.Publish(subject, data); err != nil {
		log.WithField("subject", subject).Warnf("Failed to publish session event: %v", err)
		return
	}
	log.WithField("subject", subject).Debug("Published session event")
}

func (b *Bridge) Subject(reason session.Reason) string {
	return b.prefix + "." + string(reason)
}
