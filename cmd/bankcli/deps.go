package main

import (
	"context"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/account"
	"bankclient/internal/domain/card"
	"bankclient/internal/domain/session"
	"bankclient/internal/domain/transaction"
	"bankclient/internal/infrastructure/events"
	"bankclient/internal/infrastructure/ledger"
	"bankclient/internal/infrastructure/sessionstore"
	"bankclient/internal/shared/config"
)

// Dependencies holds the client stack shared by every command.
type Dependencies struct {
	Store    sessionstore.Store
	Session  *session.Service
	Accounts *account.Service
	Cards    *card.Service
	Feed     *transaction.Feed

	conn   *nats.Conn
	detach func()
}

// NewDependencies opens the session store, builds the ledger client and the
// services on top of it, and attaches the event bridge when enabled.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := sessionstore.Open(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	client := ledger.NewClient(cfg.Ledger.BaseURL, sessionstore.TokenSource{Store: store}, ledger.WithTimeout(cfg.Ledger.Timeout))

	d := &Dependencies{
		Store:    store,
		Session:  session.NewService(client, store),
		Accounts: account.NewService(client),
		Cards:    card.NewService(client),
		Feed:     transaction.NewFeed(client),
	}

	if cfg.Events.Enabled {
		conn, err := events.Connect(cfg.Events)
		if err != nil {
			store.Close()
			return nil, err
		}
		d.conn = conn
		d.detach = events.NewBridge(conn, cfg.Events.Subject).Attach(d.Session)
		log.Debugf("Publishing session events to %s", cfg.Events.URL)
	}

	return d, nil
}

// Close flushes pending events and releases the store.
func (d *Dependencies) Close() {
	if d.detach != nil {
		d.detach()
	}
	if d.conn != nil {
		if err := d.conn.Flush(); err != nil {
			log.Warnf("Failed to flush session events: %v", err)
		}
		d.conn.Close()
	}
	if err := d.Store.Close(); err != nil {
		log.Warnf("Failed to close session store: %v", err)
	}
}
