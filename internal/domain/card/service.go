package card

import (
	"context"
	"fmt"
	"net/url"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/infrastructure/ledger"
	"bankclient/internal/shared/money"
)

const (
	cardPath   = "/card"
	createPath = "/card/create"
)

// Service manages the user's virtual card. Callers re-fetch after every
// mutation; nothing is applied locally.
type Service struct {
	client ledger.ClientInterface
}

func NewService(client ledger.ClientInterface) *Service {
	return &Service{client: client}
}

// Fetch reports whether a card exists. A 404 means no card has been issued;
// every other failure is returned so callers can tell "absent" apart from
// "unavailable".
func (s *Service) Fetch(ctx context.Context) (State, error) {
	var c Card
	if _, err := s.client.Get(ctx, cardPath, nil, &c); err != nil {
		if ledger.IsNotFound(err) {
			return State{Status: StatusAbsent}, nil
		}
		return State{}, fmt.Errorf("failed to fetch card: %w", err)
	}
	return State{Status: StatusIssued, Card: &c}, nil
}

// Issue asks the ledger for a new card with a zero opening balance.
func (s *Service) Issue(ctx context.Context) error {
	query := url.Values{"amount": {"0"}}
	if _, err := s.client.Post(ctx, createPath, query, nil, nil); err != nil {
		return fmt.Errorf("failed to issue card: %w", err)
	}
	log.Info("Card issued")
	return nil
}

func (s *Service) Credit(ctx context.Context, amount string) error {
	return s.Adjust(ctx, Credit, amount)
}

func (s *Service) Debit(ctx context.Context, amount string) error {
	return s.Adjust(ctx, Debit, amount)
}

// Adjust moves funds onto (credit) or off (debit) the card. The amount is
// checked before any request is made.
func (s *Service) Adjust(ctx context.Context, direction Direction, amount string) error {
	if direction != Credit && direction != Debit {
		return fmt.Errorf("unknown card direction %q", direction)
	}

	value, err := money.ParsePositiveAmount("amount", amount)
	if err != nil {
		return err
	}

	query := url.Values{"amount": {value.String()}}
	if _, err := s.client.Post(ctx, cardPath+"/"+string(direction), query, nil, nil); err != nil {
		return fmt.Errorf("failed to %s card: %w", direction, err)
	}
	log.Infof("Card %sed %s", direction, value)
	return nil
}
