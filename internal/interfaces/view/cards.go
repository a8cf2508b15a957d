package view

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/card"
	"bankclient/internal/shared/validation"
)

const (
	cardIssuedMessage      = "Card issued successfully!"
	issueFailedMessage     = "Failed to issue card."
	invalidAmountMessage   = "Please enter a valid amount."
	cardUnavailableMessage = "Card details are unavailable right now. Please try again."
)

// CardOperations is implemented by *card.Service.
type CardOperations interface {
	Fetch(ctx context.Context) (card.State, error)
	Issue(ctx context.Context) error
	Adjust(ctx context.Context, direction card.Direction, amount string) error
}

// CardsState separates "no card yet" (Card.Status absent, offer to issue)
// from "could not load" (Unavailable, with an error notice).
type CardsState struct {
	Loading     bool
	Loaded      bool
	Unavailable bool
	Card        card.State
	Amount      string
	Notice      Notice
}

func (s CardsState) CanIssue() bool {
	return s.Loaded && !s.Unavailable && s.Card.Status == card.StatusAbsent
}

type CardsView struct {
	lifecycle
	ops CardOperations

	state CardsState
	// cardNotice marks the unavailable notice set by a failed fetch, which
	// the next successful fetch clears.
	cardNotice bool
}

func NewCardsView(src SessionSource, ops CardOperations) *CardsView {
	v := &CardsView{ops: ops}
	v.start(src, v.Refresh, v.reset)
	return v
}

func (v *CardsView) Refresh(ctx context.Context) error {
	gen, ok := v.begin()
	if !ok {
		return nil
	}
	v.commit(gen, func() { v.state.Loading = true })

	st, err := v.ops.Fetch(ctx)
	if err != nil {
		log.Warnf("Failed to load card: %v", err)
	}

	v.commit(gen, func() {
		v.state.Loading = false
		v.state.Loaded = true
		if err != nil {
			v.state.Unavailable = true
			v.state.Notice = failure(cardUnavailableMessage)
			v.cardNotice = true
			return
		}
		v.state.Unavailable = false
		if v.cardNotice {
			v.state.Notice = Notice{}
			v.cardNotice = false
		}
		v.state.Card = st
	})
	return err
}

func (v *CardsView) State() CardsState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *CardsView) reset() {
	v.state = CardsState{}
	v.cardNotice = false
}

func (v *CardsView) setNotice(n Notice) {
	v.update(func() {
		v.state.Notice = n
		v.cardNotice = false
	})
}

// Issue requests a card and reloads.
func (v *CardsView) Issue(ctx context.Context) error {
	if err := v.ops.Issue(ctx); err != nil {
		v.setNotice(failure(issueFailedMessage))
		return err
	}
	v.setNotice(success(cardIssuedMessage))
	_ = v.Refresh(ctx)
	return nil
}

// SetAmount records the amount field shared by top-up and withdraw.
func (v *CardsView) SetAmount(amount string) {
	v.update(func() { v.state.Amount = amount })
}

func (v *CardsView) Credit(ctx context.Context) error {
	return v.adjust(ctx, card.Credit)
}

func (v *CardsView) Debit(ctx context.Context) error {
	return v.adjust(ctx, card.Debit)
}

func (v *CardsView) adjust(ctx context.Context, direction card.Direction) error {
	v.mu.Lock()
	amount := v.state.Amount
	v.mu.Unlock()

	if err := v.ops.Adjust(ctx, direction, amount); err != nil {
		if errors.Is(err, validation.ErrInvalid) {
			v.setNotice(failure(invalidAmountMessage))
		} else {
			v.setNotice(failure(UserMessage(err, fmt.Sprintf("Failed to %s card.", direction))))
		}
		return err
	}

	v.update(func() {
		v.state.Notice = success(fmt.Sprintf("Card %sed successfully!", direction))
		v.cardNotice = false
		v.state.Amount = ""
	})
	_ = v.Refresh(ctx)
	return nil
}

