// Package view holds the screen-level state a front end renders: what is
// loaded, which dialog is open, and the last notice to show. Views follow
// the session and drop fetch results that arrive after sign-out, after
// Close, or after a newer fetch started.
package view

import (
	"errors"

	"bankclient/internal/infrastructure/ledger"
	"bankclient/internal/shared/validation"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notice is a one-line message for the user.
type Notice struct {
	Text string
	Kind Kind
}

func (n Notice) IsZero() bool {
	return n.Text == ""
}

func success(text string) Notice { return Notice{Text: text, Kind: KindSuccess} }
func failure(text string) Notice { return Notice{Text: text, Kind: KindError} }
func info(text string) Notice    { return Notice{Text: text, Kind: KindInfo} }

type userMessager interface {
	UserMessage() string
}

// UserMessage picks the text to show for err. Errors that carry their own
// user message win, then input validation reasons, then the ledger's
// message. Everything else shows fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	if vErr, ok := validation.As(err); ok {
		return vErr.Reason
	}
	if apiErr, ok := ledger.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
