package card

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status distinguishes "no card issued" from a card that is present. A
// failed fetch is neither: it is returned as an error.
type Status int

const (
	StatusAbsent Status = iota
	StatusIssued
)

func (s Status) String() string {
	switch s {
	case StatusIssued:
		return "issued"
	default:
		return "absent"
	}
}

// Direction selects a balance adjustment.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// Card is the user's single virtual card.
type Card struct {
	CardID         string          `json:"cardId"`
	CardNumber     int64           `json:"cardNumber"`
	CardHolder     string          `json:"cardHolder"`
	Balance        decimal.Decimal `json:"balance"`
	Expiration     string          `json:"expiration,omitempty"`
	CVV            string          `json:"cvv,omitempty"`
	PIN            string          `json:"pin,omitempty"`
	BillingAddress string          `json:"billingAddress,omitempty"`
}

// State is the result of a fetch.
type State struct {
	Status Status
	Card   *Card
}

// FormattedNumber groups the card number in blocks of four.
func (c *Card) FormattedNumber() string {
	digits := strconv.FormatInt(c.CardNumber, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var expirationLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ExpiryLabel renders the expiration as MM/YY, or "**/**" when unknown.
func (c *Card) ExpiryLabel() string {
	if c.Expiration == "" {
		return "**/**"
	}
	for _, layout := range expirationLayouts {
		if t, err := time.Parse(layout, c.Expiration); err == nil {
			return t.Format("01/06")
		}
	}
	return "**/**"
}
