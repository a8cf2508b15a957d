package transaction

import (
	"github.com/shopspring/decimal"

	"bankclient/internal/shared/money"
)

// Type values the ledger is known to emit. Anything else is kept verbatim.
const (
	TypeDeposit    = "DEPOSIT"
	TypeWithdraw   = "WITHDRAW"
	TypeWithdrawal = "WITHDRAWAL"
	TypeTransfer   = "TRANSFER"
	TypeConversion = "CONVERSION"
	TypeCredit     = "CREDIT"
	TypeDebit      = "DEBIT"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type Transaction struct {
	TxID        string          `json:"txId"`
	Amount      decimal.Decimal `json:"amount"`
	TxFee       decimal.Decimal `json:"txFee"`
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

// Incoming reports whether the amount is shown as money in. Only deposits
// and credits are; every other type, known or not, renders as money out.
func (t *Transaction) Incoming() bool {
	return t.Type == TypeDeposit || t.Type == TypeCredit
}

// DisplayAmount renders the signed amount, e.g. "+$12.50".
func (t *Transaction) DisplayAmount() string {
	sign := "-"
	if t.Incoming() {
		sign = "+"
	}
	return sign + money.Display("$", t.Amount)
}

// Page is one fixed-size slice of history, newest first.
type Page struct {
	Number  int
	Items   []Transaction
	HasMore bool
}

func (p Page) HasPrevious() bool {
	return p.Number > 0
}
