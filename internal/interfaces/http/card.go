package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"bankclient/internal/infrastructure/ledgerstub"
)

type CardHandler struct {
	bank *ledgerstub.Bank
}

func NewCardHandler(bank *ledgerstub.Bank) *CardHandler {
	return &CardHandler{bank: bank}
}

// amountParam parses the required ?amount= query parameter.
func amountParam(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "amount is required")
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return decimal.Zero, false
	}
	return amount, true
}

func (h *CardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	c, err := h.bank.Card(uid)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	amount, ok := amountParam(w, r)
	if !ok {
		return
	}

	c, err := h.bank.IssueCard(uid, amount)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CardHandler) HandleCredit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.bank.CreditCard)
}

func (h *CardHandler) HandleDebit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.bank.DebitCard)
}

func (h *CardHandler) adjust(w http.ResponseWriter, r *http.Request, op func(string, decimal.Decimal) (ledgerstub.Transaction, error)) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	amount, ok := amountParam(w, r)
	if !ok {
		return
	}

	tx, err := op(uid, amount)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
