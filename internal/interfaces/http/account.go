package http

import (
	"encoding/json"
	"net/http"

	"bankclient/internal/infrastructure/ledgerstub"
	"bankclient/internal/shared/middleware"
)

type AccountHandler struct {
	bank *ledgerstub.Bank
}

func NewAccountHandler(bank *ledgerstub.Bank) *AccountHandler {
	return &AccountHandler{bank: bank}
}

// currentUser reads the subject Authenticator stored. Routes without it are
// a wiring bug, answered as unauthorized.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return uid, ok
}

func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.bank.Accounts(uid)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req ledgerstub.CreateAccountInput
	if !decodeBody(w, r, &req) {
		return
	}

	acc, err := h.bank.CreateAccount(uid, req)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (h *AccountHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req ledgerstub.TransferInput
	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := h.bank.Transfer(uid, req)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *AccountHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req ledgerstub.ConvertInput
	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := h.bank.Convert(uid, req)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *AccountHandler) HandleRates(w http.ResponseWriter, r *http.Request) {
	rates := make(map[string]json.Number)
	for code, rate := range h.bank.Rates() {
		rates[code] = json.Number(rate.String())
	}
	writeJSON(w, http.StatusOK, rates)
}

func (h *AccountHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	var req ledgerstub.FindInput
	if !decodeBody(w, r, &req) {
		return
	}

	acc, err := h.bank.Find(req)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}
