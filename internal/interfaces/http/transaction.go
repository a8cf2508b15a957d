package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"bankclient/internal/infrastructure/ledgerstub"
)

type TransactionHandler struct {
	bank *ledgerstub.Bank
}

func NewTransactionHandler(bank *ledgerstub.Bank) *TransactionHandler {
	return &TransactionHandler{bank: bank}
}

func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ledgerstub.TxFilter{})
}

func (h *TransactionHandler) HandleListByCard(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ledgerstub.TxFilter{CardID: chi.URLParam(r, "cardId")})
}

func (h *TransactionHandler) HandleListByAccount(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ledgerstub.TxFilter{AccountID: chi.URLParam(r, "accountId")})
}

// list serves one page; the page query parameter is required, as on the
// real ledger.
func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request, filter ledgerstub.TxFilter) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page is required")
		return
	}

	txs, err := h.bank.Transactions(uid, page, filter)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
