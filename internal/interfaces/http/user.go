package http

import (
	"net/http"

	"bankclient/internal/infrastructure/ledgerstub"
	"bankclient/internal/shared/auth"
)

type UserHandler struct {
	bank   *ledgerstub.Bank
	tokens *auth.Tokens
}

func NewUserHandler(bank *ledgerstub.Bank, tokens *auth.Tokens) *UserHandler {
	return &UserHandler{bank: bank, tokens: tokens}
}

// HandleRegister creates a user and returns the profile. It does not sign
// the user in.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req ledgerstub.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.bank.Register(req)
	if err != nil {
		writeBankError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleAuth checks credentials and returns the profile as the body and
// the bearer token in the Authorization response header.
func (h *UserHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.bank.Authenticate(req.Username, req.Password)
	if err != nil {
		writeBankError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u.UID, u.Username)
	if err != nil {
		writeBankError(w, r, err)
		return
	}

	w.Header().Set("Authorization", token)
	w.Header().Set("Access-Control-Expose-Headers", "Authorization")
	writeJSON(w, http.StatusOK, u)
}
