package account

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"bankclient/internal/shared/money"
	"bankclient/internal/shared/validation"
)

// DefaultSymbol is used for currency codes missing from currencySymbols.
const DefaultSymbol = "$"

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"NGN": "₦",
	"INR": "₹",
}

// Domain errors
var (
	ErrMissingRecipient = errors.New("recipient account number is required")
	ErrMissingCurrency  = errors.New("currency code is required")
)

// Account is a ledger account as last reported by the server. The client
// never adjusts Balance itself.
type Account struct {
	AccountID     string          `json:"accountId"`
	AccountNumber int64           `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	Code          string          `json:"code"`
	Currency      string          `json:"currency"`
	Label         string          `json:"label"`
	Symbol        string          `json:"symbol"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// DisplayBalance renders the balance with the account's symbol.
func (a *Account) DisplayBalance() string {
	symbol := a.Symbol
	if symbol == "" {
		symbol = SymbolFor(a.Code)
	}
	return money.Display(symbol, a.Balance)
}

// SymbolFor maps a currency code to its display symbol.
func SymbolFor(code string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return symbol
	}
	return DefaultSymbol
}

// SupportedCurrencies lists the codes offered when creating an account.
func SupportedCurrencies() []string {
	return []string{"USD", "EUR", "GBP", "JPY", "NGN", "INR"}
}

// CreateParams is the create-account form.
type CreateParams struct {
	Code  string
	Label string
}

type createRequest struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

func (p CreateParams) request() (createRequest, error) {
	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if code == "" {
		return createRequest{}, validation.New("code", ErrMissingCurrency.Error())
	}
	return createRequest{
		Code:   code,
		Label:  strings.TrimSpace(p.Label),
		Symbol: SymbolFor(code),
	}, nil
}

// TransferParams is the transfer form as typed by the user.
type TransferParams struct {
	Code      string
	Recipient string
	Amount    string
}

// TransferRequest is built per submission and discarded afterwards.
type TransferRequest struct {
	Code                   string      `json:"code"`
	RecipientAccountNumber json.Number `json:"recipientAccountNumber"`
	Amount                 json.Number `json:"amount"`
}

// Validate checks the form and builds the wire request.
func (p TransferParams) Validate() (TransferRequest, error) {
	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if code == "" {
		return TransferRequest{}, validation.New("code", ErrMissingCurrency.Error())
	}

	recipient, err := parseAccountNumber(p.Recipient)
	if err != nil {
		return TransferRequest{}, err
	}

	amount, err := money.ParsePositiveAmount("amount", p.Amount)
	if err != nil {
		return TransferRequest{}, err
	}

	return TransferRequest{
		Code:                   code,
		RecipientAccountNumber: recipient,
		Amount:                 json.Number(amount.String()),
	}, nil
}

// ConvertParams is the conversion form as typed by the user.
type ConvertParams struct {
	FromCurrency string
	ToCurrency   string
	Amount       string
}

type ConversionRequest struct {
	FromCurrency string      `json:"fromCurrency"`
	ToCurrency   string      `json:"toCurrency"`
	Amount       json.Number `json:"amount"`
}

func (p ConvertParams) Validate() (ConversionRequest, error) {
	from := strings.ToUpper(strings.TrimSpace(p.FromCurrency))
	to := strings.ToUpper(strings.TrimSpace(p.ToCurrency))
	if from == "" {
		return ConversionRequest{}, validation.New("fromCurrency", ErrMissingCurrency.Error())
	}
	if to == "" {
		return ConversionRequest{}, validation.New("toCurrency", ErrMissingCurrency.Error())
	}

	amount, err := money.ParsePositiveAmount("amount", p.Amount)
	if err != nil {
		return ConversionRequest{}, err
	}

	return ConversionRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       json.Number(amount.String()),
	}, nil
}

// FindParams identifies a recipient account for preview.
type FindParams struct {
	Code      string
	Recipient string
}

type findRequest struct {
	Code                   string      `json:"code"`
	RecipientAccountNumber json.Number `json:"recipientAccountNumber"`
}

func parseAccountNumber(raw string) (json.Number, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &recipientError{validation.New("recipient", ErrMissingRecipient.Error())}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", validation.New("recipient", "account number must contain only digits")
		}
	}
	return json.Number(s), nil
}

// recipientError lets callers match a missing recipient with errors.Is
// while it still reads as a validation error.
type recipientError struct {
	error
}

func (e *recipientError) Unwrap() []error {
	return []error{e.error, ErrMissingRecipient}
}

// Rates maps currency codes to their rate against the ledger's base
// currency.
type Rates map[string]decimal.Decimal
