package account

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/infrastructure/ledger"
)

const (
	accountsPath = "/accounts"
	transferPath = "/accounts/transfer"
	convertPath  = "/accounts/convert"
	ratesPath    = "/accounts/rates"
	findPath     = "/accounts/find"

	conversionFailedMessage = "Conversion failed. Check details."
)

// OperationError hides the server's reason behind a fixed user message. The
// cause stays available through Unwrap for logs.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// UserMessage is what a front end shows for this failure.
func (e *OperationError) UserMessage() string {
	return e.Message
}

// Service runs account operations against the ledger. Every operation is a
// single request: nothing is retried, merged locally, or compensated.
type Service struct {
	client ledger.ClientInterface
}

func NewService(client ledger.ClientInterface) *Service {
	return &Service{client: client}
}

// List returns the user's accounts. No accounts is an empty, non-nil slice.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if _, err := s.client.Get(ctx, accountsPath, nil, &accounts); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

// Create opens an account in the given currency. The caller re-lists to see
// it.
func (s *Service) Create(ctx context.Context, params CreateParams) error {
	req, err := params.request()
	if err != nil {
		return err
	}

	if _, err := s.client.Post(ctx, accountsPath, nil, req, nil); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	log.Infof("Created %s account %q", req.Code, req.Label)
	return nil
}

// Transfer moves funds to another account. Invalid input fails before any
// request is made; a server rejection carries the server's message.
func (s *Service) Transfer(ctx context.Context, params TransferParams) error {
	req, err := params.Validate()
	if err != nil {
		return err
	}

	if _, err := s.client.Post(ctx, transferPath, nil, req, nil); err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	log.Infof("Transferred %s %s to account %s", req.Amount, req.Code, req.RecipientAccountNumber)
	return nil
}

// Convert exchanges funds between two of the user's currencies. Server
// failures come back as *OperationError with a generic message.
func (s *Service) Convert(ctx context.Context, params ConvertParams) error {
	req, err := params.Validate()
	if err != nil {
		return err
	}

	if _, err := s.client.Post(ctx, convertPath, nil, req, nil); err != nil {
		log.Warnf("Conversion %s->%s failed: %v", req.FromCurrency, req.ToCurrency, err)
		return &OperationError{Op: "convert", Message: conversionFailedMessage, Err: err}
	}
	log.Infof("Converted %s %s to %s", req.Amount, req.FromCurrency, req.ToCurrency)
	return nil
}

func (s *Service) Rates(ctx context.Context) (Rates, error) {
	rates := Rates{}
	if _, err := s.client.Get(ctx, ratesPath, nil, &rates); err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	return rates, nil
}

// Find looks up the recipient account of a pending transfer.
func (s *Service) Find(ctx context.Context, params FindParams) (*Account, error) {
	number, err := parseAccountNumber(params.Recipient)
	if err != nil {
		return nil, err
	}

	req := findRequest{
		Code:                   strings.ToUpper(strings.TrimSpace(params.Code)),
		RecipientAccountNumber: number,
	}
	var acc Account
	if _, err := s.client.Post(ctx, findPath, nil, req, &acc); err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &acc, nil
}
