package view

import (
	"context"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/account"
)

const (
	noAccountsMessage       = "No accounts found. Create one to get started!"
	accountsFailedMessage   = "Failed to load accounts. Please try again."
	accountCreatedMessage   = "Account created successfully!"
	createFailedMessage     = "Failed to create account"
	transferredMessage      = "Transfer successful!"
	transferFailedMessage   = "Transfer failed"
	convertedMessage        = "Conversion successful!"
	conversionFailedMessage = "Conversion failed. Check details."
	recipientFailedMessage  = "Recipient account not found"
)

// AccountOperations is implemented by *account.Service.
type AccountOperations interface {
	List(ctx context.Context) ([]account.Account, error)
	Create(ctx context.Context, params account.CreateParams) error
	Transfer(ctx context.Context, params account.TransferParams) error
	Convert(ctx context.Context, params account.ConvertParams) error
	Find(ctx context.Context, params account.FindParams) (*account.Account, error)
}

// The dialog forms below are scoped to one opening of their dialog. They are
// cleared when the dialog is cancelled or its submission succeeds, and kept
// as typed when a submission fails.
type CreateForm struct {
	Open bool
	account.CreateParams
}

type TransferForm struct {
	Open bool
	account.TransferParams
	// Preview is the recipient found by PreviewRecipient, dropped whenever
	// the code or recipient number changes.
	Preview *account.Account
}

type ConvertForm struct {
	Open bool
	account.ConvertParams
}

type AccountsState struct {
	Loading  bool
	Loaded   bool
	Accounts []account.Account
	Notice   Notice
	Create   CreateForm
	Transfer TransferForm
	Convert  ConvertForm
}

type AccountsView struct {
	lifecycle
	ops AccountOperations

	state AccountsState
	// listNotice marks a notice set by the list itself, which the next
	// successful non-empty load clears. Mutation notices survive it.
	listNotice bool
}

func NewAccountsView(src SessionSource, ops AccountOperations) *AccountsView {
	v := &AccountsView{ops: ops}
	v.start(src, v.Refresh, v.reset)
	return v
}

// Refresh reloads the account list.
func (v *AccountsView) Refresh(ctx context.Context) error {
	gen, ok := v.begin()
	if !ok {
		return nil
	}
	v.commit(gen, func() { v.state.Loading = true })

	accounts, err := v.ops.List(ctx)
	if err != nil {
		log.Warnf("Failed to load accounts: %v", err)
	}

	v.commit(gen, func() {
		v.state.Loading = false
		switch {
		case err != nil:
			v.setListNotice(failure(accountsFailedMessage))
		case len(accounts) == 0:
			v.state.Accounts = accounts
			v.state.Loaded = true
			v.setListNotice(info(noAccountsMessage))
		default:
			v.state.Accounts = accounts
			v.state.Loaded = true
			if v.listNotice {
				v.state.Notice = Notice{}
				v.listNotice = false
			}
		}
	})
	return err
}

func (v *AccountsView) setListNotice(n Notice) {
	v.state.Notice = n
	v.listNotice = true
}

func (v *AccountsView) setNotice(n Notice) {
	v.update(func() {
		v.state.Notice = n
		v.listNotice = false
	})
}

func (v *AccountsView) State() AccountsState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *AccountsView) reset() {
	v.state = AccountsState{}
	v.listNotice = false
}

func (v *AccountsView) OpenCreate() {
	v.update(func() { v.state.Create = CreateForm{Open: true} })
}

func (v *AccountsView) EditCreate(params account.CreateParams) {
	v.update(func() { v.state.Create.CreateParams = params })
}

func (v *AccountsView) CancelCreate() {
	v.update(func() { v.state.Create = CreateForm{} })
}

// SubmitCreate creates an account from the form and reloads the list. The
// returned error is the creation's; a failed reload shows as a notice.
func (v *AccountsView) SubmitCreate(ctx context.Context) error {
	v.mu.Lock()
	params := v.state.Create.CreateParams
	v.mu.Unlock()

	if err := v.ops.Create(ctx, params); err != nil {
		v.setNotice(failure(UserMessage(err, createFailedMessage)))
		return err
	}

	v.setNotice(success(accountCreatedMessage))
	v.update(func() { v.state.Create = CreateForm{} })
	_ = v.Refresh(ctx)
	return nil
}

func (v *AccountsView) OpenTransfer() {
	v.update(func() { v.state.Transfer = TransferForm{Open: true} })
}

func (v *AccountsView) EditTransfer(params account.TransferParams) {
	v.update(func() {
		if params.Code != v.state.Transfer.Code || params.Recipient != v.state.Transfer.Recipient {
			v.state.Transfer.Preview = nil
		}
		v.state.Transfer.TransferParams = params
	})
}

func (v *AccountsView) CancelTransfer() {
	v.update(func() { v.state.Transfer = TransferForm{} })
}

// PreviewRecipient looks up the account the transfer form points at.
func (v *AccountsView) PreviewRecipient(ctx context.Context) (*account.Account, error) {
	v.mu.Lock()
	params := account.FindParams{
		Code:      v.state.Transfer.Code,
		Recipient: v.state.Transfer.Recipient,
	}
	v.mu.Unlock()

	found, err := v.ops.Find(ctx, params)
	if err != nil {
		v.setNotice(failure(UserMessage(err, recipientFailedMessage)))
		return nil, err
	}

	v.update(func() {
		if v.state.Transfer.Code == params.Code && v.state.Transfer.Recipient == params.Recipient {
			v.state.Transfer.Preview = found
		}
	})
	return found, nil
}

// SubmitTransfer sends the transfer and reloads the list. Validation
// failures never reach the ledger.
func (v *AccountsView) SubmitTransfer(ctx context.Context) error {
	v.mu.Lock()
	params := v.state.Transfer.TransferParams
	v.mu.Unlock()

	if err := v.ops.Transfer(ctx, params); err != nil {
		v.setNotice(failure(UserMessage(err, transferFailedMessage)))
		return err
	}

	v.setNotice(success(transferredMessage))
	v.update(func() { v.state.Transfer = TransferForm{} })
	_ = v.Refresh(ctx)
	return nil
}

func (v *AccountsView) OpenConvert() {
	v.update(func() { v.state.Convert = ConvertForm{Open: true} })
}

func (v *AccountsView) EditConvert(params account.ConvertParams) {
	v.update(func() { v.state.Convert.ConvertParams = params })
}

func (v *AccountsView) CancelConvert() {
	v.update(func() { v.state.Convert = ConvertForm{} })
}

// SubmitConvert converts between two of the user's accounts and reloads the
// list. Server failures show a fixed message.
func (v *AccountsView) SubmitConvert(ctx context.Context) error {
	v.mu.Lock()
	params := v.state.Convert.ConvertParams
	v.mu.Unlock()

	if err := v.ops.Convert(ctx, params); err != nil {
		v.setNotice(failure(UserMessage(err, conversionFailedMessage)))
		return err
	}

	v.setNotice(success(convertedMessage))
	v.update(func() { v.state.Convert = ConvertForm{} })
	_ = v.Refresh(ctx)
	return nil
}
