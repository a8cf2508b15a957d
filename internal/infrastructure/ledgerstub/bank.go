// Package ledgerstub is an in-memory ledger that serves the same JSON API as
// the real backend, for local runs and end-to-end tests. It keeps no state
// across restarts.
package ledgerstub

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PageSize matches the real ledger's fixed page length.
const PageSize = 10

// Transaction types written by the stub.
const (
	TypeDeposit    = "DEPOSIT"
	TypeWithdraw   = "WITHDRAW"
	TypeConversion = "CONVERSION"
	TypeCredit     = "CREDIT"
	TypeDebit      = "DEBIT"
)

var (
	openingBalance = decimal.NewFromInt(1000)
	feeRate        = decimal.RequireFromString("0.01")
)

var currencyNames = map[string]string{
	"USD": "United States Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"NGN": "Nigerian Naira",
	"INR": "Indian Rupee",
}

// DefaultRates are units per US dollar.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"JPY": decimal.RequireFromString("151.50"),
		"NGN": decimal.RequireFromString("1480.00"),
		"INR": decimal.RequireFromString("83.30"),
	}
}

// Error carries the HTTP status the handler should answer with.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(format string, args ...any) error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func conflict(message string) error {
	return &Error{Status: http.StatusConflict, Message: message}
}

var ErrBadCredentials = &Error{Status: http.StatusUnauthorized, Message: "Bad credentials"}

// AsError unwraps err to an *Error.
func AsError(err error) (*Error, bool) {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// Hasher is implemented by auth.Passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Bank holds every user, account, card and transaction in memory behind a
// single lock.
type Bank struct {
	hasher Hasher
	rates  map[string]decimal.Decimal
	now    func() time.Time

	mu        sync.Mutex
	users     map[string]*userRecord // by username
	byUID     map[string]*userRecord
	accounts  map[string]*accountRecord // by id
	byNumber  map[int64]*accountRecord
	cards     map[string]*cardRecord // by owner uid
	cardByID  map[string]*cardRecord
	history   map[string][]*txRecord // by owner uid, oldest first
	txCounter int64
}

func NewBank(hasher Hasher) *Bank {
	return &Bank{
		hasher:   hasher,
		rates:    DefaultRates(),
		now:      time.Now,
		users:    make(map[string]*userRecord),
		byUID:    make(map[string]*userRecord),
		accounts: make(map[string]*accountRecord),
		byNumber: make(map[int64]*accountRecord),
		cards:    make(map[string]*cardRecord),
		cardByID: make(map[string]*cardRecord),
		history:  make(map[string][]*txRecord),
	}
}

// Register creates a user. Usernames are case-insensitive and unique.
func (b *Bank) Register(in RegisterInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return User{}, badRequest("Username and password are required")
	}

	hash, err := b.hasher.Hash(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(username)
	if _, exists := b.users[key]; exists {
		return User{}, conflict("Username already exists")
	}

	ts := b.now().Format(timeLayout)
	rec := &userRecord{
		User: User{
			UID:       uuid.NewString(),
			Username:  username,
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Roles:     []string{"USER"},
			CreatedAt: ts,
			UpdatedAt: ts,
		},
		passwordHash: hash,
	}
	b.users[key] = rec
	b.byUID[rec.UID] = rec

	log.WithField("username", username).Info("Registered user")
	return rec.User, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords are
// indistinguishable.
func (b *Bank) Authenticate(username, password string) (User, error) {
	b.mu.Lock()
	rec, ok := b.users[strings.ToLower(strings.TrimSpace(username))]
	b.mu.Unlock()
	if !ok {
		return User{}, ErrBadCredentials
	}
	if err := b.hasher.Verify(rec.passwordHash, password); err != nil {
		return User{}, ErrBadCredentials
	}
	return rec.User, nil
}

func (b *Bank) user(uid string) (*userRecord, error) {
	rec, ok := b.byUID[uid]
	if !ok {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "User no longer exists"}
	}
	return rec, nil
}

// Accounts lists the user's accounts in creation order.
func (b *Bank) Accounts(uid string) ([]Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.user(uid); err != nil {
		return nil, err
	}

	var owned []*accountRecord
	for _, a := range b.accounts {
		if a.ownerUID == uid {
			owned = append(owned, a)
		}
	}
	slices.SortFunc(owned, func(x, y *accountRecord) int {
		if c := x.createdAt.Compare(y.createdAt); c != 0 {
			return c
		}
		return strings.Compare(x.code, y.code)
	})

	out := make([]Account, 0, len(owned))
	for _, a := range owned {
		out = append(out, a.view())
	}
	return out, nil
}

type CreateAccountInput struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// CreateAccount opens an account in a supported currency with the standard
// opening balance. One account per currency per user.
func (b *Bank) CreateAccount(uid string, in CreateAccountInput) (Account, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	name, supported := currencyNames[code]
	if !supported {
		return Account{}, badRequest("Unsupported currency %q", in.Code)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	owner, err := b.user(uid)
	if err != nil {
		return Account{}, err
	}
	if b.ownedAccount(uid, code) != nil {
		return Account{}, conflict("Account of this type already exists for this user")
	}

	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = name
	}
	symbol := in.Symbol
	if symbol == "" {
		symbol = "$"
	}

	now := b.now()
	acc := &accountRecord{
		id:        uuid.NewString(),
		number:    b.uniqueAccountNumber(),
		name:      owner.fullName(),
		code:      code,
		label:     label,
		symbol:    symbol,
		balance:   openingBalance,
		ownerUID:  uid,
		createdAt: now,
		updatedAt: now,
	}
	b.accounts[acc.id] = acc
	b.byNumber[acc.number] = acc

	return acc.view(), nil
}

func (b *Bank) ownedAccount(uid, code string) *accountRecord {
	for _, a := range b.accounts {
		if a.ownerUID == uid && a.code == code {
			return a
		}
	}
	return nil
}

func (b *Bank) uniqueAccountNumber() int64 {
	for {
		n := 1_000_000_000 + rand.Int64N(9_000_000_000)
		if _, taken := b.byNumber[n]; !taken {
			return n
		}
	}
}

type TransferInput struct {
	Code                   string          `json:"code"`
	RecipientAccountNumber int64           `json:"recipientAccountNumber"`
	Amount                 decimal.Decimal `json:"amount"`
}

// Transfer moves Amount from the user's Code account to the recipient
// account. The sender also pays a 1% fee. Both accounts must hold the same
// currency.
func (b *Bank) Transfer(uid string, in TransferInput) (Transaction, error) {
	if !in.Amount.IsPositive() {
		return Transaction{}, badRequest("Invalid amount")
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.user(uid); err != nil {
		return Transaction{}, err
	}
	sender := b.ownedAccount(uid, code)
	if sender == nil {
		return Transaction{}, notFound("Account of type currency does not exists for user")
	}
	receiver, ok := b.byNumber[in.RecipientAccountNumber]
	if !ok {
		return Transaction{}, notFound("Account of type currency does not exists for receiver")
	}
	if receiver.id == sender.id {
		return Transaction{}, badRequest("Cannot transfer to the same account")
	}
	if receiver.code != sender.code {
		return Transaction{}, badRequest("Recipient account holds %s, not %s", receiver.code, sender.code)
	}

	fee := in.Amount.Mul(feeRate)
	debit := in.Amount.Add(fee)
	if sender.balance.LessThan(debit) {
		return Transaction{}, badRequest("Insufficient funds in the account")
	}

	now := b.now()
	sender.balance = sender.balance.Sub(debit)
	sender.updatedAt = now
	receiver.balance = receiver.balance.Add(in.Amount)
	receiver.updatedAt = now

	from := strconv.FormatInt(sender.number, 10)
	to := strconv.FormatInt(receiver.number, 10)
	out := b.record(uid, &txRecord{
		amount: in.Amount, fee: fee, sender: from, receiver: to,
		description: "Transfer to " + to, kind: TypeWithdraw, accountID: sender.id,
	})
	b.record(receiver.ownerUID, &txRecord{
		amount: in.Amount, fee: decimal.Zero, sender: from, receiver: to,
		description: "Transfer from " + from, kind: TypeDeposit, accountID: receiver.id,
	})

	return out.view(), nil
}

type ConvertInput struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Amount       decimal.Decimal `json:"amount"`
}

// Convert moves Amount out of the user's FromCurrency account and credits
// the converted value to their ToCurrency account, charging a 1% fee on the
// source side.
func (b *Bank) Convert(uid string, in ConvertInput) (Transaction, error) {
	from := strings.ToUpper(strings.TrimSpace(in.FromCurrency))
	to := strings.ToUpper(strings.TrimSpace(in.ToCurrency))
	if from == to {
		return Transaction{}, badRequest("Conversion between the same currency types is not allowed")
	}
	if !in.Amount.IsPositive() {
		return Transaction{}, badRequest("Invalid amount")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.user(uid); err != nil {
		return Transaction{}, err
	}
	src := b.ownedAccount(uid, from)
	dst := b.ownedAccount(uid, to)
	if src == nil || dst == nil {
		return Transaction{}, notFound("Both accounts must exist to convert")
	}

	fee := in.Amount.Mul(feeRate)
	debit := in.Amount.Add(fee)
	if src.balance.LessThan(debit) {
		return Transaction{}, badRequest("Insufficient funds in the account")
	}
	credited := in.Amount.Mul(b.rates[to]).Div(b.rates[from]).Round(2)

	now := b.now()
	src.balance = src.balance.Sub(debit)
	src.updatedAt = now
	dst.balance = dst.balance.Add(credited)
	dst.updatedAt = now

	out := b.record(uid, &txRecord{
		amount: in.Amount, fee: fee, description: fmt.Sprintf("Converted %s to %s", from, to),
		kind: TypeConversion, accountID: src.id,
	})
	b.record(uid, &txRecord{
		amount: credited, fee: decimal.Zero, description: fmt.Sprintf("Converted from %s", from),
		kind: TypeDeposit, accountID: dst.id,
	})

	return out.view(), nil
}

// Rates returns a copy of the fixed rate table.
func (b *Bank) Rates() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b.rates))
	for k, v := range b.rates {
		out[k] = v
	}
	return out
}

type FindInput struct {
	Code                   string `json:"code"`
	RecipientAccountNumber int64  `json:"recipientAccountNumber"`
}

// Find looks up any user's account by currency and number.
func (b *Bank) Find(in FindInput) (Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.byNumber[in.RecipientAccountNumber]
	if !ok || !strings.EqualFold(acc.code, strings.TrimSpace(in.Code)) {
		return Account{}, notFound("Account not found")
	}
	return acc.view(), nil
}

// Card returns the user's card or a 404 error.
func (b *Bank) Card(uid string) (Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.cards[uid]
	if !ok {
		return Card{}, notFound("No card found for this user")
	}
	return c.view(), nil
}

// IssueCard creates the user's single card, funded with amount from their
// USD account. Amount zero needs no USD account.
func (b *Bank) IssueCard(uid string, amount decimal.Decimal) (Card, error) {
	if amount.IsNegative() {
		return Card{}, badRequest("Invalid amount")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	owner, err := b.user(uid)
	if err != nil {
		return Card{}, err
	}
	if _, exists := b.cards[uid]; exists {
		return Card{}, conflict("Card already exists for this user")
	}

	if amount.IsPositive() {
		usd := b.ownedAccount(uid, "USD")
		if usd == nil {
			return Card{}, badRequest("USD Account not found for this user so card cannot be created")
		}
		if usd.balance.LessThan(amount) {
			return Card{}, badRequest("Insufficient funds in the account")
		}
		usd.balance = usd.balance.Sub(amount)
		usd.updatedAt = b.now()
		b.record(uid, &txRecord{amount: amount, fee: decimal.Zero, description: "Card funding", kind: TypeWithdraw, accountID: usd.id})
	}

	c := &cardRecord{
		id:         uuid.NewString(),
		number:     b.uniqueCardNumber(),
		holder:     owner.fullName(),
		balance:    amount,
		expiration: b.now().AddDate(3, 0, 0),
		cvv:        fmt.Sprintf("%03d", rand.IntN(1000)),
		pin:        fmt.Sprintf("%04d", rand.IntN(10000)),
		ownerUID:   uid,
	}
	b.cards[uid] = c
	b.cardByID[c.id] = c

	log.WithField("uid", uid).Info("Issued card")
	return c.view(), nil
}

func (b *Bank) uniqueCardNumber() int64 {
	for {
		n := 4_000_000_000_000_000 + rand.Int64N(1_000_000_000_000_000)
		taken := false
		for _, c := range b.cards {
			if c.number == n {
				taken = true
				break
			}
		}
		if !taken {
			return n
		}
	}
}

// CreditCard moves amount from the user's USD account onto the card.
func (b *Bank) CreditCard(uid string, amount decimal.Decimal) (Transaction, error) {
	return b.adjustCard(uid, amount, true)
}

// DebitCard moves amount from the card back to the user's USD account.
func (b *Bank) DebitCard(uid string, amount decimal.Decimal) (Transaction, error) {
	return b.adjustCard(uid, amount, false)
}

func (b *Bank) adjustCard(uid string, amount decimal.Decimal, credit bool) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, badRequest("Invalid amount")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.cards[uid]
	if !ok {
		return Transaction{}, notFound("No card found for this user")
	}
	usd := b.ownedAccount(uid, "USD")
	if usd == nil {
		return Transaction{}, badRequest("USD Account not found for this user")
	}

	now := b.now()
	var out *txRecord
	if credit {
		if usd.balance.LessThan(amount) {
			return Transaction{}, badRequest("Insufficient funds in the account")
		}
		usd.balance = usd.balance.Sub(amount)
		c.balance = c.balance.Add(amount)
		b.record(uid, &txRecord{amount: amount, fee: decimal.Zero, description: "Card top-up", kind: TypeWithdraw, accountID: usd.id})
		out = b.record(uid, &txRecord{amount: amount, fee: decimal.Zero, description: "Card top-up", kind: TypeCredit, cardID: c.id})
	} else {
		if c.balance.LessThan(amount) {
			return Transaction{}, badRequest("Insufficient card balance")
		}
		c.balance = c.balance.Sub(amount)
		usd.balance = usd.balance.Add(amount)
		out = b.record(uid, &txRecord{amount: amount, fee: decimal.Zero, description: "Card withdrawal", kind: TypeDebit, cardID: c.id})
		b.record(uid, &txRecord{amount: amount, fee: decimal.Zero, description: "Card withdrawal", kind: TypeDeposit, accountID: usd.id})
	}
	usd.updatedAt = now

	return out.view(), nil
}

// record appends a transaction to uid's history. Callers hold mu.
func (b *Bank) record(uid string, tx *txRecord) *txRecord {
	b.txCounter++
	tx.id = uuid.NewString()
	// Strictly increasing timestamps keep ordering stable within a clock tick.
	tx.createdAt = b.now().Add(time.Duration(b.txCounter) * time.Nanosecond)
	b.history[uid] = append(b.history[uid], tx)
	return tx
}

// TxFilter narrows a history query to one card or one account.
type TxFilter struct {
	CardID    string
	AccountID string
}

// Transactions returns page n of uid's history, newest first, PageSize per
// page. Pages past the end are empty.
func (b *Bank) Transactions(uid string, page int, filter TxFilter) ([]Transaction, error) {
	if page < 0 {
		return nil, badRequest("Invalid page")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.user(uid); err != nil {
		return nil, err
	}
	if filter.CardID != "" {
		if c, ok := b.cardByID[filter.CardID]; !ok || c.ownerUID != uid {
			return nil, notFound("Card not found")
		}
	}
	if filter.AccountID != "" {
		if a, ok := b.accounts[filter.AccountID]; !ok || a.ownerUID != uid {
			return nil, notFound("Account not found")
		}
	}

	all := b.history[uid]
	matched := make([]*txRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		tx := all[i]
		if filter.CardID != "" && tx.cardID != filter.CardID {
			continue
		}
		if filter.AccountID != "" && tx.accountID != filter.AccountID {
			continue
		}
		matched = append(matched, tx)
	}

	out := []Transaction{}
	start := page * PageSize
	if start >= len(matched) {
		return out, nil
	}
	end := min(start+PageSize, len(matched))
	for _, tx := range matched[start:end] {
		out = append(out, tx.view())
	}
	return out, nil
}
