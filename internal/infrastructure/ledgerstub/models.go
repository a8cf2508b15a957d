package ledgerstub

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02T15:04:05"

// User is the profile returned by register and auth.
type User struct {
	UID         string   `json:"uid"`
	Username    string   `json:"username"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	DOB         string   `json:"dob,omitempty"`
	PhoneNumber int64    `json:"phoneNumber,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Roles       []string `json:"roles"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

type userRecord struct {
	User
	passwordHash string
}

func (u *userRecord) fullName() string {
	return u.FirstName + " " + u.LastName
}

type accountRecord struct {
	id        string
	number    int64
	name      string
	code      string
	label     string
	symbol    string
	balance   decimal.Decimal
	ownerUID  string
	createdAt time.Time
	updatedAt time.Time
}

// Account is the wire shape of an account. Amounts are JSON numbers.
type Account struct {
	AccountID     string      `json:"accountId"`
	AccountNumber int64       `json:"accountNumber"`
	AccountName   string      `json:"accountName"`
	Code          string      `json:"code"`
	Label         string      `json:"label"`
	Symbol        string      `json:"symbol"`
	Balance       json.Number `json:"balance"`
	CreatedAt     string      `json:"createdAt"`
	UpdatedAt     string      `json:"updatedAt"`
}

func (a *accountRecord) view() Account {
	return Account{
		AccountID:     a.id,
		AccountNumber: a.number,
		AccountName:   a.name,
		Code:          a.code,
		Label:         a.label,
		Symbol:        a.symbol,
		Balance:       number(a.balance),
		CreatedAt:     a.createdAt.Format(timeLayout),
		UpdatedAt:     a.updatedAt.Format(timeLayout),
	}
}

type cardRecord struct {
	id         string
	number     int64
	holder     string
	balance    decimal.Decimal
	expiration time.Time
	cvv        string
	pin        string
	ownerUID   string
}

type Card struct {
	CardID         string      `json:"cardId"`
	CardNumber     int64       `json:"cardNumber"`
	CardHolder     string      `json:"cardHolder"`
	Balance        json.Number `json:"balance"`
	Expiration     string      `json:"expiration"`
	CVV            string      `json:"cvv"`
	PIN            string      `json:"pin"`
	BillingAddress string      `json:"billingAddress"`
}

func (c *cardRecord) view() Card {
	return Card{
		CardID:     c.id,
		CardNumber: c.number,
		CardHolder: c.holder,
		Balance:    number(c.balance),
		Expiration: c.expiration.Format(timeLayout),
		CVV:        c.cvv,
		PIN:        c.pin,
	}
}

type txRecord struct {
	id          string
	amount      decimal.Decimal
	fee         decimal.Decimal
	sender      string
	receiver    string
	description string
	kind        string
	accountID   string
	cardID      string
	createdAt   time.Time
}

type Transaction struct {
	TxID        string      `json:"txId"`
	Amount      json.Number `json:"amount"`
	TxFee       json.Number `json:"txFee"`
	Sender      string      `json:"sender,omitempty"`
	Receiver    string      `json:"receiver,omitempty"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

func (t *txRecord) view() Transaction {
	ts := t.createdAt.Format(timeLayout)
	return Transaction{
		TxID:        t.id,
		Amount:      number(t.amount),
		TxFee:       number(t.fee),
		Sender:      t.sender,
		Receiver:    t.receiver,
		Description: t.description,
		Type:        t.kind,
		Status:      "COMPLETED",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.Round(2).String())
}
