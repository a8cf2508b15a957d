package transaction

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"bankclient/internal/infrastructure/ledger"
	"bankclient/internal/shared/validation"
)

// PageSize is the ledger's fixed page length.
const PageSize = 10

const (
	transactionsPath = "/transactions"
	cardPathPrefix   = "/transactions/c/"
	accountPrefix    = "/transactions/a/"
)

// Feed reads transaction history. It is read-only.
type Feed struct {
	client ledger.ClientInterface
}

func NewFeed(client ledger.ClientInterface) *Feed {
	return &Feed{client: client}
}

// Page fetches page n (zero-based) of all the user's transactions. The
// ledger does not report a total, so HasMore is true whenever the page came
// back full; the page after an exact multiple of PageSize is empty.
func (f *Feed) Page(ctx context.Context, n int) (Page, error) {
	return f.fetch(ctx, transactionsPath, n)
}

// Recent returns up to k of the newest transactions.
func (f *Feed) Recent(ctx context.Context, k int) ([]Transaction, error) {
	page, err := f.Page(ctx, 0)
	if err != nil {
		return nil, err
	}
	if k >= 0 && len(page.Items) > k {
		return page.Items[:k], nil
	}
	return page.Items, nil
}

// CardPage fetches page n of one card's transactions.
func (f *Feed) CardPage(ctx context.Context, cardID string, n int) (Page, error) {
	if err := validation.Required("cardId", cardID); err != nil {
		return Page{}, err
	}
	return f.fetch(ctx, cardPathPrefix+url.PathEscape(cardID), n)
}

// AccountPage fetches page n of one account's transactions.
func (f *Feed) AccountPage(ctx context.Context, accountID string, n int) (Page, error) {
	if err := validation.Required("accountId", accountID); err != nil {
		return Page{}, err
	}
	return f.fetch(ctx, accountPrefix+url.PathEscape(accountID), n)
}

func (f *Feed) fetch(ctx context.Context, path string, n int) (Page, error) {
	if n < 0 {
		return Page{}, validation.New("page", "page number must not be negative")
	}

	var items []Transaction
	query := url.Values{"page": {strconv.Itoa(n)}}
	if _, err := f.client.Get(ctx, path, query, &items); err != nil {
		return Page{}, fmt.Errorf("failed to load transactions page %d: %w", n, err)
	}
	if items == nil {
		items = []Transaction{}
	}

	return Page{
		Number:  n,
		Items:   items,
		HasMore: len(items) >= PageSize,
	}, nil
}
