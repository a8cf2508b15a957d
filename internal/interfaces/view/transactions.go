package view

import (
	"context"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/transaction"
)

const transactionsFailedMessage = "Failed to load transactions."

// PageFeed is implemented by *transaction.Feed.
type PageFeed interface {
	Page(ctx context.Context, n int) (transaction.Page, error)
}

type TransactionsState struct {
	Loading bool
	Page    transaction.Page
	Notice  Notice
}

// HasNext is true only when the current page came back full.
func (s TransactionsState) HasNext() bool {
	return !s.Loading && s.Page.HasMore
}

func (s TransactionsState) HasPrev() bool {
	return !s.Loading && s.Page.HasPrevious()
}

// TransactionsView pages through history one fixed-size page at a time.
type TransactionsView struct {
	lifecycle
	feed PageFeed

	page  int
	state TransactionsState
}

func NewTransactionsView(src SessionSource, feed PageFeed) *TransactionsView {
	v := &TransactionsView{feed: feed}
	v.start(src, v.Refresh, v.reset)
	return v
}

// Refresh reloads the current page.
func (v *TransactionsView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	n := v.page
	v.mu.Unlock()
	return v.load(ctx, n)
}

// Next moves forward a page if the current one was full.
func (v *TransactionsView) Next(ctx context.Context) error {
	st := v.State()
	if !st.HasNext() {
		return nil
	}
	return v.load(ctx, st.Page.Number+1)
}

func (v *TransactionsView) Prev(ctx context.Context) error {
	st := v.State()
	if !st.HasPrev() {
		return nil
	}
	return v.load(ctx, st.Page.Number-1)
}

// GoTo loads page n directly.
func (v *TransactionsView) GoTo(ctx context.Context, n int) error {
	return v.load(ctx, n)
}

func (v *TransactionsView) load(ctx context.Context, n int) error {
	gen, ok := v.begin()
	if !ok {
		return nil
	}
	v.commit(gen, func() { v.state.Loading = true })

	page, err := v.feed.Page(ctx, n)
	if err != nil {
		log.Warnf("Failed to load transactions page %d: %v", n, err)
	}

	v.commit(gen, func() {
		v.state.Loading = false
		if err != nil {
			v.state.Notice = failure(UserMessage(err, transactionsFailedMessage))
			return
		}
		v.page = n
		v.state.Page = page
		v.state.Notice = Notice{}
	})
	return err
}

func (v *TransactionsView) State() TransactionsState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *TransactionsView) reset() {
	v.page = 0
	v.state = TransactionsState{}
}
