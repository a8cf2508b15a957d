package view

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/account"
	"bankclient/internal/domain/transaction"
)

// RecentCount is how many transactions the dashboard shows.
const RecentCount = 5

// AccountLister is the read side of *account.Service.
type AccountLister interface {
	List(ctx context.Context) ([]account.Account, error)
}

// RecentFeed is implemented by *transaction.Feed.
type RecentFeed interface {
	Recent(ctx context.Context, k int) ([]transaction.Transaction, error)
}

type DashboardState struct {
	Loading      bool
	Accounts     []account.Account
	Transactions []transaction.Transaction
	Notice       Notice
}

// DashboardView shows balances and the latest transactions. The two lists
// load independently; one failing does not hide the other.
type DashboardView struct {
	lifecycle
	accounts AccountLister
	feed     RecentFeed

	state DashboardState
}

func NewDashboardView(src SessionSource, accounts AccountLister, feed RecentFeed) *DashboardView {
	v := &DashboardView{accounts: accounts, feed: feed}
	v.start(src, v.Refresh, v.reset)
	return v
}

// Refresh reloads both lists. It is a no-op while signed out.
func (v *DashboardView) Refresh(ctx context.Context) error {
	gen, ok := v.begin()
	if !ok {
		return nil
	}
	v.commit(gen, func() {
		v.state.Loading = true
		v.state.Notice = Notice{}
	})

	var wg sync.WaitGroup
	var accountsErr, txErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		accounts, err := v.accounts.List(ctx)
		accountsErr = err
		v.commit(gen, func() {
			if err == nil {
				v.state.Accounts = accounts
			}
		})
	}()
	go func() {
		defer wg.Done()
		recent, err := v.feed.Recent(ctx, RecentCount)
		txErr = err
		v.commit(gen, func() {
			if err == nil {
				v.state.Transactions = recent
			}
		})
	}()
	wg.Wait()

	err := errors.Join(accountsErr, txErr)
	if err != nil {
		log.Warnf("Dashboard refresh incomplete: %v", err)
	}
	v.commit(gen, func() {
		v.state.Loading = false
		if err != nil {
			v.state.Notice = failure("Some dashboard data could not be loaded.")
		}
	})
	return err
}

func (v *DashboardView) State() DashboardState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *DashboardView) reset() {
	v.state = DashboardState{}
}
