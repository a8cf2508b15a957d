package view

import (
	"context"
	"sync"

	"bankclient/internal/domain/account"
	"bankclient/internal/domain/card"
	"bankclient/internal/domain/session"
	"bankclient/internal/domain/transaction"
	"bankclient/internal/domain/user"
)

var alice = &user.Profile{UID: "u-1", Username: "alice", FirstName: "Alice"}

// MockSession mimics session.Service broadcasting.
type MockSession struct {
	mu        sync.Mutex
	user      *user.Profile
	listeners map[int]session.Listener
	next      int
}

func NewMockSession(u *user.Profile) *MockSession {
	return &MockSession{user: u, listeners: make(map[int]session.Listener)}
}

func (m *MockSession) Subscribe(fn session.Listener) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.listeners[id] = fn
	u := m.user
	m.mu.Unlock()

	fn(session.Change{Reason: session.ReasonCurrent, User: u})
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *MockSession) Emit(reason session.Reason, u *user.Profile) {
	m.mu.Lock()
	m.user = u
	var fns []session.Listener
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(session.Change{Reason: reason, User: u})
	}
}

func (m *MockSession) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// MockAccounts implements AccountOperations and AccountLister.
type MockAccounts struct {
	mu           sync.Mutex
	ListFunc     func(ctx context.Context) ([]account.Account, error)
	CreateFunc   func(ctx context.Context, p account.CreateParams) error
	TransferFunc func(ctx context.Context, p account.TransferParams) error
	ConvertFunc  func(ctx context.Context, p account.ConvertParams) error
	FindFunc     func(ctx context.Context, p account.FindParams) (*account.Account, error)
	listCalls    int
}

func (m *MockAccounts) List(ctx context.Context) ([]account.Account, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []account.Account{}, nil
}

func (m *MockAccounts) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *MockAccounts) Create(ctx context.Context, p account.CreateParams) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *MockAccounts) Transfer(ctx context.Context, p account.TransferParams) error {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, p)
	}
	return nil
}

func (m *MockAccounts) Convert(ctx context.Context, p account.ConvertParams) error {
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, p)
	}
	return nil
}

func (m *MockAccounts) Find(ctx context.Context, p account.FindParams) (*account.Account, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, p)
	}
	return nil, nil
}

// MockCards implements CardOperations.
type MockCards struct {
	FetchFunc  func(ctx context.Context) (card.State, error)
	IssueFunc  func(ctx context.Context) error
	AdjustFunc func(ctx context.Context, d card.Direction, amount string) error
}

func (m *MockCards) Fetch(ctx context.Context) (card.State, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return card.State{Status: card.StatusAbsent}, nil
}

func (m *MockCards) Issue(ctx context.Context) error {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx)
	}
	return nil
}

func (m *MockCards) Adjust(ctx context.Context, d card.Direction, amount string) error {
	if m.AdjustFunc != nil {
		return m.AdjustFunc(ctx, d, amount)
	}
	return nil
}

// MockFeed implements PageFeed and RecentFeed.
type MockFeed struct {
	PageFunc   func(ctx context.Context, n int) (transaction.Page, error)
	RecentFunc func(ctx context.Context, k int) ([]transaction.Transaction, error)
}

func (m *MockFeed) Page(ctx context.Context, n int) (transaction.Page, error) {
	if m.PageFunc != nil {
		return m.PageFunc(ctx, n)
	}
	return transaction.Page{Number: n, Items: []transaction.Transaction{}}, nil
}

func (m *MockFeed) Recent(ctx context.Context, k int) ([]transaction.Transaction, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, k)
	}
	return []transaction.Transaction{}, nil
}

// MockAuth implements Authenticator.
type MockAuth struct {
	LoginFunc    func(ctx context.Context, username, password string) (*user.Profile, error)
	RegisterFunc func(ctx context.Context, p session.RegisterParams) error
}

func (m *MockAuth) Login(ctx context.Context, username, password string) (*user.Profile, error) {
	return m.LoginFunc(ctx, username, password)
}

func (m *MockAuth) Register(ctx context.Context, p session.RegisterParams) error {
	return m.RegisterFunc(ctx, p)
}
