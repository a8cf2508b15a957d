package transaction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"bankclient/internal/infrastructure/ledger"
	"bankclient/internal/shared/validation"
)

func itemsJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"txId":"tx-%d","amount":%d.25,"txFee":0,"type":"TRANSFER","status":"COMPLETED"}`, i, i+1)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func newTestFeed(t *testing.T, handler http.HandlerFunc) (*Feed, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewFeed(ledger.NewClient(server.URL, nil)), &calls
}

func TestPage_HasMore(t *testing.T) {
	tests := []struct {
		count       int
		wantHasMore bool
	}{
		{10, true},
		{11, true},
		{9, false},
		{0, false},
		{1, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			feed, _ := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/transactions" || r.URL.Query().Get("page") != "2" {
					t.Errorf("request = %s", r.URL.String())
				}
				w.Write([]byte(itemsJSON(tt.count)))
			})

			page, err := feed.Page(context.Background(), 2)
			if err != nil {
				t.Fatalf("Page() failed: %v", err)
			}
			if page.Number != 2 || len(page.Items) != tt.count {
				t.Errorf("page = %d with %d items", page.Number, len(page.Items))
			}
			if page.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", page.HasMore, tt.wantHasMore)
			}
			if !page.HasPrevious() {
				t.Error("HasPrevious() = false on page 2")
			}
		})
	}
}

func TestPage_NegativeRejected(t *testing.T) {
	feed, calls := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := feed.Page(context.Background(), -1)
	if !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("Page(-1) error = %v, want validation error", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Error("Page(-1) reached the server")
	}
}

func TestPage_DecodesTransactions(t *testing.T) {
	feed, _ := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"txId":"tx-9","amount":42.5,"txFee":0.5,"sender":"1002003001","receiver":"1002003002","description":"rent","type":"REFUND","status":"PENDING","createdAt":"2024-03-01T09:30:00"}]`))
	})

	page, err := feed.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page() failed: %v", err)
	}
	tx := page.Items[0]
	if tx.Amount.StringFixed(2) != "42.50" || tx.TxFee.StringFixed(2) != "0.50" {
		t.Errorf("amounts = %s / %s", tx.Amount, tx.TxFee)
	}
	if tx.Type != "REFUND" || tx.Status != StatusPending {
		t.Errorf("unknown enum not kept verbatim: %+v", tx)
	}
	if page.HasPrevious() {
		t.Error("HasPrevious() = true on page 0")
	}
}

func TestRecent(t *testing.T) {
	feed, _ := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "0" {
			t.Errorf("Recent() requested page %s", r.URL.Query().Get("page"))
		}
		w.Write([]byte(itemsJSON(10)))
	})

	recent, err := feed.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(recent) != 5 || recent[0].TxID != "tx-0" || recent[4].TxID != "tx-4" {
		t.Errorf("Recent() = %+v", recent)
	}
}

func TestScopedPages(t *testing.T) {
	var paths []string
	feed, _ := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath()+"?"+r.URL.RawQuery)
		w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	if _, err := feed.CardPage(ctx, "card-1", 0); err != nil {
		t.Fatalf("CardPage() failed: %v", err)
	}
	if _, err := feed.AccountPage(ctx, "acc/7", 3); err != nil {
		t.Fatalf("AccountPage() failed: %v", err)
	}

	want := []string{"/transactions/c/card-1?page=0", "/transactions/a/acc%2F7?page=3"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	if _, err := feed.CardPage(ctx, "", 0); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("CardPage() without id error = %v", err)
	}
}

func TestTransaction_DisplayAmount(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{TypeDeposit, "+$12.50"},
		{TypeCredit, "+$12.50"},
		{TypeTransfer, "-$12.50"},
		{TypeDebit, "-$12.50"},
		{TypeConversion, "-$12.50"},
		{"MYSTERY", "-$12.50"},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			tx := Transaction{Type: tt.typ, Amount: decimal.RequireFromString("12.5")}
			if got := tx.DisplayAmount(); got != tt.want {
				t.Errorf("DisplayAmount() = %q, want %q", got, tt.want)
			}
		})
	}
}
