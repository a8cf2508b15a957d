package ledger

import (
	"context"
	"net/url"
)

// ClientInterface defines the methods required from the Ledger API client
type ClientInterface interface {
	Do(ctx context.Context, req Request) (*Response, error)
	Get(ctx context.Context, path string, query url.Values, out any) (*Response, error)
	Post(ctx context.Context, path string, query url.Values, body, out any) (*Response, error)
}
