package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout  = 15 * time.Second
	requestIDHeader = "X-Request-ID"
	authHeader      = "Authorization"
)

var (
	ledgerTracer       = otel.Tracer("bankclient/ledger")
	ledgerMeter        = otel.Meter("bankclient/ledger")
	requestDuration, _ = ledgerMeter.Float64Histogram("ledger.client.request.duration",
		metric.WithDescription("Ledger API request duration in seconds"),
		metric.WithUnit("s"),
	)
	requestTotal, _ = ledgerMeter.Int64Counter("ledger.client.request.total",
		metric.WithDescription("Total ledger API requests"),
	)
)

// TokenSource supplies the credential attached to each request. An empty
// token sends the request anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Request describes one call relative to the ledger base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a successful (2xx) ledger response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// Client is the single gateway to the Ledger API. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

type Option func(*Client)

// WithTimeout bounds each request end to end.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a ledger client rooted at baseURL. tokens may be nil for
// a client that only makes anonymous calls.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET and decodes the body into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*Response, error) {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with an optional JSON body and decodes the response
// into out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out any) (*Response, error) {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Query: query, Body: body}, out)
}

func (c *Client) call(ctx context.Context, req Request, out any) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return resp, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
	}
	return resp, nil
}

// Do sends req. Non-2xx responses come back as *APIError and failures to
// obtain a response as *TransportError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	requestID := uuid.NewString()

	ctx, span := ledgerTracer.Start(ctx, "ledger "+req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("ledger.path", req.Path),
			attribute.String("ledger.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.do(ctx, req, requestID)

	status := 0
	switch {
	case resp != nil:
		status = resp.Status
	case err != nil:
		if apiErr, ok := AsAPIError(err); ok {
			status = apiErr.Status
		}
	}

	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("ledger.path", req.Path),
		attribute.Int("http.status_code", status),
	)
	requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	requestTotal.Add(ctx, 1, attrs)

	log.WithFields(log.Fields{
		"method":     req.Method,
		"path":       req.Path,
		"status":     status,
		"request_id": requestID,
		"duration":   time.Since(start),
	}).Debug("ledger request")

	return resp, err
}

func (c *Client) do(ctx context.Context, req Request, requestID string) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(requestIDHeader, requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &TransportError{Op: "read session token", Err: err}
		}
		// Sent exactly as the ledger issued it, scheme included.
		if token != "" {
			httpReq.Header.Set(authHeader, token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: req.Method + " " + req.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp ErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil {
			apiErr.Message = strings.TrimSpace(errResp.Message)
			if errResp.Error != "" {
				log.Debugf("ledger error %d on %s %s: %s", resp.StatusCode, req.Method, req.Path, errResp.Error)
			}
		}
		return nil, apiErr
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
	}, nil
}
