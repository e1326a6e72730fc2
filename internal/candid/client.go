// Package candid talks to the Candid grants transactions API.
package candid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/logging"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TransactionsPath is the endpoint queried for grant transactions.
const TransactionsPath = "/grants/v1/transactions"

// KeyHeader carries the API key on every request.
const KeyHeader = "Subscription-Key"

// RequestObserver is told about every HTTP attempt the client makes.
// outcome is the status code as text, or "error" when no response arrived.
type RequestObserver interface {
	ObserveRequest(outcome string, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	UserAgent  string
	Logger     *zap.Logger
	Observer   RequestObserver
}

// Client fetches result pages. The API key is fixed at construction.
type Client struct {
	client   *resty.Client
	observer RequestObserver
}

// New creates a Client. Only transport failures are retried; HTTP error
// statuses are returned on the first attempt.
func New(opts Options) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetHeader(KeyHeader, opts.APIKey)
	client.SetHeader("accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Logger != nil {
		client.SetLogger(opts.Logger.Sugar())
	}

	client.SetRetryCount(opts.RetryCount)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(4 * opts.RetryWait)
	client.AddRetryCondition(func(_ *resty.Response, err error) bool {
		return err != nil
	})

	c := &Client{client: client, observer: opts.Observer}
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.observe(fmt.Sprintf("%d", resp.StatusCode()), resp.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, _ error) {
		c.observe("error", time.Since(req.Time))
	})
	return c
}

func (c *Client) observe(outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(outcome, elapsed)
	}
}

// Fetch sends exactly one request for the given page and returns the body
// as an opaque ResultSet.
func (c *Client) Fetch(ctx context.Context, f domain.SearchFilter, pageNum int) (*domain.ResultSet, error) {
	p, err := c.fetchPage(ctx, f, pageNum)
	if err != nil {
		return nil, err
	}
	return &domain.ResultSet{
		Payload:   p.raw,
		TotalHits: p.totalHits,
		NumPages:  p.numPages,
		FirstPage: pageNum,
		LastPage:  pageNum,
		RowCount:  len(p.rows),
	}, nil
}

// FetchPages fetches up to count pages starting at first and combines their
// rows. A single page is returned verbatim, as Fetch would. Fetching stops
// early at the last page the provider reports. Any failing page fails the
// whole call.
func (c *Client) FetchPages(ctx context.Context, f domain.SearchFilter, first, count int) (*domain.ResultSet, error) {
	if first < 1 {
		first = 1
	}
	if count <= 1 {
		return c.Fetch(ctx, f, first)
	}

	logger := logging.FromContext(ctx)
	agg := aggregate{FirstPage: first, Grants: []json.RawMessage{}}

	last := first + count - 1
	for pageNum := first; pageNum <= last; pageNum++ {
		p, err := c.fetchPage(ctx, f, pageNum)
		if err != nil {
			return nil, err
		}
		if !p.hasData {
			return nil, errors.NewMalformedResponseError(
				fmt.Sprintf("page %d has no \"data\" object to combine", pageNum), nil)
		}

		agg.TotalHits = p.totalHits
		agg.NumPages = p.numPages
		agg.LastPage = pageNum
		agg.PagesFetched++
		agg.Grants = append(agg.Grants, p.rows...)

		logger.Debug("fetched page",
			zap.Int("page", pageNum), zap.Int("rows", len(p.rows)), zap.Int("num_pages", p.numPages))

		if len(p.rows) == 0 || pageNum >= p.numPages {
			break
		}
	}

	payload, err := json.Marshal(agg)
	if err != nil {
		return nil, errors.NewMalformedResponseError("could not combine pages", err)
	}
	return &domain.ResultSet{
		Payload:   payload,
		TotalHits: agg.TotalHits,
		NumPages:  agg.NumPages,
		FirstPage: agg.FirstPage,
		LastPage:  agg.LastPage,
		RowCount:  len(agg.Grants),
	}, nil
}

func (c *Client) fetchPage(ctx context.Context, f domain.SearchFilter, pageNum int) (*page, error) {
	operation := fmt.Sprintf("GET %s page %d", TransactionsPath, pageNum)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(BuildQueryParams(f, pageNum)).
		Get(TransactionsPath)
	if err != nil {
		return nil, errors.NewRequestError(operation, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, errors.NewAuthError(status, errorMessage(resp.Body(), resp.Status()))
	case status < 200 || status > 299:
		return nil, errors.NewAPIError(status, errorMessage(resp.Body(), resp.Status())).
			WithContext("operation", operation)
	}

	return parsePage(resp.Body())
}
