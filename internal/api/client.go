// Package api is the typed client for the study service's remote procedures.
// Calls follow the tRPC GET convention: /api/trpc/{procedure}?input={json}.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	procRecent       = "recent.get"
	procSession      = "session.get"
	procSetShareID   = "studySets.getShareId"
	procFolderShare  = "folders.getShareIdByUsername"
	defaultTimeout   = 10 * time.Second
	defaultRetryWait = 200 * time.Millisecond
	maxBodyBytes     = 4 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Timeout bounds each attempt. Zero means 10s.
	Timeout time.Duration
	// Retries is the number of extra attempts after a transport error or a
	// 5xx/429 response. Zero disables retrying.
	Retries int
	// RetryWait is the first backoff interval. Zero means 200ms.
	RetryWait  time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the study service. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	token     string
	http      *http.Client
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	logger    *zap.Logger
	recent    singleflight.Group
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", opts.BaseURL)
	}
	c := &Client{
		base:      base,
		token:     opts.Token,
		http:      opts.HTTPClient,
		timeout:   opts.Timeout,
		retries:   opts.Retries,
		retryWait: opts.RetryWait,
		logger:    opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retries < 0 {
		c.retries = 0
	}
	if c.retryWait <= 0 {
		c.retryWait = defaultRetryWait
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Recent fetches the recently viewed sets and folders. Concurrent callers
// share one in-flight request.
func (c *Client) Recent(ctx context.Context) (RecentItems, error) {
	v, err, _ := c.recent.Do(procRecent, func() (any, error) {
		var out RecentItems
		if err := c.call(ctx, procRecent, nil, &out); err != nil {
			return RecentItems{}, err
		}
		return out, nil
	})
	if err != nil {
		return RecentItems{}, err
	}
	return v.(RecentItems), nil
}

// Session returns the signed-in user, if any.
func (c *Client) Session(ctx context.Context) (Session, error) {
	var out Session
	if err := c.call(ctx, procSession, nil, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// StudySetShareID returns the short share id for a study set.
func (c *Client) StudySetShareID(ctx context.Context, setID string) (string, error) {
	if setID == "" {
		return "", fmt.Errorf("api %s: empty set id", procSetShareID)
	}
	var out string
	if err := c.call(ctx, procSetShareID, setID, &out); err != nil {
		return "", err
	}
	return out, nil
}

// FolderShareID returns the short share id for a folder addressed by its
// owner's username (without @) and its slug or id.
func (c *Client) FolderShareID(ctx context.Context, username, idOrSlug string) (string, error) {
	if username == "" || idOrSlug == "" {
		return "", fmt.Errorf("api %s: username and folder are required", procFolderShare)
	}
	var out string
	in := folderShareInput{IDOrSlug: idOrSlug, Username: username}
	if err := c.call(ctx, procFolderShare, in, &out); err != nil {
		return "", err
	}
	return out, nil
}

type envelope struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Data    struct {
			Code       string `json:"code"`
			HTTPStatus int    `json:"httpStatus"`
		} `json:"data"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, procedure string, input, out any) error {
	endpoint := c.base.JoinPath("api", "trpc", procedure)
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("api %s: encode input: %w", procedure, err)
		}
		endpoint.RawQuery = url.Values{"input": {string(raw)}}.Encode()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	policy.MaxElapsedTime = 0
	var b backoff.BackOff = backoff.WithMaxRetries(policy, uint64(c.retries))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := c.do(ctx, procedure, endpoint.String(), out)
		if err == nil {
			return nil
		}
		if !retryable(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("api call failed, retrying",
			zap.String("procedure", procedure),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return backoff.RetryNotify(op, b, notify)
}

func (c *Client) do(ctx context.Context, procedure, endpoint string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("api %s: build request: %w", procedure, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api %s: %w", procedure, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("api %s: read body: %w", procedure, err)
	}
	c.logger.Debug("api call",
		zap.String("procedure", procedure),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &Error{Procedure: procedure, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("api %s: decode response: %w", procedure, err)
	}
	if env.Error != nil || resp.StatusCode >= 400 {
		e := &Error{Procedure: procedure, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			e.Message = env.Error.Message
			e.Code = env.Error.Data.Code
			if env.Error.Data.HTTPStatus != 0 {
				e.Status = env.Error.Data.HTTPStatus
			}
		}
		return e
	}
	if env.Result == nil {
		return fmt.Errorf("api %s: response has no result", procedure)
	}
	if err := json.Unmarshal(env.Result.Data, out); err != nil {
		return fmt.Errorf("api %s: decode data: %w", procedure, err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	// Transport failures and per-attempt timeouts are worth another try;
	// decode failures are not.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
