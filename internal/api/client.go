package api

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

	"github.com/sirupsen/logrus"
)

// TokenSource yields the bearer credential to attach, or "" for none.
type TokenSource interface {
	Token() string
}

// Client is a thin set of request builders over the list API.
// Each method performs exactly one HTTP call and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger

	Auth  *AuthClient
	Lists *ListsClient
	Items *ItemsClient
	Share *ShareClient
}

type Option func(*Client)

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport replaces the transport the credential gate forwards to.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if g, ok := c.http.Transport.(*gate); ok {
			g.next = rt
		}
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logrus.StandardLogger(),
	}
	g := &gate{tokens: tokens, next: http.DefaultTransport}
	c.http = &http.Client{Transport: g, Timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	g.log = c.log

	c.Auth = &AuthClient{c: c}
	c.Lists = &ListsClient{c: c}
	c.Items = &ItemsClient{c: c}
	c.Share = &ShareClient{c: c}
	return c
}

// BaseURL is the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
