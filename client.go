package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for page fetches and form submissions.
// One cookie jar spans both, so a session cookie set while fetching the page
// carries into the submit.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func NewClient(timeout time.Duration, rateLimit int, userAgent string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Allow up to 10 redirects
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &Client{
		http:      client,
		limiter:   rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		userAgent: userAgent,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// FetchPage retrieves the body of the page holding the form.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	return body, nil
}

// SubmitForm sends values to action with standard form encoding: a query
// string for GET, an urlencoded body for everything else.  2xx/3xx responses
// count as accepted; 4xx and 5xx map to distinct submission errors.  No
// retries are attempted.
func (c *Client) SubmitForm(ctx context.Context, method, action string, values url.Values) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ServerSubmitError{Err: err}
	}

	var req *http.Request
	var err error
	if method == http.MethodGet {
		target := action
		if encoded := values.Encode(); encoded != "" {
			sep := "?"
			if strings.Contains(action, "?") {
				sep = "&"
			}
			target = action + sep + encoded
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, action, strings.NewReader(values.Encode()))
	}
	if err != nil {
		return &ServerSubmitError{Err: err}
	}

	c.setHeaders(req)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ServerSubmitError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return &ServerSubmitError{Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &ClientSubmitError{Status: resp.StatusCode}
	}
	return nil
}
