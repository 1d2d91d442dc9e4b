package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer is the part of *http.Client the HTTP probe needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPOption configures NewHTTPProbe.
type HTTPOption func(*httpProbe)

type httpProbe struct {
	client  HTTPDoer
	method  string
	header  http.Header
	allowed map[int]struct{}
	check   func(*http.Response) error
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client HTTPDoer) HTTPOption {
	return func(p *httpProbe) {
		if client != nil {
			p.client = client
		}
	}
}

// WithMethod sets the request method. GET is the default.
func WithMethod(method string) HTTPOption {
	return func(p *httpProbe) {
		if m := strings.ToUpper(strings.TrimSpace(method)); m != "" {
			p.method = m
		}
	}
}

// WithHeader adds a request header, for example the API key of an upstream
// service.
func WithHeader(key, value string) HTTPOption {
	return func(p *httpProbe) {
		p.header.Add(key, value)
	}
}

// WithAllowedStatuses accepts exactly the given statuses instead of any 2xx.
func WithAllowedStatuses(statuses ...int) HTTPOption {
	return func(p *httpProbe) {
		if len(statuses) == 0 {
			return
		}
		p.allowed = make(map[int]struct{}, len(statuses))
		for _, status := range statuses {
			p.allowed[status] = struct{}{}
		}
	}
}

// WithResponseCheck runs check on every accepted response.
func WithResponseCheck(check func(*http.Response) error) HTTPOption {
	return func(p *httpProbe) {
		p.check = check
	}
}

// NewHTTPProbe requests target and fails unless the upstream answers with an
// accepted status.
func NewHTTPProbe(name, target string, opts ...HTTPOption) Func {
	p := &httpProbe{
		client: http.DefaultClient,
		method: http.MethodGet,
		header: http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	target = strings.TrimSpace(target)

	return func(ctx context.Context) error {
		if target == "" {
			return fmt.Errorf("%s probe: target URL is required", name)
		}

		req, err := http.NewRequestWithContext(contextOrBackground(ctx), p.method, target, nil)
		if err != nil {
			return fmt.Errorf("%s probe: build request: %w", name, err)
		}
		for key, values := range p.header {
			req.Header[key] = append([]string(nil), values...)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s probe request failed: %w", name, err)
		}
		defer resp.Body.Close()

		if !p.accepts(resp.StatusCode) {
			return fmt.Errorf("%s probe: unexpected status %d %s", name, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if p.check != nil {
			if err := p.check(resp); err != nil {
				return fmt.Errorf("%s probe: %w", name, err)
			}
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
}

func (p *httpProbe) accepts(status int) bool {
	if p.allowed == nil {
		return status >= 200 && status < 300
	}
	_, ok := p.allowed[status]
	return ok
}
