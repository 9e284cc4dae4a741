// Package forwarder builds and executes the single outbound HTTP request
// for one chosen upstream.
package forwarder

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// Response is the classified result of one forwarding attempt.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports whether StatusCode is in the 2xx range, per spec §4.3's
// classification rule: any status outside 2xx is a retry-triggering failure.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Pipeline issues one outbound request per Forward call. It holds a single
// shared, connection-pooled client — spec §4.4 only requires "a fresh
// outbound client" in the sense of no cross-request session stickiness,
// which a pooled transport already satisfies.
type Pipeline struct {
	client *http.Client
}

// New builds a Pipeline with a sane default outbound timeout. Deployments
// needing a different value should use NewWithClient.
func New() *Pipeline {
	return &Pipeline{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// NewWithClient builds a Pipeline around a caller-supplied client, for tests
// or deployments that need custom TLS/transport configuration.
func NewWithClient(client *http.Client) *Pipeline {
	return &Pipeline{client: client}
}

// Forward sends one request to targetURL and returns the upstream's full
// response. Header forwarding is deliberately limited to Content-Type, per
// spec §4.4 / §9's open question on header passthrough. Cancellation of ctx
// aborts the in-flight request.
func (p *Pipeline) Forward(ctx context.Context, method, targetURL string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
