// Package httpclient sends the agent's one-shot JSON POSTs (basic-info
// upload, exec callback) with retry, trimmed from the teacher's httpcli
// pattern down to the single POST-JSON operation this agent needs.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const userAgent = "komari-agent-go"

// Client posts JSON bodies to the control plane, retrying transient
// failures via go-retryablehttp the way the teacher's httpcli client does.
type Client struct {
	rc *retryablehttp.Client
}

// New builds a Client whose underlying transport uses tlsCfg (nil for
// plaintext). Retry logging is silenced — the caller logs success/failure
// itself at the call site, matching spec.md's "log but non-fatal" policy
// for basic-info upload failures.
func New(tlsCfg *tls.Config) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	if tlsCfg != nil {
		transport := rc.HTTPClient.Transport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsCfg
		rc.HTTPClient.Transport = transport
	}
	return &Client{rc: rc}
}

// PostJSON marshals body and POSTs it to url with a 10s timeout, returning
// an error if the request could not be sent or the response was not 2xx.
func (c *Client) PostJSON(ctx context.Context, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.rc.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
