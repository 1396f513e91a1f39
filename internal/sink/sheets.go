// internal/sink/sheets.go
//
// Spreadsheet webhook forwarder.
//
/*
Context
--------
Accepted submissions are mirrored, best-effort, to an Apps Script
webhook that appends one spreadsheet row per call.  The contract is a
single JSON POST:

	{"type": "mrd_single_submit", "submission": {<flattened record>}}

and success is HTTP 200 plus a body containing `"success": true`.
Anything else—non-200, timeout, malformed body—counts as a forward
failure.

Failure policy
--------------
One attempt per record.  No retry, no backoff, no queue.  The outcome
is folded into the intake response's sheet_updated flag and a metric;
it never fails the local append.  Callers must invoke Forward only
after the store lock has been released so a slow webhook cannot block
other intake requests.

Notes
-----
  • TLS certificate validation is standard.  The webhook is public
    Google infrastructure; there is no reason to skip verification.
*/
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// payloadType tags every forward so the receiving script can ignore
// unrelated POSTs.
const payloadType = "mrd_single_submit"

// Client forwards flattened records to the webhook.  A zero-URL client
// is valid and reports every forward as failed, which keeps dev
// environments offline without special casing.
type Client struct {
	url string
	hc  *http.Client
}

// New returns a Client with the given single-attempt timeout.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// Forward posts one flattened submission and reports success.  Errors
// are logged at warn level and swallowed; the boolean is the only
// signal callers get.
func (c *Client) Forward(ctx context.Context, submission map[string]any) bool {
	if c.url == "" {
		return false
	}

	body, err := json.Marshal(map[string]any{
		"type":       payloadType,
		"submission": submission,
	})
	if err != nil {
		zap.S().Warnw("sheet forward marshal failed", "err", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		zap.S().Warnw("sheet forward request build failed", "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		zap.S().Warnw("sheet forward failed", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.S().Warnw("sheet forward rejected", "status", resp.StatusCode)
		return false
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		zap.S().Warnw("sheet forward bad response body", "err", err)
		return false
	}
	return result.Success
}
