package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/atlas/pkg/httputil"
)

// Client-side messages.
const (
	MsgNetworkError = "Network error - please try again"
	MsgFailed       = "Submission failed"
)

// SubmitPath is the server route that accepts drafts.
const SubmitPath = "/api/submit-project"

// Client posts drafts to a running atlas server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httputil.NewHTTPClient(15 * time.Second)}
}

// Submit posts d. Like [Service.Submit] it reports every failure through
// the result: transport errors become [MsgNetworkError] and rejected
// submissions carry the server's error message.
func (c *Client) Submit(ctx context.Context, d Draft) Result {
	body, err := json.Marshal(d)
	if err != nil {
		return Result{Error: MsgFailed}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+SubmitPath, bytes.NewReader(body))
	if err != nil {
		return Result{Error: MsgNetworkError}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{Error: MsgNetworkError}
	}
	defer resp.Body.Close()

	var res Result
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{Error: MsgNetworkError}
	}
	decodeErr := json.Unmarshal(data, &res)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := res.Error
		if decodeErr != nil || msg == "" {
			msg = MsgFailed
		}
		return Result{Error: msg}
	}
	if decodeErr != nil || !res.Success {
		return Result{Error: MsgFailed}
	}
	return Result{Success: true, ID: res.ID}
}
