package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ContactPath is where the relay accepts submissions.
const ContactPath = "/api/contact"

// Client submits to a running portfolio server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Submit posts values as JSON. Any answer with a JSON body is returned as a
// Response, including 4xx and 5xx; only an unreachable relay or an
// undecodable body is an error.
func (c *Client) Submit(ctx context.Context, values map[string]string) (Response, error) {
	body, err := json.Marshal(values)
	if err != nil {
		return Response{}, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+ContactPath, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res Response
	status, err := c.do(req, &res)
	if err != nil {
		return Response{}, err
	}
	if status != http.StatusOK && res.OK {
		res.OK = false
	}
	return res, nil
}

// Health calls GET /api/health and returns the server's reported time.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/health", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}
	status, err := c.do(req, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || !out.OK {
		return "", fmt.Errorf("health check: status %d", status)
	}
	return out.Time, nil
}

func (c *Client) do(req *http.Request, v any) (int, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return resp.StatusCode, fmt.Errorf("status %d: decode response: %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}
