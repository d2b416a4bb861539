package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"layout-proxy/internal/layout"
)

const maxBodyBytes = 32 << 20

// LayoutResponse is a successful layout fetch.
type LayoutResponse struct {
	// Body is the payload exactly as received.
	Body        []byte
	ContentType string
	Document    *layout.Document
}

// LayoutClient fetches layout documents from the REST layout service.
// It holds no per-request state and is safe for concurrent use.
type LayoutClient struct {
	BaseURL    string
	Path       string
	APIKey     string
	Keys       []string
	HttpClient *http.Client
}

// NewLayoutClient creates a client for the layout service at baseURL.
func NewLayoutClient(baseURL, path, apiKey string, timeout time.Duration) *LayoutClient {
	return &LayoutClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Path:       "/" + strings.TrimLeft(path, "/"),
		APIKey:     apiKey,
		Keys:       DefaultRequestKeys,
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch requests the layout for req. headers are sent as given. A blank 2xx
// body yields ErrEmptyDocument; every other failure is an *Error.
func (c *LayoutClient) Fetch(ctx context.Context, req LayoutRequest, headers http.Header) (*LayoutResponse, error) {
	if c.APIKey != "" && strings.TrimSpace(req[APIKeyKey]) == "" {
		req = cloneRequest(req)
		req[APIKeyKey] = c.APIKey
	}
	url := BuildURL(c.BaseURL+c.Path, req, c.Keys)
	const op = "fetch layout"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for name, values := range headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &Error{Kind: KindStatus, Op: op, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyDocument
	}

	doc, err := layout.Decode(body)
	if err != nil {
		return nil, &Error{Kind: KindPayload, Op: op, URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return &LayoutResponse{Body: body, ContentType: resp.Header.Get("Content-Type"), Document: doc}, nil
}

func cloneRequest(req LayoutRequest) LayoutRequest {
	out := make(LayoutRequest, len(req)+1)
	for k, v := range req {
		out[k] = v
	}
	return out
}
