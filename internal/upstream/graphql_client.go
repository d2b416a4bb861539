package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ohler55/ojg/oj"
)

// GraphQLRequest is the body of a GraphQL POST.
type GraphQLRequest struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName,omitempty"`
	Variables     json.RawMessage `json:"variables,omitempty"`
}

// GraphQLClient posts queries to the GraphQL edge endpoint.
// It holds no per-request state and is safe for concurrent use.
type GraphQLClient struct {
	Endpoint   string
	APIKey     string
	HttpClient *http.Client
}

// NewGraphQLClient creates a client for endpoint.
func NewGraphQLClient(endpoint, apiKey string, timeout time.Duration) *GraphQLClient {
	return &GraphQLClient{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// Do posts req and returns the response body as a generic tree (maps,
// slices and scalars). GraphQL-level errors stay in the tree.
func (c *GraphQLClient) Do(ctx context.Context, req GraphQLRequest, headers http.Header) (map[string]any, error) {
	const op = "graphql"
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: c.Endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for name, values := range headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set(APIKeyKey, c.APIKey)
	}

	resp, err := c.HttpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: c.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: c.Endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindStatus, Op: op, URL: c.Endpoint, StatusCode: resp.StatusCode}
	}

	tree, err := oj.Parse(body)
	if err != nil {
		return nil, &Error{Kind: KindPayload, Op: op, URL: c.Endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, &Error{Kind: KindPayload, Op: op, URL: c.Endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("response is %T, not an object", tree)}
	}
	return obj, nil
}
