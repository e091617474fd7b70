// Package assistant proxies tool calls to the Python AI microservice over
// its JSON-RPC HTTP endpoint. One attempt per client request; the breaker
// only short-circuits calls while the upstream is known to be down.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "mysre-backend/pkg/errors"
)

const rpcPath = "/mcp"

// Client calls named tools on the AI microservice.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	reqID   atomic.Int64
}

// NewClient builds a client for the service at baseURL (PY_URL).
func NewClient(baseURL string, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "assistant",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 30 * time.Second,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("assistant breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &Client{
		baseURL: baseURL,
		// Per-call deadlines come from the request context; no client-wide
		// timeout on top.
		http:    &http.Client{},
		breaker: breaker,
		logger:  logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// CallTool invokes the named tool with arguments and parses the text content
// of the result as JSON into out. Timeout bounds the whole round trip.
func (c *Client) CallTool(ctx context.Context, tool string, arguments map[string]any, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.reqID.Add(1),
		Method:  "tools/call",
		Params: map[string]any{
			"name":      tool,
			"arguments": arguments,
		},
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return apperrors.NewUpstreamError("AI service unavailable", err)
		}
		c.logger.Error("assistant call failed", zap.String("tool", tool), zap.Error(err))
		return apperrors.NewUpstreamError("AI service request failed", err)
	}

	response := raw.(*rpcResponse)
	if response.Error != nil {
		return apperrors.NewUpstreamError(response.Error.Message, nil)
	}

	var result toolResult
	if err := json.Unmarshal(response.Result, &result); err != nil || len(result.Content) == 0 {
		return apperrors.NewUpstreamError("Invalid response format", err)
	}
	if err := json.Unmarshal([]byte(result.Content[0].Text), out); err != nil {
		return apperrors.NewUpstreamError("Invalid response format", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload rpcRequest) (*rpcResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d from AI service", resp.StatusCode)
	}

	var response rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode AI service response: %w", err)
	}
	return &response, nil
}
