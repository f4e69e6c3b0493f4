package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RPCClient is a minimal Ethereum JSON-RPC client used for the
// confirmation-wait step of a submission. go-ethereum's bound contract
// handles calls and transaction submission; receipt polling goes through
// this client so the poll cadence stays in one place.
type RPCClient struct {
	URL          string
	client       *http.Client
	pollInterval time.Duration
}

func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		URL:          url,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
	}
}

// SetPollInterval sets how often WaitForReceipt asks the node for a receipt.
func (r *RPCClient) SetPollInterval(interval time.Duration) {
	r.pollInterval = interval
}

type JSONRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the structured error object a node returns. Data carries the
// provider's nested message when present (e.g. a revert reason).
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// TransactionReceipt is the subset of an Ethereum receipt the pipeline needs.
type TransactionReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockHash       string `json:"blockHash"`
	BlockNumber     string `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
	Status          string `json:"status"`
	From            string `json:"from"`
	To              string `json:"to"`
}

// Succeeded reports whether the receipt's status marks the transaction as
// successfully executed ("0x1") rather than reverted ("0x0").
func (t *TransactionReceipt) Succeeded() bool {
	return t.Status == "0x1"
}

// Call makes a single JSON-RPC call.
func (r *RPCClient) Call(ctx context.Context, method string, params []interface{}) (*JSONRPCResponse, error) {
	request := JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	var response JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		// A proxy or gateway error page is not JSON; keep the status so
		// the failure is attributable.
		return nil, fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if response.Error != nil {
		return nil, response.Error
	}

	return &response, nil
}

// GetTransactionReceipt returns the receipt for txHash, or (nil, nil) when
// the transaction is not yet mined.
func (r *RPCClient) GetTransactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	response, err := r.Call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, err
	}

	if len(response.Result) == 0 || string(response.Result) == "null" {
		return nil, nil
	}

	var receipt TransactionReceipt
	if err := json.Unmarshal(response.Result, &receipt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt: %w", err)
	}

	return &receipt, nil
}

// WaitForReceipt polls until the transaction is mined or ctx ends. No
// timeout of its own is imposed; callers abandon a stuck wait through ctx.
func (r *RPCClient) WaitForReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := r.GetTransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
