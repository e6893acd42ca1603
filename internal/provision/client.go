package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client provisions reserved virtual accounts through the payment provider's
// HTTP API.
type Client struct {
	baseURL      string
	apiKey       string
	contractCode string
	httpClient   *http.Client
}

// NewClient builds a provider client.
func NewClient(baseURL, apiKey, contractCode string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		contractCode: contractCode,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

type reserveAccountRequest struct {
	AccountReference string `json:"accountReference"`
	AccountName      string `json:"accountName"`
	CurrencyCode     string `json:"currencyCode"`
	ContractCode     string `json:"contractCode"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerName     string `json:"customerName"`
}

type reserveAccountResponse struct {
	ResponseBody struct {
		AccountNumber string `json:"accountNumber"`
		BankName      string `json:"bankName"`
	} `json:"responseBody"`
}

// Provision reserves a virtual account for the customer.
func (c *Client) Provision(ctx context.Context, req Request) (VirtualAccount, error) {
	payload, err := json.Marshal(reserveAccountRequest{
		AccountReference: req.Reference,
		AccountName:      req.Name,
		CurrencyCode:     "NGN",
		ContractCode:     c.contractCode,
		CustomerEmail:    req.Email,
		CustomerName:     req.Name,
	})
	if err != nil {
		return VirtualAccount{}, fmt.Errorf("encode provision request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/reserved-accounts", bytes.NewReader(payload))
	if err != nil {
		return VirtualAccount{}, fmt.Errorf("build provision request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return VirtualAccount{}, fmt.Errorf("provision account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VirtualAccount{}, fmt.Errorf("provider returned %d reserving account", resp.StatusCode)
	}

	var decoded reserveAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return VirtualAccount{}, fmt.Errorf("decode provision response: %w", err)
	}
	if decoded.ResponseBody.AccountNumber == "" {
		return VirtualAccount{}, fmt.Errorf("provider response missing account number")
	}

	return VirtualAccount{
		AccountNumber: decoded.ResponseBody.AccountNumber,
		BankName:      decoded.ResponseBody.BankName,
	}, nil
}
