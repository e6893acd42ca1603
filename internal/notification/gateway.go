package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayNotifier delivers messages through an HTTP messaging gateway that
// fronts the SMS and email providers.
type GatewayNotifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGatewayNotifier builds a notifier for the given gateway endpoint.
func NewGatewayNotifier(baseURL, apiKey string) *GatewayNotifier {
	return &GatewayNotifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayRequest struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Body    string `json:"body"`
}

// Send posts the message to the gateway. Any non-2xx response is a delivery
// failure.
func (n *GatewayNotifier) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(gatewayRequest{
		Channel: string(message.Channel),
		To:      message.Destination,
		Body:    message.Body,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification gateway returned %d", resp.StatusCode)
	}
	return nil
}
