package palletsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal REST client for the downstream pallet management API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a pallet API client.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("palletsync: empty base url")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// InboundRecord is the downstream inbound payload.
type InboundRecord struct {
	PalletID    string  `json:"pallet_id"`
	CompanyName string  `json:"company_name"`
	ProductName string  `json:"product_name"`
	InDate      string  `json:"in_date"`
	Quantity    float64 `json:"quantity"`
	IsService   bool    `json:"is_service"`
	Notes       string  `json:"notes,omitempty"`
}

// OutboundRecord is the downstream outbound payload.
type OutboundRecord struct {
	PalletID    string  `json:"pallet_id"`
	CompanyName string  `json:"company_name"`
	ProductName string  `json:"product_name"`
	OutDate     string  `json:"out_date"`
	Quantity    float64 `json:"quantity"`
	IsService   bool    `json:"is_service"`
	Notes       string  `json:"notes,omitempty"`
}

// PushInbound forwards an inbound record.
func (c *Client) PushInbound(ctx context.Context, record InboundRecord) error {
	if record.PalletID == "" {
		return errors.New("palletsync: empty pallet id")
	}
	return c.doJSON(ctx, http.MethodPost, "/api/pallets/inbound", record, nil)
}

// PushOutbound forwards an outbound record.
func (c *Client) PushOutbound(ctx context.Context, record OutboundRecord) error {
	if record.PalletID == "" {
		return errors.New("palletsync: empty pallet id")
	}
	return c.doJSON(ctx, http.MethodPost, "/api/pallets/outbound", record, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("palletsync: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
