package payments

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

const defaultPayMongoBaseURL = "https://api.paymongo.com/v1"

// PayMongoClient creates payment sources against the PayMongo API.
// Amounts are sent in centavos (PHP minor unit).
type PayMongoClient struct {
	secretKey string
	appURL    string
	baseURL   string
	client    *http.Client
	logger    *logger.Logger
}

// Source is the subset of a PayMongo source the storefront needs.
type Source struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
}

// NewPayMongoClient returns nil when secretKey is empty, which the
// payments service treats as "provider not configured".
func NewPayMongoClient(secretKey, appURL string, log *logger.Logger) *PayMongoClient {
	if secretKey == "" {
		return nil
	}
	return &PayMongoClient{
		secretKey: secretKey,
		appURL:    appURL,
		baseURL:   defaultPayMongoBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    log.WithComponent("paymongo"),
	}
}

type sourceRequest struct {
	Data struct {
		Attributes struct {
			Amount   int64  `json:"amount"`
			Type     string `json:"type"`
			Currency string `json:"currency"`
			Redirect struct {
				Success string `json:"success"`
				Failed  string `json:"failed"`
			} `json:"redirect"`
			Description string `json:"description"`
		} `json:"attributes"`
	} `json:"data"`
}

type sourceResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status   string `json:"status"`
			Redirect struct {
				CheckoutURL string `json:"checkout_url"`
			} `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreateSource creates a redirect payment source for the given method
// type and peso amount.
func (c *PayMongoClient) CreateSource(sourceType string, amount decimal.Decimal, description string) (*Source, error) {
	if description == "" {
		description = "Order Payment"
	}

	var req sourceRequest
	req.Data.Attributes.Amount = amount.Shift(2).Round(0).IntPart()
	req.Data.Attributes.Type = sourceType
	req.Data.Attributes.Currency = "PHP"
	req.Data.Attributes.Description = description
	req.Data.Attributes.Redirect.Success = c.appURL + "/cart/payment/success"
	req.Data.Attributes.Redirect.Failed = c.appURL + "/cart/payment/failed"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source request: %v", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/sources", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build source request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %v", err)
	}

	var parsed sourceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := "failed to create payment source"
		if len(parsed.Errors) > 0 && parsed.Errors[0].Detail != "" {
			detail = parsed.Errors[0].Detail
		}
		c.logger.Warn("Provider rejected source creation",
			"status", resp.StatusCode,
			"detail", detail)
		return nil, fmt.Errorf("payment provider error: %s", detail)
	}

	return &Source{
		ID:          parsed.Data.ID,
		CheckoutURL: parsed.Data.Attributes.Redirect.CheckoutURL,
		Status:      parsed.Data.Attributes.Status,
	}, nil
}

// Ping verifies the secret key by listing payment methods.
func (c *PayMongoClient) Ping() error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/payment_methods", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider unreachable: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *PayMongoClient) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.secretKey+":"))
}
