package payments

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultFlutterwaveBaseURL = "https://api.flutterwave.com/v3"

// FlutterwaveClient implements FlutterwaveGateway against the v3 REST API.
// Flutterwave ships no Go SDK, so the client is a thin typed wrapper.
type FlutterwaveClient struct {
	SecretKey string
	BaseURL   string

	HTTPClient *http.Client
}

// NewFlutterwaveClient builds a client for the given secret key.
func NewFlutterwaveClient(secretKey string) (*FlutterwaveClient, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("flutterwave secret key is not configured")
	}
	return &FlutterwaveClient{
		SecretKey: secretKey,
		BaseURL:   defaultFlutterwaveBaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type flutterwaveEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID           json.Number `json:"id"`
		Link         string      `json:"link"`
		SubaccountID string      `json:"subaccount_id"`
	} `json:"data"`
}

// InitiatePayment creates a hosted payment link for a one-time charge. When a
// subaccount is attached, a percentage split leaves the platform fee behind.
func (c *FlutterwaveClient) InitiatePayment(ctx context.Context, p FlutterwavePaymentParams) (*Session, error) {
	email := p.CustomerEmail
	if email == "" {
		email = "client@example.com"
	}
	name := p.CustomerName
	if name == "" {
		name = "Client"
	}

	payload := map[string]any{
		"tx_ref":       p.TxRef,
		"amount":       p.Amount,
		"currency":     p.Currency,
		"redirect_url": p.RedirectURL,
		"customer": map[string]string{
			"email": email,
			"name":  name,
		},
		"customizations": map[string]string{
			"title": p.Title,
		},
		"meta": p.Meta,
	}
	if p.SubaccountID != "" {
		payload["subaccounts"] = []map[string]any{
			{
				"id":                      p.SubaccountID,
				"transaction_charge_type": "percentage",
				"transaction_charge":      p.SellerSharePercent,
			},
		}
	}

	var out flutterwaveEnvelope
	if err := c.post(ctx, "/payments", payload, &out); err != nil {
		return nil, err
	}
	if out.Data.Link == "" {
		return nil, errors.New("flutterwave payment response missing link")
	}

	ref := out.Data.ID.String()
	if ref == "" {
		ref = p.TxRef
	}
	return &Session{ID: ref, URL: out.Data.Link}, nil
}

// CreateSubaccount registers a seller payout destination and returns its id.
func (c *FlutterwaveClient) CreateSubaccount(ctx context.Context, p SubaccountParams) (string, error) {
	payload := map[string]any{
		"account_number": p.AccountNumber,
		"account_bank":   p.AccountBank,
		"business_name":  p.BusinessName,
		"split_type":     "percentage",
		"split_value":    p.PercentageCharge,
	}

	var out flutterwaveEnvelope
	if err := c.post(ctx, "/subaccounts", payload, &out); err != nil {
		return "", err
	}

	id := out.Data.SubaccountID
	if id == "" {
		id = out.Data.ID.String()
	}
	if id == "" {
		return "", errors.New("flutterwave subaccount response missing id")
	}
	return id, nil
}

func (c *FlutterwaveClient) post(ctx context.Context, path string, payload any, out *flutterwaveEnvelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("flutterwave request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("flutterwave %s failed: status=%d body=%s", path, resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("flutterwave %s returned invalid JSON: %w", path, err)
	}
	if out.Status != "success" {
		return fmt.Errorf("flutterwave %s rejected: %s", path, out.Message)
	}
	return nil
}

// VerifyFlutterwaveWebhook compares the verif-hash header against the
// configured secret. Flutterwave signs webhooks with a static shared value.
func VerifyFlutterwaveWebhook(signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sig), []byte(secret)) == 1
}
