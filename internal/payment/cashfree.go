package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ms-canteen/internal/config"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"
)

// CashfreeClient talks to the Cashfree payment-links REST API. It is
// the default gateway; a Stripe implementation exists for deployments
// outside Cashfree's coverage.
type CashfreeClient struct {
	baseURL    string
	clientID   string
	secret     string
	apiVersion string
	returnURL  string
	client     *http.Client
	log        *logger.Logger
}

func NewCashfreeClient(cfg config.PaymentConfig, baseURL string, client *http.Client, log *logger.Logger) *CashfreeClient {
	return &CashfreeClient{
		baseURL:    cfg.CashfreeBaseURL,
		clientID:   cfg.CashfreeClientID,
		secret:     cfg.CashfreeSecret,
		apiVersion: cfg.CashfreeAPIVersion,
		returnURL:  baseURL + "/api/payment/callback",
		client:     client,
		log:        log,
	}
}

type cashfreeLinkRequest struct {
	LinkID          string                `json:"link_id"`
	LinkAmount      float64               `json:"link_amount"`
	LinkCurrency    string                `json:"link_currency"`
	LinkPurpose     string                `json:"link_purpose"`
	CustomerDetails cashfreeCustomer      `json:"customer_details"`
	LinkNotify      cashfreeNotify        `json:"link_notify"`
	LinkMeta        map[string]string     `json:"link_meta,omitempty"`
}

type cashfreeCustomer struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
}

type cashfreeNotify struct {
	SendSMS      bool `json:"send_sms"`
	SendWhatsApp bool `json:"send_whatsapp"`
}

type cashfreeLinkResponse struct {
	LinkID     string `json:"link_id"`
	LinkURL    string `json:"link_url"`
	LinkStatus string `json:"link_status"`
}

func (c *CashfreeClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.secret)
	req.Header.Set("x-api-version", c.apiVersion)
}

func (c *CashfreeClient) CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment, customer *models.User) (string, string, error) {
	body := cashfreeLinkRequest{
		LinkID:       payment.ID,
		LinkAmount:   payment.Amount,
		LinkCurrency: "INR",
		LinkPurpose:  fmt.Sprintf("Canteen order %s", order.OrderNo),
		CustomerDetails: cashfreeCustomer{
			CustomerPhone: customer.Phone,
			CustomerName:  customer.Name,
		},
		LinkNotify: cashfreeNotify{SendSMS: false, SendWhatsApp: false},
		LinkMeta: map[string]string{
			"return_url": fmt.Sprintf("%s?order_id=%s", c.returnURL, order.ID),
		},
	}

	reqBody, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/links", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", "", fmt.Errorf("build link request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("cashfree link request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.log.LogPayment("CASHFREE", order.OrderNo, fmt.Sprintf("link creation failed: status %d body %s", resp.StatusCode, raw))
		return "", "", fmt.Errorf("cashfree link creation failed: status %d", resp.StatusCode)
	}

	var linkResp cashfreeLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return "", "", fmt.Errorf("decode link response: %w", err)
	}

	c.log.LogPayment("CASHFREE", order.OrderNo, fmt.Sprintf("payment link %s created", linkResp.LinkID))
	return linkResp.LinkID, linkResp.LinkURL, nil
}

// LinkStatus fetches the current state of a payment link, used to
// reconcile payments when the callback never arrived.
func (c *CashfreeClient) LinkStatus(ctx context.Context, linkID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/links/"+linkID, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cashfree status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cashfree status failed: status %d", resp.StatusCode)
	}

	var linkResp cashfreeLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return linkResp.LinkStatus, nil
}
