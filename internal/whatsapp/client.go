package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"ms-canteen/internal/config"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"

	"github.com/google/uuid"
)

// Client talks to the Airtel IQ WhatsApp gateway: free-form session
// texts for the conversation, media upload plus template send for
// order confirmations.
type Client struct {
	baseURL      string
	username     string
	password     string
	sourceNumber string
	templateID   string
	enabled      bool
	client       *http.Client
	log          *logger.Logger
}

func NewClient(cfg config.WhatsAppConfig, client *http.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		username:     cfg.Username,
		password:     cfg.Password,
		sourceNumber: cfg.SourceNumber,
		templateID:   cfg.TemplateID,
		enabled:      cfg.Enabled,
		client:       client,
		log:          log,
	}
}

type textMessageRequest struct {
	SessionID string      `json:"sessionId"`
	To        string      `json:"to"`
	From      string      `json:"from"`
	Message   textPayload `json:"message"`
}

type textPayload struct {
	Text string `json:"text"`
}

// SendText delivers a free-form session message, the reply channel for
// the ordering conversation.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	if !c.enabled {
		c.log.LogChat(to, "whatsapp disabled, skipping text send")
		return nil
	}

	body := textMessageRequest{
		SessionID: uuid.NewString(),
		To:        to,
		From:      c.sourceNumber,
		Message:   textPayload{Text: text},
	}
	reqBody, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp send failed: status %d body %s", resp.StatusCode, raw)
	}
	return nil
}

type mediaUploadResponse struct {
	ID string `json:"id"`
}

// UploadMedia pushes a PNG to the gateway and returns the media id for
// template attachment.
func (c *Client) UploadMedia(ctx context.Context, filename string, png []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/media/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp media upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("media upload failed: status %d body %s", resp.StatusCode, raw)
	}

	var uploadResp mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return uploadResp.ID, nil
}

type templateMessageRequest struct {
	SessionID       string           `json:"sessionId"`
	To              string           `json:"to"`
	From            string           `json:"from"`
	Message         templatePayload  `json:"message"`
	MediaAttachment *mediaAttachment `json:"mediaAttachment,omitempty"`
}

type templatePayload struct {
	TemplateID string   `json:"templateId"`
	Variables  []string `json:"variables"`
}

type mediaAttachment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// sendTemplate delivers a pre-approved template message, optionally
// with a media attachment.
func (c *Client) sendTemplate(ctx context.Context, to string, variables []string, mediaID string) error {
	body := templateMessageRequest{
		SessionID: uuid.NewString(),
		To:        to,
		From:      c.sourceNumber,
		Message: templatePayload{
			TemplateID: c.templateID,
			Variables:  variables,
		},
	}
	if mediaID != "" {
		body.MediaAttachment = &mediaAttachment{ID: mediaID, Type: "IMAGE"}
	}
	reqBody, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send/template", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("build template request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp template send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("template send failed: status %d body %s", resp.StatusCode, raw)
	}
	return nil
}

// SendOrderConfirmation uploads the order QR and sends the confirmation
// template. Failures are the caller's to log; the order stands either
// way.
func (c *Client) SendOrderConfirmation(ctx context.Context, customer *models.User, order *models.Order, qrPNG []byte) error {
	if !c.enabled {
		c.log.LogChat(customer.Phone, "whatsapp disabled, skipping order confirmation")
		return nil
	}

	mediaID := ""
	if len(qrPNG) > 0 {
		id, err := c.UploadMedia(ctx, fmt.Sprintf("order-%s.png", order.OrderNo), qrPNG)
		if err != nil {
			c.log.LogChat(customer.Phone, fmt.Sprintf("qr upload failed, sending without media: %v", err))
		} else {
			mediaID = id
		}
	}

	variables := []string{
		customer.Name,
		order.OrderNo,
		fmt.Sprintf("%.2f", order.TotalAmount),
	}
	return c.sendTemplate(ctx, customer.Phone, variables, mediaID)
}
