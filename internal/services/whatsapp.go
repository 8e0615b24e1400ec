package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/caiotravain/consultorio/internal/config"
)

const graphAPIBase = "https://graph.facebook.com/v18.0"

// maxButtons is the interactive button limit of the WhatsApp Cloud API
const maxButtons = 3

// Button is one interactive reply option; ID comes back as the
// button_reply id on the webhook
type Button struct {
	ID    string
	Title string
}

// MessageSender is the outbound WhatsApp transport
type MessageSender interface {
	SendText(to, body string) error
	SendButtons(to, body string, buttons []Button) error
}

// WhatsAppClient sends messages through the Meta WhatsApp Business
// Cloud API
type WhatsAppClient struct {
	token         string
	phoneNumberID string
	httpClient    *http.Client
}

// NewWhatsAppClient creates a new Cloud API client
func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NormalizePhone strips everything but digits from a phone number
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SendText sends a plain text message
func (c *WhatsAppClient) SendText(to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                NormalizePhone(to),
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	return c.post(payload)
}

// SendButtons sends an interactive message with up to 3 reply buttons
func (c *WhatsAppClient) SendButtons(to, body string, buttons []Button) error {
	if len(buttons) == 0 {
		return c.SendText(to, body)
	}
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}

	actions := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		actions = append(actions, map[string]interface{}{
			"type": "reply",
			"reply": map[string]string{
				"id":    b.ID,
				"title": b.Title,
			},
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                NormalizePhone(to),
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"buttons": actions},
		},
	}
	return c.post(payload)
}

func (c *WhatsAppClient) post(payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIBase, c.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("❌ WhatsApp API error %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}

	log.Printf("✅ WhatsApp message sent to %s", payload["to"])
	return nil
}
