package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

type silentSender struct{}

func (silentSender) SendText(to, body string) error { return nil }

func (silentSender) SendButtons(to, body string, buttons []services.Button) error { return nil }

func newWebhookApp(t *testing.T) (*fiber.App, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	doctor := &models.Doctor{
		FirstName:      "Ana",
		LastName:       "Souza",
		MedicalLicense: "CRM-12345",
		IsActive:       true,
	}
	if err := store.CreateDoctor(doctor); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}

	schedule := services.NewScheduleService(store)
	booking := services.NewBookingService(store, "faltou")
	conversation := services.NewConversationService(store, silentSender{}, schedule, booking)
	handler := NewWhatsAppHandler(conversation, "secret-token")

	app := fiber.New()
	app.Get("/webhook/whatsapp", handler.VerifyWebhook)
	app.Post("/webhook/whatsapp", handler.HandleWebhook)
	return app, store
}

func TestVerifyWebhook(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"valid handshake", "subscribe", "secret-token", fiber.StatusOK, "challenge-123"},
		{"wrong token", "subscribe", "wrong", fiber.StatusForbidden, ""},
		{"wrong mode", "unsubscribe", "secret-token", fiber.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newWebhookApp(t)

			query := url.Values{}
			query.Set("hub.mode", tt.mode)
			query.Set("hub.verify_token", tt.token)
			query.Set("hub.challenge", "challenge-123")

			req, _ := http.NewRequest(http.MethodGet, "/webhook/whatsapp?"+query.Encode(), nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body %q, want %q", body, tt.wantBody)
				}
			}
		})
	}
}

func TestWebhookProcessesTextMessage(t *testing.T) {
	app, store := newWebhookApp(t)

	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "5511999990000",
						"type": "text",
						"text": {"body": "oi"}
					}]
				}
			}]
		}]
	}`

	req, _ := http.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	conv, err := store.GetOrCreateConversation("5511999990000")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	if conv.State != models.ConvStateSelectingDoctor {
		t.Errorf("conversation state %q, want %q", conv.State, models.ConvStateSelectingDoctor)
	}
}

func TestWebhookAcknowledgesStatusOnlyEvents(t *testing.T) {
	app, _ := newWebhookApp(t)

	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"statuses": [{"id": "wamid.1", "status": "delivered"}]
				}
			}]
		}]
	}`

	req, _ := http.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
}

func TestWebhookIgnoresMalformedBody(t *testing.T) {
	app, _ := newWebhookApp(t)

	req, _ := http.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("malformed body should still be acknowledged, got %d", resp.StatusCode)
	}
}
