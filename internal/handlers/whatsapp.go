package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/services"
)

// WhatsAppHandler handles the Meta Cloud API webhook
type WhatsAppHandler struct {
	conversation *services.ConversationService
	verifyToken  string
}

// NewWhatsAppHandler creates a new WhatsApp webhook handler
func NewWhatsAppHandler(conversation *services.ConversationService, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		conversation: conversation,
		verifyToken:  verifyToken,
	}
}

// VerifyWebhook answers Meta's subscription handshake: echo the
// challenge when the verify token matches, 403 otherwise
func (h *WhatsAppHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		log.Println("✅ WhatsApp webhook verified")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	log.Println("❌ WhatsApp webhook verification failed")
	return c.SendStatus(fiber.StatusForbidden)
}

// metaWebhookPayload is the Cloud API event envelope
type metaWebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []metaMessage `json:"messages"`
				Statuses []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type metaMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive struct {
		Type        string `json:"type"`
		ButtonReply struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
	} `json:"interactive"`
}

// HandleWebhook processes incoming WhatsApp events. Text and button
// replies feed the booking conversation, statuses are logged, anything
// else is ignored. Always acknowledges with 200.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload metaWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("❌ Error parsing webhook: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, status := range change.Value.Statuses {
				log.Printf("📬 WhatsApp status update: %s is %s", status.ID, status.Status)
			}
			for _, msg := range change.Value.Messages {
				h.processMessage(msg)
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WhatsAppHandler) processMessage(msg metaMessage) {
	var body string
	switch msg.Type {
	case "text":
		body = msg.Text.Body
	case "interactive":
		body = msg.Interactive.ButtonReply.ID
	default:
		log.Printf("📱 Ignoring %s message from %s", msg.Type, msg.From)
		return
	}
	if msg.From == "" || body == "" {
		return
	}

	log.Printf("📱 WhatsApp message from %s: %s", msg.From, body)
	if err := h.conversation.ProcessMessage(msg.From, body); err != nil {
		log.Printf("❌ Error processing message from %s: %v", msg.From, err)
	}
}
