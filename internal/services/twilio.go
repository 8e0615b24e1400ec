package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/caiotravain/consultorio/internal/config"
)

// TwilioService sends SMS, used as the reminder fallback channel when
// WhatsApp delivery is unavailable
type TwilioService struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.SMSFrom == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		client: client,
		from:   cfg.SMSFrom,
	}, nil
}

// SendSMS sends a plain text SMS
func (t *TwilioService) SendSMS(to, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo("+" + NormalizePhone(to))
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS: %v", err)
		return err
	}

	log.Printf("✅ SMS sent! SID: %s", *resp.Sid)
	return nil
}
