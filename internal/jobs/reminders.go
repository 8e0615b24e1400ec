package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

// ReminderJob sends next-day appointment reminders over WhatsApp, with
// SMS as the fallback channel when configured
type ReminderJob struct {
	store  storage.Store
	sender services.MessageSender
	sms    *services.TwilioService
	cron   *cron.Cron
}

// NewReminderJob creates the reminder job. sms may be nil when Twilio
// is not configured.
func NewReminderJob(store storage.Store, sender services.MessageSender, sms *services.TwilioService) *ReminderJob {
	return &ReminderJob{
		store:  store,
		sender: sender,
		sms:    sms,
		cron:   cron.New(),
	}
}

// Start schedules the daily run at 18:00
func (j *ReminderJob) Start() error {
	if _, err := j.cron.AddFunc("0 18 * * *", j.Run); err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	j.cron.Start()
	log.Println("✅ Reminder job scheduled (daily at 18:00)")
	return nil
}

// Stop halts the scheduler
func (j *ReminderJob) Stop() {
	j.cron.Stop()
}

// Run sends a reminder for every scheduled or confirmed appointment of
// tomorrow that has not been reminded yet
func (j *ReminderJob) Run() {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(models.DateLayout)
	appointments, err := j.store.GetAppointmentsDueReminder(tomorrow)
	if err != nil {
		log.Printf("❌ Reminder job failed to load appointments: %v", err)
		return
	}
	if len(appointments) == 0 {
		log.Printf("📅 No reminders to send for %s", tomorrow)
		return
	}

	log.Printf("📅 Sending %d reminders for %s", len(appointments), tomorrow)
	for _, appointment := range appointments {
		if err := j.remind(appointment); err != nil {
			log.Printf("❌ Reminder failed for appointment %s: %v", appointment.ID, err)
			continue
		}

		now := time.Now()
		appointment.ReminderSent = true
		appointment.ReminderAt = &now
		if err := j.store.UpdateAppointment(appointment); err != nil {
			log.Printf("❌ Failed to mark reminder sent for %s: %v", appointment.ID, err)
		}
	}
}

func (j *ReminderJob) remind(appointment *models.Appointment) error {
	if appointment.Patient == nil || appointment.Patient.Phone == "" {
		return fmt.Errorf("patient has no phone number")
	}

	doctorName := "seu médico"
	if appointment.Doctor != nil {
		doctorName = appointment.Doctor.FullName()
	}
	message := fmt.Sprintf(
		"🔔 Lembrete de consulta!\n\nOlá, %s. Sua consulta com %s é amanhã às %s.\n\nResponda \"cancelar\" caso precise remarcar.",
		appointment.Patient.FullName(), doctorName, appointment.StartTime)

	if err := j.sender.SendText(appointment.Patient.Phone, message); err == nil {
		return nil
	} else if j.sms == nil {
		return err
	}

	log.Printf("⚠️  WhatsApp reminder failed for %s, falling back to SMS", appointment.ID)
	return j.sms.SendSMS(appointment.Patient.Phone, message)
}
