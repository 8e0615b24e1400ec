package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// resetKeywords restart the conversation from any state
var resetKeywords = []string{"cancelar", "cancel", "inicio", "começar", "comecar", "start"}

const datePayloadPrefix = "date_"

var weekdaysPTBR = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

var weekdaysShortPTBR = map[time.Weekday]string{
	time.Sunday:    "Dom",
	time.Monday:    "Seg",
	time.Tuesday:   "Ter",
	time.Wednesday: "Qua",
	time.Thursday:  "Qui",
	time.Friday:    "Sex",
	time.Saturday:  "Sáb",
}

// ConversationService runs the WhatsApp self-service booking flow, one
// conversation row per phone number
type ConversationService struct {
	store    storage.Store
	sender   MessageSender
	schedule *ScheduleService
	booking  *BookingService
}

// NewConversationService creates a new conversation service
func NewConversationService(store storage.Store, sender MessageSender, schedule *ScheduleService, booking *BookingService) *ConversationService {
	return &ConversationService{
		store:    store,
		sender:   sender,
		schedule: schedule,
		booking:  booking,
	}
}

// ProcessMessage advances the conversation of the sender's phone number
// by one inbound message. The message is either free text or an
// interactive button payload.
func (c *ConversationService) ProcessMessage(from, message string) error {
	phone := NormalizePhone(from)
	input := strings.TrimSpace(message)

	conv, err := c.store.GetOrCreateConversation(phone)
	if err != nil {
		return err
	}

	if isResetKeyword(input) {
		conv.Reset()
		if err := c.store.UpdateConversation(conv); err != nil {
			return err
		}
		c.send(phone, "✅ Conversa reiniciada! Como posso ajudá-lo hoje?\n\nEnvie qualquer mensagem para agendar uma consulta.")
		return nil
	}

	switch conv.State {
	case models.ConvStateSelectingDoctor:
		return c.handleSelectDoctor(conv, input)
	case models.ConvStateSelectingDate:
		return c.handleSelectDate(conv, input)
	case models.ConvStateSelectingTime:
		return c.handleSelectTime(conv, input)
	case models.ConvStateCollectingPatient:
		return c.handleCollectInfo(conv, input)
	default:
		// initial, completed and cancelled all start a fresh booking
		return c.handleInitial(conv)
	}
}

func isResetKeyword(input string) bool {
	lowered := strings.ToLower(input)
	for _, kw := range resetKeywords {
		if lowered == kw {
			return true
		}
	}
	return false
}

func (c *ConversationService) handleInitial(conv *models.Conversation) error {
	doctors, err := c.store.GetActiveDoctors()
	if err != nil {
		return err
	}
	if len(doctors) == 0 {
		c.send(conv.PhoneNumber, "😔 Desculpe, não há médicos disponíveis no momento. Tente novamente mais tarde.")
		return nil
	}

	conv.Reset()
	conv.State = models.ConvStateSelectingDoctor
	if err := c.store.UpdateConversation(conv); err != nil {
		return err
	}

	c.send(conv.PhoneNumber, "👋 Olá! Bem-vindo ao agendamento de consultas.\n\n"+doctorListMessage(doctors))
	return nil
}

func doctorListMessage(doctors []*models.Doctor) string {
	var b strings.Builder
	b.WriteString("Com qual médico você deseja agendar?\n\n")
	for i, d := range doctors {
		fmt.Fprintf(&b, "%d. %s", i+1, d.FullName())
		if d.Specialization != "" {
			fmt.Fprintf(&b, " - %s", d.Specialization)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nResponda com o número da opção.")
	return b.String()
}

func (c *ConversationService) handleSelectDoctor(conv *models.Conversation, input string) error {
	doctors, err := c.store.GetActiveDoctors()
	if err != nil {
		return err
	}

	idx, ok := parseIndex(input, len(doctors))
	if !ok {
		c.send(conv.PhoneNumber, "❌ Opção inválida.\n\n"+doctorListMessage(doctors))
		return nil
	}
	doctor := doctors[idx]

	dates, err := c.schedule.AvailableDates(doctor.ID, time.Now())
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		conv.Reset()
		if err := c.store.UpdateConversation(conv); err != nil {
			return err
		}
		c.send(conv.PhoneNumber, fmt.Sprintf("😔 %s não tem horários disponíveis nos próximos dias. Envie qualquer mensagem para tentar novamente.", doctor.FullName()))
		return nil
	}

	conv.SelectedDoctorID = doctor.ID
	conv.State = models.ConvStateSelectingDate
	if err := c.store.UpdateConversation(conv); err != nil {
		return err
	}

	c.sendDates(conv.PhoneNumber, doctor, dates)
	return nil
}

// sendDates offers the available dates: the first three as interactive
// buttons, all of them as a numbered list in the body
func (c *ConversationService) sendDates(phone string, doctor *models.Doctor, dates []string) {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Datas disponíveis para %s:\n\n", doctor.FullName())
	for i, date := range dates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatDateBR(date))
	}
	b.WriteString("\nToque em um botão ou responda com o número da opção.")

	var buttons []Button
	for _, date := range dates {
		if len(buttons) == maxButtons {
			break
		}
		buttons = append(buttons, Button{
			ID:    datePayloadPrefix + date,
			Title: formatDateShortBR(date),
		})
	}

	if err := c.sender.SendButtons(phone, b.String(), buttons); err != nil {
		log.Printf("❌ Failed to send date options to %s: %v", phone, err)
	}
}

func (c *ConversationService) handleSelectDate(conv *models.Conversation, input string) error {
	doctor, err := c.store.GetDoctor(conv.SelectedDoctorID)
	if err != nil {
		return err
	}
	dates, err := c.schedule.AvailableDates(doctor.ID, time.Now())
	if err != nil {
		return err
	}

	date, ok := pickDate(input, dates)
	if !ok {
		c.send(conv.PhoneNumber, "❌ Data inválida.")
		c.sendDates(conv.PhoneNumber, doctor, dates)
		return nil
	}

	times, err := c.schedule.AvailableTimes(doctor.ID, date)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		// The date filled up between listing and choosing
		conv.SelectedDate = ""
		if err := c.store.UpdateConversation(conv); err != nil {
			return err
		}
		c.send(conv.PhoneNumber, "😔 Essa data acabou de ficar sem horários. Escolha outra, por favor.")
		c.sendDates(conv.PhoneNumber, doctor, dates)
		return nil
	}

	conv.SelectedDate = date
	conv.State = models.ConvStateSelectingTime
	if err := c.store.UpdateConversation(conv); err != nil {
		return err
	}

	c.send(conv.PhoneNumber, timeListMessage(date, times))
	return nil
}

// pickDate accepts either a date_YYYY-MM-DD button payload or a 1-based
// index into the offered list
func pickDate(input string, dates []string) (string, bool) {
	if strings.HasPrefix(input, datePayloadPrefix) {
		date := strings.TrimPrefix(input, datePayloadPrefix)
		for _, d := range dates {
			if d == date {
				return date, true
			}
		}
		return "", false
	}
	idx, ok := parseIndex(input, len(dates))
	if !ok {
		return "", false
	}
	return dates[idx], true
}

func timeListMessage(date string, times []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕐 Horários disponíveis para %s:\n\n", formatDateBR(date))
	for i, t := range times {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	b.WriteString("\nResponda com o número da opção.")
	return b.String()
}

func (c *ConversationService) handleSelectTime(conv *models.Conversation, input string) error {
	times, err := c.schedule.AvailableTimes(conv.SelectedDoctorID, conv.SelectedDate)
	if err != nil {
		return err
	}

	idx, ok := parseIndex(input, len(times))
	if !ok {
		c.send(conv.PhoneNumber, "❌ Horário inválido.\n\n"+timeListMessage(conv.SelectedDate, times))
		return nil
	}

	conv.SelectedTime = times[idx]
	conv.State = models.ConvStateCollectingPatient
	if err := c.store.UpdateConversation(conv); err != nil {
		return err
	}

	c.send(conv.PhoneNumber, "📝 Quase lá! Qual é o seu nome completo?")
	return nil
}

func (c *ConversationService) handleCollectInfo(conv *models.Conversation, input string) error {
	if conv.PatientName == "" {
		if input == "" {
			c.send(conv.PhoneNumber, "📝 Por favor, informe o seu nome completo.")
			return nil
		}
		conv.PatientName = input
		if err := c.store.UpdateConversation(conv); err != nil {
			return err
		}
		c.send(conv.PhoneNumber, "📱 Obrigado! Agora informe o seu telefone com DDD.")
		return nil
	}

	patientPhone := stripPhoneFormatting(input)
	if patientPhone == "" {
		c.send(conv.PhoneNumber, "📱 Telefone inválido. Informe o seu telefone com DDD.")
		return nil
	}
	conv.PatientPhone = patientPhone

	return c.finishBooking(conv)
}

// finishBooking resolves the patient and books the appointment. Any
// persistence failure resets the conversation after an apology; a
// patient row created on the way stays.
func (c *ConversationService) finishBooking(conv *models.Conversation) error {
	patient, err := c.store.FindPatientByPhone(conv.PatientPhone)
	if errors.Is(err, storage.ErrNotFound) {
		patient = newWhatsAppPatient(conv)
		err = c.store.CreatePatient(patient)
	}
	if err != nil {
		return c.failBooking(conv, err)
	}

	appointment := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        conv.SelectedDoctorID,
		Date:            conv.SelectedDate,
		StartTime:       conv.SelectedTime,
		DurationMinutes: models.DefaultDurationMinutes,
		Type:            models.TypeConsultation,
		PaymentType:     models.PaymentParticular,
		Status:          models.AppointmentScheduled,
		Reason:          "Agendado via WhatsApp",
	}
	if err := c.booking.Create(appointment); err != nil {
		return c.failBooking(conv, err)
	}

	doctor, err := c.store.GetDoctor(conv.SelectedDoctorID)
	if err != nil {
		return c.failBooking(conv, err)
	}

	now := time.Now()
	conv.AppointmentID = appointment.ID
	conv.State = models.ConvStateCompleted
	conv.CompletedAt = &now
	if err := c.store.UpdateConversation(conv); err != nil {
		return err
	}

	c.send(conv.PhoneNumber, fmt.Sprintf(
		"✅ Consulta agendada com sucesso!\n\n👨‍⚕️ Médico: %s\n👤 Paciente: %s\n📅 Data: %s\n🕐 Horário: %s\n\nAté lá! Envie \"cancelar\" para recomeçar.",
		doctor.FullName(), patient.FullName(), formatDateBR(conv.SelectedDate), conv.SelectedTime))
	return nil
}

func (c *ConversationService) failBooking(conv *models.Conversation, cause error) error {
	log.Printf("❌ Booking failed for %s: %v", conv.PhoneNumber, cause)
	conv.Reset()
	if err := c.store.UpdateConversation(conv); err != nil {
		return err
	}
	c.send(conv.PhoneNumber, "😔 Desculpe, não foi possível concluir o agendamento. Envie qualquer mensagem para tentar novamente.")
	return nil
}

// newWhatsAppPatient builds a minimal patient record for a caller not
// yet in the system. Birth date is a placeholder until the first visit.
func newWhatsAppPatient(conv *models.Conversation) *models.Patient {
	firstName := conv.PatientName
	lastName := ""
	if parts := strings.Fields(conv.PatientName); len(parts) > 1 {
		firstName = parts[0]
		lastName = strings.Join(parts[1:], " ")
	}

	return &models.Patient{
		DoctorID:    conv.SelectedDoctorID,
		FirstName:   firstName,
		LastName:    lastName,
		Phone:       conv.PatientPhone,
		DateOfBirth: time.Now().AddDate(-30, 0, 0).Format(models.DateLayout),
		Gender:      models.GenderOther,
		IsActive:    true,
	}
}

func (c *ConversationService) send(phone, body string) {
	if err := c.sender.SendText(phone, body); err != nil {
		log.Printf("❌ Failed to send message to %s: %v", phone, err)
	}
}

// parseIndex parses a 1-based list selection, returning a 0-based index
func parseIndex(input string, size int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > size {
		return 0, false
	}
	return n - 1, true
}

func stripPhoneFormatting(input string) string {
	return NormalizePhone(input)
}

// formatDateBR renders "2026-09-02" as "quarta-feira, 02/09/2026"
func formatDateBR(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %s", weekdaysPTBR[t.Weekday()], t.Format("02/01/2006"))
}

// formatDateShortBR renders "2026-09-02" as "Qua 02/09", short enough
// for a button title
func formatDateShortBR(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %s", weekdaysShortPTBR[t.Weekday()], t.Format("02/01"))
}
