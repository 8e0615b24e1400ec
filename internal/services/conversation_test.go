package services

import (
	"strings"
	"testing"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

type fakeSender struct {
	texts   []string
	buttons [][]Button
}

func (f *fakeSender) SendText(to, body string) error {
	f.texts = append(f.texts, body)
	return nil
}

func (f *fakeSender) SendButtons(to, body string, buttons []Button) error {
	f.texts = append(f.texts, body)
	f.buttons = append(f.buttons, buttons)
	return nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	if len(f.texts) == 0 {
		t.Fatal("no message sent")
	}
	return f.texts[len(f.texts)-1]
}

func newConversationFixture(t *testing.T) (*ConversationService, *fakeSender, storage.Store, *models.Doctor) {
	t.Helper()
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	sender := &fakeSender{}
	schedule := NewScheduleService(store)
	booking := NewBookingService(store, "faltou")
	return NewConversationService(store, sender, schedule, booking), sender, store, doctor
}

const callerPhone = "5511999990000"

func step(t *testing.T, conv *ConversationService, message string) {
	t.Helper()
	if err := conv.ProcessMessage(callerPhone, message); err != nil {
		t.Fatalf("ProcessMessage(%q): %v", message, err)
	}
}

func conversationState(t *testing.T, store storage.Store) *models.Conversation {
	t.Helper()
	conv, err := store.GetOrCreateConversation(callerPhone)
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	return conv
}

func TestBookingFlowCompletes(t *testing.T) {
	conv, sender, store, doctor := newConversationFixture(t)

	dates, err := NewScheduleService(store).AvailableDates(doctor.ID, time.Now())
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) == 0 {
		t.Fatal("fixture has no available dates")
	}

	step(t, conv, "oi")
	if got := conversationState(t, store).State; got != models.ConvStateSelectingDoctor {
		t.Fatalf("after greeting, state %q", got)
	}

	step(t, conv, "1")
	if got := conversationState(t, store).State; got != models.ConvStateSelectingDate {
		t.Fatalf("after doctor choice, state %q", got)
	}
	if len(sender.buttons) == 0 {
		t.Fatal("date options were not sent as buttons")
	}

	step(t, conv, "1")
	if got := conversationState(t, store).State; got != models.ConvStateSelectingTime {
		t.Fatalf("after date choice, state %q", got)
	}

	step(t, conv, "1")
	if got := conversationState(t, store).State; got != models.ConvStateCollectingPatient {
		t.Fatalf("after time choice, state %q", got)
	}

	step(t, conv, "Maria Silva")
	step(t, conv, "(11) 98888-7777")

	state := conversationState(t, store)
	if state.State != models.ConvStateCompleted {
		t.Fatalf("flow did not complete, state %q", state.State)
	}
	if state.AppointmentID == "" {
		t.Fatal("no appointment linked to the conversation")
	}

	appointment, err := store.GetAppointment(state.AppointmentID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if appointment.DoctorID != doctor.ID {
		t.Error("appointment booked for the wrong doctor")
	}
	if appointment.Date != dates[0] || appointment.StartTime != "08:00" {
		t.Errorf("booked %s %s, want %s 08:00", appointment.Date, appointment.StartTime, dates[0])
	}
	if appointment.Reason != "Agendado via WhatsApp" {
		t.Errorf("reason %q", appointment.Reason)
	}

	patient, err := store.FindPatientByPhone("11988887777")
	if err != nil {
		t.Fatalf("patient was not created: %v", err)
	}
	if patient.FirstName != "Maria" || patient.LastName != "Silva" {
		t.Errorf("patient name %q %q", patient.FirstName, patient.LastName)
	}
	if appointment.PatientID != patient.ID {
		t.Error("appointment not linked to the created patient")
	}

	if !strings.Contains(sender.lastText(t), "✅ Consulta agendada com sucesso!") {
		t.Errorf("missing confirmation, last message: %q", sender.lastText(t))
	}
}

func TestExistingPatientIsReused(t *testing.T) {
	conv, _, store, doctor := newConversationFixture(t)

	existing := &models.Patient{
		DoctorID:    doctor.ID,
		FirstName:   "Carlos",
		LastName:    "Lima",
		Phone:       "11988887777",
		DateOfBirth: "1985-01-20",
		Gender:      models.GenderMale,
		IsActive:    true,
	}
	if err := store.CreatePatient(existing); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	step(t, conv, "oi")
	step(t, conv, "1")
	step(t, conv, "1")
	step(t, conv, "1")
	step(t, conv, "Carlos Lima")
	step(t, conv, "11 98888-7777")

	state := conversationState(t, store)
	appointment, err := store.GetAppointment(state.AppointmentID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if appointment.PatientID != existing.ID {
		t.Errorf("expected existing patient %s, got %s", existing.ID, appointment.PatientID)
	}
}

func TestResetKeywordRestartsFlow(t *testing.T) {
	conv, sender, store, _ := newConversationFixture(t)

	step(t, conv, "oi")
	step(t, conv, "1")
	if got := conversationState(t, store).State; got != models.ConvStateSelectingDate {
		t.Fatalf("setup failed, state %q", got)
	}

	step(t, conv, "cancelar")

	state := conversationState(t, store)
	if state.State != models.ConvStateInitial {
		t.Errorf("state %q after reset", state.State)
	}
	if state.SelectedDoctorID != "" || state.SelectedDate != "" {
		t.Error("selections not cleared on reset")
	}
	if !strings.Contains(sender.lastText(t), "Conversa reiniciada") {
		t.Errorf("missing reset confirmation: %q", sender.lastText(t))
	}
}

func TestInvalidSelectionKeepsState(t *testing.T) {
	conv, sender, store, _ := newConversationFixture(t)

	step(t, conv, "oi")
	step(t, conv, "99")

	if got := conversationState(t, store).State; got != models.ConvStateSelectingDoctor {
		t.Errorf("invalid choice moved state to %q", got)
	}
	if !strings.Contains(sender.lastText(t), "❌ Opção inválida") {
		t.Errorf("missing re-prompt: %q", sender.lastText(t))
	}
}

func TestDateButtonPayload(t *testing.T) {
	conv, _, store, doctor := newConversationFixture(t)

	dates, err := NewScheduleService(store).AvailableDates(doctor.ID, time.Now())
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) < 2 {
		t.Fatal("fixture needs at least two dates")
	}

	step(t, conv, "oi")
	step(t, conv, "1")
	step(t, conv, datePayloadPrefix+dates[1])

	state := conversationState(t, store)
	if state.SelectedDate != dates[1] {
		t.Errorf("selected date %q, want %q", state.SelectedDate, dates[1])
	}
	if state.State != models.ConvStateSelectingTime {
		t.Errorf("state %q after button payload", state.State)
	}
}

func TestStaleDateButtonReprompts(t *testing.T) {
	conv, sender, store, doctor := newConversationFixture(t)
	patient := seedPatient(t, store, doctor.ID)

	dates, err := NewScheduleService(store).AvailableDates(doctor.ID, time.Now())
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}

	step(t, conv, "oi")
	step(t, conv, "1")

	// Fill the first offered date after its button was sent
	for slot := businessStartMinutes; slot < businessEndMinutes; slot += slotMinutes {
		mustBook(t, store, &models.Appointment{
			PatientID:       patient.ID,
			DoctorID:        doctor.ID,
			Date:            dates[0],
			StartTime:       formatClock(slot),
			DurationMinutes: 30,
		})
	}

	step(t, conv, datePayloadPrefix+dates[0])

	state := conversationState(t, store)
	if state.State != models.ConvStateSelectingDate {
		t.Errorf("state %q, want to stay selecting a date", state.State)
	}
	if state.SelectedDate != "" {
		t.Errorf("selected date %q should stay empty", state.SelectedDate)
	}
	found := false
	for _, msg := range sender.texts {
		if strings.Contains(msg, "❌ Data inválida") {
			found = true
		}
	}
	if !found {
		t.Error("stale date button was not rejected")
	}
}

func TestNoDoctorsAvailable(t *testing.T) {
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	schedule := NewScheduleService(store)
	booking := NewBookingService(store, "faltou")
	conv := NewConversationService(store, sender, schedule, booking)

	step(t, conv, "oi")

	if !strings.Contains(sender.lastText(t), "não há médicos disponíveis") {
		t.Errorf("missing apology: %q", sender.lastText(t))
	}
	if got := conversationState(t, store).State; got != models.ConvStateInitial {
		t.Errorf("state %q, want initial", got)
	}
}
