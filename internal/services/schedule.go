package services

import (
	"fmt"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// Clinic hours: 08:00 to 18:00 on a 30-minute grid
const (
	businessStartMinutes = 8 * 60
	businessEndMinutes   = 18 * 60
	slotMinutes          = 30

	dateScanDays    = 14
	maxOfferedDates = 7
)

// ScheduleService computes free appointment slots for a doctor
type ScheduleService struct {
	store storage.Store
}

// NewScheduleService creates a new schedule service
func NewScheduleService(store storage.Store) *ScheduleService {
	return &ScheduleService{store: store}
}

// parseClock converts "HH:MM" to minutes since midnight
func parseClock(clock string) (int, error) {
	t, err := time.Parse(models.ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock converts minutes since midnight to "HH:MM"
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type busyInterval struct {
	start int // inclusive
	end   int // exclusive
}

// busyIntervals collects the occupied ranges of a doctor's day.
// Cancelled appointments do not block slots.
func (s *ScheduleService) busyIntervals(doctorID, date string) ([]busyInterval, error) {
	appointments, err := s.store.GetAppointmentsByDoctorAndDate(doctorID, date)
	if err != nil {
		return nil, err
	}

	var intervals []busyInterval
	for _, a := range appointments {
		if !a.IsActive() {
			continue
		}
		start, err := parseClock(a.StartTime)
		if err != nil {
			continue
		}
		duration := a.DurationMinutes
		if duration <= 0 {
			duration = models.DefaultDurationMinutes
		}
		intervals = append(intervals, busyInterval{start: start, end: start + duration})
	}
	return intervals, nil
}

// AvailableTimes returns the free slot boundaries of a doctor's day in
// ascending order. A boundary is taken when it falls inside the
// [start, start+duration) range of any active appointment, so a long
// appointment blocks every slot it covers.
func (s *ScheduleService) AvailableTimes(doctorID, date string) ([]string, error) {
	intervals, err := s.busyIntervals(doctorID, date)
	if err != nil {
		return nil, err
	}

	var times []string
	for slot := businessStartMinutes; slot < businessEndMinutes; slot += slotMinutes {
		if !slotBlocked(slot, intervals) {
			times = append(times, formatClock(slot))
		}
	}
	return times, nil
}

// HasAvailableSlots reports whether the doctor has at least one free
// slot on the date, stopping at the first one found
func (s *ScheduleService) HasAvailableSlots(doctorID, date string) (bool, error) {
	intervals, err := s.busyIntervals(doctorID, date)
	if err != nil {
		return false, err
	}

	for slot := businessStartMinutes; slot < businessEndMinutes; slot += slotMinutes {
		if !slotBlocked(slot, intervals) {
			return true, nil
		}
	}
	return false, nil
}

func slotBlocked(slot int, intervals []busyInterval) bool {
	for _, iv := range intervals {
		if iv.start <= slot && slot < iv.end {
			return true
		}
	}
	return false
}

// AvailableDates scans up to 14 calendar days starting the day after
// `from`, skips weekends, and returns the first 7 dates that still have
// a free slot (YYYY-MM-DD)
func (s *ScheduleService) AvailableDates(doctorID string, from time.Time) ([]string, error) {
	var dates []string
	for i := 1; i <= dateScanDays && len(dates) < maxOfferedDates; i++ {
		day := from.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		date := day.Format(models.DateLayout)
		free, err := s.HasAvailableSlots(doctorID, date)
		if err != nil {
			return nil, err
		}
		if free {
			dates = append(dates, date)
		}
	}
	return dates, nil
}
