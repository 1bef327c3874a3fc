package record

import (
	"fmt"
	"strings"
	"time"
)

func (m Medication) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if strings.TrimSpace(m.Dosage) == "" {
		return fmt.Errorf("%w: dosage", ErrMissingField)
	}
	if strings.TrimSpace(m.Frequency) == "" {
		return fmt.Errorf("%w: frequency", ErrMissingField)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, m.Status)
	}
	start, err := time.Parse(DateLayout, m.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate %q", ErrInvalidDate, m.StartDate)
	}
	if m.EndDate != nil {
		end, err := time.Parse(DateLayout, *m.EndDate)
		if err != nil {
			return fmt.Errorf("%w: endDate %q", ErrInvalidDate, *m.EndDate)
		}
		if end.Before(start) {
			return ErrEndBeforeStart
		}
	}
	return nil
}

// Complete moves an active medication to completed and stamps the end date
// with today's date. A start date later than today is kept as the end date.
func (m Medication) Complete(now time.Time) (Medication, error) {
	if m.Status == StatusCompleted {
		return m, ErrAlreadyCompleted
	}
	today := now.Format(DateLayout)
	if m.StartDate > today {
		today = m.StartDate
	}
	m.Status = StatusCompleted
	m.EndDate = &today
	return m, nil
}

// MedicationPatch is a partial medication. An EndDate of "" clears it.
type MedicationPatch struct {
	Name            *string           `json:"name,omitempty"`
	Dosage          *string           `json:"dosage,omitempty"`
	Frequency       *string           `json:"frequency,omitempty"`
	StartDate       *string           `json:"startDate,omitempty"`
	EndDate         *string           `json:"endDate,omitempty"`
	Status          *MedicationStatus `json:"status,omitempty"`
	ReminderEnabled *bool             `json:"reminderEnabled,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
}

func (mp MedicationPatch) Apply(m Medication) Medication {
	if mp.Name != nil {
		m.Name = *mp.Name
	}
	if mp.Dosage != nil {
		m.Dosage = *mp.Dosage
	}
	if mp.Frequency != nil {
		m.Frequency = *mp.Frequency
	}
	if mp.StartDate != nil {
		m.StartDate = *mp.StartDate
	}
	if mp.EndDate != nil {
		if *mp.EndDate == "" {
			m.EndDate = nil
		} else {
			end := *mp.EndDate
			m.EndDate = &end
		}
	}
	if mp.Status != nil {
		m.Status = *mp.Status
	}
	if mp.ReminderEnabled != nil {
		m.ReminderEnabled = *mp.ReminderEnabled
	}
	if mp.Notes != nil {
		m.Notes = *mp.Notes
	}
	return m
}

// CheckTransition rejects the completed to active transition.
func CheckTransition(from, to MedicationStatus) error {
	if from == StatusCompleted && to == StatusActive {
		return fmt.Errorf("%w: cannot reactivate", ErrAlreadyCompleted)
	}
	return nil
}

// ApplyAt merges the patch into m and enforces the status lifecycle. A
// completed medication always has an end date: moving active to completed
// stamps it as Complete does unless the patch supplies one, and clearing the
// end date of a completed medication keeps the previous one.
func (mp MedicationPatch) ApplyAt(m Medication, now time.Time) (Medication, error) {
	next := mp.Apply(m)
	if err := CheckTransition(m.Status, next.Status); err != nil {
		return m, err
	}
	if next.Status != StatusCompleted || next.EndDate != nil {
		return next, nil
	}
	if m.Status == StatusCompleted && m.EndDate != nil {
		end := *m.EndDate
		next.EndDate = &end
		return next, nil
	}
	next.Status = StatusActive
	return next.Complete(now)
}
