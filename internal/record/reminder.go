package record

import "time"

type ReminderType string

const (
	ReminderAppointment ReminderType = "appointment"
	ReminderMedication  ReminderType = "medication"
)

// Reminder is one entry of the notification feed. ID is the id of the
// appointment or medication it points at.
type Reminder struct {
	Type  ReminderType `json:"type"`
	Title string       `json:"title"`
	Time  string       `json:"time"`
	ID    string       `json:"id"`
}

// Reminders lists upcoming appointments, soonest first, followed by the
// active medications that have reminders switched on.
func Reminders(st State, now time.Time) []Reminder {
	out := []Reminder{}
	for _, a := range Upcoming(st.Appointments, now) {
		when := a.Date + " at " + a.Time
		if d, err := time.Parse(DateLayout, a.Date); err == nil {
			when = d.Format("2 Jan") + " at " + a.Time
		}
		out = append(out, Reminder{
			Type:  ReminderAppointment,
			Title: "Appt: " + a.DoctorName,
			Time:  when,
			ID:    a.ID,
		})
	}
	for _, m := range st.Medications {
		if m.Status != StatusActive || !m.ReminderEnabled {
			continue
		}
		out = append(out, Reminder{
			Type:  ReminderMedication,
			Title: "Take: " + m.Name + " (" + m.Dosage + ")",
			Time:  "Due Now",
			ID:    m.ID,
		})
	}
	return out
}
