package record

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ScheduledAt combines date and time in loc.
func (a Appointment) ScheduledAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrInvalidDate, a.Date, a.Time)
	}
	return t, nil
}

// UpcomingAt reports whether the appointment is strictly after now.
// Unparseable appointments are never upcoming.
func (a Appointment) UpcomingAt(now time.Time) bool {
	at, err := a.ScheduledAt(now.Location())
	if err != nil {
		return false
	}
	return at.After(now)
}

func (a Appointment) Validate() error {
	if strings.TrimSpace(a.DoctorName) == "" {
		return fmt.Errorf("%w: doctorName", ErrMissingField)
	}
	if strings.TrimSpace(a.Specialty) == "" {
		return fmt.Errorf("%w: specialty", ErrMissingField)
	}
	if _, err := time.Parse(DateLayout, a.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidDate, a.Date)
	}
	if _, err := time.Parse(TimeLayout, a.Time); err != nil {
		return fmt.Errorf("%w: time %q", ErrInvalidTime, a.Time)
	}
	return nil
}

type AppointmentPatch struct {
	DoctorName *string `json:"doctorName,omitempty"`
	Specialty  *string `json:"specialty,omitempty"`
	Date       *string `json:"date,omitempty"`
	Time       *string `json:"time,omitempty"`
	Location   *string `json:"location,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (ap AppointmentPatch) Apply(a Appointment) Appointment {
	if ap.DoctorName != nil {
		a.DoctorName = *ap.DoctorName
	}
	if ap.Specialty != nil {
		a.Specialty = *ap.Specialty
	}
	if ap.Date != nil {
		a.Date = *ap.Date
	}
	if ap.Time != nil {
		a.Time = *ap.Time
	}
	if ap.Location != nil {
		a.Location = *ap.Location
	}
	if ap.Notes != nil {
		a.Notes = *ap.Notes
	}
	return a
}

// Upcoming returns the appointments after now, soonest first, with the
// cached flag refreshed.
func Upcoming(appointments []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range appointments {
		if a.UpcomingAt(now) {
			a.IsUpcoming = true
			out = append(out, a)
		}
	}
	sortBySchedule(out, now.Location())
	return out
}

// Past returns the appointments at or before now, most recent first.
func Past(appointments []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range appointments {
		if !a.UpcomingAt(now) {
			a.IsUpcoming = false
			out = append(out, a)
		}
	}
	sortBySchedule(out, now.Location())
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func sortBySchedule(appointments []Appointment, loc *time.Location) {
	sort.SliceStable(appointments, func(i, j int) bool {
		ti, _ := appointments[i].ScheduledAt(loc)
		tj, _ := appointments[j].ScheduledAt(loc)
		return ti.Before(tj)
	})
}
