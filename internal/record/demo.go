package record

import (
	"time"

	"github.com/google/uuid"
)

// DemoState is a populated state for first-run demos. Appointment dates are
// placed relative to now so that they start out upcoming.
func DemoState(now time.Time) State {
	s := EmptyState()
	s.Medications = []Medication{
		{ID: uuid.NewString(), Name: "Metformin", Dosage: "500 mg", Frequency: "Twice daily", StartDate: "2024-01-15", Status: StatusActive, ReminderEnabled: true, Notes: "Take with meals to reduce stomach upset"},
		{ID: uuid.NewString(), Name: "Amlodipine", Dosage: "5 mg", Frequency: "Once daily", StartDate: "2024-02-01", Status: StatusActive, ReminderEnabled: true, Notes: "For blood pressure control"},
		{ID: uuid.NewString(), Name: "Atorvastatin", Dosage: "10 mg", Frequency: "Once daily (at night)", StartDate: "2024-01-20", Status: StatusActive, ReminderEnabled: true, Notes: "Cholesterol management"},
		{ID: uuid.NewString(), Name: "Vitamin D3", Dosage: "60,000 IU", Frequency: "Once weekly", StartDate: "2024-03-01", Status: StatusActive, Notes: "Vitamin D supplementation"},
	}

	const reportDate = "2024-12-15"
	value := func(name string, v float64, unit string, min, max float64, trend Trend) LabValue {
		return LabValue{ID: uuid.NewString(), Name: name, Value: v, Unit: unit, NormalRange: Range{Min: min, Max: max}, Trend: trend, Date: reportDate}
	}
	s.LabReports = []LabReport{{
		ID:   uuid.NewString(),
		Name: "Annual Health Checkup",
		Date: reportDate,
		Values: []LabValue{
			value("Hemoglobin", 14.2, "g/dL", 12.0, 17.5, TrendNormal),
			value("Fasting Blood Glucose", 112, "mg/dL", 70, 99, TrendUp),
			value("HbA1c", 6.1, "%", 4.0, 5.6, TrendUp),
			value("Total Cholesterol", 218, "mg/dL", 0, 200, TrendUp),
			value("LDL Cholesterol", 142, "mg/dL", 0, 130, TrendUp),
			value("HDL Cholesterol", 48, "mg/dL", 40, 100, TrendNormal),
			value("TSH", 2.4, "mIU/L", 0.4, 4.0, TrendNormal),
			value("Vitamin D (25-OH)", 24, "ng/mL", 30, 100, TrendDown),
			value("Creatinine", 0.95, "mg/dL", 0.6, 1.2, TrendNormal),
		},
	}}

	s.Appointments = []Appointment{
		{ID: uuid.NewString(), DoctorName: "Dr. Sarah Johnson", Specialty: "Endocrinologist", Date: now.AddDate(0, 0, 30).Format(DateLayout), Time: "10:30", Location: "City Medical Center, Room 402", Notes: "Follow-up for diabetes management", IsUpcoming: true},
		{ID: uuid.NewString(), DoctorName: "Dr. Michael Chen", Specialty: "Cardiologist", Date: now.AddDate(0, 0, 45).Format(DateLayout), Time: "14:00", Location: "Heart Care Clinic", Notes: "Annual heart checkup", IsUpcoming: true},
	}
	return s
}
