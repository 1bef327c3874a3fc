package assistant

import (
	"github.com/mesikahq/spitalverse/internal/insight"
	"github.com/mesikahq/spitalverse/internal/record"
)

// Status tells the caller whether a result came from the language model.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
	StatusError       Status = "error"
)

// Source names the producer of a result returned by Service.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result kinds, used in metrics and the audit trail.
const (
	KindSummary  = "summary"
	KindTips     = "tips"
	KindSymptoms = "symptoms"
)

type MedicationInput struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency,omitempty"`
}

type LabInput struct {
	Name        string       `json:"name"`
	Value       float64      `json:"value"`
	Unit        string       `json:"unit"`
	NormalRange record.Range `json:"normalRange"`
	Trend       record.Trend `json:"trend"`
	Date        string       `json:"date"`
}

type AppointmentInput struct {
	DoctorName string `json:"doctorName"`
	Specialty  string `json:"specialty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes,omitempty"`
}

type SummaryProfile struct {
	Age        *int     `json:"age"`
	Gender     string   `json:"gender"`
	BloodGroup string   `json:"bloodGroup"`
	Allergies  []string `json:"allergies"`
}

type SummaryRequest struct {
	Profile      SummaryProfile     `json:"profile"`
	Medications  []MedicationInput  `json:"medications"`
	LabValues    []LabInput         `json:"labValues"`
	Appointments []AppointmentInput `json:"appointments,omitempty"`
}

type SummaryResult struct {
	Status          Status           `json:"status"`
	Summary         string           `json:"summary"`
	Recommendations []string         `json:"recommendations"`
	RiskLevel       record.RiskLevel `json:"riskLevel"`
}

type TipsRequest struct {
	Age               *int              `json:"age"`
	Gender            string            `json:"gender"`
	BloodGroup        string            `json:"bloodGroup"`
	Allergies         []string          `json:"allergies"`
	Medications       []MedicationInput `json:"medications"`
	LabValues         []LabInput        `json:"labValues"`
	HasAbnormalValues bool              `json:"hasAbnormalValues"`
}

type TipsResult struct {
	Status Status `json:"status"`
	insight.TipsBundle
}

type SymptomProfile struct {
	Age         *int              `json:"age"`
	Gender      string            `json:"gender"`
	Allergies   []string          `json:"allergies"`
	Medications []MedicationInput `json:"medications"`
}

type SymptomRequest struct {
	Symptoms string           `json:"symptoms"`
	Duration string           `json:"duration"`
	Severity insight.Severity `json:"severity"`
	Profile  SymptomProfile   `json:"profile"`
}

type SymptomResult struct {
	Status Status `json:"status"`
	insight.SymptomGuidance
}

func labInputs(values []record.LabValue) []LabInput {
	out := make([]LabInput, 0, len(values))
	for _, v := range values {
		out = append(out, LabInput{
			Name:        v.Name,
			Value:       v.Value,
			Unit:        v.Unit,
			NormalRange: v.NormalRange,
			Trend:       v.Trend,
			Date:        v.Date,
		})
	}
	return out
}

func medicationInputs(meds []record.Medication) []MedicationInput {
	out := make([]MedicationInput, 0, len(meds))
	for _, m := range meds {
		out = append(out, MedicationInput{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency})
	}
	return out
}

func appointmentInputs(appts []record.Appointment) []AppointmentInput {
	out := make([]AppointmentInput, 0, len(appts))
	for _, a := range appts {
		out = append(out, AppointmentInput{
			DoctorName: a.DoctorName,
			Specialty:  a.Specialty,
			Date:       a.Date,
			Time:       a.Time,
			Notes:      a.Notes,
		})
	}
	return out
}

func hasAbnormal(values []LabInput) bool {
	for _, v := range values {
		if v.Trend == record.TrendUp || v.Trend == record.TrendDown {
			return true
		}
	}
	return false
}
