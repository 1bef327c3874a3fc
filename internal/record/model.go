package record

import (
	"errors"
)

// Layouts used for the string-encoded calendar fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTime       = errors.New("invalid time")
	ErrInvalidStatus     = errors.New("invalid medication status")
	ErrInvalidCategory   = errors.New("invalid document category")
	ErrInvalidFileType   = errors.New("unsupported document file type")
	ErrInvalidSex        = errors.New("invalid sex")
	ErrInvalidBloodGroup = errors.New("invalid blood group")
	ErrEndBeforeStart    = errors.New("end date is before start date")
	ErrAlreadyCompleted  = errors.New("medication already completed")
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

type BloodGroup string

var bloodGroups = map[BloodGroup]struct{}{
	"A+": {}, "A-": {}, "B+": {}, "B-": {}, "AB+": {}, "AB-": {}, "O+": {}, "O-": {},
}

func (b BloodGroup) Valid() bool {
	_, ok := bloodGroups[b]
	return ok
}

type EmergencyContact struct {
	Name         string      `json:"name" bson:"name"`
	Relationship string      `json:"relationship" bson:"relationship"`
	Phone        string      `json:"phone" bson:"phone"`
	BloodGroup   *BloodGroup `json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty"`
}

// PatientProfile is the singleton identity record of a store.
type PatientProfile struct {
	ID               string           `json:"id" bson:"id"`
	Photo            *string          `json:"photo" bson:"photo"`
	FullName         string           `json:"fullName" bson:"fullName"`
	DateOfBirth      string           `json:"dateOfBirth" bson:"dateOfBirth"`
	Gender           Sex              `json:"gender" bson:"gender"`
	BloodGroup       BloodGroup       `json:"bloodGroup" bson:"bloodGroup"`
	Allergies        []string         `json:"allergies" bson:"allergies"`
	EmergencyContact EmergencyContact `json:"emergencyContact" bson:"emergencyContact"`
}

type DocumentCategory string

const (
	CategoryLabs          DocumentCategory = "labs"
	CategoryPrescriptions DocumentCategory = "prescriptions"
	CategoryImaging       DocumentCategory = "imaging"
	CategoryDischarge     DocumentCategory = "discharge"
)

func (c DocumentCategory) Valid() bool {
	switch c {
	case CategoryLabs, CategoryPrescriptions, CategoryImaging, CategoryDischarge:
		return true
	}
	return false
}

type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

type MedicalDocument struct {
	ID         string           `json:"id" bson:"id"`
	Name       string           `json:"name" bson:"name"`
	Category   DocumentCategory `json:"category" bson:"category"`
	FileType   FileType         `json:"fileType" bson:"fileType"`
	FileURL    string           `json:"fileUrl" bson:"fileUrl"`
	UploadDate string           `json:"uploadDate" bson:"uploadDate"`
	FileSize   int64            `json:"fileSize" bson:"fileSize"`
}

type MedicationStatus string

const (
	StatusActive    MedicationStatus = "active"
	StatusCompleted MedicationStatus = "completed"
)

func (s MedicationStatus) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

type Medication struct {
	ID              string           `json:"id" bson:"id"`
	Name            string           `json:"name" bson:"name"`
	Dosage          string           `json:"dosage" bson:"dosage"`
	Frequency       string           `json:"frequency" bson:"frequency"`
	StartDate       string           `json:"startDate" bson:"startDate"`
	EndDate         *string          `json:"endDate" bson:"endDate"`
	Status          MedicationStatus `json:"status" bson:"status"`
	ReminderEnabled bool             `json:"reminderEnabled" bson:"reminderEnabled"`
	Notes           string           `json:"notes,omitempty" bson:"notes,omitempty"`
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendNormal Trend = "normal"
)

type Range struct {
	Min float64 `json:"min" yaml:"min" bson:"min"`
	Max float64 `json:"max" yaml:"max" bson:"max"`
}

type LabValue struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Value       float64 `json:"value" bson:"value"`
	Unit        string  `json:"unit" bson:"unit"`
	NormalRange Range   `json:"normalRange" bson:"normalRange"`
	Trend       Trend   `json:"trend" bson:"trend"`
	Date        string  `json:"date" bson:"date"`
}

// Abnormal reports whether the stored trend is outside the reference range.
func (v LabValue) Abnormal() bool {
	return v.Trend == TrendUp || v.Trend == TrendDown
}

type LabReport struct {
	ID         string     `json:"id" bson:"id"`
	Name       string     `json:"name" bson:"name"`
	Date       string     `json:"date" bson:"date"`
	DocumentID string     `json:"documentId,omitempty" bson:"documentId,omitempty"`
	Values     []LabValue `json:"values" bson:"values"`
}

type Appointment struct {
	ID         string `json:"id" bson:"id"`
	DoctorName string `json:"doctorName" bson:"doctorName"`
	Specialty  string `json:"specialty" bson:"specialty"`
	Date       string `json:"date" bson:"date"`
	Time       string `json:"time" bson:"time"`
	Location   string `json:"location" bson:"location"`
	Notes      string `json:"notes,omitempty" bson:"notes,omitempty"`
	// IsUpcoming is a cache written by the store. Readers call UpcomingAt.
	IsUpcoming bool `json:"isUpcoming" bson:"isUpcoming"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	}
	return false
}

type HealthSummary struct {
	ID              string    `json:"id" bson:"id"`
	GeneratedAt     string    `json:"generatedAt" bson:"generatedAt"`
	Summary         string    `json:"summary" bson:"summary"`
	Recommendations []string  `json:"recommendations" bson:"recommendations"`
	RiskLevel       RiskLevel `json:"riskLevel" bson:"riskLevel"`
}

// State is the full content of one store: the profile and the five collections.
type State struct {
	Profile         PatientProfile    `json:"profile"`
	Documents       []MedicalDocument `json:"documents"`
	Medications     []Medication      `json:"medications"`
	LabReports      []LabReport       `json:"labReports"`
	Appointments    []Appointment     `json:"appointments"`
	HealthSummaries []HealthSummary   `json:"healthSummaries"`
}

// EmptyState returns a state holding the default profile and empty collections.
func EmptyState() State {
	return State{
		Profile:         DefaultProfile(),
		Documents:       []MedicalDocument{},
		Medications:     []Medication{},
		LabReports:      []LabReport{},
		Appointments:    []Appointment{},
		HealthSummaries: []HealthSummary{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Profile:         s.Profile.Clone(),
		Documents:       append([]MedicalDocument{}, s.Documents...),
		Medications:     make([]Medication, len(s.Medications)),
		LabReports:      make([]LabReport, len(s.LabReports)),
		Appointments:    append([]Appointment{}, s.Appointments...),
		HealthSummaries: make([]HealthSummary, len(s.HealthSummaries)),
	}
	for i, m := range s.Medications {
		if m.EndDate != nil {
			end := *m.EndDate
			m.EndDate = &end
		}
		out.Medications[i] = m
	}
	for i, r := range s.LabReports {
		r.Values = append([]LabValue{}, r.Values...)
		out.LabReports[i] = r
	}
	for i, h := range s.HealthSummaries {
		h.Recommendations = append([]string{}, h.Recommendations...)
		out.HealthSummaries[i] = h
	}
	return out
}

// Normalize replaces nil collections with empty ones so the serialized
// form always carries arrays.
func (s *State) Normalize() {
	if s.Documents == nil {
		s.Documents = []MedicalDocument{}
	}
	if s.Medications == nil {
		s.Medications = []Medication{}
	}
	if s.LabReports == nil {
		s.LabReports = []LabReport{}
	}
	if s.Appointments == nil {
		s.Appointments = []Appointment{}
	}
	if s.HealthSummaries == nil {
		s.HealthSummaries = []HealthSummary{}
	}
	if s.Profile.Allergies == nil {
		s.Profile.Allergies = []string{}
	}
}

// ActiveMedications returns the medications whose status is active.
func (s State) ActiveMedications() []Medication {
	var active []Medication
	for _, m := range s.Medications {
		if m.Status == StatusActive {
			active = append(active, m)
		}
	}
	return active
}

// LabValues flattens every report's values in report order.
func (s State) LabValues() []LabValue {
	var values []LabValue
	for _, r := range s.LabReports {
		values = append(values, r.Values...)
	}
	return values
}

// AbnormalValues returns the flattened values whose trend is not normal.
func (s State) AbnormalValues() []LabValue {
	var abnormal []LabValue
	for _, v := range s.LabValues() {
		if v.Abnormal() {
			abnormal = append(abnormal, v)
		}
	}
	return abnormal
}
