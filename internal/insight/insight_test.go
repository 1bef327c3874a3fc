package insight

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesikahq/spitalverse/internal/labs"
	"github.com/mesikahq/spitalverse/internal/record"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestAge(t *testing.T) {
	tests := []struct {
		name  string
		dob   string
		today time.Time
		want  int
	}{
		{"day before birthday", "1997-03-28", time.Date(2024, 3, 27, 23, 59, 0, 0, time.UTC), 26},
		{"on birthday", "1997-03-28", time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), 27},
		{"after birthday", "1997-03-28", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), 27},
		{"earlier month", "1997-03-28", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 26},
		{"leap day birth", "2000-02-29", time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Age(tt.dob, tt.today)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Age("", now)
	assert.False(t, ok)
	_, ok = Age("28.03.1997", now)
	assert.False(t, ok)
}

func TestRiskIsMonotonic(t *testing.T) {
	assert.Equal(t, record.RiskLow, RiskFor(0))
	for n := 1; n <= 3; n++ {
		assert.Equal(t, record.RiskModerate, RiskFor(n), n)
	}
	assert.Equal(t, record.RiskHigh, RiskFor(4))
	assert.Equal(t, record.RiskHigh, RiskFor(40))
}

func abnormal(name string, trend record.Trend) record.LabValue {
	return record.LabValue{Name: name, Trend: trend, Date: "2025-01-05"}
}

func stateWith(values []record.LabValue, appts ...record.Appointment) record.State {
	st := record.EmptyState()
	st.LabReports = []record.LabReport{{ID: "r1", Name: "Panel", Date: "2025-01-05", Values: values}}
	st.Appointments = appts
	return st
}

func TestFourAbnormalValuesAreHighRisk(t *testing.T) {
	st := stateWith([]record.LabValue{
		abnormal("TSH", record.TrendUp),
		abnormal("CRP", record.TrendUp),
		abnormal("Ferritin", record.TrendDown),
		abnormal("Calcium", record.TrendDown),
	})
	s := Summarize(st, now)
	assert.Equal(t, record.RiskHigh, s.RiskLevel)
	assert.True(t, strings.HasSuffix(s.Summary, closingHigh))
}

func TestRecommendationsTruncateUniversalAdviceFirst(t *testing.T) {
	st := stateWith(
		[]record.LabValue{
			abnormal("Hemoglobin", record.TrendDown),
			abnormal("Total Cholesterol", record.TrendUp),
			abnormal("Fasting Blood Glucose", record.TrendUp),
			abnormal("Vitamin D (25-OH)", record.TrendDown),
			abnormal("HbA1c", record.TrendUp),
			abnormal("LDL Cholesterol", record.TrendUp),
		},
		record.Appointment{DoctorName: "Dr. Sarah Johnson", Specialty: "Endocrinologist", Date: "2025-04-01", Time: "10:30"},
		record.Appointment{DoctorName: "Dr. Michael Chen", Specialty: "Cardiologist", Date: "2025-04-15", Time: "14:00"},
		record.Appointment{DoctorName: "Dr. Lee", Specialty: "General Practice", Date: "2025-05-01", Time: "09:00"},
	)

	recs := DefaultGenerator().recommend(st.AbnormalValues(), record.Upcoming(st.Appointments, now))
	require.Len(t, recs, MaxRecommendations)
	assert.Equal(t, []string{adviceIron, adviceHeart, adviceCarbohydrate, adviceVitaminD, adviceHbA1c, adviceLDL}, recs[:6])
	assert.Contains(t, recs[6], "Dr. Sarah Johnson")
	assert.NotContains(t, recs, adviceHydration)
	assert.NotContains(t, recs, adviceSleep)

	s := Summarize(st, now)
	assert.Equal(t, recs, s.Recommendations)
	assert.Equal(t, record.RiskHigh, s.RiskLevel)
}

func TestUniversalAdviceKeptWhenRoomRemains(t *testing.T) {
	st := stateWith([]record.LabValue{abnormal("Hemoglobin", record.TrendDown)})
	recs := Summarize(st, now).Recommendations
	assert.Equal(t, []string{adviceIron, adviceHydration, adviceSleep}, recs)
}

func TestNoAbnormalValuesGivesPositiveRecommendation(t *testing.T) {
	st := stateWith([]record.LabValue{{Name: "TSH", Value: 2, Trend: record.TrendNormal, Date: "2025-01-05"}})
	s := Summarize(st, now)
	assert.Equal(t, record.RiskLow, s.RiskLevel)
	assert.Equal(t, []string{advicePositive, adviceHydration, adviceSleep}, s.Recommendations)
	assert.Contains(t, s.Summary, "All your lab values are within normal range.")
	assert.True(t, strings.HasSuffix(s.Summary, closingLow))
}

func TestLabAdviceMatching(t *testing.T) {
	tests := []struct {
		value record.LabValue
		want  string
	}{
		{abnormal("HDL Cholesterol", record.TrendUp), adviceHeart},
		{abnormal("Fasting Blood Sugar", record.TrendUp), adviceCarbohydrate},
		{abnormal("Vitamin D", record.TrendDown), adviceVitaminD},
		{abnormal("HbA1c (IFCC)", record.TrendUp), adviceHbA1c},
	}
	for _, tt := range tests {
		recs := DefaultGenerator().recommend([]record.LabValue{tt.value}, nil)
		assert.Equal(t, tt.want, recs[0], tt.value.Name)
	}

	// direction and exact-name rules are respected
	recs := DefaultGenerator().recommend([]record.LabValue{
		abnormal("Hemoglobin", record.TrendUp),
		abnormal("hemoglobin", record.TrendDown),
		abnormal("Total Cholesterol", record.TrendDown),
	}, nil)
	assert.Equal(t, []string{adviceHydration, adviceSleep}, recs)
}

func TestAppointmentAdviceUsesUpcomingOnly(t *testing.T) {
	st := stateWith(nil,
		record.Appointment{DoctorName: "Dr. Past", Specialty: "Cardiology", Date: "2025-01-01", Time: "08:00"},
		record.Appointment{DoctorName: "Dr. Primary", Specialty: "primary care", Date: "2025-03-20", Time: "08:00"},
		record.Appointment{DoctorName: "Dr. Skin", Specialty: "Dermatology", Date: "2025-03-21", Time: "08:00"},
	)
	recs := Summarize(st, now).Recommendations
	require.Len(t, recs, 4)
	assert.Equal(t, advicePositive, recs[0])
	assert.Contains(t, recs[1], "Dr. Primary")
	assert.Contains(t, recs[1], "March 20, 2025")
}

func TestSummaryText(t *testing.T) {
	st := record.EmptyState()
	st.Profile.FullName = "Alex Morgan"
	st.Profile.DateOfBirth = "1997-03-28"
	st.Profile.Gender = record.SexMale
	st.Profile.BloodGroup = "O+"
	st.Profile.Allergies = []string{"Penicillin"}
	st.Medications = []record.Medication{
		{Name: "Metformin", Status: record.StatusActive},
		{Name: "Old", Status: record.StatusCompleted},
	}
	st.LabReports = []record.LabReport{
		{Date: "2024-06-01", Values: []record.LabValue{abnormal("Ferritin", record.TrendDown)}},
		{Date: "2024-12-15", Values: []record.LabValue{abnormal("CRP", record.TrendUp)}},
	}
	st.Appointments = []record.Appointment{{DoctorName: "Dr. Chen", Specialty: "Cardiologist", Date: "2025-04-01", Time: "14:00"}}

	s := Summarize(st, now)
	paragraphs := strings.Split(s.Summary, "\n\n")
	require.Len(t, paragraphs, 6)
	assert.Equal(t, "Health Summary for Alex Morgan. You are 27 years old, male, blood type O+.", paragraphs[0])
	assert.Equal(t, "You are currently on 1 medication: Metformin.", paragraphs[1])
	assert.Equal(t, "Your most recent lab report was on December 15, 2024. You have elevated levels of CRP. You have low levels of Ferritin.", paragraphs[2])
	assert.Equal(t, "You have 1 upcoming appointment: Dr. Chen (Cardiologist) on April 1, 2025 at 14:00.", paragraphs[3])
	assert.Equal(t, "You have 1 known allergy: Penicillin.", paragraphs[4])
	assert.Equal(t, closingModerate, paragraphs[5])
	assert.Equal(t, "2025-03-10T09:00:00Z", s.GeneratedAt)
	assert.Empty(t, s.ID)
}

func TestSummarizeIsDeterministic(t *testing.T) {
	st := record.DemoState(now)
	assert.Equal(t, Summarize(st, now), Summarize(st, now))
}

func TestEndToEndModerateScenario(t *testing.T) {
	report, err := labs.BuildReport("Blood work", "2025-03-01", []labs.Draft{
		{Name: "Hemoglobin", Value: 10, Unit: "g/dL", NormalRange: record.Range{Min: 12, Max: 17.5}},
		{Name: "Fasting Blood Glucose", Value: 112, Unit: "mg/dL", NormalRange: record.Range{Min: 70, Max: 99}},
	})
	require.NoError(t, err)

	st := record.EmptyState()
	st.LabReports = []record.LabReport{report}

	s := Summarize(st, now)
	assert.Equal(t, record.RiskModerate, s.RiskLevel)
	assert.Contains(t, s.Recommendations, adviceIron)
	assert.Contains(t, s.Recommendations, adviceCarbohydrate)
}

func TestTipsPrependOrder(t *testing.T) {
	b := Tips(TipsInput{ActiveMedications: 2, HasAbnormalValues: true})
	require.Len(t, b.Tips, MaxTips)
	assert.Equal(t, "prevention-2", b.Tips[0].ID)
	assert.Equal(t, "medication-1", b.Tips[1].ID)
	assert.Contains(t, b.Tips[1].Content, "You have 2 active medication(s).")
	assert.Equal(t, "hydration-1", b.Tips[2].ID)
	assert.Equal(t, "stress-1", b.Tips[5].ID)
	assert.Equal(t, []string{"General Wellness", "Preventive Care", "Medication Management"}, b.FocusAreas)
	assert.Equal(t, "Start Your Day with Purpose", b.DailyTip.Title)
}

func TestTipsVariants(t *testing.T) {
	plain := Tips(TipsInput{})
	require.Len(t, plain.Tips, 5)
	assert.Equal(t, "hydration-1", plain.Tips[0].ID)
	assert.Equal(t, []string{"General Wellness", "Preventive Care"}, plain.FocusAreas)

	abn := Tips(TipsInput{HasAbnormalValues: true})
	require.Len(t, abn.Tips, 6)
	assert.Equal(t, "prevention-2", abn.Tips[0].ID)
	assert.Equal(t, "prevention-1", abn.Tips[5].ID)
	assert.Equal(t, []string{"General Wellness", "Preventive Care", "Health Monitoring"}, abn.FocusAreas)

	meds := Tips(TipsInput{ActiveMedications: 1})
	assert.Equal(t, "medication-1", meds.Tips[0].ID)
}

func TestCareLevelFor(t *testing.T) {
	assert.Equal(t, CareImmediate, CareLevelFor(SeveritySevere))
	assert.Equal(t, CareAppointment, CareLevelFor(SeverityModerate))
	assert.Equal(t, CareSelf, CareLevelFor(SeverityMild))
	assert.Equal(t, CareSelf, CareLevelFor("unknown"))
}

func TestTriage(t *testing.T) {
	g := Triage("3 days", SeveritySevere)
	assert.Equal(t, CareImmediate, g.CareLevel)
	assert.Contains(t, g.Acknowledgment, "for 3 days.")
	assert.Len(t, g.ThingsToTrack, 5)
	assert.Len(t, g.QuestionsForDoctor, 5)
	assert.Len(t, g.WellnessSuggestions, 3)
	assert.Equal(t, Disclaimer, g.Disclaimer)

	g = Triage("", SeverityMild)
	assert.Equal(t, "You've described symptoms that you've been experiencing. It's important to pay attention to how you're feeling.", g.Acknowledgment)
	assert.Contains(t, g.CareLevelExplanation, "self-care")
}
