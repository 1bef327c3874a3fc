package insight

import (
	"fmt"
	"strings"

	"github.com/mesikahq/spitalverse/internal/record"
)

// Matcher decides whether a lab test name is covered by a rule.
type Matcher func(name string) bool

// Named matches any of the given names exactly.
func Named(names ...string) Matcher {
	return func(name string) bool {
		for _, n := range names {
			if name == n {
				return true
			}
		}
		return false
	}
}

// Containing matches names that contain sub.
func Containing(sub string) Matcher {
	return func(name string) bool {
		return strings.Contains(name, sub)
	}
}

// LabAdvice maps an out-of-range lab test to a recommendation.
type LabAdvice struct {
	Match  Matcher
	Trend  record.Trend
	Advice string
}

// AppointmentAdvice maps an upcoming appointment's specialty to a
// preparation tip. Keywords match the specialty case-insensitively.
type AppointmentAdvice struct {
	Keywords []string
	Advice   func(a record.Appointment, date string) string
}

const (
	adviceIron         = "Consider iron-rich foods like spinach, red meat, and legumes to help increase hemoglobin levels."
	adviceHeart        = "Focus on a heart-healthy diet low in saturated fats. Consider increasing fiber intake and physical activity."
	adviceCarbohydrate = "Monitor your carbohydrate intake and consider speaking with your doctor about blood sugar management."
	adviceVitaminD     = "Consider vitamin D supplementation or increased sun exposure. Discuss with your doctor."
	adviceHbA1c        = "Your HbA1c is elevated. Consider a consultation with an endocrinologist to review long-term blood sugar control."
	adviceLDL          = "Your LDL cholesterol is high. Limit fried foods and red meat, and add oats, nuts, and legumes to help lower LDL."

	advicePositive  = "Continue maintaining your healthy lifestyle."
	adviceHydration = "Stay hydrated by drinking 8-10 glasses of water daily."
	adviceSleep     = "Aim for 7-9 hours of quality sleep each night to support recovery and overall health."
)

// DefaultLabAdvice is scanned in order for every abnormal value.
var DefaultLabAdvice = []LabAdvice{
	{Match: Named("Hemoglobin"), Trend: record.TrendDown, Advice: adviceIron},
	{Match: Containing("Cholesterol"), Trend: record.TrendUp, Advice: adviceHeart},
	{Match: Named("Fasting Blood Sugar", "Fasting Blood Glucose", "Glucose"), Trend: record.TrendUp, Advice: adviceCarbohydrate},
	{Match: Named("Vitamin D", "Vitamin D (25-OH)"), Trend: record.TrendDown, Advice: adviceVitaminD},
	{Match: Named("HbA1c", "HbA1c (IFCC)"), Trend: record.TrendUp, Advice: adviceHbA1c},
	{Match: Named("LDL", "LDL Cholesterol"), Trend: record.TrendUp, Advice: adviceLDL},
}

// DefaultAppointmentAdvice is checked in order; an appointment contributes
// the first tip whose keyword matches.
var DefaultAppointmentAdvice = []AppointmentAdvice{
	{
		Keywords: []string{"endocrin"},
		Advice: func(a record.Appointment, date string) string {
			return fmt.Sprintf("Before your visit with %s (%s) on %s, write down recent blood sugar readings and bring your latest HbA1c results.", a.DoctorName, a.Specialty, date)
		},
	},
	{
		Keywords: []string{"cardio"},
		Advice: func(a record.Appointment, date string) string {
			return fmt.Sprintf("Before your visit with %s (%s) on %s, bring a blood pressure log and your latest cholesterol results.", a.DoctorName, a.Specialty, date)
		},
	},
	{
		Keywords: []string{"general", "primary"},
		Advice: func(a record.Appointment, date string) string {
			return fmt.Sprintf("Before your check-up with %s on %s, prepare a list of your current medications and any questions about your health.", a.DoctorName, date)
		},
	},
}

// UniversalAdvice is appended after every other recommendation.
var UniversalAdvice = []string{adviceHydration, adviceSleep}

func (r AppointmentAdvice) matches(specialty string) bool {
	s := strings.ToLower(specialty)
	for _, k := range r.Keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
