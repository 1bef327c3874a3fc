package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/mesikahq/spitalverse/internal/record"
)

// MaxRecommendations caps the recommendation list of a generated summary.
const MaxRecommendations = 7

const (
	closingLow      = "No critical health risks detected based on your current data."
	closingModerate = "Some values require attention. Please consult with your healthcare provider."
	closingHigh     = "Multiple values need attention. We recommend scheduling a check-up with your doctor."
)

const humanDate = "January 2, 2006"

// Generator builds health summaries from a record snapshot.
type Generator struct {
	LabAdvice         []LabAdvice
	AppointmentAdvice []AppointmentAdvice
	Universal         []string
}

// DefaultGenerator uses the built-in rule tables.
func DefaultGenerator() *Generator {
	return &Generator{
		LabAdvice:         DefaultLabAdvice,
		AppointmentAdvice: DefaultAppointmentAdvice,
		Universal:         UniversalAdvice,
	}
}

// Summarize runs the default generator.
func Summarize(st record.State, now time.Time) record.HealthSummary {
	return DefaultGenerator().Summarize(st, now)
}

// Summarize produces a summary of st as of now. The result has no ID; the
// store assigns one when it is appended.
func (g *Generator) Summarize(st record.State, now time.Time) record.HealthSummary {
	active := st.ActiveMedications()
	abnormal := st.AbnormalValues()
	upcoming := record.Upcoming(st.Appointments, now)
	risk := RiskFor(len(abnormal))

	paragraphs := []string{
		profileParagraph(st.Profile, now),
		medicationParagraph(active),
		labParagraph(st.LabReports, abnormal),
		appointmentParagraph(upcoming),
	}
	if p := allergyParagraph(st.Profile.Allergies); p != "" {
		paragraphs = append(paragraphs, p)
	}
	paragraphs = append(paragraphs, closing(risk))

	return record.HealthSummary{
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		Summary:         strings.Join(paragraphs, "\n\n"),
		Recommendations: g.recommend(abnormal, upcoming),
		RiskLevel:       risk,
	}
}

func (g *Generator) recommend(abnormal []record.LabValue, upcoming []record.Appointment) []string {
	var recs recommendations

	for _, v := range abnormal {
		for _, rule := range g.LabAdvice {
			if v.Trend == rule.Trend && rule.Match(v.Name) {
				recs.add(rule.Advice)
			}
		}
	}
	if len(abnormal) == 0 {
		recs.add(advicePositive)
	}

	for _, a := range upcoming {
		for _, rule := range g.AppointmentAdvice {
			if rule.matches(a.Specialty) {
				recs.add(rule.Advice(a, formatDate(a.Date)))
				break
			}
		}
	}

	for _, u := range g.Universal {
		recs.add(u)
	}

	if len(recs.items) > MaxRecommendations {
		return recs.items[:MaxRecommendations]
	}
	return recs.items
}

// recommendations keeps insertion order and drops repeated advice.
type recommendations struct {
	items []string
	seen  map[string]struct{}
}

func (r *recommendations) add(s string) {
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[s]; ok {
		return
	}
	r.seen[s] = struct{}{}
	r.items = append(r.items, s)
}

func profileParagraph(p record.PatientProfile, now time.Time) string {
	var sentences []string
	if p.FullName != "" {
		sentences = append(sentences, fmt.Sprintf("Health Summary for %s.", p.FullName))
	}

	var details []string
	if p.Gender != "" {
		details = append(details, string(p.Gender))
	}
	if p.BloodGroup != "" {
		details = append(details, "blood type "+string(p.BloodGroup))
	}
	if age, ok := Age(p.DateOfBirth, now); ok {
		line := fmt.Sprintf("You are %d years old", age)
		for _, d := range details {
			line += ", " + d
		}
		sentences = append(sentences, line+".")
	} else if len(details) > 0 {
		sentences = append(sentences, "Your profile lists "+strings.Join(details, ", ")+".")
	}

	if len(sentences) == 0 {
		return "Health Summary."
	}
	return strings.Join(sentences, " ")
}

func medicationParagraph(active []record.Medication) string {
	if len(active) == 0 {
		return "You have no active medications recorded."
	}
	names := make([]string, len(active))
	for i, m := range active {
		names[i] = m.Name
	}
	return fmt.Sprintf("You are currently on %d medication%s: %s.", len(active), plural(len(active), "", "s"), strings.Join(names, ", "))
}

func labParagraph(reports []record.LabReport, abnormal []record.LabValue) string {
	if len(reports) == 0 {
		return "No lab reports recorded yet. Consider adding your recent blood test results for personalized insights."
	}

	latest := reports[0]
	for _, r := range reports[1:] {
		if r.Date >= latest.Date {
			latest = r
		}
	}
	sentences := []string{fmt.Sprintf("Your most recent lab report was on %s.", formatDate(latest.Date))}

	if len(abnormal) == 0 {
		sentences = append(sentences, "All your lab values are within normal range.")
		return strings.Join(sentences, " ")
	}

	var high, low []string
	for _, v := range abnormal {
		switch v.Trend {
		case record.TrendUp:
			high = append(high, v.Name)
		case record.TrendDown:
			low = append(low, v.Name)
		}
	}
	if len(high) > 0 {
		sentences = append(sentences, fmt.Sprintf("You have elevated levels of %s.", strings.Join(high, ", ")))
	}
	if len(low) > 0 {
		sentences = append(sentences, fmt.Sprintf("You have low levels of %s.", strings.Join(low, ", ")))
	}
	return strings.Join(sentences, " ")
}

func appointmentParagraph(upcoming []record.Appointment) string {
	if len(upcoming) == 0 {
		return "You have no upcoming appointments scheduled."
	}
	visits := make([]string, len(upcoming))
	for i, a := range upcoming {
		visits[i] = fmt.Sprintf("%s (%s) on %s at %s", a.DoctorName, a.Specialty, formatDate(a.Date), a.Time)
	}
	return fmt.Sprintf("You have %d upcoming appointment%s: %s.", len(upcoming), plural(len(upcoming), "", "s"), strings.Join(visits, "; "))
}

func allergyParagraph(allergies []string) string {
	if len(allergies) == 0 {
		return ""
	}
	return fmt.Sprintf("You have %d known allerg%s: %s.", len(allergies), plural(len(allergies), "y", "ies"), strings.Join(allergies, ", "))
}

func closing(risk record.RiskLevel) string {
	switch risk {
	case record.RiskHigh:
		return closingHigh
	case record.RiskModerate:
		return closingModerate
	default:
		return closingLow
	}
}

func formatDate(date string) string {
	t, err := time.Parse(record.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(humanDate)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
