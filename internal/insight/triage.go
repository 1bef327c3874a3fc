package insight

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

type CareLevel string

const (
	CareSelf        CareLevel = "self-care"
	CareAppointment CareLevel = "schedule-appointment"
	CareImmediate   CareLevel = "seek-immediate-care"
)

func (c CareLevel) Valid() bool {
	switch c {
	case CareSelf, CareAppointment, CareImmediate:
		return true
	}
	return false
}

// CareLevelFor maps severity to a care level. Anything other than severe or
// moderate is self-care.
func CareLevelFor(s Severity) CareLevel {
	switch s {
	case SeveritySevere:
		return CareImmediate
	case SeverityModerate:
		return CareAppointment
	default:
		return CareSelf
	}
}

var careExplanations = map[CareLevel]string{
	CareSelf:        "Based on the mild symptoms described, self-care measures may be appropriate while monitoring for changes.",
	CareAppointment: "Moderate symptoms should be evaluated by a healthcare provider within a few days.",
	CareImmediate:   "Severe symptoms warrant prompt medical attention. Please consult a healthcare provider soon.",
}

// Disclaimer accompanies every piece of symptom guidance.
const Disclaimer = "This information is for educational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment. Always seek the advice of your physician or other qualified health provider with any questions you may have regarding a medical condition."

type SymptomGuidance struct {
	Acknowledgment       string    `json:"acknowledgment"`
	ThingsToTrack        []string  `json:"thingsToTrack"`
	QuestionsForDoctor   []string  `json:"questionsForDoctor"`
	CareLevel            CareLevel `json:"careLevel"`
	CareLevelExplanation string    `json:"careLevelExplanation"`
	WellnessSuggestions  []string  `json:"wellnessSuggestions"`
	Disclaimer           string    `json:"disclaimer"`
}

// Triage returns fixed guidance keyed only by severity and duration.
func Triage(duration string, severity Severity) SymptomGuidance {
	level := CareLevelFor(severity)

	ack := "You've described symptoms that you've been experiencing"
	if duration != "" {
		ack += " for " + duration
	}
	ack += ". It's important to pay attention to how you're feeling."

	return SymptomGuidance{
		Acknowledgment: ack,
		ThingsToTrack: []string{
			"Keep a symptom diary noting when symptoms occur and their intensity",
			"Track any activities or foods that seem to trigger or worsen symptoms",
			"Monitor your temperature if you feel feverish",
			"Note any new symptoms that develop",
			"Record how well you sleep and your energy levels",
		},
		QuestionsForDoctor: []string{
			"What could be causing these symptoms?",
			"Are there any tests you recommend to help identify the cause?",
			"Could any of my current medications be contributing to these symptoms?",
			"What warning signs should I watch for that would require immediate attention?",
			"Are there any lifestyle changes that might help with these symptoms?",
		},
		CareLevel:            level,
		CareLevelExplanation: careExplanations[level],
		WellnessSuggestions: []string{
			"Ensure you are staying well-hydrated by drinking plenty of water",
			"Get adequate rest to support your body's natural healing processes",
			"Avoid strenuous activities until symptoms improve",
		},
		Disclaimer: Disclaimer,
	}
}
