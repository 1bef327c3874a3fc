package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesikahq/spitalverse/internal/record"
)

const summarySystemPrompt = `You are a helpful health assistant that provides personalized health summaries.
You analyze health data including medications, lab values, upcoming appointments, and patient profile to provide insights.
Always be supportive and informative, but remind users to consult healthcare professionals.

Provide a detailed but concise summary that mentions:
- Overall health status based on lab values
- Current medication management
- Upcoming doctor appointments and what to discuss/prepare
- Any concerning trends or values that need attention

Format your response as JSON with the following structure:
{
    "summary": "A comprehensive 3-4 paragraph summary of the patient's health status, including medication overview, lab value analysis, and upcoming appointment reminders",
    "recommendations": ["Array of 5-7 specific, actionable recommendations covering lifestyle, medication adherence, appointment preparation, and health monitoring"],
    "riskLevel": "low|moderate|high based on the data"
}`

const tipsSystemPrompt = `You are a wellness advisor providing personalized health tips.
Based on the patient's profile, medications, and health data, generate relevant daily health tips.

Tips should be:
1. Actionable and specific
2. Relevant to the patient's health profile
3. Encouraging and positive in tone
4. Evidence-based when possible
5. Categorized for easy understanding

Format your response as JSON with the following structure:
{
    "dailyTip": {
        "title": "Featured tip title",
        "content": "Detailed tip content (2-3 sentences)",
        "category": "nutrition|exercise|sleep|stress|medication|prevention"
    },
    "tips": [
        {
            "id": "unique-id",
            "title": "Tip title",
            "content": "Tip content",
            "category": "nutrition|exercise|sleep|stress|medication|prevention",
            "priority": "high|medium|low"
        }
    ],
    "focusAreas": ["Array of 2-3 health areas to focus on based on profile"]
}

Generate 5-6 diverse tips covering different categories.`

const symptomSystemPrompt = `You are a helpful medical assistant that helps users understand their symptoms.
You DO NOT diagnose conditions. Instead, you:
1. Acknowledge the symptoms described
2. Suggest things they might want to track or monitor
3. Provide questions they should ask their doctor
4. Recommend appropriate care level (self-care, schedule appointment, or seek immediate care)
5. Offer general wellness suggestions

Always emphasize that you are NOT providing medical diagnosis and users should consult healthcare professionals.

Format your response as JSON with the following structure:
{
    "acknowledgment": "Brief acknowledgment of symptoms described",
    "thingsToTrack": ["Array of 3-5 things to monitor/track"],
    "questionsForDoctor": ["Array of 3-5 questions to ask a doctor"],
    "careLevel": "self-care|schedule-appointment|seek-immediate-care",
    "careLevelExplanation": "Brief explanation of why this care level",
    "wellnessSuggestions": ["Array of 2-3 general wellness tips relevant to symptoms"],
    "disclaimer": "Medical disclaimer text"
}`

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func knownAge(age *int) (int, bool) {
	if age == nil || *age <= 0 {
		return 0, false
	}
	return *age, true
}

func summaryPrompt(req SummaryRequest) string {
	var b strings.Builder
	b.WriteString("Please analyze the following health data and provide a comprehensive, detailed health summary:\n\n")

	b.WriteString("## Patient Profile:\n")
	if age, ok := knownAge(req.Profile.Age); ok {
		fmt.Fprintf(&b, "- Age: %d years old\n", age)
	}
	if req.Profile.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", req.Profile.Gender)
	}
	if req.Profile.BloodGroup != "" {
		fmt.Fprintf(&b, "- Blood Group: %s\n", req.Profile.BloodGroup)
	}
	if len(req.Profile.Allergies) > 0 {
		fmt.Fprintf(&b, "- Known Allergies: %s\n", strings.Join(req.Profile.Allergies, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Current Medications:\n")
	if len(req.Medications) > 0 {
		for _, m := range req.Medications {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", m.Name, m.Dosage, m.Frequency)
		}
	} else {
		b.WriteString("- No active medications\n")
	}
	b.WriteString("\n")

	b.WriteString("## Recent Lab Values:\n")
	if len(req.LabValues) > 0 {
		for _, v := range req.LabValues {
			status := "↓ Low"
			switch v.Trend {
			case record.TrendNormal:
				status = "✓ Normal"
			case record.TrendUp:
				status = "↑ Elevated"
			}
			fmt.Fprintf(&b, "- %s: %s %s (Normal: %s-%s) - %s\n",
				v.Name, number(v.Value), v.Unit, number(v.NormalRange.Min), number(v.NormalRange.Max), status)
		}
	} else {
		b.WriteString("- No lab values recorded\n")
	}
	b.WriteString("\n")

	b.WriteString("## Upcoming Doctor Appointments:\n")
	if len(req.Appointments) > 0 {
		for _, a := range req.Appointments {
			fmt.Fprintf(&b, "- %s (%s) on %s at %s", a.DoctorName, a.Specialty, a.Date, a.Time)
			if a.Notes != "" {
				fmt.Fprintf(&b, " - Notes: %s", a.Notes)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("- No upcoming appointments scheduled\n")
	}
	b.WriteString("\n")

	b.WriteString("Based on this data, please provide:\n")
	b.WriteString("1. A comprehensive health summary (3-4 paragraphs) covering:\n")
	b.WriteString("   - Overall health status and any concerning values\n")
	b.WriteString("   - Medication management overview\n")
	b.WriteString("   - Upcoming appointments and what to prepare/discuss with each doctor\n")
	b.WriteString("2. 5-7 specific, actionable recommendations for:\n")
	b.WriteString("   - Lifestyle improvements\n")
	b.WriteString("   - Medication adherence tips\n")
	b.WriteString("   - Questions to ask at upcoming appointments\n")
	b.WriteString("   - Health monitoring suggestions\n")
	b.WriteString("3. An overall risk assessment (low, moderate, or high)\n")
	return b.String()
}

func tipsPrompt(req TipsRequest) string {
	var b strings.Builder
	b.WriteString("Generate personalized health tips based on this patient profile:\n\n")

	if age, ok := knownAge(req.Age); ok {
		fmt.Fprintf(&b, "- Age: %d years\n", age)
	}
	if req.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", req.Gender)
	}
	if req.BloodGroup != "" {
		fmt.Fprintf(&b, "- Blood Group: %s\n", req.BloodGroup)
	}
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "- Allergies: %s\n", strings.Join(req.Allergies, ", "))
	}

	if len(req.Medications) > 0 {
		b.WriteString("\nCurrent Medications:\n")
		for _, m := range req.Medications {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", m.Name, m.Dosage, m.Frequency)
		}
	}

	var attention []LabInput
	for _, v := range req.LabValues {
		if v.Trend != record.TrendNormal {
			attention = append(attention, v)
		}
	}
	if len(attention) > 0 {
		b.WriteString("\nHealth Indicators Needing Attention:\n")
		for _, v := range attention {
			direction := "low"
			if v.Trend == record.TrendUp {
				direction = "elevated"
			}
			fmt.Fprintf(&b, "- %s: %s %s (%s)\n", v.Name, number(v.Value), v.Unit, direction)
		}
	}

	b.WriteString("\nProvide tips that are:\n")
	b.WriteString("1. Relevant to any medications they are taking\n")
	b.WriteString("2. Address any abnormal lab values\n")
	b.WriteString("3. Age and gender appropriate\n")
	b.WriteString("4. Consider their allergies when suggesting foods\n")
	return b.String()
}

func symptomPrompt(req SymptomRequest) string {
	var b strings.Builder
	b.WriteString("Please analyze the following symptoms and provide guidance:\n\n")

	fmt.Fprintf(&b, "## Symptoms Described:\n%s\n\n", req.Symptoms)
	duration := req.Duration
	if duration == "" {
		duration = "Not specified"
	}
	fmt.Fprintf(&b, "## Duration: %s\n", duration)
	fmt.Fprintf(&b, "## Severity: %s\n\n", req.Severity)

	if age, ok := knownAge(req.Profile.Age); ok {
		fmt.Fprintf(&b, "## Patient Info:\n- Age: %d years\n", age)
	}
	if req.Profile.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", req.Profile.Gender)
	}
	if len(req.Profile.Allergies) > 0 {
		fmt.Fprintf(&b, "- Known Allergies: %s\n", strings.Join(req.Profile.Allergies, ", "))
	}
	if len(req.Profile.Medications) > 0 {
		meds := make([]string, len(req.Profile.Medications))
		for i, m := range req.Profile.Medications {
			meds[i] = fmt.Sprintf("%s (%s)", m.Name, m.Dosage)
		}
		fmt.Fprintf(&b, "- Current Medications: %s\n", strings.Join(meds, ", "))
	}

	b.WriteString("\nBased on these symptoms, provide:\n")
	b.WriteString("1. Things the patient should track/monitor\n")
	b.WriteString("2. Questions to ask their doctor\n")
	b.WriteString("3. Recommended care level\n")
	b.WriteString("4. General wellness suggestions\n")
	return b.String()
}
