package insight

import "fmt"

// MaxTips and MaxFocusAreas cap the fallback tips bundle.
const (
	MaxTips       = 6
	MaxFocusAreas = 3
)

type TipCategory string

const (
	CategoryNutrition  TipCategory = "nutrition"
	CategoryExercise   TipCategory = "exercise"
	CategorySleep      TipCategory = "sleep"
	CategoryStress     TipCategory = "stress"
	CategoryMedication TipCategory = "medication"
	CategoryPrevention TipCategory = "prevention"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type DailyTip struct {
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Category TipCategory `json:"category"`
}

type Tip struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Category TipCategory `json:"category"`
	Priority Priority    `json:"priority"`
}

type TipsBundle struct {
	DailyTip   DailyTip `json:"dailyTip"`
	Tips       []Tip    `json:"tips"`
	FocusAreas []string `json:"focusAreas"`
}

type TipsInput struct {
	ActiveMedications int
	HasAbnormalValues bool
}

func baseTips() []Tip {
	return []Tip{
		{
			ID:       "hydration-1",
			Title:    "Stay Hydrated",
			Content:  "Aim to drink 8-10 glasses of water daily. Proper hydration supports every bodily function, from digestion to brain performance.",
			Category: CategoryNutrition,
			Priority: PriorityHigh,
		},
		{
			ID:       "sleep-1",
			Title:    "Prioritize Quality Sleep",
			Content:  "Establish a consistent sleep schedule by going to bed and waking up at the same time each day, even on weekends.",
			Category: CategorySleep,
			Priority: PriorityHigh,
		},
		{
			ID:       "exercise-1",
			Title:    "Move Your Body Daily",
			Content:  "Aim for at least 30 minutes of moderate activity most days. Even a brisk walk counts toward your daily movement goals.",
			Category: CategoryExercise,
			Priority: PriorityMedium,
		},
		{
			ID:       "stress-1",
			Title:    "Practice Mindful Breathing",
			Content:  "Take 5 minutes each day to practice deep breathing. Inhale for 4 counts, hold for 4, exhale for 4. This activates your relaxation response.",
			Category: CategoryStress,
			Priority: PriorityMedium,
		},
		{
			ID:       "prevention-1",
			Title:    "Schedule Regular Check-ups",
			Content:  "Stay proactive with your health by scheduling regular check-ups and screenings appropriate for your age and health history.",
			Category: CategoryPrevention,
			Priority: PriorityMedium,
		},
	}
}

// Tips builds the fallback tips bundle. The abnormal-trend tip is placed
// ahead of the medication tip, which is ahead of the base tips.
func Tips(in TipsInput) TipsBundle {
	tips := baseTips()

	if in.ActiveMedications > 0 {
		tips = append([]Tip{{
			ID:       "medication-1",
			Title:    "Medication Adherence",
			Content:  fmt.Sprintf("You have %d active medication(s). Set daily reminders to take your medications at the same time each day for best results.", in.ActiveMedications),
			Category: CategoryMedication,
			Priority: PriorityHigh,
		}}, tips...)
	}

	if in.HasAbnormalValues {
		tips = append([]Tip{{
			ID:       "prevention-2",
			Title:    "Monitor Your Health Trends",
			Content:  "Some of your lab values are outside normal range. Keep tracking them and discuss trends with your healthcare provider at your next visit.",
			Category: CategoryPrevention,
			Priority: PriorityHigh,
		}}, tips...)
	}

	focus := []string{"General Wellness", "Preventive Care"}
	if in.ActiveMedications > 0 {
		focus = append(focus, "Medication Management")
	}
	if in.HasAbnormalValues {
		focus = append(focus, "Health Monitoring")
	}

	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	if len(focus) > MaxFocusAreas {
		focus = focus[:MaxFocusAreas]
	}

	return TipsBundle{
		DailyTip: DailyTip{
			Title:    "Start Your Day with Purpose",
			Content:  "Begin each morning with a glass of water and a moment of gratitude. Hydration kickstarts your metabolism and a positive mindset sets the tone for the day.",
			Category: CategoryNutrition,
		},
		Tips:       tips,
		FocusAreas: focus,
	}
}
