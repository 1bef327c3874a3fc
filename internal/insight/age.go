// Package insight derives summaries, tips and triage guidance from patient
// records without calling out to any language model.
package insight

import (
	"time"

	"github.com/mesikahq/spitalverse/internal/record"
)

// Age returns calendar age on now's date. ok is false when dob is empty or
// not a YYYY-MM-DD date.
func Age(dob string, now time.Time) (age int, ok bool) {
	if dob == "" {
		return 0, false
	}
	birth, err := time.Parse(record.DateLayout, dob)
	if err != nil {
		return 0, false
	}

	age = now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// RiskFor maps an abnormal-value count to a risk level. More than three
// abnormal values is high risk.
func RiskFor(abnormal int) record.RiskLevel {
	switch {
	case abnormal > 3:
		return record.RiskHigh
	case abnormal > 0:
		return record.RiskModerate
	default:
		return record.RiskLow
	}
}
