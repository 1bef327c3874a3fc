package labs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/spitalverse/internal/record"
)

var (
	ErrEmptyReport       = errors.New("lab report has no values")
	ErrPlaceholderValue  = errors.New("lab value left at placeholder 0")
	ErrDuplicateTest     = errors.New("lab test listed twice in one report")
	ErrMissingReportName = errors.New("lab report name is required")
)

// Draft is a lab value as entered, before it becomes part of a report.
type Draft struct {
	Name        string       `json:"name"`
	Value       float64      `json:"value"`
	Unit        string       `json:"unit"`
	NormalRange record.Range `json:"normalRange"`
}

// DraftFromCatalog prefills a draft with the catalog's unit and range.
func (c *Catalog) DraftFromCatalog(name string, value float64) (Draft, bool) {
	t, ok := c.Lookup(name)
	if !ok {
		return Draft{}, false
	}
	return Draft{Name: t.Name, Value: value, Unit: t.Unit, NormalRange: t.NormalRange}, true
}

// BuildReport turns drafts into an immutable report. Every value gets the
// report date and a trend classified once, here.
func BuildReport(name, date string, drafts []Draft) (record.LabReport, error) {
	if strings.TrimSpace(name) == "" {
		return record.LabReport{}, ErrMissingReportName
	}
	if _, err := time.Parse(record.DateLayout, date); err != nil {
		return record.LabReport{}, fmt.Errorf("%w: %q", record.ErrInvalidDate, date)
	}
	if len(drafts) == 0 {
		return record.LabReport{}, ErrEmptyReport
	}

	seen := make(map[string]struct{}, len(drafts))
	values := make([]record.LabValue, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Name) == "" {
			return record.LabReport{}, fmt.Errorf("%w: lab value name", record.ErrMissingField)
		}
		if _, dup := seen[d.Name]; dup {
			return record.LabReport{}, fmt.Errorf("%w: %s", ErrDuplicateTest, d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.Value == 0 {
			return record.LabReport{}, fmt.Errorf("%w: %s", ErrPlaceholderValue, d.Name)
		}
		r, err := NewRange(d.NormalRange.Min, d.NormalRange.Max)
		if err != nil {
			return record.LabReport{}, fmt.Errorf("%s: %w", d.Name, err)
		}
		values = append(values, record.LabValue{
			ID:          uuid.NewString(),
			Name:        d.Name,
			Value:       d.Value,
			Unit:        d.Unit,
			NormalRange: r,
			Trend:       Classify(d.Value, r),
			Date:        date,
		})
	}

	return record.LabReport{
		ID:     uuid.NewString(),
		Name:   name,
		Date:   date,
		Values: values,
	}, nil
}
