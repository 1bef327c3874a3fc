package labs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesikahq/spitalverse/internal/record"
)

func TestClassify(t *testing.T) {
	r := record.Range{Min: 70, Max: 99}
	tests := []struct {
		value float64
		want  record.Trend
	}{
		{69.99, record.TrendDown},
		{70, record.TrendNormal},
		{85, record.TrendNormal},
		{99, record.TrendNormal},
		{99.01, record.TrendUp},
		{112, record.TrendUp},
		{-5, record.TrendDown},
		{math.Inf(1), record.TrendUp},
		{math.Inf(-1), record.TrendDown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.value, r), "value %v", tt.value)
	}
}

func TestClassifyDegenerateRange(t *testing.T) {
	r := record.Range{Min: 5, Max: 5}
	assert.Equal(t, record.TrendNormal, Classify(5, r))
	assert.Equal(t, record.TrendDown, Classify(4.9, r))
	assert.Equal(t, record.TrendUp, Classify(5.1, r))
}

func TestNewRangeRejectsInverted(t *testing.T) {
	_, err := NewRange(10, 1)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = NewRange(1, 1)
	assert.NoError(t, err)
}

func TestDefaultCatalogRangesAreWellFormed(t *testing.T) {
	c := DefaultCatalog()
	require.Len(t, c.Categories(), 8)
	for _, cat := range c.Categories() {
		for _, tt := range cat.Tests {
			assert.LessOrEqual(t, tt.NormalRange.Min, tt.NormalRange.Max, tt.Name)
		}
	}
	assert.Len(t, c.Popular(), 8)

	hb, ok := c.Lookup("Hemoglobin")
	require.True(t, ok)
	assert.Equal(t, record.Range{Min: 12.0, Max: 17.5}, hb.NormalRange)
	assert.Len(t, c.Search("cholesterol"), 3)
}

func TestParseCatalogExtends(t *testing.T) {
	raw := []byte(`
categories:
  - key: lipid
    tests:
      - name: LDL Cholesterol
        unit: mg/dL
        normalRange: {min: 0, max: 116}
  - key: cardiac
    name: Cardiac Markers
    tests:
      - name: Troponin I
        unit: ng/L
        normalRange: {min: 0, max: 14}
`)
	c, err := ParseCatalog(raw)
	require.NoError(t, err)

	ldl, ok := c.Lookup("LDL Cholesterol")
	require.True(t, ok)
	assert.Equal(t, 116.0, ldl.NormalRange.Max)

	_, ok = c.Lookup("Troponin I")
	assert.True(t, ok)
	assert.Len(t, c.Categories(), 9)

	// the built-in catalog is untouched
	ldl, _ = DefaultCatalog().Lookup("LDL Cholesterol")
	assert.Equal(t, 130.0, ldl.NormalRange.Max)
}

func TestParseCatalogRejectsInvertedRange(t *testing.T) {
	raw := []byte(`
categories:
  - key: custom
    name: Custom
    tests:
      - name: Broken
        unit: x
        normalRange: {min: 10, max: 1}
`)
	_, err := ParseCatalog(raw)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestBuildReportClassifiesOnce(t *testing.T) {
	report, err := BuildReport("Checkup", "2024-12-15", []Draft{
		{Name: "Fasting Blood Glucose", Value: 112, Unit: "mg/dL", NormalRange: record.Range{Min: 70, Max: 99}},
		{Name: "Hemoglobin", Value: 10, Unit: "g/dL", NormalRange: record.Range{Min: 12, Max: 17.5}},
		{Name: "TSH", Value: 2.4, Unit: "mIU/L", NormalRange: record.Range{Min: 0.4, Max: 4}},
	})
	require.NoError(t, err)
	require.Len(t, report.Values, 3)
	assert.NotEmpty(t, report.ID)

	assert.Equal(t, record.TrendUp, report.Values[0].Trend)
	assert.Equal(t, record.TrendDown, report.Values[1].Trend)
	assert.Equal(t, record.TrendNormal, report.Values[2].Trend)
	for _, v := range report.Values {
		assert.Equal(t, "2024-12-15", v.Date)
		assert.Equal(t, Classify(v.Value, v.NormalRange), v.Trend)
		assert.NotEmpty(t, v.ID)
	}
}

func TestBuildReportRejectsIncompleteInput(t *testing.T) {
	valid := Draft{Name: "TSH", Value: 2, NormalRange: record.Range{Min: 0.4, Max: 4}}
	tests := []struct {
		name    string
		title   string
		date    string
		drafts  []Draft
		wantErr error
	}{
		{"no name", "", "2024-01-01", []Draft{valid}, ErrMissingReportName},
		{"bad date", "R", "01/01/2024", []Draft{valid}, record.ErrInvalidDate},
		{"no values", "R", "2024-01-01", nil, ErrEmptyReport},
		{"placeholder", "R", "2024-01-01", []Draft{{Name: "CRP", Value: 0, NormalRange: record.Range{Max: 5}}}, ErrPlaceholderValue},
		{"duplicate", "R", "2024-01-01", []Draft{valid, valid}, ErrDuplicateTest},
		{"inverted", "R", "2024-01-01", []Draft{{Name: "X", Value: 1, NormalRange: record.Range{Min: 3, Max: 2}}}, ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildReport(tt.title, tt.date, tt.drafts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInterpret(t *testing.T) {
	text, ok := Interpret("Vitamin D (25-OH)", record.TrendDown)
	require.True(t, ok)
	assert.Contains(t, text, "Vitamin D deficiency")

	_, ok = Interpret("Vitamin D (25-OH)", record.TrendNormal)
	assert.False(t, ok)
	_, ok = Interpret("Unknown", record.TrendUp)
	assert.False(t, ok)
}

func TestDraftFromCatalog(t *testing.T) {
	d, ok := DefaultCatalog().DraftFromCatalog("HbA1c", 6.1)
	require.True(t, ok)
	assert.Equal(t, "%", d.Unit)
	assert.Equal(t, 5.6, d.NormalRange.Max)
}
