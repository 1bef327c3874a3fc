package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesikahq/spitalverse/internal/insight"
	"github.com/mesikahq/spitalverse/internal/record"
	"github.com/mesikahq/spitalverse/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeGateway struct {
	summary  func(req SummaryRequest) SummaryResult
	tips     func(req TipsRequest) TipsResult
	symptoms func(req SymptomRequest) SymptomResult
}

func (f *fakeGateway) Summary(ctx context.Context, req SummaryRequest) SummaryResult {
	return f.summary(req)
}

func (f *fakeGateway) Tips(ctx context.Context, req TipsRequest) TipsResult {
	return f.tips(req)
}

func (f *fakeGateway) Symptoms(ctx context.Context, req SymptomRequest) SymptomResult {
	return f.symptoms(req)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), store.NewMemorySlot(), store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return s
}

func TestGenerateSummaryFallsBackAndStores(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, err := st.AddMedication(ctx, record.Medication{Name: "Metformin", Dosage: "500mg", Frequency: "Twice daily", StartDate: "2025-01-01", Status: record.StatusActive})
	require.NoError(t, err)

	var outcomes []Outcome
	svc := NewService(st, NewGateway(&fakeCompleter{}, nil),
		WithOutcome(func(_ context.Context, o Outcome) { outcomes = append(outcomes, o) }),
	)

	out, err := svc.GenerateSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusUnavailable, out.Status)
	assert.Equal(t, SourceFallback, out.Source)
	assert.True(t, out.Applied)
	assert.NotEmpty(t, out.Summary.ID)
	assert.Contains(t, out.Summary.Summary, "Metformin")

	summaries := st.Snapshot().HealthSummaries
	require.Len(t, summaries, 1)
	assert.Equal(t, out.Summary, summaries[0])

	require.Len(t, outcomes, 1)
	assert.Equal(t, Outcome{Kind: KindSummary, Status: StatusUnavailable, Source: SourceFallback, Applied: true, At: testNow}, outcomes[0])
}

func TestGenerateSummaryUsesModelResult(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	gw := &fakeGateway{summary: func(req SummaryRequest) SummaryResult {
		require.NotNil(t, req.Profile.Age)
		assert.Equal(t, 27, *req.Profile.Age)
		return SummaryResult{Status: StatusOK, Summary: "From the model.", Recommendations: []string{"Walk"}, RiskLevel: record.RiskLow}
	}}

	out, err := NewService(st, gw).GenerateSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceAI, out.Source)
	assert.Equal(t, "From the model.", out.Summary.Summary)
	assert.Equal(t, "2025-03-10T09:00:00Z", out.Summary.GeneratedAt)
}

func TestGenerateSummaryDiscardsStaleResult(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seq := NewSequencer()

	gw := &fakeGateway{summary: func(req SummaryRequest) SummaryResult {
		// a newer request starts while this one is in flight
		seq.Next(KindSummary)
		return SummaryResult{Status: StatusOK, Summary: "stale", RiskLevel: record.RiskLow}
	}}

	out, err := NewService(st, gw, WithSequencer(seq)).GenerateSummary(ctx)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Empty(t, st.Snapshot().HealthSummaries)
}

func TestGenerateSummaryStoreFailure(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{}
	st, err := store.New(ctx, slot, store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	slot.fail = true

	_, err = NewService(st, NewGateway(nil, nil)).GenerateSummary(ctx)
	assert.ErrorIs(t, err, errSlotDown)
}

var errSlotDown = errors.New("slot down")

type failingSlot struct {
	data []byte
	fail bool
}

func (f *failingSlot) Load(ctx context.Context) ([]byte, error) { return f.data, nil }

func (f *failingSlot) Save(ctx context.Context, data []byte) error {
	if f.fail {
		return errSlotDown
	}
	f.data = data
	return nil
}

func TestHealthTipsRequestFromStore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, err := st.AddLabReport(ctx, record.LabReport{Name: "Panel", Date: "2025-02-01", Values: []record.LabValue{
		{Name: "Hemoglobin", Value: 10, Unit: "g/dL", NormalRange: record.Range{Min: 12, Max: 17.5}, Trend: record.TrendDown, Date: "2025-02-01"},
	}})
	require.NoError(t, err)

	var got TipsRequest
	gw := &fakeGateway{tips: func(req TipsRequest) TipsResult {
		got = req
		return TipsResult{Status: StatusUnavailable, TipsBundle: insight.Tips(insight.TipsInput{HasAbnormalValues: req.HasAbnormalValues})}
	}}

	res := NewService(st, gw).HealthTips(ctx)
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.True(t, got.HasAbnormalValues)
	require.Len(t, got.LabValues, 1)
	assert.Equal(t, "2025-02-01", got.LabValues[0].Date)
	assert.Equal(t, "prevention-2", res.Tips[0].ID)
}

func TestCheckSymptomsValidation(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, NewGateway(nil, nil))

	_, err := svc.CheckSymptoms(context.Background(), "   ", "", insight.SeverityMild)
	assert.ErrorIs(t, err, ErrEmptySymptoms)

	_, err = svc.CheckSymptoms(context.Background(), "cough", "", "critical")
	assert.ErrorIs(t, err, ErrInvalidSeverity)

	res, err := svc.CheckSymptoms(context.Background(), "cough", "3 days", insight.SeveritySevere)
	require.NoError(t, err)
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Equal(t, insight.CareImmediate, res.CareLevel)
}

func TestSequencer(t *testing.T) {
	seq := NewSequencer()
	a := seq.Next("x")
	b := seq.Next("x")
	other := seq.Next("y")

	assert.False(t, seq.IsLatest("x", a))
	assert.True(t, seq.IsLatest("x", b))
	assert.True(t, seq.IsLatest("y", other))

	applied, err := seq.Apply("x", a, func() error { t.Fatal("stale token applied"); return nil })
	assert.False(t, applied)
	assert.NoError(t, err)

	applied, err = seq.Apply("x", b, func() error { return nil })
	assert.True(t, applied)
	assert.NoError(t, err)
}
