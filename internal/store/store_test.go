package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesikahq/spitalverse/internal/encryption"
	"github.com/mesikahq/spitalverse/internal/record"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newTestStore(t *testing.T, slot Slot, opts ...Option) (*Store, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	s, err := New(context.Background(), slot, opts...)
	require.NoError(t, err)
	return s, clock
}

type failingSlot struct {
	MemorySlot
	fail bool
}

func (f *failingSlot) Save(ctx context.Context, data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemorySlot.Save(ctx, data)
}

func TestNewInitializesAndPersistsDefaultState(t *testing.T) {
	slot := NewMemorySlot()
	s, _ := newTestStore(t, slot)

	snap := s.Snapshot()
	assert.Equal(t, record.DefaultProfile(), snap.Profile)
	assert.Empty(t, snap.Medications)

	raw, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestAddHealthSummaryPrepends(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot())

	_, err := s.AddHealthSummary(ctx, record.HealthSummary{ID: "A", Summary: "first", RiskLevel: record.RiskLow})
	require.NoError(t, err)
	_, err = s.AddHealthSummary(ctx, record.HealthSummary{ID: "B", Summary: "second", RiskLevel: record.RiskLow})
	require.NoError(t, err)

	summaries := s.Snapshot().HealthSummaries
	require.Len(t, summaries, 2)
	assert.Equal(t, "B", summaries[0].ID)
	assert.Equal(t, "A", summaries[1].ID)
}

func TestOtherAddsAppend(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot())

	_, err := s.AddMedication(ctx, record.Medication{ID: "m1", Name: "First", Status: record.StatusActive})
	require.NoError(t, err)
	_, err = s.AddMedication(ctx, record.Medication{ID: "m2", Name: "Second", Status: record.StatusActive})
	require.NoError(t, err)

	meds := s.Snapshot().Medications
	require.Len(t, meds, 2)
	assert.Equal(t, "m1", meds[0].ID)
	assert.Equal(t, "m2", meds[1].ID)
}

func TestUpdateAndDeleteMissingIDAreNoOps(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	s, _ := newTestStore(t, slot)
	_, err := s.AddMedication(ctx, record.Medication{ID: "m1", Name: "Metformin", Status: record.StatusActive})
	require.NoError(t, err)
	before := s.Snapshot()

	name := "Renamed"
	_, found, err := s.UpdateMedication(ctx, "missing", record.MedicationPatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.UpdateAppointment(ctx, "missing", record.AppointmentPatch{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.DeleteMedication(ctx, "missing"))
	require.NoError(t, s.DeleteDocument(ctx, "missing"))
	require.NoError(t, s.DeleteLabReport(ctx, "missing"))
	require.NoError(t, s.DeleteAppointment(ctx, "missing"))

	assert.Equal(t, before, s.Snapshot())
}

func TestUpdateMedicationMergesByID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot())
	_, err := s.AddMedication(ctx, record.Medication{ID: "m1", Name: "Metformin", Dosage: "500 mg", Status: record.StatusActive, ReminderEnabled: true})
	require.NoError(t, err)

	dosage := "850 mg"
	updated, found, err := s.UpdateMedication(ctx, "m1", record.MedicationPatch{Dosage: &dosage})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "850 mg", updated.Dosage)
	assert.Equal(t, "Metformin", updated.Name)
	assert.True(t, updated.ReminderEnabled)
}

func TestUpdateMedicationToCompletedStampsEndDate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot())
	_, err := s.AddMedication(ctx, record.Medication{ID: "m1", Name: "Amlodipine", StartDate: "2024-02-01", Status: record.StatusActive})
	require.NoError(t, err)

	completed := record.StatusCompleted
	updated, found, err := s.UpdateMedication(ctx, "m1", record.MedicationPatch{Status: &completed})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, record.StatusCompleted, updated.Status)
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, "2025-06-01", *updated.EndDate)

	stored, _ := s.Medication("m1")
	assert.Equal(t, updated, stored)

	active := record.StatusActive
	_, found, err = s.UpdateMedication(ctx, "m1", record.MedicationPatch{Status: &active})
	assert.True(t, found)
	assert.ErrorIs(t, err, record.ErrAlreadyCompleted)
	stored, _ = s.Medication("m1")
	assert.Equal(t, record.StatusCompleted, stored.Status)
}

func TestCompleteMedication(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot())
	_, err := s.AddMedication(ctx, record.Medication{ID: "m1", Name: "Amlodipine", StartDate: "2024-02-01", Status: record.StatusActive})
	require.NoError(t, err)

	done, found, err := s.CompleteMedication(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, record.StatusCompleted, done.Status)
	require.NotNil(t, done.EndDate)
	assert.Equal(t, "2025-06-01", *done.EndDate)

	_, found, err = s.CompleteMedication(ctx, "m1")
	assert.True(t, found)
	assert.ErrorIs(t, err, record.ErrAlreadyCompleted)

	_, found, err = s.CompleteMedication(ctx, "nope")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestClearResetsToDefaultProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot(), WithSeed(record.DemoState))

	name := "Someone Else"
	_, err := s.UpdateProfile(ctx, record.ProfilePatch{FullName: &name})
	require.NoError(t, err)
	_, err = s.AddHealthSummary(ctx, record.HealthSummary{Summary: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, s.Snapshot().Medications)

	require.NoError(t, s.Clear(ctx))

	snap := s.Snapshot()
	assert.Equal(t, record.DefaultProfile(), snap.Profile)
	assert.NotEmpty(t, snap.Profile.FullName)
	assert.Empty(t, snap.Documents)
	assert.Empty(t, snap.Medications)
	assert.Empty(t, snap.LabReports)
	assert.Empty(t, snap.Appointments)
	assert.Empty(t, snap.HealthSummaries)
}

func TestExportIsDeterministic(t *testing.T) {
	s, clock := newTestStore(t, NewMemorySlot(), WithSeed(record.DemoState))

	first, err := s.Export()
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Hour)
	second, err := s.Export()
	require.NoError(t, err)

	strip := func(raw []byte) map[string]any {
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		require.Contains(t, m, "exportedAt")
		delete(m, "exportedAt")
		return m
	}
	assert.NotEqual(t, string(first), string(second))
	assert.Equal(t, strip(first), strip(second))

	clock.t = clock.t.Add(-time.Hour)
	third, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))

	for _, key := range []string{"profile", "documents", "medications", "labReports", "appointments", "healthSummaries"} {
		assert.Contains(t, strip(first), key)
	}
}

func TestImportRestoresExport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t, NewMemorySlot(), WithSeed(record.DemoState))
	data, err := src.Export()
	require.NoError(t, err)

	dst, _ := newTestStore(t, NewMemorySlot())
	require.NoError(t, dst.Import(ctx, data))
	assert.Equal(t, src.Snapshot(), dst.Snapshot())

	assert.ErrorIs(t, dst.Import(ctx, []byte("not json")), ErrInvalidExport)
	assert.ErrorIs(t, dst.Import(ctx, []byte(`{"documents":[]}`)), ErrInvalidExport)
}

func TestMutationsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	slot := NewFileSlot(t.TempDir(), DefaultSlotName)

	s, _ := newTestStore(t, slot)
	_, err := s.AddAppointment(ctx, record.Appointment{ID: "a1", DoctorName: "Dr. Chen", Specialty: "Cardiologist", Date: "2025-07-01", Time: "14:00"})
	require.NoError(t, err)
	_, err = s.AddHealthSummary(ctx, record.HealthSummary{ID: "h1", Summary: "ok"})
	require.NoError(t, err)

	reopened, _ := newTestStore(t, slot)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
	assert.True(t, reopened.Snapshot().Appointments[0].IsUpcoming)
}

func TestEncryptedSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	key, err := encryption.DeriveKey("correct horse", DefaultSlotName)
	require.NoError(t, err)
	enc, err := encryption.NewService(key)
	require.NoError(t, err)

	inner := NewMemorySlot()
	slot := NewEncryptedSlot(inner, enc)
	s, _ := newTestStore(t, slot)
	_, err = s.AddMedication(ctx, record.Medication{ID: "m1", Name: "Metformin"})
	require.NoError(t, err)

	raw, err := inner.Load(ctx)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "Metformin"))

	reopened, _ := newTestStore(t, slot)
	assert.Equal(t, "Metformin", reopened.Snapshot().Medications[0].Name)
}

func TestFailedSaveKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{}
	s, _ := newTestStore(t, slot)

	var notified int
	s.AddObserver(ObserverFunc(func(context.Context, Mutation) { notified++ }))

	slot.fail = true
	_, err := s.AddMedication(ctx, record.Medication{Name: "Lost"})
	require.Error(t, err)
	assert.Empty(t, s.Snapshot().Medications)
	assert.Zero(t, notified)

	slot.fail = false
	_, err = s.AddMedication(ctx, record.Medication{Name: "Kept"})
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Medications, 1)
	assert.Equal(t, 1, notified)
}

func TestObserversSeeMutations(t *testing.T) {
	ctx := context.Background()
	var seen []Mutation
	s, _ := newTestStore(t, NewMemorySlot(), WithObserver(ObserverFunc(func(_ context.Context, m Mutation) {
		seen = append(seen, m)
	})))

	_, err := s.AddLabReport(ctx, record.LabReport{ID: "r1", Name: "CBC"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteLabReport(ctx, "r1"))
	require.NoError(t, s.DeleteLabReport(ctx, "r1"))

	require.Len(t, seen, 2)
	assert.Equal(t, Mutation{Collection: CollectionLabReports, Op: OpAdd, ID: "r1", At: s.Now()}, seen[0])
	assert.Equal(t, OpDelete, seen[1].Op)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, NewMemorySlot())
	_, err := s.AddHealthSummary(ctx, record.HealthSummary{ID: "h", Recommendations: []string{"a"}})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.HealthSummaries[0].Recommendations[0] = "mutated"
	assert.Equal(t, "a", s.Snapshot().HealthSummaries[0].Recommendations[0])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "spitalverse-data-2025-06-01.json", ExportFilename(time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)))
}
