// Package store is the authoritative container for one patient's records.
//
// Every mutation writes the full state to the configured Slot before it
// returns. The store performs no field validation; callers validate input
// before handing it over.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/spitalverse/internal/record"
)

// Collection names used in mutation notifications.
const (
	CollectionProfile         = "profile"
	CollectionDocuments       = "documents"
	CollectionMedications     = "medications"
	CollectionLabReports      = "labReports"
	CollectionAppointments    = "appointments"
	CollectionHealthSummaries = "healthSummaries"
	CollectionAll             = "all"
)

type Op string

const (
	OpAdd      Op = "add"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpComplete Op = "complete"
	OpClear    Op = "clear"
	OpImport   Op = "import"
)

// Mutation describes a committed change.
type Mutation struct {
	Collection string
	Op         Op
	ID         string
	At         time.Time
}

// Observer is notified after a mutation has been persisted.
type Observer interface {
	OnMutation(ctx context.Context, m Mutation)
}

type ObserverFunc func(ctx context.Context, m Mutation)

func (f ObserverFunc) OnMutation(ctx context.Context, m Mutation) { f(ctx, m) }

type Store struct {
	mu        sync.RWMutex
	state     record.State
	slot      Slot
	now       func() time.Time
	seed      func(now time.Time) record.State
	observers []Observer
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithSeed sets the state used when the slot is empty. The default is
// record.EmptyState.
func WithSeed(seed func(now time.Time) record.State) Option {
	return func(s *Store) { s.seed = seed }
}

// New loads the store from slot. An empty slot is initialized from the seed
// and saved immediately.
func New(ctx context.Context, slot Slot, opts ...Option) (*Store, error) {
	s := &Store{
		slot: slot,
		now:  time.Now,
		seed: func(time.Time) record.State { return record.EmptyState() },
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	if len(raw) == 0 {
		initial := s.seed(s.now())
		initial.Normalize()
		if err := s.persist(ctx, initial); err != nil {
			return nil, err
		}
		s.state = initial
		return s, nil
	}

	var st record.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	st.Normalize()
	s.state = st
	return s, nil
}

// AddObserver registers o for subsequent mutations.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Store) Now() time.Time {
	return s.now()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() record.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Profile() record.PatientProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile.Clone()
}

func (s *Store) Medication(id string) (record.Medication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.state.Medications {
		if m.ID == id {
			return m, true
		}
	}
	return record.Medication{}, false
}

func (s *Store) Appointment(id string) (record.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.state.Appointments {
		if a.ID == id {
			return a, true
		}
	}
	return record.Appointment{}, false
}

func (s *Store) Document(id string) (record.MedicalDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.state.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return record.MedicalDocument{}, false
}

func (s *Store) persist(ctx context.Context, st record.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the state. When fn reports a change the copy
// is persisted and swapped in; a failed save leaves the previous state.
func (s *Store) mutate(ctx context.Context, collection string, op Op, id string, fn func(st *record.State) bool) (bool, error) {
	s.mu.Lock()
	next := s.state.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.state = next
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	m := Mutation{Collection: collection, Op: op, ID: id, At: s.now()}
	for _, o := range observers {
		o.OnMutation(ctx, m)
	}
	return true, nil
}

// UpdateProfile shallow-merges patch into the profile.
func (s *Store) UpdateProfile(ctx context.Context, patch record.ProfilePatch) (record.PatientProfile, error) {
	var updated record.PatientProfile
	_, err := s.mutate(ctx, CollectionProfile, OpUpdate, "", func(st *record.State) bool {
		st.Profile = patch.Apply(st.Profile)
		updated = st.Profile.Clone()
		return true
	})
	return updated, err
}

func (s *Store) AddDocument(ctx context.Context, doc record.MedicalDocument) (record.MedicalDocument, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	_, err := s.mutate(ctx, CollectionDocuments, OpAdd, doc.ID, func(st *record.State) bool {
		st.Documents = append(st.Documents, doc)
		return true
	})
	return doc, err
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, CollectionDocuments, OpDelete, id, func(st *record.State) bool {
		var removed bool
		st.Documents, removed = without(st.Documents, func(d record.MedicalDocument) bool { return d.ID == id })
		return removed
	})
	return err
}

func (s *Store) AddMedication(ctx context.Context, m record.Medication) (record.Medication, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.mutate(ctx, CollectionMedications, OpAdd, m.ID, func(st *record.State) bool {
		st.Medications = append(st.Medications, m)
		return true
	})
	return m, err
}

// UpdateMedication merges patch into the medication with id. A missing id is
// a no-op and reports found == false. Completing through a patch stamps the
// end date; reactivating a completed medication is refused.
func (s *Store) UpdateMedication(ctx context.Context, id string, patch record.MedicationPatch) (updated record.Medication, found bool, err error) {
	var applyErr error
	found, err = s.mutate(ctx, CollectionMedications, OpUpdate, id, func(st *record.State) bool {
		for i, m := range st.Medications {
			if m.ID != id {
				continue
			}
			updated, applyErr = patch.ApplyAt(m, s.now())
			if applyErr != nil {
				return false
			}
			st.Medications[i] = updated
			return true
		}
		return false
	})
	if applyErr != nil {
		return updated, true, applyErr
	}
	return updated, found, err
}

// CompleteMedication marks an active medication completed as of today.
func (s *Store) CompleteMedication(ctx context.Context, id string) (completed record.Medication, found bool, err error) {
	var completeErr error
	found, err = s.mutate(ctx, CollectionMedications, OpComplete, id, func(st *record.State) bool {
		for i, m := range st.Medications {
			if m.ID != id {
				continue
			}
			completed, completeErr = m.Complete(s.now())
			if completeErr != nil {
				return false
			}
			st.Medications[i] = completed
			return true
		}
		return false
	})
	if completeErr != nil {
		return completed, true, completeErr
	}
	return completed, found, err
}

func (s *Store) DeleteMedication(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, CollectionMedications, OpDelete, id, func(st *record.State) bool {
		var removed bool
		st.Medications, removed = without(st.Medications, func(m record.Medication) bool { return m.ID == id })
		return removed
	})
	return err
}

func (s *Store) AddLabReport(ctx context.Context, r record.LabReport) (record.LabReport, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Values = append([]record.LabValue{}, r.Values...)
	_, err := s.mutate(ctx, CollectionLabReports, OpAdd, r.ID, func(st *record.State) bool {
		st.LabReports = append(st.LabReports, r)
		return true
	})
	return r, err
}

// DeleteLabReport removes the report together with all of its values.
func (s *Store) DeleteLabReport(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, CollectionLabReports, OpDelete, id, func(st *record.State) bool {
		var removed bool
		st.LabReports, removed = without(st.LabReports, func(r record.LabReport) bool { return r.ID == id })
		return removed
	})
	return err
}

func (s *Store) AddAppointment(ctx context.Context, a record.Appointment) (record.Appointment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.IsUpcoming = a.UpcomingAt(s.now())
	_, err := s.mutate(ctx, CollectionAppointments, OpAdd, a.ID, func(st *record.State) bool {
		st.Appointments = append(st.Appointments, a)
		return true
	})
	return a, err
}

func (s *Store) UpdateAppointment(ctx context.Context, id string, patch record.AppointmentPatch) (updated record.Appointment, found bool, err error) {
	now := s.now()
	found, err = s.mutate(ctx, CollectionAppointments, OpUpdate, id, func(st *record.State) bool {
		for i, a := range st.Appointments {
			if a.ID == id {
				a = patch.Apply(a)
				a.IsUpcoming = a.UpcomingAt(now)
				st.Appointments[i] = a
				updated = a
				return true
			}
		}
		return false
	})
	return updated, found, err
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, CollectionAppointments, OpDelete, id, func(st *record.State) bool {
		var removed bool
		st.Appointments, removed = without(st.Appointments, func(a record.Appointment) bool { return a.ID == id })
		return removed
	})
	return err
}

// AddHealthSummary prepends: index 0 is always the latest summary.
func (s *Store) AddHealthSummary(ctx context.Context, h record.HealthSummary) (record.HealthSummary, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.Recommendations = append([]string{}, h.Recommendations...)
	_, err := s.mutate(ctx, CollectionHealthSummaries, OpAdd, h.ID, func(st *record.State) bool {
		st.HealthSummaries = append([]record.HealthSummary{h}, st.HealthSummaries...)
		return true
	})
	return h, err
}

// Clear wipes every collection and resets the profile to the default one.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, CollectionAll, OpClear, "", func(st *record.State) bool {
		*st = record.EmptyState()
		return true
	})
	return err
}

func without[T any](items []T, match func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out, len(out) != len(items)
}
