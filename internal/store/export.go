package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesikahq/spitalverse/internal/record"
)

var ErrInvalidExport = errors.New("invalid export document")

// ExportDocument is the exported shape: the full state plus exportedAt.
type ExportDocument struct {
	record.State
	ExportedAt string `json:"exportedAt"`
}

// Export serializes the current state as indented JSON. Two calls without an
// intervening mutation differ at most in exportedAt.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	doc := ExportDocument{State: s.state.Clone(), ExportedAt: s.now().UTC().Format(time.RFC3339Nano)}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// ExportFilename is the download name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "spitalverse-data-" + now.Format(record.DateLayout) + ".json"
}

// Import replaces the whole state with an exported document.
func (s *Store) Import(ctx context.Context, data []byte) error {
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if doc.Profile.ID == "" && doc.Profile.FullName == "" {
		return fmt.Errorf("%w: missing profile", ErrInvalidExport)
	}
	st := doc.State
	st.Normalize()
	now := s.now()
	for i := range st.Appointments {
		st.Appointments[i].IsUpcoming = st.Appointments[i].UpcomingAt(now)
	}

	_, err := s.mutate(ctx, CollectionAll, OpImport, "", func(cur *record.State) bool {
		*cur = st
		return true
	})
	return err
}
