package store

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn stores rows in a map keyed by slot name.
type fakeConn struct {
	rows    map[string][]byte
	lastSQL string
}

type fakeRow struct {
	payload []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	return nil
}

func (f *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.rows[args[0].(string)] = args[1].([]byte)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	payload, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{payload: payload}
}

func TestPostgresSlot(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{rows: map[string][]byte{}}
	slot := NewPostgresSlot(conn, "patient slots", DefaultSlotName)

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Contains(t, conn.lastSQL, `"patient slots"`)

	require.NoError(t, slot.Save(ctx, []byte(`{"a":1}`)))
	assert.True(t, strings.Contains(conn.lastSQL, "ON CONFLICT (name)"))

	data, err = slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestPostgresSlotDefaultTable(t *testing.T) {
	conn := &fakeConn{rows: map[string][]byte{}}
	slot := NewPostgresSlot(conn, "", "s")
	_, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, conn.lastSQL, `"store_slots"`)
}
