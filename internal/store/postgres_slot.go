package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DefaultTable is the table created by the bundled migrations.
const DefaultTable = "store_slots"

// pgxConn is the subset of *pgxpool.Pool the slot needs.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSlot keeps the snapshot in one row of a slots table keyed by name.
type PostgresSlot struct {
	db   pgxConn
	name string

	selectSQL string
	upsertSQL string
}

func NewPostgresSlot(db pgxConn, table, name string) *PostgresSlot {
	if table == "" {
		table = DefaultTable
	}
	quoted := pq.QuoteIdentifier(table)
	return &PostgresSlot{
		db:        db,
		name:      name,
		selectSQL: fmt.Sprintf("SELECT payload FROM %s WHERE name = $1", quoted),
		upsertSQL: fmt.Sprintf(`
			INSERT INTO %s (name, payload, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (name) DO UPDATE
			SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`, quoted),
	}
}

func (p *PostgresSlot) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := p.db.QueryRow(ctx, p.selectSQL, p.name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", p.name, err)
	}
	return payload, nil
}

func (p *PostgresSlot) Save(ctx context.Context, data []byte) error {
	if _, err := p.db.Exec(ctx, p.upsertSQL, p.name, data); err != nil {
		return fmt.Errorf("save slot %q: %w", p.name, err)
	}
	return nil
}
