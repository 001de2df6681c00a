package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	version    BIGINT NOT NULL DEFAULT 0,
	documents  JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema crea la tabla y una fila por colección para que FOR UPDATE siempre tenga qué bloquear.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("crear tabla snapshots: %w", err)
	}
	for _, key := range repository.AllKeys {
		_, err := q.Exec(ctx, `INSERT INTO snapshots (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, key)
		if err != nil {
			return fmt.Errorf("inicializar snapshot %s: %w", key, err)
		}
	}
	return nil
}

// SnapshotRepo lee y escribe colecciones completas en la tabla snapshots (usable con pool o tx).
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

// GetForUpdate devuelve el JSON de la colección y bloquea la fila hasta el fin de la tx.
func (r *SnapshotRepo) GetForUpdate(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := r.q.QueryRow(ctx, `SELECT documents FROM snapshots WHERE key = $1 FOR UPDATE`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	return raw, nil
}

// Save reemplaza la colección e incrementa su versión.
func (r *SnapshotRepo) Save(ctx context.Context, key string, documents []byte) error {
	query := `
		INSERT INTO snapshots (key, version, documents, updated_at)
		VALUES ($1, 1, $2::jsonb, now())
		ON CONFLICT (key)
		DO UPDATE SET version = snapshots.version + 1, documents = EXCLUDED.documents, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, key, string(documents)); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}
