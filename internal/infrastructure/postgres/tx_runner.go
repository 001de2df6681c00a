package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Apotik-api/internal/domain/repository"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/snapshot"
)

// snapshotLockID serializa las unidades de trabajo entre instancias (pg_advisory_xact_lock).
const snapshotLockID int64 = 0x61706f74696b

// Publisher avisa a otras instancias qué colecciones cambiaron.
type Publisher interface {
	Publish(ctx context.Context, keys []string) error
}

// TxRunner ejecuta unidades de trabajo del snapshot dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool      *pgxpool.Pool
	publisher Publisher
	log       zerolog.Logger
}

// NewTxRunner construye el runner con el pool. publisher puede ser nil.
func NewTxRunner(pool *pgxpool.Pool, publisher Publisher, log zerolog.Logger) *TxRunner {
	return &TxRunner{pool: pool, publisher: publisher, log: log}
}

// Run inicia una transacción, ejecuta fn con una sesión cuyas colecciones se leen con
// FOR UPDATE, guarda las colecciones modificadas y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, snapshotLockID); err != nil {
		return fmt.Errorf("lock snapshot: %w", err)
	}

	repo := NewSnapshotRepository(tx)
	sess := snapshot.NewSession(ctx, repo.GetForUpdate)
	if err := fn(sess); err != nil {
		return err
	}
	dirty, err := sess.Dirty()
	if err != nil {
		return fmt.Errorf("serializar snapshot: %w", err)
	}
	keys := snapshot.DirtyKeys(dirty)
	for _, key := range keys {
		if err := repo.Save(ctx, key, dirty[key]); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if r.publisher != nil && len(keys) > 0 {
		if err := r.publisher.Publish(ctx, keys); err != nil {
			r.log.Warn().Err(err).Strs("keys", keys).Msg("publicar cambio fallido")
		}
	}
	return nil
}

// Refresh no hace nada: PostgreSQL ya es el almacén compartido.
func (r *TxRunner) Refresh(context.Context, ...string) error { return nil }
