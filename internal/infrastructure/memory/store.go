package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Apotik-api/internal/domain/repository"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/snapshot"
)

// Remote almacén compartido de snapshots (última escritura gana).
type Remote interface {
	Push(ctx context.Context, key string, documents []byte) error
	// Pull devuelve (nil, false, nil) si la clave no existe en remoto.
	Pull(ctx context.Context, key string) ([]byte, bool, error)
}

// Publisher avisa a otras instancias qué colecciones cambiaron.
type Publisher interface {
	Publish(ctx context.Context, keys []string) error
}

// Option configura el Store.
type Option func(*Store)

// WithRemote activa la sincronización best-effort tras cada commit.
func WithRemote(r Remote) Option { return func(s *Store) { s.remote = r } }

// WithPublisher activa la notificación de cambios tras cada commit.
func WithPublisher(p Publisher) Option { return func(s *Store) { s.publisher = p } }

// WithLogger define el logger para fallos de sincronización.
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

// WithSyncTimeout límite de cada push/publish en segundo plano.
func WithSyncTimeout(d time.Duration) Option { return func(s *Store) { s.syncTimeout = d } }

// Store guarda el snapshot en memoria del proceso. Las unidades de trabajo se serializan
// con un mutex y solo las colecciones modificadas se reemplazan al confirmar.
type Store struct {
	mu   sync.Mutex
	docs map[string][]byte

	// gen cuenta commits locales por clave; pending los pushes aún no terminados.
	gen     map[string]uint64
	pending map[string]int

	pushMu      sync.Mutex
	wg          sync.WaitGroup
	remote      Remote
	publisher   Publisher
	log         zerolog.Logger
	syncTimeout time.Duration
}

// New construye un store vacío.
func New(opts ...Option) *Store {
	s := &Store{
		docs:        make(map[string][]byte),
		gen:         make(map[string]uint64),
		pending:     make(map[string]int),
		log:         zerolog.Nop(),
		syncTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ejecuta fn sobre una sesión del snapshot. Si fn devuelve error no se confirma nada.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := snapshot.NewSession(ctx, s.load)
	if err := fn(sess); err != nil {
		return err
	}
	dirty, err := sess.Dirty()
	if err != nil {
		return fmt.Errorf("serializar snapshot: %w", err)
	}
	if len(dirty) == 0 {
		return nil
	}
	for key, raw := range dirty {
		s.docs[key] = raw
		s.gen[key]++
	}
	s.afterCommit(snapshot.DirtyKeys(dirty))
	return nil
}

// load lee una colección; el caller tiene s.mu. Los []byte guardados nunca se mutan.
func (s *Store) load(_ context.Context, key string) ([]byte, error) {
	return s.docs[key], nil
}

// Document devuelve el JSON confirmado de una colección.
func (s *Store) Document(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[key]
}

// Put reemplaza una colección completa sin sincronizar (carga inicial, importaciones).
func (s *Store) Put(key string, documents []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = documents
}

// Refresh trae del remoto las colecciones indicadas (todas si keys está vacío) y
// reemplaza la copia local. Las claves ausentes en remoto se dejan intactas, igual que
// las que tienen un push pendiente o un commit local posterior al inicio del pull.
func (s *Store) Refresh(ctx context.Context, keys ...string) error {
	if s.remote == nil {
		return nil
	}
	if len(keys) == 0 {
		keys = repository.AllKeys
	}
	s.mu.Lock()
	started := make(map[string]uint64, len(keys))
	for _, key := range keys {
		started[key] = s.gen[key]
	}
	s.mu.Unlock()

	fetched := make(map[string][]byte, len(keys))
	for _, key := range keys {
		raw, ok, err := s.remote.Pull(ctx, key)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", key, err)
		}
		if ok {
			fetched[key] = raw
		}
	}
	applied := 0
	s.mu.Lock()
	for key, raw := range fetched {
		if s.pending[key] > 0 || s.gen[key] != started[key] {
			s.log.Debug().Str("key", key).Msg("refresh omitido: hay cambios locales sin sincronizar")
			continue
		}
		s.docs[key] = raw
		applied++
	}
	s.mu.Unlock()
	s.log.Debug().Int("keys", applied).Msg("snapshot refrescado desde remoto")
	return nil
}

// Wait bloquea hasta que terminen las sincronizaciones en curso.
func (s *Store) Wait() {
	s.wg.Wait()
}

// afterCommit lanza push y notificación en segundo plano; el caller tiene s.mu.
// Los fallos se registran y nunca llegan a la operación de negocio.
func (s *Store) afterCommit(keys []string) {
	if s.remote == nil && s.publisher == nil {
		return
	}
	if s.remote != nil {
		for _, key := range keys {
			s.pending[key]++
		}
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()

		if s.remote != nil {
			// Se empuja la versión vigente al momento del push para que los pushes
			// concurrentes de la misma clave converjan al último commit.
			s.pushMu.Lock()
			for _, key := range keys {
				if err := s.remote.Push(ctx, key, s.Document(key)); err != nil {
					s.log.Warn().Err(err).Str("key", key).Msg("sync remoto fallido")
				}
				s.mu.Lock()
				s.pending[key]--
				s.mu.Unlock()
			}
			s.pushMu.Unlock()
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, keys); err != nil {
				s.log.Warn().Err(err).Strs("keys", keys).Msg("publicar cambio fallido")
			}
		}
	}()
}
