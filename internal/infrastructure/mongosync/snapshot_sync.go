package mongosync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Apotik-api/pkg/config"
)

// snapshotDoc una colección completa por documento; _id es la clave (products, apotiks, ...).
type snapshotDoc struct {
	Key       string    `bson:"_id"`
	Documents string    `bson:"documents"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SnapshotSync guarda y lee snapshots en MongoDB con semántica de última escritura gana.
type SnapshotSync struct {
	client *mongo.Client
	col    *mongo.Collection
}

// Connect abre el cliente, verifica con Ping y devuelve el sincronizador.
func Connect(ctx context.Context, cfg config.MongoConfig) (*SnapshotSync, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("conectar mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &SnapshotSync{client: client, col: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

// Push reemplaza (o crea) el snapshot de la clave.
func (s *SnapshotSync) Push(ctx context.Context, key string, documents []byte) error {
	doc, err := toDoc(key, documents, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = s.col.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("guardar snapshot %s: %w", key, err)
	}
	return nil
}

// Pull lee el snapshot de la clave; (nil, false, nil) si no existe.
func (s *SnapshotSync) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	var doc snapshotDoc
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leer snapshot %s: %w", key, err)
	}
	raw, err := fromDoc(doc)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Close desconecta el cliente.
func (s *SnapshotSync) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDoc(key string, documents []byte, at time.Time) (snapshotDoc, error) {
	if len(documents) == 0 {
		documents = []byte("[]")
	}
	if !json.Valid(documents) {
		return snapshotDoc{}, fmt.Errorf("snapshot %s: JSON inválido", key)
	}
	return snapshotDoc{Key: key, Documents: string(documents), UpdatedAt: at}, nil
}

func fromDoc(doc snapshotDoc) ([]byte, error) {
	if doc.Documents == "" {
		return nil, nil
	}
	if !json.Valid([]byte(doc.Documents)) {
		return nil, fmt.Errorf("snapshot remoto %s: JSON inválido", doc.Key)
	}
	return []byte(doc.Documents), nil
}
