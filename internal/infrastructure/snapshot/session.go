package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

var _ repository.Tx = (*Session)(nil)

// Loader devuelve el JSON (array) de una colección; nil o vacío significa colección vacía.
type Loader func(ctx context.Context, key string) ([]byte, error)

// Session es una unidad de trabajo sobre el snapshot: carga cada colección la primera vez
// que se usa, trabaja sobre copias privadas y reporta qué colecciones quedaron modificadas.
type Session struct {
	ctx  context.Context
	load Loader

	products    collection[entity.Product]
	apotiks     collection[entity.Apotik]
	adjustments collection[entity.StockMovement]
	transfers   collection[entity.Transfer]
	receipts    collection[entity.Receipt]
	opnames     collection[entity.Opname]
	pengajuan   collection[entity.Pengajuan]
}

// NewSession construye una sesión que carga colecciones con load.
func NewSession(ctx context.Context, load Loader) *Session {
	s := &Session{ctx: ctx, load: load}
	s.products = collection[entity.Product]{key: repository.KeyProducts, id: func(p *entity.Product) string { return p.ID }}
	s.apotiks = collection[entity.Apotik]{key: repository.KeyApotiks, id: func(a *entity.Apotik) string { return a.ID }}
	s.adjustments = collection[entity.StockMovement]{key: repository.KeyPenyesuaian, id: func(m *entity.StockMovement) string { return m.ID }}
	s.transfers = collection[entity.Transfer]{key: repository.KeyTransfers, id: func(t *entity.Transfer) string { return t.ID }}
	s.receipts = collection[entity.Receipt]{key: repository.KeyReceipts, id: func(r *entity.Receipt) string { return r.ID }}
	s.opnames = collection[entity.Opname]{key: repository.KeyOpname, id: func(o *entity.Opname) string { return o.ID }}
	s.pengajuan = collection[entity.Pengajuan]{key: repository.KeyPengajuan, id: func(p *entity.Pengajuan) string { return p.ID }}
	return s
}

func (s *Session) Products() repository.ProductRepository       { return productRepo{s} }
func (s *Session) Apotiks() repository.ApotikRepository         { return apotikRepo{s} }
func (s *Session) Adjustments() repository.AdjustmentRepository { return adjustmentRepo{s} }
func (s *Session) Transfers() repository.TransferRepository     { return transferRepo{s} }
func (s *Session) Receipts() repository.ReceiptRepository       { return receiptRepo{s} }
func (s *Session) Opnames() repository.OpnameRepository         { return opnameRepo{s} }
func (s *Session) Pengajuan() repository.PengajuanRepository    { return pengajuanRepo{s} }

// Dirty serializa las colecciones modificadas, indexadas por clave.
func (s *Session) Dirty() (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, c := range []interface {
		encode() (string, []byte, bool, error)
	}{&s.products, &s.apotiks, &s.adjustments, &s.transfers, &s.receipts, &s.opnames, &s.pengajuan} {
		key, raw, dirty, err := c.encode()
		if err != nil {
			return nil, err
		}
		if dirty {
			out[key] = raw
		}
	}
	return out, nil
}

// DirtyKeys devuelve las claves modificadas en orden estable.
func DirtyKeys(dirty map[string][]byte) []string {
	keys := make([]string, 0, len(dirty))
	for k := range dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type collection[T any] struct {
	key    string
	id     func(*T) string
	items  []T
	loaded bool
	dirty  bool
}

func (c *collection[T]) ensure(s *Session) error {
	if c.loaded {
		return nil
	}
	raw, err := s.load(s.ctx, c.key)
	if err != nil {
		return fmt.Errorf("cargar %s: %w", c.key, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.items); err != nil {
			return fmt.Errorf("decodificar %s: %w", c.key, err)
		}
	}
	c.loaded = true
	return nil
}

func (c *collection[T]) index(id string) int {
	for i := range c.items {
		if c.id(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) get(s *Session, id string) (*T, error) {
	if err := c.ensure(s); err != nil {
		return nil, err
	}
	i := c.index(id)
	if i < 0 {
		return nil, nil
	}
	return clone(&c.items[i])
}

func (c *collection[T]) find(s *Session, match func(*T) bool) ([]*T, error) {
	if err := c.ensure(s); err != nil {
		return nil, err
	}
	var out []*T
	for i := range c.items {
		if match != nil && !match(&c.items[i]) {
			continue
		}
		cp, err := clone(&c.items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (c *collection[T]) insert(s *Session, item *T) error {
	if err := c.ensure(s); err != nil {
		return err
	}
	if c.index(c.id(item)) >= 0 {
		return fmt.Errorf("%s %s: %w", c.key, c.id(item), domain.ErrDuplicate)
	}
	cp, err := clone(item)
	if err != nil {
		return err
	}
	c.items = append(c.items, *cp)
	c.dirty = true
	return nil
}

func (c *collection[T]) replace(s *Session, item *T) error {
	if err := c.ensure(s); err != nil {
		return err
	}
	i := c.index(c.id(item))
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.key, c.id(item), domain.ErrNotFound)
	}
	cp, err := clone(item)
	if err != nil {
		return err
	}
	c.items[i] = *cp
	c.dirty = true
	return nil
}

func (c *collection[T]) remove(s *Session, id string) error {
	if err := c.ensure(s); err != nil {
		return err
	}
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.key, id, domain.ErrNotFound)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.dirty = true
	return nil
}

func (c *collection[T]) encode() (string, []byte, bool, error) {
	if !c.dirty {
		return c.key, nil, false, nil
	}
	items := c.items
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return c.key, nil, false, fmt.Errorf("codificar %s: %w", c.key, err)
	}
	return c.key, raw, true, nil
}

// clone copia en profundidad vía JSON para que los repositorios nunca compartan mapas ni slices.
func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
