package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Apotik-api/pkg/config"
)

// ChangeEvent aviso de que una instancia confirmó cambios en esas colecciones.
type ChangeEvent struct {
	Origin string    `json:"origin"`
	Keys   []string  `json:"keys"`
	At     time.Time `json:"at"`
}

// NewClient crea el cliente redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisbus: ping: %w", err)
	}
	return client, nil
}

// Notifier publica y escucha ChangeEvent en un canal pub/sub.
// Origin identifica a esta instancia para ignorar sus propios eventos.
type Notifier struct {
	client  *redis.Client
	channel string
	origin  string
	log     zerolog.Logger
}

// NewNotifier construye el notifier sobre un cliente existente.
func NewNotifier(client *redis.Client, channel, origin string, log zerolog.Logger) *Notifier {
	return &Notifier{client: client, channel: channel, origin: origin, log: log}
}

// Publish emite el evento para las claves dadas.
func (n *Notifier) Publish(ctx context.Context, keys []string) error {
	payload, err := json.Marshal(ChangeEvent{Origin: n.origin, Keys: keys, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("redisbus: publish: %w", err)
	}
	return nil
}

// Subscription suscripción activa; Close la termina.
type Subscription struct {
	ps   *redis.PubSub
	done chan struct{}
}

// Close cancela la suscripción y espera a que termine el consumidor.
func (s *Subscription) Close() error {
	err := s.ps.Close()
	<-s.done
	return err
}

// Subscribe confirma la suscripción y entrega a handler los eventos de otras instancias
// hasta que ctx se cancele o se llame Close. Los mensajes malformados se descartan.
func (n *Notifier) Subscribe(ctx context.Context, handler func(context.Context, ChangeEvent)) (*Subscription, error) {
	ps := n.client.Subscribe(ctx, n.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redisbus: subscribe: %w", err)
	}
	sub := &Subscription{ps: ps, done: make(chan struct{})}
	ch := ps.Channel()
	go func() {
		defer close(sub.done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					n.log.Warn().Err(err).Msg("evento de cambio malformado")
					continue
				}
				if ev.Origin == n.origin {
					continue
				}
				handler(ctx, ev)
			}
		}
	}()
	return sub, nil
}
