package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	_ "github.com/jhoicas/Apotik-api/docs"
	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/application/usecase"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/memory"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/mongosync"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/redisbus"
	httpRouter "github.com/jhoicas/Apotik-api/internal/interfaces/http"
	"github.com/jhoicas/Apotik-api/pkg/config"
	"github.com/jhoicas/Apotik-api/pkg/logger"
)

// snapshotStore unidad de trabajo con recarga bajo demanda (memoria o PostgreSQL).
type snapshotStore interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
	Refresh(ctx context.Context, keys ...string) error
}

// @title       Apotik API
// @version     1.0
// @description Stock por apotik, penyesuaian, transferencias, stok opname y pengajuan.
// @BasePath    /
// @securityDefinitions.apikey Bearer
// @in          header
// @name        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	instanceID := uuid.New().String()

	// Notificador de cambios entre instancias (opcional).
	var (
		redisClient *redis.Client
		notifier    *redisbus.Notifier
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redisbus.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		notifier = redisbus.NewNotifier(redisClient, cfg.Redis.Channel, instanceID, log.Component("redisbus"))
	}

	var store snapshotStore
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema de snapshots")
		}
		var publisher postgres.Publisher
		if notifier != nil {
			publisher = notifier
		}
		store = postgres.NewTxRunner(pool, publisher, log.Component("postgres"))
	default:
		opts := []memory.Option{memory.WithLogger(log.Component("memory"))}
		if cfg.Mongo.Enabled() {
			remote, err := mongosync.Connect(ctx, cfg.Mongo)
			if err != nil {
				log.Fatal().Err(err).Msg("conexión a MongoDB")
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = remote.Close(closeCtx)
			}()
			opts = append(opts, memory.WithRemote(remote))
		}
		if notifier != nil {
			opts = append(opts, memory.WithPublisher(notifier))
		}
		mem := memory.New(opts...)
		defer mem.Wait()
		if err := mem.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("carga inicial del snapshot remoto; se inicia con datos locales")
		}
		store = mem
	}

	// Cambios confirmados por otras instancias: recargar las colecciones afectadas.
	if notifier != nil {
		sub, err := notifier.Subscribe(ctx, func(ctx context.Context, ev redisbus.ChangeEvent) {
			if err := store.Refresh(ctx, ev.Keys...); err != nil {
				log.Warn().Err(err).Str("origin", ev.Origin).Strs("keys", ev.Keys).Msg("refresh por notificación")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Msg("suscripción a cambios")
		}
		defer sub.Close()
	}

	ledger := inventory.NewStockLedger(store)
	adjustments := inventory.NewAdjustmentEngine(store, time.Now)
	transfers := inventory.NewTransferEngine(store, time.Now)
	opname := inventory.NewOpnameEngine(store, time.Now)
	approval := inventory.NewApprovalGate(store, time.Now, adjustments, transfers)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Apotik API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "instance": instanceID})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ApotikUC:    usecase.NewApotikUseCase(store),
		ProductUC:   usecase.NewProductUseCase(store),
		Ledger:      ledger,
		Adjustments: adjustments,
		Transfers:   transfers,
		Opname:      opname,
		Approval:    approval,
		Store:       store,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
