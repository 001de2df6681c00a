package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ApotikUC    *usecase.ApotikUseCase
	ProductUC   *usecase.ProductUseCase
	Ledger      *inventory.StockLedger
	Adjustments *inventory.AdjustmentEngine
	Transfers   *inventory.TransferEngine
	Opname      *inventory.OpnameEngine
	Approval    *inventory.ApprovalGate
	Store       Refresher
	JWTSecret   string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Logger))

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(RoleAdmin)
	approvers := RequireRole(RoleAdmin, RoleApoteker)

	// Apotik
	apotiks := protected.Group("/apotik")
	apotikHandler := NewApotikHandler(deps.ApotikUC)
	apotiks.Get("/", apotikHandler.List)
	apotiks.Get("/:id", apotikHandler.GetByID)
	apotiks.Post("/", adminOnly, apotikHandler.Create)
	apotiks.Put("/:id", adminOnly, apotikHandler.Update)
	apotiks.Delete("/:id", adminOnly, apotikHandler.Deactivate)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.Stock)
	products.Post("/", approvers, productHandler.Create)
	products.Put("/:id", approvers, productHandler.Update)
	products.Delete("/:id", approvers, productHandler.Deactivate)

	// Penyesuaian stok y consultas
	inventoryHandler := NewInventoryHandler(deps.Adjustments, deps.Ledger)
	protected.Get("/stock", inventoryHandler.Quantity)
	protected.Get("/adjustments", inventoryHandler.ListAdjustments)
	protected.Get("/adjustments/:no_bukti", inventoryHandler.GetAdjustmentBatch)
	protected.Post("/adjustments", inventoryHandler.CreateAdjustment)

	// Transfer barang / terima transfer
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/pending", transferHandler.Pending)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/", transferHandler.Create)
	transfers.Post("/:id/send", transferHandler.Send)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	protected.Get("/receipts", transferHandler.ListReceipts)
	protected.Get("/receipts/:id", transferHandler.GetReceipt)

	// Stok opname
	opname := protected.Group("/opname")
	opnameHandler := NewOpnameHandler(deps.Opname)
	opname.Get("/", opnameHandler.List)
	opname.Get("/:id", opnameHandler.Get)
	opname.Post("/", opnameHandler.Start)
	opname.Put("/:id/counts", opnameHandler.UpdateCounts)
	opname.Post("/:id/finalize", opnameHandler.Finalize)
	opname.Delete("/:id", opnameHandler.Delete)

	// Pengajuan (aprobación de ediciones/eliminaciones)
	pengajuan := protected.Group("/pengajuan")
	pengajuanHandler := NewPengajuanHandler(deps.Approval)
	pengajuan.Get("/", pengajuanHandler.List)
	pengajuan.Get("/:id", pengajuanHandler.Get)
	pengajuan.Post("/", pengajuanHandler.Submit)
	pengajuan.Post("/:id/decision", approvers, pengajuanHandler.Decide)
	pengajuan.Post("/:id/apply", approvers, pengajuanHandler.Apply)

	// Sincronización
	if deps.Store != nil {
		syncHandler := NewSyncHandler(deps.Store)
		protected.Post("/sync/refresh", syncHandler.Refresh)
	}
}

// RequestLogger deja el logger en el contexto de usuario y registra cada petición.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.SetUserContext(log.WithContext(c.UserContext()))
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("petición http")
		return err
	}
}
