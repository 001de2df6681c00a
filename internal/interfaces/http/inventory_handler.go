package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// InventoryHandler maneja penyesuaian stok y consultas de stock (protegido).
type InventoryHandler struct {
	adjustments *inventory.AdjustmentEngine
	ledger      *inventory.StockLedger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjustments *inventory.AdjustmentEngine, ledger *inventory.StockLedger) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments, ledger: ledger}
}

// CreateAdjustment godoc
// @Summary      Registrar penyesuaian stok
// @Description  Aplica todas las líneas o ninguna. Si alguna deja stock negativo responde 428
// @Description  con las líneas afectadas; reintentar con confirm_negative=true.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "apotik_id, lines (product_id, unit_id, qty firmada)"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.AdjustmentLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.AdjustmentLine{ProductID: l.ProductID, UnitID: l.UnitID, Qty: l.Qty})
	}
	out, err := h.adjustments.Apply(c.UserContext(), inventory.AdjustmentInput{
		ApotikID:        in.ApotikID,
		Date:            dateOrZero(in.Date),
		Note:            in.Note,
		Lines:           lines,
		ConfirmNegative: in.ConfirmNegative,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"no_bukti": out.NoBukti, "movements": out.Movements})
}

// ListAdjustments godoc
// @Summary      Histórico de penyesuaian
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        apotik_id   query  string  false  "Apotik"
// @Param        product_id  query  string  false  "Producto"
// @Param        no_bukti    query  string  false  "Número de documento"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   entity.StockMovement
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/adjustments [get]
func (h *InventoryHandler) ListAdjustments(c *fiber.Ctx) error {
	filter := repository.AdjustmentFilter{
		ApotikID:  c.Query("apotik_id"),
		ProductID: c.Query("product_id"),
		NoBukti:   c.Query("no_bukti"),
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, err)
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, err)
	}
	out, err := h.adjustments.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetAdjustmentBatch godoc
// @Summary      Líneas de un documento de penyesuaian
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        no_bukti  path  string  true  "Número de documento"
// @Success      200  {array}   entity.StockMovement
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{no_bukti} [get]
func (h *InventoryHandler) GetAdjustmentBatch(c *fiber.Ctx) error {
	out, err := h.adjustments.GetBatch(c.UserContext(), c.Params("no_bukti"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Quantity godoc
// @Summary      Stock de un producto en una apotik
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        apotik_id   query  string  true  "Apotik"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *InventoryHandler) Quantity(c *fiber.Ctx) error {
	productID, apotikID := c.Query("product_id"), c.Query("apotik_id")
	if productID == "" || apotikID == "" {
		return writeError(c, domain.Invalid("product_id/apotik_id", "requeridos"))
	}
	qty, err := h.ledger.Quantity(c.UserContext(), productID, apotikID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "apotik_id": apotikID, "quantity": qty})
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse("2006-01-02", raw); err != nil {
			return nil, domain.Invalid(key, "fecha inválida")
		}
	}
	return &t, nil
}
