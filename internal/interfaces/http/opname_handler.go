package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/application/inventory"
)

// OpnameHandler maneja stok opname (protegido).
type OpnameHandler struct {
	engine *inventory.OpnameEngine
}

// NewOpnameHandler construye el handler.
func NewOpnameHandler(engine *inventory.OpnameEngine) *OpnameHandler {
	return &OpnameHandler{engine: engine}
}

// Start godoc
// @Summary      Iniciar stok opname
// @Description  Toma una foto del stock del sistema para los productos seleccionados.
// @Tags         opname
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartOpnameRequest  true  "apotik_id e items"
// @Success      201   {object}  entity.Opname
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/opname [post]
func (h *OpnameHandler) Start(c *fiber.Ctx) error {
	var in dto.StartOpnameRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]inventory.OpnameSelection, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.OpnameSelection{ProductID: it.ProductID, UnitID: it.UnitID})
	}
	out, err := h.engine.Start(c.UserContext(), inventory.OpnameInput{
		ApotikID: in.ApotikID,
		Date:     dateOrZero(in.Date),
		Items:    items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateCounts godoc
// @Summary      Registrar conteos físicos
// @Tags         opname
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del opname"
// @Param        body  body  dto.UpdateCountsRequest  true  "Conteos"
// @Success      200   {object}  entity.Opname
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/opname/{id}/counts [put]
func (h *OpnameHandler) UpdateCounts(c *fiber.Ctx) error {
	var in dto.UpdateCountsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	counts := make([]inventory.OpnameCount, 0, len(in.Counts))
	for _, ct := range in.Counts {
		counts = append(counts, inventory.OpnameCount{ProductID: ct.ProductID, StokFisik: ct.StokFisik, Note: ct.Note})
	}
	out, err := h.engine.UpdateCounts(c.UserContext(), c.Params("id"), counts, in.ExpectedVersion)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Finalize godoc
// @Summary      Finalizar stok opname
// @Description  No modifica stock; solo cierra el documento.
// @Tags         opname
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del opname"
// @Param        body  body  dto.VersionRequest  false  "Versión esperada"
// @Success      200   {object}  entity.Opname
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/opname/{id}/finalize [post]
func (h *OpnameHandler) Finalize(c *fiber.Ctx) error {
	var in dto.VersionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.engine.Finalize(c.UserContext(), c.Params("id"), in.ExpectedVersion)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar stok opname en Draft
// @Tags         opname
// @Security     Bearer
// @Param        id                path   string  true   "ID del opname"
// @Param        expected_version  query  int     false  "Versión esperada"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opname/{id} [delete]
func (h *OpnameHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Delete(c.UserContext(), c.Params("id"), int64(c.QueryInt("expected_version", 0))); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get godoc
// @Summary      Obtener stok opname
// @Tags         opname
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del opname"
// @Success      200  {object}  entity.Opname
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/opname/{id} [get]
func (h *OpnameHandler) Get(c *fiber.Ctx) error {
	out, err := h.engine.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar stok opname
// @Tags         opname
// @Security     Bearer
// @Produce      json
// @Param        apotik_id  query  string  false  "Apotik"
// @Param        status     query  string  false  "Draft | Selesai"
// @Success      200  {array}   entity.Opname
// @Router       /api/opname [get]
func (h *OpnameHandler) List(c *fiber.Ctx) error {
	out, err := h.engine.List(c.UserContext(), c.Query("apotik_id"), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
