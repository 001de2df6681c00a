package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/application/usecase"
)

// ApotikHandler maneja las peticiones HTTP para Apotik (protegido).
type ApotikHandler struct {
	uc *usecase.ApotikUseCase
}

// NewApotikHandler construye el handler.
func NewApotikHandler(uc *usecase.ApotikUseCase) *ApotikHandler {
	return &ApotikHandler{uc: uc}
}

// Create godoc
// @Summary      Crear apotik
// @Tags         apotik
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateApotikRequest  true  "Datos de la apotik"
// @Success      201   {object}  dto.ApotikResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/apotik [post]
func (h *ApotikHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateApotikRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener apotik por ID
// @Tags         apotik
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la apotik"
// @Success      200  {object}  dto.ApotikResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/apotik/{id} [get]
func (h *ApotikHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "apotik no encontrada")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar apotik
// @Tags         apotik
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activas"
// @Param        limit   query  int   false  "Límite"  default(50)
// @Param        offset  query  int   false  "Offset"  default(0)
// @Success      200     {object}  dto.ApotikListResponse
// @Router       /api/apotik [get]
func (h *ApotikHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), c.QueryBool("active", false), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar apotik
// @Tags         apotik
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la apotik"
// @Param        body  body  dto.UpdateApotikRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ApotikResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/apotik/{id} [put]
func (h *ApotikHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateApotikRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "apotik no encontrada")
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar apotik
// @Tags         apotik
// @Security     Bearer
// @Param        id   path  string  true  "ID de la apotik"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/apotik/{id} [delete]
func (h *ApotikHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
