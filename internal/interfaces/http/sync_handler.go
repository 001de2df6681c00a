package http

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// Refresher recarga colecciones del snapshot desde el almacenamiento remoto.
type Refresher interface {
	Refresh(ctx context.Context, keys ...string) error
}

// SyncHandler expone la recarga bajo demanda del snapshot (protegido).
type SyncHandler struct {
	store Refresher
}

// NewSyncHandler construye el handler.
func NewSyncHandler(store Refresher) *SyncHandler {
	return &SyncHandler{store: store}
}

// Refresh godoc
// @Summary      Recargar snapshot remoto
// @Description  Sin parámetro key recarga todas las colecciones.
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Param        key  query  string  false  "Colección (products, apotiks, ...)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sync/refresh [post]
func (h *SyncHandler) Refresh(c *fiber.Ctx) error {
	keys := repository.AllKeys
	if k := c.Query("key"); k != "" {
		if !slices.Contains(repository.AllKeys, k) {
			return writeError(c, domain.Invalid("key", "colección desconocida: "+k))
		}
		keys = []string{k}
	}
	if err := h.store.Refresh(c.UserContext(), keys...); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"refreshed": keys})
}
