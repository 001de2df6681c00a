package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// PengajuanHandler maneja solicitudes de aprobación para editar o eliminar movimientos (protegido).
type PengajuanHandler struct {
	gate *inventory.ApprovalGate
}

// NewPengajuanHandler construye el handler.
func NewPengajuanHandler(gate *inventory.ApprovalGate) *PengajuanHandler {
	return &PengajuanHandler{gate: gate}
}

// Submit godoc
// @Summary      Enviar pengajuan
// @Description  jenis "Edit Data" requiere adjustments o receipt; "Hapus Data" no lleva datos nuevos.
// @Tags         pengajuan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitPengajuanRequest  true  "Target, jenis, alasan y datos nuevos"
// @Success      201   {object}  entity.Pengajuan
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pengajuan [post]
func (h *PengajuanHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitPengajuanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	change, err := toChange(in)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.gate.Submit(c.UserContext(), inventory.SubmitInput{
		Target: entity.PengajuanTarget{
			Kind:     in.Target.Kind,
			RecordID: in.Target.RecordID,
			NoBukti:  in.Target.NoBukti,
			IsGlobal: in.Target.IsGlobal,
		},
		Change: change,
		Alasan: in.Alasan,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Decide godoc
// @Summary      Aprobar o rechazar pengajuan
// @Tags         pengajuan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la pengajuan"
// @Param        body  body  dto.DecideRequest  true  "approve, note, expected_version"
// @Success      200   {object}  entity.Pengajuan
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pengajuan/{id}/decision [post]
func (h *PengajuanHandler) Decide(c *fiber.Ctx) error {
	var in dto.DecideRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.gate.Decide(c.UserContext(), c.Params("id"), in.Approve, in.Note, in.ExpectedVersion)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Apply godoc
// @Summary      Aplicar pengajuan aprobada
// @Description  Ejecuta el cambio sobre el registro y marca la pengajuan como Selesai.
// @Tags         pengajuan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la pengajuan"
// @Param        body  body  dto.ApplyRequest  false  "confirm_negative"
// @Success      200   {object}  entity.Pengajuan
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/pengajuan/{id}/apply [post]
func (h *PengajuanHandler) Apply(c *fiber.Ctx) error {
	var in dto.ApplyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.gate.ApplyApproved(c.UserContext(), c.Params("id"), in.ConfirmNegative)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener pengajuan
// @Tags         pengajuan
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la pengajuan"
// @Success      200  {object}  entity.Pengajuan
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pengajuan/{id} [get]
func (h *PengajuanHandler) Get(c *fiber.Ctx) error {
	out, err := h.gate.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pengajuan
// @Tags         pengajuan
// @Security     Bearer
// @Produce      json
// @Param        kind    query  string  false  "penyesuaian | terimaTransfer"
// @Param        status  query  string  false  "Estado"
// @Success      200  {array}   entity.Pengajuan
// @Router       /api/pengajuan [get]
func (h *PengajuanHandler) List(c *fiber.Ctx) error {
	out, err := h.gate.List(c.UserContext(), repository.PengajuanFilter{Kind: c.Query("kind"), Status: c.Query("status")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func toChange(in dto.SubmitPengajuanRequest) (entity.Change, error) {
	switch in.Jenis {
	case entity.JenisDelete:
		return entity.DeleteChange{}, nil
	case entity.JenisEdit:
		change := entity.EditChange{Note: in.Note}
		for _, a := range in.Adjustments {
			change.Adjustments = append(change.Adjustments, entity.AdjustmentEdit{RecordID: a.RecordID, Delta: a.Delta, Note: a.Note})
		}
		for _, r := range in.Receipt {
			change.Receipt = append(change.Receipt, entity.ReceiptLineEdit{ProductID: r.ProductID, QtyReceived: r.QtyReceived})
		}
		return change, nil
	case "":
		return nil, domain.Invalid("jenis", "requerido")
	}
	return nil, domain.Invalid("jenis", "debe ser \""+entity.JenisEdit+"\" o \""+entity.JenisDelete+"\"")
}
