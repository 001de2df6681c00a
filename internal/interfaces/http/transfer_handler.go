package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// TransferHandler maneja transfer barang (kirim) y terima transfer (protegido).
type TransferHandler struct {
	engine *inventory.TransferEngine
}

// NewTransferHandler construye el handler.
func NewTransferHandler(engine *inventory.TransferEngine) *TransferHandler {
	return &TransferHandler{engine: engine}
}

// Create godoc
// @Summary      Crear transferencia
// @Description  send=true crea y envía (descuenta stock de origen) en un solo paso.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Datos de la transferencia"
// @Success      201   {object}  entity.Transfer
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.TransferLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferLine{ProductID: l.ProductID, UnitID: l.UnitID, Qty: l.Qty})
	}
	input := inventory.TransferInput{
		FromApotikID:    in.FromApotikID,
		ToApotikID:      in.ToApotikID,
		Date:            dateOrZero(in.Date),
		Note:            in.Note,
		Lines:           lines,
		ConfirmNegative: in.ConfirmNegative,
	}
	create := h.engine.CreateDraft
	if in.Send {
		create = h.engine.CreateAndSend
	}
	out, err := create(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Send godoc
// @Summary      Enviar transferencia en Draft
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transferencia"
// @Param        body  body  dto.SendTransferRequest  false  "Confirmación y versión esperada"
// @Success      200   {object}  entity.Transfer
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *fiber.Ctx) error {
	var in dto.SendTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.engine.Send(c.UserContext(), c.Params("id"), inventory.SendOptions{
		ConfirmNegative: in.ConfirmNegative,
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir transferencia (terima transfer)
// @Description  Debe incluir cada línea de la transferencia exactamente una vez.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transferencia"
// @Param        body  body  dto.ReceiveRequest  true  "Cantidades recibidas"
// @Success      201   {object}  entity.Receipt
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.ReceiveLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.ReceiveLine{ProductID: l.ProductID, QtyReceived: l.QtyReceived})
	}
	out, err := h.engine.Receive(c.UserContext(), inventory.ReceiveInput{
		TransferID:      c.Params("id"),
		Date:            dateOrZero(in.Date),
		Note:            in.Note,
		Lines:           lines,
		ExpectedVersion: in.ExpectedVersion,
		ConfirmNegative: in.ConfirmNegative,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Cancelar transferencia
// @Description  Si ya fue enviada, el stock vuelve a la apotik de origen.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transferencia"
// @Param        body  body  dto.SendTransferRequest  false  "Versión esperada y confirmación de negativo"
// @Success      200   {object}  entity.Transfer
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.SendTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.engine.Cancel(c.UserContext(), c.Params("id"), inventory.SendOptions{
		ConfirmNegative: in.ConfirmNegative,
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener transferencia
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transferencia"
// @Success      200  {object}  entity.Transfer
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	out, err := h.engine.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar transferencias
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        from_apotik_id  query  string  false  "Origen"
// @Param        to_apotik_id    query  string  false  "Destino"
// @Param        status          query  string  false  "Draft | Dikirim | Diterima | Dibatalkan"
// @Success      200  {array}   entity.Transfer
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	out, err := h.engine.List(c.UserContext(), repository.TransferFilter{
		FromApotikID: c.Query("from_apotik_id"),
		ToApotikID:   c.Query("to_apotik_id"),
		Status:       c.Query("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pending godoc
// @Summary      Transferencias pendientes de recibir
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        to_apotik_id  query  string  true  "Apotik destino"
// @Success      200  {array}   entity.Transfer
// @Router       /api/transfers/pending [get]
func (h *TransferHandler) Pending(c *fiber.Ctx) error {
	out, err := h.engine.ListPending(c.UserContext(), c.Query("to_apotik_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListReceipts godoc
// @Summary      Listar terima transfer
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        to_apotik_id  query  string  false  "Apotik destino"
// @Success      200  {array}   entity.Receipt
// @Router       /api/receipts [get]
func (h *TransferHandler) ListReceipts(c *fiber.Ctx) error {
	out, err := h.engine.ListReceipts(c.UserContext(), c.Query("to_apotik_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReceipt godoc
// @Summary      Obtener terima transfer
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  entity.Receipt
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *TransferHandler) GetReceipt(c *fiber.Ctx) error {
	out, err := h.engine.GetReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
