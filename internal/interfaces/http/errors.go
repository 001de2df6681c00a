package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/domain"
)

// StatusPreconditionRequired se devuelve cuando el stock quedaría negativo y falta confirmación.
const StatusPreconditionRequired = fiber.StatusPreconditionRequired

// writeError traduce errores de dominio a respuestas HTTP con dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var negative *domain.NegativeStockError
	if errors.As(err, &negative) {
		return c.Status(StatusPreconditionRequired).JSON(dto.ErrorResponse{
			Code:    "NEGATIVE_STOCK_CONFIRMATION",
			Message: domain.ErrNegativeStockConfirmation.Error(),
			Details: negative.Lines,
		})
	}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: err.Error(),
			Details: fiber.Map{"field": invalid.Field},
		})
	}
	status, code := classify(err)
	if status == fiber.StatusInternalServerError {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrDuplicateProduct):
		return fiber.StatusBadRequest, "DUPLICATE_PRODUCT"
	case errors.Is(err, domain.ErrOverReceipt):
		return fiber.StatusBadRequest, "OVER_RECEIPT"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInvalidTransferState):
		return fiber.StatusConflict, "INVALID_TRANSFER_STATE"
	case errors.Is(err, domain.ErrAlreadyApplied):
		return fiber.StatusConflict, "ALREADY_APPLIED"
	case errors.Is(err, domain.ErrConcurrentModification):
		return fiber.StatusConflict, "CONCURRENT_MODIFICATION"
	case errors.Is(err, domain.ErrOpnameFinalized):
		return fiber.StatusConflict, "OPNAME_FINALIZED"
	case errors.Is(err, domain.ErrActivePengajuan):
		return fiber.StatusConflict, "ACTIVE_PENGAJUAN"
	case errors.Is(err, domain.ErrInvalidPengajuanState):
		return fiber.StatusConflict, "INVALID_PENGAJUAN_STATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}
