package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// ApotikUseCase casos de uso CRUD para apotik. No se eliminan: se desactivan.
type ApotikUseCase struct {
	tx TxRunner
}

// NewApotikUseCase construye el caso de uso.
func NewApotikUseCase(tx TxRunner) *ApotikUseCase {
	return &ApotikUseCase{tx: tx}
}

// Create crea una nueva apotik activa. El código es único.
func (uc *ApotikUseCase) Create(ctx context.Context, in dto.CreateApotikRequest) (*dto.ApotikResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	now := time.Now()
	apotik := &entity.Apotik{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      in.Name,
		Address:   in.Address,
		City:      in.City,
		Phone:     in.Phone,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Apotiks().GetByCode(code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("apotik %s: %w", code, domain.ErrDuplicate)
		}
		return tx.Apotiks().Create(apotik)
	})
	if err != nil {
		return nil, err
	}
	return toApotikResponse(apotik), nil
}

// GetByID obtiene una apotik por ID; (nil, nil) si no existe.
func (uc *ApotikUseCase) GetByID(ctx context.Context, id string) (*dto.ApotikResponse, error) {
	var apotik *entity.Apotik
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		apotik, err = tx.Apotiks().GetByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toApotikResponse(apotik), nil
}

// Update actualiza una apotik; (nil, nil) si no existe.
func (uc *ApotikUseCase) Update(ctx context.Context, id string, in dto.UpdateApotikRequest) (*dto.ApotikResponse, error) {
	var apotik *entity.Apotik
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		apotik, err = tx.Apotiks().GetByID(id)
		if err != nil || apotik == nil {
			return err
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.Invalid("name", "no puede quedar vacío")
			}
			apotik.Name = *in.Name
		}
		if in.Address != nil {
			apotik.Address = *in.Address
		}
		if in.City != nil {
			apotik.City = *in.City
		}
		if in.Phone != nil {
			apotik.Phone = *in.Phone
		}
		if in.Active != nil {
			apotik.Active = *in.Active
		}
		apotik.UpdatedAt = time.Now()
		return tx.Apotiks().Update(apotik)
	})
	if err != nil {
		return nil, err
	}
	return toApotikResponse(apotik), nil
}

// List lista apotik; activeOnly excluye las inactivas (listas de selección).
func (uc *ApotikUseCase) List(ctx context.Context, activeOnly bool, page dto.PageRequest) (*dto.ApotikListResponse, error) {
	page.DefaultPage()
	var list []*entity.Apotik
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		list, err = tx.Apotiks().List()
		return err
	})
	if err != nil {
		return nil, err
	}
	filtered := make([]*entity.Apotik, 0, len(list))
	for _, a := range list {
		if activeOnly && !a.Active {
			continue
		}
		filtered = append(filtered, a)
	}
	from, to := page.Slice(len(filtered))
	items := make([]dto.ApotikResponse, 0, to-from)
	for _, a := range filtered[from:to] {
		items = append(items, *toApotikResponse(a))
	}
	return &dto.ApotikListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(filtered)},
	}, nil
}

// Deactivate marca la apotik como inactiva; el histórico que la referencia sigue siendo válido.
func (uc *ApotikUseCase) Deactivate(ctx context.Context, id string) error {
	inactive := false
	resp, err := uc.Update(ctx, id, dto.UpdateApotikRequest{Active: &inactive})
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("apotik %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func toApotikResponse(a *entity.Apotik) *dto.ApotikResponse {
	if a == nil {
		return nil
	}
	return &dto.ApotikResponse{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Address:   a.Address,
		City:      a.City,
		Phone:     a.Phone,
		Active:    a.Active,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
