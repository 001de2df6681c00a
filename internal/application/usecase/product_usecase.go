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

// ProductUseCase casos de uso CRUD para productos. El stock por apotik se maneja vía movimientos.
type ProductUseCase struct {
	tx TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx TxRunner) *ProductUseCase {
	return &ProductUseCase{tx: tx}
}

// Create crea un nuevo producto activo. El código es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.PurchasePrice.IsNegative() || in.SalePrice.IsNegative() {
		return nil, domain.Invalid("price", "no puede ser negativo")
	}
	if in.StokAwal < 0 {
		return nil, domain.Invalid("stok_awal", "no puede ser negativo")
	}
	if in.BaseUnit == "" {
		in.BaseUnit = "pcs"
	}
	units, err := toUnits(in.BaseUnit, in.Units)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Code:          code,
		Name:          in.Name,
		Category:      in.Category,
		BaseUnit:      in.BaseUnit,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Units:         units,
		StokAwal:      in.StokAwal,
		StokPerApotik: map[string]int64{},
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Products().GetByCode(code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("producto %s: %w", code, domain.ErrDuplicate)
		}
		return tx.Products().Create(product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		product, err = tx.Products().GetByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		product, err = tx.Products().GetByID(id)
		if err != nil || product == nil {
			return err
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.Invalid("name", "no puede quedar vacío")
			}
			product.Name = *in.Name
		}
		if in.Category != nil {
			product.Category = *in.Category
		}
		if in.PurchasePrice != nil {
			if in.PurchasePrice.IsNegative() {
				return domain.Invalid("purchase_price", "no puede ser negativo")
			}
			product.PurchasePrice = *in.PurchasePrice
		}
		if in.SalePrice != nil {
			if in.SalePrice.IsNegative() {
				return domain.Invalid("sale_price", "no puede ser negativo")
			}
			product.SalePrice = *in.SalePrice
		}
		if in.Units != nil {
			units, err := toUnits(product.BaseUnit, in.Units)
			if err != nil {
				return err
			}
			product.Units = units
		}
		if in.Active != nil {
			product.Active = *in.Active
		}
		product.UpdatedAt = time.Now()
		return tx.Products().Update(product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación; category vacía = todas.
func (uc *ProductUseCase) List(ctx context.Context, category string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	var list []*entity.Product
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		list, err = tx.Products().List()
		return err
	})
	if err != nil {
		return nil, err
	}
	filtered := make([]*entity.Product, 0, len(list))
	for _, p := range list {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		filtered = append(filtered, p)
	}
	from, to := page.Slice(len(filtered))
	items := make([]dto.ProductResponse, 0, to-from)
	for _, p := range filtered[from:to] {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(filtered)},
	}, nil
}

// Deactivate marca el producto como inactivo.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	inactive := false
	resp, err := uc.Update(ctx, id, dto.UpdateProductRequest{Active: &inactive})
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func toUnits(baseUnit string, in []dto.UnitDTO) ([]entity.Unit, error) {
	units := make([]entity.Unit, 0, len(in))
	seen := map[string]bool{baseUnit: true}
	for _, u := range in {
		if u.ID == "" {
			return nil, domain.Invalid("units", "id requerido")
		}
		if seen[u.ID] {
			return nil, domain.Invalid("units", "unidad repetida: "+u.ID)
		}
		if u.Factor < 1 {
			return nil, domain.Invalid("units", "factor de "+u.ID+" debe ser >= 1")
		}
		seen[u.ID] = true
		units = append(units, entity.Unit{ID: u.ID, Name: u.Name, Factor: u.Factor})
	}
	return units, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	units := make([]dto.UnitDTO, 0, len(p.Units))
	for _, u := range p.Units {
		units = append(units, dto.UnitDTO{ID: u.ID, Name: u.Name, Factor: u.Factor})
	}
	stok := p.StokPerApotik
	if stok == nil {
		stok = map[string]int64{}
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Category:      p.Category,
		BaseUnit:      p.BaseUnit,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Units:         units,
		StokAwal:      p.StokAwal,
		StokPerApotik: stok,
		Active:        p.Active,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
