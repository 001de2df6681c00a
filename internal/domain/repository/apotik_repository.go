package repository

import "github.com/jhoicas/Apotik-api/internal/domain/entity"

// ApotikRepository define el puerto de persistencia para Apotik (DIP).
type ApotikRepository interface {
	Create(apotik *entity.Apotik) error
	GetByID(id string) (*entity.Apotik, error)
	GetByCode(code string) (*entity.Apotik, error)
	Update(apotik *entity.Apotik) error
	List() ([]*entity.Apotik, error)
}
