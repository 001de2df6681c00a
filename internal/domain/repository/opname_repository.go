package repository

import "github.com/jhoicas/Apotik-api/internal/domain/entity"

// OpnameRepository define el puerto de persistencia para stok opname.
type OpnameRepository interface {
	Create(opname *entity.Opname) error
	GetByID(id string) (*entity.Opname, error)
	Update(opname *entity.Opname) error
	Delete(id string) error
	List(apotikID, status string) ([]*entity.Opname, error)
	DocumentNumbers() ([]string, error)
}
