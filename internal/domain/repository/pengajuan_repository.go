package repository

import "github.com/jhoicas/Apotik-api/internal/domain/entity"

// PengajuanFilter filtros opcionales para listar pengajuan.
type PengajuanFilter struct {
	Kind   string
	Status string
}

// PengajuanRepository define el puerto de persistencia para solicitudes de aprobación.
type PengajuanRepository interface {
	Create(p *entity.Pengajuan) error
	GetByID(id string) (*entity.Pengajuan, error)
	Update(p *entity.Pengajuan) error
	List(filter PengajuanFilter) ([]*entity.Pengajuan, error)
}
