package repository

import "github.com/jhoicas/Apotik-api/internal/domain/entity"

// TransferFilter filtros opcionales para listar transferencias.
type TransferFilter struct {
	FromApotikID string
	ToApotikID   string
	Status       string
}

// TransferRepository define el puerto de persistencia para transferencias.
type TransferRepository interface {
	Create(transfer *entity.Transfer) error
	GetByID(id string) (*entity.Transfer, error)
	Update(transfer *entity.Transfer) error
	List(filter TransferFilter) ([]*entity.Transfer, error)
	DocumentNumbers() ([]string, error)
}

// ReceiptRepository define el puerto de persistencia para terima transfer.
type ReceiptRepository interface {
	Create(receipt *entity.Receipt) error
	GetByID(id string) (*entity.Receipt, error)
	// GetByTransferID devuelve la recepción de la transferencia o (nil, nil).
	GetByTransferID(transferID string) (*entity.Receipt, error)
	Update(receipt *entity.Receipt) error
	Delete(id string) error
	List(toApotikID string) ([]*entity.Receipt, error)
	DocumentNumbers() ([]string, error)
}
