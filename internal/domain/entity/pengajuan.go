package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Estados de pengajuan. Ditolak nunca pasa a Disetujui; se reenvía creando una nueva.
const (
	PengajuanStatusPending  = "Menunggu Persetujuan"
	PengajuanStatusApproved = "Disetujui"
	PengajuanStatusRejected = "Ditolak"
	PengajuanStatusApplied  = "Selesai"
)

// Tipos de registro que una pengajuan puede afectar.
const (
	TargetPenyesuaian    = "penyesuaian"
	TargetTerimaTransfer = "terimaTransfer"
)

// Valores persistidos de jenisPengajuan.
const (
	JenisEdit   = "Edit Data"
	JenisDelete = "Hapus Data"
)

// PengajuanTarget referencia al registro afectado: una línea (RecordID) o un lote completo
// de penyesuaian (IsGlobal + NoBukti).
type PengajuanTarget struct {
	Kind     string `json:"tipe"`
	RecordID string `json:"recordId,omitempty"`
	NoBukti  string `json:"noBukti,omitempty"`
	IsGlobal bool   `json:"isGlobal"`
}

// Key identifica el target para búsquedas.
func (t PengajuanTarget) Key() string {
	if t.IsGlobal {
		return t.Kind + ":batch:" + t.NoBukti
	}
	return t.Kind + ":" + t.RecordID
}

// Change es la modificación solicitada: EditChange o DeleteChange.
type Change interface {
	Jenis() string
	isChange()
}

// AdjustmentEdit nuevo delta (y opcionalmente nota) para una línea de penyesuaian.
type AdjustmentEdit struct {
	RecordID string  `json:"recordId"`
	Delta    int64   `json:"penyesuaian"`
	Note     *string `json:"keterangan,omitempty"`
}

// ReceiptLineEdit nueva cantidad recibida para un producto de la terima transfer.
type ReceiptLineEdit struct {
	ProductID   string `json:"produkId"`
	QtyReceived int64  `json:"jumlahDiterima"`
}

// EditChange snapshot de los nuevos valores propuestos.
type EditChange struct {
	Adjustments []AdjustmentEdit  `json:"penyesuaian,omitempty"`
	Receipt     []ReceiptLineEdit `json:"terimaTransfer,omitempty"`
	Note        *string           `json:"keterangan,omitempty"`
}

// DeleteChange solicita eliminar el registro (revirtiendo su efecto en el stock).
type DeleteChange struct{}

func (EditChange) Jenis() string   { return JenisEdit }
func (EditChange) isChange()       {}
func (DeleteChange) Jenis() string { return JenisDelete }
func (DeleteChange) isChange()     {}

// Pengajuan solicitud de aprobación para editar o eliminar un movimiento histórico.
type Pengajuan struct {
	ID           string
	Target       PengajuanTarget
	Change       Change
	Alasan       string
	Status       string
	RequestedBy  string
	DecidedBy    string
	DecisionNote string
	DecidedAt    *time.Time
	AppliedAt    *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active indica si bloquea otras pengajuan sobre el mismo registro.
func (p *Pengajuan) Active() bool {
	return p.Status == PengajuanStatusPending || p.Status == PengajuanStatusApproved
}

type pengajuanDoc struct {
	ID             string          `json:"id"`
	Target         PengajuanTarget `json:"target"`
	JenisPengajuan string          `json:"jenisPengajuan"`
	DataBaru       *EditChange     `json:"dataBaru,omitempty"`
	Alasan         string          `json:"alasan"`
	Status         string          `json:"status"`
	RequestedBy    string          `json:"diajukanOleh"`
	DecidedBy      string          `json:"diputuskanOleh,omitempty"`
	DecisionNote   string          `json:"catatanKeputusan,omitempty"`
	DecidedAt      *time.Time      `json:"diputuskanAt,omitempty"`
	AppliedAt      *time.Time      `json:"diterapkanAt,omitempty"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// MarshalJSON persiste el Change con la etiqueta jenisPengajuan.
func (p Pengajuan) MarshalJSON() ([]byte, error) {
	doc := pengajuanDoc{
		ID:           p.ID,
		Target:       p.Target,
		Alasan:       p.Alasan,
		Status:       p.Status,
		RequestedBy:  p.RequestedBy,
		DecidedBy:    p.DecidedBy,
		DecisionNote: p.DecisionNote,
		DecidedAt:    p.DecidedAt,
		AppliedAt:    p.AppliedAt,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	switch c := p.Change.(type) {
	case EditChange:
		doc.JenisPengajuan = JenisEdit
		doc.DataBaru = &c
	case DeleteChange:
		doc.JenisPengajuan = JenisDelete
	default:
		return nil, fmt.Errorf("pengajuan %s: change desconocido %T", p.ID, p.Change)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reconstruye el Change a partir de jenisPengajuan.
func (p *Pengajuan) UnmarshalJSON(data []byte) error {
	var doc pengajuanDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	switch doc.JenisPengajuan {
	case JenisEdit:
		if doc.DataBaru == nil {
			return fmt.Errorf("pengajuan %s: Edit Data sin dataBaru", doc.ID)
		}
		p.Change = *doc.DataBaru
	case JenisDelete:
		p.Change = DeleteChange{}
	default:
		return fmt.Errorf("pengajuan %s: jenisPengajuan desconocido %q", doc.ID, doc.JenisPengajuan)
	}
	p.ID = doc.ID
	p.Target = doc.Target
	p.Alasan = doc.Alasan
	p.Status = doc.Status
	p.RequestedBy = doc.RequestedBy
	p.DecidedBy = doc.DecidedBy
	p.DecisionNote = doc.DecisionNote
	p.DecidedAt = doc.DecidedAt
	p.AppliedAt = doc.AppliedAt
	p.Version = doc.Version
	p.CreatedAt = doc.CreatedAt
	p.UpdatedAt = doc.UpdatedAt
	return nil
}
