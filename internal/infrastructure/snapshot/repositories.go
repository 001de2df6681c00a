package snapshot

import (
	"sort"

	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository    = productRepo{}
	_ repository.ApotikRepository     = apotikRepo{}
	_ repository.AdjustmentRepository = adjustmentRepo{}
	_ repository.TransferRepository   = transferRepo{}
	_ repository.ReceiptRepository    = receiptRepo{}
	_ repository.OpnameRepository     = opnameRepo{}
	_ repository.PengajuanRepository  = pengajuanRepo{}
)

// Create asigna Version 1; Update incrementa la versión almacenada y la refleja en el puntero recibido.

type productRepo struct{ s *Session }

func (r productRepo) Create(p *entity.Product) error {
	p.Version = 1
	return r.s.products.insert(r.s, p)
}

func (r productRepo) GetByID(id string) (*entity.Product, error) {
	return r.s.products.get(r.s, id)
}

func (r productRepo) GetByCode(code string) (*entity.Product, error) {
	list, err := r.s.products.find(r.s, func(p *entity.Product) bool { return p.Code == code })
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r productRepo) Update(p *entity.Product) error {
	cur, err := r.s.products.get(r.s, p.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		p.Version = cur.Version + 1
	}
	return r.s.products.replace(r.s, p)
}

func (r productRepo) List() ([]*entity.Product, error) {
	list, err := r.s.products.find(r.s, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

type apotikRepo struct{ s *Session }

func (r apotikRepo) Create(a *entity.Apotik) error {
	a.Version = 1
	return r.s.apotiks.insert(r.s, a)
}

func (r apotikRepo) GetByID(id string) (*entity.Apotik, error) {
	return r.s.apotiks.get(r.s, id)
}

func (r apotikRepo) GetByCode(code string) (*entity.Apotik, error) {
	list, err := r.s.apotiks.find(r.s, func(a *entity.Apotik) bool { return a.Code == code })
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r apotikRepo) Update(a *entity.Apotik) error {
	cur, err := r.s.apotiks.get(r.s, a.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		a.Version = cur.Version + 1
	}
	return r.s.apotiks.replace(r.s, a)
}

func (r apotikRepo) List() ([]*entity.Apotik, error) {
	list, err := r.s.apotiks.find(r.s, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

type adjustmentRepo struct{ s *Session }

func (r adjustmentRepo) Create(m *entity.StockMovement) error {
	m.Version = 1
	return r.s.adjustments.insert(r.s, m)
}

func (r adjustmentRepo) GetByID(id string) (*entity.StockMovement, error) {
	return r.s.adjustments.get(r.s, id)
}

func (r adjustmentRepo) ListByNoBukti(noBukti string) ([]*entity.StockMovement, error) {
	return r.s.adjustments.find(r.s, func(m *entity.StockMovement) bool { return m.NoBukti == noBukti })
}

func (r adjustmentRepo) List(f repository.AdjustmentFilter) ([]*entity.StockMovement, error) {
	list, err := r.s.adjustments.find(r.s, func(m *entity.StockMovement) bool {
		if f.ApotikID != "" && m.ApotikID != f.ApotikID {
			return false
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			return false
		}
		if f.NoBukti != "" && m.NoBukti != f.NoBukti {
			return false
		}
		if f.From != nil && m.Date.Before(*f.From) {
			return false
		}
		if f.To != nil && m.Date.After(*f.To) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r adjustmentRepo) Update(m *entity.StockMovement) error {
	cur, err := r.s.adjustments.get(r.s, m.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		m.Version = cur.Version + 1
	}
	return r.s.adjustments.replace(r.s, m)
}

func (r adjustmentRepo) Delete(id string) error {
	return r.s.adjustments.remove(r.s, id)
}

func (r adjustmentRepo) DocumentNumbers() ([]string, error) {
	list, err := r.s.adjustments.find(r.s, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.NoBukti)
	}
	return out, nil
}

type transferRepo struct{ s *Session }

func (r transferRepo) Create(t *entity.Transfer) error {
	t.Version = 1
	return r.s.transfers.insert(r.s, t)
}

func (r transferRepo) GetByID(id string) (*entity.Transfer, error) {
	return r.s.transfers.get(r.s, id)
}

func (r transferRepo) Update(t *entity.Transfer) error {
	cur, err := r.s.transfers.get(r.s, t.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		t.Version = cur.Version + 1
	}
	return r.s.transfers.replace(r.s, t)
}

func (r transferRepo) List(f repository.TransferFilter) ([]*entity.Transfer, error) {
	list, err := r.s.transfers.find(r.s, func(t *entity.Transfer) bool {
		if f.FromApotikID != "" && t.FromApotikID != f.FromApotikID {
			return false
		}
		if f.ToApotikID != "" && t.ToApotikID != f.ToApotikID {
			return false
		}
		if f.Status != "" && t.Status != f.Status {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (r transferRepo) DocumentNumbers() ([]string, error) {
	list, err := r.s.transfers.find(r.s, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.NoTransfer)
	}
	return out, nil
}

type receiptRepo struct{ s *Session }

func (r receiptRepo) Create(rc *entity.Receipt) error {
	rc.Version = 1
	return r.s.receipts.insert(r.s, rc)
}

func (r receiptRepo) GetByID(id string) (*entity.Receipt, error) {
	return r.s.receipts.get(r.s, id)
}

func (r receiptRepo) GetByTransferID(transferID string) (*entity.Receipt, error) {
	list, err := r.s.receipts.find(r.s, func(rc *entity.Receipt) bool { return rc.TransferID == transferID })
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r receiptRepo) Update(rc *entity.Receipt) error {
	cur, err := r.s.receipts.get(r.s, rc.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		rc.Version = cur.Version + 1
	}
	return r.s.receipts.replace(r.s, rc)
}

func (r receiptRepo) Delete(id string) error {
	return r.s.receipts.remove(r.s, id)
}

func (r receiptRepo) List(toApotikID string) ([]*entity.Receipt, error) {
	list, err := r.s.receipts.find(r.s, func(rc *entity.Receipt) bool {
		return toApotikID == "" || rc.ToApotikID == toApotikID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (r receiptRepo) DocumentNumbers() ([]string, error) {
	list, err := r.s.receipts.find(r.s, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, rc := range list {
		out = append(out, rc.NoTerima)
	}
	return out, nil
}

type opnameRepo struct{ s *Session }

func (r opnameRepo) Create(o *entity.Opname) error {
	o.Version = 1
	return r.s.opnames.insert(r.s, o)
}

func (r opnameRepo) GetByID(id string) (*entity.Opname, error) {
	return r.s.opnames.get(r.s, id)
}

func (r opnameRepo) Update(o *entity.Opname) error {
	cur, err := r.s.opnames.get(r.s, o.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		o.Version = cur.Version + 1
	}
	return r.s.opnames.replace(r.s, o)
}

func (r opnameRepo) Delete(id string) error {
	return r.s.opnames.remove(r.s, id)
}

func (r opnameRepo) List(apotikID, status string) ([]*entity.Opname, error) {
	list, err := r.s.opnames.find(r.s, func(o *entity.Opname) bool {
		return (apotikID == "" || o.ApotikID == apotikID) && (status == "" || o.Status == status)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (r opnameRepo) DocumentNumbers() ([]string, error) {
	list, err := r.s.opnames.find(r.s, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.NoOpname)
	}
	return out, nil
}

type pengajuanRepo struct{ s *Session }

func (r pengajuanRepo) Create(p *entity.Pengajuan) error {
	p.Version = 1
	return r.s.pengajuan.insert(r.s, p)
}

func (r pengajuanRepo) GetByID(id string) (*entity.Pengajuan, error) {
	return r.s.pengajuan.get(r.s, id)
}

func (r pengajuanRepo) Update(p *entity.Pengajuan) error {
	cur, err := r.s.pengajuan.get(r.s, p.ID)
	if err != nil {
		return err
	}
	if cur != nil {
		p.Version = cur.Version + 1
	}
	return r.s.pengajuan.replace(r.s, p)
}

func (r pengajuanRepo) List(f repository.PengajuanFilter) ([]*entity.Pengajuan, error) {
	list, err := r.s.pengajuan.find(r.s, func(p *entity.Pengajuan) bool {
		return (f.Kind == "" || p.Target.Kind == f.Kind) && (f.Status == "" || p.Status == f.Status)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}
