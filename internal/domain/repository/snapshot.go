package repository

// Claves de las colecciones del snapshot (una por documento persistido/sincronizado).
const (
	KeyProducts    = "products"
	KeyApotiks     = "apotiks"
	KeyPenyesuaian = "penyesuaianStok"
	KeyTransfers   = "transferBarang"
	KeyReceipts    = "terimaTransfer"
	KeyOpname      = "stokOpname"
	KeyPengajuan   = "pengajuan"
)

// AllKeys lista todas las colecciones en orden estable.
var AllKeys = []string{KeyProducts, KeyApotiks, KeyPenyesuaian, KeyTransfers, KeyReceipts, KeyOpname, KeyPengajuan}

// Tx agrupa los repositorios atados a una misma unidad de trabajo.
// Todo lo escrito a través de un Tx se confirma junto o se descarta junto.
type Tx interface {
	Products() ProductRepository
	Apotiks() ApotikRepository
	Adjustments() AdjustmentRepository
	Transfers() TransferRepository
	Receipts() ReceiptRepository
	Opnames() OpnameRepository
	Pengajuan() PengajuanRepository
}
