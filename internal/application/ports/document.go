package ports

import "github.com/jhoicas/Inventario-sucursales/internal/domain/entity"

// TransferDocument datos de la remisión de traslado ya resueltos para imprimir.
type TransferDocument struct {
	Transfer   *entity.StockTransfer
	From       *entity.Branch
	To         *entity.Branch
	Source     *entity.StockRecord // registro de origen; nil si no existe
	Movements  []*entity.StockMovement
	VerifyText string // contenido del QR
}

// TransferPDFGenerator puerto de salida para la remisión de traslado en PDF.
type TransferPDFGenerator interface {
	GenerateTransferPDF(doc TransferDocument) ([]byte, error)
}
