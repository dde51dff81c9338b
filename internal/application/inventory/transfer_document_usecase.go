package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// TransferDocumentUseCase genera la remisión (PDF) de un traslado.
type TransferDocumentUseCase struct {
	read      ports.Repos
	generator ports.TransferPDFGenerator
}

// NewTransferDocumentUseCase construye el caso de uso inyectando el generador de PDF.
func NewTransferDocumentUseCase(read ports.Repos, generator ports.TransferPDFGenerator) *TransferDocumentUseCase {
	return &TransferDocumentUseCase{read: read, generator: generator}
}

// DownloadTransferPDF resuelve traslado, sucursales, stock de origen y movimientos asociados
// y genera el PDF. Retorna (pdfBytes, filename, nil) o domain.ErrNotFound si el traslado no existe.
func (uc *TransferDocumentUseCase) DownloadTransferPDF(ctx context.Context, transferID string) ([]byte, string, error) {
	t, err := uc.read.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, "", err
	}
	from, err := uc.read.Branches.GetByID(ctx, t.FromBranchID)
	if err != nil {
		return nil, "", fmt.Errorf("remisión: sucursal origen: %w", err)
	}
	to, err := uc.read.Branches.GetByID(ctx, t.ToBranchID)
	if err != nil {
		return nil, "", fmt.Errorf("remisión: sucursal destino: %w", err)
	}
	src, err := uc.read.Stock.GetByProductBranch(ctx, t.ProductID, t.FromBranchID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}
	movements, err := uc.read.Movements.ListByReference(ctx, *entity.StockTransferRef(t.ID))
	if err != nil {
		return nil, "", err
	}

	pdf, err := uc.generator.GenerateTransferPDF(ports.TransferDocument{
		Transfer:   t,
		From:       from,
		To:         to,
		Source:     src,
		Movements:  movements,
		VerifyText: fmt.Sprintf("%s|%s|%s>%s|%d|%s", t.TransferNumber, t.ProductID, from.Code, to.Code, t.Quantity, t.Status),
	})
	if err != nil {
		return nil, "", fmt.Errorf("remisión: generar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("remision-%s.pdf", t.TransferNumber), nil
}
