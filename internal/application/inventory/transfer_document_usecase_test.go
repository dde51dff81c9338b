package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
)

type captureGenerator struct {
	doc ports.TransferDocument
}

func (g *captureGenerator) GenerateTransferPDF(doc ports.TransferDocument) ([]byte, error) {
	g.doc = doc
	return []byte("%PDF-1.4 fake"), nil
}

func TestDownloadTransferPDF(t *testing.T) {
	f := twoBranches(t)
	f.record(t, "p1", "A", 9)
	tr := newTransfer(t, f, 4)
	ctx := context.Background()
	_, err := f.transfers.Ship(ctx, tr.ID, actor)
	require.NoError(t, err)

	gen := &captureGenerator{}
	uc := inventory.NewTransferDocumentUseCase(f.store.Repos(), gen)
	pdf, filename, err := uc.DownloadTransferPDF(ctx, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4 fake"), pdf)
	assert.Equal(t, "remision-"+tr.TransferNumber+".pdf", filename)
	assert.Equal(t, "BOG", gen.doc.From.Code)
	assert.Equal(t, "MED", gen.doc.To.Code)
	require.NotNil(t, gen.doc.Source)
	assert.Equal(t, int64(5), gen.doc.Source.Quantity)
	assert.Len(t, gen.doc.Movements, 1)
	assert.Contains(t, gen.doc.VerifyText, tr.TransferNumber)
	assert.Contains(t, gen.doc.VerifyText, "BOG>MED")

	_, _, err = uc.DownloadTransferPDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
