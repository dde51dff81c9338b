package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo traslados sobre PostgreSQL (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `id, transfer_number, product_id, from_branch_id, to_branch_id, quantity, status, notes,
	initiated_by, approved_by, received_by, cancelled_by, shipped_at, received_at, cancelled_at, created_at, updated_at`

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t                                     entity.StockTransfer
		notes, approved, received, cancelled *string
	)
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.ProductID, &t.FromBranchID, &t.ToBranchID, &t.Quantity, &t.Status, &notes,
		&t.InitiatedBy, &approved, &received, &cancelled, &t.ShippedAt, &t.ReceivedAt, &t.CancelledAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Notes = deref(notes)
	t.ApprovedBy = deref(approved)
	t.ReceivedBy = deref(received)
	t.CancelledBy = deref(cancelled)
	return &t, nil
}

// Create inserta el traslado en pending.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.ProductID, t.FromBranchID, t.ToBranchID, t.Quantity, t.Status, nullString(t.Notes),
		t.InitiatedBy, nullString(t.ApprovedBy), nullString(t.ReceivedBy), nullString(t.CancelledBy),
		t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.CreatedAt, t.UpdatedAt,
	)
	return mapError("create stock transfer", err)
}

// GetByID obtiene un traslado por ID.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get stock transfer", err)
	}
	return t, nil
}

// UpdateStatus escribe estado, actores y fechas solo si el estado almacenado es expected.
// Dentro de una tx el UPDATE toma el lock de la fila: el segundo en llegar ve 0 filas.
func (r *StockTransferRepo) UpdateStatus(ctx context.Context, t *entity.StockTransfer, expected entity.TransferStatus) error {
	query := `
		UPDATE stock_transfers SET status = $2, approved_by = $3, received_by = $4, cancelled_by = $5,
			shipped_at = $6, received_at = $7, cancelled_at = $8, updated_at = $9
		WHERE id = $1 AND status = $10`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, t.Status, nullString(t.ApprovedBy), nullString(t.ReceivedBy), nullString(t.CancelledBy),
		t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.UpdatedAt, expected,
	)
	if err != nil {
		return mapError("update stock transfer", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("traslado %s ya no está en %s: %w", t.TransferNumber, expected, domain.ErrInvalidStateTransition)
	}
	return nil
}

// List traslados donde la sucursal es origen o destino, del más reciente al más antiguo.
func (r *StockTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE 1 = 1`
	args := []any{}
	pos := 1
	if f.BranchID != "" {
		query += fmt.Sprintf(" AND (from_branch_id = $%d OR to_branch_id = $%d)", pos, pos)
		args = append(args, f.BranchID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY transfer_number DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock transfers", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
