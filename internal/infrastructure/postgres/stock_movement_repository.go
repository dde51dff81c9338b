package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo kardex sobre PostgreSQL. La tabla tiene un trigger que rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, movement_id, stock_record_id, product_id, branch_id, type,
	quantity_delta, quantity_before, quantity_after, ref_document_type, ref_document_id,
	supplier_id, unit_cost, reason, performed_by, idempotency_key, created_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m                         entity.StockMovement
		refType, refID            *string
		supplier, reason, idemKey *string
		unitCost                  decimal.NullDecimal
	)
	err := row.Scan(
		&m.ID, &m.MovementID, &m.StockRecordID, &m.ProductID, &m.BranchID, &m.Type,
		&m.QuantityDelta, &m.QuantityBefore, &m.QuantityAfter, &refType, &refID,
		&supplier, &unitCost, &reason, &m.PerformedBy, &idemKey, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refType != nil && refID != nil {
		m.Reference = &entity.Reference{DocumentType: entity.DocumentType(*refType), DocumentID: *refID}
	}
	if unitCost.Valid {
		c := unitCost.Decimal
		m.UnitCost = &c
	}
	m.SupplierID = deref(supplier)
	m.Reason = deref(reason)
	m.IdempotencyKey = deref(idemKey)
	return &m, nil
}

// Create inserta el movimiento. Los UNIQUE de movement_id e idempotency_key se traducen a
// ErrSequenceConflict y ErrDuplicateMovement.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if !m.Reconciles() {
		return fmt.Errorf("create stock movement %s: el saldo no cuadra", m.MovementID)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var refType, refID *string
	if m.Reference != nil {
		t := string(m.Reference.DocumentType)
		refType, refID = &t, &m.Reference.DocumentID
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MovementID, m.StockRecordID, m.ProductID, m.BranchID, m.Type,
		m.QuantityDelta, m.QuantityBefore, m.QuantityAfter, refType, refID,
		nullString(m.SupplierID), m.UnitCost, nullString(m.Reason), m.PerformedBy, nullString(m.IdempotencyKey), m.CreatedAt,
	)
	return mapError("create stock movement", err)
}

// GetByMovementID obtiene un movimiento por su consecutivo SM-.
func (r *StockMovementRepo) GetByMovementID(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE movement_id = $1`, movementID))
	if err != nil {
		return nil, mapError("get stock movement", err)
	}
	return m, nil
}

// ExistsByIdempotencyKey indica si ya se aplicó un movimiento con esa clave.
func (r *StockMovementRepo) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE idempotency_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, mapError("exists idempotency key", err)
	}
	return exists, nil
}

// ListByStockRecord historial de un registro, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByStockRecord(ctx context.Context, stockRecordID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE stock_record_id = $1 ORDER BY created_at DESC, movement_id DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, "list movements by stock record", query, stockRecordID, limit, offset)
}

// ListByBranch kardex de la sucursal con filtros opcionales de fecha y tipo.
func (r *StockMovementRepo) ListByBranch(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE branch_id = $1`
	args := []any{f.BranchID}
	pos := 2
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, movement_id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)
	return r.list(ctx, "list movements by branch", query, args...)
}

// ListByReference movimientos de un documento en orden de aplicación.
func (r *StockMovementRepo) ListByReference(ctx context.Context, ref entity.Reference) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE ref_document_type = $1 AND ref_document_id = $2 ORDER BY created_at, movement_id`
	return r.list(ctx, "list movements by reference", query, ref.DocumentType, ref.DocumentID)
}

func (r *StockMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
