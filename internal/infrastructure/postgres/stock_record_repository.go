package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockColumns = `id, product_id, branch_id, quantity, reserved_quantity, reorder_point, reorder_quantity,
	cost_price, selling_price, created_at, updated_at`

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(
		&s.ID, &s.ProductID, &s.BranchID, &s.Quantity, &s.ReservedQuantity, &s.ReorderPoint, &s.ReorderQuantity,
		&s.CostPrice, &s.SellingPrice, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta el registro; UNIQUE(product_id, branch_id) lo vuelve ErrDuplicate.
func (r *StockRecordRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.BranchID, rec.Quantity, rec.ReservedQuantity, rec.ReorderPoint, rec.ReorderQuantity,
		rec.CostPrice, rec.SellingPrice, rec.CreatedAt, rec.UpdatedAt,
	)
	return mapError("insert stock record", err)
}

// CreateIfAbsent inserta con ON CONFLICT DO NOTHING: un alta concurrente del mismo par
// no aborta la transacción del llamador.
func (r *StockRecordRepo) CreateIfAbsent(ctx context.Context, rec *entity.StockRecord) (bool, error) {
	query := `
		INSERT INTO stock_records (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (product_id, branch_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.BranchID, rec.Quantity, rec.ReservedQuantity, rec.ReorderPoint, rec.ReorderQuantity,
		rec.CostPrice, rec.SellingPrice, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return false, mapError("insert stock record", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID obtiene un registro por ID.
func (r *StockRecordRepo) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_records WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get stock record", err)
	}
	return s, nil
}

// GetByProductBranch obtiene el registro de un producto en una sucursal.
func (r *StockRecordRepo) GetByProductBranch(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE product_id = $1 AND branch_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, branchID))
	if err != nil {
		return nil, mapError("get stock record", err)
	}
	return s, nil
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE product_id = $1 AND branch_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, branchID))
	if err != nil {
		return nil, mapError("get stock record for update", err)
	}
	return s, nil
}

// GetByIDForUpdate igual que GetForUpdate pero por ID.
func (r *StockRecordRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_records WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("get stock record for update", err)
	}
	return s, nil
}

// Update persiste cantidades, umbrales y precios. Los CHECK de la tabla rechazan
// quantity < 0 o reserved > quantity.
func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records SET quantity = $2, reserved_quantity = $3, reorder_point = $4, reorder_quantity = $5,
			cost_price = $6, selling_price = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		rec.ID, rec.Quantity, rec.ReservedQuantity, rec.ReorderPoint, rec.ReorderQuantity,
		rec.CostPrice, rec.SellingPrice, rec.UpdatedAt,
	)
	if err != nil {
		return mapError("update stock record", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update stock record %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// ListByBranch lista los registros de una sucursal ordenados por producto.
func (r *StockRecordRepo) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE branch_id = $1 ORDER BY product_id LIMIT $2 OFFSET $3`
	return r.list(ctx, "list stock records", query, branchID, limit, offset)
}

// ListBelowReorderPoint registros cuya disponibilidad cayó por debajo del punto de reorden.
func (r *StockRecordRepo) ListBelowReorderPoint(ctx context.Context, branchID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + ` FROM stock_records
		WHERE branch_id = $1 AND reorder_point > 0 AND quantity - reserved_quantity < reorder_point
		ORDER BY product_id`
	return r.list(ctx, "list below reorder point", query, branchID)
}

func (r *StockRecordRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
