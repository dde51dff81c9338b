package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes de venta y servicio. Las líneas se guardan como JSONB en la misma fila.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, number, kind, branch_id, customer_name, status, items, subtotal, tax_rate, tax_amount,
	discount, total, payment_method, amount_paid, change_due, payment_status, paid_at, notes, created_by,
	created_at, updated_at, completed_at, cancelled_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o                       entity.Order
		items                   []byte
		customer, method, notes *string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.Kind, &o.BranchID, &customer, &o.Status, &items, &o.Subtotal, &o.Tax.Rate, &o.Tax.Amount,
		&o.Discount, &o.Total, &method, &o.Payment.AmountPaid, &o.Payment.Change, &o.Payment.Status, &o.Payment.PaidAt,
		&notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	o.CustomerName = deref(customer)
	o.Payment.Method = deref(method)
	o.Notes = deref(notes)
	return &o, nil
}

func encodeItems(items []entity.LineItem) ([]byte, error) {
	if items == nil {
		items = []entity.LineItem{}
	}
	return json.Marshal(items)
}

// Create inserta la orden; UNIQUE(number) se traduce a ErrSequenceConflict.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.Number, o.Kind, o.BranchID, nullString(o.CustomerName), o.Status, items, o.Subtotal, o.Tax.Rate, o.Tax.Amount,
		o.Discount, o.Total, nullString(o.Payment.Method), o.Payment.AmountPaid, o.Payment.Change, o.Payment.Status, o.Payment.PaidAt,
		nullString(o.Notes), o.CreatedBy, o.CreatedAt, o.UpdatedAt, o.CompletedAt, o.CancelledAt,
	)
	return mapError("create order", err)
}

// GetByID obtiene una orden por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get order", err)
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea la fila hasta el fin de la tx.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("get order for update", err)
	}
	return o, nil
}

// Update persiste líneas, totales, pago y estado.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	query := `
		UPDATE orders SET customer_name = $2, status = $3, items = $4, subtotal = $5, tax_rate = $6, tax_amount = $7,
			discount = $8, total = $9, payment_method = $10, amount_paid = $11, change_due = $12, payment_status = $13,
			paid_at = $14, notes = $15, updated_at = $16, completed_at = $17, cancelled_at = $18
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, nullString(o.CustomerName), o.Status, items, o.Subtotal, o.Tax.Rate, o.Tax.Amount,
		o.Discount, o.Total, nullString(o.Payment.Method), o.Payment.AmountPaid, o.Payment.Change, o.Payment.Status,
		o.Payment.PaidAt, nullString(o.Notes), o.UpdatedAt, o.CompletedAt, o.CancelledAt,
	)
	if err != nil {
		return mapError("update order", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update order %s: %w", o.ID, domain.ErrNotFound)
	}
	return nil
}

// List órdenes con filtros opcionales, de la más reciente a la más antigua.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1 = 1`
	args := []any{}
	pos := 1
	if f.BranchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", pos)
		args = append(args, f.BranchID)
		pos++
	}
	if f.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, f.Kind)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list orders", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

