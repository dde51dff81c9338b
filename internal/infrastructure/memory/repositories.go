package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.StockRecordRepository   = (*StockRecordRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.StockTransferRepository = (*StockTransferRepo)(nil)
	_ repository.SequenceRepository      = (*SequenceRepo)(nil)
	_ repository.BranchRepository        = (*BranchRepo)(nil)
	_ repository.OrderRepository         = (*OrderRepo)(nil)
)

func stockKey(productID, branchID string) string { return productID + "|" + branchID }

// StockRecordRepo registros de stock en memoria. Devuelve copias: mutar el resultado no altera el store.
type StockRecordRepo struct{ h handle }

func (r *StockRecordRepo) Create(_ context.Context, rec *entity.StockRecord) error {
	return r.h.view(func(d *state) error {
		key := stockKey(rec.ProductID, rec.BranchID)
		if _, ok := d.stockByKey[key]; ok {
			return fmt.Errorf("%w: stock %s", domain.ErrDuplicate, key)
		}
		d.stock[rec.ID] = *rec
		d.stockByKey[key] = rec.ID
		return nil
	})
}

func (r *StockRecordRepo) CreateIfAbsent(ctx context.Context, rec *entity.StockRecord) (bool, error) {
	err := r.Create(ctx, rec)
	if errors.Is(err, domain.ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

func (r *StockRecordRepo) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.h.view(func(d *state) error {
		rec, ok := d.stock[id]
		if !ok {
			return fmt.Errorf("%w: stock %s", domain.ErrNotFound, id)
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *StockRecordRepo) GetByProductBranch(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	var id string
	err := r.h.view(func(d *state) error {
		var ok bool
		if id, ok = d.stockByKey[stockKey(productID, branchID)]; !ok {
			return fmt.Errorf("%w: stock de %s en %s", domain.ErrNotFound, productID, branchID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetForUpdate dentro de Run el mutex del store ya serializa el acceso.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	return r.GetByProductBranch(ctx, productID, branchID)
}

func (r *StockRecordRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *StockRecordRepo) Update(_ context.Context, rec *entity.StockRecord) error {
	return r.h.view(func(d *state) error {
		if _, ok := d.stock[rec.ID]; !ok {
			return fmt.Errorf("%w: stock %s", domain.ErrNotFound, rec.ID)
		}
		if !rec.Consistent() {
			return fmt.Errorf("update stock %s: reserved %d fuera de [0, %d]", rec.ID, rec.ReservedQuantity, rec.Quantity)
		}
		d.stock[rec.ID] = *rec
		return nil
	})
}

func (r *StockRecordRepo) ListByBranch(_ context.Context, branchID string, limit, offset int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	err := r.h.view(func(d *state) error {
		out = r.filter(d, func(rec *entity.StockRecord) bool { return rec.BranchID == branchID })
		return nil
	})
	return page(out, limit, offset), err
}

func (r *StockRecordRepo) ListBelowReorderPoint(_ context.Context, branchID string) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	err := r.h.view(func(d *state) error {
		out = r.filter(d, func(rec *entity.StockRecord) bool {
			return (branchID == "" || rec.BranchID == branchID) && rec.BelowReorderPoint()
		})
		return nil
	})
	return out, err
}

func (r *StockRecordRepo) filter(d *state, keep func(*entity.StockRecord) bool) []*entity.StockRecord {
	out := []*entity.StockRecord{}
	for _, rec := range d.stock {
		rec := rec
		if keep(&rec) {
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// StockMovementRepo kardex en memoria; solo inserción.
type StockMovementRepo struct{ h handle }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.h.view(func(d *state) error {
		if m.IdempotencyKey != "" {
			if _, ok := d.idemKeys[m.IdempotencyKey]; ok {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateMovement, m.IdempotencyKey)
			}
		}
		if _, ok := d.movementByID[m.MovementID]; ok {
			return fmt.Errorf("%w: %s", domain.ErrSequenceConflict, m.MovementID)
		}
		if !m.Reconciles() {
			return fmt.Errorf("insert movement %s: before %d + delta %d != after %d", m.MovementID, m.QuantityBefore, m.QuantityDelta, m.QuantityAfter)
		}
		d.movements = append(d.movements, *m)
		d.movementByID[m.MovementID] = len(d.movements) - 1
		if m.IdempotencyKey != "" {
			d.idemKeys[m.IdempotencyKey] = struct{}{}
		}
		return nil
	})
}

func (r *StockMovementRepo) GetByMovementID(_ context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.h.view(func(d *state) error {
		i, ok := d.movementByID[movementID]
		if !ok {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
		}
		m := d.movements[i]
		out = &m
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) ExistsByIdempotencyKey(_ context.Context, key string) (bool, error) {
	var ok bool
	err := r.h.view(func(d *state) error {
		_, ok = d.idemKeys[key]
		return nil
	})
	return ok, err
}

func (r *StockMovementRepo) ListByStockRecord(_ context.Context, stockRecordID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.h.view(func(d *state) error {
		out = r.newestFirst(d, func(m *entity.StockMovement) bool { return m.StockRecordID == stockRecordID })
		return nil
	})
	return page(out, limit, offset), err
}

func (r *StockMovementRepo) ListByBranch(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.h.view(func(d *state) error {
		out = r.newestFirst(d, func(m *entity.StockMovement) bool {
			if m.BranchID != f.BranchID {
				return false
			}
			if f.Type != "" && m.Type != f.Type {
				return false
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				return false
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				return false
			}
			return true
		})
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *StockMovementRepo) ListByReference(_ context.Context, ref entity.Reference) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.h.view(func(d *state) error {
		for _, m := range d.movements {
			m := m
			if m.Reference != nil && *m.Reference == ref {
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) newestFirst(d *state, keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	out := []*entity.StockMovement{}
	for i := len(d.movements) - 1; i >= 0; i-- {
		m := d.movements[i]
		if keep(&m) {
			out = append(out, &m)
		}
	}
	return out
}

// StockTransferRepo traslados en memoria.
type StockTransferRepo struct{ h handle }

func (r *StockTransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.h.view(func(d *state) error {
		for _, existing := range d.transfers {
			if existing.TransferNumber == t.TransferNumber {
				return fmt.Errorf("%w: %s", domain.ErrSequenceConflict, t.TransferNumber)
			}
		}
		d.transfers[t.ID] = *t
		return nil
	})
}

func (r *StockTransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.h.view(func(d *state) error {
		t, ok := d.transfers[id]
		if !ok {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *StockTransferRepo) UpdateStatus(_ context.Context, t *entity.StockTransfer, expected entity.TransferStatus) error {
	return r.h.view(func(d *state) error {
		current, ok := d.transfers[t.ID]
		if !ok {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
		}
		if current.Status != expected {
			return fmt.Errorf("%w: traslado %s está en %s, se esperaba %s", domain.ErrInvalidStateTransition, t.TransferNumber, current.Status, expected)
		}
		d.transfers[t.ID] = *t
		return nil
	})
}

func (r *StockTransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	out := []*entity.StockTransfer{}
	err := r.h.view(func(d *state) error {
		for _, t := range d.transfers {
			t := t
			if f.BranchID != "" && t.FromBranchID != f.BranchID && t.ToBranchID != f.BranchID {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			out = append(out, &t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TransferNumber > out[j].TransferNumber })
	return page(out, f.Limit, f.Offset), err
}

// SequenceRepo contador por (prefijo, año) con su propio mutex, fuera de la copia de Run.
type SequenceRepo struct{ store *Store }

func (r *SequenceRepo) Next(ctx context.Context, kind entity.SequenceKind, year int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.seqMu.Lock()
	defer r.store.seqMu.Unlock()
	k := seqKey{kind, year}
	r.store.sequences[k]++
	return r.store.sequences[k], nil
}

// BranchRepo sucursales en memoria.
type BranchRepo struct{ h handle }

func (r *BranchRepo) Create(_ context.Context, b *entity.Branch) error {
	return r.h.view(func(d *state) error {
		for _, existing := range d.branches {
			if strings.EqualFold(existing.Code, b.Code) {
				return fmt.Errorf("%w: sucursal %s", domain.ErrDuplicate, b.Code)
			}
		}
		d.branches[b.ID] = *b
		return nil
	})
}

func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	err := r.h.view(func(d *state) error {
		b, ok := d.branches[id]
		if !ok {
			return fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, id)
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *BranchRepo) Update(_ context.Context, b *entity.Branch) error {
	return r.h.view(func(d *state) error {
		if _, ok := d.branches[b.ID]; !ok {
			return fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, b.ID)
		}
		d.branches[b.ID] = *b
		return nil
	})
}

func (r *BranchRepo) List(_ context.Context, limit, offset int) ([]*entity.Branch, error) {
	out := []*entity.Branch{}
	err := r.h.view(func(d *state) error {
		for _, b := range d.branches {
			b := b
			out = append(out, &b)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), err
}

// OrderRepo órdenes en memoria. Las líneas se copian al guardar y al leer.
type OrderRepo struct{ h handle }

func cloneOrder(o entity.Order) *entity.Order {
	o.Items = append([]entity.LineItem(nil), o.Items...)
	return &o
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.h.view(func(d *state) error {
		for _, existing := range d.orders {
			if existing.Number == o.Number {
				return fmt.Errorf("%w: %s", domain.ErrSequenceConflict, o.Number)
			}
		}
		d.orders[o.ID] = *cloneOrder(*o)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.h.view(func(d *state) error {
		o, ok := d.orders[id]
		if !ok {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
		}
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.h.view(func(d *state) error {
		if _, ok := d.orders[o.ID]; !ok {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, o.ID)
		}
		d.orders[o.ID] = *cloneOrder(*o)
		return nil
	})
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	out := []*entity.Order{}
	err := r.h.view(func(d *state) error {
		for _, o := range d.orders {
			if f.BranchID != "" && o.BranchID != f.BranchID {
				continue
			}
			if f.Kind != "" && o.Kind != f.Kind {
				continue
			}
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			out = append(out, cloneOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), err
}
