// Package orders orquesta órdenes de venta (SO-) y de servicio (JOB-): recalcula totales antes
// de cada escritura y descuenta o restituye stock según las transiciones de estado.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/order"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

// Service casos de uso de órdenes.
type Service struct {
	runner *inventory.Runner
	stock  *inventory.StockService
	read   ports.Repos
	log    zerolog.Logger
}

// NewService construye el servicio de órdenes.
func NewService(runner *inventory.Runner, stock *inventory.StockService, read ports.Repos, log zerolog.Logger) *Service {
	return &Service{runner: runner, stock: stock, read: read, log: log}
}

// CreateInput datos de una orden nueva en borrador.
type CreateInput struct {
	Kind          entity.OrderKind
	BranchID      string
	CustomerName  string
	Items         []entity.LineItem
	TaxRate       decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod string
	AmountPaid    decimal.Decimal
	Notes         string
	CreatedBy     string
}

// Create registra la orden en draft con su consecutivo SO-/JOB- y totales calculados.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if !in.Kind.IsValid() {
		return nil, fmt.Errorf("%w: tipo de orden %q", domain.ErrInvalidInput, in.Kind)
	}
	if in.BranchID == "" || in.CreatedBy == "" {
		return nil, fmt.Errorf("%w: sucursal y usuario son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden no tiene líneas", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	o := &entity.Order{
		ID:           uuid.New().String(),
		Kind:         in.Kind,
		BranchID:     in.BranchID,
		CustomerName: in.CustomerName,
		Status:       entity.OrderDraft,
		Items:        in.Items,
		Tax:          entity.Tax{Rate: in.TaxRate},
		Discount:     in.Discount,
		Payment:      entity.Payment{Method: in.PaymentMethod, AmountPaid: in.AmountPaid},
		Notes:        in.Notes,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := order.Apply(o, now); err != nil {
		return nil, err
	}

	err := s.runner.Run(ctx, "create_order", func(ctx context.Context, r ports.Repos) error {
		if r.Branches != nil {
			if _, err := r.Branches.GetByID(ctx, o.BranchID); err != nil {
				return err
			}
		}
		kind := o.Kind.SequenceKind()
		n, err := r.Sequences.Next(ctx, kind, now.Year())
		if err != nil {
			return err
		}
		o.Number = entity.FormatSequence(kind, now.Year(), n)
		return r.Orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateItems reemplaza líneas, tasa y descuento de una orden en borrador y recalcula.
func (s *Service) UpdateItems(ctx context.Context, id string, items []entity.LineItem, taxRate, discount decimal.Decimal) (*entity.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: la orden no tiene líneas", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, "update_order", id, func(ctx context.Context, r ports.Repos, o *entity.Order, now time.Time) error {
		if o.Status != entity.OrderDraft {
			return fmt.Errorf("%w: solo se editan órdenes en borrador (estado %s)", domain.ErrInvalidStateTransition, o.Status)
		}
		o.Items = items
		o.Tax.Rate = taxRate
		o.Discount = discount
		return nil
	})
}

// RecordPayment suma amount a lo pagado; el estado de pago y el cambio los deriva la calculadora.
func (s *Service) RecordPayment(ctx context.Context, id, method string, amount decimal.Decimal) (*entity.Order, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: el abono debe ser positivo", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, "record_payment", id, func(ctx context.Context, r ports.Repos, o *entity.Order, now time.Time) error {
		if o.Status == entity.OrderCancelled {
			return fmt.Errorf("%w: la orden está cancelada", domain.ErrInvalidStateTransition)
		}
		o.Payment.Method = method
		o.Payment.AmountPaid = o.Payment.AmountPaid.Add(amount)
		return nil
	})
}

// Complete pasa la orden a completed y descuenta cada producto (sale o service_use)
// referenciando la orden. Si alguna línea no tiene stock no se aplica ninguna.
func (s *Service) Complete(ctx context.Context, id, performedBy string) (*entity.Order, error) {
	if performedBy == "" {
		return nil, fmt.Errorf("%w: performedBy es obligatorio", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, "complete_order", id, func(ctx context.Context, r ports.Repos, o *entity.Order, now time.Time) error {
		if err := order.CheckStatusTransition(o.Status, entity.OrderCompleted); err != nil {
			return err
		}
		for _, line := range aggregateLines(o.Items) {
			rec, err := r.Stock.GetForUpdate(ctx, line.productID, o.BranchID)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: sin stock del producto %s en la sucursal", domain.ErrInsufficientStock, line.productID)
			}
			if err != nil {
				return err
			}
			if _, err := s.stock.DeductLocked(ctx, r, rec, inventory.MovementInput{
				Quantity:    line.quantity,
				Type:        o.Kind.ConsumptionMovement(),
				Reference:   o.Kind.Reference(o.ID),
				Reason:      "orden " + o.Number,
				PerformedBy: performedBy,
			}); err != nil {
				return err
			}
		}
		o.Status = entity.OrderCompleted
		o.CompletedAt = &now
		return nil
	})
}

// Cancel cancela la orden. Si estaba completada restituye cada producto con sale_cancel.
func (s *Service) Cancel(ctx context.Context, id, performedBy string) (*entity.Order, error) {
	if performedBy == "" {
		return nil, fmt.Errorf("%w: performedBy es obligatorio", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, "cancel_order", id, func(ctx context.Context, r ports.Repos, o *entity.Order, now time.Time) error {
		if err := order.CheckStatusTransition(o.Status, entity.OrderCancelled); err != nil {
			return err
		}
		if o.Status == entity.OrderCompleted {
			for _, line := range aggregateLines(o.Items) {
				rec, err := r.Stock.GetForUpdate(ctx, line.productID, o.BranchID)
				if err != nil {
					return err
				}
				if _, err := s.stock.AddLocked(ctx, r, rec, inventory.MovementInput{
					Quantity:    line.quantity,
					Type:        entity.MovementSaleCancel,
					Reference:   o.Kind.Reference(o.ID),
					Reason:      "cancelación de orden " + o.Number,
					PerformedBy: performedBy,
				}); err != nil {
					return err
				}
			}
		}
		o.Status = entity.OrderCancelled
		o.CancelledAt = &now
		return nil
	})
}

// mutate bloquea la orden, aplica fn, recalcula totales y persiste.
func (s *Service) mutate(
	ctx context.Context,
	op, id string,
	fn func(ctx context.Context, r ports.Repos, o *entity.Order, now time.Time) error,
) (*entity.Order, error) {
	var out *entity.Order
	err := s.runner.Run(ctx, op, func(ctx context.Context, r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := fn(ctx, r, o, now); err != nil {
			return err
		}
		if err := order.Apply(o, now); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := r.Orders.Update(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("order", out.Number).Str("operation", op).Str("status", string(out.Status)).Msg("orden actualizada")
	return out, nil
}

// Get obtiene una orden por ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.read.Orders.GetByID(ctx, id)
}

// List lista órdenes con filtros opcionales.
func (s *Service) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	if f.Kind != "" && !f.Kind.IsValid() {
		return nil, fmt.Errorf("%w: tipo de orden %q", domain.ErrInvalidInput, f.Kind)
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.read.Orders.List(ctx, f)
}

type productQty struct {
	productID string
	quantity  int64
}

// aggregateLines suma cantidades por producto y ordena por ID para bloquear filas
// siempre en el mismo orden entre transacciones concurrentes.
func aggregateLines(items []entity.LineItem) []productQty {
	totals := make(map[string]int64, len(items))
	for _, it := range items {
		totals[it.ProductID] += it.Quantity
	}
	out := make([]productQty, 0, len(totals))
	for id, q := range totals {
		out = append(out, productQty{productID: id, quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}
