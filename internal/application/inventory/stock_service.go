package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/Inventario-sucursales/internal/observability"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// StockService es el único mutador de registros de stock. Cada operación bloquea el registro
// (SELECT ... FOR UPDATE), valida, muta y escribe su entrada de kardex en la misma transacción.
type StockService struct {
	runner  *Runner
	read    ports.Repos
	log     zerolog.Logger
	metrics *observability.Metrics
}

// NewStockService construye el servicio. read son repositorios fuera de transacción para consultas.
func NewStockService(runner *Runner, read ports.Repos, log zerolog.Logger, metrics *observability.Metrics) *StockService {
	return &StockService{runner: runner, read: read, log: log, metrics: metrics}
}

// CreateStockInput alta de un registro de stock.
type CreateStockInput struct {
	ProductID       string
	BranchID        string
	InitialQuantity int64
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	ReorderPoint    int64
	ReorderQuantity int64
	PerformedBy     string
}

// MovementInput datos comunes de Add y Deduct.
type MovementInput struct {
	Quantity    int64
	Type        entity.MovementType
	Reference   *entity.Reference
	SupplierID  string
	UnitCost    *decimal.Decimal
	Reason      string
	PerformedBy string
}

// AdjustInput ajuste manual con signo.
type AdjustInput struct {
	StockID     string
	Delta       int64
	Reason      string
	PerformedBy string
}

// Get obtiene el stock de un producto en una sucursal.
func (s *StockService) Get(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	return s.read.Stock.GetByProductBranch(ctx, productID, branchID)
}

// GetByID obtiene un registro de stock por ID.
func (s *StockService) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	return s.read.Stock.GetByID(ctx, id)
}

// ListByBranch lista los registros de una sucursal.
func (s *StockService) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.StockRecord, error) {
	limit, offset = normalizePage(limit, offset)
	return s.read.Stock.ListByBranch(ctx, branchID, limit, offset)
}

// Create da de alta el registro (producto, sucursal). Una cantidad inicial positiva
// se registra como movimiento "initial" para que el kardex cuadre desde la primera unidad.
func (s *StockService) Create(ctx context.Context, in CreateStockInput) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.BranchID == "" {
		return nil, fmt.Errorf("%w: producto y sucursal son obligatorios", domain.ErrInvalidInput)
	}
	if in.InitialQuantity < 0 || in.ReorderPoint < 0 || in.ReorderQuantity < 0 {
		return nil, fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precios negativos", domain.ErrInvalidInput)
	}
	if in.InitialQuantity > 0 && in.PerformedBy == "" {
		return nil, fmt.Errorf("%w: performedBy es obligatorio para la cantidad inicial", domain.ErrInvalidInput)
	}
	if in.SellingPrice.LessThan(in.CostPrice) {
		s.log.Warn().
			Str("product_id", in.ProductID).
			Str("branch_id", in.BranchID).
			Str("cost_price", in.CostPrice.String()).
			Str("selling_price", in.SellingPrice.String()).
			Msg("precio de venta menor al costo")
	}

	var out *entity.StockRecord
	err := s.runner.Run(ctx, "create_stock", func(ctx context.Context, r ports.Repos) error {
		if r.Branches != nil {
			if _, err := r.Branches.GetByID(ctx, in.BranchID); err != nil {
				return err
			}
		}
		existing, err := r.Stock.GetByProductBranch(ctx, in.ProductID, in.BranchID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: ya existe stock para el producto %s en la sucursal %s", domain.ErrDuplicate, in.ProductID, in.BranchID)
		}

		now := time.Now().UTC()
		rec := &entity.StockRecord{
			ID:              uuid.New().String(),
			ProductID:       in.ProductID,
			BranchID:        in.BranchID,
			ReorderPoint:    in.ReorderPoint,
			ReorderQuantity: in.ReorderQuantity,
			CostPrice:       in.CostPrice,
			SellingPrice:    in.SellingPrice,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.Stock.Create(ctx, rec); err != nil {
			return err
		}
		if in.InitialQuantity > 0 {
			cost := in.CostPrice
			if _, err := s.AddLocked(ctx, r, rec, MovementInput{
				Quantity:    in.InitialQuantity,
				Type:        entity.MovementInitial,
				UnitCost:    &cost,
				Reason:      "stock inicial",
				PerformedBy: in.PerformedBy,
			}); err != nil {
				return err
			}
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reserve retiene qty unidades. No escribe kardex: la cantidad física no cambia.
func (s *StockService) Reserve(ctx context.Context, stockID string, qty int64) (*entity.StockRecord, error) {
	return s.mutateReservation(ctx, "reserve", stockID, func(rec *entity.StockRecord) error {
		return inventory.Reserve(rec, qty)
	})
}

// Release libera hasta qty unidades reservadas.
func (s *StockService) Release(ctx context.Context, stockID string, qty int64) (*entity.StockRecord, error) {
	return s.mutateReservation(ctx, "release", stockID, func(rec *entity.StockRecord) error {
		return inventory.Release(rec, qty)
	})
}

func (s *StockService) mutateReservation(ctx context.Context, op, stockID string, apply func(*entity.StockRecord) error) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := s.runner.Run(ctx, op, func(ctx context.Context, r ports.Repos) error {
		rec, err := r.Stock.GetByIDForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		if err := apply(rec); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				s.metrics.InsufficientStock(op)
			}
			return err
		}
		rec.UpdatedAt = time.Now().UTC()
		if err := r.Stock.Update(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deduct descuenta in.Quantity del registro stockID y escribe el movimiento.
// No acepta movimientos de traslado ni referencias a órdenes registradas en el sistema:
// esos los escriben TransferService y orders.Service.
func (s *StockService) Deduct(ctx context.Context, stockID string, in MovementInput) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := s.runner.Run(ctx, "deduct", func(ctx context.Context, r ports.Repos) error {
		if err := checkManualMovement(ctx, r, in); err != nil {
			return err
		}
		rec, err := r.Stock.GetByIDForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		out, err = s.DeductLocked(ctx, r, rec, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Add suma in.Quantity al registro stockID y escribe el movimiento.
func (s *StockService) Add(ctx context.Context, stockID string, in MovementInput) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := s.runner.Run(ctx, "add", func(ctx context.Context, r ports.Repos) error {
		if err := checkManualMovement(ctx, r, in); err != nil {
			return err
		}
		rec, err := r.Stock.GetByIDForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		out, err = s.AddLocked(ctx, r, rec, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Adjust aplica un ajuste manual: positivo como adjustment_add, negativo como adjustment_remove.
func (s *StockService) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: el ajuste requiere un motivo", domain.ErrInvalidInput)
	}
	var out *entity.StockMovement
	err := s.runner.Run(ctx, "adjust", func(ctx context.Context, r ports.Repos) error {
		rec, err := r.Stock.GetByIDForUpdate(ctx, in.StockID)
		if err != nil {
			return err
		}
		if err := inventory.CheckAdjustment(rec, in.Delta); err != nil {
			return err
		}
		mi := MovementInput{Reason: in.Reason, PerformedBy: in.PerformedBy}
		if in.Delta > 0 {
			mi.Type, mi.Quantity = entity.MovementAdjustmentAdd, in.Delta
			out, err = s.AddLocked(ctx, r, rec, mi)
			return err
		}
		mi.Type, mi.Quantity = entity.MovementAdjustmentRemove, -in.Delta
		out, err = s.DeductLocked(ctx, r, rec, mi)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeductLocked descuenta sobre un registro ya bloqueado por el llamador dentro de la transacción r.
// Lo usan traslados y órdenes para componer varias mutaciones en una sola transacción.
func (s *StockService) DeductLocked(ctx context.Context, r ports.Repos, rec *entity.StockRecord, in MovementInput) (*entity.StockMovement, error) {
	if !in.Type.IsDecrease() {
		return nil, fmt.Errorf("%w: %q no es un tipo de salida", domain.ErrInvalidInput, in.Type)
	}
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	key := entity.MovementIdempotencyKey(in.Type, in.Reference, rec.ID)
	if err := ensureNotApplied(ctx, r.Movements, key); err != nil {
		return nil, err
	}

	ch, err := inventory.Deduct(rec, in.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.InsufficientStock(string(in.Type))
		}
		return nil, err
	}
	if ch.ReservedClamped > 0 {
		s.metrics.ReservedClamped()
		s.log.Warn().
			Str("stock_id", rec.ID).
			Str("type", string(in.Type)).
			Str("reference", in.Reference.String()).
			Int64("quantity", in.Quantity).
			Int64("unreserved", ch.ReservedClamped).
			Msg("descuento mayor a la reserva; reserved llevado a 0")
	}
	return s.persist(ctx, r, rec, in, ch, key)
}

// AddLocked suma sobre un registro ya bloqueado por el llamador dentro de la transacción r.
// Un restock con costo unitario recalcula CostPrice por promedio ponderado.
func (s *StockService) AddLocked(ctx context.Context, r ports.Repos, rec *entity.StockRecord, in MovementInput) (*entity.StockMovement, error) {
	if !in.Type.IsIncrease() {
		return nil, fmt.Errorf("%w: %q no es un tipo de entrada", domain.ErrInvalidInput, in.Type)
	}
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	key := entity.MovementIdempotencyKey(in.Type, in.Reference, rec.ID)
	if err := ensureNotApplied(ctx, r.Movements, key); err != nil {
		return nil, err
	}

	if in.Type == entity.MovementRestock && in.UnitCost != nil {
		rec.CostPrice = inventory.WeightedAverageCost(rec.Quantity, rec.CostPrice, in.Quantity, *in.UnitCost)
	}
	ch, err := inventory.Add(rec, in.Quantity)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, r, rec, in, ch, key)
}

// persist guarda el registro y agrega la entrada de kardex con su consecutivo SM-.
func (s *StockService) persist(
	ctx context.Context,
	r ports.Repos,
	rec *entity.StockRecord,
	in MovementInput,
	ch inventory.Change,
	key string,
) (*entity.StockMovement, error) {
	now := time.Now().UTC()
	rec.UpdatedAt = now
	if err := r.Stock.Update(ctx, rec); err != nil {
		return nil, err
	}

	n, err := r.Sequences.Next(ctx, entity.SequenceMovement, now.Year())
	if err != nil {
		return nil, err
	}
	m := &entity.StockMovement{
		ID:             uuid.New().String(),
		MovementID:     entity.FormatSequence(entity.SequenceMovement, now.Year(), n),
		StockRecordID:  rec.ID,
		ProductID:      rec.ProductID,
		BranchID:       rec.BranchID,
		Type:           in.Type,
		QuantityDelta:  ch.Delta,
		QuantityBefore: ch.Before,
		QuantityAfter:  ch.After,
		Reference:      in.Reference,
		SupplierID:     in.SupplierID,
		UnitCost:       in.UnitCost,
		Reason:         in.Reason,
		PerformedBy:    in.PerformedBy,
		IdempotencyKey: key,
		CreatedAt:      now,
	}
	if err := r.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	s.metrics.MovementRecorded(string(in.Type))
	return m, nil
}

// GetMovement obtiene un movimiento por su consecutivo SM-.
func (s *StockService) GetMovement(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	return s.read.Movements.GetByMovementID(ctx, movementID)
}

// ListMovements kardex de un registro de stock, más reciente primero.
func (s *StockService) ListMovements(ctx context.Context, stockID string, limit, offset int) ([]*entity.StockMovement, error) {
	if _, err := s.read.Stock.GetByID(ctx, stockID); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.read.Movements.ListByStockRecord(ctx, stockID, limit, offset)
}

// ListBranchMovements kardex de una sucursal con filtro opcional de fechas y tipo.
func (s *StockService) ListBranchMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.BranchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	if f.Type != "" && !f.Type.IsValid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, f.Type)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return s.read.Movements.ListByBranch(ctx, f)
}

// MovementsByReference movimientos originados por un documento (orden o traslado).
func (s *StockService) MovementsByReference(ctx context.Context, ref entity.Reference) ([]*entity.StockMovement, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: referencia inválida", domain.ErrInvalidInput)
	}
	return s.read.Movements.ListByReference(ctx, ref)
}

// checkManualMovement rechaza en las rutas genéricas los movimientos cuyo documento tiene
// su propio flujo. Un asiento manual con esa clave de idempotencia bloquearía el flujo real.
func checkManualMovement(ctx context.Context, r ports.Repos, in MovementInput) error {
	if in.Type == entity.MovementTransferIn || in.Type == entity.MovementTransferOut {
		return fmt.Errorf("%w: %q solo se registra al despachar o recibir un traslado", domain.ErrInvalidInput, in.Type)
	}
	if in.Reference == nil {
		return nil
	}
	switch in.Reference.DocumentType {
	case entity.DocumentStockTransfer:
		return fmt.Errorf("%w: los movimientos del traslado %s los registra el traslado", domain.ErrInvalidInput, in.Reference.DocumentID)
	case entity.DocumentSalesOrder, entity.DocumentServiceOrder:
		_, err := r.Orders.GetByID(ctx, in.Reference.DocumentID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: la orden %s se despacha o cancela por su propio flujo", domain.ErrInvalidInput, in.Reference.DocumentID)
		case errors.Is(err, domain.ErrNotFound):
			return nil
		default:
			return err
		}
	}
	return nil
}

func validateMovement(in MovementInput) error {
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if in.PerformedBy == "" {
		return fmt.Errorf("%w: performedBy es obligatorio", domain.ErrInvalidInput)
	}
	if in.Reference != nil && !in.Reference.Valid() {
		return fmt.Errorf("%w: referencia inválida", domain.ErrInvalidInput)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	return nil
}

// ensureNotApplied rechaza un movimiento cuya clave de idempotencia ya está en el kardex.
// El índice único en almacenamiento cubre la misma regla ante escrituras concurrentes.
func ensureNotApplied(ctx context.Context, movements repository.StockMovementRepository, key string) error {
	if key == "" {
		return nil
	}
	exists, err := movements.ExistsByIdempotencyKey(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateMovement, key)
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
