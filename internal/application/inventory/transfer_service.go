package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/Inventario-sucursales/internal/observability"
)

// TransferService coordina traslados entre sucursales: pending -> in-transit -> completed,
// con cancelled desde pending o in-transit. Cada transición cambia el estado con
// compare-and-swap y aplica su efecto de stock en la misma transacción.
type TransferService struct {
	runner  *Runner
	stock   *StockService
	read    ports.Repos
	log     zerolog.Logger
	metrics *observability.Metrics
}

// NewTransferService construye el coordinador de traslados.
func NewTransferService(runner *Runner, stock *StockService, read ports.Repos, log zerolog.Logger, metrics *observability.Metrics) *TransferService {
	return &TransferService{runner: runner, stock: stock, read: read, log: log, metrics: metrics}
}

// CreateTransferInput datos de creación de un traslado.
type CreateTransferInput struct {
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Quantity     int64
	Notes        string
	InitiatedBy  string
}

// Create registra el traslado en pending. No mueve stock.
func (s *TransferService) Create(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	if err := inventory.ValidateNewTransfer(in.ProductID, in.FromBranchID, in.ToBranchID, in.Quantity); err != nil {
		return nil, err
	}
	if in.InitiatedBy == "" {
		return nil, fmt.Errorf("%w: initiatedBy es obligatorio", domain.ErrInvalidInput)
	}

	var out *entity.StockTransfer
	err := s.runner.Run(ctx, "create_transfer", func(ctx context.Context, r ports.Repos) error {
		if r.Branches != nil {
			for _, id := range []string{in.FromBranchID, in.ToBranchID} {
				if _, err := r.Branches.GetByID(ctx, id); err != nil {
					return err
				}
			}
		}
		now := time.Now().UTC()
		n, err := r.Sequences.Next(ctx, entity.SequenceTransfer, now.Year())
		if err != nil {
			return err
		}
		t := &entity.StockTransfer{
			ID:             uuid.New().String(),
			TransferNumber: entity.FormatSequence(entity.SequenceTransfer, now.Year(), n),
			ProductID:      in.ProductID,
			FromBranchID:   in.FromBranchID,
			ToBranchID:     in.ToBranchID,
			Quantity:       in.Quantity,
			Status:         entity.TransferPending,
			Notes:          in.Notes,
			InitiatedBy:    in.InitiatedBy,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransferTransition(string(entity.TransferPending))
	return out, nil
}

// Ship pasa a in-transit y descuenta el origen con transfer_out.
// Si el origen no tiene disponible suficiente el traslado queda en pending.
func (s *TransferService) Ship(ctx context.Context, id, approvedBy string) (*entity.StockTransfer, error) {
	if approvedBy == "" {
		return nil, fmt.Errorf("%w: approvedBy es obligatorio", domain.ErrInvalidInput)
	}
	return s.transition(ctx, "ship_transfer", id, entity.TransferInTransit, func(ctx context.Context, r ports.Repos, t *entity.StockTransfer, now time.Time) error {
		src, err := r.Stock.GetForUpdate(ctx, t.ProductID, t.FromBranchID)
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.InsufficientStock("ship_transfer")
			return fmt.Errorf("%w: la sucursal origen no tiene stock del producto", domain.ErrInsufficientStock)
		}
		if err != nil {
			return err
		}
		if src.Available() < t.Quantity {
			s.metrics.InsufficientStock("ship_transfer")
			return fmt.Errorf("%w: disponible %d, traslado %d", domain.ErrInsufficientStock, src.Available(), t.Quantity)
		}
		if _, err := s.stock.DeductLocked(ctx, r, src, MovementInput{
			Quantity:    t.Quantity,
			Type:        entity.MovementTransferOut,
			Reference:   entity.StockTransferRef(t.ID),
			Reason:      "salida por traslado " + t.TransferNumber,
			PerformedBy: approvedBy,
		}); err != nil {
			return err
		}
		t.ApprovedBy = approvedBy
		t.ShippedAt = &now
		return nil
	})
}

// Receive pasa a completed e ingresa la cantidad en el destino con transfer_in.
// Si el destino no tiene registro se crea copiando los precios del origen.
func (s *TransferService) Receive(ctx context.Context, id, receivedBy string) (*entity.StockTransfer, error) {
	if receivedBy == "" {
		return nil, fmt.Errorf("%w: receivedBy es obligatorio", domain.ErrInvalidInput)
	}
	return s.transition(ctx, "receive_transfer", id, entity.TransferCompleted, func(ctx context.Context, r ports.Repos, t *entity.StockTransfer, now time.Time) error {
		dest, err := r.Stock.GetForUpdate(ctx, t.ProductID, t.ToBranchID)
		if errors.Is(err, domain.ErrNotFound) {
			if err = s.createDestination(ctx, r, t, now); err == nil {
				dest, err = r.Stock.GetForUpdate(ctx, t.ProductID, t.ToBranchID)
			}
		}
		if err != nil {
			return err
		}
		if _, err := s.stock.AddLocked(ctx, r, dest, MovementInput{
			Quantity:    t.Quantity,
			Type:        entity.MovementTransferIn,
			Reference:   entity.StockTransferRef(t.ID),
			Reason:      "entrada por traslado " + t.TransferNumber,
			PerformedBy: receivedBy,
		}); err != nil {
			return err
		}
		t.ReceivedBy = receivedBy
		t.ReceivedAt = &now
		return nil
	})
}

// Cancel cancela desde pending sin efecto de stock; desde in-transit devuelve la cantidad
// al origen con adjustment_add (la mercancía sigue físicamente en el origen).
func (s *TransferService) Cancel(ctx context.Context, id, cancelledBy string) (*entity.StockTransfer, error) {
	if cancelledBy == "" {
		return nil, fmt.Errorf("%w: cancelledBy es obligatorio", domain.ErrInvalidInput)
	}
	return s.transition(ctx, "cancel_transfer", id, entity.TransferCancelled, func(ctx context.Context, r ports.Repos, t *entity.StockTransfer, now time.Time) error {
		if t.ShippedAt != nil {
			src, err := r.Stock.GetForUpdate(ctx, t.ProductID, t.FromBranchID)
			if err != nil {
				return err
			}
			if _, err := s.stock.AddLocked(ctx, r, src, MovementInput{
				Quantity:    t.Quantity,
				Type:        entity.MovementAdjustmentAdd,
				Reference:   entity.StockTransferRef(t.ID),
				Reason:      "reverso por cancelación de traslado " + t.TransferNumber,
				PerformedBy: cancelledBy,
			}); err != nil {
				return err
			}
		}
		t.CancelledBy = cancelledBy
		t.CancelledAt = &now
		return nil
	})
}

// transition valida el paso, aplica effect y persiste con compare-and-swap sobre el estado leído.
// Si otro proceso cambió el estado entretanto, la transacción completa se revierte.
func (s *TransferService) transition(
	ctx context.Context,
	op, id string,
	to entity.TransferStatus,
	effect func(ctx context.Context, r ports.Repos, t *entity.StockTransfer, now time.Time) error,
) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := s.runner.Run(ctx, op, func(ctx context.Context, r ports.Repos) error {
		t, err := r.Transfers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from := t.Status
		if err := inventory.CheckTransition(from, to); err != nil {
			return err
		}
		now := time.Now().UTC()
		t.Status = to
		t.UpdatedAt = now
		// El CAS va primero: en PostgreSQL bloquea la fila del traslado y serializa envíos concurrentes.
		if err := r.Transfers.UpdateStatus(ctx, t, from); err != nil {
			return err
		}
		if err := effect(ctx, r, t, now); err != nil {
			return err
		}
		if err := r.Transfers.UpdateStatus(ctx, t, to); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransferTransition(string(to))
	s.log.Info().Str("transfer", out.TransferNumber).Str("status", string(to)).Msg("traslado actualizado")
	return out, nil
}

// createDestination da de alta el registro destino copiando los precios del origen.
// Si otra transacción lo creó primero no es error: el llamador lo vuelve a leer con bloqueo.
func (s *TransferService) createDestination(ctx context.Context, r ports.Repos, t *entity.StockTransfer, now time.Time) error {
	dest := &entity.StockRecord{
		ID:        uuid.New().String(),
		ProductID: t.ProductID,
		BranchID:  t.ToBranchID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	src, err := r.Stock.GetByProductBranch(ctx, t.ProductID, t.FromBranchID)
	switch {
	case err == nil:
		dest.CostPrice = src.CostPrice
		dest.SellingPrice = src.SellingPrice
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	created, err := r.Stock.CreateIfAbsent(ctx, dest)
	if err != nil {
		return err
	}
	if !created {
		s.log.Debug().Str("transfer", t.TransferNumber).Msg("registro destino creado por otra transacción")
	}
	return nil
}

// Get obtiene un traslado por ID.
func (s *TransferService) Get(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return s.read.Transfers.GetByID(ctx, id)
}

// List lista traslados con filtros opcionales de sucursal y estado.
func (s *TransferService) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, f.Status)
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return s.read.Transfers.List(ctx, f)
}
