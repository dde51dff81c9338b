package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
	pgDeadlock        = "40P01"
)

// Nombres de constraints de schema.sql que se traducen a errores de dominio.
const (
	constraintMovementID     = "stock_movements_movement_id_key"
	constraintIdempotencyKey = "stock_movements_idempotency_key_key"
	constraintTransferNumber = "stock_transfers_transfer_number_key"
	constraintOrderNumber    = "orders_number_key"
)

// mapError traduce errores de pgx a errores de dominio, conservando el contexto de op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintMovementID, constraintTransferNumber, constraintOrderNumber:
			return fmt.Errorf("%s: %w", op, domain.ErrSequenceConflict)
		case constraintIdempotencyKey:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicateMovement)
		}
		return fmt.Errorf("%s: %w (%s)", op, domain.ErrDuplicate, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%s: %w (%s)", op, domain.ErrInvalidInput, pgErr.ConstraintName)
	case pgFKViolation:
		return fmt.Errorf("%s: %w (%s)", op, domain.ErrNotFound, pgErr.ConstraintName)
	case pgDeadlock:
		// Postgres abortó una de las transacciones; el Runner la repite completa.
		return fmt.Errorf("%s: %w (deadlock)", op, domain.ErrSequenceConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
