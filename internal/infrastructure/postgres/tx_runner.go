package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Todo corre sobre la conexión de la tx: fn nunca pide una segunda conexión al pool.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ports.Repos{
		Stock:     NewStockRecordRepository(tx),
		Movements: NewStockMovementRepository(tx),
		Transfers: NewStockTransferRepository(tx),
		Sequences: NewSequenceRepository(tx),
		Branches:  NewBranchRepository(tx),
		Orders:    NewOrderRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// Repos repositorios fuera de transacción, para lecturas.
func (r *TxRunner) Repos() ports.Repos {
	return ports.Repos{
		Stock:     NewStockRecordRepository(r.pool),
		Movements: NewStockMovementRepository(r.pool),
		Transfers: NewStockTransferRepository(r.pool),
		Sequences: NewSequenceRepository(r.pool),
		Branches:  NewBranchRepository(r.pool),
		Orders:    NewOrderRepository(r.pool),
	}
}
