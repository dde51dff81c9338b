package ports

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Stock     repository.StockRecordRepository
	Movements repository.StockMovementRepository
	Transfers repository.StockTransferRepository
	Sequences repository.SequenceRepository
	Branches  repository.BranchRepository
	Orders    repository.OrderRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
// La mutación de stock y el kardex se escriben juntos o no se escriben. Los consecutivos
// no participan del rollback: un número consumido no se reutiliza.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
