package postgres

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos por (prefijo, año) con la función next_sequence de schema.sql.
// Corre sobre la misma conexión de la transacción: nextval no toma locks de fila
// y un valor entregado no se reutiliza aunque la transacción haga rollback.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next devuelve el siguiente valor; la secuencia del año se crea en el primer uso.
func (r *SequenceRepo) Next(ctx context.Context, kind entity.SequenceKind, year int) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT next_sequence($1, $2)`, string(kind), year).Scan(&n); err != nil {
		return 0, mapError("next sequence", err)
	}
	return n, nil
}
