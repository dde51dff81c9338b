package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/observability"
)

// DefaultRetryAttempts intentos ante colisión de consecutivo si la configuración no indica otro valor.
const DefaultRetryAttempts = 3

// Runner ejecuta transacciones y repite la transacción completa cuando un consecutivo colisiona.
// Cualquier otro error se devuelve tal cual al primer intento.
type Runner struct {
	tx       ports.TxRunner
	attempts int
	log      zerolog.Logger
	metrics  *observability.Metrics
}

// NewRunner construye el runner. attempts < 1 usa DefaultRetryAttempts.
func NewRunner(tx ports.TxRunner, attempts int, log zerolog.Logger, metrics *observability.Metrics) *Runner {
	if attempts < 1 {
		attempts = DefaultRetryAttempts
	}
	return &Runner{tx: tx, attempts: attempts, log: log, metrics: metrics}
}

// Run ejecuta fn en una transacción; op solo se usa para logs y métricas.
func (r *Runner) Run(ctx context.Context, op string, fn func(ctx context.Context, repos ports.Repos) error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = r.tx.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrSequenceConflict) {
			return err
		}
		r.metrics.SequenceRetry(op)
		r.log.Warn().Str("operation", op).Int("attempt", attempt).Err(err).Msg("colisión de consecutivo, reintentando")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("%w: %s tras %d intentos: %v", domain.ErrConflict, op, r.attempts, err)
}
