package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de una sucursal.
type ReplenishmentUseCase struct {
	stockRepo repository.StockRecordRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stockRepo repository.StockRecordRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stockRepo: stockRepo}
}

// GenerateReplenishmentList devuelve los registros con disponible bajo el punto de reorden,
// con cantidad sugerida max(ReorderQuantity, déficit), ordenados por déficit descendente.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, branchID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	records, err := uc.stockRepo.ListBelowReorderPoint(ctx, branchID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(records))
	for _, rec := range records {
		// el repositorio filtra, pero la regla se vuelve a evaluar sobre el registro leído
		if !rec.BelowReorderPoint() {
			continue
		}
		deficit := rec.ReorderPoint - rec.Available()
		suggested := rec.ReorderQuantity
		if deficit > suggested {
			suggested = deficit
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			StockRecordID:      rec.ID,
			ProductID:          rec.ProductID,
			BranchID:           rec.BranchID,
			Quantity:           rec.Quantity,
			Available:          rec.Available(),
			ReorderPoint:       rec.ReorderPoint,
			Deficit:            deficit,
			SuggestedOrderQty:  suggested,
			UnitCost:           rec.CostPrice,
			EstimatedOrderCost: rec.CostPrice.Mul(decimal.NewFromInt(suggested)),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		return a.ProductID < b.ProductID
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
