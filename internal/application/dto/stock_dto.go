package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// CreateStockRequest body para POST /api/stock.
type CreateStockRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	BranchID        string          `json:"branch_id" validate:"required"`
	InitialQuantity int64           `json:"initial_quantity" validate:"min=0"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	ReorderPoint    int64           `json:"reorder_point" validate:"min=0"`
	ReorderQuantity int64           `json:"reorder_quantity" validate:"min=0"`
}

// QuantityRequest body de reserve/release.
type QuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// ReferenceDTO referencia al documento origen de un movimiento.
type ReferenceDTO struct {
	DocumentType string `json:"document_type" validate:"required,oneof=sales_order service_order stock_transfer"`
	DocumentID   string `json:"document_id" validate:"required"`
}

// DeductRequest body para POST /api/stock/:id/deduct.
type DeductRequest struct {
	Quantity  int64         `json:"quantity" validate:"required,gt=0"`
	Type      string        `json:"type" validate:"required,oneof=sale service_use adjustment_remove"`
	Reference *ReferenceDTO `json:"reference" validate:"omitempty"`
	Reason    string        `json:"reason"`
}

// AddRequest body para POST /api/stock/:id/add.
type AddRequest struct {
	Quantity   int64            `json:"quantity" validate:"required,gt=0"`
	Type       string           `json:"type" validate:"required,oneof=restock adjustment_add sale_cancel initial"`
	Reference  *ReferenceDTO    `json:"reference" validate:"omitempty"`
	SupplierID string           `json:"supplier_id"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason     string           `json:"reason"`
}

// AdjustRequest body para POST /api/stock/:id/adjust.
type AdjustRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// StockRecordResponse salida de un registro de stock.
type StockRecordResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	BranchID         string          `json:"branch_id"`
	Quantity         int64           `json:"quantity"`
	ReservedQuantity int64           `json:"reserved_quantity"`
	Available        int64           `json:"available"`
	ReorderPoint     int64           `json:"reorder_point"`
	ReorderQuantity  int64           `json:"reorder_quantity"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StockMovementResponse salida de una entrada del kardex.
type StockMovementResponse struct {
	ID             string           `json:"id"`
	MovementID     string           `json:"movement_id"`
	StockRecordID  string           `json:"stock_record_id"`
	ProductID      string           `json:"product_id"`
	BranchID       string           `json:"branch_id"`
	Type           string           `json:"type"`
	QuantityDelta  int64            `json:"quantity_delta"`
	QuantityBefore int64            `json:"quantity_before"`
	QuantityAfter  int64            `json:"quantity_after"`
	Reference      *ReferenceDTO    `json:"reference,omitempty"`
	SupplierID     string           `json:"supplier_id,omitempty"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	PerformedBy    string           `json:"performed_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un registro bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	StockRecordID      string          `json:"stock_record_id"`
	ProductID          string          `json:"product_id"`
	BranchID           string          `json:"branch_id"`
	Quantity           int64           `json:"quantity"`
	Available          int64           `json:"available"`
	ReorderPoint       int64           `json:"reorder_point"`
	Deficit            int64           `json:"deficit"`             // ReorderPoint - Available
	SuggestedOrderQty  int64           `json:"suggested_order_qty"` // max(ReorderQuantity, Deficit)
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// ToReference convierte el DTO en la referencia de dominio; nil si no hay referencia.
func (r *ReferenceDTO) ToReference() *entity.Reference {
	if r == nil {
		return nil
	}
	return &entity.Reference{DocumentType: entity.DocumentType(r.DocumentType), DocumentID: r.DocumentID}
}

// NewStockRecordResponse mapea la entidad a la salida HTTP.
func NewStockRecordResponse(s *entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:               s.ID,
		ProductID:        s.ProductID,
		BranchID:         s.BranchID,
		Quantity:         s.Quantity,
		ReservedQuantity: s.ReservedQuantity,
		Available:        s.Available(),
		ReorderPoint:     s.ReorderPoint,
		ReorderQuantity:  s.ReorderQuantity,
		CostPrice:        s.CostPrice,
		SellingPrice:     s.SellingPrice,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// NewStockMovementResponse mapea un movimiento del kardex.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	out := StockMovementResponse{
		ID:             m.ID,
		MovementID:     m.MovementID,
		StockRecordID:  m.StockRecordID,
		ProductID:      m.ProductID,
		BranchID:       m.BranchID,
		Type:           string(m.Type),
		QuantityDelta:  m.QuantityDelta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		SupplierID:     m.SupplierID,
		UnitCost:       m.UnitCost,
		Reason:         m.Reason,
		PerformedBy:    m.PerformedBy,
		CreatedAt:      m.CreatedAt,
	}
	if m.Reference != nil {
		out.Reference = &ReferenceDTO{DocumentType: string(m.Reference.DocumentType), DocumentID: m.Reference.DocumentID}
	}
	return out
}

// NewStockMovementList mapea una lista de movimientos.
func NewStockMovementList(list []*entity.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, NewStockMovementResponse(m))
	}
	return out
}
