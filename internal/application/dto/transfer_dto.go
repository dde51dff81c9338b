package dto

import (
	"time"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	FromBranchID string `json:"from_branch_id" validate:"required"`
	ToBranchID   string `json:"to_branch_id" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"required,gte=1"`
	Notes        string `json:"notes" validate:"max=1000"`
}

// StockTransferResponse salida de un traslado.
type StockTransferResponse struct {
	ID             string     `json:"id"`
	TransferNumber string     `json:"transfer_number"`
	ProductID      string     `json:"product_id"`
	FromBranchID   string     `json:"from_branch_id"`
	ToBranchID     string     `json:"to_branch_id"`
	Quantity       int64      `json:"quantity"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	InitiatedBy    string     `json:"initiated_by"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	ReceivedBy     string     `json:"received_by,omitempty"`
	CancelledBy    string     `json:"cancelled_by,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []StockTransferResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// NewStockTransferResponse mapea la entidad a la salida HTTP.
func NewStockTransferResponse(t *entity.StockTransfer) StockTransferResponse {
	return StockTransferResponse{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		ProductID:      t.ProductID,
		FromBranchID:   t.FromBranchID,
		ToBranchID:     t.ToBranchID,
		Quantity:       t.Quantity,
		Status:         string(t.Status),
		Notes:          t.Notes,
		InitiatedBy:    t.InitiatedBy,
		ApprovedBy:     t.ApprovedBy,
		ReceivedBy:     t.ReceivedBy,
		CancelledBy:    t.CancelledBy,
		ShippedAt:      t.ShippedAt,
		ReceivedAt:     t.ReceivedAt,
		CancelledAt:    t.CancelledAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
