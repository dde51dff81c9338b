package entity

import "time"

// TransferStatus estado del traslado entre sucursales.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in-transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// IsTerminal completed y cancelled no admiten más transiciones.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferPending, TransferInTransit, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// StockTransfer traslado de una cantidad fija de un producto entre dos sucursales.
type StockTransfer struct {
	ID             string
	TransferNumber string // TR-YYYY-NNNNNN
	ProductID      string
	FromBranchID   string
	ToBranchID     string
	Quantity       int64
	Status         TransferStatus
	Notes          string
	InitiatedBy    string
	ApprovedBy     string
	ReceivedBy     string
	CancelledBy    string
	ShippedAt      *time.Time
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
