package entity

import "fmt"

// DocumentType tipo de documento que origina un movimiento.
type DocumentType string

const (
	DocumentSalesOrder    DocumentType = "sales_order"
	DocumentServiceOrder  DocumentType = "service_order"
	DocumentStockTransfer DocumentType = "stock_transfer"
)

// IsValid indica si el tipo de documento es conocido.
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentSalesOrder, DocumentServiceOrder, DocumentStockTransfer:
		return true
	}
	return false
}

// Reference apunta al documento (orden de venta, orden de servicio o traslado) que causó un movimiento.
// Se construye con SalesOrderRef, ServiceOrderRef o StockTransferRef.
type Reference struct {
	DocumentType DocumentType `json:"document_type"`
	DocumentID   string       `json:"document_id"`
}

func SalesOrderRef(id string) *Reference {
	return &Reference{DocumentType: DocumentSalesOrder, DocumentID: id}
}

func ServiceOrderRef(id string) *Reference {
	return &Reference{DocumentType: DocumentServiceOrder, DocumentID: id}
}

func StockTransferRef(id string) *Reference {
	return &Reference{DocumentType: DocumentStockTransfer, DocumentID: id}
}

// Valid indica si la referencia tiene tipo conocido e ID.
func (r *Reference) Valid() bool {
	return r != nil && r.DocumentType.IsValid() && r.DocumentID != ""
}

func (r *Reference) String() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.DocumentType, r.DocumentID)
}
