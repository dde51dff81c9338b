package entity

import "time"

// Branch sucursal donde se almacena y vende inventario. La lista es plana, sin jerarquías.
type Branch struct {
	ID        string
	Code      string // código corto único (ej. "BOG-01")
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
