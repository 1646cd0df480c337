package entity

import "time"

// Supplier proveedor de una factura. El nombre es único sin distinguir mayúsculas.
type Supplier struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
