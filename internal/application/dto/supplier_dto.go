package dto

// SupplierResponse proveedor en los listados.
type SupplierResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SupplierListResponse listado completo de proveedores.
type SupplierListResponse struct {
	Items []*SupplierResponse `json:"items"`
}
