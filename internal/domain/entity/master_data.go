package entity

// Branch sucursal del taller.
type Branch struct {
	ID   string
	Code string
	Name string
}

// Location ubicación física (estante, bodega, vitrina) dentro de una sucursal.
type Location struct {
	ID       string
	BranchID string
	Name     string
}

// Part repuesto del catálogo.
type Part struct {
	ID          string
	SKU         string
	Name        string
	UnitMeasure string
}

// Supplier proveedor; fuera de este identificador no se gestiona su catálogo.
type Supplier struct {
	ID   string
	Name string
}
