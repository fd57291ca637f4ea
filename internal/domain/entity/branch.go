package entity

// Branch sucursal de la tienda donde se mantiene stock.
type Branch struct {
	ID   string `json:"branch_id"`
	Name string `json:"branch_name"`
}
