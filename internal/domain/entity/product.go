package entity

// ProductMeta datos de referencia de un producto, unidos a la agrupación por ProductID.
type ProductMeta struct {
	ID         string `json:"product_id"`
	Name       string `json:"product_name"`
	CategoryID string `json:"category_id,omitempty"`
	IsActive   bool   `json:"is_active"`
	ImageURL   string `json:"product_image,omitempty"`
}
