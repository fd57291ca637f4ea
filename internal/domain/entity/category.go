package entity

// CategoryMeta datos de referencia de una categoría (flag activo e imagen).
type CategoryMeta struct {
	ID       string `json:"category_id"`
	Name     string `json:"category_name"`
	IsActive bool   `json:"is_active"`
	ImageURL string `json:"category_image,omitempty"`
}
