package inventory

import (
	"sort"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
)

// ProductGroup variantes de un producto dentro de una categoría.
type ProductGroup struct {
	ProductID    string                   `json:"product_id"`
	ProductName  string                   `json:"product_name"`
	IsActive     bool                     `json:"is_active"`
	ProductImage string                   `json:"product_image,omitempty"`
	Variants     []entity.InventoryRecord `json:"variants"`
}

// CategoryGroup nodo raíz del árbol Categoría → Producto → Variante.
// Key es "id:<id>" si se conoce el id de la categoría, si no "name:<nombre>".
type CategoryGroup struct {
	Key           string         `json:"key"`
	CategoryID    string         `json:"category_id,omitempty"`
	CategoryName  string         `json:"category_name"`
	IsActive      bool           `json:"is_active"`
	CategoryImage string         `json:"category_image,omitempty"`
	Products      []ProductGroup `json:"products"`
}

// CategoryKey clave estable de agrupación de una categoría.
func CategoryKey(categoryID, categoryName string) string {
	if categoryID != "" {
		return "id:" + categoryID
	}
	return "name:" + categoryName
}

type categoryAcc struct {
	group    CategoryGroup
	products map[string]int // productID → índice en group.Products
}

// Group pliega la lista filtrada en el árbol de categorías.
//
// Primero siembra un grupo por cada categoría conocida (las vacías también aparecen) y
// luego ubica cada fila: category_id de la fila → categoría conocida con el mismo nombre →
// clave sintética "name:". Toda fila cae en exactamente un grupo. Dos categorías sin id
// con el mismo nombre se fusionan; ver NameJoinCollisions.
//
// Categorías y productos salen ordenados por nombre; las variantes conservan el orden de entrada.
func Group(records []entity.InventoryRecord, categories []entity.CategoryMeta, products []entity.ProductMeta) []CategoryGroup {
	byKey := make(map[string]*categoryAcc, len(categories))
	order := make([]string, 0, len(categories))
	byName := make(map[string]entity.CategoryMeta, len(categories))

	for _, c := range categories {
		key := CategoryKey(c.ID, c.Name)
		if _, ok := byKey[key]; ok {
			continue
		}
		byKey[key] = &categoryAcc{
			group: CategoryGroup{
				Key:           key,
				CategoryID:    c.ID,
				CategoryName:  c.Name,
				IsActive:      c.IsActive,
				CategoryImage: c.ImageURL,
				Products:      []ProductGroup{},
			},
			products: map[string]int{},
		}
		order = append(order, key)
		if _, seen := byName[c.Name]; !seen {
			byName[c.Name] = c
		}
	}

	productMeta := make(map[string]entity.ProductMeta, len(products))
	for _, p := range products {
		productMeta[p.ID] = p
	}

	for _, r := range records {
		key := resolveCategoryKey(r, byName)
		acc, ok := byKey[key]
		if !ok {
			acc = &categoryAcc{
				group: CategoryGroup{
					Key:          key,
					CategoryID:   r.CategoryID,
					CategoryName: r.CategoryName,
					IsActive:     true,
					Products:     []ProductGroup{},
				},
				products: map[string]int{},
			}
			byKey[key] = acc
			order = append(order, key)
		}

		idx, ok := acc.products[r.ProductID]
		if !ok {
			acc.group.Products = append(acc.group.Products, newProductGroup(r, productMeta))
			idx = len(acc.group.Products) - 1
			acc.products[r.ProductID] = idx
		}
		acc.group.Products[idx].Variants = append(acc.group.Products[idx].Variants, r)
	}

	out := make([]CategoryGroup, 0, len(order))
	for _, key := range order {
		g := byKey[key].group
		sort.SliceStable(g.Products, func(i, j int) bool {
			return g.Products[i].ProductName < g.Products[j].ProductName
		})
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}

func resolveCategoryKey(r entity.InventoryRecord, byName map[string]entity.CategoryMeta) string {
	if r.CategoryID != "" {
		return CategoryKey(r.CategoryID, r.CategoryName)
	}
	if meta, ok := byName[r.CategoryName]; ok {
		return CategoryKey(meta.ID, meta.Name)
	}
	return CategoryKey("", r.CategoryName)
}

func newProductGroup(r entity.InventoryRecord, metas map[string]entity.ProductMeta) ProductGroup {
	g := ProductGroup{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		IsActive:    r.ProductActive,
		Variants:    []entity.InventoryRecord{},
	}
	if meta, ok := metas[r.ProductID]; ok {
		g.IsActive = meta.IsActive
		g.ProductImage = meta.ImageURL
		if g.ProductName == "" {
			g.ProductName = meta.Name
		}
	}
	return g
}

// NameJoinCollisions devuelve los nombres de categoría ambiguos para la unión por nombre:
// filas sin category_id cuyo nombre coincide con más de una categoría conocida.
func NameJoinCollisions(records []entity.InventoryRecord, categories []entity.CategoryMeta) []string {
	count := make(map[string]int, len(categories))
	for _, c := range categories {
		count[c.Name]++
	}
	seen := map[string]bool{}
	var names []string
	for _, r := range records {
		if r.CategoryID != "" || count[r.CategoryName] < 2 || seen[r.CategoryName] {
			continue
		}
		seen[r.CategoryName] = true
		names = append(names, r.CategoryName)
	}
	sort.Strings(names)
	return names
}

// CountVariants total de filas dentro del árbol.
func CountVariants(groups []CategoryGroup) int {
	n := 0
	for _, g := range groups {
		for _, p := range g.Products {
			n += len(p.Variants)
		}
	}
	return n
}
