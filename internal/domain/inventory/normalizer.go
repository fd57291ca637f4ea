package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// maxUnwrapDepth límite de objetos {data: ...} anidados que se desenvuelven.
const maxUnwrapDepth = 4

// listKeys claves que pueden contener la lista dentro de un objeto, en orden de preferencia.
var listKeys = []string{"data", "items", "results"}

// NormalizeRecords convierte la respuesta cruda del endpoint de inventario en una lista plana.
// Acepta un arreglo, {data: arreglo} o anidamientos {data: {data: arreglo}}.
// Los campos opcionales ausentes no son error: stock=0 y stock_status se deriva del
// stock frente a lowStockThreshold solo si el backend no lo envía.
func NormalizeRecords(raw []byte, lowStockThreshold int) ([]entity.InventoryRecord, error) {
	return normalizeList(raw, func(w recordWire) entity.InventoryRecord {
		return w.toEntity(lowStockThreshold)
	})
}

// NormalizeCategories normaliza la lista de categorías de referencia.
func NormalizeCategories(raw []byte) ([]entity.CategoryMeta, error) {
	return normalizeList(raw, func(w categoryWire) entity.CategoryMeta {
		return entity.CategoryMeta{
			ID:       firstNonEmpty(string(w.CategoryID), string(w.ID)),
			Name:     firstNonEmpty(w.CategoryName, w.Name),
			IsActive: w.IsActive.orDefault(true),
			ImageURL: firstNonEmpty(w.CategoryImage, w.ImageURL),
		}
	})
}

// NormalizeProducts normaliza la lista de productos de referencia.
func NormalizeProducts(raw []byte) ([]entity.ProductMeta, error) {
	return normalizeList(raw, func(w productWire) entity.ProductMeta {
		return entity.ProductMeta{
			ID:         firstNonEmpty(string(w.ProductID), string(w.ID)),
			Name:       firstNonEmpty(w.ProductName, w.Name),
			CategoryID: string(w.CategoryID),
			IsActive:   w.IsActive.orDefault(true),
			ImageURL:   firstNonEmpty(w.ProductImage, w.ImageURL),
		}
	})
}

// NormalizeBranches normaliza la lista de sucursales.
func NormalizeBranches(raw []byte) ([]entity.Branch, error) {
	return normalizeList(raw, func(w branchWire) entity.Branch {
		return entity.Branch{
			ID:   firstNonEmpty(string(w.BranchID), string(w.ID)),
			Name: firstNonEmpty(w.BranchName, w.Name),
		}
	})
}

// NormalizeStatistics decodifica las estadísticas del inventario, envueltas o no en {data: ...}.
func NormalizeStatistics(raw []byte) (*entity.InventoryStatistics, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, err
	}
	var w statisticsWire
	if err := json.Unmarshal(obj, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedPayload, err)
	}
	return &entity.InventoryStatistics{
		TotalItems:      w.TotalItems.value,
		TotalStock:      w.TotalStock.value,
		InStockCount:    w.InStockCount.value,
		LowStockCount:   w.LowStockCount.value,
		OutOfStockCount: w.OutOfStockCount.value,
	}, nil
}

// NormalizeBulkResult decodifica la respuesta del bulk-update. Los errores por fila pueden
// traer el texto en "message" o en "error".
func NormalizeBulkResult(raw []byte) (*entity.BulkUpdateResult, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, err
	}
	var w bulkResultWire
	if err := json.Unmarshal(obj, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedPayload, err)
	}
	res := &entity.BulkUpdateResult{SuccessCount: w.SuccessCount.value}
	for _, e := range w.Errors {
		res.Errors = append(res.Errors, entity.BulkRowError{
			InventoryID: firstNonEmpty(string(e.InventoryID), string(e.ID)),
			Message:     firstNonEmpty(e.Message, e.Error),
		})
	}
	return res, nil
}

func normalizeList[W any, E any](raw []byte, convert func(W) E) ([]E, error) {
	items, err := unwrapList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(items))
	for i, item := range items {
		var w W
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, fmt.Errorf("%w: elemento %d: %v", domain.ErrUnexpectedPayload, i, err)
		}
		out = append(out, convert(w))
	}
	return out, nil
}

// unwrapList busca el arreglo dentro de la respuesta. null se interpreta como lista vacía.
func unwrapList(raw []byte) ([]json.RawMessage, error) {
	current := bytes.TrimSpace(raw)
	for depth := 0; depth <= maxUnwrapDepth; depth++ {
		if len(current) == 0 {
			return nil, fmt.Errorf("%w: cuerpo vacío", domain.ErrUnexpectedPayload)
		}
		switch current[0] {
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(current, &items); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedPayload, err)
			}
			return items, nil
		case '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(current, &obj); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedPayload, err)
			}
			next, ok := pickList(obj)
			if !ok {
				return nil, fmt.Errorf("%w: objeto sin lista", domain.ErrUnexpectedPayload)
			}
			current = bytes.TrimSpace(next)
		case 'n':
			if string(current) == "null" {
				return []json.RawMessage{}, nil
			}
			return nil, fmt.Errorf("%w: valor inválido", domain.ErrUnexpectedPayload)
		default:
			return nil, fmt.Errorf("%w: se esperaba arreglo u objeto", domain.ErrUnexpectedPayload)
		}
	}
	return nil, fmt.Errorf("%w: anidamiento excesivo", domain.ErrUnexpectedPayload)
}

// unwrapObject desciende por {data: {...}} hasta el objeto con los campos.
func unwrapObject(raw []byte) (json.RawMessage, error) {
	current := bytes.TrimSpace(raw)
	for depth := 0; depth <= maxUnwrapDepth; depth++ {
		if len(current) == 0 || current[0] != '{' {
			return nil, fmt.Errorf("%w: se esperaba un objeto", domain.ErrUnexpectedPayload)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedPayload, err)
		}
		next, ok := obj["data"]
		next = bytes.TrimSpace(next)
		if !ok || len(next) == 0 || next[0] != '{' {
			return current, nil
		}
		current = next
	}
	return nil, fmt.Errorf("%w: anidamiento excesivo", domain.ErrUnexpectedPayload)
}

func pickList(obj map[string]json.RawMessage) (json.RawMessage, bool) {
	for _, k := range listKeys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// ── Formas de cable ───────────────────────────────────────────────────────────

type recordWire struct {
	InventoryID   flexString      `json:"inventory_id"`
	ID            flexString      `json:"id"`
	ProductID     flexString      `json:"product_id"`
	ProductName   string          `json:"product_name"`
	CategoryID    flexString      `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	VariantID     flexString      `json:"variant_id"`
	VariantName   string          `json:"variant_name"`
	VariantPrice  decimal.Decimal `json:"variant_price"`
	BranchID      flexString      `json:"branch_id"`
	BranchName    string          `json:"branch_name"`
	Stock         flexInt         `json:"stock"`
	StockStatus   string          `json:"stock_status"`
	ProductActive flexBool        `json:"product_active"`
}

func (w recordWire) toEntity(lowStockThreshold int) entity.InventoryRecord {
	stock := w.Stock.value
	if stock < 0 {
		stock = 0
	}
	status := entity.StockStatus(strings.ToLower(strings.TrimSpace(w.StockStatus)))
	if !status.Valid() {
		status = DeriveStockStatus(stock, lowStockThreshold)
	}
	return entity.InventoryRecord{
		InventoryID:   firstNonEmpty(string(w.InventoryID), string(w.ID)),
		ProductID:     string(w.ProductID),
		ProductName:   w.ProductName,
		CategoryID:    string(w.CategoryID),
		CategoryName:  w.CategoryName,
		VariantID:     string(w.VariantID),
		VariantName:   w.VariantName,
		VariantPrice:  w.VariantPrice,
		BranchID:      string(w.BranchID),
		BranchName:    w.BranchName,
		Stock:         stock,
		StockStatus:   status,
		ProductActive: w.ProductActive.orDefault(true),
	}
}

type categoryWire struct {
	CategoryID    flexString `json:"category_id"`
	ID            flexString `json:"id"`
	CategoryName  string     `json:"category_name"`
	Name          string     `json:"name"`
	IsActive      flexBool   `json:"is_active"`
	CategoryImage string     `json:"category_image"`
	ImageURL      string     `json:"image_url"`
}

type productWire struct {
	ProductID    flexString `json:"product_id"`
	ID           flexString `json:"id"`
	ProductName  string     `json:"product_name"`
	Name         string     `json:"name"`
	CategoryID   flexString `json:"category_id"`
	IsActive     flexBool   `json:"is_active"`
	ProductImage string     `json:"product_image"`
	ImageURL     string     `json:"image_url"`
}

type branchWire struct {
	BranchID   flexString `json:"branch_id"`
	ID         flexString `json:"id"`
	BranchName string     `json:"branch_name"`
	Name       string     `json:"name"`
}

type statisticsWire struct {
	TotalItems      flexInt `json:"total_items"`
	TotalStock      flexInt `json:"total_stock"`
	InStockCount    flexInt `json:"in_stock_count"`
	LowStockCount   flexInt `json:"low_stock_count"`
	OutOfStockCount flexInt `json:"out_of_stock_count"`
}

type bulkResultWire struct {
	SuccessCount flexInt `json:"success_count"`
	Errors       []struct {
		InventoryID flexString `json:"inventory_id"`
		ID          flexString `json:"id"`
		Message     string     `json:"message"`
		Error       string     `json:"error"`
	} `json:"errors"`
}

// flexString acepta ids enviados como string o como número.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id inválido %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

// flexInt acepta enteros como número, número con decimales o string numérico.
type flexInt struct {
	value int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		f.value = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 0); err == nil {
		f.value = int(n)
		return nil
	}
	// Solo se aceptan flotantes con parte fraccionaria cero (5.0, 1e3) dentro del rango de int.
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
		return fmt.Errorf("entero inválido %q", s)
	}
	f.value = int(n)
	return nil
}

// flexBool acepta true/false, 0/1 y sus variantes en string. set indica si vino en el JSON.
type flexBool struct {
	value bool
	set   bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	switch s {
	case "null", "":
		f.set = false
	case "true", "1", "t", "yes":
		f.value, f.set = true, true
	case "false", "0", "f", "no":
		f.value, f.set = false, true
	default:
		return fmt.Errorf("booleano inválido %q", s)
	}
	return nil
}

func (f flexBool) orDefault(def bool) bool {
	if !f.set {
		return def
	}
	return f.value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
