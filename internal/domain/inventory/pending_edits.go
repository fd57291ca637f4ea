package inventory

import (
	"sort"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
)

// PendingEdits valores de stock propuestos por el usuario, por inventory_id.
// Invariante: una clave existe si y solo si el valor propuesto difiere del stock del registro.
type PendingEdits map[string]int

// SetEdit devuelve un mapa nuevo con la edición aplicada; el original no se modifica.
// Si proposed == baseline la clave se elimina: una edición sin cambio no está "sucia".
func SetEdit(edits PendingEdits, inventoryID string, proposed, baseline int) PendingEdits {
	next := make(PendingEdits, len(edits)+1)
	for k, v := range edits {
		next[k] = v
	}
	if proposed == baseline {
		delete(next, inventoryID)
	} else {
		next[inventoryID] = proposed
	}
	return next
}

// Without devuelve un mapa nuevo sin las claves indicadas.
func (p PendingEdits) Without(inventoryIDs ...string) PendingEdits {
	next := make(PendingEdits, len(p))
	for k, v := range p {
		next[k] = v
	}
	for _, id := range inventoryIDs {
		delete(next, id)
	}
	return next
}

// Commit materializa el mapa como instrucciones para el bulk-update, ordenadas por id.
func Commit(edits PendingEdits) []entity.StockUpdate {
	out := make([]entity.StockUpdate, 0, len(edits))
	for id, stock := range edits {
		out = append(out, entity.StockUpdate{InventoryID: id, Stock: stock})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryID < out[j].InventoryID })
	return out
}

// DisplayStock valor a mostrar: la edición pendiente o, si no hay, el stock del servidor.
// Nunca modifica el registro.
func DisplayStock(edits PendingEdits, r entity.InventoryRecord) int {
	if v, ok := edits[r.InventoryID]; ok {
		return v
	}
	return r.Stock
}
