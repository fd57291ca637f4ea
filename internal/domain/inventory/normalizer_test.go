package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecords_FormasDeRespuesta(t *testing.T) {
	row := `{"inventory_id": 1, "product_id": 10, "product_name": "Pizza", "variant_id": "v1",
		"variant_name": "Grande", "variant_price": "12.50", "branch_id": 3, "branch_name": "Centro",
		"stock": 5, "stock_status": "low_stock", "product_active": true}`

	payloads := map[string]string{
		"arreglo":      `[` + row + `]`,
		"data":         `{"data": [` + row + `]}`,
		"data anidado": `{"success": true, "data": {"data": [` + row + `], "total": 1}}`,
		"items":        `{"items": [` + row + `]}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			records, err := inventory.NormalizeRecords([]byte(payload), testThreshold)
			require.NoError(t, err)
			require.Len(t, records, 1)
			r := records[0]
			assert.Equal(t, "1", r.InventoryID)
			assert.Equal(t, "10", r.ProductID)
			assert.Equal(t, "3", r.BranchID)
			assert.Equal(t, 5, r.Stock)
			assert.Equal(t, entity.StockStatusLowStock, r.StockStatus)
			assert.True(t, r.VariantPrice.Equal(decimal.RequireFromString("12.5")))
		})
	}
}

func TestNormalizeRecords_ValoresPorDefecto(t *testing.T) {
	records, err := inventory.NormalizeRecords([]byte(`[{"id": "a"}, {"id": "b", "stock": 50}, {"id": "c", "stock": "3"}]`), testThreshold)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "a", records[0].InventoryID)
	assert.Equal(t, 0, records[0].Stock)
	assert.Equal(t, entity.StockStatusOutOfStock, records[0].StockStatus)
	assert.True(t, records[0].ProductActive, "product_active ausente se asume activo")

	assert.Equal(t, entity.StockStatusInStock, records[1].StockStatus)
	assert.Equal(t, 3, records[2].Stock)
	assert.Equal(t, entity.StockStatusLowStock, records[2].StockStatus)
}

func TestNormalizeRecords_RespetaStatusDelBackend(t *testing.T) {
	records, err := inventory.NormalizeRecords([]byte(`[{"id": 1, "stock": 50, "stock_status": "LOW_STOCK"}]`), testThreshold)
	require.NoError(t, err)
	assert.Equal(t, entity.StockStatusLowStock, records[0].StockStatus)
}

func TestNormalizeRecords_NullEsListaVacia(t *testing.T) {
	records, err := inventory.NormalizeRecords([]byte(`{"data": null}`), testThreshold)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalizeRecords_FormasInvalidas(t *testing.T) {
	for _, payload := range []string{``, `42`, `{"total": 3}`, `[1, 2]`, `{"data": "x"}`} {
		_, err := inventory.NormalizeRecords([]byte(payload), testThreshold)
		assert.True(t, errors.Is(err, domain.ErrUnexpectedPayload), "payload %q debe ser rechazado", payload)
	}
}

func TestNormalizeRecords_StockEnteroEstricto(t *testing.T) {
	validos := map[string]int{`5`: 5, `"5"`: 5, `5.0`: 5, `"7.0"`: 7, `1e3`: 1000, `-2`: -2}
	for raw, want := range validos {
		records, err := inventory.NormalizeRecords([]byte(`[{"id": 1, "stock": `+raw+`}]`), testThreshold)
		require.NoError(t, err, raw)
		assert.Equal(t, want, records[0].Stock, raw)
	}

	for _, raw := range []string{`5.9`, `"0.5"`, `1e30`, `-1e30`, `9223372036854775808`, `"abc"`} {
		_, err := inventory.NormalizeRecords([]byte(`[{"id": 1, "stock": `+raw+`}]`), testThreshold)
		assert.True(t, errors.Is(err, domain.ErrUnexpectedPayload), "stock %s debe ser rechazado", raw)
	}

	_, err := inventory.NormalizeStatistics([]byte(`{"total_items": 2.5}`))
	assert.True(t, errors.Is(err, domain.ErrUnexpectedPayload))
}

func TestNormalizeReferencias(t *testing.T) {
	cats, err := inventory.NormalizeCategories([]byte(`{"data": [{"category_id": 7, "category_name": "Food", "is_active": 0, "category_image": "img"}, {"id": "8", "name": "Drinks"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []entity.CategoryMeta{
		{ID: "7", Name: "Food", IsActive: false, ImageURL: "img"},
		{ID: "8", Name: "Drinks", IsActive: true},
	}, cats)

	products, err := inventory.NormalizeProducts([]byte(`[{"product_id": "p1", "product_name": "Pizza", "category_id": 7, "is_active": "true"}]`))
	require.NoError(t, err)
	assert.Equal(t, []entity.ProductMeta{{ID: "p1", Name: "Pizza", CategoryID: "7", IsActive: true}}, products)

	branches, err := inventory.NormalizeBranches([]byte(`{"data": {"data": [{"branch_id": 1, "branch_name": "Centro"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []entity.Branch{{ID: "1", Name: "Centro"}}, branches)
}

func TestNormalizeStatistics(t *testing.T) {
	for _, payload := range []string{
		`{"total_items": 3, "total_stock": "25", "in_stock_count": 1, "low_stock_count": 1, "out_of_stock_count": 1}`,
		`{"success": true, "data": {"total_items": 3, "total_stock": 25, "in_stock_count": 1, "low_stock_count": 1, "out_of_stock_count": 1}}`,
		`{"data": {"data": {"total_items": 3, "total_stock": 25.0, "in_stock_count": 1, "low_stock_count": 1, "out_of_stock_count": 1}}}`,
	} {
		stats, err := inventory.NormalizeStatistics([]byte(payload))
		require.NoError(t, err, payload)
		assert.Equal(t, entity.InventoryStatistics{TotalItems: 3, TotalStock: 25, InStockCount: 1, LowStockCount: 1, OutOfStockCount: 1}, *stats, payload)
	}

	_, err := inventory.NormalizeStatistics([]byte(`[1]`))
	assert.ErrorIs(t, err, domain.ErrUnexpectedPayload)
}

func TestNormalizeBulkResult(t *testing.T) {
	res, err := inventory.NormalizeBulkResult([]byte(`{"success": true, "data": {"success_count": 2, "errors": [{"inventory_id": 9, "error": "no existe"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, []entity.BulkRowError{{InventoryID: "9", Message: "no existe"}}, res.Errors)

	res, err = inventory.NormalizeBulkResult([]byte(`{"success_count": 1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Empty(t, res.Errors)
}
