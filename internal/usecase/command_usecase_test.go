package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DRSN-tech/feedconv/internal/command"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommandUC(api *fakeAPI) *CommandUseCase {
	return NewCommandUC(command.NewTranslator(81501), api, logger.NewNopLogger())
}

func TestExecute_ProductsTable(t *testing.T) {
	products := map[string]any{}
	for i := 1; i <= 25; i++ {
		id := fmt.Sprintf("%02d", i)
		products[id] = map[string]any{"id": json.Number(id), "name": "Toy " + id}
	}
	api := &fakeAPI{res: map[string]any{"status": "SUCCESS", "products": products}}
	uc := newTestCommandUC(api)

	res, err := uc.Execute(context.Background(), "list products")
	require.NoError(t, err)

	assert.Equal(t, domain.MethodGetInventoryProductsList, api.method)
	assert.Equal(t, int64(81501), api.params["inventory_id"])
	assert.Equal(t, "Listing products from inventory", res.Call.Description)

	require.NotNil(t, res.Table)
	assert.Equal(t, 25, res.Table.Total)
	require.Len(t, res.Table.Rows, 20)
	assert.Equal(t, []string{"01", "Toy 01"}, res.Table.Rows[0])
	assert.Equal(t, []string{"20", "Toy 20"}, res.Table.Rows[19])
}

func TestExecute_CategoriesTable(t *testing.T) {
	api := &fakeAPI{res: map[string]any{
		"status": "SUCCESS",
		"categories": []any{
			map[string]any{"category_id": json.Number("1"), "name": "Toys", "parent_id": json.Number("0")},
			map[string]any{"category_id": json.Number("2"), "name": "Blocks"},
		},
	}}
	uc := newTestCommandUC(api)

	res, err := uc.Execute(context.Background(), "get categories")
	require.NoError(t, err)
	require.NotNil(t, res.Table)
	assert.Equal(t, []string{"ID", "Name", "Parent ID"}, res.Table.Columns)
	assert.Equal(t, [][]string{{"1", "Toys", "0"}, {"2", "Blocks", "-"}}, res.Table.Rows)
}

func TestExecute_InventoriesTable(t *testing.T) {
	api := &fakeAPI{res: map[string]any{
		"status": "SUCCESS",
		"inventories": []any{
			map[string]any{"inventory_id": json.Number("81501"), "name": "Main"},
		},
	}}
	uc := newTestCommandUC(api)

	res, err := uc.Execute(context.Background(), "get inventories")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"81501", "Main", "0"}}, res.Table.Rows)
}

func TestExecute_WarehousesRaw(t *testing.T) {
	api := &fakeAPI{res: map[string]any{"status": "SUCCESS", "warehouses": []any{}}}
	uc := newTestCommandUC(api)

	res, err := uc.Execute(context.Background(), "get warehouses")
	require.NoError(t, err)
	assert.Nil(t, res.Table)
	assert.Equal(t, api.res, res.Raw)
}

func TestExecute_UnrecognizedSkipsAPI(t *testing.T) {
	api := &fakeAPI{}
	uc := newTestCommandUC(api)

	_, err := uc.Execute(context.Background(), "make coffee")
	assert.ErrorIs(t, err, e.ErrUnrecognizedCommand)
	assert.Empty(t, api.method)
}

func TestExecute_RemoteError(t *testing.T) {
	api := &fakeAPI{err: &domain.RemoteAPIError{Method: "getInventories", Code: "ERROR_AUTH", Message: "bad token"}}
	uc := newTestCommandUC(api)

	_, err := uc.Execute(context.Background(), "get inventories")
	assert.ErrorIs(t, err, e.ErrRemoteAPI)
}
