package domain

import "fmt"

// CommandKind — канонический тег распознанной команды.
type CommandKind string

const (
	KindListProducts    CommandKind = "list_products"
	KindProductDetails  CommandKind = "product_details"
	KindListInventories CommandKind = "list_inventories"
	KindListCategories  CommandKind = "list_categories"
	KindSearchEAN       CommandKind = "search_ean"
	KindListWarehouses  CommandKind = "list_warehouses"
)

// Методы BaseLinker API, в которые транслируются команды.
const (
	MethodGetInventoryProductsList = "getInventoryProductsList"
	MethodGetInventoryProductsData = "getInventoryProductsData"
	MethodGetInventories           = "getInventories"
	MethodGetInventoryCategories   = "getInventoryCategories"
	MethodGetInventoryWarehouses   = "getInventoryWarehouses"
)

// Command — распознанная команда. Набор реализаций закрыт: только типы этого пакета.
type Command interface {
	Kind() CommandKind
	Method() string
	Params() map[string]any
	Description() string
	command()
}

// CallDescriptor — вызов удаленного API, построенный из команды.
type CallDescriptor struct {
	Kind        CommandKind    `json:"kind"`
	Method      string         `json:"method"`
	Params      map[string]any `json:"parameters"`
	Description string         `json:"description"`
}

// Describe строит дескриптор вызова для команды.
func Describe(c Command) CallDescriptor {
	return CallDescriptor{
		Kind:        c.Kind(),
		Method:      c.Method(),
		Params:      c.Params(),
		Description: c.Description(),
	}
}

type ListProducts struct {
	InventoryID int64
}

func (ListProducts) Kind() CommandKind { return KindListProducts }
func (ListProducts) Method() string    { return MethodGetInventoryProductsList }
func (c ListProducts) Params() map[string]any {
	return map[string]any{"inventory_id": c.InventoryID, "page": 1}
}
func (ListProducts) Description() string { return "Listing products from inventory" }
func (ListProducts) command()            {}

type ProductDetails struct {
	InventoryID int64
	ProductID   int64
}

func (ProductDetails) Kind() CommandKind { return KindProductDetails }
func (ProductDetails) Method() string    { return MethodGetInventoryProductsData }
func (c ProductDetails) Params() map[string]any {
	return map[string]any{"inventory_id": c.InventoryID, "products": []int64{c.ProductID}}
}
func (c ProductDetails) Description() string {
	return fmt.Sprintf("Getting details for product %d", c.ProductID)
}
func (ProductDetails) command() {}

type ListInventories struct{}

func (ListInventories) Kind() CommandKind      { return KindListInventories }
func (ListInventories) Method() string         { return MethodGetInventories }
func (ListInventories) Params() map[string]any { return map[string]any{} }
func (ListInventories) Description() string    { return "Getting list of inventories" }
func (ListInventories) command()               {}

type ListCategories struct {
	InventoryID int64
}

func (ListCategories) Kind() CommandKind { return KindListCategories }
func (ListCategories) Method() string    { return MethodGetInventoryCategories }
func (c ListCategories) Params() map[string]any {
	return map[string]any{"inventory_id": c.InventoryID}
}
func (ListCategories) Description() string { return "Getting categories" }
func (ListCategories) command()            {}

type SearchEAN struct {
	InventoryID int64
	EAN         string
}

func (SearchEAN) Kind() CommandKind { return KindSearchEAN }
func (SearchEAN) Method() string    { return MethodGetInventoryProductsList }
func (c SearchEAN) Params() map[string]any {
	return map[string]any{"inventory_id": c.InventoryID, "filter_ean": c.EAN, "page": 1}
}
func (c SearchEAN) Description() string {
	return fmt.Sprintf("Searching for product with EAN %s", c.EAN)
}
func (SearchEAN) command() {}

type ListWarehouses struct{}

func (ListWarehouses) Kind() CommandKind      { return KindListWarehouses }
func (ListWarehouses) Method() string         { return MethodGetInventoryWarehouses }
func (ListWarehouses) Params() map[string]any { return map[string]any{} }
func (ListWarehouses) Description() string    { return "Getting list of warehouses" }
func (ListWarehouses) command()               {}
