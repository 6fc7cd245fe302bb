package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/DRSN-tech/feedconv/internal/command"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
)

const productRowsLimit = 20

// CommandUseCase переводит текстовую команду в вызов BaseLinker и выполняет его.
type CommandUseCase struct {
	translator *command.Translator
	api        BaseLinkerAPI
	logger     logger.Logger
}

func NewCommandUC(translator *command.Translator, api BaseLinkerAPI, logger logger.Logger) *CommandUseCase {
	return &CommandUseCase{
		translator: translator,
		api:        api,
		logger:     logger,
	}
}

// Execute распознает команду и вызывает API. Ошибки распознавания возвращаются до сетевого вызова.
func (c *CommandUseCase) Execute(ctx context.Context, input string) (*CommandResult, error) {
	const op = "CommandUseCase.Execute"

	cmd, err := c.translator.Translate(input)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	call := domain.Describe(cmd)

	c.logger.Infof("executing command: kind=%s method=%s", call.Kind, call.Method)

	raw, err := c.api.Call(ctx, call.Method, call.Params)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &CommandResult{
		Call:  call,
		Table: tableFor(call.Method, raw),
		Raw:   raw,
	}, nil
}

func (c *CommandUseCase) QuickActions() []string {
	return command.QuickActions
}

// tableFor строит таблицу для методов со списками. Для прочих методов вернется nil.
func tableFor(method string, raw map[string]any) *ResultTable {
	switch method {
	case domain.MethodGetInventoryProductsList:
		return productsTable(raw)
	case domain.MethodGetInventories:
		return listTable(raw, "inventories", "Inventories Found",
			[]string{"ID", "Name", "Products"},
			func(m map[string]any) []string {
				return []string{field(m, "inventory_id", ""), field(m, "name", ""), field(m, "products_quantity", "0")}
			})
	case domain.MethodGetInventoryCategories:
		return listTable(raw, "categories", "Categories Found",
			[]string{"ID", "Name", "Parent ID"},
			func(m map[string]any) []string {
				return []string{field(m, "category_id", ""), field(m, "name", ""), field(m, "parent_id", "-")}
			})
	default:
		return nil
	}
}

// productsTable: products приходит объектом id -> данные товара. Показываем первые 20 по возрастанию id.
func productsTable(raw map[string]any) *ResultTable {
	products, _ := raw["products"].(map[string]any)

	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA != nil || errB != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})

	table := &ResultTable{
		Title:   "Products Found",
		Total:   len(ids),
		Columns: []string{"ID", "Name"},
		Rows:    make([][]string, 0, min(len(ids), productRowsLimit)),
	}
	for _, id := range ids[:min(len(ids), productRowsLimit)] {
		name := ""
		switch v := products[id].(type) {
		case map[string]any:
			name = field(v, "name", "")
		case nil:
		default:
			name = fmt.Sprint(v)
		}
		table.Rows = append(table.Rows, []string{id, name})
	}

	return table
}

func listTable(raw map[string]any, key, title string, columns []string, row func(map[string]any) []string) *ResultTable {
	items, _ := raw[key].([]any)

	table := &ResultTable{
		Title:   title,
		Total:   len(items),
		Columns: columns,
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, row(m))
	}

	return table
}

func field(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}

	return fmt.Sprint(v)
}
