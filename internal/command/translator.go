// Package command переводит текстовые команды на естественном языке в вызовы BaseLinker API.
package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
)

const (
	hintProductID   = "Please specify product ID (e.g., 'get product details 12345')"
	hintEAN         = "Please specify EAN number (8 to 13 digits, e.g., 'search ean 5901234123457')"
	hintStockUpdate = "Stock updates require: 'update stock [product_id] to [quantity]' (e.g., 'update stock 12345 to 50')"
)

var (
	digitsRe = regexp.MustCompile(`\d+`)
	eanRe    = regexp.MustCompile(`\b\d{8,13}\b`)
)

// rule — строка таблицы сопоставления. Порядок правил значим: побеждает первое совпавшее.
type rule struct {
	phrases []*regexp.Regexp
	build   func(t *Translator, normalized, input string) (domain.Command, error)
}

// phrasePatterns компилирует фразы правила. Фраза совпадает только целыми словами,
// допускается множественное число последнего слова ("warehouse" -> "warehouses").
func phrasePatterns(list ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(list))
	for _, p := range list {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`(?:e?s)?\b`))
	}

	return res
}

// Translator сопоставляет текст с упорядоченной таблицей правил. Сетевых вызовов не делает.
type Translator struct {
	inventoryID int64
	rules       []rule
}

func NewTranslator(inventoryID int64) *Translator {
	return &Translator{
		inventoryID: inventoryID,
		rules: []rule{
			{
				phrases: phrasePatterns("list products", "get products", "show products", "view products"),
				build: func(t *Translator, _, _ string) (domain.Command, error) {
					return domain.ListProducts{InventoryID: t.inventoryID}, nil
				},
			},
			{
				phrases: phrasePatterns("product details", "get product"),
				build:   (*Translator).productDetails,
			},
			{
				phrases: phrasePatterns("inventories", "list inventory"),
				build: func(*Translator, string, string) (domain.Command, error) {
					return domain.ListInventories{}, nil
				},
			},
			{
				phrases: phrasePatterns("categories"),
				build: func(t *Translator, _, _ string) (domain.Command, error) {
					return domain.ListCategories{InventoryID: t.inventoryID}, nil
				},
			},
			{
				phrases: phrasePatterns("ean", "barcode"),
				build:   (*Translator).searchEAN,
			},
			{
				phrases: phrasePatterns("update stock", "set stock"),
				build: func(_ *Translator, _, input string) (domain.Command, error) {
					return nil, &domain.UnsupportedCommandError{Input: input, Hint: hintStockUpdate}
				},
			},
			{
				phrases: phrasePatterns("warehouse"),
				build: func(*Translator, string, string) (domain.Command, error) {
					return domain.ListWarehouses{}, nil
				},
			},
		},
	}
}

// Translate распознает команду. Регистр и лишние пробелы не важны.
// Если ни одно правило не подошло, возвращается UnrecognizedCommandError с исходным текстом.
func (t *Translator) Translate(input string) (domain.Command, error) {
	normalized := normalize(input)

	for _, r := range t.rules {
		if containsAny(normalized, r.phrases) {
			return r.build(t, normalized, input)
		}
	}

	return nil, &domain.UnrecognizedCommandError{Input: input}
}

func (t *Translator) productDetails(normalized, input string) (domain.Command, error) {
	match := digitsRe.FindString(normalized)
	if match == "" {
		return nil, &domain.MissingArgumentError{Input: input, Hint: hintProductID}
	}

	id, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return nil, &domain.MissingArgumentError{Input: input, Hint: hintProductID}
	}

	return domain.ProductDetails{InventoryID: t.inventoryID, ProductID: id}, nil
}

func (t *Translator) searchEAN(normalized, input string) (domain.Command, error) {
	ean := eanRe.FindString(normalized)
	if ean == "" {
		return nil, &domain.MissingArgumentError{Input: input, Hint: hintEAN}
	}

	return domain.SearchEAN{InventoryID: t.inventoryID, EAN: ean}, nil
}

// normalize приводит к нижнему регистру и схлопывает пробелы, чтобы "List   Products" совпало с фразой.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}

	return false
}

// QuickActions — готовые команды для быстрого вызова.
var QuickActions = []string{
	"list products",
	"get categories",
	"get inventories",
	"get warehouses",
}
