package domain

import "github.com/shopspring/decimal"

// DefaultCurrency — валюта записи, если фид ее не указывает.
const DefaultCurrency = "PLN"

// DefaultVAT — ставка НДС по умолчанию для всех форматов поставщиков.
var DefaultVAT = decimal.NewFromInt(23)

// Product — нормализованная запись товара, общая для всех форматов фидов.
// После разбора запись не изменяется.
type Product struct {
	ProductID    string
	EAN          string
	Name         string
	Producer     string
	Category     string
	CategoryPath string
	Version      string
	PriceGross   decimal.Decimal
	PriceNet     decimal.Decimal
	VAT          decimal.Decimal
	Currency     string
	Stock        int
	URL          string
	Description  string
}

// InStock сообщает, есть ли товар на складе.
func (p Product) InStock() bool {
	return p.Stock > 0
}
