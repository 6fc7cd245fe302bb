// Package export сериализует записи товаров в CSV для импорта в BaseLinker.
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// minPriceScale — минимальное число знаков после точки в ценах.
const minPriceScale = 2

// Delimiter — разделитель полей, который ожидает импорт BaseLinker.
const Delimiter = ';'

// Columns — фиксированный порядок колонок CSV.
var Columns = []string{
	"product_id",
	"ean",
	"name",
	"producer",
	"category",
	"category_path",
	"version",
	"price_gross",
	"price_net",
	"vat",
	"currency",
	"stock",
	"url",
	"description",
}

// WriteCSV пишет заголовок и по строке на запись. Кавычки и экранирование — по RFC 4180.
func WriteCSV(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(Columns); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	for _, p := range products {
		if err := cw.Write(row(p)); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// EncodeCSV возвращает CSV целиком в памяти.
func EncodeCSV(products []domain.Product) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, products); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func row(p domain.Product) []string {
	return []string{
		p.ProductID,
		p.EAN,
		p.Name,
		p.Producer,
		p.Category,
		p.CategoryPath,
		p.Version,
		formatPrice(p.PriceGross),
		formatPrice(p.PriceNet),
		p.VAT.String(),
		p.Currency,
		strconv.Itoa(p.Stock),
		p.URL,
		p.Description,
	}
}

// formatPrice пишет цену минимум с двумя знаками, но не округляет цены с большей точностью из фида.
func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(max(minPriceScale, -d.Exponent()))
}

// FileName строит имя файла выгрузки: источник в нижнем регистре с подчеркиваниями и отметка времени.
func FileName(source string, at time.Time) string {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(source)), " ", "_")
	if base == "" {
		base = "export"
	}

	return base + "_" + at.Format("20060102_150405") + ".csv"
}
