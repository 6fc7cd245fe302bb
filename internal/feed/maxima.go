package feed

import (
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/beevik/etree"
)

// ParseMaxima разбирает собственный формат Maxima: все поля товара — дочерние элементы с текстом.
func ParseMaxima(raw []byte) ([]domain.Product, error) {
	root, err := loadRoot(raw)
	if err != nil {
		return nil, err
	}

	return extractMaxima(root), nil
}

func extractMaxima(root *etree.Element) []domain.Product {
	nodes := root.FindElements(".//product")
	products := make([]domain.Product, 0, len(nodes))

	for _, prod := range nodes {
		id := strings.TrimSpace(prod.SelectAttrValue("id", ""))
		if id == "" {
			continue
		}

		products = append(products, domain.Product{
			ProductID:   id,
			EAN:         childText(prod, "ean"),
			Name:        childText(prod, "name"),
			Producer:    childText(prod, "producer"),
			Category:    childText(prod, "category"),
			PriceGross:  parseDecimal(childText(prod, "price_gross")),
			PriceNet:    parseDecimal(childText(prod, "price_net")),
			VAT:         domain.DefaultVAT,
			Currency:    domain.DefaultCurrency,
			Stock:       parseStock(childText(prod, "stock")),
			URL:         childText(prod, "url"),
			Description: truncate(CleanHTML(childText(prod, "description")), maxDescriptionLen),
		})
	}

	return products
}
