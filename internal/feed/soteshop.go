package feed

import (
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/beevik/etree"
)

// ParseSoteshop разбирает фид модуля xmlfeeds (Soteshop/PrestaShop).
func ParseSoteshop(raw []byte) ([]domain.Product, error) {
	root, err := loadRoot(raw)
	if err != nil {
		return nil, err
	}

	return extractSoteshop(root), nil
}

func extractSoteshop(root *etree.Element) []domain.Product {
	nodes := root.FindElements(".//product")
	products := make([]domain.Product, 0, len(nodes))

	for _, prod := range nodes {
		id := strings.TrimSpace(prod.SelectAttrValue("id", ""))
		if id == "" {
			continue
		}

		gross, net := "0", "0"
		if price := prod.SelectElement("price"); price != nil {
			gross = price.SelectAttrValue("gross", "0")
			net = price.SelectAttrValue("net", "0")
		}

		products = append(products, domain.Product{
			ProductID:   id,
			EAN:         childText(prod, "producer_code"),
			Name:        childText(prod, "name"),
			Producer:    childText(prod, "producer"),
			Category:    childText(prod, "category"),
			PriceGross:  parseDecimal(gross),
			PriceNet:    parseDecimal(net),
			VAT:         domain.DefaultVAT,
			Currency:    domain.DefaultCurrency,
			Stock:       parseStock(attr(prod, "stock", "quantity")),
			URL:         childText(prod, "url"),
			Description: truncate(CleanHTML(rawChildText(prod, "description")), maxDescriptionLen),
		})
	}

	return products
}
