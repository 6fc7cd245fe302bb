package feed

import (
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/beevik/etree"
)

// preferredLang — язык, который берется из многоязычных полей IOF.
const preferredLang = "pol"

// ParseIOF разбирает фид в формате IOF 3.0 (IdoSell).
func ParseIOF(raw []byte) ([]domain.Product, error) {
	root, err := loadRoot(raw)
	if err != nil {
		return nil, err
	}

	return extractIOF(root), nil
}

func extractIOF(root *etree.Element) []domain.Product {
	nodes := root.FindElements(".//product")
	products := make([]domain.Product, 0, len(nodes))

	for _, prod := range nodes {
		id := strings.TrimSpace(prod.SelectAttrValue("id", ""))
		if id == "" {
			continue
		}

		desc := prod.SelectElement("description")
		gross, net, stock := iofPriceAndStock(prod)

		products = append(products, domain.Product{
			ProductID:    id,
			EAN:          prod.SelectAttrValue("code_on_card", ""),
			Name:         localized(desc, "name"),
			Producer:     attr(prod, "producer", "name"),
			Category:     attr(prod, "category", "name"),
			CategoryPath: attr(prod, "category_idosell", "path"),
			Version:      iofVersion(desc),
			PriceGross:   parseDecimal(gross),
			PriceNet:     parseDecimal(net),
			VAT:          parseDecimalOr(prod.SelectAttrValue("vat", ""), domain.DefaultVAT),
			Currency:     attrOr(prod, "currency", domain.DefaultCurrency),
			Stock:        stock,
			URL:          attr(prod, "card", "url"),
			Description:  truncate(localized(desc, "long_desc"), maxDescriptionLen),
		})
	}

	return products
}

// iofPriceAndStock собирает цену и остаток: sizes/price и sizes/stock перекрывают значения товара,
// цена размера используется только если брутто еще не задано, остатки размеров суммируются.
func iofPriceAndStock(prod *etree.Element) (gross, net string, stock int) {
	if price := prod.SelectElement("price"); price != nil {
		gross = price.SelectAttrValue("gross", "")
		net = price.SelectAttrValue("net", "")
	}
	if st := prod.SelectElement("stock"); st != nil {
		stock = parseStock(st.SelectAttrValue("quantity", "0"))
	}

	sizes := prod.SelectElement("sizes")
	if sizes == nil {
		return gross, net, stock
	}

	if price := sizes.SelectElement("price"); price != nil {
		gross = attrOr(price, "gross", gross)
		net = attrOr(price, "net", net)
	}
	if st := sizes.SelectElement("stock"); st != nil {
		if q := st.SelectAttr("quantity"); q != nil {
			stock = parseStock(q.Value)
		}
	}

	for _, size := range sizes.SelectElements("size") {
		if price := size.SelectElement("price"); price != nil && gross == "" {
			gross = attrOr(price, "gross", gross)
			net = attrOr(price, "net", net)
		}
		if st := size.SelectElement("stock"); st != nil {
			stock += parseStock(st.SelectAttrValue("quantity", "0"))
		}
	}

	return gross, net, stock
}

// localized возвращает очищенный текст дочернего элемента tag на языке pol,
// а при его отсутствии — текст первого такого элемента.
func localized(parent *etree.Element, tag string) string {
	if parent == nil {
		return ""
	}

	children := parent.SelectElements(tag)
	for _, child := range children {
		if child.SelectAttrValue("xml:lang", "") == preferredLang && child.Text() != "" {
			return CleanHTML(child.Text())
		}
	}

	if len(children) > 0 {
		return CleanHTML(children[0].Text())
	}

	return ""
}

func iofVersion(desc *etree.Element) string {
	if desc == nil {
		return ""
	}

	version := desc.SelectElement("version")
	if version == nil {
		return ""
	}

	for _, name := range version.SelectElements("name") {
		if name.SelectAttrValue("xml:lang", "") != preferredLang {
			continue
		}
		if text := strings.TrimSpace(name.Text()); text != "" {
			return text
		}
		break
	}

	return version.SelectAttrValue("name", "")
}

// attrOr возвращает значение атрибута key или def, если атрибута нет.
func attrOr(el *etree.Element, key, def string) string {
	if a := el.SelectAttr(key); a != nil {
		return a.Value
	}

	return def
}
