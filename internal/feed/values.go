package feed

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// maxDescriptionLen — максимальная длина описания в символах.
const maxDescriptionLen = 500

var tagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML удаляет теги, раскрывает HTML-сущности и схлопывает пробелы.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}

	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	return strings.Join(strings.Fields(s), " ")
}

// truncate обрезает строку до n символов (рун), а не байт.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	return string(runes[:n])
}

// parseDecimal разбирает число из фида. Пустое или битое значение дает 0.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// parseDecimalOr возвращает def, если значение отсутствует, и 0, если оно битое.
func parseDecimalOr(s string, def decimal.Decimal) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return def
	}

	return parseDecimal(s)
}

// parseStock разбирает остаток: дробная часть отбрасывается, отрицательные и битые значения дают 0.
func parseStock(s string) int {
	n := int(parseDecimal(s).IntPart())
	if n < 0 {
		return 0
	}

	return n
}

// attr возвращает значение атрибута дочернего элемента tag или пустую строку.
func attr(parent *etree.Element, tag, key string) string {
	if parent == nil {
		return ""
	}

	child := parent.SelectElement(tag)
	if child == nil {
		return ""
	}

	return child.SelectAttrValue(key, "")
}

// childText возвращает обрезанный текст дочернего элемента tag или пустую строку.
func childText(parent *etree.Element, tag string) string {
	if parent == nil {
		return ""
	}

	child := parent.SelectElement(tag)
	if child == nil {
		return ""
	}

	return strings.TrimSpace(child.Text())
}

// rawChildText — как childText, но без обрезки: для полей, которые потом идут через CleanHTML.
func rawChildText(parent *etree.Element, tag string) string {
	if parent == nil {
		return ""
	}

	child := parent.SelectElement(tag)
	if child == nil {
		return ""
	}

	return child.Text()
}
