package feed

import (
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/beevik/etree"
)

// formatRule — структурный признак формата. Правила проверяются по порядку, побеждает первое совпавшее.
type formatRule struct {
	format  domain.Format
	matches func(root *etree.Element) bool
}

var detectRules = []formatRule{
	{format: domain.FormatIOF, matches: isIOF},
	{format: domain.FormatSoteshop, matches: isSoteshop},
	{format: domain.FormatMaxima, matches: isMaxima},
}

// Detect определяет формат фида по структуре документа.
func Detect(raw []byte) (domain.Format, error) {
	root, err := loadRoot(raw)
	if err != nil {
		return "", err
	}

	return detectRoot(root)
}

func detectRoot(root *etree.Element) (domain.Format, error) {
	for _, rule := range detectRules {
		if rule.matches(root) {
			return rule.format, nil
		}
	}

	return "", &domain.UnknownFormatError{Root: root.Tag}
}

// isIOF: объявленный file_format="IOF" или корень <products> с товарами, у которых есть <producer name="...">.
// Текстовый <producer> бывает у Maxima и признаком IOF не считается.
func isIOF(root *etree.Element) bool {
	if strings.EqualFold(root.SelectAttrValue("file_format", ""), "IOF") {
		return true
	}

	return root.Tag == "products" && root.FindElement(".//product/producer[@name]") != nil
}

func isSoteshop(root *etree.Element) bool {
	return root.Tag == "offer" && root.FindElement(".//products/product") != nil
}

func isMaxima(root *etree.Element) bool {
	return root.FindElement(".//product") != nil
}
