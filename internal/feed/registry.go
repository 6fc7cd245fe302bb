package feed

import (
	"fmt"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/beevik/etree"
)

// ParserFunc — разбор сырого фида одного формата в записи в порядке документа.
type ParserFunc func(raw []byte) ([]domain.Product, error)

// Parsers — реестр парсеров. Новый формат добавляется сюда и в detectRules одновременно.
var Parsers = map[domain.Format]ParserFunc{
	domain.FormatIOF:      ParseIOF,
	domain.FormatSoteshop: ParseSoteshop,
	domain.FormatMaxima:   ParseMaxima,
}

var extractors = map[domain.Format]func(root *etree.Element) []domain.Product{
	domain.FormatIOF:      extractIOF,
	domain.FormatSoteshop: extractSoteshop,
	domain.FormatMaxima:   extractMaxima,
}

// Parse разбирает фид заранее известного формата.
func Parse(format domain.Format, raw []byte) ([]domain.Product, error) {
	parse, ok := Parsers[format]
	if !ok {
		return nil, e.Wrap(fmt.Sprintf("format %q", format), e.ErrUnknownFormat)
	}

	return parse(raw)
}

// DetectAndParse определяет формат загруженного файла и разбирает его за один проход по XML.
func DetectAndParse(raw []byte) (domain.Format, []domain.Product, error) {
	root, err := loadRoot(raw)
	if err != nil {
		return "", nil, err
	}

	format, err := detectRoot(root)
	if err != nil {
		return "", nil, err
	}

	return format, extractors[format](root), nil
}
