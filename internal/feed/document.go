// Package feed разбирает XML-фиды поставщиков в нормализованные записи товаров.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/beevik/etree"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// loadRoot проверяет, что документ целиком корректен, и возвращает корневой элемент.
// Любая синтаксическая ошибка, включая обрыв документа, дает ParseError.
func loadRoot(raw []byte) (*etree.Element, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if err := validate(raw); err != nil {
		return nil, &domain.ParseError{Err: err}
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, &domain.ParseError{Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &domain.ParseError{Err: errors.New("document has no root element")}
	}

	return root, nil
}

// validate прогоняет документ через строгий декодер: etree прощает незакрытые элементы.
func validate(raw []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader

	seenRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			seenRoot = true
		}
	}

	if !seenRoot {
		return errors.New("document has no root element")
	}

	return nil
}

// charsetReader декодирует фиды в ISO-8859-2, windows-1250 и прочих объявленных кодировках.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}

	return transform.NewReader(input, enc.NewDecoder()), nil
}
