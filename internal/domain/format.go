package domain

import "strings"

// Format — тег схемы XML-фида поставщика.
type Format string

const (
	FormatIOF      Format = "IOF"
	FormatSoteshop Format = "Soteshop"
	FormatMaxima   Format = "Maxima"
)

// ParseFormat сопоставляет строку из реестра поставщиков с тегом формата без учета регистра.
func ParseFormat(s string) (Format, bool) {
	for _, f := range []Format{FormatIOF, FormatSoteshop, FormatMaxima} {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, true
		}
	}
	return "", false
}

func (f Format) String() string {
	return string(f)
}
