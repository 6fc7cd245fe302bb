package domain

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/DRSN-tech/feedconv/pkg/e"
)

// FetchError — фид не удалось получить по URL (сеть, таймаут, статус не 2xx).
// Supplier заполняет usecase: загрузчик знает только URL.
type FetchError struct {
	Supplier string
	URL      string
	Err      error
}

func (f *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", f.URL, f.Err)
}

// Public — текст для клиента: поставщик и причина без URL, в URL фидов бывают токены.
func (f *FetchError) Public() string {
	cause := f.Err
	var urlErr *url.Error
	if errors.As(cause, &urlErr) {
		cause = urlErr.Err
	}

	if f.Supplier == "" {
		return fmt.Sprintf("%v: %v", e.ErrFetchFailed, cause)
	}
	return fmt.Sprintf("%v for supplier %q: %v", e.ErrFetchFailed, f.Supplier, cause)
}

func (f *FetchError) Unwrap() []error {
	return []error{e.ErrFetchFailed, f.Err}
}

// ParseError — документ не является корректным XML.
type ParseError struct {
	Err error
}

func (p *ParseError) Error() string {
	return fmt.Sprintf("parse feed: %v", p.Err)
}

func (p *ParseError) Unwrap() []error {
	return []error{e.ErrMalformedFeed, p.Err}
}

// UnknownFormatError — корректный XML, но ни один из известных форматов не подошел.
type UnknownFormatError struct {
	Root string
}

func (u *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown feed format (root element <%s>)", u.Root)
}

func (u *UnknownFormatError) Unwrap() error {
	return e.ErrUnknownFormat
}

// UnknownSupplierError — поставщик отсутствует в реестре.
type UnknownSupplierError struct {
	Name string
}

func (u *UnknownSupplierError) Error() string {
	return fmt.Sprintf("unknown supplier %q", u.Name)
}

func (u *UnknownSupplierError) Unwrap() error {
	return e.ErrUnknownSupplier
}

// UnrecognizedCommandError — текст команды не подошел ни под одно правило.
type UnrecognizedCommandError struct {
	Input string
}

func (u *UnrecognizedCommandError) Error() string {
	return fmt.Sprintf("unrecognized command %q", u.Input)
}

func (u *UnrecognizedCommandError) Unwrap() error {
	return e.ErrUnrecognizedCommand
}

// MissingArgumentError — правило совпало, но в тексте нет обязательного аргумента.
type MissingArgumentError struct {
	Input string
	Hint  string
}

func (m *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s (command %q)", m.Hint, m.Input)
}

func (m *MissingArgumentError) Unwrap() error {
	return e.ErrMissingArgument
}

// UnsupportedCommandError — команда распознана, но сервис ее не выполняет.
type UnsupportedCommandError struct {
	Input string
	Hint  string
}

func (u *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("%s (command %q)", u.Hint, u.Input)
}

func (u *UnsupportedCommandError) Unwrap() error {
	return e.ErrUnsupportedCommand
}

// RemoteAPIError — BaseLinker ответил status=ERROR.
type RemoteAPIError struct {
	Method  string
	Code    string
	Message string
}

func (r *RemoteAPIError) Error() string {
	return fmt.Sprintf("baselinker %s: %s (%s)", r.Method, r.Message, r.Code)
}

func (r *RemoteAPIError) Unwrap() error {
	return e.ErrRemoteAPI
}
