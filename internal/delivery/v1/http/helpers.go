package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/feedconv/internal/catalog"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/jimlawless/whereami"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, kind, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

type errorMapping struct {
	target error
	status int
	kind   string
}

// errorMappings проверяются по порядку, побеждает первое совпадение.
var errorMappings = []errorMapping{
	{e.ErrFetchFailed, http.StatusBadGateway, "fetch_error"},
	{e.ErrMalformedFeed, http.StatusUnprocessableEntity, "parse_error"},
	{e.ErrUnknownFormat, http.StatusUnprocessableEntity, "unknown_format"},
	{e.ErrUnrecognizedCommand, http.StatusUnprocessableEntity, "unrecognized_command"},
	{e.ErrMissingArgument, http.StatusUnprocessableEntity, "missing_argument"},
	{e.ErrUnsupportedCommand, http.StatusUnprocessableEntity, "unsupported_command"},
	{e.ErrRemoteAPI, http.StatusBadGateway, "remote_api_error"},
	{e.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{e.ErrUnknownSupplier, http.StatusNotFound, "unknown_supplier"},
	{e.ErrRunNotFound, http.StatusNotFound, "not_found"},
	{e.ErrExportNotFound, http.StatusNotFound, "not_found"},
	{e.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{e.ErrInvalidPassword, http.StatusUnauthorized, "unauthorized"},
	{e.ErrNotConfigured, http.StatusServiceUnavailable, "not_configured"},
	{e.ErrStatusBadRequest, http.StatusBadRequest, "bad_request"},
	{e.ErrExpectedMultipart, http.StatusBadRequest, "bad_request"},
	{e.ErrMissingFields, http.StatusBadRequest, "bad_request"},
	{e.ErrInvalidMinStock, http.StatusBadRequest, "bad_request"},
	{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
}

// ToHTTPResponse сопоставляет ошибку со статусом и телом ответа.
// В тело попадает текст доменной ошибки с исходным вводом; URL фидов наружу не отдаются.
func ToHTTPResponse(err error) *ErrorResponse {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return NewErrorResponse(m.status, m.kind, publicMessage(err, m.target))
		}
	}

	return NewErrorResponse(http.StatusInternalServerError, "internal", e.ErrInternalServerError.Error())
}

func publicMessage(err, sentinel error) string {
	var (
		fetchErr     *domain.FetchError
		parseErr     *domain.ParseError
		formatErr    *domain.UnknownFormatError
		supplierErr  *domain.UnknownSupplierError
		unrecognized *domain.UnrecognizedCommandError
		missingArg   *domain.MissingArgumentError
		unsupported  *domain.UnsupportedCommandError
		remoteErr    *domain.RemoteAPIError
	)

	switch {
	case errors.As(err, &fetchErr):
		return fetchErr.Public()
	case errors.As(err, &parseErr):
		return parseErr.Error()
	case errors.As(err, &formatErr):
		return formatErr.Error()
	case errors.As(err, &supplierErr):
		return supplierErr.Error()
	case errors.As(err, &unrecognized):
		return unrecognized.Error()
	case errors.As(err, &missingArg):
		return missingArg.Error()
	case errors.As(err, &unsupported):
		return unsupported.Error()
	case errors.As(err, &remoteErr):
		return remoteErr.Error()
	default:
		return sentinel.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	resp := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	json.NewEncoder(w).Encode(resp)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteCSV отдает CSV как вложение.
func WriteCSV(w http.ResponseWriter, fileName string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// parseMinStock: пустая строка — фильтр не задан.
func parseMinStock(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil, e.Wrap(s, e.ErrInvalidMinStock)
	}

	return &v, nil
}

func newFilter(producer string, minStock *int) catalog.Filter {
	return catalog.Filter{Producer: strings.TrimSpace(producer), MinStock: minStock}
}

func wantsCSV(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("output"), "csv")
}
