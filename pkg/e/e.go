package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Конфигурация
	ErrIncorrectEnvVariable  = fmt.Errorf("incorrect environment variable")
	ErrUnknownSupplierFormat = fmt.Errorf("unknown supplier format in registry")

	// Загрузка и разбор фидов
	ErrFetchFailed   = fmt.Errorf("feed fetch failed")
	ErrMalformedFeed = fmt.Errorf("malformed xml feed")
	ErrUnknownFormat = fmt.Errorf("unknown feed format")

	// Команды BaseLinker
	ErrUnrecognizedCommand = fmt.Errorf("unrecognized command")
	ErrMissingArgument     = fmt.Errorf("missing command argument")
	ErrUnsupportedCommand  = fmt.Errorf("unsupported command")
	ErrRemoteAPI           = fmt.Errorf("baselinker api error")
	ErrRateLimited         = fmt.Errorf("rate limit exceeded")

	// 400 Bad Request
	ErrStatusBadRequest  = fmt.Errorf("bad request")
	ErrExpectedMultipart = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields     = fmt.Errorf("missing required fields")
	ErrFileTooLarge      = fmt.Errorf("file too large")
	ErrInvalidMinStock   = fmt.Errorf("min_stock must be a non-negative integer")

	// 401 Unauthorized
	ErrUnauthorized    = fmt.Errorf("unauthorized")
	ErrInvalidPassword = fmt.Errorf("invalid password")

	// 404 Not Found
	ErrUnknownSupplier = fmt.Errorf("unknown supplier")
	ErrRunNotFound     = fmt.Errorf("conversion run not found")
	ErrExportNotFound  = fmt.Errorf("export not found")

	// 503 Service Unavailable
	ErrNotConfigured = fmt.Errorf("feature not configured")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
