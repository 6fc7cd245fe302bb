package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunOrigin — откуда взят фид для конвертации.
type RunOrigin string

const (
	OriginSupplier RunOrigin = "supplier"
	OriginUpload   RunOrigin = "upload"
)

// ConversionRun — запись журнала конвертаций. Сами товары не сохраняются, только итоги.
type ConversionRun struct {
	ID             uuid.UUID
	Source         string
	Origin         RunOrigin
	Format         Format
	ProducerFilter string
	MinStock       int
	ParsedCount    int
	FilteredCount  int
	TotalStock     int
	AveragePrice   decimal.Decimal
	ExportKey      *string // ключ CSV в архиве, если архив включен
	CreatedAt      time.Time
}

func NewConversionRun(source string, origin RunOrigin, format Format) *ConversionRun {
	return &ConversionRun{
		ID:        uuid.New(),
		Source:    source,
		Origin:    origin,
		Format:    format,
		CreatedAt: time.Now().UTC(),
	}
}
