package usecase

import (
	"time"

	"github.com/DRSN-tech/feedconv/internal/catalog"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CONVERTER USECASE

// SupplierInfo — поставщик без URL: в URL бывают токены.
type SupplierInfo struct {
	Name        string
	Description string
	Format      domain.Format
	Configured  bool
}

// ConvertReq — конвертация фида поставщика из реестра.
type ConvertReq struct {
	Supplier string
	Filter   catalog.Filter
}

// UploadReq — конвертация загруженного файла, формат определяется автоматически.
type UploadReq struct {
	FileName string
	Data     []byte
	Filter   catalog.Filter
}

// ConversionResult — отчет и готовый CSV по отфильтрованным записям.
type ConversionResult struct {
	Report   *ConversionReport
	CSV      []byte
	FileName string
}

// ConversionReport — то, что видит пользователь после конвертации.
type ConversionReport struct {
	RunID           *uuid.UUID
	Source          string
	Format          domain.Format
	ParsedCount     int
	WithStock       int
	UniqueProducers int
	FilteredCount   int
	Summary         catalog.Summary        // по отфильтрованным записям
	Breakdown       []catalog.ProducerStat // по всему фиду
	Producers       []string
	Preview         []PreviewRow
	ExportKey       *string
}

// PreviewRow — строка таблицы предпросмотра.
type PreviewRow struct {
	ProductID  string
	EAN        string
	Name       string
	Producer   string
	PriceGross decimal.Decimal
	Stock      int
}

// ExportFile — CSV из архива выгрузок.
type ExportFile struct {
	FileName string
	Data     []byte
}

// COMMAND USECASE

// CommandResult — описание вызова и ответ API.
type CommandResult struct {
	Call  domain.CallDescriptor
	Table *ResultTable   // nil, если для метода нет табличного представления
	Raw   map[string]any // ответ как есть
}

// ResultTable — табличное представление ответа.
type ResultTable struct {
	Title   string
	Total   int
	Columns []string
	Rows    [][]string
}

// AUTH USECASE

type Session struct {
	Token     string
	ExpiresAt time.Time
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const EventRunCompleted = "conversion_run.completed"

type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   string
	RunID       uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type WriteRawMessageReq struct {
	RunID   uuid.UUID
	Payload []byte
}

// MAPPERS

func NewOutboxEvent(eventType string, runID uuid.UUID, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		RunID:     runID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}

func NewWriteRawMessageReq(runID uuid.UUID, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		RunID:   runID,
		Payload: payload,
	}
}

func NewExportFile(fileName string, data []byte) *ExportFile {
	return &ExportFile{
		FileName: fileName,
		Data:     data,
	}
}

func NewPreviewRow(p domain.Product) PreviewRow {
	return PreviewRow{
		ProductID:  p.ProductID,
		EAN:        p.EAN,
		Name:       trimName(p.Name),
		Producer:   p.Producer,
		PriceGross: p.PriceGross,
		Stock:      p.Stock,
	}
}
