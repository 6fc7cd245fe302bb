package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConversionRunModel представляет запись таблицы conversion_runs в PostgreSQL.
type ConversionRunModel struct {
	ID             uuid.UUID       `db:"id"`
	Source         string          `db:"source"`
	Origin         string          `db:"origin"`
	Format         string          `db:"format"`
	ProducerFilter string          `db:"producer_filter"`
	MinStock       int32           `db:"min_stock"`
	ParsedCount    int32           `db:"parsed_count"`
	FilteredCount  int32           `db:"filtered_count"`
	TotalStock     int64           `db:"total_stock"`
	AveragePrice   decimal.Decimal `db:"average_price"`
	ExportKey      *string         `db:"export_key"`
	CreatedAt      time.Time       `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	RunID       uuid.UUID  `db:"run_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
