package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/google/uuid"
)

type RunRepository interface {
	Create(ctx context.Context, run *domain.ConversionRun) error
	List(ctx context.Context, limit int) ([]domain.ConversionRun, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ConversionRun, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ExportRepository interface {
	Upload(ctx context.Context, export *domain.ExportObject) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
