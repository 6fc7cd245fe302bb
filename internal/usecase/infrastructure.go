package usecase

import (
	"context"

	"github.com/DRSN-tech/feedconv/internal/domain"
)

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type BaseLinkerAPI interface {
	Call(ctx context.Context, method string, params map[string]any) (map[string]any, error)
}

type ExportArchive interface {
	Archive(ctx context.Context, run *domain.ConversionRun, fileName string, data []byte) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
	CleanupExports(keys []string)
}

// EventEncoder сериализует событие о завершенном запуске для outbox.
type EventEncoder interface {
	EncodeRunCompleted(run *domain.ConversionRun) ([]byte, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
