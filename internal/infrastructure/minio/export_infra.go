package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/jitter"
	"github.com/DRSN-tech/feedconv/pkg/logger"
)

const (
	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

var cleanupBackoff = jitter.Backoff{Base: time.Second, Max: 8 * time.Second, Factor: jitter.DefaultJitter}

// ExportInfrastructure архивирует CSV-выгрузки и удаляет осиротевшие объекты в фоне.
type ExportInfrastructure struct {
	exportRepo  usecase.ExportRepository
	bucket      string
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewExportInfrastructure(exportRepo usecase.ExportRepository, bucket string, logger logger.Logger, shutdownCtx context.Context) *ExportInfrastructure {
	return &ExportInfrastructure{
		exportRepo:  exportRepo,
		bucket:      bucket,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// Archive кладет CSV запуска под ключ exports/<дата>/<run id>/<имя файла>.
func (m *ExportInfrastructure) Archive(ctx context.Context, run *domain.ConversionRun, fileName string, data []byte) (string, error) {
	const op = "ExportInfrastructure.Archive"

	key := ObjectKey(run, fileName)
	export := domain.NewExportObject(run.ID.String(), m.bucket, key, fileName, data)

	key, err := m.exportRepo.Upload(ctx, export)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	m.logger.Debugf("export archived: run_id=%s key=%s bytes=%d", run.ID, key, len(data))
	return key, nil
}

func (m *ExportInfrastructure) Fetch(ctx context.Context, key string) ([]byte, error) {
	const op = "ExportInfrastructure.Fetch"

	data, err := m.exportRepo.Download(ctx, key)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return data, nil
}

// CleanupExports запускает фоновую очистку указанных ключей.
func (m *ExportInfrastructure) CleanupExports(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupKeys(keys)
}

// cleanupKeys удаляет объекты с экспоненциальной задержкой между попытками.
func (m *ExportInfrastructure) cleanupKeys(keys []string) {
	defer m.wg.Done()
	const op = "ExportInfrastructure.cleanupKeys"
	m.logger.Infof("%s: cleaning up %d archived exports", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.exportRepo.Delete(ctx, key)
			if err == nil {
				break
			}
			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%s", op, key)
				break
			}

			select {
			case <-time.After(cleanupBackoff.Next(attempt)):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения фоновых очисток с учетом таймаута завершения приложения.
func (m *ExportInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("export cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

// ObjectKey строит ключ объекта выгрузки.
func ObjectKey(run *domain.ConversionRun, fileName string) string {
	return fmt.Sprintf("exports/%s/%s/%s", run.CreatedAt.Format("2006/01/02"), run.ID, fileName)
}
