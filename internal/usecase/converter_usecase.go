package usecase

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/DRSN-tech/feedconv/internal/catalog"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/export"
	"github.com/DRSN-tech/feedconv/internal/feed"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/DRSN-tech/feedconv/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	previewLimit   = 50
	previewNameLen = 50
	defaultRuns    = 20
	maxRuns        = 200
)

// ConverterUseCase ведет фид от получения до CSV: fetch, разбор, фильтр, сводка, выгрузка.
// Журнал запусков, outbox и архив необязательны: nil отключает соответствующий шаг.
type ConverterUseCase struct {
	suppliers  []domain.Supplier
	fetcher    FeedFetcher
	runRepo    RunRepository
	outboxRepo OutboxRepository
	encoder    EventEncoder
	dbPool     transaction.Transactional
	archive    ExportArchive
	logger     logger.Logger
	now        func() time.Time
}

func NewConverterUC(
	suppliers []domain.Supplier,
	fetcher FeedFetcher,
	runRepo RunRepository,
	outboxRepo OutboxRepository,
	encoder EventEncoder,
	dbPool transaction.Transactional,
	archive ExportArchive,
	logger logger.Logger,
) *ConverterUseCase {
	return &ConverterUseCase{
		suppliers:  suppliers,
		fetcher:    fetcher,
		runRepo:    runRepo,
		outboxRepo: outboxRepo,
		encoder:    encoder,
		dbPool:     dbPool,
		archive:    archive,
		logger:     logger,
		now:        time.Now,
	}
}

// ListSuppliers возвращает реестр в порядке конфигурации.
func (c *ConverterUseCase) ListSuppliers() []SupplierInfo {
	res := make([]SupplierInfo, 0, len(c.suppliers))
	for _, s := range c.suppliers {
		res = append(res, SupplierInfo{
			Name:        s.Name,
			Description: s.Description,
			Format:      s.Format,
			Configured:  s.URL != "",
		})
	}

	return res
}

// Convert скачивает фид поставщика и разбирает его парсером формата из реестра.
func (c *ConverterUseCase) Convert(ctx context.Context, req *ConvertReq) (*ConversionResult, error) {
	const op = "ConverterUseCase.Convert"

	if err := validateFilter(req.Filter); err != nil {
		return nil, e.Wrap(op, err)
	}

	supplier, err := c.supplier(req.Supplier)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if supplier.URL == "" {
		return nil, e.Wrap("feed url of "+supplier.Name, e.ErrNotConfigured)
	}

	c.logger.Infof("fetching feed: supplier=%s format=%s", supplier.Name, supplier.Format)
	raw, err := c.fetcher.Fetch(ctx, supplier.URL)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			fetchErr.Supplier = supplier.Name
		}
		return nil, e.Wrap(op, err)
	}

	products, err := feed.Parse(supplier.Format, raw)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.process(ctx, supplier.Name, domain.OriginSupplier, supplier.Format, products, req.Filter)
}

// ConvertUpload определяет формат загруженного файла и разбирает его.
func (c *ConverterUseCase) ConvertUpload(ctx context.Context, req *UploadReq) (*ConversionResult, error) {
	const op = "ConverterUseCase.ConvertUpload"

	if err := validateFilter(req.Filter); err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(req.Data) == 0 {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	format, products, err := feed.DetectAndParse(req.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	c.logger.Infof("detected feed format: file=%s format=%s", req.FileName, format)

	source := strings.TrimSuffix(req.FileName, path.Ext(req.FileName))
	if source == "" {
		source = "Uploaded XML"
	}

	return c.process(ctx, source, domain.OriginUpload, format, products, req.Filter)
}

func (c *ConverterUseCase) process(
	ctx context.Context,
	source string,
	origin domain.RunOrigin,
	format domain.Format,
	products []domain.Product,
	filter catalog.Filter,
) (*ConversionResult, error) {
	const op = "ConverterUseCase.process"

	filtered := filter.Apply(products)
	whole := catalog.Aggregate(products)
	producers := catalog.ProducerNames(products)

	report := &ConversionReport{
		Source:          source,
		Format:          format,
		ParsedCount:     len(products),
		WithStock:       whole.WithStock,
		UniqueProducers: len(producers),
		FilteredCount:   len(filtered),
		Summary:         catalog.Aggregate(filtered),
		Breakdown:       whole.Producers,
		Producers:       producers,
		Preview:         preview(filtered),
	}

	data, err := export.EncodeCSV(filtered)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	fileName := export.FileName(source, c.now())

	c.logger.Infof("converted feed: source=%s format=%s parsed=%d filtered=%d",
		source, format, report.ParsedCount, report.FilteredCount)

	if c.runRepo != nil {
		run := newRun(source, origin, format, filter, report)
		if err := c.record(ctx, run, fileName, data); err != nil {
			// Журнал вспомогательный: конвертация уже выполнена
			c.logger.Errorf(err, "failed to record conversion run %s", run.ID)
		} else {
			report.RunID = &run.ID
			report.ExportKey = run.ExportKey
		}
	}

	return &ConversionResult{
		Report:   report,
		CSV:      data,
		FileName: fileName,
	}, nil
}

// record архивирует CSV и в одной транзакции пишет запуск и событие outbox.
// Если транзакция не удалась, архивный объект удаляется в фоне.
func (c *ConverterUseCase) record(ctx context.Context, run *domain.ConversionRun, fileName string, data []byte) (err error) {
	const op = "ConverterUseCase.record"

	if c.archive != nil {
		key, err := c.archive.Archive(ctx, run, fileName, data)
		if err != nil {
			c.logger.Warnf("export archive failed, run %s stored without export: %v", run.ID, err)
		} else {
			run.ExportKey = &key
		}
	}
	defer func() {
		if err != nil && run.ExportKey != nil {
			c.logger.Warnf("Cleaning up orphaned export after transaction failure. run_id: %s", run.ID)
			c.archive.CleanupExports([]string{*run.ExportKey})
			run.ExportKey = nil
		}
	}()

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	if err = c.runRepo.Create(ctx, run); err != nil {
		return e.Wrap(op, err)
	}

	if c.outboxRepo != nil && c.encoder != nil {
		var payload []byte
		payload, err = c.encoder.EncodeRunCompleted(run)
		if err != nil {
			return e.Wrap(op, err)
		}
		if _, err = c.outboxRepo.Create(ctx, NewOutboxEvent(EventRunCompleted, run.ID, payload)); err != nil {
			return e.Wrap(op, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// ListRuns возвращает последние запуски, новые первыми.
func (c *ConverterUseCase) ListRuns(ctx context.Context, limit int) ([]domain.ConversionRun, error) {
	const op = "ConverterUseCase.ListRuns"

	if c.runRepo == nil {
		return nil, e.Wrap("conversion history", e.ErrNotConfigured)
	}

	switch {
	case limit <= 0:
		limit = defaultRuns
	case limit > maxRuns:
		limit = maxRuns
	}

	runs, err := c.runRepo.List(ctx, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return runs, nil
}

// GetExport отдает заархивированный CSV запуска.
func (c *ConverterUseCase) GetExport(ctx context.Context, runID uuid.UUID) (*ExportFile, error) {
	const op = "ConverterUseCase.GetExport"

	if c.runRepo == nil || c.archive == nil {
		return nil, e.Wrap("export archive", e.ErrNotConfigured)
	}

	run, err := c.runRepo.Get(ctx, runID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if run.ExportKey == nil {
		return nil, e.Wrap(runID.String(), e.ErrExportNotFound)
	}

	data, err := c.archive.Fetch(ctx, *run.ExportKey)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewExportFile(path.Base(*run.ExportKey), data), nil
}

func (c *ConverterUseCase) supplier(name string) (*domain.Supplier, error) {
	for i := range c.suppliers {
		if c.suppliers[i].Name == name {
			return &c.suppliers[i], nil
		}
	}

	return nil, &domain.UnknownSupplierError{Name: name}
}

func validateFilter(f catalog.Filter) error {
	if f.MinStock != nil && *f.MinStock < 0 {
		return e.ErrInvalidMinStock
	}

	return nil
}

func newRun(source string, origin domain.RunOrigin, format domain.Format, filter catalog.Filter, report *ConversionReport) *domain.ConversionRun {
	run := domain.NewConversionRun(source, origin, format)
	run.ProducerFilter = filter.Producer
	if filter.MinStock != nil {
		run.MinStock = *filter.MinStock
	}
	run.ParsedCount = report.ParsedCount
	run.FilteredCount = report.FilteredCount
	run.TotalStock = report.Summary.TotalStock
	run.AveragePrice = report.Summary.AveragePrice

	return run
}

func preview(products []domain.Product) []PreviewRow {
	n := min(len(products), previewLimit)
	rows := make([]PreviewRow, 0, n)
	for _, p := range products[:n] {
		rows = append(rows, NewPreviewRow(p))
	}

	return rows
}

func trimName(name string) string {
	r := []rune(name)
	if len(r) <= previewNameLen {
		return name
	}

	return string(r[:previewNameLen]) + "..."
}
