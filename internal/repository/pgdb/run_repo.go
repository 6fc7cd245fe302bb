package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const runColumns = `id, source, origin, format, producer_filter, min_stock,
	parsed_count, filtered_count, total_stock, average_price, export_key, created_at`

// RunRepo хранит журнал конвертаций в PostgreSQL.
type RunRepo struct {
	pool *pgxpool.Pool
	conv converter.RunConverter
}

func NewRunRepo(pool *pgxpool.Pool, conv converter.RunConverter) *RunRepo {
	return &RunRepo{
		pool: pool,
		conv: conv,
	}
}

// Create пишет запуск в транзакции из контекста.
func (r *RunRepo) Create(ctx context.Context, run *domain.ConversionRun) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	m := r.conv.ToModel(run)
	query := `INSERT INTO conversion_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if _, err := tx.Exec(ctx, query,
		m.ID, m.Source, m.Origin, m.Format, m.ProducerFilter, m.MinStock,
		m.ParsedCount, m.FilteredCount, m.TotalStock, m.AveragePrice, m.ExportKey, m.CreatedAt,
	); err != nil {
		if postgresDuplicate(err) {
			return e.Wrap(whereami.WhereAmI(), errors.New("run "+run.ID.String()+" already exists"))
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// List возвращает последние запуски, новые первыми.
func (r *RunRepo) List(ctx context.Context, limit int) ([]domain.ConversionRun, error) {
	query := `SELECT ` + runColumns + ` FROM conversion_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	runs := make([]domain.ConversionRun, 0, limit)
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		runs = append(runs, *r.conv.ToEntity(m))
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return runs, nil
}

func (r *RunRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ConversionRun, error) {
	query := `SELECT ` + runColumns + ` FROM conversion_runs WHERE id = $1`

	m, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(id.String(), e.ErrRunNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToEntity(m), nil
}

func scanRun(row pgx.Row) (*converter.ConversionRunModel, error) {
	var m converter.ConversionRunModel
	err := row.Scan(
		&m.ID, &m.Source, &m.Origin, &m.Format, &m.ProducerFilter, &m.MinStock,
		&m.ParsedCount, &m.FilteredCount, &m.TotalStock, &m.AveragePrice, &m.ExportKey, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
