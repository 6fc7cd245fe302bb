package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueRepo struct {
	pending   []*usecase.OutboxEvent
	processed []int64
}

func (q *queueRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	q.pending = append(q.pending, event)
	return event, nil
}

func (q *queueRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	n := min(limit, len(q.pending))
	batch := q.pending[:n]
	q.pending = q.pending[n:]
	return batch, nil
}

func (q *queueRepo) MarkAsProcessed(_ context.Context, id int64) error {
	q.processed = append(q.processed, id)
	return nil
}

func (q *queueRepo) ReleaseStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type recordingProducer struct {
	sent []*usecase.WriteRawMessageReq
	err  error
}

func (p *recordingProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, req)
	return nil
}

func queue(n int) *queueRepo {
	q := &queueRepo{}
	for i := 0; i < n; i++ {
		ev := usecase.NewOutboxEvent(usecase.EventRunCompleted, uuid.New(), []byte{byte(i)})
		ev.ID = int64(i + 1)
		q.pending = append(q.pending, ev)
	}
	return q
}

func TestDrainSendsAllEvents(t *testing.T) {
	repo := queue(23)
	producer := &recordingProducer{}
	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "")

	w.drain(context.Background())

	assert.Len(t, producer.sent, 23)
	assert.Len(t, repo.processed, 23)
	assert.Empty(t, repo.pending)
}

func TestDrainStopsWhenBrokerDown(t *testing.T) {
	repo := queue(25)
	producer := &recordingProducer{err: errors.New("dial tcp: connection refused")}
	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "")

	w.drain(context.Background())

	assert.Empty(t, repo.processed)
	// первая пачка взята и не отправлена, остальное ждет следующего прохода
	assert.Len(t, repo.pending, 25-batchSize)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("read tcp: i/o timeout")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}

func TestEncodeRunCompleted(t *testing.T) {
	run := domain.NewConversionRun("Maxima", domain.OriginSupplier, domain.FormatMaxima)
	run.ParsedCount = 10
	run.FilteredCount = 4
	run.TotalStock = 31
	run.AveragePrice = decimal.RequireFromString("12.5")
	key := "exports/x.csv"
	run.ExportKey = &key

	payload, err := EncodeRunCompleted(run)
	require.NoError(t, err)

	fields, err := DecodeRunCompleted(payload)
	require.NoError(t, err)
	assert.Equal(t, run.ID.String(), fields["run_id"])
	assert.Equal(t, "Maxima", fields["format"])
	assert.Equal(t, float64(4), fields["filtered_count"])
	assert.Equal(t, "12.50", fields["average_price"])
	assert.Equal(t, key, fields["export_key"])
}
