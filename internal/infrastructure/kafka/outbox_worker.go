package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/jitter"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	outboxChannel = "outbox_pending"
	batchSize     = 10
	waitTimeout   = 30 * time.Second
	staleAfter    = 5 * time.Minute
	sweepInterval = time.Minute
)

var reconnectBackoff = jitter.Backoff{Base: time.Second, Max: 30 * time.Second, Factor: jitter.DefaultJitter}

// OutboxWorker переносит события из outbox_events в Kafka.
// При старте разбирает накопившееся, дальше просыпается по NOTIFY и по таймеру.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-w.stop
		cancel()
	}()

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.sweep(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.listen(ctx)
	}()
}

// Stop останавливает воркер и ждет завершения горутин.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

// sweep разбирает очередь при старте и затем периодически, подбирая зависшие события.
func (w *OutboxWorker) sweep(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			released, err := w.repo.ReleaseStale(ctx, staleAfter)
			if err != nil {
				w.logger.Warnf("release stale outbox events failed: %v", err)
			} else if released > 0 {
				w.logger.Infof("released %d stale outbox events", released)
			}
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) listen(ctx context.Context) {
	var conn *pgx.Conn
	defer func() {
		if conn != nil {
			conn.Close(context.Background())
		}
	}()

	for attempt := 0; ; {
		if conn == nil {
			c, err := w.connect(ctx)
			if err != nil {
				w.logger.Warnf("outbox listener connect failed: %v", err)
				if !sleep(ctx, reconnectBackoff.Next(attempt)) {
					return
				}
				attempt++
				continue
			}
			conn, attempt = c, 0
		}

		waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
		conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("Subscribed to '%s' channel", outboxChannel)
	return conn, nil
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch отправляет пачку событий. Неотправленные остаются в processing
// и вернутся в очередь через ReleaseStale.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, batchSize)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	sent := 0
	for _, event := range events {
		if err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.RunID, event.Payload)); err != nil {
			if isRetryableError(err) {
				w.logger.Warnf("temporary Kafka failure, event %s will be retried: %v", event.EventID, err)
			} else {
				w.logger.Errorf(err, "permanent Kafka failure, event %s", event.EventID)
			}
			continue
		}
		sent++
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	// Если не ушло ни одного события, брокер недоступен: не крутимся впустую
	return sent > 0 && len(events) == batchSize, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
		"leader not available",
	} {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
