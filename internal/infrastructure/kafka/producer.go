package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Producer публикует события о запусках конвертации. Ключ сообщения — id запуска.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

func (p *Producer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.RunID.String()),
		Value: req.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(usecase.EventRunCompleted)},
		},
	})
}

// EncodeRunCompleted сериализует итоги запуска в google.protobuf.Struct.
func (p *Producer) EncodeRunCompleted(run *domain.ConversionRun) ([]byte, error) {
	return EncodeRunCompleted(run)
}

func EncodeRunCompleted(run *domain.ConversionRun) ([]byte, error) {
	fields := map[string]any{
		"run_id":          run.ID.String(),
		"source":          run.Source,
		"origin":          string(run.Origin),
		"format":          run.Format.String(),
		"producer_filter": run.ProducerFilter,
		"min_stock":       run.MinStock,
		"parsed_count":    run.ParsedCount,
		"filtered_count":  run.FilteredCount,
		"total_stock":     run.TotalStock,
		"average_price":   run.AveragePrice.StringFixed(2),
		"created_at":      run.CreatedAt.Format(time.RFC3339Nano),
	}
	if run.ExportKey != nil {
		fields["export_key"] = *run.ExportKey
	}

	event, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return proto.Marshal(event)
}

// DecodeRunCompleted — обратное преобразование, для потребителей и тестов.
func DecodeRunCompleted(payload []byte) (map[string]any, error) {
	var event structpb.Struct
	if err := proto.Unmarshal(payload, &event); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return event.AsMap(), nil
}

// EnsureTopic создает топик, если его нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		p.logger.Infof("kafka topic created: %s", p.cfg.Topic)
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
