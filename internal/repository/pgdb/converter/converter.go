package converter

import (
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
)

// RunConverter преобразует ConversionRun между domain и моделью PostgreSQL.
type RunConverter interface {
	ToModel(entity *domain.ConversionRun) *ConversionRunModel
	ToEntity(model *ConversionRunModel) *domain.ConversionRun
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type RunConverterImpl struct{}

func (RunConverterImpl) ToModel(entity *domain.ConversionRun) *ConversionRunModel {
	if entity == nil {
		return nil
	}

	return &ConversionRunModel{
		ID:             entity.ID,
		Source:         entity.Source,
		Origin:         string(entity.Origin),
		Format:         entity.Format.String(),
		ProducerFilter: entity.ProducerFilter,
		MinStock:       int32(entity.MinStock),
		ParsedCount:    int32(entity.ParsedCount),
		FilteredCount:  int32(entity.FilteredCount),
		TotalStock:     int64(entity.TotalStock),
		AveragePrice:   entity.AveragePrice,
		ExportKey:      entity.ExportKey,
		CreatedAt:      entity.CreatedAt,
	}
}

func (RunConverterImpl) ToEntity(model *ConversionRunModel) *domain.ConversionRun {
	if model == nil {
		return nil
	}

	// Формат в БД пишется только из domain.Format, неизвестное значение оставляем как есть
	format, ok := domain.ParseFormat(model.Format)
	if !ok {
		format = domain.Format(model.Format)
	}

	return &domain.ConversionRun{
		ID:             model.ID,
		Source:         model.Source,
		Origin:         domain.RunOrigin(model.Origin),
		Format:         format,
		ProducerFilter: model.ProducerFilter,
		MinStock:       int(model.MinStock),
		ParsedCount:    int(model.ParsedCount),
		FilteredCount:  int(model.FilteredCount),
		TotalStock:     int(model.TotalStock),
		AveragePrice:   model.AveragePrice,
		ExportKey:      model.ExportKey,
		CreatedAt:      model.CreatedAt,
	}
}

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		RunID:       entity.RunID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		RunID:       model.RunID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	if models == nil {
		return nil
	}

	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}

	return res
}
