package http

import (
	"time"

	"github.com/DRSN-tech/feedconv/internal/catalog"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	AuthOff   bool       `json:"auth_disabled,omitempty"`
}

type SupplierResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Configured  bool   `json:"configured"`
}

type ConvertRequest struct {
	Supplier string `json:"supplier"`
	Producer string `json:"producer,omitempty"`
	MinStock *int   `json:"min_stock,omitempty"`
}

type ReportResponse struct {
	RunID           *uuid.UUID             `json:"run_id,omitempty"`
	Source          string                 `json:"source"`
	Format          string                 `json:"format"`
	ParsedCount     int                    `json:"parsed_count"`
	WithStock       int                    `json:"with_stock"`
	UniqueProducers int                    `json:"unique_producers"`
	FilteredCount   int                    `json:"filtered_count"`
	Summary         catalog.Summary        `json:"summary"`
	Breakdown       []catalog.ProducerStat `json:"producer_breakdown"`
	Producers       []string               `json:"producers"`
	Preview         []PreviewResponse      `json:"preview"`
	FileName        string                 `json:"file_name"`
	ExportKey       *string                `json:"export_key,omitempty"`
}

type PreviewResponse struct {
	ProductID  string          `json:"product_id"`
	EAN        string          `json:"ean"`
	Name       string          `json:"name"`
	Producer   string          `json:"producer"`
	PriceGross decimal.Decimal `json:"price_gross"`
	Stock      int             `json:"stock"`
}

type CommandRequest struct {
	Command string `json:"command"`
}

type CommandResponse struct {
	Description string         `json:"description"`
	Kind        string         `json:"kind"`
	Method      string         `json:"method"`
	Parameters  map[string]any `json:"parameters"`
	Table       *TableResponse `json:"table,omitempty"`
	Result      map[string]any `json:"result"`
}

type TableResponse struct {
	Title   string     `json:"title"`
	Total   int        `json:"total"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type RunResponse struct {
	ID             uuid.UUID       `json:"id"`
	Source         string          `json:"source"`
	Origin         string          `json:"origin"`
	Format         string          `json:"format"`
	ProducerFilter string          `json:"producer_filter,omitempty"`
	MinStock       int             `json:"min_stock"`
	ParsedCount    int             `json:"parsed_count"`
	FilteredCount  int             `json:"filtered_count"`
	TotalStock     int             `json:"total_stock"`
	AveragePrice   decimal.Decimal `json:"average_price"`
	HasExport      bool            `json:"has_export"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MAPPERS

func toSupplierResponses(list []usecase.SupplierInfo) []SupplierResponse {
	res := make([]SupplierResponse, 0, len(list))
	for _, s := range list {
		res = append(res, SupplierResponse{
			Name:        s.Name,
			Description: s.Description,
			Format:      s.Format.String(),
			Configured:  s.Configured,
		})
	}
	return res
}

func toReportResponse(res *usecase.ConversionResult) *ReportResponse {
	r := res.Report
	preview := make([]PreviewResponse, 0, len(r.Preview))
	for _, p := range r.Preview {
		preview = append(preview, PreviewResponse(p))
	}

	return &ReportResponse{
		RunID:           r.RunID,
		Source:          r.Source,
		Format:          r.Format.String(),
		ParsedCount:     r.ParsedCount,
		WithStock:       r.WithStock,
		UniqueProducers: r.UniqueProducers,
		FilteredCount:   r.FilteredCount,
		Summary:         r.Summary,
		Breakdown:       r.Breakdown,
		Producers:       r.Producers,
		Preview:         preview,
		FileName:        res.FileName,
		ExportKey:       r.ExportKey,
	}
}

func toCommandResponse(res *usecase.CommandResult) *CommandResponse {
	out := &CommandResponse{
		Description: res.Call.Description,
		Kind:        string(res.Call.Kind),
		Method:      res.Call.Method,
		Parameters:  res.Call.Params,
		Result:      res.Raw,
	}
	if res.Table != nil {
		out.Table = &TableResponse{
			Title:   res.Table.Title,
			Total:   res.Table.Total,
			Columns: res.Table.Columns,
			Rows:    res.Table.Rows,
		}
	}
	return out
}

func toRunResponses(runs []domain.ConversionRun) []RunResponse {
	res := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		res = append(res, RunResponse{
			ID:             r.ID,
			Source:         r.Source,
			Origin:         string(r.Origin),
			Format:         r.Format.String(),
			ProducerFilter: r.ProducerFilter,
			MinStock:       r.MinStock,
			ParsedCount:    r.ParsedCount,
			FilteredCount:  r.FilteredCount,
			TotalStock:     r.TotalStock,
			AveragePrice:   r.AveragePrice,
			HasExport:      r.ExportKey != nil,
			CreatedAt:      r.CreatedAt,
		})
	}
	return res
}
