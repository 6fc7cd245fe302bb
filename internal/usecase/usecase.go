package usecase

import (
	"context"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/google/uuid"
)

type ConverterUC interface {
	ListSuppliers() []SupplierInfo
	Convert(ctx context.Context, req *ConvertReq) (*ConversionResult, error)
	ConvertUpload(ctx context.Context, req *UploadReq) (*ConversionResult, error)
	ListRuns(ctx context.Context, limit int) ([]domain.ConversionRun, error)
	GetExport(ctx context.Context, runID uuid.UUID) (*ExportFile, error)
}

type CommandUC interface {
	Execute(ctx context.Context, input string) (*CommandResult, error)
	QuickActions() []string
}

type AuthUC interface {
	Enabled() bool
	Login(password string) (*Session, error)
	Verify(token string) error
}
