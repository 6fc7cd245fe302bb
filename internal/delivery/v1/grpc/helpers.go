package grpc

import (
	"errors"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type codeMapping struct {
	target error
	code   codes.Code
}

var codeMappings = []codeMapping{
	{e.ErrUnrecognizedCommand, codes.InvalidArgument},
	{e.ErrMissingArgument, codes.InvalidArgument},
	{e.ErrMissingFields, codes.InvalidArgument},
	{e.ErrUnsupportedCommand, codes.Unimplemented},
	{e.ErrRemoteAPI, codes.Unavailable},
	{e.ErrRateLimited, codes.ResourceExhausted},
	{e.ErrNotConfigured, codes.FailedPrecondition},
	{e.ErrUnauthorized, codes.Unauthenticated},
}

// GRPCErrorResponse переводит ошибку usecase в статус gRPC. Неизвестные ошибки скрываются за Internal.
func GRPCErrorResponse(err error) error {
	for _, m := range codeMappings {
		if errors.Is(err, m.target) {
			return status.Error(m.code, publicMessage(err, m.target))
		}
	}

	return status.Error(codes.Internal, e.ErrInternalServerError.Error())
}

func publicMessage(err, sentinel error) string {
	var (
		unrecognized *domain.UnrecognizedCommandError
		missing      *domain.MissingArgumentError
		unsupported  *domain.UnsupportedCommandError
		remote       *domain.RemoteAPIError
	)

	switch {
	case errors.As(err, &unrecognized):
		return unrecognized.Error()
	case errors.As(err, &missing):
		return missing.Error()
	case errors.As(err, &unsupported):
		return unsupported.Error()
	case errors.As(err, &remote):
		return remote.Error()
	default:
		return sentinel.Error()
	}
}
