package grpc

import (
	"context"

	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const commandServiceName = "feedconv.v1.CommandService"

// CommandServiceServer — шлюз команд BaseLinker для внутренних клиентов.
// Запросы и ответы используют стандартные типы protobuf.
type CommandServiceServer interface {
	Execute(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	QuickActions(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

var commandServiceDesc = grpc.ServiceDesc{
	ServiceName: commandServiceName,
	HandlerType: (*CommandServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Execute",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(wrapperspb.StringValue)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(CommandServiceServer).Execute(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + commandServiceName + "/Execute"}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return srv.(CommandServiceServer).Execute(ctx, req.(*wrapperspb.StringValue))
				})
			},
		},
		{
			MethodName: "QuickActions",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(emptypb.Empty)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(CommandServiceServer).QuickActions(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + commandServiceName + "/QuickActions"}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return srv.(CommandServiceServer).QuickActions(ctx, req.(*emptypb.Empty))
				})
			},
		},
	},
	Metadata: "feedconv/v1/command.proto",
}

type CommandService struct {
	commandUC usecase.CommandUC
	logger    logger.Logger
}

func NewCommandService(commandUC usecase.CommandUC, logger logger.Logger) *CommandService {
	return &CommandService{commandUC: commandUC, logger: logger}
}

// Execute возвращает описание вызова, таблицу (если есть) и сырой ответ API.
func (g *CommandService) Execute(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.CommandService.Execute"

	if req.GetValue() == "" {
		return nil, GRPCErrorResponse(e.Wrap("command", e.ErrMissingFields))
	}

	res, err := g.commandUC.Execute(ctx, req.GetValue())
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(err)
	}

	out, err := structpb.NewStruct(toStructFields(res))
	if err != nil {
		g.logger.Errorf(err, "%s: encode response", op)
		return nil, GRPCErrorResponse(err)
	}

	return out, nil
}

func (g *CommandService) QuickActions(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	actions := g.commandUC.QuickActions()
	values := make([]any, 0, len(actions))
	for _, a := range actions {
		values = append(values, a)
	}

	return structpb.NewList(values)
}

// toStructFields приводит результат к типам, которые понимает structpb (json.Number -> string).
func toStructFields(res *usecase.CommandResult) map[string]any {
	fields := map[string]any{
		"description": res.Call.Description,
		"kind":        string(res.Call.Kind),
		"method":      res.Call.Method,
		"parameters":  normalize(res.Call.Params),
		"result":      normalize(res.Raw),
	}
	if res.Table != nil {
		rows := make([]any, 0, len(res.Table.Rows))
		for _, row := range res.Table.Rows {
			rows = append(rows, normalize(row))
		}
		fields["table"] = map[string]any{
			"title":   res.Table.Title,
			"total":   res.Table.Total,
			"columns": normalize(res.Table.Columns),
			"rows":    rows,
		}
	}

	return fields
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			out = append(out, normalize(val))
		}
		return out
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	case []int64:
		out := make([]any, 0, len(t))
		for _, n := range t {
			out = append(out, n)
		}
		return out
	case interface{ String() string }:
		return t.String()
	default:
		return t
	}
}
