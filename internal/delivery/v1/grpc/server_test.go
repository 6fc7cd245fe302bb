package grpc

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type stubCommands struct {
	result *usecase.CommandResult
	err    error
	input  string
}

func (s *stubCommands) Execute(_ context.Context, input string) (*usecase.CommandResult, error) {
	s.input = input
	return s.result, s.err
}

func (s *stubCommands) QuickActions() []string {
	return []string{"list products", "get inventories"}
}

type stubAuth struct {
	enabled bool
	token   string
}

func (s *stubAuth) Enabled() bool { return s.enabled }

func (s *stubAuth) Login(string) (*usecase.Session, error) { return nil, nil }

func (s *stubAuth) Verify(token string) error {
	if token != s.token {
		return e.Wrap("session", e.ErrUnauthorized)
	}
	return nil
}

func startServer(t *testing.T, cmds usecase.CommandUC, auth usecase.AuthUC) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&cfg.GRPCConfig{}, auth, logger.NewNopLogger())
	srv.RegisterServices(cmds)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		_ = srv.Stop(context.Background())
	})

	return conn
}

func execute(ctx context.Context, conn *grpc.ClientConn, input string) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := conn.Invoke(ctx, "/"+commandServiceName+"/Execute", wrapperspb.String(input), out)
	return out, err
}

func TestCommandService_Execute(t *testing.T) {
	cmds := &stubCommands{result: &usecase.CommandResult{
		Call: domain.CallDescriptor{
			Kind:        domain.KindListInventories,
			Method:      "getInventories",
			Params:      map[string]any{},
			Description: "Listing inventories",
		},
		Table: &usecase.ResultTable{
			Title:   "Inventories",
			Total:   1,
			Columns: []string{"ID", "Name", "Products"},
			Rows:    [][]string{{"81501", "Main", "12"}},
		},
		Raw: map[string]any{
			"status":      "SUCCESS",
			"inventories": []any{map[string]any{"inventory_id": json.Number("81501"), "name": "Main"}},
		},
	}}
	conn := startServer(t, cmds, &stubAuth{})

	out, err := execute(context.Background(), conn, "get inventories")
	require.NoError(t, err)
	assert.Equal(t, "get inventories", cmds.input)

	fields := out.AsMap()
	assert.Equal(t, "getInventories", fields["method"])
	assert.Equal(t, "list_inventories", fields["kind"])

	table := fields["table"].(map[string]any)
	assert.Equal(t, "Inventories", table["title"])
	assert.Equal(t, []any{[]any{"81501", "Main", "12"}}, table["rows"])

	inventories := fields["result"].(map[string]any)["inventories"].([]any)
	assert.Equal(t, "81501", inventories[0].(map[string]any)["inventory_id"])
}

func TestCommandService_ExecuteErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"unrecognized", &domain.UnrecognizedCommandError{Input: "fly"}, codes.InvalidArgument},
		{"not configured", e.Wrap("baselinker token", e.ErrNotConfigured), codes.FailedPrecondition},
		{"rate limited", e.Wrap("baselinker", e.ErrRateLimited), codes.ResourceExhausted},
		{"unknown", assert.AnError, codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn := startServer(t, &stubCommands{err: tc.err}, &stubAuth{})

			_, err := execute(context.Background(), conn, "fly")
			assert.Equal(t, tc.code, status.Code(err))
		})
	}
}

func TestCommandService_EmptyInput(t *testing.T) {
	conn := startServer(t, &stubCommands{}, &stubAuth{})

	_, err := execute(context.Background(), conn, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCommandService_QuickActions(t *testing.T) {
	conn := startServer(t, &stubCommands{}, &stubAuth{})

	out := new(structpb.ListValue)
	err := conn.Invoke(context.Background(), "/"+commandServiceName+"/QuickActions", &emptypb.Empty{}, out)
	require.NoError(t, err)
	assert.Equal(t, []any{"list products", "get inventories"}, out.AsSlice())
}

func TestAuthInterceptor(t *testing.T) {
	cmds := &stubCommands{result: &usecase.CommandResult{Call: domain.CallDescriptor{Method: "getInventories"}}}
	conn := startServer(t, cmds, &stubAuth{enabled: true, token: "good"})

	_, err := execute(context.Background(), conn, "get inventories")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer good")
	_, err = execute(ctx, conn, "get inventories")
	assert.NoError(t, err)

	// health-check доступен без токена
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: commandServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}
