package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/miradorstack/sales-insights/internal/config"
)

func startGRPC(t *testing.T, svc DashboardService) *grpc.ClientConn {
	t.Helper()

	server, err := NewServer(config.ServerConfig{GRPCAddress: "127.0.0.1:0"}, NewDashboardGRPC(discardLogger(), svc))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go func() { _ = server.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(server.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func method(name string) string {
	return "/" + DashboardServiceName + "/" + name
}

func TestGRPCRecompute(t *testing.T) {
	conn := startGRPC(t, newTestService(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{
		"products": []any{"MacBook"},
		"start":    "2024-01-01",
		"end":      "2024-01-31",
		"limit":    3,
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	out := &structpb.Struct{}
	if err := conn.Invoke(ctx, method("Recompute"), req, out); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	fields := out.GetFields()
	if got := fields["rows"].GetNumberValue(); got != 31 {
		t.Fatalf("expected 31 rows, got %v", got)
	}
	if got := len(fields["preview"].GetListValue().GetValues()); got != 3 {
		t.Fatalf("expected 3 preview rows, got %d", got)
	}
	if _, ok := fields["View"]; ok {
		t.Fatalf("view rows must not be serialised")
	}
	summary := fields["summary"].GetStructValue().GetFields()
	if summary["total_sales"].GetNumberValue() <= 0 {
		t.Fatalf("expected positive total sales, got %v", summary["total_sales"])
	}
}

func TestGRPCRecomputeInvalidArgument(t *testing.T) {
	conn := startGRPC(t, newTestService(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := structpb.NewStruct(map[string]any{"regions": []any{"Antarctica"}})
	err := conn.Invoke(ctx, method("Recompute"), req, &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if !strings.Contains(status.Convert(err).Message(), "regions") {
		t.Fatalf("expected message to name the field, got %q", status.Convert(err).Message())
	}
}

func TestGRPCOptionsAndExport(t *testing.T) {
	conn := startGRPC(t, newTestService(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := &structpb.Struct{}
	if err := conn.Invoke(ctx, method("Options"), &emptypb.Empty{}, opts); err != nil {
		t.Fatalf("Options: %v", err)
	}
	if got := opts.GetFields()["min_date"].GetStringValue(); got != "2024-01-01" {
		t.Fatalf("unexpected min date %q", got)
	}
	if got := len(opts.GetFields()["regions"].GetListValue().GetValues()); got != 4 {
		t.Fatalf("expected 4 regions, got %d", got)
	}

	req, _ := structpb.NewStruct(map[string]any{"start": "2024-03-31", "end": "2024-03-31"})
	csv := &wrapperspb.BytesValue{}
	if err := conn.Invoke(ctx, method("ExportCSV"), req, csv); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(csv.GetValue()), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d lines", len(lines))
	}
}

func TestGRPCInternalError(t *testing.T) {
	conn := startGRPC(t, brokenService{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := conn.Invoke(ctx, method("Options"), &emptypb.Empty{}, &structpb.Struct{})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected internal, got %v", err)
	}
	if strings.Contains(err.Error(), errBroken.Error()) {
		t.Fatalf("internal cause leaked to the client: %v", err)
	}
}

func TestGRPCHealth(t *testing.T) {
	conn := startGRPC(t, newTestService(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: DashboardServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status %v", resp.GetStatus())
	}
}

func TestFromProtoQuery(t *testing.T) {
	q, err := FromProtoQuery(nil)
	if err != nil || q.Products != nil || q.Regions != nil {
		t.Fatalf("nil request must select everything, got %+v %v", q, err)
	}

	req, _ := structpb.NewStruct(map[string]any{"products": []any{}, "regions": nil, "limit": 7})
	q, err = FromProtoQuery(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Products == nil || len(q.Products) != 0 {
		t.Fatalf("empty list must select nothing, got %v", q.Products)
	}
	if q.Regions != nil {
		t.Fatalf("null must select everything, got %v", q.Regions)
	}
	if q.Limit != 7 {
		t.Fatalf("expected limit 7, got %d", q.Limit)
	}

	req, _ = structpb.NewStruct(map[string]any{"limit": 2.5})
	if _, err := FromProtoQuery(req); err == nil {
		t.Fatal("expected fractional limit to be rejected")
	}
}
