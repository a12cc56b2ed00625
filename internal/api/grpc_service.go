package api

import (
	"context"
	"encoding/json"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/miradorstack/sales-insights/internal/metrics"
	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// DashboardServiceName is the fully qualified gRPC service name.
const DashboardServiceName = "salesinsights.v1.Dashboard"

// DashboardServer is the server API for the Dashboard gRPC service. Messages are
// protobuf well-known types so clients need no generated stubs.
type DashboardServer interface {
	Recompute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Options(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ExportCSV(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&dashboardServiceDesc, srv)
}

var dashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Recompute", Handler: recomputeHandler},
		{MethodName: "Options", Handler: optionsHandler},
		{MethodName: "ExportCSV", Handler: exportCSVHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salesinsights/v1/dashboard.proto",
}

func recomputeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).Recompute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DashboardServiceName + "/Recompute"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).Recompute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func optionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).Options(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DashboardServiceName + "/Options"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).Options(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func exportCSVHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).ExportCSV(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DashboardServiceName + "/ExportCSV"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).ExportCSV(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DashboardGRPC adapts the dashboard service to the gRPC surface.
type DashboardGRPC struct {
	logger *slog.Logger
	svc    DashboardService
}

// NewDashboardGRPC constructs the gRPC facade.
func NewDashboardGRPC(logger *slog.Logger, svc DashboardService) *DashboardGRPC {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardGRPC{logger: logger, svc: svc}
}

// Recompute evaluates the filter selection carried in req.
func (g *DashboardGRPC) Recompute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if g.svc == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard service not configured")
	}
	q, err := FromProtoQuery(req)
	if err != nil {
		return nil, toStatus(err)
	}

	g.logger.Debug("Recompute called", slog.String("start", q.Start), slog.String("end", q.End))
	result, err := g.svc.Recompute(ctx, q)
	if err != nil {
		return nil, g.fail("recompute", err)
	}

	out, err := ToProtoStruct(result)
	if err != nil {
		return nil, g.fail("recompute", err)
	}
	return out, nil
}

// Options returns the filter controls' selectable values.
func (g *DashboardGRPC) Options(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if g.svc == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard service not configured")
	}
	opts, err := g.svc.Options()
	if err != nil {
		return nil, g.fail("options", err)
	}
	out, err := ToProtoStruct(opts)
	if err != nil {
		return nil, g.fail("options", err)
	}
	return out, nil
}

// ExportCSV renders the filtered view as CSV bytes.
func (g *DashboardGRPC) ExportCSV(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	if g.svc == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard service not configured")
	}
	q, err := FromProtoQuery(req)
	if err != nil {
		return nil, toStatus(err)
	}
	payload, _, err := g.svc.Export(ctx, q)
	if err != nil {
		return nil, g.fail("export", err)
	}
	metrics.IncExport(metrics.TransportGRPC)
	return wrapperspb.Bytes(payload), nil
}

func (g *DashboardGRPC) fail(method string, err error) error {
	if !utils.IsInvalid(err) {
		g.logger.Error("grpc call failed", slog.String("method", method), slog.Any("error", err))
	}
	return toStatus(err)
}

// FromProtoQuery maps a Struct request onto a dashboard query using the same rules as the
// JSON body of the HTTP API. A nil request selects the whole table.
func FromProtoQuery(req *structpb.Struct) (models.DashboardQuery, error) {
	if req == nil {
		return models.DashboardQuery{}, nil
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return models.DashboardQuery{}, utils.NewInvalidError("api.decode", "invalid request", map[string]string{"body": err.Error()})
	}
	return QueryFromJSON(data)
}

// ToProtoStruct converts any JSON-serialisable value into a Struct.
func ToProtoStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, utils.NewAppError("api.encode", "marshal response", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, utils.NewAppError("api.encode", "convert response", err)
	}
	return out, nil
}
