package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "plateledger.v1.LedgerService"

// Full method names, as seen by interceptors.
const (
	PingMethod           = "/" + ServiceName + "/Ping"
	SubmitSightingMethod = "/" + ServiceName + "/SubmitSighting"
	SubmitRosterMethod   = "/" + ServiceName + "/SubmitRoster"
	ArchivePlateMethod   = "/" + ServiceName + "/ArchivePlate"
	RequestReportMethod  = "/" + ServiceName + "/RequestReport"
	PlateHistoryMethod   = "/" + ServiceName + "/PlateHistory"
	AuditHistoryMethod   = "/" + ServiceName + "/AuditHistory"
)

// LedgerServiceServer is implemented by the ledger's gRPC front.
type LedgerServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SubmitSighting(context.Context, *SubmitSightingRequest) (*SubmitSightingResponse, error)
	SubmitRoster(context.Context, *SubmitRosterRequest) (*SubmitRosterResponse, error)
	ArchivePlate(context.Context, *ArchivePlateRequest) (*ArchivePlateResponse, error)
	RequestReport(context.Context, *ReportRequest) (*ReportResponse, error)
	PlateHistory(context.Context, *PlateHistoryRequest) (*PlateHistoryResponse, error)
	AuditHistory(context.Context, *AuditHistoryRequest) (*AuditHistoryResponse, error)
}

func unaryHandler[Req, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes LedgerService for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, LedgerServiceServer.Ping)},
		{MethodName: "SubmitSighting", Handler: unaryHandler(SubmitSightingMethod, LedgerServiceServer.SubmitSighting)},
		{MethodName: "SubmitRoster", Handler: unaryHandler(SubmitRosterMethod, LedgerServiceServer.SubmitRoster)},
		{MethodName: "ArchivePlate", Handler: unaryHandler(ArchivePlateMethod, LedgerServiceServer.ArchivePlate)},
		{MethodName: "RequestReport", Handler: unaryHandler(RequestReportMethod, LedgerServiceServer.RequestReport)},
		{MethodName: "PlateHistory", Handler: unaryHandler(PlateHistoryMethod, LedgerServiceServer.PlateHistory)},
		{MethodName: "AuditHistory", Handler: unaryHandler(AuditHistoryMethod, LedgerServiceServer.AuditHistory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "plateledger/v1/ledger",
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// LedgerServiceClient is the client side of LedgerService. Every call is
// sent with the CBOR content subtype.
type LedgerServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	SubmitSighting(ctx context.Context, in *SubmitSightingRequest, opts ...grpc.CallOption) (*SubmitSightingResponse, error)
	SubmitRoster(ctx context.Context, in *SubmitRosterRequest, opts ...grpc.CallOption) (*SubmitRosterResponse, error)
	ArchivePlate(ctx context.Context, in *ArchivePlateRequest, opts ...grpc.CallOption) (*ArchivePlateResponse, error)
	RequestReport(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*ReportResponse, error)
	PlateHistory(ctx context.Context, in *PlateHistoryRequest, opts ...grpc.CallOption) (*PlateHistoryResponse, error)
	AuditHistory(ctx context.Context, in *AuditHistoryRequest, opts ...grpc.CallOption) (*AuditHistoryResponse, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, PingMethod, in, opts)
}

func (c *ledgerServiceClient) SubmitSighting(ctx context.Context, in *SubmitSightingRequest, opts ...grpc.CallOption) (*SubmitSightingResponse, error) {
	return invoke[SubmitSightingResponse](ctx, c.cc, SubmitSightingMethod, in, opts)
}

func (c *ledgerServiceClient) SubmitRoster(ctx context.Context, in *SubmitRosterRequest, opts ...grpc.CallOption) (*SubmitRosterResponse, error) {
	return invoke[SubmitRosterResponse](ctx, c.cc, SubmitRosterMethod, in, opts)
}

func (c *ledgerServiceClient) ArchivePlate(ctx context.Context, in *ArchivePlateRequest, opts ...grpc.CallOption) (*ArchivePlateResponse, error) {
	return invoke[ArchivePlateResponse](ctx, c.cc, ArchivePlateMethod, in, opts)
}

func (c *ledgerServiceClient) RequestReport(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[ReportResponse](ctx, c.cc, RequestReportMethod, in, opts)
}

func (c *ledgerServiceClient) PlateHistory(ctx context.Context, in *PlateHistoryRequest, opts ...grpc.CallOption) (*PlateHistoryResponse, error) {
	return invoke[PlateHistoryResponse](ctx, c.cc, PlateHistoryMethod, in, opts)
}

func (c *ledgerServiceClient) AuditHistory(ctx context.Context, in *AuditHistoryRequest, opts ...grpc.CallOption) (*AuditHistoryResponse, error) {
	return invoke[AuditHistoryResponse](ctx, c.cc, AuditHistoryMethod, in, opts)
}
