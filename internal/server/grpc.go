package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described by hand over well-known types so that no
// generated code is needed.
const (
	ComplianceServiceName                     = "contractcheck.v1.ComplianceService"
	ComplianceService_Check_FullMethodName    = "/contractcheck.v1.ComplianceService/Check"
	ComplianceService_Scan_FullMethodName     = "/contractcheck.v1.ComplianceService/ScanDirectory"
	ComplianceService_Export_FullMethodName   = "/contractcheck.v1.ComplianceService/ExportDirectory"
	ComplianceService_Registry_FullMethodName = "/contractcheck.v1.ComplianceService/ListRegistry"
)

// ComplianceServer is the server API for ComplianceService.
type ComplianceServer interface {
	// Check runs the pipeline on one document and returns its report.
	Check(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	// ScanDirectory checks every document under root_path.
	ScanDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ExportDirectory checks every document under root_path and returns an XLSX workbook.
	ExportDirectory(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	// ListRegistry returns the loaded forms registry.
	ListRegistry(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterComplianceServer(s grpc.ServiceRegistrar, srv ComplianceServer) {
	s.RegisterService(&ComplianceService_ServiceDesc, srv)
}

func unary[Req any](call func(ComplianceServer, context.Context, *Req) (any, error), fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ComplianceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ComplianceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ComplianceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ComplianceServiceName,
	HandlerType: (*ComplianceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Check",
			Handler: unary(func(s ComplianceServer, ctx context.Context, in *wrapperspb.BytesValue) (any, error) {
				return s.Check(ctx, in)
			}, ComplianceService_Check_FullMethodName),
		},
		{
			MethodName: "ScanDirectory",
			Handler: unary(func(s ComplianceServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.ScanDirectory(ctx, in)
			}, ComplianceService_Scan_FullMethodName),
		},
		{
			MethodName: "ExportDirectory",
			Handler: unary(func(s ComplianceServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.ExportDirectory(ctx, in)
			}, ComplianceService_Export_FullMethodName),
		},
		{
			MethodName: "ListRegistry",
			Handler: unary(func(s ComplianceServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.ListRegistry(ctx, in)
			}, ComplianceService_Registry_FullMethodName),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contractcheck/v1/compliance.proto",
}

// ComplianceClient is the client API for ComplianceService.
type ComplianceClient struct {
	cc grpc.ClientConnInterface
}

func NewComplianceClient(cc grpc.ClientConnInterface) *ComplianceClient {
	return &ComplianceClient{cc: cc}
}

func (c *ComplianceClient) Check(ctx context.Context, doc []byte, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ComplianceService_Check_FullMethodName, wrapperspb.Bytes(doc), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ComplianceClient) ScanDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ComplianceService_Scan_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ComplianceClient) ExportDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, ComplianceService_Export_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (c *ComplianceClient) ListRegistry(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ComplianceService_Registry_FullMethodName, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
