package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "cardscan.v1.CardService"

// Metadata keys understood by the card service.
const (
	MDSessionID   = "x-session-id"
	MDRequestID   = "x-request-id"
	MDImageExt    = "x-image-ext"
	MDFilename    = "x-filename"
	MDContentType = "x-content-type"
)

// CardServiceServer is the server API for the card service. Messages are
// protobuf well-known types so no generated code is needed.
type CardServiceServer interface {
	Capture(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	ListCards(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	UpdateCard(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteCard(context.Context, *wrapperspb.Int32Value) (*emptypb.Empty, error)
	Export(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	SetCredential(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	ClearCredential(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ValidateCredential(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	EndSession(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func RegisterCardServiceServer(s grpc.ServiceRegistrar, srv CardServiceServer) {
	s.RegisterService(&CardServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed method into a grpc.MethodHandler.
func unary[Req any, Resp any](name string, newReq func() Req, call func(CardServiceServer, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(CardServiceServer)
		handler := func(ctx context.Context, req any) (any, error) {
			out, err := call(svc, ctx, req.(Req))
			if err != nil {
				return nil, err
			}
			return out, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }
func newStruct() *structpb.Struct { return &structpb.Struct{} }

var CardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Capture", Handler: unary("Capture",
			func() *wrapperspb.BytesValue { return &wrapperspb.BytesValue{} },
			CardServiceServer.Capture)},
		{MethodName: "ListCards", Handler: unary("ListCards", newEmpty, CardServiceServer.ListCards)},
		{MethodName: "UpdateCard", Handler: unary("UpdateCard", newStruct, CardServiceServer.UpdateCard)},
		{MethodName: "DeleteCard", Handler: unary("DeleteCard",
			func() *wrapperspb.Int32Value { return &wrapperspb.Int32Value{} },
			CardServiceServer.DeleteCard)},
		{MethodName: "Export", Handler: unary("Export",
			func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} },
			CardServiceServer.Export)},
		{MethodName: "SetCredential", Handler: unary("SetCredential", newStruct, CardServiceServer.SetCredential)},
		{MethodName: "ClearCredential", Handler: unary("ClearCredential", newEmpty, CardServiceServer.ClearCredential)},
		{MethodName: "ValidateCredential", Handler: unary("ValidateCredential", newEmpty, CardServiceServer.ValidateCredential)},
		{MethodName: "EndSession", Handler: unary("EndSession", newEmpty, CardServiceServer.EndSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cardscan/v1/cards.proto",
}
