package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

type VerifyCodeRequest struct {
	Code string
	// Strict restricts the lookup to the canonical collection and requires
	// an explicitly active mapping, matching the redirect path.
	Strict bool
}

type VerifyCodeResponse struct {
	OwnerUserId string
	IsActive    bool
	FoundIn     string
	CreatedAt   string
}

type StatusResponse struct {
	Ready bool
}

// QRServiceServer is the server API for QRService service.
type QRServiceServer interface {
	VerifyCode(context.Context, *VerifyCodeRequest) (*VerifyCodeResponse, error)
	Status(context.Context, *emptypb.Empty) (*StatusResponse, error)
}

// UnimplementedQRServiceServer can be embedded to have forward compatible implementations.
type UnimplementedQRServiceServer struct{}

func (*UnimplementedQRServiceServer) VerifyCode(context.Context, *VerifyCodeRequest) (*VerifyCodeResponse, error) {
	return nil, nil
}
func (*UnimplementedQRServiceServer) Status(context.Context, *emptypb.Empty) (*StatusResponse, error) {
	return nil, nil
}

func RegisterQRServiceServer(s *grpc.Server, srv QRServiceServer) {
	s.RegisterService(&_QRService_serviceDesc, srv)
}

func _QRService_VerifyCode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(VerifyCodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QRServiceServer).VerifyCode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/qrgateway.QRService/VerifyCode",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QRServiceServer).VerifyCode(ctx, req.(*VerifyCodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _QRService_Status_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QRServiceServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/qrgateway.QRService/Status",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QRServiceServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var _QRService_serviceDesc = grpc.ServiceDesc{
	ServiceName: "qrgateway.QRService",
	HandlerType: (*QRServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "VerifyCode",
			Handler:    _QRService_VerifyCode_Handler,
		},
		{
			MethodName: "Status",
			Handler:    _QRService_Status_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "qrgateway.proto",
}
