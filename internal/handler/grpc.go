package handler

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/joinby-app/qr-gateway/internal/model"
	"github.com/joinby-app/qr-gateway/internal/proto"
	"github.com/joinby-app/qr-gateway/internal/resolver"
)

// QRGRPCServer exposes the verification API over gRPC for internal callers.
type QRGRPCServer struct {
	proto.UnimplementedQRServiceServer
	resolver QRResolver
}

func NewQRGRPCServer(res QRResolver) *QRGRPCServer {
	return &QRGRPCServer{
		resolver: res,
	}
}

func (s *QRGRPCServer) VerifyCode(ctx context.Context, req *proto.VerifyCodeRequest) (*proto.VerifyCodeResponse, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}

	var (
		res *model.Resolution
		err error
	)
	if req.Strict {
		res, err = s.resolver.ResolveStrict(ctx, req.Code)
	} else {
		res, err = s.resolver.Resolve(ctx, req.Code)
	}

	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrNotFound):
			return nil, status.Error(codes.NotFound, "short code not found")
		case errors.Is(err, resolver.ErrInvalidData):
			return nil, status.Error(codes.FailedPrecondition, "mapping is invalid or inactive")
		default:
			return nil, status.Errorf(codes.Internal, "resolution failed: %v", err)
		}
	}

	resp := &proto.VerifyCodeResponse{
		OwnerUserId: res.OwnerUserID,
		IsActive:    res.IsActive,
		FoundIn:     res.FoundIn,
	}
	if res.CreatedAt != nil {
		resp.CreatedAt = res.CreatedAt.UTC().Format(time.RFC3339)
	}

	return resp, nil
}

func (s *QRGRPCServer) Status(_ context.Context, _ *emptypb.Empty) (*proto.StatusResponse, error) {
	return &proto.StatusResponse{Ready: s.resolver != nil}, nil
}
