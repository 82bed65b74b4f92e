package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/joinby-app/qr-gateway/internal/model"
	"github.com/joinby-app/qr-gateway/internal/proto"
	"github.com/joinby-app/qr-gateway/internal/resolver"
)

func TestQRGRPCServer_VerifyCode_Broad(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var strictCalled bool
	mock := &mockResolver{
		resolveFunc: func(shortID string) (*model.Resolution, error) {
			return &model.Resolution{
				OwnerUserID: "user123",
				FoundIn:     "qrCodes",
				IsActive:    true,
				CreatedAt:   &created,
			}, nil
		},
		resolveStrictFunc: func(_ string) (*model.Resolution, error) {
			strictCalled = true
			return nil, resolver.ErrNotFound
		},
	}

	srv := NewQRGRPCServer(mock)

	resp, err := srv.VerifyCode(context.Background(), &proto.VerifyCodeRequest{Code: "abc"})
	require.NoError(t, err)

	assert.Equal(t, "user123", resp.OwnerUserId)
	assert.Equal(t, "qrCodes", resp.FoundIn)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "2024-03-01T12:00:00Z", resp.CreatedAt)
	assert.False(t, strictCalled)
}

func TestQRGRPCServer_VerifyCode_Strict(t *testing.T) {
	mock := &mockResolver{
		resolveStrictFunc: func(_ string) (*model.Resolution, error) {
			return nil, resolver.ErrInvalidData
		},
	}

	srv := NewQRGRPCServer(mock)

	_, err := srv.VerifyCode(context.Background(), &proto.VerifyCodeRequest{Code: "abc", Strict: true})
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestQRGRPCServer_VerifyCode_NotFound(t *testing.T) {
	mock := &mockResolver{
		resolveFunc: func(_ string) (*model.Resolution, error) {
			return nil, resolver.ErrNotFound
		},
	}

	srv := NewQRGRPCServer(mock)

	_, err := srv.VerifyCode(context.Background(), &proto.VerifyCodeRequest{Code: "ghost"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestQRGRPCServer_VerifyCode_EmptyCode(t *testing.T) {
	srv := NewQRGRPCServer(&mockResolver{})

	_, err := srv.VerifyCode(context.Background(), &proto.VerifyCodeRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestQRGRPCServer_Status(t *testing.T) {
	srv := NewQRGRPCServer(&mockResolver{})

	resp, err := srv.Status(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, resp.Ready)
}
