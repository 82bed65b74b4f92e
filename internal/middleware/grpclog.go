package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
)

// LoggingInterceptor logs every unary gRPC call with its outcome. The gRPC
// surface is verification-only, so there is no auth here.
func LoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	evt := log.Info()
	if err != nil {
		evt = log.Warn().Err(err)
	}
	evt.
		Str("method", info.FullMethod).
		Dur("duration", time.Since(start)).
		Msg("gRPC call handled")

	return resp, err
}
