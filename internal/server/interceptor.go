package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// UnaryInterceptor tags the context with session and request IDs from
// metadata, logs every call and maps domain errors onto gRPC status codes.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		sid := firstMD(md, MDSessionID)
		if sid == "" {
			sid = session.DefaultID
		}
		rid := firstMD(md, MDRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx = common.WithSessionID(common.WithRequestID(ctx, rid), sid)

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			st := common.ToStatus(err)
			logger.Warn("rpc.failed",
				"method", info.FullMethod,
				"request_id", rid,
				"session_id", sid,
				"elapsed_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return nil, st
		}
		logger.Info("rpc.ok",
			"method", info.FullMethod,
			"request_id", rid,
			"session_id", sid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, nil
	}
}

func firstMD(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
