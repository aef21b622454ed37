package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/api"
	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	accessTokenHeader = common.AccessTokenHeaderName
	requestIDHeader   = "x-request-id"
)

// publicMethods need no token.
var publicMethods = map[string]bool{
	api.PingMethod: true,
}

// adminMethods change fleet membership or expose who changed it.
var adminMethods = map[string]bool{
	api.SubmitRosterMethod: true,
	api.ArchivePlateMethod: true,
	api.AuditHistoryMethod: true,
}

// ClaimsFromContext returns the token claims stored by the access token
// interceptor.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// requestIDInterceptor tags the call with the caller's request id, or a new
// one, and echoes it in the response header.
func (s *GRPCServer) requestIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id := firstMetadata(ctx, requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = logging.WithRequestID(ctx, id)
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, id))
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	if code == codes.Internal || code == codes.Unavailable {
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", err)
	} else {
		s.logger.Debug(ctx, "request served", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	}
	return resp, err
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := firstMetadata(ctx, accessTokenHeader)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	if adminMethods[info.FullMethod] && !claims.Admin {
		return nil, status.Error(codes.PermissionDenied, "admin token required")
	}

	ctx = context.WithValue(ctx, claimsKey, claims)

	return handler(ctx, req)
}
