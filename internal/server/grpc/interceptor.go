package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// publicMethods are callable without an access token.
var publicMethods = map[string]struct{}{
	rpc.MethodPing:                 {},
	rpc.MethodSignup:               {},
	rpc.MethodLogin:                {},
	rpc.MethodCompleteSecondFactor: {},
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := s.auth.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(context.WithValue(ctx, userIDKey, userID), req)
}

// rateLimitInterceptor answers ResourceExhausted once a peer IP exceeds its
// budget. Public methods count too, so login codes cannot be guessed freely.
func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter == nil {
		return handler(ctx, req)
	}
	if !s.limiter.Allow(peerIP(ctx)) {
		return nil, status.Error(codes.ResourceExhausted, "too many requests, please try again later")
	}
	return handler(ctx, req)
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error(ctx, "panic recovered", "panic", v, "method", info.FullMethod)
			err = status.Error(codes.Internal, common.ErrorInternal.Error())
		}
	}()
	return handler(ctx, req)
}

func userIDFrom(ctx context.Context) (string, error) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}
