package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "vaultx.VaultService"

// Full method names, as seen by interceptors.
const (
	MethodPing                 = "/" + ServiceName + "/Ping"
	MethodSignup               = "/" + ServiceName + "/Signup"
	MethodLogin                = "/" + ServiceName + "/Login"
	MethodCompleteSecondFactor = "/" + ServiceName + "/CompleteSecondFactor"
	MethodListSecrets          = "/" + ServiceName + "/ListSecrets"
	MethodGetSecret            = "/" + ServiceName + "/GetSecret"
	MethodCreateSecret         = "/" + ServiceName + "/CreateSecret"
	MethodUpdateSecret         = "/" + ServiceName + "/UpdateSecret"
	MethodDeleteSecret         = "/" + ServiceName + "/DeleteSecret"
	MethodExportBackup         = "/" + ServiceName + "/ExportBackup"
)

type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Signup(context.Context, *SignupRequest) (*SignupResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	CompleteSecondFactor(context.Context, *CompleteSecondFactorRequest) (*LoginResponse, error)
	ListSecrets(context.Context, *ListSecretsRequest) (*ListSecretsResponse, error)
	GetSecret(context.Context, *GetSecretRequest) (*SecretResponse, error)
	CreateSecret(context.Context, *CreateSecretRequest) (*SecretResponse, error)
	UpdateSecret(context.Context, *UpdateSecretRequest) (*SecretResponse, error)
	DeleteSecret(context.Context, *DeleteSecretRequest) (*DeleteSecretResponse, error)
	ExportBackup(context.Context, *ExportBackupRequest) (*ExportBackupResponse, error)
}

// unary builds a grpc.MethodHandler for one method of VaultServiceServer.
func unary[Req any, Resp any](fullMethod string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VaultServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(MethodPing, VaultServiceServer.Ping)},
		{MethodName: "Signup", Handler: unary(MethodSignup, VaultServiceServer.Signup)},
		{MethodName: "Login", Handler: unary(MethodLogin, VaultServiceServer.Login)},
		{MethodName: "CompleteSecondFactor", Handler: unary(MethodCompleteSecondFactor, VaultServiceServer.CompleteSecondFactor)},
		{MethodName: "ListSecrets", Handler: unary(MethodListSecrets, VaultServiceServer.ListSecrets)},
		{MethodName: "GetSecret", Handler: unary(MethodGetSecret, VaultServiceServer.GetSecret)},
		{MethodName: "CreateSecret", Handler: unary(MethodCreateSecret, VaultServiceServer.CreateSecret)},
		{MethodName: "UpdateSecret", Handler: unary(MethodUpdateSecret, VaultServiceServer.UpdateSecret)},
		{MethodName: "DeleteSecret", Handler: unary(MethodDeleteSecret, VaultServiceServer.DeleteSecret)},
		{MethodName: "ExportBackup", Handler: unary(MethodExportBackup, VaultServiceServer.ExportBackup)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vaultx.json",
}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// VaultServiceClient is the client stub. Every call is sent with the JSON
// content subtype.
type VaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) *VaultServiceClient {
	return &VaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *VaultServiceClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error) {
	return invoke[SignupResponse](ctx, c.cc, MethodSignup, in, opts)
}

func (c *VaultServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *VaultServiceClient) CompleteSecondFactor(ctx context.Context, in *CompleteSecondFactorRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodCompleteSecondFactor, in, opts)
}

func (c *VaultServiceClient) ListSecrets(ctx context.Context, in *ListSecretsRequest, opts ...grpc.CallOption) (*ListSecretsResponse, error) {
	return invoke[ListSecretsResponse](ctx, c.cc, MethodListSecrets, in, opts)
}

func (c *VaultServiceClient) GetSecret(ctx context.Context, in *GetSecretRequest, opts ...grpc.CallOption) (*SecretResponse, error) {
	return invoke[SecretResponse](ctx, c.cc, MethodGetSecret, in, opts)
}

func (c *VaultServiceClient) CreateSecret(ctx context.Context, in *CreateSecretRequest, opts ...grpc.CallOption) (*SecretResponse, error) {
	return invoke[SecretResponse](ctx, c.cc, MethodCreateSecret, in, opts)
}

func (c *VaultServiceClient) UpdateSecret(ctx context.Context, in *UpdateSecretRequest, opts ...grpc.CallOption) (*SecretResponse, error) {
	return invoke[SecretResponse](ctx, c.cc, MethodUpdateSecret, in, opts)
}

func (c *VaultServiceClient) DeleteSecret(ctx context.Context, in *DeleteSecretRequest, opts ...grpc.CallOption) (*DeleteSecretResponse, error) {
	return invoke[DeleteSecretResponse](ctx, c.cc, MethodDeleteSecret, in, opts)
}

func (c *VaultServiceClient) ExportBackup(ctx context.Context, in *ExportBackupRequest, opts ...grpc.CallOption) (*ExportBackupResponse, error) {
	return invoke[ExportBackupResponse](ctx, c.cc, MethodExportBackup, in, opts)
}
