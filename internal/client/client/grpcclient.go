package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/plateledger/internal/api"
	"github.com/dmitrijs2005/plateledger/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.LedgerServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewLedgerClient(endpointURL, accessToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewLedgerServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}
	return nil

}

func (s *GRPCClient) SubmitSighting(ctx context.Context, observerID int64, plate string) (*api.SubmitSightingResponse, error) {

	resp, err := s.client.SubmitSighting(ctx, &api.SubmitSightingRequest{ObserverID: observerID, Plate: plate})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) SubmitRoster(ctx context.Context, actorID int64, rows []string) (*api.SubmitRosterResponse, error) {

	resp, err := s.client.SubmitRoster(ctx, &api.SubmitRosterRequest{ActorID: actorID, Rows: rows})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) ArchivePlate(ctx context.Context, actorID int64, plate string) (string, error) {

	resp, err := s.client.ArchivePlate(ctx, &api.ArchivePlateRequest{ActorID: actorID, Plate: plate})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Outcome, nil

}

func (s *GRPCClient) Report(ctx context.Context, kind string, page int) (*api.ReportResponse, error) {

	resp, err := s.client.RequestReport(ctx, &api.ReportRequest{Kind: kind, Page: page})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) PlateHistory(ctx context.Context, plate string) (*api.PlateHistoryResponse, error) {

	resp, err := s.client.PlateHistory(ctx, &api.PlateHistoryRequest{Plate: plate})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) AuditHistory(ctx context.Context, plate string) ([]api.AuditEntry, error) {

	resp, err := s.client.AuditHistory(ctx, &api.AuditHistoryRequest{Plate: plate})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Entries, nil

}
