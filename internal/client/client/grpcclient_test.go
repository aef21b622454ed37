package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/plateledger/internal/api"
	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*************
 * Fake api client
 *************/

type fakeAPI struct {
	lastSighting *api.SubmitSightingRequest
	lastRoster   *api.SubmitRosterRequest
	lastArchive  *api.ArchivePlateRequest
	lastReport   *api.ReportRequest

	pingResp     *api.PingResponse
	sightingResp *api.SubmitSightingResponse
	rosterResp   *api.SubmitRosterResponse
	archiveResp  *api.ArchivePlateResponse
	reportResp   *api.ReportResponse
	historyResp  *api.PlateHistoryResponse
	auditResp    *api.AuditHistoryResponse
	err          error
}

func (f *fakeAPI) Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error) {
	return f.pingResp, f.err
}
func (f *fakeAPI) SubmitSighting(ctx context.Context, in *api.SubmitSightingRequest, opts ...grpc.CallOption) (*api.SubmitSightingResponse, error) {
	f.lastSighting = in
	return f.sightingResp, f.err
}
func (f *fakeAPI) SubmitRoster(ctx context.Context, in *api.SubmitRosterRequest, opts ...grpc.CallOption) (*api.SubmitRosterResponse, error) {
	f.lastRoster = in
	return f.rosterResp, f.err
}
func (f *fakeAPI) ArchivePlate(ctx context.Context, in *api.ArchivePlateRequest, opts ...grpc.CallOption) (*api.ArchivePlateResponse, error) {
	f.lastArchive = in
	return f.archiveResp, f.err
}
func (f *fakeAPI) RequestReport(ctx context.Context, in *api.ReportRequest, opts ...grpc.CallOption) (*api.ReportResponse, error) {
	f.lastReport = in
	return f.reportResp, f.err
}
func (f *fakeAPI) PlateHistory(ctx context.Context, in *api.PlateHistoryRequest, opts ...grpc.CallOption) (*api.PlateHistoryResponse, error) {
	return f.historyResp, f.err
}
func (f *fakeAPI) AuditHistory(ctx context.Context, in *api.AuditHistoryRequest, opts ...grpc.CallOption) (*api.AuditHistoryResponse, error) {
	return f.auditResp, f.err
}

func newTestClient(f *fakeAPI) *GRPCClient {
	return &GRPCClient{client: f, accessToken: "tok"}
}

/*************
 * Tests
 *************/

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old", "x-request-id", "r1")
	ctx = withAccessToken(ctx, "new")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"r1"}, md.Get("x-request-id"))
}

func TestAccessTokenInterceptor(t *testing.T) {
	var got []string
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get(common.AccessTokenHeaderName)
		return nil
	}

	c := &GRPCClient{accessToken: "tok"}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), api.PingMethod, nil, nil, nil, invoker))
	assert.Equal(t, []string{"tok"}, got)

	c.accessToken = ""
	require.NoError(t, c.accessTokenInterceptor(context.Background(), api.PingMethod, nil, nil, nil, invoker))
	assert.Empty(t, got)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrUnauthorized},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
		{codes.InvalidArgument, ErrInvalidInput},
		{codes.NotFound, ErrNotFound},
		{codes.FailedPrecondition, ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.ErrorIs(t, c.mapError(status.Error(tt.code, "x")), tt.want)
		})
	}

	err := c.mapError(status.Error(codes.Internal, "boom"))
	assert.ErrorContains(t, err, "rpc error")
	assert.NoError(t, c.mapError(nil))
}

func TestPing(t *testing.T) {
	f := &fakeAPI{pingResp: &api.PingResponse{Status: "OK"}}
	require.NoError(t, newTestClient(f).Ping(context.Background()))

	f.pingResp = &api.PingResponse{Status: "DEGRADED"}
	assert.ErrorIs(t, newTestClient(f).Ping(context.Background()), ErrUnavailable)

	f.err = status.Error(codes.Unavailable, "down")
	assert.ErrorIs(t, newTestClient(f).Ping(context.Background()), ErrUnavailable)
}

func TestSubmitSighting(t *testing.T) {
	f := &fakeAPI{sightingResp: &api.SubmitSightingResponse{Outcome: "accepted", Plate: "A123BC77"}}
	resp, err := newTestClient(f).SubmitSighting(context.Background(), 5, "a123bc77")
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Outcome)
	assert.Equal(t, &api.SubmitSightingRequest{ObserverID: 5, Plate: "a123bc77"}, f.lastSighting)

	f.err = status.Error(codes.InvalidArgument, "invalid plate format")
	_, err = newTestClient(f).SubmitSighting(context.Background(), 5, "??")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitRosterAndArchive(t *testing.T) {
	f := &fakeAPI{
		rosterResp:  &api.SubmitRosterResponse{Applied: true, Added: []string{"A123BC77"}},
		archiveResp: &api.ArchivePlateResponse{Outcome: "archived"},
	}
	c := newTestClient(f)

	resp, err := c.SubmitRoster(context.Background(), 2, []string{"A123BC77"})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, int64(2), f.lastRoster.ActorID)

	outcome, err := c.ArchivePlate(context.Background(), 2, "B456CE99")
	require.NoError(t, err)
	assert.Equal(t, "archived", outcome)
	assert.Equal(t, "B456CE99", f.lastArchive.Plate)
}

func TestReportAndHistory(t *testing.T) {
	f := &fakeAPI{
		reportResp:  &api.ReportResponse{Kind: api.ReportDailyTotals, Total: 3},
		historyResp: &api.PlateHistoryResponse{Plate: "A123BC77", State: "archived"},
		auditResp:   &api.AuditHistoryResponse{Entries: []api.AuditEntry{{ActorID: 1, Action: "archive"}}},
	}
	c := newTestClient(f)

	r, err := c.Report(context.Background(), api.ReportDailyTotals, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, &api.ReportRequest{Kind: api.ReportDailyTotals, Page: 2}, f.lastReport)

	h, err := c.PlateHistory(context.Background(), "A123BC77")
	require.NoError(t, err)
	assert.Equal(t, "archived", h.State)

	entries, err := c.AuditHistory(context.Background(), "A123BC77")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	f.err = status.Error(codes.NotFound, "plate not found")
	_, err = c.PlateHistory(context.Background(), "Z999ZZ99")
	assert.True(t, errors.Is(err, ErrNotFound))
}
