package grpcapi

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/memory"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func startServer(t *testing.T) (*EscrowAdminClient, *escrow.DefaultEscrowUsecase, *fixedClock, *grpc.ClientConn) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &fixedClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc := escrow.NewDefaultEscrowUsecase(memory.NewEscrowRepository(), memory.NewPaymentRepository(), nil, nil, nil, clock, nil, logger, escrow.Config{})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterEscrowAdminServer(srv, NewEscrowHandler(uc, clock, logger))
	healthpb.RegisterHealthServer(srv, health.NewServer())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewEscrowAdminClient(conn), uc, clock, conn
}

func TestEscrowAdminOverGRPC(t *testing.T) {
	client, uc, clock, _ := startServer(t)
	ctx := context.Background()
	staff := domain.Identity{SubjectID: "admin", IsAuthenticated: true, IsStaff: true}

	e, err := uc.CreateEscrow(ctx, staff, &escrowdto.CreateEscrowInput{PayerID: "alice", ReceiverID: "bob", Amount: decimal.NewFromInt(70)})
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.GetEscrow(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Fields["status"].GetStringValue() != "pending" || got.Fields["amount"].GetStringValue() != "70.00" {
		t.Errorf("escrow = %v", got)
	}

	_, err = client.GetEscrow(ctx, "missing")
	if status.Code(err) != codes.NotFound {
		t.Fatalf("missing: got %v", err)
	}

	opCtx := metadata.AppendToOutgoingContext(ctx, actorMetadataKey, "ops-jane")
	released, err := client.ReleaseEscrow(opCtx, e.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !released.Fields["released"].GetBoolValue() {
		t.Errorf("released = %v", released)
	}

	_, err = client.RefundEscrow(ctx, e.ID)
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("refund after release: got %v", err)
	}

	clock.now = clock.now.Add(30 * 24 * time.Hour)
	sweep, err := client.SweepDueReleases(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sweep.Fields["count"].GetNumberValue() != 0 {
		t.Errorf("sweep released %v, want 0", sweep.Fields["count"])
	}

	summary, err := client.GetSummary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Fields["released_total"].GetStringValue() != "70.00" {
		t.Errorf("summary = %v", summary)
	}
}

func TestHealthRegistered(t *testing.T) {
	_, _, _, conn := startServer(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health = %v", resp.GetStatus())
	}
}
