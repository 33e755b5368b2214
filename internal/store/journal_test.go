package store

import (
	"context"
	"testing"

	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

// startPostgres starts a PostgreSQL testcontainer and returns its DSN.
func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("hivemind_test"),
		tcpg.WithUsername("test"),
		tcpg.WithPassword("test"),
		tcpg.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("pg connection string: %v", err)
	}
	return dsn
}

func TestJournalRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	dsn := startPostgres(t, ctx)

	journal, err := New(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer journal.Close()

	if err := journal.Migrate(ctx, "../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	actions := []*Action{
		{CycleID: "cycle-1", Kind: "post", RemoteID: "p1", Content: "first post"},
		{CycleID: "cycle-2", Kind: "comment", TargetPostID: "p1", RemoteID: "c1", Content: "a reply"},
	}
	for _, a := range actions {
		if err := journal.Record(ctx, a); err != nil {
			t.Fatalf("record %s: %v", a.Kind, err)
		}
		if a.ID == "" {
			t.Error("expected a generated id")
		}
	}

	recent, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d actions, want 2", len(recent))
	}
	// Newest first.
	if recent[0].Kind != "comment" || recent[0].TargetPostID != "p1" {
		t.Errorf("got first action %+v, want the comment", recent[0])
	}
	if recent[1].Content != "first post" {
		t.Errorf("got second action %+v, want the post", recent[1])
	}

	// Migrations are idempotent.
	if err := journal.Migrate(ctx, "../../migrations"); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}
