//go:build integration

package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

var (
	testClient *goredis.Client
	tc         testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithDeadline(60 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "6379/tcp")

	testClient = goredis.NewClient(&goredis.Options{Addr: fmt.Sprintf("%s:%s", host, mappedPort.Port())})
	if err := testClient.Ping(ctx).Err(); err != nil {
		fmt.Println("redis ping:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	_ = testClient.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

type countingBackend struct {
	calls atomic.Int32
	rec   *domain.DirectoryRecord
	err   error
}

func (b *countingBackend) Lookup(_ context.Context, _ domain.TargetKey) (*domain.DirectoryRecord, error) {
	b.calls.Add(1)
	return b.rec, b.err
}

func TestCachedDirectory_ReadThrough(t *testing.T) {
	ctx := context.Background()
	key := domain.TargetKey{PrimaryKey: uuid.NewString(), SecondaryKey: "NORTH"}
	backend := &countingBackend{rec: &domain.DirectoryRecord{
		PrimaryKey:   key.PrimaryKey,
		SecondaryKey: key.SecondaryKey,
		Coordinates:  "9.9281,-84.0907",
		DisplayName:  "North gate",
	}}
	c := NewCachedDirectory(testClient, backend, time.Minute, newTestLogger())

	for i := 0; i < 3; i++ {
		rec, err := c.Lookup(ctx, key)
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if rec.DisplayName != "North gate" {
			t.Fatalf("unexpected record: %+v", rec)
		}
	}
	if n := backend.calls.Load(); n != 1 {
		t.Fatalf("expected 1 backend call, got %d", n)
	}

	if err := c.Invalidate(ctx, key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := c.Lookup(ctx, key); err != nil {
		t.Fatalf("lookup after invalidate: %v", err)
	}
	if n := backend.calls.Load(); n != 2 {
		t.Fatalf("expected 2 backend calls, got %d", n)
	}
}

func TestCachedDirectory_MissNotCached(t *testing.T) {
	ctx := context.Background()
	key := domain.TargetKey{PrimaryKey: uuid.NewString(), SecondaryKey: "X"}
	backend := &countingBackend{err: e.ErrNotFound}
	c := NewCachedDirectory(testClient, backend, time.Minute, newTestLogger())

	for i := 0; i < 2; i++ {
		if _, err := c.Lookup(ctx, key); !errors.Is(err, e.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if n := backend.calls.Load(); n != 2 {
		t.Fatalf("misses must not be cached, got %d backend calls", n)
	}
}

func TestEventQueue_NotifyPop(t *testing.T) {
	ctx := context.Background()
	q := NewEventQueue(testClient, "test:queue:"+uuid.NewString())

	ev := domain.AttendanceEvent{
		ID:         uuid.New(),
		ActorID:    "a1",
		TargetKey:  domain.TargetKey{PrimaryKey: "P", SecondaryKey: "S"},
		EventType:  domain.CheckIn,
		OccurredAt: time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC),
	}
	if err := q.Notify(ctx, ev); err != nil {
		t.Fatalf("notify: %v", err)
	}

	n, err := q.Pop(ctx, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if n.EventID != ev.ID || n.EventType != domain.CheckIn || !n.OccurredAt.Equal(ev.OccurredAt) {
		t.Fatalf("unexpected notification: %+v", n)
	}

	if _, err := q.Pop(ctx, 100*time.Millisecond); !errors.Is(err, e.ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}
