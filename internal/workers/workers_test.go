package workers_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/workers"
	mock_workers "fieldcheck/internal/workers/mocks"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPositionPump_AppliesInOrderPerActor(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	granted := domain.PermissionGranted
	first := domain.PositionSample{Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, Timestamp: time.Unix(100, 0)}
	second := domain.PositionSample{Coordinates: domain.Coordinate{Lat: 2, Lng: 2}, Timestamp: time.Unix(101, 0)}

	done := make(chan struct{})
	sink := mock_workers.NewMockPositionSink(ctrl)
	gomock.InOrder(
		sink.EXPECT().SetPermission("a1", domain.PermissionGranted),
		sink.EXPECT().UpdatePosition("a1", first).Return(true),
		sink.EXPECT().UpdatePosition("a1", second).
			DoAndReturn(func(string, domain.PositionSample) bool {
				close(done)
				return true
			}),
	)

	pump := workers.NewPositionPump(sink, newTestLogger(), 4, 16)

	if !pump.Submit(domain.DeviceUpdate{ActorID: "a1", Permission: &granted}) ||
		!pump.Submit(domain.DeviceUpdate{ActorID: "a1", Sample: &first}) ||
		!pump.Submit(domain.DeviceUpdate{ActorID: "a1", Sample: &second}) {
		t.Fatalf("submit must not drop with free queue")
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pump.Run(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("updates not applied")
	}
	cancel()
	<-stopped
}

func TestPositionPump_SubmitNeverBlocks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pump := workers.NewPositionPump(mock_workers.NewMockPositionSink(ctrl), newTestLogger(), 1, 1)
	sample := domain.PositionSample{Timestamp: time.Unix(1, 0)}

	if !pump.Submit(domain.DeviceUpdate{ActorID: "a1", Sample: &sample}) {
		t.Fatalf("first submit should be queued")
	}
	if pump.Submit(domain.DeviceUpdate{ActorID: "a1", Sample: &sample}) {
		t.Fatalf("second submit should be dropped")
	}
	if pump.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", pump.Dropped())
	}
}

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(time.Time) int {
	c.calls.Add(1)
	return 1
}

func TestSessionSweeper_Ticks(t *testing.T) {
	t.Parallel()

	store := &countingSweeper{}
	s := workers.NewSessionSweeper(store, newTestLogger(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	deadline := time.After(5 * time.Second)
	for store.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-stopped
}
