package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"fieldcheck/internal/config"
	"fieldcheck/internal/domain"
	mock_service "fieldcheck/internal/service/mocks"
	"fieldcheck/pkg/e"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWebhookSender_Send_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var got domain.EventNotification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewWebhookSender(quietLogger(), config.WebhookConfig{URL: srv.URL, MaxRetries: 3}, nil)
	s.backoff = time.Millisecond

	n := domain.EventNotification{EventID: uuid.New(), ActorID: "a1", EventType: domain.CheckIn}
	if !s.Send(context.Background(), n) {
		t.Fatalf("expected delivery")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
	if got.EventID != n.EventID || got.DeliveredAt.IsZero() {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestWebhookSender_Send_GivesUp(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewWebhookSender(quietLogger(), config.WebhookConfig{URL: srv.URL, MaxRetries: 3}, nil)
	s.backoff = time.Millisecond

	if s.Send(context.Background(), domain.EventNotification{EventID: uuid.New()}) {
		t.Fatalf("expected failure")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestWebhookSender_Run_DrainsQueue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	delivered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		close(delivered)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := mock_service.NewMockNotificationQueue(ctrl)
	gomock.InOrder(
		q.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(domain.EventNotification{}, e.ErrQueueEmpty),
		q.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(domain.EventNotification{EventID: uuid.New()}, nil),
	)
	q.EXPECT().Pop(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ time.Duration) (domain.EventNotification, error) {
			<-ctx.Done()
			return domain.EventNotification{}, ctx.Err()
		}).
		AnyTimes()

	s := NewWebhookSender(quietLogger(), config.WebhookConfig{URL: srv.URL, MaxRetries: 1}, q)

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatalf("notification not delivered")
	}
	cancel()
	<-done
}
