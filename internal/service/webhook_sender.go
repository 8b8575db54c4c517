package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fieldcheck/internal/config"
	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

// WebhookSender drains the notification queue and POSTs each notification
// to the configured URL with a bounded number of attempts.
type WebhookSender struct {
	logger  *slog.Logger
	cfg     config.WebhookConfig
	queue   NotificationQueue
	http    *http.Client
	backoff time.Duration
	now     func() time.Time
}

func NewWebhookSender(logger *slog.Logger, cfg config.WebhookConfig, q NotificationQueue) *WebhookSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &WebhookSender{
		logger:  logger,
		cfg:     cfg,
		queue:   q,
		http:    &http.Client{Timeout: timeout},
		backoff: time.Second,
		now:     time.Now,
	}
}

func (s *WebhookSender) Run(ctx context.Context) {
	s.logger.Info("webhookSender STARTED", slog.String("url", s.cfg.URL))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("webhookSender STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		n, err := s.queue.Pop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			s.logger.Error("queue pop failed", slog.Any("error", err))
			sleep(ctx, 500*time.Millisecond)
			continue
		}

		s.logger.Debug("sending webhook",
			slog.String("event_id", n.EventID.String()),
			slog.String("actor_id", n.ActorID))
		s.Send(ctx, n)
	}
}

// Send delivers one notification and reports whether any attempt got a 2xx.
func (s *WebhookSender) Send(ctx context.Context, n domain.EventNotification) bool {
	n.DeliveredAt = s.now().UTC()

	body, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("marshal webhook payload failed", slog.String("error", err.Error()))
		return false
	}

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			s.logger.Info("stop retries due to context cancel")
			return false
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
		if err != nil {
			s.logger.Error("create webhook request failed", slog.String("error", err.Error()))
			return false
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := s.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return true
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		reason := "unknown"
		if err != nil {
			reason = err.Error()
		} else if resp != nil {
			reason = resp.Status
		}

		s.logger.Warn("webhook failed",
			slog.Int("attempt", attempt),
			slog.String("url", s.cfg.URL),
			slog.String("event_id", n.EventID.String()),
			slog.String("reason", reason),
		)

		if attempt < s.cfg.MaxRetries {
			sleep(ctx, time.Duration(attempt)*s.backoff)
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
