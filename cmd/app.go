package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fieldcheck/internal/components"
	"fieldcheck/internal/config"
	"fieldcheck/internal/domain"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		components.SetupLogger("prod").Error("load config failed", slog.Any("error", err))
		return err
	}
	logger := components.SetupLogger(cfg.Env)

	comps, err := components.InitComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", slog.Any("error", err))
		return err
	}
	defer comps.ShutdownAll()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer logger.Info("http server stopped")
		return comps.HttpServer.Run(gctx)
	})

	g.Go(func() error {
		comps.Sweeper.Run(gctx)
		return nil
	})

	if comps.PositionPump != nil {
		g.Go(func() error {
			comps.PositionPump.Run(gctx)
			return nil
		})
		g.Go(func() error {
			return comps.MQTT.Start(gctx, func(u domain.DeviceUpdate) {
				comps.PositionPump.Submit(u)
			})
		})
	}

	if comps.WebhookSender != nil {
		g.Go(func() error {
			comps.WebhookSender.Run(gctx)
			return nil
		})
	}

	err = g.Wait()
	logger.Info("shutting down", slog.String("reason", context.Cause(gctx).Error()))
	if err != nil {
		logger.Error("service stopped with error", slog.Any("error", err))
		return err
	}
	return nil
}
