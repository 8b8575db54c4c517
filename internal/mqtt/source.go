// Package mqtt subscribes to device position and permission topics.
//
// Topics:
//
//	<prefix>/positions/<actorID>    {"lat":..,"lng":..,"accuracy_meters":..,"timestamp":"RFC3339"}
//	<prefix>/permissions/<actorID>  {"state":"granted"} or the bare state
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fieldcheck/internal/config"
	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	kindPositions   = "positions"
	kindPermissions = "permissions"
)

type positionMessage struct {
	Lat            *float64   `json:"lat"`
	Lng            *float64   `json:"lng"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	Timestamp      *time.Time `json:"timestamp"`
}

type permissionMessage struct {
	State string `json:"state"`
}

// Source is the MQTT position source.
type Source struct {
	client mqtt.Client
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

func NewSource(cfg config.MQTTConfig, logger *slog.Logger) *Source {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", slog.Any("error", err))
	})

	return &Source{
		client: mqtt.NewClient(opts),
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// Start connects and subscribes. handle is called from the MQTT client's
// goroutine and must not block.
func (s *Source) Start(ctx context.Context, handle func(domain.DeviceUpdate)) error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	filters := map[string]byte{
		s.prefix + "/" + kindPositions + "/+":   0,
		s.prefix + "/" + kindPermissions + "/+": 1,
	}
	token := s.client.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		u, err := ParseMessage(s.prefix, msg.Topic(), msg.Payload(), s.now())
		if err != nil {
			s.logger.Warn("mqtt message dropped", slog.String("topic", msg.Topic()), slog.Any("error", err))
			return
		}
		handle(u)
	})
	if token.Wait() && token.Error() != nil {
		s.client.Disconnect(250)
		return fmt.Errorf("mqtt subscribe: %w", token.Error())
	}

	s.logger.Info("mqtt position source subscribed", slog.String("prefix", s.prefix))

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Source) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// ParseMessage decodes one MQTT message. Out-of-range coordinates are passed
// through; the engine reports them as an unavailable position.
func ParseMessage(prefix, topic string, payload []byte, now time.Time) (domain.DeviceUpdate, error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return domain.DeviceUpdate{}, fmt.Errorf("topic %q outside prefix %q: %w", topic, prefix, e.ErrInvalidInput)
	}
	kind, actorID, ok := strings.Cut(rest, "/")
	if !ok || actorID == "" || strings.Contains(actorID, "/") {
		return domain.DeviceUpdate{}, fmt.Errorf("topic %q: %w", topic, e.ErrInvalidInput)
	}

	switch kind {
	case kindPositions:
		var m positionMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return domain.DeviceUpdate{}, fmt.Errorf("position payload: %w: %w", e.ErrInvalidInput, err)
		}
		if m.Lat == nil || m.Lng == nil {
			return domain.DeviceUpdate{}, fmt.Errorf("position payload without lat/lng: %w", e.ErrInvalidInput)
		}
		ts := now
		if m.Timestamp != nil {
			ts = *m.Timestamp
		}
		return domain.DeviceUpdate{
			ActorID: actorID,
			Sample: &domain.PositionSample{
				Coordinates:    domain.Coordinate{Lat: *m.Lat, Lng: *m.Lng},
				Timestamp:      ts,
				AccuracyMeters: m.AccuracyMeters,
			},
		}, nil

	case kindPermissions:
		state := strings.TrimSpace(string(payload))
		var m permissionMessage
		if err := json.Unmarshal(payload, &m); err == nil {
			state = m.State
		}
		p, ok := domain.ParsePermission(strings.ToLower(state))
		if !ok {
			return domain.DeviceUpdate{}, fmt.Errorf("permission %q: %w", state, e.ErrInvalidInput)
		}
		return domain.DeviceUpdate{ActorID: actorID, Permission: &p}, nil

	default:
		return domain.DeviceUpdate{}, errors.Join(e.ErrInvalidInput, fmt.Errorf("unknown topic kind %q", kind))
	}
}
