package workers

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"fieldcheck/internal/domain"
)

//go:generate mockgen -source=position_pump.go -destination=mocks/mock.go
type PositionSink interface {
	UpdatePosition(actorID string, sample domain.PositionSample) bool
	SetPermission(actorID string, p domain.Permission)
}

// PositionPump fans device updates out to a fixed pool of workers. Updates
// of one actor always go to the same worker so they are applied in arrival
// order.
type PositionPump struct {
	sink     PositionSink
	logger   *slog.Logger
	jobs     []chan domain.DeviceUpdate
	poolSize int

	mu      sync.Mutex
	dropped uint64
}

func NewPositionPump(sink PositionSink, logger *slog.Logger, poolSize, queueSize int) *PositionPump {
	if poolSize <= 0 {
		poolSize = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	jobs := make([]chan domain.DeviceUpdate, poolSize)
	for i := range jobs {
		jobs[i] = make(chan domain.DeviceUpdate, queueSize)
	}
	return &PositionPump{
		sink:     sink,
		logger:   logger,
		jobs:     jobs,
		poolSize: poolSize,
	}
}

// Submit queues u without blocking. It reports false when the actor's worker
// queue is full and the update was dropped.
func (p *PositionPump) Submit(u domain.DeviceUpdate) bool {
	select {
	case p.jobs[p.shard(u.ActorID)] <- u:
		return true
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		p.logger.Warn("position update dropped, worker queue full", slog.String("actor_id", u.ActorID))
		return false
	}
}

func (p *PositionPump) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Run blocks until ctx is done.
func (p *PositionPump) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < p.poolSize; i++ {
		wg.Add(1)
		go func(jobs <-chan domain.DeviceUpdate) {
			defer wg.Done()
			p.worker(ctx, jobs)
		}(p.jobs[i])
	}

	wg.Wait()
}

func (p *PositionPump) worker(ctx context.Context, jobs <-chan domain.DeviceUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-jobs:
			p.apply(u)
		}
	}
}

func (p *PositionPump) apply(u domain.DeviceUpdate) {
	if u.Permission != nil {
		p.sink.SetPermission(u.ActorID, *u.Permission)
	}
	if u.Sample != nil && !p.sink.UpdatePosition(u.ActorID, *u.Sample) {
		p.logger.Debug("stale position sample ignored", slog.String("actor_id", u.ActorID))
	}
}

func (p *PositionPump) shard(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32() % uint32(p.poolSize))
}
