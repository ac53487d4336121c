package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const probeTimeout = 3 * time.Second

// Probe checks a single dependency.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

// PostgresProbe pings the pool.
func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{Name: "postgresql", Ping: pool.Ping}
}

// RedisProbe pings the client.
func RedisProbe(client redislib.UniversalClient) Probe {
	return Probe{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Monitor probes dependencies on a cron schedule and caches the result for
// the health endpoint.
type Monitor struct {
	probes []Probe

	status Status
	mu     sync.RWMutex
	cron   *cron.Cron
	logger *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		probes: probes,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
	m.status = Status{Services: make(map[string]bool, len(probes))}
	for _, p := range probes {
		m.status.Services[p.Name] = false
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = m.cron.AddFunc(schedule, m.Refresh)
	return m
}

// Start runs one probe round immediately and then follows the schedule.
func (m *Monitor) Start() {
	m.Refresh()
	m.cron.Start()
}

// Stop waits for a running probe round, bounded by ctx.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, ok := range m.status.Services {
		services[name] = ok
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

// Names lists the probed dependencies in a stable order.
func (m *Monitor) Names() []string {
	names := make([]string, 0, len(m.probes))
	for _, p := range m.probes {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Refresh probes every dependency once.
func (m *Monitor) Refresh() {
	services := make(map[string]bool, len(m.probes))
	for _, p := range m.probes {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency probe failed", zap.String("service", p.Name), zap.Error(err))
		}
		services[p.Name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()
}
