// Package healthcheck pings the service's backing stores in the background
// and keeps the last known state of each for the health endpoint.
package healthcheck

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe is anything that can be pinged, storage.Postgres and storage.RedisClient
type Probe interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Interval    time.Duration // How often to check (default: 15s)
	Timeout     time.Duration // Per probe timeout (default: 2s)
	MaxFailures int           // Consecutive failures before marking unhealthy (default: 1)
}

// Checker runs every probe on an interval
type Checker struct {
	mu       sync.RWMutex
	probes   map[string]Probe
	status   map[string]*Status
	cfg      Config
	logger   *zap.Logger
	up       *prometheus.GaugeVec
	stopChan chan struct{}
	running  bool
}

func NewChecker(probes map[string]Probe, cfg Config, logger *zap.Logger, reg prometheus.Registerer) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}

	c := &Checker{
		probes:   probes,
		status:   make(map[string]*Status, len(probes)),
		cfg:      cfg,
		logger:   logger,
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hrm_dependency_up",
			Help: "Whether a backing store answered its last health probe.",
		}, []string{"dependency"}),
	}

	if reg != nil {
		reg.MustRegister(c.up)
	}

	// Assume healthy until the first probe says otherwise
	for name := range probes {
		c.status[name] = &Status{Name: name, Healthy: true}
		c.up.WithLabelValues(name).Set(1)
	}

	return c
}

// Start runs one check right away, then one per interval until Stop
func (c *Checker) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	stop := make(chan struct{})
	c.stopChan = stop
	c.mu.Unlock()

	c.logger.Info("Starting dependency health checks",
		zap.Int("dependencies", len(c.probes)),
		zap.Duration("interval", c.cfg.Interval),
	)

	c.Check(context.Background())

	go func() {
		ticker := time.NewTicker(c.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Check(context.Background())
			case <-stop:
				return
			}
		}
	}()
}

func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
		c.running = false
		c.logger.Info("Dependency health checks stopped")
	}
}

// Check probes every dependency concurrently and records the results
func (c *Checker) Check(ctx context.Context) {
	var g errgroup.Group

	for name, probe := range c.probes {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()

			if err := probe.Ping(probeCtx); err != nil {
				c.recordFailure(name, err)
			} else {
				c.recordSuccess(name)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (c *Checker) recordSuccess(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	status := c.status[name]
	status.LastCheck = now
	status.LastSuccess = now
	status.FailureCount = 0
	status.LastError = ""

	if !status.Healthy {
		c.logger.Info("Dependency is healthy again", zap.String("dependency", name))
		status.Healthy = true
	}
	c.up.WithLabelValues(name).Set(1)
}

func (c *Checker) recordFailure(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	status := c.status[name]
	status.LastCheck = now
	status.LastFailure = now
	status.FailureCount++
	status.LastError = err.Error()

	if status.Healthy && status.FailureCount >= c.cfg.MaxFailures {
		c.logger.Warn("Dependency is unhealthy",
			zap.String("dependency", name),
			zap.Int("failures", status.FailureCount),
			zap.Error(err),
		)
		status.Healthy = false
		c.up.WithLabelValues(name).Set(0)
	}
}

// Statuses returns a copy of every dependency's status, sorted by name
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Status, 0, len(c.status))
	for _, s := range c.status {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

func (c *Checker) Overall() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	healthy := 0
	for _, s := range c.status {
		if s.Healthy {
			healthy++
		}
	}

	switch {
	case healthy == len(c.status):
		return Healthy
	case healthy == 0:
		return Unhealthy
	default:
		return Degraded
	}
}
