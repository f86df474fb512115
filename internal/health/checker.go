package health

import (
	"context"
	"sync"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Probe is one dependency check. Critical probes cover storage the service cannot run
// without; a failing non-critical probe only degrades the service.
type Probe struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	Critical     bool   `json:"critical"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	probes     []Probe
	healthRepo models.SystemHealthRepository
	timeout    time.Duration
	logger     *logrus.Logger

	mu   sync.RWMutex
	last *OverallHealth
	at   time.Time
}

// NewHealthChecker builds a checker. healthRepo may be nil.
func NewHealthChecker(probes []Probe, healthRepo models.SystemHealthRepository, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		probes:     probes,
		healthRepo: healthRepo,
		timeout:    5 * time.Second,
		logger:     logger,
	}
}

func (h *HealthChecker) check(ctx context.Context, p Probe) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = StatusUnhealthy
		errorMsg = err.Error()
		entry := h.logger.WithError(err).WithField("service", p.Name)
		if p.Critical {
			entry.Error("Health check failed")
		} else {
			entry.Warn("Health check failed")
		}
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(p.Name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", p.Name).Debug("Failed to record health status")
		}
	}

	return ServiceHealth{
		Name:         p.Name,
		Status:       status,
		Critical:     p.Critical,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll runs every probe concurrently. Results keep probe order.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, len(h.probes))

	var g errgroup.Group
	for i, p := range h.probes {
		i, p := i, p
		g.Go(func() error {
			services[i] = h.check(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	health := OverallHealth{
		Status:   Overall(services),
		Services: services,
		Uptime:   h.getUptime(),
	}

	h.mu.Lock()
	h.last = &health
	h.at = time.Now()
	h.mu.Unlock()

	return health
}

// Overall folds service results: a failed critical service makes the system
// unhealthy, any other failure makes it degraded.
func Overall(services []ServiceHealth) string {
	overallStatus := StatusHealthy
	for _, service := range services {
		if service.Status == StatusHealthy {
			continue
		}
		if service.Critical {
			return StatusUnhealthy
		}
		overallStatus = StatusDegraded
	}
	return overallStatus
}

// CheckCached returns the last result if it is younger than maxAge, otherwise runs
// the checks.
func (h *HealthChecker) CheckCached(ctx context.Context, maxAge time.Duration) OverallHealth {
	h.mu.RLock()
	last, at := h.last, h.at
	h.mu.RUnlock()

	if last != nil && time.Since(at) < maxAge {
		cached := *last
		cached.Uptime = h.getUptime()
		return cached
	}
	return h.CheckAll(ctx)
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	return time.Since(startTime).Round(time.Second).String()
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll(ctx)
			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}
