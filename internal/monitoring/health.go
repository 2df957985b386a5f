package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Duration string    `json:"duration"`
	LastRun  time.Time `json:"last_run"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type registeredCheck struct {
	fn       HealthCheckFunc
	critical bool
}

// HealthChecker runs every registered check on demand, concurrently, each
// bounded by the checker timeout. Only critical checks can make the service
// unhealthy; a failing optional check reports degraded.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]registeredCheck
	timeout time.Duration
}

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]registeredCheck),
		timeout: timeout,
	}
}

func (h *HealthChecker) Register(name string, check HealthCheckFunc) {
	h.register(name, check, true)
}

// RegisterOptional adds a check for a dependency the service can run without.
func (h *HealthChecker) RegisterOptional(name string, check HealthCheckFunc) {
	h.register(name, check, false)
}

func (h *HealthChecker) register(name string, check HealthCheckFunc, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = registeredCheck{fn: check, critical: critical}
}

func (h *HealthChecker) Run(ctx context.Context) map[string]HealthCheck {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]registeredCheck, len(names))
	for i, name := range names {
		checks[i] = h.checks[name]
	}
	h.mu.RUnlock()

	results := make([]HealthCheck, len(names))
	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.runOne(ctx, names[i], checks[i])
		}(i)
	}
	wg.Wait()

	out := make(map[string]HealthCheck, len(results))
	for _, r := range results {
		out[r.Name] = r
	}
	return out
}

func (h *HealthChecker) runOne(ctx context.Context, name string, check registeredCheck) HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	result := HealthCheck{Name: name, Status: StatusHealthy, LastRun: start}

	if err := check.fn(ctx); err != nil {
		result.Status = StatusUnhealthy
		if !check.critical {
			result.Status = StatusDegraded
		}
		result.Message = err.Error()
	}
	result.Duration = time.Since(start).String()
	return result
}

// overallStatus is unhealthy if any check is, else degraded if any check is.
func overallStatus(checks map[string]HealthCheck) string {
	status := StatusHealthy
	for _, check := range checks {
		switch check.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

func HealthHandler(h *HealthChecker, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := h.Run(c.Request.Context())

		status, code := overallStatus(checks), http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    m.Uptime().String(),
		})
	}
}

func ReadinessHandler(h *HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if overallStatus(h.Run(c.Request.Context())) != StatusUnhealthy {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ready",
				"timestamp": time.Now(),
			})
			return
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"timestamp": time.Now(),
		})
	}
}

func LivenessHandler(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
			"uptime":    m.Uptime().String(),
		})
	}
}
