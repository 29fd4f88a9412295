package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/syncvision/internal/platform/version"
)

// readinessTimeout bounds the whole readiness run, not each check.
const readinessTimeout = 5 * time.Second

// HealthCheck is a named readiness check.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type livenessReport struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

type checkResult struct {
	Name       string  `json:"name"`
	OK         bool    `json:"ok"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// readinessReport lists every check. FailedCheck and Error repeat the first
// failure so callers can read the cause without scanning Checks.
type readinessReport struct {
	Status      string        `json:"status"`
	FailedCheck string        `json:"failed_check,omitempty"`
	Error       string        `json:"error,omitempty"`
	Checks      []checkResult `json:"checks"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleLiveness(c echo.Context) error {
	report := livenessReport{Status: "ok", Uptime: time.Since(s.startTime).Seconds()}
	return writeHealthJSON(c, http.StatusOK, report)
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	report := runChecks(ctx, s.healthChecks)
	code := http.StatusOK
	if report.FailedCheck != "" {
		code = http.StatusServiceUnavailable
	}
	return writeHealthJSON(c, code, report)
}

// runChecks runs every check in order, even after a failure.
func runChecks(ctx context.Context, checks []HealthCheck) readinessReport {
	report := readinessReport{Status: "ready", Checks: make([]checkResult, 0, len(checks))}
	for _, hc := range checks {
		started := time.Now()
		err := hc.Check(ctx)
		result := checkResult{
			Name:       hc.Name,
			OK:         err == nil,
			DurationMS: float64(time.Since(started).Microseconds()) / 1000,
		}
		if err != nil {
			result.Error = err.Error()
			if report.FailedCheck == "" {
				report.Status = "unhealthy"
				report.FailedCheck = hc.Name
				report.Error = result.Error
			}
		}
		report.Checks = append(report.Checks, result)
	}
	return report
}

func (s *Server) handleVersion(c echo.Context) error {
	return writeHealthJSON(c, http.StatusOK, version.Get())
}

func writeHealthJSON(c echo.Context, code int, body any) error {
	if err := c.JSON(code, body); err != nil {
		return fmt.Errorf("write %s response: %w", c.Path(), err)
	}
	return nil
}
